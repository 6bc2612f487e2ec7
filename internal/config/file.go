package config

// ScannerSection holds the scanner settings of a .modscan file.
type ScannerSection struct {
	// Extensions overrides the file extensions recognized as playbook
	// sources. Entries may be given with or without the leading dot.
	Extensions []string `yaml:"extensions,omitempty"`

	// ReservedKeywords lists additional task keywords that must never be
	// treated as module invocations. Use this for dialect-specific
	// directives the built-in keyword table does not know about.
	ReservedKeywords []string `yaml:"reserved_keywords,omitempty"`

	// Workers overrides the number of files scanned concurrently.
	// If zero, the default (or the --workers flag) is used.
	Workers int `yaml:"workers,omitempty"`
}

// OracleSection holds the documentation oracle settings of a .modscan file.
type OracleSection struct {
	// Command overrides the oracle command line. The candidate module
	// name is appended as the final argument.
	Command string `yaml:"command,omitempty"`

	// Disabled turns off module name resolution entirely, equivalent to
	// passing --no-oracle on every scan.
	Disabled bool `yaml:"disabled,omitempty"`
}

// OutputSection holds the report output settings of a .modscan file.
type OutputSection struct {
	// View selects the default report view: tree, flat, or summary.
	View string `yaml:"view,omitempty"`

	// Format selects the default report format: text, json, csv, html,
	// or markdown.
	Format string `yaml:"format,omitempty"`
}

// File represents the structure of the .modscan configuration file.
// Every field is optional; an empty file is a valid configuration.
type File struct {
	// Scanner configures file discovery and invocation extraction.
	Scanner ScannerSection `yaml:"scanner,omitempty"`

	// Oracle configures the documentation oracle used to resolve module
	// names to their canonical form.
	Oracle OracleSection `yaml:"oracle,omitempty"`

	// Output configures the default report view and format.
	Output OutputSection `yaml:"output,omitempty"`
}

// ApplyFile overlays file-provided settings onto the configuration.
// Only settings the file actually specifies are applied, so defaults
// survive a partial file. Callers apply CLI flags after this, which is
// how flags take precedence over both the file and the defaults.
func (c *Config) ApplyFile(cf *File) {
	if cf == nil {
		return
	}

	if len(cf.Scanner.Extensions) > 0 {
		c.Extensions = cf.Scanner.Extensions
	}
	if len(cf.Scanner.ReservedKeywords) > 0 {
		c.ExtraKeywords = cf.Scanner.ReservedKeywords
	}
	if cf.Scanner.Workers > 0 {
		c.Workers = cf.Scanner.Workers
	}

	if cf.Oracle.Command != "" {
		c.OracleCommand = cf.Oracle.Command
	}
	if cf.Oracle.Disabled {
		c.NoOracle = true
	}

	if cf.Output.View != "" {
		c.View = cf.Output.View
	}
	if cf.Output.Format != "" {
		c.Format = cf.Output.Format
	}
}
