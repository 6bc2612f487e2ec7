package config

import (
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/Alexius0815/ansible-module-usage-scanner/internal/report"
)

// Default configuration values.
// These values are chosen to make a bare "modscan scan <path>" useful
// without any flags or configuration file.
const (
	// DefaultWorkers is the number of files scanned concurrently.
	// Playbook parsing is cheap compared to the documentation oracle
	// lookups that dominate scan time, so concurrency rarely helps on
	// small repositories. Large trees can raise this via --workers.
	DefaultWorkers = 1

	// DefaultView is the report view used when --view is not given.
	// The tree view mirrors the directory layout of the scanned
	// repository, which is the most useful shape for a human reading
	// the terminal output.
	DefaultView = "tree"

	// DefaultFormat is the report format used when --output is not given.
	// Text goes to the terminal; json, csv, html, and markdown are for
	// piping into other tools.
	DefaultFormat = "text"

	// AppName is the application name used for XDG directory paths.
	AppName = "modscan"
)

// Config holds all configuration options for a scan.
// This struct is designed to be populated from CLI flags and an optional
// .modscan configuration file, then passed through the application via
// dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., ScanConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Target is the playbook file or directory to scan.
	// It is taken from the positional CLI argument and must be set.
	Target string

	// View selects how usages are grouped in text output.
	// One of "tree", "flat", or "summary".
	View string

	// Format selects the report output format.
	// One of "text", "json", "csv", "html", or "markdown".
	Format string

	// Workers is the number of files scanned concurrently.
	// 1 means sequential scanning. Report content is identical either
	// way; workers only change how fast the report is produced.
	Workers int

	// Extensions overrides the file extensions recognized as playbook
	// sources. Empty means the scanner default (.yml and .yaml).
	Extensions []string

	// ExtraKeywords are additional reserved task keywords declared in the
	// configuration file. Dialect-specific directives listed here are
	// never mistaken for module invocations.
	ExtraKeywords []string

	// OracleCommand overrides the documentation oracle command line.
	// The command is split on whitespace and the candidate module name
	// is appended as the final argument. Empty means the default
	// ansible-doc invocation.
	OracleCommand string

	// NoOracle disables module name resolution entirely.
	// Usages keep their as-written names and the report is marked
	// oracle-degraded.
	NoOracle bool

	// NoSave disables persisting the scan report to the history database.
	// Reports are saved by default so that "modscan compare" has
	// something to diff against.
	NoSave bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .modscan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// NoColor disables ANSI color in text output.
	// Color is also suppressed automatically when writing to a file.
	NoColor bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero (view, format, workers).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		View:    DefaultView,
		Format:  DefaultFormat,
		Workers: DefaultWorkers,
	}
}

// XDGDataDir returns the XDG data directory for modscan.
// The scan history database lives here.
// On Linux: ~/.local/share/modscan
// On macOS: ~/Library/Application Support/modscan
// On Windows: %LOCALAPPDATA%\modscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing and config file merging, before
// any scanning begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have a target to scan
	if c.Target == "" {
		return ErrNoTarget
	}

	// Workers must be positive; zero would mean no scanning
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	// View must name one of the known report views
	if _, err := report.ParseView(c.View); err != nil {
		return ErrInvalidView
	}

	// Format must name one of the known report formats
	if _, err := report.ParseFormat(c.Format); err != nil {
		return ErrInvalidFormat
	}

	return nil
}
