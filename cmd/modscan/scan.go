package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Alexius0815/ansible-module-usage-scanner/internal/config"
	"github.com/Alexius0815/ansible-module-usage-scanner/internal/history"
	"github.com/Alexius0815/ansible-module-usage-scanner/internal/log"
	"github.com/Alexius0815/ansible-module-usage-scanner/internal/model"
	"github.com/Alexius0815/ansible-module-usage-scanner/internal/playbook"
	"github.com/Alexius0815/ansible-module-usage-scanner/internal/report"
	"github.com/Alexius0815/ansible-module-usage-scanner/internal/resolver"
	"github.com/Alexius0815/ansible-module-usage-scanner/internal/scanner"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Scan a playbook repository for module usages",
		Long: `Scan walks the given playbook file or directory and reports every
Ansible module invocation it finds: the module name, the file and role
it appears in, and the parameters it is called with.

Module names are resolved to fully qualified collection names through
ansible-doc. When ansible-doc is not installed, names are reported as
written and the report is marked accordingly; the scan still succeeds.

Files that fail to parse are recorded as diagnostics and never abort
the scan.

Examples:
  # Scan a repository and print the tree view
  modscan scan ./ansible

  # Flat per-file listing without name resolution
  modscan scan --view flat --no-oracle ./ansible

  # Machine-readable output
  modscan scan --output json ./ansible
  modscan scan --output csv -o usages.csv ./ansible

  # Use a custom configuration file
  modscan scan -c team.modscan ./ansible

Configuration file (.modscan) example:
  scanner:
    reserved_keywords:
      - corp_approval
  oracle:
    command: "ansible-doc --json -t module"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScanCmd,
	}

	// Report flags
	cmd.Flags().String("view", config.DefaultView,
		"Report view for text output: tree, flat, or summary")
	cmd.Flags().String("output", config.DefaultFormat,
		"Report format: text, json, csv, html, or markdown")
	cmd.Flags().StringP("report-file", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-color", false,
		"Disable ANSI color in text output")

	// Scan behavior flags
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of files scanned concurrently")
	cmd.Flags().String("oracle", "",
		"Documentation oracle command line (the module name is appended)")
	cmd.Flags().Bool("no-oracle", false,
		"Disable module name resolution; report names as written")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not save this scan to the history database")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .modscan in current or home directory)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	// Build config from the config file and flags
	cfg, err := buildScanConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildScanConfig creates a Config from the config file and cobra flags.
// Precedence is defaults, then the .modscan file, then explicitly set
// flags, so a flag always wins over the file.
func buildScanConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	configFilePath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configFilePath

	// Load the configuration file before reading flags so that flags
	// set on the command line override file-provided values.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently skip when no file is found.
	explicitConfigPath := configFilePath != ""
	configPath := config.FindConfigFile(configFilePath)

	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(cf)
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", configFilePath)
	}

	// Report flags override the file only when actually set
	if flags.Changed("view") {
		cfg.View, err = flags.GetString("view")
		if err != nil {
			return nil, err
		}
	}

	if flags.Changed("output") {
		cfg.Format, err = flags.GetString("output")
		if err != nil {
			return nil, err
		}
	}

	if flags.Changed("workers") {
		cfg.Workers, err = flags.GetInt("workers")
		if err != nil {
			return nil, err
		}
	}

	if flags.Changed("oracle") {
		cfg.OracleCommand, err = flags.GetString("oracle")
		if err != nil {
			return nil, err
		}
	}

	noOracle, err := flags.GetBool("no-oracle")
	if err != nil {
		return nil, err
	}
	if noOracle {
		cfg.NoOracle = true
	}

	// A custom oracle command and a disabled oracle cannot both be
	// honored when requested together on the command line. A command
	// from the config file plus --no-oracle is fine: the flag wins.
	if flags.Changed("oracle") && noOracle {
		return nil, config.ErrConflictingOracleFlags
	}

	cfg.NoSave, err = flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = flags.GetString("report-file")
	if err != nil {
		return nil, err
	}

	cfg.NoColor, err = flags.GetBool("no-color")
	if err != nil {
		return nil, err
	}

	// Get positional argument (scan target)
	if len(args) > 0 {
		cfg.Target = args[0]
	}

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// All logging goes through the redacting handler because playbook
// parameters routinely carry credentials and debug logging must not
// leak them.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewRedactLogger(os.Stderr, verbose)
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Resolve the target to an absolute path. History lookups key on the
	// stored target, so the same tree scanned from different working
	// directories must normalize to one name.
	target, err := filepath.Abs(cfg.Target)
	if err != nil {
		return fmt.Errorf("invalid target path %q: %w", cfg.Target, err)
	}

	logger.Info("starting scan",
		"target", target,
		"workers", cfg.Workers,
		"noOracle", cfg.NoOracle,
		"save", !cfg.NoSave,
	)

	// Open the history database unless saving is disabled. History is
	// best effort: the scan must still deliver its report when the
	// database cannot be opened.
	var db *history.ScanDB
	if !cfg.NoSave {
		db, err = history.Open(config.XDGDataDir(), history.DefaultOptions())
		if err != nil {
			logger.Error("failed to open history database, scan will not be saved", "error", err)
		} else {
			defer db.Close()
		}
	}

	scanReport, err := newScanner(cfg, logger).Scan(ctx, target)
	if err != nil {
		return err
	}

	// Generate and output report
	if err := outputReport(cfg, scanReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	// Save to database if enabled
	if err := saveScanReport(ctx, db, scanReport, logger); err != nil {
		logger.Error("failed to save scan report", "target", target, "error", err)
	}

	return nil
}

// newScanner assembles the scanner from the effective configuration.
func newScanner(cfg *config.Config, logger *slog.Logger) *scanner.Scanner {
	opts := []scanner.Option{
		scanner.WithLogger(logger),
		scanner.WithWorkers(cfg.Workers),
		scanner.WithExtractor(playbook.NewExtractor(cfg.ExtraKeywords...)),
	}

	if len(cfg.Extensions) > 0 {
		opts = append(opts, scanner.WithExtensions(cfg.Extensions...))
	}

	if !cfg.NoOracle {
		opts = append(opts, scanner.WithResolver(newOracleResolver(cfg, logger)))
	}

	return scanner.New(opts...)
}

// newOracleResolver creates the module name resolver, honoring a custom
// oracle command when one is configured.
func newOracleResolver(cfg *config.Config, logger *slog.Logger) *resolver.Resolver {
	var clientOpts []resolver.AnsibleDocOption
	if cfg.OracleCommand != "" {
		clientOpts = append(clientOpts, resolver.WithCommand(strings.Fields(cfg.OracleCommand)))
	}

	oracle := resolver.NewAnsibleDocClient(clientOpts...)
	return resolver.NewResolver(oracle, resolver.WithLogger(logger))
}

// outputReport outputs the scan report in the requested format.
func outputReport(cfg *config.Config, scanReport *model.ScanReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with secure permissions (0600)
		// Reports may quote credential-bearing playbook parameters that
		// should only be readable by the owner
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	writer, err := newReportWriter(cfg, output)
	if err != nil {
		return err
	}

	if _, err := writer.Write(scanReport); err != nil {
		return err
	}

	if cfg.ReportFile != "" {
		fmt.Printf("Report written to %s\n", cfg.ReportFile)
	}
	return nil
}

// newReportWriter builds the report writer for the configured format.
func newReportWriter(cfg *config.Config, output io.Writer) (report.Writer, error) {
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	switch format {
	case report.FormatJSON:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint()), nil
	case report.FormatCSV:
		return report.NewCSVWriter(output), nil
	case report.FormatHTML:
		return report.NewHTMLWriter(output), nil
	case report.FormatMarkdown:
		return report.NewMarkdownWriter(output), nil
	default:
		view, err := report.ParseView(cfg.View)
		if err != nil {
			return nil, err
		}

		// Color only makes sense on a terminal, never in a report file
		color := !cfg.NoColor && cfg.ReportFile == ""
		return report.NewTextWriter(output, report.WithView(view), report.WithColor(color)), nil
	}
}

// saveScanReport saves the scan report to the history database.
// If db is nil, this function is a no-op.
func saveScanReport(ctx context.Context, db *history.ScanDB, scanReport *model.ScanReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	if err := db.SaveScanReport(ctx, scanReport); err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}

	logger.Info("scan report saved to history", "target", scanReport.Target)
	return nil
}
