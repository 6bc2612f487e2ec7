package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alexius0815/ansible-module-usage-scanner/internal/config"
	"github.com/Alexius0815/ansible-module-usage-scanner/internal/history"
	"github.com/Alexius0815/ansible-module-usage-scanner/internal/model"
)

// Constants for footprint direction values.
const (
	footprintGrown     = "grown"
	footprintShrunk    = "shrunk"
	footprintUnchanged = "unchanged"
)

// NewCompareCmd creates the compare command.
// This command compares scan results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [path]",
		Short: "Compare scan results with historical data",
		Long: `Compare displays differences between the current and previous scan results.

This command retrieves historical scan data from the database and shows:
- Modules that entered or left the repository's footprint
- Per-role module additions and removals
- Playbook files that were added, removed, or changed

The comparison requires at least two scans in the database for the specified
path. Use 'modscan scan' to perform scans and save results.

Examples:
  # Compare the latest two scans of a repository
  modscan compare ./ansible

  # List all scan history for a repository
  modscan compare --list ./ansible

  # Compare with a specific historical scan by ID
  modscan compare --with-scan-id 5 ./ansible

  # Compare against the oldest scan since a date
  modscan compare --since "2026-01-01" ./ansible

  # Output comparison in JSON format
  modscan compare --json ./ansible

  # List all scanned repositories in the database
  modscan compare --list-targets`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List scan history for the specified path")
	cmd.Flags().BoolP("list-targets", "L", false,
		"List all scanned repositories in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-scan-id", "i", 0,
		"Compare with a specific scan by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first scan after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// Handle --list-targets flag first (requires database but no path)
	listTargets, err := cmd.Flags().GetBool("list-targets")
	if err != nil {
		return err
	}

	// Validate arguments before opening database (unless --list-targets)
	// This prevents database lock issues when validation fails
	var target string
	if !listTargets {
		// Require a path for other operations
		if len(args) == 0 {
			return errors.New("path is required (use --list-targets to see scanned repositories)")
		}

		// Normalize to the absolute path the scan command stores
		target, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid target path %q: %w", args[0], err)
		}
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	// Open database
	db, err := history.Open(dbDir, history.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Handle --list-targets flag
	if listTargets {
		return listScannedTargets(ctx, db)
	}

	// Handle --list flag
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listScanHistory(ctx, db, target)
	}

	// Get output format flag
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Get comparison target flags
	withScanID, err := cmd.Flags().GetInt64("with-scan-id")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	// Perform comparison
	return runComparison(ctx, db, target, withScanID, sinceDate, jsonOutput)
}

// listScannedTargets lists all repositories that have scan records in the database.
func listScannedTargets(ctx context.Context, db *history.ScanDB) error {
	targets, err := db.ListScannedTargets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list targets: %w", err)
	}

	if len(targets) == 0 {
		fmt.Println("No scanned repositories found in the database.")
		fmt.Println("\nUse 'modscan scan <path>' to scan a playbook repository.")
		return nil
	}

	fmt.Printf("Scanned repositories (%d):\n\n", len(targets))
	for _, target := range targets {
		fmt.Printf("  • %s\n", target)
	}
	fmt.Println("\nUse 'modscan compare --list <path>' to see scan history for a repository.")

	return nil
}

// listScanHistory lists all scan records for a specific target path.
func listScanHistory(ctx context.Context, db *history.ScanDB, target string) error {
	records, err := db.GetScanHistoryWithMetadata(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(records) == 0 {
		fmt.Printf("No scan history found for %s\n", target)
		fmt.Println("\nUse 'modscan scan' to scan this repository.")
		return nil
	}

	fmt.Printf("Scan history for %s (%d scans):\n\n", target, len(records))
	fmt.Printf("  %-6s  %-20s  %s\n", "ID", "Date", "Usage Summary")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, meta := range records {
		fmt.Printf("  %-6d  %-20s  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			formatUsageSummary(meta.UsageSummary),
		)
	}

	fmt.Println("\nUse 'modscan compare <path>' to compare the latest two scans.")
	fmt.Println("Use 'modscan compare --with-scan-id <id> <path>' to compare with a specific scan.")

	return nil
}

// formatUsageSummary formats the usage summary map into a human-readable string.
func formatUsageSummary(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	s := fmt.Sprintf("%d files, %d usages, %d modules",
		summary["files"], summary["usages"], summary["unique_modules"])
	if errorCount := summary["parse_errors"]; errorCount > 0 {
		s += fmt.Sprintf(", %d parse errors", errorCount)
	}
	return s
}

// runComparison performs the actual comparison between scan reports.
func runComparison(ctx context.Context, db *history.ScanDB, target string, withScanID int64, sinceDate string, jsonOutput bool) error {
	// Get the scan history
	reports, err := db.GetScanHistory(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(reports) == 0 {
		return fmt.Errorf("no scan history found for %s", target)
	}

	if len(reports) < 2 && withScanID == 0 && sinceDate == "" {
		return fmt.Errorf("at least 2 scans are required for comparison (found %d)", len(reports))
	}

	// Determine which reports to compare
	var currentReport, previousReport *model.ScanReport

	// Latest report is always the current one
	currentReport = reports[0]

	if withScanID > 0 {
		// Find the report with the specified ID
		previousReport, err = db.GetScanReportByID(ctx, withScanID)
		if err != nil {
			return fmt.Errorf("failed to get scan with ID %d: %w", withScanID, err)
		}
		if previousReport == nil {
			return fmt.Errorf("scan with ID %d not found", withScanID)
		}
		// Validate that the scan ID belongs to the same repository
		if previousReport.Target != target {
			return fmt.Errorf("scan ID %d belongs to %s, not %s", withScanID, previousReport.Target, target)
		}
	} else if sinceDate != "" {
		// Parse the date and find the first (oldest) report at or after the specified date
		parsedDate, err := time.Parse("2006-01-02", sinceDate)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		// Reports are sorted by timestamp DESC (newest first), so iterate in reverse
		// to find the first (oldest) report at or after the date
		for i := len(reports) - 1; i >= 0; i-- {
			r := reports[i]
			if r.DateScanned.After(parsedDate) || r.DateScanned.Equal(parsedDate) {
				previousReport = r
				break // Stop at the first (oldest) matching report
			}
		}
		if previousReport == nil {
			return fmt.Errorf("no scans found since %s", sinceDate)
		}
		// If only one scan matches and it's the current report, we can't compare
		if previousReport == currentReport {
			return fmt.Errorf("only one scan found since %s; at least 2 scans are required for comparison", sinceDate)
		}
	} else {
		// Default: compare with the previous scan
		previousReport = reports[1]
	}

	// Generate comparison result
	comparison := compareReports(previousReport, currentReport)

	// Output the result
	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing two scan reports.
type ComparisonResult struct {
	// Target is the scanned repository path.
	Target string `json:"target"`

	// PreviousScan contains summary counts of the older scan.
	PreviousScan ScanSnapshot `json:"previous_scan"`

	// CurrentScan contains summary counts of the newer scan.
	CurrentScan ScanSnapshot `json:"current_scan"`

	// AddedModules lists canonical module names used now but not before.
	AddedModules []string `json:"added_modules,omitempty"`

	// RemovedModules lists canonical module names used before but not now.
	RemovedModules []string `json:"removed_modules,omitempty"`

	// UnchangedCount is the number of modules used in both scans.
	UnchangedCount int `json:"unchanged_count"`

	// RoleChanges lists per-role module additions and removals.
	RoleChanges []RoleChange `json:"role_changes,omitempty"`

	// AddedFiles lists playbook files present now but not before.
	AddedFiles []string `json:"added_files,omitempty"`

	// RemovedFiles lists playbook files present before but not now.
	RemovedFiles []string `json:"removed_files,omitempty"`

	// ChangedFiles lists files whose content digest changed between scans.
	ChangedFiles []string `json:"changed_files,omitempty"`

	// FootprintChange describes the overall change in module footprint.
	FootprintChange FootprintChange `json:"footprint_change"`
}

// ScanSnapshot contains summary counts of one scan for comparison display.
type ScanSnapshot struct {
	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// Files is the number of playbook files in this scan.
	Files int `json:"files"`

	// Usages is the total number of module invocations.
	Usages int `json:"usages"`

	// UniqueModules is the number of distinct canonical module names.
	UniqueModules int `json:"unique_modules"`

	// ParseErrors is the number of files that failed to parse.
	ParseErrors int `json:"parse_errors"`
}

// RoleChange describes module churn within a single role.
type RoleChange struct {
	// Role is the role label, including the label for files outside roles.
	Role string `json:"role"`

	// Added lists modules the role uses now but did not before.
	Added []string `json:"added,omitempty"`

	// Removed lists modules the role used before but does not now.
	Removed []string `json:"removed,omitempty"`
}

// FootprintChange describes the change in module footprint between scans.
type FootprintChange struct {
	// Direction is "grown", "shrunk", or "unchanged".
	Direction string `json:"direction"`

	// ModuleDelta is the change in unique module count.
	ModuleDelta int `json:"module_delta"`

	// UsageDelta is the change in total usage count.
	UsageDelta int `json:"usage_delta"`

	// FileDelta is the change in playbook file count.
	FileDelta int `json:"file_delta"`
}

// compareReports compares two scan reports and generates a comparison result.
func compareReports(previous, current *model.ScanReport) *ComparisonResult {
	result := &ComparisonResult{
		Target:       current.Target,
		PreviousScan: snapshotOf(previous),
		CurrentScan:  snapshotOf(current),
	}

	// Modules are compared over canonical names, so a short name in one
	// scan and its fully qualified spelling in the other count as the
	// same module.
	previousModules := make(map[string]struct{}, len(previous.Summary.UniqueModules))
	for _, name := range previous.Summary.UniqueModules {
		previousModules[name] = struct{}{}
	}
	currentModules := make(map[string]struct{}, len(current.Summary.UniqueModules))
	for _, name := range current.Summary.UniqueModules {
		currentModules[name] = struct{}{}
	}

	// UniqueModules is sorted, so the diff lists come out sorted too
	for _, name := range current.Summary.UniqueModules {
		if _, exists := previousModules[name]; exists {
			result.UnchangedCount++
		} else {
			result.AddedModules = append(result.AddedModules, name)
		}
	}
	for _, name := range previous.Summary.UniqueModules {
		if _, exists := currentModules[name]; !exists {
			result.RemovedModules = append(result.RemovedModules, name)
		}
	}

	result.RoleChanges = compareRoles(previous.Summary.Roles, current.Summary.Roles)
	result.AddedFiles, result.RemovedFiles, result.ChangedFiles = compareFiles(previous.Files, current.Files)
	result.FootprintChange = calculateFootprintChange(result.PreviousScan, result.CurrentScan)

	return result
}

// snapshotOf extracts the summary counts of a report.
func snapshotOf(r *model.ScanReport) ScanSnapshot {
	return ScanSnapshot{
		DateScanned:   r.DateScanned,
		Files:         len(r.Files),
		Usages:        r.TotalUsages(),
		UniqueModules: r.Summary.UniqueModuleCount(),
		ParseErrors:   r.ParseErrorCount(),
	}
}

// compareRoles diffs the per-role module lists of two summaries.
// Roles without any change are omitted from the result.
func compareRoles(previous, current map[string][]string) []RoleChange {
	roleSet := make(map[string]struct{}, len(previous)+len(current))
	for role := range previous {
		roleSet[role] = struct{}{}
	}
	for role := range current {
		roleSet[role] = struct{}{}
	}

	roles := make([]string, 0, len(roleSet))
	for role := range roleSet {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	var changes []RoleChange
	for _, role := range roles {
		added := diffSorted(current[role], previous[role])
		removed := diffSorted(previous[role], current[role])
		if len(added) == 0 && len(removed) == 0 {
			continue
		}
		changes = append(changes, RoleChange{Role: role, Added: added, Removed: removed})
	}
	return changes
}

// diffSorted returns the entries of a that are not in b, preserving a's order.
func diffSorted(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, s := range b {
		inB[s] = struct{}{}
	}

	var out []string
	for _, s := range a {
		if _, ok := inB[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// compareFiles diffs the file sets of two scans by path and content digest.
// File results arrive in discovery order, which is lexicographic, so the
// returned lists are sorted without further work.
func compareFiles(previous, current []model.FileResult) (added, removed, changed []string) {
	previousDigests := make(map[string]string, len(previous))
	for _, f := range previous {
		previousDigests[f.Path] = f.Digest
	}
	currentPaths := make(map[string]struct{}, len(current))
	for _, f := range current {
		currentPaths[f.Path] = struct{}{}
	}

	for _, f := range current {
		previousDigest, exists := previousDigests[f.Path]
		switch {
		case !exists:
			added = append(added, f.Path)
		case previousDigest != f.Digest:
			changed = append(changed, f.Path)
		}
	}

	for _, f := range previous {
		if _, exists := currentPaths[f.Path]; !exists {
			removed = append(removed, f.Path)
		}
	}

	return added, removed, changed
}

// calculateFootprintChange calculates the change in module footprint between two scans.
func calculateFootprintChange(previous, current ScanSnapshot) FootprintChange {
	change := FootprintChange{
		ModuleDelta: current.UniqueModules - previous.UniqueModules,
		UsageDelta:  current.Usages - previous.Usages,
		FileDelta:   current.Files - previous.Files,
	}

	// Direction follows the unique module count. Churn with a stable
	// count stays "unchanged" and shows up in the added/removed lists.
	switch {
	case change.ModuleDelta > 0:
		change.Direction = footprintGrown
	case change.ModuleDelta < 0:
		change.Direction = footprintShrunk
	default:
		change.Direction = footprintUnchanged
	}

	return change
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Scan Comparison: %s\n", result.Target)
	fmt.Println(strings.Repeat("=", 60))

	// Footprint change summary
	fmt.Printf("\nModule Footprint: %s\n", formatFootprintDirection(result.FootprintChange.Direction))

	// Scan dates
	fmt.Printf("\nPrevious scan: %s\n", result.PreviousScan.DateScanned.Format("2006-01-02 15:04:05"))
	fmt.Printf("Current scan:  %s\n", result.CurrentScan.DateScanned.Format("2006-01-02 15:04:05"))

	// Summary table
	fmt.Println("\nUsage Summary:")
	fmt.Printf("  %-16s  %-10s  %-10s  %-10s\n", "Metric", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 52))
	fmt.Printf("  %-16s  %-10d  %-10d  %-10s\n", "Files",
		result.PreviousScan.Files, result.CurrentScan.Files,
		formatDelta(result.FootprintChange.FileDelta))
	fmt.Printf("  %-16s  %-10d  %-10d  %-10s\n", "Usages",
		result.PreviousScan.Usages, result.CurrentScan.Usages,
		formatDelta(result.FootprintChange.UsageDelta))
	fmt.Printf("  %-16s  %-10d  %-10d  %-10s\n", "Unique modules",
		result.PreviousScan.UniqueModules, result.CurrentScan.UniqueModules,
		formatDelta(result.FootprintChange.ModuleDelta))
	fmt.Printf("  %-16s  %-10d  %-10d  %-10s\n", "Parse errors",
		result.PreviousScan.ParseErrors, result.CurrentScan.ParseErrors,
		formatDelta(result.CurrentScan.ParseErrors-result.PreviousScan.ParseErrors))

	// Module changes
	if len(result.AddedModules) > 0 {
		fmt.Printf("\nNew Modules (%d):\n", len(result.AddedModules))
		for _, name := range result.AddedModules {
			fmt.Printf("  [+] %s\n", name)
		}
	}

	if len(result.RemovedModules) > 0 {
		fmt.Printf("\nRemoved Modules (%d):\n", len(result.RemovedModules))
		for _, name := range result.RemovedModules {
			fmt.Printf("  [-] %s\n", name)
		}
	}

	// Per-role changes
	if len(result.RoleChanges) > 0 {
		fmt.Println("\nRole Changes:")
		for _, rc := range result.RoleChanges {
			fmt.Printf("  %s:\n", rc.Role)
			for _, name := range rc.Added {
				fmt.Printf("    + %s\n", name)
			}
			for _, name := range rc.Removed {
				fmt.Printf("    - %s\n", name)
			}
		}
	}

	// File changes
	if len(result.AddedFiles)+len(result.RemovedFiles)+len(result.ChangedFiles) > 0 {
		fmt.Println("\nFile Changes:")
		for _, path := range result.AddedFiles {
			fmt.Printf("  [+] %s\n", path)
		}
		for _, path := range result.ChangedFiles {
			fmt.Printf("  [~] %s\n", path)
		}
		for _, path := range result.RemovedFiles {
			fmt.Printf("  [-] %s\n", path)
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Printf("\nUnchanged: %d modules\n", result.UnchangedCount)
	}

	return nil
}

// formatFootprintDirection formats the footprint change direction for display.
func formatFootprintDirection(direction string) string {
	switch direction {
	case footprintGrown:
		return "GROWN (more modules in use)"
	case footprintShrunk:
		return "SHRUNK (fewer modules in use)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
