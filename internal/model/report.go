package model

import (
	"time"
)

// NotInRole is the role label for playbook files that live outside any
// roles/ directory tree.
const NotInRole = "Not in role"

// RoleLabel returns the display label for a role name. Files outside a role
// carry the empty role internally and render as NotInRole.
func RoleLabel(role string) string {
	if role == "" {
		return NotInRole
	}
	return role
}

// DiagnosticLevel classifies a scan diagnostic.
type DiagnosticLevel string

const (
	// DiagWarning marks a recoverable problem, such as a degraded
	// documentation oracle.
	DiagWarning DiagnosticLevel = "warning"

	// DiagError marks a per-file failure, such as malformed YAML. The scan
	// continues with the remaining files.
	DiagError DiagnosticLevel = "error"
)

// Diagnostic is a non-fatal problem encountered during a scan. Diagnostics
// are part of the report so that renderers can surface them next to the
// results they affect.
type Diagnostic struct {
	// Level is the diagnostic severity.
	Level DiagnosticLevel `json:"level"`

	// Path is the file the diagnostic refers to, empty for scan-wide
	// diagnostics such as oracle degradation.
	Path string `json:"path,omitempty"`

	// Message is the human-readable description.
	Message string `json:"message"`
}

// FileResult holds everything extracted from a single playbook file.
type FileResult struct {
	// Path is the absolute path of the scanned file.
	Path string `json:"path"`

	// Role is the enclosing role name derived from the path, or empty when
	// the file is not under a roles/ tree.
	Role string `json:"role,omitempty"`

	// Digest is the SHA3-256 hex digest of the file content. Scan history
	// comparisons use it to detect changed files.
	Digest string `json:"digest,omitempty"`

	// Usages lists the module invocations in document order, depth-first.
	Usages []ModuleUsage `json:"usages,omitempty"`

	// ParseError holds the load failure for this file, if any. A file with
	// a parse error contributes no usages but stays in the report.
	ParseError string `json:"parse_error,omitempty"`
}

// RoleLabel returns the display label for the file's role.
func (f FileResult) RoleLabel() string {
	return RoleLabel(f.Role)
}

// ScanReport is the main scan result structure.
// It contains every file result collected during a scan of a playbook tree.
//
// Design decision: We use a single aggregate struct rather than streaming
// results to the renderers because:
//  1. Summary views need the complete set before they can be built
//  2. A single struct simplifies JSON serialization and database storage
//  3. Renderers stay pure functions over an immutable value
type ScanReport struct {
	// === Scan Identity ===

	// Target is the file or directory path exactly as given by the user.
	Target string `json:"target"`

	// Root is the absolute base directory used for tree rendering. For a
	// single-file scan this is the file's parent directory.
	Root string `json:"root"`

	// DateScanned is the timestamp when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// === Results ===

	// Files holds one entry per scanned file in lexicographic path order.
	Files []FileResult `json:"files"`

	// Diagnostics lists non-fatal problems encountered during the scan.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`

	// OracleDegraded is true if the documentation oracle was unavailable
	// and module names could not be resolved to canonical form.
	OracleDegraded bool `json:"oracle_degraded"`

	// === Derived Views ===

	// Summary contains the role grouping and uniqueness views. It is built
	// once by the scan driver after all files are processed.
	Summary Summary `json:"summary"`
}

// NewScanReport creates a new report for the given scan target.
func NewScanReport(target string) *ScanReport {
	return &ScanReport{
		Target:      target,
		DateScanned: time.Now(),
		Files:       make([]FileResult, 0),
	}
}

// AddFile appends a file result to the report. If the file carries a parse
// error, a matching error diagnostic is recorded as well.
func (r *ScanReport) AddFile(file FileResult) {
	r.Files = append(r.Files, file)
	if file.ParseError != "" {
		r.AddDiagnostic(DiagError, file.Path, file.ParseError)
	}
}

// AddDiagnostic records a non-fatal problem.
func (r *ScanReport) AddDiagnostic(level DiagnosticLevel, path, message string) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{
		Level:   level,
		Path:    path,
		Message: message,
	})
}

// TotalUsages returns the number of module invocations across all files.
func (r *ScanReport) TotalUsages() int {
	total := 0
	for _, f := range r.Files {
		total += len(f.Usages)
	}
	return total
}

// HasUsages returns true if any file contained a module invocation.
func (r *ScanReport) HasUsages() bool {
	return r.TotalUsages() > 0
}

// ParseErrorCount returns the number of files that failed to parse.
func (r *ScanReport) ParseErrorCount() int {
	count := 0
	for _, f := range r.Files {
		if f.ParseError != "" {
			count++
		}
	}
	return count
}
