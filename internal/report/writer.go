package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Alexius0815/ansible-module-usage-scanner/internal/model"
)

// View selects how the text writer lays out scan results.
type View string

const (
	// ViewTree renders files as a directory tree with per-file module lists.
	ViewTree View = "tree"

	// ViewFlat renders one section per file in discovery order.
	ViewFlat View = "flat"

	// ViewSummary renders modules with the files that use them.
	ViewSummary View = "summary"
)

// ParseView validates a view name given on the command line.
func ParseView(s string) (View, error) {
	switch View(s) {
	case ViewTree, ViewFlat, ViewSummary:
		return View(s), nil
	default:
		return "", fmt.Errorf("unknown view %q (valid: tree, flat, summary)", s)
	}
}

// Format selects the report output format.
type Format string

const (
	// FormatText is the default terminal output.
	FormatText Format = "text"

	// FormatJSON serializes the full report as JSON.
	FormatJSON Format = "json"

	// FormatCSV flattens usages into one row per parameter.
	FormatCSV Format = "csv"

	// FormatHTML produces a self-contained styled document.
	FormatHTML Format = "html"

	// FormatMarkdown produces documentation-ready Markdown.
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates an output format name given on the command line.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON, FormatCSV, FormatHTML, FormatMarkdown:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (valid: text, json, csv, html, markdown)", s)
	}
}

// Writer defines the interface for report output.
// Implementations write scan results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.ScanReport) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.ScanReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// formatValue renders a parameter value for flat formats (text, CSV,
// HTML, Markdown cells). Scalars print bare; nested mappings and
// sequences print as compact JSON with original key order, which keeps
// template expressions and structured values on a single line.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}

// titleLevel formats a diagnostic level as a title-cased display label.
func titleLevel(level model.DiagnosticLevel) string {
	return cases.Title(language.English).String(string(level))
}

// usageRow is one flattened file/module/parameter row shared by the CSV
// and HTML writers. Free-form parameters yield a single row with an
// empty parameter column.
type usageRow struct {
	File   string
	Module string
	FQCN   string
	Param  string
	Value  string
	Role   string
}

// flattenUsages expands every usage into one row per parameter,
// preserving file order and parameter order. Usages without parameters
// still produce one row so they stay visible in tabular output.
func flattenUsages(report *model.ScanReport) []usageRow {
	var rows []usageRow
	for _, file := range report.Files {
		for _, usage := range file.Usages {
			if !usage.HasParams() {
				rows = append(rows, usageRow{
					File:   file.Path,
					Module: usage.Name,
					FQCN:   usage.FQCN,
					Role:   file.Role,
				})
				continue
			}
			for _, entry := range usage.Params {
				param := entry.Key
				if param == model.ValueParam {
					param = ""
				}
				rows = append(rows, usageRow{
					File:   file.Path,
					Module: usage.Name,
					FQCN:   usage.FQCN,
					Param:  param,
					Value:  formatValue(entry.Value),
					Role:   file.Role,
				})
			}
		}
	}
	return rows
}
