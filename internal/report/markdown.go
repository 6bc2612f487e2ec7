package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/Alexius0815/ansible-module-usage-scanner/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation, wikis, and pull request
// descriptions.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeAlert(md, report)
	w.writeUsages(md, report)
	w.writeRoleSummary(md, report)
	w.writeDiagnostics(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report title and scan information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	md.H1("Ansible Module Usage Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + report.Target + "`"},
			{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
			{"Files Scanned", strconv.Itoa(len(report.Files))},
			{"Module Usages", strconv.Itoa(report.TotalUsages())},
			{"Unique Modules", strconv.Itoa(report.Summary.UniqueModuleCount())},
		},
	})
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the scan outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.ScanReport) {
	switch {
	case report.ParseErrorCount() > 0:
		md.Cautionf("%d file(s) failed to parse and contributed no usages.", report.ParseErrorCount())
	case report.OracleDegraded:
		md.Warning("Documentation oracle unavailable. Module names are reported as written.")
	case !report.HasUsages():
		md.Note("No module invocations found under the scan target.")
	default:
		md.Tipf("%d unique modules in use across %d files.",
			report.Summary.UniqueModuleCount(), len(report.Files))
	}
	md.PlainText("")
}

// writeUsages writes the per-usage table, one row per invocation.
func (w *MarkdownWriter) writeUsages(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Usages by File")
	md.PlainText("")

	if !report.HasUsages() {
		md.PlainText("No module usages found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, report.TotalUsages())
	for i := range report.Files {
		file := &report.Files[i]
		for _, usage := range file.Usages {
			rows = append(rows, []string{
				relOrBase(report.Root, file.Path),
				usage.Name,
				usage.FQCN,
				truncateString(formatParams(usage.Params), 60),
				file.RoleLabel(),
			})
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"File", "Module", "FQCN", "Parameters", "Role"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRoleSummary writes module names grouped by role, with a pie
// chart of the distribution when more than one role is involved.
func (w *MarkdownWriter) writeRoleSummary(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Module Summary by Role")
	md.PlainText("")

	roles := report.Summary.RoleNames()
	if len(roles) == 0 {
		md.PlainText("No modules found.")
		md.PlainText("")
		return
	}

	for _, role := range roles {
		md.H3(role)
		md.PlainText("")
		md.BulletList(report.Summary.Roles[role]...)
		md.PlainText("")
	}

	if len(roles) > 1 {
		w.writePieChart(md, report)
	}
}

// writePieChart writes a mermaid pie chart of unique modules per role.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.ScanReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Modules per Role"),
		piechart.WithShowData(true),
	)

	for _, role := range report.Summary.RoleNames() {
		if count := len(report.Summary.Roles[role]); count > 0 {
			chart.LabelAndIntValue(role, uint64(count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeDiagnostics writes scan diagnostics, if any.
func (w *MarkdownWriter) writeDiagnostics(md *markdown.Markdown, report *model.ScanReport) {
	if len(report.Diagnostics) == 0 {
		return
	}

	md.H2("Diagnostics")
	md.PlainText("")

	items := make([]string, 0, len(report.Diagnostics))
	for _, d := range report.Diagnostics {
		item := fmt.Sprintf("**%s** %s", titleLevel(d.Level), d.Message)
		if d.Path != "" {
			item = fmt.Sprintf("**%s** `%s`: %s", titleLevel(d.Level), d.Path, d.Message)
		}
		items = append(items, item)
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [modscan](https://github.com/Alexius0815/ansible-module-usage-scanner)*")
}

// formatParams renders a parameter mapping for a table cell, or a dash
// for paramless usages.
func formatParams(params model.Mapping) string {
	if len(params) == 0 {
		return "-"
	}
	return formatValue(params)
}

// relOrBase returns path relative to root, or the base name when the
// path does not sit under root.
func relOrBase(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Base(path)
	}
	return rel
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
