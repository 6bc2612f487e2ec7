package report

import (
	"bytes"
	"html/template"
	"io"

	"github.com/Alexius0815/ansible-module-usage-scanner/internal/model"
)

// htmlTemplate is the self-contained report document. The styling is
// deliberately minimal so the file opens cleanly without external assets.
var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html><head><meta charset='utf-8'><title>Ansible Module Usage</title>
<style>body {font-family: sans-serif;} table {border-collapse:collapse;} th,td {border:1px solid #aaa; padding:4px;} th {background:#eee;}</style>
</head><body>
<h2>Ansible Module Usage Report</h2>
<p><strong>Target:</strong> {{.Target}} ({{.Date}})</p>
<p><strong>Total unique modules:</strong> {{.UniqueCount}}</p>
<table>
<tr><th>File</th><th>Module</th><th>FQCN</th><th>Parameter</th><th>Value</th><th>Role</th></tr>
{{range .Rows}}<tr><td>{{.File}}</td><td>{{.Module}}</td><td>{{.FQCN}}</td><td>{{.Param}}</td><td>{{.Value}}</td><td>{{.Role}}</td></tr>
{{end}}</table>
<h3>Module summary by role:</h3>
<ul>
{{range .Roles}}<li><strong>{{.Name}}</strong><ul>
{{range .Modules}}<li>{{.}}</li>
{{end}}</ul></li>
{{end}}</ul>
{{if .Diagnostics}}<h3>Diagnostics:</h3>
<ul>
{{range .Diagnostics}}<li>[{{.Level}}] {{if .Path}}{{.Path}}: {{end}}{{.Message}}</li>
{{end}}</ul>
{{end}}</body></html>
`))

// htmlData is the template input assembled from a ScanReport.
type htmlData struct {
	Target      string
	Date        string
	UniqueCount int
	Rows        []usageRow
	Roles       []htmlRole
	Diagnostics []model.Diagnostic
}

// htmlRole is one role with its sorted module names.
type htmlRole struct {
	Name    string
	Modules []string
}

// HTMLWriter outputs reports as a styled HTML document.
// This format is designed for sharing audit results with people who
// never touch the terminal.
//
// Design decision: We use html/template rather than string concatenation
// because parameter values come straight from playbook content and must
// be escaped before they land in a document somebody opens in a browser.
type HTMLWriter struct {
	baseWriter
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	return &HTMLWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report as a complete HTML document.
func (w *HTMLWriter) Write(report *model.ScanReport) (int, error) {
	data := htmlData{
		Target:      report.Target,
		Date:        report.DateScanned.Format("2006-01-02 15:04:05 MST"),
		UniqueCount: report.Summary.UniqueModuleCount(),
		Rows:        flattenUsages(report),
		Diagnostics: report.Diagnostics,
	}
	for _, role := range report.Summary.RoleNames() {
		data.Roles = append(data.Roles, htmlRole{
			Name:    role,
			Modules: report.Summary.Roles[role],
		})
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return 0, err
	}

	return w.output.Write(buf.Bytes())
}
