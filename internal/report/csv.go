package report

import (
	"encoding/csv"
	"io"

	"github.com/Alexius0815/ansible-module-usage-scanner/internal/model"
)

// csvHeader is the fixed column layout of the CSV output.
var csvHeader = []string{"file", "module", "fqcn", "param", "value", "role"}

// CSVWriter outputs reports as one row per module parameter.
// This format is designed for spreadsheet analysis and ad-hoc filtering.
//
// Usages without parameters still produce one row with empty param and
// value columns, so paramless invocations stay countable. The role
// column is empty for files outside any role.
type CSVWriter struct {
	baseWriter

	// comma is the field separator. Defaults to ','.
	comma rune
}

// CSVWriterOption configures a CSVWriter.
type CSVWriterOption func(*CSVWriter)

// WithComma sets the field separator, for tab-separated output and
// similar dialects.
func WithComma(comma rune) CSVWriterOption {
	return func(w *CSVWriter) {
		w.comma = comma
	}
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer, opts ...CSVWriterOption) *CSVWriter {
	w := &CSVWriter{
		baseWriter: newBaseWriter(output),
		comma:      ',',
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the flattened report as CSV, header row first.
//
// The byte count is approximate: encoding/csv buffers internally, so we
// report the count the counting writer saw after Flush.
func (w *CSVWriter) Write(report *model.ScanReport) (int, error) {
	counter := &countingWriter{dest: w.output}
	cw := csv.NewWriter(counter)
	cw.Comma = w.comma

	if err := cw.Write(csvHeader); err != nil {
		return counter.n, err
	}

	for _, row := range flattenUsages(report) {
		record := []string{row.File, row.Module, row.FQCN, row.Param, row.Value, row.Role}
		if err := cw.Write(record); err != nil {
			return counter.n, err
		}
	}

	cw.Flush()
	return counter.n, cw.Error()
}

// countingWriter tracks bytes written to the destination so Write can
// satisfy the Writer interface contract.
type countingWriter struct {
	dest io.Writer
	n    int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.dest.Write(p)
	c.n += n
	return n, err
}
