// Package report renders scan results in the supported output formats.
//
// This package contains writers for different output formats:
//   - TextWriter: Terminal output with tree, flat, and summary views
//   - JSONWriter: Structured JSON output for tool integration
//   - CSVWriter: One row per module parameter for spreadsheet analysis
//   - HTMLWriter: Self-contained styled document for sharing
//   - MarkdownWriter: Documentation-ready Markdown with summary tables
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) to follow the single responsibility
// principle. Every writer is a pure consumer of a finished
// model.ScanReport, so adding an output format never touches the scan
// engine.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-destination output.
package report
