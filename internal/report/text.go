package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Alexius0815/ansible-module-usage-scanner/internal/model"
)

// TextWriter outputs human-readable text reports for terminal display.
// The layout is selected by a View: a directory tree mirroring the
// scanned paths, a flat per-file listing, or a module-centric summary.
// Every view ends with the unique-module total, the role-grouped module
// summary, and any scan diagnostics.
type TextWriter struct {
	baseWriter

	// view selects the layout of the file results.
	view View

	// styles holds the lipgloss styles, colored or plain.
	styles palette
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithView selects the text layout. Default is the tree view.
func WithView(view View) TextWriterOption {
	return func(w *TextWriter) {
		w.view = view
	}
}

// WithColor switches colored output on or off. Disable it when writing
// to files or pipes.
func WithColor(enabled bool) TextWriterOption {
	return func(w *TextWriter) {
		if enabled {
			w.styles = coloredPalette()
		} else {
			w.styles = plainPalette()
		}
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		view:       ViewTree,
		styles:     coloredPalette(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in the configured view.
func (w *TextWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	if len(report.Files) == 0 {
		fmt.Fprintf(&sb, "%s\n", w.styles.problem.Render("No YAML files found."))
		w.writeDiagnostics(&sb, report)
		return w.output.Write([]byte(sb.String()))
	}

	switch w.view {
	case ViewFlat:
		w.writeFlat(&sb, report)
	case ViewSummary:
		w.writeSummaryView(&sb, report)
	default:
		w.writeTree(&sb, report)
	}

	w.writeTotals(&sb, report)
	w.writeDiagnostics(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

// === Tree view ===

// treeNode is one directory level of the rendered file tree. Files and
// subdirectories are kept separate because files render before
// directories at every level.
type treeNode struct {
	name  string
	files []*model.FileResult
	dirs  []*treeNode
	index map[string]*treeNode
}

func newTreeNode(name string) *treeNode {
	return &treeNode{
		name:  name,
		index: make(map[string]*treeNode),
	}
}

// child returns the subdirectory node with the given name, creating it
// on first use. Creation order follows the sorted file list, so children
// come out sorted without an extra pass.
func (n *treeNode) child(name string) *treeNode {
	if existing, ok := n.index[name]; ok {
		return existing
	}
	node := newTreeNode(name)
	n.index[name] = node
	n.dirs = append(n.dirs, node)
	return node
}

// buildTree arranges the report's files into a directory tree below the
// scan root.
func buildTree(report *model.ScanReport) *treeNode {
	root := newTreeNode(filepath.Base(report.Root))
	for i := range report.Files {
		file := &report.Files[i]

		rel, err := filepath.Rel(report.Root, file.Path)
		if err != nil {
			rel = filepath.Base(file.Path)
		}

		node := root
		parts := strings.Split(rel, string(filepath.Separator))
		for _, part := range parts[:len(parts)-1] {
			node = node.child(part)
		}
		node.files = append(node.files, file)
	}
	return root
}

// writeTree renders the directory-tree view. A report with a single file
// skips the tree scaffolding and lists that file's modules directly.
func (w *TextWriter) writeTree(sb *strings.Builder, report *model.ScanReport) {
	if len(report.Files) == 1 {
		file := &report.Files[0]
		fmt.Fprintf(sb, "%s\n", w.styles.file.Render(filepath.Base(file.Path)))
		w.writeFileUsages(sb, file, "", "    ")
		return
	}

	root := buildTree(report)
	fmt.Fprintf(sb, "%s\n", w.styles.dir.Render(root.name+"/"))
	w.writeTreeNode(sb, root, "")
}

// writeTreeNode renders one directory level: files first, then
// subdirectories, with box-drawing connectors.
func (w *TextWriter) writeTreeNode(sb *strings.Builder, node *treeNode, prefix string) {
	nFiles := len(node.files)
	nDirs := len(node.dirs)

	for i, file := range node.files {
		connector := "├── "
		if i == nFiles-1 && nDirs == 0 {
			connector = "└── "
		}
		fmt.Fprintf(sb, "%s%s%s\n", prefix, connector, w.styles.file.Render(filepath.Base(file.Path)))
		w.writeFileUsages(sb, file, prefix+"    ", prefix+"      ")
	}

	for i, dir := range node.dirs {
		connector := "├── "
		childPrefix := prefix + "│   "
		if i == nDirs-1 {
			connector = "└── "
			childPrefix = prefix + "    "
		}
		fmt.Fprintf(sb, "%s%s%s\n", prefix, connector, w.styles.dir.Render(dir.name+"/"))
		w.writeTreeNode(sb, dir, childPrefix)
	}
}

// writeFileUsages renders one file's module list with tree connectors.
func (w *TextWriter) writeFileUsages(sb *strings.Builder, file *model.FileResult, prefix, paramPrefix string) {
	if file.ParseError != "" {
		fmt.Fprintf(sb, "%s%s\n", prefix, w.styles.problem.Render("Parse error: "+file.ParseError))
		return
	}
	if len(file.Usages) == 0 {
		fmt.Fprintf(sb, "%s%s\n", prefix, w.styles.problem.Render("No modules found (or not an Ansible playbook)."))
		return
	}

	fmt.Fprintf(sb, "%s%s\n", prefix, w.styles.heading.Render("Found following modules with their parameters:"))
	for i, usage := range file.Usages {
		connector := "├─"
		if i == len(file.Usages)-1 {
			connector = "└─"
		}
		fmt.Fprintf(sb, "%s%s %s (%s)\n", prefix, connector,
			w.styles.module.Render(usage.Name), w.styles.fqcn.Render(usage.FQCN))
		w.writeParams(sb, usage.Params, paramPrefix)
	}
}

// === Flat view ===

// writeFlat renders one section per file in discovery order.
func (w *TextWriter) writeFlat(sb *strings.Builder, report *model.ScanReport) {
	for i := range report.Files {
		file := &report.Files[i]
		fmt.Fprintf(sb, "\n%s\n\n", w.styles.file.Render("Analyzing playbook file: "+file.Path))

		switch {
		case file.ParseError != "":
			fmt.Fprintf(sb, "%s\n", w.styles.problem.Render("Parse error: "+file.ParseError))
		case len(file.Usages) == 0:
			fmt.Fprintf(sb, "%s\n", w.styles.problem.Render("No modules found (or not an Ansible playbook)."))
		default:
			fmt.Fprintf(sb, "%s\n\n", w.styles.heading.Render("Found following modules with their parameters:"))
			for _, usage := range file.Usages {
				fmt.Fprintf(sb, "%s (%s):\n",
					w.styles.module.Render(usage.Name), w.styles.fqcn.Render(usage.FQCN))
				w.writeParams(sb, usage.Params, "      ")
				sb.WriteString("\n")
			}
		}
	}
}

// === Summary view ===

// writeSummaryView renders every module with the files that use it.
func (w *TextWriter) writeSummaryView(sb *strings.Builder, report *model.ScanReport) {
	fmt.Fprintf(sb, "%s\n", w.styles.heading.Render("Summary of modules used across files:"))
	for _, name := range report.Summary.ModuleNames() {
		fmt.Fprintf(sb, "%s:\n", w.styles.fqcn.Render(name))
		for _, file := range report.Summary.ModuleFiles[name] {
			fmt.Fprintf(sb, "    %s\n", file)
		}
	}
}

// === Shared sections ===

// writeParams renders a parameter mapping, one line per parameter.
// Free-form parameter values print bare, without a key.
func (w *TextWriter) writeParams(sb *strings.Builder, params model.Mapping, prefix string) {
	for _, entry := range params {
		if entry.Key == model.ValueParam {
			fmt.Fprintf(sb, "%s%s\n", prefix, formatValue(entry.Value))
			continue
		}
		fmt.Fprintf(sb, "%s%s: %s\n", prefix, w.styles.param.Render(entry.Key), formatValue(entry.Value))
	}
}

// writeTotals renders the unique-module total and the role-grouped
// module summary shared by all views.
func (w *TextWriter) writeTotals(sb *strings.Builder, report *model.ScanReport) {
	fmt.Fprintf(sb, "\n%s\n",
		w.styles.strong.Render(fmt.Sprintf("Total unique modules: %d", report.Summary.UniqueModuleCount())))

	fmt.Fprintf(sb, "\n%s\n", w.styles.strong.Render("Module summary by role:"))
	for _, role := range report.Summary.RoleNames() {
		fmt.Fprintf(sb, "%s\n", w.styles.dir.Render("Role: "+role))
		for _, module := range report.Summary.Roles[role] {
			fmt.Fprintf(sb, "  %s\n", w.styles.fqcn.Render(module))
		}
	}
}

// writeDiagnostics renders scan diagnostics, if any.
func (w *TextWriter) writeDiagnostics(sb *strings.Builder, report *model.ScanReport) {
	if len(report.Diagnostics) == 0 {
		return
	}

	fmt.Fprintf(sb, "\n%s\n", w.styles.strong.Render("Diagnostics:"))
	for _, d := range report.Diagnostics {
		line := fmt.Sprintf("[%s] %s", titleLevel(d.Level), d.Message)
		if d.Path != "" {
			line = fmt.Sprintf("[%s] %s: %s", titleLevel(d.Level), d.Path, d.Message)
		}

		style := w.styles.problem
		if d.Level == model.DiagWarning {
			style = w.styles.fqcn
		}
		fmt.Fprintf(sb, "  %s\n", style.Render(line))
	}
}
