package report

import "github.com/charmbracelet/lipgloss"

// Color palette - shared hex colors for the text view. These are chosen
// for dark terminal backgrounds with good contrast.
const (
	// ColorHeading is magenta - used for section headings.
	ColorHeading = lipgloss.Color("#C026D3")

	// ColorDir is cyan - used for directory names and role labels.
	ColorDir = lipgloss.Color("#06B6D4")

	// ColorModule is green - used for module names as written.
	ColorModule = lipgloss.Color("#10B981")

	// ColorFQCN is amber - used for canonical module names.
	ColorFQCN = lipgloss.Color("#F59E0B")

	// ColorParam is blue - used for parameter keys.
	ColorParam = lipgloss.Color("#3B82F6")

	// ColorProblem is red - used for parse errors and empty results.
	ColorProblem = lipgloss.Color("#EF4444")
)

// palette bundles the styles the text writer needs so that color can be
// switched off as a unit. A zero lipgloss.Style renders text unchanged,
// which is what the plain palette relies on.
type palette struct {
	// file styles playbook file names.
	file lipgloss.Style

	// dir styles directory names in the tree view and role labels.
	dir lipgloss.Style

	// heading styles section headings.
	heading lipgloss.Style

	// strong styles totals and other emphasized lines.
	strong lipgloss.Style

	// module styles module names as written.
	module lipgloss.Style

	// fqcn styles canonical module names.
	fqcn lipgloss.Style

	// param styles parameter keys.
	param lipgloss.Style

	// problem styles parse errors and no-module notices.
	problem lipgloss.Style
}

// coloredPalette returns the default colored styles.
func coloredPalette() palette {
	return palette{
		file:    lipgloss.NewStyle().Bold(true),
		dir:     lipgloss.NewStyle().Bold(true).Foreground(ColorDir),
		heading: lipgloss.NewStyle().Foreground(ColorHeading),
		strong:  lipgloss.NewStyle().Bold(true),
		module:  lipgloss.NewStyle().Foreground(ColorModule),
		fqcn:    lipgloss.NewStyle().Foreground(ColorFQCN),
		param:   lipgloss.NewStyle().Foreground(ColorParam),
		problem: lipgloss.NewStyle().Foreground(ColorProblem),
	}
}

// plainPalette returns styles that leave text untouched, for --no-color
// and for piping output to files.
func plainPalette() palette {
	return palette{}
}
