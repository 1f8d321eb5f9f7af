package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme holds all visual styling for the wizard and the analyzer dashboard.
// It is read from the `tui:` section of .qarun.yaml.
type Theme struct {
	Colors Colors `yaml:"colors"`
	Icons  Icons  `yaml:"icons"`
	Title  Title  `yaml:"title"`
}

// Colors defines the color palette.
type Colors struct {
	Primary   string `yaml:"primary"`   // title, selected row, borders
	Pass      string `yaml:"pass"`
	Fail      string `yaml:"fail"`
	Blocked   string `yaml:"blocked"`
	Muted     string `yaml:"muted"`     // secondary text, upcoming steps
	Text      string `yaml:"text"`
	Border    string `yaml:"border"`
	Highlight string `yaml:"highlight"` // selected row background
}

// Icons defines the glyphs used for statuses and markers.
type Icons struct {
	Unset    string `yaml:"unset"`
	Pass     string `yaml:"pass"`
	Fail     string `yaml:"fail"`
	Blocked  string `yaml:"blocked"`
	Section  string `yaml:"section"`  // expanded section header
	Folded   string `yaml:"folded"`   // collapsed section header
	Select   string `yaml:"select"`   // cursor marker
	Complete string `yaml:"complete"` // completed step in the indicator
}

// Title defines the title bar text.
type Title struct {
	Wizard   string `yaml:"wizard"`
	Analyzer string `yaml:"analyzer"`
	Icon     string `yaml:"icon"`
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() *Theme {
	return &Theme{
		Colors: Colors{
			Primary:   "#7D56F4",
			Pass:      "#04B575",
			Fail:      "#FF5F56",
			Blocked:   "#FFBD2E",
			Muted:     "#626262",
			Text:      "#CCCCCC",
			Border:    "#444444",
			Highlight: "#7D56F4",
		},
		Icons: Icons{
			Unset:    "\u25cb", // ○
			Pass:     "\u2713", // ✓
			Fail:     "\u2717", // ✗
			Blocked:  "\u2298", // ⊘
			Section:  "\u25be", // ▾
			Folded:   "\u25b8", // ▸
			Select:   "\u25b6", // ▶
			Complete: "\u25cf", // ●
		},
		Title: Title{
			Wizard:   "qarun test run",
			Analyzer: "qarun results",
			Icon:     "\u2714", // ✔
		},
	}
}

// MonoTheme returns a theme without colors for NO_COLOR terminals.
func MonoTheme() *Theme {
	t := DefaultTheme()
	t.Colors = Colors{}
	t.Icons = Icons{
		Unset:    "o",
		Pass:     "+",
		Fail:     "x",
		Blocked:  "!",
		Section:  "v",
		Folded:   ">",
		Select:   ">",
		Complete: "*",
	}
	t.Title.Icon = ""
	return t
}

// MergeDefaults fills unset fields of t from the default theme. A nil theme
// yields the default.
func MergeDefaults(t *Theme) *Theme {
	def := DefaultTheme()
	if t == nil {
		return def
	}
	out := *t

	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&out.Colors.Primary, def.Colors.Primary)
	fill(&out.Colors.Pass, def.Colors.Pass)
	fill(&out.Colors.Fail, def.Colors.Fail)
	fill(&out.Colors.Blocked, def.Colors.Blocked)
	fill(&out.Colors.Muted, def.Colors.Muted)
	fill(&out.Colors.Text, def.Colors.Text)
	fill(&out.Colors.Border, def.Colors.Border)
	fill(&out.Colors.Highlight, def.Colors.Highlight)

	fill(&out.Icons.Unset, def.Icons.Unset)
	fill(&out.Icons.Pass, def.Icons.Pass)
	fill(&out.Icons.Fail, def.Icons.Fail)
	fill(&out.Icons.Blocked, def.Icons.Blocked)
	fill(&out.Icons.Section, def.Icons.Section)
	fill(&out.Icons.Folded, def.Icons.Folded)
	fill(&out.Icons.Select, def.Icons.Select)
	fill(&out.Icons.Complete, def.Icons.Complete)

	fill(&out.Title.Wizard, def.Title.Wizard)
	fill(&out.Title.Analyzer, def.Title.Analyzer)
	fill(&out.Title.Icon, def.Title.Icon)
	return &out
}

// Styles holds pre-built lipgloss styles compiled from a Theme.
type Styles struct {
	Title     lipgloss.Style
	Section   lipgloss.Style
	Selected  lipgloss.Style
	Row       lipgloss.Style
	Detail    lipgloss.Style
	StatusBar lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Pass      lipgloss.Style
	Fail      lipgloss.Style
	Blocked   lipgloss.Style
	StepDone  lipgloss.Style
	StepNow   lipgloss.Style
	StepNext  lipgloss.Style
	Narration lipgloss.Style

	Icons  Icons
	Titles Title
}

// Compile builds lipgloss styles from the theme.
func (t *Theme) Compile() *Styles {
	primary := lipgloss.Color(t.Colors.Primary)
	muted := lipgloss.Color(t.Colors.Muted)
	text := lipgloss.Color(t.Colors.Text)
	border := lipgloss.Color(t.Colors.Border)
	highlight := lipgloss.Color(t.Colors.Highlight)
	bright := lipgloss.Color("#FAFAFA")
	if t.Colors.Primary == "" {
		bright = lipgloss.Color("")
	}

	s := &Styles{Icons: t.Icons, Titles: t.Title}

	s.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(bright).
		Background(primary).
		Padding(0, 1)

	s.Section = lipgloss.NewStyle().
		Bold(true).
		Foreground(primary)

	s.Selected = lipgloss.NewStyle().
		Bold(true).
		Foreground(bright).
		Background(highlight)

	s.Row = lipgloss.NewStyle().Foreground(text)

	s.Detail = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)

	s.StatusBar = lipgloss.NewStyle().Foreground(muted)
	s.Error = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Colors.Fail)).Bold(true)
	s.Muted = lipgloss.NewStyle().Foreground(muted)

	s.Tab = lipgloss.NewStyle().Foreground(muted).Padding(0, 1)
	s.ActiveTab = lipgloss.NewStyle().
		Bold(true).
		Foreground(bright).
		Background(primary).
		Padding(0, 1)

	s.Pass = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Colors.Pass)).Bold(true)
	s.Fail = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Colors.Fail)).Bold(true)
	s.Blocked = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Colors.Blocked)).Bold(true)

	s.StepDone = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Colors.Pass))
	s.StepNow = lipgloss.NewStyle().Bold(true).Foreground(primary)
	s.StepNext = lipgloss.NewStyle().Foreground(muted)

	s.Narration = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(primary).
		Padding(0, 1)

	return s
}
