package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dkoosis/qarun/pkg/pattern"
)

// Theme styles the result kinds and chart chrome of the terminal renderer.
type Theme struct {
	Name    string
	Label   lipgloss.Style // testers, category names
	Pass    lipgloss.Style
	Fail    lipgloss.Style
	Blocked lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Icons   ThemeIcons
}

// ThemeIcons are the glyphs drawn next to results and inside charts.
type ThemeIcons struct {
	Pass    string
	Fail    string
	Blocked string
	Info    string
	Bar     string // one filled chart cell
	Bullet  string
}

// palette is the 256-color code of each style; empty leaves it uncolored.
type palette struct {
	label, pass, fail, blocked, muted string
}

func newTheme(name string, p palette, icons ThemeIcons) Theme {
	style := func(code string) lipgloss.Style {
		if code == "" {
			return lipgloss.NewStyle()
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(code))
	}
	return Theme{
		Name:    name,
		Label:   style(p.label),
		Pass:    style(p.pass),
		Fail:    style(p.fail),
		Blocked: style(p.blocked),
		Muted:   style(p.muted),
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons:   icons,
	}
}

// DefaultTheme uses the status colors of the report viewer.
func DefaultTheme() Theme {
	return newTheme("default",
		palette{label: "39", pass: "34", fail: "196", blocked: "214", muted: "242"},
		ThemeIcons{Pass: "✓", Fail: "✗", Blocked: "⚠", Info: "●", Bar: "█", Bullet: "·"})
}

// OrcaTheme is a muted variant for long sessions.
func OrcaTheme() Theme {
	return newTheme("orca",
		palette{label: "75", pass: "108", fail: "167", blocked: "179", muted: "245"},
		ThemeIcons{Pass: "✓", Fail: "✗", Blocked: "!", Info: "·", Bar: "▇", Bullet: "·"})
}

// MonoTheme has no colors and ASCII glyphs, for logs and NO_COLOR terminals.
func MonoTheme() Theme {
	return newTheme("mono", palette{},
		ThemeIcons{Pass: "+", Fail: "x", Blocked: "!", Info: "*", Bar: "#", Bullet: "-"})
}

// ThemeNames lists the built-in themes.
var ThemeNames = []string{"default", "orca", "mono"}

// ThemeByName returns a theme by name, defaulting to DefaultTheme.
func ThemeByName(name string) Theme {
	switch name {
	case "orca":
		return OrcaTheme()
	case "mono":
		return MonoTheme()
	default:
		return DefaultTheme()
	}
}

// ForKind returns the icon and style of a pattern kind. Unknown kinds are
// drawn as info.
func (t Theme) ForKind(kind string) (string, lipgloss.Style) {
	switch kind {
	case pattern.KindPass:
		return t.Icons.Pass, t.Pass
	case pattern.KindFail:
		return t.Icons.Fail, t.Fail
	case pattern.KindBlocked:
		return t.Icons.Blocked, t.Blocked
	default:
		return t.Icons.Info, t.Label
	}
}
