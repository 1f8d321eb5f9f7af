package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dkoosis/qarun/pkg/analyze"
	"github.com/dkoosis/qarun/pkg/catalogue"
	"github.com/dkoosis/qarun/pkg/mapper"
	"github.com/dkoosis/qarun/pkg/pattern"
	"github.com/dkoosis/qarun/pkg/render"
	"github.com/dkoosis/qarun/pkg/report"
)

// AnalyzerOptions configures the results dashboard.
type AnalyzerOptions struct {
	Theme *Theme
	// Charts is the renderer theme for the summary charts.
	Charts render.Theme
	// Index resolves catalogue details; nil shows "N/A".
	Index *catalogue.Index
	Tab   analyze.Tab
}

// DatasetMsg replaces the dashboard's dataset, e.g. after a watched file changed.
type DatasetMsg struct {
	Dataset *analyze.Dataset
	// Failures are per-file load errors shown in the status bar.
	Failures []error
}

// Analyzer is the bubbletea model of the results dashboard.
type Analyzer struct {
	ds     *analyze.Dataset
	idx    *catalogue.Index
	styles *Styles
	charts render.Theme

	keys     analyzerKeys
	help     help.Model
	viewport viewport.Model

	tab    int
	groups []analyze.Group
	cursor int
	open   map[string]bool
	status string

	width  int
	height int
}

// NewAnalyzer returns the dashboard for ds.
func NewAnalyzer(ds *analyze.Dataset, opts AnalyzerOptions) *Analyzer {
	theme := opts.Theme
	if theme == nil {
		theme = DefaultTheme()
	}
	if opts.Charts.Name == "" {
		opts.Charts = render.DefaultTheme()
	}
	m := &Analyzer{
		ds:       ds,
		idx:      opts.Index,
		styles:   theme.Compile(),
		charts:   opts.Charts,
		keys:     newAnalyzerKeys(),
		help:     help.New(),
		viewport: viewport.New(80, 18),
		open:     map[string]bool{},
		width:    80,
		height:   24,
	}
	for i, t := range analyze.Tabs {
		if t == opts.Tab {
			m.tab = i
		}
	}
	m.regroup()
	return m
}

// Tab returns the active filter.
func (m *Analyzer) Tab() analyze.Tab { return analyze.Tabs[m.tab] }

// Groups returns the groups listed under the active filter.
func (m *Analyzer) Groups() []analyze.Group { return m.groups }

func (m *Analyzer) Init() tea.Cmd { return nil }

func (m *Analyzer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.layout()
	case DatasetMsg:
		if msg.Dataset != nil {
			m.ds = msg.Dataset
			m.regroup()
		}
		m.status = ""
		if len(msg.Failures) > 0 {
			m.status = fmt.Sprintf("%d file(s) could not be read: %v", len(msg.Failures), msg.Failures[0])
		}
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.layout()
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			m.render()
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.groups)-1 {
				m.cursor++
			}
			m.render()
		case key.Matches(msg, m.keys.Tab):
			m.tab = (m.tab + 1) % len(analyze.Tabs)
			m.cursor = 0
			m.regroup()
		case key.Matches(msg, m.keys.Prev):
			m.tab = (m.tab - 1 + len(analyze.Tabs)) % len(analyze.Tabs)
			m.cursor = 0
			m.regroup()
		case key.Matches(msg, m.keys.Detail):
			if g, ok := m.current(); ok {
				k := groupKey(g)
				m.open[k] = !m.open[k]
				m.render()
			}
		}
	}
	return m, nil
}

func (m *Analyzer) current() (analyze.Group, bool) {
	if m.cursor < 0 || m.cursor >= len(m.groups) {
		return analyze.Group{}, false
	}
	return m.groups[m.cursor], true
}

func groupKey(g analyze.Group) string {
	if g.ID != "" {
		return g.ID
	}
	return g.Label
}

func (m *Analyzer) regroup() {
	m.groups = m.ds.Groups(m.Tab(), m.idx)
	if m.cursor >= len(m.groups) {
		m.cursor = max(0, len(m.groups)-1)
	}
	m.render()
}

func (m *Analyzer) layout() {
	chrome := 3 // title, tabs, status
	chrome += lipgloss.Height(m.help.View(m.keys))
	m.viewport.Width = m.width
	m.viewport.Height = max(3, m.height-chrome)
	m.render()
}

// render lays out the charts followed by the grouped list, keeping the
// selected group visible.
func (m *Analyzer) render() {
	stats := m.ds.Stats()
	charts := render.NewTerminal(m.charts, m.width).Render([]pattern.Pattern{
		mapper.Testers(m.ds.Testers),
		mapper.Summary(stats),
		mapper.Doughnut(stats),
		mapper.Categories(stats),
	})

	lines := strings.Split(strings.TrimRight(charts, "\n"), "\n")
	lines = append(lines, "")
	cursorLine := len(lines)

	if len(m.groups) == 0 {
		lines = append(lines, m.styles.Muted.Render("No results for this filter."))
	}
	for i, g := range m.groups {
		if i == m.cursor {
			cursorLine = len(lines)
		}
		lines = append(lines, m.renderGroup(g, i == m.cursor)...)
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))

	switch {
	case cursorLine < m.viewport.YOffset:
		m.viewport.SetYOffset(cursorLine)
	case cursorLine >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(cursorLine - m.viewport.Height + 1)
	}
}

func (m *Analyzer) renderGroup(g analyze.Group, selected bool) []string {
	marker := "  "
	if selected {
		marker = m.styles.Icons.Select + " "
	}
	var head string
	if selected {
		head = m.styles.Selected.Render(fmt.Sprintf("%s%s %s  %s (%d)", marker, m.rawIcon(g.Summary), g.Label, g.Detail.Scenario, len(g.Results)))
	} else {
		head = m.styles.Row.Render(fmt.Sprintf("%s%s %s  %s (%d)", marker, m.icon(g.Summary), g.Label, g.Detail.Scenario, len(g.Results)))
	}
	lines := []string{head}
	if !m.open[groupKey(g)] {
		return lines
	}

	var b strings.Builder
	b.WriteString("Feature: " + g.Detail.Feature + "\n")
	b.WriteString("Steps:\n")
	for i, s := range g.Detail.Steps {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, s)
	}
	b.WriteString("Expected: " + g.Detail.Expected + "\n")
	for _, e := range g.Results {
		fmt.Fprintf(&b, "\n%s %s (%s)", m.icon(e.Status), e.Tester, e.Date)
		if c := strings.TrimSpace(e.Comment); c != "" {
			b.WriteString(": " + c)
		}
	}
	box := m.styles.Detail.Width(max(20, m.width-8)).Render(b.String())
	for _, l := range strings.Split(box, "\n") {
		lines = append(lines, "    "+l)
	}
	return lines
}

func (m *Analyzer) icon(st report.Status) string {
	switch st.Normalize() {
	case report.StatusPass:
		return m.styles.Pass.Render(m.styles.Icons.Pass)
	case report.StatusFail:
		return m.styles.Fail.Render(m.styles.Icons.Fail)
	case report.StatusBlocked:
		return m.styles.Blocked.Render(m.styles.Icons.Blocked)
	default:
		return m.styles.Muted.Render(m.styles.Icons.Unset)
	}
}

func (m *Analyzer) rawIcon(st report.Status) string {
	switch st.Normalize() {
	case report.StatusPass:
		return m.styles.Icons.Pass
	case report.StatusFail:
		return m.styles.Icons.Fail
	case report.StatusBlocked:
		return m.styles.Icons.Blocked
	default:
		return m.styles.Icons.Unset
	}
}

func (m *Analyzer) View() string {
	title := m.styles.Title.Width(m.width).Render(strings.TrimSpace(m.styles.Titles.Icon + " " + m.styles.Titles.Analyzer))

	tabs := make([]string, 0, len(analyze.Tabs))
	for i, t := range analyze.Tabs {
		label := fmt.Sprintf("%s (%d)", tabLabel(t), len(analyze.Filter(m.ds.Entries, t)))
		if i == m.tab {
			tabs = append(tabs, m.styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, m.styles.Tab.Render(label))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		m.viewport.View(),
		m.styles.StatusBar.Render(m.status),
		m.help.View(m.keys),
	)
}

func tabLabel(t analyze.Tab) string {
	switch t {
	case analyze.TabPass:
		return "Passed"
	case analyze.TabFail:
		return "Failed"
	case analyze.TabBlocked:
		return "Blocked"
	default:
		return "All"
	}
}

// RunAnalyzer runs the dashboard full-screen. Datasets sent on updates
// replace the current one; the channel may be nil.
func RunAnalyzer(ctx context.Context, ds *analyze.Dataset, opts AnalyzerOptions, updates <-chan DatasetMsg) error {
	p := tea.NewProgram(NewAnalyzer(ds, opts), tea.WithContext(ctx), tea.WithAltScreen())
	if updates != nil {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-updates:
					if !ok {
						return
					}
					p.Send(msg)
				}
			}
		}()
	}
	_, err := p.Run()
	return err
}
