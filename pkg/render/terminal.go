package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dkoosis/qarun/pkg/pattern"
)

// Terminal renders patterns as styled terminal output via lipgloss.
type Terminal struct {
	theme Theme
	width int
}

// NewTerminal creates a terminal renderer with the given theme.
func NewTerminal(theme Theme, width int) *Terminal {
	if width <= 0 {
		width = 80
	}
	return &Terminal{theme: theme, width: width}
}

// Render formats all patterns for terminal display.
func (t *Terminal) Render(patterns []pattern.Pattern) string {
	var sections []string
	for _, p := range patterns {
		s := t.renderOne(p)
		if s != "" {
			sections = append(sections, s)
		}
	}
	return strings.Join(sections, "\n")
}

func (t *Terminal) renderOne(p pattern.Pattern) string {
	switch v := p.(type) {
	case *pattern.Summary:
		return t.renderSummary(v)
	case *pattern.Doughnut:
		return t.renderDoughnut(v)
	case *pattern.StackedBar:
		return t.renderStackedBar(v)
	case *pattern.ResultList:
		return t.renderResultList(v)
	case *pattern.TesterList:
		return t.renderTesterList(v)
	default:
		return ""
	}
}

func (t *Terminal) renderSummary(s *pattern.Summary) string {
	if len(s.Metrics) == 0 {
		return ""
	}
	cardWidth := (t.width - 2*len(s.Metrics)) / len(s.Metrics)
	if cardWidth < 12 {
		cardWidth = 12
	}
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Width(cardWidth - 2).
		Align(lipgloss.Center)

	cards := make([]string, 0, len(s.Metrics))
	for _, m := range s.Metrics {
		_, style := t.theme.ForKind(m.Kind)
		body := style.Bold(true).Render(fmt.Sprintf("%d", m.Value)) + "\n" + t.theme.Muted.Render(m.Label)
		cards = append(cards, card.BorderForeground(style.GetForeground()).Render(body))
	}

	var sb strings.Builder
	if s.Label != "" {
		sb.WriteString(t.theme.Bold.Render(s.Label))
		sb.WriteString("\n")
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	sb.WriteString("\n")
	return sb.String()
}

// renderDoughnut draws the status share as a ring flattened into one bar,
// followed by a legend.
func (t *Terminal) renderDoughnut(d *pattern.Doughnut) string {
	total := d.Total()
	if total == 0 {
		return ""
	}
	barWidth := t.width - 4
	if barWidth > 60 {
		barWidth = 60
	}

	// Cumulative rounding keeps the bar exactly barWidth cells wide.
	var bar strings.Builder
	cum, drawn := 0, 0
	for _, s := range d.Slices {
		cum += s.Count
		end := (cum*barWidth + total/2) / total
		cells := end - drawn
		if cells <= 0 {
			continue
		}
		drawn = end
		_, style := t.theme.ForKind(s.Kind)
		bar.WriteString(style.Render(strings.Repeat(t.theme.Icons.Bar, cells)))
	}

	var sb strings.Builder
	if d.Label != "" {
		sb.WriteString(t.theme.Bold.Render(d.Label))
		sb.WriteString("\n")
	}
	sb.WriteString("  ")
	sb.WriteString(bar.String())
	sb.WriteString("\n  ")

	legend := make([]string, 0, len(d.Slices))
	for _, s := range d.Slices {
		icon, style := t.theme.ForKind(s.Kind)
		legend = append(legend, style.Render(fmt.Sprintf("%s %s %d (%d%%)", icon, s.Label, s.Count, percent(s.Count, total))))
	}
	sb.WriteString(strings.Join(legend, t.theme.Muted.Render("  "+t.theme.Icons.Bullet+"  ")))
	sb.WriteString("\n")
	return sb.String()
}

func (t *Terminal) renderStackedBar(s *pattern.StackedBar) string {
	if len(s.Bars) == 0 {
		return ""
	}
	var sb strings.Builder
	if s.Label != "" {
		sb.WriteString(t.theme.Bold.Render(s.Label))
		sb.WriteString("\n")
	}

	maxName := 0
	for _, b := range s.Bars {
		if w := len([]rune(b.Label)); w > maxName {
			maxName = w
		}
	}
	if maxName > 24 {
		maxName = 24
	}
	barWidth := t.width - maxName - 12
	if barWidth < 10 {
		barWidth = 10
	}
	tallest := s.Max()

	for _, b := range s.Bars {
		sb.WriteString("  ")
		sb.WriteString(t.theme.Label.Render(padRight(truncate(b.Label, maxName), maxName)))
		sb.WriteString(" ")
		for _, seg := range []struct {
			n     int
			style lipgloss.Style
		}{
			{b.Passed, t.theme.Pass},
			{b.Failed, t.theme.Fail},
			{b.Blocked, t.theme.Blocked},
		} {
			if cells := scale(seg.n, tallest, barWidth); cells > 0 {
				sb.WriteString(seg.style.Render(strings.Repeat(t.theme.Icons.Bar, cells)))
			}
		}
		sb.WriteString(t.theme.Muted.Render(fmt.Sprintf(" %d", b.Total())))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderResultList(r *pattern.ResultList) string {
	var sb strings.Builder
	if r.Label != "" {
		sb.WriteString(t.theme.Bold.Render(r.Label))
		sb.WriteString("\n")
	}
	if len(r.Groups) == 0 {
		sb.WriteString(t.theme.Muted.Render("  No results for this filter."))
		sb.WriteString("\n")
		return sb.String()
	}

	textWidth := t.width - 8
	if textWidth < 20 {
		textWidth = 20
	}
	for _, g := range r.Groups {
		icon, style := t.theme.ForKind(g.Kind)
		sb.WriteString("  ")
		sb.WriteString(style.Render(icon + " " + g.Title))
		if g.Scenario != "" {
			room := textWidth - len([]rune(g.Title))
			if room < 10 {
				room = 10
			}
			sb.WriteString(t.theme.Muted.Render("  " + truncate(g.Scenario, room)))
		}
		sb.WriteString("\n")

		for _, item := range g.Results {
			itemIcon, itemStyle := t.theme.ForKind(item.Kind)
			sb.WriteString("    ")
			sb.WriteString(itemStyle.Render(itemIcon + " " + padRight(item.Status, 7)))
			sb.WriteString(" ")
			sb.WriteString(item.Tester)
			sb.WriteString(t.theme.Muted.Render(" (" + item.Date + ")"))
			if item.Comment != "" {
				for _, line := range strings.Split(item.Comment, "\n") {
					sb.WriteString("\n      ")
					sb.WriteString(t.theme.Muted.Render(truncate(line, textWidth)))
				}
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (t *Terminal) renderTesterList(tl *pattern.TesterList) string {
	if len(tl.Testers) == 0 {
		return ""
	}
	var sb strings.Builder
	if tl.Label != "" {
		sb.WriteString(t.theme.Bold.Render(tl.Label))
		sb.WriteString("\n")
	}
	for _, item := range tl.Testers {
		sb.WriteString("  ")
		sb.WriteString(t.theme.Label.Render(item.Name))
		sb.WriteString(t.theme.Muted.Render(" " + t.theme.Icons.Bullet + " " + item.Date))
		if len(item.Extras) > 0 {
			sb.WriteString(t.theme.Muted.Render(" " + t.theme.Icons.Bullet + " " + strings.Join(item.Extras, ", ")))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
