package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dkoosis/qarun/pkg/pattern"
)

// maxCommentLines bounds how much of a comment the plain renderer prints.
const maxCommentLines = 3

// Plain renders patterns as terse plain text for pipes, logs, and CI.
// Zero ANSI codes; output order follows pattern order.
type Plain struct{}

// NewPlain creates a plain-text renderer.
func NewPlain() *Plain {
	return &Plain{}
}

// Render formats all patterns as plain text.
func (l *Plain) Render(patterns []pattern.Pattern) string {
	var sb strings.Builder
	for _, p := range patterns {
		switch v := p.(type) {
		case *pattern.Summary:
			l.renderSummary(&sb, v)
		case *pattern.Doughnut:
			l.renderDoughnut(&sb, v)
		case *pattern.StackedBar:
			l.renderStackedBar(&sb, v)
		case *pattern.ResultList:
			l.renderResultList(&sb, v)
		case *pattern.TesterList:
			l.renderTesterList(&sb, v)
		}
	}
	return sb.String()
}

// renderSummary writes the SCOPE line: "SCOPE: 5 tests (3 pass, 1 fail, 1 blocked)".
func (l *Plain) renderSummary(sb *strings.Builder, s *pattern.Summary) {
	var total int
	var breakdown []string
	for _, m := range s.Metrics {
		switch m.Kind {
		case pattern.KindInfo:
			total = m.Value
		default:
			breakdown = append(breakdown, fmt.Sprintf("%d %s", m.Value, m.Kind))
		}
	}
	sb.WriteString(fmt.Sprintf("SCOPE: %d tests", total))
	if len(breakdown) > 0 {
		sb.WriteString(" (" + strings.Join(breakdown, ", ") + ")")
	}
	sb.WriteString("\n")
}

func (l *Plain) renderDoughnut(sb *strings.Builder, d *pattern.Doughnut) {
	total := d.Total()
	if total == 0 {
		return
	}
	parts := make([]string, 0, len(d.Slices))
	for _, s := range d.Slices {
		parts = append(parts, fmt.Sprintf("%s %d%%", strings.ToLower(s.Label), percent(s.Count, total)))
	}
	sb.WriteString("SHARE: " + strings.Join(parts, ", ") + "\n")
}

func (l *Plain) renderStackedBar(sb *strings.Builder, s *pattern.StackedBar) {
	if len(s.Bars) == 0 {
		return
	}
	maxName := 0
	for _, b := range s.Bars {
		if len(b.Label) > maxName {
			maxName = len(b.Label)
		}
	}
	sb.WriteString("\n## " + s.Label + "\n")
	for _, b := range s.Bars {
		sb.WriteString(fmt.Sprintf("  %s  pass %s  fail %s  blocked %s\n",
			padRight(b.Label, maxName),
			padLeft(strconv.Itoa(b.Passed), 3),
			padLeft(strconv.Itoa(b.Failed), 3),
			padLeft(strconv.Itoa(b.Blocked), 3)))
	}
}

func (l *Plain) renderResultList(sb *strings.Builder, r *pattern.ResultList) {
	sb.WriteString("\n## " + r.Label + "\n")
	if len(r.Groups) == 0 {
		sb.WriteString("  (none)\n")
		return
	}
	for _, g := range r.Groups {
		sb.WriteString(fmt.Sprintf("  %s %s", plainLevel(g.Kind), g.Title))
		if g.Scenario != "" {
			sb.WriteString(" " + g.Scenario)
		}
		sb.WriteString("\n")
		for _, item := range g.Results {
			sb.WriteString(fmt.Sprintf("    %s %s (%s)\n", plainLevel(item.Kind), item.Tester, item.Date))
			if item.Comment == "" {
				continue
			}
			lines := strings.Split(item.Comment, "\n")
			n := len(lines)
			if n > maxCommentLines {
				n = maxCommentLines
			}
			for _, line := range lines[:n] {
				sb.WriteString("      " + line + "\n")
			}
			if len(lines) > maxCommentLines {
				sb.WriteString(fmt.Sprintf("      ... (%d more lines)\n", len(lines)-maxCommentLines))
			}
		}
	}
}

func (l *Plain) renderTesterList(sb *strings.Builder, tl *pattern.TesterList) {
	for _, t := range tl.Testers {
		line := "TESTER: " + t.Name + " " + t.Date
		if len(t.Extras) > 0 {
			line += " [" + strings.Join(t.Extras, ", ") + "]"
		}
		sb.WriteString(line + "\n")
	}
}

func plainLevel(kind string) string {
	switch kind {
	case pattern.KindPass:
		return "PASS"
	case pattern.KindFail:
		return "FAIL"
	case pattern.KindBlocked:
		return "BLOCK"
	default:
		return "NOTE"
	}
}
