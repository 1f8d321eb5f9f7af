// Package render provides output renderers for qarun's visualization patterns.
package render

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/dkoosis/qarun/pkg/pattern"
)

// Renderer converts patterns to formatted output.
type Renderer interface {
	Render(patterns []pattern.Pattern) string
}

// percent returns n as a whole percentage of total.
func percent(n, total int) int {
	if total <= 0 {
		return 0
	}
	return (n*100 + total/2) / total
}

// scale maps n out of "of" onto width cells, keeping any non-zero count visible.
func scale(n, of, width int) int {
	if n <= 0 || of <= 0 || width <= 0 {
		return 0
	}
	cells := n * width / of
	if cells == 0 {
		cells = 1
	}
	return cells
}

func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "...")
}

func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func padLeft(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return strings.Repeat(" ", width-w) + s
}
