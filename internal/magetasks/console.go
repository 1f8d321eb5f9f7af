package magetasks

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Out receives everything the tasks print.
var Out io.Writer = os.Stdout

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5F87FF"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	infoStyle    = lipgloss.NewStyle().Faint(true)
)

// PrintH1Header prints a top-level header with decoration.
func PrintH1Header(title string) {
	width := 80
	rule := strings.Repeat("=", width)
	padding := max(0, (width-len(title))/2)
	fmt.Fprintf(Out, "\n%s\n%s%s\n%s\n\n", rule, strings.Repeat(" ", padding), headerStyle.Render(title), rule)
}

// PrintH2Header prints a section header.
func PrintH2Header(title string) {
	fmt.Fprintf(Out, "\n=== %s ===\n\n", headerStyle.Render(title))
}

// PrintSuccess prints a success message.
func PrintSuccess(msg string) {
	fmt.Fprintln(Out, successStyle.Render("✔ "+msg))
}

// PrintWarning prints a warning message.
func PrintWarning(msg string) {
	fmt.Fprintln(Out, warningStyle.Render("! "+msg))
}

// PrintError prints an error message.
func PrintError(msg string) {
	fmt.Fprintln(Out, errorStyle.Render("✘ "+msg))
}

// PrintInfo prints an info message.
func PrintInfo(msg string) {
	fmt.Fprintln(Out, infoStyle.Render("i "+msg))
}
