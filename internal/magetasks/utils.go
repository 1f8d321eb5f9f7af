package magetasks

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// IsCommandNotFound checks if the error indicates the command was not found.
// This handles exec.ErrNotFound and platform-specific string fallbacks.
func IsCommandNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "executable file not found") ||
		strings.Contains(errStr, "no such file or directory")
}

// Run executes name with args in the project root, streaming its output to
// Out, and reports the result under label.
func Run(label, name string, args ...string) error {
	PrintInfo(label + ": " + name + " " + strings.Join(args, " "))
	cmd := exec.Command(name, args...)
	cmd.Dir = ProjectRoot
	cmd.Stdout = Out
	cmd.Stderr = Out
	if err := cmd.Run(); err != nil {
		if IsCommandNotFound(err) {
			return err
		}
		PrintError(label + " failed")
		return fmt.Errorf("%s: %w", label, err)
	}
	PrintSuccess(label)
	return nil
}

// output runs name and returns its trimmed stdout.
func output(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = ProjectRoot
	out, err := cmd.Output()
	return strings.TrimSpace(string(out)), err
}
