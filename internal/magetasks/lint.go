package magetasks

import (
	"errors"
	"fmt"
	"strings"
)

var golangciDisabled = "--disable=exhaustruct,varnamelen,ireturn,wrapcheck,nlreturn,gochecknoglobals,mnd,depguard,tagalign"

// LintAll runs every linter. Missing optional tools are skipped with a warning.
func LintAll() error {
	PrintH2Header("Lint")
	var errs []error
	if err := LintFormat(); err != nil {
		errs = append(errs, err)
	}
	if err := LintVet(); err != nil {
		errs = append(errs, err)
	}
	if err := LintGolangci(); err != nil && !IsCommandNotFound(err) {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	PrintSuccess("All linters passed")
	return nil
}

// LintFormat fails when any file is not gofmt-clean.
func LintFormat() error {
	out, err := output("gofmt", "-l", ".")
	if err != nil {
		return fmt.Errorf("gofmt: %w", err)
	}
	if files := unformatted(out); len(files) > 0 {
		PrintError("Go Format")
		return fmt.Errorf("files need gofmt: %s", strings.Join(files, ", "))
	}
	PrintSuccess("Go Format")
	return nil
}

// unformatted lists the gofmt -l output, ignoring the read-only reference tree.
func unformatted(out string) []string {
	var files []string
	for _, f := range strings.Split(out, "\n") {
		f = strings.TrimSpace(f)
		if f == "" || strings.HasPrefix(f, "_") {
			continue
		}
		files = append(files, f)
	}
	return files
}

// LintVet runs go vet.
func LintVet() error {
	return Run("Go Vet", "go", "vet", "./...")
}

// LintGolangci runs golangci-lint.
func LintGolangci() error {
	return golangci("Golangci-lint", "run", golangciDisabled, "--timeout=5m", "./...")
}

// LintGolangciFix runs golangci-lint with auto-fixes.
func LintGolangciFix() error {
	return golangci("Golangci-lint Fix", "run", "--fix", golangciDisabled, "--timeout=5m", "./...")
}

func golangci(label string, args ...string) error {
	err := Run(label, "golangci-lint", args...)
	if IsCommandNotFound(err) {
		PrintWarning("golangci-lint not found (install: go install github.com/golangci/golangci-lint/v2/cmd/golangci-lint@latest)")
	}
	return err
}
