package magetasks

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LDFlags returns the linker flags that stamp internal/version.
func LDFlags(version, commit string, built time.Time) string {
	pkg := ModulePath + "/internal/version"
	return fmt.Sprintf("-s -w -X '%s.Version=%s' -X '%s.CommitHash=%s' -X '%s.BuildDate=%s'",
		pkg, version, pkg, commit, pkg, built.UTC().Format(time.RFC3339))
}

// BuildAll builds the qarun binary into BinPath.
func BuildAll() error {
	PrintH2Header("Build")
	ldflags := LDFlags(gitVersion(), gitCommit(), time.Now())
	if err := Run("Go Build", "go", "build", "-ldflags", ldflags, "-o", BinPath, MainPackage); err != nil {
		return err
	}
	PrintSuccess("Built: " + BinPath)
	return nil
}

// Install installs qarun into GOBIN.
func Install() error {
	PrintH2Header("Install")
	ldflags := LDFlags(gitVersion(), gitCommit(), time.Now())
	return Run("Go Install", "go", "install", "-ldflags", ldflags, MainPackage)
}

// Clean removes build artifacts.
func Clean() error {
	PrintH2Header("Clean")
	for _, p := range []string{"bin", "coverage.out"} {
		if err := os.RemoveAll(filepath.Join(ProjectRoot, p)); err != nil {
			return err
		}
	}
	PrintSuccess("Cleaned build artifacts")
	return nil
}

func gitVersion() string {
	v, err := output("git", "describe", "--tags", "--always", "--dirty", "--match=v*")
	if err != nil || v == "" {
		return "dev"
	}
	return v
}

func gitCommit() string {
	c, err := output("git", "rev-parse", "--short", "HEAD")
	if err != nil || c == "" {
		return "unknown"
	}
	return c
}
