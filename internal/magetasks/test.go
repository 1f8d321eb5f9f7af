package magetasks

import "fmt"

// TestAll runs all tests.
func TestAll() error {
	PrintH2Header("Tests")
	return Run("Go Test", "go", "test", "./...")
}

// TestCoverage runs tests with coverage and prints the per-function summary.
func TestCoverage() error {
	PrintH2Header("Test Coverage")
	if err := Run("Go Test", "go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	_ = Run("Coverage", "go", "tool", "cover", "-func=coverage.out")
	return nil
}

// TestRace runs tests with the race detector.
func TestRace() error {
	PrintH2Header("Race Detector")
	return Run("Go Test -race", "go", "test", "-race", "./...")
}

// QA runs lint, tests and the build in order, stopping at the first failure
// other than lint warnings.
func QA() error {
	PrintH1Header("qarun Quality Assurance")
	if err := LintAll(); err != nil {
		PrintWarning(fmt.Sprintf("lint issues: %v", err))
	}
	if err := TestAll(); err != nil {
		return fmt.Errorf("tests failed: %w", err)
	}
	if err := BuildAll(); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	PrintSuccess("QA complete")
	return nil
}
