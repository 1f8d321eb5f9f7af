package magetasks

import (
	"strings"
	"testing"
	"time"
)

func TestLDFlags_StampsVersionPackage(t *testing.T) {
	got := LDFlags("v1.2.0", "abc1234", time.Date(2025, 3, 1, 9, 0, 0, 0, time.FixedZone("EAT", 3*3600)))
	for _, want := range []string{
		"-X 'github.com/dkoosis/qarun/internal/version.Version=v1.2.0'",
		"-X 'github.com/dkoosis/qarun/internal/version.CommitHash=abc1234'",
		"-X 'github.com/dkoosis/qarun/internal/version.BuildDate=2025-03-01T06:00:00Z'",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("LDFlags() = %q, missing %q", got, want)
		}
	}
}

func TestUnformatted_SkipsReferenceTree(t *testing.T) {
	got := unformatted("pkg/a.go\n_examples/x/y.go\n\ncmd/qarun/main.go\n")
	if len(got) != 2 || got[0] != "pkg/a.go" || got[1] != "cmd/qarun/main.go" {
		t.Errorf("unformatted() = %v", got)
	}
}
