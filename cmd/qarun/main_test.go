package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/dkoosis/qarun/internal/kv"
	"github.com/dkoosis/qarun/pkg/analyze"
	"github.com/dkoosis/qarun/pkg/report"
	"github.com/dkoosis/qarun/pkg/session"
	"github.com/dkoosis/qarun/pkg/tui"
	"github.com/dkoosis/qarun/pkg/walkthrough"
	"github.com/dkoosis/qarun/pkg/wizard"
)

const testCatalogue = `{
  "web_application": {"login": [
    {"id": "WEB-LGN-01", "feature": "Login", "scenario": "Valid login", "steps": "1. Open\n2. Sign in", "expected_result": "Dashboard"},
    {"id": "WEB-LGN-02", "feature": "Login", "scenario": "Wrong password"}
  ]}
}`

const (
	passingReport = `{"testerName":"Abebe","testDate":"2025-03-01","results":[
		{"id":"WEB-LGN-01","scenario":"Valid login","status":"Pass","comment":""}]}`
	failingReport = `{"testerName":"Sara","testDate":"2025-03-02","results":[
		{"id":"WEB-LGN-01","scenario":"Valid login","status":"Blocked","comment":"vpn down"},
		{"id":"WEB-LGN-02","scenario":"Wrong password","status":"Fail","comment":"no message shown"}]}`
)

const storePath = "/state/state.json"

// isolate keeps the developer's config and environment out of the run.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("NO_COLOR", "")
	for _, k := range []string{"CATALOGUE", "CATALOGUE_KEY", "STORE", "STORE_PATH", "OUTPUT_DIR", "THEME", "DEV_MODE", "DEBUG"} {
		t.Setenv("QARUN_"+k, "")
		os.Unsetenv("QARUN_" + k)
	}
}

func newFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, data := range files {
		if err := afero.WriteFile(fs, name, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

type result struct {
	code   int
	stdout string
	stderr string
}

func execute(t *testing.T, fs afero.Fs, stdin string, tty bool, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := newApp(fs, strings.NewReader(stdin), &stdout, &stderr)
	a.isTTY = func(io.Writer) bool { return tty }
	code := a.execute(context.Background(), args)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestVersion_PrintsBuildIdentity(t *testing.T) {
	isolate(t)
	r := execute(t, afero.NewMemMapFs(), "", false, "version")
	if r.code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", r.code, r.stderr)
	}
	if !strings.HasPrefix(r.stdout, "qarun dev") {
		t.Errorf("unexpected version output: %q", r.stdout)
	}
}

func TestUsageErrors_ExitTwo(t *testing.T) {
	isolate(t)
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"analyze", "--bogus"}},
		{"unknown command", []string{"frobnicate"}},
		{"unexpected argument", []string{"reset", "extra"}},
		{"bad store", []string{"reset", "--store", "redis"}},
		{"bad format", []string{"analyze", "--format", "xml", "/r/a.json"}},
		{"bad tab", []string{"analyze", "--tab", "skipped", "/r/a.json"}},
		{"missing explicit config", []string{"reset", "--config", "/nope.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFs(t, map[string]string{"/r/a.json": passingReport})
			r := execute(t, fs, "", false, tt.args...)
			if r.code != 2 {
				t.Errorf("expected exit 2, got %d (stderr %q)", r.code, r.stderr)
			}
		})
	}
}

func TestAnalyze_PlainOutput_ExitsOneOnFailure(t *testing.T) {
	isolate(t)
	fs := newFs(t, map[string]string{
		"catalogue.json": testCatalogue,
		"/r/a.json":      passingReport,
		"/r/b.json":      failingReport,
	})

	r := execute(t, fs, "", false, "analyze", "/r/a.json", "/r/b.json")
	if r.code != 1 {
		t.Fatalf("expected exit 1 with a failed result, got %d: %s", r.code, r.stderr)
	}
	if !strings.Contains(r.stdout, "SCOPE: 3 tests") {
		t.Errorf("missing SCOPE line; got:\n%s", r.stdout)
	}
	for _, want := range []string{"Abebe", "Sara", "WEB-LGN-02"} {
		if !strings.Contains(r.stdout, want) {
			t.Errorf("output missing %q; got:\n%s", want, r.stdout)
		}
	}
	if strings.Contains(r.stdout, "\033[") {
		t.Error("plain output contains ANSI escape codes")
	}
}

func TestAnalyze_AllPassing_ExitsZero(t *testing.T) {
	isolate(t)
	fs := newFs(t, map[string]string{"/r/a.json": passingReport})
	r := execute(t, fs, "", false, "analyze", "/r/a.json")
	if r.code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", r.code, r.stderr)
	}
}

func TestAnalyze_ReadsStdin(t *testing.T) {
	isolate(t)
	r := execute(t, afero.NewMemMapFs(), failingReport, false, "analyze", "--format", "json")
	if r.code != 1 {
		t.Fatalf("expected exit 1, got %d: %s", r.code, r.stderr)
	}
	if !strings.Contains(r.stdout, `"WEB-LGN-02"`) {
		t.Errorf("JSON output missing result id; got:\n%s", r.stdout)
	}
	for _, want := range []string{`"sources": [`, `"stdin"`, `"tab": "all"`, `"failed": 1`} {
		if !strings.Contains(r.stdout, want) {
			t.Errorf("JSON output missing %s; got:\n%s", want, r.stdout)
		}
	}
}

func TestAnalyze_JSON_NamesFilesAndTab(t *testing.T) {
	isolate(t)
	fs := newFs(t, map[string]string{"/r/a.json": passingReport, "/r/b.json": failingReport})
	r := execute(t, fs, "", false, "analyze", "--format", "json", "--tab", "blocked", "/r/a.json", "/r/b.json")
	if r.code != 1 {
		t.Fatalf("expected exit 1, got %d: %s", r.code, r.stderr)
	}
	var doc struct {
		Tab     string   `json:"tab"`
		Sources []string `json:"sources"`
	}
	if err := json.Unmarshal([]byte(r.stdout), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, r.stdout)
	}
	if doc.Tab != "blocked" || len(doc.Sources) != 2 || doc.Sources[0] != "/r/a.json" {
		t.Errorf("unexpected envelope %+v", doc)
	}
}

func TestAnalyze_BadFile_ReportedButOthersUsed(t *testing.T) {
	isolate(t)
	fs := newFs(t, map[string]string{
		"/r/a.json":   passingReport,
		"/r/bad.json": "not json",
	})
	r := execute(t, fs, "", false, "analyze", "/r/a.json", "/r/bad.json", "/r/missing.json")
	if r.code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", r.code, r.stderr)
	}
	if !strings.Contains(r.stderr, "/r/bad.json") || !strings.Contains(r.stderr, "/r/missing.json") {
		t.Errorf("stderr should name both unusable files; got %q", r.stderr)
	}
}

func TestAnalyze_NoResults_ExitsTwo(t *testing.T) {
	isolate(t)
	fs := newFs(t, map[string]string{"/r/empty.json": `{"results":[{"id":"A-1"}]}`})
	r := execute(t, fs, "", false, "analyze", "/r/empty.json")
	if r.code != 2 {
		t.Fatalf("expected exit 2, got %d", r.code)
	}
	if !strings.Contains(r.stderr, "no test results") {
		t.Errorf("unexpected stderr %q", r.stderr)
	}
}

func TestAnalyze_WatchRejectsStdin(t *testing.T) {
	isolate(t)
	r := execute(t, afero.NewMemMapFs(), passingReport, false, "analyze", "--watch", "-")
	if r.code != 2 {
		t.Fatalf("expected exit 2, got %d", r.code)
	}
}

func TestAnalyze_Interactive_RequiresTerminal(t *testing.T) {
	isolate(t)
	fs := newFs(t, map[string]string{"/r/a.json": passingReport})
	r := execute(t, fs, "", false, "analyze", "-i", "/r/a.json")
	if r.code != 2 {
		t.Fatalf("expected exit 2, got %d", r.code)
	}
}

func TestAnalyze_Interactive_OpensDashboard(t *testing.T) {
	isolate(t)
	var got tui.AnalyzerOptions
	orig := runDashboard
	runDashboard = func(_ context.Context, _ *analyze.Dataset, opts tui.AnalyzerOptions, updates <-chan tui.DatasetMsg) error {
		got = opts
		if updates != nil {
			t.Error("updates channel should be nil without --watch")
		}
		return nil
	}
	t.Cleanup(func() { runDashboard = orig })

	fs := newFs(t, map[string]string{"catalogue.json": testCatalogue, "/r/b.json": failingReport})
	r := execute(t, fs, "", true, "analyze", "-i", "--tab", "fail", "/r/b.json")
	if r.code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", r.code, r.stderr)
	}
	if got.Tab != analyze.TabFail {
		t.Errorf("expected fail tab, got %v", got.Tab)
	}
	if got.Index == nil {
		t.Error("expected catalogue index to be passed to the dashboard")
	}
}

func TestRun_RequiresTerminal(t *testing.T) {
	isolate(t)
	fs := newFs(t, map[string]string{"catalogue.json": testCatalogue})
	r := execute(t, fs, "", false, "run")
	if r.code != 2 {
		t.Fatalf("expected exit 2, got %d", r.code)
	}
}

func TestRun_MissingCatalogue_ExitsTwo(t *testing.T) {
	isolate(t)
	r := execute(t, afero.NewMemMapFs(), "", true, "run", "--store", "memory")
	if r.code != 2 {
		t.Fatalf("expected exit 2, got %d", r.code)
	}
	if !strings.Contains(r.stderr, "read catalogue") {
		t.Errorf("unexpected stderr %q", r.stderr)
	}
}

func TestRun_PrintsSubmission_And_TourHintUntilToured(t *testing.T) {
	isolate(t)
	orig := runTUI
	t.Cleanup(func() { runTUI = orig })

	fs := newFs(t, map[string]string{"catalogue.json": testCatalogue})
	args := []string{"--store", "file", "--store-path", storePath, "--output-dir", "/reports"}

	runTUI = func(_ context.Context, s *wizard.Session, opts tui.WizardOptions) (*wizard.Submission, error) {
		if opts.Tour != nil {
			t.Error("run should not start the tour")
		}
		if s.Plan().Total() != 2 {
			t.Errorf("expected 2 steps, got %d", s.Plan().Total())
		}
		return &wizard.Submission{
			Path:   "/reports/test-results_abebe_2025-03-01.json",
			Report: &report.Report{Results: make([]report.Result, 2)},
		}, nil
	}
	r := execute(t, fs, "", true, append([]string{"run"}, args...)...)
	if r.code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", r.code, r.stderr)
	}
	if !strings.Contains(r.stdout, "Report written to /reports/test-results_abebe_2025-03-01.json (2 results)") {
		t.Errorf("unexpected stdout %q", r.stdout)
	}
	if !strings.Contains(r.stderr, "qarun tour") {
		t.Errorf("expected tour hint, got %q", r.stderr)
	}

	runTUI = func(ctx context.Context, s *wizard.Session, opts tui.WizardOptions) (*wizard.Submission, error) {
		if opts.Tour == nil || opts.OnTourDone == nil {
			t.Fatal("tour should run with an overlay and completion hook")
		}
		if !s.DevMode() {
			t.Error("tour session should relax validation")
		}
		return nil, opts.OnTourDone(ctx)
	}
	if r := execute(t, fs, "", true, append([]string{"tour"}, args...)...); r.code != 0 {
		t.Fatalf("tour: expected exit 0, got %d: %s", r.code, r.stderr)
	}

	runTUI = func(context.Context, *wizard.Session, tui.WizardOptions) (*wizard.Submission, error) {
		return nil, nil
	}
	r = execute(t, fs, "", true, append([]string{"run"}, args...)...)
	if r.code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", r.code, r.stderr)
	}
	if strings.Contains(r.stderr, "qarun tour") {
		t.Errorf("tour hint should stop after the tour, got %q", r.stderr)
	}

	if r := execute(t, fs, "", false, append([]string{"tour", "--reset"}, args...)...); r.code != 0 {
		t.Fatalf("tour --reset: expected exit 0, got %d: %s", r.code, r.stderr)
	}
	store, err := kv.NewFile(fs, storePath)
	if err != nil {
		t.Fatal(err)
	}
	if done, _ := walkthrough.Completed(context.Background(), store); done {
		t.Error("tour --reset should forget completion")
	}
}

func TestReset_ClearsProgress_KeepsTesterUnlessAsked(t *testing.T) {
	isolate(t)
	ctx := context.Background()
	fs := afero.NewMemMapFs()

	seed := func() session.Keys {
		store, err := kv.NewFile(fs, storePath)
		if err != nil {
			t.Fatal(err)
		}
		keys := session.NewPersister(store, "", nil).Keys()
		for _, k := range []string{keys.Step, keys.MaxStep, keys.FormData, session.TesterKey} {
			if err := store.Set(ctx, k, `"x"`); err != nil {
				t.Fatal(err)
			}
		}
		return keys
	}
	has := func(key string) bool {
		store, err := kv.NewFile(fs, storePath)
		if err != nil {
			t.Fatal(err)
		}
		_, ok, err := store.Get(ctx, key)
		if err != nil {
			t.Fatal(err)
		}
		return ok
	}

	keys := seed()
	r := execute(t, fs, "", false, "reset", "--store", "file", "--store-path", storePath)
	if r.code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", r.code, r.stderr)
	}
	if !strings.Contains(r.stdout, "Progress cleared for the whole catalogue.") {
		t.Errorf("unexpected stdout %q", r.stdout)
	}
	for _, k := range []string{keys.Step, keys.MaxStep, keys.FormData} {
		if has(k) {
			t.Errorf("%s should be cleared", k)
		}
	}
	if !has(session.TesterKey) {
		t.Error("tester details should survive a plain reset")
	}

	seed()
	r = execute(t, fs, "", false, "reset", "--tester", "--store", "file", "--store-path", storePath)
	if r.code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", r.code, r.stderr)
	}
	if has(session.TesterKey) {
		t.Error("reset --tester should forget the tester")
	}
}

func TestReset_AllSections_ClearsEveryProgressKey(t *testing.T) {
	isolate(t)
	ctx := context.Background()
	fs := afero.NewMemMapFs()

	store, err := kv.NewFile(fs, storePath)
	if err != nil {
		t.Fatal(err)
	}
	var progress []string
	for _, section := range []string{"", "web_application.login", "mobile_application"} {
		progress = append(progress, session.KeysFor(section).All()...)
	}
	for _, k := range append(progress, session.TesterKey, walkthrough.DoneKey) {
		if err := store.Set(ctx, k, "1"); err != nil {
			t.Fatal(err)
		}
	}

	r := execute(t, fs, "", false, "reset", "--all-sections", "--store", "file", "--store-path", storePath)
	if r.code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", r.code, r.stderr)
	}
	if !strings.Contains(r.stdout, "Progress cleared for every section.") {
		t.Errorf("unexpected stdout %q", r.stdout)
	}

	again, err := kv.NewFile(fs, storePath)
	if err != nil {
		t.Fatal(err)
	}
	keys, err := again.Keys(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{session.TesterKey, walkthrough.DoneKey}
	if len(keys) != len(want) || keys[0] != want[0] || keys[1] != want[1] {
		t.Errorf("expected only %v to remain, got %v", want, keys)
	}
}

func TestRun_RecoversFromCorruptStateFile(t *testing.T) {
	isolate(t)
	orig := runTUI
	t.Cleanup(func() { runTUI = orig })

	fs := newFs(t, map[string]string{"catalogue.json": testCatalogue, storePath: "{not json"})
	runTUI = func(_ context.Context, s *wizard.Session, _ tui.WizardOptions) (*wizard.Submission, error) {
		if s.Restored() {
			t.Error("an unreadable state file should not restore progress")
		}
		return nil, nil
	}

	r := execute(t, fs, "", true, "run", "--store", "file", "--store-path", storePath)
	if r.code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", r.code, r.stderr)
	}
	if ok, _ := afero.Exists(fs, storePath+".corrupt"); !ok {
		t.Error("the unreadable state file should be kept aside")
	}

	if err := afero.WriteFile(fs, storePath, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if r := execute(t, fs, "", false, "reset", "--store", "file", "--store-path", storePath); r.code != 0 {
		t.Fatalf("reset: expected exit 0, got %d: %s", r.code, r.stderr)
	}
}

func TestResolveFormat(t *testing.T) {
	tty := func(io.Writer) bool { return true }
	pipe := func(io.Writer) bool { return false }
	tests := []struct {
		format string
		isTTY  func(io.Writer) bool
		want   string
	}{
		{"auto", tty, "terminal"},
		{"auto", pipe, "plain"},
		{"json", tty, "json"},
		{"terminal", pipe, "terminal"},
	}
	for _, tt := range tests {
		if got := resolveFormat(tt.format, io.Discard, tt.isTTY); got != tt.want {
			t.Errorf("resolveFormat(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}
