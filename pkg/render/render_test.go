package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dkoosis/qarun/pkg/pattern"
)

func samplePatterns() []pattern.Pattern {
	return []pattern.Pattern{
		&pattern.TesterList{
			Label:   "Testers",
			Testers: []pattern.TesterItem{{Name: "Abebe", Date: "2025-03-01", Extras: []string{"Firefox"}}},
		},
		&pattern.Summary{
			Label: "RESULTS: 5 tests",
			Metrics: []pattern.SummaryItem{
				{Label: "Total Tests", Value: 5, Kind: pattern.KindInfo},
				{Label: "Passed", Value: 3, Kind: pattern.KindPass},
				{Label: "Failed", Value: 1, Kind: pattern.KindFail},
				{Label: "Blocked", Value: 1, Kind: pattern.KindBlocked},
			},
		},
		&pattern.Doughnut{
			Label: "Status Distribution",
			Slices: []pattern.Slice{
				{Label: "Passed", Count: 3, Kind: pattern.KindPass},
				{Label: "Failed", Count: 1, Kind: pattern.KindFail},
				{Label: "Blocked", Count: 1, Kind: pattern.KindBlocked},
			},
		},
		&pattern.StackedBar{
			Label: "Results by Category",
			Bars:  []pattern.Bar{{Label: "WEB-LGN", Passed: 2, Failed: 1}, {Label: "Order Flow", Passed: 1, Blocked: 1}},
		},
		&pattern.ResultList{
			Label: "Test Results (all)",
			Tab:   "all",
			Groups: []pattern.ResultGroup{{
				ID: "WEB-LGN-02", Title: "WEB-LGN-02", Kind: pattern.KindFail, Scenario: "Wrong password",
				Results: []pattern.ResultItem{{Tester: "Abebe", Date: "2025-03-01", Status: "Fail", Kind: pattern.KindFail, Comment: "one\ntwo\nthree\nfour\nfive"}},
			}},
		},
	}
}

func TestTerminal_RendersEveryPattern(t *testing.T) {
	r := NewTerminal(MonoTheme(), 80)
	out := r.Render(samplePatterns())

	for _, want := range []string{"RESULTS: 5 tests", "Total Tests", "Passed 3 (60%)", "WEB-LGN", "Order Flow", "x WEB-LGN-02", "Abebe", "Firefox"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestTerminal_DoughnutFillsBarWidth(t *testing.T) {
	r := NewTerminal(MonoTheme(), 44)
	out := r.renderDoughnut(&pattern.Doughnut{Slices: []pattern.Slice{
		{Label: "Passed", Count: 1, Kind: pattern.KindPass},
		{Label: "Failed", Count: 1, Kind: pattern.KindFail},
		{Label: "Blocked", Count: 1, Kind: pattern.KindBlocked},
	}})
	bar := strings.SplitN(out, "\n", 2)[0]
	if got := strings.Count(bar, "#"); got != 40 {
		t.Errorf("expected 40 bar cells, got %d in %q", got, bar)
	}
	if r.renderDoughnut(&pattern.Doughnut{}) != "" {
		t.Error("empty doughnut should render nothing")
	}
}

func TestTerminal_ResultList_ShowsEmptyFilter(t *testing.T) {
	r := NewTerminal(DefaultTheme(), 80)
	out := r.Render([]pattern.Pattern{&pattern.ResultList{Label: "Test Results (blocked)"}})
	if !strings.Contains(out, "No results for this filter.") {
		t.Errorf("expected empty notice:\n%s", out)
	}
}

func TestPlain_RendersWithoutANSI(t *testing.T) {
	out := NewPlain().Render(samplePatterns())

	if strings.Contains(out, "\x1b[") {
		t.Errorf("plain output must not contain ANSI codes:\n%s", out)
	}
	for _, want := range []string{
		"TESTER: Abebe 2025-03-01 [Firefox]",
		"SCOPE: 5 tests (3 pass, 1 fail, 1 blocked)",
		"SHARE: passed 60%, failed 20%, blocked 20%",
		"WEB-LGN     pass   2  fail   1  blocked   0",
		"FAIL WEB-LGN-02 Wrong password",
		"... (2 more lines)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestJSON_NamesTabSourcesAndTotals(t *testing.T) {
	out := NewJSON(JSONMeta{Generator: "qarun dev", Tab: "fail", Sources: []string{"a.json", "stdin"}}).Render(samplePatterns())

	var doc struct {
		Schema    string   `json:"schema"`
		Generator string   `json:"generator"`
		Tab       string   `json:"tab"`
		Sources   []string `json:"sources"`
		Totals    struct {
			Total, Passed, Failed, Blocked int
		} `json:"totals"`
		Patterns []struct {
			Type string `json:"type"`
		} `json:"patterns"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if doc.Schema != JSONSchema || doc.Generator != "qarun dev" || doc.Tab != "fail" {
		t.Errorf("unexpected header: %+v", doc)
	}
	if len(doc.Sources) != 2 || doc.Sources[1] != "stdin" {
		t.Errorf("unexpected sources %v", doc.Sources)
	}
	if doc.Totals.Total != 5 || doc.Totals.Passed != 3 || doc.Totals.Failed != 1 || doc.Totals.Blocked != 1 {
		t.Errorf("unexpected totals %+v", doc.Totals)
	}
	if len(doc.Patterns) != 5 || doc.Patterns[3].Type != "stacked-bar" {
		t.Errorf("unexpected patterns: %+v", doc.Patterns)
	}
}

func TestJSON_DefaultsWithoutMeta(t *testing.T) {
	out := NewJSON(JSONMeta{}).Render(nil)
	for _, want := range []string{`"tab": "all"`, `"sources": []`, `"patterns": []`, `"total": 0`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in:\n%s", want, out)
		}
	}
}

func TestTheme_ForKind(t *testing.T) {
	th := MonoTheme()
	for kind, want := range map[string]string{
		pattern.KindPass: "+", pattern.KindFail: "x", pattern.KindBlocked: "!", pattern.KindInfo: "*", "other": "*",
	} {
		if icon, _ := th.ForKind(kind); icon != want {
			t.Errorf("ForKind(%q) icon = %q, want %q", kind, icon, want)
		}
	}
}

func TestThemeByName(t *testing.T) {
	for _, name := range ThemeNames {
		if got := ThemeByName(name).Name; got != name {
			t.Errorf("ThemeByName(%q).Name = %q", name, got)
		}
	}
	if ThemeByName("neon").Name != "default" {
		t.Error("unknown theme should fall back to default")
	}
}

func TestPadding_UsesDisplayWidth(t *testing.T) {
	if got := padRight("日本", 6); got != "日本  " {
		t.Errorf("padRight wide runes = %q", got)
	}
	if got := padLeft("7", 3); got != "  7" {
		t.Errorf("padLeft = %q", got)
	}
	if got := truncate("abcdefghij", 6); got != "abc..." {
		t.Errorf("truncate = %q", got)
	}
}
