package mapper

import (
	"testing"

	"github.com/dkoosis/qarun/pkg/analyze"
	"github.com/dkoosis/qarun/pkg/pattern"
	"github.com/dkoosis/qarun/pkg/report"
)

func testDataset(t *testing.T) *analyze.Dataset {
	t.Helper()
	u, err := analyze.Decode("a.json", []byte(`{"testerName":"Abebe","testDate":"2025-03-01","results":[
		{"id":"WEB-LGN-01","scenario":"Login","status":"Pass","comment":""},
		{"id":"WEB-LGN-02","scenario":"Bad password","status":"Fail","comment":"no error shown"},
		{"id":"MOB-DRV-01","scenario":"Accept","status":"Blocked","comment":"no device"}
	],"info":{"browser":"Firefox","appSection":"web_application"}}`))
	if err != nil {
		t.Fatal(err)
	}
	ds, err := analyze.NewDataset([]*analyze.Upload{u})
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestFromDataset_EmitsPageInOrder(t *testing.T) {
	patterns := FromDataset(testDataset(t), nil, analyze.TabAll)

	want := []pattern.PatternType{
		pattern.PatternTypeTesterList,
		pattern.PatternTypeSummary,
		pattern.PatternTypeDoughnut,
		pattern.PatternTypeStackedBar,
		pattern.PatternTypeResultList,
	}
	if len(patterns) != len(want) {
		t.Fatalf("expected %d patterns, got %d", len(want), len(patterns))
	}
	for i, p := range patterns {
		if p.Type() != want[i] {
			t.Errorf("pattern %d: expected %s, got %s", i, want[i], p.Type())
		}
	}

	sum := patterns[1].(*pattern.Summary)
	if sum.Metrics[0].Value != 3 || sum.Metrics[2].Value != 1 {
		t.Errorf("unexpected summary metrics: %+v", sum.Metrics)
	}

	tl := patterns[0].(*pattern.TesterList)
	if got := tl.Testers[0].Extras; len(got) != 2 || got[0] != "Firefox" {
		t.Errorf("expected browser and section extras, got %v", got)
	}
}

func TestFromDataset_FiltersResultListByTab(t *testing.T) {
	patterns := FromDataset(testDataset(t), nil, analyze.TabFail)

	rl, ok := patterns[4].(*pattern.ResultList)
	if !ok {
		t.Fatalf("expected ResultList, got %T", patterns[4])
	}
	if len(rl.Groups) != 1 || rl.Groups[0].ID != "WEB-LGN-02" {
		t.Fatalf("expected only the failing group, got %+v", rl.Groups)
	}
	if rl.Groups[0].Kind != pattern.KindFail {
		t.Errorf("expected fail kind, got %q", rl.Groups[0].Kind)
	}
	if rl.Groups[0].Expected != analyze.NotAvailable {
		t.Errorf("expected N/A without a catalogue, got %q", rl.Groups[0].Expected)
	}

	dn := patterns[2].(*pattern.Doughnut)
	if dn.Total() != 3 {
		t.Errorf("doughnut covers every entry regardless of tab, got %d", dn.Total())
	}
}

func TestCategories_KeepsFirstSeenOrder(t *testing.T) {
	sb := Categories(testDataset(t).Stats())
	if len(sb.Bars) != 2 || sb.Bars[0].Label != "WEB-LGN" || sb.Bars[1].Label != "MOB-DRV" {
		t.Fatalf("unexpected bars: %+v", sb.Bars)
	}
	if sb.Max() != 2 {
		t.Errorf("expected tallest bar 2, got %d", sb.Max())
	}
}

func TestKind(t *testing.T) {
	cases := map[report.Status]string{
		"pass":    pattern.KindPass,
		"FAIL":    pattern.KindFail,
		"Blocked": pattern.KindBlocked,
		"skipped": pattern.KindInfo,
	}
	for in, want := range cases {
		if got := Kind(in); got != want {
			t.Errorf("Kind(%q) = %q, want %q", in, got, want)
		}
	}
}
