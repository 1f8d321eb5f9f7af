// Package mapper converts analyzer datasets into visualization patterns.
package mapper

import (
	"fmt"
	"strings"

	"github.com/dkoosis/qarun/pkg/analyze"
	"github.com/dkoosis/qarun/pkg/catalogue"
	"github.com/dkoosis/qarun/pkg/pattern"
	"github.com/dkoosis/qarun/pkg/report"
)

// FromDataset builds the analyzer page: tester list, summary cards, status
// doughnut, category bars, then the detail list filtered by tab.
// idx may be nil when no catalogue was given.
func FromDataset(ds *analyze.Dataset, idx *catalogue.Index, tab analyze.Tab) []pattern.Pattern {
	stats := ds.Stats()
	return []pattern.Pattern{
		Testers(ds.Testers),
		Summary(stats),
		Doughnut(stats),
		Categories(stats),
		Results(ds.Groups(tab, idx), tab),
	}
}

// Testers maps the tester display list.
func Testers(testers []analyze.TesterInfo) *pattern.TesterList {
	tl := &pattern.TesterList{Label: "Testers"}
	for _, t := range testers {
		var extras []string
		for _, s := range []string{t.Browser, t.Device, t.Section} {
			if strings.TrimSpace(s) != "" {
				extras = append(extras, s)
			}
		}
		tl.Testers = append(tl.Testers, pattern.TesterItem{Name: t.Name, Date: t.Date, Extras: extras})
	}
	return tl
}

// Summary maps the headline counters.
func Summary(s analyze.Stats) *pattern.Summary {
	return &pattern.Summary{
		Label: fmt.Sprintf("RESULTS: %d tests", s.Total),
		Metrics: []pattern.SummaryItem{
			{Label: "Total Tests", Value: s.Total, Kind: pattern.KindInfo},
			{Label: "Passed", Value: s.Passed, Kind: pattern.KindPass},
			{Label: "Failed", Value: s.Failed, Kind: pattern.KindFail},
			{Label: "Blocked", Value: s.Blocked, Kind: pattern.KindBlocked},
		},
	}
}

// Doughnut maps the overall status share.
func Doughnut(s analyze.Stats) *pattern.Doughnut {
	return &pattern.Doughnut{
		Label: "Status Distribution",
		Slices: []pattern.Slice{
			{Label: "Passed", Count: s.Passed, Kind: pattern.KindPass},
			{Label: "Failed", Count: s.Failed, Kind: pattern.KindFail},
			{Label: "Blocked", Count: s.Blocked, Kind: pattern.KindBlocked},
		},
	}
}

// Categories maps the per-category breakdown.
func Categories(s analyze.Stats) *pattern.StackedBar {
	sb := &pattern.StackedBar{Label: "Results by Category"}
	for _, c := range s.Categories {
		sb.Bars = append(sb.Bars, pattern.Bar{Label: c.Name, Passed: c.Passed, Failed: c.Failed, Blocked: c.Blocked})
	}
	return sb
}

// Results maps grouped entries to the detail list.
func Results(groups []analyze.Group, tab analyze.Tab) *pattern.ResultList {
	rl := &pattern.ResultList{
		Label: fmt.Sprintf("Test Results (%s)", tab),
		Tab:   string(tab),
	}
	for _, g := range groups {
		rg := pattern.ResultGroup{
			ID:       g.ID,
			Title:    g.Label,
			Kind:     Kind(g.Summary),
			Feature:  g.Detail.Feature,
			Scenario: g.Detail.Scenario,
			Steps:    g.Detail.Steps,
			Expected: g.Detail.Expected,
		}
		for _, e := range g.Results {
			rg.Results = append(rg.Results, pattern.ResultItem{
				Tester:  e.Tester,
				Date:    e.Date,
				Status:  string(e.Status),
				Kind:    Kind(e.Status),
				Comment: e.Comment,
			})
		}
		rl.Groups = append(rl.Groups, rg)
	}
	return rl
}

// Kind maps a status to a pattern kind.
func Kind(s report.Status) string {
	switch s.Normalize() {
	case report.StatusPass:
		return pattern.KindPass
	case report.StatusFail:
		return pattern.KindFail
	case report.StatusBlocked:
		return pattern.KindBlocked
	default:
		return pattern.KindInfo
	}
}
