package analyze

import (
	"fmt"
	"strings"

	"github.com/dkoosis/qarun/pkg/catalogue"
	"github.com/dkoosis/qarun/pkg/report"
)

// CategoryStats tallies the statuses of one category.
type CategoryStats struct {
	Name    string
	Passed  int
	Failed  int
	Blocked int
}

// Total returns the categorised verdicts.
func (c CategoryStats) Total() int { return c.Passed + c.Failed + c.Blocked }

// Stats is the aggregate over a set of entries.
type Stats struct {
	Total      int
	Passed     int
	Failed     int
	Blocked    int
	Categories []CategoryStats
}

// Category returns the chart category of e: its feature, else the id up to
// the last dash, else the id, else "Other".
func Category(e Entry) string {
	if f := strings.TrimSpace(e.Feature); f != "" {
		return f
	}
	if i := strings.LastIndexByte(e.ID, '-'); i > 0 {
		return e.ID[:i]
	}
	// An id without a dash is its own category.
	if e.ID != "" {
		return e.ID
	}
	return "Other"
}

// ComputeStats tallies entries from scratch. Categories appear in order of
// first occurrence. Entries with an unrecognised status count toward Total only.
func ComputeStats(entries []Entry) Stats {
	var s Stats
	pos := map[string]int{}

	for _, e := range entries {
		s.Total++
		name := Category(e)
		i, ok := pos[name]
		if !ok {
			i = len(s.Categories)
			pos[name] = i
			s.Categories = append(s.Categories, CategoryStats{Name: name})
		}
		cat := &s.Categories[i]

		switch e.Status.Normalize() {
		case report.StatusPass:
			s.Passed++
			cat.Passed++
		case report.StatusFail:
			s.Failed++
			cat.Failed++
		case report.StatusBlocked:
			s.Blocked++
			cat.Blocked++
		}
	}
	return s
}

// Tab selects which entries the detail list shows.
type Tab string

const (
	TabAll     Tab = "all"
	TabPass    Tab = "pass"
	TabFail    Tab = "fail"
	TabBlocked Tab = "blocked"
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{TabAll, TabPass, TabFail, TabBlocked}

// ParseTab matches s case-insensitively. Empty means TabAll.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return TabAll, nil
	case TabAll, TabPass, TabFail, TabBlocked:
		return t, nil
	default:
		return "", fmt.Errorf("unknown tab %q (want all, pass, fail or blocked)", s)
	}
}

// Status returns the status a tab filters on, or "" for TabAll.
func (t Tab) Status() report.Status {
	switch t {
	case TabPass:
		return report.StatusPass
	case TabFail:
		return report.StatusFail
	case TabBlocked:
		return report.StatusBlocked
	default:
		return report.StatusUnset
	}
}

// Filter returns the entries shown under tab as a new slice.
func Filter(entries []Entry, tab Tab) []Entry {
	want := tab.Status()
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if want == report.StatusUnset || e.Status.Normalize() == want {
			out = append(out, e)
		}
	}
	return out
}

// Detail is the catalogue description of a grouped test id.
type Detail struct {
	Feature  string
	Scenario string
	Steps    []string
	Expected string
}

// Group is the detail-list entry for one test id.
type Group struct {
	ID      string
	Label   string
	Summary report.Status
	Results []Entry
	Detail  Detail
}

// GroupByID groups entries by test id in order of first occurrence. Entries
// without an id each get their own "Response N" group. idx may be nil; ids the
// catalogue does not know fall back to "N/A" details.
func GroupByID(entries []Entry, idx *catalogue.Index) []Group {
	var groups []Group
	pos := map[string]int{}
	anon := 0

	for _, e := range entries {
		if e.ID == "" {
			anon++
			groups = append(groups, Group{Label: fmt.Sprintf("Response %d", anon), Results: []Entry{e}})
			continue
		}
		i, ok := pos[e.ID]
		if !ok {
			i = len(groups)
			pos[e.ID] = i
			groups = append(groups, Group{ID: e.ID, Label: e.ID})
		}
		groups[i].Results = append(groups[i].Results, e)
	}

	for i := range groups {
		g := &groups[i]
		g.Summary = summaryStatus(g.Results)
		g.Detail = detailFor(g.ID, g.Results, idx)
	}
	return groups
}

// summaryStatus ranks fail over blocked over pass.
func summaryStatus(results []Entry) report.Status {
	var sawBlocked, sawPass bool
	for _, e := range results {
		switch e.Status.Normalize() {
		case report.StatusFail:
			return report.StatusFail
		case report.StatusBlocked:
			sawBlocked = true
		case report.StatusPass:
			sawPass = true
		}
	}
	switch {
	case sawBlocked:
		return report.StatusBlocked
	case sawPass:
		return report.StatusPass
	case len(results) > 0:
		return results[0].Status
	default:
		return report.StatusUnset
	}
}

// detailFor prefers the catalogue, then whatever the reports embedded, then N/A.
func detailFor(id string, results []Entry, idx *catalogue.Index) Detail {
	d := Detail{Feature: NotAvailable, Scenario: NotAvailable, Steps: []string{NotAvailable}, Expected: NotAvailable}
	for _, e := range results {
		if d.Feature == NotAvailable && strings.TrimSpace(e.Feature) != "" {
			d.Feature = e.Feature
		}
		if d.Scenario == NotAvailable && strings.TrimSpace(e.Scenario) != "" {
			d.Scenario = e.Scenario
		}
		if d.Steps[0] == NotAvailable {
			if steps := (catalogue.TestCase{Steps: e.Steps}).StepList(); len(steps) > 0 {
				d.Steps = steps
			}
		}
		if d.Expected == NotAvailable && strings.TrimSpace(e.Expected) != "" {
			d.Expected = e.Expected
		}
	}

	tc, ok := idx.Lookup(id)
	if !ok {
		return d
	}
	if tc.Feature != "" {
		d.Feature = tc.Feature
	}
	if tc.Scenario != "" {
		d.Scenario = tc.Scenario
	}
	if steps := tc.StepList(); len(steps) > 0 {
		d.Steps = steps
	}
	if tc.ExpectedResult != "" {
		d.Expected = tc.ExpectedResult
	}
	return d
}
