package analyze

import (
	"strings"

	"github.com/dkoosis/qarun/pkg/catalogue"
	"github.com/dkoosis/qarun/pkg/report"
)

// NotAvailable replaces missing tester or catalogue text.
const NotAvailable = "N/A"

// Entry is one tester's verdict on one test case.
type Entry struct {
	ID       string
	Scenario string
	Feature  string
	Status   report.Status
	Comment  string
	Tester   string
	Date     string
	Source   string

	// Set only by reports that embed the test case.
	Steps    string
	Expected string
}

// TesterInfo is one line of the tester list shown above the charts.
type TesterInfo struct {
	Name    string
	Date    string
	Browser string
	Device  string
	Section string
	Source  string
}

// Dataset is the merged, read-only result set of every loaded file.
type Dataset struct {
	Entries []Entry
	Testers []TesterInfo
}

// NewDataset concatenates the uploads in order. Entries without a status
// are dropped. An empty result is ErrNoResults.
func NewDataset(uploads []*Upload) (*Dataset, error) {
	ds := &Dataset{}
	seen := map[TesterInfo]bool{}

	for _, u := range uploads {
		r := u.Report
		name := orNA(r.TesterName)
		date := orNA(r.TestDate)

		info := TesterInfo{Name: name, Date: date}
		if r.Info != nil {
			info.Browser = r.Info.Browser
			info.Device = r.Info.Device
			info.Section = r.Info.AppSection
		}
		if !seen[info] {
			seen[info] = true
			info.Source = u.Name
			ds.Testers = append(ds.Testers, info)
		}

		for _, res := range r.Results {
			status := res.Status.Normalize()
			if strings.TrimSpace(string(status)) == "" {
				continue
			}
			ds.Entries = append(ds.Entries, Entry{
				ID:       strings.TrimSpace(res.ID),
				Scenario: res.Scenario,
				Feature:  res.Feature,
				Status:   status,
				Comment:  res.Comment,
				Tester:   name,
				Date:     date,
				Source:   u.Name,
				Steps:    res.Steps,
				Expected: res.ExpectedResult,
			})
		}
	}

	if len(ds.Entries) == 0 {
		return nil, ErrNoResults
	}
	return ds, nil
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return strings.TrimSpace(s)
}

// Stats recomputes the aggregate over every entry.
func (ds *Dataset) Stats() Stats { return ComputeStats(ds.Entries) }

// Groups returns the detail list for tab.
func (ds *Dataset) Groups(tab Tab, idx *catalogue.Index) []Group {
	return GroupByID(Filter(ds.Entries, tab), idx)
}
