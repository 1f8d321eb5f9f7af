// Package export assembles the results report from form values and writes it to disk.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/dkoosis/qarun/pkg/catalogue"
	"github.com/dkoosis/qarun/pkg/form"
	"github.com/dkoosis/qarun/pkg/report"
)

// Meta is the session metadata stamped into the report's info block.
type Meta struct {
	Section   string
	SessionID string    // generated when empty
	Now       time.Time // zero means time.Now
}

// Build collects every answered test case, in catalogue order, into a report.
// Unanswered cases are left out. The result list is never nil.
func Build(values form.Values, idx *catalogue.Index, meta Meta) *report.Report {
	tester := values.Tester()
	r := &report.Report{
		TesterName: tester.Name,
		TestDate:   tester.Date,
		Results:    []report.Result{},
	}

	for _, id := range idx.IDs() {
		status := values.Status(id)
		if status == report.StatusUnset {
			continue
		}
		tc, _ := idx.Lookup(id)
		r.Results = append(r.Results, report.Result{
			ID:       id,
			Scenario: tc.Scenario,
			Feature:  tc.Feature,
			Status:   status,
			Comment:  strings.TrimSpace(values.Comment(id)),
		})
	}

	if meta.SessionID == "" {
		meta.SessionID = uuid.NewString()
	}
	if meta.Now.IsZero() {
		meta.Now = time.Now()
	}
	r.Info = &report.Info{
		Browser:    tester.Browser,
		Device:     tester.Device,
		AppSection: meta.Section,
		SessionID:  meta.SessionID,
		ExportedAt: meta.Now.UTC().Format(time.RFC3339),
	}
	return r
}

// Filename returns "test-results_<name>_<date>.json". Spaces and characters
// that are unsafe in file names become underscores.
func Filename(testerName, testDate string) string {
	name := sanitize(testerName)
	if name == "" {
		name = "tester"
	}
	date := sanitize(testDate)
	if date == "" {
		date = "date"
	}
	return fmt.Sprintf("test-results_%s_%s.json", name, date)
}

func sanitize(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r), unicode.IsControl(r):
			return '_'
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		default:
			return r
		}
	}, s)
}

// Write stores r as indented JSON in dir under Filename and returns the path.
func Write(fs afero.Fs, dir string, r *report.Report) (string, error) {
	data, err := r.Marshal()
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	path := filepath.Join(dir, Filename(r.TesterName, r.TestDate))
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
