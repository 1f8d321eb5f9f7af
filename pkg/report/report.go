// Package report defines the exported test-results document and its readers.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dkoosis/qarun/internal/detect"
)

var (
	// ErrInvalidFile means the input is not JSON.
	ErrInvalidFile = errors.New("invalid JSON file")
	// ErrInvalidFormat means the input is JSON but has no result array.
	ErrInvalidFormat = errors.New(`invalid JSON format: "results" array not found`)
)

// Status is a tester's verdict for one test case.
type Status string

const (
	StatusUnset   Status = ""
	StatusPass    Status = "Pass"
	StatusFail    Status = "Fail"
	StatusBlocked Status = "Blocked"
)

// Statuses lists the selectable statuses in display order.
var Statuses = []Status{StatusPass, StatusFail, StatusBlocked}

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return StatusUnset, true
	case "pass":
		return StatusPass, true
	case "fail":
		return StatusFail, true
	case "blocked":
		return StatusBlocked, true
	default:
		return StatusUnset, false
	}
}

// Normalize returns the canonical spelling of s, or s unchanged when unknown.
func (s Status) Normalize() Status {
	if n, ok := ParseStatus(string(s)); ok {
		return n
	}
	return s
}

// NeedsComment reports whether a comment is mandatory for s.
func (s Status) NeedsComment() bool {
	n := s.Normalize()
	return n == StatusFail || n == StatusBlocked
}

// Verdict is the recorded status and comment for one test case.
type Verdict struct {
	TestCaseID string
	Status     Status
	Comment    string
}

// Result is one entry of a report's results array.
// Steps and ExpectedResult are only present in reports that embed the full test case.
type Result struct {
	ID             string `json:"id"`
	Scenario       string `json:"scenario"`
	Feature        string `json:"feature,omitempty"`
	Status         Status `json:"status"`
	Comment        string `json:"comment"`
	Steps          string `json:"steps,omitempty"`
	ExpectedResult string `json:"expected_result,omitempty"`
}

// Verdict returns the verdict part of r.
func (r Result) Verdict() Verdict {
	return Verdict{TestCaseID: r.ID, Status: r.Status, Comment: r.Comment}
}

// Info carries optional session metadata.
type Info struct {
	Browser    string `json:"browser,omitempty"`
	Device     string `json:"device,omitempty"`
	AppSection string `json:"appSection,omitempty"`
	SessionID  string `json:"sessionId,omitempty"`
	ExportedAt string `json:"exportedAt,omitempty"` // RFC 3339
}

// Report is the exported bundle of verdicts plus tester metadata.
type Report struct {
	TesterName string   `json:"testerName"`
	TestDate   string   `json:"testDate"`
	Results    []Result `json:"results"`
	Info       *Info    `json:"info,omitempty"`
}

// Marshal encodes r as indented JSON with a trailing newline.
func (r *Report) Marshal() ([]byte, error) {
	if r.Results == nil {
		cp := *r
		cp.Results = []Result{}
		r = &cp
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return append(data, '\n'), nil
}

// responsesInfo is the metadata block written by the per-section export layout.
type responsesInfo struct {
	TesterName string `json:"tester_name"`
	Browser    string `json:"browser"`
	Device     string `json:"device"`
	Date       string `json:"date"`
	AppSection string `json:"app_section"`
}

// Parse reads any supported report layout into a Report.
// Non-JSON input yields ErrInvalidFile; JSON without a result array yields ErrInvalidFormat.
func Parse(data []byte) (*Report, error) {
	switch detect.Sniff(data) {
	case detect.Invalid:
		return nil, ErrInvalidFile
	case detect.Results:
		var r Report
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
		}
		return &r, nil
	case detect.Responses:
		return parseResponses(data)
	case detect.Array:
		var results []Result
		if err := json.Unmarshal(data, &results); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
		}
		return &Report{Results: results}, nil
	default:
		return nil, ErrInvalidFormat
	}
}

func parseResponses(data []byte) (*Report, error) {
	var results []Result
	if err := json.Unmarshal([]byte(gjson.GetBytes(data, "responses").Raw), &results); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	r := &Report{Results: results}

	raw := gjson.GetBytes(data, "info")
	if !raw.IsObject() {
		return r, nil
	}
	var info responsesInfo
	if err := json.Unmarshal([]byte(raw.Raw), &info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	r.TesterName = info.TesterName
	r.TestDate = info.Date
	if len(r.TestDate) > len("2006-01-02") {
		if ts, err := time.Parse(time.RFC3339, info.Date); err == nil {
			r.TestDate = ts.Format("2006-01-02")
		}
	}
	r.Info = &Info{Browser: info.Browser, Device: info.Device, AppSection: info.AppSection}
	return r, nil
}
