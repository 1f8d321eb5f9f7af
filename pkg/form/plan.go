// Package form turns a catalogue tree into a multi-step form plan.
//
// Step 1 always collects tester information. Every top-level key of the
// (optionally narrowed) catalogue becomes one further step, deeper keys become
// nested collapsible sections, and each test case becomes one row with a
// status field and a comment field.
package form

import (
	"fmt"
	"strings"

	"github.com/dkoosis/qarun/pkg/catalogue"
)

// Field names used by the tester step.
const (
	FieldTesterName = "tester_name"
	FieldTestDate   = "test_date"
	FieldBrowser    = "browser_info"
	FieldDevice     = "device_info"
)

const (
	statusSuffix  = "_status"
	commentSuffix = "_comment"
)

// StatusField returns the form field name holding the status of a test case.
func StatusField(id string) string { return id + statusSuffix }

// StatusID returns the test case id of a status field name.
func StatusID(name string) (string, bool) { return strings.CutSuffix(name, statusSuffix) }

// CommentField returns the form field name holding the comment of a test case.
func CommentField(id string) string { return id + commentSuffix }

// Options narrows what Build renders.
type Options struct {
	// Section is a dotted catalogue key path such as
	// "mobile_application.driver_application". Empty means the whole catalogue.
	Section string
}

// Field is a free-text input on the tester step.
type Field struct {
	Name     string
	Label    string
	Required bool
}

// TesterFields lists the inputs shown on step 1.
var TesterFields = []Field{
	{Name: FieldTesterName, Label: "Tester Name", Required: true},
	{Name: FieldTestDate, Label: "Test Date"},
	{Name: FieldBrowser, Label: "Browser"},
	{Name: FieldDevice, Label: "Device"},
}

// Row is the form row for one test case.
type Row struct {
	Case catalogue.TestCase
	Path []string
}

// StatusField returns the status field name of r.
func (r *Row) StatusField() string { return StatusField(r.Case.ID) }

// CommentField returns the comment field name of r.
func (r *Row) CommentField() string { return CommentField(r.Case.ID) }

// Detail is the lazily revealed description of a row.
type Detail struct {
	Feature  string
	Steps    []string
	Expected string
}

// NotAvailable is shown in place of missing catalogue text.
const NotAvailable = "N/A"

// Detail returns the row's feature, steps, and expected result with "N/A" fallbacks.
func (r *Row) Detail() Detail {
	d := Detail{
		Feature:  orNA(r.Case.Feature),
		Steps:    r.Case.StepList(),
		Expected: orNA(r.Case.ExpectedResult),
	}
	if len(d.Steps) == 0 {
		d.Steps = []string{NotAvailable}
	}
	return d
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

// Section is a collapsible group below a step. A section holds either rows
// (it was a test-case list in the catalogue) or further sections.
type Section struct {
	Key      string
	Title    string
	Depth    int
	Sections []*Section
	Rows     []*Row
}

// Step is one page of the form.
type Step struct {
	Number   int
	Key      string
	Title    string
	Fields   []Field
	Sections []*Section
	Rows     []*Row
}

// AllRows returns every row of s in document order.
func (s *Step) AllRows() []*Row {
	rows := append([]*Row(nil), s.Rows...)
	for _, sec := range s.Sections {
		rows = sec.appendRows(rows)
	}
	return rows
}

func (s *Section) appendRows(rows []*Row) []*Row {
	rows = append(rows, s.Rows...)
	for _, child := range s.Sections {
		rows = child.appendRows(rows)
	}
	return rows
}

// Plan is the complete form built from a catalogue.
type Plan struct {
	Section string
	Steps   []*Step
	Index   *catalogue.Index

	rowByID map[string]*Row
	stepOf  map[string]int
}

// Build renders root into a plan. The returned plan owns the catalogue index.
func Build(root *catalogue.Node, opts Options) (*Plan, error) {
	node, err := root.Resolve(opts.Section)
	if err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	idx, err := catalogue.NewIndex(node)
	if err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}

	p := &Plan{
		Section: opts.Section,
		Index:   idx,
		rowByID: make(map[string]*Row, idx.Len()),
		stepOf:  make(map[string]int, idx.Len()),
	}
	p.Steps = append(p.Steps, &Step{
		Number: 1,
		Title:  "Tester Information",
		Fields: append([]Field(nil), TesterFields...),
	})

	if node.IsLeaf() {
		// The section path points straight at a test-case list.
		key := lastKey(opts.Section)
		p.addStep(key, nil, p.buildRows([]string{key}, node.Cases))
	} else {
		for _, child := range node.Children {
			path := []string{child.Key}
			if child.IsLeaf() {
				p.addStep(child.Key, nil, p.buildRows(path, child.Cases))
				continue
			}
			p.addStep(child.Key, p.buildSections(path, child, 1), nil)
		}
	}
	return p, nil
}

func (p *Plan) addStep(key string, sections []*Section, rows []*Row) {
	s := &Step{
		Number:   len(p.Steps) + 1,
		Key:      key,
		Title:    catalogue.FormatTitle(key),
		Sections: sections,
		Rows:     rows,
	}
	for _, r := range s.AllRows() {
		p.stepOf[r.Case.ID] = s.Number
	}
	p.Steps = append(p.Steps, s)
}

func (p *Plan) buildSections(path []string, n *catalogue.Node, depth int) []*Section {
	sections := make([]*Section, 0, len(n.Children))
	for _, child := range n.Children {
		childPath := append(append([]string(nil), path...), child.Key)
		sec := &Section{Key: child.Key, Title: catalogue.FormatTitle(child.Key), Depth: depth}
		if child.IsLeaf() {
			sec.Rows = p.buildRows(childPath, child.Cases)
		} else {
			sec.Sections = p.buildSections(childPath, child, depth+1)
		}
		sections = append(sections, sec)
	}
	return sections
}

func (p *Plan) buildRows(path []string, cases []catalogue.TestCase) []*Row {
	rows := make([]*Row, 0, len(cases))
	for _, tc := range cases {
		r := &Row{Case: tc, Path: path}
		p.rowByID[tc.ID] = r
		rows = append(rows, r)
	}
	return rows
}

func lastKey(dotted string) string {
	if i := strings.LastIndexByte(dotted, '.'); i >= 0 {
		return dotted[i+1:]
	}
	return dotted
}

// Total returns the number of steps including the tester step.
func (p *Plan) Total() int { return len(p.Steps) }

// Step returns step n (1-based), or nil when out of range.
func (p *Plan) Step(n int) *Step {
	if n < 1 || n > len(p.Steps) {
		return nil
	}
	return p.Steps[n-1]
}

// Row returns the row for a test case id.
func (p *Plan) Row(id string) (*Row, bool) {
	r, ok := p.rowByID[id]
	return r, ok
}

// StepOf returns the step number holding a test case id, or 0.
func (p *Plan) StepOf(id string) int { return p.stepOf[id] }

// HasField reports whether name is a field rendered by the plan.
func (p *Plan) HasField(name string) bool {
	for _, f := range TesterFields {
		if f.Name == name {
			return true
		}
	}
	for _, suffix := range []string{statusSuffix, commentSuffix} {
		if id, ok := strings.CutSuffix(name, suffix); ok {
			if _, ok := p.rowByID[id]; ok {
				return true
			}
		}
	}
	return false
}
