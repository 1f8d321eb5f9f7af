// Package walkthrough scripts the first-run tour as data.
//
// A tour is a list of steps. Each step narrates something, names the UI
// element it points at, and may perform an action through a Driver. The tour
// never reaches into the wizard's internals; it only calls the Driver.
package walkthrough

import (
	"context"
	"fmt"

	"github.com/dkoosis/qarun/pkg/form"
	"github.com/dkoosis/qarun/pkg/report"
	"github.com/dkoosis/qarun/pkg/session"
)

// DoneKey marks the tour as completed in the store.
const DoneKey = session.KeyPrefix + "walkthrough_done"

// Driver is what a tour may do to the wizard.
type Driver interface {
	SetValue(ctx context.Context, field, value string) error
	NextStep(ctx context.Context) error
	ToggleDetail(id string) bool
	Submit(ctx context.Context) error
}

// Action performs a step's automatic effect.
type Action func(ctx context.Context, d Driver) error

// Target names the UI element a step points at.
type Target string

const (
	TargetTesterName Target = "tester-name"
	TargetNext       Target = "next"
	TargetDetails    Target = "details"
	TargetStatus     Target = "status"
	TargetComment    Target = "comment"
	TargetProgress   Target = "progress"
	TargetSubmit     Target = "submit"
)

// Step is one narrated stop of the tour.
type Step struct {
	Narration string
	Target    Target
	Action    Action // optional
}

// DemoTesterName is typed into the tester field by the default tour.
const DemoTesterName = "Tour Tester"

// DefaultSteps mirrors the scripted first-run tour. caseID is the first test
// case of the plan; it receives the demo verdict.
func DefaultSteps(caseID string) []Step {
	return []Step{
		{
			Narration: "Welcome to qarun. This short tour walks through one test run. Press → to continue.",
		},
		{
			Narration: "Start by entering your name. It is stored with every result you export.",
			Target:    TargetTesterName,
			Action:    setValue(form.FieldTesterName, DemoTesterName),
		},
		{
			Narration: "Move to the first section of test cases.",
			Target:    TargetNext,
			Action:    func(ctx context.Context, d Driver) error { return d.NextStep(ctx) },
		},
		{
			Narration: "Each row is one test case. Open its details to see the steps and the expected result.",
			Target:    TargetDetails,
			Action: func(_ context.Context, d Driver) error {
				d.ToggleDetail(caseID)
				return nil
			},
		},
		{
			Narration: "Record the outcome: Pass, Fail or Blocked.",
			Target:    TargetStatus,
			Action:    setValue(form.StatusField(caseID), string(report.StatusPass)),
		},
		{
			Narration: "Add a comment. Fail and Blocked require one; Pass does not.",
			Target:    TargetComment,
			Action:    setValue(form.CommentField(caseID), "Checked during the tour."),
		},
		{
			Narration: "Progress is saved after every change. Quit any time and pick up where you left off.",
			Target:    TargetProgress,
		},
		{
			Narration: "On the last step, submit to export the results as JSON for the analyzer.",
			Target:    TargetSubmit,
			Action:    func(ctx context.Context, d Driver) error { return d.Submit(ctx) },
		},
	}
}

func setValue(field, value string) Action {
	return func(ctx context.Context, d Driver) error { return d.SetValue(ctx, field, value) }
}

// Tour walks a list of steps over a Driver.
type Tour struct {
	steps  []Step
	driver Driver
	pos    int
	ran    map[int]bool
	done   bool
}

// New returns a tour positioned before its first step.
func New(steps []Step, d Driver) *Tour {
	return &Tour{steps: steps, driver: d, pos: -1, ran: map[int]bool{}}
}

// Len returns the number of steps.
func (t *Tour) Len() int { return len(t.steps) }

// Index returns the current position, or -1 before Start.
func (t *Tour) Index() int { return t.pos }

// Current returns the current step.
func (t *Tour) Current() (Step, bool) {
	if t.pos < 0 || t.pos >= len(t.steps) {
		return Step{}, false
	}
	return t.steps[t.pos], true
}

// Done reports whether the tour finished.
func (t *Tour) Done() bool { return t.done }

// Next moves to the following step and runs its action once. Moving past the
// last step finishes the tour.
func (t *Tour) Next(ctx context.Context) error {
	if t.done {
		return nil
	}
	if t.pos+1 >= len(t.steps) {
		t.done = true
		return nil
	}
	t.pos++
	if t.ran[t.pos] {
		return nil
	}
	t.ran[t.pos] = true
	if act := t.steps[t.pos].Action; act != nil {
		if err := act(ctx, t.driver); err != nil {
			return fmt.Errorf("tour step %d: %w", t.pos+1, err)
		}
	}
	return nil
}

// Prev moves back one step. Actions are not undone or re-run.
func (t *Tour) Prev() {
	if t.pos > 0 {
		t.pos--
	}
}

// Finish ends the tour early.
func (t *Tour) Finish() { t.done = true }

// Completed reports whether the tour was finished before.
func Completed(ctx context.Context, store session.Store) (bool, error) {
	_, ok, err := store.Get(ctx, DoneKey)
	return ok, err
}

// MarkCompleted records that the tour was finished.
func MarkCompleted(ctx context.Context, store session.Store) error {
	return store.Set(ctx, DoneKey, "true")
}

// Reset forgets that the tour was finished.
func Reset(ctx context.Context, store session.Store) error {
	return store.Delete(ctx, DoneKey)
}
