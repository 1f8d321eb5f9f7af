// Package stepper implements the navigation state machine of a multi-step form.
//
// A Machine tracks the current step and the highest step reached. Advancing
// runs the step's validator first; going back never validates. Validation
// failures come back as ordinary errors and leave the state unchanged.
package stepper

import (
	"errors"
	"fmt"
)

// ErrStepLocked is returned by Jump for a step the tester has not unlocked yet.
var ErrStepLocked = errors.New("step not reachable yet")

// Validator checks the required fields of one step.
type Validator interface {
	ValidateStep(step int) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(step int) error

// ValidateStep calls f(step).
func (f ValidatorFunc) ValidateStep(step int) error { return f(step) }

// Progress is a snapshot of the navigation state.
type Progress struct {
	Step    int
	MaxStep int
}

// Machine is the stepper state. The zero value is not usable; call New.
type Machine struct {
	step      int
	maxStep   int
	total     int
	validator Validator
}

// New returns a machine at step 1 of total. A nil validator accepts every step.
func New(total int, v Validator) *Machine {
	if total < 1 {
		total = 1
	}
	return &Machine{step: 1, maxStep: 1, total: total, validator: v}
}

// Restore moves the machine to a saved position, clamping both values into range.
func (m *Machine) Restore(p Progress) {
	m.maxStep = clamp(p.MaxStep, 1, m.total)
	m.step = clamp(p.Step, 1, m.total)
	if m.step > m.maxStep {
		m.maxStep = m.step
	}
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// Step returns the current step (1-based).
func (m *Machine) Step() int { return m.step }

// MaxStep returns the highest step reached.
func (m *Machine) MaxStep() int { return m.maxStep }

// Total returns the number of steps.
func (m *Machine) Total() int { return m.total }

// Progress returns the current navigation state.
func (m *Machine) Progress() Progress {
	return Progress{Step: m.step, MaxStep: m.maxStep}
}

// IsLast reports whether the current step is the final one, where submit
// replaces next.
func (m *Machine) IsLast() bool { return m.step == m.total }

func (m *Machine) validate(step int) error {
	if m.validator == nil {
		return nil
	}
	return m.validator.ValidateStep(step)
}

// Next validates the current step and advances. On the last step it is a no-op.
func (m *Machine) Next() error {
	if m.IsLast() {
		return nil
	}
	if err := m.validate(m.step); err != nil {
		return err
	}
	m.advanceTo(m.step + 1)
	return nil
}

// Prev moves back one step without validating.
func (m *Machine) Prev() {
	if m.step > 1 {
		m.step--
	}
}

// CanJump reports whether target may be requested at all.
func (m *Machine) CanJump(target int) bool {
	return target >= 1 && target <= m.total && target <= m.maxStep+1
}

// Jump moves to target. Moving forward validates every step from the current
// one up to target-1 in order; the first failure is returned and the machine
// does not move.
func (m *Machine) Jump(target int) error {
	if !m.CanJump(target) {
		return fmt.Errorf("%w: step %d (reached %d of %d)", ErrStepLocked, target, m.maxStep, m.total)
	}
	for step := m.step; step < target; step++ {
		if err := m.validate(step); err != nil {
			return err
		}
	}
	m.advanceTo(target)
	return nil
}

func (m *Machine) advanceTo(step int) {
	m.step = step
	if step > m.maxStep {
		m.maxStep = step
	}
}

// StepState is the indicator state of one step.
type StepState int

const (
	StateUpcoming StepState = iota
	StateActive
	StateCompleted
)

func (s StepState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	default:
		return "upcoming"
	}
}

// IndicatorStep describes one entry of the progress indicator.
type IndicatorStep struct {
	Number    int
	State     StepState
	Clickable bool
}

// Indicator is the progress indicator for the current state.
type Indicator struct {
	Steps   []IndicatorStep
	Percent int
}

// Indicator renders the per-step states. Steps before the current one are
// completed; clickable steps are those Jump would accept.
func (m *Machine) Indicator() Indicator {
	ind := Indicator{Steps: make([]IndicatorStep, m.total)}
	for i := range ind.Steps {
		n := i + 1
		st := StateUpcoming
		switch {
		case n < m.step:
			st = StateCompleted
		case n == m.step:
			st = StateActive
		}
		ind.Steps[i] = IndicatorStep{Number: n, State: st, Clickable: n != m.step && m.CanJump(n)}
	}
	if m.total > 1 {
		ind.Percent = (m.step - 1) * 100 / (m.total - 1)
	} else {
		ind.Percent = 100
	}
	return ind
}
