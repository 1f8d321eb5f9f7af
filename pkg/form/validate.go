package form

import (
	"fmt"
	"strings"
)

// Messages mirror the native validity messages testers are used to.
const (
	MsgSelectItem = "Please select an item in the list."
	MsgFillField  = "Please fill out this field."
)

// ValidationError identifies the first invalid field of a step.
type ValidationError struct {
	Step    int
	Field   string
	CaseID  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.CaseID != "" {
		return fmt.Sprintf("step %d: %s (%s): %s", e.Step, e.CaseID, e.Field, e.Message)
	}
	return fmt.Sprintf("step %d: %s: %s", e.Step, e.Field, e.Message)
}

// ValidateStep checks the required fields of step n in row order and returns
// the first violation. With required false every step is valid.
func (p *Plan) ValidateStep(n int, values Values, required bool) *ValidationError {
	if !required {
		return nil
	}
	step := p.Step(n)
	if step == nil {
		return nil
	}

	for _, f := range step.Fields {
		if f.Required && strings.TrimSpace(values.Get(f.Name)) == "" {
			return &ValidationError{Step: n, Field: f.Name, Message: MsgFillField}
		}
	}

	for _, r := range step.AllRows() {
		id := r.Case.ID
		status := values.Status(id)
		if status == "" {
			return &ValidationError{Step: n, Field: r.StatusField(), CaseID: id, Message: MsgSelectItem}
		}
		if status.NeedsComment() && strings.TrimSpace(values.Comment(id)) == "" {
			return &ValidationError{Step: n, Field: r.CommentField(), CaseID: id, Message: MsgFillField}
		}
	}
	return nil
}

// ValidateAll checks every step in order and returns the first violation.
func (p *Plan) ValidateAll(values Values, required bool) *ValidationError {
	for n := 1; n <= p.Total(); n++ {
		if verr := p.ValidateStep(n, values, required); verr != nil {
			return verr
		}
	}
	return nil
}

// Checker adapts ValidateStep to a plain error-returning step check bound to
// values. values is read at call time, so later edits are seen.
func (p *Plan) Checker(values Values, required bool) func(step int) error {
	return func(step int) error {
		if verr := p.ValidateStep(step, values, required); verr != nil {
			return verr
		}
		return nil
	}
}
