// Package wizard runs one test-execution session: it owns the form values and
// the step machine, persists every change, and exports the report on submit.
// The terminal UI and the walkthrough both drive a Session.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/dkoosis/qarun/pkg/export"
	"github.com/dkoosis/qarun/pkg/form"
	"github.com/dkoosis/qarun/pkg/report"
	"github.com/dkoosis/qarun/pkg/session"
	"github.com/dkoosis/qarun/pkg/stepper"
)

// ErrResetDisabled is returned by Reset outside development mode.
var ErrResetDisabled = errors.New("progress reset is only available in development mode")

// ErrNotLastStep is returned by Submit before the final step is reached.
var ErrNotLastStep = errors.New("submit is only available on the last step")

// Options configures a Session.
type Options struct {
	// DevMode relaxes required-field checks and enables Reset.
	DevMode   bool
	OutputDir string
	Fs        afero.Fs
	Log       *zap.Logger
	Now       func() time.Time
}

// Session is the state of one wizard run.
type Session struct {
	plan      *form.Plan
	values    form.Values
	machine   *stepper.Machine
	persister *session.Persister
	opts      Options
	open      map[string]bool
	restored  bool
}

// Open starts a session for plan, restoring saved progress when there is any.
func Open(ctx context.Context, plan *form.Plan, persister *session.Persister, opts Options) (*Session, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Session{
		plan:      plan,
		values:    form.Values{},
		persister: persister,
		opts:      opts,
		open:      map[string]bool{},
	}
	s.machine = stepper.New(plan.Total(), stepper.ValidatorFunc(plan.Checker(s.values, !opts.DevMode)))

	prog, ok, err := persister.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	if ok {
		for name, v := range session.ApplyTo(prog.FormValues, plan) {
			s.values.Set(name, v)
		}
		s.machine.Restore(stepper.Progress{Step: prog.CurrentStep, MaxStep: prog.MaxStepReached})
		s.restored = true
		opts.Log.Debug("restored progress",
			zap.Int("step", s.machine.Step()),
			zap.Int("max_step", s.machine.MaxStep()),
			zap.Int("fields", len(s.values)))
	}
	if err := s.prefillTester(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) prefillTester(ctx context.Context) error {
	if s.values.Get(form.FieldTesterName) == "" {
		t, ok, err := s.persister.LoadTester(ctx)
		if err != nil {
			return fmt.Errorf("open session: %w", err)
		}
		if ok {
			s.values.Set(form.FieldTesterName, t.Name)
			s.values.Set(form.FieldBrowser, t.Browser)
			s.values.Set(form.FieldDevice, t.Device)
		}
	}
	if s.values.Get(form.FieldTestDate) == "" {
		s.values.Set(form.FieldTestDate, s.opts.Now().Format("2006-01-02"))
	}
	return nil
}

// Restored reports whether Open picked up saved progress.
func (s *Session) Restored() bool { return s.restored }

// Plan returns the form plan.
func (s *Session) Plan() *form.Plan { return s.plan }

// DevMode reports whether required-field checks are relaxed.
func (s *Session) DevMode() bool { return s.opts.DevMode }

// Values returns a copy of the current form values.
func (s *Session) Values() form.Values { return s.values.Clone() }

// Value returns one field value.
func (s *Session) Value(name string) string { return s.values.Get(name) }

// Step returns the current step number.
func (s *Session) Step() int { return s.machine.Step() }

// Progress returns the navigation state.
func (s *Session) Progress() stepper.Progress { return s.machine.Progress() }

// Indicator returns the progress indicator.
func (s *Session) Indicator() stepper.Indicator { return s.machine.Indicator() }

// IsLast reports whether submit replaces next.
func (s *Session) IsLast() bool { return s.machine.IsLast() }

// CanJump reports whether step n is reachable.
func (s *Session) CanJump(n int) bool { return s.machine.CanJump(n) }

// SetValue stores a field and persists progress. Status fields only take a
// known status.
func (s *Session) SetValue(ctx context.Context, name, value string) error {
	if !s.plan.HasField(name) {
		return fmt.Errorf("unknown field %q", name)
	}
	if id, ok := form.StatusID(name); ok {
		st, ok := report.ParseStatus(value)
		if !ok {
			return fmt.Errorf("unknown status %q for %s", value, id)
		}
		value = string(st)
	}
	s.values.Set(name, value)
	return s.save(ctx)
}

// SetStatus records a verdict status and persists progress.
func (s *Session) SetStatus(ctx context.Context, id string, status report.Status) error {
	if _, ok := s.plan.Row(id); !ok {
		return fmt.Errorf("unknown test case %q", id)
	}
	n, ok := report.ParseStatus(string(status))
	if !ok {
		return fmt.Errorf("unknown status %q", status)
	}
	s.values.SetStatus(id, n)
	return s.save(ctx)
}

// SetComment records a comment and persists progress.
func (s *Session) SetComment(ctx context.Context, id, comment string) error {
	if _, ok := s.plan.Row(id); !ok {
		return fmt.Errorf("unknown test case %q", id)
	}
	s.values.SetComment(id, comment)
	return s.save(ctx)
}

// ToggleDetail flips the detail panel of a row and returns its new state.
func (s *Session) ToggleDetail(id string) bool {
	s.open[id] = !s.open[id]
	return s.open[id]
}

// DetailOpen reports whether a row's detail panel is shown.
func (s *Session) DetailOpen(id string) bool { return s.open[id] }

// Next validates the current step and advances. A *form.ValidationError
// names the field to fix.
func (s *Session) Next(ctx context.Context) error {
	if err := s.machine.Next(); err != nil {
		return err
	}
	return s.save(ctx)
}

// Prev moves back one step.
func (s *Session) Prev(ctx context.Context) error {
	s.machine.Prev()
	return s.save(ctx)
}

// Jump moves to step n, validating skipped steps when moving forward. A
// failed jump leaves the session where it was.
func (s *Session) Jump(ctx context.Context, n int) error {
	if err := s.machine.Jump(n); err != nil {
		return err
	}
	return s.save(ctx)
}

// Submission is the outcome of a successful Submit.
type Submission struct {
	Report *report.Report
	Path   string
}

// Submit validates every step, writes the report, remembers the tester, and
// clears saved progress. On a validation failure the session moves to the
// offending step.
func (s *Session) Submit(ctx context.Context) (*Submission, error) {
	if !s.machine.IsLast() {
		return nil, ErrNotLastStep
	}
	if verr := s.plan.ValidateAll(s.values, !s.opts.DevMode); verr != nil {
		if err := s.machine.Jump(verr.Step); err != nil {
			return nil, err
		}
		if err := s.save(ctx); err != nil {
			return nil, err
		}
		return nil, verr
	}

	r := export.Build(s.values, s.plan.Index, export.Meta{Section: s.plan.Section, Now: s.opts.Now()})
	path, err := export.Write(s.opts.Fs, s.opts.OutputDir, r)
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	s.opts.Log.Info("report written",
		zap.String("path", path),
		zap.Int("results", len(r.Results)),
		zap.String("session_id", r.Info.SessionID))

	if err := s.persister.SaveTester(ctx, s.values.Tester()); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	if err := s.persister.Clear(ctx); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	return &Submission{Report: r, Path: path}, nil
}

// Reset discards all progress and starts over. Development mode only.
func (s *Session) Reset(ctx context.Context) error {
	if !s.opts.DevMode {
		return ErrResetDisabled
	}
	if err := s.persister.Clear(ctx); err != nil {
		return err
	}
	for name := range s.values {
		delete(s.values, name)
	}
	s.open = map[string]bool{}
	s.machine.Restore(stepper.Progress{Step: 1, MaxStep: 1})
	s.restored = false
	return s.prefillTester(ctx)
}

func (s *Session) save(ctx context.Context) error {
	p := s.machine.Progress()
	err := s.persister.Save(ctx, session.Progress{
		CurrentStep:    p.Step,
		MaxStepReached: p.MaxStep,
		FormValues:     s.values,
	})
	if err != nil {
		s.opts.Log.Warn("saving progress failed", zap.Error(err))
	}
	return err
}
