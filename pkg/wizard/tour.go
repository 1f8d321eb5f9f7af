package wizard

import (
	"context"

	"github.com/dkoosis/qarun/pkg/walkthrough"
)

// TourDriver lets a walkthrough operate s.
func (s *Session) TourDriver() walkthrough.Driver { return tourDriver{s} }

type tourDriver struct{ s *Session }

func (d tourDriver) SetValue(ctx context.Context, field, value string) error {
	return d.s.SetValue(ctx, field, value)
}

func (d tourDriver) NextStep(ctx context.Context) error { return d.s.Next(ctx) }

func (d tourDriver) ToggleDetail(id string) bool { return d.s.ToggleDetail(id) }

// Submit advances to the last step first, so a short tour can still finish.
func (d tourDriver) Submit(ctx context.Context) error {
	for !d.s.IsLast() {
		if err := d.s.Next(ctx); err != nil {
			return err
		}
	}
	_, err := d.s.Submit(ctx)
	return err
}

// FirstCaseID returns the id the default tour demonstrates on, or "".
func (s *Session) FirstCaseID() string {
	ids := s.plan.Index.IDs()
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}
