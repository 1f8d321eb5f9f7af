package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dkoosis/qarun/internal/kv"
	"github.com/dkoosis/qarun/pkg/catalogue"
	"github.com/dkoosis/qarun/pkg/form"
	"github.com/dkoosis/qarun/pkg/session"
	"github.com/dkoosis/qarun/pkg/tui"
	"github.com/dkoosis/qarun/pkg/walkthrough"
	"github.com/dkoosis/qarun/pkg/wizard"
)

// tourHint is printed by run until the tour has been completed once.
const tourHint = "First time here? Run `qarun tour` for a guided walkthrough.\n"

// runTUI starts the wizard; tests replace it.
var runTUI = tui.RunWizard

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Walk through the test catalogue and record results",
		Long: `run opens the test wizard on the configured catalogue. Progress is saved
after every change and restored the next time run starts. Submitting on the
last step writes test-results_<tester>_<date>.json to the output directory.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runWizard(cmd.Context())
		},
	}
}

func (a *app) runWizard(ctx context.Context) error {
	if !a.isTTY(a.stdout) {
		return usageError(errors.New("run needs an interactive terminal; use analyze for batch output"))
	}
	plan, err := a.loadPlan()
	if err != nil {
		return err
	}
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if done, err := walkthrough.Completed(ctx, store); err == nil && !done {
		fmt.Fprint(a.stderr, tourHint)
	}

	a.useFileLog()
	s, err := wizard.Open(ctx, plan, session.NewPersister(store, a.cfg.CatalogueKey, a.log), wizard.Options{
		DevMode:   a.cfg.DevMode,
		OutputDir: a.cfg.OutputDir,
		Fs:        a.fs,
		Log:       a.log,
	})
	if err != nil {
		return err
	}

	sub, err := runTUI(ctx, s, tui.WizardOptions{Theme: a.cfg.TUI, Log: a.log})
	if err != nil {
		return err
	}
	if sub != nil {
		fmt.Fprintf(a.stdout, "Report written to %s (%d results)\n", sub.Path, len(sub.Report.Results))
	}
	return nil
}

func newTourCmd(a *app) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "tour",
		Short: "Take a guided walkthrough of the test wizard",
		Long: `tour runs the wizard on the configured catalogue with a narrated overlay.
Nothing entered during the tour is kept; its sample report goes to a scratch
directory under the qarun state directory.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if reset {
				return a.resetTour(cmd.Context())
			}
			return a.runTour(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "forget that the tour was completed")
	return cmd
}

func (a *app) resetTour(ctx context.Context) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	if err := walkthrough.Reset(ctx, store); err != nil {
		return fmt.Errorf("reset tour: %w", err)
	}
	fmt.Fprintln(a.stdout, "Tour reset.")
	return nil
}

func (a *app) runTour(ctx context.Context) error {
	if !a.isTTY(a.stdout) {
		return usageError(errors.New("tour needs an interactive terminal"))
	}
	plan, err := a.loadPlan()
	if err != nil {
		return err
	}
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	a.useFileLog()
	s, err := wizard.Open(ctx, plan, session.NewPersister(kv.NewMemory(), "", a.log), wizard.Options{
		DevMode:   true,
		OutputDir: filepath.Join(a.cfg.StateDir, "tour"),
		Fs:        a.fs,
		Log:       a.log,
	})
	if err != nil {
		return err
	}
	caseID := s.FirstCaseID()
	if caseID == "" {
		return usageError(errors.New("the catalogue has no test cases to tour"))
	}

	tour := walkthrough.New(walkthrough.DefaultSteps(caseID), s.TourDriver())
	_, err = runTUI(ctx, s, tui.WizardOptions{
		Theme: a.cfg.TUI,
		Tour:  tour,
		OnTourDone: func(ctx context.Context) error {
			a.log.Info("tour completed")
			return walkthrough.MarkCompleted(ctx, store)
		},
		Log: a.log,
	})
	return err
}

func newResetCmd(a *app) *cobra.Command {
	var tester, all bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear saved wizard progress",
		Long: `reset deletes the saved step, furthest step and form values of the
configured catalogue section, or of every section with --all-sections. The
remembered tester details are kept unless --tester is given.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.reset(cmd.Context(), tester, all)
		},
	}
	cmd.Flags().BoolVar(&tester, "tester", false, "also forget the remembered tester details")
	cmd.Flags().BoolVar(&all, "all-sections", false, "clear the progress of every catalogue section")
	return cmd
}

func (a *app) reset(ctx context.Context, tester, all bool) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	section := a.cfg.CatalogueKey
	if all {
		keys, err := store.Keys(ctx)
		if err != nil {
			return fmt.Errorf("list saved keys: %w", err)
		}
		cleared := 0
		for _, k := range keys {
			if !session.IsProgressKey(k) {
				continue
			}
			if err := store.Delete(ctx, k); err != nil {
				return fmt.Errorf("clear %s: %w", k, err)
			}
			cleared++
		}
		a.log.Debug("progress cleared", zap.Int("keys", cleared), zap.Bool("tester", tester))
		section = "every section"
	} else {
		if err := session.NewPersister(store, a.cfg.CatalogueKey, a.log).Clear(ctx); err != nil {
			return err
		}
		a.log.Debug("progress cleared", zap.String("section", a.cfg.CatalogueKey), zap.Bool("tester", tester))
		if section == "" {
			section = "the whole catalogue"
		}
	}
	if tester {
		if err := store.Delete(ctx, session.TesterKey); err != nil {
			return fmt.Errorf("forget tester: %w", err)
		}
	}

	fmt.Fprintf(a.stdout, "Progress cleared for %s.\n", section)
	return nil
}

// loadPlan reads the catalogue and builds the wizard steps for the
// configured section.
func (a *app) loadPlan() (*form.Plan, error) {
	root, err := catalogue.Load(a.fs, a.cfg.Catalogue)
	if err != nil {
		return nil, usageError(err)
	}
	plan, err := form.Build(root, form.Options{Section: a.cfg.CatalogueKey})
	if err != nil {
		return nil, usageError(err)
	}
	a.log.Debug("catalogue loaded", zap.String("path", a.cfg.Catalogue), zap.Int("steps", plan.Total()))
	return plan, nil
}

// openStore opens the progress store, creating its directory first.
func (a *app) openStore() (kv.Store, error) {
	if a.cfg.Store != kv.KindMemory && a.cfg.StorePath != "" {
		if err := a.fs.MkdirAll(filepath.Dir(a.cfg.StorePath), 0o755); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}
	store, err := kv.Open(a.cfg.Store, a.fs, a.cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", a.cfg.Store, err)
	}
	if f, ok := store.(*kv.File); ok && f.Corrupt() != "" {
		a.log.Warn("saved progress was unreadable, starting fresh",
			zap.String("path", a.cfg.StorePath),
			zap.String("moved_to", f.Corrupt()))
	}
	return store, nil
}
