// Command qarun runs manual QA test sessions in the terminal and analyzes
// the exported results.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/dkoosis/qarun/internal/config"
	"github.com/dkoosis/qarun/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return runWith(ctx, afero.NewOsFs(), args, stdin, stdout, stderr)
}

// app carries the state shared by the subcommands.
type app struct {
	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	flags config.Flags
	cfg   *config.Config
	log   *zap.Logger

	// isTTY reports whether w is an interactive terminal.
	isTTY func(w io.Writer) bool
}

func newApp(fs afero.Fs, stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		fs:     fs,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		log:    logging.Nop(),
		isTTY:  isTTYWriter,
	}
}

// runWith executes args against fs and returns the exit code: 0 clean,
// 1 when failures were found, 2 for usage or input errors.
func runWith(ctx context.Context, fs afero.Fs, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return newApp(fs, stdin, stdout, stderr).execute(ctx, args)
}

func (a *app) execute(ctx context.Context, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(a.stderr, "qarun: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(a.stderr, "qarun: %v\n", err)
	if strings.HasPrefix(err.Error(), "unknown command") {
		return 2
	}
	return 1
}

// exitError carries an exit code out of a command. A nil err exits quietly.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error { return &exitError{code: 2, err: err} }

// errFindings exits 1 without a message; the report already said why.
var errFindings = &exitError{code: 1}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "qarun",
		Short: "Run manual QA test sessions and analyze their results",
		Long: `qarun walks a tester through a catalogue of manual test cases, records
pass/fail/blocked results with comments, and exports them as JSON reports.
The analyze command merges any number of those reports into one summary.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.ConfigPath, "config", "", "config file (default .qarun.yaml, then ~/.config/qarun/.qarun.yaml)")
	pf.StringVar(&a.flags.Catalogue, "catalogue", "", "test catalogue file, JSON or YAML")
	pf.StringVar(&a.flags.CatalogueKey, "section", "", "dotted catalogue key to test, e.g. mobile_application.driver_application")
	pf.StringVar(&a.flags.Store, "store", "", "progress store: memory, file, sqlite")
	pf.StringVar(&a.flags.StorePath, "store-path", "", "progress store location")
	pf.StringVar(&a.flags.OutputDir, "output-dir", "", "directory submitted reports are written to")
	pf.StringVar(&a.flags.Theme, "theme", "", "theme: default, orca, mono")
	pf.BoolVar(&a.flags.DevMode, "dev", false, "development mode: relax required fields and enable reset")
	pf.BoolVarP(&a.flags.Debug, "verbose", "v", false, "debug logging")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	root.AddCommand(
		newRunCmd(a),
		newAnalyzeCmd(a),
		newResetCmd(a),
		newTourCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup resolves the configuration and the batch logger.
func (a *app) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	a.flags.DevModeSet = flags.Changed("dev")
	a.flags.DebugSet = flags.Changed("verbose")

	cfg, err := config.Load(a.fs, a.flags)
	if err != nil {
		return usageError(err)
	}
	a.cfg = cfg
	a.log = logging.NewWriter(a.stderr, cfg.Debug)
	a.log.Debug("configuration resolved",
		zap.String("config_file", cfg.ConfigFile),
		zap.String("catalogue", cfg.Catalogue),
		zap.String("section", cfg.CatalogueKey),
		zap.String("store", string(cfg.Store)),
		zap.String("store_path", cfg.StorePath),
		zap.Bool("dev_mode", cfg.DevMode),
	)
	return nil
}

// useFileLog swaps the stderr logger for one writing to the state
// directory, for commands that take over the terminal.
func (a *app) useFileLog() {
	log, err := logging.New(logging.Options{Debug: a.cfg.Debug, File: a.cfg.LogPath()})
	if err != nil {
		a.log.Warn("falling back to no logging", zap.Error(err))
		a.log = logging.Nop()
		return
	}
	a.log = log
}

// noArgs is cobra.NoArgs reported as a usage error.
func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return usageError(err)
	}
	return nil
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termSize returns the terminal dimensions for w, defaulting to 80x24.
func termSize(w io.Writer) (width, height int) {
	width, height = 80, 24
	if f, ok := w.(*os.File); ok {
		if tw, th, err := term.GetSize(int(f.Fd())); err == nil {
			if tw > 0 {
				width = tw
			}
			if th > 0 {
				height = th
			}
		}
	}
	return width, height
}
