package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dkoosis/qarun/internal/config"
	"github.com/dkoosis/qarun/internal/version"
	"github.com/dkoosis/qarun/pkg/analyze"
	"github.com/dkoosis/qarun/pkg/catalogue"
	"github.com/dkoosis/qarun/pkg/mapper"
	"github.com/dkoosis/qarun/pkg/render"
	"github.com/dkoosis/qarun/pkg/tui"
)

// stdinName is the path argument that reads a report from stdin.
const stdinName = "-"

var validFormats = map[string]bool{
	"auto":     true,
	"terminal": true,
	"plain":    true,
	"json":     true,
}

type analyzeOptions struct {
	format      string
	tab         string
	interactive bool
	watch       bool
}

// runDashboard starts the analyzer TUI; tests replace it.
var runDashboard = tui.RunAnalyzer

func newAnalyzeCmd(a *app) *cobra.Command {
	var opts analyzeOptions
	cmd := &cobra.Command{
		Use:   "analyze [FILE...]",
		Short: "Merge exported reports and summarize the results",
		Long: `analyze reads one or more exported report files and prints the testers,
the pass/fail/blocked counts, the status distribution, per-category bars and
the results grouped by test case. Use - or no arguments to read stdin.

Exit status is 1 when any result failed and 2 when no results could be read.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.analyze(cmd.Context(), args, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.format, "format", "auto", "output format: auto, terminal, plain, json")
	f.StringVar(&opts.tab, "tab", "all", "results filter: all, pass, fail, blocked")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "open the results dashboard")
	f.BoolVarP(&opts.watch, "watch", "w", false, "reload when a report file changes")
	return cmd
}

func (a *app) analyze(ctx context.Context, paths []string, opts analyzeOptions) error {
	if !validFormats[opts.format] {
		return usageError(fmt.Errorf("unknown format %q (want auto, terminal, plain, json)", opts.format))
	}
	tab, err := analyze.ParseTab(opts.tab)
	if err != nil {
		return usageError(err)
	}
	if len(paths) == 0 {
		paths = []string{stdinName}
	}
	files := fileArgs(paths)
	if opts.watch && len(files) != len(paths) {
		return usageError(errors.New("--watch needs report files; stdin cannot be watched"))
	}
	if opts.interactive && !a.isTTY(a.stdout) {
		return usageError(errors.New("--interactive needs an interactive terminal"))
	}

	idx, err := a.loadIndex()
	if err != nil {
		return usageError(err)
	}

	ds, failures, err := a.loadDataset(ctx, paths)
	for _, f := range failures {
		fmt.Fprintf(a.stderr, "qarun: %v\n", f)
	}
	if err != nil {
		return usageError(err)
	}

	if opts.interactive {
		return a.analyzeInteractive(ctx, ds, idx, tab, paths, opts.watch)
	}

	renderer := a.selectRenderer(resolveFormat(opts.format, a.stdout, a.isTTY), render.JSONMeta{
		Generator: "qarun " + version.Version,
		Tab:       string(tab),
		Sources:   sourceNames(paths),
	})
	fmt.Fprint(a.stdout, renderer.Render(mapper.FromDataset(ds, idx, tab)))
	if !opts.watch {
		return exitCode(ds)
	}

	return watchFiles(ctx, files, a.log, func() {
		ds, failures, err := a.loadDataset(ctx, paths)
		for _, f := range failures {
			fmt.Fprintf(a.stderr, "qarun: %v\n", f)
		}
		if err != nil {
			fmt.Fprintf(a.stderr, "qarun: %v\n", err)
			return
		}
		fmt.Fprint(a.stdout, "\n", renderer.Render(mapper.FromDataset(ds, idx, tab)))
	})
}

func (a *app) analyzeInteractive(ctx context.Context, ds *analyze.Dataset, idx *catalogue.Index, tab analyze.Tab, paths []string, watch bool) error {
	opts := tui.AnalyzerOptions{
		Theme:  a.cfg.TUI,
		Charts: render.ThemeByName(a.cfg.Theme),
		Index:  idx,
		Tab:    tab,
	}
	a.useFileLog()
	var updates chan tui.DatasetMsg
	if watch {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		updates = make(chan tui.DatasetMsg, 1)
		go func() {
			err := watchFiles(ctx, fileArgs(paths), a.log, func() {
				ds, failures, err := a.loadDataset(ctx, paths)
				msg := tui.DatasetMsg{Dataset: ds}
				for _, f := range failures {
					msg.Failures = append(msg.Failures, f)
				}
				if err != nil {
					msg.Failures = append(msg.Failures, err)
				}
				select {
				case updates <- msg:
				case <-ctx.Done():
				}
			})
			if err != nil {
				a.log.Warn("watch stopped", zap.Error(err))
			}
		}()
	}
	return runDashboard(ctx, ds, opts, updates)
}

// loadDataset decodes every path, reading stdin for "-". Per-file errors are
// returned alongside the dataset; err is set only when nothing usable was read.
func (a *app) loadDataset(ctx context.Context, paths []string) (*analyze.Dataset, []error, error) {
	var (
		uploads  []*analyze.Upload
		failures []error
	)
	for _, p := range paths {
		if p != stdinName {
			continue
		}
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			failures = append(failures, fmt.Errorf("stdin: %w", err))
			continue
		}
		u, err := analyze.Decode("stdin", data)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		uploads = append(uploads, u)
	}

	res, err := analyze.Load(ctx, a.fs, fileArgs(paths))
	if err != nil {
		return nil, failures, err
	}
	uploads = append(uploads, res.Uploads...)
	for _, f := range res.Failures {
		failures = append(failures, f)
	}

	ds, err := analyze.NewDataset(uploads)
	if err != nil {
		return nil, failures, err
	}
	a.log.Debug("reports loaded",
		zap.Int("files", len(uploads)),
		zap.Int("failed_files", len(failures)),
		zap.Int("results", len(ds.Entries)),
	)
	return ds, failures, nil
}

// loadIndex reads the catalogue used to fill in test details. A missing
// default catalogue is not an error; the details then show N/A.
func (a *app) loadIndex() (*catalogue.Index, error) {
	root, err := catalogue.Load(a.fs, a.cfg.Catalogue)
	if err != nil {
		if a.cfg.Sources["catalogue"] == config.SourceDefault && errors.Is(err, os.ErrNotExist) {
			a.log.Debug("no catalogue, test details unavailable", zap.String("path", a.cfg.Catalogue))
			return nil, nil
		}
		return nil, err
	}
	return catalogue.NewIndex(root)
}

func fileArgs(paths []string) []string {
	var files []string
	for _, p := range paths {
		if p != stdinName {
			files = append(files, p)
		}
	}
	return files
}

// sourceNames lists the report inputs as the JSON output names them.
func sourceNames(paths []string) []string {
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == stdinName {
			p = "stdin"
		}
		names = append(names, p)
	}
	return names
}

func (a *app) selectRenderer(mode string, meta render.JSONMeta) render.Renderer {
	switch mode {
	case "json":
		return render.NewJSON(meta)
	case "plain":
		return render.NewPlain()
	default:
		width, _ := termSize(a.stdout)
		return render.NewTerminal(render.ThemeByName(a.cfg.Theme), width)
	}
}

// resolveFormat maps auto to terminal on a TTY and plain otherwise.
func resolveFormat(format string, w io.Writer, isTTY func(io.Writer) bool) string {
	if format != "auto" {
		return format
	}
	if isTTY(w) {
		return "terminal"
	}
	return "plain"
}

// exitCode returns errFindings when any result failed.
func exitCode(ds *analyze.Dataset) error {
	if ds.Stats().Failed > 0 {
		return errFindings
	}
	return nil
}
