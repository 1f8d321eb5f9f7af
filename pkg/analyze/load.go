// Package analyze merges exported reports and computes the figures shown by the analyzer.
package analyze

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/dkoosis/qarun/pkg/report"
)

var (
	// ErrInvalidFile is returned for input that is not JSON.
	ErrInvalidFile = report.ErrInvalidFile
	// ErrInvalidFormat is returned for JSON without a results or responses array.
	ErrInvalidFormat = report.ErrInvalidFormat
	// ErrNoResults is returned when the loaded files hold no entry with a status.
	ErrNoResults = errors.New("no test results found in the provided files")
)

// maxParallelReads bounds concurrent file reads.
const maxParallelReads = 8

// Upload is one decoded report file.
type Upload struct {
	Name   string
	Report *report.Report
}

// Decode parses one report file. name is only used in error messages and
// as the upload's source label.
func Decode(name string, data []byte) (*Upload, error) {
	r, err := report.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &Upload{Name: name, Report: r}, nil
}

// FileError records why one file could not be used.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return e.Path + ": " + e.Err.Error() }
func (e *FileError) Unwrap() error { return e.Err }

// LoadResult holds the files that decoded, in input order, and the ones that did not.
type LoadResult struct {
	Uploads  []*Upload
	Failures []*FileError
}

// Load reads and decodes paths concurrently. A bad file does not stop the
// others; it is reported in Failures. The only returned error is ctx's.
func Load(ctx context.Context, fs afero.Fs, paths []string) (*LoadResult, error) {
	uploads := make([]*Upload, len(paths))
	failures := make([]*FileError, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := afero.ReadFile(fs, path)
			if err != nil {
				failures[i] = &FileError{Path: path, Err: err}
				return nil
			}
			u, err := report.Parse(data)
			if err != nil {
				failures[i] = &FileError{Path: path, Err: err}
				return nil
			}
			uploads[i] = &Upload{Name: path, Report: u}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &LoadResult{}
	for i := range paths {
		if uploads[i] != nil {
			res.Uploads = append(res.Uploads, uploads[i])
		}
		if failures[i] != nil {
			res.Failures = append(res.Failures, failures[i])
		}
	}
	return res, nil
}
