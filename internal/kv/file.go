package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// File keeps all keys in one JSON object on disk. Every write replaces the
// file through a temporary sibling and a rename.
type File struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
	data map[string]string

	corrupt string
}

// NewFile opens the store at path, creating its directory. A missing file is
// an empty store. A file that is not a JSON object is moved aside to
// path+".corrupt" and the store starts empty.
func NewFile(fs afero.Fs, path string) (*File, error) {
	if path == "" {
		return nil, errors.New("file store: empty path")
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("file store: %w", err)
	}
	f := &File{fs: fs, path: path, data: make(map[string]string)}

	raw, err := afero.ReadFile(fs, path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("file store: %w", err)
	}
	if len(raw) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(raw, &f.data); err != nil {
		f.data = make(map[string]string)
		f.corrupt = path + ".corrupt"
		if err := fs.Rename(path, f.corrupt); err != nil {
			// The next write replaces the bad document anyway.
			f.corrupt = path
		}
		return f, nil
	}
	if f.data == nil {
		f.data = make(map[string]string)
	}
	return f, nil
}

// Corrupt returns where an unreadable document was left when the store was
// opened, or "" when the document decoded.
func (f *File) Corrupt() string { return f.corrupt }

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.data[key]
	f.data[key] = value
	if err := f.flush(); err != nil {
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.data[key]
	if !had {
		return nil
	}
	delete(f.data, key)
	if err := f.flush(); err != nil {
		f.data[key] = prev
		return err
	}
	return nil
}

// Keys returns the stored keys in sorted order.
func (f *File) Keys(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return sortedKeys(f.data), nil
}

func (f *File) Close() error { return nil }

func (f *File) flush() error {
	raw, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return fmt.Errorf("file store: encode: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, raw, 0o600); err != nil {
		return fmt.Errorf("file store: write: %w", err)
	}
	if err := f.fs.Rename(tmp, f.path); err != nil {
		_ = f.fs.Remove(tmp)
		return fmt.Errorf("file store: replace: %w", err)
	}
	return nil
}
