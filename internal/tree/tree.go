// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tree runs a per-file operation over a directory tree,
// mirroring each input's relative path under an output root.
package tree

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrSkip is returned by a Func to leave a file unprocessed without
// failing the run.
var ErrSkip = errors.New("skipped")

// ErrOverlap is returned by Files and Run when an output path would
// replace one of the inputs.
var ErrOverlap = errors.New("output overlaps input")

// A File is one input of a run.
type File struct {
	Path string // input path
	Rel  string // Path relative to the input root
	Out  string // mirrored output path; empty without an OutRoot
}

// A Func processes one file. It should write f.Out only through
// WriteFile. A Func must be safe to call from several goroutines.
type Func func(ctx context.Context, f File) error

// Walker walks Root and mirrors its files under OutRoot. A Walker
// with no OutRoot only reads its inputs.
type Walker struct {
	Root    string
	OutRoot string

	// Ext, if set, replaces the extension of output file names.
	Ext string

	// Jobs bounds the number of files processed at once. Zero means
	// runtime.GOMAXPROCS(0).
	Jobs int

	Log *zap.Logger
}

// Stats counts the outcome of a run.
type Stats struct {
	Processed, Failed, Skipped int
}

// Files returns the regular files under w.Root in lexical order. It
// fails with ErrOverlap if some file's output path is an input path.
func (w *Walker) Files() ([]File, error) {
	var files []File
	inputs := make(map[string]bool)
	err := filepath.WalkDir(w.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(w.Root, path)
		if err != nil {
			return err
		}
		var out string
		if w.OutRoot != "" {
			out = filepath.Join(w.OutRoot, rel)
			if w.Ext != "" {
				out = strings.TrimSuffix(out, filepath.Ext(out)) + w.Ext
			}
		}
		inputs[absPath(path)] = true
		files = append(files, File{Path: path, Rel: rel, Out: out})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", w.Root)
	}
	for _, f := range files {
		if f.Out != "" && inputs[absPath(f.Out)] {
			return nil, errors.Wrapf(ErrOverlap, "%s would be written over", f.Out)
		}
	}
	return files, nil
}

// absPath returns the absolute form of path, or its cleaned form if
// the working directory is unknown.
func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Run calls fn for every file under w.Root. A file whose fn fails is
// logged and counted, and any output left at its path is removed; the
// remaining files are still processed. The returned error combines
// the per-file errors.
func (w *Walker) Run(ctx context.Context, fn Func) (Stats, error) {
	var st Stats
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	files, err := w.Files()
	if err != nil {
		return st, err
	}

	jobs := w.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	var mu sync.Mutex
	var errs error
	for _, f := range files {
		f := f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := fn(ctx, f)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				st.Processed++
				log.Info("processed", zap.String("path", f.Path), zap.String("out", f.Out))
			case errors.Is(err, ErrSkip):
				st.Skipped++
				log.Warn("skipped", zap.String("path", f.Path), zap.Error(err))
			default:
				st.Failed++
				log.Error("failed", zap.String("path", f.Path), zap.Error(err))
				if f.Out != "" && absPath(f.Out) != absPath(f.Path) {
					if rerr := os.Remove(f.Out); rerr != nil && !os.IsNotExist(rerr) {
						err = multierr.Append(err, errors.Wrap(rerr, "remove stale output"))
					}
				}
				errs = multierr.Append(errs, err)
			}
			return nil
		})
	}
	// Only cancellation reaches g.Wait.
	if err := g.Wait(); err != nil {
		errs = multierr.Append(errs, err)
	}
	return st, errs
}

// WriteFile atomically replaces path with data, creating parent
// directories as needed. Readers never see a partially written file.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o777); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
