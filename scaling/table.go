// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scaling aggregates repeated benchmark runs into per-configuration
// means and derives speedup and parallel efficiency against the
// "Approximate" baseline modality.
//
// A Table accumulates the records of one log file. Once the whole file
// has been added, Normalize produces one Row per configuration, in
// report order. Normalization needs every baseline sample to be summed
// first, so it cannot start before the input is exhausted.
package scaling

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/edistbench/parstat/runfmt"
)

const (
	// Baseline is the modality every other modality is compared to.
	Baseline = "Approximate"
	// ParallelReference is the modality whose presence an MPI report
	// requires for every configuration.
	ParallelReference = "OMP+MPI"
)

// Error kinds reported through *GroupError.
var (
	// ErrMissingBaseline means a configuration has no group for a
	// modality its normalization depends on.
	ErrMissingBaseline = errors.New("missing baseline group")
	// ErrDivisionByZero means a mean time or worker count that
	// would divide is exactly zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrNotFinite means a mean time, speedup or efficiency overflows
	// to infinity.
	ErrNotFinite = errors.New("result is not finite")
)

// A Key identifies one configuration: a modality run with a number of
// OpenMP threads and a secondary dimension (MPI processes or CUDA block
// size). Fields hold the strings exactly as they appear in the log.
type Key struct {
	Modality, OMP, Secondary string
}

func (k Key) String() string {
	return fmt.Sprintf("%s;%s;%s", k.Modality, k.OMP, k.Secondary)
}

// with returns the key of modality's group for k's configuration.
func (k Key) with(modality string) Key {
	return Key{modality, k.OMP, k.Secondary}
}

// An Accumulator holds the running sums of every timing field over the
// samples of one configuration.
type Accumulator struct {
	Sums  []float64
	Count int

	// Threads and Procs are the integer values of the key's OMP
	// and (for MPI) secondary fields.
	Threads, Procs int
}

// Means returns the per-field means of the accumulated samples.
func (a *Accumulator) Means() []float64 {
	means := make([]float64, len(a.Sums))
	for i, s := range a.Sums {
		means[i] = s / float64(a.Count)
	}
	return means
}

// Mean returns the mean of timing field i.
func (a *Accumulator) Mean(i int) float64 {
	return a.Sums[i] / float64(a.Count)
}

// A Table is the set of accumulators for one log file.
type Table struct {
	Family runfmt.Family

	// Modalities lists the modalities in the order they were
	// first seen.
	Modalities []string

	// Groups holds the accumulator of every configuration seen.
	Groups map[Key]*Accumulator

	// keys lists Groups' keys in the order they were first seen.
	keys []Key
}

// NewTable returns an empty table for records of family f, which
// must be Valid.
func NewTable(f runfmt.Family) *Table {
	return &Table{Family: f, Groups: make(map[Key]*Accumulator)}
}

// group returns the accumulator for key, creating it if needed.
func (t *Table) group(key Key, rec *runfmt.Record) *Accumulator {
	if acc, ok := t.Groups[key]; ok {
		return acc
	}
	seen := false
	for _, m := range t.Modalities {
		if m == key.Modality {
			seen = true
			break
		}
	}
	if !seen {
		t.Modalities = append(t.Modalities, key.Modality)
	}
	acc := &Accumulator{
		Sums:    make([]float64, t.Family.TimeFields()),
		Threads: rec.Threads,
		Procs:   rec.Procs,
	}
	t.Groups[key] = acc
	t.keys = append(t.keys, key)
	return acc
}

// Add adds one run to the table. Repeated runs of a configuration are
// averaged; none is ever rejected.
func (t *Table) Add(rec *runfmt.Record) {
	if len(rec.Times) != t.Family.TimeFields() {
		panic(fmt.Sprintf("scaling: %v record has %d timing fields, want %d", t.Family, len(rec.Times), t.Family.TimeFields()))
	}
	acc := t.group(Key{rec.Modality, rec.OMP, rec.Secondary}, rec)
	for i, v := range rec.Times {
		acc.Sums[i] += v
	}
	acc.Count++
}

// AddReader adds every record from r to the table. It returns the
// reader's error, if any; records read before the error remain added.
func (t *Table) AddReader(r *runfmt.Reader) error {
	for r.Scan() {
		t.Add(r.Result())
	}
	return r.Err()
}

// Analyze reads a complete log of family f from r and normalizes it.
// fileName is used in error messages.
func Analyze(r io.Reader, fileName string, f runfmt.Family) (*Report, error) {
	if !f.Valid() {
		return nil, errors.Errorf("%s: invalid log family %v", fileName, f)
	}
	t := NewTable(f)
	if err := t.AddReader(runfmt.NewReader(r, fileName, f)); err != nil {
		return nil, err
	}
	rows, err := t.Normalize()
	if err != nil {
		return nil, errors.Wrap(err, fileName)
	}
	return &Report{Family: f, Rows: rows}, nil
}
