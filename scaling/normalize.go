// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scaling

import (
	"fmt"
	"math"

	"github.com/edistbench/parstat/runfmt"
)

// A Row is the normalized result for one configuration.
type Row struct {
	Key

	// Threads and Procs are the integer values of OMP and, for MPI
	// rows, Secondary.
	Threads, Procs int

	// Times holds the mean of each timing field, in log order.
	Times []float64

	Speedup    float64
	Efficiency float64

	// Samples is the number of runs averaged into Times. It is zero
	// for rows read back from a report.
	Samples int
}

// A GroupError reports a configuration that could not be normalized.
// Kind is ErrMissingBaseline, ErrDivisionByZero or ErrNotFinite.
type GroupError struct {
	Key  Key
	Kind error
	Msg  string
}

func (e *GroupError) Error() string {
	return fmt.Sprintf("group %s: %v: %s", e.Key, e.Kind, e.Msg)
}

func (e *GroupError) Unwrap() error {
	return e.Kind
}

// Normalize computes one Row per configuration, in the order given by
// Keys. It stops at the first configuration that cannot be normalized
// and returns a *GroupError for it.
//
// For both families the compared time is the mean total (program
// execution) time, the last timing field.
//
// MPI rows: speedup is the baseline's time over the row's time;
// efficiency is the baseline's time over omp*mpi times the row's time,
// as a percentage, and exactly 100 for baseline rows. Every
// configuration must also have an "OMP+MPI" group.
//
// CUDA rows: baseline rows have speedup 1 and efficiency 100 without
// any lookup. Other rows have speedup as above and efficiency
// speedup/omp as a percentage.
func (t *Table) Normalize() ([]*Row, error) {
	keys := t.Keys()
	rows := make([]*Row, 0, len(keys))
	for _, k := range keys {
		row, err := t.normalize(k)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (t *Table) normalize(k Key) (*Row, error) {
	acc := t.Groups[k]
	row := &Row{
		Key:     k,
		Threads: acc.Threads,
		Procs:   acc.Procs,
		Times:   acc.Means(),
		Samples: acc.Count,
	}
	total := len(row.Times) - 1
	for i, v := range row.Times {
		if !finite(v) {
			return nil, &GroupError{k, ErrNotFinite, fmt.Sprintf("mean of timing field %d is %v", i+1, v)}
		}
	}

	if t.Family == runfmt.CUDA && k.Modality == Baseline {
		row.Speedup, row.Efficiency = 1, 100
		return row, nil
	}

	base, ok := t.Groups[k.with(Baseline)]
	if !ok {
		return nil, &GroupError{k, ErrMissingBaseline, fmt.Sprintf("no %q group with the same configuration", Baseline)}
	}
	if t.Family == runfmt.MPI {
		// The reference group's times are not used, but a report
		// without it is incomplete.
		if _, ok := t.Groups[k.with(ParallelReference)]; !ok {
			return nil, &GroupError{k, ErrMissingBaseline, fmt.Sprintf("no %q group with the same configuration", ParallelReference)}
		}
	}

	tBase, tOwn := base.Mean(total), row.Times[total]
	if tBase == 0 {
		return nil, &GroupError{k, ErrDivisionByZero, "baseline mean time is zero"}
	}
	if tOwn == 0 {
		return nil, &GroupError{k, ErrDivisionByZero, "mean time is zero"}
	}
	row.Speedup = tBase / tOwn

	switch t.Family {
	case runfmt.MPI:
		if k.Modality == Baseline {
			row.Efficiency = 100
			break
		}
		workers := acc.Threads * acc.Procs
		if workers == 0 {
			return nil, &GroupError{k, ErrDivisionByZero, "omp*mpi worker count is zero"}
		}
		row.Efficiency = tBase / (float64(workers) * tOwn) * 100
	case runfmt.CUDA:
		if acc.Threads == 0 {
			return nil, &GroupError{k, ErrDivisionByZero, "omp thread count is zero"}
		}
		row.Efficiency = row.Speedup / float64(acc.Threads) * 100
	}
	if !finite(row.Speedup) || !finite(row.Efficiency) {
		return nil, &GroupError{k, ErrNotFinite, fmt.Sprintf("speedup %v, efficiency %v", row.Speedup, row.Efficiency)}
	}
	return row, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
