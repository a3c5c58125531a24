// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scaling

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/edistbench/parstat/runfmt"
)

func newTable(t *testing.T, family runfmt.Family, lines ...string) *Table {
	t.Helper()
	tab := NewTable(family)
	r := runfmt.NewReader(strings.NewReader(strings.Join(lines, "\n")), "test", family)
	require.NoError(t, tab.AddReader(r))
	return tab
}

func normalize(t *testing.T, family runfmt.Family, lines ...string) []*Row {
	t.Helper()
	rows, err := newTable(t, family, lines...).Normalize()
	require.NoError(t, err)
	return rows
}

func TestAverage(t *testing.T) {
	tab := newTable(t, runfmt.MPI,
		"Approximate;2;4;0.1;1;10;1.5#",
		"OMP+MPI;2;4;1;1;1;1#",
		"Approximate;2;4;0.2;2;20;2.25#",
		"Approximate;2;4;0.4;4;40;3.125#",
	)
	acc := tab.Groups[Key{"Approximate", "2", "4"}]
	require.NotNil(t, acc)
	if acc.Count != 3 {
		t.Fatalf("Count = %d, want 3", acc.Count)
	}
	want := []float64{0.7 / 3, 7.0 / 3, 70.0 / 3, 6.875 / 3}
	for i, got := range acc.Means() {
		if math.Abs(got-want[i]) > 1e-9 {
			t.Errorf("mean[%d] = %v, want %v", i, got, want[i])
		}
	}
	if len(tab.Groups) != 2 {
		t.Errorf("have %d groups, want 2", len(tab.Groups))
	}
}

func TestBaselineRows(t *testing.T) {
	for _, test := range []struct {
		family runfmt.Family
		lines  []string
	}{
		{runfmt.MPI, []string{"Approximate;2;4;0.1;0.2;0.3;7.3#", "OMP+MPI;2;4;1;1;1;1#", "Approximate;2;4;0.1;0.2;0.3;1.9#"}},
		{runfmt.CUDA, []string{"Approximate;2;32;0.1;0.2;5.5#", "OMP+CUDA;2;32;1;1;1#"}},
		// CUDA baseline rows are constants, even at zero time.
		{runfmt.CUDA, []string{"Approximate;0;32;0;0;0#"}},
	} {
		for _, row := range normalize(t, test.family, test.lines...) {
			if row.Modality != Baseline {
				continue
			}
			f := row.Fields()
			if got := f[len(f)-2]; got != "1.00000000" {
				t.Errorf("%v %s: speedup %s, want 1.00000000", test.family, row.Key, got)
			}
			if got := f[len(f)-1]; got != "100.0000" {
				t.Errorf("%v %s: efficiency %s, want 100.0000", test.family, row.Key, got)
			}
		}
	}
}

func TestSpeedupMonotonic(t *testing.T) {
	for _, test := range []struct {
		family           runfmt.Family
		baseline, prefix string
	}{
		{runfmt.MPI, "Approximate;2;4;0;0;0;1.0#", "OMP+MPI;2;4;0;0;0;"},
		{runfmt.CUDA, "Approximate;4;64;0;0;1.0#", "OMP+CUDA;4;64;0;0;"},
	} {
		var prevSpeedup, prevEfficiency float64
		for _, own := range []string{"2.0", "1.5", "0.9", "0.25"} {
			row := normalize(t, test.family, test.baseline, test.prefix+own+"#")[1]
			if row.Speedup <= prevSpeedup {
				t.Errorf("%v: speedup at time %s is %v, not above %v", test.family, own, row.Speedup, prevSpeedup)
			}
			if row.Efficiency <= prevEfficiency {
				t.Errorf("%v: efficiency at time %s is %v, not above %v", test.family, own, row.Efficiency, prevEfficiency)
			}
			prevSpeedup, prevEfficiency = row.Speedup, row.Efficiency
		}
	}
}

func TestCUDAEfficiency(t *testing.T) {
	rows := normalize(t, runfmt.CUDA,
		"Approximate;4;64;1;2;8;",
		"OMP+CUDA_L1;4;64;1;1;2;",
	)
	row := rows[1]
	if row.Speedup != 4 {
		t.Errorf("speedup = %v, want 4", row.Speedup)
	}
	if row.Efficiency != 100 {
		t.Errorf("efficiency = %v, want 100", row.Efficiency)
	}
}

func TestKeysOrder(t *testing.T) {
	tab := newTable(t, runfmt.CUDA,
		"OMP+CUDA;10;2;1;1;1;",
		"Approximate;10;2;1;1;1;",
		"OMP+CUDA;2;2;1;1;1;",
		"OMP+CUDA;2;16;1;1;1;",
		"Approximate;2;16;1;1;1;",
		"Approximate;2;2;1;1;1;",
		"OMP+CUDA;10;16;1;1;1;",
		"OMP+CUDA;2;2;1;1;1;",
	)
	want := []Key{
		{"OMP+CUDA", "2", "16"},
		{"OMP+CUDA", "2", "2"},
		{"OMP+CUDA", "10", "16"},
		{"OMP+CUDA", "10", "2"},
		{"Approximate", "2", "16"},
		{"Approximate", "2", "2"},
		{"Approximate", "10", "2"},
	}
	if diff := cmp.Diff(want, tab.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"OMP+CUDA", "Approximate"}, tab.Modalities); diff != "" {
		t.Errorf("modalities mismatch (-want +got):\n%s", diff)
	}
}

func TestKeysOrderEqualThreads(t *testing.T) {
	// "02" and "2" are distinct groups with equal thread counts; each
	// keeps its secondaries together, in first-seen order.
	tab := newTable(t, runfmt.MPI,
		"Approximate;2;8;1;1;1;1#",
		"Approximate;02;4;1;1;1;1#",
		"Approximate;2;16;1;1;1;1#",
		"Approximate;1;4;1;1;1;1#",
	)
	want := []Key{
		{"Approximate", "1", "4"},
		{"Approximate", "2", "16"},
		{"Approximate", "2", "8"},
		{"Approximate", "02", "4"},
	}
	if diff := cmp.Diff(want, tab.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeErrors(t *testing.T) {
	for _, test := range []struct {
		name   string
		family runfmt.Family
		lines  []string
		kind   error
		key    Key
	}{
		{
			"mpi without baseline",
			runfmt.MPI,
			[]string{"Approximate;2;4;1;1;1;1#", "OMP+MPI;2;4;1;1;1;1#", "OMP+MPI;4;4;1;1;1;1#"},
			ErrMissingBaseline,
			Key{"OMP+MPI", "4", "4"},
		},
		{
			"mpi without OMP+MPI group",
			runfmt.MPI,
			[]string{"Approximate;2;4;1;1;1;1#", "OMP+MPI;2;4;1;1;1;1#", "Approximate;2;8;1;1;1;1#"},
			ErrMissingBaseline,
			Key{"Approximate", "2", "8"},
		},
		{
			"cuda without baseline",
			runfmt.CUDA,
			[]string{"Approximate;2;32;1;1;1#", "OMP+CUDA;2;64;1;1;1#"},
			ErrMissingBaseline,
			Key{"OMP+CUDA", "2", "64"},
		},
		{
			"zero own time",
			runfmt.CUDA,
			[]string{"Approximate;2;32;1;1;1#", "OMP+CUDA;2;32;1;1;0#"},
			ErrDivisionByZero,
			Key{"OMP+CUDA", "2", "32"},
		},
		{
			"zero baseline time",
			runfmt.MPI,
			[]string{"Approximate;2;4;1;1;1;0#", "OMP+MPI;2;4;1;1;1;1#"},
			ErrDivisionByZero,
			Key{"Approximate", "2", "4"},
		},
		{
			"zero workers",
			runfmt.MPI,
			[]string{"Approximate;0;4;1;1;1;1#", "OMP+MPI;0;4;1;1;1;1#"},
			ErrDivisionByZero,
			Key{"OMP+MPI", "0", "4"},
		},
		{
			"overflowing speedup",
			runfmt.CUDA,
			[]string{"Approximate;1;32;1;1;1e308#", "OMP+CUDA;1;32;1;1;1e-300#"},
			ErrNotFinite,
			Key{"OMP+CUDA", "1", "32"},
		},
		{
			"overflowing mean",
			runfmt.MPI,
			[]string{"Approximate;2;4;1;1;1;1.5e308#", "Approximate;2;4;1;1;1;1.5e308#", "OMP+MPI;2;4;1;1;1;1#"},
			ErrNotFinite,
			Key{"Approximate", "2", "4"},
		},
		{
			"zero threads",
			runfmt.CUDA,
			[]string{"Approximate;0;32;1;1;1#", "OMP+CUDA;0;32;1;1;1#"},
			ErrDivisionByZero,
			Key{"OMP+CUDA", "0", "32"},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			rows, err := newTable(t, test.family, test.lines...).Normalize()
			if rows != nil {
				t.Errorf("got %d rows with error", len(rows))
			}
			if !errors.Is(err, test.kind) {
				t.Fatalf("got error %v, want %v", err, test.kind)
			}
			var ge *GroupError
			require.True(t, errors.As(err, &ge), "error %v is not a *GroupError", err)
			if ge.Key != test.key {
				t.Errorf("error for group %s, want %s", ge.Key, test.key)
			}
		})
	}
}

func TestAnalyzeWrapsErrors(t *testing.T) {
	_, err := Analyze(strings.NewReader("OMP+CUDA;2;64;1;1;1#\n"), "runs/1000.csv", runfmt.CUDA)
	require.Error(t, err)
	if !errors.Is(err, ErrMissingBaseline) {
		t.Errorf("error %v does not match ErrMissingBaseline", err)
	}
	if !strings.HasPrefix(err.Error(), "runs/1000.csv: ") {
		t.Errorf("error %q does not name the file", err)
	}

	_, err = Analyze(strings.NewReader("OMP+CUDA;2;64;1;1#\n"), "runs/1000.csv", runfmt.CUDA)
	if !errors.Is(err, runfmt.ErrMalformedRecord) {
		t.Errorf("got error %v, want ErrMalformedRecord", err)
	}

	_, err = Analyze(strings.NewReader("Approximate;2;64;1;1;1#\n"), "runs/1000.csv", 0)
	require.ErrorContains(t, err, "invalid log family")
}
