// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scaling

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/edistbench/parstat/runfmt"
)

func analyze(t *testing.T, family runfmt.Family, input string) string {
	t.Helper()
	rep, err := Analyze(strings.NewReader(input), "test", family)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, rep))
	return buf.String()
}

func TestWriteReportMPI(t *testing.T) {
	got := analyze(t, runfmt.MPI, `Approximate;2;4;0.1;0.2;0.3;1.0#
OMP+MPI;2;4;0.05;0.15;0.2;0.9#
`)
	want := `Modality;OMP;MPI;String_generation_time;Communication_time;Edit_distance_time;Program_execution_time;speedup;efficiency
Approximate;2;4;0.10000000;0.20000000;0.30000000;1.00000000;1.00000000;100.0000
OMP+MPI;2;4;0.05000000;0.15000000;0.20000000;0.90000000;1.11111111;13.8889
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteReportCUDA(t *testing.T) {
	got := analyze(t, runfmt.CUDA, `Approximate;1;256;0.5;4;5;
OMP+CUDA;1;256;0.5;1;2;
OMP+CUDA;1;256;0.5;1;3;
OMP+CUDA;2;1024;0.5;1;1;
Approximate;2;1024;0.5;4;4;
OMP+CUDA;2;128;0.5;1;1;
Approximate;2;128;0.5;4;4;
`)
	want := `Modality;OMP;BlockSize;String_generation_time;Kernel_edit_distance_time;Program_execution_time;speedup;efficiency
Approximate;1;256;0.50000000;4.00000000;5.00000000;1.00000000;100.0000
Approximate;2;1024;0.50000000;4.00000000;4.00000000;1.00000000;100.0000
Approximate;2;128;0.50000000;4.00000000;4.00000000;1.00000000;100.0000
OMP+CUDA;1;256;0.50000000;1.00000000;2.50000000;2.00000000;200.0000
OMP+CUDA;2;1024;0.50000000;1.00000000;1.00000000;4.00000000;200.0000
OMP+CUDA;2;128;0.50000000;1.00000000;1.00000000;4.00000000;200.0000
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestReadReport(t *testing.T) {
	const input = `Modality;OMP;MPI;String_generation_time;Communication_time;Edit_distance_time;Program_execution_time;speedup;efficiency
Approximate;2;4;0.10000000;0.20000000;0.30000000;1.00000000;1.00000000;100.0000

OMP+MPI;2;4;0.05000000;0.15000000;0.20000000;0.90000000;1.11111111;13.8889
`
	rep, err := ReadReport(strings.NewReader(input), "r.csv")
	require.NoError(t, err)
	want := &Report{
		Family: runfmt.MPI,
		Rows: []*Row{
			{Key: Key{"Approximate", "2", "4"}, Threads: 2, Procs: 4, Times: []float64{0.1, 0.2, 0.3, 1}, Speedup: 1, Efficiency: 100},
			{Key: Key{"OMP+MPI", "2", "4"}, Threads: 2, Procs: 4, Times: []float64{0.05, 0.15, 0.2, 0.9}, Speedup: 1.11111111, Efficiency: 13.8889},
		},
	}
	if diff := cmp.Diff(want, rep, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}

	// Writing it back reproduces the input, minus the blank line.
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, rep))
	if got, want := buf.String(), strings.Replace(input, "\n\n", "\n", 1); got != want {
		t.Errorf("rewritten report:\n%s\nwant:\n%s", got, want)
	}
}

func TestReadReportErrors(t *testing.T) {
	header := strings.Join(Header(runfmt.CUDA), ";") + "\n"
	for _, test := range []struct {
		name  string
		input string
		kind  error
		line  int
	}{
		{"empty", "", runfmt.ErrMalformedRecord, 0},
		{"unknown header", "a;b;c\n", runfmt.ErrMalformedRecord, 1},
		{"short row", header + "Approximate;1;32;1;1;1;1\n", runfmt.ErrMalformedRecord, 2},
		{"bad number", header + "Approximate;1;32;1;1;x;1;100\n", runfmt.ErrMalformedRecord, 2},
		{"infinite speedup", header + "OMP+CUDA;1;32;1;1;0;+Inf;100\n", runfmt.ErrMalformedRecord, 2},
		{"bad omp", header + "Approximate;one;32;1;1;1;1;100\n", runfmt.ErrInvalidThreadCount, 2},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := ReadReport(strings.NewReader(test.input), "r.csv")
			if !errors.Is(err, test.kind) {
				t.Fatalf("got error %v, want %v", err, test.kind)
			}
			var se *runfmt.SyntaxError
			require.True(t, errors.As(err, &se))
			if se.Line != test.line {
				t.Errorf("error on line %d, want %d", se.Line, test.line)
			}
		})
	}
}

func TestFormatHTML(t *testing.T) {
	rep, err := Analyze(strings.NewReader("Approximate;1;32;1;1;4;\nGPU<b>;1;32;1;1;2;\n"), "test", runfmt.CUDA)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, FormatHTML(&buf, "1000 characters", rep))
	out := buf.String()
	for _, want := range []string{
		"<title>1000 characters</title>",
		"<th>BlockSize",
		`<tr class="baseline"><td>Approximate<td>1<td>32`,
		"<td>GPU&lt;b&gt;",
		"<td>2.00000000<td>200.0000",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML output missing %q:\n%s", want, out)
		}
	}
}
