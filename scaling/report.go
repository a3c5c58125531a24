// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scaling

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/edistbench/parstat/runfmt"
)

// A Report is the normalized table of one log file.
type Report struct {
	Family runfmt.Family
	Rows   []*Row
}

var headers = map[runfmt.Family][]string{
	runfmt.MPI: {"Modality", "OMP", "MPI", "String_generation_time", "Communication_time", "Edit_distance_time", "Program_execution_time", "speedup", "efficiency"},
	runfmt.CUDA: {"Modality", "OMP", "BlockSize", "String_generation_time", "Kernel_edit_distance_time", "Program_execution_time", "speedup", "efficiency"},
}

// Header returns the report column names for family f.
func Header(f runfmt.Family) []string {
	h, ok := headers[f]
	if !ok {
		panic(fmt.Sprintf("scaling: no header for %v", f))
	}
	return append([]string(nil), h...)
}

// Fields returns the row formatted as report columns. Times and
// speedup have 8 decimal places, efficiency has 4.
func (r *Row) Fields() []string {
	out := make([]string, 0, 5+len(r.Times))
	out = append(out, r.Modality, r.OMP, r.Secondary)
	for _, v := range r.Times {
		out = append(out, strconv.FormatFloat(v, 'f', 8, 64))
	}
	out = append(out,
		strconv.FormatFloat(r.Speedup, 'f', 8, 64),
		strconv.FormatFloat(r.Efficiency, 'f', 4, 64))
	return out
}

// WriteReport writes rep to w: a header line, then one line per row,
// with fields separated by ';'.
func WriteReport(w io.Writer, rep *Report) error {
	var buf bytes.Buffer
	buf.WriteString(strings.Join(Header(rep.Family), runfmt.Delim))
	buf.WriteByte('\n')
	for _, row := range rep.Rows {
		buf.WriteString(strings.Join(row.Fields(), runfmt.Delim))
		buf.WriteByte('\n')
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// ReadReport parses a report written by WriteReport. The family is
// taken from the header line. fileName is used in error messages.
func ReadReport(r io.Reader, fileName string) (*Report, error) {
	if fileName == "" {
		fileName = "<unknown>"
	}
	s := bufio.NewScanner(r)
	rep := new(Report)
	line := 0
	syntaxError := func(kind error, format string, args ...interface{}) error {
		return &runfmt.SyntaxError{FileName: fileName, Line: line, Kind: kind, Msg: fmt.Sprintf(format, args...)}
	}
	for s.Scan() {
		line++
		text := strings.TrimRight(s.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Split(text, runfmt.Delim)
		if rep.Family == 0 {
			for f, h := range headers {
				if strings.Join(h, runfmt.Delim) == text {
					rep.Family = f
				}
			}
			if rep.Family == 0 {
				return nil, syntaxError(runfmt.ErrMalformedRecord, "unrecognized report header")
			}
			continue
		}
		if want := len(headers[rep.Family]); len(fields) != want {
			return nil, syntaxError(runfmt.ErrMalformedRecord, "have %d fields, want %d", len(fields), want)
		}
		row := &Row{Key: Key{fields[0], fields[1], fields[2]}}
		var err error
		if row.Threads, err = strconv.Atoi(row.OMP); err != nil {
			return nil, syntaxError(runfmt.ErrInvalidThreadCount, "OMP thread count %q is not an integer", row.OMP)
		}
		if rep.Family == runfmt.MPI {
			if row.Procs, err = strconv.Atoi(row.Secondary); err != nil {
				return nil, syntaxError(runfmt.ErrInvalidThreadCount, "MPI process count %q is not an integer", row.Secondary)
			}
		}
		nums := make([]float64, len(fields)-3)
		for i, f := range fields[3:] {
			if nums[i], err = strconv.ParseFloat(f, 64); err != nil {
				return nil, syntaxError(runfmt.ErrMalformedRecord, "column %d: %q is not a number", i+4, f)
			}
			if math.IsNaN(nums[i]) || math.IsInf(nums[i], 0) {
				return nil, syntaxError(runfmt.ErrMalformedRecord, "column %d: %q is not finite", i+4, f)
			}
		}
		row.Times = nums[:len(nums)-2]
		row.Speedup, row.Efficiency = nums[len(nums)-2], nums[len(nums)-1]
		rep.Rows = append(rep.Rows, row)
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrapf(err, "%s:%d", fileName, line)
	}
	if rep.Family == 0 {
		return nil, syntaxError(runfmt.ErrMalformedRecord, "empty report")
	}
	return rep, nil
}
