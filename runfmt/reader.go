// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runfmt reads the per-run timing logs written by the parallel
// edit-distance benchmarks.
//
// Each line of a log records one run:
//
//	modality;ompThreads;secondary;time1;...;timeN<terminator>
//
// where secondary is the MPI process count or the CUDA block size,
// depending on the log's Family, and the final character of the line
// is a terminator that carries no data.
package runfmt

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Error kinds reported through *SyntaxError.
var (
	// ErrMalformedRecord means a line has the wrong number of fields
	// or a timing field is not a number.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrInvalidThreadCount means a thread or process count is not an
	// integer.
	ErrInvalidThreadCount = errors.New("invalid thread count")
)

// Delim separates fields on a log line.
const Delim = ";"

// A Record is one decoded run.
type Record struct {
	Modality string
	// OMP is the OpenMP thread count as written in the log.
	// Grouping and output use this string; Threads is its value.
	OMP string
	// Secondary is the MPI process count or CUDA block size as
	// written in the log.
	Secondary string
	// Times holds the family's timing fields in log order.
	Times []float64

	Threads int
	// Procs is the MPI process count. It is zero for CUDA records.
	Procs int

	fileName string
	line     int
}

// Pos returns the file name and line number of the record.
func (r *Record) Pos() (fileName string, line int) {
	return r.fileName, r.line
}

// Clone makes a copy of r that does not share storage with the Reader.
func (r *Record) Clone() *Record {
	r2 := *r
	r2.Times = append([]float64(nil), r.Times...)
	return &r2
}

// A SyntaxError reports a line of a log file that could not be decoded.
// Kind is ErrMalformedRecord or ErrInvalidThreadCount.
type SyntaxError struct {
	FileName string
	Line     int
	Kind     error
	Msg      string
}

func (e *SyntaxError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %v: %s", e.FileName, e.Line, e.Kind, e.Msg)
}

// Unwrap returns the error kind, so errors.Is(err, ErrMalformedRecord)
// works through wrapping.
func (e *SyntaxError) Unwrap() error {
	return e.Kind
}

// A Reader reads run records of one Family.
//
// Its API is modeled on bufio.Scanner. A Reader retains ownership of
// the Record it returns; callers that keep a record past the next call
// to Scan should Clone it.
type Reader struct {
	s      *bufio.Scanner
	family Family
	err    error

	rec Record
}

// NewReader constructs a reader of family records from r.
// fileName is used in error messages; it is purely diagnostic.
func NewReader(r io.Reader, fileName string, family Family) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName, family)
	return reader
}

// Reset resets the reader to begin reading from a new input.
func (r *Reader) Reset(ior io.Reader, fileName string, family Family) {
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.s = bufio.NewScanner(ior)
	r.family = family
	r.err = nil
	r.rec = Record{Times: r.rec.Times[:0], fileName: fileName}
}

// Family returns the family the reader decodes.
func (r *Reader) Family() Family {
	return r.family
}

// Scan advances the reader to the next record and reports whether a
// record was read. Blank lines are skipped. Scan stops at the first
// line that cannot be decoded; the caller should then use Err, which
// returns a *SyntaxError for that line.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	for r.s.Scan() {
		r.rec.line++
		line := strings.TrimSpace(r.s.Text())
		if line == "" {
			continue
		}
		if err := r.parseLine(line); err != nil {
			r.err = err
			return false
		}
		return true
	}
	if err := r.s.Err(); err != nil {
		r.err = errors.Wrapf(err, "%s:%d", r.rec.fileName, r.rec.line)
	}
	return false
}

// Result returns the record read by the last successful call to Scan.
func (r *Reader) Result() *Record {
	return &r.rec
}

// Err returns the error that stopped Scan, if any. It returns nil if
// Scan stopped at the end of the input.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) newSyntaxError(kind error, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{r.rec.fileName, r.rec.line, kind, fmt.Sprintf(format, args...)}
}

// parseLine decodes line, which has already had surrounding
// whitespace removed, into r.rec.
func (r *Reader) parseLine(line string) error {
	// The last character terminates the record and is dropped
	// whatever it is.
	_, size := utf8.DecodeLastRuneInString(line)
	line = line[:len(line)-size]

	fields := strings.Split(line, Delim)
	if len(fields) != r.family.Fields() {
		return r.newSyntaxError(ErrMalformedRecord, "have %d fields, want %d", len(fields), r.family.Fields())
	}

	rec := &r.rec
	rec.Modality, rec.OMP, rec.Secondary = fields[0], fields[1], fields[2]

	threads, err := strconv.Atoi(strings.TrimSpace(rec.OMP))
	if err != nil {
		return r.newSyntaxError(ErrInvalidThreadCount, "OMP thread count %q is not an integer", rec.OMP)
	}
	rec.Threads = threads
	rec.Procs = 0
	if r.family == MPI {
		procs, err := strconv.Atoi(strings.TrimSpace(rec.Secondary))
		if err != nil {
			return r.newSyntaxError(ErrInvalidThreadCount, "MPI process count %q is not an integer", rec.Secondary)
		}
		rec.Procs = procs
	}

	rec.Times = rec.Times[:0]
	for i, f := range fields[3:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return r.newSyntaxError(ErrMalformedRecord, "timing field %d: %q is not a number", i+1, f)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return r.newSyntaxError(ErrMalformedRecord, "timing field %d: %q is not finite", i+1, f)
		}
		rec.Times = append(rec.Times, v)
	}
	return nil
}

// ReadAll reads every record from r. It returns the first decoding or
// I/O error.
func ReadAll(r io.Reader, fileName string, family Family) ([]*Record, error) {
	reader := NewReader(r, fileName, family)
	var out []*Record
	for reader.Scan() {
		out = append(out, reader.Result().Clone())
	}
	return out, reader.Err()
}
