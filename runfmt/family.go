// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runfmt

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// A Family identifies the layout of a run log: which secondary
// parallelism dimension it records and how many timing fields follow it.
type Family int

const (
	// MPI logs record OpenMP threads and MPI processes, followed by
	// creation, communication, execution and total times.
	MPI Family = 1 + iota
	// CUDA logs record OpenMP threads and the CUDA block size,
	// followed by creation, execution and total times.
	CUDA
)

// Families lists every known family, in a stable order.
var Families = []Family{MPI, CUDA}

func (f Family) String() string {
	switch f {
	case MPI:
		return "mpi"
	case CUDA:
		return "cuda"
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

// ParseFamily returns the family named s ("mpi" or "cuda", any case).
func ParseFamily(s string) (Family, error) {
	for _, f := range Families {
		if strings.EqualFold(s, f.String()) {
			return f, nil
		}
	}
	return 0, errors.Errorf("unknown family %q (want mpi or cuda)", s)
}

// Valid reports whether f is one of Families.
func (f Family) Valid() bool {
	return f == MPI || f == CUDA
}

// Fields returns the number of ';'-separated fields on one log line.
func (f Family) Fields() int {
	return 3 + f.TimeFields()
}

// TimeFields returns the number of timing fields on one log line. It
// panics if f is not Valid.
func (f Family) TimeFields() int {
	switch f {
	case MPI:
		return 4
	case CUDA:
		return 3
	}
	panic(fmt.Sprintf("runfmt: invalid %v", f))
}

// Secondary returns the column name of the family's secondary
// dimension.
func (f Family) Secondary() string {
	if f == CUDA {
		return "BlockSize"
	}
	return "MPI"
}

// dirMarkers maps the directory names used to partition log trees to
// their family.
var dirMarkers = []struct {
	marker string
	family Family
}{
	{"OMP_MPI", MPI},
	{"OMP_CUDA", CUDA},
}

// DetectFamily infers a family from path by looking for the nearest
// directory (or file) name containing "OMP_MPI" or "OMP_CUDA".
func DetectFamily(path string) (Family, bool) {
	segs := strings.Split(filepath.ToSlash(filepath.Clean(path)), "/")
	for i := len(segs) - 1; i >= 0; i-- {
		for _, m := range dirMarkers {
			if strings.Contains(segs[i], m.marker) {
				return m.family, true
			}
		}
	}
	return 0, false
}
