// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scaling

import "sort"

// Keys returns the table's keys in report order.
//
// Modalities appear in the order they were first seen. Within a
// modality, OMP values are ordered numerically (ties keep first-seen
// order) and, within one OMP value, secondary values are ordered as
// strings, so block size "16" precedes "2".
func (t *Table) Keys() []Key {
	out := make([]Key, 0, len(t.keys))
	for _, mod := range t.Modalities {
		// Distinct OMP strings of this modality in first-seen order,
		// and the secondary values seen with each.
		var omps []string
		secondaries := make(map[string][]string)
		for _, k := range t.keys {
			if k.Modality != mod {
				continue
			}
			if _, ok := secondaries[k.OMP]; !ok {
				omps = append(omps, k.OMP)
			}
			secondaries[k.OMP] = append(secondaries[k.OMP], k.Secondary)
		}

		threads := func(omp string) int {
			return t.Groups[Key{mod, omp, secondaries[omp][0]}].Threads
		}
		sort.SliceStable(omps, func(i, j int) bool {
			return threads(omps[i]) < threads(omps[j])
		})

		for _, omp := range omps {
			secs := secondaries[omp]
			sort.Strings(secs)
			for _, sec := range secs {
				out = append(out, Key{mod, omp, sec})
			}
		}
	}
	return out
}
