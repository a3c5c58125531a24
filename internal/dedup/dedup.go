// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dedup removes repeated lines from report files.
package dedup

import (
	"bytes"
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/edistbench/parstat/internal/tree"
)

// Lines returns the distinct lines of data in first-seen order. A line
// includes its "\n" terminator, so a final unterminated line differs
// from the same text followed by a newline. Lines is idempotent.
func Lines(data []byte) []byte {
	seen := make(map[string]bool)
	var out bytes.Buffer
	for len(data) > 0 {
		n := bytes.IndexByte(data, '\n') + 1
		if n == 0 {
			n = len(data)
		}
		line := data[:n]
		data = data[n:]
		if seen[string(line)] {
			continue
		}
		seen[string(line)] = true
		out.Write(line)
	}
	return out.Bytes()
}

// File writes the distinct lines of the file src to dst.
func File(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return errors.Wrap(err, "dedup")
	}
	return tree.WriteFile(dst, Lines(data))
}

// Tree deduplicates every file under w.Root into w.OutRoot.
func Tree(ctx context.Context, w *tree.Walker) (tree.Stats, error) {
	return w.Run(ctx, func(ctx context.Context, f tree.File) error {
		return File(f.Path, f.Out)
	})
}
