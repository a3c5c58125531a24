// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/edistbench/parstat/internal/tree"
	"github.com/edistbench/parstat/runfmt"
	"github.com/edistbench/parstat/scaling"
)

type analyzeCommand struct {
	batchFlags
	family string
}

func (c *analyzeCommand) setup(a *app, k *kingpin.Application) {
	cmd := k.Command("analyze", "Write a report for every log file under the input directory.")
	c.batchFlags.setup(cmd, true)
	cmd.Flag("family", "Log family of every input file, instead of detecting it from the path.").EnumVar(&c.family, "mpi", "cuda")
	cmd.Action(func(*kingpin.ParseContext) error { return c.run(a) })
}

func (c *analyzeCommand) run(a *app) error {
	w := c.walker(a, a.cfg.Input, orDefault(c.out, a.cfg.Results))
	st, err := w.Run(a.ctx, func(ctx context.Context, f tree.File) error {
		fam, err := family(c.family, f.Path)
		if err != nil {
			return err
		}
		rep, err := analyzeFile(f.Path, fam)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := scaling.WriteReport(&buf, rep); err != nil {
			return err
		}
		return tree.WriteFile(f.Out, buf.Bytes())
	})
	return a.summarize("analyze", st, err)
}

// analyzeFile returns the report of the log file at path.
func analyzeFile(path string, fam runfmt.Family) (*scaling.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return scaling.Analyze(f, path, fam)
}
