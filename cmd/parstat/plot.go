// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/pkg/errors"

	"github.com/edistbench/parstat/chart"
	"github.com/edistbench/parstat/internal/config"
	"github.com/edistbench/parstat/internal/tree"
	"github.com/edistbench/parstat/runfmt"
	"github.com/edistbench/parstat/scaling"
)

type plotCommand struct {
	batchFlags
	format string
}

func (c *plotCommand) setup(a *app, k *kingpin.Application) {
	cmd := k.Command("plot", "Draw a speedup chart for every report under the input directory.")
	c.batchFlags.setup(cmd, true)
	cmd.Flag("format", "Image format (default: config, then jpg).").EnumVar(&c.format, config.Formats...)
	cmd.Action(func(*kingpin.ParseContext) error { return c.run(a) })
}

func (c *plotCommand) run(a *app) error {
	format := orDefault(c.format, a.cfg.Charts.Format)
	w := c.walker(a, a.cfg.Results, orDefault(c.out, a.cfg.Plots))
	w.Ext = "." + format
	st, err := w.Run(a.ctx, func(ctx context.Context, f tree.File) error {
		rep, err := readReportFile(f)
		if err != nil {
			return err
		}
		o := chartOptions(a.cfg, rep.Family)
		o.Title = strings.TrimSuffix(filepath.Base(f.Path), filepath.Ext(f.Path)) + a.cfg.Charts.TitleSuffix
		p, err := chart.New(rep, o)
		if errors.Is(err, chart.ErrNoData) {
			return errors.Wrap(tree.ErrSkip, "no rows to plot")
		} else if err != nil {
			return err
		}
		data, err := chart.Encode(p, o, format)
		if err != nil {
			return err
		}
		return tree.WriteFile(f.Out, data)
	})
	return a.summarize("plot", st, err)
}

// chartOptions returns the chart options configured for family f.
func chartOptions(cfg *config.Config, f runfmt.Family) chart.Options {
	o := chart.DefaultOptions(f)
	o.DPI = cfg.Charts.DPI
	axis := cfg.Charts.MPI
	if f == runfmt.CUDA {
		axis = cfg.Charts.CUDA
	}
	o.Modalities, o.YMax = axis.Modalities, axis.YMax
	return o
}

// readReportFile reads the report in f, skipping files whose name
// does not end in .csv.
func readReportFile(f tree.File) (*scaling.Report, error) {
	if !strings.EqualFold(filepath.Ext(f.Path), ".csv") {
		return nil, errors.Wrap(tree.ErrSkip, "not a .csv report")
	}
	return readReport(f.Path)
}

// readReport reads the report file at path.
func readReport(path string) (*scaling.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return scaling.ReadReport(f, path)
}
