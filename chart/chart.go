// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chart draws speedup charts from scaling reports.
//
// An MPI chart has one series per OMP thread count, with the MPI process
// count on the x axis. A CUDA chart has one series per modality (or per
// modality and block size, when a modality was run with several block
// sizes), with the OMP thread count on the x axis. Each point is the
// mean speedup of the rows at that x value.
package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"sort"
	"strconv"

	"github.com/aclements/go-moremath/stats"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/edistbench/parstat/runfmt"
	"github.com/edistbench/parstat/scaling"
)

// ErrNoData is returned by New for a report with no rows of the
// plotted modalities.
var ErrNoData = errors.New("no plottable rows")

// Options control a chart.
type Options struct {
	Title string

	// Modalities selects the rows to plot.
	Modalities []string

	// YMax is the top of the speedup axis.
	YMax float64

	// Width and Height are the image size. DPI applies to raster
	// formats.
	Width, Height vg.Length
	DPI           int
}

// DefaultOptions returns the chart options for family f.
func DefaultOptions(f runfmt.Family) Options {
	o := Options{Width: 12 * vg.Inch, Height: 8 * vg.Inch, DPI: 300}
	switch f {
	case runfmt.MPI:
		o.Modalities, o.YMax = []string{scaling.ParallelReference}, 6.5
	case runfmt.CUDA:
		o.Modalities, o.YMax = []string{"OMP+CUDA", "OMP+CUDA_L1"}, 3
	}
	return o
}

// A Series is one line of a chart.
type Series struct {
	Label  string
	Points plotter.XYs
}

// Collect groups the rows of rep into chart series.
func Collect(rep *scaling.Report, modalities []string) []Series {
	var out []Series
	for _, m := range modalities {
		var rows []*scaling.Row
		for _, row := range rep.Rows {
			if row.Modality == m {
				rows = append(rows, row)
			}
		}
		if len(rows) == 0 {
			continue
		}
		switch rep.Family {
		case runfmt.MPI:
			for _, g := range split(rows, func(r *scaling.Row) string { return r.OMP }) {
				label := "OMP=" + g.key
				if len(modalities) > 1 {
					label = m + " " + label
				}
				out = append(out, Series{label, points(g.rows, func(r *scaling.Row) int { return r.Procs })})
			}
		case runfmt.CUDA:
			groups := split(rows, func(r *scaling.Row) string { return r.Secondary })
			for _, g := range groups {
				label := m
				if len(groups) > 1 {
					label = fmt.Sprintf("%s BlockSize=%s", m, g.key)
				}
				out = append(out, Series{label, points(g.rows, func(r *scaling.Row) int { return r.Threads })})
			}
		}
	}
	return out
}

type rowGroup struct {
	key  string
	rows []*scaling.Row
}

// split groups rows by key, ordering groups numerically by key where
// keys are integers and lexically otherwise.
func split(rows []*scaling.Row, key func(*scaling.Row) string) []rowGroup {
	idx := make(map[string]int)
	var groups []rowGroup
	for _, r := range rows {
		k := key(r)
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, rowGroup{key: k})
		}
		groups[i].rows = append(groups[i].rows, r)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		a, aerr := strconv.Atoi(groups[i].key)
		b, berr := strconv.Atoi(groups[j].key)
		if aerr == nil && berr == nil {
			return a < b
		}
		return groups[i].key < groups[j].key
	})
	return groups
}

// points returns the mean speedup of rows at each x, in x order.
func points(rows []*scaling.Row, x func(*scaling.Row) int) plotter.XYs {
	byX := make(map[int][]float64)
	var xs []int
	for _, r := range rows {
		v := x(r)
		if _, ok := byX[v]; !ok {
			xs = append(xs, v)
		}
		byX[v] = append(byX[v], r.Speedup)
	}
	sort.Ints(xs)
	pts := make(plotter.XYs, len(xs))
	for i, v := range xs {
		pts[i].X = float64(v)
		pts[i].Y = stats.Mean(byX[v])
	}
	return pts
}

// New returns the chart of rep.
func New(rep *scaling.Report, o Options) (*plot.Plot, error) {
	series := Collect(rep, o.Modalities)
	if len(series) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = o.Title
	p.Title.TextStyle.Font.Size = 24
	p.Y.Label.Text = "Speedup"
	switch rep.Family {
	case runfmt.MPI:
		p.X.Label.Text = "Number of Processes (MPI)"
	case runfmt.CUDA:
		p.X.Label.Text = "OMP"
	}
	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.Padding = 1 * vg.Millimeter
	p.Add(plotter.NewGrid())

	colors, err := colorsFor(len(series))
	if err != nil {
		return nil, err
	}
	var xs []float64
	for i, s := range series {
		line, pts, err := plotter.NewLinePoints(s.Points)
		if err != nil {
			return nil, errors.Wrapf(err, "series %s", s.Label)
		}
		line.Color = colors[i]
		pts.Color = colors[i]
		pts.Shape = draw.CircleGlyph{}
		p.Add(line, pts)
		p.Legend.Add(s.Label, line, pts)
		for _, pt := range s.Points {
			xs = append(xs, pt.X)
		}
	}

	p.X.Tick.Marker = xTicks(xs)
	lo, hi := stats.Bounds(xs)
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	p.X.Min, p.X.Max = lo-pad, hi+pad
	p.Y.Min, p.Y.Max = 0, o.YMax
	return p, nil
}

// xTicks marks every distinct x value.
func xTicks(xs []float64) plot.ConstantTicks {
	seen := make(map[float64]bool)
	var ticks plot.ConstantTicks
	for _, x := range xs {
		if seen[x] {
			continue
		}
		seen[x] = true
		ticks = append(ticks, plot.Tick{Value: x, Label: strconv.FormatFloat(x, 'f', -1, 64)})
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i].Value < ticks[j].Value })
	return ticks
}

// colorsFor returns n colors from a qualitative palette, repeating it
// when n exceeds its size.
func colorsFor(n int) ([]color.Color, error) {
	const name, fewest, most = "Paired", 3, 12
	k := n
	if k < fewest {
		k = fewest
	} else if k > most {
		k = most
	}
	pal, err := brewer.GetPalette(brewer.TypeQualitative, name, k)
	if err != nil {
		return nil, err
	}
	base := pal.Colors()
	out := make([]color.Color, n)
	for i := range out {
		out[i] = base[i%len(base)]
	}
	return out, nil
}

// Encode renders p in the image format named by format ("jpg", "png",
// "svg", ...).
func Encode(p *plot.Plot, o Options, format string) ([]byte, error) {
	var wt io.WriterTo
	switch format {
	case "jpg", "jpeg", "png", "tif", "tiff":
		c := vgimg.NewWith(vgimg.UseWH(o.Width, o.Height), vgimg.UseDPI(o.DPI), vgimg.UseBackgroundColor(color.White))
		p.Draw(draw.New(c))
		switch format {
		case "jpg", "jpeg":
			wt = vgimg.JpegCanvas{Canvas: c}
		case "png":
			wt = vgimg.PngCanvas{Canvas: c}
		default:
			wt = vgimg.TiffCanvas{Canvas: c}
		}
	default:
		var err error
		if wt, err = p.WriterTo(o.Width, o.Height, format); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, errors.Wrapf(err, "encode %s", format)
	}
	return buf.Bytes(), nil
}
