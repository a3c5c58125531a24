// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/pkg/errors"

	"github.com/edistbench/parstat/internal/tree"
	"github.com/edistbench/parstat/scaling"
)

type reportCommand struct {
	family string
	format string
	file   string
}

func (c *reportCommand) setup(a *app, k *kingpin.Application) {
	cmd := k.Command("report", "Print the report of one log file.")
	cmd.Flag("family", "Log family, instead of detecting it from the path.").EnumVar(&c.family, "mpi", "cuda")
	cmd.Flag("format", "Output format.").Default("csv").EnumVar(&c.format, "csv", "html")
	cmd.Arg("file", "Log file.").Required().ExistingFileVar(&c.file)
	cmd.Action(func(*kingpin.ParseContext) error { return c.run(a) })
}

func (c *reportCommand) run(a *app) error {
	fam, err := family(c.family, c.file)
	if errors.Is(err, tree.ErrSkip) {
		return errors.Errorf("%s: cannot tell the log family from the path; use --family", c.file)
	} else if err != nil {
		return err
	}
	rep, err := analyzeFile(c.file, fam)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch c.format {
	case "html":
		base := strings.TrimSuffix(filepath.Base(c.file), filepath.Ext(c.file))
		err = scaling.FormatHTML(&buf, base+a.cfg.Charts.TitleSuffix, rep)
	default:
		err = scaling.WriteReport(&buf, rep)
	}
	if err != nil {
		return err
	}
	_, err = a.stdout.Write(buf.Bytes())
	return err
}
