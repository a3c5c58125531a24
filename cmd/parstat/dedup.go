// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/alecthomas/kingpin/v2"

	"github.com/edistbench/parstat/internal/dedup"
)

type dedupCommand struct {
	batchFlags
}

func (c *dedupCommand) setup(a *app, k *kingpin.Application) {
	cmd := k.Command("dedup", "Copy every edit-distance report with repeated lines removed.")
	c.batchFlags.setup(cmd, true)
	cmd.Action(func(*kingpin.ParseContext) error { return c.run(a) })
}

func (c *dedupCommand) run(a *app) error {
	w := c.walker(a, a.cfg.Reports, orDefault(c.out, a.cfg.DistinctReports))
	st, err := dedup.Tree(a.ctx, w)
	return a.summarize("dedup", st, err)
}
