// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/pkg/errors"

	"github.com/edistbench/parstat/internal/tree"
	"github.com/edistbench/parstat/scaling"
	"github.com/edistbench/parstat/storage/db"
)

// dbFlags select the results database.
type dbFlags struct {
	driver string
	dsn    string
}

func (d *dbFlags) setup(cmd *kingpin.CmdClause) {
	cmd.Flag("driver", "Database driver.").Default("sqlite3").Envar("PARSTAT_DB_DRIVER").EnumVar(&d.driver, "sqlite3", "mysql")
	cmd.Flag("dsn", "Database data source name, such as a sqlite3 file name.").Envar("PARSTAT_DB_DSN").Required().StringVar(&d.dsn)
}

func (d *dbFlags) open() (*db.DB, error) {
	sdb, err := db.OpenSQL(d.driver, d.dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", d.driver)
	}
	return sdb, nil
}

type storeCommand struct {
	batchFlags
	dbFlags
}

func (c *storeCommand) setup(a *app, k *kingpin.Application) {
	cmd := k.Command("store", "Load every report under the input directory into a database.")
	c.batchFlags.setup(cmd, false)
	c.dbFlags.setup(cmd)
	cmd.Action(func(*kingpin.ParseContext) error { return c.run(a) })
}

func (c *storeCommand) run(a *app) error {
	sdb, err := c.open()
	if err != nil {
		return err
	}
	defer sdb.Close()

	w := c.walker(a, a.cfg.Results, "")
	st, err := w.Run(a.ctx, func(ctx context.Context, f tree.File) error {
		rep, err := readReportFile(f)
		if err != nil {
			return err
		}
		_, err = sdb.InsertReport(ctx, filepath.ToSlash(f.Rel), rep)
		return err
	})
	return a.summarize("store", st, err)
}

type queryCommand struct {
	dbFlags
	q db.Query
}

func (c *queryCommand) setup(a *app, k *kingpin.Application) {
	cmd := k.Command("query", "Print stored report rows, grouped by report.")
	c.dbFlags.setup(cmd)
	cmd.Flag("modality", "Only print rows of this modality.").StringVar(&c.q.Modality)
	cmd.Flag("path", "Only print rows of the report stored under this path.").StringVar(&c.q.Path)
	cmd.Action(func(*kingpin.ParseContext) error { return c.run(a) })
}

func (c *queryCommand) run(a *app) error {
	sdb, err := c.open()
	if err != nil {
		return err
	}
	defer sdb.Close()

	res, err := sdb.Query(a.ctx, c.q)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(a.stdout)
	for i, r := range res {
		if i == 0 || r.Path != res[i-1].Path {
			if i > 0 {
				w.WriteString("\n")
			}
			w.WriteString(r.Path + "\n")
			w.WriteString(strings.Join(scaling.Header(r.Family), ";") + "\n")
		}
		w.WriteString(strings.Join(r.Fields(), ";") + "\n")
	}
	return w.Flush()
}
