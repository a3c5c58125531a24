// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sqlite3 provides the sqlite3 driver for
// parstat/storage/db. It must be imported instead of go-sqlite3 to
// ensure foreign keys are properly honored.
package sqlite3

import (
	"database/sql"

	"github.com/pkg/errors"

	// Registers the "sqlite3" database driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/edistbench/parstat/storage/db"
)

func init() {
	db.RegisterOpenHook("sqlite3", func(sqldb *sql.DB) error {
		// Each connection to ":memory:" opens a different database,
		// and the foreign_keys pragma is per connection.
		sqldb.SetMaxOpenConns(1)
		if _, err := sqldb.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return errors.Wrap(err, "enable foreign keys")
		}
		return nil
	})
}
