// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dbtest opens empty results databases for tests of
// parstat/storage/db and its callers.
package dbtest

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"flag"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"github.com/edistbench/parstat/storage/db"
	_ "github.com/edistbench/parstat/storage/db/sqlite3"
)

var mysqlDSN = flag.String("mysql", "", "run database tests against the MySQL server at this DSN (user:password@tcp(host:port)/) instead of in-memory SQLite")

// NewDB returns an empty results database that is closed when t
// finishes. It is an in-memory SQLite database unless -mysql is set,
// in which case it is a scratch database on that server.
func NewDB(t *testing.T) *db.DB {
	t.Helper()
	driver, dsn := "sqlite3", ":memory:"
	if *mysqlDSN != "" {
		driver, dsn = "mysql", scratchMySQL(t)
	}
	d, err := db.OpenSQL(driver, dsn)
	require.NoError(t, err, "open %s test database", driver)
	t.Cleanup(func() { d.Close() })

	reports, err := d.CountReports()
	require.NoError(t, err)
	rows, err := d.CountRows()
	require.NoError(t, err)
	if reports != 0 || rows != 0 {
		t.Fatalf("new %s database holds %d reports and %d report rows", driver, reports, rows)
	}
	return d
}

// scratchMySQL creates a randomly named database on the -mysql server,
// to be dropped when t finishes, and returns its DSN.
func scratchMySQL(t *testing.T) string {
	t.Helper()
	var suffix [6]byte
	_, err := rand.Read(suffix[:])
	require.NoError(t, err)
	name := "parstat_test_" + hex.EncodeToString(suffix[:])

	server, err := sql.Open("mysql", *mysqlDSN)
	require.NoError(t, err)
	if _, err := server.Exec("CREATE DATABASE " + name); err != nil {
		server.Close()
		t.Fatalf("create MySQL database %s: %v", name, err)
	}
	// Registered before NewDB's cleanup, so it runs after the
	// database is closed.
	t.Cleanup(func() {
		if _, err := server.Exec("DROP DATABASE " + name); err != nil {
			t.Errorf("drop MySQL database %s: %v", name, err)
		}
		server.Close()
	})
	t.Logf("using MySQL database %s", name)
	return *mysqlDSN + name
}
