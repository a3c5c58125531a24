// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db stores scaling reports in a SQL database.
package db

import (
	"bytes"
	"context"
	"database/sql"
	"strconv"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/edistbench/parstat/runfmt"
	"github.com/edistbench/parstat/scaling"
)

// maxTimes is the number of time columns in ReportRows. Families with
// fewer timing fields leave the rest NULL.
const maxTimes = 4

// DB is a high-level interface to a database of reports. It's safe
// for concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	insertReport *sql.Stmt
	deleteReport *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to configure its connections.
// It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Reports (
	ReportID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Path VARCHAR(255) NOT NULL UNIQUE,
	Family VARCHAR(16) NOT NULL
);
CREATE TABLE IF NOT EXISTS ReportRows (
	ReportID BIGINT UNSIGNED,
	RowID BIGINT UNSIGNED,
	Modality VARCHAR(255),
	OMP VARCHAR(32),
	Secondary VARCHAR(32),
	Time0 DOUBLE,
	Time1 DOUBLE,
	Time2 DOUBLE,
	Time3 DOUBLE,
	Speedup DOUBLE,
	Efficiency DOUBLE,
	PRIMARY KEY (ReportID, RowID),
{{if not .sqlite3}}
	Index (Modality(100)),
{{end}}
	FOREIGN KEY (ReportID) REFERENCES Reports(ReportID) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS ReportRowsModality ON ReportRows(Modality);
{{end}}
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return errors.Wrap(err, "create table")
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.insertReport, err = db.sql.Prepare("INSERT INTO Reports(Path, Family) VALUES (?, ?)")
	if err != nil {
		return err
	}
	db.deleteReport, err = db.sql.Prepare("DELETE FROM Reports WHERE Path = ?")
	if err != nil {
		return err
	}
	return nil
}

// InsertReport stores rep under path, replacing any report stored
// earlier under the same path. It returns the new report's ID.
func (db *DB) InsertReport(ctx context.Context, path string, rep *scaling.Report) (id int64, err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	// Rows are deleted explicitly; sqlite only cascades with
	// foreign_keys enabled.
	if _, err = tx.ExecContext(ctx, "DELETE FROM ReportRows WHERE ReportID IN (SELECT ReportID FROM Reports WHERE Path = ?)", path); err != nil {
		return 0, errors.Wrap(err, "delete old rows")
	}
	if _, err = tx.StmtContext(ctx, db.deleteReport).ExecContext(ctx, path); err != nil {
		return 0, errors.Wrap(err, "delete old report")
	}
	res, err := tx.StmtContext(ctx, db.insertReport).ExecContext(ctx, path, rep.Family.String())
	if err != nil {
		return 0, errors.Wrap(err, "insert report")
	}
	if id, err = res.LastInsertId(); err != nil {
		return 0, err
	}

	if len(rep.Rows) == 0 {
		return id, nil
	}
	var args []interface{}
	for i, row := range rep.Rows {
		if len(row.Times) > maxTimes {
			return 0, errors.Errorf("row %d has %d times, at most %d can be stored", i, len(row.Times), maxTimes)
		}
		args = append(args, id, i, row.Modality, row.OMP, row.Secondary)
		for j := 0; j < maxTimes; j++ {
			t := sql.NullFloat64{}
			if j < len(row.Times) {
				t = sql.NullFloat64{Float64: row.Times[j], Valid: true}
			}
			args = append(args, t)
		}
		args = append(args, row.Speedup, row.Efficiency)
	}
	const cols = 7 + maxTimes
	query := "INSERT INTO ReportRows VALUES " + strings.Repeat("(?"+strings.Repeat(", ?", cols-1)+"), ", len(rep.Rows))
	query = strings.TrimSuffix(query, ", ")
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return 0, errors.Wrap(err, "insert rows")
	}
	return id, nil
}

// A Query selects stored rows. Empty fields match everything.
type Query struct {
	Modality string
	Path     string
}

// A Result is one stored row.
type Result struct {
	Path   string
	Family runfmt.Family
	*scaling.Row
}

// Query returns the rows matching q, ordered by report path and then
// by their order in the report.
func (db *DB) Query(ctx context.Context, q Query) ([]*Result, error) {
	query := `SELECT r.Path, r.Family, rr.Modality, rr.OMP, rr.Secondary, rr.Time0, rr.Time1, rr.Time2, rr.Time3, rr.Speedup, rr.Efficiency
FROM ReportRows rr JOIN Reports r ON rr.ReportID = r.ReportID`
	var where []string
	var args []interface{}
	if q.Modality != "" {
		where = append(where, "rr.Modality = ?")
		args = append(args, q.Modality)
	}
	if q.Path != "" {
		where = append(where, "r.Path = ?")
		args = append(args, q.Path)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY r.Path, rr.RowID"

	rows, err := db.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query")
	}
	defer rows.Close()

	var out []*Result
	for rows.Next() {
		var (
			res    = &Result{Row: new(scaling.Row)}
			family string
			times  [maxTimes]sql.NullFloat64
		)
		if err := rows.Scan(&res.Path, &family, &res.Modality, &res.OMP, &res.Secondary,
			&times[0], &times[1], &times[2], &times[3], &res.Speedup, &res.Efficiency); err != nil {
			return nil, err
		}
		if res.Family, err = runfmt.ParseFamily(family); err != nil {
			return nil, errors.Wrapf(err, "report %s", res.Path)
		}
		for _, t := range times {
			if t.Valid {
				res.Times = append(res.Times, t.Float64)
			}
		}
		// Stored values were validated when the report was read.
		res.Threads, _ = strconv.Atoi(res.OMP)
		if res.Family == runfmt.MPI {
			res.Procs, _ = strconv.Atoi(res.Secondary)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// CountReports returns the number of stored reports.
func (db *DB) CountReports() (int, error) {
	return db.count("Reports")
}

// CountRows returns the number of stored report rows, across all
// reports.
func (db *DB) CountRows() (int, error) {
	return db.count("ReportRows")
}

func (db *DB) count(table string) (int, error) {
	var n int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
	return n, errors.Wrapf(err, "count %s", table)
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	if err := db.insertReport.Close(); err != nil {
		return err
	}
	if err := db.deleteReport.Close(); err != nil {
		return err
	}
	return db.sql.Close()
}
