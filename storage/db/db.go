// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db archives KEM statistics in a SQL database, so that runs
// on different devices or builds can be compared after their files
// are gone.
package db

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/pqcbench/kemperf/kemstat"
)

// DB is a high-level interface to a statistics database. It's safe
// for concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	insertRun  *sql.Stmt
	insertStat *sql.Stmt
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
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to register a ConnectHook.
// It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Runs (
	RunID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Label VARCHAR(255),
	Created BIGINT
);
CREATE TABLE IF NOT EXISTS Statistics (
	RunID BIGINT UNSIGNED,
	Variable VARCHAR(64),
	RowIndex INTEGER,
	KEM VARCHAR(255),
	Field VARCHAR(255),
	Mean DOUBLE,
	Max DOUBLE,
	StdDev DOUBLE,
	Variance DOUBLE,
	PRIMARY KEY (RunID, Variable, RowIndex),
{{if not .sqlite3}}
	Index (KEM(100)),
{{end}}
	FOREIGN KEY (RunID) REFERENCES Runs(RunID) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS StatisticsKEM ON Statistics(KEM);
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
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.insertRun, err = db.sql.Prepare("INSERT INTO Runs(Label, Created) VALUES (?, ?)")
	if err != nil {
		return err
	}
	db.insertStat, err = db.sql.Prepare("INSERT INTO Statistics(RunID, Variable, RowIndex, KEM, Field, Mean, Max, StdDev, Variance) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	return nil
}

// now is a hook for testing
var now = time.Now

// A Run is a set of statistics archived together, typically one
// invocation of the analysis. Nothing is visible to readers until
// Commit is called.
type Run struct {
	// ID is the primary key of the run.
	ID int64
	// Label describes the run, such as the device it was measured on.
	Label string
	// Created is when the run was started, to the second.
	Created time.Time

	tx *sql.Tx
	db *DB
}

// NewRun starts a run with the given label.
func (db *DB) NewRun(ctx context.Context, label string) (*Run, error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	created := now().UTC().Truncate(time.Second)
	res, err := tx.Stmt(db.insertRun).ExecContext(ctx, label, created.Unix())
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	return &Run{ID: id, Label: label, Created: created, tx: tx, db: db}, nil
}

// InsertStatistics adds the statistics of one variable to the run.
// recs holds one record per (KEM, field) pair, with the fields of a
// KEM consecutive.
func (r *Run) InsertStatistics(ctx context.Context, variable string, kems, fields []string, recs []kemstat.Record) error {
	if len(fields) == 0 || len(recs) != len(kems)*len(fields) {
		return fmt.Errorf("%s: %d records for %d KEMs × %d fields", variable, len(recs), len(kems), len(fields))
	}
	stmt := r.tx.StmtContext(ctx, r.db.insertStat)
	for i, rec := range recs {
		kem, field := kems[i/len(fields)], fields[i%len(fields)]
		if _, err := stmt.ExecContext(ctx, r.ID, variable, i, kem, field, rec.Mean, rec.Max, rec.StdDev, rec.Variance); err != nil {
			return fmt.Errorf("%s %s %s: %v", variable, kem, field, err)
		}
	}
	return nil
}

// Commit makes the run visible.
func (r *Run) Commit() error {
	return r.tx.Commit()
}

// Abort discards the run.
func (r *Run) Abort() error {
	return r.tx.Rollback()
}

// A Statistic is one archived statistics record.
type Statistic struct {
	Variable string
	KEM      string
	Field    string
	kemstat.Record
}

// Statistics returns the statistics of the run with the given ID,
// grouped by variable in name order and in original row order within
// a variable.
func (db *DB) Statistics(ctx context.Context, runID int64) ([]Statistic, error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT Variable, KEM, Field, Mean, Max, StdDev, Variance FROM Statistics WHERE RunID = ? ORDER BY Variable, RowIndex", runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stats []Statistic
	for rows.Next() {
		var s Statistic
		if err := rows.Scan(&s.Variable, &s.KEM, &s.Field, &s.Mean, &s.Max, &s.StdDev, &s.Variance); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Runs returns the committed runs with the given label, oldest first.
// An empty label matches every run.
func (db *DB) Runs(ctx context.Context, label string) ([]*Run, error) {
	q := "SELECT RunID, Label, Created FROM Runs"
	var args []interface{}
	if label != "" {
		q += " WHERE Label = ?"
		args = append(args, label)
	}
	rows, err := db.sql.QueryContext(ctx, q+" ORDER BY RunID", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []*Run
	for rows.Next() {
		r := &Run{db: db}
		var created int64
		if err := rows.Scan(&r.ID, &r.Label, &created); err != nil {
			return nil, err
		}
		r.Created = time.Unix(created, 0).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// DeleteRun deletes a run and its statistics.
func (db *DB) DeleteRun(ctx context.Context, runID int64) error {
	_, err := db.sql.ExecContext(ctx, "DELETE FROM Runs WHERE RunID = ?", runID)
	return err
}

// CountRuns returns the number of runs in the database.
func (db *DB) CountRuns() (int, error) {
	var n int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM Runs").Scan(&n)
	return n, err
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	if err := db.insertRun.Close(); err != nil {
		return err
	}
	if err := db.insertStat.Close(); err != nil {
		return err
	}
	return db.sql.Close()
}
