// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dbtest provides archive databases for tests.
package dbtest

import (
	"testing"

	"github.com/pqcbench/kemperf/storage/db"
	_ "github.com/pqcbench/kemperf/storage/db/sqlite3"
)

// NewDB returns an empty in-memory archive that is closed when the
// test finishes.
func NewDB(t *testing.T) *db.DB {
	t.Helper()
	d, err := db.OpenSQL("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close database: %v", err)
		}
	})
	if n, err := d.CountRuns(); err != nil {
		t.Fatal(err)
	} else if n != 0 {
		t.Fatalf("found %d run(s) in a new database, want 0", n)
	}
	return d
}
