// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Kemplot summarizes KEM benchmark measurements.
//
// Usage:
//
//	kemplot [flags]
//
// Kemplot reads the CPU time, memory and packet capture reports of a
// KEM benchmark campaign, and writes for each one a statistics file
// (mean, maximum, standard deviation and variance of every KEM and
// field) and a set of bar, line and box charts.
//
// By default the reports are read from
//
//	CPUPerformance/timeCPUPerformance.csv
//	memoryPerformance/memoryPerformance.csv
//	packetsPerformance/packetPerformance.csv
//
// and the results are written below the current directory, into
// statistics/ and images/. With -gcs-bucket, the results are
// uploaded to a Google Cloud Storage bucket instead.
//
// With -db, the statistics are also recorded in a database, as one
// run labeled by -label. The argument has the form driver:dsn, where
// driver is sqlite3 or mysql. Cloud SQL instances are reachable with
// mysql DSNs of the form user:password@cloudsql(project:region:instance)/db.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/storage"
	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	_ "github.com/go-sql-driver/mysql"
	"github.com/pqcbench/kemperf/kemchart"
	"github.com/pqcbench/kemperf/pipeline"
	"github.com/pqcbench/kemperf/storage/db"
	_ "github.com/pqcbench/kemperf/storage/db/sqlite3"
	"github.com/pqcbench/kemperf/storage/fs"
	"github.com/pqcbench/kemperf/storage/fs/gcs"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

var (
	flagDir     = flag.String("dir", ".", "write results below `directory`")
	flagComma   = flag.String("comma", ",", "field `delimiter` of input and statistics files")
	flagFormat  = flag.String("format", "svg", "chart image `format` (svg, png, pdf, eps, jpg, tif)")
	flagCPU     = flag.String("cpu", "", "read CPU times from `file`")
	flagCPUKEMs = flag.Int("cpu-kems", 5, "number of KEM blocks in the CPU time file")
	flagMemory  = flag.String("memory", "", "read memory usage from `file`")
	flagPacket  = flag.String("packet", "", "read packet captures from `file`")
	flagOnly    = flag.String("only", "", "analyze only the comma-separated `variables` (CPU, Memory, Packets)")
	flagBoxKEMs = flag.String("box-kems", "", "draw only the KEMs at the comma-separated `indexes` in the CPU box chart")

	flagBucket = flag.String("gcs-bucket", "", "upload results to Google Cloud Storage `bucket`")
	flagCreds  = flag.String("gcs-credentials", "", "authenticate to Google Cloud Storage with service account `file`")

	flagDB    = flag.String("db", "", "record statistics in database `driver:dsn`")
	flagLabel = flag.String("label", "", "record statistics as a run named `label` (default: current time)")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage of kemplot:
	kemplot [flags]
`)
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	log.SetPrefix("kemplot: ")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 0 {
		flag.Usage()
	}

	vars, err := configure()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	sink, err := openSink(ctx)
	if err != nil {
		log.Fatal(err)
	}

	rn := &pipeline.Runner{Sink: sink, Logf: log.Printf}
	var archive *db.DB
	if *flagDB != "" {
		archive, err = openDB(*flagDB)
		if err != nil {
			log.Fatal(err)
		}
		defer archive.Close()
		label := *flagLabel
		if label == "" {
			label = time.Now().UTC().Format(time.RFC3339)
		}
		if rn.Archive, err = archive.NewRun(ctx, label); err != nil {
			log.Fatal(err)
		}
	}

	if err := rn.Run(ctx, vars); err != nil {
		if rn.Archive != nil {
			rn.Archive.Abort()
		}
		log.Fatal(err)
	}
	if rn.Archive != nil {
		if err := rn.Archive.Commit(); err != nil {
			log.Fatal(err)
		}
		log.Printf("recorded run %d (%s)", rn.Archive.ID, rn.Archive.Label)
	}
}

// configure returns the variables selected and adjusted by the
// command-line flags.
func configure() ([]pipeline.Variable, error) {
	comma, err := parseComma(*flagComma)
	if err != nil {
		return nil, err
	}
	boxKEMs, err := parseIndexes(*flagBoxKEMs)
	if err != nil {
		return nil, fmt.Errorf("-box-kems: %v", err)
	}
	if err := (kemchart.Options{Format: *flagFormat}).Check(); err != nil {
		return nil, fmt.Errorf("-format: %v", err)
	}
	if *flagCPUKEMs <= 0 {
		return nil, fmt.Errorf("-cpu-kems must be positive")
	}

	vars := pipeline.DefaultVariables()
	for i := range vars {
		v := &vars[i]
		v.Comma = comma
		v.Bars.Format = *flagFormat
		v.Lines.Format = *flagFormat
		v.BoxOpts.Format = *flagFormat
		switch v.Kind {
		case pipeline.CPU:
			v.KEMs = *flagCPUKEMs
			v.BoxOpts.KEMs = boxKEMs
			override(&v.Input, *flagCPU)
		case pipeline.Memory:
			override(&v.Input, *flagMemory)
		case pipeline.Packet:
			override(&v.Input, *flagPacket)
		}
	}
	return selectVariables(vars, *flagOnly)
}

func override(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

// parseComma returns the single character of s.
func parseComma(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 || n != len(s) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("invalid -comma %q", s)
	}
	return r, nil
}

// parseIndexes parses a comma-separated list of KEM indexes.
// The empty string means all KEMs and returns nil.
func parseIndexes(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var out []int
	for _, f := range strings.Split(s, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || i < 0 {
			return nil, fmt.Errorf("bad KEM index %q", f)
		}
		out = append(out, i)
	}
	return out, nil
}

// selectVariables returns the variables named in the comma-separated
// list only, in their original order. The empty list selects all.
func selectVariables(vars []pipeline.Variable, only string) ([]pipeline.Variable, error) {
	if only == "" {
		return vars, nil
	}
	want := make(map[string]bool)
	for _, name := range strings.Split(only, ",") {
		want[strings.ToLower(strings.TrimSpace(name))] = true
	}
	var out []pipeline.Variable
	for _, v := range vars {
		name := strings.ToLower(v.Name)
		if want[name] {
			out = append(out, v)
			delete(want, name)
		}
	}
	for name := range want {
		return nil, fmt.Errorf("-only: unknown variable %q", name)
	}
	return out, nil
}

// openSink returns the destination of the results.
func openSink(ctx context.Context) (fs.FS, error) {
	if *flagBucket == "" {
		return fs.DirFS(*flagDir), nil
	}
	var opts []option.ClientOption
	if *flagCreds != "" {
		opts = append(opts, option.WithCredentialsFile(*flagCreds))
	} else {
		ts, err := google.DefaultTokenSource(ctx, storage.ScopeReadWrite)
		if err != nil {
			return nil, fmt.Errorf("finding Google Cloud credentials: %v", err)
		}
		opts = append(opts, option.WithTokenSource(ts))
	}
	return gcs.NewFS(ctx, *flagBucket, opts...)
}

// openDB opens the database named by a driver:dsn argument.
func openDB(arg string) (*db.DB, error) {
	driver, dsn, ok := strings.Cut(arg, ":")
	if !ok || driver == "" {
		return nil, fmt.Errorf("-db %q: want driver:dsn", arg)
	}
	return db.OpenSQL(driver, dsn)
}
