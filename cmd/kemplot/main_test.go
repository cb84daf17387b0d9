// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"reflect"
	"testing"

	"github.com/pqcbench/kemperf/pipeline"
)

func TestParseComma(t *testing.T) {
	for _, test := range []struct {
		in   string
		want rune
		ok   bool
	}{
		{",", ',', true},
		{";", ';', true},
		{`\t`, '\t', true},
		{"", 0, false},
		{",,", 0, false},
		{`"`, 0, false},
	} {
		got, err := parseComma(test.in)
		if (err == nil) != test.ok || got != test.want {
			t.Errorf("parseComma(%q) = %q, %v", test.in, got, err)
		}
	}
}

func TestParseIndexes(t *testing.T) {
	got, err := parseIndexes("0, 2,4")
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{0, 2, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("parseIndexes = %v, want %v", got, want)
	}
	if got, err := parseIndexes(""); got != nil || err != nil {
		t.Errorf("parseIndexes(\"\") = %v, %v, want nil", got, err)
	}
	for _, bad := range []string{"x", "1,-1", "1,"} {
		if _, err := parseIndexes(bad); err == nil {
			t.Errorf("parseIndexes(%q) succeeded", bad)
		}
	}
}

func TestSelectVariables(t *testing.T) {
	vars := pipeline.DefaultVariables()
	names := func(vs []pipeline.Variable) []string {
		var out []string
		for _, v := range vs {
			out = append(out, v.Name)
		}
		return out
	}

	got, err := selectVariables(vars, "")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"CPU", "Memory", "Packets"}; !reflect.DeepEqual(names(got), want) {
		t.Errorf("all = %q, want %q", names(got), want)
	}
	got, err = selectVariables(vars, "packets, cpu")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"CPU", "Packets"}; !reflect.DeepEqual(names(got), want) {
		t.Errorf("packets, cpu = %q, want %q", names(got), want)
	}
	if _, err := selectVariables(vars, "cpu,disk"); err == nil {
		t.Error("selecting unknown variable succeeded")
	}
}

func TestOpenDB(t *testing.T) {
	if _, err := openDB("nodriver"); err == nil {
		t.Error("openDB without driver succeeded")
	}
	d, err := openDB("sqlite3::memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	if n, err := d.CountRuns(); err != nil || n != 0 {
		t.Errorf("CountRuns = %d, %v, want 0", n, err)
	}
}

func TestConfigureFormat(t *testing.T) {
	defer func(f string) { *flagFormat = f }(*flagFormat)
	*flagFormat = "bmp"
	if _, err := configure(); err == nil {
		t.Error(`configure with -format bmp succeeded`)
	}
	*flagFormat = "png"
	vars, err := configure()
	if err != nil {
		t.Fatal(err)
	}
	if got := vars[0].BoxOpts.Format; got != "png" {
		t.Errorf("box format = %q, want png", got)
	}
}
