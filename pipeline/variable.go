// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"

	"github.com/pqcbench/kemperf/kemchart"
	"github.com/pqcbench/kemperf/kemfmt"
)

// A Kind is the shape of a variable's input file.
type Kind int

const (
	CPU Kind = iota
	Memory
	Packet
)

func (k Kind) String() string {
	switch k {
	case CPU:
		return "CPU"
	case Memory:
		return "Memory"
	case Packet:
		return "Packet"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// A Variable describes how to analyze one performance variable.
type Variable struct {
	// Name identifies the variable in errors and archives.
	Name string
	Kind Kind

	// Input is the path of the raw measurement file.
	Input string
	// Comma is the delimiter of Input and of the statistics file.
	// Zero means kemfmt.DefaultComma.
	Comma rune
	// KEMs is the number of KEM blocks in Input. It is required
	// for CPU files and checked for packet files if not zero.
	KEMs int
	// Layout is the packet report layout. Nil means
	// kemfmt.DefaultPacketLayout.
	Layout *kemfmt.PacketLayout

	// Units overrides the unit of each field in charts. A single
	// unit applies to every field. Nil keeps the units of the input.
	Units []string
	// Fields overrides the field labels of bar charts and the
	// statistics file; LineFields those of line charts. Nil keeps
	// the labels of the input.
	Fields     []string
	LineFields []string

	// Stats is the name of the statistics file. FieldRow controls
	// whether it has a row of field labels.
	Stats    string
	FieldRow bool

	// BarPrefix and LinePrefix start the names of the bar and line
	// charts. Empty means no charts of that kind.
	BarPrefix  string
	LinePrefix string
	// Box is the name of the box chart, without extension. Empty
	// means no box chart.
	Box string

	Bars    kemchart.Options
	Lines   kemchart.Options
	BoxOpts kemchart.BoxOptions
}

// DefaultVariables returns the analyses of the Raspberry Pi
// measurement campaign, reading from and writing below the current
// directory.
func DefaultVariables() []Variable {
	return []Variable{
		{
			Name:       "CPU",
			Kind:       CPU,
			Input:      "CPUPerformance/timeCPUPerformance.csv",
			KEMs:       5,
			Units:      []string{"milliseconds"},
			Stats:      "statistics/cpuStatRPI.csv",
			FieldRow:   true,
			BarPrefix:  "images/cpuPerformanceRPI",
			LinePrefix: "images/cpuUsageRPI",
			Box:        "images/cpuBehaviourRPI",
			Bars:       kemchart.Options{LogScale: true},
			Lines:      kemchart.Options{LogScale: true},
		},
		{
			Name:       "Memory",
			Kind:       Memory,
			Input:      "memoryPerformance/memoryPerformance.csv",
			Units:      []string{"Bytes"},
			Fields:     []string{"Memory"},
			LineFields: []string{"Memory access"},
			Stats:      "statistics/memoryStatRPI.csv",
			BarPrefix:  "images/memoryPerformanceRPI",
			LinePrefix: "images/memoryUsageRPI",
			Bars:       kemchart.Options{LogScale: true},
			Lines:      kemchart.Options{LogScale: true},
		},
		{
			Name:       "Packets",
			Kind:       Packet,
			Input:      "packetsPerformance/packetPerformance.csv",
			Units:      []string{"Packets", "Bytes", "mSec"},
			Stats:      "statistics/packetStatRPI.csv",
			FieldRow:   true,
			BarPrefix:  "images/packetPerformanceRPI",
			LinePrefix: "images/packetUsageRPI",
			Bars:       kemchart.Options{GroupBy: kemchart.GroupByField},
		},
	}
}

// load reads v's input file.
func (v *Variable) load() (*kemfmt.Table, error) {
	switch v.Kind {
	case CPU:
		return kemfmt.LoadCPU(v.Input, v.Comma, v.KEMs)
	case Memory:
		return kemfmt.LoadMemory(v.Input, v.Comma)
	case Packet:
		return kemfmt.LoadPacket(v.Input, v.Comma, v.Layout, v.KEMs)
	}
	return nil, fmt.Errorf("unknown kind %v", v.Kind)
}

// fieldLabels returns override if it has one label per field, and
// the table's labels if override is nil.
func fieldLabels(what string, override, table []string) ([]string, error) {
	if override == nil {
		return table, nil
	}
	if len(override) != len(table) {
		return nil, fmt.Errorf("%d %s for %d fields", len(override), what, len(table))
	}
	return override, nil
}

// spread repeats a single unit for n fields.
func spread(units []string, n int) []string {
	if len(units) != 1 || n <= 1 {
		return units
	}
	out := make([]string, n)
	for i := range out {
		out[i] = units[0]
	}
	return out
}
