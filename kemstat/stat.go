// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kemstat reduces KEM benchmark samples to descriptive
// statistics and stores them as delimited text.
//
// All statistics are population statistics: variance and standard
// deviation divide by the number of samples, not by one less.
package kemstat

import (
	"errors"
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/stat"
)

// ErrEmptyRow is returned when statistics are requested for a row
// without samples.
var ErrEmptyRow = errors.New("no samples")

// Names are the names of the statistics in a Record, in the order
// returned by Record.Values.
var Names = []string{"Mean", "Maximum", "Standard Deviation", "Variance"}

// A Record summarizes one row of samples.
type Record struct {
	Mean     float64
	Max      float64
	StdDev   float64
	Variance float64
}

// Values returns r's statistics in the order given by Names.
func (r Record) Values() []float64 {
	return []float64{r.Mean, r.Max, r.StdDev, r.Variance}
}

// Summarize computes the statistics of one row of samples.
func Summarize(row []float64) (Record, error) {
	if len(row) == 0 {
		return Record{}, ErrEmptyRow
	}
	_, max := stats.Sample{Xs: row}.Bounds()
	mean, variance := stat.PopMeanVariance(row, nil)
	return Record{
		Mean:     mean,
		Max:      max,
		StdDev:   math.Sqrt(variance),
		Variance: variance,
	}, nil
}

// Compute summarizes each row independently, preserving row order.
func Compute(rows [][]float64) ([]Record, error) {
	recs := make([]Record, len(rows))
	for i, row := range rows {
		r, err := Summarize(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		recs[i] = r
	}
	return recs, nil
}

// Column returns statistic i (an index into Names) of every record.
func Column(recs []Record, i int) []float64 {
	col := make([]float64, len(recs))
	for j, r := range recs {
		col[j] = r.Values()[i]
	}
	return col
}
