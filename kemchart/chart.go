// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kemchart draws bar, line and box charts of KEM benchmark
// data and statistics.
//
// Charts are built in memory and only written out by Render or Save,
// so a caller can build every chart of a variable before writing any
// of them.
package kemchart

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// GroupBy selects how bar charts are split.
type GroupBy int

const (
	// GroupNone draws every field of a statistic in one chart.
	GroupNone GroupBy = iota
	// GroupByField draws one chart per statistic and field.
	GroupByField
)

// Options control how charts are drawn.
type Options struct {
	// LogScale uses a logarithmic y axis. Values that are not
	// positive cannot be placed on it and are left out.
	LogScale bool

	// GroupBy applies to bar charts only.
	GroupBy GroupBy

	// Format is the image format: "svg" (the default), "pdf",
	// "eps", "png", "jpg" or "tif".
	Format string

	// Width and Height default to 6.4×4.8 inches.
	Width, Height vg.Length
}

// Check reports whether o names an image format charts can be
// rendered in.
func (o Options) Check() error {
	switch o.format() {
	case "svg", "pdf", "eps", "png", "jpg", "jpeg", "tif", "tiff":
		return nil
	}
	return fmt.Errorf("unsupported image format %q", o.Format)
}

func (o Options) format() string {
	if o.Format == "" {
		return "svg"
	}
	return strings.ToLower(o.Format)
}

func (o Options) size() (w, h vg.Length) {
	w, h = o.Width, o.Height
	if w == 0 {
		w = 6.4 * vg.Inch
	}
	if h == 0 {
		h = 4.8 * vg.Inch
	}
	return w, h
}

// A Chart is a rendered-in-memory chart and the file name it is
// meant to be saved under.
type Chart struct {
	Name string
	Plot *plot.Plot

	format        string
	width, height vg.Length
}

func newChart(name string, p *plot.Plot, opts Options) *Chart {
	w, h := opts.size()
	return &Chart{
		Name:   name + "." + opts.format(),
		Plot:   p,
		format: opts.format(),
		width:  w,
		height: h,
	}
}

// Render writes the chart image to w.
func (c *Chart) Render(w io.Writer) error {
	wt, err := c.Plot.WriterTo(c.width, c.height, c.format)
	if err != nil {
		return fmt.Errorf("%s: %v", c.Name, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("%s: %v", c.Name, err)
	}
	return nil
}

// Save writes the chart image to dir/c.Name, creating directories as
// needed.
func (c *Chart) Save(dir string) (err error) {
	file := filepath.Join(dir, filepath.FromSlash(c.Name))
	if err := os.MkdirAll(filepath.Dir(file), 0777); err != nil {
		return err
	}
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return c.Render(f)
}

// newPlot returns a plot with a title, a y label and a grid, using a
// log scale if requested.
func newPlot(title, ylabel string, opts Options) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = ylabel
	if opts.LogScale {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{}
	}
	grid := plotter.NewGrid()
	p.Add(grid)
	p.Legend.Top = true
	return p
}

// fixLogRange keeps the y range of a log-scaled plot strictly
// positive and non-empty.
func fixLogRange(p *plot.Plot) {
	ax := &p.Y
	if !(ax.Min > 0) || math.IsInf(ax.Min, 0) || math.IsInf(ax.Max, 0) {
		ax.Min, ax.Max = 1, 10
	}
	if ax.Min == ax.Max {
		ax.Min /= 10
		ax.Max *= 10
	}
}

// positiveRange returns the range of the positive values in vs.
// If there are none, it returns +Inf, -Inf.
func positiveRange(vs []float64) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		if v > 0 {
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
	}
	return min, max
}

// palette returns n distinct colors.
func palette(n int) []color.Color {
	if n <= 12 {
		// Brewer palettes start at three colors.
		size := n
		if size < 3 {
			size = 3
		}
		p, err := brewer.GetPalette(brewer.TypeQualitative, "Paired", size)
		if err == nil {
			return p.Colors()[:n]
		}
	}
	colors := make([]color.Color, n)
	for i := range colors {
		colors[i] = plotutil.Color(i)
	}
	return colors
}

// unitLabel joins the distinct units, in order.
func unitLabel(units []string) string {
	var out []string
	seen := make(map[string]bool)
	for _, u := range units {
		if u != "" && !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	return strings.Join(out, ", ")
}

// A swatch is a legend entry that is a filled square.
type swatch struct {
	color color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.color, c.ClipPolygonY(pts))
}

// ContentType returns the MIME type of the chart image.
func (c *Chart) ContentType() string {
	switch c.format {
	case "svg":
		return "image/svg+xml"
	case "pdf":
		return "application/pdf"
	case "eps":
		return "application/postscript"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "tif", "tiff":
		return "image/tiff"
	}
	return "application/octet-stream"
}
