// Package chart renders family size survival charts.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"strconv"

	"github.com/mchmarny/kinfeat/pkg/data"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	width  = 10 * vg.Inch
	height = 5 * vg.Inch
	format = "png"
)

var (
	barWidth = vg.Points(14)

	survivalColor = color.RGBA{R: 46, G: 139, B: 87, A: 255}
	familyColor   = color.RGBA{R: 70, G: 130, B: 180, A: 255}
)

// New builds the chart of observed survival rate and mean family rate by
// family size.
func New(title string, sizes []*data.SizeSummary) (*plot.Plot, error) {
	if len(sizes) == 0 {
		return nil, errors.New("no family sizes to chart")
	}

	survival := make(plotter.Values, len(sizes))
	family := make(plotter.Values, len(sizes))
	labels := make([]string, len(sizes))
	for i, s := range sizes {
		if s.SurvivalRate != nil {
			survival[i] = *s.SurvivalRate
		}
		family[i] = s.MeanFamilyRate
		labels[i] = strconv.Itoa(s.Size)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Family size"
	p.Y.Label.Text = "Rate"
	p.Y.Min = 0
	p.Y.Max = 1

	survivalBars, err := plotter.NewBarChart(survival, barWidth)
	if err != nil {
		return nil, fmt.Errorf("failed to create survival bars: %w", err)
	}
	survivalBars.Color = survivalColor
	survivalBars.LineStyle.Width = vg.Length(0)
	survivalBars.Offset = -barWidth / 2

	familyBars, err := plotter.NewBarChart(family, barWidth)
	if err != nil {
		return nil, fmt.Errorf("failed to create family rate bars: %w", err)
	}
	familyBars.Color = familyColor
	familyBars.LineStyle.Width = vg.Length(0)
	familyBars.Offset = barWidth / 2

	p.Add(survivalBars, familyBars)
	p.Legend.Add("survival rate", survivalBars)
	p.Legend.Add("mean family rate", familyBars)
	p.Legend.Top = true
	p.NominalX(labels...)

	return p, nil
}

// Save writes the chart to path; the format follows the file extension.
func Save(path, title string, sizes []*data.SizeSummary) error {
	p, err := New(title, sizes)
	if err != nil {
		return err
	}
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", path, err)
	}
	return nil
}

// WritePNG renders the chart as PNG to w.
func WritePNG(w io.Writer, title string, sizes []*data.SizeSummary) error {
	p, err := New(title, sizes)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	return nil
}
