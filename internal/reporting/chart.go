package reporting

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoChartData is returned when there is nothing to plot.
var ErrNoChartData = errors.New("no present or absent records to chart")

var (
	presentColor = drawing.ColorFromHex("4CAF50")
	absentColor  = drawing.ColorFromHex("FF6347")
)

// ChartRenderer turns a summary into an image.
type ChartRenderer interface {
	RenderPie(present, absent int) ([]byte, error)
}

// PieChart renders PNG pie charts with go-chart.
type PieChart struct {
	Width, Height int
}

func NewPieChart() PieChart {
	return PieChart{Width: 480, Height: 480}
}

// RenderPie draws the present/absent split. Empty slices are left out.
func (p PieChart) RenderPie(present, absent int) ([]byte, error) {
	if present < 0 || absent < 0 {
		return nil, fmt.Errorf("negative counts %d/%d", present, absent)
	}
	if present == 0 && absent == 0 {
		return nil, ErrNoChartData
	}

	pie := chart.PieChart{
		Title:  "Attendance Distribution",
		Width:  p.Width,
		Height: p.Height,
		Values: pieValues(present, absent),
	}
	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render pie: %w", err)
	}
	return buf.Bytes(), nil
}

// pieValues builds the non-empty slices, labelled with their share.
func pieValues(present, absent int) []chart.Value {
	total := float64(present + absent)
	var values []chart.Value
	if present > 0 {
		values = append(values, slice("Present", present, total, presentColor))
	}
	if absent > 0 {
		values = append(values, slice("Absent", absent, total, absentColor))
	}
	return values
}

func slice(label string, n int, total float64, color drawing.Color) chart.Value {
	return chart.Value{
		Label: fmt.Sprintf("%s %.1f%%", label, 100*float64(n)/total),
		Value: float64(n),
		Style: chart.Style{FillColor: color, StrokeColor: drawing.ColorWhite},
	}
}
