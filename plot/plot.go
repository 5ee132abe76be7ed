// Package plot renders detector input and output as PNG line charts.
package plot

import (
	"fmt"
	"io"
	"math"

	"github.com/carbocation/pfx"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/carbocation/qrsdetect/pantompkins"
)

const (
	DefaultWidth  = 1024
	DefaultHeight = 256
)

// Lead draws a waveform with the given peak indices marked. yMin == yMax
// lets the axis fit the data.
func Lead(w io.Writer, sig pantompkins.Signal, peaks []int, yMin, yMax float64, width, height int) error {
	if len(sig.Samples) < 2 {
		return fmt.Errorf("need at least 2 samples to plot, have %d", len(sig.Samples))
	}

	var chartRange *chart.ContinuousRange
	if yMin != yMax {
		chartRange = &chart.ContinuousRange{Min: yMin, Max: yMax}
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "ECG",
			XValues: secondsSeq(len(sig.Samples), sig.Rate),
			YValues: sig.Samples,
			Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 1},
		},
	}
	if marks := peakSeries("QRS", sig, peaks, chart.ColorRed); marks != nil {
		series = append(series, *marks)
	}

	graph := chart.Chart{
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			Name: "Time (s)",
		},
		YAxis: chart.YAxis{
			Range: chartRange,
		},
		Series: series,
	}

	return render(w, graph)
}

// Stages stacks the raw signal and every intermediate of a pipeline run in
// one chart, each trace scaled to unit height and offset so they do not
// overlap. Peaks are marked on the integrated trace.
func Stages(w io.Writer, raw pantompkins.Signal, res pantompkins.Result, width, height int) error {
	if len(raw.Samples) < 2 {
		return fmt.Errorf("need at least 2 samples to plot, have %d", len(raw.Samples))
	}

	traces := []struct {
		Name  string
		Data  []float64
		Color drawing.Color
	}{
		{"Integrated", res.Integrated, chart.ColorOrange},
		{"Squared", res.Squared, chart.ColorGreen},
		{"Derivative", res.Derivative, chart.ColorCyan},
		{"Band-pass", res.Filtered, chart.ColorBlue},
		{"Raw", raw.Samples, chart.ColorBlack},
	}

	xs := secondsSeq(len(raw.Samples), raw.Rate)

	var series []chart.Series
	for i, v := range traces {
		if len(v.Data) != len(raw.Samples) {
			return fmt.Errorf("%s has %d samples, raw has %d", v.Name, len(v.Data), len(raw.Samples))
		}

		scaled := stack(v.Data, float64(i))
		series = append(series, chart.ContinuousSeries{
			Name:    v.Name,
			XValues: xs,
			YValues: scaled,
			Style:   chart.Style{StrokeColor: v.Color, StrokeWidth: 1},
		})

		if i == 0 {
			if marks := peakSeries("QRS", pantompkins.Signal{Samples: scaled, Rate: raw.Rate}, res.Indices(), chart.ColorRed); marks != nil {
				series = append(series, *marks)
			}
		}
	}

	graph := chart.Chart{
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			Name: "Time (s)",
		},
		YAxis: chart.YAxis{
			Style: chart.Hidden(),
			Range: &chart.ContinuousRange{Min: -0.6, Max: float64(len(traces)) - 0.4},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return render(w, graph)
}

func render(w io.Writer, graph chart.Chart) error {
	if err := graph.Render(chart.PNG, w); err != nil {
		return pfx.Err(err)
	}
	return nil
}

// peakSeries is a dots-only series at the given indices, or nil if none fall
// inside the signal.
func peakSeries(name string, sig pantompkins.Signal, peaks []int, color drawing.Color) *chart.ContinuousSeries {
	var xs, ys []float64
	for _, p := range peaks {
		if p < 0 || p >= len(sig.Samples) {
			continue
		}
		xs = append(xs, float64(p)/sig.Rate)
		ys = append(ys, sig.Samples[p])
	}
	if len(xs) == 0 {
		return nil
	}

	return &chart.ContinuousSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    3,
			DotColor:    color,
		},
	}
}

// stack scales x into [-0.5, 0.5] around its midrange and lifts it by
// offset.
func stack(x []float64, offset float64) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range x {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	span := hi - lo
	mid := (hi + lo) / 2

	out := make([]float64, len(x))
	for i, v := range x {
		if span > 0 {
			out[i] = (v-mid)/span + offset
		} else {
			out[i] = offset
		}
	}
	return out
}

func secondsSeq(n int, fs float64) []float64 {
	if fs <= 0 {
		fs = 1
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) / fs
	}
	return out
}
