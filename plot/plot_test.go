package plot

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/carbocation/qrsdetect/pantompkins"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func ramp(n int, fs float64) pantompkins.Signal {
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2*math.Pi*float64(i)/fs) + 0.01*float64(i%7)
	}
	return pantompkins.Signal{Samples: x, Rate: fs}
}

func TestLeadWritesPNG(t *testing.T) {
	sig := ramp(720, 360)

	var buf bytes.Buffer
	require.NoError(t, Lead(&buf, sig, []int{90, 450, 10000}, -1.5, 1.5, 400, 200))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))

	buf.Reset()
	require.NoError(t, Lead(&buf, sig, nil, 0, 0, 400, 200))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestStagesWritesPNG(t *testing.T) {
	sig := ramp(1800, 360)

	cfg := pantompkins.DefaultConfig(sig.Rate)
	cfg.Taps = 51
	res, err := pantompkins.Run(sig, cfg)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Stages(&buf, sig, res, 600, 600))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestTooShortToPlot(t *testing.T) {
	var buf bytes.Buffer
	one := pantompkins.Signal{Samples: []float64{1}, Rate: 360}

	assert.Error(t, Lead(&buf, one, nil, 0, 0, 100, 100))
	assert.Error(t, Stages(&buf, one, pantompkins.Result{}, 100, 100))
	assert.Zero(t, buf.Len())
}

func TestStagesLengthMismatch(t *testing.T) {
	sig := ramp(100, 360)
	res := pantompkins.Result{Integrated: make([]float64, 99)}

	var buf bytes.Buffer
	assert.Error(t, Stages(&buf, sig, res, 100, 100))
}

func TestStack(t *testing.T) {
	out := stack([]float64{2, 4, 6}, 3)
	assert.InDeltaSlice(t, []float64{2.5, 3, 3.5}, out, 1e-12)

	flat := stack([]float64{5, 5}, 1)
	assert.Equal(t, []float64{1, 1}, flat)
}

func TestPeakSeriesSkipsOutOfRange(t *testing.T) {
	sig := pantompkins.Signal{Samples: []float64{0, 1, 2, 3}, Rate: 2}

	assert.Nil(t, peakSeries("QRS", sig, []int{-1, 4}, chart.ColorRed))

	s := peakSeries("QRS", sig, []int{-1, 1, 3, 9}, chart.ColorRed)
	require.NotNil(t, s)
	assert.Equal(t, []float64{0.5, 1.5}, s.XValues)
	assert.Equal(t, []float64{1, 3}, s.YValues)
}
