package ecgxml

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The PID carries a Latin-1 byte to exercise the charset reader.
var sampleDoc = []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
	`<CardiologyXML>
	<ObservationType>RestECG</ObservationType>
	<PatientInfo><PID>Ren` + "\xe9" + `</PID></PatientInfo>
	<RestingECGMeasurements>
		<VentricularRate units="/min">72</VentricularRate>
		<MedianSamples>
			<SampleRate units="Hz">500</SampleRate>
			<Resolution units="uVperLsb">5</Resolution>
			<WaveformData lead="II">3,3,
				3,1</WaveformData>
		</MedianSamples>
	</RestingECGMeasurements>
	<StripData>
		<NumberOfLeads>2</NumberOfLeads>
		<SampleRate units="Hz">500</SampleRate>
		<Resolution units="uVperLsb">5</Resolution>
		<WaveformData lead="I">0, 200,
			-200</WaveformData>
		<WaveformData lead="II">	10,20,30</WaveformData>
		<ArrhythmiaResults>
			<Time units="ms">855</Time>
			<Time units="ms">1840</Time>
			<BeatClass>dominant</BeatClass>
			<BeatClass>dominant</BeatClass>
		</ArrhythmiaResults>
	</StripData>
</CardiologyXML>`)

func TestParse(t *testing.T) {
	doc, err := Parse(bytes.NewReader(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, "RestECG", doc.ObservationType)
	assert.Equal(t, "René", doc.PatientInfo.PID)

	rate, ok := doc.VentricularRate()
	assert.True(t, ok)
	assert.Equal(t, 72.0, rate)

	leads, err := doc.Leads(Strip)
	require.NoError(t, err)
	require.Len(t, leads, 2)

	assert.Equal(t, "I", leads[0].Name)
	assert.Equal(t, 500.0, leads[0].Signal.Rate)
	assert.InDeltaSlice(t, []float64{0, 1, -1}, leads[0].Signal.Samples, 1e-12)
	assert.InDeltaSlice(t, []float64{0.05, 0.1, 0.15}, leads[1].Signal.Samples, 1e-12)

	median, err := doc.Leads(Median)
	require.NoError(t, err)
	require.Len(t, median, 1)
	assert.Len(t, median[0].Signal.Samples, 4)
	assert.Equal(t, Median, median[0].Kind)

	_, err = doc.Leads("vector")
	assert.Error(t, err)

	beats, err := doc.ReferenceBeats()
	require.NoError(t, err)
	assert.Equal(t, []int{428, 920}, beats)
}

func TestParseWaveform(t *testing.T) {
	got, err := ParseWaveform(" 1,-2,\n\t3 ")
	require.NoError(t, err)
	assert.Equal(t, []int{1, -2, 3}, got)

	got, err = ParseWaveform("  ")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseWaveform("1,x,3")
	assert.Error(t, err)
}

func TestEstimateVoltageCorrection(t *testing.T) {
	assert.Equal(t, 0.005, EstimateVoltageCorrection("5", "uVperLsb"))
	assert.Equal(t, 1.0, EstimateVoltageCorrection("5", "mV"))
	assert.Equal(t, 1.0, EstimateVoltageCorrection("five", "uVperLsb"))
}

func TestDisplayFilter(t *testing.T) {
	flat := make([]float64, 5000)
	for i := range flat {
		flat[i] = 1
	}

	out, err := DisplayFilter(flat, 500, 0.5, 40, 1)
	require.NoError(t, err)
	require.Len(t, out, len(flat))

	// The high-pass stage removes a constant offset.
	assert.Less(t, math.Abs(out[len(out)-1]), 0.01)

	out, err = DisplayFilter(flat, 500, 0.5, 40, 2)
	require.NoError(t, err)
	assert.Len(t, out, len(flat)/2)

	_, err = DisplayFilter(flat, 500, 0.5, 300, 1)
	assert.Error(t, err)
}
