// Package ecgxml extracts lead waveforms from CardioSoft CardiologyXML
// resting ECG exports so they can be run through the QRS detector.
package ecgxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/jfcg/butter"
	"golang.org/x/net/html/charset"

	"github.com/carbocation/qrsdetect/pantompkins"
)

// DefaultSamplingHz is assumed when a strip does not state its rate.
const DefaultSamplingHz = 500.0

type StripKind string

const (
	// Strip is the 10 second rhythm recording.
	Strip StripKind = "full"

	// Median is the representative beat the device averaged per lead.
	Median StripKind = "summary"
)

// Lead is one lead of one strip, scaled to millivolts.
type Lead struct {
	Name   string
	Kind   StripKind
	Signal pantompkins.Signal
}

// Parse decodes a CardiologyXML document. The exports are ISO-8859-1, not
// UTF-8, so the decoder is given a charset reader.
func Parse(r io.Reader) (*CardiologyXML, error) {
	var doc CardiologyXML

	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel
	if err := decoder.Decode(&doc); err != nil {
		return nil, pfx.Err(err)
	}

	return &doc, nil
}

// Leads returns every lead of the requested strip.
func (doc *CardiologyXML) Leads(kind StripKind) ([]Lead, error) {
	var rate, resolution unitValue
	var waves []leadValues

	switch kind {
	case Strip:
		rate, resolution, waves = doc.StripData.SampleRate, doc.StripData.Resolution, doc.StripData.WaveformData
	case Median:
		ms := doc.RestingECGMeasurements.MedianSamples
		rate, resolution, waves = ms.SampleRate, ms.Resolution, ms.WaveformData
	default:
		return nil, fmt.Errorf("unknown strip kind %q", kind)
	}

	fs := DefaultSamplingHz
	if v, err := strconv.ParseFloat(strings.TrimSpace(rate.Text), 64); err == nil && v > 0 {
		fs = v
	}
	voltageCorrection := EstimateVoltageCorrection(strings.TrimSpace(resolution.Text), resolution.Units)

	out := make([]Lead, 0, len(waves))
	for _, v := range waves {
		vals, err := ParseWaveform(v.Text)
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("lead %s: %w", v.Lead, err))
		}

		x := make([]float64, len(vals))
		for i, s := range vals {
			x[i] = float64(s) * voltageCorrection
		}

		out = append(out, Lead{Name: v.Lead, Kind: kind, Signal: pantompkins.Signal{Samples: x, Rate: fs}})
	}

	return out, nil
}

// ParseWaveform splits the comma separated sample text of a WaveformData
// element. The raw text carries whitespace, newlines and tabs, which are
// dropped.
func ParseWaveform(text string) ([]int, error) {
	txt := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, text)
	if txt == "" {
		return nil, nil
	}

	vals := strings.Split(txt, ",")
	out := make([]int, len(vals))
	for j, measurement := range vals {
		v, err := strconv.Atoi(measurement)
		if err != nil {
			return nil, fmt.Errorf("measurement %d is not numeric and is instead [%s]", j, measurement)
		}
		out[j] = v
	}

	return out, nil
}

// EstimateVoltageCorrection returns the factor converting stored values to
// millivolts. Only uVperLsb resolutions are understood; anything else is
// left unscaled.
func EstimateVoltageCorrection(value, units string) float64 {
	voltageCorrection := 1.0

	if units == "uVperLsb" {
		vc, err := strconv.ParseFloat(value, 64)
		if err == nil {
			voltageCorrection = 0.001 * vc
		}
	}

	return voltageCorrection
}

// ReferenceBeats returns the beat times the device itself found in the
// rhythm strip, as sample indices at the strip's rate.
func (doc *CardiologyXML) ReferenceBeats() ([]int, error) {
	fs := DefaultSamplingHz
	if v, err := strconv.ParseFloat(strings.TrimSpace(doc.StripData.SampleRate.Text), 64); err == nil && v > 0 {
		fs = v
	}

	out := make([]int, 0, len(doc.StripData.ArrhythmiaResults.Time))
	for _, v := range doc.StripData.ArrhythmiaResults.Time {
		t, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("beat time [%s] is not numeric", v.Text))
		}

		switch strings.ToLower(v.Units) {
		case "ms", "":
			t /= 1000
		case "s", "sec":
		default:
			return nil, pfx.Err(fmt.Errorf("unknown beat time units %q", v.Units))
		}

		out = append(out, int(math.Round(t*fs)))
	}

	return out, nil
}

// VentricularRate is the device's heart rate estimate in beats per minute.
func (doc *CardiologyXML) VentricularRate() (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(doc.RestingECGMeasurements.VentricularRate.Text), 64)
	return v, err == nil
}

// DisplayFilter runs a first order Butterworth high-pass and low-pass over
// vals for plotting. It is not part of detection. When
// timepointsToCompress is 2 or more, that many points are averaged into each
// output point first.
func DisplayFilter(vals []float64, signalHz, highPassHz, lowPassHz, timepointsToCompress float64) ([]float64, error) {
	if timepointsToCompress < 1 {
		timepointsToCompress = 1
	}

	wcBase := 2.0 * math.Pi * timepointsToCompress / signalHz

	filt := butter.NewHighPass1(highPassHz * wcBase)
	filtL := butter.NewLowPass1(lowPassHz * wcBase)

	if filt == nil {
		return nil, fmt.Errorf("invalid high-pass filter (attempted wc=%f, but expect .0001 < wc && wc < 3.1415)", wcBase*highPassHz)
	}

	if filtL == nil {
		return nil, fmt.Errorf("invalid low-pass filter (attempted wc=%f, but expect .0001 < wc && wc < 3.1415)", wcBase*lowPassHz)
	}

	valsFloat := make([]float64, 0, len(vals))
	compressor := make([]float64, 0, int(timepointsToCompress))

	for _, vf := range vals {
		compressor = append(compressor, vf)
		if float64(len(compressor)) < timepointsToCompress {
			continue
		}

		valsFloat = append(valsFloat, filt.Next(filtL.Next(floatAvg(compressor))))
		compressor = compressor[:0]
	}

	return valsFloat, nil
}

func floatAvg(f []float64) float64 {
	out := 0.0
	for _, v := range f {
		out += v
	}

	if x := len(f); x > 0 {
		return out / float64(x)
	}

	return out
}
