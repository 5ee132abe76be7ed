package qrsdetect

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/carbocation/pfx"

	"github.com/carbocation/qrsdetect/pantompkins"
)

// JSONConfig is the on-disk form of the detector settings. Durations are in
// seconds so one file serves recordings of any sampling rate. Zero values
// fall back to the defaults.
type JSONConfig struct {
	ConfigPath        string
	LowCutoffHz       float64  `json:"low_cutoff_hz"`
	HighCutoffHz      float64  `json:"high_cutoff_hz"`
	Taps              int      `json:"taps"`
	Boundary          string   `json:"boundary"`
	WindowSeconds     float64  `json:"window_seconds"`
	RefractorySeconds float64  `json:"refractory_seconds"`
	ToleranceSeconds  float64  `json:"tolerance_seconds"`
	CompensateDelay   bool     `json:"compensate_delay"`
	Records           []string `json:"records"`
	RecordDir         string   `json:"record_dir"`
}

// DefaultToleranceSeconds is the usual beat-matching window for evaluation.
const DefaultToleranceSeconds = 0.1

func ParseJSONConfigFromPath(path string) (JSONConfig, error) {
	out := JSONConfig{ConfigPath: ExpandHome(path)}

	f, err := os.Open(out.ConfigPath)
	if err != nil {
		return out, pfx.Err(err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&out); err != nil {
		if e, ok := err.(*json.SyntaxError); ok {
			return out, pfx.Err(fmt.Errorf("syntax error at byte offset %d: %w", e.Offset, err))
		}
		return out, pfx.Err(err)
	}

	if _, err := pantompkins.ParseBoundary(out.Boundary); err != nil {
		return out, pfx.Err(err)
	}

	out.RecordDir = ExpandHome(out.RecordDir)

	return out, nil
}

// Detector converts the file settings into a pipeline configuration for a
// recording sampled at fs Hz.
func (c JSONConfig) Detector(fs float64) (pantompkins.Config, error) {
	out := pantompkins.DefaultConfig(fs)

	if c.LowCutoffHz != 0 {
		out.LowCutoffHz = c.LowCutoffHz
	}
	if c.HighCutoffHz != 0 {
		out.HighCutoffHz = c.HighCutoffHz
	}
	if c.Taps != 0 {
		out.Taps = c.Taps
	}
	if c.WindowSeconds != 0 {
		out.Window = pantompkins.SecondsToSamples(c.WindowSeconds, fs)
	}
	if c.RefractorySeconds != 0 {
		out.Refractory = pantompkins.SecondsToSamples(c.RefractorySeconds, fs)
	}

	b, err := pantompkins.ParseBoundary(c.Boundary)
	if err != nil {
		return out, pfx.Err(err)
	}
	out.Boundary = b

	return out, nil
}

// Tolerance is the evaluation matching window, in seconds.
func (c JSONConfig) Tolerance() float64 {
	if c.ToleranceSeconds > 0 {
		return c.ToleranceSeconds
	}
	return DefaultToleranceSeconds
}
