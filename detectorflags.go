package qrsdetect

import (
	"flag"

	"github.com/carbocation/qrsdetect/pantompkins"
)

// DetectorFlags are the command-line forms of the JSONConfig detector
// settings. A flag given explicitly overrides the config file.
type DetectorFlags struct {
	ConfigPath        string
	LowCutoffHz       float64
	HighCutoffHz      float64
	Taps              int
	Boundary          string
	WindowSeconds     float64
	RefractorySeconds float64
	ToleranceSeconds  float64
	CompensateDelay   bool
}

func (d *DetectorFlags) Register(fs *flag.FlagSet) {
	fs.StringVar(&d.ConfigPath, "config", "", "(Optional) Path to a JSON file with detector settings. Flags set explicitly take precedence.")
	fs.Float64Var(&d.LowCutoffHz, "low_cutoff_hz", pantompkins.DefaultLowCutoffHz, "Lower edge of the emphasized QRS band, in cycles per second")
	fs.Float64Var(&d.HighCutoffHz, "high_cutoff_hz", pantompkins.DefaultHighCutoffHz, "Upper edge of the emphasized QRS band, in cycles per second")
	fs.IntVar(&d.Taps, "taps", pantompkins.DefaultTaps, "Number of band-pass filter taps (odd)")
	fs.StringVar(&d.Boundary, "boundary", "causal", "Convolution boundary policy: causal or centered")
	fs.Float64Var(&d.WindowSeconds, "window", pantompkins.DefaultWindowSeconds, "Moving integration window, in seconds")
	fs.Float64Var(&d.RefractorySeconds, "refractory", pantompkins.DefaultRefractorySeconds, "Minimum spacing between beats, in seconds")
	fs.Float64Var(&d.ToleranceSeconds, "tolerance", DefaultToleranceSeconds, "Beat matching window for evaluation, in seconds")
	fs.BoolVar(&d.CompensateDelay, "compensate", false, "Shift reported peaks back by the pipeline delay so they line up with the raw signal?")
}

// Resolve loads the config file, if any, and overlays every flag that was
// set on fs. Call it after fs.Parse.
func (d *DetectorFlags) Resolve(fs *flag.FlagSet) (JSONConfig, error) {
	out := JSONConfig{
		LowCutoffHz:       d.LowCutoffHz,
		HighCutoffHz:      d.HighCutoffHz,
		Taps:              d.Taps,
		Boundary:          d.Boundary,
		WindowSeconds:     d.WindowSeconds,
		RefractorySeconds: d.RefractorySeconds,
		ToleranceSeconds:  d.ToleranceSeconds,
		CompensateDelay:   d.CompensateDelay,
	}

	if d.ConfigPath == "" {
		return out, nil
	}

	cfg, err := ParseJSONConfigFromPath(d.ConfigPath)
	if err != nil {
		return out, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "low_cutoff_hz":
			cfg.LowCutoffHz = d.LowCutoffHz
		case "high_cutoff_hz":
			cfg.HighCutoffHz = d.HighCutoffHz
		case "taps":
			cfg.Taps = d.Taps
		case "boundary":
			cfg.Boundary = d.Boundary
		case "window":
			cfg.WindowSeconds = d.WindowSeconds
		case "refractory":
			cfg.RefractorySeconds = d.RefractorySeconds
		case "tolerance":
			cfg.ToleranceSeconds = d.ToleranceSeconds
		case "compensate":
			cfg.CompensateDelay = d.CompensateDelay
		}
	})

	return cfg, nil
}
