package pantompkins

// Config holds every tunable of the pipeline. Durations are in samples; use
// DefaultConfig to derive them from a sampling rate.
type Config struct {
	LowCutoffHz  float64
	HighCutoffHz float64
	Taps         int
	Boundary     Boundary

	// Window is the moving-integration width in samples.
	Window int

	// Refractory is the minimum spacing between accepted peaks in samples.
	Refractory int
}

const (
	// DefaultWindowSeconds gives a 30 sample window at 360 Hz.
	DefaultWindowSeconds = 0.083

	// DefaultRefractorySeconds is the blanking period after a beat.
	DefaultRefractorySeconds = 0.1
)

// DefaultConfig returns the 5-15 Hz, 201 tap, causal configuration with
// window and refractory period scaled to fs.
func DefaultConfig(fs float64) Config {
	return Config{
		LowCutoffHz:  DefaultLowCutoffHz,
		HighCutoffHz: DefaultHighCutoffHz,
		Taps:         DefaultTaps,
		Boundary:     Causal,
		Window:       SecondsToSamples(DefaultWindowSeconds, fs),
		Refractory:   SecondsToSamples(DefaultRefractorySeconds, fs),
	}
}

// Delay is the number of samples by which the pipeline's envelope lags the
// raw signal: the band-pass group delay, 2 samples for the derivative, and
// half the integration window.
func (c Config) Delay() int {
	d := c.Boundary.GroupDelay(c.Taps) + derivativeHistory/2
	if c.Window > 1 {
		d += (c.Window - 1) / 2
	}
	return d
}

// Result keeps every intermediate sequence of one run.
type Result struct {
	Filtered   []float64
	Derivative []float64
	Squared    []float64
	Integrated []float64
	Peaks      []Peak
	State      ThresholdState
}

// Indices returns the sample index of each peak.
func (r Result) Indices() []int {
	out := make([]int, len(r.Peaks))
	for i, p := range r.Peaks {
		out[i] = p.Index
	}
	return out
}

// Run pushes one recording through all stages in order. It stops at the
// first stage that fails.
func Run(sig Signal, cfg Config) (Result, error) {
	var out Result

	kernel, err := DesignBandPass(cfg.LowCutoffHz, cfg.HighCutoffHz, sig.Rate, cfg.Taps)
	if err != nil {
		return out, err
	}

	if out.Filtered, err = Convolve(sig.Samples, kernel, cfg.Boundary); err != nil {
		return out, err
	}

	if out.Derivative, err = Differentiate(out.Filtered); err != nil {
		return out, err
	}

	if out.Squared, err = Square(out.Derivative); err != nil {
		return out, err
	}

	if out.Integrated, err = Integrate(out.Squared, cfg.Window); err != nil {
		return out, err
	}

	out.Peaks, out.State, err = DetectPeaksWithState(out.Integrated, cfg.Refractory, NewThresholdState(cfg.Refractory))
	if err != nil {
		return out, err
	}

	return out, nil
}

// CompensateDelay shifts peak indices back by delay samples so they line up
// with the raw signal. Indices that would fall before 0 are clamped to 0.
func CompensateDelay(peaks []int, delay int) []int {
	out := make([]int, len(peaks))
	for i, p := range peaks {
		if p -= delay; p < 0 {
			p = 0
		}
		out[i] = p
	}
	return out
}
