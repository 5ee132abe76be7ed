package pantompkins

import "fmt"

// Signal pairs a sample sequence with the rate, in Hz, at which it was
// digitized. Loaders hand these to the pipeline.
type Signal struct {
	Samples []float64
	Rate    float64
}

// Seconds converts a duration in seconds to a whole number of samples at the
// signal's rate, rounding to the nearest sample and never returning less
// than 1.
func (s Signal) Seconds(sec float64) int {
	return SecondsToSamples(sec, s.Rate)
}

func (s Signal) Duration() float64 {
	if s.Rate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / s.Rate
}

func (s Signal) String() string {
	return fmt.Sprintf("%d samples at %.1f Hz (%.1fs)", len(s.Samples), s.Rate, s.Duration())
}

// SecondsToSamples rounds sec*fs to the nearest sample, with a floor of 1.
func SecondsToSamples(sec, fs float64) int {
	n := int(sec*fs + 0.5)
	if n < 1 {
		return 1
	}
	return n
}
