package pantompkins

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Boundary selects how the kernel is aligned against the signal, and
// therefore what happens at the edges of the recording.
type Boundary int

const (
	// Causal sums input[n-k]*h[k] over k, dropping terms with n-k < 0. Only
	// past samples contribute, so the output lags the input by the kernel's
	// group delay, (L-1)/2 samples.
	Causal Boundary = iota

	// Centered sums input[n-k+L/2]*h[k], dropping out-of-range indices. The
	// kernel straddles n symmetrically, so features stay where they were in
	// the input.
	Centered
)

func (b Boundary) String() string {
	switch b {
	case Causal:
		return "causal"
	case Centered:
		return "centered"
	}
	return fmt.Sprintf("Boundary(%d)", int(b))
}

// ParseBoundary accepts "causal" or "centered", case-insensitively.
func ParseBoundary(s string) (Boundary, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "causal", "":
		return Causal, nil
	case "centered", "centred":
		return Centered, nil
	}
	return Causal, invalid("unknown boundary policy %q", s)
}

// GroupDelay is the number of samples by which a kernel of the given length
// shifts features when applied under this policy.
func (b Boundary) GroupDelay(taps int) int {
	if b == Causal && taps > 0 {
		return (taps - 1) / 2
	}
	return 0
}

// BandPass designs the default 5-15 Hz kernel with the given tap count and
// applies it causally. The output is zero-mean with a peak magnitude of 1.
func BandPass(raw []float64, taps int, fs float64) ([]float64, error) {
	k, err := DesignBandPass(DefaultLowCutoffHz, DefaultHighCutoffHz, fs, taps)
	if err != nil {
		return nil, err
	}

	return Convolve(raw, k, Causal)
}

// Convolve filters raw with k, then subtracts the mean of the result and
// scales it so that its largest magnitude is 1. The amplitude is therefore
// relative, not calibrated. If raw is shorter than the kernel, the result is
// all zeros.
func Convolve(raw []float64, k Kernel, b Boundary) ([]float64, error) {
	if err := checkConvolve(raw, k, b); err != nil {
		return nil, err
	}

	out := make([]float64, len(raw))
	convolve(out, raw, k, b)
	return out, nil
}

// ConvolveInto is Convolve writing into dst, which must have len(raw)
// samples and must not share any memory with raw.
func ConvolveInto(dst, raw []float64, k Kernel, b Boundary) error {
	if err := checkConvolve(raw, k, b); err != nil {
		return err
	}
	if err := checkDst("convolve", dst, raw); err != nil {
		return err
	}
	if overlaps(dst, raw) {
		return invalid("convolve: destination overlaps the source")
	}

	convolve(dst, raw, k, b)
	return nil
}

func checkConvolve(raw []float64, k Kernel, b Boundary) error {
	if err := checkSamples("convolve", raw); err != nil {
		return err
	}
	if err := checkTaps(len(k)); err != nil {
		return err
	}
	if b != Causal && b != Centered {
		return invalid("unknown boundary policy %v", b)
	}
	return nil
}

func convolve(dst, raw []float64, k Kernel, b Boundary) {
	n, taps := len(raw), len(k)

	if n < taps {
		for i := range dst {
			dst[i] = 0
		}
		return
	}

	shift := 0
	if b == Centered {
		shift = taps / 2
	}

	for i := 0; i < n; i++ {
		acc := 0.0
		for j, h := range k {
			idx := i - j + shift
			if idx < 0 || idx >= n {
				continue
			}
			acc += raw[idx] * h
		}
		dst[i] = acc
	}

	normalize(dst)
}

// normalize zero-means x and divides by its largest magnitude, skipping the
// division when x is identically zero after centering.
func normalize(x []float64) {
	floats.AddConst(-stat.Mean(x, nil), x)

	if peak := floats.Norm(x, math.Inf(1)); peak != 0 {
		floats.Scale(1/peak, x)
	}
}
