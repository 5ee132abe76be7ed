package pantompkins

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultLowCutoffHz is the lower edge of the QRS pass-band. Below this,
	// baseline wander and P/T waves dominate.
	DefaultLowCutoffHz = 5.0

	// DefaultHighCutoffHz is the upper edge of the QRS pass-band. Above this,
	// muscle noise and powerline interference dominate.
	DefaultHighCutoffHz = 15.0

	// DefaultTaps is the kernel length used for MIT-BIH records at 360 Hz.
	DefaultTaps = 201
)

// Kernel holds FIR filter coefficients. A Kernel built by DesignBandPass has
// odd length and is symmetric about its center tap.
type Kernel []float64

// Center is the index of the center tap.
func (k Kernel) Center() int {
	return len(k) / 2
}

// Sum returns the sum of all taps, i.e. the filter's gain at DC.
func (k Kernel) Sum() float64 {
	if len(k) == 0 {
		return 0
	}
	return floats.Sum(k)
}

// DesignBandPass synthesizes a windowed-sinc band-pass kernel passing
// [lowHz, highHz] for a signal sampled at fs Hz. The band-pass is the sum of
// a low-pass at highHz and a spectrally inverted low-pass at lowHz, both
// Hamming windowed. The result is divided by its tap sum, unless that sum is
// exactly zero.
func DesignBandPass(lowHz, highHz, fs float64, taps int) (Kernel, error) {
	if err := checkTaps(taps); err != nil {
		return nil, err
	}
	if !(fs > 0) {
		return nil, invalid("sampling rate must be positive, got %v", fs)
	}
	if !(lowHz >= 0) || !(highHz > lowHz) {
		return nil, invalid("cutoffs must satisfy 0 <= low < high, got low=%v high=%v", lowHz, highHz)
	}

	lpHigh := windowedSinc(highHz, fs, taps)
	hpLow := windowedSinc(lowHz, fs, taps)

	// Spectral inversion: an all-pass impulse minus the low-pass is a
	// high-pass with the same cutoff.
	floats.Scale(-1, hpLow)
	hpLow[len(hpLow)/2] += 1

	band := make(Kernel, taps)
	floats.AddTo(band, lpHigh, hpLow)

	if sum := floats.Sum(band); sum != 0 {
		floats.Scale(1/sum, band)
	}

	return band, nil
}

// windowedSinc returns a Hamming-windowed ideal low-pass kernel with cutoff
// fc for a signal sampled at fs.
func windowedSinc(fc, fs float64, taps int) []float64 {
	out := make([]float64, taps)
	m := taps / 2

	for i := range out {
		n := i - m
		if n == 0 {
			out[i] = 2 * fc / fs
		} else {
			out[i] = math.Sin(2*math.Pi*fc*float64(n)/fs) / (math.Pi * float64(n))
		}
		out[i] *= hamming(i, taps)
	}

	return out
}

func hamming(i, taps int) float64 {
	if taps == 1 {
		return 1
	}
	return 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(taps-1))
}

func checkTaps(taps int) error {
	if taps <= 0 {
		return invalid("tap count must be positive, got %d", taps)
	}
	if taps%2 == 0 {
		return invalid("tap count must be odd so a center tap exists, got %d", taps)
	}
	return nil
}
