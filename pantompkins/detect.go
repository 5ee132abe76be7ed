package pantompkins

const (
	// peakWeight is the smoothing weight given to a new peak when updating
	// SPKI or NPKI.
	peakWeight = 0.125

	// recoveredWeight replaces peakWeight for peaks found by search-back.
	recoveredWeight = 0.25

	// thresholdFraction places THRESHOLD_I1 this far from NPKI toward SPKI.
	thresholdFraction = 0.25

	// secondaryFraction scales THRESHOLD_I1 down to THRESHOLD_I2.
	secondaryFraction = 0.5

	// searchBackFactor is how many mean RR intervals may pass without a beat
	// before search-back looks for one that was missed.
	searchBackFactor = 1.66
)

// Peak is an accepted QRS location. Recovered peaks were found by
// search-back under the secondary threshold rather than by the primary scan.
type Peak struct {
	Index     int
	Recovered bool
}

// ThresholdState is the detector's running estimate of signal and noise
// levels. It is threaded through one detection pass and handed back to the
// caller when the pass ends; no other state survives between calls.
type ThresholdState struct {
	SPKI        float64 // running signal-peak level
	NPKI        float64 // running noise-peak level
	ThresholdI1 float64
	ThresholdI2 float64

	LastPeak int // index of the most recently accepted peak
	Accepted int // number of peaks accepted so far, recovered ones included
	RR       RRHistory
}

// NewThresholdState returns the initial state for a pass with the given
// refractory period. LastPeak starts one refractory period before the first
// sample, so the first candidate is never blocked.
func NewThresholdState(refractory int) ThresholdState {
	return ThresholdState{LastPeak: -refractory}
}

// RRMean is the mean of the recorded RR intervals, or 0 if none exist yet.
func (s ThresholdState) RRMean() float64 {
	return s.RR.Mean()
}

func (s *ThresholdState) refreshThresholds() {
	s.ThresholdI1 = s.NPKI + thresholdFraction*(s.SPKI-s.NPKI)
	s.ThresholdI2 = secondaryFraction * s.ThresholdI1
}

// acceptSignal records a peak that cleared THRESHOLD_I1.
func (s *ThresholdState) acceptSignal(i int, v float64) {
	if s.Accepted > 0 {
		s.RR.Push(i - s.LastPeak)
	}
	s.LastPeak = i
	s.Accepted++
	s.SPKI = peakWeight*v + (1-peakWeight)*s.SPKI
}

func (s *ThresholdState) acceptNoise(v float64) {
	s.NPKI = peakWeight*v + (1-peakWeight)*s.NPKI
}

// acceptRecovered records a search-back peak. It leaves NPKI and the RR
// history alone, unlike acceptSignal.
func (s *ThresholdState) acceptRecovered(j int, v float64) {
	s.LastPeak = j
	s.Accepted++
	s.SPKI = recoveredWeight*v + (1-recoveredWeight)*s.SPKI
	s.refreshThresholds()
}

// DetectPeaks returns the indices of the QRS complexes found in an
// integrated envelope, in increasing order. refractory is the minimum gap,
// in samples, between a new candidate and the last accepted peak.
func DetectPeaks(envelope []float64, refractory int) ([]int, error) {
	peaks, _, err := DetectPeaksWithState(envelope, refractory, NewThresholdState(refractory))
	if err != nil {
		return nil, err
	}

	out := make([]int, len(peaks))
	for i, p := range peaks {
		out[i] = p.Index
	}
	return out, nil
}

// DetectPeaksWithState runs the dual-threshold scan starting from state and
// returns the accepted peaks along with the final state.
//
// Each sample i in [1, N-2] that is a strict local maximum and lies more
// than refractory samples past the last accepted peak is compared against
// THRESHOLD_I1: above it the sample is a beat, otherwise noise. Thresholds
// are recomputed after each such comparison. Independently, once the gap
// since the last beat exceeds 1.66 mean RR intervals, the largest local
// maximum between the end of the refractory period and i is accepted if it
// clears THRESHOLD_I2.
func DetectPeaksWithState(envelope []float64, refractory int, state ThresholdState) ([]Peak, ThresholdState, error) {
	if err := checkSamples("detect peaks", envelope); err != nil {
		return nil, state, err
	}
	if refractory <= 0 {
		return nil, state, invalid("detect peaks: refractory period must be positive, got %d", refractory)
	}

	peaks := make([]Peak, 0)
	n := len(envelope)
	if n < 3 {
		return peaks, state, nil
	}

	var window searchWindow
	window.reset(state.LastPeak, refractory)

	for i := 1; i < n-1; i++ {
		if isLocalMax(envelope, i) && i-state.LastPeak > refractory {
			if v := envelope[i]; v > state.ThresholdI1 {
				state.acceptSignal(i, v)
				peaks = append(peaks, Peak{Index: i})
				window.reset(i, refractory)
			} else {
				state.acceptNoise(v)
			}
			state.refreshThresholds()
		}

		window.extend(envelope, i)

		rrMean := state.RRMean()
		if rrMean <= 0 || float64(i-state.LastPeak) <= searchBackFactor*rrMean {
			continue
		}

		if j := window.best; j >= 0 && envelope[j] > state.ThresholdI2 {
			state.acceptRecovered(j, envelope[j])
			peaks = append(peaks, Peak{Index: j, Recovered: true})
			window.reset(j, refractory)
		}
	}

	return peaks, state, nil
}

func isLocalMax(x []float64, i int) bool {
	return x[i] > x[i-1] && x[i] > x[i+1]
}

// searchWindow tracks the largest local maximum in (last+refractory, i) as i
// advances, so search-back never rescans the interval.
type searchWindow struct {
	next int // first index not yet examined
	best int // index of the largest local maximum seen, or -1
}

func (w *searchWindow) reset(last, refractory int) {
	w.next = last + refractory + 1
	w.best = -1
}

// extend examines every index up to, but not including, i.
func (w *searchWindow) extend(x []float64, i int) {
	if w.next < 1 {
		w.next = 1
	}
	for ; w.next < i; w.next++ {
		j := w.next
		if !isLocalMax(x, j) {
			continue
		}
		if w.best < 0 || x[j] > x[w.best] {
			w.best = j
		}
	}
}
