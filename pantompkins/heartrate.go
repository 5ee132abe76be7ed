package pantompkins

import (
	"fmt"

	"github.com/carbocation/runningvariance"
)

// RRSummary describes the beat-to-beat intervals of one detection run.
type RRSummary struct {
	Beats       int
	Intervals   int
	MeanRR      float64 // seconds
	SDRR        float64 // seconds
	MinRR       float64 // seconds
	MaxRR       float64 // seconds
	MeanHeartHz float64 // beats per second, 1/MeanRR
}

// BPM is the mean heart rate in beats per minute.
func (s RRSummary) BPM() float64 {
	return 60 * s.MeanHeartHz
}

func (s RRSummary) String() string {
	return fmt.Sprintf("%d beats, mean RR %.3fs (SD %.3fs), %.1f bpm", s.Beats, s.MeanRR, s.SDRR, s.BPM())
}

// RRIntervals returns the gaps between consecutive peaks, in seconds.
func RRIntervals(peaks []int, fs float64) []float64 {
	if len(peaks) < 2 || fs <= 0 {
		return nil
	}

	out := make([]float64, 0, len(peaks)-1)
	for i := 1; i < len(peaks); i++ {
		out = append(out, float64(peaks[i]-peaks[i-1])/fs)
	}
	return out
}

// SummarizeRR computes interval statistics from accepted peak indices.
func SummarizeRR(peaks []int, fs float64) RRSummary {
	out := RRSummary{Beats: len(peaks)}

	rr := RRIntervals(peaks, fs)
	if len(rr) == 0 {
		return out
	}

	rs := runningvariance.NewRunningStat()
	out.MinRR, out.MaxRR = rr[0], rr[0]
	for _, v := range rr {
		rs.Push(v)
		if v < out.MinRR {
			out.MinRR = v
		}
		if v > out.MaxRR {
			out.MaxRR = v
		}
	}

	out.Intervals = len(rr)
	out.MeanRR = rs.Mean()
	if len(rr) > 1 {
		out.SDRR = rs.StandardDeviation()
	}
	if out.MeanRR > 0 {
		out.MeanHeartHz = 1 / out.MeanRR
	}

	return out
}
