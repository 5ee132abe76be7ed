package qrsdetect

import (
	"github.com/carbocation/qrsdetect/pantompkins"
)

// Detection is one pipeline run as the commands use it.
type Detection struct {
	pantompkins.Result
	Config pantompkins.Config

	// Peaks are the indices reported to the user: envelope time, or raw
	// signal time when the config asks for delay compensation.
	Peaks []int

	// Aligned are always in raw signal time, which is what reference
	// annotations use. Score with these.
	Aligned []int
}

// Detect builds the detector for sig's rate from cfg and runs it.
func Detect(sig pantompkins.Signal, cfg JSONConfig) (Detection, error) {
	var out Detection

	detector, err := cfg.Detector(sig.Rate)
	if err != nil {
		return out, err
	}
	out.Config = detector

	if out.Result, err = pantompkins.Run(sig, detector); err != nil {
		return out, err
	}

	out.Aligned = AlignPeaks(out.Indices(), detector, false)
	out.Peaks = out.Indices()
	if cfg.CompensateDelay {
		out.Peaks = out.Aligned
	}

	return out, nil
}

// AlignPeaks returns peaks in raw signal time. compensated says whether the
// delay has already been removed, as with peaks files written under
// compensate_delay.
func AlignPeaks(peaks []int, detector pantompkins.Config, compensated bool) []int {
	if compensated {
		return append([]int(nil), peaks...)
	}
	return pantompkins.CompensateDelay(peaks, detector.Delay())
}
