// Package pantompkins locates QRS complexes in a single-lead ECG using the
// Pan-Tompkins method. A recording flows through a fixed chain of stages:
//
//	raw -> BandPass -> Differentiate -> Square -> Integrate -> DetectPeaks
//
// Every stage reads one []float64 and returns a new one of the same length,
// except the detector, which returns the sample indices of accepted beats.
// Inputs are never modified. The ...Into variants write into a caller-sized
// buffer instead of allocating; they validate all arguments before touching
// that buffer.
//
// Run composes the chain with a Config. Nothing in this package keeps state
// between calls, so separate recordings may be processed concurrently.
package pantompkins
