// Package evaluate scores detected beat locations against reference
// annotations, the way the MIT-BIH arrhythmia benchmark is usually reported.
package evaluate

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
	"github.com/montanaflynn/stats"
)

// Result is the outcome for one record.
type Result struct {
	Record      string  `csv:"Record"`
	Reference   int     `csv:"Reference"`
	Detected    int     `csv:"Detected"`
	TP          int     `csv:"TP"`
	FP          int     `csv:"FP"`
	FN          int     `csv:"FN"`
	Sensitivity float64 `csv:"Sensitivity"`
	PPV         float64 `csv:"PPV"`
	F1          float64 `csv:"F1"`
}

func (r Result) String() string {
	return fmt.Sprintf("%-6s %5d %5d %5d %5d %5d %8.4f %8.4f %8.4f",
		r.Record, r.Reference, r.Detected, r.TP, r.FP, r.FN, r.Sensitivity, r.PPV, r.F1)
}

// Header lines up with Result.String.
const Header = "Record   Ref   Det    TP    FP    FN     Sens      PPV       F1"

// ToleranceSamples converts a matching window in seconds to whole samples,
// truncating.
func ToleranceSamples(seconds, fs float64) int {
	return int(seconds*fs + 1e-9)
}

// Match pairs each detection with the closest reference beat within
// tolerance samples. A reference can be claimed once; a second detection
// near it, or a detection near nothing, is a false positive. Unclaimed
// references are false negatives. Ties go to the earlier reference.
func Match(reference, detected []int, tolerance int) Result {
	ref := append([]int(nil), reference...)
	sort.Ints(ref)

	matched := make([]bool, len(ref))
	out := Result{Reference: len(ref), Detected: len(detected)}

	for _, d := range detected {
		lo := sort.SearchInts(ref, d-tolerance)

		best := -1
		for i := lo; i < len(ref) && ref[i] <= d+tolerance; i++ {
			if best < 0 || abs(ref[i]-d) < abs(ref[best]-d) {
				best = i
			}
		}

		if best >= 0 && !matched[best] {
			matched[best] = true
			out.TP++
		} else {
			out.FP++
		}
	}

	out.FN = out.Reference - out.TP
	out.Sensitivity = ratio(out.TP, out.TP+out.FN)
	out.PPV = ratio(out.TP, out.TP+out.FP)
	if s := out.Sensitivity + out.PPV; s > 0 {
		out.F1 = 2 * out.Sensitivity * out.PPV / s
	}

	return out
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Summary aggregates several records. Means and medians are over per-record
// scores; the gross figures pool every beat.
type Summary struct {
	Records int

	MeanSensitivity   float64
	MeanPPV           float64
	MeanF1            float64
	MedianSensitivity float64
	MedianPPV         float64
	MedianF1          float64

	TP, FP, FN       int
	GrossSensitivity float64
	GrossPPV         float64
}

func Summarize(results []Result) (Summary, error) {
	out := Summary{Records: len(results)}
	if len(results) == 0 {
		return out, nil
	}

	var se, ppv, f1 stats.Float64Data
	for _, r := range results {
		se = append(se, r.Sensitivity)
		ppv = append(ppv, r.PPV)
		f1 = append(f1, r.F1)

		out.TP += r.TP
		out.FP += r.FP
		out.FN += r.FN
	}

	var err error
	for _, v := range []struct {
		Data         stats.Float64Data
		Mean, Median *float64
	}{
		{se, &out.MeanSensitivity, &out.MedianSensitivity},
		{ppv, &out.MeanPPV, &out.MedianPPV},
		{f1, &out.MeanF1, &out.MedianF1},
	} {
		if *v.Mean, err = v.Data.Mean(); err != nil {
			return out, pfx.Err(err)
		}
		if *v.Median, err = v.Data.Median(); err != nil {
			return out, pfx.Err(err)
		}
	}

	out.GrossSensitivity = ratio(out.TP, out.TP+out.FN)
	out.GrossPPV = ratio(out.TP, out.TP+out.FP)

	return out, nil
}

func (s Summary) Fprint(w io.Writer) {
	fmt.Fprintf(w, "Average Sensitivity: %.4f\n", s.MeanSensitivity)
	fmt.Fprintf(w, "Average PPV (Precision): %.4f\n", s.MeanPPV)
	fmt.Fprintf(w, "Average F1 Score: %.4f\n", s.MeanF1)
	fmt.Fprintf(w, "Gross Sensitivity: %.4f (TP %d, FN %d)\n", s.GrossSensitivity, s.TP, s.FN)
	fmt.Fprintf(w, "Gross PPV: %.4f (TP %d, FP %d)\n", s.GrossPPV, s.TP, s.FP)
}

// WriteSummaryCSV writes one row per record with scores rounded to four
// decimal places.
func WriteSummaryCSV(w io.Writer, results []Result) error {
	rows := make([]*Result, len(results))
	for i := range results {
		r := results[i]
		r.Sensitivity = round4(r.Sensitivity)
		r.PPV = round4(r.PPV)
		r.F1 = round4(r.F1)
		rows[i] = &r
	}

	return pfx.Err(gocsv.Marshal(rows, w))
}

// ReadSummaryCSV parses a WriteSummaryCSV table.
func ReadSummaryCSV(r io.Reader) ([]Result, error) {
	rows := []*Result{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, pfx.Err(err)
	}

	out := make([]Result, len(rows))
	for i, v := range rows {
		out[i] = *v
	}
	return out, nil
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
