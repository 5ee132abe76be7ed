package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/aybabtme/uniplot/histogram"

	"github.com/carbocation/qrsdetect/evaluate"
	"github.com/carbocation/qrsdetect/pantompkins"
	"github.com/carbocation/qrsdetect/plot"
	"github.com/carbocation/qrsdetect/wfdb"
)

func writePlots(name string, sig pantompkins.Signal, res pantompkins.Result, peaks []int, out output) error {
	n := len(sig.Samples)
	if out.PlotSeconds > 0 {
		if limit := sig.Seconds(out.PlotSeconds); limit < n {
			n = limit
		}
	}

	clipped := pantompkins.Signal{Samples: sig.Samples[:n], Rate: sig.Rate}
	window := pantompkins.Result{
		Filtered:   res.Filtered[:n],
		Derivative: res.Derivative[:n],
		Squared:    res.Squared[:n],
		Integrated: res.Integrated[:n],
	}
	for _, p := range res.Peaks {
		if p.Index < n {
			window.Peaks = append(window.Peaks, p)
		}
	}

	if out.PlotStages {
		if err := writeFile(filepath.Join(out.Dir, name+"_stages.png"), func(f *os.File) error {
			return plot.Stages(f, clipped, window, plot.DefaultWidth, 4*plot.DefaultHeight)
		}); err != nil {
			return err
		}
	}

	if out.PlotLead {
		var marks []int
		for _, p := range peaks {
			if p < n {
				marks = append(marks, p)
			}
		}
		if err := writeFile(filepath.Join(out.Dir, name+"_lead.png"), func(f *os.File) error {
			return plot.Lead(f, clipped, marks, 0, 0, plot.DefaultWidth, plot.DefaultHeight)
		}); err != nil {
			return err
		}
	}

	return nil
}

func printRRHistogram(w io.Writer, peaks []int, fs float64, bins int) error {
	rr := pantompkins.RRIntervals(peaks, fs)
	if len(rr) == 0 {
		log.Println("Fewer than 2 beats; no RR histogram to print")
		return nil
	}
	if bins < 1 {
		bins = 1
	}

	fmt.Fprintln(w, "RR intervals (s):")
	hist := histogram.Hist(bins, rr)
	return histogram.Fprint(w, hist, histogram.Linear(40))
}

// score compares detections with a reference annotation file stored next to
// the record. aligned must already be in raw signal time.
func score(ctx context.Context, in input, ext string, aligned []int, toleranceSeconds, fs float64) error {
	anns, err := wfdb.ReadAnnotationFile(ctx, in.Dir, in.Record, ext, client)
	if err != nil {
		return err
	}

	res := evaluate.Match(wfdb.BeatIndices(anns), aligned, evaluate.ToleranceSamples(toleranceSeconds, fs))
	res.Record = in.Record

	fmt.Println(evaluate.Header)
	fmt.Println(res)

	return nil
}
