package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/carbocation/qrsdetect"
	"github.com/carbocation/qrsdetect/compileinfo"
	"github.com/carbocation/qrsdetect/evaluate"
	"github.com/carbocation/qrsdetect/wfdb"
)

// outcome is what one record contributes to the batch. Records without
// reference annotations are processed but not scored.
type outcome struct {
	Result evaluate.Result
	Scored bool
	Failed bool
}

func run(ctx context.Context, b batch, cfg qrsdetect.JSONConfig) error {
	if b.Out != "" {
		if err := os.MkdirAll(b.Out, 0755); err != nil {
			return err
		}
	}

	if b.Concurrency < 1 {
		b.Concurrency = 1
	}

	// Each goroutine owns one slot, so no locking is needed.
	outcomes := make([]outcome, len(b.Records))

	var processed int64
	var g errgroup.Group
	g.SetLimit(b.Concurrency)

	for i, record := range b.Records {
		i, record := i, record
		g.Go(func() error {
			res, scored, err := processRecord(ctx, b, cfg, record)
			if err != nil {
				// One bad record should not sink the batch.
				log.Printf("Warning: skipping record %s: %v\n", record, err)
				outcomes[i] = outcome{Failed: true}
				return nil
			}
			outcomes[i] = outcome{Result: res, Scored: scored}

			if n := atomic.AddInt64(&processed, 1); n%10 == 0 {
				log.Printf("Processed %d/%d records\n", n, len(b.Records))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	var results []evaluate.Result
	failed := 0
	for _, v := range outcomes {
		if v.Failed {
			failed++
		}
		if v.Scored {
			results = append(results, v.Result)
		}
	}

	if failed == len(b.Records) {
		return fmt.Errorf("none of the %d records could be processed", len(b.Records))
	}
	log.Printf("Processed %d records (%d skipped, %d scored)\n", len(b.Records)-failed, failed, len(results))

	if len(results) == 0 {
		log.Println("No record had reference annotations; nothing to score")
		return nil
	}

	fmt.Println(evaluate.Header)
	for _, res := range results {
		fmt.Println(res)
	}

	summary, err := evaluate.Summarize(results)
	if err != nil {
		return err
	}
	fmt.Println()
	summary.Fprint(os.Stdout)

	if b.Baseline != "" {
		if err := compareBaseline(ctx, b.Baseline, results); err != nil {
			return err
		}
	}

	if b.SummaryCSV == "" {
		return nil
	}

	f, err := os.Create(b.SummaryCSV)
	if err != nil {
		return err
	}
	if err := evaluate.WriteSummaryCSV(f, results); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("Wrote %s (revision %s)\n", b.SummaryCSV, compileinfo.Get().Revision())

	return nil
}

// processRecord detects beats in one record, or loads previously written
// ones, and scores them when reference annotations exist.
func processRecord(ctx context.Context, b batch, cfg qrsdetect.JSONConfig, record string) (evaluate.Result, bool, error) {
	var aligned []int
	var rate float64
	var err error

	if b.Peaks != "" {
		aligned, rate, err = loadPeaks(ctx, b, cfg, record)
	} else {
		aligned, rate, err = detectRecord(ctx, b, cfg, record)
	}
	if err != nil {
		return evaluate.Result{}, false, err
	}

	anns, err := wfdb.ReadAnnotationFile(ctx, b.Dir, record, b.Annotator, client)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("Record %s has no .%s annotations; not scoring it\n", record, b.Annotator)
		return evaluate.Result{}, false, nil
	} else if err != nil {
		return evaluate.Result{}, false, err
	}

	out := evaluate.Match(wfdb.BeatIndices(anns), aligned, evaluate.ToleranceSamples(cfg.Tolerance(), rate))
	out.Record = record

	return out, true, nil
}

// detectRecord runs the detector and writes the peaks file. It returns the
// peaks in raw signal time along with the sampling rate.
func detectRecord(ctx context.Context, b batch, cfg qrsdetect.JSONConfig, record string) ([]int, float64, error) {
	rec, err := wfdb.OpenRecord(ctx, b.Dir, record, client)
	if err != nil {
		return nil, 0, err
	}
	if len(rec.Signals) == 0 {
		return nil, 0, fmt.Errorf("no signals")
	}

	channel, err := rec.Channel(b.Channel)
	if err != nil {
		channel = 0
	}

	sig, err := rec.Signal(channel)
	if err != nil {
		return nil, 0, err
	}

	det, err := qrsdetect.Detect(sig, cfg)
	if err != nil {
		return nil, 0, err
	}

	if b.Out != "" {
		if err := writePeaks(filepath.Join(b.Out, record+"_qrs_locs.txt"), det.Peaks); err != nil {
			return nil, 0, err
		}
	}

	return det.Aligned, sig.Rate, nil
}

// loadPeaks reads a peaks file written by an earlier run. Only the header is
// needed to recover the sampling rate and the pipeline delay.
func loadPeaks(ctx context.Context, b batch, cfg qrsdetect.JSONConfig, record string) ([]int, float64, error) {
	h, err := wfdb.ReadHeaderFile(ctx, b.Dir, record, client)
	if err != nil {
		return nil, 0, err
	}

	detector, err := cfg.Detector(h.Frequency)
	if err != nil {
		return nil, 0, err
	}

	f, err := qrsdetect.Open(ctx, qrsdetect.JoinPath(b.Peaks, record+"_qrs_locs.txt"), client)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	peaks, err := qrsdetect.ReadPeaks(f)
	if err != nil {
		return nil, 0, err
	}

	return qrsdetect.AlignPeaks(peaks, detector, cfg.CompensateDelay), h.Frequency, nil
}

// compareBaseline prints how each record's F1 moved relative to an earlier
// summary CSV.
func compareBaseline(ctx context.Context, path string, results []evaluate.Result) error {
	f, err := qrsdetect.Open(ctx, path, client)
	if err != nil {
		return err
	}
	defer f.Close()

	prior, err := evaluate.ReadSummaryCSV(f)
	if err != nil {
		return err
	}

	before := make(map[string]evaluate.Result, len(prior))
	for _, v := range prior {
		before[v.Record] = v
	}

	fmt.Println()
	fmt.Println("Record  F1 before  F1 now    change")
	for _, v := range results {
		p, ok := before[v.Record]
		if !ok {
			fmt.Printf("%-6s  %9s  %6.4f\n", v.Record, "NA", v.F1)
			continue
		}
		fmt.Printf("%-6s  %9.4f  %6.4f  %+8.4f\n", v.Record, p.F1, v.F1, v.F1-p.F1)
	}

	return nil
}

func writePeaks(path string, peaks []int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := qrsdetect.WritePeaks(f, peaks); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
