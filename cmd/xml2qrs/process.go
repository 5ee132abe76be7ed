package main

import (
	"archive/zip"
	"bufio"
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/carbocation/qrsdetect"
	"github.com/carbocation/qrsdetect/ecgxml"
	"github.com/carbocation/qrsdetect/evaluate"
	"github.com/carbocation/qrsdetect/pantompkins"
	"github.com/carbocation/qrsdetect/plot"
)

func run(ctx context.Context, filename string, cfg qrsdetect.JSONConfig, opts options) error {
	f, err := qrsdetect.Open(ctx, filename, client)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := ecgxml.Parse(f)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(path.Base(filename), ".xml")
	sampleID, instance := fileNameToSampleInstance(base)

	leads, err := doc.Leads(ecgxml.Strip)
	if err != nil {
		return err
	}
	if opts.Median {
		medians, err := doc.Leads(ecgxml.Median)
		if err != nil {
			return err
		}
		leads = append(leads, medians...)
	}

	reference, err := doc.ReferenceBeats()
	if err != nil {
		return err
	}

	if opts.Debug {
		rate, _ := doc.VentricularRate()
		log.Printf("%s: %d leads, %d device beats, device rate %.0f/min\n", base, len(leads), len(reference), rate)
	}

	outFile, err := os.Create(filepath.Join(opts.Out, base+"_qrs.tsv"))
	if err != nil {
		return err
	}
	defer outFile.Close()

	var OUTFILE = bufio.NewWriter(outFile)
	defer OUTFILE.Flush()

	fmt.Fprintln(OUTFILE, strings.Join([]string{"sample_id", "instance", "strip", "lead", "fs", "beats", "bpm", "sensitivity", "ppv", "peaks"}, "\t"))

	var zw *zip.Writer
	if opts.CreatePNG {
		zf, err := os.Create(filepath.Join(opts.Out, base+"_qrs.zip"))
		if err != nil {
			return err
		}
		defer zf.Close()

		zw = zip.NewWriter(zf)
		defer zw.Close()
	}

	for _, lead := range leads {
		if len(lead.Signal.Samples) == 0 {
			log.Printf("%s: lead %s (%s) has no samples, skipping\n", base, lead.Name, lead.Kind)
			continue
		}

		det, err := qrsdetect.Detect(lead.Signal, cfg)
		if err != nil {
			return fmt.Errorf("%s lead %s: %w", base, lead.Name, err)
		}

		rr := pantompkins.SummarizeRR(det.Indices(), lead.Signal.Rate)

		// The device only annotates the rhythm strip.
		se, ppv := "NA", "NA"
		if lead.Kind == ecgxml.Strip && len(reference) > 0 {
			res := evaluate.Match(reference, det.Aligned, evaluate.ToleranceSamples(cfg.Tolerance(), lead.Signal.Rate))
			se, ppv = strconv.FormatFloat(res.Sensitivity, 'f', 4, 64), strconv.FormatFloat(res.PPV, 'f', 4, 64)
		}

		fmt.Fprintln(OUTFILE, strings.Join([]string{
			sampleID,
			instance,
			string(lead.Kind),
			lead.Name,
			strconv.FormatFloat(lead.Signal.Rate, 'f', -1, 64),
			strconv.Itoa(len(det.Peaks)),
			strconv.FormatFloat(rr.BPM(), 'f', 1, 64),
			se,
			ppv,
			joinInts(det.Peaks),
		}, "\t"))

		if zw != nil {
			if err := plotLead(zw, base, lead, det.Aligned, opts); err != nil {
				return err
			}
		}
	}

	return nil
}

func plotLead(zw *zip.Writer, base string, lead ecgxml.Lead, peaks []int, opts options) error {
	display, err := ecgxml.DisplayFilter(lead.Signal.Samples, lead.Signal.Rate, opts.HighPassHz, opts.LowPassHz, opts.Compress)
	if err != nil {
		return err
	}

	// Compression shrinks the time axis, so peaks move with it.
	step := 1
	if opts.Compress > 1 {
		step = int(math.Ceil(opts.Compress))
	}
	marks := make([]int, 0, len(peaks))
	for _, p := range peaks {
		if p/step < len(display) {
			marks = append(marks, p/step)
		}
	}

	imgW, err := zw.Create(base + "_" + string(lead.Kind) + "_" + lead.Name + ".png")
	if err != nil {
		return err
	}

	sig := pantompkins.Signal{Samples: display, Rate: lead.Signal.Rate / float64(step)}
	return plot.Lead(imgW, sig, marks, -1.0, 1.0, opts.Width, opts.Height)
}

// fileNameToSampleInstance splits UK Biobank style names such as
// 1234567_20205_2_0 into the sample ID and the instance.
func fileNameToSampleInstance(base string) (string, string) {
	parts := strings.Split(base, "_")
	if len(parts) < 3 {
		return base, "NA"
	}

	return parts[0], parts[2]
}

func joinInts(x []int) string {
	out := make([]string, len(x))
	for i, v := range x {
		out[i] = strconv.Itoa(v)
	}
	return strings.Join(out, ",")
}
