// qrsdetect runs the Pan-Tompkins QRS detector over one recording, either a
// WFDB record (such as one from the MIT-BIH Arrhythmia Database) or one
// column of a delimited text file, and writes the band-passed signal and
// the detected beat locations.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/carbocation/qrsdetect"
	_ "github.com/carbocation/qrsdetect/compileinfoprint"
	"github.com/carbocation/qrsdetect/pantompkins"
	"github.com/carbocation/qrsdetect/wfdb"
)

// Safe for concurrent use by multiple goroutines so we'll make this a global
var client *storage.Client

type input struct {
	Record  string
	Dir     string
	Channel string
	CSV     string
	Column  string
	Fs      float64
}

type output struct {
	Dir          string
	PlotSeconds  float64
	PlotStages   bool
	PlotLead     bool
	RRHistogram  bool
	HistBins     int
	Physical     bool
	AnnotatorExt string
}

func main() {
	var in input
	var out output
	var det qrsdetect.DetectorFlags

	flag.StringVar(&in.Record, "record", "", "WFDB record name, e.g. 100. Reads <dir>/<record>.hea and its signal file.")
	flag.StringVar(&in.Dir, "dir", ".", "Directory (local or gs://) holding the WFDB record")
	flag.StringVar(&in.Channel, "channel", "MLII", "Signal description of the WFDB channel to analyze. Falls back to the first channel if absent.")
	flag.StringVar(&in.CSV, "csv", "", "Alternatively, a delimited text file (optionally compressed) with one column per lead")
	flag.StringVar(&in.Column, "column", "", "Column of -csv to analyze. Defaults to the first column after the sample counter.")
	flag.Float64Var(&in.Fs, "fs", 360, "Sampling rate of -csv, in samples per second")
	flag.StringVar(&out.Dir, "out", ".", "Directory for output files")
	flag.BoolVar(&out.Physical, "physical", false, "Run on physical units (mV) instead of raw ADC values? WFDB only.")
	flag.BoolVar(&out.PlotStages, "plot", false, "Write a PNG of every pipeline stage?")
	flag.BoolVar(&out.PlotLead, "plotlead", false, "Write a PNG of the input with detected beats marked?")
	flag.Float64Var(&out.PlotSeconds, "plotseconds", 10, "Only plot this many seconds from the start of the recording. 0 plots everything.")
	flag.BoolVar(&out.RRHistogram, "rrhist", false, "Print a histogram of RR intervals to stdout?")
	flag.IntVar(&out.HistBins, "bins", 20, "Number of RR histogram bins")
	flag.StringVar(&out.AnnotatorExt, "annotator", "", "(Optional) WFDB annotator, e.g. atr, to score the detections against")
	det.Register(flag.CommandLine)
	flag.Parse()

	if (in.Record == "") == (in.CSV == "") {
		fmt.Fprintln(os.Stderr, "Please provide exactly one of -record or -csv")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Initialize the Google Storage client, but only if our input indicates
	// that we are pointing to a Google Storage path.
	if strings.HasPrefix(in.Dir, "gs://") || strings.HasPrefix(in.CSV, "gs://") {
		var err error
		client, err = storage.NewClient(context.Background())
		if err != nil {
			log.Fatalln(err)
		}
	}

	cfg, err := det.Resolve(flag.CommandLine)
	if err != nil {
		log.Fatalln(err)
	}

	if err := run(context.Background(), in, out, cfg); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context, in input, out output, cfg qrsdetect.JSONConfig) error {
	name, sig, err := load(ctx, in, out.Physical)
	if err != nil {
		return err
	}
	log.Printf("Read %s from %s\n", sig, name)

	det, err := qrsdetect.Detect(sig, cfg)
	if err != nil {
		return err
	}
	res, peaks := det.Result, det.Peaks

	recovered := 0
	for _, p := range res.Peaks {
		if p.Recovered {
			recovered++
		}
	}
	log.Printf("Detected %d beats (%d by search-back); pipeline delay is %d samples\n", len(peaks), recovered, det.Config.Delay())
	log.Println(pantompkins.SummarizeRR(res.Indices(), sig.Rate))

	if err := os.MkdirAll(out.Dir, 0755); err != nil {
		return err
	}

	if err := writeFile(filepath.Join(out.Dir, name+"_filtered.bin"), func(f *os.File) error {
		return qrsdetect.WriteFloat64s(f, res.Filtered)
	}); err != nil {
		return err
	}

	if err := writeFile(filepath.Join(out.Dir, name+"_qrs_locs.txt"), func(f *os.File) error {
		return qrsdetect.WritePeaks(f, peaks)
	}); err != nil {
		return err
	}

	if out.PlotStages || out.PlotLead {
		if err := writePlots(name, sig, res, det.Aligned, out); err != nil {
			return err
		}
	}

	if out.RRHistogram {
		if err := printRRHistogram(os.Stdout, res.Indices(), sig.Rate, out.HistBins); err != nil {
			return err
		}
	}

	if out.AnnotatorExt != "" && in.Record != "" {
		if err := score(ctx, in, out.AnnotatorExt, det.Aligned, cfg.Tolerance(), sig.Rate); err != nil {
			return err
		}
	}

	return nil
}

// load returns a name for the outputs and the signal to analyze.
func load(ctx context.Context, in input, physical bool) (string, pantompkins.Signal, error) {
	if in.CSV != "" {
		f, err := qrsdetect.Open(ctx, in.CSV, client)
		if err != nil {
			return "", pantompkins.Signal{}, err
		}
		defer f.Close()

		x, err := qrsdetect.ReadSamplesCSV(f, in.Column)
		if err != nil {
			return "", pantompkins.Signal{}, err
		}

		name := filepath.Base(in.CSV)
		name = strings.TrimSuffix(name, filepath.Ext(name))
		if ext := filepath.Ext(name); ext == ".csv" || ext == ".tsv" || ext == ".txt" {
			name = strings.TrimSuffix(name, ext)
		}

		return name, pantompkins.Signal{Samples: x, Rate: in.Fs}, nil
	}

	rec, err := wfdb.OpenRecord(ctx, in.Dir, in.Record, client)
	if err != nil {
		return "", pantompkins.Signal{}, err
	}
	if err := rec.Verify(); err != nil {
		log.Printf("Warning: record %s: %v\n", in.Record, err)
	}

	if len(rec.Signals) == 0 {
		return "", pantompkins.Signal{}, fmt.Errorf("record %s has no signals", in.Record)
	}

	channel, err := rec.Channel(in.Channel)
	if err != nil {
		log.Printf("%v; using channel 0 (%s)\n", err, rec.Signals[0].Description)
		channel = 0
	}

	var sig pantompkins.Signal
	if physical {
		sig, err = rec.Physical(channel)
	} else {
		sig, err = rec.Signal(channel)
	}

	return in.Record, sig, err
}

func writeFile(path string, fill func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := fill(f); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	log.Println("Wrote", path)
	return nil
}
