// qrsbatch runs the QRS detector over a list of WFDB records, scores the
// ones that have reference annotations and prints per-record and average
// sensitivity, positive predictive value and F1. Records that fail to load
// are logged and skipped.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/carbocation/qrsdetect"
	_ "github.com/carbocation/qrsdetect/compileinfoprint"
)

// Safe for concurrent use by multiple goroutines so we'll make this a global
var client *storage.Client

// MITBIH lists the 48 records of the MIT-BIH Arrhythmia Database.
var MITBIH = []string{
	"100", "101", "102", "103", "104", "105", "106", "107", "108", "109",
	"111", "112", "113", "114", "115", "116", "117", "118", "119", "121",
	"122", "123", "124", "200", "201", "202", "203", "205", "207", "208",
	"209", "210", "212", "213", "214", "215", "217", "219", "220", "221",
	"222", "223", "228", "230", "231", "232", "233", "234",
}

type batch struct {
	Dir         string
	Records     []string
	Channel     string
	Annotator   string
	Out         string
	SummaryCSV  string
	Baseline    string
	Peaks       string
	Concurrency int
}

func main() {
	var b batch
	var records string
	var det qrsdetect.DetectorFlags

	flag.StringVar(&b.Dir, "dir", ".", "Directory (local or gs://) holding the WFDB records. Overrides record_dir from -config if set.")
	flag.StringVar(&records, "records", "", "Comma separated record names. Defaults to the records in -config, or all 48 MIT-BIH records.")
	flag.StringVar(&b.Channel, "channel", "MLII", "Signal description of the channel to analyze. Falls back to the first channel if absent.")
	flag.StringVar(&b.Annotator, "annotator", "atr", "Reference annotator extension")
	flag.StringVar(&b.Out, "out", "", "(Optional) Directory for per-record <record>_qrs_locs.txt files")
	flag.StringVar(&b.SummaryCSV, "summary", "evaluation_summary.csv", "Where to write the per-record results table. Empty to skip.")
	flag.StringVar(&b.Baseline, "baseline", "", "(Optional) Summary CSV from an earlier run. Prints the per-record F1 change against it.")
	flag.StringVar(&b.Peaks, "peaks", "", "(Optional) Directory of <record>_qrs_locs.txt files from an earlier run. They are scored instead of running the detector.")
	flag.IntVar(&b.Concurrency, "concurrency", runtime.NumCPU(), "Number of records to process at once")
	det.Register(flag.CommandLine)
	flag.Parse()

	cfg, err := det.Resolve(flag.CommandLine)
	if err != nil {
		log.Fatalln(err)
	}

	dirSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "dir" {
			dirSet = true
		}
	})
	if !dirSet && cfg.RecordDir != "" {
		b.Dir = cfg.RecordDir
	}

	switch {
	case records != "":
		for _, v := range strings.Split(records, ",") {
			if v = strings.TrimSpace(v); v != "" {
				b.Records = append(b.Records, v)
			}
		}
	case len(cfg.Records) > 0:
		b.Records = cfg.Records
	default:
		b.Records = MITBIH
	}

	if len(b.Records) == 0 {
		fmt.Fprintln(os.Stderr, "No records to process")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Initialize the Google Storage client, but only if our input indicates
	// that we are pointing to a Google Storage path.
	if strings.HasPrefix(b.Dir, "gs://") || strings.HasPrefix(b.Peaks, "gs://") || strings.HasPrefix(b.Baseline, "gs://") {
		client, err = storage.NewClient(context.Background())
		if err != nil {
			log.Fatalln(err)
		}
	}

	if err := run(context.Background(), b, cfg); err != nil {
		log.Fatalln(err)
	}
}
