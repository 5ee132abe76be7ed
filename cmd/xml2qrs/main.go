// xml2qrs runs the QRS detector over every lead of CardioSoft resting ECG
// exports and reports the beats it finds alongside the device's own.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/carbocation/qrsdetect"
	_ "github.com/carbocation/qrsdetect/compileinfoprint"
)

// Safe for concurrent use by multiple goroutines so we'll make this a global
var client *storage.Client

// See https://www.ahajournals.org/doi/pdf/10.1161/CIRCULATIONAHA.106.180200 for
// recommendations on the display filter.
type options struct {
	Out        string
	CreatePNG  bool
	Width      int
	Height     int
	LowPassHz  float64
	HighPassHz float64
	Compress   float64
	Median     bool
	Debug      bool
}

func main() {
	var filename string
	var opts options
	var det qrsdetect.DetectorFlags

	flag.StringVar(&filename, "file", "", "XML file (CardioSoft 6.73 output), local or gs://. Multiple files may be comma separated.")
	flag.StringVar(&opts.Out, "out", ".", "Directory for output files")
	flag.BoolVar(&opts.CreatePNG, "createpng", false, "Create a zip of PNGs of each lead with the detected beats marked?")
	flag.IntVar(&opts.Width, "width", 512, "(Optional) If creating PNGs, what pixel width?")
	flag.IntVar(&opts.Height, "height", 256, "(Optional) If creating PNGs, what pixel height?")
	flag.Float64Var(&opts.LowPassHz, "low_pass_hz", 150.0, "PNGs only: permit frequencies below this many cycles per second")
	flag.Float64Var(&opts.HighPassHz, "high_pass_hz", 0.05, "PNGs only: permit frequencies above this many cycles per second")
	flag.Float64Var(&opts.Compress, "compress", 1.0, "PNGs only: average this many points together. Values <= 1 plot every point.")
	flag.BoolVar(&opts.Median, "median", false, "Also run the detector over the median beat strip?")
	flag.BoolVar(&opts.Debug, "debug", false, "Print extra metadata during processing?")
	det.Register(flag.CommandLine)
	flag.Parse()

	if filename == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	if strings.HasPrefix(filename, "gs://") {
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

	if err := os.MkdirAll(opts.Out, 0755); err != nil {
		log.Fatalln(err)
	}

	for i, file := range strings.Split(filename, ",") {
		if err := run(context.Background(), strings.TrimSpace(file), cfg, opts); err != nil {
			log.Fatalln(err)
		}

		if opts.Debug {
			fmt.Fprintf(os.Stderr, "Processed %d\n", i+1)
		}
	}
}
