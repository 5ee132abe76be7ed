package main

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbocation/qrsdetect"
	"github.com/carbocation/qrsdetect/evaluate"
	"github.com/carbocation/qrsdetect/wfdb"
)

// writeSyntheticRecord stores a 20 second, 72 bpm single-lead record at
// 360 Hz in format 212 and returns its R-wave sample indices.
func writeSyntheticRecord(t *testing.T, dir, name string) []int {
	t.Helper()

	const fs = 360.0
	n := int(20 * fs)
	period := int(0.8 * fs)

	var beats []int
	for b := int(0.5 * fs); b < n-int(0.2*fs); b += period {
		beats = append(beats, b)
	}

	gauss := func(x, mu, sigma float64) float64 {
		z := (x - mu) / sigma
		return math.Exp(-0.5 * z * z)
	}

	adc := make([]int, n)
	for i := range adc {
		sec := float64(i) / fs
		v := 0.0
		for _, b := range beats {
			c := float64(b) / fs
			if math.Abs(sec-c) > 0.6 {
				continue
			}
			v += 0.12*gauss(sec, c-0.16, 0.025) -
				0.1*gauss(sec, c-0.025, 0.008) +
				1.0*gauss(sec, c, 0.010) -
				0.25*gauss(sec, c+0.03, 0.012) +
				0.3*gauss(sec, c+0.25, 0.04)
		}
		adc[i] = 1024 + int(math.Round(200*(v+0.05*math.Sin(2*math.Pi*0.3*sec))))
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".dat"), wfdb.Encode212(adc), 0644))

	hea := fmt.Sprintf("%s 1 360 %d\n%s.dat 212 200 11 1024 %d %d 0 MLII\n", name, n, name, adc[0], wfdb.Checksum(adc))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".hea"), []byte(hea), 0644))

	return beats
}

func writeAnnotations(t *testing.T, dir, name string, beats []int) {
	t.Helper()

	anns := make([]wfdb.Annotation, len(beats))
	for i, b := range beats {
		anns[i] = wfdb.Annotation{Sample: b, Code: wfdb.Normal}
	}

	var buf bytes.Buffer
	require.NoError(t, wfdb.EncodeAnnotations(&buf, anns))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".atr"), buf.Bytes(), 0644))
}

func readSummary(t *testing.T, path string) []evaluate.Result {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	out, err := evaluate.ReadSummaryCSV(f)
	require.NoError(t, err)
	return out
}

func TestRunSkipsUnannotatedAndMissingRecords(t *testing.T) {
	dir, out := t.TempDir(), t.TempDir()

	writeAnnotations(t, dir, "100", writeSyntheticRecord(t, dir, "100"))
	writeSyntheticRecord(t, dir, "101")

	b := batch{
		Dir:         dir,
		Records:     []string{"100", "101", "102"},
		Channel:     "MLII",
		Annotator:   "atr",
		Out:         out,
		SummaryCSV:  filepath.Join(out, "summary.csv"),
		Concurrency: 2,
	}

	// Default settings: peaks files stay in envelope time, scoring does not.
	require.NoError(t, run(context.Background(), b, qrsdetect.JSONConfig{}))

	for _, name := range []string{"100", "101"} {
		assert.FileExists(t, filepath.Join(out, name+"_qrs_locs.txt"))
	}
	assert.NoFileExists(t, filepath.Join(out, "102_qrs_locs.txt"))

	results := readSummary(t, b.SummaryCSV)
	require.Len(t, results, 1)
	assert.Equal(t, "100", results[0].Record)
	assert.Greater(t, results[0].TP, 0)
	assert.GreaterOrEqual(t, results[0].Sensitivity, 0.9)

	// Scoring the peaks files written above must agree with the live run.
	b.Peaks = out
	b.Baseline = b.SummaryCSV
	b.SummaryCSV = filepath.Join(out, "rescored.csv")
	require.NoError(t, run(context.Background(), b, qrsdetect.JSONConfig{}))

	rescored := readSummary(t, b.SummaryCSV)
	require.Len(t, rescored, 1)
	assert.Equal(t, results[0], rescored[0])
}

func TestRunCompensatedPeaksScoreTheSame(t *testing.T) {
	dir, out := t.TempDir(), t.TempDir()
	writeAnnotations(t, dir, "100", writeSyntheticRecord(t, dir, "100"))

	b := batch{
		Dir:         dir,
		Records:     []string{"100"},
		Channel:     "MLII",
		Annotator:   "atr",
		Out:         out,
		SummaryCSV:  filepath.Join(out, "raw.csv"),
		Concurrency: 1,
	}
	require.NoError(t, run(context.Background(), b, qrsdetect.JSONConfig{}))

	b.SummaryCSV = filepath.Join(out, "compensated.csv")
	require.NoError(t, run(context.Background(), b, qrsdetect.JSONConfig{CompensateDelay: true}))

	assert.Equal(t, readSummary(t, filepath.Join(out, "raw.csv")), readSummary(t, b.SummaryCSV))
}

func TestRunFailsWhenNothingLoads(t *testing.T) {
	b := batch{
		Dir:         t.TempDir(),
		Records:     []string{"100"},
		Channel:     "MLII",
		Annotator:   "atr",
		Concurrency: 1,
	}
	assert.Error(t, run(context.Background(), b, qrsdetect.JSONConfig{}))
}
