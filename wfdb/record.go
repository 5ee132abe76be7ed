package wfdb

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"

	"github.com/carbocation/qrsdetect"
	"github.com/carbocation/qrsdetect/pantompkins"
)

// Record is a header with the decoded samples of every signal, in ADC units.
type Record struct {
	Header
	Samples [][]int
}

// OpenRecord loads name.hea and its signal files from dir, which may be a
// local directory or a gs:// prefix.
func OpenRecord(ctx context.Context, dir, name string, client *storage.Client) (*Record, error) {
	h, err := ReadHeaderFile(ctx, dir, name, client)
	if err != nil {
		return nil, err
	}

	out := &Record{Header: h, Samples: make([][]int, len(h.Signals))}

	// Signals stored in the same file are read together.
	for _, group := range groupByFile(h) {
		sub := h
		sub.Signals = make([]SignalSpec, len(group))
		for i, idx := range group {
			sub.Signals[i] = h.Signals[idx]
		}

		// Binary sample data can begin with bytes that look like a
		// compression signature, so it is never sniffed.
		f, err := qrsdetect.OpenRaw(ctx, qrsdetect.JoinPath(dir, sub.Signals[0].File), client)
		if err != nil {
			return nil, pfx.Err(err)
		}
		samples, err := ReadSignals(f, sub)
		f.Close()
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: %w", sub.Signals[0].File, err))
		}

		for i, idx := range group {
			out.Samples[idx] = samples[i]
		}
	}

	return out, nil
}

func groupByFile(h Header) [][]int {
	var out [][]int
	seen := make(map[string]int)
	for i, v := range h.Signals {
		g, exists := seen[v.File]
		if !exists {
			g = len(out)
			seen[v.File] = g
			out = append(out, nil)
		}
		out[g] = append(out[g], i)
	}
	return out
}

// ReadHeaderFile parses dir/name.hea without touching the signal files.
func ReadHeaderFile(ctx context.Context, dir, name string, client *storage.Client) (Header, error) {
	hf, err := qrsdetect.Open(ctx, qrsdetect.JoinPath(dir, name+".hea"), client)
	if err != nil {
		return Header{}, pfx.Err(err)
	}
	defer hf.Close()

	h, err := ParseHeader(hf)
	if err != nil {
		return h, pfx.Err(fmt.Errorf("%s: %w", name, err))
	}
	return h, nil
}

// Channel returns the index of the first signal whose description matches
// name, ignoring case.
func (r *Record) Channel(name string) (int, error) {
	for i, v := range r.Signals {
		if strings.EqualFold(v.Description, name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("record %s has no signal named %q", r.Record, name)
}

// Len is the number of frames actually read.
func (r *Record) Len() int {
	if len(r.Samples) == 0 {
		return 0
	}
	return len(r.Samples[0])
}

// Signal returns a channel as raw ADC values, which is what the detector is
// tuned on.
func (r *Record) Signal(channel int) (pantompkins.Signal, error) {
	if channel < 0 || channel >= len(r.Samples) {
		return pantompkins.Signal{}, fmt.Errorf("record %s has no channel %d", r.Record, channel)
	}

	x := make([]float64, len(r.Samples[channel]))
	for i, v := range r.Samples[channel] {
		x[i] = float64(v)
	}
	return pantompkins.Signal{Samples: x, Rate: r.Frequency}, nil
}

// Physical returns a channel converted to physical units (usually mV).
func (r *Record) Physical(channel int) (pantompkins.Signal, error) {
	sig, err := r.Signal(channel)
	if err != nil {
		return sig, err
	}

	spec := r.Signals[channel]
	for i, v := range sig.Samples {
		sig.Samples[i] = (v - float64(spec.Baseline)) / spec.Gain
	}
	return sig, nil
}

// Verify compares each signal's checksum and first sample against the
// header. It only checks complete reads.
func (r *Record) Verify() error {
	for i, spec := range r.Signals {
		samples := r.Samples[i]
		if r.NSamples > 0 && len(samples) != r.NSamples {
			return fmt.Errorf("signal %d (%s): read %d of %d samples", i, spec.Description, len(samples), r.NSamples)
		}
		if len(samples) > 0 && samples[0] != spec.InitValue {
			return fmt.Errorf("signal %d (%s): first sample %d, header says %d", i, spec.Description, samples[0], spec.InitValue)
		}
		if sum := Checksum(samples); sum != spec.Checksum {
			return fmt.Errorf("signal %d (%s): checksum %d, header says %d", i, spec.Description, sum, spec.Checksum)
		}
	}
	return nil
}

// ReadAnnotationFile loads dir/name.ext, for example the .atr reference
// beats of an MIT-BIH record.
func ReadAnnotationFile(ctx context.Context, dir, name, ext string, client *storage.Client) ([]Annotation, error) {
	f, err := qrsdetect.OpenRaw(ctx, qrsdetect.JoinPath(dir, name+"."+ext), client)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadAnnotations(f)
}
