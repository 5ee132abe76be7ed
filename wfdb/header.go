// Package wfdb reads PhysioNet WFDB records: the .hea header, format 212
// and 16 signal files, and MIT-format annotation files such as .atr.
package wfdb

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
)

const (
	DefaultFrequency = 250.0
	DefaultGain      = 200.0
)

type Header struct {
	Record    string
	Frequency float64 // samples per second per signal
	NSamples  int     // 0 when the header does not say
	Signals   []SignalSpec
	Comments  []string
}

// SignalSpec is one signal line of a header.
type SignalSpec struct {
	File        string
	Format      int
	ByteOffset  int     // bytes to skip at the start of File
	Gain        float64 // ADC units per physical unit
	Baseline    int     // ADC value of 0 physical units
	Units       string
	ADCRes      int
	ADCZero     int
	InitValue   int
	Checksum    int
	BlockSize   int
	Description string
}

// ParseHeader reads a WFDB header. Multi-segment headers are not supported.
func ParseHeader(r io.Reader) (Header, error) {
	var out Header

	scanner := bufio.NewScanner(r)
	nsig := -1
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "#") {
			out.Comments = append(out.Comments, strings.TrimSpace(strings.TrimPrefix(text, "#")))
			continue
		}

		fields := strings.Fields(text)

		if nsig < 0 {
			n, err := parseRecordLine(&out, fields)
			if err != nil {
				return out, pfx.Err(fmt.Errorf("line %d: %w", line, err))
			}
			nsig = n
			continue
		}

		if len(out.Signals) == nsig {
			return out, pfx.Err(fmt.Errorf("line %d: more signal lines than the %d declared", line, nsig))
		}

		spec, err := parseSignalLine(fields)
		if err != nil {
			return out, pfx.Err(fmt.Errorf("line %d: %w", line, err))
		}
		out.Signals = append(out.Signals, spec)
	}
	if err := scanner.Err(); err != nil {
		return out, pfx.Err(err)
	}

	if nsig < 0 {
		return out, pfx.Err(fmt.Errorf("no record line found"))
	}
	if len(out.Signals) != nsig {
		return out, pfx.Err(fmt.Errorf("record %s declares %d signals but lists %d", out.Record, nsig, len(out.Signals)))
	}

	return out, nil
}

// parseRecordLine handles "name nsig [fs[/cfreq[(base)]] [nsamp [time [date]]]]".
func parseRecordLine(h *Header, fields []string) (int, error) {
	if len(fields) < 2 {
		return 0, fmt.Errorf("record line needs a name and a signal count, got %q", strings.Join(fields, " "))
	}

	if strings.Contains(fields[0], "/") {
		return 0, fmt.Errorf("multi-segment record %s is not supported", fields[0])
	}
	h.Record = fields[0]

	nsig, err := strconv.Atoi(fields[1])
	if err != nil || nsig < 0 {
		return 0, fmt.Errorf("bad signal count %q", fields[1])
	}

	h.Frequency = DefaultFrequency
	if len(fields) > 2 {
		fs, err := strconv.ParseFloat(leadingNumber(fields[2]), 64)
		if err != nil {
			return 0, fmt.Errorf("bad sampling frequency %q", fields[2])
		}
		if fs > 0 {
			h.Frequency = fs
		}
	}

	if len(fields) > 3 {
		if h.NSamples, err = strconv.Atoi(fields[3]); err != nil || h.NSamples < 0 {
			return 0, fmt.Errorf("bad sample count %q", fields[3])
		}
	}

	return nsig, nil
}

// parseSignalLine handles "file format[xsamp][:skew][+offset]
// gain[(baseline)][/units] adcres adczero initval checksum blocksize desc".
func parseSignalLine(fields []string) (SignalSpec, error) {
	out := SignalSpec{Gain: DefaultGain}

	if len(fields) < 2 {
		return out, fmt.Errorf("signal line needs a file and a format")
	}
	out.File = fields[0]

	format, err := strconv.Atoi(leadingNumber(fields[1]))
	if err != nil {
		return out, fmt.Errorf("bad format %q", fields[1])
	}
	if strings.ContainsAny(fields[1], "x:") {
		return out, fmt.Errorf("sample multiplier or skew in %q is not supported", fields[1])
	}
	if i := strings.Index(fields[1], "+"); i >= 0 {
		if out.ByteOffset, err = strconv.Atoi(fields[1][i+1:]); err != nil || out.ByteOffset < 0 {
			return out, fmt.Errorf("bad byte offset in %q", fields[1])
		}
	}
	out.Format = format

	baselineSet := false
	if len(fields) > 2 {
		g := fields[2]
		if i := strings.Index(g, "/"); i >= 0 {
			out.Units = g[i+1:]
			g = g[:i]
		}
		if i := strings.Index(g, "("); i >= 0 {
			end := strings.Index(g, ")")
			if end < i {
				return out, fmt.Errorf("bad baseline in %q", fields[2])
			}
			if out.Baseline, err = strconv.Atoi(g[i+1 : end]); err != nil {
				return out, fmt.Errorf("bad baseline in %q", fields[2])
			}
			baselineSet = true
			g = g[:i]
		}
		gain, err := strconv.ParseFloat(g, 64)
		if err != nil {
			return out, fmt.Errorf("bad gain %q", fields[2])
		}
		if gain != 0 {
			out.Gain = gain
		}
	}

	ints := []*int{&out.ADCRes, &out.ADCZero, &out.InitValue, &out.Checksum, &out.BlockSize}
	for i, dst := range ints {
		k := 3 + i
		if k >= len(fields) {
			break
		}
		if *dst, err = strconv.Atoi(fields[k]); err != nil {
			return out, fmt.Errorf("bad integer field %d %q", k+1, fields[k])
		}
	}

	if !baselineSet {
		out.Baseline = out.ADCZero
	}
	if out.Units == "" {
		out.Units = "mV"
	}
	if len(fields) > 8 {
		out.Description = strings.Join(fields[8:], " ")
	}

	return out, nil
}

// leadingNumber trims a field at the first character that cannot belong to
// a decimal number, so "360/1.0(0)" yields "360" and "212+0" yields "212".
func leadingNumber(s string) string {
	for i, c := range s {
		if (c < '0' || c > '9') && c != '.' && !(i == 0 && c == '-') {
			return s[:i]
		}
	}
	return s
}
