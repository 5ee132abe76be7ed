package wfdb

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/carbocation/pfx"
)

const (
	Format16  = 16
	Format212 = 212
)

// ReadSignals decodes the interleaved samples of every signal in h from r,
// which must be the single file they all share. It reads h.NSamples frames,
// or until EOF when that is 0 or the file is shorter. A trailing partial
// frame is dropped.
func ReadSignals(r io.Reader, h Header) ([][]int, error) {
	nsig := len(h.Signals)
	if nsig == 0 {
		return nil, pfx.Err(fmt.Errorf("record %s has no signals", h.Record))
	}

	first := h.Signals[0]
	for _, v := range h.Signals[1:] {
		if v.File != first.File || v.Format != first.Format {
			return nil, pfx.Err(fmt.Errorf("signals of record %s span several files or formats", h.Record))
		}
	}

	br := bufio.NewReader(r)
	if first.ByteOffset > 0 {
		if _, err := br.Discard(first.ByteOffset); err != nil {
			return nil, pfx.Err(err)
		}
	}

	var next func() (int, error)
	switch first.Format {
	case Format212:
		next = new212Decoder(br)
	case Format16:
		next = func() (int, error) {
			var v int16
			err := binary.Read(br, binary.LittleEndian, &v)
			return int(v), err
		}
	default:
		return nil, pfx.Err(fmt.Errorf("signal format %d is not supported", first.Format))
	}

	out := make([][]int, nsig)
	for i := range out {
		out[i] = make([]int, 0, h.NSamples)
	}

	frame := make([]int, nsig)
Frames:
	for n := 0; h.NSamples == 0 || n < h.NSamples; n++ {
		for s := range frame {
			v, err := next()
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break Frames
			} else if err != nil {
				return nil, pfx.Err(err)
			}
			frame[s] = v
		}
		for s, v := range frame {
			out[s] = append(out[s], v)
		}
	}

	return out, nil
}

// new212Decoder returns a function yielding successive 12-bit two's
// complement samples. Each pair is packed into three bytes: the low byte of
// the first, a byte holding the first's high nibble (low 4 bits) and the
// second's high nibble (high 4 bits), then the low byte of the second.
func new212Decoder(br *bufio.Reader) func() (int, error) {
	var buf [3]byte
	pending, havePending := 0, false

	return func() (int, error) {
		if havePending {
			havePending = false
			return pending, nil
		}

		n, err := io.ReadFull(br, buf[:])
		if n < 2 {
			if err == nil {
				err = io.EOF
			}
			return 0, err
		}

		first := int(buf[0]) | int(buf[1]&0x0f)<<8
		if n == 3 {
			pending = sign12(int(buf[2]) | int(buf[1]&0xf0)<<4)
			havePending = true
		}
		return sign12(first), nil
	}
}

func sign12(v int) int {
	if v&0x800 != 0 {
		return v - 0x1000
	}
	return v
}

// Encode212 packs samples in format 212 order. An odd count is padded with
// a zero sample.
func Encode212(samples []int) []byte {
	out := make([]byte, 0, (len(samples)+1)/2*3)
	for i := 0; i < len(samples); i += 2 {
		a := samples[i] & 0xfff
		b := 0
		if i+1 < len(samples) {
			b = samples[i+1] & 0xfff
		}
		out = append(out, byte(a), byte(a>>8)|byte(b>>8)<<4, byte(b))
	}
	return out
}

// Checksum is the 16-bit sum the header records for each signal.
func Checksum(samples []int) int {
	var sum int16
	for _, v := range samples {
		sum += int16(v)
	}
	return int(sum)
}
