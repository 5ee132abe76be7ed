package wfdb

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/carbocation/pfx"
)

// Annotation codes from the WFDB ecgcodes table.
const (
	NotQRS  = 0
	Normal  = 1
	LBBB    = 2
	RBBB    = 3
	Aberr   = 4
	PVC     = 5
	Fusion  = 6
	NPC     = 7
	APC     = 8
	SVPB    = 9
	VEsc    = 10
	NEsc    = 11
	Pace    = 12
	Unknown = 13
	Noise   = 14
	Artifct = 16
	Note    = 22
	BBB     = 25
	Rhythm  = 28
	Learn   = 30
	AEsc    = 34
	SVEsc   = 35
	NAPC    = 37
	PFus    = 38
	ROnT    = 41

	// Pseudo-annotations that modify the stream rather than mark an event.
	codeSkip = 59
	codeNum  = 60
	codeSub  = 61
	codeChn  = 62
	codeAux  = 63
)

var mnemonics = map[int]string{
	Normal: "N", LBBB: "L", RBBB: "R", Aberr: "a", PVC: "V", Fusion: "F",
	NPC: "J", APC: "A", SVPB: "S", VEsc: "E", NEsc: "j", Pace: "/",
	Unknown: "Q", Noise: "~", Artifct: "|", Note: "\"", BBB: "B",
	Rhythm: "+", Learn: "?", AEsc: "e", SVEsc: "n", NAPC: "x", PFus: "f",
	ROnT: "r",
}

// IsBeat reports whether code labels a QRS complex.
func IsBeat(code int) bool {
	switch code {
	case Normal, LBBB, RBBB, Aberr, PVC, Fusion, NPC, APC, SVPB, VEsc, NEsc,
		Pace, Unknown, BBB, Learn, AEsc, SVEsc, NAPC, PFus, ROnT:
		return true
	}
	return false
}

type Annotation struct {
	Sample  int
	Code    int
	Subtype int
	Chan    int
	Num     int
	Aux     string
}

// Symbol is the one-character mnemonic PhysioNet tools print for the code.
func (a Annotation) Symbol() string {
	if s, exists := mnemonics[a.Code]; exists {
		return s
	}
	return fmt.Sprintf("[%d]", a.Code)
}

// ReadAnnotations decodes an MIT-format annotation file. Each 16-bit little
// endian word holds a 6-bit code over a 10-bit time increment; SKIP, NUM,
// SUB, CHN and AUX words adjust the stream. CHN and NUM persist until
// changed, as in WFDB.
func ReadAnnotations(r io.Reader) ([]Annotation, error) {
	br := bufio.NewReader(r)

	var out []Annotation
	var sample, chn, num int

	readWord := func() (int, int, error) {
		var w uint16
		if err := binary.Read(br, binary.LittleEndian, &w); err != nil {
			return 0, 0, err
		}
		return int(w >> 10), int(w & 0x3ff), nil
	}

	for {
		code, data, err := readWord()
		if err == io.EOF {
			// Files without the terminating zero word are accepted.
			return out, nil
		} else if err != nil {
			return out, pfx.Err(err)
		}

		last := len(out) - 1

		switch code {
		case 0:
			if data == 0 {
				return out, nil
			}
			// Code 0 with a nonzero interval only advances time.
			sample += data
		case codeSkip:
			var hi, lo uint16
			if err := binary.Read(br, binary.LittleEndian, &hi); err != nil {
				return out, pfx.Err(err)
			}
			if err := binary.Read(br, binary.LittleEndian, &lo); err != nil {
				return out, pfx.Err(err)
			}
			sample += int(int32(uint32(hi)<<16 | uint32(lo)))
		case codeNum:
			num = data
			if last >= 0 {
				out[last].Num = num
			}
		case codeSub:
			if last >= 0 {
				out[last].Subtype = data
			}
		case codeChn:
			chn = data
			if last >= 0 {
				out[last].Chan = chn
			}
		case codeAux:
			buf := make([]byte, data+data%2)
			if _, err := io.ReadFull(br, buf); err != nil {
				return out, pfx.Err(err)
			}
			if last >= 0 {
				out[last].Aux = trimNul(buf[:data])
			}
		default:
			sample += data
			out = append(out, Annotation{Sample: sample, Code: code, Chan: chn, Num: num})
		}
	}
}

func trimNul(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// BeatIndices returns the sample index of every QRS annotation.
func BeatIndices(anns []Annotation) []int {
	out := make([]int, 0, len(anns))
	for _, a := range anns {
		if IsBeat(a.Code) {
			out = append(out, a.Sample)
		}
	}
	return out
}

// EncodeAnnotations writes anns in MIT format, using SKIP words for gaps
// that do not fit in 10 bits, and terminates the stream.
func EncodeAnnotations(w io.Writer, anns []Annotation) error {
	bw := bufio.NewWriter(w)

	put := func(code, data int) error {
		return binary.Write(bw, binary.LittleEndian, uint16(code<<10|data&0x3ff))
	}

	prev, chn, num := 0, 0, 0
	for _, a := range anns {
		delta := a.Sample - prev
		if delta < 0 || delta > 0x3ff {
			if err := put(codeSkip, 0); err != nil {
				return pfx.Err(err)
			}
			v := uint32(int32(delta))
			if err := binary.Write(bw, binary.LittleEndian, []uint16{uint16(v >> 16), uint16(v)}); err != nil {
				return pfx.Err(err)
			}
			delta = 0
		}
		if err := put(a.Code, delta); err != nil {
			return pfx.Err(err)
		}
		prev = a.Sample

		if a.Subtype != 0 {
			if err := put(codeSub, a.Subtype); err != nil {
				return pfx.Err(err)
			}
		}
		if a.Chan != chn {
			chn = a.Chan
			if err := put(codeChn, chn); err != nil {
				return pfx.Err(err)
			}
		}
		if a.Num != num {
			num = a.Num
			if err := put(codeNum, num); err != nil {
				return pfx.Err(err)
			}
		}
		if a.Aux != "" {
			if err := put(codeAux, len(a.Aux)); err != nil {
				return pfx.Err(err)
			}
			buf := []byte(a.Aux)
			if len(buf)%2 == 1 {
				buf = append(buf, 0)
			}
			if _, err := bw.Write(buf); err != nil {
				return pfx.Err(err)
			}
		}
	}

	if err := put(0, 0); err != nil {
		return pfx.Err(err)
	}
	return pfx.Err(bw.Flush())
}
