package pantompkins

import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrInvalidArgument is returned (wrapped) when a stage is handed an empty
// sequence, a non-positive window or refractory period, an unusable tap
// count, or a destination buffer of the wrong length. Check with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func checkSamples(name string, x []float64) error {
	if len(x) == 0 {
		return invalid("%s: empty sample sequence", name)
	}
	return nil
}

func checkDst(name string, dst, src []float64) error {
	if len(dst) != len(src) {
		return invalid("%s: destination has %d samples, source has %d", name, len(dst), len(src))
	}
	return nil
}

// overlaps reports whether a and b share any element of backing memory.
func overlaps(a, b []float64) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}

	const size = unsafe.Sizeof(float64(0))
	aStart, bStart := uintptr(unsafe.Pointer(&a[0])), uintptr(unsafe.Pointer(&b[0]))
	aEnd, bEnd := aStart+uintptr(len(a))*size, bStart+uintptr(len(b))*size

	return aStart < bEnd && bStart < aEnd
}
