package pantompkins

import (
	"errors"
	"math"
	"testing"
)

func TestDifferentiateRamp(t *testing.T) {
	ramp := make([]float64, 20)
	for i := range ramp {
		ramp[i] = float64(i)
	}

	out, err := Differentiate(ramp)
	if err != nil {
		t.Fatal(err)
	}

	for i, v := range out {
		expected := 1.25
		if i < 4 {
			expected = 0
		}
		if math.Abs(v-expected) > 1e-12 {
			t.Fatalf("sample %d: got %g, expected %g", i, v, expected)
		}
	}
}

func TestDifferentiateConstantIsZero(t *testing.T) {
	flat := make([]float64, 50)
	for i := range flat {
		flat[i] = -3.5
	}

	out, err := Differentiate(flat)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("sample %d: got %g, expected 0", i, v)
		}
	}
}

func TestDifferentiateLinear(t *testing.T) {
	const a, b = 2.5, -0.75

	x := sine(7, 360, 300)
	y := sine(23, 360, 300)
	combo := make([]float64, len(x))
	for i := range x {
		combo[i] = a*x[i] + b*y[i]
	}

	dx, err := Differentiate(x)
	if err != nil {
		t.Fatal(err)
	}
	dy, err := Differentiate(y)
	if err != nil {
		t.Fatal(err)
	}
	dc, err := Differentiate(combo)
	if err != nil {
		t.Fatal(err)
	}

	for i := 4; i < len(x); i++ {
		if expected := a*dx[i] + b*dy[i]; math.Abs(dc[i]-expected) > 1e-12 {
			t.Fatalf("sample %d: got %g, expected %g", i, dc[i], expected)
		}
	}
}

func TestDifferentiateShort(t *testing.T) {
	for n := 1; n < 5; n++ {
		x := []float64{9, -4, 3, 8}[:n]
		out, err := Differentiate(x)
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != n {
			t.Fatalf("n=%d: got %d samples", n, len(out))
		}
		for i, v := range out {
			if v != 0 {
				t.Fatalf("n=%d: sample %d is %g, expected 0", n, i, v)
			}
		}
	}

	if _, err := Differentiate(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSquareNonNegative(t *testing.T) {
	x := []float64{-3, -0.5, 0, 0.5, 3, math.Inf(-1)}

	out, err := Square(x)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range out {
		if v < 0 {
			t.Fatalf("sample %d is negative: %g", i, v)
		}
		if v != x[i]*x[i] {
			t.Fatalf("sample %d: got %g, expected %g", i, v, x[i]*x[i])
		}
	}

	// In place is permitted for the squarer.
	if err := SquareInto(x, x); err != nil {
		t.Fatal(err)
	}
	if x[0] != 9 {
		t.Fatalf("in-place square gave %g", x[0])
	}
}

func TestIntegrateExactWindowMean(t *testing.T) {
	x := []float64{4, -2, 7, 1, 0, 3, 9, -5, 2, 6, 8}

	for _, window := range []int{1, 2, 3, 5, 11, 20} {
		out, err := Integrate(x, window)
		if err != nil {
			t.Fatal(err)
		}

		for n := range x {
			start := n - window + 1
			if start < 0 {
				start = 0
			}
			expected := mean(x[start : n+1])
			if math.Abs(out[n]-expected) > 1e-12 {
				t.Fatalf("window=%d n=%d: got %g, expected %g", window, n, out[n], expected)
			}
		}
	}
}

func TestIntegrateInvalid(t *testing.T) {
	x := []float64{1, 2, 3}
	dst := []float64{7, 7, 7}

	for _, window := range []int{0, -1} {
		if err := IntegrateInto(dst, x, window); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("window=%d: expected ErrInvalidArgument, got %v", window, err)
		}
	}
	if err := IntegrateInto(dst[:2], x, 2); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for short dst, got %v", err)
	}
	if err := IntegrateInto(x, x, 2); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for aliased dst, got %v", err)
	}
	for i, v := range dst {
		if v != 7 {
			t.Fatalf("dst[%d] was modified to %g", i, v)
		}
	}
}

func TestStagesIntoMatchAllocating(t *testing.T) {
	x := sine(11, 360, 64)

	d, _ := Differentiate(x)
	dst := make([]float64, len(x))
	if err := DifferentiateInto(dst, x); err != nil {
		t.Fatal(err)
	}
	for i := range d {
		if d[i] != dst[i] {
			t.Fatalf("derivative sample %d differs", i)
		}
	}

	in, _ := Integrate(x, 5)
	if err := IntegrateInto(dst, x, 5); err != nil {
		t.Fatal(err)
	}
	for i := range in {
		if in[i] != dst[i] {
			t.Fatalf("integrated sample %d differs", i)
		}
	}
}

func TestStagesRejectPartialOverlap(t *testing.T) {
	buf := make([]float64, 101)
	for i := range buf {
		buf[i] = float64(i % 9)
	}
	x, dst := buf[:100], buf[1:]

	if err := DifferentiateInto(dst, x); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("differentiate: expected ErrInvalidArgument, got %v", err)
	}
	if err := IntegrateInto(dst, x, 5); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("integrate: expected ErrInvalidArgument, got %v", err)
	}
	if err := SquareInto(dst, x); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("square: expected ErrInvalidArgument, got %v", err)
	}
	for i, v := range buf {
		if v != float64(i%9) {
			t.Fatalf("buf[%d] was modified to %g", i, v)
		}
	}

	// Neighbouring slices of one array do not overlap.
	if err := DifferentiateInto(buf[50:100], buf[:50]); err != nil {
		t.Fatalf("adjacent halves: %v", err)
	}
}
