package pantompkins

// Square returns x[n]^2 for every n. The result is never negative, and large
// slopes dominate small ones.
func Square(x []float64) ([]float64, error) {
	if err := checkSamples("square", x); err != nil {
		return nil, err
	}

	out := make([]float64, len(x))
	square(out, x)
	return out, nil
}

// SquareInto is Square writing into dst. Squaring in place (dst == x) is
// allowed; any other overlap is not.
func SquareInto(dst, x []float64) error {
	if err := checkSamples("square", x); err != nil {
		return err
	}
	if err := checkDst("square", dst, x); err != nil {
		return err
	}
	if &dst[0] != &x[0] && overlaps(dst, x) {
		return invalid("square: destination partially overlaps the source")
	}

	square(dst, x)
	return nil
}

func square(dst, x []float64) {
	for i, v := range x {
		dst[i] = v * v
	}
}
