package pantompkins

// derivativeHistory is how many past samples the five-point stencil needs.
const derivativeHistory = 4

// Differentiate approximates the slope of x with the Pan-Tompkins five-point
// derivative
//
//	y[n] = (2x[n] + x[n-1] - x[n-3] - 2x[n-4]) / 8
//
// The first four outputs have no full history and are 0. A sequence shorter
// than five samples yields all zeros.
func Differentiate(x []float64) ([]float64, error) {
	if err := checkSamples("differentiate", x); err != nil {
		return nil, err
	}

	out := make([]float64, len(x))
	differentiate(out, x)
	return out, nil
}

// DifferentiateInto is Differentiate writing into dst, which must have
// len(x) samples. dst may not share any memory with x.
func DifferentiateInto(dst, x []float64) error {
	if err := checkSamples("differentiate", x); err != nil {
		return err
	}
	if err := checkDst("differentiate", dst, x); err != nil {
		return err
	}
	if overlaps(dst, x) {
		return invalid("differentiate: destination overlaps the source")
	}

	differentiate(dst, x)
	return nil
}

func differentiate(dst, x []float64) {
	for i := 0; i < len(x) && i < derivativeHistory; i++ {
		dst[i] = 0
	}

	if len(x) <= derivativeHistory {
		return
	}

	for n := derivativeHistory; n < len(x); n++ {
		dst[n] = (2*x[n] + x[n-1] - x[n-3] - 2*x[n-4]) / 8.0
	}
}
