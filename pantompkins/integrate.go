package pantompkins

// Integrate smooths x with a trailing moving average of width window:
// out[n] is the mean of x[max(0, n-window+1)..n]. Near the start, fewer than
// window samples exist and the divisor shrinks to match.
func Integrate(x []float64, window int) ([]float64, error) {
	if err := checkIntegrate(x, window); err != nil {
		return nil, err
	}

	out := make([]float64, len(x))
	integrate(out, x, window)
	return out, nil
}

// IntegrateInto is Integrate writing into dst, which must have len(x)
// samples. dst may not share any memory with x.
func IntegrateInto(dst, x []float64, window int) error {
	if err := checkIntegrate(x, window); err != nil {
		return err
	}
	if err := checkDst("integrate", dst, x); err != nil {
		return err
	}
	if overlaps(dst, x) {
		return invalid("integrate: destination overlaps the source")
	}

	integrate(dst, x, window)
	return nil
}

func checkIntegrate(x []float64, window int) error {
	if err := checkSamples("integrate", x); err != nil {
		return err
	}
	if window <= 0 {
		return invalid("integrate: window must be positive, got %d", window)
	}
	return nil
}

func integrate(dst, x []float64, window int) {
	sum := 0.0
	for n, v := range x {
		sum += v
		count := n + 1
		if n >= window {
			sum -= x[n-window]
			count = window
		}
		dst[n] = sum / float64(count)
	}
}
