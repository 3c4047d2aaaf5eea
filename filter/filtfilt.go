package filter

// PadLen returns the reflective-padding length the engine requires before
// and after the data for zero-phase filtering: three samples per pole,
// where a pole count of order*nCutoffs matches the denominator length
// minus one.
func PadLen(order, nCutoffs int) int {
	return 3 * order * nCutoffs
}

// FiltFilt applies iir forward then time-reversed, using reflective
// padding at both ends so the filter's initial conditions don't introduce
// an edge transient. It returns InsufficientData (wrapped as
// ErrDataTooShortForPad) and a copy of x unchanged when len(x) < the
// required pad length.
//
// Callers that already have raw samples sitting in a larger buffer at
// offset PadLen(...) may call FiltFiltInPlace instead to skip the initial
// copy, which matters on the hot per-channel assembly path.
func FiltFilt(iir *IIR, x []float64) ([]float64, error) {
	padLen := PadLen(iir.Order, iir.Kind.NCutoffs())
	if len(x) < padLen {
		out := make([]float64, len(x))
		copy(out, x)
		return out, ErrDataTooShortForPad
	}

	buf := make([]float64, padLen+len(x)+padLen)
	copy(buf[padLen:padLen+len(x)], x)
	padReflect(buf, padLen, len(x))

	filtered, err := FiltFiltInPlace(iir, buf, padLen, len(x))
	if err != nil {
		return nil, err
	}
	return filtered, nil
}

// FiltFiltInPlace runs zero-phase filtering over buf, where the raw
// samples already occupy buf[padOffset : padOffset+n] and padOffset ==
// PadLen(iir.Order, iir.Kind.NCutoffs()). The front and back padding
// regions are filled by reflection before filtering. It returns the
// padLen-trimmed, filtered result (a fresh slice; buf itself is used only
// as scratch).
func FiltFiltInPlace(iir *IIR, buf []float64, padOffset, n int) ([]float64, error) {
	padReflect(buf, padOffset, n)

	fwd := applyIIR(iir, buf)
	reverseInPlace(fwd)
	back := applyIIR(iir, fwd)
	reverseInPlace(back)

	out := make([]float64, n)
	copy(out, back[padOffset:padOffset+n])
	return out, nil
}

// padReflect fills buf[:padOffset] and buf[padOffset+n:] with reflective
// padding about the endpoints: value = 2*x[0] - x[1+k] at the front, and
// the mirror image at the back.
func padReflect(buf []float64, padOffset, n int) {
	x0 := buf[padOffset]
	for k := 0; k < padOffset; k++ {
		src := padOffset + 1 + k
		if src >= padOffset+n {
			src = padOffset + n - 1
		}
		buf[padOffset-1-k] = 2*x0 - buf[src]
	}
	xl := buf[padOffset+n-1]
	for k := 0; k < len(buf)-padOffset-n; k++ {
		src := padOffset + n - 2 - k
		if src < padOffset {
			src = padOffset
		}
		buf[padOffset+n+k] = 2*xl - buf[src]
	}
}

func reverseInPlace(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}

// applyIIR runs the standard direct-form-II transposed difference
// equation over x, returning a new slice of the same length.
func applyIIR(iir *IIR, x []float64) []float64 {
	b, a := iir.B, iir.A
	n := len(a)
	state := make([]float64, n-1)
	out := make([]float64, len(x))
	a0 := a[0]
	for i, xi := range x {
		y := (b[0]*xi + state[0]) / a0
		for k := 0; k < n-2; k++ {
			state[k] = b[k+1]*xi - a[k+1]*y + state[k+1]
		}
		state[n-2] = b[n-1]*xi - a[n-1]*y
		out[i] = y
	}
	return out
}
