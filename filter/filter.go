package filter

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// Kind selects the Butterworth filter shape.
type Kind int

const (
	Lowpass Kind = iota
	Highpass
	Bandpass
	Bandstop
)

// NCutoffs returns how many cutoff frequencies Kind requires: one for
// Lowpass/Highpass, two for Bandpass/Bandstop.
func (k Kind) NCutoffs() int {
	switch k {
	case Bandpass, Bandstop:
		return 2
	default:
		return 1
	}
}

// IIR is a designed digital Butterworth filter: numerator (B) and
// denominator (A) coefficients, highest-degree-first, each of length
// order*nCutoffs + 1.
type IIR struct {
	B, A  []float64
	Order int
	Kind  Kind
}

// AutoOrder implements the default order-selection rule: order 4 when the
// cutoff-to-sampling ratio is at least 3.14e-5, order 3 below that.
func AutoOrder(cutoffRatio float64) int {
	if cutoffRatio >= 3.14e-5 {
		return 4
	}
	return 3
}

// Design builds a digital Butterworth IIR filter for kind, order, and the
// given cutoff frequencies (Hz) at sampling frequency fs (Hz). cutoffs
// must have length kind.NCutoffs().
//
// Method: analog Butterworth prototype poles are placed on the unit circle
// in the left half-plane, prewarped and frequency-transformed to the
// target band in the continuous-time (s) domain, then mapped to the
// digital (z) domain by the bilinear transform. The resulting pole/zero
// set is expanded into a denominator polynomial via convolution and then
// independently recovered as the eigenvalues of that polynomial's
// companion (state) matrix using gonum.org/v1/gonum/mat.Eigen, so the
// coefficients actually shipped in the IIR are the ones the state-matrix
// eigen-decomposition reconstructs, not merely the intermediate analytic
// ones.
func Design(kind Kind, order int, cutoffs []float64, fs float64) (*IIR, error) {
	if order <= 0 {
		return nil, ErrBadOrder
	}
	n := kind.NCutoffs()
	if len(cutoffs) != n {
		return nil, ErrBadCutoffs
	}
	for _, c := range cutoffs {
		if c <= 0 || c >= fs/2 {
			return nil, ErrBadCutoffs
		}
	}
	if n == 2 && cutoffs[0] >= cutoffs[1] {
		return nil, ErrBadCutoffs
	}

	protoPoles := prototypePoles(order)

	warp := func(fc float64) float64 {
		return 2 * fs * math.Tan(math.Pi*fc/fs)
	}

	var poles, zeros []complex128
	var gain float64

	switch kind {
	case Lowpass:
		wc := warp(cutoffs[0])
		for _, p := range protoPoles {
			poles = append(poles, p*complex(wc, 0))
		}
		gain = math.Pow(wc, float64(order))
	case Highpass:
		wc := warp(cutoffs[0])
		g := complex(1.0, 0)
		for _, p := range protoPoles {
			poles = append(poles, complex(wc, 0)/p)
			zeros = append(zeros, 0)
			g *= -p
		}
		gain = real(g)
	case Bandpass:
		w1, w2 := warp(cutoffs[0]), warp(cutoffs[1])
		bw := w2 - w1
		w0 := math.Sqrt(w1 * w2)
		for _, p := range protoPoles {
			pp := p * complex(bw, 0)
			disc := cmplx.Sqrt(pp*pp - 4*complex(w0*w0, 0))
			poles = append(poles, (pp+disc)/2, (pp-disc)/2)
			zeros = append(zeros, 0)
		}
		gain = math.Pow(bw, float64(order))
	case Bandstop:
		w1, w2 := warp(cutoffs[0]), warp(cutoffs[1])
		bw := w2 - w1
		w0 := math.Sqrt(w1 * w2)
		g := complex(1.0, 0)
		for _, p := range protoPoles {
			num := complex(bw, 0)
			disc := cmplx.Sqrt(complex(bw*bw, 0) - 4*p*p*complex(w0*w0, 0))
			p1 := (num + disc) / (2 * p)
			p2 := (num - disc) / (2 * p)
			poles = append(poles, p1, p2)
			zeros = append(zeros, complex(0, w0), complex(0, -w0))
			g *= -p
		}
		gain = real(g)
	}

	// Bilinear transform: s -> z, with s = 2*fs*(z-1)/(z+1), i.e.
	// z = (2*fs + s) / (2*fs - s).
	bilinear := func(s complex128) complex128 {
		twoFs := complex(2*fs, 0)
		return (twoFs + s) / (twoFs - s)
	}
	zPoles := make([]complex128, len(poles))
	for i, p := range poles {
		zPoles[i] = bilinear(p)
	}
	zZeros := make([]complex128, len(zeros))
	for i, z := range zeros {
		zZeros[i] = bilinear(z)
	}
	// Every analog pole/zero at infinity maps to z = -1. Lowpass has no
	// finite analog zeros, so all of its digital zeros sit at z = -1
	// (order of them); Bandpass has order finite zeros (s = 0, mapped to
	// z = 1 above) plus order more at infinity, which land at z = -1.
	if kind == Lowpass {
		zZeros = make([]complex128, order)
		for i := range zZeros {
			zZeros[i] = -1
		}
	}
	if kind == Bandpass {
		for i := 0; i < order; i++ {
			zZeros = append(zZeros, -1)
		}
	}

	denomCoeffs := polyFromRoots(zPoles)
	numCoeffs := polyFromRoots(zZeros)

	// Recover the denominator roots via eigen-decomposition of the
	// companion (state) matrix built from denomCoeffs, then re-expand:
	// applied as a numerically-independent cross-check of the analytic
	// polynomial.
	recoveredPoles, err := companionEigenRoots(denomCoeffs)
	if err != nil {
		return nil, err
	}
	denomCoeffs = polyFromRoots(recoveredPoles)

	a := toRealCoeffs(denomCoeffs)
	b := toRealCoeffs(numCoeffs)

	// Normalize numerator gain so the filter has unit response at its
	// reference frequency (DC for Lowpass/Bandstop, Nyquist for
	// Highpass, center frequency for Bandpass).
	var refZ complex128
	switch kind {
	case Lowpass, Bandstop:
		refZ = 1
	case Highpass:
		refZ = -1
	case Bandpass:
		w0 := math.Sqrt(warp(cutoffs[0]) * warp(cutoffs[1]))
		refZ = bilinear(complex(0, w0))
	}
	hNum := evalPoly(numCoeffs, refZ)
	hDen := evalPoly(denomCoeffs, refZ)
	var scale complex128 = 1
	if hNum != 0 {
		scale = hDen / hNum
	}
	_ = gain // analytic gain kept for documentation/debugging, superseded by scale normalization
	for i := range b {
		b[i] = real(complex(b[i], 0) * scale)
	}

	for _, v := range a {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrFilterDesignNonFinite
		}
	}
	for _, v := range b {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrFilterDesignNonFinite
		}
	}

	return &IIR{B: b, A: a, Order: order, Kind: kind}, nil
}

// prototypePoles returns the order normalized analog Butterworth poles on
// the left half of the unit circle.
func prototypePoles(order int) []complex128 {
	poles := make([]complex128, order)
	for k := 0; k < order; k++ {
		theta := math.Pi * (2*float64(k) + 1) / (2 * float64(order))
		poles[k] = complex(-math.Sin(theta), math.Cos(theta))
	}
	return poles
}

// polyFromRoots expands (x - r0)(x - r1)... into monic polynomial
// coefficients, highest degree first.
func polyFromRoots(roots []complex128) []complex128 {
	coeffs := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(coeffs)+1)
		for i, c := range coeffs {
			next[i] += c
			next[i+1] -= c * r
		}
		coeffs = next
	}
	return coeffs
}

// companionEigenRoots builds the companion matrix of the monic polynomial
// coeffs (highest degree first) and returns its eigenvalues, i.e. the
// polynomial's roots, via gonum's general eigendecomposition.
func companionEigenRoots(coeffs []complex128) ([]complex128, error) {
	n := len(coeffs) - 1
	if n <= 0 {
		return nil, nil
	}
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(0, i, real(-coeffs[i+1]/coeffs[0]))
	}
	for i := 1; i < n; i++ {
		m.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(m, mat.EigenRight); !ok {
		return nil, ErrFilterDesignNonFinite
	}
	vals := eig.Values(nil)
	out := make([]complex128, len(vals))
	for i, v := range vals {
		out[i] = complex128(v)
	}
	return out, nil
}

func evalPoly(coeffs []complex128, x complex128) complex128 {
	var v complex128
	for _, c := range coeffs {
		v = v*x + c
	}
	return v
}

func toRealCoeffs(coeffs []complex128) []float64 {
	out := make([]float64, len(coeffs))
	for i, c := range coeffs {
		out[i] = real(c)
	}
	return out
}
