package block

import "math"

// MonotoneCubicSpline evaluates a Fritsch-Carlson monotone cubic Hermite
// spline through the control points (xs[i], ys[i]) at every integer sample
// position 0..n-1. xs must be
// strictly increasing; len(xs) == len(ys) >= 1. Positions before xs[0] or
// after xs[len-1] are held flat at the nearest endpoint value.
func MonotoneCubicSpline(xs []int, ys []float64, n int) []float64 {
	out := make([]float64, n)
	m := len(xs)
	if m == 0 {
		return out
	}
	if m == 1 {
		for i := range out {
			out[i] = ys[0]
		}
		return out
	}

	delta := make([]float64, m-1)
	for i := 0; i < m-1; i++ {
		h := float64(xs[i+1] - xs[i])
		delta[i] = (ys[i+1] - ys[i]) / h
	}

	tangent := make([]float64, m)
	tangent[0] = delta[0]
	tangent[m-1] = delta[m-2]
	for i := 1; i < m-1; i++ {
		if delta[i-1] == 0 || delta[i] == 0 || (delta[i-1] > 0) != (delta[i] > 0) {
			tangent[i] = 0
			continue
		}
		avg := (delta[i-1] + delta[i]) / 2
		lim := 3 * math.Min(math.Abs(delta[i-1]), math.Abs(delta[i]))
		if avg > lim {
			avg = lim
		} else if avg < -lim {
			avg = -lim
		}
		tangent[i] = avg
	}

	seg := 0
	for x := 0; x < n; x++ {
		if x <= xs[0] {
			out[x] = ys[0]
			continue
		}
		if x >= xs[m-1] {
			out[x] = ys[m-1]
			continue
		}
		for seg < m-2 && x >= xs[seg+1] {
			seg++
		}
		h := float64(xs[seg+1] - xs[seg])
		t := float64(x-xs[seg]) / h
		t2 := t * t
		t3 := t2 * t
		h00 := 2*t3 - 3*t2 + 1
		h10 := t3 - 2*t2 + t
		h01 := -2*t3 + 3*t2
		h11 := t3 - t2
		out[x] = h00*ys[seg] + h10*h*tangent[seg] + h01*ys[seg+1] + h11*h*tangent[seg+1]
	}
	return out
}
