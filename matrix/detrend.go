package matrix

import "math"

// ladFit computes a least-absolute-deviations line y = slope*i + intercept
// through y by iteratively reweighted least squares: each pass solves the
// weighted-least-squares line with weights 1/|residual| from the previous
// pass (Huber/IRLS's standard L1 relaxation), which converges to the L1
// minimizer in a handful of iterations for the smooth, low-noise traces
// this pipeline detrends. No pack dependency offers a dedicated LAD
// solver, and gonum's regression helpers are ordinary-least-squares only,
// so this is a direct, self-contained numerical routine rather than a
// pulled-in library.
func ladFit(y []float64) (slope, intercept float64) {
	n := len(y)
	if n == 0 {
		return 0, 0
	}
	if n == 1 {
		return 0, y[0]
	}

	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}

	slope, intercept = olsFit(x, y)
	weight := make([]float64, n)
	for iter := 0; iter < 15; iter++ {
		for i := range y {
			resid := y[i] - (slope*x[i] + intercept)
			weight[i] = 1 / math.Max(math.Abs(resid), 1e-9)
		}
		slope, intercept = weightedOLSFit(x, y, weight)
	}
	return slope, intercept
}

func olsFit(x, y []float64) (slope, intercept float64) {
	n := float64(len(x))
	var sumX, sumY, sumXY, sumXX float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumXX += x[i] * x[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

func weightedOLSFit(x, y, w []float64) (slope, intercept float64) {
	var sumW, sumWX, sumWY, sumWXY, sumWXX float64
	for i := range x {
		sumW += w[i]
		sumWX += w[i] * x[i]
		sumWY += w[i] * y[i]
		sumWXY += w[i] * x[i] * y[i]
		sumWXX += w[i] * x[i] * x[i]
	}
	denom := sumW*sumWXX - sumWX*sumWX
	if denom == 0 {
		return 0, sumWY / sumW
	}
	slope = (sumW*sumWXY - sumWX*sumWY) / denom
	intercept = (sumWY - slope*sumWX) / sumW
	return slope, intercept
}

// detrend subtracts the LAD line fit to data from data and, if rangeLo/Hi
// are non-nil, from both range traces as well (sharing the single fit
// computed over data).
func detrend(data, rangeLo, rangeHi []float64) {
	slope, intercept := ladFit(data)
	for i := range data {
		data[i] -= slope*float64(i) + intercept
	}
	for i := range rangeLo {
		trend := slope*float64(i) + intercept
		rangeLo[i] -= trend
		rangeHi[i] -= trend
	}
}
