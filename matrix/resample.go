package matrix

import (
	"math"
	"sort"

	"github.com/neurotsdb/tsarc/block"
	"github.com/neurotsdb/tsarc/internal/numeric"
)

// resolveResampleMode turns ResampleAuto into a concrete mode based on the
// upsample ratio: spline at or above 3.0, linear below.
func resolveResampleMode(mode ResampleMode, upsampleRatio float64) ResampleMode {
	if mode != ResampleAuto {
		return mode
	}
	if upsampleRatio >= 3.0 {
		return ResampleSpline
	}
	return ResampleLinear
}

// resample maps src (sampled at sourceN points spanning the same interval
// as the targetN output points) onto a grid of targetN points.
func resample(src []float64, targetN int, mode ResampleMode) []float64 {
	if targetN <= 0 {
		return nil
	}
	if len(src) == 0 {
		return make([]float64, targetN)
	}
	if len(src) == 1 {
		out := make([]float64, targetN)
		for i := range out {
			out[i] = src[0]
		}
		return out
	}

	switch mode {
	case ResampleSpline:
		return resampleSpline(src, targetN)
	case ResampleMidpoint:
		return resampleBinned(src, targetN, binMidpoint)
	case ResampleMean:
		return resampleBinned(src, targetN, binMean)
	case ResampleMedian:
		return resampleBinned(src, targetN, binMedian)
	default:
		return resampleLinear(src, targetN)
	}
}

func resampleLinear(src []float64, targetN int) []float64 {
	out := make([]float64, targetN)
	n := len(src)
	if targetN == 1 {
		out[0] = src[0]
		return out
	}
	scale := float64(n-1) / float64(targetN-1)
	for j := 0; j < targetN; j++ {
		pos := float64(j) * scale
		i0 := numeric.Clamp(int(pos), 0, n-1)
		if i0 >= n-1 {
			out[j] = src[n-1]
			continue
		}
		frac := pos - float64(i0)
		out[j] = src[i0]*(1-frac) + src[i0+1]*frac
	}
	return out
}

func resampleSpline(src []float64, targetN int) []float64 {
	n := len(src)
	xs := make([]int, n)
	scale := float64(targetN-1) / float64(n-1)
	for i := range src {
		xs[i] = int(math.Round(float64(i) * scale))
	}
	for i := 1; i < n; i++ {
		if xs[i] <= xs[i-1] {
			xs[i] = xs[i-1] + 1
		}
	}
	return block.MonotoneCubicSpline(xs, src, targetN)
}

// binEdges returns the half-open [lo, hi) source-index range feeding
// output bin j of targetN bins over a source of length n.
func binEdges(j, targetN, n int) (lo, hi int) {
	lo = j * n / targetN
	hi = (j + 1) * n / targetN
	if hi <= lo {
		hi = lo + 1
	}
	hi = numeric.Clamp(hi, 0, n)
	return lo, hi
}

func resampleBinned(src []float64, targetN int, reduce func([]float64) float64) []float64 {
	out := make([]float64, targetN)
	n := len(src)
	for j := 0; j < targetN; j++ {
		lo, hi := binEdges(j, targetN, n)
		out[j] = reduce(src[lo:hi])
	}
	return out
}

func binMidpoint(bin []float64) float64 {
	mn, mx := bin[0], bin[0]
	for _, v := range bin[1:] {
		if v < mn {
			mn = v
		}
		if v > mx {
			mx = v
		}
	}
	return (mn + mx) / 2
}

func binMean(bin []float64) float64 {
	var sum float64
	for _, v := range bin {
		sum += v
	}
	return sum / float64(len(bin))
}

func binMedian(bin []float64) float64 {
	sorted := append([]float64(nil), bin...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// rangeTrace computes, for each of targetN output bins, the min and max of
// the source samples falling in that bin — a bin-min/max pass run at the
// target grid alongside (not instead of) the main resample.
func rangeTrace(src []float64, targetN int) (lo, hi []float64) {
	lo = make([]float64, targetN)
	hi = make([]float64, targetN)
	n := len(src)
	if n == 0 {
		return lo, hi
	}
	for j := 0; j < targetN; j++ {
		l, h := binEdges(j, targetN, n)
		mn, mx := src[l], src[l]
		for _, v := range src[l:h] {
			if v < mn {
				mn = v
			}
			if v > mx {
				mx = v
			}
		}
		lo[j], hi[j] = mn, mx
	}
	return lo, hi
}
