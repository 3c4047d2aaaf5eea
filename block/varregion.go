package block

import (
	"encoding/binary"
	"math"
)

// VariableRegion holds the optional per-block parameters selected by
// ParameterFlags, in their fixed canonical wire order: AmplitudeScale,
// FrequencyScale, Gradient, Intercept.
type VariableRegion struct {
	AmplitudeScale float32
	FrequencyScale float32
	Gradient       float32
	Intercept      int32
}

// Encode serializes only the fields selected by flags, in canonical order.
func (v VariableRegion) Encode(flags ParamFlag) []byte {
	buf := make([]byte, 0, 16)
	var tmp [4]byte
	if flags&ParamAmplitudeScale != 0 {
		binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(v.AmplitudeScale))
		buf = append(buf, tmp[:]...)
	}
	if flags&ParamFrequencyScale != 0 {
		binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(v.FrequencyScale))
		buf = append(buf, tmp[:]...)
	}
	if flags&ParamGradient != 0 {
		binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(v.Gradient))
		buf = append(buf, tmp[:]...)
	}
	if flags&ParamIntercept != 0 {
		binary.LittleEndian.PutUint32(tmp[:], uint32(v.Intercept))
		buf = append(buf, tmp[:]...)
	}
	return buf
}

// DecodeVariableRegion parses the fields selected by flags from the front
// of data, returning the region and the number of bytes consumed.
func DecodeVariableRegion(data []byte, flags ParamFlag) (VariableRegion, int, error) {
	var v VariableRegion
	n := 0
	next := func() (uint32, error) {
		if n+4 > len(data) {
			return 0, ErrBlockTooShort
		}
		x := binary.LittleEndian.Uint32(data[n:])
		n += 4
		return x, nil
	}
	if flags&ParamAmplitudeScale != 0 {
		x, err := next()
		if err != nil {
			return v, n, err
		}
		v.AmplitudeScale = math.Float32frombits(x)
	}
	if flags&ParamFrequencyScale != 0 {
		x, err := next()
		if err != nil {
			return v, n, err
		}
		v.FrequencyScale = math.Float32frombits(x)
	}
	if flags&ParamGradient != 0 {
		x, err := next()
		if err != nil {
			return v, n, err
		}
		v.Gradient = math.Float32frombits(x)
	}
	if flags&ParamIntercept != 0 {
		x, err := next()
		if err != nil {
			return v, n, err
		}
		v.Intercept = int32(x)
	}
	return v, n, nil
}

// LinearTrend fits y = slope*i + intercept over samples by ordinary least
// squares, used when Directives.Detrend is set.
func LinearTrend(samples []int32) (slope, intercept float64) {
	n := float64(len(samples))
	if n == 0 {
		return 0, 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, s := range samples {
		x := float64(i)
		y := float64(s)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// RemoveTrend returns samples with the given linear trend subtracted,
// rounding to the nearest integer.
func RemoveTrend(samples []int32, slope, intercept float64) []int32 {
	out := make([]int32, len(samples))
	for i, s := range samples {
		trend := slope*float64(i) + intercept
		out[i] = s - int32(math.Round(trend))
	}
	return out
}

// RestoreTrend is the inverse of RemoveTrend.
func RestoreTrend(detrended []int32, slope, intercept float64) []int32 {
	out := make([]int32, len(detrended))
	for i, s := range detrended {
		trend := slope*float64(i) + intercept
		out[i] = s + int32(math.Round(trend))
	}
	return out
}
