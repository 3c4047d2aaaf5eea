// Package vds implements VDS (variable-density sampler): a lossy codec
// that keeps a sparse set of anchor samples and reconstructs the rest with
// a monotone cubic spline. Anchors are seeded from the signal's critical
// points (peaks and troughs of a smoothed template) and refined by
// inserting the point of worst spline-vs-template error until the
// reconstruction error falls under a user-tunable threshold or a
// per-segment anchor cap is hit. The two anchor streams (positions and
// amplitudes) are themselves compressed by whichever of RED, PRED, or MBE
// produces the smallest result.
package vds

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/neurotsdb/tsarc/block"
	"github.com/neurotsdb/tsarc/block/mbe"
	"github.com/neurotsdb/tsarc/block/pred"
	"github.com/neurotsdb/tsarc/block/red"
	"github.com/neurotsdb/tsarc/filter"
	"github.com/neurotsdb/tsarc/kernel"
)

// UID is VDS's registry identifier.
const UID = "VDS"

func init() {
	block.Register(Codec{})
}

// Codec implements block.Codec for the VDS algorithm.
type Codec struct{}

func (Codec) Mode() block.Mode { return block.ModeVDS }
func (Codec) UID() string      { return UID }

// minimumSamplesForVDS is the smallest segment length worth spending
// anchor search on; shorter segments fall through to MBE.
const minimumSamplesForVDS = 32

// maxAnchorsPerSegment is the fixed-spacing cap on anchor insertion.
const maxAnchorsPerSegment = 255

// medianSpan is the running-quantile window used to build the smoothed
// template that seeds critical-point anchors. Kept small and odd because
// VDS only needs to strip single-sample transients before peak/trough
// detection, not perform general-purpose smoothing.
const medianSpan = 5

// subCodec byte-tags which of RED/PRED/MBE encoded an anchor sub-stream.
type subCodec byte

const (
	subRED subCodec = iota
	subPRED
	subMBE
)

func encodeSub(samples []int32) (subCodec, []byte, error) {
	plain := &block.ProcessingStruct{Parameters: block.DefaultParameters()}
	redBytes, errR := red.Encode(samples, plain)
	predBytes, errP := pred.Encode(samples, plain)
	mbeBytes, errM := mbe.Encode(samples, plain)

	best := subMBE
	bestBytes := mbeBytes
	bestErr := errM
	if errR == nil && (bestErr != nil || len(redBytes) < len(bestBytes)) {
		best, bestBytes, bestErr = subRED, redBytes, errR
	}
	if errP == nil && (bestErr != nil || len(predBytes) < len(bestBytes)) {
		best, bestBytes, bestErr = subPRED, predBytes, errP
	}
	if bestErr != nil {
		return 0, nil, bestErr
	}
	return best, bestBytes, nil
}

func decodeSub(c subCodec, data []byte) ([]int32, error) {
	switch c {
	case subRED:
		return red.Decode(data)
	case subPRED:
		return pred.Decode(data)
	case subMBE:
		return mbe.Decode(data)
	default:
		return nil, block.ErrUnknownAlgorithm
	}
}

// Encode builds a VDS block, falling through to PRED (threshold 0, or a
// failed normality check when directed to require one) or MBE (too few
// samples) when VDS doesn't apply. A fallthrough sets
// cps.Directives.Algorithm to the mode actually used; Encode itself does
// not read that field, so a later Encode call on the same ProcessingStruct
// still attempts VDS.
func Encode(samples []int32, cps *block.ProcessingStruct) ([]byte, error) {
	if len(samples) == 0 {
		return nil, block.ErrInvalidParameter
	}
	if cps == nil {
		cps = block.NewProcessingStruct(block.ModeVDS)
	}

	if len(samples) < minimumSamplesForVDS {
		cps.Directives.Algorithm = block.ModeMBE
		out, err := mbe.Encode(samples, cps)
		if err != nil {
			return nil, err
		}
		markFallthrough(out)
		return out, nil
	}
	if cps.Parameters.VDSThreshold <= 0 {
		cps.Directives.Algorithm = block.ModePRED
		out, err := pred.Encode(samples, cps)
		if err != nil {
			return nil, err
		}
		markFallthrough(out)
		return out, nil
	}

	working := samples
	var flags block.ParamFlag
	var vr block.VariableRegion
	if cps.Directives.Detrend {
		slope, intercept := block.LinearTrend(samples)
		working = block.RemoveTrend(samples, slope, intercept)
		flags |= block.ParamGradient | block.ParamIntercept
		vr.Gradient = float32(slope)
		vr.Intercept = int32(intercept)
	}

	lfp := cps.Parameters.VDSLFPHighFc > 0 && cps.Parameters.SamplingFrequency > 0
	algoThreshold := algorithmThreshold(cps.Parameters.VDSThreshold, lfp)

	template, err := buildTemplate(working, lfp, cps.Parameters.VDSLFPHighFc, cps.Parameters.SamplingFrequency)
	if err != nil {
		return nil, err
	}

	anchorIdx, residuals, overLimit := selectAnchors(working, template, algoThreshold)
	if overLimit {
		return nil, block.ErrVDSOverLimit
	}

	if cps.Directives.RequireNormality {
		score := normalityScore(residuals)
		if score < cps.Parameters.MinimumNormality {
			cps.Directives.Algorithm = block.ModePRED
			out, err := pred.Encode(samples, cps)
			if err != nil {
				return nil, err
			}
			markFallthrough(out)
			return out, nil
		}
	}

	scale := cps.Parameters.AmplitudeScale
	if scale <= 0 {
		scale = 1
	}
	if cps.Directives.FindAmplitudeScale {
		scale = searchAmplitudeScale(working, anchorIdx, cps)
	}

	posStream := make([]int32, len(anchorIdx))
	prev := 0
	for i, idx := range anchorIdx {
		posStream[i] = int32(idx - prev)
		prev = idx
	}
	ampStream := make([]int32, len(anchorIdx))
	for i, idx := range anchorIdx {
		ampStream[i] = int32(math.Round(float64(working[idx]) / scale))
	}

	posMode, posBytes, err := encodeSub(posStream)
	if err != nil {
		return nil, err
	}
	ampMode, ampBytes, err := encodeSub(ampStream)
	if err != nil {
		return nil, err
	}

	modelRegion := make([]byte, 18)
	binary.LittleEndian.PutUint16(modelRegion[0:2], uint16(len(anchorIdx)))
	binary.LittleEndian.PutUint64(modelRegion[2:10], math.Float64bits(algoThreshold))
	binary.LittleEndian.PutUint64(modelRegion[10:18], math.Float64bits(scale))

	payload := make([]byte, 0, 10+len(posBytes)+len(ampBytes))
	payload = append(payload, byte(posMode))
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(posBytes)))
	payload = append(payload, lenBuf[:]...)
	payload = append(payload, posBytes...)
	payload = append(payload, byte(ampMode))
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(ampBytes)))
	payload = append(payload, lenBuf[:]...)
	payload = append(payload, ampBytes...)

	hdr := block.Header{
		TotalHeaderBytes: block.HeaderBytes,
		ModelRegionBytes: uint16(len(modelRegion)),
		NumberOfSamples:  uint32(len(samples)),
		ParameterFlags:   uint32(flags),
	}
	if cps.Directives.Detrend {
		hdr.BlockFlags |= uint32(block.FlagDetrended)
	}
	hdr.BlockFlags = uint32(block.BlockFlag(hdr.BlockFlags).WithMode(block.ModeVDS))
	variable := vr.Encode(flags)
	hdr.TotalBlockBytes = uint32(block.HeaderBytes) + uint32(len(variable)) + uint32(len(modelRegion)) + uint32(len(payload))

	body := make([]byte, 0, int(hdr.TotalBlockBytes))
	body = append(body, block.EncodeHeader(hdr)...)
	body = append(body, variable...)
	body = append(body, modelRegion...)
	body = append(body, payload...)

	without := append(body[:8:8], body[12:]...)
	hdr.CRC = block.CRC32(without[:4], without[4:])
	binary.LittleEndian.PutUint32(body[8:12], hdr.CRC)

	return body, nil
}

func (Codec) Encode(samples []int32, cps *block.ProcessingStruct) ([]byte, error) {
	return Encode(samples, cps)
}

// markFallthrough sets FlagVDSFallthrough on an already-assembled block and
// recomputes its CRC, since the block was built by a different codec's
// Encode and is unaware it's being reported under a VDS request.
func markFallthrough(body []byte) {
	if len(body) < block.HeaderBytes {
		return
	}
	flags := binary.LittleEndian.Uint32(body[40:44])
	flags |= uint32(block.FlagVDSFallthrough)
	binary.LittleEndian.PutUint32(body[40:44], flags)
	without := append(body[:8:8], body[12:]...)
	crc := block.CRC32(without[:4], without[4:])
	binary.LittleEndian.PutUint32(body[8:12], crc)
}

// buildTemplate produces the smoothed signal that seeds critical-point
// anchors: a running median strips single-sample transients, and an
// optional zero-phase low-pass stage removes higher-frequency content when
// the caller has supplied both a cutoff and a sampling frequency.
func buildTemplate(x []int32, lfp bool, cutoffHz, fs float64) ([]float64, error) {
	xf := make([]float64, len(x))
	for i, s := range x {
		xf[i] = float64(s)
	}
	template := kernel.RunningQuantile(xf, medianSpan, 0.5, kernel.TailExtrapolate)
	if !lfp {
		return template, nil
	}
	order := filter.AutoOrder(cutoffHz / fs)
	iir, err := filter.Design(filter.Lowpass, order, []float64{cutoffHz}, fs)
	if err != nil {
		return template, nil
	}
	filtered, err := filter.FiltFilt(iir, template)
	if err != nil {
		return template, nil
	}
	return filtered, nil
}

// selectAnchors seeds anchors from template's critical points, then
// inserts the index of worst spline-vs-template deviation until every
// point is within threshold or the per-segment cap is reached. It returns
// the final sorted anchor index set and the converged residual (template
// minus spline) at every sample, for an optional normality check.
func selectAnchors(x []int32, template []float64, threshold float64) (anchors []int, residual []float64, overLimit bool) {
	n := len(template)
	peaks, troughs := kernel.CriticalPoints(template)
	set := map[int]bool{0: true, n - 1: true}
	for _, p := range peaks {
		set[p] = true
	}
	for _, t := range troughs {
		set[t] = true
	}
	anchors = sortedKeys(set)

	residual = make([]float64, n)
	for {
		ys := make([]float64, len(anchors))
		for i, idx := range anchors {
			ys[i] = template[idx]
		}
		spline := block.MonotoneCubicSpline(anchors, ys, n)

		worstIdx, worstDev := -1, threshold
		for i := 0; i < n; i++ {
			residual[i] = template[i] - spline[i]
			dev := math.Abs(residual[i])
			if dev > worstDev && !set[i] {
				worstDev = dev
				worstIdx = i
			}
		}
		if worstIdx < 0 {
			break
		}
		if len(anchors) >= maxAnchorsPerSegment {
			return anchors, residual, true
		}
		set[worstIdx] = true
		anchors = insertSorted(anchors, worstIdx)
	}
	return anchors, residual, false
}

func sortedKeys(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func insertSorted(s []int, v int) []int {
	i := sort.SearchInts(s, v)
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// searchAmplitudeScale looks for an amplitude-quantization scale that
// drives the anchor-amplitude-stream compression ratio toward
// cps.Parameters.GoalRatio, within GoalTolerance, in at most
// MaximumGoalAttempts tries. GoalMeanResidualRatio bisects between the
// current scale and 1.0; GoalCompressionRatio nudges the scale
// proportionally to the ratio error. It always returns a usable scale,
// falling back to the starting value if no attempt converges.
func searchAmplitudeScale(x []int32, anchors []int, cps *block.ProcessingStruct) float64 {
	scale := cps.Parameters.AmplitudeScale
	if scale <= 0 {
		scale = 1
	}
	target := cps.Parameters.GoalRatio
	if target <= 0 {
		return scale
	}
	lo, hi := scale, 1.0
	if lo > hi {
		lo, hi = hi, lo
	}

	quantize := func(s float64) []int32 {
		out := make([]int32, len(anchors))
		for i, idx := range anchors {
			out[i] = int32(math.Round(float64(x[idx]) / s))
		}
		return out
	}
	ratioFor := func(s float64) float64 {
		stream := quantize(s)
		_, encoded, err := encodeSub(stream)
		if err != nil || len(encoded) == 0 {
			return 0
		}
		return float64(len(stream)*4) / float64(len(encoded))
	}

	best := scale
	for attempt := 0; attempt < cps.Parameters.MaximumGoalAttempts; attempt++ {
		r := ratioFor(best)
		if r == 0 {
			break
		}
		if math.Abs(r-target) <= cps.Parameters.GoalTolerance {
			return best
		}
		switch cps.Directives.AmplitudeScaleGoal {
		case block.GoalCompressionRatio:
			best *= r / target
			if best <= 0 {
				best = scale
			}
		default: // GoalMeanResidualRatio: bisection
			if r < target {
				lo = best
			} else {
				hi = best
			}
			best = (lo + hi) / 2
		}
	}
	return best
}

// Decode inverts Encode.
func Decode(raw []byte) ([]int32, error) {
	if err := block.VerifyCRC(raw); err != nil {
		return nil, err
	}
	hdr, err := block.DecodeHeader(raw)
	if err != nil {
		return nil, err
	}
	if len(raw) < int(hdr.TotalBlockBytes) {
		return nil, block.ErrBlockTooShort
	}
	off := block.HeaderBytes
	vr, n, err := block.DecodeVariableRegion(raw[off:], block.ParamFlag(hdr.ParameterFlags))
	if err != nil {
		return nil, err
	}
	off += n

	modelEnd := off + int(hdr.ModelRegionBytes)
	if modelEnd > len(raw) || hdr.ModelRegionBytes != 18 {
		return nil, block.ErrBlockTooShort
	}
	anchorCount := int(binary.LittleEndian.Uint16(raw[off : off+2]))
	scale := math.Float64frombits(binary.LittleEndian.Uint64(raw[off+10 : off+18]))
	off = modelEnd

	readSub := func() (subCodec, []byte, error) {
		if off+5 > len(raw) {
			return 0, nil, block.ErrBlockTooShort
		}
		mode := subCodec(raw[off])
		length := int(binary.LittleEndian.Uint32(raw[off+1 : off+5]))
		off += 5
		if off+length > len(raw) {
			return 0, nil, block.ErrBlockTooShort
		}
		data := raw[off : off+length]
		off += length
		return mode, data, nil
	}

	posMode, posData, err := readSub()
	if err != nil {
		return nil, err
	}
	posStream, err := decodeSub(posMode, posData)
	if err != nil {
		return nil, err
	}
	ampMode, ampData, err := readSub()
	if err != nil {
		return nil, err
	}
	ampStream, err := decodeSub(ampMode, ampData)
	if err != nil {
		return nil, err
	}
	if len(posStream) != anchorCount || len(ampStream) != anchorCount {
		return nil, block.ErrInvalidBlock
	}

	anchorIdx := make([]int, anchorCount)
	pos := 0
	for i, d := range posStream {
		pos += int(d)
		anchorIdx[i] = pos
	}
	anchorVal := make([]float64, anchorCount)
	for i, a := range ampStream {
		anchorVal[i] = float64(a) * scale
	}

	spline := block.MonotoneCubicSpline(anchorIdx, anchorVal, int(hdr.NumberOfSamples))
	samples := make([]int32, len(spline))
	for i, v := range spline {
		samples[i] = int32(math.Round(v))
	}

	if block.ParamFlag(hdr.ParameterFlags)&block.ParamGradient != 0 {
		samples = block.RestoreTrend(samples, float64(vr.Gradient), float64(vr.Intercept))
	}
	return samples, nil
}

func (Codec) Decode(raw []byte) ([]int32, error) {
	return Decode(raw)
}
