package matrix

import (
	"github.com/neurotsdb/tsarc/filter"
	"github.com/neurotsdb/tsarc/session"
)

// channelResult carries one worker's output back to the controller.
type channelResult struct {
	data       []float64
	rangeLo    []float64
	rangeHi    []float64
	contiguons []Contiguon
	max, min   float64
	err        error
}

// runChannelWorker executes the eight-step per-channel pipeline: decode,
// filter, resample, range-trace, detrend, extrema, leaving the final cast
// to the caller (which writes into shared matrix cells under no lock,
// since each worker owns a disjoint column/row).
func runChannelWorker(sess *session.Session, ch *session.Channel, slice *session.Slice, req Request, targetN int, targetSF float64) channelResult {
	start, end, err := sess.ResolveSegmentRange(ch, slice)
	if err != nil {
		return channelResult{err: err}
	}
	if start == -1 {
		return channelResult{data: make([]float64, targetN)}
	}
	if err := sess.OpenSegments(ch, start, end); err != nil {
		return channelResult{err: err}
	}

	// raw spans the full nominal sample range [first, last] covered by the
	// intersecting segments, not just the samples actually decoded: a
	// channel whose segments have a real gap between them must keep that
	// gap's positions in place so later contiguon math (renderContiguons)
	// and sentinel-fill (discontinuity.go) see the right offsets. Gap
	// positions are left at zero, a placeholder overwritten by
	// renderDiscontinuities for NaN/zero-fill modes and otherwise smoothed
	// like any other sample under DiscontinuityNone.
	first := ch.Segments[start].StartSample
	last := ch.Segments[end].EndSample
	raw := make([]int32, last-first+1)
	for i := start; i <= end; i++ {
		seg := ch.Segments[i]
		samples, err := seg.DecodeSamples()
		if err != nil {
			return channelResult{err: err}
		}
		copy(raw[seg.StartSample-first:], samples)
	}

	scale := ch.AmplitudeUnitsPerCount
	if scale == 0 {
		scale = 1
	}
	data := make([]float64, len(raw))
	for i, s := range raw {
		data[i] = float64(s) * scale
	}

	if req.FilterMode != FilterNone {
		filtered, err := applyFilter(data, ch.SamplingFrequency, req.FilterMode, req.Cutoffs, targetSF)
		if err != nil {
			return channelResult{err: err}
		}
		data = filtered
	}

	upsampleRatio := targetSF / ch.SamplingFrequency
	mode := resolveResampleMode(req.ResampleMode, upsampleRatio)
	resampled := resample(data, targetN, mode)

	var rangeLo, rangeHi []float64
	if req.TraceRange {
		rangeLo, rangeHi = rangeTrace(data, targetN)
	}

	if req.Detrend {
		detrend(resampled, rangeLo, rangeHi)
	}

	result := channelResult{data: resampled, rangeLo: rangeLo, rangeHi: rangeHi}
	if req.TraceExtrema {
		result.max, result.min = extrema(resampled)
	}
	if req.DiscontinuityMode != DiscontinuityNone {
		result.contiguons = renderContiguons(ch, start, end, slice, targetN, len(raw))
	}
	return result
}

func extrema(x []float64) (max, min float64) {
	if len(x) == 0 {
		return 0, 0
	}
	max, min = x[0], x[0]
	for _, v := range x[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return max, min
}

func applyFilter(data []float64, sourceSF float64, mode FilterMode, cutoffs []float64, outputSF float64) ([]float64, error) {
	kind := filter.Lowpass
	effectiveCutoffs := cutoffs
	switch mode {
	case FilterAntiAlias:
		kind = filter.Lowpass
		effectiveCutoffs = []float64{outputSF / 3.5}
	case FilterLowpass:
		kind = filter.Lowpass
	case FilterHighpass:
		kind = filter.Highpass
	case FilterBandpass:
		kind = filter.Bandpass
	case FilterBandstop:
		kind = filter.Bandstop
	}

	ratio := effectiveCutoffs[0] / sourceSF
	order := filter.AutoOrder(ratio)
	iir, err := filter.Design(kind, order, effectiveCutoffs, sourceSF)
	if err != nil {
		return nil, err
	}
	return filter.FiltFilt(iir, data)
}

// renderContiguons rewrites the channel's source-sample-coordinate
// contiguon list (restricted to the decoded [start,end] segment range)
// into matrix sample coordinates, scaling by the resample ratio.
func renderContiguons(ch *session.Channel, start, end int, slice *session.Slice, targetN, sourceN int) []Contiguon {
	first := ch.Segments[start].StartSample
	last := ch.Segments[end].EndSample
	source := session.Contiguons(ch, first, last)
	if sourceN <= 1 || targetN <= 0 {
		return nil
	}
	scale := float64(targetN-1) / float64(sourceN-1)
	out := make([]Contiguon, 0, len(source))
	for _, c := range source {
		lo := int(float64(c.Start-first) * scale)
		hi := int(float64(c.End-first) * scale)
		if hi >= targetN {
			hi = targetN - 1
		}
		if lo < 0 {
			lo = 0
		}
		out = append(out, Contiguon{Start: lo, End: hi})
	}
	return out
}
