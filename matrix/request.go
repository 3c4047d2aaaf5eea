package matrix

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/neurotsdb/tsarc/session"
)

// Request describes one matrix assembly call: the slice to read, the
// output grid and type, and which optional pipeline stages to run.
type Request struct {
	Slice *session.Slice

	ExtentMode        ExtentMode
	SampleCount       int     // authoritative under ExtentSampCount/ExtentCountAndFreq
	SamplingFrequency float64 // authoritative under ExtentSampFreq/ExtentCountAndFreq

	Layout      Layout
	ElementType ElementType

	FilterMode FilterMode
	Cutoffs    []float64

	ResampleMode ResampleMode
	TraceRange   bool
	Detrend      bool
	TraceExtrema bool

	DiscontinuityMode DiscontinuityMode
}

// GetMatrix validates req, resolves the output extent, launches one
// worker per active channel, joins them, then performs discontinuity
// rendering. A channel worker failure does not abort its peers: it
// surfaces as an entry in the returned PartialMatrixError (if any) while
// every other channel's data is still delivered.
func GetMatrix(ctx context.Context, sess *session.Session, req Request) (*Matrix, error) {
	if req.Slice == nil {
		return nil, ErrInvalidSlice
	}
	active := sess.ActiveChannels()
	if len(active) == 0 {
		return nil, ErrNoActiveChannels
	}

	targetN, targetSF, err := resolveExtent(sess, req.Slice, req)
	if err != nil {
		return nil, err
	}
	if targetN < 0 {
		targetN = 0
	}

	buf, err := NewBuffer(req.ElementType, targetN*len(active))
	if err != nil {
		return nil, err
	}

	m := &Matrix{
		Data:         buf,
		Layout:       req.Layout,
		ChannelCount: len(active),
		SampleCount:  targetN,
		SamplingFreq: targetSF,
		Channels:     make([]string, len(active)),
		Valid:        make([]bool, len(active)),
	}
	for i, ch := range active {
		m.Channels[i] = ch.Name
	}
	if req.TraceExtrema {
		m.TraceMaxima = make([]float64, len(active))
		m.TraceMinima = make([]float64, len(active))
	}
	if req.DiscontinuityMode == DiscontinuityContig {
		m.Contiguons = make([][]Contiguon, len(active))
	}
	if req.TraceRange {
		m.RangeLo = make([][]float64, len(active))
		m.RangeHi = make([][]float64, len(active))
	}

	results := make([]channelResult, len(active))
	g, _ := errgroup.WithContext(ctx)
	for i, ch := range active {
		i, ch := i, ch
		g.Go(func() error {
			results[i] = runChannelWorker(sess, ch, req.Slice, req, targetN, targetSF)
			return nil
		})
	}
	_ = g.Wait() // worker errors are captured per-channel in results, never fatal to the group

	var failures []*ChannelError
	for i, res := range results {
		if res.err != nil {
			failures = append(failures, &ChannelError{Channel: active[i].Name, Err: res.err})
			continue
		}
		m.Valid[i] = true
		switch req.DiscontinuityMode {
		case DiscontinuityNaN, DiscontinuityZero:
			// placement happens below, in renderDiscontinuities, which
			// needs the sentinel pre-fill done before any valid sample
			// is written.
		default:
			placeChannel(m, i, res)
		}
		if req.DiscontinuityMode == DiscontinuityContig {
			m.Contiguons[i] = res.contiguons
		}
		if req.TraceExtrema {
			m.TraceMaxima[i] = res.max
			m.TraceMinima[i] = res.min
		}
		if req.TraceRange {
			m.RangeLo[i] = res.rangeLo
			m.RangeHi[i] = res.rangeHi
		}
	}

	if err := renderDiscontinuities(m, req, results); err != nil {
		return nil, err
	}

	if len(failures) > 0 {
		return m, &PartialMatrixError{Errors: failures}
	}
	return m, nil
}

// placeChannel casts one worker's resampled data into the matrix's shared
// buffer. Each worker owns a disjoint set of cells (one row in
// channel-major layout, one strided column in sample-major), so this
// requires no synchronization beyond the errgroup join that precedes it.
func placeChannel(m *Matrix, channel int, res channelResult) {
	for s, v := range res.data {
		m.Data.SetFloat(m.index(channel, s), v)
	}
}
