package matrix_test

import (
	"context"
	"math"
	"testing"

	"github.com/neurotsdb/tsarc/matrix"
	"github.com/neurotsdb/tsarc/session"
)

func TestGetMatrixNaNFillLeavesGapChannelAllSentinel(t *testing.T) {
	sess := buildSession(t) // ch0, ch1 both fully covering samples 0-3

	// Strip ch1's segments so it has nothing intersecting the slice: the
	// worker takes its "no intersecting segment" path and returns a
	// zero-filled (not erroring) result.
	sess.Channels[1].Segments = nil

	req := matrix.Request{
		Slice:             &session.Slice{Mode: session.SliceByTime, StartTime: 0, EndTime: 1000000},
		ExtentMode:        matrix.ExtentSampFreq,
		SamplingFrequency: 4,
		Layout:            matrix.ChannelMajor,
		ElementType:       matrix.F64,
		ResampleMode:      matrix.ResampleLinear,
		DiscontinuityMode: matrix.DiscontinuityNaN,
	}
	m, err := matrix.GetMatrix(context.Background(), sess, req)
	if err != nil {
		t.Fatalf("GetMatrix: %v", err)
	}

	for s := 0; s < m.SampleCount; s++ {
		if got := m.Data.F64[0*m.SampleCount+s]; got != float64(10*(s+1)) {
			t.Errorf("ch0 sample %d = %v, want %v", s, got, 10*(s+1))
		}
		if gap := m.Data.F64[1*m.SampleCount+s]; !math.IsNaN(gap) {
			t.Errorf("ch1 sample %d = %v, want NaN (gap channel)", s, gap)
		}
	}
}

// seqInt32 returns n consecutive int32 values starting at start — used to
// make each decoded sample's expected matrix value directly readable as
// its own absolute sample index.
func seqInt32(start, n int) []int32 {
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(start + i)
	}
	return out
}

// TestGetMatrixMultiSegmentGapPlacesValuesAtCorrectOffsets reproduces the
// session.Contiguons scenario (two segments contiguous, a third separated
// by a real gap) through the full matrix assembly pipeline: samples 0-199
// and 300-399 come from real decoded segments, samples 200-299 are a
// genuine 100-sample gap with no backing segment at all. This is the case
// that a naive decode-and-concatenate worker gets wrong: it would leave
// only 300 samples in its raw buffer (dropping the gap's positions
// entirely), shifting segment C's values ~100 samples early and
// corrupting every downstream contiguon boundary.
func TestGetMatrixMultiSegmentGapPlacesValuesAtCorrectOffsets(t *testing.T) {
	files := map[string][]byte{
		"gap/segA.dat": encodeBlock(t, seqInt32(0, 100)),
		"gap/segB.dat": encodeBlock(t, seqInt32(100, 100)),
		"gap/segC.dat": encodeBlock(t, seqInt32(300, 100)),
	}
	ch := &session.Channel{
		Name: "gap", Active: true, SamplingFrequency: 1, AmplitudeUnitsPerCount: 1,
		Segments: []*session.Segment{
			{DataPath: "gap/segA.dat", StartTime: 0, EndTime: 99, StartSample: 0, EndSample: 99},
			{DataPath: "gap/segB.dat", StartTime: 100, EndTime: 199, StartSample: 100, EndSample: 199},
			{DataPath: "gap/segC.dat", StartTime: 300, EndTime: 399, StartSample: 300, EndSample: 399},
		},
	}
	sess, err := session.Open([]*session.Channel{ch}, ch, memOpener{files: files})
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}

	req := matrix.Request{
		Slice:             &session.Slice{Mode: session.SliceBySample, StartSample: 0, EndSample: 399},
		ExtentMode:        matrix.ExtentSampCount,
		SampleCount:       400,
		Layout:            matrix.ChannelMajor,
		ElementType:       matrix.F64,
		ResampleMode:      matrix.ResampleLinear,
		DiscontinuityMode: matrix.DiscontinuityNaN,
	}
	m, err := matrix.GetMatrix(context.Background(), sess, req)
	if err != nil {
		t.Fatalf("GetMatrix: %v", err)
	}
	if m.SampleCount != 400 {
		t.Fatalf("SampleCount = %d, want 400", m.SampleCount)
	}
	for s := 0; s < 200; s++ {
		if got := m.Data.F64[s]; got != float64(s) {
			t.Errorf("sample %d = %v, want %v", s, got, float64(s))
		}
	}
	for s := 200; s < 300; s++ {
		if got := m.Data.F64[s]; !math.IsNaN(got) {
			t.Errorf("sample %d = %v, want NaN (true gap, no backing segment)", s, got)
		}
	}
	for s := 300; s < 400; s++ {
		if got := m.Data.F64[s]; got != float64(s) {
			t.Errorf("sample %d = %v, want %v", s, got, float64(s))
		}
	}
}

func TestGetMatrixContiguonModeCoversFullRange(t *testing.T) {
	sess := buildSession(t)
	req := matrix.Request{
		Slice:             &session.Slice{Mode: session.SliceByTime, StartTime: 0, EndTime: 1000000},
		ExtentMode:        matrix.ExtentSampFreq,
		SamplingFrequency: 4,
		Layout:            matrix.ChannelMajor,
		ElementType:       matrix.F64,
		ResampleMode:      matrix.ResampleLinear,
		DiscontinuityMode: matrix.DiscontinuityContig,
	}
	m, err := matrix.GetMatrix(context.Background(), sess, req)
	if err != nil {
		t.Fatalf("GetMatrix: %v", err)
	}
	if len(m.Contiguons[0]) != 1 {
		t.Fatalf("len(Contiguons[0]) = %d, want 1", len(m.Contiguons[0]))
	}
	got := m.Contiguons[0][0]
	if got.Start != 0 || got.End != 3 {
		t.Errorf("Contiguons[0][0] = %+v, want {0 3}", got)
	}
}
