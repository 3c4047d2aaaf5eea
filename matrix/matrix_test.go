package matrix_test

import (
	"context"
	"io"
	"testing"

	"bytes"

	"github.com/neurotsdb/tsarc/block/red"
	"github.com/neurotsdb/tsarc/matrix"
	"github.com/neurotsdb/tsarc/session"
)

type memOpener struct {
	files map[string][]byte
}

func (m memOpener) Open(path string) (io.ReadSeeker, error) {
	return bytes.NewReader(m.files[path]), nil
}

func encodeBlock(t *testing.T, samples []int32) []byte {
	t.Helper()
	raw, err := red.Encode(samples, nil)
	if err != nil {
		t.Fatalf("red.Encode: %v", err)
	}
	return raw
}

func buildSession(t *testing.T) *session.Session {
	t.Helper()
	files := map[string][]byte{
		"ch0/seg0.dat": encodeBlock(t, []int32{10, 20, 30, 40}),
		"ch1/seg0.dat": encodeBlock(t, []int32{1, 2, 3, 4}),
	}
	ch0 := &session.Channel{
		Name: "ch0", Active: true, SamplingFrequency: 4, AmplitudeUnitsPerCount: 1,
		Segments: []*session.Segment{{DataPath: "ch0/seg0.dat", StartTime: 0, EndTime: 999999, StartSample: 0, EndSample: 3}},
	}
	ch1 := &session.Channel{
		Name: "ch1", Active: true, SamplingFrequency: 4, AmplitudeUnitsPerCount: 2,
		Segments: []*session.Segment{{DataPath: "ch1/seg0.dat", StartTime: 0, EndTime: 999999, StartSample: 0, EndSample: 3}},
	}
	sess, err := session.Open([]*session.Channel{ch0, ch1}, ch0, memOpener{files: files})
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	return sess
}

func TestGetMatrixBasicAssembly(t *testing.T) {
	sess := buildSession(t)
	req := matrix.Request{
		Slice:             &session.Slice{Mode: session.SliceByTime, StartTime: 0, EndTime: 1000000},
		ExtentMode:        matrix.ExtentSampFreq,
		SamplingFrequency: 4,
		Layout:            matrix.ChannelMajor,
		ElementType:       matrix.F64,
		ResampleMode:      matrix.ResampleLinear,
	}
	m, err := matrix.GetMatrix(context.Background(), sess, req)
	if err != nil {
		t.Fatalf("GetMatrix: %v", err)
	}
	if m.ChannelCount != 2 || m.SampleCount != 4 {
		t.Fatalf("dims = %dx%d, want 2x4", m.ChannelCount, m.SampleCount)
	}
	want := [][]float64{{10, 20, 30, 40}, {2, 4, 6, 8}}
	for c := 0; c < m.ChannelCount; c++ {
		for s := 0; s < m.SampleCount; s++ {
			got := m.Data.F64[c*m.SampleCount+s]
			if got != want[c][s] {
				t.Errorf("cell(%d,%d) = %v, want %v", c, s, got, want[c][s])
			}
		}
	}
	if !m.Valid[0] || !m.Valid[1] {
		t.Errorf("Valid = %v, want all true", m.Valid)
	}
}

func TestGetMatrixSampleMajorLayout(t *testing.T) {
	sess := buildSession(t)
	req := matrix.Request{
		Slice:             &session.Slice{Mode: session.SliceByTime, StartTime: 0, EndTime: 1000000},
		ExtentMode:        matrix.ExtentSampFreq,
		SamplingFrequency: 4,
		Layout:            matrix.SampleMajor,
		ElementType:       matrix.F64,
		ResampleMode:      matrix.ResampleLinear,
	}
	m, err := matrix.GetMatrix(context.Background(), sess, req)
	if err != nil {
		t.Fatalf("GetMatrix: %v", err)
	}
	// sample 0 across both channels: ch0=10, ch1=2
	if got := m.Data.F64[0*m.ChannelCount+0]; got != 10 {
		t.Errorf("sample-major (0,ch0) = %v, want 10", got)
	}
	if got := m.Data.F64[0*m.ChannelCount+1]; got != 2 {
		t.Errorf("sample-major (0,ch1) = %v, want 2", got)
	}
}

func TestGetMatrixNoActiveChannels(t *testing.T) {
	ch0 := &session.Channel{Name: "ch0", Active: false}
	sess, err := session.Open([]*session.Channel{ch0}, ch0, memOpener{})
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	req := matrix.Request{
		Slice:      &session.Slice{Mode: session.SliceByTime, StartTime: 0, EndTime: 1},
		ExtentMode: matrix.ExtentSampCount,
	}
	if _, err := matrix.GetMatrix(context.Background(), sess, req); err != matrix.ErrNoActiveChannels {
		t.Errorf("err = %v, want ErrNoActiveChannels", err)
	}
}

func TestGetMatrixNilSliceIsError(t *testing.T) {
	sess := buildSession(t)
	if _, err := matrix.GetMatrix(context.Background(), sess, matrix.Request{}); err != matrix.ErrInvalidSlice {
		t.Errorf("err = %v, want ErrInvalidSlice", err)
	}
}

func TestGetMatrixCountAndFreqIncompatibleWithNaNFill(t *testing.T) {
	sess := buildSession(t)
	req := matrix.Request{
		Slice:             &session.Slice{Mode: session.SliceByTime, StartTime: 0, EndTime: 1000000},
		ExtentMode:        matrix.ExtentCountAndFreq,
		SampleCount:       4,
		SamplingFrequency: 4,
		DiscontinuityMode: matrix.DiscontinuityNaN,
	}
	if _, err := matrix.GetMatrix(context.Background(), sess, req); err != matrix.ErrCountAndFreqIncompatible {
		t.Errorf("err = %v, want ErrCountAndFreqIncompatible", err)
	}
}
