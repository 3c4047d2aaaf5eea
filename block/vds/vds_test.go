package vds_test

import (
	"math"
	"testing"

	"github.com/neurotsdb/tsarc/block"
	"github.com/neurotsdb/tsarc/block/vds"
)

func TestEncodeFallsThroughToMBEBelowMinimumLength(t *testing.T) {
	samples := []int32{1, 2, 3, 4, 5}
	cps := block.NewProcessingStruct(block.ModeVDS)
	cps.Parameters.VDSThreshold = 5

	raw, err := vds.Encode(samples, cps)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := block.DecodeAny(raw)
	if err != nil {
		t.Fatalf("DecodeAny: %v", err)
	}
	for i, v := range got {
		if v != samples[i] {
			t.Errorf("MBE fallthrough is lossless, got %v want %v", got, samples)
			break
		}
	}
}

func TestEncodeFallsThroughToPREDAtZeroThreshold(t *testing.T) {
	samples := make([]int32, 64)
	for i := range samples {
		samples[i] = int32(i % 7)
	}
	cps := block.NewProcessingStruct(block.ModeVDS) // VDSThreshold defaults to 0

	raw, err := vds.Encode(samples, cps)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := block.DecodeAny(raw)
	if err != nil {
		t.Fatalf("DecodeAny: %v", err)
	}
	for i, v := range got {
		if v != samples[i] {
			t.Fatalf("PRED fallthrough is lossless, got %v want %v", got, samples)
		}
	}
}

func TestEncodeDecodeReconstructionWithinSanityBound(t *testing.T) {
	const n = 256
	samples := make([]int32, n)
	for i := range samples {
		samples[i] = int32(1000 * math.Sin(float64(i)*0.1))
	}
	cps := block.NewProcessingStruct(block.ModeVDS)
	cps.Parameters.VDSThreshold = 3

	raw, err := vds.Encode(samples, cps)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := block.DecodeAny(raw)
	if err != nil {
		t.Fatalf("DecodeAny: %v", err)
	}
	if len(got) != n {
		t.Fatalf("len(got) = %d, want %d", len(got), n)
	}

	var maxAbsErr float64
	for i := range samples {
		d := math.Abs(float64(got[i] - samples[i]))
		if d > maxAbsErr {
			maxAbsErr = d
		}
	}
	if maxAbsErr > 500 {
		t.Errorf("reconstruction error %v exceeds sanity bound", maxAbsErr)
	}
}

func TestEncodeEmptyIsError(t *testing.T) {
	if _, err := vds.Encode(nil, nil); err != block.ErrInvalidParameter {
		t.Errorf("Encode(nil) error = %v, want ErrInvalidParameter", err)
	}
}
