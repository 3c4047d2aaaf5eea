package red_test

import (
	"reflect"
	"testing"

	"github.com/neurotsdb/tsarc/block"
	"github.com/neurotsdb/tsarc/block/red"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		samples []int32
		detrend bool
	}{
		{"ramp", []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, false},
		{"noisy", []int32{100, 98, 250, -4000, 17, 17, 17, 9999999, -9999999}, false},
		{"single", []int32{42}, false},
		{"detrended ramp", []int32{10, 20, 30, 40, 50, 60}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cps *block.ProcessingStruct
			if tt.detrend {
				cps = block.NewProcessingStruct(block.ModeRED)
				cps.Directives.Detrend = true
			}

			raw, err := red.Encode(tt.samples, cps)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := red.Decode(raw)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !reflect.DeepEqual(got, tt.samples) {
				t.Errorf("Decode(Encode(%v)) = %v, want %v", tt.samples, got, tt.samples)
			}
		})
	}
}

// TestEncodeDecodeAllZeroLongRun is the length-4096 all-zero scenario:
// every first-difference residual is zero, so the model collapses onto a
// single dominant bin and the range coder should still round-trip exactly.
func TestEncodeDecodeAllZeroLongRun(t *testing.T) {
	samples := make([]int32, 4096)
	raw, err := red.Encode(samples, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := red.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, samples) {
		t.Errorf("Decode(Encode(4096 zeros)) did not round-trip (first few: %v)", got[:8])
	}
}

func TestEncodeEmptyIsError(t *testing.T) {
	if _, err := red.Encode(nil, nil); err != block.ErrInvalidParameter {
		t.Errorf("Encode(nil) error = %v, want ErrInvalidParameter", err)
	}
}

func TestDecodeAnyDispatchesToRED(t *testing.T) {
	samples := []int32{5, 4, 3, 2, 1, 0, -1, -2}
	raw, err := red.Encode(samples, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := block.DecodeAny(raw)
	if err != nil {
		t.Fatalf("DecodeAny: %v", err)
	}
	if !reflect.DeepEqual(got, samples) {
		t.Errorf("DecodeAny = %v, want %v", got, samples)
	}
}
