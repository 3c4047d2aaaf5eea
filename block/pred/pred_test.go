package pred_test

import (
	"reflect"
	"testing"

	"github.com/neurotsdb/tsarc/block"
	"github.com/neurotsdb/tsarc/block/pred"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		samples []int32
		detrend bool
	}{
		{"mixed sign", []int32{0, 5, -5, 0, 10, -10, 3, -3, 0}, false},
		{"ramp", []int32{-3, -2, -1, 0, 1, 2, 3}, false},
		{"single", []int32{7}, false},
		{"detrended", []int32{1, 3, 5, 7, 9, 11, 13}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cps *block.ProcessingStruct
			if tt.detrend {
				cps = block.NewProcessingStruct(block.ModePRED)
				cps.Directives.Detrend = true
			}

			raw, err := pred.Encode(tt.samples, cps)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := pred.Decode(raw)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !reflect.DeepEqual(got, tt.samples) {
				t.Errorf("Decode(Encode(%v)) = %v, want %v", tt.samples, got, tt.samples)
			}
		})
	}
}

func TestEncodeEmptyIsError(t *testing.T) {
	if _, err := pred.Encode(nil, nil); err != block.ErrInvalidParameter {
		t.Errorf("Encode(nil) error = %v, want ErrInvalidParameter", err)
	}
}

func TestDecodeAnyDispatchesToPRED(t *testing.T) {
	samples := []int32{0, 1, -1, 2, -2, 3, -3}
	raw, err := pred.Encode(samples, nil)
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
