package filter_test

import (
	"math"
	"testing"

	"github.com/neurotsdb/tsarc/filter"
)

func TestAutoOrder(t *testing.T) {
	tests := []struct {
		ratio float64
		want  int
	}{
		{0.5, 4},
		{3.14e-5, 4},
		{1e-5, 3},
	}
	for _, tt := range tests {
		if got := filter.AutoOrder(tt.ratio); got != tt.want {
			t.Errorf("AutoOrder(%v) = %d, want %d", tt.ratio, got, tt.want)
		}
	}
}

func TestDesignRejectsBadInputs(t *testing.T) {
	if _, err := filter.Design(filter.Lowpass, 0, []float64{10}, 100); err != filter.ErrBadOrder {
		t.Errorf("order 0: err = %v, want ErrBadOrder", err)
	}
	if _, err := filter.Design(filter.Lowpass, 4, []float64{10, 20}, 100); err != filter.ErrBadCutoffs {
		t.Errorf("wrong cutoff count: err = %v, want ErrBadCutoffs", err)
	}
	if _, err := filter.Design(filter.Lowpass, 4, []float64{60}, 100); err != filter.ErrBadCutoffs {
		t.Errorf("cutoff above Nyquist: err = %v, want ErrBadCutoffs", err)
	}
	if _, err := filter.Design(filter.Bandpass, 4, []float64{30, 10}, 100); err != filter.ErrBadCutoffs {
		t.Errorf("unordered bandpass cutoffs: err = %v, want ErrBadCutoffs", err)
	}
}

func TestDesignLowpassAttenuatesHighFrequency(t *testing.T) {
	const fs = 256.0
	iir, err := filter.Design(filter.Lowpass, 4, []float64{10}, fs)
	if err != nil {
		t.Fatalf("Design: %v", err)
	}

	n := 2048
	low := make([]float64, n)
	high := make([]float64, n)
	for i := 0; i < n; i++ {
		t := float64(i) / fs
		low[i] = math.Sin(2 * math.Pi * 2 * t)
		high[i] = math.Sin(2 * math.Pi * 80 * t)
	}

	lowOut, err := filter.FiltFilt(iir, low)
	if err != nil {
		t.Fatalf("FiltFilt(low): %v", err)
	}
	highOut, err := filter.FiltFilt(iir, high)
	if err != nil {
		t.Fatalf("FiltFilt(high): %v", err)
	}

	if rms(highOut) >= rms(lowOut) {
		t.Errorf("lowpass should attenuate the 80Hz tone more than the 2Hz tone: rms(high)=%v rms(low)=%v",
			rms(highOut), rms(lowOut))
	}
}

func TestFiltFiltTooShortReturnsCopyAndError(t *testing.T) {
	iir, err := filter.Design(filter.Lowpass, 4, []float64{10}, 256)
	if err != nil {
		t.Fatalf("Design: %v", err)
	}
	x := []float64{1, 2, 3}
	out, err := filter.FiltFilt(iir, x)
	if err != filter.ErrDataTooShortForPad {
		t.Fatalf("err = %v, want ErrDataTooShortForPad", err)
	}
	if len(out) != len(x) {
		t.Errorf("len(out) = %d, want %d", len(out), len(x))
	}
}

func rms(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}
