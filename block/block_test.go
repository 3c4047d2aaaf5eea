package block_test

import (
	"encoding/binary"
	"testing"

	"github.com/neurotsdb/tsarc/block"
)

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	hdr := block.Header{
		StartUID:                 0xDEADBEEF,
		TotalBlockBytes:          128,
		TotalHeaderBytes:         block.HeaderBytes,
		ModelRegionBytes:         512,
		NumberOfSamples:          1000,
		StartTime:                123456789,
		AcquisitionChannelNumber: 3,
		ParameterFlags:           uint32(block.ParamGradient),
		BlockFlags:               uint32(block.FlagDetrended),
		ProtectedRegionBytes:     0,
		DiscretionaryRegionBytes: 0,
	}
	raw := block.EncodeHeader(hdr)
	if len(raw) != block.HeaderBytes {
		t.Fatalf("len(EncodeHeader) = %d, want %d", len(raw), block.HeaderBytes)
	}
	got, err := block.DecodeHeader(raw)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if got != hdr {
		t.Errorf("DecodeHeader(EncodeHeader(h)) = %+v, want %+v", got, hdr)
	}
}

func TestDecodeHeaderTooShort(t *testing.T) {
	if _, err := block.DecodeHeader(make([]byte, 10)); err != block.ErrBlockTooShort {
		t.Errorf("err = %v, want ErrBlockTooShort", err)
	}
}

func TestVerifyCRCDetectsCorruption(t *testing.T) {
	hdr := block.Header{TotalHeaderBytes: block.HeaderBytes, NumberOfSamples: 3}
	body := block.EncodeHeader(hdr)
	body = append(body, []byte{1, 2, 3}...)
	without := append(body[:8:8], body[12:]...)
	crc := block.CRC32(without[:4], without[4:])
	binary.LittleEndian.PutUint32(body[8:12], crc)

	if err := block.VerifyCRC(body); err != nil {
		t.Fatalf("VerifyCRC on intact block: %v", err)
	}
	body[len(body)-1] ^= 0xFF
	if err := block.VerifyCRC(body); err != block.ErrInvalidBlock {
		t.Errorf("VerifyCRC on corrupted block = %v, want ErrInvalidBlock", err)
	}
}

func TestBlockFlagModeRoundTrip(t *testing.T) {
	for _, m := range []block.Mode{block.ModeRED, block.ModePRED, block.ModeMBE, block.ModeVDS} {
		var f block.BlockFlag
		f = f.WithMode(m)
		if got := f.Mode(); got != m {
			t.Errorf("WithMode(%v).Mode() = %v, want %v", m, got, m)
		}
	}
}

func TestBlockFlagModeIndependentOfOtherBits(t *testing.T) {
	f := block.FlagDetrended | block.FlagEncryptLevel2
	f = f.WithMode(block.ModeVDS)
	if f.Mode() != block.ModeVDS {
		t.Errorf("Mode() = %v, want ModeVDS", f.Mode())
	}
	if f.EncryptionLevel() != block.FlagEncryptLevel2 {
		t.Errorf("EncryptionLevel() = %v, want FlagEncryptLevel2", f.EncryptionLevel())
	}
	if f&block.FlagDetrended == 0 {
		t.Errorf("FlagDetrended bit lost after WithMode")
	}
}

func TestZigZagRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 1000, -1000, 1 << 40, -(1 << 40)} {
		u := block.ZigZagEncode(v)
		got := block.ZigZagDecode(u)
		if got != v {
			t.Errorf("ZigZagDecode(ZigZagEncode(%d)) = %d, want %d", v, got, v)
		}
	}
}

func TestVariableRegionEncodeDecodeSelectedFields(t *testing.T) {
	vr := block.VariableRegion{Gradient: 1.5, Intercept: -42}
	flags := block.ParamGradient | block.ParamIntercept
	raw := vr.Encode(flags)
	if len(raw) != 8 {
		t.Fatalf("len(Encode) = %d, want 8 (two 4-byte fields)", len(raw))
	}
	got, n, err := block.DecodeVariableRegion(raw, flags)
	if err != nil {
		t.Fatalf("DecodeVariableRegion: %v", err)
	}
	if n != 8 {
		t.Errorf("consumed %d bytes, want 8", n)
	}
	if got.Gradient != vr.Gradient || got.Intercept != vr.Intercept {
		t.Errorf("got %+v, want %+v", got, vr)
	}
}

func TestLinearTrendAndRemoveRestoreRoundTrip(t *testing.T) {
	samples := []int32{10, 20, 30, 40, 50}
	slope, intercept := block.LinearTrend(samples)
	detrended := block.RemoveTrend(samples, slope, intercept)
	restored := block.RestoreTrend(detrended, slope, intercept)
	for i := range samples {
		if restored[i] != samples[i] {
			t.Errorf("sample %d: restored = %d, want %d", i, restored[i], samples[i])
		}
	}
}

func TestMonotoneCubicSplinePassesThroughControlPoints(t *testing.T) {
	xs := []int{0, 5, 10}
	ys := []float64{0, 10, 0}
	out := block.MonotoneCubicSpline(xs, ys, 11)
	for i, x := range xs {
		if out[x] != ys[i] {
			t.Errorf("spline(%d) = %v, want control value %v", x, out[x], ys[i])
		}
	}
}

func TestMonotoneCubicSplineFlatOutsideRange(t *testing.T) {
	xs := []int{2, 4}
	ys := []float64{1, 2}
	out := block.MonotoneCubicSpline(xs, ys, 6)
	if out[0] != ys[0] || out[1] != ys[0] {
		t.Errorf("before first control point should hold flat at %v, got out[0]=%v out[1]=%v", ys[0], out[0], out[1])
	}
	if out[5] != ys[1] {
		t.Errorf("after last control point should hold flat at %v, got %v", ys[1], out[5])
	}
}

func TestRegistryGetUnknownCodec(t *testing.T) {
	if _, err := block.Get("NOT-A-REAL-CODEC"); err != block.ErrCodecNotFound {
		t.Errorf("err = %v, want ErrCodecNotFound", err)
	}
}
