// Package red implements RED (range-encoded residuals): a single-pass
// differenced stream entropy-coded against a statistics model of at most
// 256 bins. Package layout follows the one-Codec-per-file, register-via-
// init() convention used throughout this module's codec implementations.
package red

import (
	"encoding/binary"

	"github.com/neurotsdb/tsarc/block"
	"github.com/neurotsdb/tsarc/internal/rangecoder"
)

// UID is RED's registry identifier.
const UID = "RED"

func init() {
	block.Register(Codec{})
}

// Codec implements block.Codec for the RED algorithm.
type Codec struct{}

func (Codec) Mode() block.Mode { return block.ModeRED }
func (Codec) UID() string      { return UID }

// Encode range-encodes the first-difference residuals of samples.
func Encode(samples []int32, cps *block.ProcessingStruct) ([]byte, error) {
	if len(samples) == 0 {
		return nil, block.ErrInvalidParameter
	}

	working := samples
	var flags block.ParamFlag
	var vr block.VariableRegion
	var slope, intercept float64
	if cps != nil && cps.Directives.Detrend {
		slope, intercept = block.LinearTrend(samples)
		working = block.RemoveTrend(samples, slope, intercept)
		flags |= block.ParamGradient | block.ParamIntercept
		vr.Gradient = float32(slope)
		vr.Intercept = int32(intercept)
	}

	symbols := make([]byte, len(working))
	var literals []byte
	var counts [rangecoder.NumBins]uint32
	var prev int64
	for i, s := range working {
		d := int64(s) - prev
		prev = int64(s)
		zz := block.ZigZagEncode(d)
		if zz < rangecoder.EscapeBin {
			symbols[i] = byte(zz)
		} else {
			symbols[i] = rangecoder.EscapeBin
			var lit [8]byte
			binary.LittleEndian.PutUint64(lit[:], uint64(d))
			literals = append(literals, lit[:]...)
		}
		counts[symbols[i]]++
	}

	model := rangecoder.NewModel(counts)
	enc := rangecoder.NewEncoder()
	for _, sym := range symbols {
		enc.Encode(model.Cum[sym], model.Freq[sym], model.Tot)
	}
	coded := enc.Flush()

	modelRegion := model.MarshalCounts()

	payload := make([]byte, 0, 4+len(literals)+len(coded))
	var litCount [4]byte
	binary.LittleEndian.PutUint32(litCount[:], uint32(len(literals)/8))
	payload = append(payload, litCount[:]...)
	payload = append(payload, literals...)
	payload = append(payload, coded...)

	hdr := block.Header{
		TotalHeaderBytes: block.HeaderBytes,
		ModelRegionBytes: uint16(len(modelRegion)),
		NumberOfSamples:  uint32(len(samples)),
		ParameterFlags:   uint32(flags),
	}
	if cps != nil && cps.Directives.Detrend {
		hdr.BlockFlags |= uint32(block.FlagDetrended)
	}
	hdr.BlockFlags = uint32(block.BlockFlag(hdr.BlockFlags).WithMode(block.ModeRED))
	variable := vr.Encode(flags)
	hdr.TotalBlockBytes = uint32(block.HeaderBytes) + uint32(len(variable)) + uint32(len(modelRegion)) + uint32(len(payload))

	body := make([]byte, 0, int(hdr.TotalBlockBytes))
	body = append(body, block.EncodeHeader(hdr)...)
	body = append(body, variable...)
	body = append(body, modelRegion...)
	body = append(body, payload...)

	// CRC covers every byte of the block except the CRC field itself.
	without := append(body[:8:8], body[12:]...)
	hdr.CRC = block.CRC32(without[:4], without[4:])
	binary.LittleEndian.PutUint32(body[8:12], hdr.CRC)

	return body, nil
}

func (Codec) Encode(samples []int32, cps *block.ProcessingStruct) ([]byte, error) {
	return Encode(samples, cps)
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
	if modelEnd > len(raw) {
		return nil, block.ErrBlockTooShort
	}
	model, err := rangecoder.UnmarshalModel(raw[off:modelEnd])
	if err != nil {
		return nil, err
	}
	off = modelEnd

	if off+4 > len(raw) {
		return nil, block.ErrBlockTooShort
	}
	litCount := binary.LittleEndian.Uint32(raw[off:])
	off += 4
	litEnd := off + int(litCount)*8
	if litEnd > len(raw) {
		return nil, block.ErrBlockTooShort
	}
	literals := raw[off:litEnd]
	coded := raw[litEnd:hdr.TotalBlockBytes]

	dec := rangecoder.NewDecoder(coded)
	samples := make([]int32, hdr.NumberOfSamples)
	var prev int64
	litPos := 0
	for i := range samples {
		f := dec.GetFreq(model.Tot)
		sym := model.Find(f)
		dec.Decode(model.Cum[sym], model.Freq[sym])

		var d int64
		if sym == rangecoder.EscapeBin {
			if litPos+8 > len(literals) {
				return nil, block.ErrBlockTooShort
			}
			d = int64(binary.LittleEndian.Uint64(literals[litPos:]))
			litPos += 8
		} else {
			d = block.ZigZagDecode(uint64(sym))
		}
		prev += d
		samples[i] = int32(prev)
	}

	if block.ParamFlag(hdr.ParameterFlags)&block.ParamGradient != 0 {
		samples = block.RestoreTrend(samples, float64(vr.Gradient), float64(vr.Intercept))
	}
	return samples, nil
}

func (Codec) Decode(raw []byte) ([]int32, error) {
	return Decode(raw)
}
