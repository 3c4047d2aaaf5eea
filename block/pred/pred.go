// Package pred implements PRED (predictive RED): the residual stream is
// partitioned into three categories by the immediately prior sample's sign
// class (negative/zero/positive), each category carrying its own
// statistics model, interleaved so decode proceeds sample-by-sample.
package pred

import (
	"encoding/binary"

	"github.com/neurotsdb/tsarc/block"
	"github.com/neurotsdb/tsarc/internal/rangecoder"
)

// UID is PRED's registry identifier.
const UID = "PRED"

func init() {
	block.Register(Codec{})
}

// Codec implements block.Codec for the PRED algorithm.
type Codec struct{}

func (Codec) Mode() block.Mode { return block.ModePRED }
func (Codec) UID() string      { return UID }

const numCategories = 3

// category classifies the prior raw sample's sign: 0=negative, 1=zero, 2=positive.
func category(prior int32) int {
	switch {
	case prior < 0:
		return 0
	case prior > 0:
		return 2
	default:
		return 1
	}
}

// Encode range-encodes first-difference residuals, categorized by the
// immediately prior sample's sign.
func Encode(samples []int32, cps *block.ProcessingStruct) ([]byte, error) {
	if len(samples) == 0 {
		return nil, block.ErrInvalidParameter
	}

	working := samples
	var flags block.ParamFlag
	var vr block.VariableRegion
	if cps != nil && cps.Directives.Detrend {
		slope, intercept := block.LinearTrend(samples)
		working = block.RemoveTrend(samples, slope, intercept)
		flags |= block.ParamGradient | block.ParamIntercept
		vr.Gradient = float32(slope)
		vr.Intercept = int32(intercept)
	}

	symbols := make([]byte, len(working))
	cats := make([]int, len(working))
	var literals []byte
	var counts [numCategories][rangecoder.NumBins]uint32
	var prev int64
	var priorRaw int32
	for i, s := range working {
		cat := category(priorRaw)
		cats[i] = cat
		d := int64(s) - prev
		prev = int64(s)
		priorRaw = s
		zz := block.ZigZagEncode(d)
		if zz < rangecoder.EscapeBin {
			symbols[i] = byte(zz)
		} else {
			symbols[i] = rangecoder.EscapeBin
			var lit [8]byte
			binary.LittleEndian.PutUint64(lit[:], uint64(d))
			literals = append(literals, lit[:]...)
		}
		counts[cat][symbols[i]]++
	}

	var models [numCategories]*rangecoder.Model
	for c := 0; c < numCategories; c++ {
		models[c] = rangecoder.NewModel(counts[c])
	}

	enc := rangecoder.NewEncoder()
	for i, sym := range symbols {
		m := models[cats[i]]
		enc.Encode(m.Cum[sym], m.Freq[sym], m.Tot)
	}
	coded := enc.Flush()

	modelRegion := make([]byte, 0, numCategories*rangecoder.HistogramSize)
	for c := 0; c < numCategories; c++ {
		modelRegion = append(modelRegion, models[c].MarshalCounts()...)
	}

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
	hdr.BlockFlags = uint32(block.BlockFlag(hdr.BlockFlags).WithMode(block.ModePRED))
	variable := vr.Encode(flags)
	hdr.TotalBlockBytes = uint32(block.HeaderBytes) + uint32(len(variable)) + uint32(len(modelRegion)) + uint32(len(payload))

	body := make([]byte, 0, int(hdr.TotalBlockBytes))
	body = append(body, block.EncodeHeader(hdr)...)
	body = append(body, variable...)
	body = append(body, modelRegion...)
	body = append(body, payload...)

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
	if modelEnd > len(raw) || int(hdr.ModelRegionBytes) != numCategories*rangecoder.HistogramSize {
		return nil, block.ErrBlockTooShort
	}
	var models [numCategories]*rangecoder.Model
	for c := 0; c < numCategories; c++ {
		m, err := rangecoder.UnmarshalModel(raw[off+c*rangecoder.HistogramSize:])
		if err != nil {
			return nil, err
		}
		models[c] = m
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
	var priorRaw int32
	litPos := 0
	for i := range samples {
		m := models[category(priorRaw)]
		f := dec.GetFreq(m.Tot)
		sym := m.Find(f)
		dec.Decode(m.Cum[sym], m.Freq[sym])

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
		priorRaw = samples[i]
	}

	if block.ParamFlag(hdr.ParameterFlags)&block.ParamGradient != 0 {
		samples = block.RestoreTrend(samples, float64(vr.Gradient), float64(vr.Intercept))
	}
	return samples, nil
}

func (Codec) Decode(raw []byte) ([]int32, error) {
	return Decode(raw)
}
