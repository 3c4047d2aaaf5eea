// Package mbe implements MBE (minimal bit encoding): extrema are scanned to
// find the tightest bit width, and samples are packed into that width.
// Used when entropy coding has no room to improve — tiny blocks, or a
// saturated dynamic range.
package mbe

import (
	"encoding/binary"
	"math/bits"

	"github.com/neurotsdb/tsarc/block"
	"github.com/neurotsdb/tsarc/internal/bitio"
)

// UID is MBE's registry identifier.
const UID = "MBE"

func init() {
	block.Register(Codec{})
}

// Codec implements block.Codec for the MBE algorithm.
type Codec struct{}

func (Codec) Mode() block.Mode { return block.ModeMBE }
func (Codec) UID() string      { return UID }

// BitWidth returns the minimal unsigned bit width needed to represent every
// value of samples once shifted by its minimum.
func BitWidth(samples []int32) (min int32, width uint) {
	if len(samples) == 0 {
		return 0, 0
	}
	min, max := samples[0], samples[0]
	for _, s := range samples[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	span := uint64(int64(max) - int64(min))
	if span == 0 {
		return min, 0
	}
	return min, uint(bits.Len64(span))
}

// Encode packs samples at their minimal bit width.
func Encode(samples []int32, cps *block.ProcessingStruct) ([]byte, error) {
	if len(samples) == 0 {
		return nil, block.ErrInvalidParameter
	}
	min, width := BitWidth(samples)

	w := bitio.NewWriter()
	for _, s := range samples {
		w.WriteBits(uint64(uint32(s-min)), width)
	}
	payload := w.Bytes()

	modelRegion := make([]byte, 5)
	binary.LittleEndian.PutUint32(modelRegion[:4], uint32(min))
	modelRegion[4] = byte(width)

	hdr := block.Header{
		TotalHeaderBytes: block.HeaderBytes,
		ModelRegionBytes: uint16(len(modelRegion)),
		NumberOfSamples:  uint32(len(samples)),
	}
	hdr.BlockFlags = uint32(block.BlockFlag(hdr.BlockFlags).WithMode(block.ModeMBE))
	hdr.TotalBlockBytes = uint32(block.HeaderBytes) + uint32(len(modelRegion)) + uint32(len(payload))

	body := make([]byte, 0, int(hdr.TotalBlockBytes))
	body = append(body, block.EncodeHeader(hdr)...)
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
	off := block.HeaderBytes
	if off+5 > len(raw) {
		return nil, block.ErrBlockTooShort
	}
	min := int32(binary.LittleEndian.Uint32(raw[off:]))
	width := uint(raw[off+4])
	off += int(hdr.ModelRegionBytes)

	r := bitio.NewReader(raw[off:])
	samples := make([]int32, hdr.NumberOfSamples)
	for i := range samples {
		v := r.ReadBits(width)
		samples[i] = min + int32(uint32(v))
	}
	return samples, nil
}

func (Codec) Decode(raw []byte) ([]int32, error) {
	return Decode(raw)
}
