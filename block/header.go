package block

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
)

// HeaderBytes is the fixed, 8-byte-aligned size of the on-disk block header.
const HeaderBytes = 48

// ParamFlag selects which optional fields are present in the variable region,
// in the canonical order: AmplitudeScale, FrequencyScale, Gradient, Intercept.
type ParamFlag uint32

const (
	ParamAmplitudeScale ParamFlag = 1 << iota
	ParamFrequencyScale
	ParamGradient
	ParamIntercept
)

// BlockFlag carries per-block boolean state, including the encryption level
// (bits 0-1) and the discontinuity bit: a set discontinuity bit means this
// block starts a new contiguon.
type BlockFlag uint32

const (
	FlagEncryptNone      BlockFlag = 0
	FlagEncryptLevel1    BlockFlag = 1
	FlagEncryptLevel2    BlockFlag = 2
	flagEncryptionMask   BlockFlag = 0x3
	FlagDiscontinuity    BlockFlag = 1 << 2
	FlagDetrended        BlockFlag = 1 << 3
	FlagAmplitudeScaled  BlockFlag = 1 << 4
	FlagFrequencyScaled  BlockFlag = 1 << 5
	// FlagVDSFallthrough marks a block whose ProcessingStruct requested VDS
	// but which was actually encoded by PRED or MBE, because the threshold
	// was zero, the segment was too short, or the reconstruction failed a
	// normality check.
	FlagVDSFallthrough BlockFlag = 1 << 6

	flagModeShift = 7
	flagModeMask  BlockFlag = 0x3 << flagModeShift
)

// EncryptionLevel returns the encryption level encoded in the low two bits.
func (f BlockFlag) EncryptionLevel() BlockFlag { return f & flagEncryptionMask }

// Mode returns the codec mode actually used to produce this block, encoded
// in bits 7-8 so decode can dispatch without external channel metadata:
// every block is fully self-describing.
func (f BlockFlag) Mode() Mode { return Mode((f & flagModeMask) >> flagModeShift) }

// WithMode returns f with its mode bits set to m.
func (f BlockFlag) WithMode(m Mode) BlockFlag {
	return (f &^ flagModeMask) | (BlockFlag(m) << flagModeShift)
}

// Header is the fixed-size region every block begins with.
type Header struct {
	StartUID                uint64
	CRC                      uint32
	TotalBlockBytes          uint32
	TotalHeaderBytes         uint16
	ModelRegionBytes         uint16
	NumberOfSamples          uint32
	StartTime                int64
	AcquisitionChannelNumber int32
	ParameterFlags           uint32
	BlockFlags               uint32
	ProtectedRegionBytes     uint16
	DiscretionaryRegionBytes uint16
}

// headerWire is the exact on-disk byte layout, little-endian.
type headerWire struct {
	StartUID                 uint64
	CRC                       uint32
	TotalBlockBytes           uint32
	TotalHeaderBytes          uint16
	ModelRegionBytes          uint16
	NumberOfSamples           uint32
	StartTime                 int64
	AcquisitionChannelNumber  int32
	ParameterFlags            uint32
	BlockFlags                uint32
	ProtectedRegionBytes      uint16
	DiscretionaryRegionBytes  uint16
}

// EncodeHeader writes h in canonical little-endian wire format.
func EncodeHeader(h Header) []byte {
	w := headerWire{
		StartUID:                 h.StartUID,
		CRC:                      h.CRC,
		TotalBlockBytes:          h.TotalBlockBytes,
		TotalHeaderBytes:         h.TotalHeaderBytes,
		ModelRegionBytes:         h.ModelRegionBytes,
		NumberOfSamples:          h.NumberOfSamples,
		StartTime:                h.StartTime,
		AcquisitionChannelNumber: h.AcquisitionChannelNumber,
		ParameterFlags:           h.ParameterFlags,
		BlockFlags:               h.BlockFlags,
		ProtectedRegionBytes:     h.ProtectedRegionBytes,
		DiscretionaryRegionBytes: h.DiscretionaryRegionBytes,
	}
	buf := new(bytes.Buffer)
	buf.Grow(HeaderBytes)
	_ = binary.Write(buf, binary.LittleEndian, &w)
	return buf.Bytes()
}

// DecodeHeader parses a fixed-size header from raw. raw must be at least
// HeaderBytes long, or ErrBlockTooShort is returned.
func DecodeHeader(raw []byte) (Header, error) {
	if len(raw) < HeaderBytes {
		return Header{}, ErrBlockTooShort
	}
	var w headerWire
	if err := binary.Read(bytes.NewReader(raw[:HeaderBytes]), binary.LittleEndian, &w); err != nil {
		return Header{}, err
	}
	return Header{
		StartUID:                 w.StartUID,
		CRC:                      w.CRC,
		TotalBlockBytes:          w.TotalBlockBytes,
		TotalHeaderBytes:         w.TotalHeaderBytes,
		ModelRegionBytes:         w.ModelRegionBytes,
		NumberOfSamples:          w.NumberOfSamples,
		StartTime:                w.StartTime,
		AcquisitionChannelNumber: w.AcquisitionChannelNumber,
		ParameterFlags:           w.ParameterFlags,
		BlockFlags:               w.BlockFlags,
		ProtectedRegionBytes:     w.ProtectedRegionBytes,
		DiscretionaryRegionBytes: w.DiscretionaryRegionBytes,
	}, nil
}

// CRC32 computes the block's CRC over every byte except the CRC field
// itself (the header's CRC slot is excluded from its own checksum).
func CRC32(headerWithoutCRC, rest []byte) uint32 {
	h := crc32.NewIEEE()
	h.Write(headerWithoutCRC)
	h.Write(rest)
	return h.Sum32()
}

// VerifyCRC recomputes the CRC over a full encoded block (header + model
// region + payload) and compares it against the header's stored value.
func VerifyCRC(full []byte) error {
	if len(full) < HeaderBytes {
		return ErrBlockTooShort
	}
	hdr, err := DecodeHeader(full)
	if err != nil {
		return err
	}
	// CRC covers StartUID at [0:8] and everything from [12:]; only the CRC
	// field itself, at [8:12], is excluded.
	without := make([]byte, 0, len(full)-4)
	without = append(without, full[:8]...)
	without = append(without, full[12:]...)
	if crc32.ChecksumIEEE(without) != hdr.CRC {
		return ErrInvalidBlock
	}
	return nil
}
