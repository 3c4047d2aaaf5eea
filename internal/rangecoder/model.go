package rangecoder

import "encoding/binary"

// NumBins is the fixed alphabet size of the statistics model: 255 regular
// symbols plus one escape bin.
const NumBins = 256

// EscapeBin is reserved for residuals that don't fit the regular symbol
// range; the escaped value follows as a raw little-endian 8-byte literal
// in the caller's payload stream.
const EscapeBin = NumBins - 1

// Model is a static (per-block) 256-bin cumulative-frequency table.
type Model struct {
	Freq [NumBins]uint32
	Cum  [NumBins + 1]uint32
	Tot  uint32
}

// NewModel builds a Model from symbol occurrence counts, applying +1
// Laplace smoothing so every bin (including ones absent from this block)
// carries strictly positive probability mass; a zero-frequency bin would
// make the coder's interval arithmetic divide by a zero range.
func NewModel(counts [NumBins]uint32) *Model {
	m := &Model{}
	var cum uint32
	for i := 0; i < NumBins; i++ {
		f := counts[i] + 1
		m.Freq[i] = f
		m.Cum[i] = cum
		cum += f
	}
	m.Cum[NumBins] = cum
	m.Tot = cum
	return m
}

// Find returns the bin whose [Cum[bin], Cum[bin+1]) interval contains f.
func (m *Model) Find(f uint32) int {
	lo, hi := 0, NumBins
	for lo+1 < hi {
		mid := (lo + hi) / 2
		if m.Cum[mid] <= f {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// MarshalCounts serializes the model's raw (pre-smoothing) occurrence
// counts, recovered as Freq-1 and capped at 0xFFFF, as the model region's
// per-bin count table, 2 bytes per bin.
func (m *Model) MarshalCounts() []byte {
	out := make([]byte, NumBins*2)
	for i := 0; i < NumBins; i++ {
		c := m.Freq[i] - 1
		if c > 0xFFFF {
			c = 0xFFFF
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(c))
	}
	return out
}

// UnmarshalModel rebuilds a Model from a serialized count table.
func UnmarshalModel(data []byte) (*Model, error) {
	if len(data) < NumBins*2 {
		return nil, ErrShortModel
	}
	var counts [NumBins]uint32
	for i := 0; i < NumBins; i++ {
		counts[i] = uint32(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return NewModel(counts), nil
}

// HistogramSize is the encoded byte length of a serialized model.
const HistogramSize = NumBins * 2
