package matrix

// ElementType selects the matrix's cell representation. A tagged variant
// rather than a union-style base pointer: callers switch on Type and use
// the matching typed accessor instead of reinterpreting raw bytes.
type ElementType uint8

const (
	Si2 ElementType = iota
	Si4
	F32
	F64
)

// Sentinel values used by NaN/zero discontinuity fill, one per ElementType.
const (
	sentinelSi2 = int16(-32768) // 0x8000
	sentinelSi4 = int32(-2147483648) // 0x80000000
)

// Layout selects how (channel, sample) cells map onto the flat buffer.
type Layout uint8

const (
	ChannelMajor Layout = iota
	SampleMajor
)

// ExtentMode selects which pair of {sample_count, sampling_frequency} the
// caller fixes; the other is derived.
type ExtentMode uint8

const (
	ExtentSampCount ExtentMode = iota
	ExtentSampFreq
	ExtentCountAndFreq
)

// FilterMode selects the band-limiting stage of the worker pipeline.
type FilterMode uint8

const (
	FilterNone FilterMode = iota
	FilterAntiAlias
	FilterLowpass
	FilterHighpass
	FilterBandpass
	FilterBandstop
)

// ResampleMode selects the interpolation/binning stage of the worker
// pipeline.
type ResampleMode uint8

const (
	// ResampleAuto picks ResampleSpline when the upsample ratio is >= 3.0,
	// ResampleLinear otherwise.
	ResampleAuto ResampleMode = iota
	ResampleSpline
	ResampleLinear
	ResampleMidpoint
	ResampleMean
	ResampleMedian
)

// DiscontinuityMode selects how gaps in source coverage are rendered into
// the output matrix.
type DiscontinuityMode uint8

const (
	DiscontinuityNone DiscontinuityMode = iota
	DiscontinuityContig
	DiscontinuityNaN
	DiscontinuityZero
)

// Buffer is a tagged, typed backing store for one matrix. Exactly one of
// the four slices is non-nil, selected by Type.
type Buffer struct {
	Type ElementType
	Si2  []int16
	Si4  []int32
	F32  []float32
	F64  []float64
}

// NewBuffer allocates a zeroed Buffer of the given type and length.
func NewBuffer(t ElementType, n int) (*Buffer, error) {
	b := &Buffer{Type: t}
	switch t {
	case Si2:
		b.Si2 = make([]int16, n)
	case Si4:
		b.Si4 = make([]int32, n)
	case F32:
		b.F32 = make([]float32, n)
	case F64:
		b.F64 = make([]float64, n)
	default:
		return nil, ErrUnsupportedElementType
	}
	return b, nil
}

// Len returns the buffer's element count, regardless of Type.
func (b *Buffer) Len() int {
	switch b.Type {
	case Si2:
		return len(b.Si2)
	case Si4:
		return len(b.Si4)
	case F32:
		return len(b.F32)
	case F64:
		return len(b.F64)
	default:
		return 0
	}
}

// SetFloat casts v into the buffer's element type and stores it at i.
func (b *Buffer) SetFloat(i int, v float64) {
	switch b.Type {
	case Si2:
		b.Si2[i] = int16(v)
	case Si4:
		b.Si4[i] = int32(v)
	case F32:
		b.F32[i] = float32(v)
	case F64:
		b.F64[i] = v
	}
}

// FillSentinel broadcasts the type-appropriate discontinuity sentinel
// across the whole buffer (NaN for floats, 0x8000/0x80000000 for integer
// types), using a typed loop in place of a raw memset.
func (b *Buffer) FillSentinel() {
	switch b.Type {
	case Si2:
		for i := range b.Si2 {
			b.Si2[i] = sentinelSi2
		}
	case Si4:
		for i := range b.Si4 {
			b.Si4[i] = sentinelSi4
		}
	case F32:
		nan := float32(nan64())
		for i := range b.F32 {
			b.F32[i] = nan
		}
	case F64:
		n := nan64()
		for i := range b.F64 {
			b.F64[i] = n
		}
	}
}

func nan64() float64 {
	var z float64
	return z / z // canonical NaN without importing math just for this
}

// Matrix is the caller-facing (channel, sample) view assembled by
// GetMatrix.
type Matrix struct {
	Data         *Buffer
	Layout       Layout
	ChannelCount int
	SampleCount  int
	SamplingFreq float64

	// Channels carries, in order, the name of each row/column the matrix
	// was assembled for.
	Channels []string

	// Valid marks, per channel, whether its worker succeeded. A channel
	// worker failure leaves its cells at whatever the allocator supplied.
	Valid []bool

	// TraceMaxima and TraceMinima, when trace-extrema was requested,
	// carry one entry per channel.
	TraceMaxima []float64
	TraceMinima []float64

	// Contiguons, when DiscontinuityMode == DiscontinuityContig, carries
	// one list per channel, rewritten into matrix sample coordinates.
	Contiguons [][]Contiguon

	// RangeLo and RangeHi, when range tracing was requested, carry one
	// per-sample bin-min/bin-max trace per channel, computed at the
	// output grid resolution alongside the main resample.
	RangeLo [][]float64
	RangeHi [][]float64
}

// Contiguon is a maximal run of valid samples, reported in matrix sample
// coordinates as an inclusive [Start, End] range.
type Contiguon struct {
	Start int
	End   int
}

// index returns the flat offset of (channel, sample) under m's layout.
func (m *Matrix) index(channel, sample int) int {
	if m.Layout == ChannelMajor {
		return channel*m.SampleCount + sample
	}
	return sample*m.ChannelCount + channel
}
