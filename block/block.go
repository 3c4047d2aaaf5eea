package block

// Mode identifies one of the four block codec algorithms.
type Mode uint8

const (
	// ModeRED is range-encoded residuals: a single differenced stream
	// entropy-coded against an at-most-256-bin statistics model.
	ModeRED Mode = iota
	// ModePRED is predictive RED: residuals are partitioned into
	// sign-class categories, each with its own statistics model.
	ModePRED
	// ModeMBE is minimal bit encoding: samples packed at a fixed bit
	// width derived from the block's extrema.
	ModeMBE
	// ModeVDS is the variable-density sampler: a lossy anchor-point
	// codec reconstructed by a monotone cubic spline.
	ModeVDS
)

func (m Mode) String() string {
	switch m {
	case ModeRED:
		return "RED"
	case ModePRED:
		return "PRED"
	case ModeMBE:
		return "MBE"
	case ModeVDS:
		return "VDS"
	default:
		return "UNKNOWN"
	}
}

// AmplitudeScaleGoal selects the bisection strategy used when
// Directives.FindAmplitudeScale is set.
type AmplitudeScaleGoal uint8

const (
	// GoalMeanResidualRatio iterates the amplitude scale by bisection
	// against a target mean-residual ratio.
	GoalMeanResidualRatio AmplitudeScaleGoal = iota
	// GoalCompressionRatio iterates the amplitude scale by proportional
	// update against a target compression ratio.
	GoalCompressionRatio
)

// ResetDiscontinuityPolicy controls whether a block boundary that
// coincides with a recording discontinuity resets per-channel state
// (e.g. the differencing predictor) in addition to setting the
// discontinuity flag.
type ResetDiscontinuityPolicy uint8

const (
	ResetOnDiscontinuity ResetDiscontinuityPolicy = iota
	NeverReset
)

// Directives selects codec behavior independent of any single block's data.
type Directives struct {
	Algorithm            Mode
	Detrend              bool
	SetAmplitudeScale    bool
	FindAmplitudeScale   bool
	AmplitudeScaleGoal   AmplitudeScaleGoal
	RequireNormality     bool
	ResetDiscontinuity   ResetDiscontinuityPolicy
}

// Parameters carries the numeric knobs that feed the four codec modes.
type Parameters struct {
	AmplitudeScale      float64
	FrequencyScale      float64
	VDSThreshold        float64 // user-facing scalar, 0..10
	VDSLFPHighFc        float64 // Hz; 0 disables the optional LFP low-pass stage
	SamplingFrequency   float64 // Hz; required for VDSLFPHighFc to take effect
	GoalRatio           float64
	GoalTolerance       float64
	MaximumGoalAttempts int
	MinimumNormality    float64
}

// DefaultParameters returns the conservative defaults used when a caller
// does not override them.
func DefaultParameters() Parameters {
	return Parameters{
		AmplitudeScale:      1.0,
		FrequencyScale:      1.0,
		VDSThreshold:        0,
		VDSLFPHighFc:        0,
		SamplingFrequency:   0,
		GoalRatio:           2.0,
		GoalTolerance:       0.05,
		MaximumGoalAttempts: 20,
		MinimumNormality:    0.9,
	}
}

// ProcessingStruct is the compression processing state threaded through
// one encode call: directives plus parameters.
//
// NOTE: the VDS encoder may mutate Directives.Algorithm (and the emitted
// header's flags) in place when it falls through to PRED or MBE. Callers
// that reuse one ProcessingStruct across many blocks inherit that change,
// so a caller that picks each block's codec from Directives.Algorithm
// sends later blocks straight to the fallback; vds.Encode itself does not
// read Directives.Algorithm.
type ProcessingStruct struct {
	Directives Directives
	Parameters Parameters
}

// NewProcessingStruct builds a ProcessingStruct with default parameters and
// the given algorithm selected.
func NewProcessingStruct(algorithm Mode) *ProcessingStruct {
	return &ProcessingStruct{
		Directives: Directives{Algorithm: algorithm},
		Parameters: DefaultParameters(),
	}
}

// Codec is the universal interface implemented by each of the four block
// codec modes.
type Codec interface {
	// Encode compresses samples into one self-describing block, using cps
	// to select directives and parameters. It returns the fully encoded
	// block (header + model region + payload).
	Encode(samples []int32, cps *ProcessingStruct) ([]byte, error)

	// Decode inverts Encode. CRC, length, and algorithm-mismatch checks
	// happen before any mode-specific decoding.
	Decode(raw []byte) ([]int32, error)

	// Mode reports which of the four algorithms this codec implements.
	Mode() Mode

	// UID returns a short string identifier, registered alongside Mode's
	// name in the package registry.
	UID() string
}
