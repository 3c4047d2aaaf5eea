package matrix

import (
	"math"

	"github.com/neurotsdb/tsarc/session"
)

// resolveExtent derives the output (sample count, sampling frequency) pair
// from req's fixed fields and, when needed, the slice's duration. Exactly
// one of sample count or frequency is authoritative per ExtentMode; the
// other is computed. SampCount derives frequency from the slice's
// duration; SampFreq derives count as
// ceil(duration_seconds * sampling_frequency); CountAndFreq fixes both
// and is incompatible with NaN/zero discontinuity fill.
func resolveExtent(sess *session.Session, slice *session.Slice, req Request) (sampleCount int, samplingFreq float64, err error) {
	if req.ExtentMode == ExtentCountAndFreq && (req.DiscontinuityMode == DiscontinuityNaN || req.DiscontinuityMode == DiscontinuityZero) {
		return 0, 0, ErrCountAndFreqIncompatible
	}

	durationSec, err := sliceDurationSeconds(sess, slice)
	if err != nil {
		return 0, 0, err
	}

	switch req.ExtentMode {
	case ExtentSampCount:
		sampleCount = req.SampleCount
		if durationSec > 0 && sampleCount > 1 {
			samplingFreq = float64(sampleCount-1) / durationSec
		}
		return sampleCount, samplingFreq, nil
	case ExtentSampFreq:
		samplingFreq = req.SamplingFrequency
		sampleCount = int(math.Ceil(durationSec * samplingFreq))
		return sampleCount, samplingFreq, nil
	case ExtentCountAndFreq:
		return req.SampleCount, req.SamplingFrequency, nil
	default:
		return 0, 0, ErrUnknownFlag
	}
}

// sliceDurationSeconds converts slice's bounds to a duration in seconds,
// using the reference channel's sampling frequency to translate a
// sample-based slice.
func sliceDurationSeconds(sess *session.Session, slice *session.Slice) (float64, error) {
	if err := slice.Condition(); err != nil {
		return 0, err
	}
	switch slice.Mode {
	case session.SliceByTime:
		return float64(slice.EndTime-slice.StartTime) / 1e6, nil
	case session.SliceBySample:
		if sess.ReferenceChannel == nil || sess.ReferenceChannel.SamplingFrequency == 0 {
			return 0, session.ErrNoReferenceChannel
		}
		samples := float64(slice.EndSample - slice.StartSample)
		return samples / sess.ReferenceChannel.SamplingFrequency, nil
	default:
		return 0, ErrInvalidSlice
	}
}
