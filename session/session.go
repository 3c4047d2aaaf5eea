package session

import "github.com/google/uuid"

// Session is an ordered set of channels plus session-wide metadata. One
// channel is designated the reference channel; its sampling frequency
// defines the canonical time-to-sample mapping for sample-based slices
// when the session is heterogeneous.
type Session struct {
	// ID is a process-local correlation identifier, not a wire-format
	// field: it exists so logs and PartialMatrixError reports from the
	// same Open call can be tied together without threading a request
	// context through every call site.
	ID               string
	Channels         []*Channel
	ReferenceChannel *Channel
	opener           FileOpener
}

// Open builds a Session from channels already resolved by the caller
// (path-to-channel mapping and per-channel metadata reading are callers'
// responsibility; this package owns only the in-memory hierarchy and its
// slice/segment/contiguon bookkeeping). opener backs lazy segment opens.
func Open(channels []*Channel, reference *Channel, opener FileOpener) (*Session, error) {
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	return &Session{ID: uuid.NewString(), Channels: channels, ReferenceChannel: reference, opener: opener}, nil
}

// ActiveChannels returns the subset of s.Channels with Active set, in
// their original order.
func (s *Session) ActiveChannels() []*Channel {
	out := make([]*Channel, 0, len(s.Channels))
	for _, c := range s.Channels {
		if c.Active {
			out = append(out, c)
		}
	}
	return out
}

// ResolveSegmentRange conditions slice if needed and returns the inclusive
// segment index range on ch that the slice intersects. A sample-based
// slice's bounds are in reference-channel samples and are rescaled to ch's
// samples when ch's own rate differs from the reference channel's; a
// time-based slice is matched against segment times directly.
func (s *Session) ResolveSegmentRange(ch *Channel, slice *Slice) (start, end int, err error) {
	if err := slice.Condition(); err != nil {
		return -1, -1, err
	}
	switch slice.Mode {
	case SliceBySample:
		startSample, endSample := slice.StartSample, slice.EndSample
		if s.ReferenceChannel != nil && ch != s.ReferenceChannel && ch.SamplingFrequency != s.ReferenceChannel.SamplingFrequency {
			if s.ReferenceChannel.SamplingFrequency == 0 {
				return -1, -1, ErrNoReferenceChannel
			}
			ratio := ch.SamplingFrequency / s.ReferenceChannel.SamplingFrequency
			startSample = int64(float64(startSample) * ratio)
			endSample = int64(float64(endSample) * ratio)
		}
		start, end = ch.SegmentRange(startSample, endSample)
	case SliceByTime:
		start, end = ch.SegmentRangeByTime(slice.StartTime, slice.EndTime)
	default:
		return -1, -1, ErrInvalidSlice
	}
	return start, end, nil
}

// OpenSegments opens every segment in ch's inclusive [start, end] index
// range via the session's FileOpener.
func (s *Session) OpenSegments(ch *Channel, start, end int) error {
	for i := start; i <= end; i++ {
		if err := ch.Segments[i].Open(s.opener); err != nil {
			return err
		}
	}
	return nil
}
