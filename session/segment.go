package session

import (
	"encoding/binary"
	"io"

	"github.com/neurotsdb/tsarc/block"
)

// FileOpener is the single I/O seam the session model depends on: given a
// path, return a readable, seekable handle. Production callers
// back this with the filesystem; tests back it with an in-memory map.
type FileOpener interface {
	Open(path string) (io.ReadSeeker, error)
}

// Segment is a contiguous run of blocks sharing acquisition parameters.
// Its data and index files are opened lazily on first slice intersection
// and remain resident afterward.
type Segment struct {
	StartTime   int64 // microseconds UTC
	EndTime     int64
	StartSample int64
	EndSample   int64

	DataPath  string
	IndexPath string

	opened bool
	data   io.ReadSeeker
	index  io.ReadSeeker
}

// Open lazily opens the segment's data and index files through opener. A
// second call is a no-op: segments remain resident once opened.
func (s *Segment) Open(opener FileOpener) error {
	if s.opened {
		return nil
	}
	data, err := opener.Open(s.DataPath)
	if err != nil {
		return ErrSegmentOpenFailed
	}
	var index io.ReadSeeker
	if s.IndexPath != "" {
		index, err = opener.Open(s.IndexPath)
		if err != nil {
			return ErrSegmentOpenFailed
		}
	}
	s.data = data
	s.index = index
	s.opened = true
	return nil
}

// DecodeSamples reads every block in the segment's data file, in order,
// decoding each via block.DecodeAny and concatenating the results. The
// segment must already be open. The data file is a straight concatenation
// of self-describing blocks; the index file is consulted by callers that
// need random access to a sub-range rather than the whole segment.
func (s *Segment) DecodeSamples() ([]int32, error) {
	if !s.opened {
		return nil, ErrSegmentOpenFailed
	}
	if _, err := s.data.Seek(0, io.SeekStart); err != nil {
		return nil, ErrShortRead
	}

	var out []int32
	header := make([]byte, block.HeaderBytes)
	for {
		if _, err := io.ReadFull(s.data, header); err != nil {
			if err == io.EOF {
				break
			}
			return nil, ErrShortRead
		}
		total := binary.LittleEndian.Uint32(header[12:16])
		if total < uint32(block.HeaderBytes) {
			return nil, ErrShortRead
		}
		raw := make([]byte, total)
		copy(raw, header)
		if _, err := io.ReadFull(s.data, raw[block.HeaderBytes:]); err != nil {
			return nil, ErrShortRead
		}
		samples, err := block.DecodeAny(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, samples...)
	}
	return out, nil
}

// Intersects reports whether the segment overlaps the given closed sample
// range.
func (s *Segment) Intersects(startSample, endSample int64) bool {
	return s.StartSample <= endSample && s.EndSample >= startSample
}

// IntersectsTime reports whether the segment overlaps the given closed
// time range.
func (s *Segment) IntersectsTime(startTime, endTime int64) bool {
	return s.StartTime <= endTime && s.EndTime >= startTime
}

// Channel is an ordered list of segments sharing acquisition parameters.
type Channel struct {
	Name     string
	Active   bool
	Segments []*Segment

	SamplingFrequency      float64 // Hz
	AmplitudeUnitsPerCount float64
	ReferenceDescription   string
}

// UnknownSegmentCount marks a channel whose segment count has not yet been
// resolved against a slice. Channel holds no cached segment count; its
// Segments slice is walked on every resolution.
const UnknownSegmentCount = -1

// SegmentRange returns the inclusive [start, end] segment indices that
// intersect the given sample range, or (-1, -1) if none do.
func (c *Channel) SegmentRange(startSample, endSample int64) (start, end int) {
	start, end = -1, -1
	for i, seg := range c.Segments {
		if seg.Intersects(startSample, endSample) {
			if start == -1 {
				start = i
			}
			end = i
		}
	}
	return start, end
}

// SegmentRangeByTime is SegmentRange's time-based twin.
func (c *Channel) SegmentRangeByTime(startTime, endTime int64) (start, end int) {
	start, end = -1, -1
	for i, seg := range c.Segments {
		if seg.IntersectsTime(startTime, endTime) {
			if start == -1 {
				start = i
			}
			end = i
		}
	}
	return start, end
}
