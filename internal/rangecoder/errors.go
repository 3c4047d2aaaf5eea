package rangecoder

import "errors"

// ErrShortModel is returned when a serialized model region is shorter than
// HistogramSize.
var ErrShortModel = errors.New("rangecoder: model region too short")
