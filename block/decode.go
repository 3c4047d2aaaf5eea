package block

// DecodeAny reads a block's header to discover which codec mode actually
// produced it (BlockFlags' mode bits, set by every codec's Encode) and
// dispatches to that codec via the default registry. Callers that already
// know the mode can call a specific package's Decode directly instead.
func DecodeAny(raw []byte) ([]int32, error) {
	hdr, err := DecodeHeader(raw)
	if err != nil {
		return nil, err
	}
	mode := BlockFlag(hdr.BlockFlags).Mode()
	codec, err := Get(mode.String())
	if err != nil {
		return nil, ErrUnknownAlgorithm
	}
	return codec.Decode(raw)
}
