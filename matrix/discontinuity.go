package matrix

// renderDiscontinuities applies the NaN/zero-fill discontinuity modes:
// broadcast the sentinel across the whole matrix, then copy each valid
// channel's per-contiguon ranges over it, leaving gaps at the sentinel.
// CONTIG and NONE need no action here — CONTIG's cells were already
// placed directly by the controller loop, with its rewritten contiguon
// list attached to the matrix for the caller to consult; NONE places the
// full resampled trace with no sentinel at all.
func renderDiscontinuities(m *Matrix, req Request, results []channelResult) error {
	if req.DiscontinuityMode != DiscontinuityNaN && req.DiscontinuityMode != DiscontinuityZero {
		return nil
	}

	m.Data.FillSentinel()
	for i, res := range results {
		if !m.Valid[i] {
			continue
		}
		for _, c := range res.contiguons {
			for s := c.Start; s <= c.End && s < len(res.data); s++ {
				m.Data.SetFloat(m.index(i, s), res.data[s])
			}
		}
	}
	return nil
}
