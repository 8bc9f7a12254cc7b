package repo

import (
	"context"
	"time"

	"github.com/tbourn/go-call-analysis/internal/domain"
)

// RecordingsStats returns aggregate metadata for the recordings collection,
// used for ETag generation by the history endpoint:
//
//   - count:  number of stored recordings
//   - linked: recordings carrying both back-references
//   - newest: greatest createdAt, or nil when there are none
//
// linked changes when the pipeline attaches a transcript or analysis, so a
// cached listing is invalidated even though count and newest stay the same.
func (s *Store) RecordingsStats(ctx context.Context) (count, linked int64, newest *time.Time) {
	recs := load[domain.Recording](ctx, s)
	if len(recs) == 0 {
		return 0, 0, nil
	}
	n := recs[0].CreatedAt
	for _, r := range recs {
		if r.CreatedAt.After(n) {
			n = r.CreatedAt
		}
		if r.TranscriptID != "" && r.AnalysisID != "" {
			linked++
		}
	}
	return int64(len(recs)), linked, &n
}
