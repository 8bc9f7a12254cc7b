package repo

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-call-analysis/internal/domain"
	"github.com/tbourn/go-call-analysis/internal/observability"
)

// keyPrefix namespaces the three collection keys in the backend.
const keyPrefix = "sales_analysis_"

// CollectionKey returns the backend key holding the JSON array for kind.
func CollectionKey(kind domain.Kind) string { return keyPrefix + string(kind) }

// Store is the record store: three append-only collections of JSON records
// (recordings, transcripts, analyses) persisted as one blob per collection.
//
// The store never surfaces errors. Backend failures, undecodable blobs and
// invalid elements are logged, counted in store_errors_total, and treated as
// absent data. A Store with a nil backend performs no writes and reads as
// empty.
//
// Every read-modify-write runs under a single mutex; the store assumes it is
// the only writer of its backend.
type Store struct {
	mu      sync.Mutex
	backend Backend
}

// NewStore returns a Store over b. b may be nil.
func NewStore(b Backend) *Store {
	return &Store{backend: b}
}

func storeFailure(op string, kind domain.Kind, err error) {
	observability.StoreErrors.WithLabelValues(op).Inc()
	log.Warn().Err(err).Str("op", op).Str("collection", string(kind)).Msg("record store failure")
}

// load reads and decodes the collection for T, dropping elements that fail
// to decode or validate. A failed backend read yields nil; writers must use
// loadForWrite instead.
func load[T domain.Record](ctx context.Context, s *Store) []T {
	items, _ := loadForWrite[T](ctx, s)
	return items
}

// loadForWrite is load for read-modify-write paths. It returns an error when
// the backend read fails, so the caller skips the write rather than
// replacing the stored collection with a partial one. A missing key, an empty
// blob and an undecodable blob start a fresh collection. Caller holds s.mu.
func loadForWrite[T domain.Record](ctx context.Context, s *Store) ([]T, error) {
	var zero T
	kind := zero.RecordKind()
	if s.backend == nil {
		return nil, nil
	}
	raw, ok, err := s.backend.Get(ctx, CollectionKey(kind))
	if err != nil {
		storeFailure("read", kind, err)
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		storeFailure("decode", kind, err)
		return nil, nil
	}
	out := make([]T, 0, len(elems))
	for i, el := range elems {
		var rec T
		if err := json.Unmarshal(el, &rec); err != nil {
			storeFailure("decode", kind, err)
			continue
		}
		if err := rec.Validate(); err != nil {
			log.Warn().Err(err).Str("collection", string(kind)).Int("index", i).Msg("dropping invalid record")
			observability.StoreErrors.WithLabelValues("invalid").Inc()
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func persist[T domain.Record](ctx context.Context, s *Store, items []T) {
	var zero T
	kind := zero.RecordKind()
	if s.backend == nil {
		return
	}
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		storeFailure("write", kind, err)
		return
	}
	if err := s.backend.Set(ctx, CollectionKey(kind), string(b)); err != nil {
		storeFailure("write", kind, err)
	}
}

func findBy[T domain.Record](items []T, field, value string) (T, bool) {
	for _, it := range items {
		if v, ok := it.FieldValue(field); ok && v == value {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// List returns every stored record of type T in insertion order. It returns
// an empty slice when nothing is stored.
func List[T domain.Record](ctx context.Context, s *Store) []T {
	items := load[T](ctx, s)
	if items == nil {
		return []T{}
	}
	return items
}

// Save appends rec to its collection. It never replaces an existing entry,
// even one with the same id.
//
// Saving a Transcript or Analysis also sets the owning Recording's
// transcriptId or analysisId, unless it is already set. An invalid rec, or a
// collection that cannot be read, is logged and nothing is written.
func Save[T domain.Record](ctx context.Context, s *Store, rec T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := rec.Validate(); err != nil {
		storeFailure("invalid", rec.RecordKind(), err)
		return
	}
	items, err := loadForWrite[T](ctx, s)
	if err != nil {
		return
	}
	persist(ctx, s, append(items, rec))

	switch r := any(rec).(type) {
	case domain.Transcript:
		linkRecording(ctx, s, r.RecordingID, func(p *domain.Recording) bool {
			if p.TranscriptID != "" {
				return false
			}
			p.TranscriptID = r.ID
			return true
		})
	case domain.Analysis:
		linkRecording(ctx, s, r.RecordingID, func(p *domain.Recording) bool {
			if p.AnalysisID != "" {
				return false
			}
			p.AnalysisID = r.ID
			return true
		})
	}
}

// linkRecording applies set to the recording with id and persists the
// collection when set reports a change. Caller holds s.mu.
func linkRecording(ctx context.Context, s *Store, id string, set func(*domain.Recording) bool) {
	recs, err := loadForWrite[domain.Recording](ctx, s)
	if err != nil {
		return
	}
	i := slices.IndexFunc(recs, func(r domain.Recording) bool { return r.ID == id })
	if i < 0 {
		return
	}
	if set(&recs[i]) {
		persist(ctx, s, recs)
	}
}

// FindByID returns the first record of type T with the given id.
func FindByID[T domain.Record](ctx context.Context, s *Store, id string) (T, bool) {
	return FindByField[T](ctx, s, "id", id)
}

// FindByField returns the first record, in insertion order, whose field
// equals value. Unknown fields never match.
func FindByField[T domain.Record](ctx context.Context, s *Store, field, value string) (T, bool) {
	return findBy(load[T](ctx, s), field, value)
}

// Update applies patch to the first record of type T with the given id and
// persists the collection in place. It reports whether the record was
// replaced.
// The patch must not change the record id. A patched record that fails
// validation is logged and the collection is left as it was.
func Update[T domain.Record](ctx context.Context, s *Store, id string, patch func(*T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := loadForWrite[T](ctx, s)
	if err != nil {
		return false
	}
	i := slices.IndexFunc(items, func(it T) bool { return it.RecordID() == id })
	if i < 0 {
		return false
	}
	patch(&items[i])
	if err := items[i].Validate(); err != nil {
		storeFailure("invalid", items[i].RecordKind(), err)
		return false
	}
	persist(ctx, s, items)
	return true
}

// ClearAll removes all three collections.
func (s *Store) ClearAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend == nil {
		return
	}
	for _, k := range []domain.Kind{domain.KindRecording, domain.KindTranscript, domain.KindAnalysis} {
		if err := s.backend.Remove(ctx, CollectionKey(k)); err != nil {
			storeFailure("clear", k, err)
		}
	}
}

func (s *Store) Recordings(ctx context.Context) []domain.Recording {
	return List[domain.Recording](ctx, s)
}

func (s *Store) SaveRecording(ctx context.Context, r domain.Recording) { Save(ctx, s, r) }

func (s *Store) RecordingByID(ctx context.Context, id string) (domain.Recording, bool) {
	return FindByID[domain.Recording](ctx, s, id)
}

func (s *Store) Transcripts(ctx context.Context) []domain.Transcript {
	return List[domain.Transcript](ctx, s)
}

func (s *Store) SaveTranscript(ctx context.Context, t domain.Transcript) { Save(ctx, s, t) }

func (s *Store) TranscriptByID(ctx context.Context, id string) (domain.Transcript, bool) {
	return FindByID[domain.Transcript](ctx, s, id)
}

func (s *Store) TranscriptByRecordingID(ctx context.Context, recordingID string) (domain.Transcript, bool) {
	return FindByField[domain.Transcript](ctx, s, "recordingId", recordingID)
}

// UpdateTranscript replaces the stored transcript with t.ID by t and
// reports whether it did.
func (s *Store) UpdateTranscript(ctx context.Context, t domain.Transcript) bool {
	return Update(ctx, s, t.ID, func(cur *domain.Transcript) { *cur = t })
}

func (s *Store) Analyses(ctx context.Context) []domain.Analysis {
	return List[domain.Analysis](ctx, s)
}

func (s *Store) SaveAnalysis(ctx context.Context, a domain.Analysis) { Save(ctx, s, a) }

func (s *Store) AnalysisByID(ctx context.Context, id string) (domain.Analysis, bool) {
	return FindByID[domain.Analysis](ctx, s, id)
}

func (s *Store) AnalysisByRecordingID(ctx context.Context, recordingID string) (domain.Analysis, bool) {
	return FindByField[domain.Analysis](ctx, s, "recordingId", recordingID)
}
