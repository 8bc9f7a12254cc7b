package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tbourn/go-call-analysis/internal/observability"
	"github.com/tbourn/go-call-analysis/internal/sample"
)

// DemoService persists a generated sample call so the result view can be
// tried without uploading audio.
type DemoService struct {
	Store RecordStore
	Gen   *sample.Generator

	mu sync.Mutex
}

// NewDemoService returns a DemoService. gen decides ids, scores and dates;
// seed it for reproducible demos.
func NewDemoService(store RecordStore, gen *sample.Generator) *DemoService {
	return &DemoService{Store: store, Gen: gen}
}

// Generate saves a cross-referenced recording, transcript and analysis and
// returns the recording id.
func (s *DemoService) Generate(ctx context.Context) (Outcome, error) {
	ctx, span := otel.Tracer("services/DemoService").Start(ctx, "Generate")
	defer span.End()
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	s.mu.Lock()
	rec, tr, an := s.Gen.Triple()
	s.mu.Unlock()

	s.Store.SaveRecording(ctx, rec)
	s.Store.SaveTranscript(ctx, tr)
	s.Store.SaveAnalysis(ctx, an)

	span.SetAttributes(attribute.String("recording.id", rec.ID))
	observability.PipelineRuns.WithLabelValues("demo").Inc()
	log.Info().Str("recording_id", rec.ID).Int("overall_score", an.OverallScore).Msg("demo generated")
	return Outcome{RecordingID: rec.ID, Location: ResultLocation(rec.ID), State: StateDone}, nil
}
