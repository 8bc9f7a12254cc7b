package services

import (
	"context"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-call-analysis/internal/compositor"
	"github.com/tbourn/go-call-analysis/internal/dashboard"
	"github.com/tbourn/go-call-analysis/internal/domain"
	"github.com/tbourn/go-call-analysis/internal/utils"
)

// ResultStore is the read side of repo.Store used by ResultService.
type ResultStore interface {
	Recordings(ctx context.Context) []domain.Recording
	RecordingByID(ctx context.Context, id string) (domain.Recording, bool)
	TranscriptByRecordingID(ctx context.Context, recordingID string) (domain.Transcript, bool)
	AnalysisByRecordingID(ctx context.Context, recordingID string) (domain.Analysis, bool)
	ClearAll(ctx context.Context)
}

// Result is everything the result view renders for one recording.
type Result struct {
	Recording  domain.Recording   `json:"recording"`
	Transcript domain.Transcript  `json:"transcript"`
	Analysis   domain.Analysis    `json:"analysis"`
	Blocks     []compositor.Block `json:"blocks"`
	Dashboard  dashboard.View     `json:"dashboard"`
}

// ResultService loads finished recordings for display.
type ResultService struct {
	Store ResultStore
}

func NewResultService(store ResultStore) *ResultService {
	return &ResultService{Store: store}
}

// Load returns the result view for recordingID. Each missing record maps to
// its own not-found error.
func (s *ResultService) Load(ctx context.Context, recordingID string) (*Result, error) {
	ctx, span := otel.Tracer("services/ResultService").Start(ctx, "Load",
		trace.WithAttributes(attribute.String("recording.id", recordingID)),
	)
	defer span.End()

	rec, ok := s.Store.RecordingByID(ctx, recordingID)
	if !ok {
		return nil, ErrRecordingNotFound
	}
	tr, ok := s.Store.TranscriptByRecordingID(ctx, recordingID)
	if !ok {
		return nil, ErrTranscriptNotFound
	}
	an, ok := s.Store.AnalysisByRecordingID(ctx, recordingID)
	if !ok {
		return nil, ErrAnalysisNotFound
	}

	blocks := compositor.Collect(tr)
	if blocks == nil {
		blocks = []compositor.Block{}
	}
	return &Result{
		Recording:  rec,
		Transcript: tr,
		Analysis:   an,
		Blocks:     blocks,
		Dashboard:  dashboard.Build(an),
	}, nil
}

// ListPage returns one page of recordings, newest first, and the total count.
func (s *ResultService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Recording, int64) {
	recs := s.Store.Recordings(ctx)
	slices.SortStableFunc(recs, func(a, b domain.Recording) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	start, end := utils.PageBounds(len(recs), page, pageSize)
	return recs[start:end], int64(len(recs))
}

// Clear removes every stored record.
func (s *ResultService) Clear(ctx context.Context) {
	s.Store.ClearAll(ctx)
}
