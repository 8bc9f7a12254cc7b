package analyze

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tbourn/go-call-analysis/internal/sample"
)

// Sample returns canned analysis data with randomized scores. The overall
// score falls between 65 and 94.
type Sample struct {
	mu  sync.Mutex
	gen *sample.Generator
}

// NewSample wraps gen; nil uses a randomly seeded generator.
func NewSample(gen *sample.Generator) *Sample {
	if gen == nil {
		gen = sample.NewGenerator(nil, nil, nil)
	}
	return &Sample{gen: gen}
}

func (s *Sample) Analyze(ctx context.Context, transcript string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(transcript) == "" {
		return Result{}, ErrEmptyTranscript
	}

	s.mu.Lock()
	overall := s.gen.Score(65, 94)
	metrics := s.gen.Metrics()
	s.mu.Unlock()

	return Result{
		ID:           uuid.NewString(),
		OverallScore: overall,
		Metrics:      metrics,
		Suggestions:  sample.Suggestions(),
		Highlights:   sample.Highlights(),
	}, nil
}
