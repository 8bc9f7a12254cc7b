// Package analyze scores a sales call transcript: an overall score, six
// metric scores, improvement suggestions and highlighted moments. Backends
// are Claude (Anthropic Messages API), Gemini (Google GenAI) and a Sample
// backend used when no provider key is configured.
package analyze

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-call-analysis/internal/config"
	"github.com/tbourn/go-call-analysis/internal/domain"
)

var (
	// ErrEmptyTranscript is returned when there is no text to analyze.
	ErrEmptyTranscript = errors.New("transcript is required")
	// ErrMalformedResponse wraps model output that is not the expected JSON.
	ErrMalformedResponse = errors.New("malformed analysis response")
)

// Result is a finished analysis. Highlight offsets are rune indexes into the
// analyzed text.
type Result struct {
	ID           string
	OverallScore int
	Metrics      []domain.Metric
	Suggestions  []domain.Suggestion
	Highlights   []domain.Highlight
}

// Analyzer is the analysis collaborator of the pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, transcript string) (Result, error)
}

// New picks the backend named by cfg.Provider. "auto" prefers Anthropic,
// then Gemini, then the sample backend, depending on which keys are set.
func New(ctx context.Context, cfg config.AnalysisConfig) (Analyzer, error) {
	provider := cfg.Provider
	if provider == config.ProviderAuto || provider == "" {
		switch {
		case cfg.AnthropicKey != "":
			provider = config.ProviderAnthropic
		case cfg.GeminiKey != "":
			provider = config.ProviderGemini
		default:
			provider = config.ProviderSample
		}
	}

	switch provider {
	case config.ProviderAnthropic:
		return NewClaude(cfg.AnthropicKey, cfg.AnthropicModel), nil
	case config.ProviderGemini:
		return NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel)
	case config.ProviderSample:
		log.Warn().Msg("no analysis provider configured; using sample analysis data")
		return NewSample(nil), nil
	}
	return nil, fmt.Errorf("unknown analysis provider %q", cfg.Provider)
}
