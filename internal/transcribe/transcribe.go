// Package transcribe turns uploaded call audio into a speaker-segmented
// transcript. Two backends exist: AssemblyAI over its REST API, and a Sample
// backend that returns fixed data when no API key is configured.
package transcribe

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-call-analysis/internal/config"
	"github.com/tbourn/go-call-analysis/internal/domain"
)

// ErrTranscriptionFailed is wrapped by provider-side failures (non-2xx
// responses, failed jobs).
var ErrTranscriptionFailed = errors.New("transcription failed")

// Audio is the uploaded payload handed to a Transcriber.
type Audio struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Result is a finished transcription. Utterance offsets are rune indexes
// into Text.
type Result struct {
	ID         string
	Text       string
	Utterances []domain.Utterance
}

// Transcriber is the speech-to-text collaborator of the pipeline.
type Transcriber interface {
	Transcribe(ctx context.Context, a Audio) (Result, error)
}

// New returns the AssemblyAI backend when an API key is configured and the
// sample backend otherwise.
func New(cfg config.TranscribeConfig) Transcriber {
	if cfg.APIKey == "" {
		log.Warn().Msg("ASSEMBLYAI_API_KEY not set; using sample transcription data")
		return Sample{}
	}
	return NewAssemblyAI(cfg.APIKey, cfg.BaseURL, cfg.PollInterval, nil)
}
