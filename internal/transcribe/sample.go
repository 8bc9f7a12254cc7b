package transcribe

import (
	"context"

	"github.com/google/uuid"

	"github.com/tbourn/go-call-analysis/internal/sample"
)

// Sample ignores the audio and returns the built-in sample call.
type Sample struct{}

func (Sample) Transcribe(ctx context.Context, _ Audio) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Result{
		ID:         uuid.NewString(),
		Text:       sample.Transcript,
		Utterances: sample.Utterances(),
	}, nil
}
