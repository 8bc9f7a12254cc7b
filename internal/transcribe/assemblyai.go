package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tbourn/go-call-analysis/internal/domain"
)

// AssemblyAI transcribes audio with speaker labels through the AssemblyAI
// v2 REST API: upload the bytes, create a transcript job, then poll until
// the job completes or ctx ends.
type AssemblyAI struct {
	apiKey  string
	baseURL string
	poll    time.Duration
	hc      *http.Client
}

// NewAssemblyAI builds a client. A nil hc uses a client without a timeout;
// callers bound the whole job through ctx.
func NewAssemblyAI(apiKey, baseURL string, poll time.Duration, hc *http.Client) *AssemblyAI {
	if hc == nil {
		hc = &http.Client{}
	}
	if poll <= 0 {
		poll = 3 * time.Second
	}
	return &AssemblyAI{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), poll: poll, hc: hc}
}

type aaiUploadResp struct {
	UploadURL string `json:"upload_url"`
}

type aaiCreateReq struct {
	AudioURL      string `json:"audio_url"`
	SpeakerLabels bool   `json:"speaker_labels"`
}

type aaiUtterance struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

type aaiTranscript struct {
	ID         string         `json:"id"`
	Status     string         `json:"status"`
	Text       string         `json:"text"`
	Error      string         `json:"error"`
	Utterances []aaiUtterance `json:"utterances"`
}

func (c *AssemblyAI) Transcribe(ctx context.Context, a Audio) (Result, error) {
	ctx, span := otel.Tracer("transcribe/assemblyai").Start(ctx, "AssemblyAI.Transcribe")
	defer span.End()
	span.SetAttributes(attribute.Int("audio.bytes", len(a.Data)))

	var up aaiUploadResp
	if err := c.do(ctx, http.MethodPost, "/v2/upload", "application/octet-stream", bytes.NewReader(a.Data), &up); err != nil {
		return Result{}, fmt.Errorf("upload: %w", err)
	}

	body, err := json.Marshal(aaiCreateReq{AudioURL: up.UploadURL, SpeakerLabels: true})
	if err != nil {
		return Result{}, err
	}
	var job aaiTranscript
	if err := c.do(ctx, http.MethodPost, "/v2/transcript", "application/json", bytes.NewReader(body), &job); err != nil {
		return Result{}, fmt.Errorf("create transcript: %w", err)
	}
	span.SetAttributes(attribute.String("transcript.id", job.ID))

	for {
		switch job.Status {
		case "completed":
			return fromAssemblyAI(job), nil
		case "error":
			return Result{}, fmt.Errorf("%w: %s", ErrTranscriptionFailed, job.Error)
		}
		log.Debug().Str("transcript_id", job.ID).Str("status", job.Status).Msg("waiting for transcript")

		t := time.NewTimer(c.poll)
		select {
		case <-ctx.Done():
			t.Stop()
			return Result{}, ctx.Err()
		case <-t.C:
		}
		if err := c.do(ctx, http.MethodGet, "/v2/transcript/"+job.ID, "", nil, &job); err != nil {
			return Result{}, fmt.Errorf("poll transcript: %w", err)
		}
	}
}

func (c *AssemblyAI) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("%w: assemblyai http %d: %s", ErrTranscriptionFailed, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// fromAssemblyAI lays utterances out as "Speaker X: text" blocks separated
// by a blank line, so every utterance's offsets address exactly its text.
// Without diarization the provider text becomes a single utterance.
func fromAssemblyAI(t aaiTranscript) Result {
	if len(t.Utterances) == 0 {
		text := strings.TrimSpace(t.Text)
		res := Result{ID: t.ID, Text: text}
		if text != "" {
			res.Utterances = []domain.Utterance{{Speaker: "Speaker A", Text: text, StartIndex: 0, EndIndex: utf8.RuneCountInString(text)}}
		}
		return res
	}

	var sb strings.Builder
	us := make([]domain.Utterance, 0, len(t.Utterances))
	offset := 0
	for i, u := range t.Utterances {
		if i > 0 {
			sb.WriteString("\n\n")
			offset += 2
		}
		speaker := "Speaker " + u.Speaker
		prefix := speaker + ": "
		text := strings.TrimSpace(u.Text)
		sb.WriteString(prefix)
		sb.WriteString(text)

		start := offset + utf8.RuneCountInString(prefix)
		end := start + utf8.RuneCountInString(text)
		us = append(us, domain.Utterance{Speaker: speaker, Text: text, StartIndex: start, EndIndex: end})
		offset = end
	}
	return Result{ID: t.ID, Text: sb.String(), Utterances: us}
}
