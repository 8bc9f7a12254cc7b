// Package services – Pipeline
//
// Pipeline turns one uploaded call recording into three cross-referenced
// records: the Recording is persisted as soon as the audio is stored, the
// Transcript once transcription returns, and the Analysis (plus the
// highlight-bearing Transcript) once analysis returns. Stages run strictly in
// order and a failing stage aborts the job without rolling back what was
// already persisted.
//
// Observability: every stage is a child span of the Run span, its duration is
// recorded in pipeline_stage_duration_seconds, and each finished run is
// counted in pipeline_runs_total by outcome.
package services

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-call-analysis/internal/analyze"
	"github.com/tbourn/go-call-analysis/internal/dashboard"
	"github.com/tbourn/go-call-analysis/internal/domain"
	"github.com/tbourn/go-call-analysis/internal/observability"
	"github.com/tbourn/go-call-analysis/internal/transcribe"
)

// State is the state of the current pipeline job.
type State string

const (
	StateIdle         State = "idle"
	StateUploading    State = "uploading"
	StateTranscribing State = "transcribing"
	StateAnalyzing    State = "analyzing"
	StatePersisting   State = "persisting"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// RecordStore is the subset of repo.Store the pipeline writes to.
type RecordStore interface {
	SaveRecording(ctx context.Context, r domain.Recording)
	SaveTranscript(ctx context.Context, t domain.Transcript)
	UpdateTranscript(ctx context.Context, t domain.Transcript) bool
	SaveAnalysis(ctx context.Context, a domain.Analysis)
}

// MediaStore keeps uploaded audio and returns the URL it is served under.
type MediaStore interface {
	Save(ctx context.Context, id, fileName string, data []byte) (string, error)
}

// Transcriber converts audio to a speaker-segmented transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, a transcribe.Audio) (transcribe.Result, error)
}

// Analyzer scores a transcript.
type Analyzer interface {
	Analyze(ctx context.Context, transcript string) (analyze.Result, error)
}

// Upload is a file received from the client.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Outcome is the result of a successful run.
type Outcome struct {
	RecordingID string `json:"recordingId"`
	Location    string `json:"location"`
	State       State  `json:"state"`
}

// Status is a snapshot of the current (or last) job.
type Status struct {
	State       State     `json:"state"`
	FailedStage State     `json:"failedStage,omitempty"`
	RecordingID string    `json:"recordingId,omitempty"`
	FileName    string    `json:"fileName,omitempty"`
	Message     string    `json:"message,omitempty"`
	StartedAt   time.Time `json:"startedAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

// ResultLocation is the result view path for a recording.
func ResultLocation(recordingID string) string { return "/analysis/" + recordingID }

// Pipeline runs at most one job at a time.
type Pipeline struct {
	Store       RecordStore
	Media       MediaStore // optional; without it recordings have no file URL
	Transcriber Transcriber
	Analyzer    Analyzer

	Now   func() time.Time
	NewID func() string

	mu      sync.Mutex
	running bool
	status  Status
}

// NewPipeline wires a Pipeline with wall-clock time and UUID ids.
func NewPipeline(store RecordStore, media MediaStore, tr Transcriber, an Analyzer) *Pipeline {
	return &Pipeline{
		Store:       store,
		Media:       media,
		Transcriber: tr,
		Analyzer:    an,
		Now:         func() time.Time { return time.Now().UTC() },
		NewID:       uuid.NewString,
		status:      Status{State: StateIdle},
	}
}

// Status returns the current job state.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Pipeline) update(fn func(*Status)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.status)
	p.status.UpdatedAt = p.Now()
}

// CheckContentType accepts audio/* media types only.
func CheckContentType(contentType string) error {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "audio/") {
		return ErrInvalidFileType
	}
	return nil
}

// CheckUpload validates an upload without touching any state.
func CheckUpload(up Upload) error {
	if err := CheckContentType(up.ContentType); err != nil {
		return err
	}
	if len(up.Data) == 0 {
		return ErrEmptyUpload
	}
	return nil
}

// Run drives one upload through every stage. Validation errors and
// ErrPipelineBusy leave the state untouched; any stage failure returns a
// *StageError and leaves earlier records in the store.
func (p *Pipeline) Run(ctx context.Context, up Upload) (Outcome, error) {
	if err := CheckUpload(up); err != nil {
		observability.PipelineRuns.WithLabelValues("rejected").Inc()
		return Outcome{}, err
	}
	if strings.TrimSpace(up.FileName) == "" {
		up.FileName = "recording"
	}

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		observability.PipelineRuns.WithLabelValues("busy").Inc()
		return Outcome{}, ErrPipelineBusy
	}
	p.running = true
	now := p.Now()
	p.status = Status{State: StateIdle, FileName: up.FileName, StartedAt: now, UpdatedAt: now}
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	ctx, span := otel.Tracer("services/Pipeline").Start(ctx, "Run",
		trace.WithAttributes(
			attribute.String("upload.file_name", up.FileName),
			attribute.String("upload.content_type", up.ContentType),
			attribute.Int("upload.bytes", len(up.Data)),
		),
	)
	defer span.End()

	out, err := p.run(ctx, up)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.PipelineRuns.WithLabelValues("failed").Inc()
		return Outcome{}, err
	}
	span.SetAttributes(attribute.String("recording.id", out.RecordingID))
	observability.PipelineRuns.WithLabelValues("done").Inc()
	return out, nil
}

func (p *Pipeline) run(ctx context.Context, up Upload) (Outcome, error) {
	var (
		rec domain.Recording
		tr  domain.Transcript
		an  domain.Analysis
	)

	err := p.stage(ctx, StateUploading, func(ctx context.Context) error {
		id := p.NewID()
		url := ""
		if p.Media != nil {
			u, err := p.Media.Save(ctx, id, up.FileName, up.Data)
			if err != nil {
				return err
			}
			url = u
		}
		rec = domain.Recording{ID: id, FileName: up.FileName, FileURL: url, Duration: 0, CreatedAt: p.Now()}
		if err := rec.Validate(); err != nil {
			return err
		}
		p.Store.SaveRecording(ctx, rec)
		p.update(func(s *Status) { s.RecordingID = rec.ID })
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	err = p.stage(ctx, StateTranscribing, func(ctx context.Context) error {
		res, err := p.Transcriber.Transcribe(ctx, transcribe.Audio{FileName: up.FileName, ContentType: up.ContentType, Data: up.Data})
		if err != nil {
			return err
		}
		tr = domain.Transcript{
			ID:          p.idOr(res.ID),
			RecordingID: rec.ID,
			Text:        res.Text,
			Utterances:  res.Utterances,
			Highlights:  []domain.Highlight{},
			CreatedAt:   p.Now(),
		}
		if tr.Utterances == nil {
			tr.Utterances = []domain.Utterance{}
		}
		if err := tr.Validate(); err != nil {
			return err
		}
		p.Store.SaveTranscript(ctx, tr)
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	err = p.stage(ctx, StateAnalyzing, func(ctx context.Context) error {
		res, err := p.Analyzer.Analyze(ctx, tr.Text)
		if err != nil {
			return err
		}
		if err := domain.CheckScores(res.OverallScore, res.Metrics); err != nil {
			return err
		}
		an = domain.Analysis{
			ID:           p.idOr(res.ID),
			RecordingID:  rec.ID,
			TranscriptID: tr.ID,
			OverallScore: res.OverallScore,
			Metrics:      res.Metrics,
			Suggestions:  normalizeSuggestions(res.Suggestions),
			CreatedAt:    p.Now(),
		}
		if an.Metrics == nil {
			an.Metrics = []domain.Metric{}
		}
		if err := an.Validate(); err != nil {
			return err
		}
		tr.Highlights = keepHighlights(tr.Text, res.Highlights)
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	err = p.stage(ctx, StatePersisting, func(ctx context.Context) error {
		if !p.Store.UpdateTranscript(ctx, tr) {
			log.Warn().Str("transcript_id", tr.ID).Msg("transcript highlights not stored")
		}
		p.Store.SaveAnalysis(ctx, an)
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	p.update(func(s *Status) { s.State = StateDone })
	log.Info().
		Str("recording_id", rec.ID).
		Str("transcript_id", tr.ID).
		Str("analysis_id", an.ID).
		Int("overall_score", an.OverallScore).
		Msg("pipeline done")
	return Outcome{RecordingID: rec.ID, Location: ResultLocation(rec.ID), State: StateDone}, nil
}

// stage runs fn as one pipeline stage: it publishes the state, traces and
// times the call, and converts a failure into a *StageError plus the failed
// state.
func (p *Pipeline) stage(ctx context.Context, s State, fn func(context.Context) error) error {
	p.update(func(st *Status) { st.State = s })

	ctx, span := otel.Tracer("services/Pipeline").Start(ctx, string(s))
	defer span.End()
	start := time.Now()
	err := fn(ctx)
	observability.PipelineStageDuration.WithLabelValues(string(s)).Observe(time.Since(start).Seconds())
	if err == nil {
		return nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	p.update(func(st *Status) {
		st.State = StateFailed
		st.FailedStage = s
		st.Message = FailureMessage
	})
	log.Error().Err(err).Str("stage", string(s)).Msg("pipeline stage failed")
	return &StageError{Stage: s, Err: err}
}

func (p *Pipeline) idOr(id string) string {
	if id != "" {
		return id
	}
	return p.NewID()
}

// normalizeSuggestions drops untitled suggestions and maps unknown
// priorities to medium.
func normalizeSuggestions(in []domain.Suggestion) []domain.Suggestion {
	out := make([]domain.Suggestion, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s.Title) == "" {
			continue
		}
		s.Priority = dashboard.PriorityOf(s)
		out = append(out, s)
	}
	return out
}

// keepHighlights drops highlights that do not address text or carry an
// unknown type.
func keepHighlights(text string, hs []domain.Highlight) []domain.Highlight {
	n := utf8.RuneCountInString(text)
	out := make([]domain.Highlight, 0, len(hs))
	for _, h := range hs {
		if err := domain.CheckHighlight(h, n); err != nil || !h.Type.Valid() {
			log.Warn().Err(err).Str("type", string(h.Type)).Msg("dropping highlight")
			continue
		}
		out = append(out, h)
	}
	return out
}
