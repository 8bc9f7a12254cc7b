package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tbourn/go-call-analysis/internal/analyze"
	"github.com/tbourn/go-call-analysis/internal/domain"
	"github.com/tbourn/go-call-analysis/internal/repo"
	"github.com/tbourn/go-call-analysis/internal/sample"
	"github.com/tbourn/go-call-analysis/internal/transcribe"
)

// ---------- stubs ----------

type stubTranscriber struct {
	res transcribe.Result
	err error
}

func (s stubTranscriber) Transcribe(context.Context, transcribe.Audio) (transcribe.Result, error) {
	return s.res, s.err
}

type stubAnalyzer struct {
	res analyze.Result
	err error
	got string
}

func (s *stubAnalyzer) Analyze(_ context.Context, text string) (analyze.Result, error) {
	s.got = text
	return s.res, s.err
}

type stubMedia struct {
	saved map[string][]byte
	err   error
}

func (m *stubMedia) Save(_ context.Context, id, fileName string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	m.saved[id] = data
	return "/media/" + id + ".mp3", nil
}

type blockingTranscriber struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingTranscriber) Transcribe(ctx context.Context, a transcribe.Audio) (transcribe.Result, error) {
	close(b.entered)
	<-b.release
	return transcribe.Sample{}.Transcribe(ctx, a)
}

// ---------- helpers ----------

func newPipeline(t *testing.T, tr Transcriber, an Analyzer) (*Pipeline, *repo.Store, *stubMedia) {
	t.Helper()
	store := repo.NewStore(repo.NewMemoryBackend())
	media := &stubMedia{}
	p := NewPipeline(store, media, tr, an)
	n := 0
	p.NewID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	p.Now = func() time.Time { return fixed }
	return p, store, media
}

func sampleAnalyzer() *stubAnalyzer {
	return &stubAnalyzer{res: analyze.Result{
		ID:           "an-1",
		OverallScore: 77,
		Metrics:      sample.NewSeeded(1, nil, nil).Metrics(),
		Suggestions:  sample.Suggestions(),
		Highlights:   sample.Highlights(),
	}}
}

func mp3() Upload {
	return Upload{FileName: "call.mp3", ContentType: "audio/mpeg", Data: []byte("ID3")}
}

// ---------- Run ----------

func TestPipeline_Run_Success(t *testing.T) {
	an := sampleAnalyzer()
	p, store, media := newPipeline(t, transcribe.Sample{}, an)
	ctx := context.Background()

	out, err := p.Run(ctx, mp3())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.State != StateDone || out.Location != "/analysis/"+out.RecordingID {
		t.Fatalf("outcome = %+v", out)
	}
	if p.Status().State != StateDone {
		t.Fatalf("status = %+v", p.Status())
	}
	if _, ok := media.saved[out.RecordingID]; !ok {
		t.Fatalf("audio not stored under recording id")
	}

	rec, ok := store.RecordingByID(ctx, out.RecordingID)
	if !ok {
		t.Fatalf("recording missing")
	}
	if rec.FileName != "call.mp3" || rec.Duration != 0 || rec.FileURL != "/media/"+rec.ID+".mp3" {
		t.Fatalf("recording = %+v", rec)
	}

	trs := store.Transcripts(ctx)
	if len(trs) != 1 {
		t.Fatalf("transcripts = %d; want 1 (updated in place)", len(trs))
	}
	tr := trs[0]
	if tr.RecordingID != rec.ID || rec.TranscriptID != tr.ID {
		t.Fatalf("transcript not cross-referenced: rec=%+v tr.id=%s", rec, tr.ID)
	}
	if len(tr.Highlights) != len(sample.Highlights()) {
		t.Fatalf("highlights = %d", len(tr.Highlights))
	}
	if an.got != sample.Transcript {
		t.Fatalf("analyzer did not receive the transcript text")
	}

	a, ok := store.AnalysisByRecordingID(ctx, rec.ID)
	if !ok || a.TranscriptID != tr.ID || rec.AnalysisID != a.ID || a.OverallScore != 77 {
		t.Fatalf("analysis = %+v, rec = %+v", a, rec)
	}
}

func TestPipeline_Run_RejectsNonAudio(t *testing.T) {
	p, store, _ := newPipeline(t, transcribe.Sample{}, sampleAnalyzer())
	_, err := p.Run(context.Background(), Upload{FileName: "notes.txt", ContentType: "text/plain", Data: []byte("x")})
	if !errors.Is(err, ErrInvalidFileType) {
		t.Fatalf("err = %v; want ErrInvalidFileType", err)
	}
	if p.Status().State != StateIdle {
		t.Fatalf("state = %s; want idle", p.Status().State)
	}
	if n := len(store.Recordings(context.Background())); n != 0 {
		t.Fatalf("recordings = %d; want 0", n)
	}
}

func TestPipeline_Run_EmptyUpload(t *testing.T) {
	p, _, _ := newPipeline(t, transcribe.Sample{}, sampleAnalyzer())
	up := mp3()
	up.Data = nil
	if _, err := p.Run(context.Background(), up); !errors.Is(err, ErrEmptyUpload) {
		t.Fatalf("err = %v; want ErrEmptyUpload", err)
	}
}

func TestPipeline_Run_UploadFailure(t *testing.T) {
	p, store, media := newPipeline(t, transcribe.Sample{}, sampleAnalyzer())
	media.err = errors.New("disk full")
	_, err := p.Run(context.Background(), mp3())

	var se *StageError
	if !errors.As(err, &se) || se.Stage != StateUploading {
		t.Fatalf("err = %v; want uploading StageError", err)
	}
	if n := len(store.Recordings(context.Background())); n != 0 {
		t.Fatalf("recordings = %d; want 0", n)
	}
}

func TestPipeline_Run_TranscriptionFailureLeavesRecording(t *testing.T) {
	cause := fmt.Errorf("%w: boom", transcribe.ErrTranscriptionFailed)
	p, store, _ := newPipeline(t, stubTranscriber{err: cause}, sampleAnalyzer())
	ctx := context.Background()

	_, err := p.Run(ctx, mp3())
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StateTranscribing {
		t.Fatalf("err = %v; want transcribing StageError", err)
	}
	if !errors.Is(err, transcribe.ErrTranscriptionFailed) {
		t.Fatalf("cause lost: %v", err)
	}
	st := p.Status()
	if st.State != StateFailed || st.FailedStage != StateTranscribing || st.Message != FailureMessage {
		t.Fatalf("status = %+v", st)
	}
	recs := store.Recordings(ctx)
	if len(recs) != 1 || recs[0].TranscriptID != "" {
		t.Fatalf("orphan recording expected, got %+v", recs)
	}
}

func TestPipeline_Run_BadTranscriptOffsets(t *testing.T) {
	bad := transcribe.Result{
		ID:         "t",
		Text:       "Agent: hi",
		Utterances: []domain.Utterance{{Speaker: "Agent", Text: "hi", StartIndex: 7, EndIndex: 20}},
	}
	p, store, _ := newPipeline(t, stubTranscriber{res: bad}, sampleAnalyzer())
	_, err := p.Run(context.Background(), mp3())
	if !errors.Is(err, domain.ErrOffsetOutOfRange) {
		t.Fatalf("err = %v; want ErrOffsetOutOfRange", err)
	}
	if n := len(store.Transcripts(context.Background())); n != 0 {
		t.Fatalf("transcripts = %d; want 0", n)
	}
}

func TestPipeline_Run_AnalysisFailureLeavesTranscript(t *testing.T) {
	an := &stubAnalyzer{err: errors.New("quota exceeded")}
	p, store, _ := newPipeline(t, transcribe.Sample{}, an)
	ctx := context.Background()

	_, err := p.Run(ctx, mp3())
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StateAnalyzing {
		t.Fatalf("err = %v; want analyzing StageError", err)
	}
	if len(store.Recordings(ctx)) != 1 || len(store.Transcripts(ctx)) != 1 {
		t.Fatalf("partial records should remain")
	}
	if len(store.Analyses(ctx)) != 0 {
		t.Fatalf("no analysis expected")
	}
	tr := store.Transcripts(ctx)[0]
	if len(tr.Highlights) != 0 {
		t.Fatalf("transcript should have no highlights")
	}
}

func TestPipeline_Run_ScoreOutOfRange(t *testing.T) {
	an := sampleAnalyzer()
	an.res.OverallScore = 140
	p, store, _ := newPipeline(t, transcribe.Sample{}, an)
	_, err := p.Run(context.Background(), mp3())
	if !errors.Is(err, domain.ErrMetricOutOfRange) {
		t.Fatalf("err = %v; want ErrMetricOutOfRange", err)
	}
	if len(store.Analyses(context.Background())) != 0 {
		t.Fatalf("invalid analysis persisted")
	}
}

func TestPipeline_Run_DropsBadHighlightsAndNormalizesSuggestions(t *testing.T) {
	an := sampleAnalyzer()
	an.res.Highlights = append(an.res.Highlights,
		domain.Highlight{StartIndex: 0, EndIndex: 1 << 20, Type: domain.HighlightPositive},
		domain.Highlight{StartIndex: 0, EndIndex: 5, Type: "neutral"},
	)
	an.res.Suggestions = []domain.Suggestion{
		{Title: "Ask more", Priority: "urgent"},
		{Title: "  ", Priority: domain.PriorityHigh},
	}
	p, store, _ := newPipeline(t, transcribe.Sample{}, an)
	ctx := context.Background()

	out, err := p.Run(ctx, mp3())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	tr, _ := store.TranscriptByRecordingID(ctx, out.RecordingID)
	if len(tr.Highlights) != len(sample.Highlights()) {
		t.Fatalf("highlights = %d; want %d", len(tr.Highlights), len(sample.Highlights()))
	}
	a, _ := store.AnalysisByRecordingID(ctx, out.RecordingID)
	if len(a.Suggestions) != 1 || a.Suggestions[0].Priority != domain.PriorityMedium {
		t.Fatalf("suggestions = %+v", a.Suggestions)
	}
}

func TestPipeline_Run_Busy(t *testing.T) {
	bt := &blockingTranscriber{entered: make(chan struct{}), release: make(chan struct{})}
	p, _, _ := newPipeline(t, bt, sampleAnalyzer())
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := p.Run(ctx, mp3())
		done <- err
	}()
	<-bt.entered

	if st := p.Status(); st.State != StateTranscribing || st.RecordingID == "" {
		t.Fatalf("status = %+v; want transcribing", st)
	}
	if _, err := p.Run(ctx, mp3()); !errors.Is(err, ErrPipelineBusy) {
		t.Fatalf("err = %v; want ErrPipelineBusy", err)
	}

	close(bt.release)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}
	if st := p.Status(); st.State != StateDone {
		t.Fatalf("state = %s; want done", st.State)
	}

	p.Transcriber = transcribe.Sample{}
	if _, err := p.Run(ctx, mp3()); err != nil {
		t.Fatalf("run after release: %v", err)
	}
}

func TestPipeline_Run_WithoutMedia(t *testing.T) {
	store := repo.NewStore(repo.NewMemoryBackend())
	p := NewPipeline(store, nil, transcribe.Sample{}, sampleAnalyzer())
	out, err := p.Run(context.Background(), mp3())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	rec, _ := store.RecordingByID(context.Background(), out.RecordingID)
	if rec.FileURL != "" {
		t.Fatalf("fileUrl = %q; want empty", rec.FileURL)
	}
}

func TestCheckUpload(t *testing.T) {
	cases := []struct {
		ct   string
		data []byte
		want error
	}{
		{"audio/mpeg", []byte("x"), nil},
		{"Audio/WAV", []byte("x"), nil},
		{"video/mp4", []byte("x"), ErrInvalidFileType},
		{"", []byte("x"), ErrInvalidFileType},
		{"audio/ogg", nil, ErrEmptyUpload},
	}
	for _, tc := range cases {
		if err := CheckUpload(Upload{ContentType: tc.ct, Data: tc.data}); !errors.Is(err, tc.want) {
			t.Fatalf("CheckUpload(%q) = %v; want %v", tc.ct, err, tc.want)
		}
	}
}
