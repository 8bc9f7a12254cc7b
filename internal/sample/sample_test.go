package sample

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/tbourn/go-call-analysis/internal/domain"
)

func fixedNow() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }

func TestUtterances_MatchTranscriptSlices(t *testing.T) {
	us := Utterances()
	if len(us) != 27 {
		t.Fatalf("len = %d; want 27", len(us))
	}
	if err := domain.CheckCoordinates(Transcript, us, Highlights()); err != nil {
		t.Fatalf("sample data violates coordinate space: %v", err)
	}
	if us[0].Speaker != "Agent" || us[1].Speaker != "Customer" {
		t.Fatalf("speakers = %q, %q", us[0].Speaker, us[1].Speaker)
	}
	if !strings.HasPrefix(us[0].Text, "Good morning!") {
		t.Fatalf("first utterance = %q", us[0].Text)
	}
	last := us[len(us)-1]
	if last.EndIndex != utf8.RuneCountInString(Transcript) {
		t.Fatalf("last utterance should end at text end, got %d", last.EndIndex)
	}
}

func TestSegment_SkipsBlocksWithoutSpeaker(t *testing.T) {
	text := "Agent: Hi\n\n(silence)\n\nCustomer:   Héllo  "
	us := Segment(text)
	if len(us) != 2 {
		t.Fatalf("len = %d; want 2: %+v", len(us), us)
	}
	if err := domain.CheckCoordinates(text, us, nil); err != nil {
		t.Fatalf("CheckCoordinates: %v", err)
	}
	if us[1].Text != "Héllo" || us[1].Speaker != "Customer" {
		t.Fatalf("second = %+v", us[1])
	}
}

func TestGenerator_TripleIsSelfConsistent(t *testing.T) {
	g := NewSeeded(42, fixedNow, nil)
	r, tr, a := g.Triple()

	if tr.RecordingID != r.ID || a.RecordingID != r.ID || a.TranscriptID != tr.ID {
		t.Fatalf("cross references broken: r=%s t=%+v a=%+v", r.ID, tr.RecordingID, a)
	}
	if r.TranscriptID != tr.ID || r.AnalysisID != a.ID {
		t.Fatalf("recording back-refs = (%q, %q)", r.TranscriptID, r.AnalysisID)
	}
	for _, rec := range []domain.Record{r, tr, a} {
		if err := rec.Validate(); err != nil {
			t.Fatalf("%T invalid: %v", rec, err)
		}
	}
	if a.OverallScore < 60 || a.OverallScore > 85 {
		t.Fatalf("overall score %d out of [60,85]", a.OverallScore)
	}
	if len(a.Metrics) != len(domain.MetricNames) {
		t.Fatalf("metrics = %d", len(a.Metrics))
	}
	for _, m := range a.Metrics {
		if m.Value < 40 || m.Value > 95 || m.Description == "" {
			t.Fatalf("metric %+v", m)
		}
	}
	if r.Duration < 180 || r.Duration >= 420 {
		t.Fatalf("duration %v out of [180,420)", r.Duration)
	}
	if !strings.HasPrefix(r.FileName, "call-recording-"+r.ID[:5]) {
		t.Fatalf("fileName = %q", r.FileName)
	}
	if age := fixedNow().Sub(r.CreatedAt); age < 0 || age > 29*24*time.Hour {
		t.Fatalf("createdAt %v not within the last 30 days", r.CreatedAt)
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	r1, _, a1 := NewSeeded(7, fixedNow, nil).Triple()
	r2, _, a2 := NewSeeded(7, fixedNow, nil).Triple()
	if r1.ID != r2.ID || a1.OverallScore != a2.OverallScore || r1.Duration != r2.Duration {
		t.Fatalf("same seed should produce the same triple")
	}
}

func TestGenerator_InjectedIDs(t *testing.T) {
	n := 0
	ids := func() string { n++; return []string{"rec-1", "tr-1", "an-1"}[n-1] }
	r, tr, a := NewSeeded(1, fixedNow, ids).Triple()
	if r.ID != "rec-1" || tr.ID != "tr-1" || a.ID != "an-1" {
		t.Fatalf("ids = %s %s %s", r.ID, tr.ID, a.ID)
	}
	if r.FileName != "call-recording-rec-1.mp3" {
		t.Fatalf("fileName = %q", r.FileName)
	}
}

func TestGenerator_IDShape(t *testing.T) {
	id := NewSeeded(3, nil, nil).ID()
	if len(id) != 11 || strings.Trim(id, base36) != "" {
		t.Fatalf("id = %q", id)
	}
}

func TestMetricDescription_Unknown(t *testing.T) {
	if MetricDescription("Rapport") != "Performance in this area." {
		t.Fatalf("unexpected fallback description")
	}
}

func TestSuggestions(t *testing.T) {
	s := Suggestions()
	if len(s) != 4 || s[0].Priority != domain.PriorityHigh || s[3].Priority != domain.PriorityLow {
		t.Fatalf("suggestions = %+v", s)
	}
}
