// Package domain defines the records exchanged between the pipeline, the
// record store, and the HTTP layer: recordings, transcripts (with utterances
// and highlights), and analyses (with metrics and suggestions).
//
// JSON field names are the persisted contract and therefore use the original
// camelCase shapes. Each record validates itself with go-playground/validator
// tags plus the cross-field checks that tags cannot express (offset ordering
// and the shared coordinate space of utterances and highlights).
package domain

import (
	"time"
)

// Kind names one of the three record collections held by the store.
type Kind string

const (
	KindRecording  Kind = "recordings"
	KindTranscript Kind = "transcripts"
	KindAnalysis   Kind = "analyses"
)

// Record is implemented by every persisted record type.
//
// FieldValue exposes the string-valued fields that can be used for
// FindByField lookups, keyed by their JSON names (e.g. "recordingId").
type Record interface {
	RecordID() string
	RecordKind() Kind
	FieldValue(field string) (string, bool)
	Validate() error
}

// HighlightType classifies an annotated transcript span.
type HighlightType string

const (
	HighlightPositive  HighlightType = "positive"
	HighlightNegative  HighlightType = "negative"
	HighlightQuestion  HighlightType = "question"
	HighlightObjection HighlightType = "objection"
	HighlightClosing   HighlightType = "closing"
)

// Valid reports whether t is one of the known highlight types.
func (t HighlightType) Valid() bool {
	switch t {
	case HighlightPositive, HighlightNegative, HighlightQuestion, HighlightObjection, HighlightClosing:
		return true
	}
	return false
}

// Priority ranks an improvement suggestion.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// MetricNames is the fixed set of evaluation dimensions for a real estate
// sales call, in display order.
var MetricNames = []string{
	"Information Gathering",
	"Property Presentation",
	"Amenities Coverage",
	"Neighborhood Benefits",
	"Objection Handling",
	"Closing Techniques",
}

// Recording is an uploaded (or demo) call recording.
//
// TranscriptID and AnalysisID are back-references filled in by the store the
// first time a child record for this recording is saved.
type Recording struct {
	ID           string    `json:"id"                     validate:"required"`
	FileName     string    `json:"fileName"               validate:"required"`
	FileURL      string    `json:"fileUrl"`
	Duration     float64   `json:"duration"               validate:"gte=0"`
	CreatedAt    time.Time `json:"createdAt"              validate:"required"`
	TranscriptID string    `json:"transcriptId,omitempty"`
	AnalysisID   string    `json:"analysisId,omitempty"`
}

// Utterance is one speaker turn. StartIndex/EndIndex address the owning
// transcript's Text in runes, and Text must equal that slice.
type Utterance struct {
	Speaker    string `json:"speaker"    validate:"required"`
	Text       string `json:"text"`
	StartIndex int    `json:"startIndex" validate:"gte=0"`
	EndIndex   int    `json:"endIndex"   validate:"gtefield=StartIndex"`
}

// Highlight annotates a rune range of the transcript text.
type Highlight struct {
	StartIndex int           `json:"startIndex" validate:"gte=0"`
	EndIndex   int           `json:"endIndex"   validate:"gtefield=StartIndex"`
	Type       HighlightType `json:"type"       validate:"oneof=positive negative question objection closing"`
	Comment    string        `json:"comment"`
}

// Transcript is the speaker-segmented text of a recording.
type Transcript struct {
	ID          string      `json:"id"          validate:"required"`
	RecordingID string      `json:"recordingId" validate:"required"`
	Text        string      `json:"text"`
	Utterances  []Utterance `json:"utterances"  validate:"dive"`
	Highlights  []Highlight `json:"highlights"  validate:"dive"`
	CreatedAt   time.Time   `json:"createdAt"   validate:"required"`
}

// Metric is a 0–100 score along one evaluation dimension.
type Metric struct {
	Name        string `json:"name"        validate:"required"`
	Value       int    `json:"value"       validate:"gte=0,lte=100"`
	Description string `json:"description"`
}

// Suggestion is an actionable improvement. An empty Priority is read as
// medium by the dashboard.
type Suggestion struct {
	Title       string   `json:"title"              validate:"required"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority,omitempty" validate:"omitempty,oneof=high medium low"`
}

// Analysis is the scored evaluation of a transcript. It is never mutated
// after creation.
type Analysis struct {
	ID           string       `json:"id"           validate:"required"`
	RecordingID  string       `json:"recordingId"  validate:"required"`
	TranscriptID string       `json:"transcriptId" validate:"required"`
	OverallScore int          `json:"overallScore" validate:"gte=0,lte=100"`
	Metrics      []Metric     `json:"metrics"      validate:"dive"`
	Suggestions  []Suggestion `json:"suggestions"  validate:"dive"`
	CreatedAt    time.Time    `json:"createdAt"    validate:"required"`
}

func (r Recording) RecordID() string  { return r.ID }
func (Recording) RecordKind() Kind     { return KindRecording }
func (t Transcript) RecordID() string { return t.ID }
func (Transcript) RecordKind() Kind    { return KindTranscript }
func (a Analysis) RecordID() string   { return a.ID }
func (Analysis) RecordKind() Kind      { return KindAnalysis }

// FieldValue implements Record.
func (r Recording) FieldValue(field string) (string, bool) {
	switch field {
	case "id":
		return r.ID, true
	case "fileName":
		return r.FileName, true
	case "fileUrl":
		return r.FileURL, true
	case "transcriptId":
		return r.TranscriptID, true
	case "analysisId":
		return r.AnalysisID, true
	}
	return "", false
}

// FieldValue implements Record.
func (t Transcript) FieldValue(field string) (string, bool) {
	switch field {
	case "id":
		return t.ID, true
	case "recordingId":
		return t.RecordingID, true
	}
	return "", false
}

// FieldValue implements Record.
func (a Analysis) FieldValue(field string) (string, bool) {
	switch field {
	case "id":
		return a.ID, true
	case "recordingId":
		return a.RecordingID, true
	case "transcriptId":
		return a.TranscriptID, true
	}
	return "", false
}
