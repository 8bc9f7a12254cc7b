// Package sample provides the fixed call data used by the demo path and by
// the fallback transcription and analysis collaborators when no provider is
// configured.
package sample

import (
	"math/rand/v2"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/tbourn/go-call-analysis/internal/domain"
)

// Utterances segments Transcript into speaker turns. Each utterance's
// offsets address exactly its text (the part after "Speaker:"), so the
// result passes domain.CheckCoordinates.
func Utterances() []domain.Utterance {
	return Segment(Transcript)
}

// Segment splits text formatted as blank-line separated "Speaker: text"
// blocks into utterances. Blocks without a colon are skipped.
func Segment(text string) []domain.Utterance {
	var out []domain.Utterance
	offset := 0 // rune offset of the current block
	for i, block := range strings.Split(text, "\n\n") {
		if i > 0 {
			offset += 2
		}
		blockRunes := utf8.RuneCountInString(block)
		colon := strings.IndexByte(block, ':')
		if strings.TrimSpace(block) == "" || colon < 0 {
			offset += blockRunes
			continue
		}
		speaker := strings.TrimSpace(block[:colon])
		rest := block[colon+1:]
		body := strings.TrimFunc(rest, unicode.IsSpace)
		lead := len(rest) - len(strings.TrimLeftFunc(rest, unicode.IsSpace))

		start := offset + utf8.RuneCountInString(block[:colon+1+lead])
		out = append(out, domain.Utterance{
			Speaker:    speaker,
			Text:       body,
			StartIndex: start,
			EndIndex:   start + utf8.RuneCountInString(body),
		})
		offset += blockRunes
	}
	return out
}

// Highlights returns the annotated moments of Transcript.
func Highlights() []domain.Highlight {
	return []domain.Highlight{
		{StartIndex: 190, EndIndex: 290, Type: domain.HighlightPositive, Comment: "Good job gathering basic customer information to understand their needs."},
		{StartIndex: 590, EndIndex: 750, Type: domain.HighlightPositive, Comment: "Excellent property description highlighting key features that match customer needs."},
		{StartIndex: 1050, EndIndex: 1250, Type: domain.HighlightPositive, Comment: "Great neighborhood description covering safety and amenities."},
		{StartIndex: 1650, EndIndex: 1800, Type: domain.HighlightObjection, Comment: "Customer raised a price objection that could have been addressed more effectively."},
		{StartIndex: 1800, EndIndex: 1950, Type: domain.HighlightClosing, Comment: "Good attempt at addressing the price objection with alternative options."},
		{StartIndex: 2200, EndIndex: 2400, Type: domain.HighlightClosing, Comment: "Excellent job scheduling a viewing and collecting contact information."},
	}
}

var metricDescriptions = map[string]string{
	"Information Gathering": "How well you collected customer details and understood their needs.",
	"Property Presentation": "How effectively you presented the property features and benefits.",
	"Amenities Coverage":    "How thoroughly you discussed building amenities and facilities.",
	"Neighborhood Benefits": "How well you highlighted location advantages and nearby services.",
	"Objection Handling":    "How effectively you addressed customer concerns and objections.",
	"Closing Techniques":    "How well you moved the conversation toward a commitment.",
}

// MetricDescription returns the description of a metric dimension.
func MetricDescription(name string) string {
	if d, ok := metricDescriptions[name]; ok {
		return d
	}
	return "Performance in this area."
}

// Suggestions returns the fixed improvement suggestions.
func Suggestions() []domain.Suggestion {
	return []domain.Suggestion{
		{
			Title:       "Improve objection handling techniques",
			Description: "When customers raise concerns about price, try to emphasize value rather than immediately offering discounts. Highlight the unique features that justify the price point.",
			Priority:    domain.PriorityHigh,
		},
		{
			Title:       "Enhance property presentation",
			Description: "Use more sensory language when describing the property. Help customers visualize themselves living in the space by painting a picture with your words.",
			Priority:    domain.PriorityMedium,
		},
		{
			Title:       "Strengthen closing techniques",
			Description: "After scheduling a viewing, try to create more excitement about the next steps. Consider mentioning the application process to prepare them for a potential decision after the viewing.",
			Priority:    domain.PriorityMedium,
		},
		{
			Title:       "Expand neighborhood benefits discussion",
			Description: "Include more details about lifestyle elements like restaurants, entertainment options, and community events to help customers connect emotionally with the neighborhood.",
			Priority:    domain.PriorityLow,
		},
	}
}

// Generator produces randomized sample records. It is not safe for
// concurrent use; callers serialize access.
type Generator struct {
	rng   *rand.Rand
	now   func() time.Time
	newID func() string
}

// NewGenerator returns a Generator. A nil rng gets a randomly seeded one;
// now and newID default to time.Now and a random base36 id.
func NewGenerator(rng *rand.Rand, now func() time.Time, newID func() string) *Generator {
	g := &Generator{rng: rng, now: now, newID: newID}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.newID == nil {
		g.newID = g.ID
	}
	return g
}

// NewSeeded returns a deterministic Generator for the given seed.
func NewSeeded(seed uint64, now func() time.Time, newID func() string) *Generator {
	return NewGenerator(rand.New(rand.NewPCG(seed, seed)), now, newID)
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// ID returns a random 11 character base36 id.
func (g *Generator) ID() string {
	b := make([]byte, 11)
	for i := range b {
		b[i] = base36[g.rng.IntN(len(base36))]
	}
	return string(b)
}

// Score returns a uniformly random integer in [lo, hi].
func (g *Generator) Score(lo, hi int) int {
	return g.rng.IntN(hi-lo+1) + lo
}

// RecentDate returns a time up to 29 whole days before now.
func (g *Generator) RecentDate() time.Time {
	days := g.rng.IntN(30)
	return g.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
}

// Metrics scores every dimension in domain.MetricNames between 40 and 95.
func (g *Generator) Metrics() []domain.Metric {
	out := make([]domain.Metric, 0, len(domain.MetricNames))
	for _, name := range domain.MetricNames {
		out = append(out, domain.Metric{Name: name, Value: g.Score(40, 95), Description: MetricDescription(name)})
	}
	return out
}

// Recording returns a sample recording lasting 3 to 7 minutes.
func (g *Generator) Recording() domain.Recording {
	id := g.newID()
	short := id
	if len(short) > 5 {
		short = short[:5]
	}
	return domain.Recording{
		ID:        id,
		FileName:  "call-recording-" + short + ".mp3",
		FileURL:   "/mock-audio.mp3",
		Duration:  float64(180 + g.rng.IntN(240)),
		CreatedAt: g.RecentDate(),
	}
}

// Transcript returns the sample transcript, with highlights, for a recording.
func (g *Generator) Transcript(recordingID string) domain.Transcript {
	return domain.Transcript{
		ID:          g.newID(),
		RecordingID: recordingID,
		Text:        Transcript,
		Utterances:  Utterances(),
		Highlights:  Highlights(),
		CreatedAt:   g.RecentDate(),
	}
}

// Analysis returns a sample analysis scoring between 60 and 85 overall.
func (g *Generator) Analysis(recordingID, transcriptID string) domain.Analysis {
	return domain.Analysis{
		ID:           g.newID(),
		RecordingID:  recordingID,
		TranscriptID: transcriptID,
		OverallScore: g.Score(60, 85),
		Metrics:      g.Metrics(),
		Suggestions:  Suggestions(),
		CreatedAt:    g.RecentDate(),
	}
}

// Triple returns a cross-referenced recording, transcript and analysis.
// The recording already carries both back-references.
func (g *Generator) Triple() (domain.Recording, domain.Transcript, domain.Analysis) {
	r := g.Recording()
	t := g.Transcript(r.ID)
	a := g.Analysis(r.ID, t.ID)
	r.TranscriptID = t.ID
	r.AnalysisID = a.ID
	return r, t, a
}
