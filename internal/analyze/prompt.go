package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tbourn/go-call-analysis/internal/domain"
)

const systemPrompt = "You are an expert real estate sales coach."

const promptTemplate = `Analyze the following sales call transcript between a real estate agent and a potential client.

Evaluate these areas:
1. Information Gathering: how well did the agent collect customer details and understand their needs?
2. Property Presentation: how effectively did the agent present property features and benefits?
3. Amenities Coverage: how thoroughly did the agent discuss building amenities and facilities?
4. Neighborhood Benefits: how well did the agent highlight location advantages and nearby services?
5. Objection Handling: how effectively did the agent address customer concerns and objections?
6. Closing Techniques: how well did the agent move the conversation toward a commitment?

For each area give a score from 0 to 100 and a short description of the performance.
Also give an overall score from 0 to 100, 3 to 5 specific actionable suggestions with a
priority of high, medium or low, and the key moments of the call as highlights
(positive, negative, question, objection or closing). Highlight offsets are character
positions in the transcript below, counted from 0, end exclusive.

Reply with JSON only, in this shape:
{
  "overallScore": number,
  "metrics": [{"name": "Information Gathering", "value": number, "description": "string"}],
  "suggestions": [{"title": "string", "description": "string", "priority": "high|medium|low"}],
  "highlights": [{"startIndex": number, "endIndex": number, "type": "positive|negative|question|objection|closing", "comment": "string"}]
}

Transcript:
%s`

// Prompt renders the user prompt for a transcript.
func Prompt(transcript string) string {
	return fmt.Sprintf(promptTemplate, transcript)
}

type wireMetric struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Description string  `json:"description"`
}

type wireHighlight struct {
	StartIndex float64 `json:"startIndex"`
	EndIndex   float64 `json:"endIndex"`
	Type       string  `json:"type"`
	Comment    string  `json:"comment"`
}

type wireResult struct {
	OverallScore float64             `json:"overallScore"`
	Metrics      []wireMetric        `json:"metrics"`
	Suggestions  []domain.Suggestion `json:"suggestions"`
	Highlights   []wireHighlight     `json:"highlights"`
}

// Parse decodes model output into a Result. It tolerates markdown code
// fences and prose around the JSON object, and rounds numeric fields.
// Range checks are left to the caller.
func Parse(raw string) (Result, error) {
	body := strings.TrimSpace(raw)
	start := strings.IndexByte(body, '{')
	end := strings.LastIndexByte(body, '}')
	if start < 0 || end < start {
		return Result{}, fmt.Errorf("%w: no JSON object", ErrMalformedResponse)
	}

	var w wireResult
	if err := json.Unmarshal([]byte(body[start:end+1]), &w); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	res := Result{
		OverallScore: round(w.OverallScore),
		Metrics:      make([]domain.Metric, 0, len(w.Metrics)),
		Suggestions:  make([]domain.Suggestion, 0, len(w.Suggestions)),
		Highlights:   make([]domain.Highlight, 0, len(w.Highlights)),
	}
	for _, m := range w.Metrics {
		res.Metrics = append(res.Metrics, domain.Metric{Name: m.Name, Value: round(m.Value), Description: m.Description})
	}
	for _, s := range w.Suggestions {
		s.Priority = domain.Priority(strings.ToLower(strings.TrimSpace(string(s.Priority))))
		res.Suggestions = append(res.Suggestions, s)
	}
	for _, h := range w.Highlights {
		res.Highlights = append(res.Highlights, domain.Highlight{
			StartIndex: round(h.StartIndex),
			EndIndex:   round(h.EndIndex),
			Type:       domain.HighlightType(strings.ToLower(strings.TrimSpace(h.Type))),
			Comment:    h.Comment,
		})
	}
	return res, nil
}

func round(f float64) int { return int(math.Round(f)) }

// completer sends one system + user prompt pair to a model and returns the
// text of its reply.
type completer interface {
	complete(ctx context.Context, system, prompt string) (string, error)
}

// analyzeWith runs the shared prompt/parse flow over a model backend.
func analyzeWith(ctx context.Context, provider string, c completer, transcript string) (Result, error) {
	if strings.TrimSpace(transcript) == "" {
		return Result{}, ErrEmptyTranscript
	}
	ctx, span := otel.Tracer("analyze").Start(ctx, "Analyze")
	defer span.End()
	span.SetAttributes(
		attribute.String("analysis.provider", provider),
		attribute.Int("transcript.length", len(transcript)),
	)

	out, err := c.complete(ctx, systemPrompt, Prompt(transcript))
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", provider, err)
	}
	res, err := Parse(out)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", provider, err)
	}
	res.ID = uuid.NewString()
	span.SetAttributes(attribute.Int("analysis.overall_score", res.OverallScore))
	return res, nil
}
