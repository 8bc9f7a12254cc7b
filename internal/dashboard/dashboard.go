// Package dashboard derives presentation values from an Analysis: score
// bands, normalized suggestion priorities and chart points. Everything here
// is a pure function of its input.
package dashboard

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-call-analysis/internal/domain"
)

// Band is a qualitative score bucket.
type Band string

const (
	BandGood Band = "good"
	BandFair Band = "fair"
	BandPoor Band = "poor"
)

// BandOf buckets a 0–100 score: >= 80 good, >= 60 fair, otherwise poor.
func BandOf(score int) Band {
	switch {
	case score >= 80:
		return BandGood
	case score >= 60:
		return BandFair
	default:
		return BandPoor
	}
}

// Tone returns the display color of a band.
func (b Band) Tone() string {
	switch b {
	case BandGood:
		return "green"
	case BandFair:
		return "yellow"
	}
	return "red"
}

// PriorityOf normalizes a suggestion priority. Absent or unrecognized values
// become medium.
func PriorityOf(s domain.Suggestion) domain.Priority {
	switch p := domain.Priority(strings.ToLower(strings.TrimSpace(string(s.Priority)))); p {
	case domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow:
		return p
	}
	return domain.PriorityMedium
}

var titler = cases.Title(language.English)

// PriorityLabel renders a priority for display, e.g. "High Priority".
func PriorityLabel(p domain.Priority) string {
	return titler.String(string(p)) + " Priority"
}

func priorityTone(p domain.Priority) string {
	switch p {
	case domain.PriorityHigh:
		return "red"
	case domain.PriorityLow:
		return "green"
	}
	return "yellow"
}

type Score struct {
	Value int    `json:"value"`
	Band  Band   `json:"band"`
	Tone  string `json:"tone"`
}

type MetricView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Score
}

type SuggestionView struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    domain.Priority `json:"priority"`
	Label       string          `json:"label"`
	Tone        string          `json:"tone"`
}

// ChartPoint is one axis of the radar chart.
type ChartPoint struct {
	Subject  string `json:"subject"`
	Value    int    `json:"value"`
	FullMark int    `json:"fullMark"`
}

// View is the dashboard view model for one Analysis.
type View struct {
	Overall     Score            `json:"overall"`
	Metrics     []MetricView     `json:"metrics"`
	Suggestions []SuggestionView `json:"suggestions"`
	Chart       []ChartPoint     `json:"chart"`
}

func score(v int) Score {
	b := BandOf(v)
	return Score{Value: v, Band: b, Tone: b.Tone()}
}

// Build derives the view for a.
func Build(a domain.Analysis) View {
	v := View{
		Overall:     score(a.OverallScore),
		Metrics:     make([]MetricView, 0, len(a.Metrics)),
		Suggestions: make([]SuggestionView, 0, len(a.Suggestions)),
		Chart:       make([]ChartPoint, 0, len(a.Metrics)),
	}
	for _, m := range a.Metrics {
		v.Metrics = append(v.Metrics, MetricView{Name: m.Name, Description: m.Description, Score: score(m.Value)})
		v.Chart = append(v.Chart, ChartPoint{Subject: m.Name, Value: m.Value, FullMark: 100})
	}
	for _, s := range a.Suggestions {
		p := PriorityOf(s)
		v.Suggestions = append(v.Suggestions, SuggestionView{
			Title:       s.Title,
			Description: s.Description,
			Priority:    p,
			Label:       PriorityLabel(p),
			Tone:        priorityTone(p),
		})
	}
	return v
}
