// Package compositor merges a transcript's text, utterances and highlights
// into one ordered, render-ready stream of annotated segments.
//
// All offsets are rune indexes into the transcript text. For every utterance
// the emitted segments concatenate to exactly text[u.StartIndex:u.EndIndex],
// and tagged segments never overlap: when highlights contend for the same
// region the one sorted first (lowest start, then input order) keeps it.
package compositor

import (
	"cmp"
	"iter"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-call-analysis/internal/domain"
)

// Segment is a contiguous slice of one utterance. Highlight is nil for
// untagged text.
type Segment struct {
	Text      string            `json:"text"`
	Start     int               `json:"startIndex"`
	End       int               `json:"endIndex"`
	Highlight *domain.Highlight `json:"highlight,omitempty"`
	Tone      Tone              `json:"tone,omitempty"`
	Label     string            `json:"label,omitempty"`
}

// Tagged reports whether the segment carries a highlight.
func (s Segment) Tagged() bool { return s.Highlight != nil }

// Block is one utterance with its segments.
type Block struct {
	Index    int       `json:"index"`
	Speaker  string    `json:"speaker"`
	Agent    bool      `json:"agent"`
	Start    int       `json:"startIndex"`
	End      int       `json:"endIndex"`
	Segments []Segment `json:"segments"`
}

// Text returns the concatenated segment text.
func (b Block) Text() string {
	var sb strings.Builder
	for _, s := range b.Segments {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Tone is the display color family of a highlight.
type Tone string

const (
	ToneGreen  Tone = "green"
	ToneRed    Tone = "red"
	ToneBlue   Tone = "blue"
	ToneYellow Tone = "yellow"
	TonePurple Tone = "purple"
	ToneGray   Tone = "gray"
)

// ToneOf maps a highlight type to its tone.
func ToneOf(t domain.HighlightType) Tone {
	switch t {
	case domain.HighlightPositive:
		return ToneGreen
	case domain.HighlightNegative:
		return ToneRed
	case domain.HighlightQuestion:
		return ToneBlue
	case domain.HighlightObjection:
		return ToneYellow
	case domain.HighlightClosing:
		return TonePurple
	}
	return ToneGray
}

var titler = cases.Title(language.English)

// LabelOf returns the heading shown for a selected highlight, e.g.
// "Objection Point".
func LabelOf(t domain.HighlightType) string {
	return titler.String(string(t)) + " Point"
}

// IsAgent reports whether a speaker label names the sales agent.
func IsAgent(speaker string) bool {
	return strings.Contains(strings.ToLower(speaker), "agent")
}

// Overlaps reports whether h overlaps u: h starts inside u, ends inside u,
// or contains u entirely.
func Overlaps(h domain.Highlight, u domain.Utterance) bool {
	startsInside := h.StartIndex >= u.StartIndex && h.StartIndex < u.EndIndex
	endsInside := h.EndIndex > u.StartIndex && h.EndIndex <= u.EndIndex
	contains := h.StartIndex <= u.StartIndex && h.EndIndex >= u.EndIndex
	return startsInside || endsInside || contains
}

// Segments splits one utterance into untagged and tagged slices.
//
// With no overlapping highlight the result is a single untagged segment
// holding u.Text. Otherwise overlapping highlights are stably sorted by
// start, clamped to the utterance bounds, and swept left to right; a
// highlight starting before the cursor only contributes the part past it.
func Segments(text string, u domain.Utterance, hs []domain.Highlight) []Segment {
	return segments([]rune(text), u, hs)
}

func segments(runes []rune, u domain.Utterance, hs []domain.Highlight) []Segment {
	var over []domain.Highlight
	for _, h := range hs {
		if Overlaps(h, u) {
			over = append(over, h)
		}
	}
	if len(over) == 0 {
		return []Segment{{Text: u.Text, Start: u.StartIndex, End: u.EndIndex}}
	}
	slices.SortStableFunc(over, func(a, b domain.Highlight) int { return cmp.Compare(a.StartIndex, b.StartIndex) })

	lo := clamp(u.StartIndex, 0, len(runes))
	hi := clamp(u.EndIndex, lo, len(runes))

	out := make([]Segment, 0, 2*len(over)+1)
	cursor := lo
	for i := range over {
		h := &over[i]
		start := min(max(h.StartIndex, lo, cursor), hi)
		end := min(h.EndIndex, hi)
		if start > cursor {
			out = append(out, Segment{Text: string(runes[cursor:start]), Start: cursor, End: start})
			cursor = start
		}
		if end <= start {
			continue
		}
		out = append(out, Segment{
			Text:      string(runes[start:end]),
			Start:     start,
			End:       end,
			Highlight: h,
			Tone:      ToneOf(h.Type),
			Label:     LabelOf(h.Type),
		})
		cursor = end
	}
	if cursor < hi {
		out = append(out, Segment{Text: string(runes[cursor:hi]), Start: cursor, End: hi})
	}
	return out
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// Blocks returns the annotated view of a transcript, one Block per
// utterance in input order. The sequence is recomputed on every iteration
// and holds no state between runs.
func Blocks(text string, us []domain.Utterance, hs []domain.Highlight) iter.Seq[Block] {
	return func(yield func(Block) bool) {
		runes := []rune(text)
		for i, u := range us {
			b := Block{
				Index:    i,
				Speaker:  u.Speaker,
				Agent:    IsAgent(u.Speaker),
				Start:    u.StartIndex,
				End:      u.EndIndex,
				Segments: segments(runes, u, hs),
			}
			if !yield(b) {
				return
			}
		}
	}
}

// Collect materializes Blocks for a transcript.
func Collect(t domain.Transcript) []Block {
	return slices.Collect(Blocks(t.Text, t.Utterances, t.Highlights))
}
