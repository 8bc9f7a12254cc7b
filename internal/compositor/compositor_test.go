package compositor

import (
	"math"
	"strings"
	"testing"

	"github.com/tbourn/go-call-analysis/internal/domain"
)

func hl(start, end int, typ domain.HighlightType) domain.Highlight {
	return domain.Highlight{StartIndex: start, EndIndex: end, Type: typ, Comment: string(typ)}
}

func utt(text string, start, end int) domain.Utterance {
	return domain.Utterance{Speaker: "Agent", Text: string([]rune(text)[start:end]), StartIndex: start, EndIndex: end}
}

func TestSegments_SplitsAroundHighlight(t *testing.T) {
	text := "abcdefghijklmnopqrst" // 20 runes
	u := utt(text, 0, 20)

	got := Segments(text, u, []domain.Highlight{hl(5, 10, domain.HighlightPositive)})
	if len(got) != 3 {
		t.Fatalf("len = %d; want 3: %+v", len(got), got)
	}
	want := []struct {
		start, end int
		tagged     bool
	}{{0, 5, false}, {5, 10, true}, {10, 20, false}}
	for i, w := range want {
		s := got[i]
		if s.Start != w.start || s.End != w.end || s.Tagged() != w.tagged {
			t.Fatalf("seg %d = [%d,%d) tagged=%v; want [%d,%d) tagged=%v", i, s.Start, s.End, s.Tagged(), w.start, w.end, w.tagged)
		}
		if s.Text != text[w.start:w.end] {
			t.Fatalf("seg %d text = %q", i, s.Text)
		}
	}
	if got[1].Highlight.Type != domain.HighlightPositive || got[1].Tone != ToneGreen || got[1].Label != "Positive Point" {
		t.Fatalf("tagged seg annotations wrong: %+v", got[1])
	}
}

func TestSegments_NoOverlap_SingleUntagged(t *testing.T) {
	text := "Agent: hello there\n\nCustomer: hi"
	u := domain.Utterance{Speaker: "Agent", Text: "hello there", StartIndex: 7, EndIndex: 18}
	got := Segments(text, u, []domain.Highlight{hl(20, 30, domain.HighlightQuestion), hl(0, 7, domain.HighlightNegative)})
	if len(got) != 1 || got[0].Tagged() || got[0].Text != u.Text {
		t.Fatalf("expected one untagged segment equal to utterance text, got %+v", got)
	}
}

func TestOverlaps(t *testing.T) {
	u := domain.Utterance{StartIndex: 10, EndIndex: 20}
	cases := []struct {
		name string
		h    domain.Highlight
		want bool
	}{
		{"starts inside", hl(15, 30, domain.HighlightPositive), true},
		{"ends inside", hl(0, 11, domain.HighlightPositive), true},
		{"contains", hl(0, 30, domain.HighlightPositive), true},
		{"exact", hl(10, 20, domain.HighlightPositive), true},
		{"ends at start", hl(0, 10, domain.HighlightPositive), false},
		{"starts at end", hl(20, 25, domain.HighlightPositive), false},
		{"before", hl(0, 5, domain.HighlightPositive), false},
	}
	for _, tc := range cases {
		if got := Overlaps(tc.h, u); got != tc.want {
			t.Errorf("%s: Overlaps = %v; want %v", tc.name, got, tc.want)
		}
	}
}

func TestSegments_ClampsToUtterance(t *testing.T) {
	text := "0123456789abcdefghij"
	u := utt(text, 5, 15)
	got := Segments(text, u, []domain.Highlight{hl(0, 8, domain.HighlightObjection), hl(12, 40, domain.HighlightClosing)})

	var parts []string
	for _, s := range got {
		parts = append(parts, s.Text)
	}
	if strings.Join(parts, "") != text[5:15] {
		t.Fatalf("reconstruction = %q; want %q", strings.Join(parts, ""), text[5:15])
	}
	if got[0].Start != 5 || got[0].End != 8 || !got[0].Tagged() {
		t.Fatalf("first segment should be clamped tag [5,8), got %+v", got[0])
	}
	last := got[len(got)-1]
	if last.Start != 12 || last.End != 15 || last.Tone != TonePurple {
		t.Fatalf("last segment should be clamped tag [12,15), got %+v", last)
	}
}

func TestSegments_FirstSortedWinsContestedRegion(t *testing.T) {
	text := "abcdefghijklmnopqrst"
	u := utt(text, 0, 20)
	a := hl(2, 10, domain.HighlightPositive)
	b := hl(6, 14, domain.HighlightNegative)
	c := hl(2, 4, domain.HighlightQuestion) // same start as a, later in input

	got := Segments(text, u, []domain.Highlight{b, a, c})

	var tagged []Segment
	var sb strings.Builder
	for _, s := range got {
		sb.WriteString(s.Text)
		if s.Tagged() {
			tagged = append(tagged, s)
		}
	}
	if sb.String() != text {
		t.Fatalf("reconstruction = %q", sb.String())
	}
	for i := 1; i < len(tagged); i++ {
		if tagged[i].Start < tagged[i-1].End {
			t.Fatalf("tagged segments overlap: %+v %+v", tagged[i-1], tagged[i])
		}
	}
	if len(tagged) != 2 {
		t.Fatalf("expected a then truncated b, got %+v", tagged)
	}
	if tagged[0].Highlight.Type != domain.HighlightPositive || tagged[0].Start != 2 || tagged[0].End != 10 {
		t.Fatalf("a should win [2,10), got %+v", tagged[0])
	}
	if tagged[1].Highlight.Type != domain.HighlightNegative || tagged[1].Start != 10 || tagged[1].End != 14 {
		t.Fatalf("b should be truncated to [10,14), got %+v", tagged[1])
	}
}

func TestSegments_EmptyHighlightSkipped(t *testing.T) {
	text := "abcdefghij"
	u := utt(text, 0, 10)
	got := Segments(text, u, []domain.Highlight{hl(4, 4, domain.HighlightPositive)})
	var sb strings.Builder
	for _, s := range got {
		if s.Tagged() {
			t.Fatalf("empty highlight should not produce a tagged segment: %+v", s)
		}
		sb.WriteString(s.Text)
	}
	if sb.String() != text {
		t.Fatalf("reconstruction = %q", sb.String())
	}
}

func TestSegments_RuneOffsets(t *testing.T) {
	text := "Agent: ¿Qué tal? café"
	runes := []rune(text)
	u := domain.Utterance{Speaker: "Agent", Text: string(runes[7:]), StartIndex: 7, EndIndex: len(runes)}
	got := Segments(text, u, []domain.Highlight{hl(7, 16, domain.HighlightQuestion)})
	if got[0].Text != "¿Qué tal?" {
		t.Fatalf("tagged text = %q", got[0].Text)
	}
	if got[1].Text != " café" {
		t.Fatalf("trailing text = %q", got[1].Text)
	}
}

func TestBlocks_ReconstructsEveryUtterance(t *testing.T) {
	text := "Agent: Welcome to the open house.\n\nCustomer: Thanks, how much is it?\n\nAgent: It is listed at 450k."
	runes := []rune(text)
	var us []domain.Utterance
	for _, line := range []struct{ speaker, body string }{
		{"Agent", "Welcome to the open house."},
		{"Customer", "Thanks, how much is it?"},
		{"Agent", "It is listed at 450k."},
	} {
		i := strings.Index(text, line.body)
		start := len([]rune(text[:i]))
		us = append(us, domain.Utterance{Speaker: line.speaker, Text: line.body, StartIndex: start, EndIndex: start + len([]rune(line.body))})
	}
	hs := []domain.Highlight{
		hl(0, 20, domain.HighlightPositive),
		hl(50, 80, domain.HighlightObjection),
		hl(us[2].StartIndex+3, len(runes), domain.HighlightClosing),
	}

	seq := Blocks(text, us, hs)
	for pass := 0; pass < 2; pass++ {
		n := 0
		for b := range seq {
			u := us[b.Index]
			if b.Text() != string(runes[u.StartIndex:u.EndIndex]) {
				t.Fatalf("pass %d block %d: %q != %q", pass, b.Index, b.Text(), u.Text)
			}
			if b.Agent != (u.Speaker == "Agent") {
				t.Fatalf("agent flag wrong for %q", u.Speaker)
			}
			n++
		}
		if n != len(us) {
			t.Fatalf("pass %d: %d blocks; want %d", pass, n, len(us))
		}
	}
}

func TestBlocks_StopsEarly(t *testing.T) {
	text := "ab"
	us := []domain.Utterance{utt(text, 0, 1), utt(text, 1, 2)}
	n := 0
	for range Blocks(text, us, nil) {
		n++
		break
	}
	if n != 1 {
		t.Fatalf("expected early stop after one block")
	}
}

func TestCollect(t *testing.T) {
	tr := domain.Transcript{Text: "hello", Utterances: []domain.Utterance{utt("hello", 0, 5)}}
	got := Collect(tr)
	if len(got) != 1 || got[0].Text() != "hello" {
		t.Fatalf("Collect = %+v", got)
	}
	if len(Collect(domain.Transcript{})) != 0 {
		t.Fatalf("no utterances should yield no blocks")
	}
}

func TestToneOfAndIsAgent(t *testing.T) {
	if ToneOf("unknown") != ToneGray || ToneOf(domain.HighlightObjection) != ToneYellow {
		t.Fatalf("tone mapping wrong")
	}
	if !IsAgent("Sales AGENT") || IsAgent("Speaker A") {
		t.Fatalf("IsAgent mismatch")
	}
}

func TestSegments_ExtremeOffsetsSortByStart(t *testing.T) {
	text := "abcdefghijklmnopqrst"
	u := utt(text, 0, 20)
	wide := hl(math.MinInt, math.MaxInt, domain.HighlightNegative)
	inner := hl(5, 10, domain.HighlightPositive)

	got := Segments(text, u, []domain.Highlight{inner, wide})
	if len(got) != 1 || !got[0].Tagged() || got[0].Text != text || got[0].Highlight.Type != domain.HighlightNegative {
		t.Fatalf("want one negative segment over the utterance, got %+v", got)
	}
}
