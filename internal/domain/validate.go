package domain

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Coordinate-space violations reported by CheckCoordinates.
var (
	ErrOffsetOutOfRange   = errors.New("offset out of range")
	ErrUtteranceOverlap   = errors.New("utterances overlap or are out of order")
	ErrUtteranceMismatch  = errors.New("utterance text does not match transcript slice")
	ErrMetricOutOfRange   = errors.New("metric value out of range")
	ErrInvalidRecordField = errors.New("invalid record")
)

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New()

func structErr(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecordField, err)
	}
	return nil
}

// Validate implements Record.
func (r Recording) Validate() error { return structErr(r) }

// Validate implements Record. Besides field tags it checks that utterances
// and highlights share the coordinate space of Text.
func (t Transcript) Validate() error {
	if err := structErr(t); err != nil {
		return err
	}
	return CheckCoordinates(t.Text, t.Utterances, t.Highlights)
}

// Validate implements Record.
func (a Analysis) Validate() error { return structErr(a) }

// CheckCoordinates verifies that every utterance lies within text, that
// utterances are sorted and disjoint, that each utterance's Text equals the
// rune slice it addresses, and that highlights lie within text.
func CheckCoordinates(text string, us []Utterance, hs []Highlight) error {
	runes := []rune(text)
	n := len(runes)

	cursor := 0
	for i, u := range us {
		if u.StartIndex < 0 || u.EndIndex > n || u.StartIndex > u.EndIndex {
			return fmt.Errorf("utterance %d [%d,%d) of %d: %w", i, u.StartIndex, u.EndIndex, n, ErrOffsetOutOfRange)
		}
		if u.StartIndex < cursor {
			return fmt.Errorf("utterance %d starts at %d before %d: %w", i, u.StartIndex, cursor, ErrUtteranceOverlap)
		}
		if string(runes[u.StartIndex:u.EndIndex]) != u.Text {
			return fmt.Errorf("utterance %d: %w", i, ErrUtteranceMismatch)
		}
		cursor = u.EndIndex
	}
	for i, h := range hs {
		if err := CheckHighlight(h, n); err != nil {
			return fmt.Errorf("highlight %d: %w", i, err)
		}
	}
	return nil
}

// CheckHighlight verifies a highlight addresses [0, textLen).
func CheckHighlight(h Highlight, textLen int) error {
	if h.StartIndex < 0 || h.EndIndex > textLen || h.StartIndex > h.EndIndex {
		return fmt.Errorf("[%d,%d) of %d: %w", h.StartIndex, h.EndIndex, textLen, ErrOffsetOutOfRange)
	}
	return nil
}

// CheckScores verifies the overall score and every metric value are within
// [0, 100].
func CheckScores(overall int, metrics []Metric) error {
	if overall < 0 || overall > 100 {
		return fmt.Errorf("overall score %d: %w", overall, ErrMetricOutOfRange)
	}
	for _, m := range metrics {
		if m.Value < 0 || m.Value > 100 {
			return fmt.Errorf("metric %q value %d: %w", m.Name, m.Value, ErrMetricOutOfRange)
		}
	}
	return nil
}
