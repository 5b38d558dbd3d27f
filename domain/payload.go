package domain

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"session-lab/errors"
)

// Payload is the tagged variant of a participant answer.
// Each concrete type matches exactly one QuestionType.
type Payload interface {
	Kind() QuestionType
}

type SingleChoiceAnswer struct{ Option int }

type MultipleChoiceAnswer struct{ Options []int }

type RatingAnswer struct{ Value int }

type TextAnswer struct{ Text string }

type MatchingAnswer struct{ Pairs map[string]string }

type WordCloudEntry struct{ Text string }

func (SingleChoiceAnswer) Kind() QuestionType   { return SingleChoice }
func (MultipleChoiceAnswer) Kind() QuestionType { return MultipleChoice }
func (RatingAnswer) Kind() QuestionType         { return RatingScale }
func (TextAnswer) Kind() QuestionType           { return TextInput }
func (MatchingAnswer) Kind() QuestionType       { return Matching }
func (WordCloudEntry) Kind() QuestionType       { return WordCloud }

// PayloadRecord is the flat wire and storage form of a Payload.
type PayloadRecord struct {
	Type            QuestionType      `json:"type,omitempty"`
	SelectedOption  *int              `json:"selectedOption,omitempty"`
	SelectedOptions []int             `json:"selectedOptions,omitempty"`
	Rating          *int              `json:"rating,omitempty"`
	Text            string            `json:"text,omitempty"`
	Matching        map[string]string `json:"matching,omitempty"`
}

// ToRecord flattens a payload.
func ToRecord(p Payload) PayloadRecord {
	switch v := p.(type) {
	case SingleChoiceAnswer:
		opt := v.Option
		return PayloadRecord{Type: SingleChoice, SelectedOption: &opt}
	case MultipleChoiceAnswer:
		return PayloadRecord{Type: MultipleChoice, SelectedOptions: slices.Clone(v.Options)}
	case RatingAnswer:
		val := v.Value
		return PayloadRecord{Type: RatingScale, Rating: &val}
	case TextAnswer:
		return PayloadRecord{Type: TextInput, Text: v.Text}
	case MatchingAnswer:
		return PayloadRecord{Type: Matching, Matching: v.Pairs}
	case WordCloudEntry:
		return PayloadRecord{Type: WordCloud, Text: v.Text}
	}
	return PayloadRecord{}
}

// Decode turns a record into the variant expected by a question of type t.
// A record whose declared type disagrees with t, or whose shape is missing, is rejected.
func (r PayloadRecord) Decode(t QuestionType) (Payload, error) {
	if r.Type != "" && r.Type != t {
		return nil, invalid("payload type %s does not match question type %s", r.Type, t)
	}
	switch t {
	case SingleChoice:
		if r.SelectedOption == nil {
			if len(r.SelectedOptions) == 1 {
				return SingleChoiceAnswer{Option: r.SelectedOptions[0]}, nil
			}
			return nil, invalid("selectedOption is required")
		}
		return SingleChoiceAnswer{Option: *r.SelectedOption}, nil
	case MultipleChoice:
		if len(r.SelectedOptions) == 0 {
			return nil, invalid("selectedOptions is required")
		}
		return MultipleChoiceAnswer{Options: slices.Clone(r.SelectedOptions)}, nil
	case RatingScale:
		if r.Rating == nil {
			return nil, invalid("rating is required")
		}
		return RatingAnswer{Value: *r.Rating}, nil
	case TextInput:
		return TextAnswer{Text: r.Text}, nil
	case Matching:
		if len(r.Matching) == 0 {
			return nil, invalid("matching is required")
		}
		pairs := make(map[string]string, len(r.Matching))
		for k, v := range r.Matching {
			pairs[k] = v
		}
		return MatchingAnswer{Pairs: pairs}, nil
	case WordCloud:
		return WordCloudEntry{Text: r.Text}, nil
	}
	return nil, invalid("unknown question type %q", t)
}

// Screener finds forbidden words in free text.
type Screener interface {
	Screen(text string) []string
}

// ValidatePayload checks a decoded payload against the question configuration.
// Free text is trimmed; the returned payload is the one to store.
func ValidatePayload(q Question, p Payload, screener Screener) (Payload, error) {
	c := q.Config
	switch v := p.(type) {
	case SingleChoiceAnswer:
		if v.Option < 0 || v.Option >= len(c.Options) {
			return nil, invalid("option %d out of range [0,%d)", v.Option, len(c.Options))
		}
		return v, nil
	case MultipleChoiceAnswer:
		seen := make(map[int]struct{}, len(v.Options))
		for _, o := range v.Options {
			if o < 0 || o >= len(c.Options) {
				return nil, invalid("option %d out of range [0,%d)", o, len(c.Options))
			}
			if _, dup := seen[o]; dup {
				return nil, invalid("option %d selected twice", o)
			}
			seen[o] = struct{}{}
		}
		if c.MaxSelections > 0 && len(v.Options) > c.MaxSelections {
			return nil, invalid("at most %d options may be selected", c.MaxSelections)
		}
		opts := slices.Clone(v.Options)
		slices.Sort(opts)
		return MultipleChoiceAnswer{Options: opts}, nil
	case RatingAnswer:
		if v.Value < c.ScaleMin || v.Value > c.ScaleMax {
			return nil, invalid("rating %d outside [%d,%d]", v.Value, c.ScaleMin, c.ScaleMax)
		}
		return v, nil
	case TextAnswer:
		text, err := checkText(c, v.Text)
		if err != nil {
			return nil, err
		}
		if profane(screener, text) {
			return nil, invalid("answer contains profanity")
		}
		return TextAnswer{Text: text}, nil
	case MatchingAnswer:
		for left, right := range v.Pairs {
			if !slices.Contains(c.MatchLeft, left) {
				return nil, invalid("unknown matching item %q", left)
			}
			if !slices.Contains(c.MatchRight, right) {
				return nil, invalid("unknown matching target %q", right)
			}
		}
		return v, nil
	case WordCloudEntry:
		text, err := checkText(c, v.Text)
		if err != nil {
			return nil, err
		}
		if text == "" {
			return nil, invalid("word cloud entry is empty")
		}
		if banned := bannedWord(c.BannedWords, text); banned != "" {
			return nil, invalid("entry contains banned word %q", banned)
		}
		if profane(screener, text) {
			return nil, invalid("entry contains profanity")
		}
		return WordCloudEntry{Text: text}, nil
	}
	return nil, invalid("unsupported payload %T", p)
}

func checkText(c QuestionConfig, raw string) (string, error) {
	text := strings.Join(strings.Fields(raw), " ")
	n := utf8.RuneCountInString(text)
	if n < c.MinLength {
		return "", invalid("text shorter than %d characters", c.MinLength)
	}
	if c.MaxLength > 0 && n > c.MaxLength {
		return "", invalid("text longer than %d characters", c.MaxLength)
	}
	return text, nil
}

func profane(screener Screener, text string) bool {
	return screener != nil && len(screener.Screen(text)) > 0
}

func bannedWord(banned []string, text string) string {
	words := strings.Fields(strings.ToLower(text))
	for _, b := range banned {
		b = strings.ToLower(strings.TrimSpace(b))
		if b == "" {
			continue
		}
		if slices.Contains(words, b) || strings.ToLower(text) == b {
			return b
		}
	}
	return ""
}

func invalid(format string, args ...any) error {
	return errors.Wrap(errors.CodeInvalidPayload, "invalid payload", fmt.Errorf(format, args...))
}
