package domain_test

import (
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"session-lab/domain"
	"session-lab/errors"
	"session-lab/moderation"
)

func ptr(v int) *int { return &v }

func TestValidatePayload(t *testing.T) {
	mod, err := moderation.NewModerator([]string{"darn"}, '*', logs.GetLoggerFromLevel(slog.LevelError))
	require.NoError(t, err)

	choice := domain.Question{ID: "q1", Type: domain.SingleChoice, Config: domain.QuestionConfig{Options: []string{"a", "b", "c"}}}
	multi := domain.Question{ID: "q2", Type: domain.MultipleChoice, Config: domain.QuestionConfig{Options: []string{"a", "b", "c"}, MaxSelections: 2}}
	rating := domain.Question{ID: "q3", Type: domain.RatingScale, Config: domain.QuestionConfig{ScaleMin: 1, ScaleMax: 5}}
	text := domain.Question{ID: "q4", Type: domain.TextInput, Config: domain.QuestionConfig{MinLength: 3, MaxLength: 5}}
	matching := domain.Question{ID: "q5", Type: domain.Matching, Config: domain.QuestionConfig{MatchLeft: []string{"go", "rust"}, MatchRight: []string{"gc", "borrow"}}}
	cloud := domain.Question{ID: "q6", Type: domain.WordCloud, Config: domain.QuestionConfig{MaxLength: 20, BannedWords: []string{"Boring"}}}

	tests := []struct {
		name     string
		question domain.Question
		record   domain.PayloadRecord
		want     domain.Payload
		invalid  bool
	}{
		{name: "option in range", question: choice, record: domain.PayloadRecord{SelectedOption: ptr(2)}, want: domain.SingleChoiceAnswer{Option: 2}},
		{name: "option above range", question: choice, record: domain.PayloadRecord{SelectedOption: ptr(3)}, invalid: true},
		{name: "negative option", question: choice, record: domain.PayloadRecord{SelectedOption: ptr(-1)}, invalid: true},
		{name: "missing option", question: choice, record: domain.PayloadRecord{}, invalid: true},
		{name: "selections are sorted", question: multi, record: domain.PayloadRecord{SelectedOptions: []int{2, 0}}, want: domain.MultipleChoiceAnswer{Options: []int{0, 2}}},
		{name: "duplicate selections", question: multi, record: domain.PayloadRecord{SelectedOptions: []int{1, 1}}, invalid: true},
		{name: "too many selections", question: multi, record: domain.PayloadRecord{SelectedOptions: []int{0, 1, 2}}, invalid: true},
		{name: "selection out of range", question: multi, record: domain.PayloadRecord{SelectedOptions: []int{4}}, invalid: true},
		{name: "rating at lower bound", question: rating, record: domain.PayloadRecord{Rating: ptr(1)}, want: domain.RatingAnswer{Value: 1}},
		{name: "rating at upper bound", question: rating, record: domain.PayloadRecord{Rating: ptr(5)}, want: domain.RatingAnswer{Value: 5}},
		{name: "rating below scale", question: rating, record: domain.PayloadRecord{Rating: ptr(0)}, invalid: true},
		{name: "rating above scale", question: rating, record: domain.PayloadRecord{Rating: ptr(6)}, invalid: true},
		{name: "text is trimmed", question: text, record: domain.PayloadRecord{Text: "  été "}, want: domain.TextAnswer{Text: "été"}},
		{name: "text counted in runes", question: text, record: domain.PayloadRecord{Text: "ééééé"}, want: domain.TextAnswer{Text: "ééééé"}},
		{name: "text too short", question: text, record: domain.PayloadRecord{Text: "ok"}, invalid: true},
		{name: "text too long", question: text, record: domain.PayloadRecord{Text: "ééééééé"}, invalid: true},
		{name: "profane text", question: text, record: domain.PayloadRecord{Text: "darn"}, invalid: true},
		{name: "known pairs", question: matching, record: domain.PayloadRecord{Matching: map[string]string{"go": "gc"}}, want: domain.MatchingAnswer{Pairs: map[string]string{"go": "gc"}}},
		{name: "unknown matching item", question: matching, record: domain.PayloadRecord{Matching: map[string]string{"java": "gc"}}, invalid: true},
		{name: "unknown matching target", question: matching, record: domain.PayloadRecord{Matching: map[string]string{"rust": "jit"}}, invalid: true},
		{name: "cloud entry", question: cloud, record: domain.PayloadRecord{Text: " fun  times "}, want: domain.WordCloudEntry{Text: "fun times"}},
		{name: "empty cloud entry", question: cloud, record: domain.PayloadRecord{Text: "   "}, invalid: true},
		{name: "banned word ignores case", question: cloud, record: domain.PayloadRecord{Text: "so boring"}, invalid: true},
		{name: "profanity hidden by noise", question: cloud, record: domain.PayloadRecord{Text: "d.4.r.n it"}, invalid: true},
		{name: "type mismatch", question: choice, record: domain.PayloadRecord{Type: domain.RatingScale, Rating: ptr(3)}, invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)

			decoded, err := tt.record.Decode(tt.question.Type)
			var got domain.Payload
			if err == nil {
				got, err = domain.ValidatePayload(tt.question, decoded, mod)
			}

			if tt.invalid {
				req.Equal(errors.CodeInvalidPayload, errors.CodeOf(err))
				req.Nil(got)
				return
			}
			req.NoError(err)
			req.Equal(tt.want, got)
		})
	}
}

func TestValidatePayload_WithoutScreener(t *testing.T) {
	req := require.New(t)
	q := domain.Question{ID: "q1", Type: domain.TextInput}

	// Without a dictionary only the question limits apply
	got, err := domain.ValidatePayload(q, domain.TextAnswer{Text: "darn"}, nil)
	req.NoError(err)
	req.Equal(domain.TextAnswer{Text: "darn"}, got)
}
