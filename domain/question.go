package domain

import (
	"slices"

	"session-lab/errors"
)

type QuestionType string

const (
	SingleChoice   QuestionType = "single-choice"
	MultipleChoice QuestionType = "multiple-choice"
	RatingScale    QuestionType = "rating-scale"
	TextInput      QuestionType = "text-input"
	Matching       QuestionType = "matching"
	WordCloud      QuestionType = "word-cloud"
)

func (t QuestionType) Valid() bool {
	switch t {
	case SingleChoice, MultipleChoice, RatingScale, TextInput, Matching, WordCloud:
		return true
	}
	return false
}

// Visibility controls which participants see a question's tally.
type Visibility string

const (
	VisibilityNever       Visibility = "never"
	VisibilityAfterSubmit Visibility = "after-submit"
	VisibilityLive        Visibility = "live"
)

// QuestionConfig carries every knob a question type may use; unused fields stay zero.
type QuestionConfig struct {
	Options         []string          `json:"options,omitempty"`
	CorrectOptions  []int             `json:"correctOptions,omitempty"`
	MaxSelections   int               `json:"maxSelections,omitempty"`
	ScaleMin        int               `json:"scaleMin,omitempty"`
	ScaleMax        int               `json:"scaleMax,omitempty"`
	MinLength       int               `json:"minLength,omitempty"`
	MaxLength       int               `json:"maxLength,omitempty"`
	MatchLeft       []string          `json:"matchLeft,omitempty"`
	MatchRight      []string          `json:"matchRight,omitempty"`
	MatchKey        map[string]string `json:"matchKey,omitempty"`
	AllowDuplicates bool              `json:"allowDuplicates,omitempty"`
	BannedWords     []string          `json:"bannedWords,omitempty"`
	MaxWords        int               `json:"maxWords,omitempty"`
}

type Question struct {
	ID          QuestionID     `json:"id"`
	SessionID   SessionID      `json:"sessionId"`
	SubmoduleID SubmoduleID    `json:"submoduleId"`
	Ordinal     int            `json:"ordinal"`
	Type        QuestionType   `json:"type"`
	Config      QuestionConfig `json:"config"`
	Closed      bool           `json:"closed"`
	Visibility  Visibility     `json:"visibility"`

	// TallyVersion is the last tally version made durable with the question.
	// A rebuilt tally never starts below it.
	TallyVersion uint64 `json:"tallyVersion,omitempty"`
}

// Validate checks that a question definition is usable before a session is created.
func (q Question) Validate() error {
	if q.ID == "" || q.SubmoduleID == "" {
		return errors.New(errors.CodeInvalidArgument, "question and submodule ids are required")
	}
	if !q.Type.Valid() {
		return errors.New(errors.CodeInvalidArgument, "unknown question type %q", q.Type)
	}
	switch q.Visibility {
	case VisibilityNever, VisibilityAfterSubmit, VisibilityLive:
	default:
		return errors.New(errors.CodeInvalidArgument, "unknown visibility %q", q.Visibility)
	}
	c := q.Config
	switch q.Type {
	case SingleChoice, MultipleChoice:
		if len(c.Options) < 2 {
			return errors.New(errors.CodeInvalidArgument, "question %s needs at least two options", q.ID)
		}
		for _, i := range c.CorrectOptions {
			if i < 0 || i >= len(c.Options) {
				return errors.New(errors.CodeInvalidArgument, "question %s correct option %d out of range", q.ID, i)
			}
		}
	case RatingScale:
		if c.ScaleMax <= c.ScaleMin {
			return errors.New(errors.CodeInvalidArgument, "question %s scale bounds are inverted", q.ID)
		}
	case Matching:
		if len(c.MatchLeft) == 0 || len(c.MatchRight) == 0 {
			return errors.New(errors.CodeInvalidArgument, "question %s needs matching items", q.ID)
		}
	case TextInput, WordCloud:
		if c.MaxLength > 0 && c.MinLength > c.MaxLength {
			return errors.New(errors.CodeInvalidArgument, "question %s length bounds are inverted", q.ID)
		}
	}
	return nil
}

// Visible reports whether a participant with the given response state may see the tally.
func (q Question) Visible(role Role, responded bool) bool {
	if role == RoleAdmin {
		return true
	}
	switch q.Visibility {
	case VisibilityLive:
		return true
	case VisibilityAfterSubmit:
		return responded
	}
	return false
}

// Clone returns a copy sharing no slices or maps with the receiver.
func (q Question) Clone() Question {
	c := q.Config
	c.Options = slices.Clone(c.Options)
	c.CorrectOptions = slices.Clone(c.CorrectOptions)
	c.MatchLeft = slices.Clone(c.MatchLeft)
	c.MatchRight = slices.Clone(c.MatchRight)
	c.BannedWords = slices.Clone(c.BannedWords)
	if c.MatchKey != nil {
		key := make(map[string]string, len(c.MatchKey))
		for k, v := range c.MatchKey {
			key[k] = v
		}
		c.MatchKey = key
	}
	q.Config = c
	return q
}

// Agenda is the ordered list of questions of a session, grouped by submodule.
type Agenda struct {
	questions []Question
}

// NewAgenda sorts questions by submodule order of first appearance, then ordinal.
func NewAgenda(questions []Question) Agenda {
	order := make(map[SubmoduleID]int)
	for _, q := range questions {
		if _, ok := order[q.SubmoduleID]; !ok {
			order[q.SubmoduleID] = len(order)
		}
	}
	sorted := slices.Clone(questions)
	slices.SortStableFunc(sorted, func(a, b Question) int {
		if d := order[a.SubmoduleID] - order[b.SubmoduleID]; d != 0 {
			return d
		}
		return a.Ordinal - b.Ordinal
	})
	return Agenda{questions: sorted}
}

func (a Agenda) Questions() []Question { return a.questions }

// FirstSubmodule returns the submodule of the first question, or "" for an empty agenda.
func (a Agenda) FirstSubmodule() SubmoduleID {
	if len(a.questions) == 0 {
		return ""
	}
	return a.questions[0].SubmoduleID
}

// Submodule returns the questions of one submodule in ordinal order.
func (a Agenda) Submodule(id SubmoduleID) []Question {
	var res []Question
	for _, q := range a.questions {
		if q.SubmoduleID == id {
			res = append(res, q)
		}
	}
	return res
}

func (a Agenda) HasSubmodule(id SubmoduleID) bool {
	return slices.ContainsFunc(a.questions, func(q Question) bool { return q.SubmoduleID == id })
}
