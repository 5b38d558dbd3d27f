// Package aggregation maintains live tallies of question responses.
// A QuestionTally is mutated by a single session actor and read by anyone
// through immutable snapshots.
package aggregation

import (
	"sync/atomic"

	"session-lab/domain"
)

// Snapshot is the point-in-time view of one question's tally.
// Snapshots are immutable once published.
type Snapshot struct {
	QuestionID       domain.QuestionID         `json:"questionId"`
	Type             domain.QuestionType       `json:"type"`
	Version          uint64                    `json:"version"`
	Closed           bool                      `json:"closed"`
	Responses        int                       `json:"responses"`
	Counts           []int                     `json:"counts,omitempty"`
	Correct          int                       `json:"correct,omitempty"`
	Histogram        []Bucket                  `json:"histogram,omitempty"`
	Mean             float64                   `json:"mean,omitempty"`
	Words            []WordCount               `json:"words,omitempty"`
	DistinctWords    int                       `json:"distinctWords,omitempty"`
	TotalSubmissions int                       `json:"totalSubmissions,omitempty"`
	Evicted          int                       `json:"evicted,omitempty"`
	Pairs            map[string]map[string]int `json:"pairs,omitempty"`
	FullyCorrect     int                       `json:"fullyCorrect,omitempty"`
}

type Bucket struct {
	Value int `json:"value"`
	Count int `json:"count"`
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// counter is the per-type accumulator behind a QuestionTally.
type counter interface {
	add(p domain.Payload)
	remove(p domain.Payload)
	reset()
	fill(s *Snapshot)
}

// QuestionTally is the AggregateTally of one question.
type QuestionTally struct {
	question  domain.Question
	counter   counter
	responses int
	version   uint64
	closed    bool
	published atomic.Pointer[Snapshot]
}

// NewQuestionTally builds an empty tally. defaultMaxWords caps word clouds whose
// question does not set its own MaxWords.
func NewQuestionTally(q domain.Question, defaultMaxWords int) *QuestionTally {
	t := &QuestionTally{question: q, counter: newCounter(q, defaultMaxWords), closed: q.Closed}
	t.publish()
	return t
}

func newCounter(q domain.Question, defaultMaxWords int) counter {
	switch q.Type {
	case domain.SingleChoice, domain.MultipleChoice:
		return newChoiceCounter(q.Config)
	case domain.RatingScale:
		return newRatingCounter(q.Config)
	case domain.Matching:
		return newMatchingCounter(q.Config)
	case domain.WordCloud:
		max := q.Config.MaxWords
		if max <= 0 {
			max = defaultMaxWords
		}
		return newWordCloudCounter(max)
	}
	return &textCounter{}
}

// Apply retracts prev (nil on first submission) and adds next, then publishes a new version.
func (t *QuestionTally) Apply(prev, next domain.Payload) Snapshot {
	if prev != nil {
		t.counter.remove(prev)
	} else {
		t.responses++
	}
	t.counter.add(next)
	t.version++
	return t.publish()
}

// Close freezes the tally. Closing twice does not bump the version.
func (t *QuestionTally) Close() (Snapshot, bool) {
	if t.closed {
		return t.Snapshot(), false
	}
	t.closed = true
	t.version++
	return t.publish(), true
}

// Recompute rebuilds the tally from scratch. The version always moves forward
// so clients never observe a decrease.
func (t *QuestionTally) Recompute(records []domain.ResponseRecord) Snapshot {
	t.counter.reset()
	t.responses = 0
	for _, rec := range records {
		if rec.QuestionID != t.question.ID || rec.Payload == nil {
			continue
		}
		t.counter.add(rec.Payload)
		t.responses++
	}
	t.version++
	return t.publish()
}

// Resume rebuilds the tally after a reload and keeps its version above floor.
func (t *QuestionTally) Resume(records []domain.ResponseRecord, floor uint64) Snapshot {
	if t.version < floor {
		t.version = floor
	}
	return t.Recompute(records)
}

// Snapshot returns the last published snapshot without copying the tally.
func (t *QuestionTally) Snapshot() Snapshot {
	return *t.published.Load()
}

func (t *QuestionTally) Version() uint64 { return t.version }

func (t *QuestionTally) Closed() bool { return t.closed }

func (t *QuestionTally) Question() domain.Question { return t.question }

func (t *QuestionTally) publish() Snapshot {
	s := Snapshot{
		QuestionID: t.question.ID,
		Type:       t.question.Type,
		Version:    t.version,
		Closed:     t.closed,
		Responses:  t.responses,
	}
	t.counter.fill(&s)
	t.published.Store(&s)
	return s
}
