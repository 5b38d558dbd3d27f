package aggregation

import (
	"maps"
	"slices"

	"session-lab/domain"
)

type choiceCounter struct {
	counts  []int
	correct int
	key     []int
}

func newChoiceCounter(c domain.QuestionConfig) *choiceCounter {
	key := slices.Clone(c.CorrectOptions)
	slices.Sort(key)
	return &choiceCounter{counts: make([]int, len(c.Options)), key: key}
}

func (c *choiceCounter) add(p domain.Payload)    { c.step(p, 1) }
func (c *choiceCounter) remove(p domain.Payload) { c.step(p, -1) }

func (c *choiceCounter) step(p domain.Payload, delta int) {
	var selected []int
	switch v := p.(type) {
	case domain.SingleChoiceAnswer:
		selected = []int{v.Option}
	case domain.MultipleChoiceAnswer:
		selected = v.Options
	default:
		return
	}
	for _, o := range selected {
		if o >= 0 && o < len(c.counts) {
			c.counts[o] += delta
		}
	}
	if len(c.key) > 0 && c.isCorrect(selected) {
		c.correct += delta
	}
}

func (c *choiceCounter) isCorrect(selected []int) bool {
	sorted := slices.Clone(selected)
	slices.Sort(sorted)
	return slices.Equal(sorted, c.key)
}

func (c *choiceCounter) reset() {
	clear(c.counts)
	c.correct = 0
}

func (c *choiceCounter) fill(s *Snapshot) {
	s.Counts = slices.Clone(c.counts)
	s.Correct = c.correct
}

type ratingCounter struct {
	min, max int
	buckets  []int
	sum      int
	n        int
}

func newRatingCounter(c domain.QuestionConfig) *ratingCounter {
	size := c.ScaleMax - c.ScaleMin + 1
	if size < 0 {
		size = 0
	}
	return &ratingCounter{min: c.ScaleMin, max: c.ScaleMax, buckets: make([]int, size)}
}

func (c *ratingCounter) add(p domain.Payload)    { c.step(p, 1) }
func (c *ratingCounter) remove(p domain.Payload) { c.step(p, -1) }

func (c *ratingCounter) step(p domain.Payload, delta int) {
	v, ok := p.(domain.RatingAnswer)
	if !ok || v.Value < c.min || v.Value > c.max {
		return
	}
	c.buckets[v.Value-c.min] += delta
	c.sum += delta * v.Value
	c.n += delta
}

func (c *ratingCounter) reset() {
	clear(c.buckets)
	c.sum, c.n = 0, 0
}

func (c *ratingCounter) fill(s *Snapshot) {
	s.Histogram = make([]Bucket, len(c.buckets))
	for i, n := range c.buckets {
		s.Histogram[i] = Bucket{Value: c.min + i, Count: n}
	}
	if c.n > 0 {
		s.Mean = float64(c.sum) / float64(c.n)
	}
}

// textCounter only counts; free text is never broadcast.
type textCounter struct{}

func (*textCounter) add(domain.Payload)    {}
func (*textCounter) remove(domain.Payload) {}
func (*textCounter) reset()                {}
func (*textCounter) fill(*Snapshot)        {}

type matchingCounter struct {
	pairs        map[string]map[string]int
	key          map[string]string
	fullyCorrect int
}

func newMatchingCounter(c domain.QuestionConfig) *matchingCounter {
	return &matchingCounter{pairs: make(map[string]map[string]int), key: maps.Clone(c.MatchKey)}
}

func (c *matchingCounter) add(p domain.Payload)    { c.step(p, 1) }
func (c *matchingCounter) remove(p domain.Payload) { c.step(p, -1) }

func (c *matchingCounter) step(p domain.Payload, delta int) {
	v, ok := p.(domain.MatchingAnswer)
	if !ok {
		return
	}
	for left, right := range v.Pairs {
		row, ok := c.pairs[left]
		if !ok {
			row = make(map[string]int)
			c.pairs[left] = row
		}
		row[right] += delta
		if row[right] <= 0 {
			delete(row, right)
		}
		if len(row) == 0 {
			delete(c.pairs, left)
		}
	}
	if len(c.key) > 0 && maps.Equal(v.Pairs, c.key) {
		c.fullyCorrect += delta
	}
}

func (c *matchingCounter) reset() {
	clear(c.pairs)
	c.fullyCorrect = 0
}

func (c *matchingCounter) fill(s *Snapshot) {
	s.Pairs = make(map[string]map[string]int, len(c.pairs))
	for left, row := range c.pairs {
		s.Pairs[left] = maps.Clone(row)
	}
	s.FullyCorrect = c.fullyCorrect
}
