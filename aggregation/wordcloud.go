package aggregation

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"session-lab/domain"
)

var fold = cases.Fold()

// NormalizeWord maps an entry to its frequency key: NFC, case-folded, single-spaced.
func NormalizeWord(text string) string {
	return strings.Join(strings.Fields(fold.String(norm.NFC.String(text))), " ")
}

type wordEntry struct {
	count   int
	touched uint64
}

// wordCloudCounter tracks at most max words. When a new word arrives at the cap,
// the word with the lowest frequency is evicted, ties going to the least recently touched.
type wordCloudCounter struct {
	max     int
	words   map[string]*wordEntry
	clock   uint64
	total   int
	evicted int
}

func newWordCloudCounter(max int) *wordCloudCounter {
	return &wordCloudCounter{max: max, words: make(map[string]*wordEntry)}
}

func (c *wordCloudCounter) add(p domain.Payload) {
	key, ok := wordKey(p)
	if !ok {
		return
	}
	c.clock++
	c.total++
	if e, ok := c.words[key]; ok {
		e.count++
		e.touched = c.clock
		return
	}
	if c.max > 0 && len(c.words) >= c.max {
		c.evict()
	}
	c.words[key] = &wordEntry{count: 1, touched: c.clock}
}

func (c *wordCloudCounter) remove(p domain.Payload) {
	key, ok := wordKey(p)
	if !ok {
		return
	}
	if c.total > 0 {
		c.total--
	}
	e, ok := c.words[key]
	if !ok {
		return
	}
	e.count--
	if e.count <= 0 {
		delete(c.words, key)
	}
}

func (c *wordCloudCounter) evict() {
	var victim string
	var worst *wordEntry
	for w, e := range c.words {
		if worst == nil || e.count < worst.count || (e.count == worst.count && e.touched < worst.touched) {
			victim, worst = w, e
		}
	}
	if worst != nil {
		delete(c.words, victim)
		c.evicted++
	}
}

func (c *wordCloudCounter) reset() {
	clear(c.words)
	c.clock, c.total, c.evicted = 0, 0, 0
}

func (c *wordCloudCounter) fill(s *Snapshot) {
	s.Words = make([]WordCount, 0, len(c.words))
	for w, e := range c.words {
		s.Words = append(s.Words, WordCount{Word: w, Count: e.count})
	}
	slices.SortFunc(s.Words, func(a, b WordCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Word, b.Word)
	})
	s.DistinctWords = len(c.words)
	s.TotalSubmissions = c.total
	s.Evicted = c.evicted
}

func wordKey(p domain.Payload) (string, bool) {
	v, ok := p.(domain.WordCloudEntry)
	if !ok {
		return "", false
	}
	key := NormalizeWord(v.Text)
	return key, key != ""
}
