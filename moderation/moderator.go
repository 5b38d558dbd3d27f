// Package moderation screens free text before it reaches a tally.
package moderation

import (
	"log/slog"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/abadojack/whatlanggo"
)

type Moderator struct {
	matcher      *goahocorasick.Machine
	censoredChar rune
	log          *slog.Logger
}

type TextMapping struct {
	Normalized []rune
	OrigIdx    []int
}

type span struct {
	word       string
	start, end int
}

// NewModerator initializes the Aho-Corasick automaton with a normalized version of the provided censored words list.
// Words that normalize to nothing (pure punctuation) are skipped.
func NewModerator(censoredWords []string, censoredChar rune, log *slog.Logger) (Moderator, error) {
	patterns := make([][]rune, 0, len(censoredWords))
	for _, word := range censoredWords {
		if p := normalizeRunes([]rune(word)); len(p) > 0 {
			patterns = append(patterns, p)
		}
	}

	m := new(goahocorasick.Machine)
	if len(patterns) > 0 {
		if err := m.Build(patterns); err != nil {
			return Moderator{}, err
		}
	} else {
		m = nil
	}
	log.Debug("moderator ready", "patterns", len(patterns))
	return Moderator{matcher: m, censoredChar: censoredChar, log: log}, nil
}

// Censor identifies forbidden patterns and replaces the original characters while preserving spacing.
// It returns the censored text and the dictionary words found, in order of appearance.
func (m Moderator) Censor(original string) (string, []string) {
	spans := m.search(original)
	if len(spans) == 0 {
		return original, nil
	}
	origRunes := []rune(original)
	words := make([]string, 0, len(spans))
	for _, s := range spans {
		for i := s.start; i < s.end; i++ {
			origRunes[i] = m.censoredChar
		}
		words = append(words, s.word)
	}
	return string(origRunes), words
}

// Screen returns the forbidden words found in text, nil when it is clean.
func (m Moderator) Screen(text string) []string {
	spans := m.search(text)
	if len(spans) == 0 {
		return nil
	}
	words := make([]string, len(spans))
	for i, s := range spans {
		words[i] = s.word
	}
	return words
}

// DetectLang returns the ISO 639-1 code of text, or "" when detection is unreliable.
func DetectLang(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}

// search matches on the normalized stream and keeps only spans sitting on word boundaries
// of the original text, so "he" never fires inside "The".
func (m Moderator) search(original string) []span {
	if m.matcher == nil {
		return nil
	}
	mapping := m.normalize(original)
	if len(mapping.Normalized) == 0 {
		return nil
	}
	origRunes := []rune(original)
	var res []span
	for _, term := range m.matcher.MultiPatternSearch(mapping.Normalized, false) {
		normStart := term.Pos
		normEnd := normStart + len(term.Word)
		if normStart < 0 || normEnd > len(mapping.OrigIdx) {
			continue
		}
		origStart := mapping.OrigIdx[normStart]
		origEnd := mapping.OrigIdx[normEnd-1] + 1
		if !boundary(origRunes, origStart-1) || !boundary(origRunes, origEnd) {
			continue
		}
		res = append(res, span{word: string(term.Word), start: origStart, end: origEnd})
	}
	return res
}

func boundary(runes []rune, i int) bool {
	if i < 0 || i >= len(runes) {
		return true
	}
	r := runes[i]
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// normalize transforms the input string into a searchable format and tracks original rune positions.
func (m Moderator) normalize(input string) TextMapping {
	origRunes := []rune(input)
	norm := make([]rune, 0, len(origRunes))
	origIdx := make([]int, 0, len(origRunes))

	for i, r := range origRunes {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		norm = append(norm, unicode.ToLower(clean))
		origIdx = append(origIdx, i)
	}
	return TextMapping{Normalized: norm, OrigIdx: origIdx}
}

// normalizeRunes applies simplification and noise removal to a slice of runes.
func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplifyRune maps common Leet speak characters back to their standard alphabet counterparts.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

// isNoise identifies characters that should be ignored during the pattern matching phase.
func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
