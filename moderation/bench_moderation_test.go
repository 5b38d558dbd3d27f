package moderation

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Moderation_Benchmark(t *testing.T) {
	req := require.New(t)
	wordCount := 100_000

	// --- Phase 1: BUILD ---
	words := make([]string, 0, wordCount)
	for i := 0; i < wordCount; i++ {
		words = append(words, fmt.Sprintf("blacklisted%dword", i))
	}
	startBuild := time.Now()
	mod, err := NewModerator(words, '*', slog.Default())
	req.NoError(err)
	fmt.Printf("✅ Building automaton of %d words: %v\n", wordCount, time.Since(startBuild))

	// --- Phase 2: SCREENING ---
	entries := []string{"clean entry", "blacklisted42word", "great session", "so blacklisted99999word"}
	startScreen := time.Now()
	hits := 0
	for i := 0; i < 10_000; i++ {
		if len(mod.Screen(entries[i%len(entries)])) > 0 {
			hits++
		}
	}
	fmt.Printf("✅ Screening 10000 entries: %v\n", time.Since(startScreen))
	req.Equal(5_000, hits)
}
