package runtime

import (
	"bufio"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/samber/lo"

	"session-lab/errors"
)

// Dictionary is the global profanity list screened against free-text answers.
// It merges one <lang>.txt word file per language.
type Dictionary struct {
	Words     []string
	Languages []string
}

// LoadDictionary reads the word files of dir. Words are lower-cased and deduplicated;
// blank lines and # comments are skipped. A nested directory is refused.
func LoadDictionary(fsys fs.FS, dir string) (Dictionary, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return Dictionary{}, err
	}
	var dict Dictionary
	words := make(map[string]struct{})
	for _, entry := range entries {
		if entry.IsDir() {
			return Dictionary{}, errors.ErrOnlyCensoredFiles
		}
		if path.Ext(entry.Name()) != ".txt" {
			continue
		}
		dict.Languages = append(dict.Languages, strings.TrimSuffix(entry.Name(), ".txt"))
		if err := readWords(fsys, path.Join(dir, entry.Name()), words); err != nil {
			return Dictionary{}, err
		}
	}
	if len(words) == 0 {
		return Dictionary{}, errors.ErrEmptyWords
	}
	dict.Words = lo.Keys(words)
	slices.Sort(dict.Words)
	return dict, nil
}

// readWords scans line by line so CRLF files load like LF ones.
func readWords(fsys fs.FS, name string, into map[string]struct{}) error {
	f, err := fsys.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word != "" && !strings.HasPrefix(word, "#") {
			into[word] = struct{}{}
		}
	}
	return scanner.Err()
}
