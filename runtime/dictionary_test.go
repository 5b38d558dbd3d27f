package runtime

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"session-lab/errors"
)

func TestLoadDictionary(t *testing.T) {
	req := require.New(t)
	fsys := fstest.MapFS{
		"censored/en.txt":    {Data: []byte("# english\r\nDarn\r\ncrap\r\n\r\n")},
		"censored/fr.txt":    {Data: []byte("zut\ndarn\n")},
		"censored/README.md": {Data: []byte("not a word list")},
	}

	dict, err := LoadDictionary(fsys, "censored")

	// Then words are merged across languages, lower-cased and sorted
	req.NoError(err)
	req.Equal([]string{"crap", "darn", "zut"}, dict.Words)
	req.Equal([]string{"en", "fr"}, dict.Languages)
}

func TestLoadDictionary_Refusals(t *testing.T) {
	req := require.New(t)

	_, err := LoadDictionary(fstest.MapFS{"censored/en.txt": {Data: []byte("# only comments\n")}}, "censored")
	req.ErrorIs(err, errors.ErrEmptyWords)

	_, err = LoadDictionary(fstest.MapFS{"censored/nested/en.txt": {Data: []byte("darn\n")}}, "censored")
	req.ErrorIs(err, errors.ErrOnlyCensoredFiles)

	// The embedded lists always load
	dict, err := LoadDictionary(censoredFolder, "censored")
	req.NoError(err)
	req.Contains(dict.Words, "darn")
}
