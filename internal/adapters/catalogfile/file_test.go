package catalogfile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
)

const sample = `
version: "2024-06-01"
default_language: english
languages:
  english:
    happy:
      - title: Happy
        artist: Pharrell Williams
        play: songs/english/happy/happy.mp3
        popularity: 90
      - title: Walking on Sunshine
    Calm:
      - id: weightless
        title: Weightless
        artist: Marconi Union
        album_art: /covers/calm.png
  hindi:
    fear:
      - title: Bhool Bhulaiyaa
        artist: Neeraj Shridhar
`

func TestParse(t *testing.T) {
	c, err := Parse(strings.NewReader(sample), "fallback")
	require.NoError(t, err)

	assert.Equal(t, "2024-06-01", c.Version())
	assert.Equal(t, "english", c.DefaultLanguage())
	assert.Equal(t, []string{"english", "hindi"}, c.Languages())

	happy := c.Songs("english", domain.EmotionHappy)
	require.Len(t, happy, 2)
	assert.Equal(t, "Happy", happy[0].Title)
	assert.Equal(t, 90, happy[0].Popularity)
	assert.Equal(t, "songs/english/happy/happy.mp3", happy[0].PlayRef)
	assert.Equal(t, domain.UnknownArtist, happy[1].Artist)

	calm := c.Songs("english", domain.EmotionCalm)
	require.Len(t, calm, 1)
	assert.Equal(t, "weightless", calm[0].ID)
	assert.Equal(t, "/covers/calm.png", calm[0].AlbumArtRef)

	assert.Len(t, c.Songs("hindi", domain.EmotionScared), 1)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "unknown emotion", doc: "languages:\n  english:\n    bored:\n      - title: x\n"},
		{name: "untitled song", doc: "languages:\n  english:\n    sad:\n      - artist: y\n"},
		{name: "unknown field", doc: "languages:\n  english:\n    sad:\n      - title: x\n        mood: blue\n"},
		{name: "malformed yaml", doc: "languages: [\n"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.doc), "v")
			assert.Error(t, err)
		})
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	c, err := Parse(strings.NewReader(""), "v0")
	require.NoError(t, err)
	assert.Equal(t, "v0", c.Version())
	assert.Equal(t, domain.DefaultLanguage, c.DefaultLanguage())
}

func TestFile_LoadAndEncodeRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	loaded, err := NewFile(path).Load(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, loaded))
	again, err := Parse(&buf, "unused")
	require.NoError(t, err)

	assert.Equal(t, loaded.Version(), again.Version())
	for _, lang := range loaded.Languages() {
		for _, e := range domain.Emotions() {
			assert.Equal(t, loaded.Songs(lang, e), again.Songs(lang, e), "%s/%s", lang, e)
		}
	}
}

func TestFile_LoadMissing(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "nope.yaml")).Load(context.Background())
	assert.Error(t, err)
}
