// Package catalogfile loads a song catalog from a YAML document:
//
//	version: "2024-06-01"
//	default_language: english
//	languages:
//	  english:
//	    happy:
//	      - title: Happy
//	        artist: Pharrell Williams
//	        play: songs/english/happy/happy.mp3
package catalogfile

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
)

type document struct {
	Version         string                                `yaml:"version"`
	DefaultLanguage string                                `yaml:"default_language"`
	Languages       map[string]map[string][]songDocument `yaml:"languages"`
}

type songDocument struct {
	ID         string `yaml:"id"`
	Title      string `yaml:"title"`
	Artist     string `yaml:"artist"`
	AlbumArt   string `yaml:"album_art"`
	Play       string `yaml:"play"`
	Popularity int    `yaml:"popularity"`
	DurationMs int    `yaml:"duration_ms"`
}

// File is a catalog source backed by a YAML file on disk.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string {
	return f.path
}

// Load reads and parses the file. When the document has no version the
// file's modification time is used.
func (f *File) Load(ctx context.Context) (*domain.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("catalogfile: open %s: %w", f.path, err)
	}
	defer file.Close()

	fallbackVersion := filepath.Base(f.path)
	if info, err := file.Stat(); err == nil {
		fallbackVersion = info.ModTime().UTC().Format(time.RFC3339)
	}
	return Parse(file, fallbackVersion)
}

// Parse decodes a YAML catalog. Unknown emotions and untitled songs are
// rejected so a typo never silently drops songs.
func Parse(r io.Reader, fallbackVersion string) (*domain.Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("catalogfile: decode: %w", err)
	}

	builder := domain.NewCatalogBuilder(doc.DefaultLanguage)
	// Keys are visited sorted so aliases of one emotion ("fear", "scared")
	// merge in a stable order.
	for _, language := range sortedKeys(doc.Languages) {
		byEmotion := doc.Languages[language]
		for _, emotionName := range sortedKeys(byEmotion) {
			songs := byEmotion[emotionName]
			emotion, err := domain.ParseEmotion(emotionName)
			if err != nil {
				return nil, fmt.Errorf("catalogfile: language %s: %w", language, err)
			}
			for i, s := range songs {
				song, err := domain.NewSong(s.ID, s.Title, s.Artist, s.AlbumArt, s.Play)
				if err != nil {
					return nil, fmt.Errorf("catalogfile: %s/%s entry %d: %w", language, emotionName, i, err)
				}
				song.Popularity = s.Popularity
				song.DurationMs = s.DurationMs
				if err := builder.Add(language, emotion, song); err != nil {
					return nil, fmt.Errorf("catalogfile: %s/%s entry %d: %w", language, emotionName, i, err)
				}
			}
		}
	}

	version := doc.Version
	if version == "" {
		version = fallbackVersion
	}
	return builder.Build(version), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Encode writes c in the same YAML layout Parse reads.
func Encode(w io.Writer, c *domain.Catalog) error {
	doc := document{
		Version:         c.Version(),
		DefaultLanguage: c.DefaultLanguage(),
		Languages:       make(map[string]map[string][]songDocument),
	}
	c.Each(func(language string, e domain.Emotion, songs []domain.Song) {
		byEmotion, ok := doc.Languages[language]
		if !ok {
			byEmotion = make(map[string][]songDocument)
			doc.Languages[language] = byEmotion
		}
		for _, s := range songs {
			byEmotion[e.String()] = append(byEmotion[e.String()], songDocument{
				ID:         s.ID,
				Title:      s.Title,
				Artist:     s.Artist,
				AlbumArt:   s.AlbumArtRef,
				Play:       s.PlayRef,
				Popularity: s.Popularity,
				DurationMs: s.DurationMs,
			})
		}
	})

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("catalogfile: encode: %w", err)
	}
	return enc.Close()
}
