package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultLanguage is used when a catalog source does not name one.
const DefaultLanguage = "english"

var ErrInvalidLanguage = errors.New("domain: language is required")

// Catalog is an immutable snapshot mapping language and emotion to an
// ordered list of songs. Accessors hand out copies.
type Catalog struct {
	version         string
	defaultLanguage string
	entries         map[string]map[Emotion][]Song
}

// CatalogBuilder accumulates songs in insertion order. It is not safe for
// concurrent use.
type CatalogBuilder struct {
	defaultLanguage string
	entries         map[string]map[Emotion][]Song
}

func NewCatalogBuilder(defaultLanguage string) *CatalogBuilder {
	lang := NormalizeLanguage(defaultLanguage)
	if lang == "" {
		lang = DefaultLanguage
	}
	return &CatalogBuilder{
		defaultLanguage: lang,
		entries:         make(map[string]map[Emotion][]Song),
	}
}

// Add appends s to the list for (language, e). Insertion order is the
// catalog's ranking order.
func (b *CatalogBuilder) Add(language string, e Emotion, s Song) error {
	lang := NormalizeLanguage(language)
	if lang == "" {
		return ErrInvalidLanguage
	}
	if !e.Valid() {
		return &AnalysisError{Kind: KindUnknownEmotion, Op: "catalog add", Err: fmt.Errorf("emotion %d", uint8(e))}
	}
	if s.IsPlaceholder() || strings.TrimSpace(s.Title) == "" {
		return ErrInvalidSong
	}
	byEmotion, ok := b.entries[lang]
	if !ok {
		byEmotion = make(map[Emotion][]Song)
		b.entries[lang] = byEmotion
	}
	byEmotion[e] = append(byEmotion[e], s)
	return nil
}

// Build freezes the accumulated entries. The builder may keep being used;
// later additions do not affect the returned catalog.
func (b *CatalogBuilder) Build(version string) *Catalog {
	entries := make(map[string]map[Emotion][]Song, len(b.entries))
	for lang, byEmotion := range b.entries {
		copied := make(map[Emotion][]Song, len(byEmotion))
		for e, songs := range byEmotion {
			copied[e] = append([]Song(nil), songs...)
		}
		entries[lang] = copied
	}
	return &Catalog{
		version:         version,
		defaultLanguage: b.defaultLanguage,
		entries:         entries,
	}
}

// EmptyCatalog returns a catalog with no songs.
func EmptyCatalog(defaultLanguage string) *Catalog {
	return NewCatalogBuilder(defaultLanguage).Build("empty")
}

func (c *Catalog) Version() string {
	return c.version
}

func (c *Catalog) DefaultLanguage() string {
	return c.defaultLanguage
}

// HasLanguage reports whether any song was registered for language.
func (c *Catalog) HasLanguage(language string) bool {
	_, ok := c.entries[NormalizeLanguage(language)]
	return ok
}

// ResolveLanguage returns language when the catalog knows it, otherwise
// the default language.
func (c *Catalog) ResolveLanguage(language string) string {
	lang := NormalizeLanguage(language)
	if _, ok := c.entries[lang]; ok {
		return lang
	}
	return c.defaultLanguage
}

// Songs returns a copy of the ordered songs for (language, e).
func (c *Catalog) Songs(language string, e Emotion) []Song {
	byEmotion := c.entries[c.ResolveLanguage(language)]
	songs := byEmotion[e]
	out := make([]Song, len(songs))
	copy(out, songs)
	return out
}

// Languages returns the known languages sorted alphabetically.
func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(c.entries))
	for lang := range c.entries {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of songs registered for language.
func (c *Catalog) Count(language string) int {
	total := 0
	for _, songs := range c.entries[NormalizeLanguage(language)] {
		total += len(songs)
	}
	return total
}

// Each visits every (language, emotion) list in a stable order.
func (c *Catalog) Each(fn func(language string, e Emotion, songs []Song)) {
	for _, lang := range c.Languages() {
		for _, e := range Emotions() {
			songs, ok := c.entries[lang][e]
			if !ok {
				continue
			}
			fn(lang, e, append([]Song(nil), songs...))
		}
	}
}

// NormalizeLanguage lower-cases and trims a language name.
func NormalizeLanguage(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}
