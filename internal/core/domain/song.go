package domain

import (
	"encoding/json"
	"errors"
	"strings"
)

// UnknownArtist is used when a catalog source cannot tell who performed a song.
const UnknownArtist = "Unknown Artist"

var ErrInvalidSong = errors.New("domain: song title is required")

// SongKind distinguishes a real catalog entry from the placeholder sentinel.
type SongKind uint8

const (
	SongTrack SongKind = iota
	SongPlaceholder
)

// Song describes one recommendable track. PlayRef is handed to the
// playback transport untouched.
type Song struct {
	Kind        SongKind
	ID          string
	Title       string
	Artist      string
	AlbumArtRef string
	PlayRef     string
	Popularity  int
	DurationMs  int
}

// Placeholder is shown before any analysis and when a recognised emotion
// has no catalog entries.
var Placeholder = Song{Kind: SongPlaceholder}

// NewSong builds a catalog track. An empty artist becomes UnknownArtist.
func NewSong(id, title, artist, albumArtRef, playRef string) (Song, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Song{}, ErrInvalidSong
	}
	artist = strings.TrimSpace(artist)
	if artist == "" {
		artist = UnknownArtist
	}
	return Song{
		Kind:        SongTrack,
		ID:          id,
		Title:       title,
		Artist:      artist,
		AlbumArtRef: albumArtRef,
		PlayRef:     playRef,
	}, nil
}

// IsPlaceholder reports whether s is the "no song" sentinel.
func (s Song) IsPlaceholder() bool {
	return s.Kind == SongPlaceholder
}

type songJSON struct {
	Placeholder bool   `json:"placeholder"`
	ID          string `json:"id,omitempty"`
	Title       string `json:"title,omitempty"`
	Artist      string `json:"artist,omitempty"`
	AlbumArtRef string `json:"albumArtRef,omitempty"`
	PlayRef     string `json:"playRef,omitempty"`
	Popularity  int    `json:"popularity,omitempty"`
	DurationMs  int    `json:"durationMs,omitempty"`
}

func (s Song) MarshalJSON() ([]byte, error) {
	if s.IsPlaceholder() {
		return json.Marshal(songJSON{Placeholder: true})
	}
	return json.Marshal(songJSON{
		ID:          s.ID,
		Title:       s.Title,
		Artist:      s.Artist,
		AlbumArtRef: s.AlbumArtRef,
		PlayRef:     s.PlayRef,
		Popularity:  s.Popularity,
		DurationMs:  s.DurationMs,
	})
}

func (s *Song) UnmarshalJSON(data []byte) error {
	var raw songJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Placeholder {
		*s = Placeholder
		return nil
	}
	*s = Song{
		Kind:        SongTrack,
		ID:          raw.ID,
		Title:       raw.Title,
		Artist:      raw.Artist,
		AlbumArtRef: raw.AlbumArtRef,
		PlayRef:     raw.PlayRef,
		Popularity:  raw.Popularity,
		DurationMs:  raw.DurationMs,
	}
	return nil
}

// RecommendationList is the ranked result for one emotion; rank 0 is the
// best match. An empty list is a valid outcome.
type RecommendationList struct {
	Emotion  Emotion `json:"emotion"`
	Language string  `json:"language"`
	Songs    []Song  `json:"songs"`
}

// Top returns rank 0, or the placeholder when the list is empty.
func (l RecommendationList) Top() Song {
	if len(l.Songs) == 0 {
		return Placeholder
	}
	return l.Songs[0]
}

func (l RecommendationList) Empty() bool {
	return len(l.Songs) == 0
}
