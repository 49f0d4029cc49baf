package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func mustSong(t *testing.T, id, title, artist string) Song {
	t.Helper()
	s, err := NewSong(id, title, artist, "", "play:"+id)
	if err != nil {
		t.Fatalf("NewSong(%q): %v", title, err)
	}
	return s
}

func TestCatalogBuilder_Add(t *testing.T) {
	tests := []struct {
		name     string
		language string
		emotion  Emotion
		song     Song
		wantErr  error
	}{
		{name: "valid", language: "English", emotion: EmotionHappy, song: Song{Title: "Walking on Sunshine"}},
		{name: "blank language", language: " ", emotion: EmotionHappy, song: Song{Title: "x"}, wantErr: ErrInvalidLanguage},
		{name: "none emotion", language: "english", emotion: EmotionNone, song: Song{Title: "x"}, wantErr: ErrUnknownEmotion},
		{name: "placeholder song", language: "english", emotion: EmotionSad, song: Placeholder, wantErr: ErrInvalidSong},
		{name: "untitled song", language: "english", emotion: EmotionSad, song: Song{Title: "  "}, wantErr: ErrInvalidSong},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := NewCatalogBuilder("").Add(tc.language, tc.emotion, tc.song)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCatalog_SnapshotIsolation(t *testing.T) {
	b := NewCatalogBuilder("english")
	first := mustSong(t, "1", "Happy", "Pharrell Williams")
	if err := b.Add("english", EmotionHappy, first); err != nil {
		t.Fatal(err)
	}
	cat := b.Build("v1")

	if err := b.Add("english", EmotionHappy, mustSong(t, "2", "Later", "")); err != nil {
		t.Fatal(err)
	}
	if got := len(cat.Songs("english", EmotionHappy)); got != 1 {
		t.Fatalf("built catalog changed after builder mutation: %d songs", got)
	}

	songs := cat.Songs("english", EmotionHappy)
	songs[0].Title = "mutated"
	if cat.Songs("english", EmotionHappy)[0].Title != "Happy" {
		t.Fatal("caller mutation leaked into catalog")
	}
}

func TestCatalog_LanguageFallback(t *testing.T) {
	b := NewCatalogBuilder("english")
	_ = b.Add("english", EmotionSad, mustSong(t, "1", "Someone Like You", "Adele"))
	_ = b.Add("hindi", EmotionSad, mustSong(t, "2", "Channa Mereya", "Arijit Singh"))
	cat := b.Build("v1")

	if got := cat.ResolveLanguage("Hindi"); got != "hindi" {
		t.Fatalf("expected hindi, got %s", got)
	}
	if got := cat.ResolveLanguage("klingon"); got != "english" {
		t.Fatalf("expected fallback to english, got %s", got)
	}
	if got := cat.Songs("klingon", EmotionSad); len(got) != 1 || got[0].Artist != "Adele" {
		t.Fatalf("unexpected fallback songs %+v", got)
	}
	if langs := cat.Languages(); len(langs) != 2 || langs[0] != "english" || langs[1] != "hindi" {
		t.Fatalf("unexpected languages %v", langs)
	}
	if cat.Count("hindi") != 1 {
		t.Fatalf("expected 1 hindi song, got %d", cat.Count("hindi"))
	}
}

func TestNewSong_DefaultsArtist(t *testing.T) {
	s, err := NewSong("id", " Clair de Lune ", "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if s.Title != "Clair de Lune" || s.Artist != UnknownArtist {
		t.Fatalf("unexpected song %+v", s)
	}
	if _, err := NewSong("id", "", "x", "", ""); !errors.Is(err, ErrInvalidSong) {
		t.Fatalf("expected ErrInvalidSong, got %v", err)
	}
}

func TestSong_PlaceholderJSON(t *testing.T) {
	data, err := json.Marshal(Placeholder)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"placeholder":true}` {
		t.Fatalf("unexpected json %s", data)
	}
	var back Song
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.IsPlaceholder() {
		t.Fatal("placeholder lost in round trip")
	}

	list := RecommendationList{Emotion: EmotionCalm}
	if !list.Empty() || !list.Top().IsPlaceholder() {
		t.Fatal("empty list should yield the placeholder")
	}
}
