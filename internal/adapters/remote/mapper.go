package remote

import (
	"strings"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
)

// mapTrack converts a wire track into a catalog song and the emotion it is
// filed under.
func mapTrack(rt remoteTrack) (domain.Emotion, domain.Song, error) {
	emotion, err := domain.ParseEmotion(rt.Emotion)
	if err != nil {
		return domain.EmotionNone, domain.Song{}, err
	}

	artists := make([]string, 0, len(rt.Artists))
	for _, a := range rt.Artists {
		if name := strings.TrimSpace(a.Name); name != "" {
			artists = append(artists, name)
		}
	}

	cover := ""
	if len(rt.Album.Images) > 0 {
		cover = rt.Album.Images[0].URL
	}

	song, err := domain.NewSong(rt.ID, rt.Name, strings.Join(artists, ", "), cover, rt.PlayURL)
	if err != nil {
		return domain.EmotionNone, domain.Song{}, err
	}
	song.Popularity = rt.Popularity
	song.DurationMs = rt.DurationMs
	return emotion, song, nil
}
