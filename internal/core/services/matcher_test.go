package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
)

func songIDs(songs []domain.Song) []string {
	ids := make([]string, len(songs))
	for i, s := range songs {
		ids[i] = s.ID
	}
	return ids
}

func TestMatcher_Recommend(t *testing.T) {
	store := NewCatalogStore(testCatalog(t))

	tests := []struct {
		name     string
		ranking  Ranking
		language string
		label    domain.Emotion
		wantIDs  []string
		wantLang string
		wantErr  error
	}{
		{name: "insertion order", ranking: RankingInsertion, label: domain.EmotionCalm, wantIDs: []string{"c1", "c2", "c3"}, wantLang: "english"},
		{name: "popularity with stable ties", ranking: RankingPopularity, label: domain.EmotionCalm, wantIDs: []string{"c2", "c3", "c1"}, wantLang: "english"},
		{name: "empty list is not an error", ranking: RankingInsertion, label: domain.EmotionEnergetic, wantIDs: []string{}, wantLang: "english"},
		{name: "language scoped", ranking: RankingInsertion, language: "Hindi", label: domain.EmotionHappy, wantIDs: []string{"hh1"}, wantLang: "hindi"},
		{name: "unknown language falls back", ranking: RankingInsertion, language: "tamil", label: domain.EmotionSad, wantIDs: []string{"s1"}, wantLang: "english"},
		{name: "none is rejected", ranking: RankingInsertion, label: domain.EmotionNone, wantErr: domain.ErrUnknownEmotion},
		{name: "out of range is rejected", ranking: RankingInsertion, label: domain.Emotion(42), wantErr: domain.ErrUnknownEmotion},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			m := NewMatcher(store, tc.ranking)
			list, err := m.RecommendIn(tc.language, tc.label)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantIDs, songIDs(list.Songs))
			assert.Equal(t, tc.wantLang, list.Language)
			assert.Equal(t, tc.label, list.Emotion)
		})
	}
}

func TestMatcher_Deterministic(t *testing.T) {
	m := NewMatcher(NewCatalogStore(testCatalog(t)), RankingPopularity)
	for _, e := range domain.Emotions() {
		first, err := m.Recommend(e)
		require.NoError(t, err)
		second, err := m.Recommend(e)
		require.NoError(t, err)
		assert.Equal(t, first, second, e.String())
	}
}

func TestMatcher_ResultIsACopy(t *testing.T) {
	m := NewMatcher(NewCatalogStore(testCatalog(t)), RankingInsertion)
	list, err := m.Recommend(domain.EmotionHappy)
	require.NoError(t, err)
	list.Songs[0].Title = "changed"

	again, err := m.Recommend(domain.EmotionHappy)
	require.NoError(t, err)
	assert.Equal(t, "Happy", again.Songs[0].Title)
}

func TestMatcher_SnapshotReplace(t *testing.T) {
	store := NewCatalogStore(nil)
	m := NewMatcher(store, RankingInsertion)

	list, err := m.Recommend(domain.EmotionSad)
	require.NoError(t, err)
	assert.True(t, list.Top().IsPlaceholder())

	prev := store.Replace(testCatalog(t))
	assert.Equal(t, "empty", prev.Version())

	list, err = m.Recommend(domain.EmotionSad)
	require.NoError(t, err)
	assert.Equal(t, "s1", list.Top().ID)
	assert.Equal(t, []string{"english", "hindi"}, m.Languages())
}

func TestParseRanking(t *testing.T) {
	r, err := ParseRanking("Popularity")
	require.NoError(t, err)
	assert.Equal(t, RankingPopularity, r)

	r, err = ParseRanking("")
	require.NoError(t, err)
	assert.Equal(t, RankingInsertion, r)

	_, err = ParseRanking("random")
	assert.Error(t, err)
}
