package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
)

// Ranking decides how songs for one emotion are ordered.
type Ranking string

const (
	// RankingInsertion keeps catalog order.
	RankingInsertion Ranking = "insertion"
	// RankingPopularity sorts by popularity, highest first, keeping catalog
	// order among equals.
	RankingPopularity Ranking = "popularity"
)

// ParseRanking validates a configured ranking name.
func ParseRanking(s string) (Ranking, error) {
	switch r := Ranking(strings.ToLower(strings.TrimSpace(s))); r {
	case "", RankingInsertion:
		return RankingInsertion, nil
	case RankingPopularity:
		return r, nil
	default:
		return "", fmt.Errorf("matcher: unknown ranking %q", s)
	}
}

// Matcher maps an emotion to a ranked song list. It reads exactly one
// catalog snapshot per call, so results are deterministic per snapshot.
type Matcher struct {
	store   *CatalogStore
	ranking Ranking
}

func NewMatcher(store *CatalogStore, ranking Ranking) *Matcher {
	if ranking == "" {
		ranking = RankingInsertion
	}
	return &Matcher{store: store, ranking: ranking}
}

// Recommend ranks songs for label in the catalog's default language.
func (m *Matcher) Recommend(label domain.Emotion) (domain.RecommendationList, error) {
	return m.RecommendIn("", label)
}

// RecommendIn ranks songs for label in language, falling back to the
// catalog's default language when the language is unknown.
func (m *Matcher) RecommendIn(language string, label domain.Emotion) (domain.RecommendationList, error) {
	if !label.Valid() {
		return domain.RecommendationList{}, &domain.AnalysisError{
			Kind: domain.KindUnknownEmotion,
			Op:   "recommend",
			Err:  fmt.Errorf("label %s", label),
		}
	}
	snapshot := m.store.Snapshot()
	lang := snapshot.ResolveLanguage(language)
	songs := snapshot.Songs(lang, label)

	if m.ranking == RankingPopularity {
		sort.SliceStable(songs, func(i, j int) bool {
			return songs[i].Popularity > songs[j].Popularity
		})
	}

	return domain.RecommendationList{
		Emotion:  label,
		Language: lang,
		Songs:    songs,
	}, nil
}

// Languages lists the languages of the current snapshot.
func (m *Matcher) Languages() []string {
	return m.store.Snapshot().Languages()
}
