package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
)

type emotionResponse struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ListEmotions handles GET /emotions
func (h *Handler) ListEmotions(w http.ResponseWriter, r *http.Request) {
	all := domain.Emotions()
	out := make([]emotionResponse, 0, len(all))
	for _, e := range all {
		out = append(out, emotionResponse{Name: e.String(), Color: e.Color()})
	}
	writeJSON(w, http.StatusOK, out)
}

// ListLanguages handles GET /languages
func (h *Handler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"languages": h.matcher.Languages()})
}

// GetRecommendations handles GET /recommendations/{emotion}?language=
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	e, err := domain.ParseEmotion(mux.Vars(r)["emotion"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	list, err := h.matcher.RecommendIn(r.URL.Query().Get("language"), e)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if list.Songs == nil {
		list.Songs = []domain.Song{}
	}
	writeJSON(w, http.StatusOK, list)
}
