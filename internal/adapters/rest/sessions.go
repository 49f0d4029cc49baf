package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/services"
)

type sessionResponse struct {
	ID    string                   `json:"id"`
	State domain.PresentationState `json:"state"`
}

type analyzeResponse struct {
	RequestID uint64                   `json:"requestId"`
	State     domain.PresentationState `json:"state"`
}

type selectEmotionRequest struct {
	Emotion string `json:"emotion"`
}

type selectLanguageRequest struct {
	Language string `json:"language"`
}

// session resolves {id} and writes a 404 when it is unknown or expired.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*services.Coordinator, bool) {
	id := mux.Vars(r)["id"]
	c, ok := h.sessions.Get(id)
	if !ok {
		writeErrorWithCode(w, http.StatusNotFound, fmt.Sprintf("session %q not found", id), errCodeSessionNotFound)
		return nil, false
	}
	return c, true
}

// CreateSession handles POST /sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, c := h.sessions.Create()
	w.Header().Set("Location", "/sessions/"+id)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id, State: c.State()})
}

// DeleteSession handles DELETE /sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.session(w, r); !ok {
		return
	}
	h.sessions.Delete(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

// GetState handles GET /sessions/{id}/state
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	c, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.State())
}

// Analyze handles POST /sessions/{id}/analyze with a multipart "image"
// field. It answers 202 once the request is accepted; with ?wait=true it
// blocks until the request settles and answers 200.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	c, ok := h.session(w, r)
	if !ok {
		return
	}

	img, err := h.readImage(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorWithCode(w, http.StatusRequestEntityTooLarge, err.Error(), errCodeInvalidInput)
			return
		}
		writeDomainError(w, err)
		return
	}

	id, err := c.Trigger(img)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		state, err := c.Wait(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, analyzeResponse{RequestID: id, State: state})
		return
	}
	writeJSON(w, http.StatusAccepted, analyzeResponse{RequestID: id, State: c.State()})
}

func (h *Handler) readImage(w http.ResponseWriter, r *http.Request) (*domain.Image, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, domain.NewError(domain.KindInvalidInput, "read upload", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, domain.NewError(domain.KindNoImageSelected, "read upload", nil)
	}
	if err != nil {
		return nil, domain.NewError(domain.KindInvalidInput, "read upload", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, domain.NewError(domain.KindInvalidInput, "read upload", err)
	}
	return domain.NewImage(data, header.Header.Get("Content-Type"))
}

// SelectEmotion handles POST /sessions/{id}/emotion
func (h *Handler) SelectEmotion(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	c, ok := h.session(w, r)
	if !ok {
		return
	}
	var req selectEmotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	state, err := c.SelectEmotion(req.Emotion)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// SelectLanguage handles PUT /sessions/{id}/language
func (h *Handler) SelectLanguage(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	c, ok := h.session(w, r)
	if !ok {
		return
	}
	var req selectLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	state, err := c.SelectLanguage(req.Language)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Reset handles POST /sessions/{id}/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	c, ok := h.session(w, r)
	if !ok {
		return
	}
	c.Reset()
	writeJSON(w, http.StatusOK, c.State())
}
