package rest

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/services"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/logger"
)

const (
	errCodeBadRequest            = "BAD_REQUEST"
	errCodeNoImageSelected       = "NO_IMAGE_SELECTED"
	errCodeInvalidInput          = "INVALID_INPUT"
	errCodeUnknownEmotion        = "UNKNOWN_EMOTION"
	errCodeInvalidLanguage       = "INVALID_LANGUAGE"
	errCodeClassifierUnavailable = "CLASSIFIER_UNAVAILABLE"
	errCodeTimeout               = "TIMEOUT"
	errCodeSessionNotFound       = "SESSION_NOT_FOUND"
	errCodeSessionClosed         = "SESSION_CLOSED"
	errCodeSuperseded            = "SUPERSEDED"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("rest: encode response", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeErrorWithCode(w, status, message, errCodeBadRequest)
}

func writeErrorWithCode(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeDomainError maps an error from the core onto a status and code.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrClosed):
		writeErrorWithCode(w, http.StatusGone, err.Error(), errCodeSessionClosed)
		return
	case errors.Is(err, services.ErrSuperseded):
		writeErrorWithCode(w, http.StatusConflict, err.Error(), errCodeSuperseded)
		return
	case errors.Is(err, domain.ErrInvalidLanguage):
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), errCodeInvalidLanguage)
		return
	}

	kind := domain.KindOf(err)
	status, code := http.StatusInternalServerError, errCodeClassifierUnavailable
	switch kind {
	case domain.KindNoImageSelected:
		status, code = http.StatusBadRequest, errCodeNoImageSelected
	case domain.KindInvalidInput:
		status, code = http.StatusBadRequest, errCodeInvalidInput
	case domain.KindUnknownEmotion:
		status, code = http.StatusBadRequest, errCodeUnknownEmotion
	case domain.KindTimeout:
		status, code = http.StatusGatewayTimeout, errCodeTimeout
	case domain.KindClassifierUnavailable:
		status, code = http.StatusServiceUnavailable, errCodeClassifierUnavailable
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code, Retryable: kind.Transient()})
}

func isJSONContentType(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
