package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/ports"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/services"
)

// DefaultMaxUploadBytes caps multipart uploads when Deps leaves it unset.
const DefaultMaxUploadBytes = 10 << 20

// Deps are the collaborators the HTTP interface drives. Pinger and Metrics
// are optional.
type Deps struct {
	Matcher        *services.Matcher
	Sessions       *services.Sessions
	Pinger         ports.Pinger
	Metrics        http.Handler
	MaxUploadBytes int64
	// CoversDir is served under CoverBaseURL when both are set.
	CoversDir    string
	CoverBaseURL string
	// StreamPingPeriod is how often open websockets ping the client and
	// refresh their session's TTL.
	StreamPingPeriod time.Duration
}

// Handler manages the HTTP interface for the recommender.
type Handler struct {
	matcher   *services.Matcher
	sessions  *services.Sessions
	pinger    ports.Pinger
	metrics   http.Handler
	maxUpload int64
	coversDir string
	coverURL  string
	ping      time.Duration
	router    *mux.Router
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(deps Deps) *Handler {
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if deps.StreamPingPeriod <= 0 {
		deps.StreamPingPeriod = wsPingPeriod
	}
	h := &Handler{
		matcher:   deps.Matcher,
		sessions:  deps.Sessions,
		pinger:    deps.Pinger,
		metrics:   deps.Metrics,
		maxUpload: deps.MaxUploadBytes,
		coversDir: deps.CoversDir,
		coverURL:  strings.TrimRight(deps.CoverBaseURL, "/"),
		ping:      deps.StreamPingPeriod,
		router:    mux.NewRouter(),
	}
	h.routes()
	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.router.Use(corsMiddleware, requestLogger)

	h.router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	h.router.HandleFunc("/ready", h.ReadyCheck).Methods(http.MethodGet)
	if h.metrics != nil {
		h.router.Handle("/metrics", h.metrics).Methods(http.MethodGet)
	}

	if h.coversDir != "" && h.coverURL != "" {
		prefix := h.coverURL + "/"
		h.router.PathPrefix(prefix).Handler(http.StripPrefix(prefix, http.FileServer(http.Dir(h.coversDir)))).Methods(http.MethodGet)
	}

	h.router.HandleFunc("/emotions", h.ListEmotions).Methods(http.MethodGet)
	h.router.HandleFunc("/languages", h.ListLanguages).Methods(http.MethodGet)
	h.router.HandleFunc("/recommendations/{emotion}", h.GetRecommendations).Methods(http.MethodGet)

	h.router.HandleFunc("/sessions", h.CreateSession).Methods(http.MethodPost)
	h.router.HandleFunc("/sessions/{id}", h.DeleteSession).Methods(http.MethodDelete)
	h.router.HandleFunc("/sessions/{id}/state", h.GetState).Methods(http.MethodGet)
	h.router.HandleFunc("/sessions/{id}/analyze", h.Analyze).Methods(http.MethodPost)
	h.router.HandleFunc("/sessions/{id}/emotion", h.SelectEmotion).Methods(http.MethodPost)
	h.router.HandleFunc("/sessions/{id}/language", h.SelectLanguage).Methods(http.MethodPut)
	h.router.HandleFunc("/sessions/{id}/reset", h.Reset).Methods(http.MethodPost)
	h.router.HandleFunc("/sessions/{id}/ws", h.StreamState).Methods(http.MethodGet)

	// Preflight requests are answered by corsMiddleware, but mux only runs
	// middleware for matched routes.
	h.router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(http.ResponseWriter, *http.Request) {})
}

// HealthCheck is a simple liveness endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadyCheck reports whether the classifier backend is reachable.
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	if h.pinger == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.pinger.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
