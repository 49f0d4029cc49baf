package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
)

var testImage = domain.Image{Data: []byte("\x89PNG fake face"), ContentType: domain.ContentTypePNG}

func chatReply(content string) string {
	body, _ := json.Marshal(chatResponse{Message: chatMessage{Role: "assistant", Content: content}})
	return string(body)
}

func TestClient_Classify(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		responseBody   string
		wantErr        error
		wantLabel      domain.Emotion
		wantConfidence float64
	}{
		{
			name:           "Success",
			status:         http.StatusOK,
			responseBody:   chatReply(`{"emotion":"calm","confidence":0.82}`),
			wantLabel:      domain.EmotionCalm,
			wantConfidence: 0.82,
		},
		{
			name:           "Alias and percent confidence",
			status:         http.StatusOK,
			responseBody:   chatReply(`{"emotion":"Fear","confidence":64}`),
			wantLabel:      domain.EmotionScared,
			wantConfidence: 0.64,
		},
		{
			name:           "Missing confidence",
			status:         http.StatusOK,
			responseBody:   chatReply(`{"emotion":"happy"}`),
			wantLabel:      domain.EmotionHappy,
			wantConfidence: 1,
		},
		{
			name:         "No face",
			status:       http.StatusOK,
			responseBody: chatReply(`{"emotion":"none","confidence":0}`),
			wantErr:      domain.ErrInvalidInput,
		},
		{
			name:         "Label outside the set",
			status:       http.StatusOK,
			responseBody: chatReply(`{"emotion":"bored","confidence":0.9}`),
			wantErr:      domain.ErrUnknownEmotion,
		},
		{
			name:         "Confidence out of range",
			status:       http.StatusOK,
			responseBody: chatReply(`{"emotion":"sad","confidence":250}`),
			wantErr:      domain.ErrClassifierUnavailable,
		},
		{
			name:         "Prose instead of JSON",
			status:       http.StatusOK,
			responseBody: chatReply(`The person looks happy.`),
			wantErr:      domain.ErrClassifierUnavailable,
		},
		{
			name:         "Bad request",
			status:       http.StatusBadRequest,
			responseBody: `{"error":"illegal base64 data"}`,
			wantErr:      domain.ErrInvalidInput,
		},
		{
			name:         "Model not found",
			status:       http.StatusNotFound,
			responseBody: `{"error":"model 'llava' not found"}`,
			wantErr:      domain.ErrClassifierUnavailable,
		},
		{
			name:         "Server error",
			status:       http.StatusInternalServerError,
			responseBody: `{"error":"bad"}`,
			wantErr:      domain.ErrClassifierUnavailable,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var gotRequest chatRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/chat" || r.Method != http.MethodPost {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.responseBody))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "llava")
			got, err := client.Classify(context.Background(), testImage)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Label != tt.wantLabel || got.Confidence != tt.wantConfidence {
				t.Fatalf("expected %s/%v, got %s/%v", tt.wantLabel, tt.wantConfidence, got.Label, got.Confidence)
			}
			if gotRequest.Model != "llava" || gotRequest.Format != "json" || gotRequest.Stream {
				t.Fatalf("unexpected request envelope %+v", gotRequest)
			}
			if len(gotRequest.Messages) != 2 || gotRequest.Messages[0].Content != systemPrompt {
				t.Fatalf("system prompt mismatch")
			}
			images := gotRequest.Messages[1].Images
			if len(images) != 1 || images[0] != base64.StdEncoding.EncodeToString(testImage.Data) {
				t.Fatalf("image not forwarded: %v", images)
			}
		})
	}
}

func TestClient_ClassifyRejectsBadImageLocally(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").Classify(context.Background(), domain.Image{ContentType: "image/gif", Data: []byte("GIF")})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if called {
		t.Fatal("server should not be called for an unsupported image")
	}
}

func TestClient_ClassifyDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := NewClient(srv.URL, "llava").Classify(ctx, testImage)
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestClient_ClassifyUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "llava").Classify(context.Background(), testImage)
	if !errors.Is(err, domain.ErrClassifierUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestClient_Ping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		model   string
		wantErr bool
	}{
		{name: "model present with tag", status: http.StatusOK, body: `{"models":[{"name":"llava:latest"}]}`, model: "llava"},
		{name: "exact model", status: http.StatusOK, body: `{"models":[{"name":"llava:13b"}]}`, model: "llava:13b"},
		{name: "model missing", status: http.StatusOK, body: `{"models":[{"name":"mistral:latest"}]}`, model: "llava", wantErr: true},
		{name: "server error", status: http.StatusServiceUnavailable, body: `{}`, model: "llava", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/tags" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewClient(srv.URL, tt.model).Ping(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected err=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
