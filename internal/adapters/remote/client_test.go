package remote

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
)

const (
	catalogURL = "https://catalog.example.com/v1/catalog"
	page2URL   = "https://catalog.example.com/v1/catalog?page=2"
	tokenURL   = "https://auth.example.com/oauth/token"
)

func newMockClient(t *testing.T, opts Options) (*Client, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	if opts.Backoff == 0 {
		opts.Backoff = time.Millisecond
	}
	return NewClient(&http.Client{Transport: transport}, catalogURL, opts), transport
}

func TestClient_LoadPaginated(t *testing.T) {
	client, transport := newMockClient(t, Options{})

	transport.RegisterResponder(http.MethodGet, catalogURL, httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
		"version":          "2024-06-01",
		"default_language": "english",
		"next":             page2URL,
		"tracks": []map[string]any{
			{
				"id":          "t1",
				"name":        "Happy",
				"artists":     []map[string]any{{"name": "Pharrell Williams"}},
				"album":       map[string]any{"name": "G I R L", "images": []map[string]any{{"url": "https://img/1.png"}}},
				"play_url":    "https://play/t1",
				"popularity":  90,
				"duration_ms": 233000,
				"emotion":     "joy",
			},
			{"id": "bad", "name": "Meh", "emotion": "bored"},
		},
	}))
	transport.RegisterResponder(http.MethodGet, page2URL, httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
		"tracks": []map[string]any{
			{"id": "t2", "name": "Tum Hi Ho", "artists": []map[string]any{{"name": "Arijit Singh"}}, "language": "Hindi", "emotion": "sad"},
			{"id": "t3", "name": "", "emotion": "sad"},
		},
	}))

	cat, err := client.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2024-06-01", cat.Version())
	assert.Equal(t, []string{"english", "hindi"}, cat.Languages())

	happy := cat.Songs("english", domain.EmotionHappy)
	require.Len(t, happy, 1)
	assert.Equal(t, "Pharrell Williams", happy[0].Artist)
	assert.Equal(t, "https://img/1.png", happy[0].AlbumArtRef)
	assert.Equal(t, "https://play/t1", happy[0].PlayRef)
	assert.Equal(t, 90, happy[0].Popularity)
	assert.Equal(t, 233000, happy[0].DurationMs)

	sad := cat.Songs("hindi", domain.EmotionSad)
	require.Len(t, sad, 1)
	assert.Equal(t, "Tum Hi Ho", sad[0].Title)
	assert.Equal(t, 2, transport.GetTotalCallCount())
}

func TestClient_RetriesServerErrors(t *testing.T) {
	client, transport := newMockClient(t, Options{MaxRetries: 3})

	calls := 0
	transport.RegisterResponder(http.MethodGet, catalogURL, func(req *http.Request) (*http.Response, error) {
		calls++
		if calls < 3 {
			return httpmock.NewStringResponse(http.StatusServiceUnavailable, ""), nil
		}
		resp := httpmock.NewStringResponse(http.StatusOK, `{"tracks":[]}`)
		resp.Header.Set("ETag", `"abc123"`)
		return resp, nil
	})

	cat, err := client.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "abc123", cat.Version())
}

func TestClient_GivesUp(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCalls int
	}{
		{name: "exhausts retries on 429", status: http.StatusTooManyRequests, wantCalls: 2},
		{name: "no retry on 404", status: http.StatusNotFound, wantCalls: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, transport := newMockClient(t, Options{MaxRetries: 2})
			transport.RegisterResponder(http.MethodGet, catalogURL, httpmock.NewStringResponder(tc.status, ""))

			_, err := client.Load(context.Background())
			assert.Error(t, err)
			assert.Equal(t, tc.wantCalls, transport.GetTotalCallCount())
		})
	}
}

func TestClient_ClientCredentials(t *testing.T) {
	client, transport := newMockClient(t, Options{
		ClientID:     "id",
		ClientSecret: "secret",
		TokenURL:     tokenURL,
	})

	transport.RegisterResponder(http.MethodPost, tokenURL, httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
		"access_token": "tok",
		"token_type":   "bearer",
		"expires_in":   3600,
	}))
	transport.RegisterResponder(http.MethodGet, catalogURL, func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("Authorization") != "Bearer tok" {
			return httpmock.NewStringResponse(http.StatusUnauthorized, ""), nil
		}
		return httpmock.NewStringResponse(http.StatusOK, `{"version":"v1","tracks":[]}`), nil
	})

	cat, err := client.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1", cat.Version())
}

func TestParseRetryAfter(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	assert.Zero(t, parseRetryAfter(resp))

	resp.Header.Set("Retry-After", "2")
	assert.Equal(t, 2*time.Second, parseRetryAfter(resp))

	resp.Header.Set("Retry-After", time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat))
	assert.Zero(t, parseRetryAfter(resp))
}

func TestSleepWithContext_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepWithContext(ctx, time.Hour), context.Canceled)
}
