// Package remote loads the song catalog from an HTTP catalog service,
// optionally authenticating with the OAuth2 client credentials flow.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/ports"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/logger"
)

// maxPages bounds pagination against a server that keeps returning a next
// link.
const maxPages = 100

// Client fetches a paginated JSON catalog.
type Client struct {
	httpClient  *http.Client
	catalogURL  string
	maxRetries  int
	baseBackoff time.Duration
}

var _ ports.CatalogSource = (*Client)(nil)

// Options configures auth and retries. Credentials are used only when
// TokenURL is set.
type Options struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	MaxRetries   int
	Backoff      time.Duration
}

// NewClient builds a client on top of base, which also carries the token
// requests.
func NewClient(base *http.Client, catalogURL string, opts Options) *Client {
	if base == nil {
		base = &http.Client{Timeout: 30 * time.Second}
	}
	httpClient := base
	if opts.TokenURL != "" {
		cfg := clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		httpClient = cfg.Client(ctx)
		httpClient.Timeout = base.Timeout
	}
	return &Client{
		httpClient:  httpClient,
		catalogURL:  catalogURL,
		maxRetries:  opts.MaxRetries,
		baseBackoff: opts.Backoff,
	}
}

// Load walks every page. Tracks with an unknown emotion or no title are
// skipped with a warning rather than failing the whole catalog.
func (c *Client) Load(ctx context.Context) (*domain.Catalog, error) {
	first, etag, err := c.fetchPage(ctx, c.catalogURL)
	if err != nil {
		return nil, err
	}

	builder := domain.NewCatalogBuilder(first.DefaultLanguage)
	page := first
	skipped := 0
	for pages := 1; ; pages++ {
		for _, rt := range page.Tracks {
			emotion, song, err := mapTrack(rt)
			if err != nil {
				skipped++
				logger.Warn("remote catalog: skipping track", logger.String("id", rt.ID), logger.ErrorField(err))
				continue
			}
			language := rt.Language
			if strings.TrimSpace(language) == "" {
				language = first.DefaultLanguage
			}
			if err := builder.Add(language, emotion, song); err != nil {
				skipped++
				logger.Warn("remote catalog: skipping track", logger.String("id", rt.ID), logger.ErrorField(err))
			}
		}

		if page.Next == "" {
			break
		}
		if pages >= maxPages {
			return nil, fmt.Errorf("remote catalog: more than %d pages", maxPages)
		}
		page, _, err = c.fetchPage(ctx, page.Next)
		if err != nil {
			return nil, err
		}
	}

	version := first.Version
	if version == "" {
		version = etag
	}
	if version == "" {
		version = time.Now().UTC().Format(time.RFC3339)
	}
	if skipped > 0 {
		logger.Info("remote catalog loaded with skipped tracks", logger.Int("skipped", skipped))
	}
	return builder.Build(version), nil
}

func (c *Client) fetchPage(ctx context.Context, url string) (catalogPage, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return catalogPage{}, "", fmt.Errorf("remote catalog: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return catalogPage{}, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return catalogPage{}, "", fmt.Errorf("remote catalog: status %d", resp.StatusCode)
	}

	var page catalogPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return catalogPage{}, "", fmt.Errorf("remote catalog: decode: %w", err)
	}
	return page, strings.Trim(resp.Header.Get("ETag"), `"`), nil
}
