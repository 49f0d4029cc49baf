// Package ollama classifies facial emotion with a vision model served by a
// local Ollama instance. The image is sent base64 encoded on a chat message
// and the model is asked for a JSON answer.
package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llava"
)

var systemPrompt = "You are a facial expression classifier. Look at the face in the image and answer with ONLY a JSON object " +
	`of the form {"emotion": "<label>", "confidence": <0.0-1.0>}. ` +
	"The label must be exactly one of: " + labelList() + ". " +
	`If there is no human face in the image answer {"emotion": "none", "confidence": 0}.`

func labelList() string {
	names := make([]string, 0, len(domain.Emotions()))
	for _, e := range domain.Emotions() {
		names = append(names, e.String())
	}
	return strings.Join(names, ", ")
}

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

type chatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  *chatOptions  `json:"options,omitempty"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
	Seed        int     `json:"seed"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

type emotionAnswer struct {
	Emotion    string   `json:"emotion"`
	Confidence *float64 `json:"confidence"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func NewClient(baseURL, model string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Classify sends img to the vision model and parses its single label.
func (c *Client) Classify(ctx context.Context, img domain.Image) (domain.ClassificationResult, error) {
	if err := img.Validate(); err != nil {
		return domain.ClassificationResult{}, err
	}

	payload := chatRequest{
		Model:  c.model,
		Stream: false,
		Format: "json",
		// Zero temperature and a fixed seed keep answers repeatable.
		Options: &chatOptions{Temperature: 0, Seed: 42},
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{
				Role:    "user",
				Content: "Which emotion does this face show?",
				Images:  []string{base64.StdEncoding.EncodeToString(img.Data)},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("ollama: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return domain.ClassificationResult{}, unavailable("build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ClassificationResult{}, transportError(ctx, err)
	}
	defer resp.Body.Close()

	var parsed chatResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&parsed)

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return domain.ClassificationResult{}, &domain.AnalysisError{
			Kind: domain.KindInvalidInput,
			Op:   "ollama classify",
			Err:  fmt.Errorf("model rejected image: %s", parsed.Error),
		}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return domain.ClassificationResult{}, unavailable("classify", fmt.Errorf("unexpected status %d %s", resp.StatusCode, parsed.Error))
	}
	if decodeErr != nil {
		return domain.ClassificationResult{}, unavailable("decode response", decodeErr)
	}
	if parsed.Error != "" {
		return domain.ClassificationResult{}, unavailable("classify", errors.New(parsed.Error))
	}
	return parseAnswer(parsed.Message.Content)
}

func parseAnswer(content string) (domain.ClassificationResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.ClassificationResult{}, unavailable("parse answer", errors.New("empty response"))
	}

	var answer emotionAnswer
	if err := json.Unmarshal([]byte(content), &answer); err != nil {
		return domain.ClassificationResult{}, unavailable("parse answer", err)
	}

	label := strings.ToLower(strings.TrimSpace(answer.Emotion))
	switch label {
	case "", "none", "no face", "no_face", "unknown":
		return domain.ClassificationResult{}, &domain.AnalysisError{
			Kind: domain.KindInvalidInput,
			Op:   "ollama classify",
			Err:  errors.New("no face detected"),
		}
	}
	emotion, err := domain.ParseEmotion(label)
	if err != nil {
		return domain.ClassificationResult{}, err
	}

	confidence := 1.0
	if answer.Confidence != nil {
		confidence = *answer.Confidence
	}
	// Some models answer in percent.
	if confidence > 1 && confidence <= 100 {
		confidence /= 100
	}
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return domain.ClassificationResult{}, unavailable("parse answer", fmt.Errorf("confidence %v out of range", confidence))
	}
	return domain.ClassificationResult{Label: emotion, Confidence: confidence}, nil
}

// Ping verifies the server is reachable and the model has been pulled.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("ollama: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: ping unexpected status %d", resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("ollama: decode tags: %w", err)
	}
	for _, m := range tags.Models {
		if m.Name == c.model || strings.HasPrefix(m.Name, c.model+":") {
			return nil
		}
	}
	return fmt.Errorf("ollama: model %q is not available", c.model)
}

func unavailable(op string, err error) error {
	return &domain.AnalysisError{Kind: domain.KindClassifierUnavailable, Op: "ollama " + op, Err: err}
}

func transportError(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return &domain.AnalysisError{Kind: domain.KindTimeout, Op: "ollama classify", Err: err}
	}
	return unavailable("request", err)
}
