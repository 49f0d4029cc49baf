// Package deterministic is an offline stand-in for the vision classifier.
// The same image bytes always produce the same label and confidence.
package deterministic

import (
	"context"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
)

// Classifier derives a label from a hash of the image.
type Classifier struct {
	latency time.Duration
}

// New returns a classifier that waits latency before answering.
func New(latency time.Duration) *Classifier {
	return &Classifier{latency: latency}
}

func (c *Classifier) Classify(ctx context.Context, img domain.Image) (domain.ClassificationResult, error) {
	if err := img.Validate(); err != nil {
		return domain.ClassificationResult{}, err
	}

	if c.latency > 0 {
		timer := time.NewTimer(c.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return domain.ClassificationResult{}, &domain.AnalysisError{Kind: domain.KindTimeout, Op: "deterministic classify", Err: ctx.Err()}
		}
	} else if err := ctx.Err(); err != nil {
		return domain.ClassificationResult{}, &domain.AnalysisError{Kind: domain.KindTimeout, Op: "deterministic classify", Err: err}
	}

	return classifyBytes(img.Data), nil
}

func (c *Classifier) Ping(context.Context) error {
	return nil
}

func classifyBytes(data []byte) domain.ClassificationResult {
	hasher := fnv.New64a()
	_, _ = hasher.Write(data)
	// #nosec G404 -- reproducible stub output, not security-sensitive
	rng := rand.New(rand.NewSource(int64(hasher.Sum64())))

	emotions := domain.Emotions()
	return domain.ClassificationResult{
		Label:      emotions[rng.Intn(len(emotions))],
		Confidence: 0.5 + rng.Float64()*0.5,
	}
}
