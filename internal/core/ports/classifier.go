package ports

import (
	"context"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
)

// Classifier turns an image into exactly one emotion label. It must honour
// ctx and must not keep a reference to the image after returning.
type Classifier interface {
	Classify(ctx context.Context, img domain.Image) (domain.ClassificationResult, error)
}

// Pinger is implemented by classifiers that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}
