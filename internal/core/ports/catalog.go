package ports

import (
	"context"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
)

// CatalogSource produces an immutable catalog snapshot.
type CatalogSource interface {
	Load(ctx context.Context) (*domain.Catalog, error)
}

// CatalogRepository persists a catalog.
type CatalogRepository interface {
	CatalogSource
	Import(ctx context.Context, c *domain.Catalog) error
}
