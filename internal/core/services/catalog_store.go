package services

import (
	"sync/atomic"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
)

// CatalogStore holds the current catalog snapshot. Readers always see a
// complete catalog; Replace swaps it atomically.
type CatalogStore struct {
	current atomic.Pointer[domain.Catalog]
}

// NewCatalogStore starts with initial, or an empty catalog when nil.
func NewCatalogStore(initial *domain.Catalog) *CatalogStore {
	s := &CatalogStore{}
	if initial == nil {
		initial = domain.EmptyCatalog(domain.DefaultLanguage)
	}
	s.current.Store(initial)
	return s
}

func (s *CatalogStore) Snapshot() *domain.Catalog {
	return s.current.Load()
}

// Replace installs c and returns the previous snapshot. A nil catalog is ignored.
func (s *CatalogStore) Replace(c *domain.Catalog) *domain.Catalog {
	if c == nil {
		return s.current.Load()
	}
	return s.current.Swap(c)
}
