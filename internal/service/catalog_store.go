package service

import (
	"sync/atomic"

	"viksit_backend/internal/config"
)

// CatalogStore holds the current price table. The config watcher swaps it
// when config.yaml changes; readers always see a complete table.
type CatalogStore struct {
	v atomic.Pointer[config.Catalog]
}

func NewCatalogStore(c config.Catalog) *CatalogStore {
	s := &CatalogStore{}
	s.Set(c)
	return s
}

func (s *CatalogStore) Get() config.Catalog {
	return *s.v.Load()
}

func (s *CatalogStore) Set(c config.Catalog) {
	s.v.Store(&c)
}
