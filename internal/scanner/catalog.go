package scanner

import (
	"context"
	"fmt"
	"sync"

	"flowscanner/internal/rules"

	"golang.org/x/sync/singleflight"
)

const catalogKey = "catalog"

// CatalogLoader fetches the engine rule catalog once and shares it. Concurrent
// callers of the first load wait on the same request. Failed loads are not
// remembered.
type CatalogLoader struct {
	engine Engine
	group  singleflight.Group

	mu      sync.RWMutex
	catalog *rules.Catalog
}

func NewCatalogLoader(engine Engine) *CatalogLoader {
	return &CatalogLoader{engine: engine}
}

func (l *CatalogLoader) Catalog(ctx context.Context) (*rules.Catalog, error) {
	if l == nil || l.engine == nil {
		return nil, fmt.Errorf("catalog loader has no engine")
	}

	l.mu.RLock()
	c := l.catalog
	l.mu.RUnlock()
	if c != nil {
		return c, nil
	}

	v, err, _ := l.group.Do(catalogKey, func() (interface{}, error) {
		entries, err := l.engine.RuleCatalog(ctx)
		if err != nil {
			return nil, fmt.Errorf("load rule catalog: %w", err)
		}
		c, err := rules.NewCatalog(entries)
		if err != nil {
			return nil, fmt.Errorf("load rule catalog: %w", err)
		}
		l.mu.Lock()
		l.catalog = c
		l.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*rules.Catalog), nil
}
