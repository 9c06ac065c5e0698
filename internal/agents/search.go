package agents

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/KHY90/cartpilot-backend/internal/catalog"
	"github.com/KHY90/cartpilot-backend/internal/domain"
)

// Searcher is the subset of catalog.Gateway the mode agents depend on.
type Searcher interface {
	Search(ctx context.Context, p catalog.SearchParams) (catalog.SearchResult, error)
}

// Cache is the subset of cache.Cache the mode agents depend on. Unlike the
// Python source, results are stored as live Go values rather than
// re-serialized JSON, so a cache hit needs no decode step.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
}

// fanOutSearch runs every params entry concurrently, bounded by maxGoroutines,
// and returns the concatenation of all successful results in params order. A
// single query's failure is swallowed (mirroring the source's per-query
// try/except continue) rather than aborting the whole sweep.
func fanOutSearch(ctx context.Context, searcher Searcher, paramsList []catalog.SearchParams, maxGoroutines int) []domain.ProductCandidate {
	if maxGoroutines <= 0 {
		maxGoroutines = 1
	}
	results := make([][]domain.ProductCandidate, len(paramsList))
	p := pool.New().WithMaxGoroutines(maxGoroutines)
	for i, params := range paramsList {
		i, params := i, params
		p.Go(func() {
			result, err := searcher.Search(ctx, params)
			if err != nil {
				return
			}
			results[i] = result.Items
		})
	}
	p.Wait()

	var all []domain.ProductCandidate
	for _, items := range results {
		all = append(all, items...)
	}
	return all
}
