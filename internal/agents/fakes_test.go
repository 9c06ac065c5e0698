package agents

import (
	"context"
	"time"

	"github.com/KHY90/cartpilot-backend/internal/catalog"
	"github.com/KHY90/cartpilot-backend/internal/domain"
)

// fakeSearcher returns canned items for every query, regardless of params,
// unless err is set.
type fakeSearcher struct {
	items []domain.ProductCandidate
	err   error
}

func (f fakeSearcher) Search(ctx context.Context, p catalog.SearchParams) (catalog.SearchResult, error) {
	if f.err != nil {
		return catalog.SearchResult{}, f.err
	}
	return catalog.SearchResult{Items: f.items, Total: len(f.items), Query: p.Query, Sort: p.Sort}, nil
}

// byCategorySearcher returns items keyed by the incoming query, used by the
// BUNDLE agent's per-category fan-out tests.
type byCategorySearcher struct {
	byQuery map[string][]domain.ProductCandidate
}

func (f byCategorySearcher) Search(ctx context.Context, p catalog.SearchParams) (catalog.SearchResult, error) {
	items := f.byQuery[p.Query]
	return catalog.SearchResult{Items: items, Total: len(items), Query: p.Query, Sort: p.Sort}, nil
}

type fakeCache struct {
	store map[string]any
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string]any)}
}

func (f *fakeCache) Get(key string) (any, bool) {
	v, ok := f.store[key]
	return v, ok
}

func (f *fakeCache) Set(key string, value any, ttl time.Duration) {
	f.store[key] = value
}

func product(id string, price int64) domain.ProductCandidate {
	return domain.ProductCandidate{
		ProductID: id,
		Title:     "상품 " + id,
		Link:      "https://shopping.example/" + id,
		Price:     price,
		MallName:  "테스트몰",
		Source:    "naver",
	}
}
