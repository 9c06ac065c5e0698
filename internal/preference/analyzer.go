package preference

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/KHY90/cartpilot-backend/internal/modules/purchase"
	"github.com/KHY90/cartpilot-backend/internal/modules/rating"
	"github.com/KHY90/cartpilot-backend/internal/modules/wishlist"
)

// DefaultAnalysisWindow is the lookback window for purchase aggregation.
const DefaultAnalysisWindow = 180 * 24 * time.Hour

var koreanWordPattern = regexp.MustCompile(`[가-힣a-zA-Z0-9]+`)

var stopwords = map[string]struct{}{
	"세트": {}, "선물": {}, "추천": {}, "인기": {}, "베스트": {}, "특가": {}, "무료배송": {},
	"증정": {}, "할인": {}, "정품": {}, "국내": {}, "해외": {}, "당일": {}, "무료": {},
	"한정": {}, "1+1": {}, "2+1": {}, "신상": {}, "사은품": {}, "이벤트": {},
}

// Analyzer computes Preferences from a user's stored purchase, rating, and
// wishlist history.
type Analyzer struct {
	purchases *purchase.Store
	ratings   *rating.Store
	wishlists *wishlist.Store
	window    time.Duration
}

func NewAnalyzer(purchases *purchase.Store, ratings *rating.Store, wishlists *wishlist.Store) *Analyzer {
	return &Analyzer{purchases: purchases, ratings: ratings, wishlists: wishlists, window: DefaultAnalysisWindow}
}

// Analyze runs the full derivation. A store failure stops it and is
// returned together with whatever was assembled so far; the chat handler
// logs such an error and proceeds without preference context.
func (a *Analyzer) Analyze(ctx context.Context, userID string) (Preferences, error) {
	var prefs Preferences
	since := time.Now().Add(-a.window)

	purchaseAgg, err := a.purchases.AggregateSince(ctx, userID, since)
	if err != nil {
		return prefs, err
	}
	dataPoints := purchaseAgg.Count

	if purchaseAgg.Count > 0 {
		prefs.PriceRangeMin = purchaseAgg.MinPrice
		prefs.PriceRangeMax = purchaseAgg.MaxPrice
		prefs.PurchaseFrequency = frequencyBucket(purchaseAgg.Count)
		prefs.PreferredCategories = topCategoryWeights(purchaseAgg.CategoryCounts, purchaseAgg.Count)
		prefs.PreferredMalls = topKeysByCount(purchaseAgg.MallCounts, 5)

		recent, err := a.purchases.ListRecentByUser(ctx, userID, 5)
		if err != nil {
			return prefs, err
		}
		for _, r := range recent {
			prefs.RecentPurchases = append(prefs.RecentPurchases, r.ProductName)
		}
	}

	avgRating, highRatedNames, err := a.ratings.AverageAndHighRatedNames(ctx, userID)
	if err != nil {
		return prefs, err
	}
	if avgRating > 0 {
		prefs.AverageRating = avgRating
		if len(highRatedNames) > 20 {
			highRatedNames = highRatedNames[:20]
		}
		prefs.HighRatedKeywords = extractKeywords(highRatedNames)
		dataPoints += len(highRatedNames)
	}

	items, err := a.wishlists.ListByUser(ctx, userID)
	if err != nil {
		return prefs, err
	}
	var wishlistAvg float64
	if len(items) > 0 {
		var sum int64
		for _, it := range items {
			sum += it.CurrentPrice
		}
		wishlistAvg = float64(sum) / float64(len(items))
		dataPoints += len(items)
	}

	switch {
	case purchaseAgg.Count > 0 && len(items) > 0:
		prefs.AveragePurchasePrice = 0.7*purchaseAgg.AveragePrice + 0.3*wishlistAvg
	case purchaseAgg.Count > 0:
		prefs.AveragePurchasePrice = purchaseAgg.AveragePrice
	case len(items) > 0:
		prefs.AveragePurchasePrice = wishlistAvg
	}

	if prefs.AveragePurchasePrice > 0 {
		prefs.PriceSensitivity = priceSensitivity(prefs.AveragePurchasePrice)
	}

	prefs.DataPoints = dataPoints
	prefs.AnalyzedAt = time.Now()
	return prefs, nil
}

func frequencyBucket(count int) string {
	switch {
	case count >= 10:
		return "high"
	case count >= 3:
		return "medium"
	default:
		return "low"
	}
}

func priceSensitivity(avg float64) string {
	switch {
	case avg < 20_000:
		return "high"
	case avg > 100_000:
		return "low"
	default:
		return "medium"
	}
}

func topCategoryWeights(counts map[string]int, total int) []CategoryWeight {
	if total == 0 || len(counts) == 0 {
		return nil
	}
	categorised := 0
	for _, n := range counts {
		categorised += n
	}
	weights := make([]CategoryWeight, 0, len(counts))
	for cat, n := range counts {
		weights = append(weights, CategoryWeight{Category: cat, Weight: float64(n) / float64(categorised)})
	}
	sort.Slice(weights, func(i, j int) bool { return weights[i].Weight > weights[j].Weight })
	if len(weights) > 10 {
		weights = weights[:10]
	}
	return weights
}

func topKeysByCount(counts map[string]int, limit int) []string {
	type kv struct {
		key   string
		count int
	}
	kvs := make([]kv, 0, len(counts))
	for k, n := range counts {
		kvs = append(kvs, kv{k, n})
	}
	sort.Slice(kvs, func(i, j int) bool { return kvs[i].count > kvs[j].count })
	if len(kvs) > limit {
		kvs = kvs[:limit]
	}
	out := make([]string, len(kvs))
	for i, e := range kvs {
		out[i] = e.key
	}
	return out
}

// extractKeywords tokenizes product names on Korean/alphanumeric word
// boundaries, drops marketing-jargon stopwords and single-character
// tokens, and returns the 10 most frequent tokens that occur at least
// twice.
func extractKeywords(names []string) []string {
	counts := make(map[string]int)
	var order []string
	for _, name := range names {
		for _, tok := range koreanWordPattern.FindAllString(name, -1) {
			if len([]rune(tok)) < 2 {
				continue
			}
			if _, stop := stopwords[strings.ToLower(tok)]; stop {
				continue
			}
			if _, seen := counts[tok]; !seen {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}

	type kv struct {
		token string
		count int
	}
	var kvs []kv
	for _, tok := range order {
		if counts[tok] >= 2 {
			kvs = append(kvs, kv{tok, counts[tok]})
		}
	}
	sort.SliceStable(kvs, func(i, j int) bool { return kvs[i].count > kvs[j].count })
	if len(kvs) > 10 {
		kvs = kvs[:10]
	}
	out := make([]string, len(kvs))
	for i, e := range kvs {
		out[i] = e.token
	}
	return out
}
