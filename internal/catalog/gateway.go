// Package catalog is a typed wrapper over the external product-search
// provider: query building, HTML/entity sanitization, exclusion filters,
// and upstream retries. The gateway never caches — that's the caller's
// responsibility (internal/cache).
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"

	"github.com/KHY90/cartpilot-backend/internal/apperr"
	"github.com/KHY90/cartpilot-backend/internal/domain"
)

var (
	usedKeywords   = []string{"중고", "리퍼", "반품", "재고", "전시"}
	rentalKeywords = []string{"렌탈", "렌트", "대여", "월납"}
)

type SearchParams struct {
	Query         string
	Display       int
	Start         int
	Sort          string // sim | date | asc | dsc
	ExcludeUsed   bool
	ExcludeRental bool
	MinPrice      *int64
	MaxPrice      *int64
}

type SearchResult struct {
	Items []domain.ProductCandidate
	Total int
	Query string
	Sort  string
}

// Gateway is the HTTP-backed implementation talking to the configured
// product-search provider (Naver Shopping-shaped JSON API).
type Gateway struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	maxRetries   int
	limiter      *rate.Limiter
}

func New(baseURL, clientID, clientSecret string, timeout time.Duration, maxRetries, ratePerSecond int) *Gateway {
	if ratePerSecond <= 0 {
		ratePerSecond = 5
	}
	return &Gateway{
		httpClient:   &http.Client{Timeout: timeout},
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		maxRetries:   maxRetries,
		limiter:      rate.NewLimiter(rate.Limit(ratePerSecond), ratePerSecond),
	}
}

type rawItem struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	Link      string `json:"link"`
	Image     string `json:"image"`
	LPrice    string `json:"lprice"`
	HPrice    string `json:"hprice"`
	MallName  string `json:"mallName"`
	Brand     string `json:"brand"`
	Maker     string `json:"maker"`
	Category1 string `json:"category1"`
	Category2 string `json:"category2"`
	Category3 string `json:"category3"`
	Category4 string `json:"category4"`
}

type rawResponse struct {
	Total int       `json:"total"`
	Items []rawItem `json:"items"`
}

// Search issues an over-fetch of min(2*display, 100) items, applies
// exclusion and price-band filtering in-memory, and stops once display
// items have been collected.
func (g *Gateway) Search(ctx context.Context, p SearchParams) (SearchResult, error) {
	if p.Display <= 0 {
		p.Display = 20
	}
	if p.Sort == "" {
		p.Sort = "sim"
	}

	fetchCount := p.Display * 2
	if fetchCount > 100 {
		fetchCount = 100
	}

	data, err := g.fetchWithRetry(ctx, p, fetchCount)
	if err != nil {
		return SearchResult{}, err
	}

	var items []domain.ProductCandidate
	for _, raw := range data.Items {
		if shouldExclude(raw, p.ExcludeUsed, p.ExcludeRental) {
			continue
		}
		price := parsePrice(raw.LPrice)
		if p.MinPrice != nil && price < *p.MinPrice {
			continue
		}
		if p.MaxPrice != nil && price > *p.MaxPrice {
			continue
		}
		items = append(items, toCandidate(raw, price))
		if len(items) >= p.Display {
			break
		}
	}

	return SearchResult{Items: items, Total: data.Total, Query: p.Query, Sort: p.Sort}, nil
}

func (g *Gateway) fetchWithRetry(ctx context.Context, p SearchParams, fetchCount int) (rawResponse, error) {
	backoff, err := retry.NewExponential(1 * time.Second)
	if err != nil {
		return rawResponse{}, fmt.Errorf("catalog: building backoff: %w", err)
	}
	backoff = retry.WithCappedDuration(10*time.Second, backoff)
	backoff = retry.WithMaxRetries(uint64(g.maxRetries), backoff)

	var result rawResponse
	rateLimitedOnExhaustion := false
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}
		resp, err := g.fetchOnce(ctx, p, fetchCount)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindUpstreamRateLimited {
				rateLimitedOnExhaustion = true
				return retry.RetryableError(err)
			}
			return err
		}
		rateLimitedOnExhaustion = false
		result = resp
		return nil
	})
	if err != nil {
		if rateLimitedOnExhaustion {
			return rawResponse{}, apperr.Wrap(apperr.KindUpstreamUnavailable, "catalog rate limit retries exhausted", err)
		}
		return rawResponse{}, err
	}
	return result, nil
}

func (g *Gateway) fetchOnce(ctx context.Context, p SearchParams, fetchCount int) (rawResponse, error) {
	q := url.Values{}
	q.Set("query", p.Query)
	q.Set("display", strconv.Itoa(fetchCount))
	if p.Start <= 0 {
		p.Start = 1
	}
	q.Set("start", strconv.Itoa(p.Start))
	q.Set("sort", p.Sort)
	if p.MinPrice != nil {
		q.Set("filter", "exclude_cbshop")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return rawResponse{}, apperr.Wrap(apperr.KindUpstreamUnavailable, "building catalog request", err)
	}
	req.Header.Set("X-Naver-Client-Id", g.clientID)
	req.Header.Set("X-Naver-Client-Secret", g.clientSecret)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return rawResponse{}, apperr.Wrap(apperr.KindUpstreamUnavailable, "catalog request failed", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return rawResponse{}, apperr.New(apperr.KindUpstreamRateLimited, "catalog API rate limit exceeded")
	case http.StatusUnauthorized:
		return rawResponse{}, apperr.New(apperr.KindUpstreamAuth, "catalog API auth failed")
	case http.StatusOK:
		// fallthrough to decode
	default:
		return rawResponse{}, apperr.New(apperr.KindUpstreamUnavailable, fmt.Sprintf("catalog API error: %d", resp.StatusCode))
	}

	var data rawResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return rawResponse{}, apperr.Wrap(apperr.KindUpstreamUnavailable, "decoding catalog response", err)
	}
	return data, nil
}

func shouldExclude(item rawItem, excludeUsed, excludeRental bool) bool {
	title := strings.ToLower(item.Title)
	if excludeUsed {
		for _, kw := range usedKeywords {
			if strings.Contains(title, kw) {
				return true
			}
		}
	}
	if excludeRental {
		for _, kw := range rentalKeywords {
			if strings.Contains(title, kw) {
				return true
			}
		}
	}
	return false
}

func parsePrice(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func toCandidate(raw rawItem, price int64) domain.ProductCandidate {
	var highPrice *int64
	if raw.HPrice != "" {
		hp := parsePrice(raw.HPrice)
		if hp != 0 {
			highPrice = &hp
		}
	}
	return domain.ProductCandidate{
		ProductID: raw.ProductID,
		Title:     cleanHTML(raw.Title),
		Link:      raw.Link,
		Image:     raw.Image,
		Price:     price,
		HighPrice: highPrice,
		MallName:  raw.MallName,
		Brand:     raw.Brand,
		Maker:     raw.Maker,
		Category1: raw.Category1,
		Category2: raw.Category2,
		Category3: raw.Category3,
		Category4: raw.Category4,
		Source:    "naver_shopping",
		FetchedAt: time.Now().UTC(),
	}
}

// cleanHTML strips HTML tags and decodes entities from a provider-supplied
// title, e.g. "<b>노트북</b> 13형 &amp; 파우치 세트" -> "노트북 13형 & 파우치 세트".
func cleanHTML(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return strings.TrimSpace(html.UnescapeString(raw))
	}
	return strings.TrimSpace(html.UnescapeString(doc.Text()))
}
