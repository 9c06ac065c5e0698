package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KHY90/cartpilot-backend/internal/apperr"
)

func TestSearch_FiltersAndOverFetches(t *testing.T) {
	var gotDisplay string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDisplay = r.URL.Query().Get("display")
		resp := rawResponse{
			Total: 5,
			Items: []rawItem{
				{ProductID: "1", Title: "<b>중고</b> 노트북", LPrice: "500000"},
				{ProductID: "2", Title: "새상품 노트북", LPrice: "700000"},
				{ProductID: "3", Title: "렌탈 노트북", LPrice: "300000"},
				{ProductID: "4", Title: "프리미엄 노트북", LPrice: "1200000"},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	gw := New(srv.URL, "id", "secret", 5*time.Second, 3, 100)
	maxPrice := int64(1_000_000)
	result, err := gw.Search(context.Background(), SearchParams{
		Query: "노트북", Display: 2, ExcludeUsed: true, ExcludeRental: true, MaxPrice: &maxPrice,
	})
	require.NoError(t, err)
	assert.Equal(t, "4", gotDisplay)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "2", result.Items[0].ProductID)
	assert.Equal(t, "새상품 노트북", result.Items[0].Title)
}

func TestSearch_AuthFailedIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	gw := New(srv.URL, "id", "secret", 5*time.Second, 3, 100)
	_, err := gw.Search(context.Background(), SearchParams{Query: "x", Display: 5})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstreamAuth, apperr.KindOf(err))
}

func TestSearch_RateLimitedEscalatesAfterRetries(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	gw := New(srv.URL, "id", "secret", 5*time.Second, 2, 1000)
	_, err := gw.Search(context.Background(), SearchParams{Query: "x", Display: 5})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
	assert.GreaterOrEqual(t, calls, 2)
}
