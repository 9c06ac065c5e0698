package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KHY90/cartpilot-backend/internal/http/middleware"
	"github.com/KHY90/cartpilot-backend/internal/modules/rating"
	"github.com/KHY90/cartpilot-backend/internal/preference"
)

type RatingHandler struct {
	store    *rating.Store
	analyzer *preference.Analyzer
}

func NewRatingHandler(store *rating.Store, analyzer *preference.Analyzer) *RatingHandler {
	return &RatingHandler{store: store, analyzer: analyzer}
}

type ratingUpsertRequest struct {
	ProductID   string `json:"product_id" binding:"required"`
	ProductName string `json:"product_name"`
	Category    string `json:"category"`
	Rating      int    `json:"rating" binding:"required,min=1,max=5"`
}

func (h *RatingHandler) Upsert(c *gin.Context) {
	var req ratingUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	r := &rating.Rating{
		UserID:      middleware.CallerUserID(c),
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		Category:    req.Category,
		Value:       req.Rating,
	}
	if err := h.store.Upsert(c.Request.Context(), r); err != nil {
		if errors.Is(err, rating.ErrInvalidValue) {
			writeError(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, r)
}

func (h *RatingHandler) List(c *gin.Context) {
	ratings, err := h.store.ListByUser(c.Request.Context(), middleware.CallerUserID(c), c.Query("category"))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, ratings)
}

func (h *RatingHandler) Delete(c *gin.Context) {
	err := h.store.Delete(c.Request.Context(), middleware.CallerUserID(c), c.Param("product_id"))
	if err != nil {
		writeStoreError(c, err, rating.ErrNotFound, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// Preferences serves the derived-preferences endpoint §6 names, directly
// exposing the preference analyzer's output for the caller's own account.
func (h *RatingHandler) Preferences(c *gin.Context) {
	prefs, err := h.analyzer.Analyze(c.Request.Context(), middleware.CallerUserID(c))
	if err != nil {
		writeError(c, http.StatusBadGateway, "내 구매 성향을 분석하지 못했습니다.")
		return
	}
	writeJSON(c, http.StatusOK, prefs)
}
