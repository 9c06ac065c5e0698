package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/KHY90/cartpilot-backend/internal/http/middleware"
	"github.com/KHY90/cartpilot-backend/internal/modules/wishlist"
)

type WishlistHandler struct {
	store *wishlist.Store
}

func NewWishlistHandler(store *wishlist.Store) *WishlistHandler {
	return &WishlistHandler{store: store}
}

type wishlistItemRequest struct {
	ProductID           string `json:"product_id" binding:"required"`
	ProductName         string `json:"product_name" binding:"required"`
	Image               string `json:"image"`
	Link                string `json:"link"`
	MallName            string `json:"mall_name"`
	Category            string `json:"category"`
	CurrentPrice        int64  `json:"current_price" binding:"required,min=0"`
	TargetPrice         *int64 `json:"target_price"`
	NotificationEnabled bool   `json:"notification_enabled"`
	Notes               *string `json:"notes"`
}

func (h *WishlistHandler) List(c *gin.Context) {
	items, err := h.store.ListByUser(c.Request.Context(), middleware.CallerUserID(c))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, items)
}

func (h *WishlistHandler) Create(c *gin.Context) {
	var req wishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	item := &wishlist.Item{
		UserID:              middleware.CallerUserID(c),
		ProductID:           req.ProductID,
		ProductName:         req.ProductName,
		Image:               req.Image,
		Link:                req.Link,
		MallName:            req.MallName,
		Category:            req.Category,
		CurrentPrice:        req.CurrentPrice,
		TargetPrice:         req.TargetPrice,
		NotificationEnabled: req.NotificationEnabled,
		Notes:               req.Notes,
	}
	if err := h.store.Create(c.Request.Context(), item); err != nil {
		if appErr := wishlist.AsAppError(err); appErr != nil {
			writeAppError(c, appErr)
			return
		}
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusCreated, item)
}

type wishlistUpdateRequest struct {
	TargetPrice         *int64  `json:"target_price"`
	NotificationEnabled bool    `json:"notification_enabled"`
	Notes               *string `json:"notes"`
}

func (h *WishlistHandler) Update(c *gin.Context) {
	var req wishlistUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	item := &wishlist.Item{
		ID:                  c.Param("id"),
		UserID:              middleware.CallerUserID(c),
		TargetPrice:         req.TargetPrice,
		NotificationEnabled: req.NotificationEnabled,
		Notes:               req.Notes,
	}
	if err := h.store.Update(c.Request.Context(), item); err != nil {
		if appErr := wishlist.AsAppError(err); appErr != nil {
			writeAppError(c, appErr)
			return
		}
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "updated"})
}

func (h *WishlistHandler) Delete(c *gin.Context) {
	err := h.store.Delete(c.Request.Context(), c.Param("id"), middleware.CallerUserID(c))
	if err != nil {
		if appErr := wishlist.AsAppError(err); appErr != nil {
			writeAppError(c, appErr)
			return
		}
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.Status(http.StatusNoContent)
}

// PriceHistory serves the ascending-time-order price series §6 names, with
// an optional ?days= window (default 90, the store's own default).
func (h *WishlistHandler) PriceHistory(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			days = n
		}
	}
	history, err := h.store.PriceHistory(c.Request.Context(), c.Param("id"), days)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, history)
}
