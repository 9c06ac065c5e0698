package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KHY90/cartpilot-backend/internal/http/middleware"
	"github.com/KHY90/cartpilot-backend/internal/modules/purchase"
)

type PurchaseHandler struct {
	store *purchase.Store
}

func NewPurchaseHandler(store *purchase.Store) *PurchaseHandler {
	return &PurchaseHandler{store: store}
}

type purchaseRequest struct {
	ProductName string     `json:"product_name" binding:"required"`
	Category    string     `json:"category"`
	MallName    string     `json:"mall_name"`
	Price       int64      `json:"price" binding:"required,min=0"`
	Quantity    int        `json:"quantity"`
	PurchasedAt *time.Time `json:"purchased_at"`
	Notes       *string    `json:"notes"`
}

func (h *PurchaseHandler) Create(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	purchasedAt := time.Now()
	if req.PurchasedAt != nil {
		purchasedAt = *req.PurchasedAt
	}

	record := &purchase.Record{
		UserID:      middleware.CallerUserID(c),
		ProductName: req.ProductName,
		Category:    req.Category,
		MallName:    req.MallName,
		Price:       req.Price,
		Quantity:    req.Quantity,
		PurchasedAt: purchasedAt,
		Notes:       req.Notes,
	}
	if err := h.store.Create(c.Request.Context(), record); err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusCreated, record)
}

func (h *PurchaseHandler) Get(c *gin.Context) {
	record, err := h.store.Get(c.Request.Context(), c.Param("id"), middleware.CallerUserID(c))
	if err != nil {
		writeStoreError(c, err, purchase.ErrNotFound, nil)
		return
	}
	writeJSON(c, http.StatusOK, record)
}

func (h *PurchaseHandler) List(c *gin.Context) {
	records, err := h.store.ListByUser(c.Request.Context(), middleware.CallerUserID(c))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, records)
}

func (h *PurchaseHandler) Update(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	purchasedAt := time.Now()
	if req.PurchasedAt != nil {
		purchasedAt = *req.PurchasedAt
	}

	record := &purchase.Record{
		ID:          c.Param("id"),
		UserID:      middleware.CallerUserID(c),
		ProductName: req.ProductName,
		Category:    req.Category,
		MallName:    req.MallName,
		Price:       req.Price,
		Quantity:    req.Quantity,
		PurchasedAt: purchasedAt,
		Notes:       req.Notes,
	}
	if err := h.store.Update(c.Request.Context(), record); err != nil {
		writeStoreError(c, err, purchase.ErrNotFound, nil)
		return
	}
	writeJSON(c, http.StatusOK, record)
}

func (h *PurchaseHandler) Delete(c *gin.Context) {
	err := h.store.Delete(c.Request.Context(), c.Param("id"), middleware.CallerUserID(c))
	if err != nil {
		writeStoreError(c, err, purchase.ErrNotFound, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats serves §6's reporting endpoint: total purchases, total spent,
// average price, per-category sums, per-month sums.
func (h *PurchaseHandler) Stats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context(), middleware.CallerUserID(c))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, stats)
}
