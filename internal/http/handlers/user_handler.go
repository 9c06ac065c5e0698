package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KHY90/cartpilot-backend/internal/http/middleware"
	"github.com/KHY90/cartpilot-backend/internal/modules/user"
)

// UserHandler serves the thin account surface §9's supplemented-features
// section restores: the social-login account and its notification
// preferences, read and patched by the authenticated owner only.
type UserHandler struct {
	store *user.Store
}

func NewUserHandler(store *user.Store) *UserHandler {
	return &UserHandler{store: store}
}

func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.store.GetByID(c.Request.Context(), middleware.CallerUserID(c))
	if err != nil {
		writeStoreError(c, err, user.ErrNotFound, nil)
		return
	}
	writeJSON(c, http.StatusOK, u)
}

type updateNotificationPrefsRequest struct {
	MessengerNotification bool    `json:"messenger_notification"`
	EmailNotification     bool    `json:"email_notification"`
	NotificationEmail     *string `json:"notification_email"`
}

func (h *UserHandler) UpdateNotificationPrefs(c *gin.Context) {
	var req updateNotificationPrefsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	userID := middleware.CallerUserID(c)
	if err := h.store.UpdateNotificationPrefs(c.Request.Context(), userID, req.MessengerNotification, req.EmailNotification, req.NotificationEmail); err != nil {
		writeStoreError(c, err, user.ErrNotFound, nil)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "updated"})
}
