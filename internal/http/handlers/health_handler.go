package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KHY90/cartpilot-backend/internal/config"
	"github.com/KHY90/cartpilot-backend/internal/session"
)

// HealthHandler serves §6's three-state health check, ported verbatim from
// the source's condition: healthy iff both the generative model and the
// catalog are configured, unhealthy iff neither, degraded otherwise.
type HealthHandler struct {
	cfg      config.Config
	sessions *session.Store
}

func NewHealthHandler(cfg config.Config, sessions *session.Store) *HealthHandler {
	return &HealthHandler{cfg: cfg, sessions: sessions}
}

type healthResponse struct {
	Status         string `json:"status"`
	LLMProvider    string `json:"llm_provider"`
	NaverAPI       string `json:"naver_api"`
	ActiveSessions int    `json:"active_sessions"`
}

func (h *HealthHandler) Check(c *gin.Context) {
	llmConfigured := h.llmConfigured()
	naverConfigured := h.cfg.Catalog.ClientID != "" && h.cfg.Catalog.ClientSecret != ""

	var status string
	switch {
	case llmConfigured && naverConfigured:
		status = "healthy"
	case llmConfigured || naverConfigured:
		status = "degraded"
	default:
		status = "unhealthy"
	}

	naverAPI := "unchecked"
	if naverConfigured {
		naverAPI = "up"
	}

	writeJSON(c, http.StatusOK, healthResponse{
		Status:         status,
		LLMProvider:    h.cfg.AI.Provider,
		NaverAPI:       naverAPI,
		ActiveSessions: h.sessions.Count(),
	})
}

func (h *HealthHandler) llmConfigured() bool {
	if h.cfg.AI.Provider == "openai" {
		return h.cfg.AI.OpenAIKey != ""
	}
	return h.cfg.AI.GeminiKey != ""
}
