package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KHY90/cartpilot-backend/internal/pricing"
	"github.com/KHY90/cartpilot-backend/internal/scheduler"
)

// AdminHandler serves §6's scheduler-introspection and manual-trigger
// surface, all behind RequireAuth — operator-only in practice, with no
// separate role system in scope.
type AdminHandler struct {
	scheduler *scheduler.Scheduler
	monitor   *pricing.Monitor
}

func NewAdminHandler(sched *scheduler.Scheduler, monitor *pricing.Monitor) *AdminHandler {
	return &AdminHandler{scheduler: sched, monitor: monitor}
}

type jobStatusResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	NextRun string `json:"next_run"`
}

func (h *AdminHandler) SchedulerStatus(c *gin.Context) {
	running, jobs := h.scheduler.Status()
	out := make([]jobStatusResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, jobStatusResponse{ID: j.ID, Name: j.Name, NextRun: j.NextRun.Format("2006-01-02T15:04:05Z07:00")})
	}
	writeJSON(c, http.StatusOK, gin.H{"running": running, "jobs": out})
}

// TriggerPriceMonitoring runs the §4.11 checkAll sweep immediately, the
// manual-trigger operation §6 names.
func (h *AdminHandler) TriggerPriceMonitoring(c *gin.Context) {
	summary, err := h.monitor.CheckAll(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, summary)
}

// CheckItem runs the per-item manual price check §9 wires to
// pricing.Monitor.CheckSingle directly.
func (h *AdminHandler) CheckItem(c *gin.Context) {
	item, alertSent, err := h.monitor.CheckSingle(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"item": item, "alert_sent": alertSent})
}
