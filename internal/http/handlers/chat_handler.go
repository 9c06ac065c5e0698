package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/KHY90/cartpilot-backend/internal/agents"
	"github.com/KHY90/cartpilot-backend/internal/apperr"
	"github.com/KHY90/cartpilot-backend/internal/domain"
	"github.com/KHY90/cartpilot-backend/internal/http/middleware"
	"github.com/KHY90/cartpilot-backend/internal/preference"
	"github.com/KHY90/cartpilot-backend/internal/quota"
	"github.com/KHY90/cartpilot-backend/internal/session"
)

// turnDeadline bounds a whole chat turn (analyzer call plus whichever mode
// agent it routes to), independent of each provider's own client timeout.
const turnDeadline = 8 * time.Second

type chatRequest struct {
	Message   string `json:"message" binding:"required,min=1,max=500"`
	SessionID string `json:"session_id"`
}

type clarificationResponse struct {
	Question    string   `json:"question"`
	Field       string   `json:"field"`
	Suggestions []string `json:"suggestions"`
}

type chatResponse struct {
	Type               string                  `json:"type"`
	Intent             domain.IntentType       `json:"intent,omitempty"`
	Recommendations    any                     `json:"recommendations,omitempty"`
	Clarification      *clarificationResponse  `json:"clarification,omitempty"`
	ErrorMessage       string                  `json:"error_message,omitempty"`
	FallbackSuggestions []string               `json:"fallback_suggestions"`
	ProcessingTimeMs   int64                   `json:"processing_time_ms"`
	Cached             bool                    `json:"cached"`
}

// ChatHandler serves the conversational turn endpoint: §6's primary
// interface. Ported from the source's send_chat_message, generalizing its
// try/except-wraps-everything shape into explicit error branches per the
// orchestrator's Outcome.
type ChatHandler struct {
	sessions     *session.Store
	orchestrator *agents.Orchestrator
	analyzer     *preference.Analyzer
	quota        *quota.Service
	log          *logrus.Logger
}

func NewChatHandler(sessions *session.Store, orchestrator *agents.Orchestrator, analyzer *preference.Analyzer, quotaSvc *quota.Service, log *logrus.Logger) *ChatHandler {
	return &ChatHandler{sessions: sessions, orchestrator: orchestrator, analyzer: analyzer, quota: quotaSvc, log: log}
}

func (h *ChatHandler) Send(c *gin.Context) {
	start := time.Now()

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusUnprocessableEntity, "message은 1자 이상 500자 이하이어야 합니다.")
		return
	}

	sess := h.sessions.GetOrCreate(req.SessionID)
	h.sessions.AppendMessage(sess.ID, domain.Message{Role: domain.RoleUser, Content: req.Message, Timestamp: time.Now()})

	ctx := c.Request.Context()
	userID := middleware.CallerUserID(c)

	var preferenceContext string
	if userID != "" {
		if err := h.quota.UseTurn(ctx, userID); err != nil {
			writeJSON(c, http.StatusOK, chatResponse{
				Type:                "error",
				ErrorMessage:        "이번 달 채팅 한도를 모두 사용했습니다.",
				FallbackSuggestions: []string{"다음 달에 다시 이용해 주세요"},
				ProcessingTimeMs:    time.Since(start).Milliseconds(),
			})
			return
		}

		prefs, err := h.analyzer.Analyze(ctx, userID)
		if err != nil {
			h.log.WithFields(logrus.Fields{"user_id": userID, "error": err}).Warn("성향 분석 실패, 익명으로 진행")
		} else if prefs.HasData() {
			preferenceContext = prefs.ToPromptContext()
		}
	}

	priorClarifyCount := 0
	if sess.Requirements != nil {
		priorClarifyCount = sess.Requirements.ClarifyCount
	}

	turnCtx, cancel := context.WithTimeout(ctx, turnDeadline)
	defer cancel()

	outcome := h.orchestrator.Run(turnCtx, sess.ID, sess.Messages, req.Message, preferenceContext, priorClarifyCount)
	h.sessions.Update(sess.ID, outcome.Intent, &outcome.Requirements)

	elapsed := time.Since(start).Milliseconds()

	switch {
	case turnCtx.Err() == context.DeadlineExceeded:
		deadlineErr := apperr.New(apperr.KindDeadlineExceeded, "요청 처리 시간이 초과되었습니다.")
		writeJSON(c, http.StatusOK, chatResponse{
			Type:         "error",
			Intent:       outcome.Intent,
			ErrorMessage: deadlineErr.Message,
			FallbackSuggestions: []string{
				"다시 시도해 주세요",
				"좀 더 구체적으로 말씀해 주세요",
			},
			ProcessingTimeMs: elapsed,
		})

	case outcome.Step == agents.StepAwaitingClarification:
		writeJSON(c, http.StatusOK, chatResponse{
			Type:   "clarification",
			Intent: outcome.Intent,
			Clarification: &clarificationResponse{
				Question:    outcome.ClarificationQuestion,
				Field:       outcome.ClarificationField,
				Suggestions: []string{},
			},
			FallbackSuggestions: []string{},
			ProcessingTimeMs:    elapsed,
		})

	case outcome.Err != nil:
		writeJSON(c, http.StatusOK, chatResponse{
			Type:         "error",
			Intent:       outcome.Intent,
			ErrorMessage: outcome.Err.Error(),
			FallbackSuggestions: []string{
				"다시 시도해 주세요",
				"좀 더 구체적으로 말씀해 주세요",
			},
			ProcessingTimeMs: elapsed,
		})

	default:
		writeJSON(c, http.StatusOK, chatResponse{
			Type:                "recommendation",
			Intent:              outcome.Intent,
			Recommendations:     recommendationPayload(outcome),
			FallbackSuggestions: []string{},
			ProcessingTimeMs:    elapsed,
			Cached:              outcome.Cached,
		})
	}
}

// recommendationPayload returns whichever of Outcome's five tagged
// recommendation fields is set, matching §3's "exactly one of the five
// tagged shapes" invariant.
func recommendationPayload(outcome agents.Outcome) any {
	switch {
	case outcome.Gift != nil:
		return outcome.Gift
	case outcome.Value != nil:
		return outcome.Value
	case outcome.Bundle != nil:
		return outcome.Bundle
	case outcome.Review != nil:
		return outcome.Review
	case outcome.Trend != nil:
		return outcome.Trend
	default:
		return nil
	}
}
