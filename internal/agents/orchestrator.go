package agents

import (
	"context"

	"github.com/KHY90/cartpilot-backend/internal/domain"
)

// Step names the terminal state an Outcome landed in, mirroring the
// source's processing_step values.
type Step string

const (
	StepAwaitingClarification Step = "awaiting_clarification"
	StepGiftCompleted         Step = "gift_completed"
	StepValueCompleted        Step = "value_completed"
	StepBundleCompleted       Step = "bundle_completed"
	StepReviewCompleted       Step = "review_completed"
	StepTrendCompleted        Step = "trend_completed"
)

// Outcome is the orchestrator's terminal result: exactly one of the
// recommendation fields is set, unless Step is StepAwaitingClarification (none
// set) or Err is non-nil (mode agent failed).
type Outcome struct {
	Step                  Step
	Intent                domain.IntentType
	Requirements          domain.Requirements
	Cached                bool
	ClarificationQuestion string
	ClarificationField    string

	Gift   *domain.GiftRecommendation
	Value  *domain.ValueRecommendation
	Bundle *domain.BundleRecommendation
	Review *domain.ReviewAnalysis
	Trend  *domain.TrendSignal

	Err error
}

// Orchestrator wires the analyzer's single classification call to one of
// the five mode agents, replacing the source's LangGraph StateGraph with an
// explicit Go function: analyze, branch on clarification, branch on intent.
type Orchestrator struct {
	analyzer *Analyzer
	gift     *GiftAgent
	value    *ValueAgent
	bundle   *BundleAgent
	review   *ReviewAgent
	trend    *TrendAgent
}

func NewOrchestrator(analyzer *Analyzer, gift *GiftAgent, value *ValueAgent, bundle *BundleAgent, review *ReviewAgent, trend *TrendAgent) *Orchestrator {
	return &Orchestrator{
		analyzer: analyzer,
		gift:     gift,
		value:    value,
		bundle:   bundle,
		review:   review,
		trend:    trend,
	}
}

// Run is the graph's single entry point: analyze_request always runs first,
// should_clarify decides whether to stop for a clarifying question, and
// route_by_intent dispatches to exactly one mode agent. priorClarifyCount is
// the session's clarify_count from its last turn (0 for a brand new
// session); once two clarifying questions have already been asked, the
// `clarify_count < 2` gate inside the analyzer trips false and the turn
// routes to a mode agent instead of asking a third time.
func (o *Orchestrator) Run(ctx context.Context, sessionID string, messages []domain.Message, rawQuery, preferenceContext string, priorClarifyCount int) Outcome {
	analysis := o.analyzer.Analyze(ctx, messages, rawQuery, priorClarifyCount)

	if o.shouldClarify(analysis) {
		return Outcome{
			Step:                  StepAwaitingClarification,
			Intent:                analysis.Intent,
			Requirements:          analysis.Requirements,
			ClarificationQuestion: analysis.ClarificationQuestion,
			ClarificationField:    analysis.ClarificationField,
		}
	}

	in := Input{
		SessionID:         sessionID,
		RawQuery:          rawQuery,
		Requirements:      analysis.Requirements,
		SearchKeywords:    analysis.SearchKeywords,
		PreferenceContext: preferenceContext,
	}

	return o.routeByIntent(ctx, analysis.Intent, in)
}

func (o *Orchestrator) shouldClarify(analysis AnalysisResult) bool {
	return analysis.ClarificationNeeded
}

func (o *Orchestrator) routeByIntent(ctx context.Context, intent domain.IntentType, in Input) Outcome {
	switch intent {
	case domain.IntentGift:
		result, err := o.gift.Run(ctx, in)
		if err != nil {
			return Outcome{Step: StepGiftCompleted, Intent: intent, Requirements: in.Requirements, Err: err}
		}
		return Outcome{Step: StepGiftCompleted, Intent: intent, Requirements: in.Requirements, Cached: result.Cached, Gift: &result.Recommendation}

	case domain.IntentBundle:
		result, err := o.bundle.Run(ctx, in)
		if err != nil {
			return Outcome{Step: StepBundleCompleted, Intent: intent, Requirements: in.Requirements, Err: err}
		}
		return Outcome{Step: StepBundleCompleted, Intent: intent, Requirements: in.Requirements, Cached: result.Cached, Bundle: &result.Recommendation}

	case domain.IntentReview:
		result, err := o.review.Run(ctx, in)
		if err != nil {
			return Outcome{Step: StepReviewCompleted, Intent: intent, Requirements: in.Requirements, Err: err}
		}
		return Outcome{Step: StepReviewCompleted, Intent: intent, Requirements: in.Requirements, Cached: result.Cached, Review: &result.Analysis}

	case domain.IntentTrend:
		result, err := o.trend.Run(ctx, in)
		if err != nil {
			return Outcome{Step: StepTrendCompleted, Intent: intent, Requirements: in.Requirements, Err: err}
		}
		return Outcome{Step: StepTrendCompleted, Intent: intent, Requirements: in.Requirements, Cached: result.Cached, Trend: &result.Signal}

	default: // domain.IntentValue and any unrecognized intent
		result, err := o.value.Run(ctx, in)
		if err != nil {
			return Outcome{Step: StepValueCompleted, Intent: domain.IntentValue, Requirements: in.Requirements, Err: err}
		}
		return Outcome{Step: StepValueCompleted, Intent: domain.IntentValue, Requirements: in.Requirements, Cached: result.Cached, Value: &result.Recommendation}
	}
}
