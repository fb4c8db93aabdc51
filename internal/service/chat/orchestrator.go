// Package chat 대화형 쇼핑 추천의 오케스트레이션을 담당합니다.
//
// 사용자 발화를 분석하여 의도를 분류하고, 필수 정보가 부족하면 되묻기
// 질문을 생성하며, 분석이 완료되면 의도별 에이전트로 라우팅하여 추천
// 응답을 만듭니다.
package chat

import (
	"context"
	"errors"
	"time"

	"github.com/darkkaiser/cartpilot-server/internal/pkg/cache"
	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	applog "github.com/darkkaiser/cartpilot-server/pkg/log"
)

// component 대화 서비스 로깅용 컴포넌트 이름
const component = "chat"

// maxClarifyTurns 세션당 허용하는 최대 되묻기 횟수입니다.
// 이 횟수를 넘으면 슬롯이 부족해도 에이전트로 라우팅합니다.
const maxClarifyTurns = 2

// chatSoftDeadline 대화 한 턴의 처리 제한 시간입니다.
// 초과 시 deadline_exceeded 오류 응답으로 전환됩니다.
const chatSoftDeadline = 8 * time.Second

// 대화 이력의 발화 주체
const (
	roleUser      = "user"
	roleAssistant = "assistant"
)

// 오류 응답의 원인 분류 코드
const (
	// ErrorCodeDeadlineExceeded 처리 제한 시간 초과
	ErrorCodeDeadlineExceeded = "deadline_exceeded"

	// ErrorCodeNoResults 조건에 맞는 상품 없음
	ErrorCodeNoResults = "no_results"

	// ErrorCodeBadModelReply LLM 응답 파싱 실패 (재시도 후에도 실패)
	ErrorCodeBadModelReply = "bad_model_reply"

	// ErrorCodeAgentFailed 그 외 추천 생성 실패
	ErrorCodeAgentFailed = "agent_failed"
)

// ResponseType 대화 응답의 종류입니다.
type ResponseType string

const (
	// ResponseRecommendation 추천 결과 응답
	ResponseRecommendation ResponseType = "recommendation"

	// ResponseClarification 되묻기 질문 응답
	ResponseClarification ResponseType = "clarification"

	// ResponseError 오류 응답
	ResponseError ResponseType = "error"
)

// defaultFallbackSuggestions 오류 응답에 포함되는 사용자 행동 제안
var defaultFallbackSuggestions = []string{
	"다시 시도해 주세요",
	"좀 더 구체적으로 말씀해 주세요",
}

// ChatResponse 대화 요청에 대한 최종 응답입니다.
type ChatResponse struct {
	Type      ResponseType `json:"type"`
	SessionID string       `json:"session_id"`
	Intent    Intent       `json:"intent,omitempty"`

	// Message 응답의 한국어 요약 문구
	Message string `json:"message,omitempty"`

	// Recommendations 추천 결과 (type=recommendation)
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	Disclaimer      string           `json:"disclaimer,omitempty"`
	DataSource      string           `json:"data_source,omitempty"`

	// Clarification 되묻기 질문 (type=clarification)
	Clarification *Clarification `json:"clarification,omitempty"`

	// ErrorMessage 오류 설명 (type=error)
	ErrorMessage        string   `json:"error_message,omitempty"`
	ErrorCode           string   `json:"error_code,omitempty"`
	FallbackSuggestions []string `json:"fallback_suggestions,omitempty"`

	ProcessingTimeMS int64 `json:"processing_time_ms"`
	Cached           bool  `json:"cached"`
}

// Orchestrator 대화 흐름을 제어하는 오케스트레이터입니다.
//
// 처리 그래프: 분석 → (되묻기 | 의도별 라우팅) → 에이전트 → 응답.
// 동일한 분석 결과에 대한 추천은 캐시되어 에이전트 호출을 건너뜁니다.
type Orchestrator struct {
	sessions *SessionStore
	analyzer *Analyzer
	agents   map[Intent]Agent
	cache    *cache.Cache

	// deadline 대화 한 턴의 처리 제한 시간입니다.
	deadline time.Duration

	// now 테스트에서 시간 제어를 위해 주입 가능합니다.
	now func() time.Time
}

// NewOrchestrator 오케스트레이터를 생성합니다. cache는 nil일 수 있습니다.
func NewOrchestrator(sessions *SessionStore, analyzer *Analyzer, agents []Agent, c *cache.Cache) *Orchestrator {
	agentMap := make(map[Intent]Agent, len(agents))
	for _, agent := range agents {
		agentMap[agent.Intent()] = agent
	}

	return &Orchestrator{
		sessions: sessions,
		analyzer: analyzer,
		agents:   agentMap,
		cache:    c,
		deadline: chatSoftDeadline,
		now:      time.Now,
	}
}

// Chat 사용자 발화를 처리하고 응답을 생성합니다.
//
// 에이전트 실행 실패는 에러 대신 오류 응답(type=error)으로 변환되어
// 호출 측이 항상 사용자에게 보여줄 수 있는 응답을 받습니다.
func (o *Orchestrator) Chat(ctx context.Context, userID, sessionID, message string) *ChatResponse {
	started := o.now()

	ctx, cancel := context.WithTimeout(ctx, o.deadline)
	defer cancel()

	sess := o.sessions.GetOrCreate(sessionID, userID)
	sess.AppendMessage(roleUser, message, started)

	var analysis *Analysis
	if sess.PendingAnalysis != nil {
		// 되묻기 답변: 미완성 분석에 답변 내용을 병합
		analysis = mergeClarificationAnswer(sess.PendingAnalysis, sess.PendingField, message)
	} else {
		// 후속 발화의 문맥 유지를 위해 세션의 사용자 발화 전체를 분석
		analysis = o.analyzer.Analyze(ctx, sess.UserText())
	}

	// 필수 슬롯이 부족하면 되묻기 (최대 횟수 초과 시에는 그대로 라우팅)
	if clarification := requiredClarification(analysis); clarification != nil && sess.ClarifyCount < maxClarifyTurns {
		sess.PendingAnalysis = analysis
		sess.PendingField = clarification.Field
		sess.ClarifyCount++
		sess.AppendMessage(roleAssistant, clarification.Question, o.now())

		return o.finish(&ChatResponse{
			Type:          ResponseClarification,
			SessionID:     sess.ID,
			Intent:        analysis.Intent,
			Message:       clarification.Question,
			Clarification: clarification,
		}, started)
	}

	// 되묻기 종료: 보류 상태 해제
	sess.PendingAnalysis = nil
	sess.PendingField = ""

	response := o.route(ctx, sess, analysis)
	sess.AppendMessage(roleAssistant, response.Message, o.now())

	return o.finish(response, started)
}

// route 분석 결과를 의도별 에이전트로 라우팅하여 추천 응답을 생성합니다.
func (o *Orchestrator) route(ctx context.Context, sess *Session, analysis *Analysis) *ChatResponse {
	agent, ok := o.agents[analysis.Intent]
	if !ok {
		return &ChatResponse{
			Type:                ResponseError,
			SessionID:           sess.ID,
			Intent:              analysis.Intent,
			ErrorMessage:        "요청을 처리할 수 없습니다. 다른 표현으로 다시 시도해 주세요.",
			ErrorCode:           ErrorCodeAgentFailed,
			FallbackSuggestions: defaultFallbackSuggestions,
		}
	}

	// 추천 캐시 확인: 취향 정보가 반영되므로 사용자 식별자를 지문에 포함
	cacheParams := analysis.Fingerprint()
	cacheParams["user_id"] = sess.UserID
	cacheKey := cache.Key(cache.KeyPrefixRecommendation, cacheParams)

	if o.cache != nil {
		if cached, found := o.cache.Get(cacheKey); found {
			if agentResponse, ok := cached.(*AgentResponse); ok {
				response := o.recommendationResponse(sess, analysis, agentResponse)
				response.Cached = true
				return response
			}
		}
	}

	agentResponse, err := agent.Recommend(ctx, sess.UserID, analysis)

	// LLM 응답 파싱 실패는 일시적일 수 있으므로 한 번 재시도
	if err != nil && apperrors.Is(err, apperrors.ParsingFailed) && ctx.Err() == nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"intent":     analysis.Intent,
			"session_id": sess.ID,
			"error":      err,
		}).Warn("LLM 응답 파싱 실패: 추천 생성을 재시도합니다")

		agentResponse, err = agent.Recommend(ctx, sess.UserID, analysis)
	}

	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"intent":     analysis.Intent,
			"session_id": sess.ID,
			"error":      err,
		}).Error("추천 생성 실패")

		return o.errorResponse(sess, analysis, err)
	}

	if o.cache != nil {
		o.cache.Set(cacheKey, agentResponse)
	}

	return o.recommendationResponse(sess, analysis, agentResponse)
}

// errorResponse 에이전트 실패를 원인 분류 코드가 포함된 오류 응답으로 변환합니다.
func (o *Orchestrator) errorResponse(sess *Session, analysis *Analysis, err error) *ChatResponse {
	response := &ChatResponse{
		Type:                ResponseError,
		SessionID:           sess.ID,
		Intent:              analysis.Intent,
		ErrorMessage:        "추천을 생성하는 중 문제가 발생했습니다.",
		ErrorCode:           ErrorCodeAgentFailed,
		FallbackSuggestions: defaultFallbackSuggestions,
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded) || apperrors.Is(err, apperrors.Timeout):
		response.ErrorCode = ErrorCodeDeadlineExceeded
		response.ErrorMessage = "응답 생성이 제한 시간을 초과했습니다. 잠시 후 다시 시도해 주세요."

	case apperrors.Is(err, apperrors.NotFound):
		response.ErrorCode = ErrorCodeNoResults
		response.ErrorMessage = errMsgNoProducts

	case apperrors.Is(err, apperrors.ParsingFailed):
		response.ErrorCode = ErrorCodeBadModelReply
	}

	return response
}

// recommendationResponse 에이전트 결과를 최종 응답으로 변환합니다.
func (o *Orchestrator) recommendationResponse(sess *Session, analysis *Analysis, agentResponse *AgentResponse) *ChatResponse {
	return &ChatResponse{
		Type:            ResponseRecommendation,
		SessionID:       sess.ID,
		Intent:          analysis.Intent,
		Message:         agentResponse.Message,
		Recommendations: agentResponse.Recommendations,
		Disclaimer:      agentResponse.Disclaimer,
		DataSource:      agentResponse.DataSource,
	}
}

// finish 처리 시간을 기록하고 응답을 반환합니다.
func (o *Orchestrator) finish(response *ChatResponse, started time.Time) *ChatResponse {
	response.ProcessingTimeMS = o.now().Sub(started).Milliseconds()
	return response
}
