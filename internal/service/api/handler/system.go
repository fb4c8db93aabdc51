package handler

import (
	"net/http"
	"time"

	"github.com/darkkaiser/cartpilot-server/internal/pkg/cache"
	"github.com/labstack/echo/v4"
)

// 헬스체크 상태 값
const (
	healthStatusHealthy   = "healthy"
	healthStatusDegraded  = "degraded"
	healthStatusUnhealthy = "unhealthy"
)

// HealthResponse 헬스체크 응답입니다.
type HealthResponse struct {
	Status         string      `json:"status"`
	LLMProvider    string      `json:"llm_provider"`
	Database       string      `json:"database"`
	NaverAPI       string      `json:"naver_api"`
	ActiveSessions int         `json:"active_sessions"`
	Cache          cache.Stats `json:"cache"`
	Uptime         string      `json:"uptime"`
}

// Health 서비스 상태를 반환합니다.
//
// 데이터베이스 연결에 실패하면 unhealthy로 표시되고 503 상태 코드로
// 응답합니다. 네이버 쇼핑 API 자격증명이 설정되지 않은 경우에는
// degraded로 표시되지만 200으로 응답합니다.
//
// GET /health
func (h *Handler) Health(c echo.Context) error {
	response := HealthResponse{
		Status:      healthStatusHealthy,
		LLMProvider: h.deps.LLMProvider,
		Database:    "ok",
		NaverAPI:    "ok",
		Uptime:      time.Since(h.startedAt).Truncate(time.Second).String(),
	}

	if h.deps.Cache != nil {
		response.Cache = h.deps.Cache.Stats()
	}
	if h.deps.Sessions != nil {
		response.ActiveSessions = h.deps.Sessions.ActiveSessions()
	}

	if !h.deps.NaverConfigured {
		response.Status = healthStatusDegraded
		response.NaverAPI = "unconfigured"
	}

	code := http.StatusOK
	if err := h.deps.DB.Ping(c.Request().Context()); err != nil {
		response.Status = healthStatusUnhealthy
		response.Database = "error"
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, response)
}
