package api

import (
	"net/http"
	"time"

	appmiddleware "github.com/darkkaiser/cartpilot-server/internal/service/api/middleware"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

// HTTP 서버의 기본 타임아웃과 요청 제한 값
const (
	defaultReadTimeout       = 30 * time.Second
	defaultReadHeaderTimeout = 10 * time.Second
	defaultWriteTimeout      = 90 * time.Second
	defaultIdleTimeout       = 120 * time.Second

	// defaultRequestTimeout 요청 처리 시간 제한 (초과 시 503 응답)
	defaultRequestTimeout = 60 * time.Second

	// defaultMaxBodySize 요청 본문 최대 크기 (초과 시 413 응답)
	defaultMaxBodySize = "2M"

	// IP별 초당 허용 요청 수와 버스트 허용량
	defaultRateLimitPerSecond = 20
	defaultRateLimitBurst     = 40
)

// HTTPServerConfig Echo 서버 생성 시 필요한 설정입니다.
type HTTPServerConfig struct {
	// Debug Echo의 디버그 모드 활성화 여부
	Debug bool

	// AllowOrigins CORS에서 허용할 Origin 목록.
	// 운영 환경에서는 특정 도메인만 허용하도록 설정해야 합니다.
	AllowOrigins []string

	// RequestTimeout 요청 처리 시간 제한. 0이면 기본값(60초)을 사용합니다.
	RequestTimeout time.Duration
}

// NewHTTPServer 설정된 미들웨어를 포함한 Echo 인스턴스를 생성합니다.
//
// 미들웨어는 다음 순서로 적용됩니다 (순서가 중요합니다):
//
//  1. PanicRecovery - 패닉 복구 및 로깅
//  2. RequestID - 요청별 고유 ID 부여 (X-Request-ID)
//  3. HTTPLogger - HTTP 요청/응답 구조화 로깅 (429/503 응답도 기록)
//  4. RateLimiting - IP별 요청 제한 (초과 시 429)
//  5. BodyLimit - 요청 본문 크기 제한 (초과 시 413)
//  6. Timeout - 요청 처리 시간 제한 (초과 시 503)
//  7. CORS - 허용된 Origin의 크로스 도메인 요청 처리
//  8. Secure - 보안 헤더 설정 (X-XSS-Protection 등)
//
// 라우트 설정은 포함되지 않으며, 반환된 Echo 인스턴스에 별도로 설정해야 합니다.
func NewHTTPServer(cfg HTTPServerConfig) *echo.Echo {
	e := echo.New()

	e.Debug = cfg.Debug
	e.HideBanner = true

	// 느린 클라이언트의 연결 점유를 제한한다
	e.Server.ReadTimeout = defaultReadTimeout
	e.Server.ReadHeaderTimeout = defaultReadHeaderTimeout
	e.Server.WriteTimeout = defaultWriteTimeout
	e.Server.IdleTimeout = defaultIdleTimeout

	// echo 내부 로그가 Logrus로 출력되도록 어댑터를 연결한다
	e.Logger = appmiddleware.Logger{Logger: log.StandardLogger()}

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}

	e.Use(appmiddleware.PanicRecovery())
	e.Use(middleware.RequestID())
	e.Use(appmiddleware.HTTPLogger())
	e.Use(appmiddleware.RateLimiting(defaultRateLimitPerSecond, defaultRateLimitBurst))
	e.Use(middleware.BodyLimit(defaultMaxBodySize))
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: timeout,
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodPatch, http.MethodDelete},
	}))
	e.Use(middleware.Secure())

	return e
}
