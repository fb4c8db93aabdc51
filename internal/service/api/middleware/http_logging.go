package middleware

import (
	"time"

	applog "github.com/darkkaiser/cartpilot-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// HTTPLogger 모든 HTTP 요청과 응답을 구조화된 로그로 기록합니다.
//
// 요청 처리 시간, 상태 코드, 클라이언트 IP, 요청 ID를 함께 기록하며,
// 핸들러가 반환한 에러는 전역 에러 핸들러가 처리하도록 그대로 전파합니다.
func HTTPLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			started := time.Now()

			err := next(c)
			if err != nil {
				// 상태 코드가 확정되도록 에러 핸들러를 먼저 거친다
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			entry := applog.WithComponentAndFields(component, applog.Fields{
				"method":     req.Method,
				"path":       req.URL.Path,
				"status":     res.Status,
				"latency":    time.Since(started).String(),
				"ip":         c.RealIP(),
				"request_id": res.Header().Get(echo.HeaderXRequestID),
			})

			switch {
			case res.Status >= 500:
				entry.Error("HTTP 요청 처리")
			case res.Status >= 400:
				entry.Warn("HTTP 요청 처리")
			default:
				entry.Info("HTTP 요청 처리")
			}

			return nil
		}
	}
}
