// Package middleware Echo 서버에 적용하는 공통 미들웨어를 제공합니다.
package middleware

import (
	"fmt"
	"runtime"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	applog "github.com/darkkaiser/cartpilot-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// component 미들웨어 로깅용 컴포넌트 이름
const component = "api.middleware"

// PanicRecovery 핸들러에서 발생한 패닉을 복구하고 스택 트레이스와 함께 로깅합니다.
//
// 복구된 패닉은 에러로 변환되어 전역 에러 핸들러로 전달됩니다.
func PanicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = apperrors.New(apperrors.Internal, fmt.Sprintf("%v", r))
					}

					stack := make([]byte, 4<<10) // 4KB
					length := runtime.Stack(stack, false)

					applog.WithComponentAndFields(component, applog.Fields{
						"error":      err,
						"stack":      string(stack[:length]),
						"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
					}).Error("PANIC RECOVERED")

					c.Error(err)
				}
			}()
			return next(c)
		}
	}
}
