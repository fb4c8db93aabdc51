package handler

import (
	"net/http"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	applog "github.com/darkkaiser/cartpilot-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// component 에러 핸들러 로깅용 컴포넌트 이름
const component = "api.error_handler"

// CustomHTTPErrorHandler 전역 HTTP 에러 핸들러입니다.
//
// 모든 에러를 표준 ErrorResponse 형식으로 반환하며, 서버 오류(5xx)는
// Error 레벨로, 클라이언트 오류(4xx)는 Warn 레벨로 로깅합니다.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	code, message := classifyError(err)

	entry := applog.WithComponentAndFields(component, applog.Fields{
		"path":   c.Request().URL.Path,
		"method": c.Request().Method,
		"status": code,
		"error":  err,
	})
	if code >= http.StatusInternalServerError {
		entry.Error("요청 처리 중 서버 오류 발생")
	} else {
		entry.Warn("요청 처리 실패")
	}

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}

	_ = c.JSON(code, ErrorResponse{ResultCode: ResultCodeError, Message: message})
}

// classifyError 에러를 HTTP 상태 코드와 응답 메시지로 변환합니다.
func classifyError(err error) (int, string) {
	// echo가 생성한 에러 (라우팅 실패, 미들웨어 거부 등)
	if he, ok := err.(*echo.HTTPError); ok {
		message := http.StatusText(he.Code)
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
		if he.Code == http.StatusNotFound && message == http.StatusText(http.StatusNotFound) {
			message = "요청하신 경로를 찾을 수 없습니다"
		}
		return he.Code, message
	}

	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		return statusFromErrorType(appErr.Type()), appErr.Message()
	}

	return http.StatusInternalServerError, "내부 서버 오류가 발생했습니다"
}

// statusFromErrorType 애플리케이션 에러 타입을 HTTP 상태 코드로 변환합니다.
func statusFromErrorType(errType apperrors.ErrorType) int {
	switch errType {
	case apperrors.InvalidInput, apperrors.ParsingFailed:
		return http.StatusBadRequest
	case apperrors.Unauthorized:
		return http.StatusUnauthorized
	case apperrors.Forbidden:
		return http.StatusForbidden
	case apperrors.NotFound:
		return http.StatusNotFound
	case apperrors.Conflict:
		return http.StatusConflict
	case apperrors.ExecutionFailed:
		return http.StatusUnprocessableEntity
	case apperrors.RateLimited:
		return http.StatusTooManyRequests
	case apperrors.Timeout:
		return http.StatusGatewayTimeout
	case apperrors.Unavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
