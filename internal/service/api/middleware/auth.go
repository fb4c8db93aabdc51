package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/darkkaiser/cartpilot-server/internal/service/api/auth"
	"github.com/labstack/echo/v4"
)

// ContextKeyUserID 인증된 사용자 식별자를 담는 echo 컨텍스트 키
const ContextKeyUserID = "user_id"

// adminTokenHeader 관리자 인증 토큰 헤더 이름
const adminTokenHeader = "X-Admin-Token"

// bearerPrefix Authorization 헤더의 Bearer 스킴 접두사
const bearerPrefix = "Bearer "

// JWTAuth Bearer 토큰을 검증하고 사용자 식별자를 컨텍스트에 저장합니다.
func JWTAuth(tokens *auth.TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return echo.NewHTTPError(http.StatusUnauthorized, "인증 토큰이 필요합니다")
			}

			userID, err := tokens.Verify(strings.TrimPrefix(header, bearerPrefix))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "유효하지 않은 토큰입니다")
			}

			c.Set(ContextKeyUserID, userID)
			return next(c)
		}
	}
}

// OptionalJWTAuth Bearer 토큰이 있으면 검증하여 사용자 식별자를 컨텍스트에
// 저장하고, 없거나 유효하지 않으면 익명 사용자로 통과시킵니다.
func OptionalJWTAuth(tokens *auth.TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if strings.HasPrefix(header, bearerPrefix) {
				if userID, err := tokens.Verify(strings.TrimPrefix(header, bearerPrefix)); err == nil {
					c.Set(ContextKeyUserID, userID)
				}
			}
			return next(c)
		}
	}
}

// UserID 컨텍스트에서 인증된 사용자 식별자를 반환합니다.
// JWTAuth 미들웨어가 적용된 라우트에서만 값이 존재합니다.
func UserID(c echo.Context) string {
	userID, _ := c.Get(ContextKeyUserID).(string)
	return userID
}

// AdminAuth X-Admin-Token 헤더를 검증합니다. (관리자 라우트용)
func AdminAuth(adminToken string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			provided := c.Request().Header.Get(adminTokenHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(adminToken)) != 1 {
				return echo.NewHTTPError(http.StatusForbidden, "관리자 권한이 필요합니다")
			}
			return next(c)
		}
	}
}
