package api

import (
	"github.com/darkkaiser/cartpilot-server/internal/service/api/auth"
	"github.com/darkkaiser/cartpilot-server/internal/service/api/handler"
	appmiddleware "github.com/darkkaiser/cartpilot-server/internal/service/api/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// requestValidator 요청 본문의 validate 태그 검증기입니다.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

// SetupRoutes 모든 API 라우트를 등록합니다.
//
// 라우트 구성:
//   - /health: 인증 없음
//   - /api/v1/auth/register, /api/v1/auth/login: 인증 없음
//   - /api/v1/chat: 선택적 JWT 인증 (비로그인 사용도 허용)
//   - /api/v1/*: JWT Bearer 인증
//   - /api/v1/admin/*: X-Admin-Token 인증
func SetupRoutes(e *echo.Echo, h *handler.Handler, tokens *auth.TokenManager, adminToken string) {
	e.Validator = &requestValidator{validate: validator.New()}
	e.HTTPErrorHandler = handler.CustomHTTPErrorHandler

	e.GET("/health", h.Health)

	v1 := e.Group("/api/v1")

	v1.POST("/auth/register", h.Register)
	v1.POST("/auth/login", h.Login)

	// 대화형 추천은 비로그인 사용자도 이용할 수 있다
	v1.POST("/chat", h.Chat, appmiddleware.OptionalJWTAuth(tokens))

	user := v1.Group("", appmiddleware.JWTAuth(tokens))
	user.PUT("/auth/notification-settings", h.UpdateNotificationSettings)

	user.GET("/wishlist", h.ListWishlist)
	user.POST("/wishlist", h.CreateWishlistItem)
	user.PATCH("/wishlist/:id", h.UpdateWishlistItem)
	user.DELETE("/wishlist/:id", h.DeleteWishlistItem)
	user.GET("/wishlist/:id/history", h.WishlistItemHistory)
	user.POST("/wishlist/:id/check", h.CheckWishlistItem)

	user.GET("/purchases", h.ListPurchases)
	user.POST("/purchases", h.CreatePurchase)
	user.PATCH("/purchases/:id", h.UpdatePurchase)
	user.DELETE("/purchases/:id", h.DeletePurchase)
	user.GET("/purchases/statistics", h.PurchaseStatistics)

	user.GET("/ratings", h.ListRatings)
	user.POST("/ratings", h.CreateRating)
	user.DELETE("/ratings/:id", h.DeleteRating)

	user.GET("/preference", h.Preference)

	admin := v1.Group("/admin", appmiddleware.AdminAuth(adminToken))
	admin.GET("/jobs", h.ListJobs)
	admin.POST("/jobs/:id/run", h.TriggerJob)
	admin.POST("/monitor/run", h.RunMonitor)
}
