package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/darkkaiser/cartpilot-server/internal/service/api/middleware"
	"github.com/darkkaiser/cartpilot-server/internal/storage"
	"github.com/labstack/echo/v4"
)

// WishlistCreateRequest 관심상품 등록 요청입니다.
type WishlistCreateRequest struct {
	ProductID    string `json:"product_id" validate:"required"`
	Title        string `json:"title" validate:"required"`
	Image        string `json:"image"`
	Mall         string `json:"mall"`
	Link         string `json:"link"`
	CurrentPrice int64  `json:"current_price" validate:"required,min=1"`
	TargetPrice  *int64 `json:"target_price" validate:"omitempty,min=1"`
	Notes        string `json:"notes"`
}

// WishlistUpdateRequest 관심상품 수정 요청입니다. nil 필드는 변경하지 않습니다.
type WishlistUpdateRequest struct {
	TargetPrice         *int64  `json:"target_price" validate:"omitempty,min=1"`
	NotificationEnabled *bool   `json:"notification_enabled"`
	Notes               *string `json:"notes"`
}

// WishlistListResponse 관심상품 목록 응답입니다.
type WishlistListResponse struct {
	Items []*storage.WishlistItem `json:"items"`
	Count int                     `json:"count"`
}

// PriceHistoryResponse 가격 이력 응답입니다.
type PriceHistoryResponse struct {
	ItemID  string                  `json:"item_id"`
	Days    int                     `json:"days"`
	History []*storage.PriceHistory `json:"history"`
}

// 가격 이력 조회 기간(일)의 기본값과 최대값
const (
	defaultHistoryDays = 90
	maxHistoryDays     = 365
)

// ListWishlist 관심상품 목록을 조회합니다.
//
// GET /api/v1/wishlist
func (h *Handler) ListWishlist(c echo.Context) error {
	items, err := h.deps.Wishlist.ListByUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, WishlistListResponse{Items: items, Count: len(items)})
}

// CreateWishlistItem 관심상품을 등록합니다.
//
// POST /api/v1/wishlist
func (h *Handler) CreateWishlistItem(c echo.Context) error {
	req := &WishlistCreateRequest{}
	if err := c.Bind(req); err != nil {
		return NewBadRequestError("요청 본문을 해석할 수 없습니다")
	}
	if err := c.Validate(req); err != nil {
		return NewBadRequestError("상품 식별자, 상품명, 현재 가격은 필수입니다")
	}

	item, err := h.deps.Wishlist.Create(c.Request().Context(), storage.CreateParams{
		UserID:       middleware.UserID(c),
		ProductID:    req.ProductID,
		Title:        req.Title,
		Image:        req.Image,
		Mall:         req.Mall,
		Link:         req.Link,
		CurrentPrice: req.CurrentPrice,
		TargetPrice:  req.TargetPrice,
		Notes:        req.Notes,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, item)
}

// UpdateWishlistItem 관심상품의 목표 가격, 알림 여부, 메모를 수정합니다.
//
// PATCH /api/v1/wishlist/:id
func (h *Handler) UpdateWishlistItem(c echo.Context) error {
	req := &WishlistUpdateRequest{}
	if err := c.Bind(req); err != nil {
		return NewBadRequestError("요청 본문을 해석할 수 없습니다")
	}
	if err := c.Validate(req); err != nil {
		return NewBadRequestError("목표 가격은 1원 이상이어야 합니다")
	}

	item, err := h.deps.Wishlist.Update(c.Request().Context(), middleware.UserID(c), c.Param("id"),
		storage.UpdateParams{
			TargetPrice:         req.TargetPrice,
			NotificationEnabled: req.NotificationEnabled,
			Notes:               req.Notes,
		})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, item)
}

// DeleteWishlistItem 관심상품을 삭제합니다.
//
// DELETE /api/v1/wishlist/:id
func (h *Handler) DeleteWishlistItem(c echo.Context) error {
	if err := h.deps.Wishlist.Delete(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return err
	}
	return NewSuccessResponse(c)
}

// WishlistItemHistory 관심상품의 가격 이력을 조회합니다.
//
// GET /api/v1/wishlist/:id/history?days=90
func (h *Handler) WishlistItemHistory(c echo.Context) error {
	ctx := c.Request().Context()
	itemID := c.Param("id")

	days := defaultHistoryDays
	if raw := c.QueryParam("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxHistoryDays {
			return NewBadRequestError("조회 기간은 1일에서 365일 사이여야 합니다")
		}
		days = parsed
	}

	// 본인 소유 상품인지 먼저 확인한다
	if _, err := h.deps.Wishlist.Get(ctx, middleware.UserID(c), itemID); err != nil {
		return err
	}

	since := time.Now().AddDate(0, 0, -days)
	history, err := h.deps.Wishlist.History(ctx, itemID, since)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, PriceHistoryResponse{ItemID: itemID, Days: days, History: history})
}

// CheckWishlistItem 관심상품의 현재 가격을 즉시 확인합니다.
//
// POST /api/v1/wishlist/:id/check
func (h *Handler) CheckWishlistItem(c echo.Context) error {
	check, err := h.deps.Monitor.CheckItem(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, check)
}
