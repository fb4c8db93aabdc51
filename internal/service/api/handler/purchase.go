package handler

import (
	"net/http"
	"time"

	"github.com/darkkaiser/cartpilot-server/internal/service/api/middleware"
	"github.com/darkkaiser/cartpilot-server/internal/storage"
	"github.com/labstack/echo/v4"
)

// PurchaseCreateRequest 구매 내역 등록 요청입니다.
type PurchaseCreateRequest struct {
	ProductTitle string `json:"product_title" validate:"required"`
	Price        int64  `json:"price" validate:"required,min=1"`
	Category     string `json:"category"`
	Mall         string `json:"mall"`

	// PurchasedAt 구매 시각 (RFC 3339). 비어있으면 현재 시각으로 기록됩니다.
	PurchasedAt string `json:"purchased_at"`
}

// PurchaseUpdateRequest 구매 내역 수정 요청입니다. nil 필드는 변경하지 않습니다.
type PurchaseUpdateRequest struct {
	ProductTitle *string `json:"product_title"`
	Price        *int64  `json:"price" validate:"omitempty,min=1"`
	Category     *string `json:"category"`
	Mall         *string `json:"mall"`
	PurchasedAt  *string `json:"purchased_at"`
}

// PurchaseListResponse 구매 내역 목록 응답입니다.
type PurchaseListResponse struct {
	Purchases []*storage.Purchase `json:"purchases"`
	Count     int                 `json:"count"`
}

// ListPurchases 구매 내역을 조회합니다.
//
// GET /api/v1/purchases
func (h *Handler) ListPurchases(c echo.Context) error {
	purchases, err := h.deps.Purchases.ListByUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PurchaseListResponse{Purchases: purchases, Count: len(purchases)})
}

// CreatePurchase 구매 내역을 등록합니다.
//
// POST /api/v1/purchases
func (h *Handler) CreatePurchase(c echo.Context) error {
	req := &PurchaseCreateRequest{}
	if err := c.Bind(req); err != nil {
		return NewBadRequestError("요청 본문을 해석할 수 없습니다")
	}
	if err := c.Validate(req); err != nil {
		return NewBadRequestError("상품명과 가격(1원 이상)은 필수입니다")
	}

	var purchasedAt time.Time
	if req.PurchasedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.PurchasedAt)
		if err != nil {
			return NewBadRequestError("구매 시각 형식이 올바르지 않습니다 (RFC 3339, 예: 2026-08-24T12:00:00Z)")
		}
		purchasedAt = parsed
	}

	purchase, err := h.deps.Purchases.Create(c.Request().Context(), middleware.UserID(c),
		storage.PurchaseCreateParams{
			ProductTitle: req.ProductTitle,
			Price:        req.Price,
			Category:     req.Category,
			Mall:         req.Mall,
			PurchasedAt:  purchasedAt,
		})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, purchase)
}

// UpdatePurchase 구매 내역을 수정합니다.
//
// PATCH /api/v1/purchases/:id
func (h *Handler) UpdatePurchase(c echo.Context) error {
	req := &PurchaseUpdateRequest{}
	if err := c.Bind(req); err != nil {
		return NewBadRequestError("요청 본문을 해석할 수 없습니다")
	}
	if err := c.Validate(req); err != nil {
		return NewBadRequestError("가격은 1원 이상이어야 합니다")
	}

	var purchasedAt *time.Time
	if req.PurchasedAt != nil {
		parsed, err := time.Parse(time.RFC3339, *req.PurchasedAt)
		if err != nil {
			return NewBadRequestError("구매 시각 형식이 올바르지 않습니다 (RFC 3339, 예: 2026-08-24T12:00:00Z)")
		}
		purchasedAt = &parsed
	}

	purchase, err := h.deps.Purchases.Update(c.Request().Context(), middleware.UserID(c), c.Param("id"),
		storage.PurchaseUpdateParams{
			ProductTitle: req.ProductTitle,
			Price:        req.Price,
			Category:     req.Category,
			Mall:         req.Mall,
			PurchasedAt:  purchasedAt,
		})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, purchase)
}

// DeletePurchase 구매 내역을 삭제합니다.
//
// DELETE /api/v1/purchases/:id
func (h *Handler) DeletePurchase(c echo.Context) error {
	if err := h.deps.Purchases.Delete(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return err
	}
	return NewSuccessResponse(c)
}

// PurchaseStatistics 월별/카테고리별 구매 통계를 조회합니다.
//
// GET /api/v1/purchases/statistics
func (h *Handler) PurchaseStatistics(c echo.Context) error {
	statistics, err := h.deps.Purchases.Statistics(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statistics)
}
