package handler

import (
	"net/http"

	"github.com/darkkaiser/cartpilot-server/internal/service/api/middleware"
	"github.com/darkkaiser/cartpilot-server/internal/storage"
	"github.com/labstack/echo/v4"
)

// RatingCreateRequest 상품 평가 등록 요청입니다.
type RatingCreateRequest struct {
	ProductTitle string `json:"product_title" validate:"required"`
	Score        int    `json:"score" validate:"required,min=1,max=5"`
	Comment      string `json:"comment"`
}

// RatingListResponse 상품 평가 목록 응답입니다.
type RatingListResponse struct {
	Ratings []*storage.Rating `json:"ratings"`
	Count   int               `json:"count"`
}

// ListRatings 상품 평가 목록을 조회합니다.
//
// GET /api/v1/ratings
func (h *Handler) ListRatings(c echo.Context) error {
	ratings, err := h.deps.Ratings.ListByUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, RatingListResponse{Ratings: ratings, Count: len(ratings)})
}

// CreateRating 상품 평가를 등록합니다.
//
// POST /api/v1/ratings
func (h *Handler) CreateRating(c echo.Context) error {
	req := &RatingCreateRequest{}
	if err := c.Bind(req); err != nil {
		return NewBadRequestError("요청 본문을 해석할 수 없습니다")
	}
	if err := c.Validate(req); err != nil {
		return NewBadRequestError("상품명과 평가 점수(1~5점)는 필수입니다")
	}

	rating, err := h.deps.Ratings.Create(c.Request().Context(), middleware.UserID(c),
		req.ProductTitle, req.Score, req.Comment)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, rating)
}

// DeleteRating 상품 평가를 삭제합니다.
//
// DELETE /api/v1/ratings/:id
func (h *Handler) DeleteRating(c echo.Context) error {
	if err := h.deps.Ratings.Delete(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return err
	}
	return NewSuccessResponse(c)
}
