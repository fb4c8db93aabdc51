// Package handler API 엔드포인트의 요청 처리와 응답 생성을 담당합니다.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// 응답 결과 코드
const (
	// ResultCodeOK 정상 처리
	ResultCodeOK = 0

	// ResultCodeError 처리 실패
	ResultCodeError = 1
)

// SuccessResponse 본문이 없는 성공 응답의 표준 형식입니다.
type SuccessResponse struct {
	ResultCode int `json:"result_code"`
}

// ErrorResponse 에러 응답의 표준 형식입니다.
type ErrorResponse struct {
	ResultCode int    `json:"result_code"`
	Message    string `json:"message"`
}

// NewSuccessResponse 표준화된 성공 응답을 반환합니다.
func NewSuccessResponse(c echo.Context) error {
	return c.JSON(http.StatusOK, SuccessResponse{ResultCode: ResultCodeOK})
}

// NewBadRequestError 400 Bad Request 에러를 생성합니다.
func NewBadRequestError(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, message)
}

// NewUnauthorizedError 401 Unauthorized 에러를 생성합니다.
func NewUnauthorizedError(message string) error {
	return echo.NewHTTPError(http.StatusUnauthorized, message)
}

// NewNotFoundError 404 Not Found 에러를 생성합니다.
func NewNotFoundError(message string) error {
	return echo.NewHTTPError(http.StatusNotFound, message)
}

// NewUnprocessableEntityError 422 Unprocessable Entity 에러를 생성합니다.
func NewUnprocessableEntityError(message string) error {
	return echo.NewHTTPError(http.StatusUnprocessableEntity, message)
}
