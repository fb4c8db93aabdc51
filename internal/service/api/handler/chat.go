package handler

import (
	"net/http"
	"unicode/utf8"

	"github.com/darkkaiser/cartpilot-server/internal/service/api/middleware"
	"github.com/labstack/echo/v4"
)

// maxChatMessageLength 대화 메시지의 최대 길이(문자 수)입니다.
const maxChatMessageLength = 500

// ChatRequest 대화형 추천 요청입니다.
type ChatRequest struct {
	Message string `json:"message" validate:"required"`

	// SessionID 기존 대화 세션 식별자. 비어있거나 만료된 경우 새 세션이
	// 생성되며, 응답에 세션 식별자가 포함됩니다.
	SessionID string `json:"session_id"`
}

// Chat 사용자 발화를 처리하고 추천 또는 되묻기 응답을 반환합니다.
//
// 인증은 선택 사항이며, 비로그인 사용자는 취향 정보 없이 추천을 받습니다.
//
// POST /api/v1/chat
func (h *Handler) Chat(c echo.Context) error {
	req := &ChatRequest{}
	if err := c.Bind(req); err != nil {
		return NewBadRequestError("요청 본문을 해석할 수 없습니다")
	}
	if err := c.Validate(req); err != nil {
		return NewBadRequestError("메시지를 입력해 주세요")
	}
	if utf8.RuneCountInString(req.Message) > maxChatMessageLength {
		return NewUnprocessableEntityError("메시지는 500자 이하여야 합니다")
	}

	response := h.deps.Chat.Chat(c.Request().Context(), middleware.UserID(c), req.SessionID, req.Message)

	return c.JSON(http.StatusOK, response)
}
