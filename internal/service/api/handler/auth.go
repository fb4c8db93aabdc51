package handler

import (
	"net/http"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/darkkaiser/cartpilot-server/internal/service/api/middleware"
	"github.com/darkkaiser/cartpilot-server/internal/storage"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest 회원 가입 요청입니다.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest 로그인 요청입니다.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse 인증 성공 응답입니다.
type AuthResponse struct {
	Token string        `json:"token"`
	User  *storage.User `json:"user"`
}

// NotificationSettingsRequest 알림 채널 설정 변경 요청입니다.
type NotificationSettingsRequest struct {
	NotificationEmail        string `json:"notification_email" validate:"omitempty,email"`
	KakaoAccessToken         string `json:"kakao_access_token"`
	KakaoNotificationEnabled bool   `json:"kakao_notification_enabled"`
}

// Register 새 계정을 생성하고 액세스 토큰을 발급합니다.
//
// POST /api/v1/auth/register
func (h *Handler) Register(c echo.Context) error {
	req := &RegisterRequest{}
	if err := c.Bind(req); err != nil {
		return NewBadRequestError("요청 본문을 해석할 수 없습니다")
	}
	if err := c.Validate(req); err != nil {
		return NewBadRequestError("이메일 형식과 비밀번호(8자 이상)를 확인해 주세요")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(err, apperrors.System, "비밀번호 처리에 실패했습니다")
	}

	user, err := h.deps.Users.Create(c.Request().Context(), req.Email, string(hash))
	if err != nil {
		if apperrors.Is(err, apperrors.Conflict) {
			return apperrors.New(apperrors.Conflict, "이미 가입된 이메일입니다")
		}
		return err
	}

	token, err := h.deps.Tokens.Issue(user.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user})
}

// Login 자격 증명을 확인하고 액세스 토큰을 발급합니다.
//
// POST /api/v1/auth/login
func (h *Handler) Login(c echo.Context) error {
	req := &LoginRequest{}
	if err := c.Bind(req); err != nil {
		return NewBadRequestError("요청 본문을 해석할 수 없습니다")
	}
	if err := c.Validate(req); err != nil {
		return NewBadRequestError("이메일과 비밀번호를 입력해 주세요")
	}

	// 계정 존재 여부가 응답으로 드러나지 않도록 실패 메시지는 동일하게 유지한다
	const failMessage = "이메일 또는 비밀번호가 올바르지 않습니다"

	user, err := h.deps.Users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if apperrors.Is(err, apperrors.NotFound) {
			return apperrors.New(apperrors.Unauthorized, failMessage)
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return apperrors.New(apperrors.Unauthorized, failMessage)
	}

	if !user.IsActive {
		return apperrors.New(apperrors.Forbidden, "비활성화된 계정입니다")
	}

	token, err := h.deps.Tokens.Issue(user.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}

// UpdateNotificationSettings 알림 채널 설정을 변경합니다.
//
// PUT /api/v1/auth/notification-settings
func (h *Handler) UpdateNotificationSettings(c echo.Context) error {
	req := &NotificationSettingsRequest{}
	if err := c.Bind(req); err != nil {
		return NewBadRequestError("요청 본문을 해석할 수 없습니다")
	}
	if err := c.Validate(req); err != nil {
		return NewBadRequestError("알림 이메일 형식을 확인해 주세요")
	}

	err := h.deps.Users.UpdateNotificationSettings(c.Request().Context(), middleware.UserID(c),
		req.NotificationEmail, req.KakaoAccessToken, req.KakaoNotificationEnabled)
	if err != nil {
		return err
	}

	return NewSuccessResponse(c)
}
