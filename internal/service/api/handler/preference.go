package handler

import (
	"net/http"

	"github.com/darkkaiser/cartpilot-server/internal/service/api/middleware"
	"github.com/darkkaiser/cartpilot-server/internal/service/preference"
	"github.com/labstack/echo/v4"
)

// PreferenceResponse 취향 프로필 응답입니다.
type PreferenceResponse struct {
	Profile *preference.Profile `json:"profile"`

	// Rendered 추천 프롬프트에 주입되는 형태로 렌더링된 취향 정보.
	// 분석할 데이터가 없으면 빈 문자열입니다.
	Rendered string `json:"rendered"`
}

// Preference 구매/관심상품/평가 데이터 기반의 취향 프로필을 조회합니다.
//
// GET /api/v1/preference
func (h *Handler) Preference(c echo.Context) error {
	profile, err := h.deps.Profiles.Analyze(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, PreferenceResponse{
		Profile:  profile,
		Rendered: profile.PromptContext(),
	})
}
