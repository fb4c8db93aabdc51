package llm

import (
	"strings"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/tidwall/gjson"
)

// ExtractJSON 모델 응답에서 JSON 객체를 추출합니다.
//
// 모델이 JSON 모드에서도 종종 마크다운 코드 펜스(```json ... ```)나
// 부연 설명을 붙여서 응답하므로, 응답 내에서 가장 바깥쪽 JSON 객체를
// 찾아 유효성을 검증한 후 반환합니다.
func ExtractJSON(response string) (gjson.Result, error) {
	cleaned := stripCodeFence(response)

	// 가장 바깥쪽 JSON 객체 범위 탐색
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return gjson.Result{}, apperrors.New(apperrors.ParsingFailed, "LLM 응답에서 JSON 객체를 찾을 수 없습니다")
	}

	candidate := cleaned[start : end+1]
	if !gjson.Valid(candidate) {
		return gjson.Result{}, apperrors.New(apperrors.ParsingFailed, "LLM 응답의 JSON 형식이 올바르지 않습니다")
	}

	return gjson.Parse(candidate), nil
}

// stripCodeFence 마크다운 코드 펜스를 제거합니다.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)

	if !strings.HasPrefix(s, "```") {
		return s
	}

	// 여는 펜스 제거 ("```json" 또는 "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}

	// 닫는 펜스 제거
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
