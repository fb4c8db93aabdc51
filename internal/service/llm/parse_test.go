package llm

import (
	"testing"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantErr   bool
		checkPath string
		checkWant string
	}{
		{
			name:      "순수 JSON 객체",
			input:     `{"intent": "GIFT", "confidence": 0.9}`,
			checkPath: "intent",
			checkWant: "GIFT",
		},
		{
			name:      "json 코드 펜스 제거",
			input:     "```json\n{\"intent\": \"VALUE\"}\n```",
			checkPath: "intent",
			checkWant: "VALUE",
		},
		{
			name:      "언어 표기 없는 코드 펜스 제거",
			input:     "```\n{\"intent\": \"TREND\"}\n```",
			checkPath: "intent",
			checkWant: "TREND",
		},
		{
			name:      "부연 설명이 섞인 응답",
			input:     "분석 결과는 다음과 같습니다.\n{\"intent\": \"REVIEW\"}\n감사합니다.",
			checkPath: "intent",
			checkWant: "REVIEW",
		},
		{
			name:      "중첩 객체 유지",
			input:     `{"entities": {"budget": 50000}}`,
			checkPath: "entities.budget",
			checkWant: "50000",
		},
		{
			name:    "JSON 객체 없음",
			input:   "죄송합니다. 분석할 수 없습니다.",
			wantErr: true,
		},
		{
			name:    "잘린 JSON",
			input:   `{"intent": "GIFT"`,
			wantErr: true,
		},
		{
			name:    "형식이 깨진 JSON",
			input:   `{"intent": GIFT}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := ExtractJSON(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, apperrors.ParsingFailed))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.checkWant, result.Get(tt.checkPath).String())
		})
	}
}
