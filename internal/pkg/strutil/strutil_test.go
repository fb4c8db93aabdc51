package strutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSpaces(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "빈 문자열", input: "", expected: ""},
		{name: "앞뒤 공백 제거", input: "  hello  ", expected: "hello"},
		{name: "연속 공백 축약", input: "hello   world", expected: "hello world"},
		{name: "탭과 개행 처리", input: "hello\t\nworld", expected: "hello world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, NormalizeSpaces(tt.input))
		})
	}
}

func TestStripHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "볼드 태그 제거", input: "<b>노트북</b> 거치대", expected: "노트북 거치대"},
		{name: "HTML 엔티티 복원", input: "커피&amp;티 세트", expected: "커피&티 세트"},
		{name: "수학 기호는 유지", input: "3 < 5 사이즈", expected: "3 < 5 사이즈"},
		{name: "속성이 있는 태그 제거", input: `<span class="hl">키보드</span>`, expected: "키보드"},
		{name: "태그 없는 문자열", input: "무선 마우스", expected: "무선 마우스"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, StripHTML(tt.input))
		})
	}
}

func TestFormatCommas(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", FormatCommas(0))
	assert.Equal(t, "999", FormatCommas(999))
	assert.Equal(t, "1,000", FormatCommas(1000))
	assert.Equal(t, "1,234,567", FormatCommas(1234567))
	assert.Equal(t, "-12,345", FormatCommas(-12345))
}
