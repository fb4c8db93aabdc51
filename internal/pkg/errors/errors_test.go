package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	err := New(NotFound, "리소스를 찾을 수 없습니다")
	require.Error(t, err)

	var appErr *AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, NotFound, appErr.Type())
	assert.Equal(t, "리소스를 찾을 수 없습니다", appErr.Message())
	assert.NotEmpty(t, appErr.Stack())
	assert.Equal(t, "[NotFound] 리소스를 찾을 수 없습니다", err.Error())
}

func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("nil 에러는 nil을 반환한다", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, Wrap(nil, Internal, "무시됨"))
	})

	t.Run("원인 에러가 체인에 유지된다", func(t *testing.T) {
		t.Parallel()

		cause := stderrors.New("connection refused")
		err := Wrap(cause, System, "데이터베이스 연결 실패")

		assert.ErrorContains(t, err, "connection refused")
		assert.Equal(t, cause, RootCause(err))
	})
}

func TestIs(t *testing.T) {
	t.Parallel()

	inner := New(NotFound, "사용자 없음")
	outer := Wrap(inner, Internal, "조회 실패")

	assert.True(t, Is(outer, NotFound))
	assert.True(t, Is(outer, Internal))
	assert.False(t, Is(outer, Timeout))
	assert.False(t, Is(nil, NotFound))
}

func TestUnderlyingType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{
			name:     "nil 에러",
			err:      nil,
			expected: Unknown,
		},
		{
			name:     "AppError가 아닌 에러",
			err:      stderrors.New("plain"),
			expected: Unknown,
		},
		{
			name:     "단일 AppError",
			err:      New(RateLimited, "호출 한도 초과"),
			expected: RateLimited,
		},
		{
			name:     "체인에서 가장 안쪽 타입 반환",
			err:      Wrap(New(NotFound, "없음"), Internal, "조회 실패"),
			expected: NotFound,
		},
		{
			name:     "외부 에러를 감싼 경우 래핑 타입 반환",
			err:      Wrap(stderrors.New("boom"), Timeout, "시간 초과"),
			expected: Timeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, UnderlyingType(tt.err))
		})
	}
}

func TestFormat_VerbosePrintsStackAndCause(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("root cause")
	err := Wrap(cause, ExecutionFailed, "작업 실패")

	formatted := fmt.Sprintf("%+v", err)
	assert.Contains(t, formatted, "[ExecutionFailed] 작업 실패")
	assert.Contains(t, formatted, "Stack trace:")
	assert.Contains(t, formatted, "Caused by:")
	assert.Contains(t, formatted, "root cause")
}

func TestErrorType_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Unknown", Unknown.String())
	assert.Equal(t, "RateLimited", RateLimited.String())
	assert.Equal(t, "Unavailable", Unavailable.String())
	assert.Equal(t, "ErrorType(99)", ErrorType(99).String())
}
