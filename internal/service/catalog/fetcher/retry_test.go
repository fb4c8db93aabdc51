package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fetcherFunc 함수를 Fetcher로 사용하기 위한 어댑터입니다.
type fetcherFunc func(req *http.Request) (*http.Response, error)

func (f fetcherFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newResponse(statusCode int, header http.Header) *http.Response {
	if header == nil {
		header = make(http.Header)
	}
	return &http.Response{
		StatusCode: statusCode,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader("{}")),
	}
}

func newRequest(t *testing.T, method string) *http.Request {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, "https://api.example.com/v1/search", nil)
	require.NoError(t, err)
	return req
}

func TestRetryFetcher_SucceedsAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32

	delegate := fetcherFunc(func(req *http.Request) (*http.Response, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("connection reset")
		}
		return newResponse(http.StatusOK, nil), nil
	})

	f := NewRetryFetcher(delegate, 3, time.Millisecond)

	resp, err := f.Do(newRequest(t, http.MethodGet))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRetryFetcher_RetriesOnRetryableStatus(t *testing.T) {
	var calls atomic.Int32

	delegate := fetcherFunc(func(req *http.Request) (*http.Response, error) {
		if calls.Add(1) <= 2 {
			return newResponse(http.StatusServiceUnavailable, nil), nil
		}
		return newResponse(http.StatusOK, nil), nil
	})

	f := NewRetryFetcher(delegate, 3, time.Millisecond)

	resp, err := f.Do(newRequest(t, http.MethodGet))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetryFetcher_DoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32

	delegate := fetcherFunc(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		return newResponse(http.StatusUnauthorized, nil), nil
	})

	f := NewRetryFetcher(delegate, 3, time.Millisecond)

	resp, err := f.Do(newRequest(t, http.MethodGet))
	require.NoError(t, err)
	defer resp.Body.Close()

	// 401은 재시도 대상이 아니므로 즉시 반환된다.
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryFetcher_DoesNotRetryNonIdempotentMethod(t *testing.T) {
	var calls atomic.Int32

	delegate := fetcherFunc(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		return newResponse(http.StatusServiceUnavailable, nil), nil
	})

	f := NewRetryFetcher(delegate, 3, time.Millisecond)

	resp, err := f.Do(newRequest(t, http.MethodPost))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryFetcher_AbortsWhenRetryAfterExceedsLimit(t *testing.T) {
	delegate := fetcherFunc(func(req *http.Request) (*http.Response, error) {
		header := make(http.Header)
		header.Set("Retry-After", "3600")
		return newResponse(http.StatusTooManyRequests, header), nil
	})

	f := NewRetryFetcher(delegate, 3, time.Millisecond)

	_, err := f.Do(newRequest(t, http.MethodGet))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.RateLimited))
}

func TestRetryFetcher_ExhaustsRetriesAndReturnsLastResponse(t *testing.T) {
	var calls atomic.Int32

	delegate := fetcherFunc(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		return newResponse(http.StatusInternalServerError, nil), nil
	})

	f := NewRetryFetcher(delegate, 2, time.Millisecond)

	resp, err := f.Do(newRequest(t, http.MethodGet))
	require.NoError(t, err)
	defer resp.Body.Close()

	// 재시도 소진 후 마지막 응답을 그대로 반환한다.
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetryFetcher_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	delegate := fetcherFunc(func(req *http.Request) (*http.Response, error) {
		cancel()
		return nil, ctx.Err()
	})

	f := NewRetryFetcher(delegate, 3, time.Millisecond)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.example.com/v1/search", nil)
	require.NoError(t, err)

	_, err = f.Do(req)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Timeout))
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()

	d, ok := parseRetryAfter("5")
	assert.True(t, ok)
	assert.Equal(t, 5*time.Second, d)

	_, ok = parseRetryAfter("")
	assert.False(t, ok)

	_, ok = parseRetryAfter("-1")
	assert.False(t, ok)

	d, ok = parseRetryAfter(time.Now().Add(2 * time.Second).UTC().Format(http.TimeFormat))
	assert.True(t, ok)
	assert.LessOrEqual(t, d, 2*time.Second)
}
