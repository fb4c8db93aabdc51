package fetcher

import (
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	applog "github.com/darkkaiser/cartpilot-server/pkg/log"
)

const (
	// maxAllowedRetries 허용 가능한 최대 재시도 횟수입니다.
	maxAllowedRetries = 10

	// defaultMinRetryDelay 지수 백오프의 시작 대기 시간 기본값입니다.
	defaultMinRetryDelay = time.Second

	// defaultMaxRetryDelay 지수 백오프 증가 시 대기 시간의 상한선 기본값입니다.
	defaultMaxRetryDelay = 10 * time.Second
)

// RetryFetcher HTTP 요청 실패 시 자동으로 재시도를 수행하는 미들웨어입니다.
//
// 재시도 전략:
//  1. 지수 백오프: delay = minRetryDelay * 2^(retry-1), maxRetryDelay를 상한으로 제한
//  2. Full Jitter: 0 ~ 계산된 delay 사이의 무작위 값 선택 (Thundering Herd 방지)
//  3. Retry-After 헤더 우선 처리: 서버가 명시한 대기 시간을 준수하되,
//     maxRetryDelay를 초과하면 재시도를 포기하고 에러 반환
//  4. 멱등성 검증: GET, HEAD, PUT, DELETE, OPTIONS, TRACE만 재시도
//  5. 컨텍스트 취소 감지: 대기 중 컨텍스트가 취소되면 즉시 중단
//
// 재시도 대상:
//   - 네트워크 오류 (타임아웃, 연결 실패 등)
//   - 5xx 서버 에러 (단, 501/505/511 제외)
//   - 429 Too Many Requests, 408 Request Timeout
type RetryFetcher struct {
	delegate Fetcher

	maxRetries    int
	minRetryDelay time.Duration
	maxRetryDelay time.Duration
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Fetcher = (*RetryFetcher)(nil)

// NewRetryFetcher 새로운 RetryFetcher 인스턴스를 생성합니다.
// 비정상적인 설정값은 기본값 범위로 보정됩니다.
func NewRetryFetcher(delegate Fetcher, maxRetries int, minRetryDelay time.Duration) *RetryFetcher {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if maxRetries > maxAllowedRetries {
		maxRetries = maxAllowedRetries
	}
	if minRetryDelay <= 0 {
		minRetryDelay = defaultMinRetryDelay
	}

	maxRetryDelay := defaultMaxRetryDelay
	if maxRetryDelay < minRetryDelay {
		maxRetryDelay = minRetryDelay
	}

	return &RetryFetcher{
		delegate:      delegate,
		maxRetries:    maxRetries,
		minRetryDelay: minRetryDelay,
		maxRetryDelay: maxRetryDelay,
	}
}

// Do HTTP 요청을 수행하며, 실패 시 설정된 정책에 따라 자동으로 재시도합니다.
//
// 재시도가 모두 소진되면 마지막 응답(비정상 상태 코드 포함)을 그대로 반환하여
// 호출자가 상태 코드 기반으로 에러를 분류할 수 있도록 합니다.
// 반환된 응답 객체의 Body는 호출자가 반드시 닫아야 합니다.
func (f *RetryFetcher) Do(req *http.Request) (*http.Response, error) {
	effectiveMaxRetries := f.maxRetries

	// 비멱등 메서드(POST, PATCH)는 재시도 시 데이터 중복 생성/수정 위험이 있으므로 재시도 비활성화
	if !isIdempotentMethod(req.Method) {
		effectiveMaxRetries = 0
	}

	var lastErr error
	var lastResp *http.Response

	for i := 0; i <= effectiveMaxRetries; i++ {
		if i > 0 {
			// 지수 백오프 계산
			delay := f.minRetryDelay * time.Duration(1<<(i-1))
			if delay > f.maxRetryDelay {
				delay = f.maxRetryDelay
			}

			// Full Jitter 적용
			if delay > 0 {
				delay = time.Duration(rand.Int64N(int64(delay) + 1))
			}

			// 서버가 Retry-After 헤더로 재시도 시점을 명시한 경우 해당 값을 우선 사용
			if lastResp != nil {
				if retryAfter, ok := parseRetryAfter(lastResp.Header.Get("Retry-After")); ok {
					if retryAfter > f.maxRetryDelay {
						drainAndCloseBody(lastResp.Body)
						return nil, apperrors.Newf(apperrors.RateLimited,
							"서버가 요구한 재시도 대기 시간(%s)이 허용된 최대값(%s)을 초과하여 재시도를 중단합니다",
							retryAfter, f.maxRetryDelay)
					}
					delay = retryAfter
				}
			}

			// 이전 시도의 응답 Body를 비워 커넥션을 재사용
			if lastResp != nil {
				drainAndCloseBody(lastResp.Body)
				lastResp = nil
			}

			applog.WithComponentAndFields(component, applog.Fields{
				"url":     req.URL.Redacted(),
				"attempt": i,
				"delay":   delay.String(),
			}).Debug("HTTP 요청 재시도 대기")

			select {
			case <-time.After(delay):
			case <-req.Context().Done():
				return nil, apperrors.Wrap(req.Context().Err(), apperrors.Timeout, "재시도 대기 중 요청이 취소되었습니다")
			}
		}

		resp, err := f.delegate.Do(req)
		if err != nil {
			// 컨텍스트 취소/만료는 재시도 의미가 없으므로 즉시 반환
			if req.Context().Err() != nil {
				return nil, apperrors.Wrap(err, apperrors.Timeout, "요청이 취소되었거나 시간이 초과되었습니다")
			}
			lastErr = err
			lastResp = nil
			continue
		}

		if !isRetryableStatus(resp.StatusCode) {
			return resp, nil
		}

		lastErr = nil
		lastResp = resp
	}

	// 재시도 소진: 마지막 응답이 있으면 그대로 반환하여 호출자가 분류하도록 함
	if lastResp != nil {
		return lastResp, nil
	}

	return nil, apperrors.Wrapf(lastErr, apperrors.System, "HTTP 요청이 %d회 재시도 후에도 실패했습니다", f.maxRetries)
}

// isIdempotentMethod 재시도해도 안전한 HTTP 메서드인지 확인합니다.
func isIdempotentMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

// isRetryableStatus 재시도 가능한 HTTP 상태 코드인지 확인합니다.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	case http.StatusNotImplemented, http.StatusHTTPVersionNotSupported, http.StatusNetworkAuthenticationRequired:
		return false
	default:
		return statusCode >= 500 && statusCode <= 599
	}
}

// parseRetryAfter Retry-After 헤더 값을 대기 시간으로 변환합니다.
// 초 단위 숫자와 HTTP 날짜 형식을 모두 지원합니다.
func parseRetryAfter(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}

	if t, err := http.ParseTime(value); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return d, true
	}

	return 0, false
}
