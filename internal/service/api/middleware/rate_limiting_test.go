package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// doRateLimited 지정된 원격 주소로 요청을 수행하고 응답 레코더를 반환합니다.
func doRateLimited(e *echo.Echo, handler echo.HandlerFunc, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat", nil)
	req.RemoteAddr = remoteAddr

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestRateLimiting_허용량초과시_429(t *testing.T) {
	e := echo.New()
	handler := RateLimiting(1, 2)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// 버스트 한도까지는 허용된다
	assert.Equal(t, http.StatusOK, doRateLimited(e, handler, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, doRateLimited(e, handler, "10.0.0.1:1234").Code)

	rec := doRateLimited(e, handler, "10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRateLimiting_IP별_독립제한(t *testing.T) {
	e := echo.New()
	handler := RateLimiting(1, 1)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, doRateLimited(e, handler, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRateLimited(e, handler, "10.0.0.1:1234").Code)

	// 다른 IP의 한도는 소진되지 않았다
	assert.Equal(t, http.StatusOK, doRateLimited(e, handler, "10.0.0.2:1234").Code)
}

func TestRateLimiting_잘못된설정_패닉(t *testing.T) {
	assert.Panics(t, func() { RateLimiting(0, 10) })
	assert.Panics(t, func() { RateLimiting(10, 0) })
}
