package fetcher

import (
	"net/http"
	"time"
)

// defaultTimeout HTTP 요청의 기본 타임아웃
const defaultTimeout = 30 * time.Second

// HTTPFetcher 기본 타임아웃(30초)이 내장된 HTTP 클라이언트 구현체입니다.
type HTTPFetcher struct {
	client *http.Client
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher 기본 타임아웃 설정이 포함된 새로운 HTTPFetcher 인스턴스를 생성합니다.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// Do HTTP 요청을 실행합니다.
func (h *HTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	return h.client.Do(req)
}
