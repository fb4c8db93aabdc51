// Package mocks 테스트에서 사용하는 Fetcher 구현체를 제공합니다.
package mocks

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// MockHTTPFetcher URL별로 미리 설정된 응답을 반환하는 테스트용 Fetcher입니다.
type MockHTTPFetcher struct {
	mu sync.Mutex

	responses map[string]mockResponse
	requests  []*http.Request
}

type mockResponse struct {
	statusCode int
	header     http.Header
	body       []byte
	err        error
}

// NewMockHTTPFetcher 새로운 MockHTTPFetcher 인스턴스를 생성합니다.
func NewMockHTTPFetcher() *MockHTTPFetcher {
	return &MockHTTPFetcher{
		responses: make(map[string]mockResponse),
	}
}

// SetResponse 지정된 URL에 대해 200 OK 응답을 설정합니다.
func (m *MockHTTPFetcher) SetResponse(url string, body []byte) {
	m.SetStatusResponse(url, http.StatusOK, body, nil)
}

// SetStatusResponse 지정된 URL에 대해 상태 코드와 헤더를 포함한 응답을 설정합니다.
func (m *MockHTTPFetcher) SetStatusResponse(url string, statusCode int, body []byte, header http.Header) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if header == nil {
		header = make(http.Header)
	}
	m.responses[url] = mockResponse{statusCode: statusCode, header: header, body: body}
}

// SetError 지정된 URL에 대해 네트워크 에러를 설정합니다.
func (m *MockHTTPFetcher) SetError(url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responses[url] = mockResponse{err: err}
}

// Requests 지금까지 수신한 요청 목록을 반환합니다.
func (m *MockHTTPFetcher) Requests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*http.Request(nil), m.requests...)
}

// Do 설정된 응답을 반환합니다. 설정되지 않은 URL 요청은 에러를 반환합니다.
func (m *MockHTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	resp, exists := m.responses[req.URL.String()]
	if !exists {
		return nil, fmt.Errorf("설정되지 않은 URL 요청: %s", req.URL.String())
	}
	if resp.err != nil {
		return nil, resp.err
	}

	return &http.Response{
		StatusCode: resp.statusCode,
		Header:     resp.header,
		Body:       io.NopCloser(bytes.NewReader(resp.body)),
		Request:    req,
	}, nil
}
