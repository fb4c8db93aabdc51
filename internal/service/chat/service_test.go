package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/darkkaiser/cartpilot-server/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChatService(t *testing.T) *Service {
	t.Helper()

	appConfig := &config.AppConfig{
		Session: config.SessionConfig{TTLMinutes: 60},
	}

	return NewService(appConfig, newFakeSearcher(), &fakeProvider{}, &fakeProfiles{}, nil)
}

func TestService_Start_종료(t *testing.T) {
	service := newTestChatService(t)

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)

	require.NoError(t, service.Start(ctx, wg))

	cancel()
	wg.Wait()
}

func TestService_Start_중복호출(t *testing.T) {
	service := newTestChatService(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wg := &sync.WaitGroup{}

	wg.Add(1)
	require.NoError(t, service.Start(ctx, wg))

	// 중복 호출은 에러 없이 무시되어야 한다
	wg.Add(1)
	require.NoError(t, service.Start(ctx, wg))

	cancel()
	wg.Wait()
}

func TestService_Chat_위임(t *testing.T) {
	service := newTestChatService(t)
	defer service.sessions.Stop()

	// LLM 실패 시에도 폴백 분석으로 응답이 생성되어야 한다
	response := service.Chat(context.Background(), "user-1", "", "추천해줘")

	require.NotNil(t, response)
	assert.NotEmpty(t, response.SessionID)

	// 폴백 분석(VALUE, 품목 없음)은 품목 되묻기로 이어진다
	assert.Equal(t, ResponseClarification, response.Type)
	assert.Equal(t, fieldItems, response.Clarification.Field)
	assert.Equal(t, "어떤 제품을 찾으시나요?", response.Clarification.Question)
}

func TestService_Start_고루틴정리(t *testing.T) {
	service := newTestChatService(t)

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)

	require.NoError(t, service.Start(ctx, wg))

	done := make(chan struct{})
	go func() {
		defer close(done)
		cancel()
		wg.Wait()
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("서비스 종료가 완료되지 않았습니다")
	}
}
