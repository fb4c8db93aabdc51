package chat

import (
	"context"
	"sync"

	"github.com/darkkaiser/cartpilot-server/internal/config"
	"github.com/darkkaiser/cartpilot-server/internal/pkg/cache"
	"github.com/darkkaiser/cartpilot-server/internal/service/catalog"
	"github.com/darkkaiser/cartpilot-server/internal/service/llm"
	applog "github.com/darkkaiser/cartpilot-server/pkg/log"
)

// Service 대화형 추천 서비스입니다.
//
// 세션 저장소의 수명주기를 관리하며, 대화 처리는 내부 오케스트레이터에
// 위임합니다.
type Service struct {
	orchestrator *Orchestrator
	sessions     *SessionStore

	running   bool
	runningMu sync.Mutex
}

// NewService 대화형 추천 서비스를 생성합니다.
//
// 의도별 에이전트 5종(GIFT, VALUE, BUNDLE, REVIEW, TREND)을 구성하고
// 세션 저장소와 오케스트레이터를 초기화합니다. recCache는 nil일 수 있습니다.
func NewService(appConfig *config.AppConfig, searcher catalog.Searcher, provider llm.Provider, profiles ProfileSource, recCache *cache.Cache) *Service {
	sessions := NewSessionStore(appConfig.Session.TTL())

	agents := []Agent{
		NewGiftAgent(searcher, provider, profiles),
		NewValueAgent(searcher, provider, profiles),
		NewBundleAgent(searcher, provider, profiles),
		NewReviewAgent(searcher, provider, profiles),
		NewTrendAgent(searcher, provider, profiles),
	}

	return &Service{
		orchestrator: NewOrchestrator(sessions, NewAnalyzer(provider), agents, recCache),
		sessions:     sessions,
	}
}

// Chat 사용자 발화를 처리하고 응답을 생성합니다.
func (s *Service) Chat(ctx context.Context, userID, sessionID, message string) *ChatResponse {
	return s.orchestrator.Chat(ctx, userID, sessionID, message)
}

// ActiveSessions 현재 보관 중인 대화 세션 수를 반환합니다. (헬스 체크용)
func (s *Service) ActiveSessions() int {
	return s.sessions.Len()
}

// Start 대화 서비스를 시작합니다.
//
// 세션 저장소의 정리 루프는 생성 시점에 이미 시작되어 있으므로,
// 종료 신호를 기다렸다가 정리하는 고루틴만 추가로 실행합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(component).Warn("대화 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	s.running = true

	go func() {
		defer serviceStopWG.Done()

		<-serviceStopCtx.Done()

		s.sessions.Stop()

		s.runningMu.Lock()
		s.running = false
		s.runningMu.Unlock()

		applog.WithComponent(component).Info("대화 서비스 종료 완료")
	}()

	applog.WithComponent(component).Info("대화 서비스 시작 완료")

	return nil
}
