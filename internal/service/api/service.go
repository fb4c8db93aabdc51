// Package api CartPilot API 서버의 생명주기와 라우팅을 관리합니다.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/darkkaiser/cartpilot-server/internal/config"
	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/darkkaiser/cartpilot-server/internal/service/api/auth"
	"github.com/darkkaiser/cartpilot-server/internal/service/api/handler"
	applog "github.com/darkkaiser/cartpilot-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// component API 서비스 로깅용 컴포넌트 이름
const component = "api.service"

// shutdownTimeout 서버 종료 시 처리 중인 요청의 완료 대기 시간
const shutdownTimeout = 5 * time.Second

// Service CartPilot API 서버의 생명주기를 관리하는 서비스입니다.
//
// Echo 기반 HTTP 서버의 시작/종료, 라우팅 설정, Graceful Shutdown을
// 담당합니다. 서버는 고루틴으로 실행되며 context 취소로 종료됩니다.
type Service struct {
	appConfig *config.AppConfig
	deps      handler.Deps

	running   bool
	runningMu sync.Mutex
}

// NewService API 서비스를 생성합니다.
func NewService(appConfig *config.AppConfig, deps handler.Deps) *Service {
	return &Service{
		appConfig: appConfig,
		deps:      deps,
	}
}

// Start API 서비스를 시작합니다.
//
// 서버 설정과 실행은 별도의 고루틴에서 수행되며, 이 함수는 즉시 반환됩니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("API 서비스 시작중...")

	if s.deps.Chat == nil {
		defer serviceStopWG.Done()
		return apperrors.New(apperrors.Internal, "대화 서비스가 초기화되지 않았습니다")
	}

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(component).Warn("API 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	go s.runServiceLoop(serviceStopCtx, serviceStopWG)

	s.running = true

	applog.WithComponent(component).Info("API 서비스 시작됨")

	return nil
}

// runServiceLoop 서버 설정, HTTP 서버 시작, 종료 대기를 순차 수행합니다.
func (s *Service) runServiceLoop(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	e := s.setupServer()

	httpServerDone := make(chan struct{})
	go s.startHTTPServer(e, httpServerDone)

	s.waitForShutdown(serviceStopCtx, e, httpServerDone)
}

// setupServer Echo 서버를 생성하고 라우트를 등록합니다.
func (s *Service) setupServer() *echo.Echo {
	e := NewHTTPServer(HTTPServerConfig{
		Debug:          s.appConfig.Debug,
		AllowOrigins:   s.appConfig.API.CORS.AllowOrigins,
		RequestTimeout: s.appConfig.API.RequestTimeout(),
	})

	tokens := auth.NewTokenManager(s.appConfig.Auth.JWTSecret)

	deps := s.deps
	deps.Tokens = tokens

	SetupRoutes(e, handler.NewHandler(deps), tokens, s.appConfig.Auth.AdminToken)

	return e
}

// startHTTPServer HTTP 서버를 시작합니다. 서버가 종료될 때까지 블로킹됩니다.
func (s *Service) startHTTPServer(e *echo.Echo, done chan struct{}) {
	defer close(done)

	port := s.appConfig.API.ListenPort
	applog.WithComponentAndFields(component, applog.Fields{
		"port": port,
	}).Debug("API 서비스 > http 서버 시작")

	err := e.Start(fmt.Sprintf(":%d", port))
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		applog.WithComponent(component).Info("API 서비스 > http 서버 중지됨")
		return
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"port":  port,
		"error": err,
	}).Error("API 서비스 > http 서버를 구성하는 중에 치명적인 오류가 발생하였습니다")
}

// waitForShutdown 종료 신호를 대기하고 Graceful Shutdown을 처리합니다.
func (s *Service) waitForShutdown(serviceStopCtx context.Context, e *echo.Echo, httpServerDone chan struct{}) {
	<-serviceStopCtx.Done()

	applog.WithComponent(component).Info("API 서비스 중지중...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Error("서버 종료 중 오류 발생")
	}

	<-httpServerDone

	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponent(component).Info("API 서비스 중지됨")
}
