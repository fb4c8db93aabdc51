package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"

	"github.com/darkkaiser/cartpilot-server/internal/config"
	"github.com/darkkaiser/cartpilot-server/internal/pkg/cache"
	"github.com/darkkaiser/cartpilot-server/internal/pkg/textparse"
	"github.com/darkkaiser/cartpilot-server/internal/service"
	"github.com/darkkaiser/cartpilot-server/internal/service/api"
	"github.com/darkkaiser/cartpilot-server/internal/service/api/handler"
	"github.com/darkkaiser/cartpilot-server/internal/service/catalog"
	"github.com/darkkaiser/cartpilot-server/internal/service/catalog/fetcher"
	"github.com/darkkaiser/cartpilot-server/internal/service/chat"
	"github.com/darkkaiser/cartpilot-server/internal/service/llm"
	"github.com/darkkaiser/cartpilot-server/internal/service/monitor"
	"github.com/darkkaiser/cartpilot-server/internal/service/notification"
	"github.com/darkkaiser/cartpilot-server/internal/service/preference"
	"github.com/darkkaiser/cartpilot-server/internal/service/scheduler"
	"github.com/darkkaiser/cartpilot-server/internal/storage"
	applog "github.com/darkkaiser/cartpilot-server/pkg/log"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// 빌드 정보 변수 (Dockerfile의 ldflags로 주입됨)
var (
	Version     = "dev"     // Git 커밋 해시
	BuildDate   = "unknown" // 빌드 날짜
	BuildNumber = "0"       // 빌드 번호
)

const (
	banner = `
   ____               _    ____   _  _         _
  / ___| __ _  _ __ | |_ |  _ \ (_)| |  ___  | |_
 | |    / _' || '__|| __|| |_) || || | / _ \ | __|
 | |___| (_| || |   | |_ |  __/ | || || (_) || |_
  \____|\__,_||_|    \__||_|    |_||_| \___/  \__|
                                              %s
--------------------------------------------------------------------------------
`
)

func main() {
	// 1. 환경설정 로드 (로그 설정에 필요하므로 가장 먼저 수행한다)
	// 로컬 개발용 .env 파일은 존재할 때만 반영된다.
	_ = godotenv.Load()

	appConfig, err := config.Load()
	if err != nil {
		// 로거 초기화 전이므로 표준 에러에 출력
		fmt.Fprintf(os.Stderr, "[FATAL] 환경설정 로드 실패: %v\n", err)
		os.Exit(1)
	}

	// 2. 로그 시스템 초기화
	var logOpts applog.Options
	if appConfig.Debug {
		logOpts = applog.NewDevelopmentConfig(config.AppName)
	} else {
		logOpts = applog.NewProductionConfig(config.AppName)
	}

	appLogCloser, err := applog.Setup(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] 로그 시스템 초기화 실패. 서버 구동을 중단합니다. (Cause: %v)\n", err)
		os.Exit(1)
	}
	defer appLogCloser.Close()

	// 3. 로그 레벨 최종 확정
	applog.SetDebugMode(appConfig.Debug)

	// 아스키아트 출력(https://ko.rakko.tools/tools/68/, 폰트:standard)
	fmt.Printf(banner, Version)

	// 빌드 정보 출력
	applog.WithComponentAndFields("main", log.Fields{
		"version":      Version,
		"build_date":   BuildDate,
		"build_number": BuildNumber,
		"go_version":   runtime.Version(),
		"os_arch":      runtime.GOOS + "/" + runtime.GOARCH,
		"env":          map[bool]string{true: "development", false: "production"}[appConfig.Debug],
	}).Info("서버 초기화 시작")

	// 권장 설정 준수 여부를 진단하고 경고를 출력한다.
	for _, warning := range appConfig.VerifyRecommendations() {
		applog.WithComponent("main").Warn(warning)
	}

	// 4. 어휘 사전 교체 (설정에 정의된 항목만 내장 사전을 대체한다)
	textparse.Configure(textparse.Vocabulary{
		Items:     appConfig.Vocab.Items,
		Stopwords: appConfig.Vocab.Stopwords,
		Relations: appConfig.Vocab.Relations,
		Occasions: appConfig.Vocab.Occasions,
		Seasons:   appConfig.Vocab.Seasons,
	})

	// 5. 데이터베이스 연결 및 스키마 준비
	startupCtx := context.Background()

	store, err := storage.New(startupCtx, &appConfig.Database)
	if err != nil {
		log.Fatalf("데이터베이스 연결 실패: %+v", err)
	}
	defer store.Close()

	if err := store.Migrate(startupCtx); err != nil {
		log.Fatalf("데이터베이스 스키마 생성 실패: %+v", err)
	}

	// 6. 외부 연동 구성 요소 초기화
	// 외부 API 호출용 HTTP 클라이언트 (재시도 지원)
	httpFetcher := fetcher.NewRetryFetcher(
		fetcher.NewHTTPFetcher(),
		appConfig.HTTPRetry.MaxRetries,
		appConfig.HTTPRetry.RetryDelayDuration(),
	)

	// 검색/추천 결과 캐시
	searchCache := cache.New(appConfig.Cache.TTL(), appConfig.Cache.MaxEntries)
	recommendationCache := cache.New(appConfig.Cache.TTL(), appConfig.Cache.MaxEntries)

	// 상품 검색 클라이언트
	catalogClient := catalog.NewClient(httpFetcher, searchCache, appConfig.Naver.ClientID, appConfig.Naver.ClientSecret)

	// LLM 공급자
	llmProvider, err := llm.New(startupCtx, &appConfig.LLM)
	if err != nil {
		log.Fatalf("LLM 공급자 초기화 실패: %+v", err)
	}
	applog.WithComponentAndFields("main", log.Fields{
		"provider": llmProvider.Name(),
	}).Info("LLM 공급자 초기화 완료")

	// 7. 서비스 생성 및 초기화
	profileAnalyzer := preference.NewAnalyzer(store.Purchases, store.Wishlist, store.Ratings)

	chatService := chat.NewService(appConfig, catalogClient, llmProvider, profileAnalyzer, recommendationCache)

	alertDispatcher := notification.NewDispatcher(
		store.Wishlist,
		notification.NewKakaoSender(httpFetcher),
		notification.NewEmailSender(&appConfig.SMTP),
	)

	priceMonitor := monitor.New(store.Wishlist, catalogClient, alertDispatcher)

	schedulerService := scheduler.NewService(priceMonitor, store.Wishlist)

	apiService := api.NewService(appConfig, handler.Deps{
		Users:       store.Users,
		Wishlist:    store.Wishlist,
		Purchases:   store.Purchases,
		Ratings:     store.Ratings,
		Chat:        chatService,
		Monitor:     priceMonitor,
		Scheduler:   schedulerService,
		Profiles:    profileAnalyzer,
		DB:          store,
		Sessions:    chatService,
		Cache:       searchCache,
		LLMProvider: llmProvider.Name(),

		NaverConfigured: appConfig.Naver.ClientID != "" && appConfig.Naver.ClientSecret != "",
	})

	// Set up cancellation context and waitgroup
	serviceStopCtx, cancel := context.WithCancel(context.Background())
	serviceStopWG := &sync.WaitGroup{}

	// 서비스를 시작한다.
	services := []service.Service{chatService, schedulerService, apiService}
	for _, s := range services {
		serviceStopWG.Add(1)
		if err := s.Start(serviceStopCtx, serviceStopWG); err != nil {
			applog.WithComponentAndFields("main", log.Fields{
				"error": err,
			}).Error("서비스 초기화 실패")

			cancel() // 다른 서비스들도 종료
			serviceStopWG.Wait()

			log.Fatal("서비스 초기화 실패로 프로그램을 종료합니다")
		}
	}

	// Handle sigterm and await termC signal
	termC := make(chan os.Signal, 1)
	signal.Notify(termC, syscall.SIGINT, syscall.SIGTERM)

	applog.WithComponent("main").Info("서버 가동 완료")

	<-termC // Blocks here until interrupted

	// Handle shutdown
	applog.WithComponent("main").Info("Shutdown signal received")
	cancel()             // Signal cancellation to context.Context
	serviceStopWG.Wait() // Block here until are workers are done
}
