// Package scheduler 가격 모니터링과 이력 정리 작업의 주기 실행을 담당합니다.
//
// 모든 스케줄은 UTC 기준으로 해석되며, 각 작업은 패닉 복구와
// 중복 실행 방지(이전 실행이 끝나지 않으면 건너뜀)가 적용됩니다.
package scheduler

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/darkkaiser/cartpilot-server/internal/service/monitor"
	applog "github.com/darkkaiser/cartpilot-server/pkg/log"
	"github.com/robfig/cron/v3"
)

// component 스케줄러 로깅용 컴포넌트 이름
const component = "scheduler"

// historyRetention 가격 이력의 보존 기간
const historyRetention = 180 * 24 * time.Hour

// 스케줄 작업 식별자
const (
	// JobPriceMonitoring 주기적 가격 모니터링 (6시간마다)
	JobPriceMonitoring = "price_monitoring"

	// JobDailyPriceCheck 일일 전체 가격 확인 (매일 00:00 UTC)
	JobDailyPriceCheck = "daily_price_check"

	// JobCleanupPriceHistory 보존 기간이 지난 가격 이력 정리 (매일 15:00 UTC)
	JobCleanupPriceHistory = "cleanup_price_history"
)

// monitorRunner 가격 모니터링 실행 기능입니다.
type monitorRunner interface {
	Run(ctx context.Context) (*monitor.RunResult, error)
}

// historyCleaner 가격 이력 정리 기능입니다.
type historyCleaner interface {
	CleanupHistoryBefore(ctx context.Context, before time.Time) (int64, error)
}

// Job 등록된 스케줄 작업의 조회용 정보입니다.
type Job struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	NextRun  time.Time `json:"next_run"`
}

// jobSpec 작업 정의입니다.
type jobSpec struct {
	id       string
	name     string
	schedule string
	run      func(ctx context.Context) error
	entryID  cron.EntryID
}

// Service 주기 작업 스케줄러입니다.
type Service struct {
	cron *cron.Cron
	jobs []*jobSpec

	// jobCtx 스케줄 실행 시 작업에 전달되는 컨텍스트입니다.
	// Start 호출 시 서비스 종료 컨텍스트로 교체됩니다.
	jobCtx   context.Context
	jobCtxMu sync.RWMutex

	running   bool
	runningMu sync.Mutex
}

// NewService 스케줄러를 생성하고 기본 작업들을 등록합니다.
func NewService(priceMonitor monitorRunner, cleaner historyCleaner) *Service {
	logger := &cronLogger{}

	s := &Service{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(
				cron.Recover(logger),
				cron.SkipIfStillRunning(logger),
			),
		),
		jobCtx: context.Background(),
	}

	s.register(JobPriceMonitoring, "주기적 가격 모니터링", "@every 6h", func(ctx context.Context) error {
		_, err := priceMonitor.Run(ctx)
		return err
	})
	s.register(JobDailyPriceCheck, "일일 전체 가격 확인", "0 0 * * *", func(ctx context.Context) error {
		_, err := priceMonitor.Run(ctx)
		return err
	})
	s.register(JobCleanupPriceHistory, "가격 이력 정리", "0 15 * * *", func(ctx context.Context) error {
		deleted, err := cleaner.CleanupHistoryBefore(ctx, time.Now().UTC().Add(-historyRetention))
		if err != nil {
			return err
		}
		applog.WithComponentAndFields(component, applog.Fields{
			"deleted": deleted,
		}).Info("보존 기간이 지난 가격 이력을 정리했습니다")
		return nil
	})

	return s
}

// register 작업을 정의 목록과 cron에 등록합니다.
func (s *Service) register(id, name, schedule string, run func(ctx context.Context) error) {
	spec := &jobSpec{id: id, name: name, schedule: schedule, run: run}

	// 스케줄 형식은 코드에 고정되어 있으므로 등록 실패는 프로그래밍 오류다
	entryID, err := s.cron.AddFunc(schedule, func() {
		s.execute(spec)
	})
	if err != nil {
		panic(err)
	}

	spec.entryID = entryID
	s.jobs = append(s.jobs, spec)
}

// execute 작업을 실행하고 결과를 로깅합니다.
func (s *Service) execute(spec *jobSpec) {
	s.jobCtxMu.RLock()
	ctx := s.jobCtx
	s.jobCtxMu.RUnlock()

	started := time.Now()

	applog.WithComponentAndFields(component, applog.Fields{
		"job": spec.id,
	}).Info("스케줄 작업 시작")

	if err := spec.run(ctx); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"job":   spec.id,
			"error": err,
		}).Error("스케줄 작업 실패")
		return
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"job":     spec.id,
		"elapsed": time.Since(started).String(),
	}).Info("스케줄 작업 완료")
}

// Jobs 등록된 작업 목록과 다음 실행 예정 시각을 반환합니다.
func (s *Service) Jobs() []Job {
	jobs := make([]Job, 0, len(s.jobs))
	for _, spec := range s.jobs {
		jobs = append(jobs, Job{
			ID:       spec.id,
			Name:     spec.name,
			Schedule: spec.schedule,
			NextRun:  s.cron.Entry(spec.entryID).Next,
		})
	}
	return jobs
}

// Trigger 작업을 식별자로 즉시 실행합니다. (관리자 API의 수동 실행용)
// 스케줄 실행과 달리 호출자의 컨텍스트로 동기 실행됩니다.
func (s *Service) Trigger(ctx context.Context, jobID string) error {
	for _, spec := range s.jobs {
		if spec.id == jobID {
			applog.WithComponentAndFields(component, applog.Fields{
				"job": spec.id,
			}).Info("스케줄 작업 수동 실행")
			return spec.run(ctx)
		}
	}
	return apperrors.Newf(apperrors.NotFound, "등록되지 않은 작업입니다: %s", jobID)
}

// Start 스케줄러를 시작합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(component).Warn("스케줄러가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	s.running = true

	s.jobCtxMu.Lock()
	s.jobCtx = serviceStopCtx
	s.jobCtxMu.Unlock()

	s.cron.Start()

	go func() {
		defer serviceStopWG.Done()

		<-serviceStopCtx.Done()

		// 실행 중인 작업이 끝날 때까지 대기한다
		<-s.cron.Stop().Done()

		s.runningMu.Lock()
		s.running = false
		s.runningMu.Unlock()

		applog.WithComponent(component).Info("스케줄러 종료 완료")
	}()

	applog.WithComponentAndFields(component, applog.Fields{
		"jobs": len(s.jobs),
	}).Info("스케줄러 시작 완료")

	return nil
}

// cronLogger cron 라이브러리의 내부 로그를 서비스 로거로 중계합니다.
type cronLogger struct{}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	applog.WithComponentAndFields(component, applog.Fields{
		"detail": keysAndValues,
	}).Debug(msg)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	applog.WithComponentAndFields(component, applog.Fields{
		"error":  err,
		"detail": keysAndValues,
	}).Error(msg)
}
