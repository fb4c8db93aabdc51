package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/darkkaiser/cartpilot-server/internal/service/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMonitor struct {
	mu   sync.Mutex
	runs int
	err  error
}

func (f *fakeMonitor) Run(_ context.Context) (*monitor.RunResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
	return &monitor.RunResult{}, f.err
}

func (f *fakeMonitor) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

type fakeCleaner struct {
	mu      sync.Mutex
	befores []time.Time
	deleted int64
}

func (f *fakeCleaner) CleanupHistoryBefore(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.befores = append(f.befores, before)
	return f.deleted, nil
}

func TestJobs_등록목록(t *testing.T) {
	service := NewService(&fakeMonitor{}, &fakeCleaner{})

	jobs := service.Jobs()
	require.Len(t, jobs, 3)

	ids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.ID)
		assert.NotEmpty(t, job.Name)
		assert.NotEmpty(t, job.Schedule)
	}
	assert.Equal(t, []string{JobPriceMonitoring, JobDailyPriceCheck, JobCleanupPriceHistory}, ids)
}

func TestJobs_다음실행시각(t *testing.T) {
	service := NewService(&fakeMonitor{}, &fakeCleaner{})

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)
	require.NoError(t, service.Start(ctx, wg))

	for _, job := range service.Jobs() {
		assert.False(t, job.NextRun.IsZero(), "시작 후에는 다음 실행 시각이 계산되어야 한다: %s", job.ID)
	}

	cancel()
	wg.Wait()
}

func TestTrigger_가격모니터링(t *testing.T) {
	priceMonitor := &fakeMonitor{}
	service := NewService(priceMonitor, &fakeCleaner{})

	require.NoError(t, service.Trigger(context.Background(), JobPriceMonitoring))
	assert.Equal(t, 1, priceMonitor.runCount())
}

func TestTrigger_이력정리_보존기간(t *testing.T) {
	cleaner := &fakeCleaner{deleted: 42}
	service := NewService(&fakeMonitor{}, cleaner)

	before := time.Now().UTC().Add(-historyRetention)
	require.NoError(t, service.Trigger(context.Background(), JobCleanupPriceHistory))

	require.Len(t, cleaner.befores, 1)

	// 정리 기준 시점은 180일 전이어야 한다
	assert.WithinDuration(t, before, cleaner.befores[0], time.Minute)
}

func TestTrigger_미등록작업(t *testing.T) {
	service := NewService(&fakeMonitor{}, &fakeCleaner{})

	err := service.Trigger(context.Background(), "unknown_job")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.NotFound))
}

func TestTrigger_작업실패_전파(t *testing.T) {
	priceMonitor := &fakeMonitor{err: apperrors.New(apperrors.Unavailable, "실행 실패")}
	service := NewService(priceMonitor, &fakeCleaner{})

	err := service.Trigger(context.Background(), JobDailyPriceCheck)
	require.Error(t, err)
}

func TestStart_종료(t *testing.T) {
	service := NewService(&fakeMonitor{}, &fakeCleaner{})

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)

	require.NoError(t, service.Start(ctx, wg))

	cancel()
	wg.Wait()
}

func TestStart_중복호출(t *testing.T) {
	service := NewService(&fakeMonitor{}, &fakeCleaner{})

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
