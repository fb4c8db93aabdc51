package handler

import (
	"context"
	"time"

	"github.com/darkkaiser/cartpilot-server/internal/pkg/cache"
	"github.com/darkkaiser/cartpilot-server/internal/service/api/auth"
	"github.com/darkkaiser/cartpilot-server/internal/service/chat"
	"github.com/darkkaiser/cartpilot-server/internal/service/monitor"
	"github.com/darkkaiser/cartpilot-server/internal/service/preference"
	"github.com/darkkaiser/cartpilot-server/internal/service/scheduler"
	"github.com/darkkaiser/cartpilot-server/internal/storage"
)

// UserStore 사용자 계정 저장소 기능입니다.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash string) (*storage.User, error)
	GetByEmail(ctx context.Context, email string) (*storage.User, error)
	UpdateNotificationSettings(ctx context.Context, id string, notificationEmail, kakaoAccessToken string, kakaoEnabled bool) error
}

// WishlistStore 관심상품 저장소 기능입니다.
type WishlistStore interface {
	Create(ctx context.Context, params storage.CreateParams) (*storage.WishlistItem, error)
	ListByUser(ctx context.Context, userID string) ([]*storage.WishlistItem, error)
	Get(ctx context.Context, userID, itemID string) (*storage.WishlistItem, error)
	Update(ctx context.Context, userID, itemID string, params storage.UpdateParams) (*storage.WishlistItem, error)
	Delete(ctx context.Context, userID, itemID string) error
	History(ctx context.Context, itemID string, since time.Time) ([]*storage.PriceHistory, error)
}

// PurchaseStore 구매 내역 저장소 기능입니다.
type PurchaseStore interface {
	Create(ctx context.Context, userID string, params storage.PurchaseCreateParams) (*storage.Purchase, error)
	ListByUser(ctx context.Context, userID string) ([]*storage.Purchase, error)
	Update(ctx context.Context, userID, purchaseID string, params storage.PurchaseUpdateParams) (*storage.Purchase, error)
	Delete(ctx context.Context, userID, purchaseID string) error
	Statistics(ctx context.Context, userID string) (*storage.PurchaseStatistics, error)
}

// RatingStore 상품 평가 저장소 기능입니다.
type RatingStore interface {
	Create(ctx context.Context, userID, productTitle string, score int, comment string) (*storage.Rating, error)
	ListByUser(ctx context.Context, userID string) ([]*storage.Rating, error)
	Delete(ctx context.Context, userID, ratingID string) error
}

// ChatService 대화형 추천 기능입니다.
type ChatService interface {
	Chat(ctx context.Context, userID, sessionID, message string) *chat.ChatResponse
}

// PriceMonitor 가격 확인 기능입니다.
type PriceMonitor interface {
	Run(ctx context.Context) (*monitor.RunResult, error)
	CheckItem(ctx context.Context, userID, itemID string) (*monitor.CheckResult, error)
}

// JobScheduler 스케줄 작업의 조회와 수동 실행 기능입니다.
type JobScheduler interface {
	Jobs() []scheduler.Job
	Trigger(ctx context.Context, jobID string) error
}

// ProfileAnalyzer 사용자 취향 분석 기능입니다.
type ProfileAnalyzer interface {
	Analyze(ctx context.Context, userID string) (*preference.Profile, error)
}

// HealthPinger 데이터베이스 연결 확인 기능입니다. (헬스체크용)
type HealthPinger interface {
	Ping(ctx context.Context) error
}

// SessionCounter 활성 대화 세션 수 조회 기능입니다. (헬스체크용)
type SessionCounter interface {
	ActiveSessions() int
}

// Deps Handler가 사용하는 의존성 묶음입니다.
type Deps struct {
	Users     UserStore
	Wishlist  WishlistStore
	Purchases PurchaseStore
	Ratings   RatingStore

	Chat      ChatService
	Monitor   PriceMonitor
	Scheduler JobScheduler
	Profiles  ProfileAnalyzer

	Tokens *auth.TokenManager

	DB          HealthPinger
	Sessions    SessionCounter
	Cache       *cache.Cache
	LLMProvider string

	// NaverConfigured 네이버 쇼핑 API 자격증명 설정 여부입니다.
	NaverConfigured bool
}

// Handler 모든 API 엔드포인트의 핸들러 집합입니다.
type Handler struct {
	deps Deps

	startedAt time.Time
}

// NewHandler 핸들러 집합을 생성합니다.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		deps:      deps,
		startedAt: time.Now(),
	}
}
