package api

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/darkkaiser/cartpilot-server/internal/service/api/auth"
	"github.com/darkkaiser/cartpilot-server/internal/service/api/handler"
	"github.com/darkkaiser/cartpilot-server/internal/service/chat"
	"github.com/darkkaiser/cartpilot-server/internal/service/monitor"
	"github.com/darkkaiser/cartpilot-server/internal/service/preference"
	"github.com/darkkaiser/cartpilot-server/internal/service/scheduler"
	"github.com/darkkaiser/cartpilot-server/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const (
	testJWTSecret  = "test-jwt-secret"
	testAdminToken = "test-admin-token"
)

type fakeUsers struct {
	byEmail map[string]*storage.User
	updated []string // UpdateNotificationSettings가 호출된 사용자 ID
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*storage.User{}}
}

func (f *fakeUsers) Create(_ context.Context, email, passwordHash string) (*storage.User, error) {
	if _, ok := f.byEmail[email]; ok {
		return nil, apperrors.New(apperrors.Conflict, "이미 존재하는 이메일입니다")
	}
	user := &storage.User{
		ID:           "user-" + email,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	f.byEmail[email] = user
	return user, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*storage.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, apperrors.New(apperrors.NotFound, "사용자를 찾을 수 없습니다")
	}
	return user, nil
}

func (f *fakeUsers) UpdateNotificationSettings(_ context.Context, id string, _, _ string, _ bool) error {
	f.updated = append(f.updated, id)
	return nil
}

type fakeWishlist struct {
	items        map[string]*storage.WishlistItem
	createErr    error
	historySince time.Time
}

func newFakeWishlist() *fakeWishlist {
	return &fakeWishlist{items: map[string]*storage.WishlistItem{}}
}

func (f *fakeWishlist) Create(_ context.Context, params storage.CreateParams) (*storage.WishlistItem, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	item := &storage.WishlistItem{
		ID:                  "item-" + params.ProductID,
		UserID:              params.UserID,
		ProductID:           params.ProductID,
		Title:               params.Title,
		CurrentPrice:        params.CurrentPrice,
		TargetPrice:         params.TargetPrice,
		NotificationEnabled: true,
		CreatedAt:           time.Now(),
	}
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeWishlist) ListByUser(_ context.Context, userID string) ([]*storage.WishlistItem, error) {
	var items []*storage.WishlistItem
	for _, item := range f.items {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f *fakeWishlist) Get(_ context.Context, userID, itemID string) (*storage.WishlistItem, error) {
	item, ok := f.items[itemID]
	if !ok || item.UserID != userID {
		return nil, apperrors.New(apperrors.NotFound, "관심상품을 찾을 수 없습니다")
	}
	return item, nil
}

func (f *fakeWishlist) Update(ctx context.Context, userID, itemID string, params storage.UpdateParams) (*storage.WishlistItem, error) {
	item, err := f.Get(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if params.TargetPrice != nil {
		item.TargetPrice = params.TargetPrice
	}
	if params.NotificationEnabled != nil {
		item.NotificationEnabled = *params.NotificationEnabled
	}
	if params.Notes != nil {
		item.Notes = *params.Notes
	}
	return item, nil
}

func (f *fakeWishlist) Delete(ctx context.Context, userID, itemID string) error {
	if _, err := f.Get(ctx, userID, itemID); err != nil {
		return err
	}
	delete(f.items, itemID)
	return nil
}

func (f *fakeWishlist) History(_ context.Context, itemID string, since time.Time) ([]*storage.PriceHistory, error) {
	f.historySince = since
	return []*storage.PriceHistory{
		{ID: "h-1", WishlistItemID: itemID, Price: 30_000, CheckedAt: time.Now().Add(-time.Hour)},
		{ID: "h-2", WishlistItemID: itemID, Price: 29_000, CheckedAt: time.Now()},
	}, nil
}

type fakePurchases struct {
	purchases []*storage.Purchase
}

func (f *fakePurchases) Create(_ context.Context, userID string, params storage.PurchaseCreateParams) (*storage.Purchase, error) {
	purchasedAt := params.PurchasedAt
	if purchasedAt.IsZero() {
		purchasedAt = time.Now()
	}
	purchase := &storage.Purchase{
		ID:           "purchase-1",
		UserID:       userID,
		ProductTitle: params.ProductTitle,
		Price:        params.Price,
		Category:     params.Category,
		Mall:         params.Mall,
		PurchasedAt:  purchasedAt,
	}
	f.purchases = append(f.purchases, purchase)
	return purchase, nil
}

func (f *fakePurchases) ListByUser(_ context.Context, _ string) ([]*storage.Purchase, error) {
	return f.purchases, nil
}

func (f *fakePurchases) Update(_ context.Context, userID, purchaseID string, params storage.PurchaseUpdateParams) (*storage.Purchase, error) {
	for _, p := range f.purchases {
		if p.ID != purchaseID || p.UserID != userID {
			continue
		}
		if params.ProductTitle != nil {
			p.ProductTitle = *params.ProductTitle
		}
		if params.Price != nil {
			p.Price = *params.Price
		}
		if params.Category != nil {
			p.Category = *params.Category
		}
		if params.Mall != nil {
			p.Mall = *params.Mall
		}
		if params.PurchasedAt != nil {
			p.PurchasedAt = *params.PurchasedAt
		}
		return p, nil
	}
	return nil, apperrors.New(apperrors.NotFound, "구매 내역을 찾을 수 없습니다")
}

func (f *fakePurchases) Delete(_ context.Context, userID, purchaseID string) error {
	for i, p := range f.purchases {
		if p.ID == purchaseID && p.UserID == userID {
			f.purchases = append(f.purchases[:i], f.purchases[i+1:]...)
			return nil
		}
	}
	return apperrors.New(apperrors.NotFound, "구매 내역을 찾을 수 없습니다")
}

func (f *fakePurchases) Statistics(_ context.Context, _ string) (*storage.PurchaseStatistics, error) {
	return &storage.PurchaseStatistics{TotalSpent: 150_000, TotalCount: 3}, nil
}

type fakeRatings struct {
	ratings []*storage.Rating
}

func (f *fakeRatings) Create(_ context.Context, userID, productTitle string, score int, comment string) (*storage.Rating, error) {
	rating := &storage.Rating{
		ID:           "rating-1",
		UserID:       userID,
		ProductTitle: productTitle,
		Score:        score,
		Comment:      comment,
		CreatedAt:    time.Now(),
	}
	f.ratings = append(f.ratings, rating)
	return rating, nil
}

func (f *fakeRatings) ListByUser(_ context.Context, _ string) ([]*storage.Rating, error) {
	return f.ratings, nil
}

func (f *fakeRatings) Delete(_ context.Context, userID, ratingID string) error {
	for i, r := range f.ratings {
		if r.ID == ratingID && r.UserID == userID {
			f.ratings = append(f.ratings[:i], f.ratings[i+1:]...)
			return nil
		}
	}
	return apperrors.New(apperrors.NotFound, "평가를 찾을 수 없습니다")
}

type fakeSessions struct {
	count int
}

func (f *fakeSessions) ActiveSessions() int { return f.count }

type fakeChat struct {
	userIDs    []string
	sessionIDs []string
	messages   []string
}

func (f *fakeChat) Chat(_ context.Context, userID, sessionID, message string) *chat.ChatResponse {
	f.userIDs = append(f.userIDs, userID)
	f.sessionIDs = append(f.sessionIDs, sessionID)
	f.messages = append(f.messages, message)

	return &chat.ChatResponse{
		Type:      chat.ResponseRecommendation,
		SessionID: "sess_000000000001",
		Message:   "추천 결과입니다",
	}
}

type fakeMonitor struct {
	runResult *monitor.RunResult
	checkErr  error
	checked   []string // CheckItem이 호출된 관심상품 ID
}

func (f *fakeMonitor) Run(_ context.Context) (*monitor.RunResult, error) {
	if f.runResult == nil {
		return &monitor.RunResult{}, nil
	}
	return f.runResult, nil
}

func (f *fakeMonitor) CheckItem(_ context.Context, _, itemID string) (*monitor.CheckResult, error) {
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	f.checked = append(f.checked, itemID)
	return &monitor.CheckResult{CurrentPrice: 27_000, Lowest90: 27_000, PriceChanged: true}, nil
}

type fakeScheduler struct {
	triggered []string
}

func (f *fakeScheduler) Jobs() []scheduler.Job {
	return []scheduler.Job{
		{ID: scheduler.JobPriceMonitoring, Name: "주기적 가격 모니터링", Schedule: "@every 6h"},
		{ID: scheduler.JobCleanupPriceHistory, Name: "가격 이력 정리", Schedule: "0 15 * * *"},
	}
}

func (f *fakeScheduler) Trigger(_ context.Context, jobID string) error {
	if jobID != scheduler.JobPriceMonitoring && jobID != scheduler.JobCleanupPriceHistory {
		return apperrors.Newf(apperrors.NotFound, "등록되지 않은 작업입니다: %s", jobID)
	}
	f.triggered = append(f.triggered, jobID)
	return nil
}

type fakeProfiles struct{}

func (f *fakeProfiles) Analyze(_ context.Context, _ string) (*preference.Profile, error) {
	return &preference.Profile{}, nil
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(_ context.Context) error { return f.err }

// testFakes 라우트 테스트에서 사용하는 가짜 의존성 묶음입니다.
type testFakes struct {
	users     *fakeUsers
	wishlist  *fakeWishlist
	purchases *fakePurchases
	ratings   *fakeRatings
	chat      *fakeChat
	monitor   *fakeMonitor
	scheduler *fakeScheduler
	pinger    *fakePinger
	sessions  *fakeSessions
}

func newTestServer(t *testing.T) (*echo.Echo, *testFakes, *auth.TokenManager) {
	return newTestServerWith(t, nil)
}

// newTestServerWith 의존성 설정을 조정할 수 있는 테스트 서버 생성 헬퍼입니다.
func newTestServerWith(t *testing.T, adjust func(*handler.Deps)) (*echo.Echo, *testFakes, *auth.TokenManager) {
	t.Helper()

	fakes := &testFakes{
		users:     newFakeUsers(),
		wishlist:  newFakeWishlist(),
		purchases: &fakePurchases{},
		ratings:   &fakeRatings{},
		chat:      &fakeChat{},
		monitor:   &fakeMonitor{},
		scheduler: &fakeScheduler{},
		pinger:    &fakePinger{},
		sessions:  &fakeSessions{count: 2},
	}

	tokens := auth.NewTokenManager(testJWTSecret)

	deps := handler.Deps{
		Users:       fakes.users,
		Wishlist:    fakes.wishlist,
		Purchases:   fakes.purchases,
		Ratings:     fakes.ratings,
		Chat:        fakes.chat,
		Monitor:     fakes.monitor,
		Scheduler:   fakes.scheduler,
		Profiles:    &fakeProfiles{},
		Tokens:      tokens,
		DB:          fakes.pinger,
		Sessions:    fakes.sessions,
		LLMProvider: "openai",

		NaverConfigured: true,
	}
	if adjust != nil {
		adjust(&deps)
	}

	e := NewHTTPServer(HTTPServerConfig{AllowOrigins: []string{"*"}})
	SetupRoutes(e, handler.NewHandler(deps), tokens, testAdminToken)

	return e, fakes, tokens
}

// doRequest 테스트 서버에 요청을 보내고 응답 레코더를 반환합니다.
func doRequest(e *echo.Echo, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// authHeader 지정된 사용자의 Bearer 인증 헤더를 생성합니다.
func authHeader(t *testing.T, tokens *auth.TokenManager, userID string) map[string]string {
	t.Helper()

	token, err := tokens.Issue(userID)
	require.NoError(t, err)

	return map[string]string{echo.HeaderAuthorization: "Bearer " + token}
}

func adminHeader() map[string]string {
	return map[string]string{"X-Admin-Token": testAdminToken}
}
