package notification

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/darkkaiser/cartpilot-server/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKakao struct {
	calls []string // 발송에 사용된 액세스 토큰
	err   error
}

func (f *fakeKakao) SendMemo(_ context.Context, accessToken string, _ *storage.WishlistItem) error {
	f.calls = append(f.calls, accessToken)
	return f.err
}

type fakeEmail struct {
	enabled bool
	calls   []string // 수신자 주소
	err     error
}

func (f *fakeEmail) Enabled() bool { return f.enabled }

func (f *fakeEmail) SendAlert(to string, _ *storage.WishlistItem) error {
	f.calls = append(f.calls, to)
	return f.err
}

type fakeRecorder struct {
	itemIDs []string
	err     error
}

func (f *fakeRecorder) SetLastNotifiedAt(_ context.Context, itemID string, _ time.Time) error {
	f.itemIDs = append(f.itemIDs, itemID)
	return f.err
}

var testNow = time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

func newTestDispatcher(recorder *fakeRecorder, kakao *fakeKakao, email *fakeEmail) *Dispatcher {
	d := NewDispatcher(recorder, kakao, email)
	d.now = func() time.Time { return testNow }
	return d
}

func alertItem(lastNotifiedAt *time.Time) *storage.WishlistItem {
	return &storage.WishlistItem{
		ID:             "item-1",
		UserID:         "user-1",
		Title:          "무선 키보드",
		CurrentPrice:   27_000,
		LastNotifiedAt: lastNotifiedAt,
	}
}

func kakaoUser() *storage.User {
	return &storage.User{
		ID:                       "user-1",
		Email:                    "user@example.com",
		KakaoAccessToken:         "token-1",
		KakaoNotificationEnabled: true,
		IsActive:                 true,
	}
}

func TestSendPriceAlert_카카오_발송(t *testing.T) {
	recorder := &fakeRecorder{}
	kakao := &fakeKakao{}
	email := &fakeEmail{enabled: true}

	dispatcher := newTestDispatcher(recorder, kakao, email)

	sent, err := dispatcher.SendPriceAlert(context.Background(), alertItem(nil), kakaoUser())
	require.NoError(t, err)
	assert.True(t, sent)

	assert.Equal(t, []string{"token-1"}, kakao.calls)
	assert.Empty(t, email.calls)

	// 발송 성공 시각이 기록되어야 한다
	assert.Equal(t, []string{"item-1"}, recorder.itemIDs)
}

func TestSendPriceAlert_발송간격이내_건너뜀(t *testing.T) {
	recorder := &fakeRecorder{}
	kakao := &fakeKakao{}

	dispatcher := newTestDispatcher(recorder, kakao, &fakeEmail{enabled: true})

	lastNotified := testNow.Add(-23 * time.Hour)
	sent, err := dispatcher.SendPriceAlert(context.Background(), alertItem(&lastNotified), kakaoUser())

	require.NoError(t, err)
	assert.False(t, sent)
	assert.Empty(t, kakao.calls)
	assert.Empty(t, recorder.itemIDs)
}

func TestSendPriceAlert_발송간격경과_재발송(t *testing.T) {
	recorder := &fakeRecorder{}
	kakao := &fakeKakao{}

	dispatcher := newTestDispatcher(recorder, kakao, &fakeEmail{enabled: true})

	lastNotified := testNow.Add(-25 * time.Hour)
	sent, err := dispatcher.SendPriceAlert(context.Background(), alertItem(&lastNotified), kakaoUser())

	require.NoError(t, err)
	assert.True(t, sent)
	assert.Len(t, kakao.calls, 1)
}

func TestSendPriceAlert_토큰만료_이메일전환(t *testing.T) {
	recorder := &fakeRecorder{}
	kakao := &fakeKakao{err: apperrors.New(apperrors.Unauthorized, "카카오 액세스 토큰이 만료되었습니다")}
	email := &fakeEmail{enabled: true}

	dispatcher := newTestDispatcher(recorder, kakao, email)

	user := kakaoUser()
	user.NotificationEmail = "alert@example.com"

	sent, err := dispatcher.SendPriceAlert(context.Background(), alertItem(nil), user)
	require.NoError(t, err)
	assert.True(t, sent)

	// 알림 전용 주소가 설정된 경우 해당 주소로 발송해야 한다
	assert.Equal(t, []string{"alert@example.com"}, email.calls)
	assert.Equal(t, []string{"item-1"}, recorder.itemIDs)
}

func TestSendPriceAlert_카카오미사용_이메일발송(t *testing.T) {
	recorder := &fakeRecorder{}
	kakao := &fakeKakao{}
	email := &fakeEmail{enabled: true}

	dispatcher := newTestDispatcher(recorder, kakao, email)

	user := kakaoUser()
	user.KakaoNotificationEnabled = false

	sent, err := dispatcher.SendPriceAlert(context.Background(), alertItem(nil), user)
	require.NoError(t, err)
	assert.True(t, sent)

	assert.Empty(t, kakao.calls)
	assert.Equal(t, []string{"user@example.com"}, email.calls)
}

func TestSendPriceAlert_모든채널실패(t *testing.T) {
	recorder := &fakeRecorder{}
	kakao := &fakeKakao{err: apperrors.New(apperrors.Unavailable, "발송 실패")}
	email := &fakeEmail{enabled: false}

	dispatcher := newTestDispatcher(recorder, kakao, email)

	sent, err := dispatcher.SendPriceAlert(context.Background(), alertItem(nil), kakaoUser())
	require.Error(t, err)
	assert.False(t, sent)

	// 발송에 실패했으므로 발송 시각이 기록되면 안 된다
	assert.Empty(t, recorder.itemIDs)
}

func TestSendPriceAlert_기록실패_발송은성공(t *testing.T) {
	recorder := &fakeRecorder{err: apperrors.New(apperrors.System, "기록 실패")}
	kakao := &fakeKakao{}

	dispatcher := newTestDispatcher(recorder, kakao, &fakeEmail{enabled: true})

	sent, err := dispatcher.SendPriceAlert(context.Background(), alertItem(nil), kakaoUser())
	require.NoError(t, err)
	assert.True(t, sent)
}
