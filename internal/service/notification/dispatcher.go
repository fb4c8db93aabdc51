// Package notification 최저가 알림의 채널별 발송과 중복 발송 제어를 담당합니다.
//
// 채널 우선순위는 카카오톡(나에게 보내기) → 이메일이며, 동일 관심상품에
// 대한 알림은 최소 발송 간격(24시간) 내에 한 번만 발송됩니다.
package notification

import (
	"context"
	"time"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/darkkaiser/cartpilot-server/internal/storage"
	applog "github.com/darkkaiser/cartpilot-server/pkg/log"
)

// component 알림 발송 로깅용 컴포넌트 이름
const component = "notification"

// minNotificationInterval 동일 관심상품에 대한 최소 알림 발송 간격
const minNotificationInterval = 24 * time.Hour

// 발송에 사용된 채널 식별자
const (
	channelKakao = "kakao"
	channelEmail = "email"
)

// kakaoChannel 카카오톡 발송 채널입니다.
type kakaoChannel interface {
	SendMemo(ctx context.Context, accessToken string, item *storage.WishlistItem) error
}

// emailChannel 이메일 발송 채널입니다.
type emailChannel interface {
	Enabled() bool
	SendAlert(to string, item *storage.WishlistItem) error
}

// notifiedAtRecorder 알림 발송 성공 시각을 기록하는 저장소 기능입니다.
type notifiedAtRecorder interface {
	SetLastNotifiedAt(ctx context.Context, itemID string, notifiedAt time.Time) error
}

// Dispatcher 최저가 알림 발송기입니다.
type Dispatcher struct {
	wishlist notifiedAtRecorder
	kakao    kakaoChannel
	email    emailChannel

	// now 테스트에서 시간 제어를 위해 주입 가능합니다.
	now func() time.Time
}

// NewDispatcher 알림 발송기를 생성합니다.
func NewDispatcher(wishlist notifiedAtRecorder, kakao kakaoChannel, email emailChannel) *Dispatcher {
	return &Dispatcher{
		wishlist: wishlist,
		kakao:    kakao,
		email:    email,
		now:      time.Now,
	}
}

// SendPriceAlert 관심상품의 최저가 알림을 발송합니다.
//
// 마지막 발송 후 24시간이 지나지 않았으면 발송하지 않고 (false, nil)을
// 반환합니다. 카카오톡 발송이 실패하면 이메일로 전환하며, 발송에 실제로
// 성공한 경우에만 마지막 발송 시각을 기록합니다.
func (d *Dispatcher) SendPriceAlert(ctx context.Context, item *storage.WishlistItem, user *storage.User) (bool, error) {
	now := d.now()

	if item.LastNotifiedAt != nil && now.Sub(*item.LastNotifiedAt) < minNotificationInterval {
		applog.WithComponentAndFields(component, applog.Fields{
			"item_id":          item.ID,
			"last_notified_at": item.LastNotifiedAt,
		}).Debug("최소 발송 간격 이내의 알림을 건너뜁니다")
		return false, nil
	}

	channel, err := d.deliver(ctx, item, user)
	if err != nil {
		return false, err
	}

	if err := d.wishlist.SetLastNotifiedAt(ctx, item.ID, now); err != nil {
		// 발송 자체는 성공했으므로 기록 실패는 경고로만 남깁니다
		applog.WithComponentAndFields(component, applog.Fields{
			"item_id": item.ID,
			"error":   err,
		}).Warn("알림 발송 시각 기록 실패")
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"item_id": item.ID,
		"user_id": user.ID,
		"channel": channel,
	}).Info("최저가 알림 발송 완료")

	return true, nil
}

// deliver 채널 우선순위에 따라 알림을 발송하고 성공한 채널을 반환합니다.
func (d *Dispatcher) deliver(ctx context.Context, item *storage.WishlistItem, user *storage.User) (string, error) {
	var kakaoErr error

	if d.kakao != nil && user.KakaoNotificationEnabled && user.KakaoAccessToken != "" {
		kakaoErr = d.kakao.SendMemo(ctx, user.KakaoAccessToken, item)
		if kakaoErr == nil {
			return channelKakao, nil
		}

		fields := applog.Fields{"item_id": item.ID, "error": kakaoErr}
		if apperrors.Is(kakaoErr, apperrors.Unauthorized) {
			applog.WithComponentAndFields(component, fields).
				Warn("카카오 액세스 토큰이 만료되어 이메일 채널로 전환합니다")
		} else {
			applog.WithComponentAndFields(component, fields).
				Warn("카카오톡 발송 실패: 이메일 채널로 전환합니다")
		}
	}

	if d.email != nil && d.email.Enabled() {
		if err := d.email.SendAlert(user.NotificationTarget(), item); err != nil {
			return "", apperrors.Wrap(err, apperrors.Unavailable, "모든 알림 채널 발송에 실패했습니다")
		}
		return channelEmail, nil
	}

	if kakaoErr != nil {
		return "", apperrors.Wrap(kakaoErr, apperrors.Unavailable, "모든 알림 채널 발송에 실패했습니다")
	}
	return "", apperrors.New(apperrors.Unavailable, "사용 가능한 알림 채널이 없습니다")
}
