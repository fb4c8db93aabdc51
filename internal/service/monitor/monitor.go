// Package monitor 관심상품의 현재 가격을 주기적으로 확인하고,
// 최저가 조건이 충족되면 알림 발송을 요청합니다.
package monitor

import (
	"context"
	"time"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/darkkaiser/cartpilot-server/internal/service/catalog"
	"github.com/darkkaiser/cartpilot-server/internal/storage"
	applog "github.com/darkkaiser/cartpilot-server/pkg/log"
	"golang.org/x/time/rate"
)

// component 가격 모니터 로깅용 컴포넌트 이름
const component = "monitor"

// searchDisplay 가격 확인 시 조회하는 상품 수입니다.
// 상품명 완전 일치 검색이므로 소수의 결과로 충분합니다.
const searchDisplay = 5

// lowestPriceWindow 최저가 판정 기준 기간
const lowestPriceWindow = 90 * 24 * time.Hour

// searchRatePerSecond 검색 API 호출 속도 제한 (초당 호출 수)
const searchRatePerSecond = 2

// wishlistStore 가격 모니터링에 필요한 관심상품 저장소 기능입니다.
type wishlistStore interface {
	ListNotifiable(ctx context.Context) ([]*storage.NotifiableItem, error)
	Get(ctx context.Context, userID, itemID string) (*storage.WishlistItem, error)
	RecordPrice(ctx context.Context, itemID string, price int64, checkedAt time.Time) error
	LowestPriceSince(ctx context.Context, itemID string, since time.Time) (int64, bool, error)
}

// AlertSender 최저가 알림 발송 기능입니다. 중복 발송 제어는 발송 측이 담당합니다.
type AlertSender interface {
	SendPriceAlert(ctx context.Context, item *storage.WishlistItem, user *storage.User) (sent bool, err error)
}

// RunResult 모니터링 1회 실행의 집계 결과입니다.
type RunResult struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
	Alerted int `json:"alerted"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// CheckResult 단일 관심상품 가격 확인 결과입니다.
type CheckResult struct {
	Item          *storage.WishlistItem `json:"item"`
	PreviousPrice int64                 `json:"previous_price"`
	CurrentPrice  int64                 `json:"current_price"`
	Lowest90      int64                 `json:"lowest_90d"`
	PriceChanged  bool                  `json:"price_changed"`
	AlertEligible bool                  `json:"alert_eligible"`
}

// Monitor 관심상품 가격 모니터입니다.
//
// 검색 API 호출은 속도 제한기로 완급 조절되며, 개별 상품의 확인 실패는
// 전체 실행을 중단시키지 않습니다.
type Monitor struct {
	wishlist wishlistStore
	searcher catalog.Searcher
	alerts   AlertSender
	limiter  *rate.Limiter

	// now 테스트에서 시간 제어를 위해 주입 가능합니다.
	now func() time.Time
}

// New 가격 모니터를 생성합니다. alerts는 nil일 수 있으며, 이 경우 알림은 발송되지 않습니다.
func New(wishlist wishlistStore, searcher catalog.Searcher, alerts AlertSender) *Monitor {
	return &Monitor{
		wishlist: wishlist,
		searcher: searcher,
		alerts:   alerts,
		limiter:  rate.NewLimiter(rate.Limit(searchRatePerSecond), 1),
		now:      time.Now,
	}
}

// Run 알림이 활성화된 모든 관심상품의 가격을 확인합니다.
//
// 개별 상품의 실패는 로그를 남기고 건너뛰며, 실행은 계속됩니다.
// 컨텍스트가 취소되면 남은 상품을 확인하지 않고 반환합니다.
func (m *Monitor) Run(ctx context.Context) (*RunResult, error) {
	items, err := m.wishlist.ListNotifiable(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ExecutionFailed, "모니터링 대상 조회에 실패했습니다")
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"item_count": len(items),
	}).Info("가격 모니터링 시작")

	result := &RunResult{}

	for _, notifiable := range items {
		if ctx.Err() != nil {
			applog.WithComponent(component).Warn("가격 모니터링 중단: 컨텍스트가 취소되었습니다")
			break
		}

		if err := m.limiter.Wait(ctx); err != nil {
			break
		}

		result.Checked++

		check, err := m.checkItem(ctx, &notifiable.Item)
		if err != nil {
			result.Failed++
			applog.WithComponentAndFields(component, applog.Fields{
				"item_id": notifiable.Item.ID,
				"title":   notifiable.Item.Title,
				"error":   err,
			}).Warn("관심상품 가격 확인 실패 (건너뜀)")
			continue
		}

		if check.PriceChanged {
			result.Updated++
		}

		if !check.AlertEligible || m.alerts == nil {
			continue
		}

		item := notifiable.Item
		item.CurrentPrice = check.CurrentPrice

		sent, err := m.alerts.SendPriceAlert(ctx, &item, &notifiable.User)
		switch {
		case err != nil:
			result.Failed++
			applog.WithComponentAndFields(component, applog.Fields{
				"item_id": item.ID,
				"error":   err,
			}).Warn("최저가 알림 발송 실패")
		case sent:
			result.Alerted++
		default:
			result.Skipped++
		}
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"checked": result.Checked,
		"updated": result.Updated,
		"alerted": result.Alerted,
		"skipped": result.Skipped,
		"failed":  result.Failed,
	}).Info("가격 모니터링 완료")

	return result, nil
}

// CheckItem 단일 관심상품의 가격을 즉시 확인합니다. (API의 수동 확인용)
// 알림은 발송하지 않으며, 알림 조건 충족 여부만 결과에 포함합니다.
func (m *Monitor) CheckItem(ctx context.Context, userID, itemID string) (*CheckResult, error) {
	item, err := m.wishlist.Get(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	check, err := m.checkItem(ctx, item)
	if err != nil {
		return nil, err
	}

	item.CurrentPrice = check.CurrentPrice
	check.Item = item

	return check, nil
}

// checkItem 관심상품의 현재 판매 가격을 조회하고 가격 이력을 갱신합니다.
func (m *Monitor) checkItem(ctx context.Context, item *storage.WishlistItem) (*CheckResult, error) {
	products, err := m.searcher.Search(ctx, catalog.SearchRequest{
		Query:   item.Title,
		Display: searchDisplay,
	})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, apperrors.New(apperrors.NotFound, "상품 검색 결과가 없습니다")
	}

	currentPrice := int64(products[0].Price)
	now := m.now()

	// 최저가 판정은 새 가격을 기록하기 전의 이력을 기준으로 합니다
	lowest90, found, err := m.wishlist.LowestPriceSince(ctx, item.ID, now.Add(-lowestPriceWindow))
	if err != nil {
		return nil, err
	}

	priceChanged := currentPrice != item.CurrentPrice
	if priceChanged {
		if err := m.wishlist.RecordPrice(ctx, item.ID, currentPrice, now); err != nil {
			return nil, err
		}
	}

	check := &CheckResult{
		PreviousPrice: item.CurrentPrice,
		CurrentPrice:  currentPrice,
		PriceChanged:  priceChanged,
	}

	if found {
		check.Lowest90 = min(lowest90, currentPrice)
	} else {
		check.Lowest90 = currentPrice
	}

	check.AlertEligible = alertEligible(item, currentPrice, lowest90, found)

	return check, nil
}

// alertEligible 최저가 알림 조건의 충족 여부를 판정합니다.
//
// 조건: 현재 가격이 최근 90일 최저가 이하이거나, 목표 가격이 설정된 경우
// 현재 가격이 목표 가격 이하일 때.
func alertEligible(item *storage.WishlistItem, currentPrice, lowest90 int64, hasHistory bool) bool {
	if hasHistory && currentPrice <= lowest90 {
		return true
	}
	if item.TargetPrice != nil && currentPrice <= *item.TargetPrice {
		return true
	}
	return false
}
