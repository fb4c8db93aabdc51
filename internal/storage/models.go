package storage

import (
	"time"
)

// User 서비스 사용자 계정입니다.
type User struct {
	ID                       string     `json:"id"`
	Email                    string     `json:"email"`
	PasswordHash             string     `json:"-"`
	NotificationEmail        string     `json:"notification_email,omitempty"`
	KakaoAccessToken         string     `json:"-"`
	KakaoNotificationEnabled bool       `json:"kakao_notification_enabled"`
	IsActive                 bool       `json:"is_active"`
	CreatedAt                time.Time  `json:"created_at"`
}

// NotificationTarget 알림 발송에 사용할 이메일 주소를 반환합니다.
// 알림 전용 주소가 설정된 경우 해당 주소를, 아니면 계정 이메일을 사용합니다.
func (u *User) NotificationTarget() string {
	if u.NotificationEmail != "" {
		return u.NotificationEmail
	}
	return u.Email
}

// WishlistItem 사용자가 가격을 추적 중인 관심상품입니다.
type WishlistItem struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"user_id"`
	ProductID           string     `json:"product_id"`
	Title               string     `json:"title"`
	Image               string     `json:"image,omitempty"`
	Mall                string     `json:"mall,omitempty"`
	Link                string     `json:"link,omitempty"`
	CurrentPrice        int64      `json:"current_price"`
	TargetPrice         *int64     `json:"target_price,omitempty"`
	NotificationEnabled bool       `json:"notification_enabled"`
	Notes               string     `json:"notes,omitempty"`
	LastNotifiedAt      *time.Time `json:"last_notified_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// PriceHistory 관심상품의 가격 변동 이력입니다.
type PriceHistory struct {
	ID             string    `json:"id"`
	WishlistItemID string    `json:"wishlist_item_id"`
	Price          int64     `json:"price"`
	CheckedAt      time.Time `json:"checked_at"`
}

// Purchase 사용자의 구매 내역입니다. 취향 분석의 입력으로 사용됩니다.
type Purchase struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ProductTitle string    `json:"product_title"`
	Price        int64     `json:"price"`
	Category     string    `json:"category,omitempty"`
	Mall         string    `json:"mall,omitempty"`
	PurchasedAt  time.Time `json:"purchased_at"`
}

// Rating 구매 상품에 대한 사용자 평가입니다. (1~5점)
type Rating struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ProductTitle string    `json:"product_title"`
	Score        int       `json:"score"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NotifiableItem 가격 모니터링 대상 관심상품과 소유자 정보입니다.
type NotifiableItem struct {
	Item WishlistItem
	User User
}

// MonthlyPurchaseTotal 월별 구매 합계입니다.
type MonthlyPurchaseTotal struct {
	Month string `json:"month"` // "2026-08" 형식
	Total int64  `json:"total"`
	Count int    `json:"count"`
}

// CategoryPurchaseTotal 카테고리별 구매 합계입니다.
type CategoryPurchaseTotal struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
	Count    int    `json:"count"`
}

// PurchaseStatistics 구매 내역 통계입니다.
type PurchaseStatistics struct {
	TotalSpent int64                   `json:"total_spent"`
	TotalCount int                     `json:"total_count"`
	Monthly    []MonthlyPurchaseTotal  `json:"monthly"`
	Categories []CategoryPurchaseTotal `json:"categories"`
}
