package storage

import (
	"context"
	"time"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MaxWishlistItems 사용자당 등록 가능한 관심상품의 최대 개수입니다.
const MaxWishlistItems = 20

// 관심상품 등록 관련 사용자 안내 메시지
const (
	// ErrMsgWishlistFull 관심상품 개수 제한 초과 안내
	ErrMsgWishlistFull = "관심상품은 최대 20개까지 등록할 수 있습니다"

	// ErrMsgWishlistDuplicate 중복 등록 안내
	ErrMsgWishlistDuplicate = "이미 등록된 관심상품입니다"
)

// WishlistStore 관심상품과 가격 이력 저장소입니다.
type WishlistStore struct {
	pool *pgxpool.Pool
}

const wishlistColumns = `id, user_id, product_id, title,
	COALESCE(image, ''), COALESCE(mall, ''), COALESCE(link, ''),
	current_price, target_price, notification_enabled,
	COALESCE(notes, ''), last_notified_at, created_at`

func scanWishlistItem(row interface{ Scan(dest ...any) error }) (*WishlistItem, error) {
	var item WishlistItem
	err := row.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Title,
		&item.Image, &item.Mall, &item.Link,
		&item.CurrentPrice, &item.TargetPrice, &item.NotificationEnabled,
		&item.Notes, &item.LastNotifiedAt, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateParams 관심상품 등록 파라미터입니다.
type CreateParams struct {
	UserID       string
	ProductID    string
	Title        string
	Image        string
	Mall         string
	Link         string
	CurrentPrice int64
	TargetPrice  *int64
	Notes        string
}

// Create 관심상품을 등록하고 초기 가격 이력을 함께 기록합니다.
//
// 사용자당 최대 개수(20개)를 초과하거나 동일 상품이 이미 등록된 경우
// 각각 ExecutionFailed(개수 초과), Conflict(중복) 에러를 반환합니다.
func (s *WishlistStore) Create(ctx context.Context, params CreateParams) (*WishlistItem, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, wrapQueryError(err, "관심상품 등록 트랜잭션 시작에 실패했습니다")
	}
	defer tx.Rollback(ctx)

	// 사용자당 최대 개수 확인
	var count int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM wishlist_items WHERE user_id = $1`, params.UserID).Scan(&count); err != nil {
		return nil, wrapQueryError(err, "관심상품 개수 조회에 실패했습니다")
	}
	if count >= MaxWishlistItems {
		return nil, apperrors.New(apperrors.ExecutionFailed, ErrMsgWishlistFull)
	}

	id := uuid.New().String()

	row := tx.QueryRow(ctx,
		`INSERT INTO wishlist_items
			(id, user_id, product_id, title, image, mall, link, current_price, target_price, notes)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9, NULLIF($10, ''))
		 RETURNING `+wishlistColumns,
		id, params.UserID, params.ProductID, params.Title, params.Image,
		params.Mall, params.Link, params.CurrentPrice, params.TargetPrice, params.Notes)

	item, err := scanWishlistItem(row)
	if err != nil {
		if apperrors.Is(wrapQueryError(err, ""), apperrors.Conflict) {
			return nil, apperrors.New(apperrors.Conflict, ErrMsgWishlistDuplicate)
		}
		return nil, wrapQueryError(err, "관심상품 등록에 실패했습니다")
	}

	// 등록 시점의 가격을 첫 이력으로 기록
	if _, err := tx.Exec(ctx,
		`INSERT INTO price_history (id, wishlist_item_id, price) VALUES ($1, $2, $3)`,
		uuid.New().String(), item.ID, params.CurrentPrice); err != nil {
		return nil, wrapQueryError(err, "초기 가격 이력 기록에 실패했습니다")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, wrapQueryError(err, "관심상품 등록 커밋에 실패했습니다")
	}

	return item, nil
}

// ListByUser 사용자의 관심상품 목록을 최신순으로 조회합니다.
func (s *WishlistStore) ListByUser(ctx context.Context, userID string) ([]*WishlistItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+wishlistColumns+` FROM wishlist_items
		 WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, wrapQueryError(err, "관심상품 목록 조회에 실패했습니다")
	}
	defer rows.Close()

	return collectWishlistItems(rows)
}

// Get 사용자의 관심상품을 ID로 조회합니다.
func (s *WishlistStore) Get(ctx context.Context, userID, itemID string) (*WishlistItem, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+wishlistColumns+` FROM wishlist_items WHERE id = $1 AND user_id = $2`,
		itemID, userID)

	item, err := scanWishlistItem(row)
	if err != nil {
		return nil, wrapQueryError(err, "관심상품을 찾을 수 없습니다")
	}
	return item, nil
}

// UpdateParams 관심상품 수정 파라미터입니다. nil 필드는 변경하지 않습니다.
type UpdateParams struct {
	TargetPrice         *int64
	NotificationEnabled *bool
	Notes               *string
}

// Update 관심상품의 목표 가격, 알림 활성화 여부, 메모를 수정합니다.
func (s *WishlistStore) Update(ctx context.Context, userID, itemID string, params UpdateParams) (*WishlistItem, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE wishlist_items
		 SET target_price = COALESCE($3, target_price),
		     notification_enabled = COALESCE($4, notification_enabled),
		     notes = COALESCE($5, notes)
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+wishlistColumns,
		itemID, userID, params.TargetPrice, params.NotificationEnabled, params.Notes)

	item, err := scanWishlistItem(row)
	if err != nil {
		return nil, wrapQueryError(err, "관심상품을 찾을 수 없습니다")
	}
	return item, nil
}

// Delete 관심상품을 삭제합니다. 가격 이력도 함께 삭제됩니다. (ON DELETE CASCADE)
func (s *WishlistStore) Delete(ctx context.Context, userID, itemID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM wishlist_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return wrapQueryError(err, "관심상품 삭제에 실패했습니다")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.NotFound, "관심상품을 찾을 수 없습니다")
	}
	return nil
}

// History 지정 시점 이후의 가격 이력을 시간순으로 조회합니다.
func (s *WishlistStore) History(ctx context.Context, itemID string, since time.Time) ([]*PriceHistory, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, wishlist_item_id, price, checked_at FROM price_history
		 WHERE wishlist_item_id = $1 AND checked_at >= $2
		 ORDER BY checked_at ASC`, itemID, since)
	if err != nil {
		return nil, wrapQueryError(err, "가격 이력 조회에 실패했습니다")
	}
	defer rows.Close()

	var history []*PriceHistory
	for rows.Next() {
		var h PriceHistory
		if err := rows.Scan(&h.ID, &h.WishlistItemID, &h.Price, &h.CheckedAt); err != nil {
			return nil, wrapQueryError(err, "가격 이력 변환에 실패했습니다")
		}
		history = append(history, &h)
	}
	return history, wrapQueryError(rows.Err(), "가격 이력 조회에 실패했습니다")
}

// RecordPrice 새 가격을 이력에 추가하고 현재 가격을 갱신합니다.
func (s *WishlistStore) RecordPrice(ctx context.Context, itemID string, price int64, checkedAt time.Time) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return wrapQueryError(err, "가격 기록 트랜잭션 시작에 실패했습니다")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO price_history (id, wishlist_item_id, price, checked_at) VALUES ($1, $2, $3, $4)`,
		uuid.New().String(), itemID, price, checkedAt); err != nil {
		return wrapQueryError(err, "가격 이력 추가에 실패했습니다")
	}

	if _, err := tx.Exec(ctx,
		`UPDATE wishlist_items SET current_price = $2 WHERE id = $1`, itemID, price); err != nil {
		return wrapQueryError(err, "현재 가격 갱신에 실패했습니다")
	}

	return wrapQueryError(tx.Commit(ctx), "가격 기록 커밋에 실패했습니다")
}

// LowestPriceSince 지정 시점 이후의 최저 가격을 조회합니다.
// 해당 기간에 이력이 없으면 found=false를 반환합니다.
func (s *WishlistStore) LowestPriceSince(ctx context.Context, itemID string, since time.Time) (lowest int64, found bool, err error) {
	var price *int64
	queryErr := s.pool.QueryRow(ctx,
		`SELECT MIN(price) FROM price_history
		 WHERE wishlist_item_id = $1 AND checked_at >= $2`, itemID, since).Scan(&price)
	if queryErr != nil {
		return 0, false, wrapQueryError(queryErr, "최저 가격 조회에 실패했습니다")
	}
	if price == nil {
		return 0, false, nil
	}
	return *price, true, nil
}

// SetLastNotifiedAt 마지막 알림 발송 시각을 기록합니다.
// 알림 발송이 실제로 성공한 경우에만 호출해야 합니다.
func (s *WishlistStore) SetLastNotifiedAt(ctx context.Context, itemID string, notifiedAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE wishlist_items SET last_notified_at = $2 WHERE id = $1`, itemID, notifiedAt)
	return wrapQueryError(err, "알림 발송 시각 기록에 실패했습니다")
}

// ListNotifiable 가격 모니터링 대상 관심상품 목록을 조회합니다.
// 알림이 활성화된 관심상품 중 활성 사용자의 것만 포함됩니다.
func (s *WishlistStore) ListNotifiable(ctx context.Context) ([]*NotifiableItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT w.id, w.user_id, w.product_id, w.title,
			COALESCE(w.image, ''), COALESCE(w.mall, ''), COALESCE(w.link, ''),
			w.current_price, w.target_price, w.notification_enabled,
			COALESCE(w.notes, ''), w.last_notified_at, w.created_at,
			u.id, u.email, u.password_hash,
			COALESCE(u.notification_email, ''), COALESCE(u.kakao_access_token, ''),
			u.kakao_notification_enabled, u.is_active, u.created_at
		 FROM wishlist_items w
		 JOIN users u ON u.id = w.user_id
		 WHERE w.notification_enabled = TRUE AND u.is_active = TRUE
		 ORDER BY w.created_at ASC`)
	if err != nil {
		return nil, wrapQueryError(err, "모니터링 대상 조회에 실패했습니다")
	}
	defer rows.Close()

	var items []*NotifiableItem
	for rows.Next() {
		var n NotifiableItem
		err := rows.Scan(
			&n.Item.ID, &n.Item.UserID, &n.Item.ProductID, &n.Item.Title,
			&n.Item.Image, &n.Item.Mall, &n.Item.Link,
			&n.Item.CurrentPrice, &n.Item.TargetPrice, &n.Item.NotificationEnabled,
			&n.Item.Notes, &n.Item.LastNotifiedAt, &n.Item.CreatedAt,
			&n.User.ID, &n.User.Email, &n.User.PasswordHash,
			&n.User.NotificationEmail, &n.User.KakaoAccessToken,
			&n.User.KakaoNotificationEnabled, &n.User.IsActive, &n.User.CreatedAt)
		if err != nil {
			return nil, wrapQueryError(err, "모니터링 대상 변환에 실패했습니다")
		}
		items = append(items, &n)
	}
	return items, wrapQueryError(rows.Err(), "모니터링 대상 조회에 실패했습니다")
}

// CleanupHistoryBefore 지정 시점 이전의 가격 이력을 삭제하고 삭제된 행 수를 반환합니다.
func (s *WishlistStore) CleanupHistoryBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM price_history WHERE checked_at < $1`, before)
	if err != nil {
		return 0, wrapQueryError(err, "가격 이력 정리에 실패했습니다")
	}
	return tag.RowsAffected(), nil
}

func collectWishlistItems(rows pgx.Rows) ([]*WishlistItem, error) {
	var items []*WishlistItem
	for rows.Next() {
		item, err := scanWishlistItem(rows)
		if err != nil {
			return nil, wrapQueryError(err, "관심상품 변환에 실패했습니다")
		}
		items = append(items, item)
	}
	return items, wrapQueryError(rows.Err(), "관심상품 목록 조회에 실패했습니다")
}
