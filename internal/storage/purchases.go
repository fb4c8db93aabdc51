package storage

import (
	"context"
	"time"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PurchaseStore 구매 내역 저장소입니다.
type PurchaseStore struct {
	pool *pgxpool.Pool
}

const purchaseColumns = `id, user_id, product_title, price, COALESCE(category, ''), COALESCE(mall, ''), purchased_at`

func scanPurchase(row interface{ Scan(dest ...any) error }) (*Purchase, error) {
	var p Purchase
	err := row.Scan(&p.ID, &p.UserID, &p.ProductTitle, &p.Price, &p.Category, &p.Mall, &p.PurchasedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PurchaseCreateParams 구매 내역 등록 파라미터입니다.
type PurchaseCreateParams struct {
	ProductTitle string
	Price        int64
	Category     string
	Mall         string
	PurchasedAt  time.Time
}

// Create 구매 내역을 등록합니다. PurchasedAt이 0 값이면 현재 시각으로 기록됩니다.
func (s *PurchaseStore) Create(ctx context.Context, userID string, params PurchaseCreateParams) (*Purchase, error) {
	if params.PurchasedAt.IsZero() {
		params.PurchasedAt = time.Now()
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO purchases (id, user_id, product_title, price, category, mall, purchased_at)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7)
		 RETURNING `+purchaseColumns,
		uuid.New().String(), userID, params.ProductTitle, params.Price,
		params.Category, params.Mall, params.PurchasedAt)

	p, err := scanPurchase(row)
	if err != nil {
		return nil, wrapQueryError(err, "구매 내역 등록에 실패했습니다")
	}
	return p, nil
}

// PurchaseUpdateParams 구매 내역 수정 파라미터입니다. nil 필드는 변경하지 않습니다.
type PurchaseUpdateParams struct {
	ProductTitle *string
	Price        *int64
	Category     *string
	Mall         *string
	PurchasedAt  *time.Time
}

// Update 구매 내역을 수정합니다.
func (s *PurchaseStore) Update(ctx context.Context, userID, purchaseID string, params PurchaseUpdateParams) (*Purchase, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE purchases
		 SET product_title = COALESCE($3, product_title),
		     price = COALESCE($4, price),
		     category = COALESCE($5, category),
		     mall = COALESCE($6, mall),
		     purchased_at = COALESCE($7, purchased_at)
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+purchaseColumns,
		purchaseID, userID, params.ProductTitle, params.Price,
		params.Category, params.Mall, params.PurchasedAt)

	p, err := scanPurchase(row)
	if err != nil {
		return nil, wrapQueryError(err, "구매 내역을 찾을 수 없습니다")
	}
	return p, nil
}

// Delete 구매 내역을 삭제합니다.
func (s *PurchaseStore) Delete(ctx context.Context, userID, purchaseID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM purchases WHERE id = $1 AND user_id = $2`, purchaseID, userID)
	if err != nil {
		return wrapQueryError(err, "구매 내역 삭제에 실패했습니다")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.NotFound, "구매 내역을 찾을 수 없습니다")
	}
	return nil
}

// ListByUser 사용자의 구매 내역을 최신순으로 조회합니다.
func (s *PurchaseStore) ListByUser(ctx context.Context, userID string) ([]*Purchase, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+purchaseColumns+` FROM purchases
		 WHERE user_id = $1 ORDER BY purchased_at DESC`, userID)
	if err != nil {
		return nil, wrapQueryError(err, "구매 내역 조회에 실패했습니다")
	}
	defer rows.Close()

	var purchases []*Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, wrapQueryError(err, "구매 내역 변환에 실패했습니다")
		}
		purchases = append(purchases, p)
	}
	return purchases, wrapQueryError(rows.Err(), "구매 내역 조회에 실패했습니다")
}

// ListSince 지정 시점 이후의 구매 내역을 조회합니다. 취향 분석의 입력으로 사용됩니다.
func (s *PurchaseStore) ListSince(ctx context.Context, userID string, since time.Time) ([]*Purchase, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+purchaseColumns+` FROM purchases
		 WHERE user_id = $1 AND purchased_at >= $2 ORDER BY purchased_at DESC`, userID, since)
	if err != nil {
		return nil, wrapQueryError(err, "구매 내역 조회에 실패했습니다")
	}
	defer rows.Close()

	var purchases []*Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, wrapQueryError(err, "구매 내역 변환에 실패했습니다")
		}
		purchases = append(purchases, p)
	}
	return purchases, wrapQueryError(rows.Err(), "구매 내역 조회에 실패했습니다")
}

// Statistics 사용자의 구매 통계를 집계합니다. (총액, 월별, 카테고리별)
func (s *PurchaseStore) Statistics(ctx context.Context, userID string) (*PurchaseStatistics, error) {
	stats := &PurchaseStatistics{}

	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(price), 0), COUNT(*) FROM purchases WHERE user_id = $1`,
		userID).Scan(&stats.TotalSpent, &stats.TotalCount)
	if err != nil {
		return nil, wrapQueryError(err, "구매 통계 집계에 실패했습니다")
	}

	monthlyRows, err := s.pool.Query(ctx,
		`SELECT TO_CHAR(purchased_at, 'YYYY-MM') AS month, SUM(price), COUNT(*)
		 FROM purchases WHERE user_id = $1
		 GROUP BY month ORDER BY month DESC`, userID)
	if err != nil {
		return nil, wrapQueryError(err, "월별 구매 통계 집계에 실패했습니다")
	}
	defer monthlyRows.Close()

	for monthlyRows.Next() {
		var m MonthlyPurchaseTotal
		if err := monthlyRows.Scan(&m.Month, &m.Total, &m.Count); err != nil {
			return nil, wrapQueryError(err, "월별 구매 통계 변환에 실패했습니다")
		}
		stats.Monthly = append(stats.Monthly, m)
	}
	if err := monthlyRows.Err(); err != nil {
		return nil, wrapQueryError(err, "월별 구매 통계 집계에 실패했습니다")
	}

	categoryRows, err := s.pool.Query(ctx,
		`SELECT COALESCE(category, '기타'), SUM(price), COUNT(*)
		 FROM purchases WHERE user_id = $1
		 GROUP BY category ORDER BY SUM(price) DESC`, userID)
	if err != nil {
		return nil, wrapQueryError(err, "카테고리별 구매 통계 집계에 실패했습니다")
	}
	defer categoryRows.Close()

	for categoryRows.Next() {
		var c CategoryPurchaseTotal
		if err := categoryRows.Scan(&c.Category, &c.Total, &c.Count); err != nil {
			return nil, wrapQueryError(err, "카테고리별 구매 통계 변환에 실패했습니다")
		}
		stats.Categories = append(stats.Categories, c)
	}
	if err := categoryRows.Err(); err != nil {
		return nil, wrapQueryError(err, "카테고리별 구매 통계 집계에 실패했습니다")
	}

	return stats, nil
}
