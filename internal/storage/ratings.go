package storage

import (
	"context"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// highRatingThreshold 취향 분석에서 선호 상품으로 간주하는 최소 평가 점수
const highRatingThreshold = 4

// highRatedLimit 취향 분석에 사용하는 고평가 상품의 최대 개수
const highRatedLimit = 20

// RatingStore 구매 상품 평가 저장소입니다.
type RatingStore struct {
	pool *pgxpool.Pool
}

const ratingColumns = `id, user_id, product_title, score, COALESCE(comment, ''), created_at`

func scanRating(row interface{ Scan(dest ...any) error }) (*Rating, error) {
	var r Rating
	err := row.Scan(&r.ID, &r.UserID, &r.ProductTitle, &r.Score, &r.Comment, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create 평가를 등록합니다. 점수는 1~5점만 허용됩니다.
func (s *RatingStore) Create(ctx context.Context, userID, productTitle string, score int, comment string) (*Rating, error) {
	if score < 1 || score > 5 {
		return nil, apperrors.New(apperrors.InvalidInput, "평가 점수는 1점에서 5점 사이여야 합니다")
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO ratings (id, user_id, product_title, score, comment)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		 RETURNING `+ratingColumns,
		uuid.New().String(), userID, productTitle, score, comment)

	r, err := scanRating(row)
	if err != nil {
		return nil, wrapQueryError(err, "평가 등록에 실패했습니다")
	}
	return r, nil
}

// Delete 평가를 삭제합니다.
func (s *RatingStore) Delete(ctx context.Context, userID, ratingID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM ratings WHERE id = $1 AND user_id = $2`, ratingID, userID)
	if err != nil {
		return wrapQueryError(err, "평가 삭제에 실패했습니다")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.NotFound, "평가를 찾을 수 없습니다")
	}
	return nil
}

// ListByUser 사용자의 평가 목록을 최신순으로 조회합니다.
func (s *RatingStore) ListByUser(ctx context.Context, userID string) ([]*Rating, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+ratingColumns+` FROM ratings
		 WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, wrapQueryError(err, "평가 목록 조회에 실패했습니다")
	}
	defer rows.Close()

	var ratings []*Rating
	for rows.Next() {
		r, err := scanRating(rows)
		if err != nil {
			return nil, wrapQueryError(err, "평가 변환에 실패했습니다")
		}
		ratings = append(ratings, r)
	}
	return ratings, wrapQueryError(rows.Err(), "평가 목록 조회에 실패했습니다")
}

// ListHighRated 사용자가 높게 평가한(4점 이상) 상품 목록을 조회합니다.
// 취향 분석의 입력으로 사용되며 최대 20개까지만 반환합니다.
func (s *RatingStore) ListHighRated(ctx context.Context, userID string) ([]*Rating, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+ratingColumns+` FROM ratings
		 WHERE user_id = $1 AND score >= $2
		 ORDER BY score DESC, created_at DESC
		 LIMIT $3`, userID, highRatingThreshold, highRatedLimit)
	if err != nil {
		return nil, wrapQueryError(err, "고평가 상품 조회에 실패했습니다")
	}
	defer rows.Close()

	var ratings []*Rating
	for rows.Next() {
		r, err := scanRating(rows)
		if err != nil {
			return nil, wrapQueryError(err, "평가 변환에 실패했습니다")
		}
		ratings = append(ratings, r)
	}
	return ratings, wrapQueryError(rows.Err(), "고평가 상품 조회에 실패했습니다")
}
