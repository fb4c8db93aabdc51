// Package storage PostgreSQL 기반의 영속 저장소를 제공합니다.
//
// 사용자, 관심상품, 가격 이력, 구매 내역, 평가 데이터를 관리하며,
// 모든 접근은 pgx 커넥션 풀을 통해 이루어집니다.
package storage

import (
	"context"
	"errors"

	"github.com/darkkaiser/cartpilot-server/internal/config"
	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// component 저장소 로깅용 컴포넌트 이름
const component = "storage"

// pgUniqueViolationCode PostgreSQL 고유 제약 위반 에러 코드
const pgUniqueViolationCode = "23505"

// Storage PostgreSQL 커넥션 풀과 각 저장소에 대한 접근을 제공합니다.
type Storage struct {
	pool *pgxpool.Pool

	Users     *UserStore
	Wishlist  *WishlistStore
	Purchases *PurchaseStore
	Ratings   *RatingStore
}

// New 커넥션 풀을 생성하고 연결을 확인한 후 Storage를 반환합니다.
func New(ctx context.Context, cfg *config.DatabaseConfig) (*Storage, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "데이터베이스 연결 문자열 파싱에 실패했습니다")
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "데이터베이스 커넥션 풀 생성에 실패했습니다")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperrors.Wrap(err, apperrors.System, "데이터베이스 연결 확인에 실패했습니다")
	}

	s := &Storage{pool: pool}
	s.Users = &UserStore{pool: pool}
	s.Wishlist = &WishlistStore{pool: pool}
	s.Purchases = &PurchaseStore{pool: pool}
	s.Ratings = &RatingStore{pool: pool}

	return s, nil
}

// Ping 데이터베이스 연결 상태를 확인합니다. (헬스체크용)
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.System, "데이터베이스 연결 확인에 실패했습니다")
	}
	return nil
}

// Close 커넥션 풀을 닫습니다.
func (s *Storage) Close() {
	s.pool.Close()
}

// wrapQueryError 쿼리 에러를 애플리케이션 에러 타입으로 분류합니다.
func wrapQueryError(err error, message string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.Wrap(err, apperrors.NotFound, message)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
		return apperrors.Wrap(err, apperrors.Conflict, message)
	}

	return apperrors.Wrap(err, apperrors.System, message)
}
