package storage

import (
	"context"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	applog "github.com/darkkaiser/cartpilot-server/pkg/log"
)

// schemaStatements 서비스 구동에 필요한 테이블 정의입니다.
// 모든 구문은 멱등하게(IF NOT EXISTS) 작성되어 재실행에 안전합니다.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		notification_email TEXT,
		kakao_access_token TEXT,
		kakao_notification_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS wishlist_items (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		product_id TEXT NOT NULL,
		title TEXT NOT NULL,
		image TEXT,
		mall TEXT,
		link TEXT,
		current_price BIGINT NOT NULL,
		target_price BIGINT,
		notification_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		notes TEXT,
		last_notified_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, product_id)
	)`,

	`CREATE TABLE IF NOT EXISTS price_history (
		id TEXT PRIMARY KEY,
		wishlist_item_id TEXT NOT NULL REFERENCES wishlist_items(id) ON DELETE CASCADE,
		price BIGINT NOT NULL,
		checked_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_price_history_item_checked
		ON price_history (wishlist_item_id, checked_at)`,

	`CREATE TABLE IF NOT EXISTS purchases (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		product_title TEXT NOT NULL,
		price BIGINT NOT NULL,
		category TEXT,
		mall TEXT,
		purchased_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`ALTER TABLE purchases ADD COLUMN IF NOT EXISTS mall TEXT`,

	`CREATE TABLE IF NOT EXISTS ratings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		product_title TEXT NOT NULL,
		score INT NOT NULL CHECK (score BETWEEN 1 AND 5),
		comment TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate 스키마를 생성합니다. 이미 존재하는 테이블은 건너뜁니다.
func (s *Storage) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return apperrors.Wrap(err, apperrors.System, "데이터베이스 스키마 생성에 실패했습니다")
		}
	}

	applog.WithComponent(component).Debug("데이터베이스 스키마 확인 완료")

	return nil
}
