package storage

import (
	"context"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserStore 사용자 계정 저장소입니다.
type UserStore struct {
	pool *pgxpool.Pool
}

const userColumns = `id, email, password_hash,
	COALESCE(notification_email, ''), COALESCE(kakao_access_token, ''),
	kakao_notification_enabled, is_active, created_at`

// scanUser 단일 행을 User로 변환합니다.
func scanUser(row interface{ Scan(dest ...any) error }) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash,
		&u.NotificationEmail, &u.KakaoAccessToken,
		&u.KakaoNotificationEnabled, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create 새 사용자를 생성합니다. 이메일이 중복되면 Conflict 에러를 반환합니다.
func (s *UserStore) Create(ctx context.Context, email, passwordHash string) (*User, error) {
	id := uuid.New().String()

	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)
		 RETURNING `+userColumns,
		id, email, passwordHash)

	u, err := scanUser(row)
	if err != nil {
		return nil, wrapQueryError(err, "사용자 생성에 실패했습니다")
	}
	return u, nil
}

// GetByID ID로 사용자를 조회합니다.
func (s *UserStore) GetByID(ctx context.Context, id string) (*User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if err != nil {
		return nil, wrapQueryError(err, "사용자를 찾을 수 없습니다")
	}
	return u, nil
}

// GetByEmail 이메일로 사용자를 조회합니다.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)

	u, err := scanUser(row)
	if err != nil {
		return nil, wrapQueryError(err, "사용자를 찾을 수 없습니다")
	}
	return u, nil
}

// UpdateNotificationSettings 알림 채널 설정을 갱신합니다.
func (s *UserStore) UpdateNotificationSettings(ctx context.Context, id string, notificationEmail, kakaoAccessToken string, kakaoEnabled bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users
		 SET notification_email = NULLIF($2, ''),
		     kakao_access_token = NULLIF($3, ''),
		     kakao_notification_enabled = $4
		 WHERE id = $1`,
		id, notificationEmail, kakaoAccessToken, kakaoEnabled)
	if err != nil {
		return wrapQueryError(err, "알림 설정 갱신에 실패했습니다")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.NotFound, "사용자를 찾을 수 없습니다")
	}
	return nil
}
