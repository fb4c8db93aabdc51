// Package auth API 인증에 사용하는 JWT 토큰의 발급과 검증을 담당합니다.
package auth

import (
	"time"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer 발급 토큰의 iss 클레임 값
const tokenIssuer = "cartpilot-server"

// defaultTokenTTL 발급 토큰의 기본 유효 기간
const defaultTokenTTL = 72 * time.Hour

// TokenManager HS256 서명 기반의 JWT 발급/검증기입니다.
type TokenManager struct {
	secret []byte
	ttl    time.Duration

	// now 테스트에서 시간 제어를 위해 주입 가능합니다.
	now func() time.Time
}

// NewTokenManager 토큰 관리자를 생성합니다.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    defaultTokenTTL,
		now:    time.Now,
	}
}

// Issue 사용자 식별자를 담은 액세스 토큰을 발급합니다.
func (m *TokenManager) Issue(userID string) (string, error) {
	now := m.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.System, "토큰 서명에 실패했습니다")
	}
	return signed, nil
}

// Verify 토큰을 검증하고 사용자 식별자를 반환합니다.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.Unauthorized, "유효하지 않은 토큰입니다")
	}

	if claims.Subject == "" {
		return "", apperrors.New(apperrors.Unauthorized, "토큰에 사용자 정보가 없습니다")
	}
	return claims.Subject, nil
}
