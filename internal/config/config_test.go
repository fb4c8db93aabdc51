package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigFile 테스트용 설정 파일을 생성하고 경로를 반환합니다.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// validConfigJSON 필수값이 모두 채워진 최소 설정입니다.
const validConfigJSON = `{
	"llm": {"provider": "openai", "openai_api_key": "sk-test"},
	"naver": {"client_id": "cid", "client_secret": "csecret"},
	"database": {"url": "postgres://localhost:5432/cartpilot"},
	"auth": {"jwt_secret": "jwt-secret", "admin_token": "admin-token"}
}`

func TestLoadWithFile(t *testing.T) {
	t.Run("성공: 최소 설정 + 기본값 적용", func(t *testing.T) {
		cfg, err := LoadWithFile(writeConfigFile(t, validConfigJSON))
		require.NoError(t, err)

		assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
		assert.Equal(t, DefaultSessionTTLMinutes, cfg.Session.TTLMinutes)
		assert.Equal(t, time.Hour, cfg.Cache.TTL())
		assert.Equal(t, DefaultMaxRetries, cfg.HTTPRetry.MaxRetries)
		assert.Equal(t, time.Second, cfg.HTTPRetry.RetryDelayDuration())
		assert.Equal(t, 8080, cfg.API.ListenPort)
		assert.Equal(t, DefaultRequestTimeoutSeconds, cfg.API.RequestTimeoutSeconds)
		assert.Equal(t, time.Minute, cfg.API.RequestTimeout())
		assert.Equal(t, []string{"*"}, cfg.API.CORS.AllowOrigins)
		assert.Equal(t, int32(15), cfg.Database.MaxConns)
		assert.False(t, cfg.SMTP.Enabled())
	})

	t.Run("성공: 환경 변수가 파일 설정을 덮어쓴다", func(t *testing.T) {
		t.Setenv("CARTPILOT_SESSION__TTL_MINUTES", "30")
		t.Setenv("CARTPILOT_API__LISTEN_PORT", "9090")

		cfg, err := LoadWithFile(writeConfigFile(t, validConfigJSON))
		require.NoError(t, err)

		assert.Equal(t, 30, cfg.Session.TTLMinutes)
		assert.Equal(t, 30*time.Minute, cfg.Session.TTL())
		assert.Equal(t, 9090, cfg.API.ListenPort)
	})

	t.Run("실패: 지원하지 않는 LLM 공급자", func(t *testing.T) {
		content := `{
			"llm": {"provider": "mistral", "openai_api_key": "sk-test"},
			"naver": {"client_id": "cid", "client_secret": "csecret"},
			"database": {"url": "postgres://localhost:5432/cartpilot"},
			"auth": {"jwt_secret": "s", "admin_token": "t"}
		}`
		_, err := LoadWithFile(writeConfigFile(t, content))
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})

	t.Run("실패: 선택된 공급자의 API Key 누락", func(t *testing.T) {
		content := `{
			"llm": {"provider": "gemini"},
			"naver": {"client_id": "cid", "client_secret": "csecret"},
			"database": {"url": "postgres://localhost:5432/cartpilot"},
			"auth": {"jwt_secret": "s", "admin_token": "t"}
		}`
		_, err := LoadWithFile(writeConfigFile(t, content))
		require.Error(t, err)
		assert.ErrorContains(t, err, "google_api_key")
	})

	t.Run("실패: 네이버 인증 정보 누락", func(t *testing.T) {
		content := `{
			"llm": {"provider": "openai", "openai_api_key": "sk-test"},
			"database": {"url": "postgres://localhost:5432/cartpilot"},
			"auth": {"jwt_secret": "s", "admin_token": "t"}
		}`
		_, err := LoadWithFile(writeConfigFile(t, content))
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})

	t.Run("실패: 잘못된 CORS Origin 형식", func(t *testing.T) {
		content := `{
			"llm": {"provider": "openai", "openai_api_key": "sk-test"},
			"naver": {"client_id": "cid", "client_secret": "csecret"},
			"database": {"url": "postgres://localhost:5432/cartpilot"},
			"auth": {"jwt_secret": "s", "admin_token": "t"},
			"api": {"cors": {"allow_origins": ["example.com/path"]}}
		}`
		_, err := LoadWithFile(writeConfigFile(t, content))
		require.Error(t, err)
		assert.ErrorContains(t, err, "CORS Origin")
	})

	t.Run("실패: 와일드카드와 도메인 혼용", func(t *testing.T) {
		content := `{
			"llm": {"provider": "openai", "openai_api_key": "sk-test"},
			"naver": {"client_id": "cid", "client_secret": "csecret"},
			"database": {"url": "postgres://localhost:5432/cartpilot"},
			"auth": {"jwt_secret": "s", "admin_token": "t"},
			"api": {"cors": {"allow_origins": ["*", "https://example.com"]}}
		}`
		_, err := LoadWithFile(writeConfigFile(t, content))
		require.Error(t, err)
		assert.ErrorContains(t, err, "와일드카드")
	})

	t.Run("성공: 어휘 사전 설정", func(t *testing.T) {
		content := `{
			"llm": {"provider": "openai", "openai_api_key": "sk-test"},
			"naver": {"client_id": "cid", "client_secret": "csecret"},
			"database": {"url": "postgres://localhost:5432/cartpilot"},
			"auth": {"jwt_secret": "s", "admin_token": "t"},
			"vocab": {
				"items": ["타프", "폴대"],
				"relations": {"사촌": "cousin"},
				"seasons": {"summer": ["장마 대비"]}
			}
		}`
		cfg, err := LoadWithFile(writeConfigFile(t, content))
		require.NoError(t, err)

		assert.Equal(t, []string{"타프", "폴대"}, cfg.Vocab.Items)
		assert.Equal(t, map[string]string{"사촌": "cousin"}, cfg.Vocab.Relations)
		assert.Equal(t, []string{"장마 대비"}, cfg.Vocab.Seasons["summer"])
	})

	t.Run("실패: 어휘 사전의 잘못된 계절 코드", func(t *testing.T) {
		content := `{
			"llm": {"provider": "openai", "openai_api_key": "sk-test"},
			"naver": {"client_id": "cid", "client_secret": "csecret"},
			"database": {"url": "postgres://localhost:5432/cartpilot"},
			"auth": {"jwt_secret": "s", "admin_token": "t"},
			"vocab": {"seasons": {"monsoon": ["장마"]}}
		}`
		_, err := LoadWithFile(writeConfigFile(t, content))
		require.Error(t, err)
		assert.ErrorContains(t, err, "계절 코드")
	})

	t.Run("성공: 설정 파일이 없어도 환경 변수만으로 로드된다", func(t *testing.T) {
		t.Setenv("CARTPILOT_LLM__OPENAI_API_KEY", "sk-env")
		t.Setenv("CARTPILOT_NAVER__CLIENT_ID", "cid")
		t.Setenv("CARTPILOT_NAVER__CLIENT_SECRET", "csecret")
		t.Setenv("CARTPILOT_DATABASE__URL", "postgres://localhost:5432/cartpilot")
		t.Setenv("CARTPILOT_AUTH__JWT_SECRET", "s")
		t.Setenv("CARTPILOT_AUTH__ADMIN_TOKEN", "t")

		cfg, err := LoadWithFile(filepath.Join(t.TempDir(), "missing.json"))
		require.NoError(t, err)
		assert.Equal(t, "sk-env", cfg.LLM.OpenAIAPIKey)
	})
}

func TestVerifyRecommendations(t *testing.T) {
	cfg, err := LoadWithFile(writeConfigFile(t, validConfigJSON))
	require.NoError(t, err)

	warnings := cfg.VerifyRecommendations()

	// 기본 설정은 CORS 와일드카드와 SMTP 미설정 경고를 포함한다.
	assert.Len(t, warnings, 2)
}
