package config

import (
	"fmt"
	"time"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// 지원하는 LLM 공급자 식별자
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// AppConfig 애플리케이션의 모든 설정을 포함하는 최상위 구조체
type AppConfig struct {
	Debug     bool            `json:"debug"`
	LLM       LLMConfig       `json:"llm"`
	Naver     NaverConfig     `json:"naver"`
	Database  DatabaseConfig  `json:"database"`
	Session   SessionConfig   `json:"session"`
	Cache     CacheConfig     `json:"cache"`
	HTTPRetry HTTPRetryConfig `json:"http_retry"`
	SMTP      SMTPConfig      `json:"smtp"`
	Auth      AuthConfig      `json:"auth"`
	API       APIConfig       `json:"api"`
	Vocab     VocabConfig     `json:"vocab"`
}

// validate 설정 로드 직후, 각 설정 항목의 정합성과 필수 값의 유효성을 검증합니다.
func (c *AppConfig) validate() error {
	if err := c.LLM.validate(); err != nil {
		return err
	}
	if err := c.Naver.validate(); err != nil {
		return err
	}
	if err := c.Database.validate(); err != nil {
		return err
	}
	if err := c.Session.validate(); err != nil {
		return err
	}
	if err := c.Cache.validate(); err != nil {
		return err
	}
	if err := c.HTTPRetry.validate(); err != nil {
		return err
	}
	if err := c.SMTP.validate(); err != nil {
		return err
	}
	if err := c.Auth.validate(); err != nil {
		return err
	}
	if err := c.API.validate(); err != nil {
		return err
	}
	if err := c.Vocab.validate(); err != nil {
		return err
	}
	return nil
}

// VerifyRecommendations 서비스 운영의 안정성과 보안을 위해 권장되는 설정 준수 여부를 진단합니다.
// 강제적인 에러를 발생시키지는 않으나, 잠재적 위험 요소에 대한 경고 메시지를 반환합니다.
func (c *AppConfig) VerifyRecommendations() []string {
	var warnings []string

	// 시스템 예약 포트(1024 미만) 사용 경고
	if c.API.ListenPort < 1024 {
		warnings = append(warnings, fmt.Sprintf("시스템 예약 포트(1-1023)를 사용하도록 설정되었습니다(port: %d). 이 경우 서버 구동 시 관리자 권한이 필요할 수 있습니다", c.API.ListenPort))
	}

	// 전체 도메인 허용 경고
	if len(c.API.CORS.AllowOrigins) == 1 && c.API.CORS.AllowOrigins[0] == "*" {
		warnings = append(warnings, "CORS가 모든 도메인(*)을 허용하도록 설정되었습니다. 운영 환경에서는 허용 도메인을 명시하는 것을 권장합니다")
	}

	// 이메일 채널 미설정 경고 (카카오톡 발송 실패 시 대체 채널이 없음)
	if !c.SMTP.Enabled() {
		warnings = append(warnings, "SMTP가 설정되지 않아 이메일 알림 채널이 비활성화됩니다")
	}

	return warnings
}

// LLMConfig 사용할 LLM 공급자와 공급자별 API Key를 정의하는 설정 구조체
type LLMConfig struct {
	Provider     string `json:"provider" validate:"required,oneof=openai gemini"`
	OpenAIAPIKey string `json:"openai_api_key"`
	GoogleAPIKey string `json:"google_api_key"`
}

func (c *LLMConfig) validate() error {
	if err := validate.Struct(c); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("LLM 공급자(llm.provider)는 '%s' 또는 '%s'만 지원합니다: '%s'", ProviderOpenAI, ProviderGemini, c.Provider))
	}

	// 선택된 공급자의 API Key 존재 여부 확인
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return apperrors.New(apperrors.InvalidInput, "OpenAI 공급자 사용 시 API Key(llm.openai_api_key)는 필수입니다")
		}
	case ProviderGemini:
		if c.GoogleAPIKey == "" {
			return apperrors.New(apperrors.InvalidInput, "Gemini 공급자 사용 시 API Key(llm.google_api_key)는 필수입니다")
		}
	}

	return nil
}

// NaverConfig 네이버 쇼핑 오픈 API 인증 정보를 담는 설정 구조체
type NaverConfig struct {
	ClientID     string `json:"client_id" validate:"required"`
	ClientSecret string `json:"client_secret" validate:"required"`
}

func (c *NaverConfig) validate() error {
	if err := validate.Struct(c); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, "네이버 쇼핑 API 인증 정보(naver.client_id, naver.client_secret)는 필수입니다")
	}
	return nil
}

// DatabaseConfig PostgreSQL 연결 정보를 담는 설정 구조체
type DatabaseConfig struct {
	URL      string `json:"url" validate:"required"`
	MaxConns int32  `json:"max_conns" validate:"min=1"`
	MinConns int32  `json:"min_conns" validate:"min=0"`
}

func (c *DatabaseConfig) validate() error {
	if err := validate.Struct(c); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, "데이터베이스 설정(database.url)이 올바르지 않습니다")
	}
	if c.MinConns > c.MaxConns {
		return apperrors.Newf(apperrors.InvalidInput, "데이터베이스 최소 연결 수(%d)가 최대 연결 수(%d)보다 클 수 없습니다", c.MinConns, c.MaxConns)
	}
	return nil
}

// SessionConfig 대화 세션의 유지 정책을 정의하는 설정 구조체
type SessionConfig struct {
	TTLMinutes int `json:"ttl_minutes" validate:"min=1"`
}

func (c *SessionConfig) validate() error {
	if err := validate.Struct(c); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, "세션 유지 시간(session.ttl_minutes)은 1 이상이어야 합니다")
	}
	return nil
}

// TTL 세션 유지 시간을 time.Duration으로 반환합니다.
func (c *SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// CacheConfig 검색/추천 결과 캐시의 유지 정책을 정의하는 설정 구조체
type CacheConfig struct {
	TTLSeconds int `json:"ttl_seconds" validate:"min=1"`
	MaxEntries int `json:"max_entries" validate:"min=1"`
}

func (c *CacheConfig) validate() error {
	if err := validate.Struct(c); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, "캐시 설정(cache.ttl_seconds, cache.max_entries)은 1 이상이어야 합니다")
	}
	return nil
}

// TTL 캐시 유지 시간을 time.Duration으로 반환합니다.
func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// HTTPRetryConfig 외부 API 요청 실패 시 재시도 횟수와 대기 시간을 정의하는 설정 구조체
type HTTPRetryConfig struct {
	MaxRetries int    `json:"max_retries"`
	RetryDelay string `json:"retry_delay"`
}

func (c *HTTPRetryConfig) validate() error {
	if c.MaxRetries < 0 {
		return apperrors.Newf(apperrors.InvalidInput, "HTTP 최대 재시도 횟수(http_retry.max_retries)는 음수일 수 없습니다: %d", c.MaxRetries)
	}
	if _, err := time.ParseDuration(c.RetryDelay); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("HTTP 재시도 대기 시간(http_retry.retry_delay) 설정이 올바르지 않습니다: '%s' (예: 1s, 500ms)", c.RetryDelay))
	}
	return nil
}

// RetryDelayDuration 재시도 대기 시간을 time.Duration으로 반환합니다.
// validate()를 통과한 이후에만 호출해야 합니다.
func (c *HTTPRetryConfig) RetryDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryDelay)
	return d
}

// SMTPConfig 이메일 알림 채널에 사용할 SMTP 서버 정보를 담는 설정 구조체
//
// Host가 비어있으면 이메일 채널은 비활성화됩니다.
type SMTPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
}

// Enabled 이메일 채널 활성화 여부를 반환합니다.
func (c *SMTPConfig) Enabled() bool {
	return c.Host != ""
}

func (c *SMTPConfig) validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Port < 1 || c.Port > 65535 {
		return apperrors.Newf(apperrors.InvalidInput, "SMTP 포트(smtp.port)는 1에서 65535 사이의 값이어야 합니다: %d", c.Port)
	}
	if c.From == "" {
		return apperrors.New(apperrors.InvalidInput, "SMTP 사용 시 발신자 주소(smtp.from)는 필수입니다")
	}
	return nil
}

// AuthConfig API 인증에 사용되는 비밀값들을 담는 설정 구조체
type AuthConfig struct {
	JWTSecret  string `json:"jwt_secret" validate:"required"`
	AdminToken string `json:"admin_token" validate:"required"`
}

func (c *AuthConfig) validate() error {
	if err := validate.Struct(c); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, "인증 비밀값(auth.jwt_secret, auth.admin_token)은 필수입니다")
	}
	return nil
}

// APIConfig HTTP 서버의 포트 및 CORS 정책을 정의하는 설정 구조체
type APIConfig struct {
	ListenPort            int        `json:"listen_port" validate:"min=1,max=65535"`
	RequestTimeoutSeconds int        `json:"request_timeout_seconds" validate:"min=1"`
	CORS                  CORSConfig `json:"cors"`
}

// RequestTimeout 요청 처리 시간 제한을 time.Duration으로 반환합니다.
func (c *APIConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c *APIConfig) validate() error {
	if err := validate.Struct(c); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range validationErrors {
				if fieldErr.StructField() == "ListenPort" {
					return apperrors.New(apperrors.InvalidInput, "웹 서버 포트(api.listen_port)는 1에서 65535 사이의 값이어야 합니다")
				}
			}
		}
		return apperrors.Wrap(err, apperrors.InvalidInput, "웹 서버 설정 검증 중 알 수 없는 오류가 발생했습니다")
	}

	return c.CORS.validate()
}

// VocabConfig 대화 분석에 사용하는 어휘 사전을 교체하는 설정 구조체
//
// 비어있는 필드는 내장 사전을 그대로 사용합니다. 운영 중 신조어나
// 새 상황 표현을 코드 수정 없이 반영하기 위한 설정입니다.
type VocabConfig struct {
	// Items 품목 명사 목록
	Items []string `json:"items"`

	// Stopwords 키워드 추출 제외 상투어 목록
	Stopwords []string `json:"stopwords"`

	// Relations 관계 표현 → 관계 코드 (예: "동료" → "colleague")
	Relations map[string]string `json:"relations"`

	// Occasions 상황 표현 → 상황 코드 (예: "퇴사" → "farewell")
	Occasions map[string]string `json:"occasions"`

	// Seasons 계절 코드 → 트렌드 검색 키워드 목록
	Seasons map[string][]string `json:"seasons"`
}

// validSeasonCodes 계절 사전에서 허용하는 계절 코드 집합
var validSeasonCodes = map[string]struct{}{
	"spring": {}, "summer": {}, "fall": {}, "winter": {},
}

func (c *VocabConfig) validate() error {
	for season := range c.Seasons {
		if _, ok := validSeasonCodes[season]; !ok {
			return apperrors.Newf(apperrors.InvalidInput, "어휘 사전의 계절 코드(vocab.seasons)가 올바르지 않습니다: '%s' (spring/summer/fall/winter)", season)
		}
	}
	return nil
}

// CORSConfig 웹 브라우저의 교차 출처 리소스 공유(CORS) 정책을 설정하는 구조체
type CORSConfig struct {
	AllowOrigins []string `json:"allow_origins" validate:"dive,cors_origin"`
}

func (c *CORSConfig) validate() error {
	if len(c.AllowOrigins) == 0 {
		return apperrors.New(apperrors.InvalidInput, "CORS 허용 도메인(api.cors.allow_origins) 목록이 비어있습니다")
	}

	for _, origin := range c.AllowOrigins {
		if origin == "*" && len(c.AllowOrigins) > 1 {
			return apperrors.New(apperrors.InvalidInput, "와일드카드(*)는 다른 도메인과 함께 사용할 수 없습니다. 모든 도메인을 허용하려면 와일드카드만 설정하세요")
		}
	}

	if err := validate.Struct(c); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range validationErrors {
				if fieldErr.Tag() == "cors_origin" {
					return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("CORS Origin 형식이 올바르지 않습니다: '%v' (형식: Scheme://Host[:Port], 예: https://example.com)", fieldErr.Value()))
				}
			}
		}
		return apperrors.Wrap(err, apperrors.InvalidInput, "CORS 설정 검증 중 알 수 없는 오류가 발생했습니다")
	}
	return nil
}
