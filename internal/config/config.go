// Package config 애플리케이션 설정의 로드와 검증을 담당합니다.
//
// 설정은 다음 우선순위로 병합됩니다. (뒤쪽이 더 높은 우선순위)
//
//  1. 코드에 정의된 기본값
//  2. JSON 설정 파일 (cartpilot-server.json)
//  3. CARTPILOT_ 접두사 환경 변수
//
// 환경 변수는 이중 언더스코어(__)로 계층 구조를 표현합니다.
// 예: CARTPILOT_LLM__PROVIDER -> llm.provider
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// AppName 애플리케이션의 전역 고유 식별자입니다.
	AppName string = "cartpilot-server"

	// AppVersion 애플리케이션 버전입니다.
	AppVersion string = "1.0.0"

	// DefaultFilename 애플리케이션 초기화 시 참조하는 기본 설정 파일명입니다.
	// 실행 인자를 통해 명시적인 경로가 제공되지 않을 경우, 시스템은 이 파일을 탐색하여 구성을 로드합니다.
	DefaultFilename = AppName + ".json"

	// envPrefix 설정을 덮어쓰는 환경 변수의 접두사입니다.
	envPrefix = "CARTPILOT_"

	// DefaultMaxRetries 외부 API 요청 실패 시 최대 재시도 횟수 기본값
	DefaultMaxRetries = 3

	// DefaultSessionTTLMinutes 대화 세션의 기본 유지 시간 (단위: 분)
	DefaultSessionTTLMinutes = 60

	// DefaultCacheTTLSeconds 검색/추천 캐시의 기본 유지 시간 (단위: 초)
	DefaultCacheTTLSeconds = 3600

	// DefaultRequestTimeoutSeconds HTTP 요청 처리 시간 제한 기본값 (단위: 초)
	DefaultRequestTimeoutSeconds = 60
)

// validate 패키지 전역 validator 인스턴스
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// CORS Origin 형식 검증 (Scheme://Host[:Port])
	_ = v.RegisterValidation("cors_origin", func(fl validator.FieldLevel) bool {
		origin := fl.Field().String()
		if origin == "*" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" && u.Path == ""
	})

	return v
}

// Load 기본 설정 파일을 읽어 애플리케이션 설정을 로드합니다.
func Load() (*AppConfig, error) {
	return LoadWithFile(DefaultFilename)
}

// LoadWithFile 지정된 경로의 설정 파일을 읽어 AppConfig 객체를 생성합니다.
//
// 설정 파일이 존재하지 않는 경우에는 기본값과 환경 변수만으로 구성을 완성합니다.
// 비밀값(API Key 등)을 파일에 두지 않고 환경 변수로만 주입하는 배포 형태를 지원하기 위함입니다.
func LoadWithFile(filename string) (*AppConfig, error) {
	k := koanf.New(".")

	// 1. 기본값 로드 (가장 낮은 우선순위)
	err := k.Load(confmap.Provider(map[string]interface{}{
		"llm.provider":          ProviderOpenAI,
		"http_retry.max_retries": DefaultMaxRetries,
		"http_retry.retry_delay": "1s",
		"session.ttl_minutes":    DefaultSessionTTLMinutes,
		"cache.ttl_seconds":      DefaultCacheTTLSeconds,
		"cache.max_entries":      1000,
		"database.max_conns":     15,
		"database.min_conns":     5,
		"api.listen_port":             8080,
		"api.request_timeout_seconds": DefaultRequestTimeoutSeconds,
		"api.cors.allow_origins":      []string{"*"},
	}, "."), nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "애플리케이션 기본 설정 로드에 실패했습니다")
	}

	// 2. JSON 설정 파일 로드 (기본값 덮어쓰기)
	if err := k.Load(file.Provider(filename), json.Parser()); err != nil {
		if !os.IsNotExist(err) {
			return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일 로드 중 오류가 발생했습니다: '%s'", filename))
		}
	}

	// 3. 환경 변수 로드 (최우선 순위, JSON 설정 덮어쓰기)
	// 예: CARTPILOT_NAVER__CLIENT_ID -> naver.client_id
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	// 4. 구조체 언마샬링
	var appConfig AppConfig
	if err := k.UnmarshalWithConf("", &appConfig, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "설정 데이터를 애플리케이션 구조체로 변환하는데 실패했습니다")
	}

	// 5. 유효성 검사 수행 (정합성 체크)
	if err := appConfig.validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "설정의 유효성 검증에 실패했습니다")
	}

	return &appConfig, nil
}
