// Package llm 공급자에 독립적인 LLM 호출 게이트웨이를 제공합니다.
//
// OpenAI와 Google Gemini를 지원하며, 사용할 공급자는 서비스 시작 시
// 설정으로 한 번 결정됩니다.
package llm

import (
	"context"
	"strings"

	"github.com/darkkaiser/cartpilot-server/internal/config"
	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
)

// 공급자별 기본 모델
const (
	defaultOpenAIModel = "gpt-4o-mini"
	defaultGeminiModel = "gemini-1.5-flash"
)

// Request 단일 LLM 호출 요청입니다.
type Request struct {
	// SystemPrompt 시스템 프롬프트 (역할/출력 형식 지시)
	SystemPrompt string

	// UserPrompt 사용자 프롬프트
	UserPrompt string

	// Temperature 샘플링 온도 (0.0 ~ 1.0)
	Temperature float64

	// JSONMode JSON 객체 응답을 강제할지 여부
	JSONMode bool
}

// Provider LLM 호출 기능의 추상 인터페이스입니다.
type Provider interface {
	// Name 공급자 식별자를 반환합니다. (예: "openai", "gemini")
	Name() string

	// Complete 요청을 수행하고 모델의 텍스트 응답을 반환합니다.
	Complete(ctx context.Context, req Request) (string, error)
}

// modelProvider langchaingo 모델을 감싸는 공통 구현체입니다.
type modelProvider struct {
	name  string
	model llms.Model
}

var _ Provider = (*modelProvider)(nil)

// New 설정에 지정된 공급자의 Provider를 생성합니다.
func New(ctx context.Context, cfg *config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		model, err := openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(defaultOpenAIModel),
		)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.System, "OpenAI 클라이언트 초기화에 실패했습니다")
		}
		return &modelProvider{name: config.ProviderOpenAI, model: model}, nil

	case config.ProviderGemini:
		model, err := googleai.New(
			ctx,
			googleai.WithAPIKey(cfg.GoogleAPIKey),
			googleai.WithDefaultModel(defaultGeminiModel),
		)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.System, "Gemini 클라이언트 초기화에 실패했습니다")
		}
		return &modelProvider{name: config.ProviderGemini, model: model}, nil

	default:
		return nil, apperrors.Newf(apperrors.InvalidInput, "지원하지 않는 LLM 공급자입니다: '%s'", cfg.Provider)
	}
}

// Name 공급자 식별자를 반환합니다.
func (p *modelProvider) Name() string {
	return p.name
}

// Complete 요청을 수행하고 모델의 텍스트 응답을 반환합니다.
func (p *modelProvider) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]llms.MessageContent, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, req.SystemPrompt))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, req.UserPrompt))

	opts := []llms.CallOption{
		llms.WithTemperature(req.Temperature),
	}
	if req.JSONMode {
		opts = append(opts, llms.WithJSONMode())
	}

	resp, err := p.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", classifyProviderError(err)
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.New(apperrors.ExecutionFailed, "LLM이 빈 응답을 반환했습니다")
	}

	return resp.Choices[0].Content, nil
}

// classifyProviderError 공급자 에러를 애플리케이션 에러 타입으로 분류합니다.
func classifyProviderError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case apperrors.RootCause(err) == context.DeadlineExceeded:
		return apperrors.Wrap(err, apperrors.Timeout, "LLM 호출 시간이 초과되었습니다")

	case strings.Contains(err.Error(), "429") || strings.Contains(strings.ToLower(err.Error()), "rate limit"):
		return apperrors.Wrap(err, apperrors.RateLimited, "LLM 호출 한도를 초과했습니다")

	default:
		return apperrors.Wrap(err, apperrors.Unavailable, "LLM 호출에 실패했습니다")
	}
}
