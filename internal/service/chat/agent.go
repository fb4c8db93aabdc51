package chat

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/darkkaiser/cartpilot-server/internal/pkg/textparse"
	"github.com/darkkaiser/cartpilot-server/internal/service/catalog"
	"github.com/darkkaiser/cartpilot-server/internal/service/llm"
	"github.com/darkkaiser/cartpilot-server/internal/service/preference"
	applog "github.com/darkkaiser/cartpilot-server/pkg/log"
)

// dataSourceNaverShopping 추천에 사용된 상품 데이터의 출처 표기
const dataSourceNaverShopping = "네이버 쇼핑"

// Agent 의도별 추천 생성기의 공통 인터페이스입니다.
type Agent interface {
	// Intent 이 에이전트가 담당하는 의도를 반환합니다.
	Intent() Intent

	// Recommend 분석 결과를 바탕으로 추천을 생성합니다.
	Recommend(ctx context.Context, userID string, analysis *Analysis) (*AgentResponse, error)
}

// AgentResponse 에이전트가 생성한 추천 결과입니다.
type AgentResponse struct {
	// Message 추천에 대한 한국어 요약 문구
	Message string `json:"message,omitempty"`

	// Recommendations 추천 항목 목록
	Recommendations []Recommendation `json:"recommendations,omitempty"`

	// Disclaimer 추천 결과에 대한 주의 문구
	Disclaimer string `json:"disclaimer,omitempty"`

	// DataSource 추천에 사용된 데이터 출처
	DataSource string `json:"data_source,omitempty"`
}

// Recommendation 추천 응답의 단일 항목입니다.
// 의도에 따라 상품 카드, 가격대별 추천, 묶음 조합, 리뷰 분석 중 하나를 담습니다.
type Recommendation struct {
	Card   *ProductCard    `json:"card,omitempty"`
	Tier   string          `json:"tier,omitempty"` // VALUE: entry, mid, premium
	Bundle *BundleCombo    `json:"bundle,omitempty"`
	Review *ReviewAnalysis `json:"review,omitempty"`

	// TierBenefits / TierTradeoffs 해당 가격대를 선택할 때의 장점과 감수할 점 (VALUE)
	TierBenefits  []string `json:"tier_benefits,omitempty"`
	TierTradeoffs []string `json:"tier_tradeoffs,omitempty"`

	// Trend 트렌드 추천 항목의 상승세 정보 (TREND)
	Trend *TrendInsight `json:"trend,omitempty"`
}

// ProfileSource 에이전트 프롬프트에 반영할 사용자 취향 프로필의 공급원입니다.
type ProfileSource interface {
	Analyze(ctx context.Context, userID string) (*preference.Profile, error)
}

// agentDeps 모든 에이전트가 공유하는 의존성입니다.
type agentDeps struct {
	searcher catalog.Searcher
	provider llm.Provider
	profiles ProfileSource
}

// preferenceContext 사용자 취향 프로필의 프롬프트 컨텍스트를 조회합니다.
//
// 프로필 조회 실패는 추천 실패로 이어지지 않도록 경고 로그만 남기고
// 빈 문자열을 반환합니다.
func (d *agentDeps) preferenceContext(ctx context.Context, userID string) string {
	if d.profiles == nil || userID == "" {
		return ""
	}

	profile, err := d.profiles.Analyze(ctx, userID)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"user_id": userID,
			"error":   err,
		}).Warn("취향 프로필 조회 실패: 취향 정보 없이 추천을 생성합니다")
		return ""
	}

	return profile.PromptContext()
}

// errMsgNoProducts 검색 결과가 비었을 때의 사용자 안내 메시지
const errMsgNoProducts = "조건에 맞는 상품을 찾지 못했어요. 검색 조건을 바꿔서 다시 시도해 주세요."

// errNoProducts 후보 상품이 하나도 없을 때 반환하는 에러를 생성합니다.
// 후보가 없으면 LLM 호출 없이 이 에러로 즉시 종료합니다.
func errNoProducts() error {
	return apperrors.New(apperrors.NotFound, errMsgNoProducts)
}

// generateReasons 추천 상품들의 추천 사유를 한 번의 LLM 호출로 생성합니다.
//
// 응답은 상품 순서와 동일한 길이의 사유 배열이어야 합니다.
// 호출 실패는 원인 에러를 그대로 전파하고, 응답이 JSON이 아니거나
// 길이가 맞지 않으면 ParsingFailed 에러를 반환합니다.
func (d *agentDeps) generateReasons(ctx context.Context, temperature float64, instruction string, titles []string, prefContext string) ([]string, error) {
	if len(titles) == 0 {
		return nil, errNoProducts()
	}

	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\n상품 목록:\n")
	for i, title := range titles {
		fmt.Fprintf(&b, "%d. %s\n", i+1, title)
	}
	if prefContext != "" {
		b.WriteString("\n")
		b.WriteString(prefContext)
	}
	b.WriteString("\n각 상품에 대해 한 문장의 추천 사유를 작성하고, 아래 JSON 형식으로만 응답하세요.\n")
	b.WriteString(`{"reasons": ["상품 1의 사유", "상품 2의 사유", ...]}`)

	response, err := d.provider.Complete(ctx, llm.Request{
		SystemPrompt: "당신은 쇼핑 추천 도우미입니다. 반드시 요청된 JSON 형식으로만 응답하세요.",
		UserPrompt:   b.String(),
		Temperature:  temperature,
		JSONMode:     true,
	})
	if err != nil {
		return nil, err
	}

	parsed, err := llm.ExtractJSON(response)
	if err != nil {
		return nil, err
	}

	raw := parsed.Get("reasons").Array()
	if len(raw) != len(titles) {
		return nil, apperrors.Newf(apperrors.ParsingFailed,
			"추천 사유 응답의 개수가 맞지 않습니다 (기대: %d, 실제: %d)", len(titles), len(raw))
	}

	reasons := make([]string, len(raw))
	for i, r := range raw {
		reasons[i] = r.String()
	}
	return reasons, nil
}

// budgetBounds 예산 정보에서 가격 필터 범위를 계산합니다.
//
// 유동성 여부와 무관하게 예산의 ±20% 허용 범위(Min~Max)를 사용합니다.
// 유동성 표시는 예산 의미 해석용 메타데이터일 뿐 범위를 좁히지 않습니다.
// 예산이 없으면 (0, 0)을 반환하며 이는 필터링하지 않음을 의미합니다.
func budgetBounds(budget *textparse.Budget) (minPrice, maxPrice int) {
	if budget == nil {
		return 0, 0
	}
	return budget.Min, budget.Max
}

// dedupProducts 상품 ID 기준으로 중복을 제거합니다. 순서는 유지됩니다.
func dedupProducts(products []*catalog.Product) []*catalog.Product {
	seen := make(map[string]struct{}, len(products))
	deduped := make([]*catalog.Product, 0, len(products))

	for _, p := range products {
		if _, dup := seen[p.ProductID]; dup {
			continue
		}
		seen[p.ProductID] = struct{}{}
		deduped = append(deduped, p)
	}
	return deduped
}

// mergeResults 다중 검색 결과를 하나의 목록으로 합칩니다. 실패한 검색(nil)은 건너뜁니다.
func mergeResults(results [][]*catalog.Product) []*catalog.Product {
	var merged []*catalog.Product
	for _, products := range results {
		merged = append(merged, products...)
	}
	return merged
}
