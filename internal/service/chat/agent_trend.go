package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/darkkaiser/cartpilot-server/internal/pkg/textparse"
	"github.com/darkkaiser/cartpilot-server/internal/service/catalog"
	"github.com/darkkaiser/cartpilot-server/internal/service/llm"
)

const (
	// trendTemperature 트렌드 추천 사유 생성 온도
	trendTemperature = 0.7

	// trendDisplayPerQuery 검색어당 조회 상품 수
	trendDisplayPerQuery = 10

	// trendMaxCards 응답에 포함하는 최대 카드 수
	trendMaxCards = 6

	// trendSeasonalQueries 계절 검색어 사용 수
	trendSeasonalQueries = 2
)

// trendDisclaimer 트렌드 추천 응답에 항상 포함되는 주의 문구
const trendDisclaimer = "트렌드는 빠르게 변할 수 있습니다. 인기 상품이 최저가 상품은 아닙니다."

// trendDefaultCategory 카테고리 미지정 시 기본 검색 대상
const trendDefaultCategory = "인기상품"

// TrendInsight 트렌드 추천 항목의 상승세 정보입니다.
type TrendInsight struct {
	// GrowthRate 상승세 표현 (예: "급상승", "꾸준한 인기")
	GrowthRate string `json:"growth_rate,omitempty"`

	// Period 상승세가 관측되는 기간 (예: "최근 2주")
	Period string `json:"period,omitempty"`

	// TargetSegment 주 수요층 (예: "20~30대 직장인")
	TargetSegment string `json:"target_segment,omitempty"`
}

// TrendAgent 트렌드/인기 상품 추천 에이전트입니다.
//
// 최신 등록순(date) 검색으로 요즘 올라오는 상품을 수집하고,
// 현재 계절에 맞는 키워드를 검색어에 반영합니다.
type TrendAgent struct {
	agentDeps

	// now 테스트에서 계절 판정을 제어하기 위해 주입 가능합니다.
	now func() time.Time
}

var _ Agent = (*TrendAgent)(nil)

// NewTrendAgent 트렌드 추천 에이전트를 생성합니다.
func NewTrendAgent(searcher catalog.Searcher, provider llm.Provider, profiles ProfileSource) *TrendAgent {
	return &TrendAgent{
		agentDeps: agentDeps{searcher: searcher, provider: provider, profiles: profiles},
		now:       time.Now,
	}
}

// Intent 담당 의도(TREND)를 반환합니다.
func (a *TrendAgent) Intent() Intent {
	return IntentTrend
}

// Recommend 트렌드 추천을 생성합니다.
func (a *TrendAgent) Recommend(ctx context.Context, userID string, analysis *Analysis) (*AgentResponse, error) {
	category := trendCategory(analysis)
	season := currentSeason(a.now())

	queries := []string{"인기 " + category, category + " 추천"}
	for i, keyword := range textparse.SeasonKeywords(season) {
		if i >= trendSeasonalQueries {
			break
		}
		queries = append(queries, keyword+" "+category)
	}

	reqs := make([]catalog.SearchRequest, 0, len(queries))
	for _, query := range queries {
		reqs = append(reqs, catalog.SearchRequest{
			Query:         query,
			Display:       trendDisplayPerQuery,
			Sort:          catalog.SortDate,
			ExcludeUsed:   analysis.ExcludeUsed,
			ExcludeRental: analysis.ExcludeRental,
		})
	}

	results, err := a.searcher.SearchMany(ctx, reqs)
	if err != nil {
		return nil, err
	}

	selected := dedupProducts(mergeResults(results))
	if len(selected) == 0 {
		return nil, errNoProducts()
	}
	if len(selected) > trendMaxCards {
		selected = selected[:trendMaxCards]
	}

	prefContext := a.preferenceContext(ctx, userID)
	insights, err := a.trendInsights(ctx, category, selected, prefContext)
	if err != nil {
		return nil, err
	}

	recommendations := make([]Recommendation, 0, len(selected))
	for i, p := range selected {
		recommendations = append(recommendations, Recommendation{
			Card: newProductCard(p, insights[i].reason),
			Trend: &TrendInsight{
				GrowthRate:    insights[i].growthRate,
				Period:        insights[i].period,
				TargetSegment: insights[i].targetSegment,
			},
		})
	}

	return &AgentResponse{
		Message:         "요즘 주목받는 " + category + " 상품이에요!",
		Recommendations: recommendations,
		Disclaimer:      trendDisclaimer,
		DataSource:      dataSourceNaverShopping,
	}, nil
}

// trendItemInsight 트렌드 상품별 추천 사유와 상승세 정보입니다.
type trendItemInsight struct {
	reason        string
	growthRate    string
	period        string
	targetSegment string
}

// trendInsights 트렌드 상품별 주목 사유와 상승세 정보를 한 번의 LLM 호출로 생성합니다.
func (a *TrendAgent) trendInsights(ctx context.Context, category string, products []*catalog.Product, prefContext string) ([]trendItemInsight, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "아래 상품들은 요즘 새로 등록되는 %s 상품들입니다.\n\n", category)
	for i, p := range products {
		fmt.Fprintf(&b, "%d. %s (%d원)\n", i+1, p.Title, p.Price)
	}
	if prefContext != "" {
		b.WriteString("\n")
		b.WriteString(prefContext)
	}
	b.WriteString("\n각 상품에 대해 왜 주목받는지 한 문장으로 설명하고, 상승세 표현과 기간, 주 수요층을 함께 작성하세요. 아래 JSON 형식으로만 응답하세요.\n")
	b.WriteString(`{"products": [{"reason": "...", "growth_rate": "...", "period": "...", "target_segment": "..."}]}`)

	response, err := a.provider.Complete(ctx, llm.Request{
		SystemPrompt: "당신은 쇼핑 추천 도우미입니다. 반드시 요청된 JSON 형식으로만 응답하세요.",
		UserPrompt:   b.String(),
		Temperature:  trendTemperature,
		JSONMode:     true,
	})
	if err != nil {
		return nil, err
	}

	parsed, err := llm.ExtractJSON(response)
	if err != nil {
		return nil, err
	}

	raw := parsed.Get("products").Array()
	if len(raw) != len(products) {
		return nil, apperrors.Newf(apperrors.ParsingFailed,
			"트렌드 추천 응답의 개수가 맞지 않습니다 (기대: %d, 실제: %d)", len(products), len(raw))
	}

	insights := make([]trendItemInsight, len(raw))
	for i, entry := range raw {
		insights[i] = trendItemInsight{
			reason:        entry.Get("reason").String(),
			growthRate:    entry.Get("growth_rate").String(),
			period:        entry.Get("period").String(),
			targetSegment: entry.Get("target_segment").String(),
		}
	}
	return insights, nil
}

// trendCategory 트렌드 검색 대상 카테고리를 결정합니다.
func trendCategory(analysis *Analysis) string {
	if analysis.Category != "" {
		return analysis.Category
	}
	if len(analysis.Items) > 0 {
		return analysis.Items[0]
	}
	return trendDefaultCategory
}

// currentSeason 월 기준 계절을 판정합니다.
// (3~5월: 봄, 6~8월: 여름, 9~11월: 가을, 나머지: 겨울)
func currentSeason(t time.Time) string {
	switch t.Month() {
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	case time.September, time.October, time.November:
		return "fall"
	default:
		return "winter"
	}
}
