package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/darkkaiser/cartpilot-server/internal/service/catalog"
	"github.com/darkkaiser/cartpilot-server/internal/service/llm"
)

const (
	// valueTemperature 가성비 추천 사유 생성 온도
	valueTemperature = 0.5

	// valueDisplayPerQuery 검색어당 조회 상품 수
	valueDisplayPerQuery = 15
)

// 가격대 구분
const (
	TierEntry   = "entry"
	TierMid     = "mid"
	TierPremium = "premium"
)

// tierKorean 가격대의 한국어 표현
var tierKorean = map[string]string{
	TierEntry:   "엔트리",
	TierMid:     "중급형",
	TierPremium: "프리미엄",
}

// ValueAgent 가성비 비교 추천 에이전트입니다.
//
// 정확도순과 가격순 검색 결과를 합쳐 가격 분포를 만들고,
// 엔트리/중급형/프리미엄 세 가격대의 대표 상품을 하나씩 추천합니다.
type ValueAgent struct {
	agentDeps
}

var _ Agent = (*ValueAgent)(nil)

// NewValueAgent 가성비 추천 에이전트를 생성합니다.
func NewValueAgent(searcher catalog.Searcher, provider llm.Provider, profiles ProfileSource) *ValueAgent {
	return &ValueAgent{agentDeps{searcher: searcher, provider: provider, profiles: profiles}}
}

// Intent 담당 의도(VALUE)를 반환합니다.
func (a *ValueAgent) Intent() Intent {
	return IntentValue
}

// Recommend 가격대별 추천을 생성합니다.
func (a *ValueAgent) Recommend(ctx context.Context, userID string, analysis *Analysis) (*AgentResponse, error) {
	item := valueSearchTerm(analysis)
	minPrice, maxPrice := budgetBounds(analysis.Budget)

	reqs := []catalog.SearchRequest{
		{
			Query:         item + " 추천",
			Display:       valueDisplayPerQuery,
			Sort:          catalog.SortSimilarity,
			MinPrice:      minPrice,
			MaxPrice:      maxPrice,
			ExcludeUsed:   analysis.ExcludeUsed,
			ExcludeRental: analysis.ExcludeRental,
		},
		{
			Query:         "가성비 " + item,
			Display:       valueDisplayPerQuery,
			Sort:          catalog.SortPriceAsc,
			MinPrice:      minPrice,
			MaxPrice:      maxPrice,
			ExcludeUsed:   analysis.ExcludeUsed,
			ExcludeRental: analysis.ExcludeRental,
		},
	}

	results, err := a.searcher.SearchMany(ctx, reqs)
	if err != nil {
		return nil, err
	}

	pool := dedupProducts(mergeResults(results))
	if len(pool) == 0 {
		return nil, errNoProducts()
	}

	tiers := partitionTiers(pool)

	prefContext := a.preferenceContext(ctx, userID)
	insights, err := a.tierInsights(ctx, item, tiers, prefContext)
	if err != nil {
		return nil, err
	}

	recommendations := make([]Recommendation, 0, len(tiers))
	for i, t := range tiers {
		recommendations = append(recommendations, Recommendation{
			Tier:          t.tier,
			Card:          newProductCard(t.product, insights[i].reason),
			TierBenefits:  insights[i].benefits,
			TierTradeoffs: insights[i].tradeoffs,
		})
	}

	return &AgentResponse{
		Message:         item + "의 가격대별 추천 상품이에요!",
		Recommendations: recommendations,
		DataSource:      dataSourceNaverShopping,
	}, nil
}

// tierInsight 가격대별 추천 사유와 장단점입니다.
type tierInsight struct {
	reason    string
	benefits  []string
	tradeoffs []string
}

// tierInsights 가격대별 대표 상품의 추천 사유와 장단점을 한 번의 LLM 호출로 생성합니다.
//
// 응답은 가격대 순서와 동일한 길이의 배열이어야 하며, 길이가 맞지 않으면
// ParsingFailed 에러를 반환합니다.
func (a *ValueAgent) tierInsights(ctx context.Context, item string, tiers []tieredProduct, prefContext string) ([]tierInsight, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "아래 상품들은 %s의 가격대별 대표 상품입니다.\n\n", item)
	for i, t := range tiers {
		fmt.Fprintf(&b, "%d. [%s] %s (%d원)\n", i+1, tierKorean[t.tier], t.product.Title, t.product.Price)
	}
	if prefContext != "" {
		b.WriteString("\n")
		b.WriteString(prefContext)
	}
	b.WriteString("\n각 가격대에 대해 추천 사유 한 문장과 이 가격대를 선택할 때의 장점/감수할 점을 작성하고, 아래 JSON 형식으로만 응답하세요.\n")
	b.WriteString(`{"tiers": [{"reason": "...", "benefits": ["..."], "tradeoffs": ["..."]}]}`)

	response, err := a.provider.Complete(ctx, llm.Request{
		SystemPrompt: "당신은 쇼핑 추천 도우미입니다. 반드시 요청된 JSON 형식으로만 응답하세요.",
		UserPrompt:   b.String(),
		Temperature:  valueTemperature,
		JSONMode:     true,
	})
	if err != nil {
		return nil, err
	}

	parsed, err := llm.ExtractJSON(response)
	if err != nil {
		return nil, err
	}

	raw := parsed.Get("tiers").Array()
	if len(raw) != len(tiers) {
		return nil, apperrors.Newf(apperrors.ParsingFailed,
			"가격대별 추천 응답의 개수가 맞지 않습니다 (기대: %d, 실제: %d)", len(tiers), len(raw))
	}

	insights := make([]tierInsight, len(raw))
	for i, entry := range raw {
		insights[i].reason = entry.Get("reason").String()
		for _, v := range entry.Get("benefits").Array() {
			insights[i].benefits = append(insights[i].benefits, v.String())
		}
		for _, v := range entry.Get("tradeoffs").Array() {
			insights[i].tradeoffs = append(insights[i].tradeoffs, v.String())
		}
	}
	return insights, nil
}

// valueSearchTerm 검색에 사용할 품목을 결정합니다.
// 추출된 품목이 없으면 발화 원문을 그대로 사용합니다.
func valueSearchTerm(analysis *Analysis) string {
	if len(analysis.Items) > 0 {
		return analysis.Items[0]
	}
	if analysis.Category != "" {
		return analysis.Category
	}
	return strings.TrimSpace(analysis.RawMessage)
}

// tieredProduct 가격대와 대표 상품의 쌍입니다.
type tieredProduct struct {
	tier    string
	product *catalog.Product
}

// partitionTiers 상품들을 가격 기준으로 엔트리/중급형/프리미엄 세 구간으로
// 나누고 구간별 대표 상품을 선정합니다.
//
// 동일 가격의 상품은 하나로 간주하며(가격 중복 제거), 구간 경계가 겹칠
// 만큼 상품이 적으면 가장 가까운 서로 다른 가격의 상품으로 대체합니다.
// 상품이 전혀 없으면 빈 슬라이스를 반환합니다.
func partitionTiers(products []*catalog.Product) []tieredProduct {
	if len(products) == 0 {
		return nil
	}

	// 가격 오름차순 정렬 후 동일 가격 제거
	sorted := make([]*catalog.Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price < sorted[j].Price
	})

	distinct := sorted[:1]
	for _, p := range sorted[1:] {
		if p.Price != distinct[len(distinct)-1].Price {
			distinct = append(distinct, p)
		}
	}

	n := len(distinct)
	switch n {
	case 1:
		return []tieredProduct{{TierEntry, distinct[0]}}
	case 2:
		return []tieredProduct{
			{TierEntry, distinct[0]},
			{TierPremium, distinct[1]},
		}
	}

	// 세 구간의 중앙에서 대표 상품 선정
	entryEnd, midEnd := n/3, n*2/3
	entryIdx := entryEnd / 2
	midIdx := entryEnd + (midEnd-entryEnd)/2
	premiumIdx := midEnd + (n-midEnd)/2

	// 경계 계산이 같은 상품을 가리키면 인접한 다른 상품으로 대체
	if midIdx <= entryIdx {
		midIdx = entryIdx + 1
	}
	if premiumIdx <= midIdx {
		premiumIdx = midIdx + 1
	}

	return []tieredProduct{
		{TierEntry, distinct[entryIdx]},
		{TierMid, distinct[midIdx]},
		{TierPremium, distinct[premiumIdx]},
	}
}
