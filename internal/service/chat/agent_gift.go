package chat

import (
	"context"
	"strings"

	"github.com/darkkaiser/cartpilot-server/internal/pkg/textparse"
	"github.com/darkkaiser/cartpilot-server/internal/service/catalog"
	"github.com/darkkaiser/cartpilot-server/internal/service/llm"
)

const (
	// giftTemperature 선물 추천 사유 생성 온도 (다양한 표현 허용)
	giftTemperature = 0.7

	// giftMaxQueries 조립하는 검색어의 최대 수
	giftMaxQueries = 5

	// giftUsedQueries 실제로 검색에 사용하는 검색어 수
	giftUsedQueries = 3

	// giftDisplayPerQuery 검색어당 조회 상품 수
	giftDisplayPerQuery = 10

	// giftMaxCards 응답에 포함하는 최대 카드 수
	giftMaxCards = 6
)

// giftFallbackQueries 수신인 정보로 검색어를 만들지 못했을 때 사용하는 기본 검색어
var giftFallbackQueries = []string{"인기선물", "베스트선물", "추천선물"}

// relationKorean 관계 코드의 한국어 검색어 표현
var relationKorean = map[string]string{
	"boyfriend":       "남자친구",
	"girlfriend":      "여자친구",
	"friend":          "친구",
	"colleague":       "직장동료",
	"boss":            "상사",
	"parent":          "부모님",
	"mother":          "어머니",
	"father":          "아버지",
	"wife":            "아내",
	"husband":         "남편",
	"teacher":         "선생님",
	"professor":       "교수님",
	"child":           "아이",
	"son":             "아들",
	"daughter":        "딸",
	"sibling":         "형제자매",
	"younger_sibling": "동생",
	"older_brother":   "형",
	"older_sister":    "누나",
	"partner":         "연인",
}

// GiftAgent 선물 추천 에이전트입니다.
//
// 수신인의 관계, 연령대, 성별, 상황 정보로 검색어를 조립하여 상품을
// 검색하고, 예산 범위(±20% 허용 범위)에 맞는 선물 후보를 추천합니다.
type GiftAgent struct {
	agentDeps
}

var _ Agent = (*GiftAgent)(nil)

// NewGiftAgent 선물 추천 에이전트를 생성합니다.
func NewGiftAgent(searcher catalog.Searcher, provider llm.Provider, profiles ProfileSource) *GiftAgent {
	return &GiftAgent{agentDeps{searcher: searcher, provider: provider, profiles: profiles}}
}

// Intent 담당 의도(GIFT)를 반환합니다.
func (a *GiftAgent) Intent() Intent {
	return IntentGift
}

// Recommend 선물 추천을 생성합니다.
func (a *GiftAgent) Recommend(ctx context.Context, userID string, analysis *Analysis) (*AgentResponse, error) {
	queries := buildGiftQueries(analysis)
	minPrice, maxPrice := budgetBounds(analysis.Budget)

	reqs := make([]catalog.SearchRequest, 0, giftUsedQueries)
	for _, query := range queries[:min(len(queries), giftUsedQueries)] {
		reqs = append(reqs, catalog.SearchRequest{
			Query:         query,
			Display:       giftDisplayPerQuery,
			MinPrice:      minPrice,
			MaxPrice:      maxPrice,
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
	if len(selected) > giftMaxCards {
		selected = selected[:giftMaxCards]
	}

	titles := make([]string, 0, len(selected))
	for _, p := range selected {
		titles = append(titles, p.Title)
	}

	prefContext := a.preferenceContext(ctx, userID)
	reasons, err := a.generateReasons(ctx, giftTemperature,
		"아래 상품들을 선물로 추천하는 이유를 작성해 주세요.", titles, prefContext)
	if err != nil {
		return nil, err
	}

	recommendations := make([]Recommendation, 0, len(selected))
	for i, p := range selected {
		recommendations = append(recommendations, Recommendation{Card: newProductCard(p, reasons[i])})
	}

	return &AgentResponse{
		Message:         giftMessage(analysis),
		Recommendations: recommendations,
		DataSource:      dataSourceNaverShopping,
	}, nil
}

// buildGiftQueries 수신인 정보로 선물 검색어를 조립합니다. (최대 5개)
func buildGiftQueries(analysis *Analysis) []string {
	var queries []string

	r := analysis.Recipient

	// 연령대 + 성별 조합 (예: "20대 여자 선물")
	if r.AgeGroup != "" && r.GenderKorean() != "" {
		age := strings.TrimSuffix(r.AgeGroup, "s") + "대"
		queries = append(queries, age+" "+r.GenderKorean()+" 선물")
	}

	// 상황 (예: "집들이 선물")
	if occasion := textparse.OccasionKorean(r.Occasion); occasion != "" {
		queries = append(queries, occasion+" 선물")
	}

	// 관계 (예: "직장동료 선물")
	if relation := relationKorean[r.Relation]; relation != "" {
		queries = append(queries, relation+" 선물")
	}

	// 언급된 품목 (예: "텀블러 선물")
	for _, item := range analysis.Items {
		queries = append(queries, item+" 선물")
		if len(queries) >= giftMaxQueries {
			break
		}
	}

	if len(queries) > giftMaxQueries {
		queries = queries[:giftMaxQueries]
	}

	if len(queries) == 0 {
		return giftFallbackQueries
	}

	return queries
}

// giftMessage 추천 응답의 한국어 요약 문구를 생성합니다.
func giftMessage(analysis *Analysis) string {
	if relation := relationKorean[analysis.Recipient.Relation]; relation != "" {
		return relation + "에게 드릴 선물을 추천해 드릴게요!"
	}
	return "선물 추천 상품을 찾아봤어요!"
}
