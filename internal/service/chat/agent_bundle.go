package chat

import (
	"context"
	"sort"
	"strings"

	"github.com/darkkaiser/cartpilot-server/internal/service/catalog"
	"github.com/darkkaiser/cartpilot-server/internal/service/llm"
)

const (
	// bundleTemperature 묶음 추천 사유 생성 온도
	bundleTemperature = 0.5

	// bundleMaxItems 한 번에 조합할 수 있는 최대 품목 수
	bundleMaxItems = 5

	// bundleDisplayPerItem 품목당 조회 상품 수
	bundleDisplayPerItem = 10

	// bundleDefaultBudget 예산 미지정 시 기본 예산 (원)
	bundleDefaultBudget = 1_000_000

	// bundleMaxAlternatives 품목당 제시하는 대안 상품의 최대 수
	bundleMaxAlternatives = 2
)

// 묶음 조합 식별자
const (
	comboCheapest = "A"
	comboBalanced = "B"
	comboPopular  = "C"
)

// comboLabels 조합 식별자의 한국어 표현
var comboLabels = map[string]string{
	comboCheapest: "최저가 조합",
	comboBalanced: "균형 조합",
	comboPopular:  "인기 조합",
}

// BundleItem 묶음 조합에 포함된 품목별 상품입니다.
type BundleItem struct {
	Item         string         `json:"item"`
	Card         *ProductCard   `json:"card"`
	Alternatives []*ProductCard `json:"alternatives,omitempty"`
}

// BundleCombo 품목별 상품 하나씩으로 구성된 묶음 조합입니다.
type BundleCombo struct {
	Combo     string       `json:"combo"` // A, B, C
	Label     string       `json:"label"` // 최저가 조합 등
	Items     []BundleItem `json:"items"`
	Total     int          `json:"total"`
	TotalText string       `json:"total_text"`
	Budget    int          `json:"budget"`
	BudgetFit bool         `json:"budget_fit"`

	// Comment 조합에 대한 한 줄 설명
	Comment string `json:"comment,omitempty"`
}

// BundleAgent 묶음 구매 조합 추천 에이전트입니다.
//
// 품목별로 상품을 검색한 후 최저가/균형/인기 세 가지 조합을 구성하고,
// 각 조합의 총액과 예산 적합 여부를 계산합니다.
type BundleAgent struct {
	agentDeps
}

var _ Agent = (*BundleAgent)(nil)

// NewBundleAgent 묶음 추천 에이전트를 생성합니다.
func NewBundleAgent(searcher catalog.Searcher, provider llm.Provider, profiles ProfileSource) *BundleAgent {
	return &BundleAgent{agentDeps{searcher: searcher, provider: provider, profiles: profiles}}
}

// Intent 담당 의도(BUNDLE)를 반환합니다.
func (a *BundleAgent) Intent() Intent {
	return IntentBundle
}

// Recommend 묶음 구매 조합을 생성합니다.
func (a *BundleAgent) Recommend(ctx context.Context, userID string, analysis *Analysis) (*AgentResponse, error) {
	items := analysis.Items
	if len(items) > bundleMaxItems {
		items = items[:bundleMaxItems]
	}

	budget := bundleDefaultBudget
	if analysis.Budget != nil {
		budget = analysis.Budget.Total
	}

	reqs := make([]catalog.SearchRequest, 0, len(items))
	for _, item := range items {
		reqs = append(reqs, catalog.SearchRequest{
			Query:         item,
			Display:       bundleDisplayPerItem,
			ExcludeUsed:   analysis.ExcludeUsed,
			ExcludeRental: analysis.ExcludeRental,
		})
	}

	results, err := a.searcher.SearchMany(ctx, reqs)
	if err != nil {
		return nil, err
	}

	// 품목별로 가격 오름차순 정렬된 후보 목록 준비
	pools := make([]itemPool, 0, len(items))
	for i, item := range items {
		products := dedupProducts(results[i])
		if len(products) == 0 {
			continue
		}
		sort.SliceStable(products, func(a, b int) bool {
			return products[a].Price < products[b].Price
		})
		pools = append(pools, itemPool{item: item, products: products})
	}

	if len(pools) == 0 {
		return nil, errNoProducts()
	}

	combos := []*BundleCombo{
		buildCombo(comboCheapest, pools, pickCheapest, budget),
		buildCombo(comboBalanced, pools, pickBalanced, budget),
		buildCombo(comboPopular, pools, pickPopular, budget),
	}

	// 조합별 한 줄 설명 생성
	summaries := make([]string, 0, len(combos))
	for _, combo := range combos {
		var names []string
		for _, it := range combo.Items {
			names = append(names, it.Card.Title)
		}
		summaries = append(summaries, combo.Label+" (총 "+combo.TotalText+"): "+strings.Join(names, " + "))
	}

	prefContext := a.preferenceContext(ctx, userID)
	comments, err := a.generateReasons(ctx, bundleTemperature,
		"아래는 묶음 구매 조합들입니다. 각 조합의 특징을 설명해 주세요.", summaries, prefContext)
	if err != nil {
		return nil, err
	}
	for i, combo := range combos {
		combo.Comment = comments[i]
	}

	recommendations := make([]Recommendation, 0, len(combos))
	for _, combo := range combos {
		recommendations = append(recommendations, Recommendation{Bundle: combo})
	}

	return &AgentResponse{
		Message:         strings.Join(items, ", ") + " 묶음 구매 조합이에요!",
		Recommendations: recommendations,
		DataSource:      dataSourceNaverShopping,
	}, nil
}

// itemPool 품목과 가격 오름차순으로 정렬된 후보 상품 목록입니다.
type itemPool struct {
	item     string
	products []*catalog.Product
}

// pickFunc 가격 오름차순 후보 목록에서 조합에 넣을 상품의 인덱스를 선택합니다.
type pickFunc func(products []*catalog.Product) int

// pickCheapest 최저가 상품을 선택합니다.
func pickCheapest(products []*catalog.Product) int {
	return 0
}

// pickBalanced 중간 가격대 상품을 선택합니다.
func pickBalanced(products []*catalog.Product) int {
	return len(products) / 2
}

// pickPopular 브랜드와 판매처 정보가 충실한 상품을 선호하여 선택합니다.
// 점수가 같으면 더 저렴한 상품을 선택합니다.
func pickPopular(products []*catalog.Product) int {
	bestIdx, bestScore := 0, -1
	for i, p := range products {
		score := 0
		if p.Brand != "" {
			score += 2
		}
		if p.Mall != "" {
			score++
		}
		if score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	return bestIdx
}

// buildCombo 품목별 후보에서 상품을 하나씩 선택하여 조합을 구성합니다.
func buildCombo(combo string, pools []itemPool, pick pickFunc, budget int) *BundleCombo {
	result := &BundleCombo{
		Combo:  combo,
		Label:  comboLabels[combo],
		Budget: budget,
	}

	for _, pool := range pools {
		idx := pick(pool.products)
		selected := pool.products[idx]

		// 선택된 상품을 제외한 저렴한 순 대안 목록
		var alternatives []*ProductCard
		for i, p := range pool.products {
			if i == idx {
				continue
			}
			alternatives = append(alternatives, newProductCard(p, ""))
			if len(alternatives) >= bundleMaxAlternatives {
				break
			}
		}

		result.Items = append(result.Items, BundleItem{
			Item:         pool.item,
			Card:         newProductCard(selected, ""),
			Alternatives: alternatives,
		})
		result.Total += selected.Price
	}

	result.TotalText = formatPriceText(result.Total)
	result.BudgetFit = result.Total <= budget

	return result
}
