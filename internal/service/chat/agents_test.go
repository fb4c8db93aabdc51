package chat

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/darkkaiser/cartpilot-server/internal/pkg/textparse"
	"github.com/darkkaiser/cartpilot-server/internal/service/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGiftQueries(t *testing.T) {
	tests := []struct {
		name     string
		analysis *Analysis
		expected []string
	}{
		{
			name: "연령대 성별 상황 관계 조합",
			analysis: &Analysis{
				Intent: IntentGift,
				Recipient: textparse.Recipient{
					Relation: "colleague",
					Gender:   "female",
					AgeGroup: "20s",
					Occasion: "birthday",
				},
			},
			expected: []string{"20대 여자 선물", "생일 선물", "직장동료 선물"},
		},
		{
			name: "퇴사 상황과 동료 관계",
			analysis: &Analysis{
				Intent: IntentGift,
				Recipient: textparse.Recipient{
					Relation: "colleague",
					Occasion: "farewell",
				},
			},
			expected: []string{"퇴사 선물", "직장동료 선물"},
		},
		{
			name: "품목 포함",
			analysis: &Analysis{
				Intent:    IntentGift,
				Recipient: recipientWithRelation("friend"),
				Items:     []string{"텀블러"},
			},
			expected: []string{"친구 선물", "텀블러 선물"},
		},
		{
			name:     "정보 없음 폴백",
			analysis: &Analysis{Intent: IntentGift},
			expected: []string{"인기선물", "베스트선물", "추천선물"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildGiftQueries(tt.analysis))
		})
	}
}

func TestBuildGiftQueries_최대5개(t *testing.T) {
	analysis := &Analysis{
		Intent: IntentGift,
		Recipient: textparse.Recipient{
			Relation: "friend",
			Gender:   "male",
			AgeGroup: "30s",
			Occasion: "birthday",
		},
		Items: []string{"키보드", "마우스", "모니터", "이어폰"},
	}

	queries := buildGiftQueries(analysis)

	assert.LessOrEqual(t, len(queries), giftMaxQueries)
}

func TestGiftAgent_Recommend(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.setProducts("친구 선물",
		product("p1", "텀블러 A", 45_000),
		product("p2", "텀블러 B", 55_000),
		product("p3", "무드등", 200_000), // 허용 범위 초과
		product("p4", "디퓨저", 1_000),   // 허용 범위 미만
		product("p5", "머그컵", 42_000),
	)

	provider := &fakeProvider{responses: []string{
		`{"reasons": ["사유 1", "사유 2", "사유 3"]}`,
	}}

	agent := NewGiftAgent(searcher, provider, &fakeProfiles{})

	analysis := &Analysis{
		Intent:    IntentGift,
		Recipient: recipientWithRelation("friend"),
		Budget:    budgetOf(50_000),
	}

	response, err := agent.Recommend(context.Background(), "user-1", analysis)
	require.NoError(t, err)

	// 검색 요청에 예산의 ±20% 허용 범위가 전달되어야 한다
	require.NotEmpty(t, searcher.requests)
	assert.Equal(t, 40_000, searcher.requests[0].MinPrice)
	assert.Equal(t, 60_000, searcher.requests[0].MaxPrice)

	// 허용 범위(4만원~6만원)를 벗어난 상품은 제외되어야 한다
	require.Len(t, response.Recommendations, 3)
	for i, rec := range response.Recommendations {
		require.NotNil(t, rec.Card)
		assert.GreaterOrEqual(t, rec.Card.Price, 40_000)
		assert.LessOrEqual(t, rec.Card.Price, 60_000)
		assert.NotEmpty(t, rec.Card.Reason, "card %d", i)
		assert.NotEmpty(t, rec.Card.PriceText)
	}

	// 추천 사유는 LLM 응답 순서대로 부여된다
	assert.Equal(t, "사유 1", response.Recommendations[0].Card.Reason)
}

func TestGiftAgent_검색결과없음(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.setProducts("친구 선물",
		product("p1", "상품 A", 500_000),
		product("p2", "상품 B", 600_000),
	)

	provider := &fakeProvider{}

	agent := NewGiftAgent(searcher, provider, &fakeProfiles{})

	analysis := &Analysis{
		Intent:    IntentGift,
		Recipient: recipientWithRelation("friend"),
		Budget:    budgetOf(50_000), // 모든 상품이 허용 범위 초과
	}

	response, err := agent.Recommend(context.Background(), "user-1", analysis)

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.NotFound))
	assert.Nil(t, response)

	// 후보가 없으면 LLM은 호출되지 않아야 한다
	assert.Empty(t, provider.requests)
}

func TestGiftAgent_사유개수불일치(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.setProducts("친구 선물",
		product("p1", "텀블러 A", 30_000),
		product("p2", "텀블러 B", 45_000),
	)

	// 상품은 2개인데 사유가 1개만 생성된 응답
	provider := &fakeProvider{responses: []string{`{"reasons": ["사유 1"]}`}}

	agent := NewGiftAgent(searcher, provider, &fakeProfiles{})

	analysis := &Analysis{
		Intent:    IntentGift,
		Recipient: recipientWithRelation("friend"),
	}

	_, err := agent.Recommend(context.Background(), "user-1", analysis)

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ParsingFailed))
}

func TestPartitionTiers(t *testing.T) {
	t.Run("상품 없음", func(t *testing.T) {
		assert.Empty(t, partitionTiers(nil))
	})

	t.Run("상품 1개", func(t *testing.T) {
		tiers := partitionTiers(products(product("p1", "A", 10_000)))
		require.Len(t, tiers, 1)
		assert.Equal(t, TierEntry, tiers[0].tier)
	})

	t.Run("가격 2종", func(t *testing.T) {
		tiers := partitionTiers(products(
			product("p1", "A", 10_000),
			product("p2", "B", 50_000),
		))
		require.Len(t, tiers, 2)
		assert.Equal(t, TierEntry, tiers[0].tier)
		assert.Equal(t, TierPremium, tiers[1].tier)
	})

	t.Run("가격 3종 이상", func(t *testing.T) {
		tiers := partitionTiers(products(
			product("p1", "A", 10_000),
			product("p2", "B", 30_000),
			product("p3", "C", 50_000),
			product("p4", "D", 100_000),
			product("p5", "E", 200_000),
			product("p6", "F", 500_000),
		))
		require.Len(t, tiers, 3)
		assert.Equal(t, TierEntry, tiers[0].tier)
		assert.Equal(t, TierMid, tiers[1].tier)
		assert.Equal(t, TierPremium, tiers[2].tier)

		// 가격대는 오름차순이어야 한다
		assert.Less(t, tiers[0].product.Price, tiers[1].product.Price)
		assert.Less(t, tiers[1].product.Price, tiers[2].product.Price)
	})

	t.Run("동일 가격 중복 제거", func(t *testing.T) {
		tiers := partitionTiers(products(
			product("p1", "A", 10_000),
			product("p2", "B", 10_000),
			product("p3", "C", 10_000),
		))
		require.Len(t, tiers, 1)
		assert.Equal(t, TierEntry, tiers[0].tier)
	})
}

func TestValueAgent_Recommend(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.setProducts("키보드 추천",
		product("p1", "키보드 A", 30_000),
		product("p2", "키보드 B", 80_000),
	)
	searcher.setProducts("가성비 키보드",
		product("p3", "키보드 C", 15_000),
		product("p1", "키보드 A", 30_000), // 중복
	)

	provider := &fakeProvider{responses: []string{`{
		"tiers": [
			{"reason": "입문용으로 충분합니다", "benefits": ["저렴한 가격"], "tradeoffs": ["내구성 아쉬움"]},
			{"reason": "가격과 성능의 균형이 좋습니다", "benefits": ["무난한 품질"], "tradeoffs": ["특색 부족"]},
			{"reason": "오래 쓸 수 있는 제품입니다", "benefits": ["뛰어난 마감"], "tradeoffs": ["높은 가격"]}
		]
	}`}}

	agent := NewValueAgent(searcher, provider, &fakeProfiles{})

	analysis := &Analysis{Intent: IntentValue, Items: []string{"키보드"}}

	response, err := agent.Recommend(context.Background(), "user-1", analysis)
	require.NoError(t, err)

	require.Len(t, response.Recommendations, 3)
	assert.Equal(t, TierEntry, response.Recommendations[0].Tier)
	assert.Equal(t, TierMid, response.Recommendations[1].Tier)
	assert.Equal(t, TierPremium, response.Recommendations[2].Tier)

	// 가격대별 추천 사유와 장점/감수할 점이 함께 제공되어야 한다
	assert.Equal(t, "입문용으로 충분합니다", response.Recommendations[0].Card.Reason)
	assert.Equal(t, []string{"저렴한 가격"}, response.Recommendations[0].TierBenefits)
	assert.Equal(t, []string{"내구성 아쉬움"}, response.Recommendations[0].TierTradeoffs)
	assert.Equal(t, []string{"높은 가격"}, response.Recommendations[2].TierTradeoffs)

	// 두 검색 모두 수행되었는지 확인
	require.Len(t, searcher.requests, 2)
	assert.Equal(t, "키보드 추천", searcher.requests[0].Query)
	assert.Equal(t, "가성비 키보드", searcher.requests[1].Query)
}

func TestValueAgent_응답개수불일치(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.setProducts("키보드 추천",
		product("p1", "키보드 A", 30_000),
		product("p2", "키보드 B", 80_000),
	)

	// 가격대는 2개인데 응답은 1개
	provider := &fakeProvider{responses: []string{
		`{"tiers": [{"reason": "사유", "benefits": [], "tradeoffs": []}]}`,
	}}

	agent := NewValueAgent(searcher, provider, &fakeProfiles{})

	analysis := &Analysis{Intent: IntentValue, Items: []string{"키보드"}}

	_, err := agent.Recommend(context.Background(), "user-1", analysis)

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ParsingFailed))
}

func TestValueAgent_검색결과없음(t *testing.T) {
	searcher := newFakeSearcher()
	provider := &fakeProvider{}

	agent := NewValueAgent(searcher, provider, &fakeProfiles{})

	analysis := &Analysis{Intent: IntentValue, Items: []string{"키보드"}}

	_, err := agent.Recommend(context.Background(), "user-1", analysis)

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.NotFound))
	assert.Empty(t, provider.requests)
}

func TestBundleAgent_Recommend(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.setProducts("키보드",
		product("k1", "키보드 저가", 20_000),
		product("k2", "키보드 중가", 50_000),
		product("k3", "키보드 고가", 100_000),
	)
	searcher.setProducts("마우스",
		product("m1", "마우스 저가", 10_000),
		product("m2", "마우스 중가", 30_000),
		product("m3", "마우스 고가", 60_000),
	)

	provider := &fakeProvider{responses: []string{
		`{"reasons": ["설명 A", "설명 B", "설명 C"]}`,
	}}

	agent := NewBundleAgent(searcher, provider, &fakeProfiles{})

	analysis := &Analysis{
		Intent: IntentBundle,
		Items:  []string{"키보드", "마우스"},
		Budget: &textparse.Budget{Total: 100_000, Min: 80_000, Max: 120_000},
	}

	response, err := agent.Recommend(context.Background(), "user-1", analysis)
	require.NoError(t, err)

	require.Len(t, response.Recommendations, 3)

	comboA := response.Recommendations[0].Bundle
	require.NotNil(t, comboA)
	assert.Equal(t, "A", comboA.Combo)
	assert.Equal(t, 30_000, comboA.Total) // 20,000 + 10,000
	assert.True(t, comboA.BudgetFit)
	assert.Equal(t, "설명 A", comboA.Comment)
	require.Len(t, comboA.Items, 2)

	// 품목당 대안은 최대 2개
	assert.LessOrEqual(t, len(comboA.Items[0].Alternatives), bundleMaxAlternatives)

	comboB := response.Recommendations[1].Bundle
	require.NotNil(t, comboB)
	assert.Equal(t, 80_000, comboB.Total) // 50,000 + 30,000
	assert.True(t, comboB.BudgetFit)
}

func TestBundleAgent_예산초과(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.setProducts("노트북", product("n1", "노트북", 2_000_000))

	provider := &fakeProvider{responses: []string{
		`{"reasons": ["설명 A", "설명 B", "설명 C"]}`,
	}}

	agent := NewBundleAgent(searcher, provider, &fakeProfiles{})

	analysis := &Analysis{
		Intent: IntentBundle,
		Items:  []string{"노트북"},
		Budget: &textparse.Budget{Total: 1_000_000},
	}

	response, err := agent.Recommend(context.Background(), "user-1", analysis)
	require.NoError(t, err)

	combo := response.Recommendations[0].Bundle
	assert.False(t, combo.BudgetFit)
}

func TestBundleAgent_기본예산(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.setProducts("키보드", product("k1", "키보드", 50_000))

	provider := &fakeProvider{responses: []string{
		`{"reasons": ["설명 A", "설명 B", "설명 C"]}`,
	}}

	agent := NewBundleAgent(searcher, provider, &fakeProfiles{})

	analysis := &Analysis{Intent: IntentBundle, Items: []string{"키보드"}}

	response, err := agent.Recommend(context.Background(), "user-1", analysis)
	require.NoError(t, err)

	combo := response.Recommendations[0].Bundle
	assert.Equal(t, bundleDefaultBudget, combo.Budget)
	assert.True(t, combo.BudgetFit)
}

func TestBundleAgent_검색결과없음(t *testing.T) {
	searcher := newFakeSearcher()
	provider := &fakeProvider{}

	agent := NewBundleAgent(searcher, provider, &fakeProfiles{})

	analysis := &Analysis{Intent: IntentBundle, Items: []string{"키보드", "마우스"}}

	_, err := agent.Recommend(context.Background(), "user-1", analysis)

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.NotFound))
	assert.Empty(t, provider.requests)
}

func TestReviewAgent_Recommend(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.setProducts("공기청정기",
		product("a1", "공기청정기 A", 150_000),
		product("a2", "공기청정기 B", 250_000),
	)

	provider := &fakeProvider{responses: []string{`{
		"complaints": [
			{"rank": 1, "complaint": "필터 교체 비용이 비쌉니다", "frequency": "많음", "severity": "medium"},
			{"rank": 2, "complaint": "소음이 큽니다", "frequency": "보통", "severity": "low"}
		],
		"checklist": ["필터 교체 주기 확인", "소음 수준 확인"],
		"overall_sentiment": "mixed",
		"not_recommended": ["원룸처럼 좁은 공간만 사용하는 경우"],
		"management_tips": ["필터는 6개월마다 교체하세요"]
	}`}}

	agent := NewReviewAgent(searcher, provider, &fakeProfiles{})

	analysis := &Analysis{Intent: IntentReview, Items: []string{"공기청정기"}}

	response, err := agent.Recommend(context.Background(), "user-1", analysis)
	require.NoError(t, err)

	require.Len(t, response.Recommendations, 1)
	review := response.Recommendations[0].Review
	require.NotNil(t, review)

	assert.Equal(t, "공기청정기", review.Item)
	require.Len(t, review.Complaints, 2)
	assert.Equal(t, 1, review.Complaints[0].Rank)
	assert.Equal(t, "많음", review.Complaints[0].Frequency)
	assert.Len(t, review.Checklist, 2)

	// 전반적 반응, 비추천 조건, 관리 요령도 함께 제공되어야 한다
	assert.Equal(t, "mixed", review.OverallSentiment)
	assert.Equal(t, []string{"원룸처럼 좁은 공간만 사용하는 경우"}, review.NotRecommended)
	assert.Equal(t, []string{"필터는 6개월마다 교체하세요"}, review.ManagementTips)

	// 주의 문구는 항상 포함되어야 한다
	assert.Equal(t, reviewDisclaimer, response.Disclaimer)
}

func TestReviewAgent_검색결과없음(t *testing.T) {
	searcher := newFakeSearcher()
	provider := &fakeProvider{}

	agent := NewReviewAgent(searcher, provider, &fakeProfiles{})

	analysis := &Analysis{Intent: IntentReview, Items: []string{"공기청정기"}}

	_, err := agent.Recommend(context.Background(), "user-1", analysis)

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.NotFound))
	assert.Empty(t, provider.requests)
}

func TestCurrentSeason(t *testing.T) {
	tests := []struct {
		month    time.Month
		expected string
	}{
		{time.March, "spring"},
		{time.May, "spring"},
		{time.June, "summer"},
		{time.August, "summer"},
		{time.September, "fall"},
		{time.November, "fall"},
		{time.December, "winter"},
		{time.February, "winter"},
	}

	for _, tt := range tests {
		date := time.Date(2026, tt.month, 15, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, tt.expected, currentSeason(date), "month=%s", tt.month)
	}
}

func TestTrendAgent_Recommend(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.setProducts("인기 텀블러", product("t1", "텀블러 A", 20_000))
	searcher.setProducts("텀블러 추천", product("t2", "텀블러 B", 30_000))
	searcher.setProducts("겨울 필수템 텀블러", product("t3", "텀블러 C", 25_000))
	searcher.setProducts("방한 텀블러", product("t4", "텀블러 D", 35_000))

	provider := &fakeProvider{responses: []string{`{
		"products": [
			{"reason": "보온력으로 입소문이 났습니다", "growth_rate": "급상승", "period": "최근 2주", "target_segment": "20~30대 직장인"},
			{"reason": "겨울 출퇴근용으로 인기입니다", "growth_rate": "꾸준한 인기", "period": "최근 1개월", "target_segment": "직장인"},
			{"reason": "선물용으로 많이 찾습니다", "growth_rate": "상승", "period": "최근 2주", "target_segment": "전 연령"},
			{"reason": "용량 대비 가격이 좋습니다", "growth_rate": "상승", "period": "최근 1주", "target_segment": "학생"}
		]
	}`}}

	agent := NewTrendAgent(searcher, provider, &fakeProfiles{})
	agent.now = func() time.Time { return time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC) } // 겨울

	analysis := &Analysis{Intent: IntentTrend, Items: []string{"텀블러"}}

	response, err := agent.Recommend(context.Background(), "user-1", analysis)
	require.NoError(t, err)

	// 기본 2개 + 계절 검색어 2개, 모두 최신순 정렬
	require.Len(t, searcher.requests, 4)
	for _, req := range searcher.requests {
		assert.Equal(t, catalog.SortDate, req.Sort)
	}

	require.Len(t, response.Recommendations, 4)
	assert.Equal(t, trendDisclaimer, response.Disclaimer)
	assert.Equal(t, dataSourceNaverShopping, response.DataSource)

	// 상품별 상승세 정보가 함께 제공되어야 한다
	first := response.Recommendations[0]
	assert.Equal(t, "보온력으로 입소문이 났습니다", first.Card.Reason)
	require.NotNil(t, first.Trend)
	assert.Equal(t, "급상승", first.Trend.GrowthRate)
	assert.Equal(t, "최근 2주", first.Trend.Period)
	assert.Equal(t, "20~30대 직장인", first.Trend.TargetSegment)
}

func TestTrendAgent_검색결과없음(t *testing.T) {
	searcher := newFakeSearcher()
	provider := &fakeProvider{}

	agent := NewTrendAgent(searcher, provider, &fakeProfiles{})

	analysis := &Analysis{Intent: IntentTrend, Items: []string{"텀블러"}}

	_, err := agent.Recommend(context.Background(), "user-1", analysis)

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.NotFound))
	assert.Empty(t, provider.requests)
}
