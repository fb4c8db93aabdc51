package chat

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/darkkaiser/cartpilot-server/internal/service/catalog"
	"github.com/darkkaiser/cartpilot-server/internal/service/llm"
)

const (
	// reviewTemperature 리뷰 분석 생성 온도
	reviewTemperature = 0.5

	// reviewDisplay 분석 컨텍스트로 사용할 조회 상품 수
	reviewDisplay = 15
)

// reviewDisclaimer 리뷰 분석 응답에 항상 포함되는 주의 문구
const reviewDisclaimer = "이 분석은 일반적인 리뷰 정보를 기반으로 합니다. 개인의 사용 환경에 따라 다를 수 있습니다."

// Complaint 구매자들이 자주 언급하는 단점 항목입니다.
type Complaint struct {
	Rank      int    `json:"rank"`
	Complaint string `json:"complaint"`
	Frequency string `json:"frequency"` // 많음, 보통, 적음
	Severity  string `json:"severity"`  // low, medium, high
}

// ReviewAnalysis 구매 전 단점 분석 결과입니다.
type ReviewAnalysis struct {
	Item       string      `json:"item"`
	Complaints []Complaint `json:"complaints"`
	Checklist  []string    `json:"checklist,omitempty"`

	// OverallSentiment 전반적인 구매자 반응 (positive, mixed, negative)
	OverallSentiment string `json:"overall_sentiment,omitempty"`

	// NotRecommended 이 품목의 구매를 권하지 않는 조건들
	NotRecommended []string `json:"not_recommended,omitempty"`

	// ManagementTips 구매 후 관리 요령
	ManagementTips []string `json:"management_tips,omitempty"`

	Products []*ProductCard `json:"products,omitempty"`
}

// ReviewAgent 구매 전 리뷰/단점 분석 에이전트입니다.
//
// 상품 검색 결과를 컨텍스트로 LLM에 전달하여, 해당 품목에서 구매자들이
// 자주 겪는 단점과 구매 전 확인 사항을 정리합니다.
type ReviewAgent struct {
	agentDeps
}

var _ Agent = (*ReviewAgent)(nil)

// NewReviewAgent 리뷰 분석 에이전트를 생성합니다.
func NewReviewAgent(searcher catalog.Searcher, provider llm.Provider, profiles ProfileSource) *ReviewAgent {
	return &ReviewAgent{agentDeps{searcher: searcher, provider: provider, profiles: profiles}}
}

// Intent 담당 의도(REVIEW)를 반환합니다.
func (a *ReviewAgent) Intent() Intent {
	return IntentReview
}

// Recommend 단점 분석을 생성합니다.
func (a *ReviewAgent) Recommend(ctx context.Context, userID string, analysis *Analysis) (*AgentResponse, error) {
	item := valueSearchTerm(analysis)

	products, err := a.searcher.Search(ctx, catalog.SearchRequest{
		Query:         item,
		Display:       reviewDisplay,
		ExcludeUsed:   analysis.ExcludeUsed,
		ExcludeRental: analysis.ExcludeRental,
	})
	if err != nil {
		return nil, err
	}

	if len(products) == 0 {
		return nil, errNoProducts()
	}

	review, err := a.analyzeComplaints(ctx, item, products)
	if err != nil {
		return nil, err
	}

	return &AgentResponse{
		Message:         item + " 구매 전에 확인하면 좋을 내용을 정리했어요.",
		Recommendations: []Recommendation{{Review: review}},
		Disclaimer:      reviewDisclaimer,
		DataSource:      dataSourceNaverShopping,
	}, nil
}

// analyzeComplaints LLM으로 품목의 주요 단점과 구매 전 확인 사항을 정리합니다.
func (a *ReviewAgent) analyzeComplaints(ctx context.Context, item string, products []*catalog.Product) (*ReviewAnalysis, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "품목: %s\n\n현재 판매 중인 상품 예시:\n", item)
	for i, p := range products {
		if i >= 10 {
			break
		}
		fmt.Fprintf(&b, "- %s (%s)\n", p.Title, formatPriceText(p.Price))
	}
	b.WriteString(`
이 품목을 구매한 사람들이 일반적으로 자주 언급하는 단점과 구매 전 확인 사항을 정리하고, 아래 JSON 형식으로만 응답하세요.

{
  "complaints": [
    {"rank": 순위(1부터), "complaint": "단점 설명", "frequency": "많음|보통|적음", "severity": "low|medium|high"}
  ],
  "checklist": ["구매 전 확인할 항목"],
  "overall_sentiment": "positive|mixed|negative",
  "not_recommended": ["이런 경우에는 구매를 권하지 않는 조건"],
  "management_tips": ["구매 후 관리 요령"]
}`)

	response, err := a.provider.Complete(ctx, llm.Request{
		SystemPrompt: "당신은 상품 리뷰 분석 전문가입니다. 반드시 요청된 JSON 형식으로만 응답하세요.",
		UserPrompt:   b.String(),
		Temperature:  reviewTemperature,
		JSONMode:     true,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ExecutionFailed, "리뷰 분석 생성에 실패했습니다")
	}

	parsed, err := llm.ExtractJSON(response)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, "리뷰 분석 응답 파싱에 실패했습니다")
	}

	review := &ReviewAnalysis{Item: item}

	for _, c := range parsed.Get("complaints").Array() {
		review.Complaints = append(review.Complaints, Complaint{
			Rank:      int(c.Get("rank").Int()),
			Complaint: c.Get("complaint").String(),
			Frequency: c.Get("frequency").String(),
			Severity:  c.Get("severity").String(),
		})
	}

	for _, entry := range parsed.Get("checklist").Array() {
		if s := entry.String(); s != "" {
			review.Checklist = append(review.Checklist, s)
		}
	}

	review.OverallSentiment = parsed.Get("overall_sentiment").String()

	for _, entry := range parsed.Get("not_recommended").Array() {
		if s := entry.String(); s != "" {
			review.NotRecommended = append(review.NotRecommended, s)
		}
	}

	for _, entry := range parsed.Get("management_tips").Array() {
		if s := entry.String(); s != "" {
			review.ManagementTips = append(review.ManagementTips, s)
		}
	}

	// 참고용으로 대표 상품 일부를 함께 반환
	for i, p := range products {
		if i >= 3 {
			break
		}
		review.Products = append(review.Products, newProductCard(p, ""))
	}

	return review, nil
}
