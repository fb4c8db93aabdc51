package chat

import (
	"strings"

	"github.com/darkkaiser/cartpilot-server/internal/pkg/textparse"
)

// Intent 사용자 발화의 쇼핑 의도 분류입니다.
type Intent string

const (
	// IntentGift 선물 추천
	IntentGift Intent = "GIFT"

	// IntentValue 가성비 비교 추천
	IntentValue Intent = "VALUE"

	// IntentBundle 묶음 구매 조합 추천
	IntentBundle Intent = "BUNDLE"

	// IntentReview 구매 전 리뷰/단점 분석
	IntentReview Intent = "REVIEW"

	// IntentTrend 트렌드/인기 상품 조회
	IntentTrend Intent = "TREND"
)

// Valid 알려진 의도인지 여부를 반환합니다.
func (i Intent) Valid() bool {
	switch i {
	case IntentGift, IntentValue, IntentBundle, IntentReview, IntentTrend:
		return true
	}
	return false
}

// Analysis 사용자 발화의 분석 결과입니다.
//
// LLM 분석과 결정적 텍스트 파싱 결과가 병합된 최종 슬롯 값을 보관하며,
// 에이전트 라우팅과 추천 생성의 입력이 됩니다.
type Analysis struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`

	Recipient textparse.Recipient `json:"recipient"`
	Budget    *textparse.Budget   `json:"budget,omitempty"`
	Items     []string            `json:"items,omitempty"`
	Category  string              `json:"category,omitempty"`

	ExcludeUsed   bool `json:"exclude_used"`
	ExcludeRental bool `json:"exclude_rental"`

	// RawMessage 분석의 원본이 된 사용자 발화입니다.
	RawMessage string `json:"raw_message"`

	// Fallback LLM 분석 실패로 생성된 폴백 결과인지 여부입니다.
	Fallback bool `json:"fallback,omitempty"`
}

// Fingerprint 추천 캐시 키 생성에 사용할 분석 결과의 파라미터 맵을 반환합니다.
//
// 동일한 의도와 슬롯 조합은 동일한 추천을 생성하므로 사용자 식별자는
// 포함하지 않습니다. 단, 취향 정보가 반영되는 경우 호출 측에서
// 사용자 식별자를 추가해야 합니다.
func (a *Analysis) Fingerprint() map[string]any {
	params := map[string]any{
		"intent":         string(a.Intent),
		"items":          strings.Join(a.Items, ","),
		"category":       a.Category,
		"relation":       a.Recipient.Relation,
		"gender":         a.Recipient.Gender,
		"age_group":      a.Recipient.AgeGroup,
		"occasion":       a.Recipient.Occasion,
		"exclude_used":   a.ExcludeUsed,
		"exclude_rental": a.ExcludeRental,
	}

	if a.Budget != nil {
		params["budget_min"] = a.Budget.Min
		params["budget_max"] = a.Budget.Max
		params["budget_total"] = a.Budget.Total
	}

	return params
}

// Clarification 누락된 슬롯을 채우기 위한 되묻기 질문입니다.
type Clarification struct {
	Question    string   `json:"question"`
	Field       string   `json:"field"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// 되묻기 대상 필드
const (
	fieldRecipient = "recipient"
	fieldBudget    = "budget"
	fieldItems     = "items"
)

// 되묻기 고정 질문
const (
	questionRecipient   = "선물 받으실 분이 누구인가요? (예: 친구, 동료, 부모님)"
	questionBudget      = "예산이 어느 정도인가요? (예: 5만원, 10만원)"
	questionBundleItems = "어떤 품목들을 함께 구매하실 건가요?"
	questionItems       = "어떤 종류의 제품을 찾으시나요?"
	questionFallback    = "어떤 제품을 찾으시나요?"
)

// requiredClarification 의도별 필수 슬롯의 누락 여부를 검사하고,
// 누락된 경우 해당 슬롯에 대한 되묻기 질문을 반환합니다.
//
// 의도별 필수 슬롯:
//   - GIFT: 수신인, 예산
//   - BUNDLE: 품목 2개 이상, 예산
//   - VALUE, REVIEW: 품목
//   - TREND: 없음
func requiredClarification(a *Analysis) *Clarification {
	switch a.Intent {
	case IntentGift:
		if a.Recipient.Empty() {
			return &Clarification{
				Question:    questionRecipient,
				Field:       fieldRecipient,
				Suggestions: []string{"친구", "동료", "부모님", "연인"},
			}
		}
		if a.Budget == nil {
			return &Clarification{
				Question:    questionBudget,
				Field:       fieldBudget,
				Suggestions: []string{"3만원", "5만원", "10만원"},
			}
		}

	case IntentBundle:
		// 묶음 조합은 품목이 둘 이상이어야 의미가 있다
		if len(a.Items) < 2 {
			return &Clarification{Question: questionBundleItems, Field: fieldItems}
		}
		if a.Budget == nil {
			return &Clarification{
				Question:    questionBudget,
				Field:       fieldBudget,
				Suggestions: []string{"30만원", "50만원", "100만원"},
			}
		}

	case IntentValue, IntentReview:
		if len(a.Items) == 0 {
			question := questionItems
			if a.Fallback {
				question = questionFallback
			}
			return &Clarification{Question: question, Field: fieldItems}
		}

	case IntentTrend:
		// 필수 슬롯 없음
	}

	return nil
}
