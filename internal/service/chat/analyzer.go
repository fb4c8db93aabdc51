package chat

import (
	"context"
	"fmt"

	"github.com/darkkaiser/cartpilot-server/internal/pkg/textparse"
	"github.com/darkkaiser/cartpilot-server/internal/service/llm"
	applog "github.com/darkkaiser/cartpilot-server/pkg/log"
)

// fallbackConfidence LLM 분석 실패 시 폴백 분석 결과의 신뢰도
const fallbackConfidence = 0.3

// analyzerSystemPrompt 의도 분류 및 엔티티 추출용 시스템 프롬프트입니다.
// JSON 모드와 함께 사용하며, 온도 0으로 호출하여 결정성을 높입니다.
const analyzerSystemPrompt = `당신은 쇼핑 도우미의 의도 분석기입니다.
사용자의 메시지를 분석하여 아래 JSON 형식으로만 응답하세요.

{
  "intent": "GIFT | VALUE | BUNDLE | REVIEW | TREND 중 하나",
  "confidence": 0.0에서 1.0 사이의 분류 신뢰도,
  "recipient": {
    "relation": "선물 받는 사람과의 관계 (friend, colleague, boss, parent, mother, father, boyfriend, girlfriend, wife, husband, teacher, professor, child, son, daughter 중 하나, 없으면 빈 문자열)",
    "gender": "male 또는 female, 없으면 빈 문자열",
    "age_group": "연령대 (예: 20s, 30s), 없으면 빈 문자열",
    "occasion": "상황 (birthday, wedding, anniversary, housewarming, promotion, graduation, enrollment, farewell, welcome, christmas, valentine, whiteday, parents_day, teachers_day, childbirth 중 하나, 없으면 빈 문자열)"
  },
  "items": ["언급된 상품 품목들"],
  "category": "상품 카테고리 (없으면 빈 문자열)",
  "exclude_used": 중고 상품을 제외해야 하면 true,
  "exclude_rental": 렌탈 상품을 제외해야 하면 true
}

의도 분류 기준:
- GIFT: 다른 사람에게 줄 선물을 찾는 경우
- VALUE: 가성비 좋은 제품이나 가격대별 비교를 원하는 경우
- BUNDLE: 여러 품목을 함께(세트로) 구매하려는 경우
- REVIEW: 구매 전 제품의 단점이나 주의사항을 알고 싶은 경우
- TREND: 요즘 인기 있는 상품이나 유행을 알고 싶은 경우`

// Analyzer 사용자 발화를 LLM과 결정적 텍스트 파싱으로 분석합니다.
//
// LLM이 의도 분류와 엔티티 추출을 담당하되, 예산과 품목처럼 정확성이
// 중요한 값은 텍스트 파싱 결과가 항상 우선합니다.
type Analyzer struct {
	provider llm.Provider
}

// NewAnalyzer 발화 분석기를 생성합니다.
func NewAnalyzer(provider llm.Provider) *Analyzer {
	return &Analyzer{provider: provider}
}

// Analyze 사용자 발화를 분석하여 의도와 슬롯 값을 추출합니다.
//
// message에는 세션에 누적된 사용자 발화 전체를 공백으로 이어 전달해야
// 후속 발화("더 싼 걸로")에서도 앞선 문맥이 유지됩니다.
//
// LLM 호출이나 응답 파싱이 실패하면 에러 대신 폴백 분석 결과
// (VALUE, 신뢰도 0.3)를 반환하여 대화가 중단되지 않도록 합니다.
func (a *Analyzer) Analyze(ctx context.Context, message string) *Analysis {
	analysis, err := a.analyzeWithLLM(ctx, message)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Warn("LLM 발화 분석 실패: 폴백 분석 결과로 대체합니다")

		analysis = fallbackAnalysis(message)
	}

	applyTextParse(analysis, message)

	return analysis
}

// analyzeWithLLM LLM으로 의도 분류와 엔티티 추출을 수행합니다.
func (a *Analyzer) analyzeWithLLM(ctx context.Context, message string) (*Analysis, error) {
	response, err := a.provider.Complete(ctx, llm.Request{
		SystemPrompt: analyzerSystemPrompt,
		UserPrompt:   fmt.Sprintf("사용자 메시지: %s", message),
		Temperature:  0,
		JSONMode:     true,
	})
	if err != nil {
		return nil, err
	}

	parsed, err := llm.ExtractJSON(response)
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{
		Intent:     Intent(parsed.Get("intent").String()),
		Confidence: parsed.Get("confidence").Float(),
		Recipient: textparse.Recipient{
			Relation: parsed.Get("recipient.relation").String(),
			Gender:   parsed.Get("recipient.gender").String(),
			AgeGroup: parsed.Get("recipient.age_group").String(),
			Occasion: parsed.Get("recipient.occasion").String(),
		},
		Category:      parsed.Get("category").String(),
		ExcludeUsed:   parsed.Get("exclude_used").Bool(),
		ExcludeRental: parsed.Get("exclude_rental").Bool(),
		RawMessage:    message,
	}

	for _, item := range parsed.Get("items").Array() {
		if s := item.String(); s != "" {
			analysis.Items = append(analysis.Items, s)
		}
	}

	if !analysis.Intent.Valid() {
		analysis.Intent = IntentValue
		analysis.Confidence = fallbackConfidence
		analysis.Fallback = true
	}

	return analysis, nil
}

// fallbackAnalysis LLM 분석 실패 시 사용하는 폴백 분석 결과를 생성합니다.
func fallbackAnalysis(message string) *Analysis {
	return &Analysis{
		Intent:     IntentValue,
		Confidence: fallbackConfidence,
		RawMessage: message,
		Fallback:   true,
	}
}

// applyTextParse 결정적 텍스트 파싱 결과를 분석 결과에 반영합니다.
//
// 예산과 품목은 파싱 결과가 존재하는 한 LLM 추출 값을 항상 덮어쓰고,
// 수신인 정보는 LLM이 놓친 필드만 보완합니다.
func applyTextParse(analysis *Analysis, message string) {
	if budget := textparse.ParseBudget(message); budget != nil {
		analysis.Budget = budget
	}

	if items := textparse.ParseItems(message); len(items) > 0 {
		analysis.Items = items
	}

	parsed := textparse.ParseRecipient(message)
	if analysis.Recipient.Relation == "" {
		analysis.Recipient.Relation = parsed.Relation
	}
	if analysis.Recipient.Gender == "" {
		analysis.Recipient.Gender = parsed.Gender
	}
	if analysis.Recipient.AgeGroup == "" {
		analysis.Recipient.AgeGroup = parsed.AgeGroup
	}
	if analysis.Recipient.Occasion == "" {
		analysis.Recipient.Occasion = parsed.Occasion
	}

	// 사용자가 중고/렌탈 상품을 직접 언급한 경우에는 제외하지 않습니다.
	if textparse.MentionsUsed(message) {
		analysis.ExcludeUsed = false
	} else {
		analysis.ExcludeUsed = true
	}
	if textparse.MentionsRental(message) {
		analysis.ExcludeRental = false
	} else {
		analysis.ExcludeRental = true
	}
}

// mergeClarificationAnswer 되묻기 답변을 미완성 분석 결과에 병합합니다.
//
// 답변에서 추출된 값으로 누락 슬롯만 채우며, 이미 확정된 슬롯은 유지합니다.
// askedField는 직전 되묻기에서 질문한 필드입니다.
func mergeClarificationAnswer(pending *Analysis, askedField, answer string) *Analysis {
	merged := *pending

	if merged.Budget == nil {
		if budget := textparse.ParseBudget(answer); budget != nil {
			merged.Budget = budget
		}
	}

	if len(merged.Items) == 0 || askedField == fieldItems {
		if items := textparse.ParseItems(answer); len(items) > 0 {
			merged.Items = unionItems(merged.Items, items)
		} else if askedField == fieldItems {
			// 품목을 질문한 경우에 한해, 알려진 품목 목록에 없는
			// 짧은 답변을 나열 구분자로 분리하여 그대로 사용
			if phrases := textparse.SplitItemPhrases(answer); len(phrases) > 0 && len([]rune(answer)) <= 30 {
				merged.Items = unionItems(merged.Items, phrases)
			}
		}
	}

	if merged.Recipient.Empty() {
		merged.Recipient = textparse.ParseRecipient(answer)
	}

	return &merged
}

// unionItems 두 품목 목록을 순서를 유지한 채 중복 없이 합칩니다.
func unionItems(existing, added []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(added))
	merged := make([]string, 0, len(existing)+len(added))
	for _, item := range append(append([]string{}, existing...), added...) {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		merged = append(merged, item)
	}
	return merged
}
