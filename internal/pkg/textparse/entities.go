// Package textparse 한국어 사용자 발화에서 예산, 품목, 수신인 정보를
// 결정적으로 추출합니다.
//
// LLM 분석과 병행하여 사용되며, 금액과 같이 정확성이 중요한 값은
// 이 패키지의 추출 결과가 LLM 추출 결과보다 우선합니다.
package textparse

import (
	"regexp"
	"sort"
	"strings"
)

// Recipient 사용자 발화에서 추출한 선물 수신인 정보입니다.
// 추출되지 않은 필드는 빈 문자열로 유지됩니다.
type Recipient struct {
	Relation string // 관계 코드 (예: "friend", "colleague")
	Gender   string // "male" 또는 "female"
	AgeGroup string // 연령대 (예: "20s")
	Occasion string // 상황 코드 (예: "birthday")
}

// Empty 아무 정보도 추출되지 않았는지 여부를 반환합니다.
func (r Recipient) Empty() bool {
	return r.Relation == "" && r.Gender == "" && r.AgeGroup == "" && r.Occasion == ""
}

// GenderKorean 성별의 한국어 표현을 반환합니다. (검색어 조립용)
func (r Recipient) GenderKorean() string {
	switch r.Gender {
	case "male":
		return "남자"
	case "female":
		return "여자"
	default:
		return ""
	}
}

// ageGroupRegexp 연령대 표현 (예: "20대", "30 대")
var ageGroupRegexp = regexp.MustCompile(`(\d{1,2})\s*대`)

// itemSeparatorRegexp 품목 나열 구분자 (예: "키보드랑 마우스", "의자, 책상")
var itemSeparatorRegexp = regexp.MustCompile(`\s*(?:,|와|과|랑|하고|이랑)\s*`)

// ParseItems 문장에서 품목 명사들을 추출합니다.
//
// 알려진 품목 명사 목록과 대조하여 등장 순서를 유지한 채 중복 없이
// 반환합니다. 아무것도 찾지 못하면 빈 슬라이스를 반환합니다.
func ParseItems(text string) []string {
	type found struct {
		item  string
		index int
	}

	var matches []found
	for _, noun := range commonItemNouns {
		if idx := strings.Index(text, noun); idx >= 0 {
			matches = append(matches, found{item: noun, index: idx})
		}
	}

	// 등장 순서대로 정렬
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].index < matches[j].index
	})

	items := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if _, dup := seen[m.item]; dup {
			continue
		}
		seen[m.item] = struct{}{}
		items = append(items, m.item)
	}

	return items
}

// SplitItemPhrases 나열 구분자를 기준으로 문장을 품목 후보 구절로 분리합니다.
// 알려진 품목 명사에 없는 품목을 다루는 상위 로직에서 사용합니다.
func SplitItemPhrases(text string) []string {
	parts := itemSeparatorRegexp.Split(text, -1)

	phrases := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			phrases = append(phrases, p)
		}
	}
	return phrases
}

// ParseRecipient 문장에서 선물 수신인 정보를 추출합니다.
func ParseRecipient(text string) Recipient {
	var r Recipient

	// 관계: 긴 표현부터 순서대로 검사
	for _, rk := range relationKeywords {
		if strings.Contains(text, rk.keyword) {
			r.Relation = rk.code
			break
		}
	}

	// 성별
	if containsAny(text, maleKeywords) {
		r.Gender = "male"
	} else if containsAny(text, femaleKeywords) {
		r.Gender = "female"
	}

	// 연령대
	if m := ageGroupRegexp.FindStringSubmatch(text); m != nil {
		r.AgeGroup = m[1] + "s"
	}

	// 상황
	for _, ok := range occasionKeywords {
		if strings.Contains(text, ok.keyword) {
			r.Occasion = ok.code
			break
		}
	}

	return r
}

// MentionsUsed 사용자가 중고/리퍼 상품을 직접 언급했는지 확인합니다.
// 언급한 경우 검색 결과에서 중고 상품을 제외하지 않습니다.
func MentionsUsed(text string) bool {
	return containsAny(text, usedKeywords)
}

// MentionsRental 사용자가 렌탈 상품을 직접 언급했는지 확인합니다.
func MentionsRental(text string) bool {
	return containsAny(text, rentalKeywords)
}
