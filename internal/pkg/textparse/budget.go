package textparse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Budget 사용자 발화에서 추출한 예산 정보입니다.
type Budget struct {
	// Total 예산 총액 (범위 표현인 경우 상한값)
	Total int

	// Min, Max 허용 가격 범위
	Min int
	Max int

	// Flexible 금액이 유동적인지 여부 ("약", "정도" 등의 표현 동반 시 true)
	Flexible bool

	// Raw 예산으로 해석된 원본 표현
	Raw string
}

var (
	// amountRegexp 단위가 동반된 금액 표현 (예: "5만원", "50,000원", "1.5만", "300만원")
	amountRegexp = regexp.MustCompile(`([\d,]+(?:\.\d+)?)\s*(억|백만|만|천)?\s*원`)

	// amountNoWonRegexp 원(₩) 표기 없이 단위만 있는 금액 표현 (예: "5만", "10만 안쪽")
	amountNoWonRegexp = regexp.MustCompile(`([\d,]+(?:\.\d+)?)\s*(억|백만|만|천)`)

	// bareNumberRegexp 단위 없는 숫자만 있는 표현 (예산 되묻기에 "5"처럼 답하는 경우)
	bareNumberRegexp = regexp.MustCompile(`^\s*([\d,]+)\s*$`)

	// rangeSeparatorRegexp 범위 표현 구분자 (예: "3만원~5만원", "3만원에서 5만원 사이")
	rangeSeparatorRegexp = regexp.MustCompile(`~|-|에서|이상`)
)

// ParseBudget 문장에서 예산 표현을 추출합니다.
//
// 금액 표현을 찾지 못한 경우 nil을 반환합니다. 두 개 이상의 금액이 범위
// 구분자와 함께 등장하면 범위로 해석하고, 단일 금액은 ±20% 범위를 허용
// 범위로 계산합니다. 단위 없는 1000 이하의 숫자는 만원 단위로 해석합니다.
// (예: "5" -> 50,000원)
func ParseBudget(text string) *Budget {
	amounts, raw := extractAmounts(text)
	if len(amounts) == 0 {
		return nil
	}

	flexible := containsAny(text, flexibilityMarkers)

	// 범위 표현: 두 금액과 범위 구분자가 함께 등장하는 경우
	if len(amounts) >= 2 && rangeSeparatorRegexp.MatchString(text) {
		low, high := amounts[0], amounts[1]
		if low > high {
			low, high = high, low
		}
		return &Budget{
			Total:    high,
			Min:      low,
			Max:      high,
			Flexible: flexible,
			Raw:      raw,
		}
	}

	// 단일 금액: ±20% 허용 범위 적용
	total := amounts[0]
	return &Budget{
		Total:    total,
		Min:      int(math.Round(float64(total) * 0.8)),
		Max:      int(math.Round(float64(total) * 1.2)),
		Flexible: flexible,
		Raw:      raw,
	}
}

// extractAmounts 문장에 등장하는 모든 금액을 원 단위 정수로 추출합니다.
func extractAmounts(text string) (amounts []int, raw string) {
	consumed := text

	appendMatches := func(matches [][]string) {
		for _, m := range matches {
			value := parseAmount(m[1], m[2])
			if value > 0 {
				amounts = append(amounts, value)
				if raw == "" {
					raw = strings.TrimSpace(m[0])
				} else {
					raw = raw + " " + strings.TrimSpace(m[0])
				}
			}
		}
	}

	// 1. "원"이 붙은 금액 표현 우선
	if matches := amountRegexp.FindAllStringSubmatch(consumed, -1); len(matches) > 0 {
		appendMatches(matches)
		consumed = amountRegexp.ReplaceAllString(consumed, " ")
	}

	// 2. 단위만 있는 금액 표현
	if matches := amountNoWonRegexp.FindAllStringSubmatch(consumed, -1); len(matches) > 0 {
		appendMatches(matches)
		consumed = amountNoWonRegexp.ReplaceAllString(consumed, " ")
	}

	if len(amounts) > 0 {
		return amounts, raw
	}

	// 3. 숫자만 있는 경우: 1000 이하는 만원 단위로 해석
	if m := bareNumberRegexp.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err == nil && n > 0 {
			if n <= 1000 {
				n *= 10_000
			}
			return []int{n}, strings.TrimSpace(m[0])
		}
	}

	return nil, ""
}

// parseAmount 숫자 문자열과 단위를 원 단위 정수로 변환합니다.
func parseAmount(number, unit string) int {
	n, err := strconv.ParseFloat(strings.ReplaceAll(number, ",", ""), 64)
	if err != nil {
		return 0
	}

	multiplier := 1
	if unit != "" {
		multiplier = budgetUnits[unit]
		if multiplier == 0 {
			return 0
		}
	}

	return int(math.Round(n * float64(multiplier)))
}

// containsAny 문장에 키워드 목록 중 하나라도 포함되어 있는지 확인합니다.
func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
