package textparse

import "sort"

// budgetUnits 한국어 금액 단위와 배수
var budgetUnits = map[string]int{
	"천":  1_000,
	"만":  10_000,
	"백만": 1_000_000,
	"억":  100_000_000,
}

// flexibilityMarkers 금액이 유동적임을 나타내는 표현들
var flexibilityMarkers = []string{"약", "대략", "정도", "쯤", "내외", "전후"}

// vocabPair 표현과 정규화된 코드의 쌍입니다.
type vocabPair struct {
	keyword string
	code    string
}

// commonItemNouns 대화에서 자주 등장하는 품목 명사들
var commonItemNouns = []string{
	"노트북", "키보드", "마우스", "모니터", "이어폰", "헤드폰", "스피커",
	"충전기", "케이블", "가방", "지갑", "시계", "선풍기", "가습기",
	"공기청정기", "청소기", "텀블러", "우산", "의자", "책상", "스탠드",
	"머그컵", "담요", "장갑", "히터",
}

// relationKeywords 수신인 관계 표현과 정규화된 관계 코드
//
// 긴 표현이 먼저 매칭되어야 하므로 순서가 있는 슬라이스로 관리합니다.
// (예: "남자친구"가 "친구"보다 먼저 검사되어야 함)
var relationKeywords = []vocabPair{
	{"남자친구", "boyfriend"},
	{"여자친구", "girlfriend"},
	{"친구", "friend"},
	{"동료", "colleague"},
	{"상사", "boss"},
	{"부모님", "parent"},
	{"어머니", "mother"},
	{"엄마", "mother"},
	{"아버지", "father"},
	{"아빠", "father"},
	{"아내", "wife"},
	{"와이프", "wife"},
	{"남편", "husband"},
	{"선생님", "teacher"},
	{"교수님", "professor"},
	{"아이", "child"},
	{"아기", "child"},
	{"아들", "son"},
	{"딸", "daughter"},
	{"동생", "younger_sibling"},
	{"형", "older_brother"},
	{"오빠", "older_brother"},
	{"누나", "older_sister"},
	{"언니", "older_sister"},
}

// 성별 추정에 사용하는 키워드 목록
var (
	maleKeywords   = []string{"남자친구", "남자", "남성", "남친", "아빠", "아버지", "남편", "형", "오빠", "아들"}
	femaleKeywords = []string{"여자친구", "여자", "여성", "여친", "엄마", "어머니", "아내", "와이프", "누나", "언니", "딸"}
)

// occasionKeywords 선물 상황 표현과 정규화된 상황 코드
var occasionKeywords = []vocabPair{
	{"크리스마스", "christmas"},
	{"성탄절", "christmas"},
	{"발렌타인", "valentine"},
	{"밸런타인", "valentine"},
	{"화이트데이", "whiteday"},
	{"어버이날", "parents_day"},
	{"스승의날", "teachers_day"},
	{"스승의 날", "teachers_day"},
	{"생일", "birthday"},
	{"결혼", "wedding"},
	{"집들이", "housewarming"},
	{"졸업", "graduation"},
	{"입사", "new_job"},
	{"퇴사", "farewell"},
	{"퇴직", "farewell"},
	{"송별", "farewell"},
	{"환영", "welcome"},
	{"승진", "promotion"},
	{"출산", "childbirth"},
	{"기념일", "anniversary"},
	{"입학", "enrollment"},
}

// occasionKorean 상황 코드의 한국어 표현 (검색어 조립용)
var occasionKorean = map[string]string{
	"birthday":     "생일",
	"wedding":      "결혼",
	"housewarming": "집들이",
	"graduation":   "졸업",
	"new_job":      "입사",
	"farewell":     "퇴사",
	"welcome":      "환영",
	"promotion":    "승진",
	"childbirth":   "출산",
	"anniversary":  "기념일",
	"enrollment":   "입학",
	"christmas":    "크리스마스",
	"valentine":    "발렌타인",
	"whiteday":     "화이트데이",
	"parents_day":  "어버이날",
	"teachers_day": "스승의날",
}

// keywordStopwords 키워드 추출에서 제외하는 상투어 집합
var keywordStopwords = toSet([]string{
	"세트", "선물", "추천", "인기", "베스트", "특가", "무료배송", "증정",
	"할인", "정품", "국내", "해외", "당일", "무료", "한정", "1+1", "2+1",
	"신상", "사은품", "이벤트",
})

// seasonKeywords 계절 코드별 트렌드 검색 키워드
var seasonKeywords = map[string][]string{
	"spring": {"봄 신상", "나들이"},
	"summer": {"여름 필수템", "시원한"},
	"fall":   {"가을 신상", "환절기"},
	"winter": {"겨울 필수템", "방한"},
}

// 상품 상태 관련 키워드 목록
var (
	// usedKeywords 중고/리퍼 상품을 나타내는 키워드
	usedKeywords = []string{"중고", "리퍼", "반품", "재고", "전시"}

	// rentalKeywords 렌탈 상품을 나타내는 키워드
	rentalKeywords = []string{"렌탈", "렌트", "대여", "월납"}
)

// Vocabulary 어휘 사전 교체 파라미터입니다. 비어있는 필드는 내장 사전을 유지합니다.
type Vocabulary struct {
	// Items 품목 명사 목록
	Items []string

	// Stopwords 키워드 추출 제외 상투어 목록
	Stopwords []string

	// Relations 관계 표현 → 관계 코드 (예: "동료" → "colleague")
	Relations map[string]string

	// Occasions 상황 표현 → 상황 코드 (예: "퇴사" → "farewell")
	Occasions map[string]string

	// Seasons 계절 코드 → 검색 키워드 목록 (spring/summer/fall/winter)
	Seasons map[string][]string
}

// Configure 내장 어휘 사전을 설정값으로 교체합니다.
//
// 서비스 기동 시 한 번만 호출해야 하며, 이후에는 읽기 전용으로 사용됩니다.
// 관계/상황 표현은 긴 표현이 먼저 매칭되도록 길이 내림차순으로 정렬됩니다.
func Configure(v Vocabulary) {
	if len(v.Items) > 0 {
		commonItemNouns = v.Items
	}
	if len(v.Stopwords) > 0 {
		keywordStopwords = toSet(v.Stopwords)
	}
	if len(v.Relations) > 0 {
		relationKeywords = sortedPairs(v.Relations)
	}
	if len(v.Occasions) > 0 {
		occasionKeywords = sortedPairs(v.Occasions)
		occasionKorean = invertPairs(occasionKeywords)
	}
	if len(v.Seasons) > 0 {
		seasonKeywords = v.Seasons
	}
}

// sortedPairs 표현→코드 맵을 길이 내림차순(동률 시 사전순) 쌍 목록으로 변환합니다.
func sortedPairs(m map[string]string) []vocabPair {
	pairs := make([]vocabPair, 0, len(m))
	for keyword, code := range m {
		pairs = append(pairs, vocabPair{keyword: keyword, code: code})
	}
	sort.Slice(pairs, func(i, j int) bool {
		ri, rj := []rune(pairs[i].keyword), []rune(pairs[j].keyword)
		if len(ri) != len(rj) {
			return len(ri) > len(rj)
		}
		return pairs[i].keyword < pairs[j].keyword
	})
	return pairs
}

// invertPairs 코드별 한국어 대표 표현을 추출합니다. (쌍 목록의 뒤쪽, 즉 짧은 표현 우선)
func invertPairs(pairs []vocabPair) map[string]string {
	inverted := make(map[string]string, len(pairs))
	for i := len(pairs) - 1; i >= 0; i-- {
		inverted[pairs[i].code] = pairs[i].keyword
	}
	return inverted
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// UsedKeywords 중고/리퍼 상품 키워드 목록을 반환합니다. (상품명 필터링용)
func UsedKeywords() []string {
	return usedKeywords
}

// RentalKeywords 렌탈 상품 키워드 목록을 반환합니다. (상품명 필터링용)
func RentalKeywords() []string {
	return rentalKeywords
}

// OccasionKorean 상황 코드의 한국어 표현을 반환합니다.
func OccasionKorean(occasion string) string {
	return occasionKorean[occasion]
}

// IsStopword 키워드 추출 대상에서 제외할 상투어인지 판정합니다.
func IsStopword(word string) bool {
	_, ok := keywordStopwords[word]
	return ok
}

// SeasonKeywords 계절 코드에 대응하는 트렌드 검색 키워드 목록을 반환합니다.
func SeasonKeywords(season string) []string {
	return seasonKeywords[season]
}
