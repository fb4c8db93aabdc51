// Package preference 사용자의 구매 내역, 관심상품, 평가 데이터를 기반으로
// 취향 프로필을 생성합니다. 생성된 프로필은 추천 에이전트의 프롬프트 컨텍스트로 사용됩니다.
package preference

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/darkkaiser/cartpilot-server/internal/pkg/textparse"
	"github.com/darkkaiser/cartpilot-server/internal/storage"
)

// component 취향 분석 로깅용 컴포넌트 이름
const component = "preference"

// analysisWindow 분석 대상 기간입니다. 이 기간 이전의 구매 내역은 제외합니다.
const analysisWindow = 180 * 24 * time.Hour

// 카테고리 선호도 / 구매 빈도 임계값 (건수 기준)
const (
	highPreferenceScore   = 10.0
	mediumPreferenceScore = 3.0
)

// 가중치: 실제 구매가 관심상품 등록보다 강한 선호 신호입니다.
const (
	purchaseWeight = 0.7
	wishlistWeight = 0.3
)

// 가격 민감도 판정 기준 (평균 구매 가격, 원)
const (
	highSensitivityCeiling = 20_000
	lowSensitivityFloor    = 100_000
)

const (
	maxCategories      = 10
	maxKeywords        = 10
	minTokenLength     = 2
	minTokenCount      = 2
	maxLikedProducts   = 20
	maxTopMalls        = 5
	maxRecentPurchases = 5
)

// tokenRegexp 상품명에서 키워드 후보를 추출하는 패턴입니다.
var tokenRegexp = regexp.MustCompile(`[가-힣a-zA-Z0-9+]+`)

// Sensitivity 가격 민감도입니다.
type Sensitivity string

const (
	SensitivityHigh   Sensitivity = "high"
	SensitivityMedium Sensitivity = "medium"
	SensitivityLow    Sensitivity = "low"
)

// Korean 가격 민감도의 한국어 표현을 반환합니다.
func (s Sensitivity) Korean() string {
	switch s {
	case SensitivityHigh:
		return "높음 (가성비 중시)"
	case SensitivityLow:
		return "낮음 (프리미엄 선호)"
	default:
		return "보통"
	}
}

// Frequency 구매 빈도 구간입니다. (분석 기간 내 구매 건수 기준)
type Frequency string

const (
	FrequencyHigh   Frequency = "high"   // 10건 이상
	FrequencyMedium Frequency = "medium" // 3건 이상
	FrequencyLow    Frequency = "low"
)

// Korean 구매 빈도의 한국어 표현을 반환합니다.
func (f Frequency) Korean() string {
	switch f {
	case FrequencyHigh:
		return "자주 구매"
	case FrequencyMedium:
		return "보통"
	default:
		return "가끔 구매"
	}
}

// CategoryPreference 카테고리별 선호도입니다.
type CategoryPreference struct {
	Category string  `json:"category"`
	Level    string  `json:"level"` // high, medium, low
	Score    float64 `json:"score"`
}

// Profile 사용자의 취향 프로필입니다.
type Profile struct {
	UserID           string               `json:"user_id"`
	Categories       []CategoryPreference `json:"categories,omitempty"`
	PriceSensitivity Sensitivity          `json:"price_sensitivity,omitempty"`
	AveragePrice     int64                `json:"average_price,omitempty"`

	// PurchaseFrequency 분석 기간 내 구매 빈도 구간
	PurchaseFrequency Frequency `json:"purchase_frequency,omitempty"`

	// TopMalls 자주 이용하는 판매처 (최대 5곳)
	TopMalls []string `json:"top_malls,omitempty"`

	// AverageRating 전체 평가의 평균 별점
	AverageRating float64 `json:"average_rating,omitempty"`

	// RecentPurchases 최근 구매 상품명 (최대 5개)
	RecentPurchases []string `json:"recent_purchases,omitempty"`

	Keywords      []string  `json:"keywords,omitempty"`
	LikedProducts []string  `json:"liked_products,omitempty"`
	AnalyzedAt    time.Time `json:"analyzed_at"`
}

// Empty 프로필에 의미 있는 데이터가 전혀 없는지 여부를 반환합니다.
func (p *Profile) Empty() bool {
	return len(p.Categories) == 0 && len(p.Keywords) == 0 &&
		len(p.LikedProducts) == 0 && len(p.RecentPurchases) == 0
}

// PromptContext 프로필을 LLM 프롬프트에 삽입할 한국어 텍스트로 변환합니다.
// 데이터가 없는 프로필은 빈 문자열을 반환합니다.
func (p *Profile) PromptContext() string {
	if p.Empty() {
		return ""
	}

	var b strings.Builder
	b.WriteString("[사용자 취향 정보]\n")

	if len(p.Categories) > 0 {
		var parts []string
		for _, c := range p.Categories {
			parts = append(parts, fmt.Sprintf("%s(%s)", c.Category, levelKorean(c.Level)))
		}
		b.WriteString("- 선호 카테고리: " + strings.Join(parts, ", ") + "\n")
	}

	if p.PriceSensitivity != "" {
		b.WriteString("- 가격 민감도: " + p.PriceSensitivity.Korean())
		if p.AveragePrice > 0 {
			b.WriteString(fmt.Sprintf(" (평균 구매 가격 %d원)", p.AveragePrice))
		}
		b.WriteString("\n")
	}

	if p.PurchaseFrequency != "" {
		b.WriteString("- 구매 빈도: " + p.PurchaseFrequency.Korean() + "\n")
	}

	if len(p.TopMalls) > 0 {
		b.WriteString("- 자주 이용하는 판매처: " + strings.Join(p.TopMalls, ", ") + "\n")
	}

	if p.AverageRating > 0 {
		b.WriteString(fmt.Sprintf("- 평균 평가 별점: %.1f점\n", p.AverageRating))
	}

	if len(p.RecentPurchases) > 0 {
		b.WriteString("- 최근 구매 상품: " + strings.Join(p.RecentPurchases, ", ") + "\n")
	}

	if len(p.Keywords) > 0 {
		b.WriteString("- 높게 평가한 상품 키워드: " + strings.Join(p.Keywords, ", ") + "\n")
	}

	if len(p.LikedProducts) > 0 {
		b.WriteString("- 높게 평가한 상품: " + strings.Join(p.LikedProducts, ", ") + "\n")
	}

	return b.String()
}

func levelKorean(level string) string {
	switch level {
	case "high":
		return "매우 선호"
	case "medium":
		return "선호"
	default:
		return "관심"
	}
}

// purchaseReader 취향 분석에 필요한 구매 내역 조회 기능입니다.
type purchaseReader interface {
	ListSince(ctx context.Context, userID string, since time.Time) ([]*storage.Purchase, error)
}

// wishlistReader 취향 분석에 필요한 관심상품 조회 기능입니다.
type wishlistReader interface {
	ListByUser(ctx context.Context, userID string) ([]*storage.WishlistItem, error)
}

// ratingReader 취향 분석에 필요한 평가 조회 기능입니다.
type ratingReader interface {
	ListByUser(ctx context.Context, userID string) ([]*storage.Rating, error)
	ListHighRated(ctx context.Context, userID string) ([]*storage.Rating, error)
}

// Analyzer 사용자 취향 분석기입니다.
type Analyzer struct {
	purchases purchaseReader
	wishlist  wishlistReader
	ratings   ratingReader

	// now 테스트에서 시간 제어를 위해 주입 가능합니다.
	now func() time.Time
}

// NewAnalyzer 취향 분석기를 생성합니다.
func NewAnalyzer(purchases purchaseReader, wishlist wishlistReader, ratings ratingReader) *Analyzer {
	return &Analyzer{
		purchases: purchases,
		wishlist:  wishlist,
		ratings:   ratings,
		now:       time.Now,
	}
}

// Analyze 최근 180일의 구매 내역과 관심상품, 평가를 종합하여 취향 프로필을 생성합니다.
func (a *Analyzer) Analyze(ctx context.Context, userID string) (*Profile, error) {
	now := a.now()
	since := now.Add(-analysisWindow)

	purchases, err := a.purchases.ListSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	wishlistItems, err := a.wishlist.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	allRatings, err := a.ratings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	highRated, err := a.ratings.ListHighRated(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		UserID:     userID,
		AnalyzedAt: now,
	}

	profile.Categories = analyzeCategories(purchases)
	profile.PriceSensitivity, profile.AveragePrice = analyzePriceSensitivity(purchases, wishlistItems)
	profile.PurchaseFrequency = purchaseFrequency(purchases)
	profile.TopMalls = topMalls(purchases, wishlistItems)
	profile.AverageRating = averageRating(allRatings)
	profile.RecentPurchases = recentPurchaseTitles(purchases)
	profile.Keywords = extractKeywords(highRated)
	profile.LikedProducts = collectLikedProducts(highRated)

	return profile, nil
}

// analyzeCategories 구매 횟수를 집계하여 카테고리 선호도를 계산합니다. (상위 10개)
// 관심상품에는 카테고리 정보가 없으므로 구매 내역만 사용합니다.
func analyzeCategories(purchases []*storage.Purchase) []CategoryPreference {
	scores := make(map[string]float64)

	for _, p := range purchases {
		if p.Category == "" {
			continue
		}
		scores[topCategory(p.Category)]++
	}

	if len(scores) == 0 {
		return nil
	}

	var prefs []CategoryPreference
	for category, score := range scores {
		level := "low"
		switch {
		case score >= highPreferenceScore:
			level = "high"
		case score >= mediumPreferenceScore:
			level = "medium"
		}
		prefs = append(prefs, CategoryPreference{Category: category, Level: level, Score: score})
	}

	sort.Slice(prefs, func(i, j int) bool {
		if prefs[i].Score != prefs[j].Score {
			return prefs[i].Score > prefs[j].Score
		}
		return prefs[i].Category < prefs[j].Category
	})

	if len(prefs) > maxCategories {
		prefs = prefs[:maxCategories]
	}

	return prefs
}

// topCategory "디지털/가전>노트북" 형식에서 최상위 카테고리를 추출합니다.
func topCategory(category string) string {
	if idx := strings.Index(category, ">"); idx >= 0 {
		return strings.TrimSpace(category[:idx])
	}
	return strings.TrimSpace(category)
}

// analyzePriceSensitivity 평균 가격으로 가격 민감도를 판정합니다.
//
// 실제 구매 가격(가중치 0.7)과 관심상품 가격(가중치 0.3)을 혼합하여
// 관심만 있고 구매하지 않은 가격대도 일부 반영합니다.
func analyzePriceSensitivity(purchases []*storage.Purchase, wishlistItems []*storage.WishlistItem) (Sensitivity, int64) {
	if len(purchases) == 0 && len(wishlistItems) == 0 {
		return "", 0
	}

	var avg int64
	switch {
	case len(wishlistItems) == 0:
		avg = averagePurchasePrice(purchases)
	case len(purchases) == 0:
		avg = averageWishlistPrice(wishlistItems)
	default:
		avg = int64(purchaseWeight*float64(averagePurchasePrice(purchases)) +
			wishlistWeight*float64(averageWishlistPrice(wishlistItems)))
	}

	switch {
	case avg < highSensitivityCeiling:
		return SensitivityHigh, avg
	case avg > lowSensitivityFloor:
		return SensitivityLow, avg
	default:
		return SensitivityMedium, avg
	}
}

func averagePurchasePrice(purchases []*storage.Purchase) int64 {
	var total int64
	for _, p := range purchases {
		total += p.Price
	}
	return total / int64(len(purchases))
}

func averageWishlistPrice(items []*storage.WishlistItem) int64 {
	var total int64
	for _, w := range items {
		total += w.CurrentPrice
	}
	return total / int64(len(items))
}

// purchaseFrequency 분석 기간 내 구매 건수로 빈도 구간을 판정합니다.
// 구매 내역이 없으면 빈 값을 반환합니다.
func purchaseFrequency(purchases []*storage.Purchase) Frequency {
	switch count := len(purchases); {
	case count == 0:
		return ""
	case count >= int(highPreferenceScore):
		return FrequencyHigh
	case count >= int(mediumPreferenceScore):
		return FrequencyMedium
	default:
		return FrequencyLow
	}
}

// topMalls 구매 내역과 관심상품에서 자주 등장하는 판매처를 집계합니다. (상위 5곳)
func topMalls(purchases []*storage.Purchase, wishlistItems []*storage.WishlistItem) []string {
	counts := make(map[string]int)
	for _, p := range purchases {
		if p.Mall != "" {
			counts[p.Mall]++
		}
	}
	for _, w := range wishlistItems {
		if w.Mall != "" {
			counts[w.Mall]++
		}
	}

	if len(counts) == 0 {
		return nil
	}

	type mallCount struct {
		mall  string
		count int
	}
	var candidates []mallCount
	for mall, count := range counts {
		candidates = append(candidates, mallCount{mall, count})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].mall < candidates[j].mall
	})

	if len(candidates) > maxTopMalls {
		candidates = candidates[:maxTopMalls]
	}

	malls := make([]string, 0, len(candidates))
	for _, c := range candidates {
		malls = append(malls, c.mall)
	}
	return malls
}

// averageRating 전체 평가의 평균 별점을 계산합니다.
func averageRating(ratings []*storage.Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}

	var total int
	for _, r := range ratings {
		total += r.Score
	}
	return float64(total) / float64(len(ratings))
}

// recentPurchaseTitles 최근 구매 상품명을 수집합니다. (최대 5개, 최신순)
func recentPurchaseTitles(purchases []*storage.Purchase) []string {
	var titles []string
	for _, p := range purchases {
		titles = append(titles, p.ProductTitle)
		if len(titles) >= maxRecentPurchases {
			break
		}
	}
	return titles
}

// extractKeywords 높게 평가한(4점 이상) 상품명에서 자주 등장하는 키워드를 추출합니다.
// 2회 이상 등장한 단어만 대상으로 하며 최대 10개까지 반환합니다.
func extractKeywords(highRated []*storage.Rating) []string {
	counts := make(map[string]int)

	for _, r := range highRated {
		for _, token := range tokenRegexp.FindAllString(r.ProductTitle, -1) {
			token = strings.ToLower(token)
			if len([]rune(token)) < minTokenLength {
				continue
			}
			if textparse.IsStopword(token) {
				continue
			}
			counts[token]++
		}
	}

	type keywordCount struct {
		word  string
		count int
	}
	var candidates []keywordCount
	for word, count := range counts {
		if count >= minTokenCount {
			candidates = append(candidates, keywordCount{word, count})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].word < candidates[j].word
	})

	if len(candidates) > maxKeywords {
		candidates = candidates[:maxKeywords]
	}

	keywords := make([]string, 0, len(candidates))
	for _, c := range candidates {
		keywords = append(keywords, c.word)
	}
	return keywords
}

// collectLikedProducts 높게 평가한 상품명을 수집합니다. (최대 20개)
func collectLikedProducts(ratings []*storage.Rating) []string {
	var products []string
	for _, r := range ratings {
		products = append(products, r.ProductTitle)
		if len(products) >= maxLikedProducts {
			break
		}
	}
	return products
}
