package catalog

import (
	"strings"

	"github.com/darkkaiser/cartpilot-server/internal/pkg/textparse"
)

// containsKeyword 상품명에 키워드 목록 중 하나라도 포함되어 있는지 확인합니다.
func containsKeyword(title string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(title, keyword) {
			return true
		}
	}
	return false
}

// filterProducts 상품 상태 조건에 따라 검색 결과를 거릅니다.
//
// excludeUsed가 true이면 중고/리퍼/반품 상품을, excludeRental이 true이면
// 렌탈 상품을 상품명 키워드 매칭으로 제외합니다.
func filterProducts(products []*Product, excludeUsed, excludeRental bool) []*Product {
	filtered := make([]*Product, 0, len(products))

	for _, p := range products {
		if excludeUsed && containsKeyword(p.Title, textparse.UsedKeywords()) {
			continue
		}
		if excludeRental && containsKeyword(p.Title, textparse.RentalKeywords()) {
			continue
		}
		filtered = append(filtered, p)
	}

	return filtered
}

// filterPriceBand 가격 범위(minPrice ≤ 가격 ≤ maxPrice)를 벗어난 상품을 제외합니다.
// 0인 경계는 해당 방향의 제한이 없는 것으로 취급합니다.
func filterPriceBand(products []*Product, minPrice, maxPrice int) []*Product {
	if minPrice <= 0 && maxPrice <= 0 {
		return products
	}

	filtered := make([]*Product, 0, len(products))
	for _, p := range products {
		if minPrice > 0 && p.Price < minPrice {
			continue
		}
		if maxPrice > 0 && p.Price > maxPrice {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}
