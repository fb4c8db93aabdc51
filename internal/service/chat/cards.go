package chat

import (
	"github.com/darkkaiser/cartpilot-server/internal/service/catalog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// pricePrinter 가격을 천 단위 구분 기호로 표기하기 위한 프린터입니다.
var pricePrinter = message.NewPrinter(language.Korean)

// ProductCard 추천 응답에 포함되는 상품 카드입니다.
type ProductCard struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Price     int    `json:"price"`
	PriceText string `json:"price_text"` // 예: "1,234,000원"
	Link      string `json:"link"`
	Image     string `json:"image,omitempty"`
	Mall      string `json:"mall,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// newProductCard 검색 결과 상품을 카드로 변환합니다.
func newProductCard(p *catalog.Product, reason string) *ProductCard {
	return &ProductCard{
		ProductID: p.ProductID,
		Title:     p.Title,
		Price:     p.Price,
		PriceText: formatPriceText(p.Price),
		Link:      p.Link,
		Image:     p.Image,
		Mall:      p.Mall,
		Reason:    reason,
	}
}

// formatPriceText 가격을 "1,234,000원" 형식의 표시 문자열로 변환합니다.
func formatPriceText(price int) string {
	return pricePrinter.Sprintf("%d", price) + "원"
}
