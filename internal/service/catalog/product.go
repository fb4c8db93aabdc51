package catalog

import (
	"strconv"
	"strings"

	"github.com/darkkaiser/cartpilot-server/internal/pkg/strutil"
)

// Product 네이버 쇼핑 검색 결과의 개별 상품 정보입니다.
type Product struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Link      string `json:"link"`
	Image     string `json:"image"`
	Price     int    `json:"price"`
	Mall      string `json:"mall"`
	Brand     string `json:"brand"`
	Maker     string `json:"maker"`
	Category  string `json:"category"`
}

// productSearchResponse 네이버 쇼핑 검색 API의 원본 응답 구조입니다.
type productSearchResponse struct {
	Total   int                          `json:"total"`
	Start   int                          `json:"start"`
	Display int                          `json:"display"`
	Items   []*productSearchResponseItem `json:"items"`
}

// productSearchResponseItem 검색 API 응답의 개별 상품 항목입니다.
// 가격은 쉼표가 포함된 문자열로 내려올 수 있습니다.
type productSearchResponseItem struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Image     string `json:"image"`
	LowPrice  string `json:"lprice"`
	MallName  string `json:"mallName"`
	ProductID string `json:"productId"`
	Brand     string `json:"brand"`
	Maker     string `json:"maker"`
	Category1 string `json:"category1"`
	Category2 string `json:"category2"`
	Category3 string `json:"category3"`
	Category4 string `json:"category4"`
}

// parseProduct 원본 응답 항목을 Product로 변환합니다.
// 가격을 파싱할 수 없거나 0원인 상품은 nil을 반환합니다.
func parseProduct(item *productSearchResponseItem) *Product {
	price, err := strconv.Atoi(strings.ReplaceAll(item.LowPrice, ",", ""))
	if err != nil || price <= 0 {
		return nil
	}

	category := item.Category1
	for _, c := range []string{item.Category2, item.Category3, item.Category4} {
		if c != "" {
			category = category + ">" + c
		}
	}

	return &Product{
		ProductID: item.ProductID,
		Title:     strutil.StripHTML(item.Title),
		Link:      item.Link,
		Image:     item.Image,
		Price:     price,
		Mall:      item.MallName,
		Brand:     item.Brand,
		Maker:     item.Maker,
		Category:  category,
	}
}
