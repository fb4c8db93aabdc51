// Package catalog 네이버 쇼핑 오픈 API 기반의 상품 검색 게이트웨이를 제공합니다.
//
// 검색 결과는 파라미터 지문 기반으로 캐싱되며, 동일한 검색은 TTL 내에서
// 외부 API를 호출하지 않습니다.
package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/darkkaiser/cartpilot-server/internal/pkg/cache"
	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/darkkaiser/cartpilot-server/internal/service/catalog/fetcher"
	applog "github.com/darkkaiser/cartpilot-server/pkg/log"
)

// component 상품 검색 게이트웨이 로깅용 컴포넌트 이름
const component = "catalog"

// searchEndpoint 네이버 쇼핑 검색 API 엔드포인트
const searchEndpoint = "https://openapi.naver.com/v1/search/shop.json"

const (
	// maxDisplay API가 허용하는 요청당 최대 결과 수
	maxDisplay = 100

	// maxConcurrentSearches 다중 검색 시 동시에 진행할 수 있는 최대 요청 수
	maxConcurrentSearches = 10
)

// Sort 검색 결과 정렬 방식입니다.
type Sort string

const (
	// SortSimilarity 정확도순 (기본값)
	SortSimilarity Sort = "sim"

	// SortDate 날짜순 (최신 등록 상품 우선)
	SortDate Sort = "date"

	// SortPriceAsc 가격 오름차순
	SortPriceAsc Sort = "asc"

	// SortPriceDesc 가격 내림차순
	SortPriceDesc Sort = "dsc"
)

// SearchRequest 상품 검색 요청 파라미터입니다.
type SearchRequest struct {
	// Query 검색어 (필수)
	Query string

	// Display 반환할 최대 상품 수 (1~100)
	Display int

	// Sort 정렬 방식 (기본값: 정확도순)
	Sort Sort

	// MinPrice 최소 가격 (0이면 하한 없음)
	MinPrice int

	// MaxPrice 최대 가격 (0이면 상한 없음)
	MaxPrice int

	// ExcludeUsed 중고/리퍼 상품 제외 여부
	ExcludeUsed bool

	// ExcludeRental 렌탈 상품 제외 여부
	ExcludeRental bool
}

// normalize 요청 파라미터를 검증 가능한 범위로 보정합니다.
func (r SearchRequest) normalize() SearchRequest {
	if r.Display <= 0 {
		r.Display = 10
	}
	if r.Display > maxDisplay {
		r.Display = maxDisplay
	}
	if r.Sort == "" {
		r.Sort = SortSimilarity
	}
	return r
}

// Searcher 상품 검색 기능의 추상 인터페이스입니다.
// 추천 에이전트와 가격 모니터가 이 인터페이스를 통해 상품을 조회합니다.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) ([]*Product, error)
	SearchMany(ctx context.Context, reqs []SearchRequest) ([][]*Product, error)
}

// Client 네이버 쇼핑 검색 API 클라이언트입니다.
type Client struct {
	fetcher      fetcher.Fetcher
	cache        *cache.Cache
	clientID     string
	clientSecret string
}

var _ Searcher = (*Client)(nil)

// NewClient 새로운 검색 클라이언트를 생성합니다. cache는 nil일 수 있습니다.
func NewClient(f fetcher.Fetcher, c *cache.Cache, clientID, clientSecret string) *Client {
	return &Client{
		fetcher:      f,
		cache:        c,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// Search 상품을 검색합니다.
//
// 조건 필터링으로 인한 결과 부족을 보완하기 위해 요청한 수의 2배
// (최대 100개)를 가져온 후 필터링하고, 요청한 수만큼 잘라서 반환합니다.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]*Product, error) {
	req = req.normalize()

	if req.Query == "" {
		return nil, apperrors.New(apperrors.InvalidInput, "검색어가 비어있습니다")
	}

	cacheKey := cache.Key(cache.KeyPrefixSearch, map[string]any{
		"query":          req.Query,
		"display":        req.Display,
		"sort":           string(req.Sort),
		"min_price":      req.MinPrice,
		"max_price":      req.MaxPrice,
		"exclude_used":   req.ExcludeUsed,
		"exclude_rental": req.ExcludeRental,
	})

	if c.cache != nil {
		if cached, found := c.cache.Get(cacheKey); found {
			if products, ok := cached.([]*Product); ok {
				return products, nil
			}
		}
	}

	// 필터링으로 인한 결과 부족을 보완하기 위한 초과 조회
	overfetch := min(req.Display*2, maxDisplay)

	raw, err := c.fetch(ctx, req.Query, overfetch, req.Sort)
	if err != nil {
		return nil, err
	}

	products := make([]*Product, 0, len(raw.Items))
	for _, item := range raw.Items {
		if p := parseProduct(item); p != nil {
			products = append(products, p)
		}
	}

	products = filterProducts(products, req.ExcludeUsed, req.ExcludeRental)
	products = filterPriceBand(products, req.MinPrice, req.MaxPrice)
	if len(products) > req.Display {
		products = products[:req.Display]
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, products)
	}

	return products, nil
}

// SearchMany 여러 검색어를 제한된 동시성(최대 10개)으로 병렬 검색합니다.
//
// 반환 슬라이스는 요청 순서와 동일하며, 실패한 검색의 자리는 nil입니다.
// 모든 검색이 실패한 경우에만 에러를 반환합니다.
func (c *Client) SearchMany(ctx context.Context, reqs []SearchRequest) ([][]*Product, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	results := make([][]*Product, len(reqs))
	errs := make([]error, len(reqs))

	sem := make(chan struct{}, maxConcurrentSearches)
	var wg sync.WaitGroup

	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req SearchRequest) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			products, err := c.Search(ctx, req)
			if err != nil {
				errs[i] = err
				applog.WithComponentAndFields(component, applog.Fields{
					"query": req.Query,
					"error": err,
				}).Warn("상품 검색 실패 (부분 실패 허용)")
				return
			}
			results[i] = products
		}(i, req)
	}

	wg.Wait()

	// 모든 검색이 실패한 경우에만 에러로 취급
	failedCount := 0
	var lastErr error
	for _, err := range errs {
		if err != nil {
			failedCount++
			lastErr = err
		}
	}
	if failedCount == len(reqs) {
		return nil, apperrors.Wrap(lastErr, apperrors.ExecutionFailed, "모든 상품 검색 요청이 실패했습니다")
	}

	return results, nil
}

// fetch 검색 API를 호출하고 원본 응답을 반환합니다.
func (c *Client) fetch(ctx context.Context, query string, display int, sort Sort) (*productSearchResponse, error) {
	requestURL := buildSearchURL(query, display, sort)

	header := make(http.Header)
	header.Set("X-Naver-Client-Id", c.clientID)
	header.Set("X-Naver-Client-Secret", c.clientSecret)

	resp, err := fetcher.Get(ctx, c.fetcher, requestURL, header)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "상품 검색 API 호출에 실패했습니다")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// 정상 응답

	case resp.StatusCode == http.StatusUnauthorized:
		return nil, apperrors.New(apperrors.Unauthorized, "상품 검색 API 인증에 실패했습니다. Client ID/Secret을 확인하세요")

	case resp.StatusCode == http.StatusForbidden:
		return nil, apperrors.New(apperrors.Forbidden, "상품 검색 API 접근이 거부되었습니다")

	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperrors.New(apperrors.RateLimited, "상품 검색 API 호출 한도를 초과했습니다")

	default:
		return nil, apperrors.Newf(apperrors.ExecutionFailed, "상품 검색 API가 비정상 상태 코드를 반환했습니다: %d", resp.StatusCode)
	}

	var searchResponse productSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResponse); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, "상품 검색 API 응답 파싱에 실패했습니다")
	}

	return &searchResponse, nil
}

// buildSearchURL 검색 API 요청 URL을 생성합니다.
// url.Values.Encode()는 키를 정렬하므로 항상 결정적인 URL이 생성됩니다.
func buildSearchURL(query string, display int, sort Sort) string {
	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(display))
	params.Set("start", "1")
	params.Set("sort", string(sort))

	return searchEndpoint + "?" + params.Encode()
}
