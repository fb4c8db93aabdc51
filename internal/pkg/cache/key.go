package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// 캐시 키 접두사
const (
	// KeyPrefixSearch 상품 검색 결과 캐시 키의 접두사
	KeyPrefixSearch = "search"

	// KeyPrefixRecommendation 추천 결과 캐시 키의 접두사
	KeyPrefixRecommendation = "rec"
)

// fingerprintLength 캐시 키에 포함되는 파라미터 지문의 길이
const fingerprintLength = 12

// Key 파라미터 맵으로부터 결정적인 캐시 키를 생성합니다.
//
// 파라미터를 키 기준으로 정렬한 JSON으로 직렬화한 후 MD5 해시의 앞 12자를
// 지문으로 사용합니다. 동일한 파라미터 조합은 순서와 무관하게 항상 동일한
// 키를 생성합니다. 예: "search:a1b2c3d4e5f6"
func Key(prefix string, params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		keyJSON, _ := json.Marshal(k)
		valueJSON, _ := json.Marshal(params[k])
		b.Write(keyJSON)
		b.WriteByte(':')
		b.Write(valueJSON)
	}
	b.WriteByte('}')

	sum := md5.Sum([]byte(b.String()))
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:])[:fingerprintLength])
}
