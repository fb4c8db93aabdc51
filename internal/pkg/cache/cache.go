// Package cache 외부 API 호출 결과를 담아두는 인메모리 TTL 캐시를 제공합니다.
//
// 단일 프로세스 내에서만 유효하며, 프로세스 재시작 시 모든 항목이 사라집니다.
package cache

import (
	"sync"
	"time"
)

const (
	// defaultJanitorInterval 만료 항목 청소 고루틴의 기본 실행 주기
	defaultJanitorInterval = time.Minute
)

// entry 캐시에 저장되는 개별 항목입니다.
type entry struct {
	value     any
	expiresAt time.Time
}

// Stats 캐시의 운영 지표입니다. 헬스체크 응답에 포함됩니다.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// Cache TTL 기반 인메모리 캐시입니다.
//
// 항목 수가 최대치에 도달하면 만료 시각이 가장 가까운 항목부터 제거합니다.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	ttl        time.Duration
	maxEntries int

	hits   int64
	misses int64

	janitorStopCh chan struct{}
	janitorOnce   sync.Once

	// 테스트에서 시간 흐름을 제어하기 위한 주입 지점
	now func() time.Time
}

// New 지정된 TTL과 최대 항목 수를 가진 캐시를 생성하고 청소 고루틴을 시작합니다.
// 사용이 끝나면 반드시 Stop()을 호출하여 청소 고루틴을 정리해야 합니다.
func New(ttl time.Duration, maxEntries int) *Cache {
	c := &Cache{
		entries:       make(map[string]entry),
		ttl:           ttl,
		maxEntries:    maxEntries,
		janitorStopCh: make(chan struct{}),
		now:           time.Now,
	}

	go c.janitor(defaultJanitorInterval)

	return c
}

// Get 키에 해당하는 값을 조회합니다. 항목이 없거나 만료된 경우 false를 반환합니다.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[key]
	if !exists || c.now().After(e.expiresAt) {
		if exists {
			delete(c.entries, key)
		}
		c.misses++
		return nil, false
	}

	c.hits++
	return e.value, true
}

// Set 키에 값을 저장합니다. 기본 TTL이 적용됩니다.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL 키에 값을 지정된 TTL로 저장합니다.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 최대 항목 수 초과 시 만료 시각이 가장 가까운 항목부터 제거
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictNearestExpiryLocked()
	}

	c.entries[key] = entry{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
}

// Delete 키에 해당하는 항목을 제거합니다.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Clear 모든 항목을 제거합니다. 운영 지표는 유지됩니다.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
}

// Stats 현재 캐시의 운영 지표를 반환합니다.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Stats{
		Hits:    c.hits,
		Misses:  c.misses,
		Entries: len(c.entries),
	}
}

// Stop 청소 고루틴을 종료합니다. 여러 번 호출되어도 안전합니다.
func (c *Cache) Stop() {
	c.janitorOnce.Do(func() {
		close(c.janitorStopCh)
	})
}

// evictNearestExpiryLocked 만료 시각이 가장 가까운 항목 하나를 제거합니다.
// 호출 전 반드시 쓰기 잠금을 획득해야 합니다.
func (c *Cache) evictNearestExpiryLocked() {
	var victimKey string
	var victimExpiry time.Time

	for k, e := range c.entries {
		if victimKey == "" || e.expiresAt.Before(victimExpiry) {
			victimKey = k
			victimExpiry = e.expiresAt
		}
	}

	if victimKey != "" {
		delete(c.entries, victimKey)
	}
}

// janitor 주기적으로 만료된 항목을 청소합니다.
func (c *Cache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()

		case <-c.janitorStopCh:
			return
		}
	}
}

// removeExpired 만료된 모든 항목을 제거합니다.
func (c *Cache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}
