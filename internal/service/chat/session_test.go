package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionStore(t *testing.T, ttl time.Duration) (*SessionStore, *time.Time) {
	t.Helper()

	current := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore(ttl)
	store.now = func() time.Time { return current }
	t.Cleanup(store.Stop)

	return store, &current
}

func TestNewSessionID_형식(t *testing.T) {
	id := NewSessionID()

	assert.True(t, strings.HasPrefix(id, "sess_"))
	assert.Len(t, id, len("sess_")+12)

	// 매번 다른 식별자가 생성되어야 한다
	assert.NotEqual(t, id, NewSessionID())
}

func TestSessionStore_GetOrCreate(t *testing.T) {
	store, _ := newTestSessionStore(t, time.Hour)

	created := store.GetOrCreate("", "user-1")
	require.NotNil(t, created)
	assert.Equal(t, "user-1", created.UserID)

	// 동일한 식별자로 조회하면 같은 세션이 반환되어야 한다
	found := store.GetOrCreate(created.ID, "user-1")
	assert.Same(t, created, found)

	// 존재하지 않는 식별자는 새 세션을 생성한다
	recreated := store.GetOrCreate("sess_unknown00000", "user-1")
	assert.NotEqual(t, created.ID, recreated.ID)
}

func TestSessionStore_만료(t *testing.T) {
	store, current := newTestSessionStore(t, 60*time.Minute)

	sess := store.GetOrCreate("", "user-1")

	// TTL 이내에는 세션이 유지된다
	*current = current.Add(50 * time.Minute)
	assert.NotNil(t, store.Get(sess.ID))

	// 대화가 이어지더라도 만료 시점은 생성 시각 기준이라 연장되지 않는다
	*current = current.Add(11 * time.Minute)
	assert.Nil(t, store.Get(sess.ID))

	// 만료된 세션 식별자로 GetOrCreate 하면 새 세션이 생성된다
	recreated := store.GetOrCreate(sess.ID, "user-1")
	assert.NotEqual(t, sess.ID, recreated.ID)
}

func TestSessionStore_removeExpired(t *testing.T) {
	store, current := newTestSessionStore(t, time.Minute)

	store.GetOrCreate("", "user-1")
	store.GetOrCreate("", "user-2")
	require.Equal(t, 2, store.Len())

	*current = current.Add(2 * time.Minute)
	store.removeExpired()

	assert.Equal(t, 0, store.Len())
}

func TestSessionStore_Stop_중복호출(t *testing.T) {
	store := NewSessionStore(time.Hour)

	store.Stop()
	store.Stop() // 중복 호출에 안전해야 한다
}
