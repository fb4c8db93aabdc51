package chat

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// sessionIDPrefix 세션 식별자 접두사
const sessionIDPrefix = "sess_"

// sessionIDLength 세션 식별자에 포함되는 uuid 지문의 길이
const sessionIDLength = 12

// sessionJanitorInterval 만료 세션 정리 주기
const sessionJanitorInterval = 1 * time.Minute

// Message 대화 이력의 단일 메시지입니다.
type Message struct {
	Role    string    `json:"role"` // "user" 또는 "assistant"
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at"`
}

// Session 단일 대화 세션입니다.
//
// 대화 이력과 되묻기(clarification) 진행 상태를 보관합니다.
// 세션에 대한 접근은 SessionStore가 직렬화하므로 Session 자체는 잠금을 갖지 않습니다.
type Session struct {
	ID     string
	UserID string

	History []Message

	// PendingAnalysis 되묻기 진행 중인 미완성 분석 결과입니다.
	PendingAnalysis *Analysis

	// PendingField 직전 되묻기에서 질문한 필드입니다.
	PendingField string

	// ClarifyCount 이 세션에서 수행한 되묻기 횟수입니다.
	ClarifyCount int

	CreatedAt    time.Time
	LastActiveAt time.Time
}

// AppendMessage 대화 이력에 메시지를 추가합니다.
func (s *Session) AppendMessage(role, content string, at time.Time) {
	s.History = append(s.History, Message{Role: role, Content: content, SentAt: at})
}

// UserText 세션에 누적된 사용자 발화 전체를 공백으로 이어 반환합니다.
// 발화 분석기의 입력으로 사용되어 후속 발화에서도 앞선 문맥이 유지됩니다.
func (s *Session) UserText() string {
	var texts []string
	for _, m := range s.History {
		if m.Role == roleUser {
			texts = append(texts, m.Content)
		}
	}
	return strings.Join(texts, " ")
}

// NewSessionID 새 세션 식별자를 생성합니다. (예: "sess_a1b2c3d4e5f6")
func NewSessionID() string {
	hexID := strings.ReplaceAll(uuid.New().String(), "-", "")
	return sessionIDPrefix + hexID[:sessionIDLength]
}

// SessionStore 인메모리 세션 저장소입니다.
//
// 세션은 생성 시점부터 TTL 동안만 유지되며, 대화가 계속 이어지더라도
// 만료 시점은 연장되지 않습니다. 만료된 세션은 백그라운드 정리 루프가
// 주기적으로 제거합니다.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration

	stopC    chan struct{}
	stopOnce sync.Once

	// now 테스트에서 시간 제어를 위해 주입 가능합니다.
	now func() time.Time
}

// NewSessionStore 세션 저장소를 생성하고 정리 루프를 시작합니다.
func NewSessionStore(ttl time.Duration) *SessionStore {
	s := &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		stopC:    make(chan struct{}),
		now:      time.Now,
	}

	go s.janitor()

	return s
}

// GetOrCreate 세션을 조회하거나, 없으면(또는 만료되었으면) 새로 생성합니다.
func (s *SessionStore) GetOrCreate(sessionID, userID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if sessionID != "" {
		if sess, ok := s.sessions[sessionID]; ok && !s.expiredLocked(sess, now) {
			sess.LastActiveAt = now
			return sess
		}
	}

	sess := &Session{
		ID:           NewSessionID(),
		UserID:       userID,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	s.sessions[sess.ID] = sess

	return sess
}

// Get 세션을 조회합니다. 만료되었거나 없으면 nil을 반환합니다.
func (s *SessionStore) Get(sessionID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || s.expiredLocked(sess, s.now()) {
		return nil
	}

	sess.LastActiveAt = s.now()
	return sess
}

// Delete 세션을 제거합니다.
func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
}

// Len 현재 보관 중인 세션 수를 반환합니다. (만료 미정리분 포함)
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// Stop 정리 루프를 중단합니다. 중복 호출에 안전합니다.
func (s *SessionStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopC)
	})
}

// expiredLocked 생성 시점 기준으로 TTL이 지났는지 판정합니다.
func (s *SessionStore) expiredLocked(sess *Session, now time.Time) bool {
	return now.Sub(sess.CreatedAt) > s.ttl
}

func (s *SessionStore) janitor() {
	ticker := time.NewTicker(sessionJanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.removeExpired()
		case <-s.stopC:
			return
		}
	}
}

func (s *SessionStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, sess := range s.sessions {
		if s.expiredLocked(sess, now) {
			delete(s.sessions, id)
		}
	}
}
