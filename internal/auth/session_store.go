package auth

import (
	"container/heap"
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"toko/internal/cache"
)

const sessionKeyPrefix = "session:"

// RedisSessionStore keeps sessions in Redis; expiry is the key TTL.
type RedisSessionStore struct {
	cache *cache.Client
}

// Ensure RedisSessionStore implements SessionStore
var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(cache *cache.Client) *RedisSessionStore {
	return &RedisSessionStore{cache: cache}
}

// Put stores the binding with the given TTL.
func (s *RedisSessionStore) Put(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	return s.cache.Set(ctx, sessionKeyPrefix+token, []byte(strconv.FormatInt(userID, 10)), ttl)
}

// Get loads a binding. Redis errors are returned, never read as a miss.
func (s *RedisSessionStore) Get(ctx context.Context, token string) (int64, bool, error) {
	data, err := s.cache.Get(ctx, sessionKeyPrefix+token)
	if err != nil {
		return 0, false, err
	}
	if data == nil {
		return 0, false, nil
	}

	userID, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid session payload: %w", err)
	}
	return userID, true, nil
}

// Delete removes a binding.
func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+token)
}

type memorySession struct {
	userID    int64
	expiresAt time.Time
}

// sessionExpiry is a heap entry. It may outlive its session when the token
// is deleted or re-put; eviction checks the stored expiry before deleting.
type sessionExpiry struct {
	token string
	at    time.Time
}

type expiryHeap []sessionExpiry

func (h expiryHeap) Len() int           { return len(h) }
func (h expiryHeap) Less(i, j int) bool { return h[i].at.Before(h[j].at) }
func (h expiryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *expiryHeap) Push(x any)        { *h = append(*h, x.(sessionExpiry)) }
func (h *expiryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// MemorySessionStore keeps sessions in process memory. It suits tests and
// single-instance deployments. Expired sessions are evicted on every Put, so
// abandoned tokens do not accumulate.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	expiries expiryHeap
	now      func() time.Time
}

// Ensure MemorySessionStore implements SessionStore
var _ SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Put(_ context.Context, token string, userID int64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictExpired(now)

	expiresAt := now.Add(ttl)
	s.sessions[token] = memorySession{userID: userID, expiresAt: expiresAt}
	heap.Push(&s.expiries, sessionExpiry{token: token, at: expiresAt})
	return nil
}

func (s *MemorySessionStore) evictExpired(now time.Time) {
	for len(s.expiries) > 0 && !now.Before(s.expiries[0].at) {
		e := heap.Pop(&s.expiries).(sessionExpiry)
		if sess, ok := s.sessions[e.token]; ok && sess.expiresAt.Equal(e.at) {
			delete(s.sessions, e.token)
		}
	}
}

func (s *MemorySessionStore) Get(_ context.Context, token string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return 0, false, nil
	}
	if !s.now().Before(sess.expiresAt) {
		delete(s.sessions, token)
		return 0, false, nil
	}
	return sess.userID, true, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// Len returns the number of stored bindings, including expired ones not yet
// evicted.
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
