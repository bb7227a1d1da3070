package auth

import "sync"

// TokenStore holds the access/refresh token pair of a single session.
// Implementations must make Replace atomic: both tokens change or neither does.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	SetAccessToken(access string)
	Replace(access, refresh string)
	Clear()
}

// MemoryTokenStore is a TokenStore kept in process memory. The last writer wins.
type MemoryTokenStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

func NewMemoryTokenStore(access, refresh string) *MemoryTokenStore {
	return &MemoryTokenStore{access: access, refresh: refresh}
}

func (s *MemoryTokenStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *MemoryTokenStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

func (s *MemoryTokenStore) SetAccessToken(access string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
}

func (s *MemoryTokenStore) Replace(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
}

func (s *MemoryTokenStore) Clear() {
	s.Replace("", "")
}
