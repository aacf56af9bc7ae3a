// Package session issues opaque server-side session tokens. Tokens are
// random, carry no claims, and live only in this process's memory; a restart
// logs everyone out. This replaces the original cookie-side session with an
// equivalent the API can hand to any presentation layer.
package session

import (
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// Manager maps token -> username with a TTL.
type Manager struct {
	cache    *gocache.Cache
	lifetime time.Duration
}

// NewManager creates a session manager whose tokens expire after lifetime.
func NewManager(lifetime time.Duration) *Manager {
	return &Manager{
		cache:    gocache.New(lifetime, 10*time.Minute),
		lifetime: lifetime,
	}
}

// Create issues a fresh token for username.
func (m *Manager) Create(username string) string {
	token := uuid.NewString()
	m.cache.Set(token, username, m.lifetime)
	return token
}

// Resolve returns the username behind a token, or false when the token is
// unknown or expired.
func (m *Manager) Resolve(token string) (string, bool) {
	v, ok := m.cache.Get(token)
	if !ok {
		return "", false
	}
	username, ok := v.(string)
	return username, ok
}

// Destroy invalidates a token. Unknown tokens are a no-op.
func (m *Manager) Destroy(token string) {
	m.cache.Delete(token)
}

// DestroyAllFor invalidates every live token for username, e.g. after a
// password change or account deletion.
func (m *Manager) DestroyAllFor(username string) {
	for token, item := range m.cache.Items() {
		if name, ok := item.Object.(string); ok && name == username {
			m.cache.Delete(token)
		}
	}
}
