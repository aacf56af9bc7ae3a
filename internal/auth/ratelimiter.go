package auth

import (
	"sync"
	"time"
)

// attemptRecord tracks failed logins for one username. An entry only exists
// between the first failure and either a successful login or cooldown expiry.
type attemptRecord struct {
	Count         int
	CooldownUntil time.Time // zero while still accruing
}

// LoginLimiter enforces a per-username lockout: after maxAttempts failures a
// cooldown arms, and every further failure during an active cooldown re-arms
// it, so trickle attacks cannot wait the window out attempt by attempt.
//
// State is in-memory only. A process restart resets all counters; that is an
// accepted trade-off for a single-process deployment.
type LoginLimiter struct {
	mu          sync.Mutex
	attempts    map[string]*attemptRecord
	maxAttempts int
	cooldown    time.Duration
	now         func() time.Time
}

func NewLoginLimiter(maxAttempts int, cooldown time.Duration) *LoginLimiter {
	return &LoginLimiter{
		attempts:    make(map[string]*attemptRecord),
		maxAttempts: maxAttempts,
		cooldown:    cooldown,
		now:         time.Now,
	}
}

// CheckAllowed reports whether a login attempt for username may proceed.
// When denied, the second return value is the remaining cooldown. Observing
// an expired cooldown clears the entry.
func (l *LoginLimiter) CheckAllowed(username string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.attempts[username]
	if !ok || rec.CooldownUntil.IsZero() {
		return true, 0
	}

	now := l.now()
	if now.Before(rec.CooldownUntil) {
		return false, rec.CooldownUntil.Sub(now)
	}

	delete(l.attempts, username)
	return true, 0
}

// RecordFailure counts a failed attempt and returns how many attempts remain
// before (or zero at/after) the lockout threshold. Once the threshold is
// reached the cooldown is set, and set again on each subsequent failure.
func (l *LoginLimiter) RecordFailure(username string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.attempts[username]
	if !ok {
		rec = &attemptRecord{}
		l.attempts[username] = rec
	}

	rec.Count++
	if rec.Count >= l.maxAttempts {
		rec.CooldownUntil = l.now().Add(l.cooldown)
	}

	left := l.maxAttempts - rec.Count
	if left < 0 {
		left = 0
	}
	return left
}

// ClearFailures removes the record for username entirely. Called only after a
// successful login.
func (l *LoginLimiter) ClearFailures(username string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, username)
}

// Sweep drops entries whose cooldown has expired and returns how many
// usernames are still locked out. Run periodically so abandoned lockouts do
// not accumulate.
func (l *LoginLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	locked := 0
	for username, rec := range l.attempts {
		if rec.CooldownUntil.IsZero() {
			continue
		}
		if now.Before(rec.CooldownUntil) {
			locked++
		} else {
			delete(l.attempts, username)
		}
	}
	return locked
}
