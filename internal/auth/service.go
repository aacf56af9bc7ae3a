package auth

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"kpssquiz/internal/models"
	"kpssquiz/internal/store"
)

// MinPasswordLength is the registration/change-password minimum, counted in
// characters, not bytes.
const MinPasswordLength = 6

// AccountService orchestrates the user store, password hasher and login
// limiter. It is the only entry point the HTTP layer uses; nothing else
// touches the store during login, registration or password changes.
type AccountService struct {
	store   store.UserStore
	hasher  PasswordHasher
	limiter *LoginLimiter
	now     func() time.Time
}

func NewAccountService(st store.UserStore, hasher PasswordHasher, limiter *LoginLimiter) *AccountService {
	return &AccountService{
		store:   st,
		hasher:  hasher,
		limiter: limiter,
		now:     time.Now,
	}
}

// Register creates a new account with a freshly hashed password and an empty
// results blob.
func (s *AccountService) Register(username, displayName, password string, isAdmin bool) (*models.Account, error) {
	accounts, err := s.store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", username, err)
	}

	if _, exists := accounts[username]; exists {
		return nil, ErrDuplicateUsername
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password for %s: %w", username, err)
	}

	acc := &models.Account{
		DisplayName:  displayName,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		Results:      json.RawMessage(`{}`),
		CreatedAt:    s.now(),
	}
	accounts[username] = acc

	if err := s.store.SaveAll(accounts); err != nil {
		return nil, fmt.Errorf("register %s: %w", username, err)
	}
	return acc, nil
}

// Login verifies credentials under the rate limit. The limiter is consulted
// before the store is read, so a locked-out caller learns nothing about
// whether the username exists. On success the failure record is cleared and
// last_login is persisted.
func (s *AccountService) Login(username, password string) (*models.Account, error) {
	if allowed, wait := s.limiter.CheckAllowed(username); !allowed {
		return nil, &RateLimitedError{RetryAfter: wait}
	}

	accounts, err := s.store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("login %s: %w", username, err)
	}

	acc, ok := accounts[username]
	if !ok {
		left := s.limiter.RecordFailure(username)
		return nil, &InvalidCredentialsError{AttemptsLeft: left}
	}

	if !s.hasher.Verify(password, acc.PasswordHash) {
		left := s.limiter.RecordFailure(username)
		return nil, &InvalidCredentialsError{AttemptsLeft: left}
	}

	s.limiter.ClearFailures(username)

	now := s.now()
	acc.LastLogin = &now
	if err := s.store.SaveAll(accounts); err != nil {
		return nil, fmt.Errorf("login %s: %w", username, err)
	}
	return acc, nil
}

// ChangePassword re-hashes after verifying the current password.
func (s *AccountService) ChangePassword(username, oldPassword, newPassword string) error {
	accounts, err := s.store.LoadAll()
	if err != nil {
		return fmt.Errorf("change password for %s: %w", username, err)
	}

	acc, ok := accounts[username]
	if !ok {
		return ErrNotFound
	}
	if !s.hasher.Verify(oldPassword, acc.PasswordHash) {
		return ErrWrongPassword
	}
	if utf8.RuneCountInString(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash new password for %s: %w", username, err)
	}
	acc.PasswordHash = hash

	if err := s.store.SaveAll(accounts); err != nil {
		return fmt.Errorf("change password for %s: %w", username, err)
	}
	return nil
}

// PromoteToAdmin grants admin rights to an existing account.
func (s *AccountService) PromoteToAdmin(username string) error {
	accounts, err := s.store.LoadAll()
	if err != nil {
		return fmt.Errorf("promote %s: %w", username, err)
	}

	acc, ok := accounts[username]
	if !ok {
		return ErrNotFound
	}
	acc.IsAdmin = true

	if err := s.store.SaveAll(accounts); err != nil {
		return fmt.Errorf("promote %s: %w", username, err)
	}
	return nil
}

// IsAdmin is a pure lookup; unknown usernames and store errors both read as
// "not an admin".
func (s *AccountService) IsAdmin(username string) bool {
	accounts, err := s.store.LoadAll()
	if err != nil {
		return false
	}
	acc, ok := accounts[username]
	return ok && acc.IsAdmin
}

// Get returns the account stored under username.
func (s *AccountService) Get(username string) (*models.Account, error) {
	accounts, err := s.store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", username, err)
	}
	acc, ok := accounts[username]
	if !ok {
		return nil, ErrNotFound
	}
	return acc, nil
}

// List returns every account keyed by username.
func (s *AccountService) List() (models.Accounts, error) {
	return s.store.LoadAll()
}

// Delete removes an account entirely.
func (s *AccountService) Delete(username string) error {
	accounts, err := s.store.LoadAll()
	if err != nil {
		return fmt.Errorf("delete %s: %w", username, err)
	}
	if _, ok := accounts[username]; !ok {
		return ErrNotFound
	}
	delete(accounts, username)

	if err := s.store.SaveAll(accounts); err != nil {
		return fmt.Errorf("delete %s: %w", username, err)
	}
	return nil
}

// Results returns the quiz-results blob as stored. The service never
// inspects its structure; the quiz subsystem owns the contents.
func (s *AccountService) Results(username string) (json.RawMessage, error) {
	acc, err := s.Get(username)
	if err != nil {
		return nil, err
	}
	if len(acc.Results) == 0 {
		return json.RawMessage(`{}`), nil
	}
	return acc.Results, nil
}

// SaveResults overwrites the quiz-results blob verbatim.
func (s *AccountService) SaveResults(username string, results json.RawMessage) error {
	accounts, err := s.store.LoadAll()
	if err != nil {
		return fmt.Errorf("save results for %s: %w", username, err)
	}
	acc, ok := accounts[username]
	if !ok {
		return ErrNotFound
	}
	acc.Results = results

	if err := s.store.SaveAll(accounts); err != nil {
		return fmt.Errorf("save results for %s: %w", username, err)
	}
	return nil
}
