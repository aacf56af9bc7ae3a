package auth

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"kpssquiz/internal/models"
)

// memStore is an in-memory UserStore for service tests.
type memStore struct {
	accounts models.Accounts
	loadErr  error
	saveErr  error
	saves    int
}

func newMemStore() *memStore {
	return &memStore{accounts: models.Accounts{}}
}

func (m *memStore) LoadAll() (models.Accounts, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := models.Accounts{}
	for k, v := range m.accounts {
		cp := *v
		out[k] = &cp
	}
	return out, nil
}

func (m *memStore) SaveAll(accounts models.Accounts) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.accounts = accounts
	return nil
}

func newTestService(st *memStore) (*AccountService, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	limiter := NewLoginLimiter(5, 15*time.Minute)
	limiter.now = clock.Now
	svc := NewAccountService(st, BcryptHasher{Cost: bcrypt.MinCost}, limiter)
	svc.now = clock.Now
	return svc, clock
}

func TestAccountService_Register(t *testing.T) {
	st := newMemStore()
	svc, clock := newTestService(st)

	acc, err := svc.Register("ayse", "Ayşe Yılmaz", "Passw0rd", false)
	require.NoError(t, err)

	assert.Equal(t, "Ayşe Yılmaz", acc.DisplayName)
	assert.False(t, acc.IsAdmin)
	assert.True(t, acc.CreatedAt.Equal(clock.Now()))
	assert.Nil(t, acc.LastLogin)
	assert.JSONEq(t, `{}`, string(acc.Results))
	assert.NotEqual(t, "Passw0rd", acc.PasswordHash, "password must never be stored in the clear")

	stored := st.accounts["ayse"]
	require.NotNil(t, stored)
	assert.True(t, BcryptHasher{}.Verify("Passw0rd", stored.PasswordHash))
}

func TestAccountService_Register_Duplicate(t *testing.T) {
	st := newMemStore()
	svc, _ := newTestService(st)

	_, err := svc.Register("ayse", "Ayşe", "Passw0rd", false)
	require.NoError(t, err)

	_, err = svc.Register("ayse", "Başka Ayşe", "different1", false)
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestAccountService_Register_WeakPassword(t *testing.T) {
	st := newMemStore()
	svc, _ := newTestService(st)

	_, err := svc.Register("ayse", "Ayşe", "12345", false)
	assert.ErrorIs(t, err, ErrWeakPassword)

	// Exactly six characters passes; the count is in runes, so six Turkish
	// characters pass even though they take more bytes.
	_, err = svc.Register("ayse", "Ayşe", "123456", false)
	assert.NoError(t, err)
	_, err = svc.Register("cigdem", "Çiğdem", "şçğüöı", false)
	assert.NoError(t, err)
}

func TestAccountService_Login_Success(t *testing.T) {
	st := newMemStore()
	svc, clock := newTestService(st)

	reg, err := svc.Register("ayse", "Ayşe", "Passw0rd", false)
	require.NoError(t, err)
	registeredHash := reg.PasswordHash

	clock.Advance(time.Hour)
	acc, err := svc.Login("ayse", "Passw0rd")
	require.NoError(t, err)

	require.NotNil(t, acc.LastLogin)
	assert.True(t, acc.LastLogin.Equal(clock.Now()))
	assert.Equal(t, registeredHash, acc.PasswordHash, "login must not touch the hash")

	stored := st.accounts["ayse"]
	require.NotNil(t, stored.LastLogin)
	assert.True(t, stored.LastLogin.Equal(clock.Now()), "last_login must be persisted")
}

func TestAccountService_Login_WrongPassword(t *testing.T) {
	st := newMemStore()
	svc, _ := newTestService(st)

	_, err := svc.Register("ayse", "Ayşe", "Passw0rd", false)
	require.NoError(t, err)

	_, err = svc.Login("ayse", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	var invalid *InvalidCredentialsError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 4, invalid.AttemptsLeft)
}

func TestAccountService_Login_UnknownUserIndistinguishable(t *testing.T) {
	st := newMemStore()
	svc, _ := newTestService(st)

	_, err := svc.Register("ayse", "Ayşe", "Passw0rd", false)
	require.NoError(t, err)

	_, unknownErr := svc.Login("yok-boyle-biri", "Passw0rd")
	_, wrongErr := svc.Login("ayse", "wrong-password")

	// Same message shape for both, so responses cannot be used to probe
	// which usernames exist.
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestAccountService_Login_LockoutEndToEnd(t *testing.T) {
	st := newMemStore()
	svc, clock := newTestService(st)

	_, err := svc.Register("ayse", "Ayşe", "Passw0rd", false)
	require.NoError(t, err)

	// Five wrong passwords: the fifth reports zero attempts left.
	var lastErr error
	for i := 0; i < 5; i++ {
		_, lastErr = svc.Login("ayse", "wrong-password")
		require.ErrorIs(t, lastErr, ErrInvalidCredentials)
	}
	var invalid *InvalidCredentialsError
	require.ErrorAs(t, lastErr, &invalid)
	assert.Equal(t, 0, invalid.AttemptsLeft)

	// Sixth attempt is rejected before credentials are even checked.
	_, err = svc.Login("ayse", "Passw0rd")
	require.ErrorIs(t, err, ErrRateLimited)
	var limited *RateLimitedError
	require.ErrorAs(t, err, &limited)
	assert.Equal(t, 15*time.Minute, limited.RetryAfter)

	// After the cooldown the correct password works and clears the counter.
	clock.Advance(15*time.Minute + time.Second)
	acc, err := svc.Login("ayse", "Passw0rd")
	require.NoError(t, err)
	require.NotNil(t, acc.LastLogin)
	assert.True(t, acc.LastLogin.Equal(clock.Now()))

	_, err = svc.Login("ayse", "wrong-password")
	var fresh *InvalidCredentialsError
	require.ErrorAs(t, err, &fresh)
	assert.Equal(t, 4, fresh.AttemptsLeft, "counter must restart after a successful login")
}

func TestAccountService_Login_StoreErrorPropagates(t *testing.T) {
	st := newMemStore()
	svc, _ := newTestService(st)
	st.loadErr = errors.New("disk on fire")

	_, err := svc.Login("ayse", "Passw0rd")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials, "I/O failures are not credential failures")
}

func TestAccountService_ChangePassword(t *testing.T) {
	st := newMemStore()
	svc, clock := newTestService(st)

	reg, err := svc.Register("ayse", "Ayşe", "Passw0rd", false)
	require.NoError(t, err)
	createdAt := reg.CreatedAt

	assert.ErrorIs(t, svc.ChangePassword("yok", "x", "yenisifre"), ErrNotFound)
	assert.ErrorIs(t, svc.ChangePassword("ayse", "wrong", "yenisifre"), ErrWrongPassword)
	assert.ErrorIs(t, svc.ChangePassword("ayse", "Passw0rd", "kisa"), ErrWeakPassword)

	clock.Advance(time.Hour)
	require.NoError(t, svc.ChangePassword("ayse", "Passw0rd", "yeni şifre"))

	stored := st.accounts["ayse"]
	assert.True(t, BcryptHasher{}.Verify("yeni şifre", stored.PasswordHash))
	assert.False(t, BcryptHasher{}.Verify("Passw0rd", stored.PasswordHash))
	assert.True(t, stored.CreatedAt.Equal(createdAt), "created_at is immutable")
}

func TestAccountService_PromoteAndIsAdmin(t *testing.T) {
	st := newMemStore()
	svc, _ := newTestService(st)

	_, err := svc.Register("ayse", "Ayşe", "Passw0rd", false)
	require.NoError(t, err)

	assert.False(t, svc.IsAdmin("ayse"))
	assert.False(t, svc.IsAdmin("yok-boyle-biri"))

	assert.ErrorIs(t, svc.PromoteToAdmin("yok"), ErrNotFound)
	require.NoError(t, svc.PromoteToAdmin("ayse"))
	assert.True(t, svc.IsAdmin("ayse"))
}

func TestAccountService_DeleteAndList(t *testing.T) {
	st := newMemStore()
	svc, _ := newTestService(st)

	_, err := svc.Register("ayse", "Ayşe", "Passw0rd", false)
	require.NoError(t, err)
	_, err = svc.Register("mehmet", "Mehmet", "Passw0rd", false)
	require.NoError(t, err)

	all, err := svc.List()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, svc.Delete("yok"), ErrNotFound)
	require.NoError(t, svc.Delete("mehmet"))

	all, err = svc.List()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAccountService_ResultsPassthrough(t *testing.T) {
	st := newMemStore()
	svc, _ := newTestService(st)

	_, err := svc.Register("ayse", "Ayşe", "Passw0rd", false)
	require.NoError(t, err)

	blob := json.RawMessage(`{"Matematik":{"Temel Kavramlar":{"dogru":4,"yanlis":1,"test_1":{"dogru":4,"yanlis":1}}}}`)
	require.NoError(t, svc.SaveResults("ayse", blob))

	got, err := svc.Results("ayse")
	require.NoError(t, err)
	assert.JSONEq(t, string(blob), string(got), "blob must survive untouched")

	_, err = svc.Results("yok")
	assert.ErrorIs(t, err, ErrNotFound)
}
