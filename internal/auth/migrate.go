package auth

import (
	"fmt"
	"strings"
	"time"

	"kpssquiz/internal/models"
	"kpssquiz/internal/store"
)

// AdminDisplayName is the profile name given to the bootstrapped first admin.
const AdminDisplayName = "Yönetici"

// MigrationService normalizes the user store before the application starts
// serving: legacy plaintext passwords are hashed in place and a first admin
// account is created when none exists. Both operations are idempotent and run
// on every startup.
type MigrationService struct {
	store         store.UserStore
	hasher        PasswordHasher
	adminUsername string
	adminPassword string
	now           func() time.Time
}

func NewMigrationService(st store.UserStore, hasher PasswordHasher, adminUsername, adminPassword string) *MigrationService {
	return &MigrationService{
		store:         st,
		hasher:        hasher,
		adminUsername: adminUsername,
		adminPassword: adminPassword,
		now:           time.Now,
	}
}

// MigratePlaintext re-hashes every record whose password lacks the bcrypt
// prefix and backfills fields older records never had. The store is written
// once at the end, and only when something changed, so a second run is a
// no-op returning (0, total).
func (m *MigrationService) MigratePlaintext() (converted, total int, err error) {
	accounts, err := m.store.LoadAll()
	if err != nil {
		return 0, 0, fmt.Errorf("migrate passwords: %w", err)
	}
	total = len(accounts)

	for username, acc := range accounts {
		if strings.HasPrefix(acc.PasswordHash, HashPrefix) {
			continue
		}

		hash, err := m.hasher.Hash(acc.PasswordHash)
		if err != nil {
			return converted, total, fmt.Errorf("migrate password for %s: %w", username, err)
		}
		acc.PasswordHash = hash

		if acc.CreatedAt.IsZero() {
			acc.CreatedAt = m.now()
		}
		converted++
	}

	if converted > 0 {
		if err := m.store.SaveAll(accounts); err != nil {
			return converted, total, fmt.Errorf("migrate passwords: %w", err)
		}
	}
	return converted, total, nil
}

// BootstrapFirstAdmin creates the configured admin account when the store
// holds no admin at all. It reports whether an account was created. Safe to
// call on every startup: idempotency comes from the admin-existence check,
// not from remembering a previous run.
func (m *MigrationService) BootstrapFirstAdmin() (bool, error) {
	accounts, err := m.store.LoadAll()
	if err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}

	for _, acc := range accounts {
		if acc.IsAdmin {
			return false, nil
		}
	}

	if _, exists := accounts[m.adminUsername]; exists {
		return false, fmt.Errorf("bootstrap admin: username %q exists but has no admin rights; promote it explicitly", m.adminUsername)
	}

	hash, err := m.hasher.Hash(m.adminPassword)
	if err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}

	accounts[m.adminUsername] = &models.Account{
		DisplayName:  AdminDisplayName,
		PasswordHash: hash,
		IsAdmin:      true,
		Results:      []byte(`{}`),
		CreatedAt:    m.now(),
	}

	if err := m.store.SaveAll(accounts); err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	return true, nil
}
