package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"kpssquiz/internal/models"
)

// PostgresStore is the transactional alternative to FileStore for
// deployments where multiple writers are possible. It keeps the same
// whole-mapping contract so the service layer does not change.
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

// EnsureSchema creates the users table when missing. Safe to call on every startup.
func (s *PostgresStore) EnsureSchema() error {
	_, err := s.DB.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			username   TEXT PRIMARY KEY,
			isim       TEXT NOT NULL DEFAULT '',
			sifre      TEXT NOT NULL DEFAULT '',
			is_admin   BOOLEAN NOT NULL DEFAULT FALSE,
			sonuclar   JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_login TIMESTAMPTZ
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure users schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadAll() (models.Accounts, error) {
	rows, err := s.DB.Query(`SELECT username, isim, sifre, is_admin, sonuclar, created_at, last_login FROM users`)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	defer rows.Close()

	accounts := models.Accounts{}
	for rows.Next() {
		var (
			username  string
			acc       models.Account
			results   []byte
			lastLogin sql.NullTime
		)
		if err := rows.Scan(&username, &acc.DisplayName, &acc.PasswordHash, &acc.IsAdmin, &results, &acc.CreatedAt, &lastLogin); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		if len(results) > 0 {
			acc.Results = json.RawMessage(results)
		}
		if lastLogin.Valid {
			t := lastLogin.Time
			acc.LastLogin = &t
		}
		accounts[username] = &acc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return accounts, nil
}

// SaveAll replaces the whole table in one transaction, mirroring the file
// store's atomic whole-document replace.
func (s *PostgresStore) SaveAll(accounts models.Accounts) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return fmt.Errorf("begin save users: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM users`); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}

	for username, acc := range accounts {
		results := acc.Results
		if len(results) == 0 {
			results = json.RawMessage(`{}`)
		}
		var lastLogin *time.Time
		if acc.LastLogin != nil {
			lastLogin = acc.LastLogin
		}
		_, err := tx.Exec(
			`INSERT INTO users (username, isim, sifre, is_admin, sonuclar, created_at, last_login)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			username, acc.DisplayName, acc.PasswordHash, acc.IsAdmin, []byte(results), acc.CreatedAt, lastLogin,
		)
		if err != nil {
			return fmt.Errorf("insert user %s: %w", username, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save users: %w", err)
	}
	return nil
}
