package models

import (
	"encoding/json"
	"time"
)

// Account is a stored user identity. The JSON field names mirror the legacy
// kullanicilar.json file so existing stores keep working as-is.
type Account struct {
	DisplayName  string          `json:"isim"`
	PasswordHash string          `json:"sifre"`
	IsAdmin      bool            `json:"is_admin"`
	Results      json.RawMessage `json:"sonuclar"`
	CreatedAt    time.Time       `json:"created_at"`
	LastLogin    *time.Time      `json:"last_login"`
}

// Accounts maps username (case-sensitive, unique) to its account record.
type Accounts map[string]*Account

// Profile is the client-facing view of an account. It never carries the
// password hash.
type Profile struct {
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	IsAdmin     bool       `json:"is_admin"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLogin   *time.Time `json:"last_login"`
}

// ProfileFor builds the client-facing view for the account stored under username.
func (a *Account) ProfileFor(username string) Profile {
	return Profile{
		Username:    username,
		DisplayName: a.DisplayName,
		IsAdmin:     a.IsAdmin,
		CreatedAt:   a.CreatedAt,
		LastLogin:   a.LastLogin,
	}
}
