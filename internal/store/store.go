// Package store persists the username -> account mapping. Every mutation in
// the service layer is a full load-mutate-save cycle; there is no incremental
// mode. That is a deliberate scaling ceiling: fine for a small user base,
// and not safe under concurrent multi-process writers without an external
// lock or the Postgres backend.
package store

import (
	"errors"

	"kpssquiz/internal/models"
)

// ErrCorruptStore is returned when the backing data exists but cannot be
// parsed. An absent backing file is NOT an error (empty store); corruption
// is, so a damaged file never silently resets the user base.
var ErrCorruptStore = errors.New("user store exists but is not parsable")

// UserStore is the persistence contract for account records.
type UserStore interface {
	// LoadAll returns the full mapping. A missing backing store yields an
	// empty non-nil map and no error.
	LoadAll() (models.Accounts, error)

	// SaveAll atomically replaces the stored mapping with the given one.
	SaveAll(accounts models.Accounts) error
}
