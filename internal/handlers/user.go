package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sort"

	"github.com/go-chi/chi/v5"

	"kpssquiz/internal/auth"
	"kpssquiz/internal/models"
	"kpssquiz/internal/session"
)

// ==========================
// UserHandler (admin-only user management)
// ==========================
type UserHandler struct {
	Accounts *auth.AccountService
	Sessions *session.Manager
}

// ==========================
// List Users
// ==========================
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Accounts.List()
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	profiles := make([]models.Profile, 0, len(accounts))
	for username, acc := range accounts {
		profiles = append(profiles, acc.ProfileFor(username))
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Username < profiles[j].Username })

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profiles)
}

// ==========================
// Promote User
// ==========================
func (h *UserHandler) PromoteUser(w http.ResponseWriter, r *http.Request) {
	username := pathParam(r, "username")

	if err := h.Accounts.PromoteToAdmin(username); err != nil {
		WriteServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "admin rights granted"})
}

// ==========================
// Delete User (revokes any live sessions)
// ==========================
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	username := pathParam(r, "username")

	if err := h.Accounts.Delete(username); err != nil {
		WriteServiceError(w, err)
		return
	}
	h.Sessions.DestroyAllFor(username)

	w.WriteHeader(http.StatusNoContent)
}

// pathParam returns a chi URL parameter, percent-decoded. Usernames and
// subject/topic names can carry non-ASCII characters.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}
