package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"kpssquiz/internal/auth"
	"kpssquiz/internal/metrics"
	"kpssquiz/internal/middleware"
	"kpssquiz/internal/session"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Accounts *auth.AccountService
	Sessions *session.Manager
}

// ==========================
// Register
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		Password    string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	fields := make(map[string]string)
	if strings.TrimSpace(input.Username) == "" {
		fields["username"] = "required"
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		fields["display_name"] = "required"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	// Self-service registration never grants admin; promotion is a separate
	// admin-only operation.
	acc, err := h.Accounts.Register(input.Username, input.DisplayName, input.Password, false)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(acc.ProfileFor(input.Username))
}

// ==========================
// Login (session token on success; limiter consulted inside the service)
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	acc, err := h.Accounts.Login(input.Username, input.Password)
	if err != nil {
		metrics.RecordLogin(loginResult(err))
		WriteServiceError(w, err)
		return
	}
	metrics.RecordLogin("success")

	token := h.Sessions.Create(input.Username)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token": token,
		"user":  acc.ProfileFor(input.Username),
	})
}

// ==========================
// Logout (invalidates the presented token only)
// ==========================
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	h.Sessions.Destroy(token)
	w.WriteHeader(http.StatusNoContent)
}

// ==========================
// ChangePassword (other sessions of the user are revoked)
// ==========================
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsername(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var input struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := h.Accounts.ChangePassword(username, input.OldPassword, input.NewPassword); err != nil {
		WriteServiceError(w, err)
		return
	}

	h.Sessions.DestroyAllFor(username)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "password updated, please log in again"})
}

// ==========================
// Me
// ==========================
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsername(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	acc, err := h.Accounts.Get(username)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(acc.ProfileFor(username))
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case isRateLimited(err):
		return "ratelimited"
	default:
		return "invalid"
	}
}
