package config

import (
	"crypto/rand"
	"encoding/base64"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	AppName string

	// Env is "dev" (default) or "prod". Validate warns about insecure defaults in "prod".
	Env string

	// Debug enables verbose logging. Set via DEBUG_MODE.
	Debug bool

	// UsersFile is the JSON user store path (default "kullanicilar.json").
	UsersFile string
	// QuestionBankFile is the JSON question bank path (default "soru_bankasi.json").
	QuestionBankFile string

	// StoreBackend is "file" (default) or "postgres".
	StoreBackend string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// CookieSecret signs/identifies browser sessions. When unset a random
	// value is generated at startup, which invalidates sessions on restart.
	CookieSecret string

	// SessionLifetimeHours is how long an issued session stays valid (default 24).
	SessionLifetimeHours int

	// MaxLoginAttempts is the failed-login threshold before cooldown (default 5).
	MaxLoginAttempts int
	// LoginCooldownMinutes is the lockout window after the threshold (default 15).
	LoginCooldownMinutes int

	FirstAdminUsername string
	FirstAdminPassword string

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	// When empty, the API listens with plain HTTP.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string

	// CORSAllowedOrigins is a list of origins allowed for CORS.
	// Set via CORS_ALLOWED_ORIGINS (comma-separated). When empty, no CORS headers are sent (same-origin only).
	CORSAllowedOrigins []string
}

func Load() Config {
	// Same behavior as the original deployment: a .env next to the binary is
	// read first, real environment variables win.
	_ = godotenv.Load()

	return Config{
		Port:    getEnv("PORT", "8080"),
		AppName: getEnv("APP_NAME", "KPSS SORU ÇÖZÜM PLATFORMU"),
		Env:     getEnv("ENV", "dev"),
		Debug:   getEnvBool("DEBUG_MODE", false),

		UsersFile:        getEnv("USERS_FILE", "kullanicilar.json"),
		QuestionBankFile: getEnv("QUESTION_BANK_FILE", "soru_bankasi.json"),

		StoreBackend: getEnv("STORE_BACKEND", "file"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "kpssquiz"),
		DBUser: getEnv("DB_USER", "kpssquiz"),
		DBPass: getEnv("DB_PASS", "kpssquiz"),

		CookieSecret: getEnv("COOKIE_SECRET", generateSecret(32)),

		SessionLifetimeHours: getEnvInt("SESSION_LIFETIME_HOURS", 24),
		MaxLoginAttempts:     getEnvInt("MAX_LOGIN_ATTEMPTS", 5),
		LoginCooldownMinutes: getEnvInt("LOGIN_COOLDOWN_MINUTES", 15),

		FirstAdminUsername: getEnv("FIRST_ADMIN_USERNAME", "admin"),
		FirstAdminPassword: getEnv("FIRST_ADMIN_PASSWORD", "Admin123!"),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),

		CORSAllowedOrigins: parseCORSOrigins(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

// Validate returns human-readable warnings for insecure or suspicious
// settings. Warnings are logged at startup, never fatal.
func (c Config) Validate() []string {
	var warnings []string

	if len(c.CookieSecret) < 32 {
		warnings = append(warnings, "COOKIE_SECRET should be at least 32 characters")
	}
	if len(c.FirstAdminPassword) < 8 {
		warnings = append(warnings, "FIRST_ADMIN_PASSWORD should be at least 8 characters")
	}
	if c.Env == "prod" && c.FirstAdminPassword == "Admin123!" {
		warnings = append(warnings, "FIRST_ADMIN_PASSWORD is the insecure default; override it in production")
	}
	if c.StoreBackend != "file" && c.StoreBackend != "postgres" {
		warnings = append(warnings, "STORE_BACKEND must be \"file\" or \"postgres\"; falling back to \"file\"")
	}

	return warnings
}

// generateSecret returns a URL-safe random string of at least n bytes of entropy.
func generateSecret(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; nothing sane to fall back to.
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces. Empty strings are omitted.
func parseCORSOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
