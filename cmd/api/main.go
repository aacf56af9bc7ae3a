package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kpssquiz/internal/auth"
	"kpssquiz/internal/config"
	"kpssquiz/internal/db"
	"kpssquiz/internal/handlers"
	"kpssquiz/internal/middleware"
	"kpssquiz/internal/quiz"
	"kpssquiz/internal/scheduler"
	"kpssquiz/internal/session"
	"kpssquiz/internal/store"
)

// deps holds everything the router needs. Built once in main, and by the
// integration tests against a temp directory.
type deps struct {
	cfg      config.Config
	accounts *auth.AccountService
	sessions *session.Manager
	quiz     *quiz.Service
}

func main() {

	// Load configuration
	cfg := config.Load()
	for _, warning := range cfg.Validate() {
		log.Printf("config: %s", warning)
	}

	setupLogger(cfg)

	// Pick the user store backend
	var userStore store.UserStore
	switch cfg.StoreBackend {
	case "postgres":
		database, err := db.Connect(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		pg := store.NewPostgresStore(database)
		if err := pg.EnsureSchema(); err != nil {
			log.Fatalf("Failed to prepare database schema: %v", err)
		}
		log.Println("Successfully connected to the database")
		userStore = pg
	case "file":
		userStore = store.NewFileStore(cfg.UsersFile)
	default:
		log.Fatalf("Unknown STORE_BACKEND %q (want file or postgres)", cfg.StoreBackend)
	}

	hasher := auth.BcryptHasher{}

	// One-time maintenance: upgrade any plaintext passwords left over from
	// older deployments, then make sure an admin exists.
	migration := auth.NewMigrationService(userStore, hasher, cfg.FirstAdminUsername, cfg.FirstAdminPassword)
	if converted, total, err := migration.MigratePlaintext(); err != nil {
		log.Fatalf("Password migration failed: %v", err)
	} else if converted > 0 {
		log.Printf("Migrated %d of %d accounts to hashed passwords", converted, total)
	}
	if created, err := migration.BootstrapFirstAdmin(); err != nil {
		log.Fatalf("Admin bootstrap failed: %v", err)
	} else if created {
		log.Printf("Created first admin account %q", cfg.FirstAdminUsername)
	}

	limiter := auth.NewLoginLimiter(cfg.MaxLoginAttempts, time.Duration(cfg.LoginCooldownMinutes)*time.Minute)
	accounts := auth.NewAccountService(userStore, hasher, limiter)
	sessions := session.NewManager(time.Duration(cfg.SessionLifetimeHours) * time.Hour)

	bank := quiz.NewBank(cfg.QuestionBankFile)
	if err := bank.Reload(); err != nil {
		log.Fatalf("Failed to load question bank: %v", err)
	}
	log.Printf("Question bank loaded, %d subjects", len(bank.Subjects()))

	cronJobs := scheduler.Run(limiter, bank)
	defer cronJobs.Stop()

	router := newRouter(deps{
		cfg:      cfg,
		accounts: accounts,
		sessions: sessions,
		quiz:     quiz.NewService(bank),
	})

	// Start server LAST
	addr := ":" + cfg.Port
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		log.Println("Starting HTTPS server on " + addr)
		log.Fatal(http.ListenAndServeTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile, router))
	}
	log.Println("Starting server on " + addr)
	log.Fatal(http.ListenAndServe(addr, router))
}

func setupLogger(cfg config.Config) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func newRouter(d deps) http.Handler {
	authHandler := &handlers.AuthHandler{Accounts: d.accounts, Sessions: d.sessions}
	userHandler := &handlers.UserHandler{Accounts: d.accounts, Sessions: d.sessions}
	quizHandler := &handlers.QuizHandler{Quiz: d.quiz, Accounts: d.accounts}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecurityHeaders(d.cfg.Env == "prod"))
	r.Use(middleware.CORS(d.cfg.CORSAllowedOrigins))
	r.Use(middleware.Prometheus)
	r.Use(middleware.MaxBytes(1 << 20))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Public auth endpoints, with per-IP throttling on top of the per-account
	// lockout inside the service.
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthRateLimiter().Middleware)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
	})

	// Public quiz catalog
	r.Get("/quiz/subjects", quizHandler.Subjects)
	r.Get("/quiz/{ders}/topics", quizHandler.Topics)
	r.Get("/quiz/{ders}/{konu}/tests", quizHandler.Tests)

	// Signed-in users
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(d.sessions))
		r.Post("/auth/logout", authHandler.Logout)
		r.Post("/auth/password", authHandler.ChangePassword)
		r.Get("/me", authHandler.Me)

		r.Get("/quiz/{ders}/{konu}/{no}/questions", quizHandler.Questions)
		r.Post("/quiz/{ders}/{konu}/{no}/submit", quizHandler.Submit)
		r.Get("/quiz/stats", quizHandler.Stats)
	})

	// Admin only
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(d.sessions))
		r.Use(middleware.RequireAdmin(d.accounts.IsAdmin))
		r.Get("/users", userHandler.ListUsers)
		r.Post("/users/{username}/promote", userHandler.PromoteUser)
		r.Delete("/users/{username}", userHandler.DeleteUser)
	})

	return r
}
