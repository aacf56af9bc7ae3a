package scheduler

import (
	"log"

	"github.com/robfig/cron/v3"

	"kpssquiz/internal/auth"
	"kpssquiz/internal/metrics"
	"kpssquiz/internal/quiz"
)

// Run starts the background maintenance jobs and returns the running cron
// instance so the caller can Stop it on shutdown:
//
//   - every 5 minutes, drop expired lockout entries and refresh the
//     locked-accounts gauge
//   - every hour, reload the question bank from disk so edits show up
//     without a restart
func Run(limiter *auth.LoginLimiter, bank *quiz.Bank) *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc("*/5 * * * *", func() {
		locked := limiter.Sweep()
		metrics.SetAccountsLocked(locked)
	}); err != nil {
		log.Printf("scheduler: add lockout sweep: %v", err)
	}

	if _, err := c.AddFunc("0 * * * *", func() {
		if err := bank.Reload(); err != nil {
			log.Printf("scheduler: reload question bank: %v", err)
			return
		}
		log.Printf("scheduler: question bank reloaded, %d subjects", len(bank.Subjects()))
	}); err != nil {
		log.Printf("scheduler: add bank reload: %v", err)
	}

	c.Start()
	return c
}
