package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"letterhead/config"
	"letterhead/services"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// StartScheduler registers the maintenance jobs and starts the cron runner.
// The caller stops it on shutdown.
func StartScheduler(database *gorm.DB, cfg *config.Config) (*cron.Cron, error) {
	c := cron.New()

	schedule := cfg.CleanupSchedule
	if schedule == "" {
		schedule = "@hourly"
	}
	if _, err := c.AddFunc(schedule, func() { CleanupAuthRecords(database) }); err != nil {
		return nil, fmt.Errorf("failed to schedule auth cleanup %q: %w", schedule, err)
	}

	if cfg.ExportRetentionDays > 0 {
		retention := cfg.ExportRetentionDays
		if _, err := c.AddFunc("@daily", func() { PurgeOldExports(database, retention) }); err != nil {
			return nil, fmt.Errorf("failed to schedule export purge: %w", err)
		}
	}

	c.Start()
	log.Printf("[CRON] Scheduler started (auth cleanup %s, %d jobs)", schedule, len(c.Entries()))
	return c, nil
}

// CleanupAuthRecords removes expired sessions and password reset tokens and
// prunes the login monitor
func CleanupAuthRecords(database *gorm.DB) {
	services.Monitor.Prune()

	sessions, err := services.CleanupExpiredSessions(database)
	if err != nil {
		log.Printf("[JOB] Session cleanup failed: %v", err)
	}
	tokens, err := services.CleanupExpiredTokens(database)
	if err != nil {
		log.Printf("[JOB] Reset token cleanup failed: %v", err)
	}
	if sessions+tokens > 0 {
		log.Printf("[JOB] Auth cleanup removed %d sessions and %d reset tokens", sessions, tokens)
	}
}

// PurgeOldExports deletes stored exports older than the retention window
func PurgeOldExports(database *gorm.DB, retentionDays int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	if _, err := services.PurgeExpiredExports(ctx, database, cutoff); err != nil {
		log.Printf("[JOB] Export purge failed: %v", err)
	}
}
