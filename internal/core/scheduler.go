package core

// scheduler.go runs retention jobs in the background.
//
// Each cycle:
//  1. Drops archived orders deleted more than ArchiveDays ago
//  2. Drops audit log entries older than AuditDays
//
// A zero retention disables that step. Failures are logged and the loop
// keeps going; the next cycle retries.

import (
	"context"
	"log/slog"
	"time"
)

// RetentionConfig holds configuration for the retention scheduler.
type RetentionConfig struct {
	ArchiveDays   int           // Days to keep archived orders (0 = forever)
	AuditDays     int           // Days to keep audit entries (0 = forever)
	CheckInterval time.Duration // How often to run (default: 24h)
}

// StartRetentionScheduler runs retention immediately, then every
// CheckInterval until ctx is cancelled. It returns at once when both
// retentions are disabled.
func (s *Service) StartRetentionScheduler(ctx context.Context, cfg RetentionConfig) {
	if cfg.ArchiveDays <= 0 && cfg.AuditDays <= 0 {
		slog.Info("retention scheduler disabled")
		return
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 24 * time.Hour
	}

	slog.Info("retention scheduler started",
		"archive_days", cfg.ArchiveDays,
		"audit_days", cfg.AuditDays,
		"interval", cfg.CheckInterval,
	)

	s.runRetentionJob(ctx, cfg)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("retention scheduler stopped")
			return
		case <-ticker.C:
			s.runRetentionJob(ctx, cfg)
		}
	}
}

// runRetentionJob performs one retention cycle.
func (s *Service) runRetentionJob(ctx context.Context, cfg RetentionConfig) {
	start := time.Now()
	now := s.now()

	if cfg.ArchiveDays > 0 {
		cutoff := startOfDay(now).AddDate(0, 0, -cfg.ArchiveDays)
		purged, err := s.PurgeArchivedBefore(ctx, cutoff)
		if err != nil {
			slog.Error("archive retention failed", "error", err)
		} else if purged > 0 {
			slog.Info("purged expired archived orders", "orders", purged, "cutoff", cutoff.Format(DateLayout))
			s.recordAudit(ctx, AuditLogParams{
				Action:     ActionRetentionPurge,
				Collection: CollectionDeletedOrders,
				Details:    map[string]any{"purged": purged, "cutoff": cutoff.Format(DateLayout)},
			})
		}
	}

	if cfg.AuditDays > 0 {
		cutoff := now.AddDate(0, 0, -cfg.AuditDays)
		purged, err := s.purgeAuditLogBefore(ctx, cutoff)
		if err != nil {
			slog.Error("audit retention failed", "error", err)
		} else if purged > 0 {
			slog.Info("purged expired audit entries", "entries", purged)
		}
	}

	slog.Debug("retention job completed", "duration_ms", time.Since(start).Milliseconds())
}

// startOfDay returns midnight of t's calendar day in t's own location, the
// same day Service.today stamps on records.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
