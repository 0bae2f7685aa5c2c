// Package notify queues outgoing messages in the database and delivers them
// in the background.
package notify

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/touradmin/internal/domain"
)

// Outbox writes notifications inside the caller's transaction.
type Outbox struct{}

// NewOutbox creates an Outbox.
func NewOutbox() *Outbox {
	return &Outbox{}
}

// Enqueue stores n as pending.
func (o *Outbox) Enqueue(ctx context.Context, tx *gorm.DB, n domain.Notification) error {
	if strings.TrimSpace(n.Recipient) == "" {
		return domain.NewValidationError("notification recipient is required", map[string]string{"recipient": "required"})
	}
	n.ID = 0
	n.Status = domain.NotificationPending
	n.Attempts = 0
	n.LastError = ""
	n.SentAt = nil
	if err := tx.WithContext(ctx).Create(&n).Error; err != nil {
		return domain.NewAppError(domain.CodeStorageUnavailable, "enqueue notification", err)
	}
	return nil
}

// Dispatcher delivers pending notifications through a Mailer.
type Dispatcher struct {
	db          *gorm.DB
	mailer      domain.Mailer
	logger      *slog.Logger
	batchSize   int
	maxAttempts int
	now         func() time.Time
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(db *gorm.DB, mailer domain.Mailer, batchSize, maxAttempts int, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize < 1 {
		batchSize = 50
	}
	if maxAttempts < 1 {
		maxAttempts = 5
	}
	return &Dispatcher{
		db:          db,
		mailer:      mailer,
		logger:      logger,
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Drain sends one batch of pending notifications and returns how many were
// delivered. A notification that keeps failing is marked failed after
// maxAttempts tries.
func (d *Dispatcher) Drain(ctx context.Context) (int, error) {
	var pending []domain.Notification
	err := d.db.WithContext(ctx).
		Where("status = ? AND attempts < ?", domain.NotificationPending, d.maxAttempts).
		Order("id ASC").
		Limit(d.batchSize).
		Find(&pending).Error
	if err != nil {
		return 0, domain.NewAppError(domain.CodeStorageUnavailable, "load notifications", err)
	}

	sent := 0
	for _, n := range pending {
		if ctx.Err() != nil {
			break
		}
		updates := map[string]any{"attempts": n.Attempts + 1}
		if err := d.mailer.Send(ctx, n.Recipient, n.Subject, n.Body); err != nil {
			updates["last_error"] = truncate(err.Error(), 500)
			if n.Attempts+1 >= d.maxAttempts {
				updates["status"] = domain.NotificationFailed
			}
			d.logger.WarnContext(ctx, "notification delivery failed",
				slog.Uint64("id", uint64(n.ID)),
				slog.Int("attempt", n.Attempts+1),
				slog.String("error", err.Error()),
			)
		} else {
			updates["status"] = domain.NotificationSent
			updates["sent_at"] = d.now()
			updates["last_error"] = ""
			sent++
		}
		if err := d.db.WithContext(ctx).Model(&domain.Notification{}).Where("id = ?", n.ID).Updates(updates).Error; err != nil {
			d.logger.ErrorContext(ctx, "notification state not saved",
				slog.Uint64("id", uint64(n.ID)),
				slog.String("error", err.Error()),
			)
		}
	}
	return sent, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
