package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/touradmin/internal/domain"
	"github.com/simp-lee/touradmin/internal/pkg"
)

const notifySavepoint = "lifecycle_notify"

// Stateful is a record with a review status.
type Stateful interface {
	Record
	CurrentStatus() string
	ApplyTransition(to, actorID, reason string, at time.Time)
}

// Notifier queues a notification inside the caller's transaction.
type Notifier interface {
	Enqueue(ctx context.Context, tx *gorm.DB, n domain.Notification) error
}

// Transition is one named, guarded status change.
type Transition[T Stateful] struct {
	Name string
	From []string
	To   string
	// RequireReason is set for negative transitions such as reject.
	RequireReason bool
	Role          domain.Role
	// Notify builds the message sent after the transition, or returns nil.
	Notify func(rec T, reason string) *domain.Notification
}

// Workflow applies guarded transitions to records of type T.
type Workflow[T Stateful] struct {
	db          *gorm.DB
	store       Store[T]
	authz       domain.Authorizer
	notifier    Notifier
	transitions map[string]Transition[T]
	logger      *slog.Logger
	now         func() time.Time
}

// NewWorkflow creates a Workflow. notifier may be nil.
// Panics if db, store or authz is nil.
func NewWorkflow[T Stateful](db *gorm.DB, store Store[T], authz domain.Authorizer, notifier Notifier, logger *slog.Logger, transitions ...Transition[T]) *Workflow[T] {
	if db == nil || store == nil || authz == nil {
		panic("lifecycle.NewWorkflow: db, store and authorizer must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	byName := make(map[string]Transition[T], len(transitions))
	for _, t := range transitions {
		if t.Role == "" {
			t.Role = domain.RoleEditor
		}
		byName[t.Name] = t
	}
	return &Workflow[T]{
		db:          db,
		store:       store,
		authz:       authz,
		notifier:    notifier,
		transitions: byName,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Apply runs the named transition on the record with id.
//
// The status change, review stamps and audit event commit together. The
// notification is queued under a savepoint: if queueing fails it is rolled
// back and logged while the transition still commits. A failed rollback to
// the savepoint aborts the transition.
func (w *Workflow[T]) Apply(ctx context.Context, id, name string, actor domain.Actor, reason string) (T, error) {
	var zero, out T

	t, ok := w.transitions[name]
	if !ok {
		return zero, domain.NewAppError(domain.CodeValidation, "unknown transition "+name, nil)
	}
	if err := domain.RequireRole(ctx, w.authz, actor, t.Role); err != nil {
		return zero, err
	}
	reason = strings.TrimSpace(reason)
	if t.RequireReason && reason == "" {
		return zero, domain.NewValidationError("reason is required", map[string]string{"reason": "required"})
	}

	var from string
	err := pkg.WithTx(w.db.WithContext(ctx), func(tx *gorm.DB) error {
		rec, err := w.store.Find(ctx, tx, id)
		if err != nil {
			return err
		}
		if rec.IsDeleted() {
			return domain.NewAppError(domain.CodeNotFound, "record not found", nil)
		}

		from = rec.CurrentStatus()
		if !slices.Contains(t.From, from) {
			return domain.NewAppError(domain.CodeInvalidTransition,
				fmt.Sprintf("cannot %s from %s", t.Name, from), nil)
		}

		at := w.now()
		rec.ApplyTransition(t.To, actor.ID, reason, at)
		if err := w.store.Save(ctx, tx, rec); err != nil {
			return err
		}
		if err := writeEvent(ctx, tx, domain.LifecycleEvent{
			RecordType: rec.RecordType(),
			RecordID:   rec.RecordID(),
			Action:     t.Name,
			FromStatus: from,
			ToStatus:   t.To,
			ActorID:    actor.ID,
			Reason:     reason,
			CreatedAt:  at,
		}); err != nil {
			return err
		}

		if err := w.queueNotification(ctx, tx, t, rec, reason); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return zero, err
	}

	w.logger.InfoContext(ctx, "record transitioned",
		slog.String("type", out.RecordType()),
		slog.String("id", id),
		slog.String("transition", name),
		slog.String("from", from),
		slog.String("to", t.To),
		slog.String("actor", actor.ID),
	)
	return out, nil
}

// queueNotification enqueues the transition's message. Enqueue failures are
// logged and never propagate; a failed rollback to the savepoint does.
func (w *Workflow[T]) queueNotification(ctx context.Context, tx *gorm.DB, t Transition[T], rec T, reason string) error {
	if w.notifier == nil || t.Notify == nil {
		return nil
	}
	n := t.Notify(rec, reason)
	if n == nil {
		return nil
	}

	if err := tx.SavePoint(notifySavepoint).Error; err != nil {
		w.logger.WarnContext(ctx, "notification skipped: savepoint failed",
			slog.String("id", rec.RecordID()),
			slog.String("error", err.Error()),
		)
		return nil
	}
	err := w.notifier.Enqueue(ctx, tx, *n)
	if err == nil {
		return nil
	}
	if rbErr := tx.RollbackTo(notifySavepoint).Error; rbErr != nil {
		w.logger.ErrorContext(ctx, "rollback to savepoint failed",
			slog.String("id", rec.RecordID()),
			slog.String("error", rbErr.Error()),
		)
		return domain.NewAppError(domain.CodeStorageUnavailable, "discard failed notification", rbErr)
	}
	w.logger.WarnContext(ctx, "notification not queued",
		slog.String("id", rec.RecordID()),
		slog.String("transition", t.Name),
		slog.String("error", err.Error()),
	)
	return nil
}

// History returns the audit trail of a record, oldest first.
func History(ctx context.Context, db *gorm.DB, recordType, id string) ([]domain.LifecycleEvent, error) {
	var events []domain.LifecycleEvent
	err := db.WithContext(ctx).
		Where("record_type = ? AND record_id = ?", recordType, id).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return nil, domain.NewAppError(domain.CodeStorageUnavailable, "load history", err)
	}
	return events, nil
}
