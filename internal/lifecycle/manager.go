// Package lifecycle implements soft delete, restore and guarded status
// transitions for owned records. Entity specifics are supplied through a
// Store binding; the manager owns the transaction, the guards, asset
// bookkeeping and the audit trail.
package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/touradmin/internal/domain"
	"github.com/simp-lee/touradmin/internal/pkg"
)

// Record is an owned record the manager can operate on.
type Record interface {
	domain.SoftDeletable
	RecordID() string
	RecordType() string
}

// Store loads and saves records of one type inside a caller's transaction.
// Find must return soft-deleted records too.
type Store[T Record] interface {
	Find(ctx context.Context, tx *gorm.DB, id string) (T, error)
	Save(ctx context.Context, tx *gorm.DB, rec T) error
}

// Detacher is implemented by stores whose records appear in parent
// collections. Reattach must not create duplicates.
type Detacher[T Record] interface {
	Detach(ctx context.Context, tx *gorm.DB, rec T, at time.Time) error
	Reattach(ctx context.Context, tx *gorm.DB, rec T, deletedAt time.Time) error
}

// Hydrator is implemented by stores that load related data for responses.
type Hydrator[T Record] interface {
	Hydrate(ctx context.Context, tx *gorm.DB, rec T) error
}

// AssetTracker marks owned assets for cleanup and takes the mark back.
type AssetTracker interface {
	MarkForCleanup(ctx context.Context, tx *gorm.DB, ownerType, ownerID string, at time.Time) error
	Unmark(ctx context.Context, tx *gorm.DB, ownerType, ownerID string) error
}

// Manager soft-deletes and restores records of type T.
type Manager[T Record] struct {
	db     *gorm.DB
	store  Store[T]
	authz  domain.Authorizer
	assets AssetTracker
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Manager.
type Option[T Record] func(*Manager[T])

// WithAssets enables asset cleanup marking.
func WithAssets[T Record](assets AssetTracker) Option[T] {
	return func(m *Manager[T]) { m.assets = assets }
}

// WithClock overrides the time source.
func WithClock[T Record](now func() time.Time) Option[T] {
	return func(m *Manager[T]) { m.now = now }
}

// NewManager creates a Manager. Panics if db, store or authz is nil.
func NewManager[T Record](db *gorm.DB, store Store[T], authz domain.Authorizer, logger *slog.Logger, opts ...Option[T]) *Manager[T] {
	if db == nil || store == nil || authz == nil {
		panic("lifecycle.NewManager: db, store and authorizer must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager[T]{
		db:     db,
		store:  store,
		authz:  authz,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SoftDelete marks the record deleted, detaches it from parent collections,
// flags its assets for cleanup and records an audit event, all in one
// transaction.
func (m *Manager[T]) SoftDelete(ctx context.Context, id string, actor domain.Actor, reason string) (T, error) {
	var zero, out T
	if err := domain.RequireRole(ctx, m.authz, actor, domain.RoleEditor); err != nil {
		return zero, err
	}

	err := pkg.WithTx(m.db.WithContext(ctx), func(tx *gorm.DB) error {
		rec, err := m.store.Find(ctx, tx, id)
		if err != nil {
			return err
		}
		if rec.IsDeleted() {
			return domain.ErrAlreadyDeleted
		}

		at := m.now()
		if d, ok := m.store.(Detacher[T]); ok {
			if err := d.Detach(ctx, tx, rec, at); err != nil {
				return err
			}
		}
		rec.MarkDeleted(actor.ID, reason, at)
		if err := m.store.Save(ctx, tx, rec); err != nil {
			return err
		}
		if m.assets != nil {
			if err := m.assets.MarkForCleanup(ctx, tx, rec.RecordType(), rec.RecordID(), at); err != nil {
				return err
			}
		}
		if err := writeEvent(ctx, tx, domain.LifecycleEvent{
			RecordType: rec.RecordType(),
			RecordID:   rec.RecordID(),
			Action:     domain.ActionSoftDelete,
			ActorID:    actor.ID,
			Reason:     reason,
			CreatedAt:  at,
		}); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return zero, err
	}

	m.logger.InfoContext(ctx, "record soft-deleted",
		slog.String("type", out.RecordType()),
		slog.String("id", id),
		slog.String("actor", actor.ID),
	)
	return out, nil
}

// Restore clears the deletion stamps, reattaches the record, takes back the
// cleanup mark on assets that were not purged yet and records an audit event.
// It returns the hydrated record.
func (m *Manager[T]) Restore(ctx context.Context, id string, actor domain.Actor) (T, error) {
	var zero, out T
	if err := domain.RequireRole(ctx, m.authz, actor, domain.RoleEditor); err != nil {
		return zero, err
	}

	err := pkg.WithTx(m.db.WithContext(ctx), func(tx *gorm.DB) error {
		rec, err := m.store.Find(ctx, tx, id)
		if err != nil {
			return err
		}
		if !rec.IsDeleted() {
			return domain.ErrNotDeleted
		}

		deletedAt := m.now()
		if ts := rec.DeletionTime(); ts != nil {
			deletedAt = *ts
		}
		rec.ClearDeleted()
		if err := m.store.Save(ctx, tx, rec); err != nil {
			return err
		}
		if d, ok := m.store.(Detacher[T]); ok {
			if err := d.Reattach(ctx, tx, rec, deletedAt); err != nil {
				return err
			}
		}
		if m.assets != nil {
			if err := m.assets.Unmark(ctx, tx, rec.RecordType(), rec.RecordID()); err != nil {
				return err
			}
		}
		if err := writeEvent(ctx, tx, domain.LifecycleEvent{
			RecordType: rec.RecordType(),
			RecordID:   rec.RecordID(),
			Action:     domain.ActionRestore,
			ActorID:    actor.ID,
			CreatedAt:  m.now(),
		}); err != nil {
			return err
		}
		if h, ok := m.store.(Hydrator[T]); ok {
			if err := h.Hydrate(ctx, tx, rec); err != nil {
				return err
			}
		}
		out = rec
		return nil
	})
	if err != nil {
		return zero, err
	}

	m.logger.InfoContext(ctx, "record restored",
		slog.String("type", out.RecordType()),
		slog.String("id", id),
		slog.String("actor", actor.ID),
	)
	return out, nil
}

func writeEvent(ctx context.Context, tx *gorm.DB, ev domain.LifecycleEvent) error {
	if err := tx.WithContext(ctx).Create(&ev).Error; err != nil {
		return domain.NewAppError(domain.CodeStorageUnavailable, "write audit event", err)
	}
	return nil
}
