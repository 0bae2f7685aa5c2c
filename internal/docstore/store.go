// Package docstore persists singleton aggregates under an optimistic version
// check. Each kind is one row; every committed mutation bumps its version by
// exactly one.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/touradmin/internal/domain"
	"github.com/simp-lee/touradmin/internal/pkg"
)

// defaultBlindAttempts bounds how often a write without an expected version
// is reapplied after losing a compare-and-swap.
const defaultBlindAttempts = 3

// aggregateRow is the storage shape of an aggregate.
type aggregateRow struct {
	Kind      string    `gorm:"primaryKey;size:64"`
	Entries   string    `gorm:"type:text;not null"`
	Version   int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName overrides the default table name.
func (aggregateRow) TableName() string { return "settings_aggregates" }

// Mutator edits a working copy of an aggregate. Returning an error aborts the
// commit and nothing is written.
type Mutator func(agg *domain.Aggregate) error

// LoadOptions controls Load.
type LoadOptions struct {
	// CreateIfMissing creates an empty aggregate at version 0 instead of
	// returning NotFound.
	CreateIfMissing bool
}

// Store reads and writes aggregates.
type Store struct {
	db            *gorm.DB
	logger        *slog.Logger
	blindAttempts int
	now           func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithBlindAttempts sets how many times a blind write is attempted.
func WithBlindAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.blindAttempts = n
		}
	}
}

// WithClock overrides the time source used for updated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Store backed by db.
func New(db *gorm.DB, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		db:            db,
		logger:        logger,
		blindAttempts: defaultBlindAttempts,
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AutoMigrate creates or updates the aggregate table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&aggregateRow{})
}

// Load returns the aggregate for kind.
func (s *Store) Load(ctx context.Context, kind string, opts LoadOptions) (domain.Aggregate, error) {
	db := s.db.WithContext(ctx)
	if opts.CreateIfMissing {
		var agg domain.Aggregate
		err := pkg.WithTx(db, func(tx *gorm.DB) error {
			row, err := loadOrCreate(tx, kind, s.now())
			if err != nil {
				return err
			}
			agg, err = row.toAggregate()
			return err
		})
		return agg, err
	}

	var row aggregateRow
	if err := db.Where("kind = ?", kind).Take(&row).Error; err != nil {
		return domain.Aggregate{}, mapError(err)
	}
	return row.toAggregate()
}

// Commit applies mutate to kind inside one transaction.
//
// With a non-nil expected version the write succeeds only when the stored
// version matches; otherwise a *domain.ConflictError is returned. With a nil
// expected version the write is last-committed-wins: a lost compare-and-swap
// reloads and reapplies mutate, up to the configured number of attempts.
func (s *Store) Commit(ctx context.Context, kind string, expected *int64, mutate Mutator) (domain.Aggregate, error) {
	attempts := 1
	if expected == nil {
		attempts = s.blindAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		agg, err := s.commitOnce(ctx, kind, expected, mutate)
		if err == nil {
			return agg, nil
		}
		lastErr = err
		if _, conflict := domain.AsConflict(err); !conflict || expected != nil {
			return domain.Aggregate{}, err
		}
		s.logger.DebugContext(ctx, "blind write lost race, retrying",
			slog.String("kind", kind),
			slog.Int("attempt", attempt),
		)
	}
	return domain.Aggregate{}, lastErr
}

func (s *Store) commitOnce(ctx context.Context, kind string, expected *int64, mutate Mutator) (domain.Aggregate, error) {
	var result domain.Aggregate
	err := pkg.WithTx(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		now := s.now()
		row, err := loadOrCreate(tx, kind, now)
		if err != nil {
			return err
		}
		current, err := row.toAggregate()
		if err != nil {
			return err
		}

		if expected != nil && *expected != current.Version {
			return &domain.ConflictError{
				Kind:            kind,
				ExpectedVersion: *expected,
				CurrentVersion:  current.Version,
				UpdatedAt:       current.UpdatedAt,
			}
		}

		next := current.Clone()
		if err := mutate(&next); err != nil {
			return err
		}

		encoded, err := json.Marshal(nonNil(next.Entries))
		if err != nil {
			return domain.NewAppError(domain.CodeInternal, "encode entries", err)
		}

		res := tx.Model(&aggregateRow{}).
			Where("kind = ? AND version = ?", kind, current.Version).
			Updates(map[string]any{
				"entries":    string(encoded),
				"version":    gorm.Expr("version + ?", 1),
				"updated_at": now,
			})
		if res.Error != nil {
			return mapError(res.Error)
		}
		if res.RowsAffected == 0 {
			var latest aggregateRow
			if err := tx.Where("kind = ?", kind).Take(&latest).Error; err != nil {
				return mapError(err)
			}
			want := current.Version
			if expected != nil {
				want = *expected
			}
			return &domain.ConflictError{
				Kind:            kind,
				ExpectedVersion: want,
				CurrentVersion:  latest.Version,
				UpdatedAt:       latest.UpdatedAt,
			}
		}

		result = next
		result.Kind = kind
		result.Entries = nonNil(next.Entries)
		result.Version = current.Version + 1
		result.CreatedAt = current.CreatedAt
		result.UpdatedAt = now
		return nil
	})
	if err != nil {
		return domain.Aggregate{}, err
	}
	return result, nil
}

// loadOrCreate reads the row for kind, inserting an empty version 0 row when
// it does not exist yet. A concurrent creator wins silently.
func loadOrCreate(tx *gorm.DB, kind string, now time.Time) (aggregateRow, error) {
	var row aggregateRow
	err := tx.Where("kind = ?", kind).Take(&row).Error
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return row, mapError(err)
	}

	row = aggregateRow{Kind: kind, Entries: "[]", Version: 0, CreatedAt: now, UpdatedAt: now}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return row, mapError(err)
	}
	if err := tx.Where("kind = ?", kind).Take(&row).Error; err != nil {
		return row, mapError(err)
	}
	return row, nil
}

func (r aggregateRow) toAggregate() (domain.Aggregate, error) {
	var entries []domain.Entry
	if r.Entries != "" {
		if err := json.Unmarshal([]byte(r.Entries), &entries); err != nil {
			return domain.Aggregate{}, domain.NewAppError(domain.CodeInternal, "decode entries", err)
		}
	}
	return domain.Aggregate{
		Kind:      r.Kind,
		Entries:   nonNil(entries),
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func nonNil(entries []domain.Entry) []domain.Entry {
	if entries == nil {
		return []domain.Entry{}
	}
	return entries
}

// mapError converts GORM errors to domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewAppError(domain.CodeNotFound, "aggregate not found", err)
	}
	return domain.NewAppError(domain.CodeStorageUnavailable, "storage unavailable", err)
}
