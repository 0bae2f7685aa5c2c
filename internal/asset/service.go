// Package asset stores uploaded files for owned records and purges the files
// of deleted records once their grace period has passed.
package asset

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/touradmin/internal/domain"
)

const defaultSweepBatch = 100

// Service tracks assets and their blobs.
type Service struct {
	db     *gorm.DB
	blobs  domain.BlobStore
	logger *slog.Logger
	grace  time.Duration
	batch  int
	now    func() time.Time
}

// NewService creates a Service. grace is how long an asset stays marked
// before Sweep purges it.
func NewService(db *gorm.DB, blobs domain.BlobStore, grace time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:     db,
		blobs:  blobs,
		logger: logger,
		grace:  grace,
		batch:  defaultSweepBatch,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Attach uploads data and records it as owned by the given record.
func (s *Service) Attach(ctx context.Context, ownerType, ownerID string, data io.Reader, contentType string) (*domain.Asset, error) {
	ref, err := s.blobs.Upload(ctx, data, contentType)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeStorageUnavailable, "upload failed", err)
	}

	a := &domain.Asset{
		ID:          uuid.NewString(),
		OwnerType:   ownerType,
		OwnerID:     ownerID,
		URL:         ref.URL,
		ProviderID:  ref.ProviderID,
		ContentType: contentType,
	}
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		if delErr := s.blobs.Delete(ctx, ref.ProviderID); delErr != nil {
			s.logger.WarnContext(ctx, "orphaned blob after failed insert",
				slog.String("provider_id", ref.ProviderID),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, domain.NewAppError(domain.CodeStorageUnavailable, "save asset", err)
	}
	return a, nil
}

// ListFor returns the unpurged assets of a record.
func (s *Service) ListFor(ctx context.Context, tx *gorm.DB, ownerType, ownerID string) ([]domain.Asset, error) {
	var assets []domain.Asset
	err := tx.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ? AND purged_at IS NULL", ownerType, ownerID).
		Order("created_at ASC").
		Find(&assets).Error
	if err != nil {
		return nil, domain.NewAppError(domain.CodeStorageUnavailable, "list assets", err)
	}
	return assets, nil
}

// MarkForCleanup flags the record's unpurged assets. Already flagged assets
// keep their original mark.
func (s *Service) MarkForCleanup(ctx context.Context, tx *gorm.DB, ownerType, ownerID string, at time.Time) error {
	err := tx.WithContext(ctx).Model(&domain.Asset{}).
		Where("owner_type = ? AND owner_id = ? AND purged_at IS NULL AND cleanup_requested_at IS NULL", ownerType, ownerID).
		Update("cleanup_requested_at", at).Error
	if err != nil {
		return domain.NewAppError(domain.CodeStorageUnavailable, "mark assets", err)
	}
	return nil
}

// Unmark clears the cleanup flag on the record's unpurged assets.
func (s *Service) Unmark(ctx context.Context, tx *gorm.DB, ownerType, ownerID string) error {
	err := tx.WithContext(ctx).Model(&domain.Asset{}).
		Where("owner_type = ? AND owner_id = ? AND purged_at IS NULL", ownerType, ownerID).
		Update("cleanup_requested_at", nil).Error
	if err != nil {
		return domain.NewAppError(domain.CodeStorageUnavailable, "unmark assets", err)
	}
	return nil
}

// Sweep purges assets marked longer than the grace period. Each asset is
// first claimed by stamping purged_at while it is still marked, so a restore
// that unmarks it before the claim keeps its blob. A failed provider delete
// releases the claim and the asset is retried on the next sweep.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.grace)

	var due []domain.Asset
	err := s.db.WithContext(ctx).
		Where("cleanup_requested_at IS NOT NULL AND cleanup_requested_at <= ? AND purged_at IS NULL", cutoff).
		Order("cleanup_requested_at ASC").
		Limit(s.batch).
		Find(&due).Error
	if err != nil {
		return 0, domain.NewAppError(domain.CodeStorageUnavailable, "load assets due", err)
	}

	purged := 0
	for _, a := range due {
		ok, err := s.purge(ctx, a)
		if err != nil {
			s.logger.WarnContext(ctx, "asset purge failed",
				slog.String("asset_id", a.ID),
				slog.String("provider_id", a.ProviderID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if ok {
			purged++
		}
	}

	if len(due) > 0 {
		s.logger.InfoContext(ctx, "asset sweep finished",
			slog.Int("due", len(due)),
			slog.Int("purged", purged),
		)
	}
	return purged, nil
}

// purge claims a and deletes its blob. It reports false when a was unmarked
// or purged by someone else first.
func (s *Service) purge(ctx context.Context, a domain.Asset) (bool, error) {
	res := s.db.WithContext(ctx).Model(&domain.Asset{}).
		Where("id = ? AND purged_at IS NULL AND cleanup_requested_at IS NOT NULL", a.ID).
		Update("purged_at", s.now())
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	if err := s.blobs.Delete(ctx, a.ProviderID); err != nil {
		release := s.db.WithContext(ctx).Model(&domain.Asset{}).
			Where("id = ?", a.ID).
			Update("purged_at", nil)
		if release.Error != nil {
			s.logger.ErrorContext(ctx, "asset claim not released",
				slog.String("asset_id", a.ID),
				slog.String("error", release.Error.Error()),
			)
		}
		return false, err
	}
	return true, nil
}
