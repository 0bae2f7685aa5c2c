package tour

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/touradmin/internal/asset"
	"github.com/simp-lee/touradmin/internal/domain"
	"github.com/simp-lee/touradmin/internal/lifecycle"
)

const defaultCurrency = "USD"

// Input holds the editable fields of a tour.
type Input struct {
	Title       string
	Description string
	GuideName   string
	GuideEmail  string
	Price       int64
	Currency    string
}

// TourService implements tour use cases.
type TourService struct {
	db        *gorm.DB
	repo      *TourRepository
	assets    *asset.Service
	authz     domain.Authorizer
	lifecycle *lifecycle.Manager[*domain.Tour]
	workflow  *lifecycle.Workflow[*domain.Tour]
	logger    *slog.Logger
}

// tourStore binds tours to the lifecycle manager.
type tourStore struct {
	*TourRepository
	assets *asset.Service
}

// Hydrate loads the tour's assets.
func (s tourStore) Hydrate(ctx context.Context, tx *gorm.DB, t *domain.Tour) error {
	if s.assets == nil {
		return nil
	}
	list, err := s.assets.ListFor(ctx, tx, domain.RecordTour, t.ID)
	if err != nil {
		return err
	}
	t.Assets = list
	return nil
}

// NewTourService creates a TourService. assets and notifier may be nil.
func NewTourService(db *gorm.DB, repo *TourRepository, assets *asset.Service, authz domain.Authorizer, notifier lifecycle.Notifier, logger *slog.Logger) *TourService {
	if logger == nil {
		logger = slog.Default()
	}
	store := tourStore{repo, assets}
	var opts []lifecycle.Option[*domain.Tour]
	if assets != nil {
		opts = append(opts, lifecycle.WithAssets[*domain.Tour](assets))
	}
	return &TourService{
		db:        db,
		repo:      repo,
		assets:    assets,
		authz:     authz,
		lifecycle: lifecycle.NewManager[*domain.Tour](db, store, authz, logger, opts...),
		workflow:  lifecycle.NewWorkflow[*domain.Tour](db, store, authz, notifier, logger, Transitions()...),
		logger:    logger,
	}
}

// Create stores a new draft tour.
func (s *TourService) Create(ctx context.Context, actor domain.Actor, in Input) (*domain.Tour, error) {
	if err := domain.RequireRole(ctx, s.authz, actor, domain.RoleEditor); err != nil {
		return nil, err
	}
	t := &domain.Tour{RecordModel: domain.RecordModel{ID: uuid.NewString()}, Status: domain.TourDraft}
	if err := apply(t, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns a tour with its assets.
func (s *TourService) Get(ctx context.Context, id string, includeDeleted bool) (*domain.Tour, error) {
	t, err := s.repo.Get(ctx, id, includeDeleted)
	if err != nil {
		return nil, err
	}
	if err := (tourStore{s.repo, s.assets}).Hydrate(ctx, s.db, t); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns a page of tours.
func (s *TourService) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Tour], error) {
	return s.repo.List(ctx, req)
}

// Update replaces the editable fields of a live tour. The review status is
// changed only through transitions.
func (s *TourService) Update(ctx context.Context, actor domain.Actor, id string, in Input) (*domain.Tour, error) {
	if err := domain.RequireRole(ctx, s.authz, actor, domain.RoleEditor); err != nil {
		return nil, err
	}
	t := &domain.Tour{RecordModel: domain.RecordModel{ID: id}}
	if err := apply(t, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id, false)
}

// Delete soft-deletes a tour and flags its assets for cleanup.
func (s *TourService) Delete(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Tour, error) {
	return s.lifecycle.SoftDelete(ctx, id, actor, reason)
}

// Restore brings a deleted tour back with its review status intact.
func (s *TourService) Restore(ctx context.Context, actor domain.Actor, id string) (*domain.Tour, error) {
	return s.lifecycle.Restore(ctx, id, actor)
}

// Transition applies a named review transition.
func (s *TourService) Transition(ctx context.Context, actor domain.Actor, id, name, reason string) (*domain.Tour, error) {
	return s.workflow.Apply(ctx, id, name, actor, reason)
}

// AttachAsset uploads a file and attaches it to a live tour.
func (s *TourService) AttachAsset(ctx context.Context, actor domain.Actor, id string, data io.Reader, contentType string) (*domain.Asset, error) {
	if s.assets == nil {
		return nil, domain.NewAppError(domain.CodeStorageUnavailable, "asset storage is not configured", nil)
	}
	if err := domain.RequireRole(ctx, s.authz, actor, domain.RoleEditor); err != nil {
		return nil, err
	}
	if _, err := s.repo.Get(ctx, id, false); err != nil {
		return nil, err
	}
	return s.assets.Attach(ctx, domain.RecordTour, id, data, contentType)
}

// History returns the tour's audit trail, including review transitions.
func (s *TourService) History(ctx context.Context, id string) ([]domain.LifecycleEvent, error) {
	if _, err := s.repo.Get(ctx, id, true); err != nil {
		return nil, err
	}
	return lifecycle.History(ctx, s.db, domain.RecordTour, id)
}

func apply(t *domain.Tour, in Input) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.NewValidationError("title is required", map[string]string{"title": "required"})
	}
	if in.Price < 0 {
		return domain.NewValidationError("price must not be negative", map[string]string{"price": "gte"})
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	t.Title = title
	t.Description = in.Description
	t.GuideName = strings.TrimSpace(in.GuideName)
	t.GuideEmail = strings.TrimSpace(in.GuideEmail)
	t.Price = in.Price
	t.Currency = currency
	return nil
}
