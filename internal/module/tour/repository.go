package tour

import (
	"context"

	"gorm.io/gorm"

	"github.com/simp-lee/touradmin/internal/domain"
	"github.com/simp-lee/touradmin/internal/pkg"
)

// Allowed fields for sorting and filtering in List queries.
var (
	allowedSortFields   = []string{"title", "price", "status", "created_at", "updated_at"}
	allowedFilterFields = []string{"title", "guide_name", "guide_email", "status", "currency"}
)

// TourRepository persists tours with GORM.
type TourRepository struct {
	db *gorm.DB
}

// NewTourRepository creates a new TourRepository backed by the given GORM database.
func NewTourRepository(db *gorm.DB) *TourRepository {
	return &TourRepository{db: db}
}

// Create inserts a new tour.
func (r *TourRepository) Create(ctx context.Context, t *domain.Tour) error {
	return pkg.MapDBError(r.db.WithContext(ctx).Create(t).Error, "tour")
}

// Get returns a tour by ID. Deleted tours are reported as not found unless
// includeDeleted is set.
func (r *TourRepository) Get(ctx context.Context, id string, includeDeleted bool) (*domain.Tour, error) {
	q := r.db.WithContext(ctx).Where("id = ?", id)
	if !includeDeleted {
		q = q.Where("deleted_at IS NULL")
	}
	var t domain.Tour
	if err := q.First(&t).Error; err != nil {
		return nil, pkg.MapDBError(err, "tour")
	}
	return &t, nil
}

// List returns a paginated, sorted, and filtered list of tours.
func (r *TourRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Tour], error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&domain.Tour{}).
		Scopes(pkg.ExcludeDeleted(req), pkg.Filter(req, allowedFilterFields))

	if err := base.Count(&total).Error; err != nil {
		return nil, pkg.MapDBError(err, "tour")
	}

	var tours []domain.Tour
	if err := base.Scopes(
		pkg.Paginate(req),
		pkg.Sort(req, allowedSortFields),
	).Find(&tours).Error; err != nil {
		return nil, pkg.MapDBError(err, "tour")
	}
	return pkg.NewPageResult(tours, total, req), nil
}

// Find loads a tour inside tx, including deleted ones, and locks
// its row until tx ends.
func (r *TourRepository) Find(ctx context.Context, tx *gorm.DB, id string) (*domain.Tour, error) {
	var t domain.Tour
	if err := pkg.ForUpdate(tx.WithContext(ctx)).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, pkg.MapDBError(err, "tour")
	}
	return &t, nil
}

// editableColumns are the columns Update may write.
var editableColumns = []string{"title", "description", "guide_name", "guide_email", "price", "currency"}

// Update writes the editable columns of a live tour. Status, review stamps
// and soft-delete state are left as committed.
func (r *TourRepository) Update(ctx context.Context, t *domain.Tour) error {
	return pkg.UpdateLive(ctx, r.db, t, "tour", editableColumns...)
}

// Save writes every column of t inside tx.
func (r *TourRepository) Save(ctx context.Context, tx *gorm.DB, t *domain.Tour) error {
	return pkg.MapDBError(tx.WithContext(ctx).Save(t).Error, "tour")
}
