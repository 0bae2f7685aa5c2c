package article

import (
	"context"

	"gorm.io/gorm"

	"github.com/simp-lee/touradmin/internal/domain"
	"github.com/simp-lee/touradmin/internal/pkg"
)

// Allowed fields for sorting and filtering in List queries.
var (
	allowedSortFields   = []string{"title", "slug", "status", "created_at", "updated_at"}
	allowedFilterFields = []string{"title", "slug", "author", "status"}
)

// ArticleRepository persists articles with GORM.
type ArticleRepository struct {
	db *gorm.DB
}

// NewArticleRepository creates a new ArticleRepository backed by the given GORM database.
func NewArticleRepository(db *gorm.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// Create inserts a new article.
func (r *ArticleRepository) Create(ctx context.Context, a *domain.Article) error {
	return pkg.MapDBError(r.db.WithContext(ctx).Create(a).Error, "article")
}

// Get returns an article by ID. Deleted articles are reported as not found
// unless includeDeleted is set.
func (r *ArticleRepository) Get(ctx context.Context, id string, includeDeleted bool) (*domain.Article, error) {
	q := r.db.WithContext(ctx).Where("id = ?", id)
	if !includeDeleted {
		q = q.Where("deleted_at IS NULL")
	}
	var a domain.Article
	if err := q.First(&a).Error; err != nil {
		return nil, pkg.MapDBError(err, "article")
	}
	return &a, nil
}

// List returns a paginated, sorted, and filtered list of articles.
func (r *ArticleRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Article], error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&domain.Article{}).
		Scopes(pkg.ExcludeDeleted(req), pkg.Filter(req, allowedFilterFields))

	if err := base.Count(&total).Error; err != nil {
		return nil, pkg.MapDBError(err, "article")
	}

	var articles []domain.Article
	if err := base.Scopes(
		pkg.Paginate(req),
		pkg.Sort(req, allowedSortFields),
	).Find(&articles).Error; err != nil {
		return nil, pkg.MapDBError(err, "article")
	}

	return pkg.NewPageResult(articles, total, req), nil
}

// editableColumns are the columns Update may write.
var editableColumns = []string{"title", "slug", "body", "author", "status"}

// Update writes the editable columns of a live article, leaving its
// soft-delete state as committed.
func (r *ArticleRepository) Update(ctx context.Context, a *domain.Article) error {
	return pkg.UpdateLive(ctx, r.db, a, "article", editableColumns...)
}

// Find loads an article inside tx, including deleted ones, and locks
// its row until tx ends.
func (r *ArticleRepository) Find(ctx context.Context, tx *gorm.DB, id string) (*domain.Article, error) {
	var a domain.Article
	if err := pkg.ForUpdate(tx.WithContext(ctx)).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, pkg.MapDBError(err, "article")
	}
	return &a, nil
}

// Save writes every column of a inside tx.
func (r *ArticleRepository) Save(ctx context.Context, tx *gorm.DB, a *domain.Article) error {
	return pkg.MapDBError(tx.WithContext(ctx).Save(a).Error, "article")
}
