package comment

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/touradmin/internal/domain"
	"github.com/simp-lee/touradmin/internal/pkg"
)

var allowedSortFields = []string{"created_at", "updated_at", "author"}

// CommentRepository persists comments and keeps parents' reply lists in step
// with their live replies.
type CommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository backed by the given GORM database.
func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Get returns a comment by ID. Deleted comments are reported as not found
// unless includeDeleted is set.
func (r *CommentRepository) Get(ctx context.Context, id string, includeDeleted bool) (*domain.Comment, error) {
	q := r.db.WithContext(ctx).Where("id = ?", id)
	if !includeDeleted {
		q = q.Where("deleted_at IS NULL")
	}
	var c domain.Comment
	if err := q.First(&c).Error; err != nil {
		return nil, pkg.MapDBError(err, "comment")
	}
	return &c, nil
}

// ListRoots returns a page of top-level comments of an article.
func (r *CommentRepository) ListRoots(ctx context.Context, articleID string, req domain.PageRequest) (*domain.PageResult[domain.Comment], error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&domain.Comment{}).
		Where("article_id = ? AND parent_id IS NULL", articleID).
		Scopes(pkg.ExcludeDeleted(req))

	if err := base.Count(&total).Error; err != nil {
		return nil, pkg.MapDBError(err, "comment")
	}

	var comments []domain.Comment
	if err := base.Scopes(
		pkg.Paginate(req),
		pkg.Sort(req, allowedSortFields),
	).Find(&comments).Error; err != nil {
		return nil, pkg.MapDBError(err, "comment")
	}
	return pkg.NewPageResult(comments, total, req), nil
}

// Replies returns the live direct replies of a comment, oldest first.
func (r *CommentRepository) Replies(ctx context.Context, parentID string) ([]domain.Comment, error) {
	var replies []domain.Comment
	err := r.db.WithContext(ctx).
		Where("parent_id = ? AND deleted_at IS NULL", parentID).
		Order("created_at ASC, id ASC").
		Find(&replies).Error
	if err != nil {
		return nil, pkg.MapDBError(err, "comment")
	}
	return replies, nil
}

// Create inserts c inside tx and links it into its parent's reply list.
func (r *CommentRepository) Create(ctx context.Context, tx *gorm.DB, c *domain.Comment) error {
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		return pkg.MapDBError(err, "comment")
	}
	return r.link(ctx, tx, c)
}

// Find loads a comment inside tx, including deleted ones, and locks
// its row until tx ends.
func (r *CommentRepository) Find(ctx context.Context, tx *gorm.DB, id string) (*domain.Comment, error) {
	var c domain.Comment
	if err := pkg.ForUpdate(tx.WithContext(ctx)).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, pkg.MapDBError(err, "comment")
	}
	return &c, nil
}

// UpdateBody rewrites the text of a live comment. The reply list and
// soft-delete state are left as committed.
func (r *CommentRepository) UpdateBody(ctx context.Context, id, body string) error {
	return pkg.UpdateLive(ctx, r.db, &domain.Comment{RecordModel: domain.RecordModel{ID: id}, Body: body}, "comment", "body")
}

// Save writes every column of c inside tx.
func (r *CommentRepository) Save(ctx context.Context, tx *gorm.DB, c *domain.Comment) error {
	return pkg.MapDBError(tx.WithContext(ctx).Save(c).Error, "comment")
}

// Detach drops a deleted comment from its parent's reply list.
func (r *CommentRepository) Detach(ctx context.Context, tx *gorm.DB, c *domain.Comment, _ time.Time) error {
	if c.ParentID == nil {
		return nil
	}
	parent, err := r.Find(ctx, tx, *c.ParentID)
	if err != nil {
		return err
	}
	if !parent.ReplyIDs.Contains(c.ID) {
		return nil
	}
	return r.setReplies(ctx, tx, parent.ID, parent.ReplyIDs.Without(c.ID))
}

// Reattach puts a restored comment back into its parent's reply list.
func (r *CommentRepository) Reattach(ctx context.Context, tx *gorm.DB, c *domain.Comment, _ time.Time) error {
	return r.link(ctx, tx, c)
}

func (r *CommentRepository) link(ctx context.Context, tx *gorm.DB, c *domain.Comment) error {
	if c.ParentID == nil {
		return nil
	}
	parent, err := r.Find(ctx, tx, *c.ParentID)
	if err != nil {
		return err
	}
	if parent.ReplyIDs.Contains(c.ID) {
		return nil
	}
	return r.setReplies(ctx, tx, parent.ID, append(parent.ReplyIDs, c.ID))
}

func (r *CommentRepository) setReplies(ctx context.Context, tx *gorm.DB, id string, replies domain.StringList) error {
	err := tx.WithContext(ctx).Model(&domain.Comment{}).
		Where("id = ?", id).
		Update("reply_ids", replies).Error
	return pkg.MapDBError(err, "comment")
}
