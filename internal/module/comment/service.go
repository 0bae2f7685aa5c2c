package comment

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/touradmin/internal/domain"
	"github.com/simp-lee/touradmin/internal/lifecycle"
	"github.com/simp-lee/touradmin/internal/pkg"
)

// ArticleLookup finds the article a comment belongs to.
type ArticleLookup interface {
	Get(ctx context.Context, id string, includeDeleted bool) (*domain.Article, error)
}

// Input holds the fields of a new comment.
type Input struct {
	ParentID *string
	Author   string
	Body     string
}

// CommentService implements comment use cases.
type CommentService struct {
	db        *gorm.DB
	repo      *CommentRepository
	articles  ArticleLookup
	authz     domain.Authorizer
	lifecycle *lifecycle.Manager[*domain.Comment]
	logger    *slog.Logger
}

// NewCommentService creates a new CommentService.
func NewCommentService(db *gorm.DB, repo *CommentRepository, articles ArticleLookup, authz domain.Authorizer, logger *slog.Logger) *CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentService{
		db:        db,
		repo:      repo,
		articles:  articles,
		authz:     authz,
		lifecycle: lifecycle.NewManager[*domain.Comment](db, repo, authz, logger),
		logger:    logger,
	}
}

// Create posts a comment on a live article. A reply's parent must be a live
// comment of the same article.
func (s *CommentService) Create(ctx context.Context, actor domain.Actor, articleID string, in Input) (*domain.Comment, error) {
	if err := domain.RequireRole(ctx, s.authz, actor, domain.RoleEditor); err != nil {
		return nil, err
	}
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, domain.NewValidationError("body is required", map[string]string{"body": "required"})
	}
	if _, err := s.articles.Get(ctx, articleID, false); err != nil {
		return nil, err
	}

	c := &domain.Comment{
		RecordModel: domain.RecordModel{ID: uuid.NewString()},
		ArticleID:   articleID,
		ParentID:    in.ParentID,
		Author:      strings.TrimSpace(in.Author),
		Body:        body,
		ReplyIDs:    domain.StringList{},
	}
	err := pkg.WithTx(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		if c.ParentID != nil {
			parent, err := s.repo.Find(ctx, tx, *c.ParentID)
			if err != nil {
				return err
			}
			if parent.IsDeleted() || parent.ArticleID != articleID {
				return domain.NewAppError(domain.CodeNotFound, "parent comment not found", nil)
			}
		}
		return s.repo.Create(ctx, tx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns a comment.
func (s *CommentService) Get(ctx context.Context, id string, includeDeleted bool) (*domain.Comment, error) {
	return s.repo.Get(ctx, id, includeDeleted)
}

// ListRoots returns a page of an article's top-level comments.
func (s *CommentService) ListRoots(ctx context.Context, articleID string, req domain.PageRequest) (*domain.PageResult[domain.Comment], error) {
	if _, err := s.articles.Get(ctx, articleID, req.IncludeDeleted); err != nil {
		return nil, err
	}
	return s.repo.ListRoots(ctx, articleID, req)
}

// Replies returns the live replies of a live comment.
func (s *CommentService) Replies(ctx context.Context, id string) ([]domain.Comment, error) {
	if _, err := s.repo.Get(ctx, id, false); err != nil {
		return nil, err
	}
	return s.repo.Replies(ctx, id)
}

// UpdateBody edits the text of a live comment.
func (s *CommentService) UpdateBody(ctx context.Context, actor domain.Actor, id, body string) (*domain.Comment, error) {
	if err := domain.RequireRole(ctx, s.authz, actor, domain.RoleEditor); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.NewValidationError("body is required", map[string]string{"body": "required"})
	}
	if err := s.repo.UpdateBody(ctx, id, body); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id, false)
}

// Delete soft-deletes a comment and unlinks it from its parent. Its own
// replies are left in place.
func (s *CommentService) Delete(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Comment, error) {
	return s.lifecycle.SoftDelete(ctx, id, actor, reason)
}

// Restore brings a deleted comment back and relinks it to its parent.
func (s *CommentService) Restore(ctx context.Context, actor domain.Actor, id string) (*domain.Comment, error) {
	return s.lifecycle.Restore(ctx, id, actor)
}

// History returns the comment's audit trail.
func (s *CommentService) History(ctx context.Context, id string) ([]domain.LifecycleEvent, error) {
	if _, err := s.repo.Get(ctx, id, true); err != nil {
		return nil, err
	}
	return lifecycle.History(ctx, s.db, domain.RecordComment, id)
}
