package article

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/touradmin/internal/asset"
	"github.com/simp-lee/touradmin/internal/domain"
	"github.com/simp-lee/touradmin/internal/lifecycle"
)

// Article publication states.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Input holds the editable fields of an article.
type Input struct {
	Title  string
	Slug   string
	Body   string
	Author string
	Status string
}

// ArticleService implements article use cases.
type ArticleService struct {
	db        *gorm.DB
	repo      *ArticleRepository
	assets    *asset.Service
	authz     domain.Authorizer
	lifecycle *lifecycle.Manager[*domain.Article]
	logger    *slog.Logger
}

// articleStore binds articles to the lifecycle manager.
type articleStore struct {
	*ArticleRepository
	assets *asset.Service
}

// Hydrate loads the article's assets.
func (s articleStore) Hydrate(ctx context.Context, tx *gorm.DB, a *domain.Article) error {
	if s.assets == nil {
		return nil
	}
	list, err := s.assets.ListFor(ctx, tx, domain.RecordArticle, a.ID)
	if err != nil {
		return err
	}
	a.Assets = list
	return nil
}

// NewArticleService creates an ArticleService. assets may be nil.
func NewArticleService(db *gorm.DB, repo *ArticleRepository, assets *asset.Service, authz domain.Authorizer, logger *slog.Logger) *ArticleService {
	if logger == nil {
		logger = slog.Default()
	}
	var opts []lifecycle.Option[*domain.Article]
	if assets != nil {
		opts = append(opts, lifecycle.WithAssets[*domain.Article](assets))
	}
	return &ArticleService{
		db:        db,
		repo:      repo,
		assets:    assets,
		authz:     authz,
		lifecycle: lifecycle.NewManager[*domain.Article](db, articleStore{repo, assets}, authz, logger, opts...),
		logger:    logger,
	}
}

// Create stores a new draft article. An empty slug is derived from the title.
func (s *ArticleService) Create(ctx context.Context, actor domain.Actor, in Input) (*domain.Article, error) {
	if err := domain.RequireRole(ctx, s.authz, actor, domain.RoleEditor); err != nil {
		return nil, err
	}
	a := &domain.Article{RecordModel: domain.RecordModel{ID: uuid.NewString()}}
	if err := apply(a, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Get returns an article with its assets.
func (s *ArticleService) Get(ctx context.Context, id string, includeDeleted bool) (*domain.Article, error) {
	a, err := s.repo.Get(ctx, id, includeDeleted)
	if err != nil {
		return nil, err
	}
	if err := (articleStore{s.repo, s.assets}).Hydrate(ctx, s.db, a); err != nil {
		return nil, err
	}
	return a, nil
}

// List returns a page of articles.
func (s *ArticleService) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Article], error) {
	return s.repo.List(ctx, req)
}

// Update replaces the editable fields of a live article.
func (s *ArticleService) Update(ctx context.Context, actor domain.Actor, id string, in Input) (*domain.Article, error) {
	if err := domain.RequireRole(ctx, s.authz, actor, domain.RoleEditor); err != nil {
		return nil, err
	}
	a := &domain.Article{RecordModel: domain.RecordModel{ID: id}}
	if err := apply(a, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id, false)
}

// Delete soft-deletes an article and flags its assets for cleanup.
func (s *ArticleService) Delete(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Article, error) {
	return s.lifecycle.SoftDelete(ctx, id, actor, reason)
}

// Restore brings a deleted article back.
func (s *ArticleService) Restore(ctx context.Context, actor domain.Actor, id string) (*domain.Article, error) {
	return s.lifecycle.Restore(ctx, id, actor)
}

// AttachAsset uploads a file and attaches it to a live article.
func (s *ArticleService) AttachAsset(ctx context.Context, actor domain.Actor, id string, data io.Reader, contentType string) (*domain.Asset, error) {
	if s.assets == nil {
		return nil, domain.NewAppError(domain.CodeStorageUnavailable, "asset storage is not configured", nil)
	}
	if err := domain.RequireRole(ctx, s.authz, actor, domain.RoleEditor); err != nil {
		return nil, err
	}
	if _, err := s.repo.Get(ctx, id, false); err != nil {
		return nil, err
	}
	return s.assets.Attach(ctx, domain.RecordArticle, id, data, contentType)
}

// History returns the article's audit trail.
func (s *ArticleService) History(ctx context.Context, id string) ([]domain.LifecycleEvent, error) {
	if _, err := s.repo.Get(ctx, id, true); err != nil {
		return nil, err
	}
	return lifecycle.History(ctx, s.db, domain.RecordArticle, id)
}

func apply(a *domain.Article, in Input) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.NewValidationError("title is required", map[string]string{"title": "required"})
	}
	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return domain.NewValidationError("slug is required", map[string]string{"slug": "required"})
	}
	status := in.Status
	if status == "" {
		status = StatusDraft
	}
	a.Title = title
	a.Slug = slug
	a.Body = in.Body
	a.Author = strings.TrimSpace(in.Author)
	a.Status = status
	return nil
}

// Slugify lower-cases s and joins its letter and digit runs with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
