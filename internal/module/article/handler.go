package article

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/touradmin/internal/domain"
	"github.com/simp-lee/touradmin/internal/pkg"
)

// ArticleHandler handles REST API requests for articles.
type ArticleHandler struct {
	svc       *ArticleService
	maxUpload int64
}

// NewArticleHandler creates a new ArticleHandler. maxUpload <= 0 uses
// pkg.DefaultMaxUpload.
func NewArticleHandler(svc *ArticleService, maxUpload int64) *ArticleHandler {
	return &ArticleHandler{svc: svc, maxUpload: maxUpload}
}

// Create handles POST /api/v1/articles.
func (h *ArticleHandler) Create(c *gin.Context) {
	var req ArticleRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	ctx := c.Request.Context()
	actor, _ := domain.ActorFromContext(ctx)
	a, err := h.svc.Create(ctx, actor, req.Input())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, a)
}

// Get handles GET /api/v1/articles/:id.
func (h *ArticleHandler) Get(c *gin.Context) {
	id, err := pkg.ParseRecordID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	a, err := h.svc.Get(c.Request.Context(), id, pkg.ParseListRequest(c).IncludeDeleted)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, a)
}

// List handles GET /api/v1/articles.
func (h *ArticleHandler) List(c *gin.Context) {
	result, err := h.svc.List(c.Request.Context(), pkg.ParseListRequest(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Update handles PUT /api/v1/articles/:id.
func (h *ArticleHandler) Update(c *gin.Context) {
	id, err := pkg.ParseRecordID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	var req ArticleRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	ctx := c.Request.Context()
	actor, _ := domain.ActorFromContext(ctx)
	a, err := h.svc.Update(ctx, actor, id, req.Input())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, a)
}

// Delete handles DELETE /api/v1/articles/:id.
func (h *ArticleHandler) Delete(c *gin.Context) {
	id, err := pkg.ParseRecordID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	reason, ok := pkg.BindOptionalReason(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	actor, _ := domain.ActorFromContext(ctx)
	a, err := h.svc.Delete(ctx, actor, id, reason)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, a)
}

// Restore handles POST /api/v1/articles/:id/restore.
func (h *ArticleHandler) Restore(c *gin.Context) {
	id, err := pkg.ParseRecordID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	ctx := c.Request.Context()
	actor, _ := domain.ActorFromContext(ctx)
	a, err := h.svc.Restore(ctx, actor, id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, a)
}

// AttachAsset handles POST /api/v1/articles/:id/assets.
func (h *ArticleHandler) AttachAsset(c *gin.Context) {
	id, err := pkg.ParseRecordID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	up, err := pkg.OpenUpload(c, "file", h.maxUpload)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	defer up.File.Close()

	ctx := c.Request.Context()
	actor, _ := domain.ActorFromContext(ctx)
	as, err := h.svc.AttachAsset(ctx, actor, id, up.File, up.ContentType)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, as)
}

// History handles GET /api/v1/articles/:id/history.
func (h *ArticleHandler) History(c *gin.Context) {
	id, err := pkg.ParseRecordID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	events, err := h.svc.History(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, events)
}
