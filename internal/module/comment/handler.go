package comment

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/touradmin/internal/domain"
	"github.com/simp-lee/touradmin/internal/pkg"
)

// CommentHandler handles REST API requests for comments.
type CommentHandler struct {
	svc *CommentService
}

// NewCommentHandler creates a new CommentHandler with the given service.
func NewCommentHandler(svc *CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// ListRoots handles GET /api/v1/articles/:id/comments.
func (h *CommentHandler) ListRoots(c *gin.Context) {
	articleID, err := pkg.ParseRecordID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	result, err := h.svc.ListRoots(c.Request.Context(), articleID, pkg.ParseListRequest(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Create handles POST /api/v1/articles/:id/comments.
func (h *CommentHandler) Create(c *gin.Context) {
	articleID, err := pkg.ParseRecordID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	var req CreateCommentRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	ctx := c.Request.Context()
	actor, _ := domain.ActorFromContext(ctx)
	cm, err := h.svc.Create(ctx, actor, articleID, Input{ParentID: req.ParentID, Author: req.Author, Body: req.Body})
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, cm)
}

// Get handles GET /api/v1/comments/:id.
func (h *CommentHandler) Get(c *gin.Context) {
	id, err := pkg.ParseRecordID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	cm, err := h.svc.Get(c.Request.Context(), id, pkg.ParseListRequest(c).IncludeDeleted)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, cm)
}

// Replies handles GET /api/v1/comments/:id/replies.
func (h *CommentHandler) Replies(c *gin.Context) {
	id, err := pkg.ParseRecordID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	replies, err := h.svc.Replies(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, replies)
}

// Update handles PUT /api/v1/comments/:id.
func (h *CommentHandler) Update(c *gin.Context) {
	id, err := pkg.ParseRecordID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	var req UpdateCommentRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	ctx := c.Request.Context()
	actor, _ := domain.ActorFromContext(ctx)
	cm, err := h.svc.UpdateBody(ctx, actor, id, req.Body)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, cm)
}

// Delete handles DELETE /api/v1/comments/:id.
func (h *CommentHandler) Delete(c *gin.Context) {
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
	cm, err := h.svc.Delete(ctx, actor, id, reason)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, cm)
}

// Restore handles POST /api/v1/comments/:id/restore.
func (h *CommentHandler) Restore(c *gin.Context) {
	id, err := pkg.ParseRecordID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	ctx := c.Request.Context()
	actor, _ := domain.ActorFromContext(ctx)
	cm, err := h.svc.Restore(ctx, actor, id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, cm)
}

// History handles GET /api/v1/comments/:id/history.
func (h *CommentHandler) History(c *gin.Context) {
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
