package tour

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/touradmin/internal/domain"
	"github.com/simp-lee/touradmin/internal/pkg"
)

// TourHandler handles REST API requests for tours.
type TourHandler struct {
	svc       *TourService
	maxUpload int64
}

// NewTourHandler creates a new TourHandler. maxUpload <= 0 uses
// pkg.DefaultMaxUpload.
func NewTourHandler(svc *TourService, maxUpload int64) *TourHandler {
	return &TourHandler{svc: svc, maxUpload: maxUpload}
}

// Create handles POST /api/v1/tours.
func (h *TourHandler) Create(c *gin.Context) {
	var req TourRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	ctx := c.Request.Context()
	actor, _ := domain.ActorFromContext(ctx)
	t, err := h.svc.Create(ctx, actor, req.Input())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, t)
}

// Get handles GET /api/v1/tours/:id.
func (h *TourHandler) Get(c *gin.Context) {
	id, err := pkg.ParseRecordID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	t, err := h.svc.Get(c.Request.Context(), id, pkg.ParseListRequest(c).IncludeDeleted)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, t)
}

// List handles GET /api/v1/tours.
func (h *TourHandler) List(c *gin.Context) {
	result, err := h.svc.List(c.Request.Context(), pkg.ParseListRequest(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Update handles PUT /api/v1/tours/:id.
func (h *TourHandler) Update(c *gin.Context) {
	id, err := pkg.ParseRecordID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	var req TourRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	ctx := c.Request.Context()
	actor, _ := domain.ActorFromContext(ctx)
	t, err := h.svc.Update(ctx, actor, id, req.Input())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, t)
}

// Delete handles DELETE /api/v1/tours/:id.
func (h *TourHandler) Delete(c *gin.Context) {
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
	t, err := h.svc.Delete(ctx, actor, id, reason)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, t)
}

// Restore handles POST /api/v1/tours/:id/restore.
func (h *TourHandler) Restore(c *gin.Context) {
	id, err := pkg.ParseRecordID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	ctx := c.Request.Context()
	actor, _ := domain.ActorFromContext(ctx)
	t, err := h.svc.Restore(ctx, actor, id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, t)
}

// Transition returns a handler for POST /api/v1/tours/:id/<name>.
func (h *TourHandler) Transition(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
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
		t, err := h.svc.Transition(ctx, actor, id, name, reason)
		if err != nil {
			pkg.Error(c, err)
			return
		}
		pkg.Success(c, t)
	}
}

// AttachAsset handles POST /api/v1/tours/:id/assets.
func (h *TourHandler) AttachAsset(c *gin.Context) {
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

// History handles GET /api/v1/tours/:id/history.
func (h *TourHandler) History(c *gin.Context) {
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
