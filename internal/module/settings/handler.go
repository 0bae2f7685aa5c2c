package settings

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/touradmin/internal/domain"
	"github.com/simp-lee/touradmin/internal/pkg"
)

// MutationService is the behaviour the handler needs from Service.
type MutationService interface {
	Get(ctx context.Context, kind string) (*View, error)
	Upsert(ctx context.Context, actor domain.Actor, kind string, patch domain.EntryPatch, expected *int64) (*Result, error)
	Remove(ctx context.Context, actor domain.Actor, kind, key string, expected *int64) (*Result, error)
	Reorder(ctx context.Context, actor domain.Actor, kind string, keys []string, expected *int64) (*View, error)
}

// SettingsHandler handles REST API requests for settings aggregates.
type SettingsHandler struct {
	svc MutationService
}

// NewSettingsHandler creates a new SettingsHandler with the given service.
func NewSettingsHandler(svc MutationService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// Get handles GET /api/v1/settings/:kind.
func (h *SettingsHandler) Get(c *gin.Context) {
	view, err := h.svc.Get(c.Request.Context(), c.Param("kind"))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	setETag(c, view.Version)
	pkg.Success(c, view)
}

// Upsert handles PUT /api/v1/settings/:kind/entries.
func (h *SettingsHandler) Upsert(c *gin.Context) {
	var req UpsertEntryRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	expected, err := expectedVersion(c, req.ExpectedVersion)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	actor, _ := domain.ActorFromContext(ctx)
	res, err := h.svc.Upsert(ctx, actor, c.Param("kind"), req.Patch(), expected)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	setETag(c, res.Version)
	pkg.Success(c, res)
}

// Reorder handles PUT /api/v1/settings/:kind/order.
func (h *SettingsHandler) Reorder(c *gin.Context) {
	var req ReorderRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	expected, err := expectedVersion(c, req.ExpectedVersion)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	actor, _ := domain.ActorFromContext(ctx)
	view, err := h.svc.Reorder(ctx, actor, c.Param("kind"), req.Keys, expected)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	setETag(c, view.Version)
	pkg.Success(c, view)
}

// Remove handles DELETE /api/v1/settings/:kind/entries/:key.
// The expected version comes from If-Match or the expected_version query.
func (h *SettingsHandler) Remove(c *gin.Context) {
	var fromQuery *int64
	if raw := c.Query("expected_version"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			pkg.Error(c, domain.NewValidationError("invalid expected version", map[string]string{"expected_version": "gte=0"}))
			return
		}
		fromQuery = &v
	}
	expected, err := expectedVersion(c, fromQuery)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	actor, _ := domain.ActorFromContext(ctx)
	res, err := h.svc.Remove(ctx, actor, c.Param("kind"), c.Param("key"), expected)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	setETag(c, res.Version)
	pkg.Success(c, res)
}

// expectedVersion prefers the explicit value and falls back to If-Match.
// Neither present means a blind write.
func expectedVersion(c *gin.Context, explicit *int64) (*int64, error) {
	if explicit != nil {
		return explicit, nil
	}
	raw := strings.TrimSpace(c.GetHeader("If-Match"))
	if raw == "" || raw == "*" {
		return nil, nil
	}
	raw = strings.TrimPrefix(raw, "W/")
	raw = strings.Trim(raw, `"`)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return nil, domain.NewValidationError("invalid If-Match header", map[string]string{"If-Match": "version"})
	}
	return &v, nil
}

func setETag(c *gin.Context, version int64) {
	c.Header("ETag", `"`+strconv.FormatInt(version, 10)+`"`)
}
