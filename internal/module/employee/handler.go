package employee

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/touradmin/internal/domain"
	"github.com/simp-lee/touradmin/internal/pkg"
)

// EmployeeHandler handles REST API requests for employees.
type EmployeeHandler struct {
	svc *EmployeeService
}

// NewEmployeeHandler creates a new EmployeeHandler with the given service.
func NewEmployeeHandler(svc *EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{svc: svc}
}

// Create handles POST /api/v1/employees.
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req EmployeeRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	ctx := c.Request.Context()
	actor, _ := domain.ActorFromContext(ctx)
	e, err := h.svc.Create(ctx, actor, req.Input())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, e)
}

// Get handles GET /api/v1/employees/:id.
func (h *EmployeeHandler) Get(c *gin.Context) {
	id, err := pkg.ParseRecordID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	e, err := h.svc.Get(c.Request.Context(), id, pkg.ParseListRequest(c).IncludeDeleted)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, e)
}

// List handles GET /api/v1/employees.
func (h *EmployeeHandler) List(c *gin.Context) {
	result, err := h.svc.List(c.Request.Context(), pkg.ParseListRequest(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Update handles PUT /api/v1/employees/:id.
func (h *EmployeeHandler) Update(c *gin.Context) {
	id, err := pkg.ParseRecordID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	var req EmployeeRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	ctx := c.Request.Context()
	actor, _ := domain.ActorFromContext(ctx)
	e, err := h.svc.Update(ctx, actor, id, req.Input())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, e)
}

// Delete handles DELETE /api/v1/employees/:id.
func (h *EmployeeHandler) Delete(c *gin.Context) {
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
	e, err := h.svc.Delete(ctx, actor, id, reason)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, e)
}

// Restore handles POST /api/v1/employees/:id/restore.
func (h *EmployeeHandler) Restore(c *gin.Context) {
	id, err := pkg.ParseRecordID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	ctx := c.Request.Context()
	actor, _ := domain.ActorFromContext(ctx)
	e, err := h.svc.Restore(ctx, actor, id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, e)
}

// AddMembership handles POST /api/v1/employees/:id/memberships.
func (h *EmployeeHandler) AddMembership(c *gin.Context) {
	id, err := pkg.ParseRecordID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	var req MembershipRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	ctx := c.Request.Context()
	actor, _ := domain.ActorFromContext(ctx)
	m, err := h.svc.AddMembership(ctx, actor, id, req.Team, req.Role)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, m)
}

// RemoveMembership handles DELETE /api/v1/employees/:id/memberships/:team.
func (h *EmployeeHandler) RemoveMembership(c *gin.Context) {
	id, err := pkg.ParseRecordID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	ctx := c.Request.Context()
	actor, _ := domain.ActorFromContext(ctx)
	if err := h.svc.RemoveMembership(ctx, actor, id, c.Param("team")); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

// History handles GET /api/v1/employees/:id/history.
func (h *EmployeeHandler) History(c *gin.Context) {
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
