package employee

import "github.com/gin-gonic/gin"

// EmployeeModule implements the app.Module interface for employees.
type EmployeeModule struct {
	handler *EmployeeHandler
}

// NewModule creates a new EmployeeModule with the given handler.
// Panics if h is nil.
func NewModule(h *EmployeeHandler) *EmployeeModule {
	if h == nil {
		panic("employee.NewModule: handler must not be nil")
	}
	return &EmployeeModule{handler: h}
}

// RegisterRoutes registers employee API routes.
func (m *EmployeeModule) RegisterRoutes(api *gin.RouterGroup) {
	employees := api.Group("/employees")
	employees.GET("", m.handler.List)
	employees.POST("", m.handler.Create)
	employees.GET("/:id", m.handler.Get)
	employees.PUT("/:id", m.handler.Update)
	employees.DELETE("/:id", m.handler.Delete)
	employees.POST("/:id/restore", m.handler.Restore)
	employees.GET("/:id/history", m.handler.History)
	employees.POST("/:id/memberships", m.handler.AddMembership)
	employees.DELETE("/:id/memberships/:team", m.handler.RemoveMembership)
}
