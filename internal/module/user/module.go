package user

import "github.com/gin-gonic/gin"

// UserModule implements the app.Module interface for admin accounts.
type UserModule struct {
	handler *UserHandler
	guards  []gin.HandlerFunc
}

// NewModule creates a new UserModule with the given handler. guards run
// before every user route.
// Panics if h is nil.
func NewModule(h *UserHandler, guards ...gin.HandlerFunc) *UserModule {
	if h == nil {
		panic("user.NewModule: handler must not be nil")
	}
	return &UserModule{handler: h, guards: guards}
}

// RegisterRoutes registers user API routes.
func (m *UserModule) RegisterRoutes(api *gin.RouterGroup) {
	users := api.Group("/users", m.guards...)
	users.POST("", m.handler.Create)
	users.GET("/:id", m.handler.Get)
	users.GET("", m.handler.List)
	users.PUT("/:id", m.handler.Update)
	users.DELETE("/:id", m.handler.Delete)
}
