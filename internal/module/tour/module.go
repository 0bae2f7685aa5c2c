package tour

import "github.com/gin-gonic/gin"

// TourModule implements the app.Module interface for tours.
type TourModule struct {
	handler *TourHandler
}

// NewModule creates a new TourModule with the given handler.
// Panics if h is nil.
func NewModule(h *TourHandler) *TourModule {
	if h == nil {
		panic("tour.NewModule: handler must not be nil")
	}
	return &TourModule{handler: h}
}

// RegisterRoutes registers tour API routes.
func (m *TourModule) RegisterRoutes(api *gin.RouterGroup) {
	tours := api.Group("/tours")
	tours.GET("", m.handler.List)
	tours.POST("", m.handler.Create)
	tours.GET("/:id", m.handler.Get)
	tours.PUT("/:id", m.handler.Update)
	tours.DELETE("/:id", m.handler.Delete)
	tours.POST("/:id/restore", m.handler.Restore)
	tours.POST("/:id/assets", m.handler.AttachAsset)
	tours.GET("/:id/history", m.handler.History)
	for _, name := range []string{Submit, Approve, Reject, Suspend, Reinstate} {
		tours.POST("/:id/"+name, m.handler.Transition(name))
	}
}
