package settings

import "github.com/gin-gonic/gin"

// SettingsModule implements the app.Module interface for settings aggregates.
type SettingsModule struct {
	handler *SettingsHandler
}

// NewModule creates a new SettingsModule with the given handler.
// Panics if h is nil.
func NewModule(h *SettingsHandler) *SettingsModule {
	if h == nil {
		panic("settings.NewModule: handler must not be nil")
	}
	return &SettingsModule{handler: h}
}

// RegisterRoutes registers settings API routes.
func (m *SettingsModule) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/settings/:kind", m.handler.Get)
	api.PUT("/settings/:kind/entries", m.handler.Upsert)
	api.PUT("/settings/:kind/order", m.handler.Reorder)
	api.DELETE("/settings/:kind/entries/:key", m.handler.Remove)
}
