package article

import "github.com/gin-gonic/gin"

// ArticleModule implements the app.Module interface for articles.
type ArticleModule struct {
	handler *ArticleHandler
}

// NewModule creates a new ArticleModule with the given handler.
// Panics if h is nil.
func NewModule(h *ArticleHandler) *ArticleModule {
	if h == nil {
		panic("article.NewModule: handler must not be nil")
	}
	return &ArticleModule{handler: h}
}

// RegisterRoutes registers article API routes.
func (m *ArticleModule) RegisterRoutes(api *gin.RouterGroup) {
	articles := api.Group("/articles")
	articles.GET("", m.handler.List)
	articles.POST("", m.handler.Create)
	articles.GET("/:id", m.handler.Get)
	articles.PUT("/:id", m.handler.Update)
	articles.DELETE("/:id", m.handler.Delete)
	articles.POST("/:id/restore", m.handler.Restore)
	articles.POST("/:id/assets", m.handler.AttachAsset)
	articles.GET("/:id/history", m.handler.History)
}
