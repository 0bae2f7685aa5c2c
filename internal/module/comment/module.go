package comment

import "github.com/gin-gonic/gin"

// CommentModule implements the app.Module interface for comments.
type CommentModule struct {
	handler *CommentHandler
}

// NewModule creates a new CommentModule with the given handler.
// Panics if h is nil.
func NewModule(h *CommentHandler) *CommentModule {
	if h == nil {
		panic("comment.NewModule: handler must not be nil")
	}
	return &CommentModule{handler: h}
}

// RegisterRoutes registers comment API routes.
func (m *CommentModule) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/articles/:id/comments", m.handler.ListRoots)
	api.POST("/articles/:id/comments", m.handler.Create)

	comments := api.Group("/comments")
	comments.GET("/:id", m.handler.Get)
	comments.PUT("/:id", m.handler.Update)
	comments.DELETE("/:id", m.handler.Delete)
	comments.POST("/:id/restore", m.handler.Restore)
	comments.GET("/:id/replies", m.handler.Replies)
	comments.GET("/:id/history", m.handler.History)
}
