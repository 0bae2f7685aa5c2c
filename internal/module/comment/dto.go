package comment

// CreateCommentRequest represents the request body for posting a comment.
type CreateCommentRequest struct {
	ParentID *string `json:"parent_id" binding:"omitempty,uuid"`
	Author   string  `json:"author" binding:"required,max=100"`
	Body     string  `json:"body" binding:"required,max=5000"`
}

// UpdateCommentRequest represents the request body for editing a comment.
type UpdateCommentRequest struct {
	Body string `json:"body" binding:"required,max=5000"`
}
