package article

// ArticleRequest represents the input for creating or replacing an article.
type ArticleRequest struct {
	Title  string `json:"title" binding:"required,min=2,max=200"`
	Slug   string `json:"slug" binding:"omitempty,max=200"`
	Body   string `json:"body" binding:"max=100000"`
	Author string `json:"author" binding:"omitempty,max=100"`
	Status string `json:"status" binding:"omitempty,oneof=draft published"`
}

// Input converts the request into service input.
func (r ArticleRequest) Input() Input {
	return Input{Title: r.Title, Slug: r.Slug, Body: r.Body, Author: r.Author, Status: r.Status}
}
