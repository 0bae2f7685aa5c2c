package tour

// TourRequest represents the input for creating or replacing a tour.
type TourRequest struct {
	Title       string `json:"title" binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"max=10000"`
	GuideName   string `json:"guide_name" binding:"required,max=100"`
	GuideEmail  string `json:"guide_email" binding:"required,email,max=255"`
	Price       int64  `json:"price" binding:"gte=0"`
	Currency    string `json:"currency" binding:"omitempty,iso4217"`
}

// Input converts the request into service input.
func (r TourRequest) Input() Input {
	return Input{
		Title:       r.Title,
		Description: r.Description,
		GuideName:   r.GuideName,
		GuideEmail:  r.GuideEmail,
		Price:       r.Price,
		Currency:    r.Currency,
	}
}
