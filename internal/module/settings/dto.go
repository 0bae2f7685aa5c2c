package settings

import "github.com/simp-lee/touradmin/internal/domain"

// UpsertEntryRequest represents the input for creating or merging an entry.
// Omitted payload fields keep their stored value.
type UpsertEntryRequest struct {
	ExpectedVersion *int64  `json:"expected_version" binding:"omitempty,gte=0"`
	Key             string  `json:"key" binding:"required,max=64"`
	Order           *int    `json:"order"`
	Title           *string `json:"title" binding:"omitempty,max=100"`
	Description     *string `json:"description" binding:"omitempty,max=1000"`
	Price           *int64  `json:"price"`
	Currency        *string `json:"currency"`
	Platform        *string `json:"platform"`
	URL             *string `json:"url"`
	ImageURL        *string `json:"image_url"`
	LinkURL         *string `json:"link_url"`
	Active          *bool   `json:"active"`
}

// Patch converts the request into an entry patch.
func (r UpsertEntryRequest) Patch() domain.EntryPatch {
	return domain.EntryPatch{
		Key:         r.Key,
		Order:       r.Order,
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Currency:    r.Currency,
		Platform:    r.Platform,
		URL:         r.URL,
		ImageURL:    r.ImageURL,
		LinkURL:     r.LinkURL,
		Active:      r.Active,
	}
}

// ReorderRequest represents the input for reordering entries.
type ReorderRequest struct {
	ExpectedVersion *int64   `json:"expected_version" binding:"omitempty,gte=0"`
	Keys            []string `json:"keys" binding:"required,dive,required"`
}
