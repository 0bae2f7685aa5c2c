package domain

import "time"

// BaseModel is the common base struct for numerically keyed models.
// It replaces gorm.Model to avoid the implicit soft delete behavior of DeletedAt.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecordModel is the base struct for owned records addressed by a UUID string.
// Soft-delete state lives in the embedded SoftDelete, never in gorm.DeletedAt,
// so that listing rules stay explicit.
type RecordModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	SoftDelete
}

// RecordID returns the record's primary key.
func (m *RecordModel) RecordID() string {
	return m.ID
}

// PageRequest holds pagination, sorting, and filtering parameters.
type PageRequest struct {
	Page           int
	PageSize       int
	Sort           string
	Filter         map[string]string
	IncludeDeleted bool
}

// PageResult is a page of items with pagination metadata.
type PageResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}
