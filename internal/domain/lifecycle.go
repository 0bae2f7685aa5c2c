package domain

import "time"

// SoftDeletable is the lifecycle capability shared by every owned record.
// The lifecycle manager is written once against this interface.
type SoftDeletable interface {
	IsDeleted() bool
	DeletionTime() *time.Time
	MarkDeleted(actorID, reason string, at time.Time)
	ClearDeleted()
}

// SoftDelete holds the soft-delete columns embedded in owned records.
type SoftDelete struct {
	DeletedAt    *time.Time `gorm:"index" json:"deleted_at,omitempty"`
	DeletedBy    string     `gorm:"size:64" json:"deleted_by,omitempty"`
	DeleteReason string     `gorm:"size:500" json:"delete_reason,omitempty"`
}

// IsDeleted reports whether the record is soft-deleted.
func (s *SoftDelete) IsDeleted() bool {
	return s.DeletedAt != nil
}

// DeletionTime returns when the record was deleted, or nil.
func (s *SoftDelete) DeletionTime() *time.Time {
	return s.DeletedAt
}

// MarkDeleted stamps the record as deleted by actorID.
func (s *SoftDelete) MarkDeleted(actorID, reason string, at time.Time) {
	t := at
	s.DeletedAt = &t
	s.DeletedBy = actorID
	s.DeleteReason = reason
}

// ClearDeleted removes all soft-delete stamps.
func (s *SoftDelete) ClearDeleted() {
	s.DeletedAt = nil
	s.DeletedBy = ""
	s.DeleteReason = ""
}

// Lifecycle actions recorded in the audit trail.
const (
	ActionSoftDelete = "soft_delete"
	ActionRestore    = "restore"
)

// LifecycleEvent is one audit trail entry for an owned record.
type LifecycleEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RecordType string    `gorm:"size:32;not null;index:idx_lifecycle_record,priority:1" json:"record_type"`
	RecordID   string    `gorm:"size:36;not null;index:idx_lifecycle_record,priority:2" json:"record_id"`
	Action     string    `gorm:"size:32;not null" json:"action"`
	FromStatus string    `gorm:"size:32" json:"from_status,omitempty"`
	ToStatus   string    `gorm:"size:32" json:"to_status,omitempty"`
	ActorID    string    `gorm:"size:64" json:"actor_id"`
	Reason     string    `gorm:"size:500" json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
