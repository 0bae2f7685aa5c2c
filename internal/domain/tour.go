package domain

import "time"

// Tour review statuses.
const (
	TourDraft     = "draft"
	TourPending   = "pending"
	TourApproved  = "approved"
	TourRejected  = "rejected"
	TourSuspended = "suspended"
)

// Tour is a guide's listing that goes through admin review.
type Tour struct {
	RecordModel
	Title        string     `gorm:"size:200;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	GuideName    string     `gorm:"size:100;not null" json:"guide_name"`
	GuideEmail   string     `gorm:"size:255;not null" json:"guide_email"`
	Price        int64      `gorm:"not null;default:0" json:"price"`
	Currency     string     `gorm:"size:3;not null;default:USD" json:"currency"`
	Status       string     `gorm:"size:16;not null;default:draft;index" json:"status"`
	ReviewedBy   string     `gorm:"size:64" json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	ReviewReason string     `gorm:"size:500" json:"review_reason,omitempty"`
	Assets       []Asset    `gorm:"-" json:"assets,omitempty"`
}

// RecordType implements the lifecycle record contract.
func (*Tour) RecordType() string { return RecordTour }

// CurrentStatus implements the workflow record contract.
func (t *Tour) CurrentStatus() string { return t.Status }

// ApplyTransition sets the new status and stamps the review.
func (t *Tour) ApplyTransition(to, actorID, reason string, at time.Time) {
	stamp := at
	t.Status = to
	t.ReviewedBy = actorID
	t.ReviewedAt = &stamp
	t.ReviewReason = reason
}

// Asset is an uploaded file owned by a record.
type Asset struct {
	ID                 string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerType          string     `gorm:"size:32;not null;index:idx_asset_owner,priority:1" json:"owner_type"`
	OwnerID            string     `gorm:"size:36;not null;index:idx_asset_owner,priority:2" json:"owner_id"`
	URL                string     `gorm:"size:500;not null" json:"url"`
	ProviderID         string     `gorm:"size:255;not null" json:"-"`
	ContentType        string     `gorm:"size:100" json:"content_type"`
	CleanupRequestedAt *time.Time `gorm:"index" json:"cleanup_requested_at,omitempty"`
	PurgedAt           *time.Time `json:"purged_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Notification delivery states.
const (
	NotificationPending = "pending"
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
)

// Notification is an outbox row delivered by the dispatcher.
type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Recipient string     `gorm:"size:255;not null" json:"recipient"`
	Subject   string     `gorm:"size:255;not null" json:"subject"`
	Body      string     `gorm:"type:text" json:"body"`
	Status    string     `gorm:"size:16;not null;default:pending;index" json:"status"`
	Attempts  int        `gorm:"not null;default:0" json:"attempts"`
	LastError string     `gorm:"size:500" json:"last_error,omitempty"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
