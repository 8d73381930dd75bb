package models

import "time"

const (
	MODERATION_STATUS_PENDING  = "pending"
	MODERATION_STATUS_APPROVED = "approved"
	MODERATION_STATUS_REJECTED = "rejected"

	MODERATION_PRIORITY_LOW    = "low"
	MODERATION_PRIORITY_NORMAL = "normal"
	MODERATION_PRIORITY_HIGH   = "high"
)

// ModerationQueue holds listings awaiting review. Approved and rejected
// are terminal; a re-submitted listing gets a new queue row.
type ModerationQueue struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	EntityID    uint       `gorm:"index;not null" json:"entity_id"`
	ListingID   uint       `gorm:"index;not null" json:"listing_id"`
	Listing     *Listing   `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
	Status      string     `gorm:"type:varchar(20);default:'pending';index" json:"status" validate:"oneof=pending approved rejected"`
	Priority    string     `gorm:"type:varchar(10);default:'normal'" json:"priority" validate:"oneof=low normal high"`
	ModeratorID *uint      `gorm:"index" json:"moderator_id,omitempty"`
	Reason      string     `gorm:"type:varchar(500);default:null" json:"reason,omitempty"`
	ReviewedAt  *time.Time `gorm:"type:timestamp;default:null" json:"reviewed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the queue item has already been decided.
func (m *ModerationQueue) IsTerminal() bool {
	return m.Status == MODERATION_STATUS_APPROVED || m.Status == MODERATION_STATUS_REJECTED
}

const (
	REPORT_STATUS_PENDING  = "pending"
	REPORT_STATUS_RESOLVED = "resolved"

	REPORT_REASON_SPAM          = "spam"
	REPORT_REASON_FRAUD         = "fraud"
	REPORT_REASON_INAPPROPRIATE = "inappropriate"
	REPORT_REASON_DUPLICATE     = "duplicate"
	REPORT_REASON_OTHER         = "other"
)

// ReportedContent is a user complaint about an entity. At most one open
// report per (reporter, entity) pair.
type ReportedContent struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	EntityID    uint       `gorm:"not null;index;uniqueIndex:idx_reports_reporter_entity" json:"entity_id"`
	ReporterID  uint       `gorm:"not null;uniqueIndex:idx_reports_reporter_entity" json:"reporter_id"`
	Reason      string     `gorm:"type:varchar(30);not null" json:"reason" validate:"oneof=spam fraud inappropriate duplicate other"`
	Description string     `gorm:"type:varchar(1000)" json:"description,omitempty"`
	Status      string     `gorm:"type:varchar(20);default:'pending';index" json:"status" validate:"oneof=pending resolved"`
	ResolvedBy  *uint      `gorm:"index" json:"resolved_by,omitempty"`
	Resolution  string     `gorm:"type:varchar(500);default:null" json:"resolution,omitempty"`
	ResolvedAt  *time.Time `gorm:"type:timestamp;default:null" json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// RequiresTakedown reports whether resolving this report deactivates the
// reported listing.
func (r *ReportedContent) RequiresTakedown() bool {
	switch r.Reason {
	case REPORT_REASON_SPAM, REPORT_REASON_FRAUD, REPORT_REASON_INAPPROPRIATE:
		return true
	}
	return false
}
