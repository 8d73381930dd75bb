package models

import "time"

const (
	TICKET_STATUS_OPEN        = "open"
	TICKET_STATUS_IN_PROGRESS = "in_progress"
	TICKET_STATUS_RESOLVED    = "resolved"
	TICKET_STATUS_CLOSED      = "closed"
	TICKET_STATUS_REJECTED    = "rejected"

	TICKET_PRIORITY_LOW      = "low"
	TICKET_PRIORITY_MEDIUM   = "medium"
	TICKET_PRIORITY_HIGH     = "high"
	TICKET_PRIORITY_CRITICAL = "critical"
)

type SupportTicket struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	EntityID          uint       `gorm:"uniqueIndex;not null" json:"entity_id"`
	UserID            uint       `gorm:"index;not null" json:"user_id"`
	User              *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Subject           string     `gorm:"type:varchar(200);not null" json:"subject" validate:"required,min=5,max=200"`
	Description       string     `gorm:"type:text;not null" json:"description" validate:"required,max=10000"`
	Priority          string     `gorm:"type:varchar(10);default:'medium'" json:"priority" validate:"oneof=low medium high critical"`
	Status            string     `gorm:"type:varchar(20);default:'open';index" json:"status" validate:"oneof=open in_progress resolved closed rejected"`
	AssignedToID      *uint      `gorm:"index" json:"assigned_to_id,omitempty"`
	ConversationID    *uint      `gorm:"index" json:"conversation_id,omitempty"`
	FirstResponseAt   *time.Time `gorm:"type:timestamp;default:null" json:"first_response_at,omitempty"`
	ResolvedAt        *time.Time `gorm:"type:timestamp;default:null" json:"resolved_at,omitempty"`
	SatisfactionScore *int       `gorm:"type:tinyint" json:"satisfaction_score,omitempty" validate:"omitempty,min=1,max=5"`
	CreatedAt         time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// CanTransitionTo enforces the ticket state machine.
func (t *SupportTicket) CanTransitionTo(status string) bool {
	switch t.Status {
	case TICKET_STATUS_OPEN:
		return status == TICKET_STATUS_IN_PROGRESS || status == TICKET_STATUS_REJECTED || status == TICKET_STATUS_CLOSED
	case TICKET_STATUS_IN_PROGRESS:
		return status == TICKET_STATUS_RESOLVED || status == TICKET_STATUS_REJECTED || status == TICKET_STATUS_CLOSED
	case TICKET_STATUS_RESOLVED:
		return status == TICKET_STATUS_CLOSED || status == TICKET_STATUS_IN_PROGRESS
	}
	return false
}

// CanRate reports whether the author may leave a satisfaction score.
func (t *SupportTicket) CanRate() bool {
	return (t.Status == TICKET_STATUS_RESOLVED || t.Status == TICKET_STATUS_CLOSED) && t.SatisfactionScore == nil
}

type SupportFAQ struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Question  string    `gorm:"type:varchar(500);not null" json:"question"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	Category  string    `gorm:"type:varchar(100);index" json:"category"`
	ViewCount int       `gorm:"default:0" json:"view_count"`
	SortOrder int       `gorm:"default:0" json:"-"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}
