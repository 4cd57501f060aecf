package models

import (
	"database/sql"
	"time"
)

// Content status constants. Only approved content is visible on the public site.
const (
	StatusDraft           = "draft"
	StatusPendingApproval = "pending_approval"
	StatusApproved        = "approved"
	StatusRejected        = "rejected"
)

// ValidStatus reports whether s is a known content status.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPendingApproval, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ReviewState carries the moderation workflow fields shared by Rule and Announcement.
type ReviewState struct {
	Status      string         `gorm:"type:varchar(32);not null;default:'draft';column:status" json:"status"`
	SubmittedBy sql.NullInt64  `gorm:"column:submitted_by" json:"submitted_by"`
	ReviewedBy  sql.NullInt64  `gorm:"column:reviewed_by" json:"reviewed_by"`
	ReviewNotes sql.NullString `gorm:"type:text;column:review_notes" json:"review_notes"`
	ReviewedAt  sql.NullTime   `gorm:"column:reviewed_at" json:"reviewed_at"`
}

// Touchable timestamps used by every mutable table.
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null;autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime;column:updated_at" json:"updated_at"`
}
