package models

import "database/sql"

// Announcement type constants
const (
	AnnouncementImmediate = "immediate"
	AnnouncementScheduled = "scheduled"
)

// Announcement represents a site announcement, subject to the same review
// workflow as rules. Scheduled announcements become visible once their
// scheduled_for time has passed; auto_expire_hours hides them again.
type Announcement struct {
	ID               int64         `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Title            string        `gorm:"type:varchar(200);not null;column:title" json:"title"`
	Content          string        `gorm:"type:text;not null;column:content" json:"content"`
	Priority         int           `gorm:"not null;default:3;column:priority" json:"priority"`
	IsActive         bool          `gorm:"not null;default:true;column:is_active" json:"is_active"`
	AnnouncementType string        `gorm:"type:varchar(16);not null;default:'immediate';column:announcement_type" json:"announcement_type"`
	ScheduledFor     sql.NullTime  `gorm:"column:scheduled_for" json:"scheduled_for"`
	AutoExpireHours  sql.NullInt64 `gorm:"column:auto_expire_hours" json:"auto_expire_hours"`
	PublishedAt      sql.NullTime  `gorm:"column:published_at" json:"published_at"`
	ReviewState
	Timestamps
}

// TableName specifies the table name for Announcement
func (Announcement) TableName() string {
	return "announcements"
}
