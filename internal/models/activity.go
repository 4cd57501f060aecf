package models

import "time"

// Activity action type constants
const (
	ActionCreate     = "create"
	ActionUpdate     = "update"
	ActionDelete     = "delete"
	ActionApprove    = "approve"
	ActionReject     = "reject"
	ActionSubmit     = "submit"
	ActionReorder    = "reorder"
	ActionDeactivate = "deactivate"
)

// ActivityLog is an append-only audit row. Rows are written once and never mutated.
type ActivityLog struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Actor        int64     `gorm:"not null;index;column:actor" json:"actor"`
	ActionType   string    `gorm:"type:varchar(32);not null;column:action_type" json:"action_type"`
	ResourceType string    `gorm:"type:varchar(32);not null;column:resource_type" json:"resource_type"`
	ResourceID   int64     `gorm:"not null;column:resource_id" json:"resource_id"`
	OldContent   string    `gorm:"type:text;not null;default:'';column:old_content" json:"old_content"`
	NewContent   string    `gorm:"type:text;not null;default:'';column:new_content" json:"new_content"`
	Description  string    `gorm:"type:text;not null;default:'';column:description" json:"description"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime;column:created_at" json:"created_at"`
}

// TableName specifies the table name for ActivityLog
func (ActivityLog) TableName() string {
	return "activity_log"
}
