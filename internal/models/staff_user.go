package models

import (
	"database/sql"
	"time"
)

// StaffUser represents a staff dashboard account, identified by a Steam ID
// (17-digit) or a Discord ID.
type StaffUser struct {
	ID              int64          `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	SteamID         sql.NullString `gorm:"type:varchar(17);uniqueIndex:staff_users_steam_ux;column:steam_id" json:"steam_id"`
	DiscordID       sql.NullString `gorm:"type:varchar(32);uniqueIndex:staff_users_discord_ux;column:discord_id" json:"discord_id"`
	Username        string         `gorm:"type:varchar(64);not null;column:username" json:"username"`
	PermissionLevel string         `gorm:"type:varchar(16);not null;default:'editor';column:permission_level" json:"permission_level"`
	IsActive        bool           `gorm:"not null;default:true;column:is_active" json:"is_active"`
	CreatedAt       time.Time      `gorm:"not null;autoCreateTime;column:created_at" json:"created_at"`
	LastLogin       sql.NullTime   `gorm:"column:last_login" json:"last_login"`
}

// TableName specifies the table name for StaffUser
func (StaffUser) TableName() string {
	return "staff_users"
}
