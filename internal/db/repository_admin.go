package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/prisonrp/ruleswiki/internal/models"
)

// AnnouncementRepository provides announcement-related database operations
type AnnouncementRepository struct {
	*Repository
}

// NewAnnouncementRepository creates a new announcement repository
func NewAnnouncementRepository(repo *Repository) *AnnouncementRepository {
	return &AnnouncementRepository{Repository: repo}
}

// GetByID retrieves an announcement by ID
func (r *AnnouncementRepository) GetByID(ctx context.Context, id int64) (*models.Announcement, error) {
	var a models.Announcement
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// ListPublic retrieves announcements visible on the public site: approved,
// active, scheduled time (if any) in the past, and not auto-expired.
func (r *AnnouncementRepository) ListPublic(ctx context.Context, now time.Time) ([]*models.Announcement, error) {
	var announcements []*models.Announcement
	if err := r.db.WithContext(ctx).
		Where("status = ? AND is_active = ?", models.StatusApproved, true).
		Where("scheduled_for IS NULL OR scheduled_for <= ?", now).
		Order("priority DESC, created_at DESC").
		Find(&announcements).Error; err != nil {
		return nil, err
	}

	// auto_expire_hours is measured from publish (or creation when never
	// explicitly published); filtered here rather than in SQL to keep the
	// interval arithmetic identical on both backends
	visible := announcements[:0]
	for _, a := range announcements {
		if a.AutoExpireHours.Valid && a.AutoExpireHours.Int64 > 0 {
			start := a.CreatedAt
			if a.PublishedAt.Valid {
				start = a.PublishedAt.Time
			} else if a.ScheduledFor.Valid {
				start = a.ScheduledFor.Time
			}
			if now.After(start.Add(time.Duration(a.AutoExpireHours.Int64) * time.Hour)) {
				continue
			}
		}
		visible = append(visible, a)
	}
	return visible, nil
}

// ListStaff retrieves announcements for the staff dashboard, optionally filtered by status.
func (r *AnnouncementRepository) ListStaff(ctx context.Context, status string) ([]*models.Announcement, error) {
	query := r.db.WithContext(ctx).Model(&models.Announcement{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var announcements []*models.Announcement
	if err := query.Order("created_at DESC").Find(&announcements).Error; err != nil {
		return nil, err
	}
	return announcements, nil
}

// Create creates a new announcement
func (r *AnnouncementRepository) Create(ctx context.Context, a *models.Announcement) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// Update updates an announcement
func (r *AnnouncementRepository) Update(ctx context.Context, a *models.Announcement) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// Delete deletes an announcement
func (r *AnnouncementRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Announcement{}, id).Error
}

// StaffUserRepository provides staff user database operations
type StaffUserRepository struct {
	*Repository
}

// NewStaffUserRepository creates a new staff user repository
func NewStaffUserRepository(repo *Repository) *StaffUserRepository {
	return &StaffUserRepository{Repository: repo}
}

// GetByID retrieves a staff user by ID
func (r *StaffUserRepository) GetByID(ctx context.Context, id int64) (*models.StaffUser, error) {
	var user models.StaffUser
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetBySteamID retrieves a staff user by Steam ID
func (r *StaffUserRepository) GetBySteamID(ctx context.Context, steamID string) (*models.StaffUser, error) {
	var user models.StaffUser
	if err := r.db.WithContext(ctx).Where("steam_id = ?", steamID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByDiscordID retrieves a staff user by Discord ID
func (r *StaffUserRepository) GetByDiscordID(ctx context.Context, discordID string) (*models.StaffUser, error) {
	var user models.StaffUser
	if err := r.db.WithContext(ctx).Where("discord_id = ?", discordID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// List retrieves all staff users
func (r *StaffUserRepository) List(ctx context.Context) ([]*models.StaffUser, error) {
	var users []*models.StaffUser
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Create creates a new staff user
func (r *StaffUserRepository) Create(ctx context.Context, user *models.StaffUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update updates a staff user
func (r *StaffUserRepository) Update(ctx context.Context, user *models.StaffUser) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// TouchLastLogin stamps last_login for a user
func (r *StaffUserRepository) TouchLastLogin(ctx context.Context, id int64, when time.Time) error {
	return r.db.WithContext(ctx).Model(&models.StaffUser{}).
		Where("id = ?", id).
		Update("last_login", when).Error
}

// ActivityLogRepository provides append-only audit log operations
type ActivityLogRepository struct {
	*Repository
}

// NewActivityLogRepository creates a new activity log repository
func NewActivityLogRepository(repo *Repository) *ActivityLogRepository {
	return &ActivityLogRepository{Repository: repo}
}

// Append writes one audit row. Rows are never updated or deleted.
func (r *ActivityLogRepository) Append(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Recent retrieves the newest audit rows for the activity feed.
func (r *ActivityLogRepository) Recent(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var entries []*models.ActivityLog
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
