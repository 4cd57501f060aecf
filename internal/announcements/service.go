// Package announcements manages site announcements, which flow through the
// same moderation workflow as rules plus scheduling and auto-expiry.
package announcements

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prisonrp/ruleswiki/internal/audit"
	"github.com/prisonrp/ruleswiki/internal/db"
	"github.com/prisonrp/ruleswiki/internal/models"
	"github.com/prisonrp/ruleswiki/internal/notify"
	"github.com/prisonrp/ruleswiki/internal/permission"
	"github.com/prisonrp/ruleswiki/internal/validation"
	"github.com/prisonrp/ruleswiki/internal/workflow"
	"github.com/prisonrp/ruleswiki/pkg/logging"
)

var (
	// ErrNotFound is returned for an unknown announcement id
	ErrNotFound = errors.New("announcement not found")
	// ErrScheduleRequired is returned for a scheduled announcement without a time
	ErrScheduleRequired = errors.New("scheduled announcements require scheduled_for")
)

// Service implements announcement operations
type Service struct {
	repo     *db.AnnouncementRepository
	recorder *audit.Recorder
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewService creates a new announcement service
func NewService(repo *db.AnnouncementRepository, recorder *audit.Recorder, notifier notify.Notifier) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		notifier: notifier,
		logger:   logging.WithComponent("announcements"),
	}
}

// Input carries the writable announcement fields. Status is server-computed.
type Input struct {
	Title            string                `json:"title"`
	Content          string                `json:"content"`
	Priority         int                   `json:"priority"`
	IsActive         *bool                 `json:"is_active"`
	AnnouncementType string                `json:"announcement_type"`
	ScheduledFor     *time.Time            `json:"scheduled_for"`
	AutoExpireHours  *int64                `json:"auto_expire_hours"`
	Mode             permission.SubmitMode `json:"mode"`
}

// ListPublic returns announcements visible on the public site.
func (s *Service) ListPublic(ctx context.Context) ([]*models.Announcement, error) {
	return s.repo.ListPublic(ctx, time.Now().UTC())
}

// ListStaff returns announcements for the dashboard with an optional status filter.
func (s *Service) ListStaff(ctx context.Context, status string) ([]*models.Announcement, error) {
	if status != "" && !models.ValidStatus(status) {
		return nil, validation.Errorf("unknown status filter: %q", status)
	}
	return s.repo.ListStaff(ctx, status)
}

// Get returns an announcement by id.
func (s *Service) Get(ctx context.Context, id int64) (*models.Announcement, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

// Create creates an announcement in its starting status.
func (s *Service) Create(ctx context.Context, in Input, actor *models.StaffUser) (*models.Announcement, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, validation.Errorf("title and content are required")
	}

	level, err := permission.ParseLevel(actor.PermissionLevel)
	if err != nil {
		return nil, err
	}

	a := &models.Announcement{
		Title:            strings.TrimSpace(in.Title),
		Content:          in.Content,
		Priority:         clampPriority(in.Priority),
		IsActive:         true,
		AnnouncementType: models.AnnouncementImmediate,
	}
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
	if err := applySchedule(a, in); err != nil {
		return nil, err
	}

	workflow.Submit(&a.ReviewState, level, actor.ID, in.Mode)
	if a.Status == models.StatusApproved {
		s.markPublished(a)
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actor.ID, models.ActionCreate, "announcement", a.ID,
		fmt.Sprintf("Created announcement %q (%s)", a.Title, a.Status))
	return a, nil
}

// Update edits an announcement and restarts its submission cycle.
func (s *Service) Update(ctx context.Context, id int64, in Input, actor *models.StaffUser) (*models.Announcement, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	level, err := permission.ParseLevel(actor.PermissionLevel)
	if err != nil {
		return nil, err
	}

	oldContent := a.Content
	if strings.TrimSpace(in.Title) != "" {
		a.Title = strings.TrimSpace(in.Title)
	}
	if strings.TrimSpace(in.Content) != "" {
		a.Content = in.Content
	}
	if in.Priority != 0 {
		a.Priority = clampPriority(in.Priority)
	}
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
	if in.AnnouncementType != "" {
		if err := applySchedule(a, in); err != nil {
			return nil, err
		}
	}

	workflow.Submit(&a.ReviewState, level, actor.ID, in.Mode)
	if a.Status == models.StatusApproved {
		s.markPublished(a)
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.recorder.RecordChange(ctx, actor.ID, models.ActionUpdate, "announcement", a.ID,
		oldContent, a.Content, fmt.Sprintf("Updated announcement %q (%s)", a.Title, a.Status))
	return a, nil
}

// Delete removes an announcement.
func (s *Service) Delete(ctx context.Context, id int64, actor *models.StaffUser) error {
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.recorder.Record(ctx, actor.ID, models.ActionDelete, "announcement", id,
		fmt.Sprintf("Deleted announcement %q", a.Title))
	return nil
}

// Approve transitions an announcement to approved. Approval publishes
// immediately for immediate announcements; scheduled ones wait for their
// scheduled_for time at read side.
func (s *Service) Approve(ctx context.Context, id int64, reviewer *models.StaffUser, notes string) (*models.Announcement, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	level, err := permission.ParseLevel(reviewer.PermissionLevel)
	if err != nil {
		return nil, err
	}

	if err := workflow.Approve(&a.ReviewState, level, reviewer.ID, notes); err != nil {
		return nil, err
	}
	s.markPublished(a)

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, reviewer.ID, models.ActionApprove, "announcement", a.ID,
		fmt.Sprintf("Approved announcement %q", a.Title))
	s.notifier.AnnouncementApproved(ctx, a.Title)
	return a, nil
}

// Reject transitions an announcement to rejected; notes are required.
func (s *Service) Reject(ctx context.Context, id int64, reviewer *models.StaffUser, notes string) (*models.Announcement, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	level, err := permission.ParseLevel(reviewer.PermissionLevel)
	if err != nil {
		return nil, err
	}

	if err := workflow.Reject(&a.ReviewState, level, reviewer.ID, notes); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, reviewer.ID, models.ActionReject, "announcement", a.ID,
		fmt.Sprintf("Rejected announcement %q: %s", a.Title, notes))
	return a, nil
}

// markPublished stamps published_at for immediate announcements on first approval.
func (s *Service) markPublished(a *models.Announcement) {
	if a.AnnouncementType == models.AnnouncementImmediate && !a.PublishedAt.Valid {
		a.PublishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	}
}

func applySchedule(a *models.Announcement, in Input) error {
	switch in.AnnouncementType {
	case "", models.AnnouncementImmediate:
		a.AnnouncementType = models.AnnouncementImmediate
		a.ScheduledFor = sql.NullTime{}
	case models.AnnouncementScheduled:
		if in.ScheduledFor == nil {
			return ErrScheduleRequired
		}
		a.AnnouncementType = models.AnnouncementScheduled
		a.ScheduledFor = sql.NullTime{Time: in.ScheduledFor.UTC(), Valid: true}
	default:
		return validation.Errorf("unknown announcement type: %q", in.AnnouncementType)
	}
	if in.AutoExpireHours != nil && *in.AutoExpireHours > 0 {
		a.AutoExpireHours = sql.NullInt64{Int64: *in.AutoExpireHours, Valid: true}
	}
	return nil
}

func clampPriority(p int) int {
	if p == 0 {
		return 3
	}
	if p < 1 {
		return 1
	}
	if p > 5 {
		return 5
	}
	return p
}
