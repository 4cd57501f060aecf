package announcements

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/prisonrp/ruleswiki/internal/audit"
	"github.com/prisonrp/ruleswiki/internal/db"
	"github.com/prisonrp/ruleswiki/internal/models"
	"github.com/prisonrp/ruleswiki/internal/notify"
	"github.com/prisonrp/ruleswiki/internal/permission"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(&models.Announcement{}, &models.ActivityLog{}); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	repo := db.NewRepository(gdb)
	return NewService(db.NewAnnouncementRepository(repo), audit.NewRecorder(db.NewActivityLogRepository(repo)), notify.Noop{})
}

func adminUser() *models.StaffUser {
	return &models.StaffUser{ID: 1, Username: "warden", PermissionLevel: "admin", IsActive: true}
}

func editorUser() *models.StaffUser {
	return &models.StaffUser{ID: 2, Username: "guard", PermissionLevel: "editor", IsActive: true}
}

func TestCreateImmediatePublishesOnApproval(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, Input{Title: "Server wipe", Content: "Friday 20:00", Mode: permission.ModeSubmit}, adminUser())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Status != models.StatusApproved {
		t.Fatalf("status = %q, want approved", a.Status)
	}
	if !a.PublishedAt.Valid {
		t.Error("published_at not stamped on approved immediate announcement")
	}
	if a.Priority != 3 {
		t.Errorf("default priority = %d, want 3", a.Priority)
	}
}

func TestScheduledRequiresTime(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{
		Title:            "Event",
		Content:          "Prison riot event",
		AnnouncementType: models.AnnouncementScheduled,
		Mode:             permission.ModeSubmit,
	}, adminUser())
	if !errors.Is(err, ErrScheduleRequired) {
		t.Fatalf("err = %v, want ErrScheduleRequired", err)
	}
}

func TestScheduledInvisibleUntilDue(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-time.Hour)

	if _, err := svc.Create(ctx, Input{
		Title:            "Later",
		Content:          "x",
		AnnouncementType: models.AnnouncementScheduled,
		ScheduledFor:     &future,
		Mode:             permission.ModeSubmit,
	}, adminUser()); err != nil {
		t.Fatalf("create future: %v", err)
	}
	if _, err := svc.Create(ctx, Input{
		Title:            "Due",
		Content:          "x",
		AnnouncementType: models.AnnouncementScheduled,
		ScheduledFor:     &past,
		Mode:             permission.ModeSubmit,
	}, adminUser()); err != nil {
		t.Fatalf("create past: %v", err)
	}

	visible, err := svc.ListPublic(ctx)
	if err != nil {
		t.Fatalf("list public: %v", err)
	}
	if len(visible) != 1 || visible[0].Title != "Due" {
		t.Fatalf("public announcements = %+v, want only the due one", visible)
	}
}

func TestAutoExpire(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	expire := int64(1)
	a, err := svc.Create(ctx, Input{
		Title:           "Short lived",
		Content:         "x",
		AutoExpireHours: &expire,
		Mode:            permission.ModeSubmit,
	}, adminUser())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Backdate publication beyond the expiry window.
	a.PublishedAt.Time = time.Now().UTC().Add(-2 * time.Hour)
	if err := svc.repo.Update(ctx, a); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	visible, err := svc.ListPublic(ctx)
	if err != nil {
		t.Fatalf("list public: %v", err)
	}
	if len(visible) != 0 {
		t.Fatalf("expired announcement still visible: %+v", visible)
	}
}

func TestEditorSubmissionWorkflow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	editor := editorUser()
	admin := adminUser()

	a, err := svc.Create(ctx, Input{Title: "Pending", Content: "x", Mode: permission.ModeSubmit}, editor)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Status != models.StatusPendingApproval {
		t.Fatalf("status = %q, want pending_approval", a.Status)
	}
	if a.PublishedAt.Valid {
		t.Error("pending announcement must not be published")
	}

	// Rejection requires notes.
	if _, err := svc.Reject(ctx, a.ID, admin, ""); err == nil {
		t.Fatal("reject without notes succeeded, want error")
	}
	rejected, err := svc.Reject(ctx, a.ID, admin, "too vague")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != models.StatusRejected {
		t.Fatalf("status = %q, want rejected", rejected.Status)
	}

	// Editing a rejected announcement starts a fresh cycle.
	edited, err := svc.Update(ctx, a.ID, Input{Content: "now specific", Mode: permission.ModeSubmit}, editor)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if edited.Status != models.StatusPendingApproval {
		t.Fatalf("status after re-edit = %q, want pending_approval", edited.Status)
	}
	if edited.ReviewNotes.Valid {
		t.Errorf("review notes survived resubmission: %q", edited.ReviewNotes.String)
	}

	approved, err := svc.Approve(ctx, a.ID, admin, "")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !approved.PublishedAt.Valid {
		t.Error("published_at not stamped on approval")
	}
}

func TestClampPriority(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 3},
		{-2, 1},
		{1, 1},
		{5, 5},
		{9, 5},
	}
	for _, tt := range tests {
		if got := clampPriority(tt.in); got != tt.want {
			t.Errorf("clampPriority(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
