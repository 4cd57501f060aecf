// Package audit records append-only activity log rows for the staff dashboard feed.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/prisonrp/ruleswiki/internal/db"
	"github.com/prisonrp/ruleswiki/internal/models"
	"github.com/prisonrp/ruleswiki/pkg/logging"
)

// Recorder writes audit rows. A failed write is logged but never fails the
// operation being audited.
type Recorder struct {
	repo   *db.ActivityLogRepository
	logger *zap.Logger
}

// NewRecorder creates a new audit recorder
func NewRecorder(repo *db.ActivityLogRepository) *Recorder {
	return &Recorder{
		repo:   repo,
		logger: logging.WithComponent("audit"),
	}
}

// Record appends one activity row.
func (r *Recorder) Record(ctx context.Context, actor int64, action, resourceType string, resourceID int64, description string) {
	r.RecordChange(ctx, actor, action, resourceType, resourceID, "", "", description)
}

// RecordChange appends one activity row with before/after content snapshots.
func (r *Recorder) RecordChange(ctx context.Context, actor int64, action, resourceType string, resourceID int64, oldContent, newContent, description string) {
	entry := &models.ActivityLog{
		Actor:        actor,
		ActionType:   action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		OldContent:   oldContent,
		NewContent:   newContent,
		Description:  description,
	}
	if err := r.repo.Append(ctx, entry); err != nil {
		r.logger.Error("Failed to write activity log entry",
			zap.String("action", action),
			zap.String("resource", resourceType),
			zap.Error(err))
	}
}

// Recent returns the newest activity rows.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	return r.repo.Recent(ctx, limit)
}
