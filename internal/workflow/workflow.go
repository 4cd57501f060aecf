// Package workflow implements the content moderation state machine shared by
// rules and announcements: draft, pending_approval, approved, rejected.
package workflow

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/prisonrp/ruleswiki/internal/models"
	"github.com/prisonrp/ruleswiki/internal/permission"
)

var (
	// ErrInsufficientLevel is returned when the reviewer is below moderator.
	ErrInsufficientLevel = errors.New("insufficient permission level to review content")
	// ErrNotesRequired is returned when a rejection carries no review notes.
	ErrNotesRequired = errors.New("review notes are required when rejecting content")
	// ErrNotPending is returned when reviewing content that was never submitted.
	ErrNotPending = errors.New("content is not awaiting review")
)

// Submit places content into its starting status for a new submission cycle.
// The status is computed from the author's level and chosen mode; any
// client-supplied status is ignored by callers. Re-editing rejected content
// goes through here again rather than through a rejected -> * transition.
func Submit(state *models.ReviewState, author permission.Level, authorID int64, mode permission.SubmitMode) {
	state.Status = permission.StartingStatus(author, mode)
	state.SubmittedBy = sql.NullInt64{Int64: authorID, Valid: true}
	// A fresh cycle clears prior review metadata
	state.ReviewedBy = sql.NullInt64{}
	state.ReviewNotes = sql.NullString{}
	state.ReviewedAt = sql.NullTime{}
}

// Approve transitions content to approved, recording reviewer metadata.
// Notes are optional. Re-approving already-approved content is allowed and
// treated as a normal update (the reviewer stamp is refreshed). Rejected
// content is not reviewable; it re-enters the cycle through Submit.
func Approve(state *models.ReviewState, reviewer permission.Level, reviewerID int64, notes string) error {
	if !reviewer.CanReview() {
		return ErrInsufficientLevel
	}
	if state.Status == models.StatusDraft || state.Status == models.StatusRejected {
		return ErrNotPending
	}
	state.Status = models.StatusApproved
	stamp(state, reviewerID, notes)
	return nil
}

// Reject transitions content to rejected. Notes are required; a blank value
// fails validation before any state changes.
func Reject(state *models.ReviewState, reviewer permission.Level, reviewerID int64, notes string) error {
	if !reviewer.CanReview() {
		return ErrInsufficientLevel
	}
	if strings.TrimSpace(notes) == "" {
		return ErrNotesRequired
	}
	if state.Status == models.StatusDraft || state.Status == models.StatusRejected {
		return ErrNotPending
	}
	state.Status = models.StatusRejected
	stamp(state, reviewerID, notes)
	return nil
}

func stamp(state *models.ReviewState, reviewerID int64, notes string) {
	state.ReviewedBy = sql.NullInt64{Int64: reviewerID, Valid: true}
	state.ReviewedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	if notes != "" {
		state.ReviewNotes = sql.NullString{String: notes, Valid: true}
	} else {
		state.ReviewNotes = sql.NullString{}
	}
}
