// Package permission defines the staff role hierarchy and is the single
// source of truth for which status a new submission starts in and who may
// manage whom. Handlers never decide status on their own.
package permission

import (
	"fmt"

	"github.com/prisonrp/ruleswiki/internal/models"
)

// Level is a staff permission level. Levels form a total order.
type Level int

const (
	Editor Level = iota
	Moderator
	Admin
	Owner
)

var levelNames = map[Level]string{
	Editor:    "editor",
	Moderator: "moderator",
	Admin:     "admin",
	Owner:     "owner",
}

var levelValues = map[string]Level{
	"editor":    Editor,
	"moderator": Moderator,
	"admin":     Admin,
	"owner":     Owner,
}

// String returns the level name as stored in the database.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel converts a stored level name to a Level.
func ParseLevel(name string) (Level, error) {
	if level, ok := levelValues[name]; ok {
		return level, nil
	}
	return Editor, fmt.Errorf("unknown permission level: %q", name)
}

// Valid reports whether the level is one of the four defined roles.
func (l Level) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

// CanReview reports whether the level may approve or reject submissions.
func (l Level) CanReview() bool {
	return l >= Moderator
}

// CanManage reports whether an actor may edit or deactivate a target user.
// Admins cannot manage other admins or owners; that is reserved for owners.
// Otherwise the normal hierarchy applies.
func CanManage(actor, target Level) bool {
	if actor == Admin && target >= Admin {
		return false
	}
	return actor >= target
}

// SubmitMode is the submission mode chosen by the author.
type SubmitMode string

const (
	ModeDraft  SubmitMode = "draft"
	ModeSubmit SubmitMode = "submit"
)

// StartingStatus returns the status a new or re-edited content item enters.
// Draft mode always yields a draft; on submit, editors queue for review while
// moderators and above publish directly.
func StartingStatus(actor Level, mode SubmitMode) string {
	if mode == ModeDraft {
		return models.StatusDraft
	}
	if actor == Editor {
		return models.StatusPendingApproval
	}
	return models.StatusApproved
}
