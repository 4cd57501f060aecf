// Package staff manages staff dashboard accounts and enforces the
// user-management rules: the admin carve-out and the self-deactivation ban.
package staff

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/prisonrp/ruleswiki/internal/audit"
	"github.com/prisonrp/ruleswiki/internal/db"
	"github.com/prisonrp/ruleswiki/internal/models"
	"github.com/prisonrp/ruleswiki/internal/permission"
	"github.com/prisonrp/ruleswiki/internal/validation"
	"github.com/prisonrp/ruleswiki/pkg/logging"
)

var (
	// ErrNotFound is returned for an unknown staff user id
	ErrNotFound = errors.New("staff user not found")
	// ErrCannotManage is returned when the actor may not manage the target
	ErrCannotManage = errors.New("insufficient permission to manage this user")
	// ErrSelfDeactivation is returned when a user tries to deactivate themselves
	ErrSelfDeactivation = errors.New("you cannot deactivate your own account")
	// ErrInvalidSteamID is returned for a malformed Steam ID
	ErrInvalidSteamID = errors.New("steam_id must be exactly 17 digits")
	// ErrIdentityRequired is returned when neither steam_id nor discord_id is given
	ErrIdentityRequired = errors.New("a steam_id or discord_id is required")
	// ErrIdentityTaken is returned when the steam or discord id is already registered
	ErrIdentityTaken = errors.New("a staff user with this identity already exists")
)

var steamIDPattern = regexp.MustCompile(`^\d{17}$`)

// Service implements staff user management
type Service struct {
	repo     *db.StaffUserRepository
	recorder *audit.Recorder
	logger   *zap.Logger
}

// NewService creates a new staff service
func NewService(repo *db.StaffUserRepository, recorder *audit.Recorder) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		logger:   logging.WithComponent("staff"),
	}
}

// Input carries the writable staff user fields.
type Input struct {
	SteamID         string `json:"steam_id"`
	DiscordID       string `json:"discord_id"`
	Username        string `json:"username"`
	PermissionLevel string `json:"permission_level"`
	IsActive        *bool  `json:"is_active"`
}

// List returns every staff user.
func (s *Service) List(ctx context.Context) ([]*models.StaffUser, error) {
	return s.repo.List(ctx)
}

// Get returns a staff user by id.
func (s *Service) Get(ctx context.Context, id int64) (*models.StaffUser, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// Create adds a staff user. The actor must be able to manage the new user's
// permission level.
func (s *Service) Create(ctx context.Context, in Input, actor *models.StaffUser) (*models.StaffUser, error) {
	if strings.TrimSpace(in.Username) == "" {
		return nil, validation.Errorf("username is required")
	}

	level, err := permission.ParseLevel(in.PermissionLevel)
	if err != nil {
		return nil, validation.Errorf("unknown permission level: %q", in.PermissionLevel)
	}
	actorLevel, err := permission.ParseLevel(actor.PermissionLevel)
	if err != nil {
		return nil, err
	}
	if !permission.CanManage(actorLevel, level) {
		return nil, ErrCannotManage
	}

	user := &models.StaffUser{
		Username:        strings.TrimSpace(in.Username),
		PermissionLevel: level.String(),
		IsActive:        true,
	}
	if err := s.applyIdentity(ctx, user, in, 0); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actor.ID, models.ActionCreate, "staff_user", user.ID,
		fmt.Sprintf("Created staff user %s (%s)", user.Username, user.PermissionLevel))
	return user, nil
}

// Update edits a staff user, subject to CanManage on both the target's
// current and requested levels. Deactivating yourself is always refused.
func (s *Service) Update(ctx context.Context, id int64, in Input, actor *models.StaffUser) (*models.StaffUser, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	actorLevel, err := permission.ParseLevel(actor.PermissionLevel)
	if err != nil {
		return nil, err
	}
	targetLevel, err := permission.ParseLevel(user.PermissionLevel)
	if err != nil {
		return nil, err
	}
	if !permission.CanManage(actorLevel, targetLevel) {
		return nil, ErrCannotManage
	}

	if in.PermissionLevel != "" {
		newLevel, err := permission.ParseLevel(in.PermissionLevel)
		if err != nil {
			return nil, validation.Errorf("unknown permission level: %q", in.PermissionLevel)
		}
		if !permission.CanManage(actorLevel, newLevel) {
			return nil, ErrCannotManage
		}
		user.PermissionLevel = newLevel.String()
	}
	if strings.TrimSpace(in.Username) != "" {
		user.Username = strings.TrimSpace(in.Username)
	}
	if in.SteamID != "" || in.DiscordID != "" {
		if err := s.applyIdentity(ctx, user, in, user.ID); err != nil {
			return nil, err
		}
	}
	if in.IsActive != nil {
		if !*in.IsActive && user.ID == actor.ID {
			return nil, ErrSelfDeactivation
		}
		user.IsActive = *in.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actor.ID, models.ActionUpdate, "staff_user", user.ID,
		fmt.Sprintf("Updated staff user %s", user.Username))
	return user, nil
}

// Deactivate disables a staff account. Self-deactivation is refused
// regardless of role.
func (s *Service) Deactivate(ctx context.Context, id int64, actor *models.StaffUser) error {
	if id == actor.ID {
		return ErrSelfDeactivation
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	actorLevel, err := permission.ParseLevel(actor.PermissionLevel)
	if err != nil {
		return err
	}
	targetLevel, err := permission.ParseLevel(user.PermissionLevel)
	if err != nil {
		return err
	}
	if !permission.CanManage(actorLevel, targetLevel) {
		return ErrCannotManage
	}

	user.IsActive = false
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	s.recorder.Record(ctx, actor.ID, models.ActionDeactivate, "staff_user", user.ID,
		fmt.Sprintf("Deactivated staff user %s", user.Username))
	return nil
}

func (s *Service) applyIdentity(ctx context.Context, user *models.StaffUser, in Input, selfID int64) error {
	if in.SteamID == "" && in.DiscordID == "" {
		return ErrIdentityRequired
	}
	if in.SteamID != "" {
		if !steamIDPattern.MatchString(in.SteamID) {
			return ErrInvalidSteamID
		}
		existing, err := s.repo.GetBySteamID(ctx, in.SteamID)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != selfID {
			return ErrIdentityTaken
		}
		user.SteamID = nullString(in.SteamID)
	}
	if in.DiscordID != "" {
		existing, err := s.repo.GetByDiscordID(ctx, in.DiscordID)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != selfID {
			return ErrIdentityTaken
		}
		user.DiscordID = nullString(in.DiscordID)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}
