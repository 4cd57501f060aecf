// Package rules implements the rule graph: hierarchical numbering within
// categories, the moderation workflow for rule content, and typed
// cross-references between rules.
package rules

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
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
	// ErrNotFound is returned for an unknown rule id
	ErrNotFound = errors.New("rule not found")
	// ErrCategoryNotFound is returned when the target category does not exist
	ErrCategoryNotFound = errors.New("category not found")
	// ErrParentNotMainRule is returned when nesting under a sub-rule
	ErrParentNotMainRule = errors.New("parent must be a main rule")
	// ErrParentCategoryMismatch is returned when the parent lives in another category
	ErrParentCategoryMismatch = errors.New("parent rule belongs to a different category")
	// ErrHasSubRules is returned when deleting a main rule that still has sub-rules
	ErrHasSubRules = errors.New("rule still has sub-rules and cannot be deleted")
)

// Service implements rule operations
type Service struct {
	rules    *db.RuleRepository
	refs     *db.CrossReferenceRepository
	cats     *db.CategoryRepository
	recorder *audit.Recorder
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewService creates a new rule service
func NewService(rules *db.RuleRepository, refs *db.CrossReferenceRepository, cats *db.CategoryRepository, recorder *audit.Recorder, notifier notify.Notifier) *Service {
	return &Service{
		rules:    rules,
		refs:     refs,
		cats:     cats,
		recorder: recorder,
		notifier: notifier,
		logger:   logging.WithComponent("rules"),
	}
}

// Input carries the writable rule fields. Status is never accepted from the
// client; it is computed from the actor's permission level and Mode.
type Input struct {
	Title        string                `json:"title"`
	Content      string                `json:"content"`
	CategoryID   int64                 `json:"categoryId"`
	ParentRuleID *int64                `json:"parentRuleId"`
	Images       []models.RuleImage    `json:"images"`
	Mode         permission.SubmitMode `json:"mode"`
}

// FullCode derives the human-readable rule code from its parts.
// Main rule: "{letter}.{number}". Sub-rule: "{letter}.{parentNumber}.{subNumber}".
func FullCode(letter string, parentNumber, number int) string {
	if parentNumber > 0 {
		return fmt.Sprintf("%s.%d.%d", letter, parentNumber, number)
	}
	return fmt.Sprintf("%s.%d", letter, number)
}

// Create creates a rule, assigning the next number among its siblings.
// Numbers are never reused from deleted siblings so shared rule codes stay
// stable over time.
func (s *Service) Create(ctx context.Context, in Input, actor *models.StaffUser) (*models.Rule, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, validation.Errorf("title and content are required")
	}

	level, err := permission.ParseLevel(actor.PermissionLevel)
	if err != nil {
		return nil, err
	}

	category, err := s.cats.GetByID(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	rule := &models.Rule{
		CategoryID: in.CategoryID,
		Title:      strings.TrimSpace(in.Title),
		Content:    in.Content,
		Images:     withImageIDs(in.Images),
	}

	if in.ParentRuleID != nil {
		parent, err := s.rules.GetByID(ctx, *in.ParentRuleID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrNotFound
		}
		if !parent.IsMainRule() {
			return nil, ErrParentNotMainRule
		}
		if parent.CategoryID != in.CategoryID {
			return nil, ErrParentCategoryMismatch
		}

		max, err := s.rules.MaxSubNumber(ctx, parent.ID)
		if err != nil {
			return nil, err
		}
		rule.ParentRuleID = sql.NullInt64{Int64: parent.ID, Valid: true}
		rule.RuleNumber = max + 1
		rule.FullCode = FullCode(category.LetterCode, parent.RuleNumber, rule.RuleNumber)
	} else {
		max, err := s.rules.MaxMainNumber(ctx, in.CategoryID)
		if err != nil {
			return nil, err
		}
		rule.RuleNumber = max + 1
		rule.FullCode = FullCode(category.LetterCode, 0, rule.RuleNumber)
	}

	workflow.Submit(&rule.ReviewState, level, actor.ID, in.Mode)

	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, err
	}

	s.recorder.RecordChange(ctx, actor.ID, models.ActionCreate, "rule", rule.ID,
		"", rule.Content, fmt.Sprintf("Created rule %s (%s)", rule.FullCode, rule.Status))

	if rule.Status == models.StatusApproved {
		s.notifier.RuleApproved(ctx, rule.FullCode, rule.Title)
	}

	return rule, nil
}

// Update edits a rule and restarts its submission cycle. The code, number,
// category and parent are immutable after creation.
func (s *Service) Update(ctx context.Context, id int64, in Input, actor *models.StaffUser) (*models.Rule, error) {
	rule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	level, err := permission.ParseLevel(actor.PermissionLevel)
	if err != nil {
		return nil, err
	}

	oldContent := rule.Content
	if strings.TrimSpace(in.Title) != "" {
		rule.Title = strings.TrimSpace(in.Title)
	}
	if strings.TrimSpace(in.Content) != "" {
		rule.Content = in.Content
	}
	if in.Images != nil {
		rule.Images = withImageIDs(in.Images)
	}

	workflow.Submit(&rule.ReviewState, level, actor.ID, in.Mode)

	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, err
	}

	s.recorder.RecordChange(ctx, actor.ID, models.ActionUpdate, "rule", rule.ID,
		oldContent, rule.Content, fmt.Sprintf("Updated rule %s (%s)", rule.FullCode, rule.Status))
	return rule, nil
}

// Delete removes a rule and every cross-reference touching it. Main rules with
// remaining sub-rules are refused; sibling numbers are never reclaimed.
func (s *Service) Delete(ctx context.Context, id int64, actor *models.StaffUser) error {
	rule, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if rule.IsMainRule() {
		count, err := s.rules.CountSubRules(ctx, rule.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: %d sub-rules", ErrHasSubRules, count)
		}
	}

	if err := s.refs.DeleteForRule(ctx, id); err != nil {
		return err
	}
	if err := s.rules.Delete(ctx, id); err != nil {
		return err
	}

	s.recorder.RecordChange(ctx, actor.ID, models.ActionDelete, "rule", id,
		rule.Content, "", fmt.Sprintf("Deleted rule %s", rule.FullCode))
	return nil
}

// Get returns a rule by id.
func (s *Service) Get(ctx context.Context, id int64) (*models.Rule, error) {
	rule, err := s.rules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ErrNotFound
	}
	return rule, nil
}

// ListPublic returns approved main rules (with approved sub-rules nested) for
// a category letter.
func (s *Service) ListPublic(ctx context.Context, letter string) ([]*models.Rule, error) {
	category, err := s.cats.GetByLetter(ctx, strings.ToUpper(letter))
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return s.rules.ListApprovedMainRules(ctx, category.ID)
}

// ListStaff returns rules for the staff dashboard with optional filters.
func (s *Service) ListStaff(ctx context.Context, status string, categoryID int64) ([]*models.Rule, error) {
	if status != "" && !models.ValidStatus(status) {
		return nil, validation.Errorf("unknown status filter: %q", status)
	}
	return s.rules.ListStaff(ctx, status, categoryID)
}

// Approve transitions a rule to approved and fires the Discord notification.
func (s *Service) Approve(ctx context.Context, id int64, reviewer *models.StaffUser, notes string) (*models.Rule, error) {
	rule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	level, err := permission.ParseLevel(reviewer.PermissionLevel)
	if err != nil {
		return nil, err
	}

	if err := workflow.Approve(&rule.ReviewState, level, reviewer.ID, notes); err != nil {
		return nil, err
	}
	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, reviewer.ID, models.ActionApprove, "rule", rule.ID,
		fmt.Sprintf("Approved rule %s", rule.FullCode))
	s.notifier.RuleApproved(ctx, rule.FullCode, rule.Title)
	return rule, nil
}

// Reject transitions a rule to rejected; notes are required.
func (s *Service) Reject(ctx context.Context, id int64, reviewer *models.StaffUser, notes string) (*models.Rule, error) {
	rule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	level, err := permission.ParseLevel(reviewer.PermissionLevel)
	if err != nil {
		return nil, err
	}

	if err := workflow.Reject(&rule.ReviewState, level, reviewer.ID, notes); err != nil {
		return nil, err
	}
	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, reviewer.ID, models.ActionReject, "rule", rule.ID,
		fmt.Sprintf("Rejected rule %s: %s", rule.FullCode, notes))
	return rule, nil
}

// withImageIDs assigns ids to attachments uploaded without one.
func withImageIDs(images []models.RuleImage) models.RuleImages {
	out := make(models.RuleImages, len(images))
	for i, img := range images {
		if img.ID == "" {
			img.ID = uuid.NewString()
		}
		out[i] = img
	}
	return out
}
