// Package categories manages rule categories: CRUD, explicit ordering, and
// the refuse-to-delete-while-owning-rules policy.
package categories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/prisonrp/ruleswiki/internal/audit"
	"github.com/prisonrp/ruleswiki/internal/db"
	"github.com/prisonrp/ruleswiki/internal/models"
	"github.com/prisonrp/ruleswiki/internal/validation"
	"github.com/prisonrp/ruleswiki/pkg/logging"
)

var (
	// ErrNotFound is returned for an unknown category id
	ErrNotFound = errors.New("category not found")
	// ErrInUse is returned when deleting a category that still owns rules
	ErrInUse = errors.New("category still owns rules and cannot be deleted")
	// ErrLetterTaken is returned when the letter code is already used
	ErrLetterTaken = errors.New("letter code is already in use")
	// ErrInvalidLetter is returned for a malformed letter code
	ErrInvalidLetter = errors.New("letter code must be 1-3 letters")
)

var letterCodePattern = regexp.MustCompile(`^[A-Z]{1,3}$`)

// Service implements category operations
type Service struct {
	repo     *db.CategoryRepository
	recorder *audit.Recorder
	logger   *zap.Logger
}

// NewService creates a new category service
func NewService(repo *db.CategoryRepository, recorder *audit.Recorder) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		logger:   logging.WithComponent("categories"),
	}
}

// Input carries the writable category fields.
type Input struct {
	LetterCode  string `json:"letter_code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	IsActive    *bool  `json:"is_active"`
}

// ListPublic returns active categories in display order.
func (s *Service) ListPublic(ctx context.Context) ([]*models.Category, error) {
	return s.repo.ListActive(ctx)
}

// ListStaff returns every category with its rule count.
func (s *Service) ListStaff(ctx context.Context) ([]*models.Category, error) {
	cats, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		count, err := s.repo.RuleCount(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		c.RuleCount = count
	}
	return cats, nil
}

// Get returns a category by id.
func (s *Service) Get(ctx context.Context, id int64) (*models.Category, error) {
	cat, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, ErrNotFound
	}
	return cat, nil
}

// GetByLetter returns a category by its letter code.
func (s *Service) GetByLetter(ctx context.Context, letter string) (*models.Category, error) {
	cat, err := s.repo.GetByLetter(ctx, strings.ToUpper(letter))
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, ErrNotFound
	}
	return cat, nil
}

// Create creates a new category at the end of the display order.
func (s *Service) Create(ctx context.Context, in Input, actorID int64) (*models.Category, error) {
	letter := strings.ToUpper(strings.TrimSpace(in.LetterCode))
	if !letterCodePattern.MatchString(letter) {
		return nil, ErrInvalidLetter
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, validation.Errorf("category name is required")
	}

	existing, err := s.repo.GetByLetter(ctx, letter)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrLetterTaken
	}

	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	cat := &models.Category{
		LetterCode:  letter,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Color:       in.Color,
		IsActive:    true,
		OrderIndex:  len(all),
	}
	if cat.Color == "" {
		cat.Color = "#4f8cff"
	}
	if in.IsActive != nil {
		cat.IsActive = *in.IsActive
	}

	if err := s.repo.Create(ctx, cat); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actorID, models.ActionCreate, "category", cat.ID,
		fmt.Sprintf("Created category %s (%s)", cat.LetterCode, cat.Name))
	return cat, nil
}

// Update edits an existing category. The letter code may change as long as it
// stays unique; rule full codes keep their original letters (stable codes).
func (s *Service) Update(ctx context.Context, id int64, in Input, actorID int64) (*models.Category, error) {
	cat, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.LetterCode != "" {
		letter := strings.ToUpper(strings.TrimSpace(in.LetterCode))
		if !letterCodePattern.MatchString(letter) {
			return nil, ErrInvalidLetter
		}
		if letter != cat.LetterCode {
			existing, err := s.repo.GetByLetter(ctx, letter)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, ErrLetterTaken
			}
			cat.LetterCode = letter
		}
	}
	if in.Name != "" {
		cat.Name = strings.TrimSpace(in.Name)
	}
	if in.Description != "" {
		cat.Description = in.Description
	}
	if in.Color != "" {
		cat.Color = in.Color
	}
	if in.IsActive != nil {
		cat.IsActive = *in.IsActive
	}

	if err := s.repo.Update(ctx, cat); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actorID, models.ActionUpdate, "category", cat.ID,
		fmt.Sprintf("Updated category %s", cat.LetterCode))
	return cat, nil
}

// Delete removes a category. Deletion is refused while the category owns any
// rules, rather than cascading and orphaning them.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	cat, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.RuleCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d rules", ErrInUse, count)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.recorder.Record(ctx, actorID, models.ActionDelete, "category", id,
		fmt.Sprintf("Deleted category %s", cat.LetterCode))
	return nil
}

// OrderEntry is one element of a reorder request.
type OrderEntry struct {
	ID         int64 `json:"id"`
	OrderIndex int   `json:"order_index"`
}

// Reorder applies new order indexes atomically.
func (s *Service) Reorder(ctx context.Context, entries []OrderEntry, actorID int64) error {
	if len(entries) == 0 {
		return validation.Errorf("category order list is empty")
	}

	order := make(map[int64]int, len(entries))
	for _, e := range entries {
		order[e.ID] = e.OrderIndex
	}

	if err := s.repo.Reorder(ctx, order); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.recorder.Record(ctx, actorID, models.ActionReorder, "category", 0,
		fmt.Sprintf("Reordered %d categories", len(entries)))
	return nil
}
