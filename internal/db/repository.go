package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/prisonrp/ruleswiki/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn inside a database transaction.
func (r *Repository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// CategoryRepository provides category-related database operations
type CategoryRepository struct {
	*Repository
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(repo *Repository) *CategoryRepository {
	return &CategoryRepository{Repository: repo}
}

// GetByID retrieves a category by ID
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// GetByLetter retrieves a category by its letter code
func (r *CategoryRepository) GetByLetter(ctx context.Context, letter string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("letter_code = ?", letter).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// ListActive retrieves active categories ordered by order_index
func (r *CategoryRepository) ListActive(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("order_index ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// ListAll retrieves every category ordered by order_index
func (r *CategoryRepository) ListAll(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	if err := r.db.WithContext(ctx).
		Order("order_index ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// Update updates a category
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// Delete deletes a category
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Category{}, id).Error
}

// RuleCount returns the number of rules owned by a category
func (r *CategoryRepository) RuleCount(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Rule{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Reorder applies new order indexes in a single transaction so a partial
// failure never leaves the visible order inconsistent.
func (r *CategoryRepository) Reorder(ctx context.Context, order map[int64]int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, index := range order {
			result := tx.Model(&models.Category{}).
				Where("id = ?", id).
				Update("order_index", index)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}

// RuleRepository provides rule-related database operations
type RuleRepository struct {
	*Repository
}

// NewRuleRepository creates a new rule repository
func NewRuleRepository(repo *Repository) *RuleRepository {
	return &RuleRepository{Repository: repo}
}

// GetByID retrieves a rule by ID
func (r *RuleRepository) GetByID(ctx context.Context, id int64) (*models.Rule, error) {
	var rule models.Rule
	if err := r.db.WithContext(ctx).First(&rule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// ListApprovedMainRules retrieves approved main rules for a category with
// their approved sub-rules nested, ordered by rule number.
func (r *RuleRepository) ListApprovedMainRules(ctx context.Context, categoryID int64) ([]*models.Rule, error) {
	var rules []*models.Rule
	if err := r.db.WithContext(ctx).
		Where("category_id = ? AND parent_rule_id IS NULL AND status = ?", categoryID, models.StatusApproved).
		Preload("SubRules", "status = ?", models.StatusApproved).
		Order("rule_number ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// ListStaff retrieves rules for the staff dashboard, optionally filtered by
// status and category.
func (r *RuleRepository) ListStaff(ctx context.Context, status string, categoryID int64) ([]*models.Rule, error) {
	query := r.db.WithContext(ctx).Model(&models.Rule{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if categoryID != 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	var rules []*models.Rule
	if err := query.Order("category_id ASC, full_code ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// Create creates a new rule
func (r *RuleRepository) Create(ctx context.Context, rule *models.Rule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

// Update updates a rule
func (r *RuleRepository) Update(ctx context.Context, rule *models.Rule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

// Delete deletes a rule. Sibling codes are never renumbered.
func (r *RuleRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Rule{}, id).Error
}

// MaxMainNumber returns the highest rule_number among main rules in a category.
func (r *RuleRepository) MaxMainNumber(ctx context.Context, categoryID int64) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&models.Rule{}).
		Where("category_id = ? AND parent_rule_id IS NULL", categoryID).
		Select("COALESCE(MAX(rule_number), 0)").
		Scan(&max).Error
	return max, err
}

// MaxSubNumber returns the highest rule_number among sub-rules of a parent.
func (r *RuleRepository) MaxSubNumber(ctx context.Context, parentID int64) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&models.Rule{}).
		Where("parent_rule_id = ?", parentID).
		Select("COALESCE(MAX(rule_number), 0)").
		Scan(&max).Error
	return max, err
}

// CountSubRules returns the number of sub-rules under a parent rule.
func (r *RuleRepository) CountSubRules(ctx context.Context, parentID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Rule{}).
		Where("parent_rule_id = ?", parentID).
		Count(&count).Error
	return count, err
}

// CrossReferenceRepository provides cross-reference database operations
type CrossReferenceRepository struct {
	*Repository
}

// NewCrossReferenceRepository creates a new cross-reference repository
func NewCrossReferenceRepository(repo *Repository) *CrossReferenceRepository {
	return &CrossReferenceRepository{Repository: repo}
}

// GetByID retrieves a cross-reference edge by ID
func (r *CrossReferenceRepository) GetByID(ctx context.Context, id int64) (*models.CrossReference, error) {
	var ref models.CrossReference
	if err := r.db.WithContext(ctx).First(&ref, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ref, nil
}

// Exists reports whether an identical (source, target, type) edge is stored.
func (r *CrossReferenceRepository) Exists(ctx context.Context, sourceID, targetID int64, refType string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CrossReference{}).
		Where("source_rule_id = ? AND target_rule_id = ? AND reference_type = ?", sourceID, targetID, refType).
		Count(&count).Error
	return count > 0, err
}

// Create creates a new cross-reference edge
func (r *CrossReferenceRepository) Create(ctx context.Context, ref *models.CrossReference) error {
	return r.db.WithContext(ctx).Create(ref).Error
}

// Delete hard-deletes a cross-reference edge
func (r *CrossReferenceRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.CrossReference{}, id).Error
}

// ListOutgoing retrieves edges where the rule is the source.
func (r *CrossReferenceRepository) ListOutgoing(ctx context.Context, ruleID int64) ([]*models.CrossReference, error) {
	var refs []*models.CrossReference
	if err := r.db.WithContext(ctx).
		Where("source_rule_id = ?", ruleID).
		Order("created_at ASC").
		Find(&refs).Error; err != nil {
		return nil, err
	}
	return refs, nil
}

// ListIncomingBidirectional retrieves edges pointing at the rule that were
// stored as bidirectional. Unidirectional incoming edges are not surfaced.
func (r *CrossReferenceRepository) ListIncomingBidirectional(ctx context.Context, ruleID int64) ([]*models.CrossReference, error) {
	var refs []*models.CrossReference
	if err := r.db.WithContext(ctx).
		Where("target_rule_id = ? AND is_bidirectional = ?", ruleID, true).
		Order("created_at ASC").
		Find(&refs).Error; err != nil {
		return nil, err
	}
	return refs, nil
}

// DeleteForRule removes every edge touching a rule (called when the rule is deleted).
func (r *CrossReferenceRepository) DeleteForRule(ctx context.Context, ruleID int64) error {
	return r.db.WithContext(ctx).
		Where("source_rule_id = ? OR target_rule_id = ?", ruleID, ruleID).
		Delete(&models.CrossReference{}).Error
}
