package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Rule represents a main rule or a sub-rule. Main rules have a null ParentRuleID;
// sub-rules reference a main rule in the same category.
type Rule struct {
	ID           int64         `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	CategoryID   int64         `gorm:"not null;uniqueIndex:rules_full_code_ux;column:category_id" json:"category_id"`
	ParentRuleID sql.NullInt64 `gorm:"index;column:parent_rule_id" json:"parent_rule_id"`
	RuleNumber   int           `gorm:"not null;column:rule_number" json:"rule_number"`
	FullCode     string        `gorm:"type:varchar(16);not null;uniqueIndex:rules_full_code_ux;column:full_code" json:"full_code"`
	Title        string        `gorm:"type:varchar(200);not null;column:title" json:"title"`
	Content      string        `gorm:"type:text;not null;column:content" json:"content"`
	Images       RuleImages    `gorm:"type:text;column:images" json:"images"`
	ReviewState
	Timestamps

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID;references:ID" json:"-"`
	SubRules []Rule    `gorm:"foreignKey:ParentRuleID;references:ID" json:"sub_rules,omitempty"`
}

// TableName specifies the table name for Rule
func (Rule) TableName() string {
	return "rules"
}

// IsMainRule reports whether the rule is a top-level rule.
func (r *Rule) IsMainRule() bool {
	return !r.ParentRuleID.Valid
}

// RuleImage is an uploaded image attached to a rule.
type RuleImage struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	OriginalName string `json:"originalName"`
}

// RuleImages is stored as a JSON array in a text column on both backends.
type RuleImages []RuleImage

// Value implements driver.Valuer
func (im RuleImages) Value() (driver.Value, error) {
	if im == nil {
		return "[]", nil
	}
	b, err := json.Marshal(im)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (im *RuleImages) Scan(value interface{}) error {
	if value == nil {
		*im = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for RuleImages: %T", value)
	}
	if len(data) == 0 {
		*im = nil
		return nil
	}
	return json.Unmarshal(data, im)
}

// Cross-reference type constants
const (
	ReferenceRelated      = "related"
	ReferenceClarifies    = "clarifies"
	ReferenceSupersedes   = "supersedes"
	ReferenceSupersededBy = "superseded_by"
	ReferenceConflicts    = "conflicts_with"
)

// ValidReferenceType reports whether t is a known cross-reference type.
func ValidReferenceType(t string) bool {
	switch t {
	case ReferenceRelated, ReferenceClarifies, ReferenceSupersedes,
		ReferenceSupersededBy, ReferenceConflicts:
		return true
	}
	return false
}

// CrossReference is a directed, typed edge between two rules. Bidirectional edges
// are stored once and surfaced on both endpoints.
type CrossReference struct {
	ID               int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	SourceRuleID     int64     `gorm:"not null;index;uniqueIndex:cross_refs_edge_ux;column:source_rule_id" json:"source_rule_id"`
	TargetRuleID     int64     `gorm:"not null;index;uniqueIndex:cross_refs_edge_ux;column:target_rule_id" json:"target_rule_id"`
	ReferenceType    string    `gorm:"type:varchar(32);not null;uniqueIndex:cross_refs_edge_ux;column:reference_type" json:"reference_type"`
	ReferenceContext string    `gorm:"type:text;not null;default:'';column:reference_context" json:"reference_context"`
	IsBidirectional  bool      `gorm:"not null;default:false;column:is_bidirectional" json:"is_bidirectional"`
	CreatedAt        time.Time `gorm:"not null;autoCreateTime;column:created_at" json:"created_at"`

	// Relationships
	SourceRule *Rule `gorm:"foreignKey:SourceRuleID;references:ID" json:"-"`
	TargetRule *Rule `gorm:"foreignKey:TargetRuleID;references:ID" json:"-"`
}

// TableName specifies the table name for CrossReference
func (CrossReference) TableName() string {
	return "rule_cross_references"
}
