package models

// Category represents a rule category (e.g. "A — General Conduct")
type Category struct {
	ID          int64  `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	LetterCode  string `gorm:"type:varchar(3);not null;uniqueIndex:categories_letter_ux;column:letter_code" json:"letter_code"`
	Name        string `gorm:"type:varchar(100);not null;column:name" json:"name"`
	Description string `gorm:"type:text;not null;default:'';column:description" json:"description"`
	Color       string `gorm:"type:varchar(16);not null;default:'#4f8cff';column:color" json:"color"`
	IsActive    bool   `gorm:"not null;default:true;column:is_active" json:"is_active"`
	OrderIndex  int    `gorm:"not null;default:0;column:order_index" json:"order_index"`
	Timestamps

	// Populated on staff listings, not a column
	RuleCount int64 `gorm:"-" json:"rule_count"`
}

// TableName specifies the table name for Category
func (Category) TableName() string {
	return "categories"
}
