package models

import (
	"errors"
	"fmt"
)

type Rubric struct {
	RubricID uint   `gorm:"primaryKey;column:rubric_id" json:"rubric_id"`
	Name     string `gorm:"column:name;size:255" json:"name"`
	Active   bool   `gorm:"column:active;default:true" json:"active"`

	Items []RubricItem `gorm:"foreignKey:RubricID" json:"items,omitempty"`
}

func (Rubric) TableName() string {
	return "rubrics"
}

// RubricItem is one weighted criterion. Weight must be positive and
// MaxScore must be a positive integer; both are checked before any row is
// persisted.
type RubricItem struct {
	RubricItemID uint    `gorm:"primaryKey;column:rubric_item_id" json:"rubric_item_id"`
	RubricID     uint    `gorm:"column:rubric_id" json:"rubric_id"`
	Criterion    string  `gorm:"column:criterion;size:255" json:"criterion"`
	Description  string  `gorm:"column:description;type:text" json:"description"`
	Weight       float64 `gorm:"column:weight;default:1" json:"weight"`
	MaxScore     int     `gorm:"column:max_score;default:5" json:"max_score"`
}

func (RubricItem) TableName() string {
	return "rubric_items"
}

var ErrInvalidRubricItem = errors.New("invalid rubric item")

// Validate checks the creation invariants for a rubric item.
func (it RubricItem) Validate() error {
	if it.Criterion == "" {
		return fmt.Errorf("%w: criterion is required", ErrInvalidRubricItem)
	}
	if it.Weight <= 0 {
		return fmt.Errorf("%w: weight must be positive, got %v", ErrInvalidRubricItem, it.Weight)
	}
	if it.MaxScore <= 0 {
		return fmt.Errorf("%w: max_score must be positive, got %d", ErrInvalidRubricItem, it.MaxScore)
	}
	return nil
}
