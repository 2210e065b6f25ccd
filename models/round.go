package models

import "time"

// Round status values, exposed verbatim to API consumers.
const (
	RoundStatusDraft  = "draft"
	RoundStatusActive = "active"
	RoundStatusClosed = "closed"
)

// EvalRound is one time-boxed cycle of peer evaluations against a single
// rubric. Status only ever moves draft -> active -> closed.
type EvalRound struct {
	EvalRoundID uint      `gorm:"primaryKey;column:eval_round_id" json:"eval_round_id"`
	Name        string    `gorm:"column:name;size:255" json:"name"`
	RubricID    uint      `gorm:"column:rubric_id" json:"rubric_id"`
	Status      string    `gorm:"column:status;size:50;default:draft" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`

	Rubric Rubric `gorm:"foreignKey:RubricID" json:"rubric,omitempty"`
}

func (EvalRound) TableName() string {
	return "eval_rounds"
}
