package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EvaluationToken grants one evaluator the right to submit exactly one
// response about one evaluatee within a round. The (round, evaluator,
// evaluatee) triple is unique and the pair never self-references.
type EvaluationToken struct {
	TokenID     uint       `gorm:"primaryKey;column:token_id" json:"token_id"`
	Token       string     `gorm:"column:token;uniqueIndex;size:64" json:"token"`
	EvalRoundID uint       `gorm:"column:eval_round_id;uniqueIndex:uq_round_evalpair" json:"eval_round_id"`
	EvaluatorID uint       `gorm:"column:evaluator_id;uniqueIndex:uq_round_evalpair" json:"evaluator_id"`
	EvaluateeID uint       `gorm:"column:evaluatee_id;uniqueIndex:uq_round_evalpair" json:"evaluatee_id"`
	SentAt      *time.Time `gorm:"column:sent_at" json:"sent_at,omitempty"`
	SubmittedAt *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`

	EvalRound EvalRound           `gorm:"foreignKey:EvalRoundID" json:"eval_round,omitempty"`
	Evaluator Student             `gorm:"foreignKey:EvaluatorID" json:"evaluator,omitempty"`
	Evaluatee Student             `gorm:"foreignKey:EvaluateeID" json:"evaluatee,omitempty"`
	Response  *EvaluationResponse `gorm:"foreignKey:TokenID" json:"response,omitempty"`
}

func (EvaluationToken) TableName() string {
	return "evaluation_tokens"
}

// NewTokenString returns an opaque URL-safe identifier with 122 bits of
// randomness (UUIDv4 hex without hyphens).
func NewTokenString() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
