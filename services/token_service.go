package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"peer-eval-api/models"
)

// ErrDuplicatePair is returned when a (round, evaluator, evaluatee) triple
// already has a token. With freshly created rounds this should not happen,
// but it is checked so a retried batch can never double-issue tokens.
var ErrDuplicatePair = errors.New("evaluation pair already exists for this round")

// CreateTokensForRound records one evaluation token per pair inside the
// caller's transaction. The batch is all-or-nothing: the first failure
// aborts the transaction and no token of the round survives.
func CreateTokensForRound(tx *gorm.DB, round *models.EvalRound, pairs []Pair) (int, error) {
	created := 0
	for _, p := range pairs {
		if p.Evaluator.StudentID == p.Evaluatee.StudentID {
			return 0, fmt.Errorf("refusing self-evaluation pair for student %d", p.Evaluator.StudentID)
		}

		var count int64
		if err := tx.Model(&models.EvaluationToken{}).
			Where("eval_round_id = ? AND evaluator_id = ? AND evaluatee_id = ?",
				round.EvalRoundID, p.Evaluator.StudentID, p.Evaluatee.StudentID).
			Count(&count).Error; err != nil {
			return 0, err
		}
		if count > 0 {
			return 0, ErrDuplicatePair
		}

		token := models.EvaluationToken{
			Token:       models.NewTokenString(),
			EvalRoundID: round.EvalRoundID,
			EvaluatorID: p.Evaluator.StudentID,
			EvaluateeID: p.Evaluatee.StudentID,
		}
		if err := tx.Create(&token).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return 0, ErrDuplicatePair
			}
			return 0, err
		}
		created++
	}
	return created, nil
}

// MarkNotified stamps sent_at on the given tokens. Notification dispatch is
// independent of token creation, so a failed send for one evaluator never
// rolls back tokens already issued.
func MarkNotified(db *gorm.DB, tokenIDs []uint, when time.Time) error {
	if len(tokenIDs) == 0 {
		return nil
	}
	return db.Model(&models.EvaluationToken{}).
		Where("token_id IN ?", tokenIDs).
		Update("sent_at", when).Error
}
