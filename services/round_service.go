package services

import (
	"time"

	"gorm.io/gorm"

	"peer-eval-api/models"
)

// StartRound creates a round against the rubric, issues a token for every
// in-team pair of the current roster and activates the round — all in one
// transaction, so a partially initialized round is never observable and
// every token exists before the first submission can arrive. Notification
// dispatch is the caller's next step and deliberately not part of the
// transaction.
func StartRound(db *gorm.DB, name string, rubricID uint) (*models.EvalRound, int, error) {
	var rubric models.Rubric
	if err := db.First(&rubric, rubricID).Error; err != nil {
		return nil, 0, err
	}

	var students []models.Student
	if err := db.Find(&students).Error; err != nil {
		return nil, 0, err
	}
	pairs := GeneratePairs(students)

	round := &models.EvalRound{
		Name:      name,
		RubricID:  rubric.RubricID,
		Status:    models.RoundStatusDraft,
		CreatedAt: time.Now().UTC(),
	}

	created := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(round).Error; err != nil {
			return err
		}
		n, err := CreateTokensForRound(tx, round, pairs)
		if err != nil {
			return err
		}
		created = n
		return tx.Model(round).Update("status", models.RoundStatusActive).Error
	})
	if err != nil {
		return nil, 0, err
	}

	round.Status = models.RoundStatusActive
	return round, created, nil
}

// CloseRound permanently stops submissions for the round. The transition is
// one-directional and deletes nothing.
func CloseRound(db *gorm.DB, roundID uint) (*models.EvalRound, error) {
	var round models.EvalRound
	if err := db.First(&round, roundID).Error; err != nil {
		return nil, err
	}
	if round.Status == models.RoundStatusClosed {
		return &round, nil
	}
	if err := db.Model(&round).Update("status", models.RoundStatusClosed).Error; err != nil {
		return nil, err
	}
	round.Status = models.RoundStatusClosed
	return &round, nil
}

// DeleteRound removes the round and everything hanging off it — responses,
// queued outbox messages, tokens, then the round itself — in one atomic
// cascade. No orphan response or token survives a partial failure.
func DeleteRound(db *gorm.DB, roundID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var round models.EvalRound
		if err := tx.First(&round, roundID).Error; err != nil {
			return err
		}

		tokenIDs := tx.Model(&models.EvaluationToken{}).
			Select("token_id").
			Where("eval_round_id = ?", roundID)
		if err := tx.Where("token_id IN (?)", tokenIDs).
			Delete(&models.EvaluationResponse{}).Error; err != nil {
			return err
		}
		if err := tx.Where("eval_round_id = ?", roundID).
			Delete(&models.DevOutbox{}).Error; err != nil {
			return err
		}
		if err := tx.Where("eval_round_id = ?", roundID).
			Delete(&models.EvaluationToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&round).Error
	})
}
