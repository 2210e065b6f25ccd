package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"peer-eval-api/models"
)

var (
	// ErrRoundClosed means the round is not accepting submissions. The
	// caller may still render a read-only view of the rubric and token.
	ErrRoundClosed = errors.New("round is not accepting submissions")

	// ErrAlreadySubmitted means the token already has its one response.
	// The existing response is never overwritten.
	ErrAlreadySubmitted = errors.New("evaluation already submitted")
)

// FindTokenByString loads a token with its round, rubric and participants.
func FindTokenByString(db *gorm.DB, tokenString string) (*models.EvaluationToken, error) {
	var token models.EvaluationToken
	err := db.Preload("EvalRound.Rubric.Items").
		Preload("Evaluator").
		Preload("Evaluatee").
		Preload("Response").
		Where("token = ?", tokenString).
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// ClampScores validates raw scores against the rubric: every rubric item
// gets an entry, values are clamped to [0, max_score], unknown item ids are
// dropped.
func ClampScores(raw map[uint]int, items []models.RubricItem) models.ScoreMap {
	scores := make(models.ScoreMap, len(items))
	for _, it := range items {
		val := raw[it.RubricItemID]
		if val < 0 {
			val = 0
		}
		if val > it.MaxScore {
			val = it.MaxScore
		}
		scores[it.RubricItemID] = val
	}
	return scores
}

// AcceptResponse runs the submission state machine for one token: the round
// must be active and the token unsubmitted. On acceptance the response row
// and the token's submitted_at are written in one transaction. Concurrent
// submissions are resolved by the unique constraint on response token_id;
// the loser observes ErrAlreadySubmitted.
func AcceptResponse(db *gorm.DB, tokenString string, rawScores map[uint]int, comments string) (*models.EvaluationResponse, error) {
	token, err := FindTokenByString(db, tokenString)
	if err != nil {
		return nil, err
	}

	if token.EvalRound.Status != models.RoundStatusActive {
		return nil, ErrRoundClosed
	}
	if token.SubmittedAt != nil || token.Response != nil {
		return nil, ErrAlreadySubmitted
	}

	now := time.Now().UTC()
	response := &models.EvaluationResponse{
		TokenID:     token.TokenID,
		SubmittedAt: now,
		Scores:      ClampScores(rawScores, token.EvalRound.Rubric.Items),
		Comments:    strings.TrimSpace(comments),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(response).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadySubmitted
			}
			// Not every driver translates constraint errors; recheck before
			// reporting a system failure.
			var count int64
			if countErr := tx.Model(&models.EvaluationResponse{}).
				Where("token_id = ?", token.TokenID).
				Count(&count).Error; countErr == nil && count > 0 {
				return ErrAlreadySubmitted
			}
			return err
		}
		return tx.Model(&models.EvaluationToken{}).
			Where("token_id = ?", token.TokenID).
			Update("submitted_at", now).Error
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}
