package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"peer-eval-api/config"
	"peer-eval-api/models"
	"peer-eval-api/services"
)

// evaluationView is the public (unauthenticated) representation of one
// evaluation form: who rates whom, against which rubric, plus the flags the
// frontend needs to render a read-only state.
type evaluationView struct {
	Token     string              `json:"token"`
	RoundName string              `json:"round_name"`
	Status    string              `json:"status"`
	Evaluator string              `json:"evaluator"`
	Evaluatee string              `json:"evaluatee"`
	Rubric    []models.RubricItem `json:"rubric"`
	Closed    bool                `json:"closed"`
	Submitted bool                `json:"submitted"`
}

// GetEvaluation shows the evaluation form for a token. Closed rounds and
// already-submitted tokens still render, read-only.
func GetEvaluation(c *gin.Context) {
	token, err := services.FindTokenByString(config.DB, c.Param("token"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Evaluation link not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load evaluation"})
		return
	}

	c.JSON(http.StatusOK, evaluationView{
		Token:     token.Token,
		RoundName: token.EvalRound.Name,
		Status:    token.EvalRound.Status,
		Evaluator: token.Evaluator.FullName(),
		Evaluatee: token.Evaluatee.FullName(),
		Rubric:    token.EvalRound.Rubric.Items,
		Closed:    token.EvalRound.Status != models.RoundStatusActive,
		Submitted: token.SubmittedAt != nil,
	})
}

// SubmitEvaluation accepts one response for a token. Scores are keyed by
// rubric item id and clamped server-side to [0, max_score].
func SubmitEvaluation(c *gin.Context) {
	var req struct {
		Scores   map[uint]int `json:"scores" binding:"required"`
		Comments string       `json:"comments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := services.AcceptResponse(config.DB, c.Param("token"), req.Scores, req.Comments)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Evaluation link not found"})
		case errors.Is(err, services.ErrRoundClosed):
			c.JSON(http.StatusForbidden, gin.H{"error": "This round is closed and no longer accepts submissions"})
		case errors.Is(err, services.ErrAlreadySubmitted):
			c.JSON(http.StatusConflict, gin.H{"error": "This evaluation was already submitted"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save evaluation"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Evaluation submitted. Thank you.",
		"submitted_at": response.SubmittedAt,
	})
}
