package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"peer-eval-api/config"
	"peer-eval-api/models"
	"peer-eval-api/services"
)

// GetRounds lists rounds newest first.
func GetRounds(c *gin.Context) {
	var rounds []models.EvalRound
	if err := config.DB.Preload("Rubric").Order("created_at DESC").Find(&rounds).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load rounds"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rounds": rounds})
}

// StartRound creates and activates a new evaluation round: tokens for every
// in-team pair are issued atomically, then invitations go out (failures
// land in the dev outbox, never rolling back the round).
func StartRound(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		RubricID uint   `json:"rubric_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Round " + time.Now().Format("2006-01-02 15:04")
	}

	round, pairs, err := services.StartRound(config.DB, name, req.RubricID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Rubric not found"})
			return
		}
		if errors.Is(err, services.ErrDuplicatePair) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start round"})
		return
	}

	emails, err := services.SendRoundInvitations(config.DB, round)
	if err != nil {
		// Tokens are already committed; notification can be retried later.
		c.JSON(http.StatusOK, gin.H{
			"round":   round,
			"pairs":   pairs,
			"warning": "Round started but notifications failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"round":   round,
		"pairs":   pairs,
		"emails":  emails,
		"message": fmt.Sprintf("Round '%s' started. Generated %d evaluation links and notified %d evaluators.", round.Name, pairs, emails),
	})
}

// CloseRound permanently stops submissions for a round.
func CloseRound(c *gin.Context) {
	roundID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid round ID"})
		return
	}

	round, err := services.CloseRound(config.DB, uint(roundID))
	if err != nil {
		notFoundOr500(c, err, "Round")
		return
	}

	c.JSON(http.StatusOK, gin.H{"round": round, "message": "Round closed. Evaluations can no longer be submitted."})
}

// DeleteRound removes a round with all its tokens, responses and queued
// notifications in one cascade.
func DeleteRound(c *gin.Context) {
	roundID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid round ID"})
		return
	}

	if err := services.DeleteRound(config.DB, uint(roundID)); err != nil {
		notFoundOr500(c, err, "Round")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Round deleted (tokens, responses, and related outbox entries removed)."})
}

// GetRoundReport returns the four report tables for a round. Aggregation
// method and trim fraction come from query parameters.
func GetRoundReport(c *gin.Context) {
	roundID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid round ID"})
		return
	}

	method := c.DefaultQuery("method", services.MethodMean)
	trim, _ := strconv.ParseFloat(c.DefaultQuery("trim", "0"), 64)

	report, err := services.BuildRoundReport(c.Request.Context(), config.DB, uint(roundID), method, trim, services.SummarizerFromEnv())
	if err != nil {
		notFoundOr500(c, err, "Round")
		return
	}

	c.JSON(http.StatusOK, report)
}
