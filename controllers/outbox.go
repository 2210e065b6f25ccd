package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"peer-eval-api/config"
	"peer-eval-api/models"
)

// GetOutbox lists the most recent locally queued notification messages.
// Used in development when no SMTP transport is configured.
func GetOutbox(c *gin.Context) {
	var msgs []models.DevOutbox
	if err := config.DB.Order("created_at DESC").Limit(200).Find(&msgs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load outbox"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs, "count": len(msgs)})
}
