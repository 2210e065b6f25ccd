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
)

// GetRubrics lists all rubrics with their items.
func GetRubrics(c *gin.Context) {
	var rubrics []models.Rubric
	if err := config.DB.Preload("Items").Find(&rubrics).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load rubrics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rubrics": rubrics})
}

// CreateRubric creates an empty rubric; items are added afterwards.
func CreateRubric(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Rubric " + time.Now().Format("2006-01-02 15:04")
	}

	rubric := models.Rubric{Name: name, Active: true}
	if err := config.DB.Create(&rubric).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rubric"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"rubric": rubric})
}

// AddRubricItem appends one criterion to a rubric. Weight and max_score
// invariants are enforced before anything is written.
func AddRubricItem(c *gin.Context) {
	rubricID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rubric ID"})
		return
	}

	var rubric models.Rubric
	if err := config.DB.First(&rubric, rubricID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rubric not found"})
		return
	}

	var req struct {
		Criterion   string  `json:"criterion" binding:"required"`
		Description string  `json:"description"`
		Weight      float64 `json:"weight"`
		MaxScore    int     `json:"max_score"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Weight == 0 {
		req.Weight = 1
	}
	if req.MaxScore == 0 {
		req.MaxScore = 5
	}

	item := models.RubricItem{
		RubricID:    rubric.RubricID,
		Criterion:   strings.TrimSpace(req.Criterion),
		Description: strings.TrimSpace(req.Description),
		Weight:      req.Weight,
		MaxScore:    req.MaxScore,
	}
	if err := item.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := config.DB.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add rubric item"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// DeleteRubric removes a rubric and its items.
func DeleteRubric(c *gin.Context) {
	rubricID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rubric ID"})
		return
	}

	var rubric models.Rubric
	if err := config.DB.First(&rubric, rubricID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rubric not found"})
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rubric_id = ?", rubric.RubricID).Delete(&models.RubricItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&rubric).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete rubric"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Rubric '%s' deleted", rubric.Name)})
}

// DeleteRubricItem removes one criterion.
func DeleteRubricItem(c *gin.Context) {
	itemID, err := strconv.Atoi(c.Param("item_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	result := config.DB.Where("rubric_item_id = ? AND rubric_id = ?", itemID, c.Param("id")).Delete(&models.RubricItem{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item deleted"})
}

// UploadRubric imports a rubric from a CSV with columns
// criterion,description,weight,max_score. Every row is validated before
// anything persists; one bad row discards the whole upload.
func UploadRubric(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		name = "Uploaded Rubric"
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CSV file is required"})
		return
	}
	defer file.Close()

	records, header, err := readCSV(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	required := []string{"criterion", "weight", "max_score"}
	for _, col := range required {
		if _, ok := header[col]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("CSV must include columns: %s", strings.Join(required, ", "))})
			return
		}
	}

	// Validate every row up front so a failed import persists nothing.
	items := make([]models.RubricItem, 0, len(records))
	for i, row := range records {
		weight, err := strconv.ParseFloat(strings.TrimSpace(row[header["weight"]]), 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("row %d: invalid weight %q", i+2, row[header["weight"]])})
			return
		}
		maxScore, err := strconv.Atoi(strings.TrimSpace(row[header["max_score"]]))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("row %d: invalid max_score %q", i+2, row[header["max_score"]])})
			return
		}

		description := ""
		if idx, ok := header["description"]; ok && idx < len(row) {
			description = strings.TrimSpace(row[idx])
		}

		item := models.RubricItem{
			Criterion:   strings.TrimSpace(row[header["criterion"]]),
			Description: description,
			Weight:      weight,
			MaxScore:    maxScore,
		}
		if err := item.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("row %d: %s", i+2, err.Error())})
			return
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CSV contains no rubric rows"})
		return
	}

	rubric := models.Rubric{Name: name, Active: true}
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rubric).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].RubricID = rubric.RubricID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save rubric"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": fmt.Sprintf("Rubric '%s' uploaded", rubric.Name), "rubric_id": rubric.RubricID, "items": len(items)})
}

func notFoundOr500(c *gin.Context, err error, what string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load " + strings.ToLower(what)})
}
