package controllers

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"peer-eval-api/config"
	"peer-eval-api/models"
	"peer-eval-api/utils"
)

// GetStudents lists the roster ordered by name.
func GetStudents(c *gin.Context) {
	var students []models.Student
	if err := config.DB.Order("last_name, first_name").Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load students"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"students": students, "count": len(students)})
}

// UploadStudents replaces the roster from a CSV upload with columns
// first_name,last_name,email,team. The import is all-or-nothing: any bad
// row aborts the transaction and the previous roster stays intact.
func UploadStudents(c *gin.Context) {
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

	required := []string{"first_name", "last_name", "email", "team"}
	for _, col := range required {
		if _, ok := header[col]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("CSV must include columns: %s", strings.Join(required, ", "))})
			return
		}
	}

	added := 0
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		// Replace-all semantics: a roster upload defines the full roster.
		if err := tx.Where("1 = 1").Delete(&models.Student{}).Error; err != nil {
			return err
		}

		seen := make(map[string]bool)
		for i, row := range records {
			email := strings.ToLower(strings.TrimSpace(row[header["email"]]))
			if email == "" {
				continue
			}
			if !utils.ValidateEmail(email) {
				return fmt.Errorf("row %d: invalid email %q", i+2, email)
			}
			if seen[email] {
				return fmt.Errorf("row %d: duplicate email %q", i+2, email)
			}
			seen[email] = true

			student := models.Student{
				FirstName: strings.TrimSpace(row[header["first_name"]]),
				LastName:  strings.TrimSpace(row[header["last_name"]]),
				Email:     email,
				Team:      strings.TrimSpace(row[header["team"]]),
			}
			if err := tx.Create(&student).Error; err != nil {
				return err
			}
			added++
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Upload complete. %d students added.", added), "added": added})
}

// readCSV parses an uploaded CSV into data rows plus a header index map.
func readCSV(r io.Reader) ([][]string, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("CSV file is empty")
	}

	header := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return rows[1:], header, nil
}
