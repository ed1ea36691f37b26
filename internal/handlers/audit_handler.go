package handlers

import (
	"net/http"
	"strconv"

	"vehicle-tracker/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuditList возвращает журнал аудита, новые записи первыми
func AuditList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}
		perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))
		if perPage < 1 || perPage > 200 {
			perPage = 50
		}

		query := db.Model(&models.AuditLog{})
		if entityType := c.Query("entity_type"); entityType != "" {
			query = query.Where("entity_type = ?", entityType)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении журнала аудита"})
			return
		}

		var entries []models.AuditLog
		if err := query.Order("timestamp DESC").
			Offset((page - 1) * perPage).
			Limit(perPage).
			Find(&entries).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении журнала аудита"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"items":    entries,
			"total":    total,
			"page":     page,
			"per_page": perPage,
		})
	}
}
