package services

import (
	"log"

	"vehicle-tracker/internal/models"

	"gorm.io/gorm"
)

// RecordAudit добавляет запись в журнал аудита. Ошибка записи логируется,
// но не прерывает основную операцию.
func RecordAudit(db *gorm.DB, userID uint, username, action, entityType string, entityID uint, details string) {
	entry := models.AuditLog{
		Username:   username,
		Action:     action,
		EntityType: entityType,
		Details:    details,
	}
	if userID > 0 {
		entry.UserID = &userID
	}
	if entityID > 0 {
		entry.EntityID = &entityID
	}

	if err := db.Create(&entry).Error; err != nil {
		log.Printf("Ошибка записи в журнал аудита (%s %s #%d): %v", action, entityType, entityID, err)
	}
}
