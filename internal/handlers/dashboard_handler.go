package handlers

import (
	"net/http"

	"vehicle-tracker/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dashboard возвращает сводку: размер автопарка, заявки на рассмотрении,
// запланированное обслуживание и ближайшие подтвержденные поездки
func Dashboard(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var vehicleCount, pendingCount, maintenanceDue int64

		db.Model(&models.Vehicle{}).Count(&vehicleCount)
		db.Model(&models.Booking{}).Where("status = ?", models.BookingStatusPending).Count(&pendingCount)
		db.Model(&models.MaintenanceRecord{}).Where("status = ?", models.MaintenanceStatusScheduled).Count(&maintenanceDue)

		var upcoming []models.Booking
		if err := db.Where("status = ?", models.BookingStatusApproved).
			Order("start_planned").
			Limit(10).
			Find(&upcoming).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении сводки"})
			return
		}

		items := make([]models.BookingResponse, 0, len(upcoming))
		for i := range upcoming {
			items = append(items, toBookingResponse(db, &upcoming[i]))
		}

		c.JSON(http.StatusOK, gin.H{
			"vehicle_count":   vehicleCount,
			"pending_count":   pendingCount,
			"maintenance_due": maintenanceDue,
			"upcoming":        items,
		})
	}
}
