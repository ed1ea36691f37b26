package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"vehicle-tracker/internal/models"
	"vehicle-tracker/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MaintenanceList возвращает записи об обслуживании с фильтром по статусу
func MaintenanceList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Model(&models.MaintenanceRecord{})
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var records []models.MaintenanceRecord
		if err := query.Order("scheduled_date DESC").Find(&records).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении записей об обслуживании"})
			return
		}

		c.JSON(http.StatusOK, records)
	}
}

// MaintenanceCreate планирует обслуживание автомобиля.
// При set_maintenance=true автомобиль сразу переводится в статус maintenance.
func MaintenanceCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var req struct {
			VehicleID      uint     `json:"vehicle_id"`
			Type           string   `json:"maintenance_type"`
			Description    string   `json:"description"`
			ScheduledDate  string   `json:"scheduled_date"`
			Cost           *float64 `json:"cost"`
			SetMaintenance bool     `json:"set_maintenance"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		var errs []string

		var vehicle models.Vehicle
		if req.VehicleID == 0 {
			errs = append(errs, "Выберите автомобиль")
		} else if err := db.First(&vehicle, req.VehicleID).Error; err != nil {
			errs = append(errs, "Выбранный автомобиль не существует")
		}

		if !models.ValidMaintenanceType(req.Type) {
			errs = append(errs, "Неверный тип обслуживания")
		}
		if req.Description == "" {
			errs = append(errs, "Укажите описание работ")
		}

		var scheduledDate time.Time
		if req.ScheduledDate == "" {
			errs = append(errs, "Укажите плановую дату")
		} else {
			var err error
			scheduledDate, err = time.Parse("2006-01-02", req.ScheduledDate)
			if err != nil {
				errs = append(errs, "Неверный формат даты")
			}
		}

		if req.Cost != nil && *req.Cost < 0 {
			errs = append(errs, "Стоимость не может быть отрицательной")
		}

		if len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
			return
		}

		record := models.MaintenanceRecord{
			VehicleID:     req.VehicleID,
			Type:          models.MaintenanceType(req.Type),
			Description:   req.Description,
			ScheduledDate: scheduledDate,
			Cost:          req.Cost,
			Status:        models.MaintenanceStatusScheduled,
			CreatedByID:   &userID,
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
			if req.SetMaintenance {
				return tx.Model(&models.Vehicle{}).Where("id = ?", req.VehicleID).
					Update("status", models.VehicleStatusMaintenance).Error
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании записи об обслуживании"})
			return
		}

		services.RecordAudit(db, userID, c.GetString("username"),
			models.AuditActionCreate, "MaintenanceRecord", record.ID,
			fmt.Sprintf("Запланировано обслуживание (%s) автомобиля %s", record.Type, vehicle.RegistrationNumber))

		c.JSON(http.StatusCreated, record)
	}
}

// MaintenanceComplete помечает обслуживание выполненным и освобождает автомобиль
func MaintenanceComplete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID записи"})
			return
		}

		var record models.MaintenanceRecord
		if err := db.First(&record, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Запись об обслуживании не найдена"})
			return
		}

		var req struct {
			Cost *float64 `json:"cost"`
		}
		// Тело запроса необязательно
		_ = c.ShouldBindJSON(&req)

		if req.Cost != nil && *req.Cost < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"Стоимость не может быть отрицательной"}})
			return
		}

		now := time.Now()
		record.Status = models.MaintenanceStatusCompleted
		record.CompletedDate = &now
		if req.Cost != nil {
			record.Cost = req.Cost
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&record).Error; err != nil {
				return err
			}
			return tx.Model(&models.Vehicle{}).Where("id = ?", record.VehicleID).
				Update("status", models.VehicleStatusAvailable).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при завершении обслуживания"})
			return
		}

		services.RecordAudit(db, c.GetUint("user_id"), c.GetString("username"),
			models.AuditActionComplete, "MaintenanceRecord", record.ID,
			"Обслуживание завершено, автомобиль снова доступен")

		c.JSON(http.StatusOK, record)
	}
}

// MaintenanceCancel отменяет запланированное обслуживание
func MaintenanceCancel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID записи"})
			return
		}

		var record models.MaintenanceRecord
		if err := db.First(&record, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Запись об обслуживании не найдена"})
			return
		}

		record.Status = models.MaintenanceStatusCancelled

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&record).Error; err != nil {
				return err
			}
			// Автомобиль освобождается, только если он стоял на обслуживании
			return tx.Model(&models.Vehicle{}).
				Where("id = ? AND status = ?", record.VehicleID, models.VehicleStatusMaintenance).
				Update("status", models.VehicleStatusAvailable).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при отмене обслуживания"})
			return
		}

		services.RecordAudit(db, c.GetUint("user_id"), c.GetString("username"),
			models.AuditActionCancel, "MaintenanceRecord", record.ID, "Обслуживание отменено")

		c.JSON(http.StatusOK, record)
	}
}
