package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"vehicle-tracker/internal/models"
	"vehicle-tracker/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// validateVehicleInput собирает ошибки валидации полей автомобиля.
// excludeID исключает сам автомобиль из проверки уникальности номера.
func validateVehicleInput(db *gorm.DB, reg, make, model string, status models.VehicleStatus, allowInUse bool, excludeID uint) []string {
	var errors []string

	if reg == "" {
		errors = append(errors, "Укажите регистрационный номер")
	} else if len(reg) < 3 {
		errors = append(errors, "Регистрационный номер слишком короткий")
	}
	if make == "" {
		errors = append(errors, "Укажите марку автомобиля")
	}
	if model == "" {
		errors = append(errors, "Укажите модель автомобиля")
	}

	switch status {
	case models.VehicleStatusAvailable, models.VehicleStatusMaintenance:
	case models.VehicleStatusInUse:
		if !allowInUse {
			errors = append(errors, "Неверный статус автомобиля")
		}
	default:
		errors = append(errors, "Неверный статус автомобиля")
	}

	if reg != "" {
		query := db.Model(&models.Vehicle{}).Where("registration_number = ?", reg)
		if excludeID > 0 {
			query = query.Where("id <> ?", excludeID)
		}
		var count int64
		query.Count(&count)
		if count > 0 {
			errors = append(errors, fmt.Sprintf("Регистрационный номер '%s' уже существует", reg))
		}
	}

	return errors
}

// VehicleList возвращает все автомобили автопарка
func VehicleList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var vehicles []models.Vehicle
		if err := db.Order("registration_number").Find(&vehicles).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении автомобилей"})
			return
		}
		c.JSON(http.StatusOK, vehicles)
	}
}

// VehicleCreate регистрирует новый автомобиль
func VehicleCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			RegistrationNumber string `json:"registration_number"`
			Make               string `json:"make"`
			Model              string `json:"model"`
			Status             string `json:"status"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		reg := strings.ToUpper(strings.TrimSpace(req.RegistrationNumber))
		make := strings.TrimSpace(req.Make)
		model := strings.TrimSpace(req.Model)
		status := models.VehicleStatus(req.Status)
		if req.Status == "" {
			status = models.VehicleStatusAvailable
		}

		// Новый автомобиль не может быть сразу "в рейсе"
		if errors := validateVehicleInput(db, reg, make, model, status, false, 0); len(errors) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errors})
			return
		}

		vehicle := models.Vehicle{
			RegistrationNumber: reg,
			Make:               make,
			Model:              model,
			Status:             status,
		}
		if err := db.Create(&vehicle).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при регистрации автомобиля"})
			return
		}

		services.RecordAudit(db, c.GetUint("user_id"), c.GetString("username"),
			models.AuditActionCreate, "Vehicle", vehicle.ID,
			fmt.Sprintf("Добавлен автомобиль %s", vehicle.RegistrationNumber))

		c.JSON(http.StatusCreated, vehicle)
	}
}

// VehicleUpdate редактирует данные автомобиля
func VehicleUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID автомобиля"})
			return
		}

		var vehicle models.Vehicle
		if err := db.First(&vehicle, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Автомобиль не найден"})
			return
		}

		var req struct {
			RegistrationNumber string `json:"registration_number"`
			Make               string `json:"make"`
			Model              string `json:"model"`
			Status             string `json:"status"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		reg := strings.ToUpper(strings.TrimSpace(req.RegistrationNumber))
		make := strings.TrimSpace(req.Make)
		model := strings.TrimSpace(req.Model)
		status := models.VehicleStatus(req.Status)

		if errors := validateVehicleInput(db, reg, make, model, status, true, vehicle.ID); len(errors) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errors})
			return
		}

		vehicle.RegistrationNumber = reg
		vehicle.Make = make
		vehicle.Model = model
		vehicle.Status = status
		if err := db.Save(&vehicle).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении автомобиля"})
			return
		}

		services.RecordAudit(db, c.GetUint("user_id"), c.GetString("username"),
			models.AuditActionEdit, "Vehicle", vehicle.ID,
			fmt.Sprintf("Автомобиль %s обновлен", vehicle.RegistrationNumber))

		c.JSON(http.StatusOK, vehicle)
	}
}

// VehicleDelete удаляет автомобиль вместе с его заявками, рейсами
// и записями об обслуживании
func VehicleDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID автомобиля"})
			return
		}

		var vehicle models.Vehicle
		if err := db.First(&vehicle, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Автомобиль не найден"})
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			var bookingIDs []uint
			if err := tx.Model(&models.Booking{}).Where("vehicle_id = ?", vehicle.ID).
				Pluck("id", &bookingIDs).Error; err != nil {
				return err
			}
			if len(bookingIDs) > 0 {
				if err := tx.Where("booking_id IN ?", bookingIDs).Delete(&models.Trip{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("vehicle_id = ?", vehicle.ID).Delete(&models.Booking{}).Error; err != nil {
				return err
			}
			if err := tx.Where("vehicle_id = ?", vehicle.ID).Delete(&models.MaintenanceRecord{}).Error; err != nil {
				return err
			}
			return tx.Delete(&vehicle).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при удалении автомобиля"})
			return
		}

		services.RecordAudit(db, c.GetUint("user_id"), c.GetString("username"),
			models.AuditActionDelete, "Vehicle", vehicle.ID,
			fmt.Sprintf("Автомобиль %s удален вместе со связанными записями", vehicle.RegistrationNumber))

		c.JSON(http.StatusOK, gin.H{"message": "Автомобиль удален"})
	}
}
