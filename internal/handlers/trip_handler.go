package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"vehicle-tracker/internal/models"
	"vehicle-tracker/internal/services"
	"vehicle-tracker/internal/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TripStart фиксирует фактическое начало рейса по подтвержденной заявке.
// Рейс можно начать один раз: заявка должна быть approved и без записи о рейсе.
func TripStart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID заявки"})
			return
		}

		var booking models.Booking
		if err := db.First(&booking, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Заявка не найдена"})
			return
		}

		if booking.Status != models.BookingStatusApproved {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Начать рейс можно только по подтвержденной заявке"})
			return
		}

		var existing models.Trip
		if err := db.Where("booking_id = ?", booking.ID).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Рейс по этой заявке уже начат"})
			return
		}

		var req struct {
			StartActual   *time.Time `json:"start_actual"`
			OdometerStart *int       `json:"odometer_start"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		var errs []string
		if req.StartActual == nil {
			errs = append(errs, "Укажите фактическое время начала")
		}
		if req.OdometerStart == nil {
			errs = append(errs, "Укажите показание одометра")
		} else if *req.OdometerStart < 0 {
			errs = append(errs, "Показание одометра не может быть отрицательным")
		}
		if len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
			return
		}

		trip := models.Trip{
			BookingID:     booking.ID,
			StartActual:   req.StartActual,
			OdometerStart: req.OdometerStart,
		}

		// Создание рейса и перевод автомобиля "в рейс" выполняются атомарно
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&trip).Error; err != nil {
				return err
			}
			return tx.Model(&models.Vehicle{}).Where("id = ?", booking.VehicleID).
				Update("status", models.VehicleStatusInUse).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании рейса"})
			return
		}

		services.RecordAudit(db, c.GetUint("user_id"), c.GetString("username"),
			models.AuditActionCreate, "Trip", trip.ID,
			fmt.Sprintf("Рейс по заявке #%d начат, одометр %d", booking.ID, *req.OdometerStart))

		if booking.RequesterID != nil {
			websocket.SendTripStatusUpdate(*booking.RequesterID, booking.ID, trip.ID, "started")
		}

		c.JSON(http.StatusCreated, trip)
	}
}

// TripEnd фиксирует фактическое окончание рейса: показания одометра, расход
// топлива и стоимость. Заявка помечается завершенной, автомобиль освобождается.
func TripEnd(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID заявки"})
			return
		}

		var booking models.Booking
		if err := db.First(&booking, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Заявка не найдена"})
			return
		}

		var trip models.Trip
		if err := db.Where("booking_id = ?", booking.ID).First(&trip).Error; err != nil || trip.IsFinished() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Активный рейс по этой заявке не найден"})
			return
		}

		var req struct {
			EndActual   *time.Time `json:"end_actual"`
			OdometerEnd *int       `json:"odometer_end"`
			FuelUsed    *float64   `json:"fuel_used"`
			FuelCost    *float64   `json:"fuel_cost"`
			Remarks     string     `json:"remarks"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		var errs []string
		if req.EndActual == nil {
			errs = append(errs, "Укажите фактическое время окончания")
		}
		if req.OdometerEnd == nil {
			errs = append(errs, "Укажите показание одометра")
		}
		if req.EndActual != nil && trip.StartActual != nil && !req.EndActual.After(*trip.StartActual) {
			errs = append(errs, "Время окончания должно быть позже времени начала рейса")
		}
		if req.OdometerEnd != nil && trip.OdometerStart != nil && *req.OdometerEnd < *trip.OdometerStart {
			errs = append(errs, fmt.Sprintf(
				"Конечное показание одометра (%d) не может быть меньше начального (%d)",
				*req.OdometerEnd, *trip.OdometerStart))
		}
		if req.FuelUsed != nil && *req.FuelUsed < 0 {
			errs = append(errs, "Расход топлива не может быть отрицательным")
		}
		if req.FuelCost != nil && *req.FuelCost < 0 {
			errs = append(errs, "Стоимость топлива не может быть отрицательной")
		}
		if len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
			return
		}

		trip.EndActual = req.EndActual
		trip.OdometerEnd = req.OdometerEnd
		if trip.OdometerStart != nil {
			distance := *req.OdometerEnd - *trip.OdometerStart
			trip.Distance = &distance
		}
		trip.FuelUsed = req.FuelUsed
		trip.FuelCost = req.FuelCost
		trip.Remarks = req.Remarks

		// Завершение рейса, закрытие заявки и освобождение автомобиля выполняются атомарно
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&trip).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Booking{}).Where("id = ?", booking.ID).
				Update("status", models.BookingStatusCompleted).Error; err != nil {
				return err
			}
			return tx.Model(&models.Vehicle{}).Where("id = ?", booking.VehicleID).
				Update("status", models.VehicleStatusAvailable).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при завершении рейса"})
			return
		}

		details := "Рейс завершен"
		if trip.Distance != nil {
			details = fmt.Sprintf("Рейс завершен, пробег %d км", *trip.Distance)
		}
		services.RecordAudit(db, c.GetUint("user_id"), c.GetString("username"),
			models.AuditActionComplete, "Trip", trip.ID, details)

		if booking.RequesterID != nil {
			websocket.SendTripStatusUpdate(*booking.RequesterID, booking.ID, trip.ID, "finished")
		}

		c.JSON(http.StatusOK, trip)
	}
}
