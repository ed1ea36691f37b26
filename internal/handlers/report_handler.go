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

// parseReportParams разбирает и проверяет параметры отчета по автомобилю
func parseReportParams(c *gin.Context) (uint, time.Time, time.Time, []string) {
	var errs []string

	vehicleID, err := strconv.Atoi(c.Query("vehicle_id"))
	if err != nil || vehicleID <= 0 {
		errs = append(errs, "Выберите автомобиль")
	}

	var dtFrom, dtTo time.Time
	dateFrom := c.Query("date_from")
	dateTo := c.Query("date_to")
	if dateFrom == "" || dateTo == "" {
		errs = append(errs, "Укажите период отчета")
	} else {
		if dtFrom, err = time.Parse("2006-01-02", dateFrom); err != nil {
			errs = append(errs, "Неверный формат даты начала периода")
		}
		if dtTo, err = time.Parse("2006-01-02", dateTo); err != nil {
			errs = append(errs, "Неверный формат даты окончания периода")
		} else {
			// Конец периода включает весь день
			dtTo = dtTo.Add(24*time.Hour - time.Second)
		}
	}

	return uint(vehicleID), dtFrom, dtTo, errs
}

// reportTrips возвращает завершенные рейсы автомобиля за период
func reportTrips(db *gorm.DB, vehicleID uint, from, to time.Time) ([]models.Trip, error) {
	var trips []models.Trip
	err := db.Model(&models.Trip{}).
		Joins("JOIN bookings ON bookings.id = trips.booking_id").
		Where("bookings.vehicle_id = ? AND trips.start_actual >= ? AND trips.start_actual <= ? AND trips.end_actual IS NOT NULL",
			vehicleID, from, to).
		Order("trips.start_actual").
		Preload("Booking").
		Preload("Booking.Driver").
		Find(&trips).Error
	return trips, err
}

// VehicleReport возвращает завершенные рейсы автомобиля за период
// с итогами по пробегу и стоимости топлива
func VehicleReport(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		vehicleID, dtFrom, dtTo, errs := parseReportParams(c)
		if len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
			return
		}

		var vehicle models.Vehicle
		if err := db.First(&vehicle, vehicleID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Автомобиль не найден"})
			return
		}

		trips, err := reportTrips(db, vehicleID, dtFrom, dtTo)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при формировании отчета"})
			return
		}

		var totalDistance int
		var totalFuelCost float64
		for _, t := range trips {
			if t.Distance != nil {
				totalDistance += *t.Distance
			}
			if t.FuelCost != nil {
				totalFuelCost += *t.FuelCost
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"vehicle":         vehicle,
			"trips":           trips,
			"total_distance":  totalDistance,
			"total_fuel_cost": totalFuelCost,
		})
	}
}

// VehicleReportExport выгружает отчет по рейсам автомобиля в формате Excel
func VehicleReportExport(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		vehicleID, dtFrom, dtTo, errs := parseReportParams(c)
		if len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
			return
		}

		var vehicle models.Vehicle
		if err := db.First(&vehicle, vehicleID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Автомобиль не найден"})
			return
		}

		trips, err := reportTrips(db, vehicleID, dtFrom, dtTo)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при формировании отчета"})
			return
		}

		dateFrom := c.Query("date_from")
		dateTo := c.Query("date_to")

		file, err := services.BuildTripReport(&vehicle, trips, dateFrom, dateTo)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при формировании Excel файла"})
			return
		}

		filename := fmt.Sprintf("trip_report_%s_%s_to_%s.xlsx", vehicle.RegistrationNumber, dateFrom, dateTo)
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

		if err := file.Write(c.Writer); err != nil {
			// Заголовки уже ушли клиенту, остается только залогировать
			_ = c.Error(err)
		}
	}
}

// BudgetRow представляет строку бюджетного отчета по коду проекта
type BudgetRow struct {
	ProjectCode   string  `json:"project_code"`
	TripCount     int64   `json:"trip_count"`
	TotalDistance int64   `json:"total_distance"`
	TotalFuel     float64 `json:"total_fuel"`
	TotalCost     float64 `json:"total_cost"`
}

// BudgetReport суммирует пробег и затраты на топливо по кодам проектов
func BudgetReport(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rows []BudgetRow
		err := db.Model(&models.Trip{}).
			Select("bookings.project_code AS project_code, " +
				"COUNT(trips.id) AS trip_count, " +
				"COALESCE(SUM(trips.distance), 0) AS total_distance, " +
				"COALESCE(SUM(trips.fuel_used), 0) AS total_fuel, " +
				"COALESCE(SUM(trips.fuel_cost), 0) AS total_cost").
			Joins("JOIN bookings ON bookings.id = trips.booking_id").
			Where("trips.end_actual IS NOT NULL").
			Group("bookings.project_code").
			Order("bookings.project_code").
			Scan(&rows).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при формировании бюджетного отчета"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"rows": rows})
	}
}
