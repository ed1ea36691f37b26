package handlers

import (
	"net/http"
	"time"

	"vehicle-tracker/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// Цвета событий календаря по статусу заявки
var calendarColours = map[models.BookingStatus]string{
	models.BookingStatusPending:  "#ffc107",
	models.BookingStatusApproved: "#198754",
}

// CalendarEvent представляет событие календаря в формате FullCalendar
type CalendarEvent struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
	Color string `json:"color"`
}

// CalendarEvents возвращает активные заявки месяца как события календаря.
// Параметр month в формате YYYY-MM, по умолчанию текущий месяц.
func CalendarEvents(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		base := time.Now()
		if month := c.Query("month"); month != "" {
			parsed, err := time.Parse("2006-01", month)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат месяца, ожидается YYYY-MM"})
				return
			}
			base = parsed
		}

		monthStart := now.New(base).BeginningOfMonth()
		monthEnd := now.New(base).EndOfMonth()

		// Берем активные заявки, пересекающие границы месяца
		var bookings []models.Booking
		if err := db.Where(
			"status IN ? AND start_planned <= ? AND end_planned >= ?",
			[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusApproved},
			monthEnd, monthStart,
		).Order("start_planned").Find(&bookings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении календаря"})
			return
		}

		events := make([]CalendarEvent, 0, len(bookings))
		for _, b := range bookings {
			var vehicle models.Vehicle
			db.First(&vehicle, b.VehicleID)

			colour, ok := calendarColours[b.Status]
			if !ok {
				colour = "#6c757d"
			}

			events = append(events, CalendarEvent{
				ID:    b.ID,
				Title: vehicle.RegistrationNumber + " – " + b.RouteFrom + "→" + b.RouteTo,
				Start: b.StartPlanned.Format(time.RFC3339),
				End:   b.EndPlanned.Format(time.RFC3339),
				Color: colour,
			})
		}

		c.JSON(http.StatusOK, events)
	}
}
