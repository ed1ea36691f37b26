package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"vehicle-tracker/internal/middleware"
	"vehicle-tracker/internal/models"
	"vehicle-tracker/internal/services"
	"vehicle-tracker/internal/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errBookingConflict = errors.New("booking conflict")

// conflictMessage формирует стандартное сообщение о пересечении интервалов
func conflictMessage(conflict *models.Booking) string {
	return fmt.Sprintf(
		"Автомобиль уже забронирован с %s по %s (заявка #%d, %s)",
		conflict.StartPlanned.Format("2006-01-02 15:04"),
		conflict.EndPlanned.Format("2006-01-02 15:04"),
		conflict.ID,
		conflict.RequesterName,
	)
}

// toBookingResponse собирает ответ API по заявке с именами водителя и автомобиля
func toBookingResponse(db *gorm.DB, booking *models.Booking) models.BookingResponse {
	response := models.BookingResponse{
		ID:            booking.ID,
		RequesterName: booking.RequesterName,
		RequesterID:   booking.RequesterID,
		DriverID:      booking.DriverID,
		VehicleID:     booking.VehicleID,
		StartPlanned:  booking.StartPlanned,
		EndPlanned:    booking.EndPlanned,
		RouteFrom:     booking.RouteFrom,
		RouteTo:       booking.RouteTo,
		Purpose:       booking.Purpose,
		ActivityCode:  booking.ActivityCode,
		ProjectCode:   booking.ProjectCode,
		Status:        booking.Status,
		CreatedAt:     booking.CreatedAt,
		UpdatedAt:     booking.UpdatedAt,
	}

	if booking.DriverID != nil {
		var driver models.User
		if err := db.First(&driver, *booking.DriverID).Error; err == nil {
			response.DriverName = driver.FullName
		}
	}

	var vehicle models.Vehicle
	if err := db.First(&vehicle, booking.VehicleID).Error; err == nil {
		response.VehicleReg = vehicle.RegistrationNumber
	}

	var trip models.Trip
	if err := db.Where("booking_id = ?", booking.ID).First(&trip).Error; err == nil {
		response.Trip = &trip
	}

	return response
}

// notifyAdmins отправляет письмо всем активным администраторам
func notifyAdmins(db *gorm.DB, subject, body string) {
	var admins []models.User
	if err := db.Where("role = ? AND is_active = ?", models.RoleAdmin, true).Find(&admins).Error; err != nil {
		return
	}
	recipients := make([]string, 0, len(admins))
	for _, a := range admins {
		if a.Email != "" {
			recipients = append(recipients, a.Email)
		}
	}
	emailService.Send(subject, recipients, body)
}

// BookingCreate создает новую заявку на автомобиль.
// Пересечение интервалов проверяется дважды: до вставки и повторно внутри
// транзакции после вставки (исключая саму заявку), чтобы сузить окно гонки
// между двумя одновременными заявками на один автомобиль.
func BookingCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var req struct {
			VehicleID    uint       `json:"vehicle_id"`
			DriverID     *uint      `json:"driver_id"`
			StartPlanned *time.Time `json:"start_planned"`
			EndPlanned   *time.Time `json:"end_planned"`
			RouteFrom    string     `json:"route_from"`
			RouteTo      string     `json:"route_to"`
			Purpose      string     `json:"purpose"`
			ActivityCode string     `json:"activity_code"`
			ProjectCode  string     `json:"project_code"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		var requester models.User
		if err := db.First(&requester, userID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Пользователь не найден"})
			return
		}

		var errs []string

		if req.VehicleID == 0 {
			errs = append(errs, "Выберите автомобиль")
		}
		if req.StartPlanned == nil {
			errs = append(errs, "Укажите плановое время начала")
		}
		if req.EndPlanned == nil {
			errs = append(errs, "Укажите плановое время окончания")
		}
		if req.RouteFrom == "" {
			errs = append(errs, "Укажите пункт отправления")
		}
		if req.RouteTo == "" {
			errs = append(errs, "Укажите пункт назначения")
		}
		if req.Purpose == "" {
			errs = append(errs, "Укажите цель поездки")
		}

		if req.StartPlanned != nil && req.EndPlanned != nil {
			if !req.EndPlanned.After(*req.StartPlanned) {
				errs = append(errs, "Время окончания должно быть позже времени начала")
			}
			if req.StartPlanned.Before(time.Now()) {
				errs = append(errs, "Время начала не может быть в прошлом")
			}
		}

		var vehicle models.Vehicle
		if req.VehicleID != 0 {
			if err := db.First(&vehicle, req.VehicleID).Error; err != nil {
				errs = append(errs, "Выбранный автомобиль не существует")
			} else if vehicle.Status == models.VehicleStatusMaintenance {
				errs = append(errs,
					fmt.Sprintf("Автомобиль %s находится на обслуживании и недоступен для бронирования",
						vehicle.RegistrationNumber))
			}
		}

		// Предварительная проверка пересечений
		if len(errs) == 0 {
			conflict, err := models.CheckBookingConflict(db, req.VehicleID, *req.StartPlanned, *req.EndPlanned, 0)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при проверке пересечений"})
				return
			}
			if conflict != nil {
				middleware.BookingConflictsTotal.WithLabelValues("create").Inc()
				errs = append(errs, conflictMessage(conflict))
			}
		}

		if len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
			return
		}

		booking := models.Booking{
			RequesterName: requester.FullName,
			RequesterID:   &requester.ID,
			DriverID:      req.DriverID,
			VehicleID:     req.VehicleID,
			StartPlanned:  *req.StartPlanned,
			EndPlanned:    *req.EndPlanned,
			RouteFrom:     req.RouteFrom,
			RouteTo:       req.RouteTo,
			Purpose:       req.Purpose,
			ActivityCode:  req.ActivityCode,
			ProjectCode:   req.ProjectCode,
			Status:        models.BookingStatusPending,
		}

		var txConflict *models.Booking
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&booking).Error; err != nil {
				return err
			}

			// Повторная проверка после вставки: если между предварительной
			// проверкой и вставкой успела появиться пересекающаяся заявка,
			// транзакция откатывается
			conflict, err := models.CheckBookingConflict(tx, booking.VehicleID,
				booking.StartPlanned, booking.EndPlanned, booking.ID)
			if err != nil {
				return err
			}
			if conflict != nil {
				txConflict = conflict
				return errBookingConflict
			}
			return nil
		})
		if errors.Is(err, errBookingConflict) {
			middleware.BookingConflictsTotal.WithLabelValues("recheck").Inc()
			c.JSON(http.StatusConflict, gin.H{"errors": []string{conflictMessage(txConflict)}})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании заявки"})
			return
		}

		services.RecordAudit(db, requester.ID, requester.Username,
			models.AuditActionCreate, "Booking", booking.ID,
			fmt.Sprintf("Заявка на %s: %s → %s", vehicle.RegistrationNumber, booking.RouteFrom, booking.RouteTo))

		// Уведомляем администраторов о новой заявке
		notifyAdmins(db,
			fmt.Sprintf("Новая заявка #%d – COSME Vehicle Tracker", booking.ID),
			fmt.Sprintf(
				"Здравствуйте!\n\n"+
					"Поступила новая заявка на автомобиль.\n\n"+
					"Заявка #: %d\n"+
					"Заявитель: %s\n"+
					"Автомобиль: %s\n"+
					"Маршрут: %s → %s\n"+
					"Цель: %s\n"+
					"С: %s\n"+
					"По: %s\n\n"+
					"Войдите в систему, чтобы подтвердить или отклонить заявку.\n\n"+
					"– COSME Vehicle Tracker",
				booking.ID, booking.RequesterName, vehicle.RegistrationNumber,
				booking.RouteFrom, booking.RouteTo, booking.Purpose,
				booking.StartPlanned.Format("02 Jan 2006 15:04"),
				booking.EndPlanned.Format("02 Jan 2006 15:04"),
			),
		)

		// Подтверждаем заявителю получение заявки
		if requester.Email != "" {
			emailService.Send(
				fmt.Sprintf("Заявка #%d принята – COSME Vehicle Tracker", booking.ID),
				[]string{requester.Email},
				fmt.Sprintf(
					"Здравствуйте, %s!\n\n"+
						"Ваша заявка на автомобиль зарегистрирована.\n\n"+
						"Заявка #: %d\n"+
						"Автомобиль: %s\n"+
						"Маршрут: %s → %s\n"+
						"С: %s\n"+
						"По: %s\n\n"+
						"Статус: ожидает подтверждения администратором.\n\n"+
						"– COSME Vehicle Tracker",
					requester.FullName, booking.ID, vehicle.RegistrationNumber,
					booking.RouteFrom, booking.RouteTo,
					booking.StartPlanned.Format("02 Jan 2006 15:04"),
					booking.EndPlanned.Format("02 Jan 2006 15:04"),
				),
			)
		}

		c.JSON(http.StatusCreated, toBookingResponse(db, &booking))
	}
}

// BookingList возвращает заявки с фильтром по статусу и пагинацией
func BookingList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}
		perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
		if perPage < 1 || perPage > 100 {
			perPage = 20
		}

		query := db.Model(&models.Booking{})
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении заявок"})
			return
		}

		var bookings []models.Booking
		if err := query.Order("start_planned DESC").
			Offset((page - 1) * perPage).
			Limit(perPage).
			Find(&bookings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении заявок"})
			return
		}

		items := make([]models.BookingResponse, 0, len(bookings))
		for i := range bookings {
			items = append(items, toBookingResponse(db, &bookings[i]))
		}

		c.JSON(http.StatusOK, gin.H{
			"items":    items,
			"total":    total,
			"page":     page,
			"per_page": perPage,
		})
	}
}

// BookingGetByID возвращает заявку по ID
func BookingGetByID(db *gorm.DB) gin.HandlerFunc {
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

		c.JSON(http.StatusOK, toBookingResponse(db, &booking))
	}
}

// BookingApprove подтверждает заявку со статусом pending.
// Перед подтверждением пересечение проверяется повторно (исключая саму заявку):
// после создания этой заявки могла быть подтверждена другая, пересекающаяся с ней.
func BookingApprove(db *gorm.DB) gin.HandlerFunc {
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

		if booking.Status != models.BookingStatusPending {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Подтвердить можно только заявку в статусе pending"})
			return
		}

		conflict, err := models.CheckBookingConflict(db, booking.VehicleID,
			booking.StartPlanned, booking.EndPlanned, booking.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при проверке пересечений"})
			return
		}
		if conflict != nil {
			middleware.BookingConflictsTotal.WithLabelValues("approve").Inc()
			c.JSON(http.StatusConflict, gin.H{"errors": []string{
				"Невозможно подтвердить: " + conflictMessage(conflict),
			}})
			return
		}

		booking.Status = models.BookingStatusApproved
		if err := db.Save(&booking).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при подтверждении заявки"})
			return
		}

		services.RecordAudit(db, c.GetUint("user_id"), c.GetString("username"),
			models.AuditActionApprove, "Booking", booking.ID, "Заявка подтверждена")

		var vehicle models.Vehicle
		db.First(&vehicle, booking.VehicleID)

		// Уведомляем заявителя
		if booking.RequesterID != nil {
			websocket.SendBookingStatusUpdate(*booking.RequesterID, booking.ID, string(booking.Status))

			var requester models.User
			if err := db.First(&requester, *booking.RequesterID).Error; err == nil && requester.Email != "" {
				emailService.Send(
					fmt.Sprintf("Заявка #%d подтверждена – COSME Vehicle Tracker", booking.ID),
					[]string{requester.Email},
					fmt.Sprintf(
						"Здравствуйте, %s!\n\n"+
							"Ваша заявка #%d подтверждена.\n\n"+
							"Автомобиль: %s\n"+
							"Маршрут: %s → %s\n"+
							"С: %s\n"+
							"По: %s\n\n"+
							"– COSME Vehicle Tracker",
						booking.RequesterName, booking.ID, vehicle.RegistrationNumber,
						booking.RouteFrom, booking.RouteTo,
						booking.StartPlanned.Format("02 Jan 2006 15:04"),
						booking.EndPlanned.Format("02 Jan 2006 15:04"),
					),
				)
			}
		}

		// Уведомляем назначенного водителя
		if booking.DriverID != nil {
			websocket.SendBookingStatusUpdate(*booking.DriverID, booking.ID, string(booking.Status))

			var driver models.User
			if err := db.First(&driver, *booking.DriverID).Error; err == nil && driver.Email != "" {
				emailService.Send(
					fmt.Sprintf("Вы назначены водителем на заявку #%d", booking.ID),
					[]string{driver.Email},
					fmt.Sprintf(
						"Здравствуйте, %s!\n\n"+
							"Вы назначены водителем на заявку #%d.\n\n"+
							"Автомобиль: %s\n"+
							"Маршрут: %s → %s\n"+
							"С: %s\n"+
							"По: %s\n\n"+
							"– COSME Vehicle Tracker",
						driver.FullName, booking.ID, vehicle.RegistrationNumber,
						booking.RouteFrom, booking.RouteTo,
						booking.StartPlanned.Format("02 Jan 2006 15:04"),
						booking.EndPlanned.Format("02 Jan 2006 15:04"),
					),
				)
			}
		}

		c.JSON(http.StatusOK, toBookingResponse(db, &booking))
	}
}

// BookingAssignDriver назначает или снимает водителя заявки
func BookingAssignDriver(db *gorm.DB) gin.HandlerFunc {
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

		var req struct {
			DriverID *uint `json:"driver_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		var driver models.User
		if req.DriverID != nil {
			if err := db.First(&driver, *req.DriverID).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Выбранный водитель не существует"})
				return
			}
			if !driver.IsDriver() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Пользователь не является водителем"})
				return
			}
		}

		booking.DriverID = req.DriverID
		if err := db.Save(&booking).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при назначении водителя"})
			return
		}

		if req.DriverID != nil {
			services.RecordAudit(db, c.GetUint("user_id"), c.GetString("username"),
				models.AuditActionAssign, "Booking", booking.ID,
				fmt.Sprintf("Назначен водитель %s", driver.FullName))

			var vehicle models.Vehicle
			db.First(&vehicle, booking.VehicleID)

			if driver.Email != "" {
				emailService.Send(
					fmt.Sprintf("Назначение водителем – заявка #%d", booking.ID),
					[]string{driver.Email},
					fmt.Sprintf(
						"Здравствуйте, %s!\n\n"+
							"Вы назначены водителем на заявку #%d.\n"+
							"Автомобиль: %s\n"+
							"Маршрут: %s → %s\n"+
							"С: %s\n"+
							"По: %s\n\n"+
							"– COSME Vehicle Tracker",
						driver.FullName, booking.ID, vehicle.RegistrationNumber,
						booking.RouteFrom, booking.RouteTo,
						booking.StartPlanned.Format("02 Jan 2006 15:04"),
						booking.EndPlanned.Format("02 Jan 2006 15:04"),
					),
				)
			}
		} else {
			services.RecordAudit(db, c.GetUint("user_id"), c.GetString("username"),
				models.AuditActionAssign, "Booking", booking.ID, "Водитель снят с заявки")
		}

		c.JSON(http.StatusOK, toBookingResponse(db, &booking))
	}
}

// BookingCancel отменяет активную заявку
func BookingCancel(db *gorm.DB) gin.HandlerFunc {
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

		if !booking.IsActive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Эту заявку нельзя отменить"})
			return
		}

		booking.Status = models.BookingStatusCancelled
		if err := db.Save(&booking).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при отмене заявки"})
			return
		}

		services.RecordAudit(db, c.GetUint("user_id"), c.GetString("username"),
			models.AuditActionCancel, "Booking", booking.ID, "Заявка отменена")

		var vehicle models.Vehicle
		db.First(&vehicle, booking.VehicleID)

		body := fmt.Sprintf(
			"Заявка #%d отменена.\n\n"+
				"Автомобиль: %s\n"+
				"Маршрут: %s → %s\n"+
				"С: %s\n"+
				"По: %s\n\n"+
				"– COSME Vehicle Tracker",
			booking.ID, vehicle.RegistrationNumber,
			booking.RouteFrom, booking.RouteTo,
			booking.StartPlanned.Format("02 Jan 2006 15:04"),
			booking.EndPlanned.Format("02 Jan 2006 15:04"),
		)
		subject := fmt.Sprintf("Заявка #%d отменена – COSME Vehicle Tracker", booking.ID)

		if booking.RequesterID != nil {
			websocket.SendBookingStatusUpdate(*booking.RequesterID, booking.ID, string(booking.Status))

			var requester models.User
			if err := db.First(&requester, *booking.RequesterID).Error; err == nil && requester.Email != "" {
				emailService.Send(subject, []string{requester.Email}, body)
			}
		}
		if booking.DriverID != nil {
			websocket.SendBookingStatusUpdate(*booking.DriverID, booking.ID, string(booking.Status))

			var driver models.User
			if err := db.First(&driver, *booking.DriverID).Error; err == nil && driver.Email != "" {
				emailService.Send(subject, []string{driver.Email}, body)
			}
		}

		c.JSON(http.StatusOK, toBookingResponse(db, &booking))
	}
}
