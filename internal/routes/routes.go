package routes

import (
	"time"

	"vehicle-tracker/internal/handlers"
	"vehicle-tracker/internal/middleware"
	"vehicle-tracker/internal/models"
	"vehicle-tracker/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

func SetupRoutes(api *gin.RouterGroup, db *gorm.DB, rdb *redis.Client) {
	// Публичные маршруты для аутентификации, ограниченные по частоте запросов
	auth := api.Group("/auth")
	auth.Use(middleware.RateLimit(rdb, 10, time.Minute))
	{
		auth.POST("/register", handlers.AuthRegister(db))
		auth.POST("/login", handlers.AuthLogin(db))
		auth.POST("/forgot-password", handlers.AuthForgotPassword(db))
		auth.POST("/reset-password", handlers.AuthResetPassword(db))
	}

	// Защищенные маршруты (требуют аутентификации)
	protected := api.Group("")
	protected.Use(middleware.JWTAuth())
	{
		// Текущий пользователь и профиль
		protected.GET("/user", handlers.GetCurrentUser(db))
		protected.PUT("/profile", handlers.ProfileUpdate(db))
		protected.PUT("/profile/password", handlers.ProfileChangePassword(db))

		// Сводка и календарь
		protected.GET("/dashboard", handlers.Dashboard(db))
		protected.GET("/calendar/events", handlers.CalendarEvents(db))

		// Роуты для автомобилей
		protected.GET("/vehicles", handlers.VehicleList(db))
		protected.POST("/vehicles", middleware.RequireRole(models.RoleAdmin), handlers.VehicleCreate(db))
		protected.PUT("/vehicles/:id", middleware.RequireRole(models.RoleAdmin), handlers.VehicleUpdate(db))
		protected.DELETE("/vehicles/:id", middleware.RequireRole(models.RoleAdmin), handlers.VehicleDelete(db))

		// Роуты для заявок
		protected.GET("/bookings", handlers.BookingList(db))
		protected.POST("/bookings", handlers.BookingCreate(db))
		protected.GET("/bookings/:id", handlers.BookingGetByID(db))
		protected.PUT("/bookings/:id/approve", middleware.RequireRole(models.RoleAdmin), handlers.BookingApprove(db))
		protected.PUT("/bookings/:id/driver", middleware.RequireRole(models.RoleAdmin), handlers.BookingAssignDriver(db))
		protected.PUT("/bookings/:id/cancel", handlers.BookingCancel(db))

		// Роуты для рейсов
		protected.POST("/bookings/:id/trip/start", handlers.TripStart(db))
		protected.POST("/bookings/:id/trip/end", handlers.TripEnd(db))

		// Роуты для обслуживания
		protected.GET("/maintenance", handlers.MaintenanceList(db))
		protected.POST("/maintenance", middleware.RequireRole(models.RoleAdmin), handlers.MaintenanceCreate(db))
		protected.PUT("/maintenance/:id/complete", middleware.RequireRole(models.RoleAdmin), handlers.MaintenanceComplete(db))
		protected.PUT("/maintenance/:id/cancel", middleware.RequireRole(models.RoleAdmin), handlers.MaintenanceCancel(db))

		// Отчеты
		protected.GET("/reports/vehicle", handlers.VehicleReport(db))
		protected.GET("/reports/vehicle/export", handlers.VehicleReportExport(db))
		protected.GET("/reports/budget", handlers.BudgetReport(db))

		// Управление пользователями (только администратор)
		admin := protected.Group("")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/users", handlers.UserList(db))
			admin.PUT("/users/:id", handlers.UserUpdate(db))
			admin.PUT("/users/:id/reset-password", handlers.UserResetPassword(db))
			admin.GET("/audit", handlers.AuditList(db))
		}

		// WebSocket подключение для получения обновлений в реальном времени
		protected.GET("/ws", websocket.Handler())
	}
}
