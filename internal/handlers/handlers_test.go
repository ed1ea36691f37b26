package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"vehicle-tracker/internal/models"
	"vehicle-tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("открытие тестовой БД: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("доступ к sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{}, &models.Vehicle{}, &models.Booking{},
		&models.Trip{}, &models.MaintenanceRecord{}, &models.AuditLog{},
	); err != nil {
		t.Fatalf("миграция тестовой БД: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()

	hash, err := utils.HashPassword("secret123")
	if err != nil {
		t.Fatalf("хеширование пароля: %v", err)
	}

	user := &models.User{
		Username:     username,
		Email:        username + "@example.org",
		PasswordHash: hash,
		FullName:     "Test " + username,
		Role:         role,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("создание пользователя: %v", err)
	}
	return user
}

func createTestVehicle(t *testing.T, db *gorm.DB, reg string, status models.VehicleStatus) *models.Vehicle {
	t.Helper()

	v := &models.Vehicle{
		RegistrationNumber: reg,
		Make:               "Toyota",
		Model:              "Hilux",
		Status:             status,
	}
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("создание автомобиля: %v", err)
	}
	return v
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("разбор даты %q: %v", value, err)
	}
	return d
}

// authAs подставляет данные пользователя в контекст, как это делает JWTAuth
func authAs(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", user.ID)
		c.Set("username", user.Username)
		c.Set("role", user.Role)
	}
}

func performJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("кодирование тела запроса: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("разбор ответа %q: %v", w.Body.String(), err)
	}
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("ожидался статус %d, получен %d: %s", want, w.Code, w.Body.String())
	}
}
