package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"vehicle-tracker/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func vehicleRouter(db *gorm.DB, user *models.User) *gin.Engine {
	r := gin.New()
	r.Use(authAs(user))
	r.GET("/vehicles", VehicleList(db))
	r.POST("/vehicles", VehicleCreate(db))
	r.PUT("/vehicles/:id", VehicleUpdate(db))
	r.DELETE("/vehicles/:id", VehicleDelete(db))
	return r
}

func TestVehicleCreateNormalizesRegistration(t *testing.T) {
	db := setupTestDB(t)
	admin := createTestUser(t, db, "admin10", models.RoleAdmin)
	router := vehicleRouter(db, admin)

	w := performJSON(t, router, "POST", "/vehicles", map[string]interface{}{
		"registration_number": "  kaa 300a ",
		"make":                "Toyota",
		"model":               "Land Cruiser",
	})
	expectStatus(t, w, http.StatusCreated)

	var v models.Vehicle
	decodeJSON(t, w, &v)
	if v.RegistrationNumber != "KAA 300A" {
		t.Fatalf("номер должен приводиться к верхнему регистру, получен %q", v.RegistrationNumber)
	}
	if v.Status != models.VehicleStatusAvailable {
		t.Fatalf("статус по умолчанию available, получен %q", v.Status)
	}
}

func TestVehicleCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	admin := createTestUser(t, db, "admin11", models.RoleAdmin)
	createTestVehicle(t, db, "KAA 301B", models.VehicleStatusAvailable)
	router := vehicleRouter(db, admin)

	// Дубликат номера
	w := performJSON(t, router, "POST", "/vehicles", map[string]interface{}{
		"registration_number": "kaa 301b",
		"make":                "Toyota",
		"model":               "Hilux",
	})
	expectStatus(t, w, http.StatusBadRequest)

	// Слишком короткий номер, пустые марка и модель
	w = performJSON(t, router, "POST", "/vehicles", map[string]interface{}{
		"registration_number": "AB",
	})
	expectStatus(t, w, http.StatusBadRequest)

	var resp struct {
		Errors []string `json:"errors"`
	}
	decodeJSON(t, w, &resp)
	if len(resp.Errors) != 3 {
		t.Fatalf("ожидались 3 ошибки, получено: %v", resp.Errors)
	}

	// Новый автомобиль не может быть сразу in_use
	w = performJSON(t, router, "POST", "/vehicles", map[string]interface{}{
		"registration_number": "KAA 302C",
		"make":                "Toyota",
		"model":               "Hilux",
		"status":              "in_use",
	})
	expectStatus(t, w, http.StatusBadRequest)
}

func TestVehicleUpdate(t *testing.T) {
	db := setupTestDB(t)
	admin := createTestUser(t, db, "admin12", models.RoleAdmin)
	vehicle := createTestVehicle(t, db, "KAA 303D", models.VehicleStatusAvailable)
	router := vehicleRouter(db, admin)

	// При редактировании статус in_use допустим
	w := performJSON(t, router, "PUT", fmt.Sprintf("/vehicles/%d", vehicle.ID), map[string]interface{}{
		"registration_number": "KAA 303D",
		"make":                "Toyota",
		"model":               "Prado",
		"status":              "in_use",
	})
	expectStatus(t, w, http.StatusOK)

	var v models.Vehicle
	decodeJSON(t, w, &v)
	if v.Model != "Prado" || v.Status != models.VehicleStatusInUse {
		t.Fatalf("обновление не применилось: %+v", v)
	}
}

func TestVehicleDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	admin := createTestUser(t, db, "admin13", models.RoleAdmin)
	vehicle := createTestVehicle(t, db, "KAA 304E", models.VehicleStatusAvailable)
	router := vehicleRouter(db, admin)

	start := time.Now().Add(time.Hour)
	booking := models.Booking{
		RequesterName: admin.FullName, RequesterID: &admin.ID, VehicleID: vehicle.ID,
		StartPlanned: start, EndPlanned: start.Add(2 * time.Hour),
		RouteFrom: "A", RouteTo: "B", Purpose: "x", Status: models.BookingStatusApproved,
	}
	if err := db.Create(&booking).Error; err != nil {
		t.Fatalf("создание заявки: %v", err)
	}
	startActual := time.Now()
	odo := 100
	trip := models.Trip{BookingID: booking.ID, StartActual: &startActual, OdometerStart: &odo}
	if err := db.Create(&trip).Error; err != nil {
		t.Fatalf("создание рейса: %v", err)
	}
	record := models.MaintenanceRecord{
		VehicleID: vehicle.ID, Type: models.MaintenanceTypeRoutine,
		Description: "ТО", ScheduledDate: time.Now(),
		Status: models.MaintenanceStatusScheduled,
	}
	if err := db.Create(&record).Error; err != nil {
		t.Fatalf("создание записи об обслуживании: %v", err)
	}

	w := performJSON(t, router, "DELETE", fmt.Sprintf("/vehicles/%d", vehicle.ID), nil)
	expectStatus(t, w, http.StatusOK)

	var count int64
	db.Model(&models.Vehicle{}).Count(&count)
	if count != 0 {
		t.Fatalf("автомобиль не удален")
	}
	db.Model(&models.Booking{}).Count(&count)
	if count != 0 {
		t.Fatalf("заявки автомобиля должны удаляться вместе с ним")
	}
	db.Model(&models.Trip{}).Count(&count)
	if count != 0 {
		t.Fatalf("рейсы автомобиля должны удаляться вместе с ним")
	}
	db.Model(&models.MaintenanceRecord{}).Count(&count)
	if count != 0 {
		t.Fatalf("записи об обслуживании должны удаляться вместе с автомобилем")
	}
}
