package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"vehicle-tracker/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func maintenanceRouter(db *gorm.DB, user *models.User) *gin.Engine {
	r := gin.New()
	r.Use(authAs(user))
	r.GET("/maintenance", MaintenanceList(db))
	r.POST("/maintenance", MaintenanceCreate(db))
	r.PUT("/maintenance/:id/complete", MaintenanceComplete(db))
	r.PUT("/maintenance/:id/cancel", MaintenanceCancel(db))
	return r
}

func TestMaintenanceCreateSetsVehicleStatus(t *testing.T) {
	db := setupTestDB(t)
	admin := createTestUser(t, db, "admin20", models.RoleAdmin)
	vehicle := createTestVehicle(t, db, "KAA 400A", models.VehicleStatusAvailable)
	router := maintenanceRouter(db, admin)

	w := performJSON(t, router, "POST", "/maintenance", map[string]interface{}{
		"vehicle_id":       vehicle.ID,
		"maintenance_type": "repair",
		"description":      "Замена тормозных колодок",
		"scheduled_date":   "2026-09-15",
		"cost":             15000.0,
		"set_maintenance":  true,
	})
	expectStatus(t, w, http.StatusCreated)

	var record models.MaintenanceRecord
	decodeJSON(t, w, &record)
	if record.Status != models.MaintenanceStatusScheduled {
		t.Fatalf("новая запись должна быть scheduled, получен %q", record.Status)
	}

	var v models.Vehicle
	db.First(&v, vehicle.ID)
	if v.Status != models.VehicleStatusMaintenance {
		t.Fatalf("автомобиль должен перейти на обслуживание, получен %q", v.Status)
	}
}

func TestMaintenanceCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	admin := createTestUser(t, db, "admin21", models.RoleAdmin)
	router := maintenanceRouter(db, admin)

	w := performJSON(t, router, "POST", "/maintenance", map[string]interface{}{
		"maintenance_type": "unknown",
		"scheduled_date":   "15.09.2026",
		"cost":             -10.0,
	})
	expectStatus(t, w, http.StatusBadRequest)

	var resp struct {
		Errors []string `json:"errors"`
	}
	decodeJSON(t, w, &resp)
	if len(resp.Errors) < 4 {
		t.Fatalf("ожидались ошибки по всем полям, получено: %v", resp.Errors)
	}
}

func TestMaintenanceCompleteFreesVehicle(t *testing.T) {
	db := setupTestDB(t)
	admin := createTestUser(t, db, "admin22", models.RoleAdmin)
	vehicle := createTestVehicle(t, db, "KAA 401B", models.VehicleStatusMaintenance)
	router := maintenanceRouter(db, admin)

	record := models.MaintenanceRecord{
		VehicleID: vehicle.ID, Type: models.MaintenanceTypeRoutine,
		Description: "ТО-2", ScheduledDate: mustDate(t, "2026-09-10"),
		Status: models.MaintenanceStatusScheduled,
	}
	if err := db.Create(&record).Error; err != nil {
		t.Fatalf("создание записи: %v", err)
	}

	w := performJSON(t, router, "PUT", fmt.Sprintf("/maintenance/%d/complete", record.ID),
		map[string]interface{}{"cost": 22000.0})
	expectStatus(t, w, http.StatusOK)

	var updated models.MaintenanceRecord
	decodeJSON(t, w, &updated)
	if updated.Status != models.MaintenanceStatusCompleted || updated.CompletedDate == nil {
		t.Fatalf("запись должна быть completed с датой завершения: %+v", updated)
	}
	if updated.Cost == nil || *updated.Cost != 22000.0 {
		t.Fatalf("стоимость должна обновиться, получено %v", updated.Cost)
	}

	var v models.Vehicle
	db.First(&v, vehicle.ID)
	if v.Status != models.VehicleStatusAvailable {
		t.Fatalf("автомобиль должен освободиться, получен %q", v.Status)
	}
}

func TestMaintenanceCancelKeepsBusyVehicle(t *testing.T) {
	db := setupTestDB(t)
	admin := createTestUser(t, db, "admin23", models.RoleAdmin)
	// Автомобиль в рейсе: отмена обслуживания не должна его "освобождать"
	vehicle := createTestVehicle(t, db, "KAA 402C", models.VehicleStatusInUse)
	router := maintenanceRouter(db, admin)

	record := models.MaintenanceRecord{
		VehicleID: vehicle.ID, Type: models.MaintenanceTypeInspection,
		Description: "Техосмотр", ScheduledDate: mustDate(t, "2026-09-20"),
		Status: models.MaintenanceStatusScheduled,
	}
	if err := db.Create(&record).Error; err != nil {
		t.Fatalf("создание записи: %v", err)
	}

	w := performJSON(t, router, "PUT", fmt.Sprintf("/maintenance/%d/cancel", record.ID), nil)
	expectStatus(t, w, http.StatusOK)

	var v models.Vehicle
	db.First(&v, vehicle.ID)
	if v.Status != models.VehicleStatusInUse {
		t.Fatalf("статус занятого автомобиля не должен меняться, получен %q", v.Status)
	}
}

func TestMaintenanceListFilter(t *testing.T) {
	db := setupTestDB(t)
	admin := createTestUser(t, db, "admin24", models.RoleAdmin)
	vehicle := createTestVehicle(t, db, "KAA 403D", models.VehicleStatusAvailable)
	router := maintenanceRouter(db, admin)

	for _, status := range []models.MaintenanceStatus{
		models.MaintenanceStatusScheduled,
		models.MaintenanceStatusScheduled,
		models.MaintenanceStatusCompleted,
	} {
		record := models.MaintenanceRecord{
			VehicleID: vehicle.ID, Type: models.MaintenanceTypeOther,
			Description: "x", ScheduledDate: mustDate(t, "2026-09-01"),
			Status: status,
		}
		if err := db.Create(&record).Error; err != nil {
			t.Fatalf("создание записи: %v", err)
		}
	}

	w := performJSON(t, router, "GET", "/maintenance?status=scheduled", nil)
	expectStatus(t, w, http.StatusOK)

	var records []models.MaintenanceRecord
	decodeJSON(t, w, &records)
	if len(records) != 2 {
		t.Fatalf("ожидались 2 записи scheduled, получено %d", len(records))
	}
}
