package models

import (
	"time"
)

type MaintenanceType string

const (
	MaintenanceTypeRoutine    MaintenanceType = "routine"    // Плановое ТО
	MaintenanceTypeRepair     MaintenanceType = "repair"     // Ремонт
	MaintenanceTypeInspection MaintenanceType = "inspection" // Техосмотр
	MaintenanceTypeTyre       MaintenanceType = "tyre"       // Шины
	MaintenanceTypeOther      MaintenanceType = "other"      // Прочее
)

type MaintenanceStatus string

const (
	MaintenanceStatusScheduled  MaintenanceStatus = "scheduled"   // Запланировано
	MaintenanceStatusInProgress MaintenanceStatus = "in_progress" // Выполняется
	MaintenanceStatusCompleted  MaintenanceStatus = "completed"   // Выполнено
	MaintenanceStatusCancelled  MaintenanceStatus = "cancelled"   // Отменено
)

// ValidMaintenanceType проверяет тип обслуживания по списку допустимых
func ValidMaintenanceType(t string) bool {
	switch MaintenanceType(t) {
	case MaintenanceTypeRoutine, MaintenanceTypeRepair, MaintenanceTypeInspection,
		MaintenanceTypeTyre, MaintenanceTypeOther:
		return true
	}
	return false
}

// MaintenanceRecord представляет запись о техническом обслуживании автомобиля
type MaintenanceRecord struct {
	ID            uint              `json:"id" gorm:"primaryKey"`
	VehicleID     uint              `json:"vehicle_id" gorm:"not null;index"`
	Type          MaintenanceType   `json:"maintenance_type" gorm:"column:maintenance_type;not null;type:varchar(50)"`
	Description   string            `json:"description" gorm:"not null;type:text"`
	ScheduledDate time.Time         `json:"scheduled_date" gorm:"not null"`
	CompletedDate *time.Time        `json:"completed_date,omitempty" gorm:"default:null"`
	Cost          *float64          `json:"cost,omitempty" gorm:"default:null"`
	Status        MaintenanceStatus `json:"status" gorm:"type:varchar(20);default:'scheduled'"`
	CreatedByID   *uint             `json:"created_by_id,omitempty" gorm:"default:null"`
	CreatedAt     time.Time         `json:"created_at"`

	Vehicle   *Vehicle `json:"-" gorm:"foreignKey:VehicleID"`
	CreatedBy *User    `json:"-" gorm:"foreignKey:CreatedByID"`
}
