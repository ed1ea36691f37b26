package models

import (
	"time"
)

type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "available"   // Свободен
	VehicleStatusInUse       VehicleStatus = "in_use"      // В рейсе
	VehicleStatusMaintenance VehicleStatus = "maintenance" // На обслуживании
)

// Vehicle представляет автомобиль автопарка
type Vehicle struct {
	ID                 uint          `json:"id" gorm:"primaryKey"`
	RegistrationNumber string        `json:"registration_number" gorm:"unique;not null;type:varchar(20)"`
	Make               string        `json:"make" gorm:"not null;type:varchar(50)"`
	Model              string        `json:"model" gorm:"not null;type:varchar(50)"`
	Status             VehicleStatus `json:"status" gorm:"type:varchar(20);default:'available'"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`

	Bookings           []Booking           `json:"-" gorm:"foreignKey:VehicleID"`
	MaintenanceRecords []MaintenanceRecord `json:"-" gorm:"foreignKey:VehicleID"`
}
