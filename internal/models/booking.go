package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"   // Ожидает подтверждения
	BookingStatusApproved  BookingStatus = "approved"  // Подтверждено
	BookingStatusCompleted BookingStatus = "completed" // Завершено
	BookingStatusCancelled BookingStatus = "cancelled" // Отменено
)

// Booking представляет заявку на использование автомобиля в плановом интервале времени
type Booking struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	RequesterName string        `json:"requester_name" gorm:"not null;type:varchar(100)"`
	RequesterID   *uint         `json:"requester_id,omitempty" gorm:"default:null"`
	DriverID      *uint         `json:"driver_id,omitempty" gorm:"default:null"`
	VehicleID     uint          `json:"vehicle_id" gorm:"not null;index"`
	StartPlanned  time.Time     `json:"start_planned" gorm:"not null;index"`
	EndPlanned    time.Time     `json:"end_planned" gorm:"not null"`
	RouteFrom     string        `json:"route_from" gorm:"not null;type:varchar(200)"`
	RouteTo       string        `json:"route_to" gorm:"not null;type:varchar(200)"`
	Purpose       string        `json:"purpose" gorm:"not null;type:text"`
	ActivityCode  string        `json:"activity_code" gorm:"type:varchar(50);default:''"`
	ProjectCode   string        `json:"project_code" gorm:"type:varchar(50);default:''"`
	Status        BookingStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	Requester *User    `json:"-" gorm:"foreignKey:RequesterID"`
	Driver    *User    `json:"-" gorm:"foreignKey:DriverID"`
	Vehicle   *Vehicle `json:"-" gorm:"foreignKey:VehicleID"`
	Trip      *Trip    `json:"-" gorm:"foreignKey:BookingID"`
}

// IsActive сообщает, участвует ли заявка в проверке пересечений
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusApproved
}

// BookingResponse представляет ответ API с информацией о заявке
type BookingResponse struct {
	ID            uint          `json:"id"`
	RequesterName string        `json:"requester_name"`
	RequesterID   *uint         `json:"requester_id,omitempty"`
	DriverID      *uint         `json:"driver_id,omitempty"`
	DriverName    string        `json:"driver_name,omitempty"`
	VehicleID     uint          `json:"vehicle_id"`
	VehicleReg    string        `json:"vehicle_registration,omitempty"`
	StartPlanned  time.Time     `json:"start_planned"`
	EndPlanned    time.Time     `json:"end_planned"`
	RouteFrom     string        `json:"route_from"`
	RouteTo       string        `json:"route_to"`
	Purpose       string        `json:"purpose"`
	ActivityCode  string        `json:"activity_code,omitempty"`
	ProjectCode   string        `json:"project_code,omitempty"`
	Status        BookingStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Trip          *Trip         `json:"trip,omitempty"`
}

// CheckBookingConflict возвращает первую активную (pending или approved) заявку для
// автомобиля vehicleID, плановый интервал которой пересекается с [start, end).
//
// Два интервала пересекаются, когда existing.start < end И existing.end > start:
// стыкующиеся заявки (конец одной равен началу другой) пересечением не считаются.
// Отмененные и завершенные заявки не учитываются. Если excludeBookingID больше нуля,
// заявка с этим ID пропускается, это нужно при повторной проверке самой заявки
// (подтверждение, повторная проверка после вставки).
//
// Возвращает nil, nil если пересечений нет.
func CheckBookingConflict(db *gorm.DB, vehicleID uint, start, end time.Time, excludeBookingID uint) (*Booking, error) {
	query := db.Where(
		"vehicle_id = ? AND status IN ? AND start_planned < ? AND end_planned > ?",
		vehicleID,
		[]BookingStatus{BookingStatusPending, BookingStatusApproved},
		end,
		start,
	)

	if excludeBookingID > 0 {
		query = query.Where("id <> ?", excludeBookingID)
	}

	var conflict Booking
	err := query.Order("start_planned").First(&conflict).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &conflict, nil
}
