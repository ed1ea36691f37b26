package models

import (
	"time"
)

// Trip представляет фактическое выполнение подтвержденной заявки:
// время выезда и возвращения, показания одометра и расход топлива.
// У заявки может быть не более одной записи о рейсе.
type Trip struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	BookingID     uint       `json:"booking_id" gorm:"unique;not null"`
	StartActual   *time.Time `json:"start_actual,omitempty" gorm:"default:null"`
	EndActual     *time.Time `json:"end_actual,omitempty" gorm:"default:null"`
	OdometerStart *int       `json:"odometer_start,omitempty" gorm:"default:null"`
	OdometerEnd   *int       `json:"odometer_end,omitempty" gorm:"default:null"`
	Distance      *int       `json:"distance,omitempty" gorm:"default:null"`
	FuelUsed      *float64   `json:"fuel_used,omitempty" gorm:"default:null"`
	FuelCost      *float64   `json:"fuel_cost,omitempty" gorm:"default:null"`
	Remarks       string     `json:"remarks,omitempty" gorm:"type:text;default:''"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Booking *Booking `json:"-" gorm:"foreignKey:BookingID"`
}

// IsFinished сообщает, завершен ли рейс
func (t *Trip) IsFinished() bool {
	return t.EndActual != nil
}
