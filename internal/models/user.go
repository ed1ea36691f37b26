package models

import (
	"time"
)

// Роли пользователей
const (
	RoleAdmin     = "admin"     // Администратор автопарка
	RoleDriver    = "driver"    // Водитель
	RoleRequester = "requester" // Заказчик поездки
)

type User struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	Username           string     `json:"username" gorm:"unique;not null;type:varchar(80)"`
	Email              string     `json:"email" gorm:"unique;not null;type:varchar(120)"`
	PasswordHash       string     `json:"-" gorm:"not null;type:varchar(256)"`
	FullName           string     `json:"full_name" gorm:"not null;type:varchar(120)"`
	Role               string     `json:"role" gorm:"type:varchar(20);default:'requester'"`
	IsActive           bool       `json:"is_active" gorm:"default:true"`
	MustChangePassword bool       `json:"must_change_password" gorm:"default:false"`
	ResetToken         *string    `json:"-" gorm:"type:varchar(64);default:null"`
	ResetTokenExpiry   *time.Time `json:"-" gorm:"default:null"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsDriver() bool {
	return u.Role == RoleDriver
}

// UserResponse представляет ответ API с информацией о пользователе
type UserResponse struct {
	ID                 uint      `json:"id"`
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	FullName           string    `json:"full_name"`
	Role               string    `json:"role"`
	IsActive           bool      `json:"is_active"`
	MustChangePassword bool      `json:"must_change_password"`
	CreatedAt          time.Time `json:"created_at"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.Email,
		FullName:           u.FullName,
		Role:               u.Role,
		IsActive:           u.IsActive,
		MustChangePassword: u.MustChangePassword,
		CreatedAt:          u.CreatedAt,
	}
}
