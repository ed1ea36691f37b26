package models

import (
	"time"
)

// Действия, фиксируемые в журнале аудита
const (
	AuditActionCreate   = "create"
	AuditActionEdit     = "edit"
	AuditActionDelete   = "delete"
	AuditActionApprove  = "approve"
	AuditActionCancel   = "cancel"
	AuditActionAssign   = "assign"
	AuditActionComplete = "complete"
)

// AuditLog представляет запись журнала аудита: кто, что и когда изменил.
// Журнал только пополняется, записи не редактируются и не удаляются.
// Username дублируется отдельно от UserID, чтобы запись оставалась читаемой
// после удаления пользователя.
type AuditLog struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     *uint     `json:"user_id,omitempty" gorm:"default:null"`
	Username   string    `json:"username" gorm:"not null;type:varchar(80)"`
	Action     string    `json:"action" gorm:"not null;type:varchar(20)"`
	EntityType string    `json:"entity_type" gorm:"not null;type:varchar(50)"`
	EntityID   *uint     `json:"entity_id,omitempty" gorm:"default:null"`
	Details    string    `json:"details,omitempty" gorm:"type:text;default:''"`
	Timestamp  time.Time `json:"timestamp" gorm:"autoCreateTime;index"`

	User *User `json:"-" gorm:"foreignKey:UserID"`
}
