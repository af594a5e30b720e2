package models

import (
	"time"
)

// NotificationType classifies a notification for display
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Valid reports whether t is one of the known types
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInfo, NotificationSuccess, NotificationWarning, NotificationError:
		return true
	}
	return false
}

// Notification is addressed to a user's AuthUUID, not to the numeric UserID
type Notification struct {
	NotificationID uint             `gorm:"column:NotificationID;primaryKey;autoIncrement" json:"NotificationID"`
	UserID         string           `gorm:"column:UserID;index;type:varchar(36);not null" json:"UserID"`
	Message        string           `gorm:"column:Message;type:text" json:"Message"`
	Type           NotificationType `gorm:"column:Type;type:varchar(16);default:'info'" json:"Type"`
	IsRead         bool             `gorm:"column:IsRead;default:false" json:"IsRead"`
	CreatedAt      time.Time        `gorm:"column:CreatedAt;index" json:"CreatedAt"`
}

// TableName specifies the table name for Notification model
func (Notification) TableName() string {
	return "Notification"
}

// All returns every model for schema migration
func All() []interface{} {
	return []interface{}{
		&User{},
		&Admin{},
		&Inspector{},
		&Equipment{},
		&Inspection{},
		&PhotoReport{},
		&Finding{},
		&Recommendation{},
		&Report{},
		&Team{},
		&InspectorTeam{},
		&Notification{},
	}
}
