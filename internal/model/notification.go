package model

import (
	"time"

	"gorm.io/datatypes"
)

// Severity levels recorded on notifications.
type NotificationType string

const (
	NotifyInfo    NotificationType = "info"
	NotifySuccess NotificationType = "success"
	NotifyError   NotificationType = "error"
)

// NotificationData is the structured payload attached to a notification.
// All fields are optional; absent ones are omitted from the stored JSON.
type NotificationData struct {
	BookingID     string `json:"bookingId,omitempty"`
	ResourceID    string `json:"resourceId,omitempty"`
	ResourceName  string `json:"resourceName,omitempty"`
	Specification string `json:"specification,omitempty"`
	ActorID       string `json:"actorId,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// Notification is a persisted notice to a single recipient. Records are
// write-once: the engine creates them and the delivery surface only reads
// and deletes.
type Notification struct {
	ID        string           `gorm:"primaryKey;size:36" json:"id"`
	UserID    string           `gorm:"index;size:64;not null" json:"userId"`
	Type      NotificationType `gorm:"size:16;not null" json:"type"`
	Title     string           `gorm:"size:255;not null" json:"title"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	Data      datatypes.JSON   `json:"data,omitempty"`
	CreatedAt time.Time        `gorm:"not null" json:"createdAt"`
}
