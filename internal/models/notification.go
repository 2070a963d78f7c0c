package models

import "time"

// NotificationLevel classifies a notification for display.
type NotificationLevel string

const (
	NotifyInfo    NotificationLevel = "INFO"
	NotifySuccess NotificationLevel = "SUCCESS"
	NotifyWarning NotificationLevel = "WARNING"
	NotifyAlert   NotificationLevel = "ALERT"
)

// Notification is a persisted per-user message.
type Notification struct {
	ID        string            `json:"id" badgerhold:"key"`
	UserID    string            `json:"user_id"`
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}
