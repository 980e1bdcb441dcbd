package ports

import (
	"context"
	"time"
)

// NotificationLevel represents the severity shown to the user
type NotificationLevel string

const (
	NotificationLevelInfo  NotificationLevel = "info"
	NotificationLevelError NotificationLevel = "error"
)

// NotificationType identifies the action that produced a notification
type NotificationType string

const (
	NotificationTypeDataLoaded    NotificationType = "data_loaded"
	NotificationTypeReportSaved   NotificationType = "report_saved"
	NotificationTypeReportDeleted NotificationType = "report_deleted"
	NotificationTypeReportViewed  NotificationType = "report_viewed"
	NotificationTypeReportExport  NotificationType = "report_exported"
	NotificationTypeHistoryLoaded NotificationType = "history_loaded"
)

// Notification represents a user-facing message about an operation outcome
type Notification struct {
	Type      NotificationType       `json:"type"`
	Level     NotificationLevel      `json:"level"`
	Recipient string                 `json:"recipient"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt int64                  `json:"created_at"`
}

// NewNotification creates a notification stamped with the current time
func NewNotification(notificationType NotificationType, level NotificationLevel, recipient, title, message string) *Notification {
	return &Notification{
		Type:      notificationType,
		Level:     level,
		Recipient: recipient,
		Title:     title,
		Message:   message,
		Data:      make(map[string]interface{}),
		CreatedAt: time.Now().Unix(),
	}
}

// NotificationService delivers notifications to the user
type NotificationService interface {
	Notify(ctx context.Context, notification *Notification) error
}
