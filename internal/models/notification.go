package models

import "time"

type NotificationType string

const (
	NotificationInfo     NotificationType = "info"
	NotificationSuccess  NotificationType = "success"
	NotificationWarning  NotificationType = "warning"
	NotificationError    NotificationType = "error"
	NotificationSecurity NotificationType = "security"
)

type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Title     string
	Message   string
	Link      *string
	IsRead    bool
	CreatedAt time.Time
}
