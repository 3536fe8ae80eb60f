package models

import "time"

type UserSettings struct {
	UserID             string
	Theme              string
	Language           string
	Timezone           string
	EmailNotifications bool
	SecurityAlerts     bool
	UpdatedAt          time.Time
}

// DefaultSettings is the row created lazily on first read.
func DefaultSettings(userID string) UserSettings {
	return UserSettings{
		UserID:             userID,
		Theme:              "light",
		Language:           "en",
		Timezone:           "UTC",
		EmailNotifications: true,
		SecurityAlerts:     true,
	}
}
