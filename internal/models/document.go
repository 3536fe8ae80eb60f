package models

import "time"

type Document struct {
	ID           string
	UserID       string
	OriginalName string
	ObjectKey    string
	MimeType     string
	SizeBytes    int64
	CreatedAt    time.Time
}
