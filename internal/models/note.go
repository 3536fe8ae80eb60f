package models

import "time"

type Note struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	Color     string
	IsPinned  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
