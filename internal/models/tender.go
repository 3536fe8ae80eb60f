package models

import "time"

type TenderStatus string

const (
	TenderStatusOpen   TenderStatus = "open"
	TenderStatusClosed TenderStatus = "closed"
	TenderStatusDraft  TenderStatus = "draft"
)

type Tender struct {
	ID          string
	Reference   string
	Title       string
	Description string
	Category    string
	BudgetCents int64
	Deadline    *time.Time
	Status      TenderStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
