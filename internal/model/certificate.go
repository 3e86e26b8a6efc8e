package model

import (
	"time"

	"github.com/google/uuid"
)

// Certificate is issued once per learner when every active video is passed.
// Rows are immutable apart from the IsDownloaded flag.
type Certificate struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	UniqueID     uuid.UUID `json:"unique_id"`
	IssueDate    time.Time `json:"issue_date"`
	IsDownloaded bool      `json:"is_downloaded"`
}
