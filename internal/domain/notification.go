package domain

import (
	"encoding/json"
	"time"
)

// Notification kinds emitted by the event, rating and favorite services.
const (
	NotificationEventRated     = "event_rated"
	NotificationEventFavorited = "event_favorited"
	NotificationEventUpdated   = "event_updated"
)

// Notification is a single per-user notification record. Only Read ever changes
// after creation.
type Notification struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Read      bool            `json:"read"`
}

// Pagination describes the window returned by a paged listing. Total is the
// length of the underlying index, not the number of records returned.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	Pagination    Pagination     `json:"pagination"`
}

// MarkAllResult reports the outcome of a best-effort bulk read.
type MarkAllResult struct {
	Message string `json:"message"`
	Updated int    `json:"updated"`
	Failed  int    `json:"failed,omitempty"`
}

type ListNotificationsRequest struct {
	Page  int `validate:"min=1"`
	Limit int `validate:"min=1,max=100"`
}
