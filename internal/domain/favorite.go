package domain

import "time"

type Favorite struct {
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	EventID   string    `json:"event_id" dynamodbav:"event_id"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}

type AddFavoriteRequest struct {
	EventID string `json:"event_id" validate:"required"`
}
