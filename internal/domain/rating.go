package domain

import "time"

type Rating struct {
	RatingID  string    `json:"id" dynamodbav:"rating_id"`
	EventID   string    `json:"event_id" dynamodbav:"event_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Rating    int       `json:"rating" dynamodbav:"rating"`
	Review    string    `json:"review,omitempty" dynamodbav:"review"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateRatingRequest struct {
	EventID string `json:"event_id" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Review  string `json:"review" validate:"max=2000"`
}

type UpdateRatingRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Review string `json:"review" validate:"max=2000"`
}
