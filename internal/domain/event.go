package domain

import "time"

// Event statuses.
const (
	EventDraft     = "draft"
	EventPublished = "published"
	EventCancelled = "cancelled"
	EventCompleted = "completed"
)

type Event struct {
	EventID       string    `json:"id" dynamodbav:"event_id"`
	Title         string    `json:"title" dynamodbav:"title"`
	Description   string    `json:"description" dynamodbav:"description"`
	Location      GeoPoint  `json:"location" dynamodbav:"location"`
	Address       string    `json:"address" dynamodbav:"address"`
	StartDate     time.Time `json:"start_date" dynamodbav:"start_date"`
	EndDate       time.Time `json:"end_date" dynamodbav:"end_date"`
	Capacity      *int      `json:"capacity,omitempty" dynamodbav:"capacity,omitempty"`
	Price         *float64  `json:"price,omitempty" dynamodbav:"price,omitempty"`
	ImageURL      string    `json:"image_url,omitempty" dynamodbav:"image_url"`
	Status        string    `json:"status" dynamodbav:"status"`
	AverageRating float64   `json:"average_rating" dynamodbav:"average_rating"`
	TotalRatings  int       `json:"total_ratings" dynamodbav:"total_ratings"`
	CreatorID     string    `json:"creator_id" dynamodbav:"creator_id"`
	CategoryIDs   []string  `json:"category_ids" dynamodbav:"category_ids"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"required"`
	Location    GeoPoint  `json:"location"`
	Address     string    `json:"address" validate:"required"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required"`
	Capacity    *int      `json:"capacity" validate:"omitempty,min=1"`
	Price       *float64  `json:"price" validate:"omitempty,min=0"`
	ImageURL    string    `json:"image_url" validate:"omitempty,url"`
	CategoryIDs []string  `json:"category_ids"`
}

type UpdateEventRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,min=1"`
	Location    *GeoPoint  `json:"location"`
	Address     *string    `json:"address" validate:"omitempty,min=1"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Capacity    *int       `json:"capacity" validate:"omitempty,min=1"`
	Price       *float64   `json:"price" validate:"omitempty,min=0"`
	ImageURL    *string    `json:"image_url" validate:"omitempty,url"`
	Status      *string    `json:"status" validate:"omitempty,oneof=draft published cancelled completed"`
	CategoryIDs *[]string  `json:"category_ids"`
}

// EventFilter narrows an event listing. Zero values mean "no constraint".
type EventFilter struct {
	Category  string
	Search    string
	Status    string `validate:"omitempty,oneof=draft published cancelled completed"`
	StartDate *time.Time
	EndDate   *time.Time
	Page      int `validate:"min=1"`
	Limit     int `validate:"min=1,max=100"`
}

type EventPage struct {
	Events     []Event        `json:"events"`
	Pagination PageCountStats `json:"pagination"`
}

// PageCountStats is the page-count flavour of pagination used by event listings.
type PageCountStats struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}
