package domain

import "time"

// Role names carried in JWT claims.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	UserID              string     `json:"id" dynamodbav:"user_id"`
	Email               string     `json:"email" dynamodbav:"email"`
	PasswordHash        string     `json:"-" dynamodbav:"password_hash"`
	FirstName           string     `json:"first_name" dynamodbav:"first_name"`
	LastName            string     `json:"last_name" dynamodbav:"last_name"`
	Role                string     `json:"role" dynamodbav:"role"`
	Location            *GeoPoint  `json:"location,omitempty" dynamodbav:"location,omitempty"`
	PreferredCategories []string   `json:"preferred_categories" dynamodbav:"preferred_categories"`
	PreferredLanguage   string     `json:"preferred_language" dynamodbav:"preferred_language"`
	IsActive            bool       `json:"is_active" dynamodbav:"is_active"`
	LastLogin           *time.Time `json:"last_login,omitempty" dynamodbav:"last_login,omitempty"`
	CreatedAt           time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt           time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat" dynamodbav:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" dynamodbav:"lng" validate:"min=-180,max=180"`
}

type RegisterRequest struct {
	Email               string    `json:"email" validate:"required,email"`
	Password            string    `json:"password" validate:"required,min=8,max=72"`
	FirstName           string    `json:"first_name" validate:"required"`
	LastName            string    `json:"last_name" validate:"required"`
	Location            *GeoPoint `json:"location"`
	PreferredCategories []string  `json:"preferred_categories"`
	PreferredLanguage   string    `json:"preferred_language" validate:"omitempty,oneof=en es fr"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	FirstName           *string   `json:"first_name" validate:"omitempty,min=1"`
	LastName            *string   `json:"last_name" validate:"omitempty,min=1"`
	Location            *GeoPoint `json:"location"`
	PreferredCategories *[]string `json:"preferred_categories"`
	PreferredLanguage   *string   `json:"preferred_language" validate:"omitempty,oneof=en es fr"`
}

// Actor is the authenticated caller an operation runs on behalf of.
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
