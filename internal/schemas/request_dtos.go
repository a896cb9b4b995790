// Package schemas defines the request and response bodies of the HTTP API.
package schemas

// RegistrationRequest is a struct that represents a registration request
// Email is required and must be a valid email
// Password is required and must be at least 8 characters
// DisplayName is required and must be less than 50 characters
// AgeRange is optional and must be one of the supported brackets
type RegistrationRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=72,password_validation"`
	DisplayName string `json:"displayName" validate:"required,max=50" sanitize:"strict"`
	AgeRange    string `json:"ageRange" validate:"omitempty,oneof=18-24 25-34 35-44 45-54 55-64 65+"`
}

// LoginRequest is a struct that represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PreferenceRequest sets the weight of a category, between 0 and 10.
type PreferenceRequest struct {
	Weight *float64 `json:"weight" validate:"required,gte=0,lte=10"`
}

// ReviewRequest is a thumbs up (true) or down (false) with a comment.
type ReviewRequest struct {
	Rating  *bool  `json:"rating" validate:"required"`
	Comment string `json:"comment" validate:"required,max=1000" sanitize:"strict"`
}
