package schemas

// ErrorDTO is a struct that represents an error response
// Error is the custom error, see CustomError
type ErrorDTO struct {
	Error CustomError `json:"error"`
}

// MessageDTO is the body of the API prefix stub.
type MessageDTO struct {
	Message string `json:"message"`
}

// NotFoundDTO is returned for unmatched routes.
// Path echoes the request URI as received.
type NotFoundDTO struct {
	Message string `json:"message"`
	Path    string `json:"path"`
}

// HealthDTO is the response of the health endpoint.
// Timestamp is formatted as RFC 3339 in UTC.
type HealthDTO struct {
	Status      string       `json:"status"`
	Timestamp   string       `json:"timestamp"`
	Environment string       `json:"environment"`
	Databases   DatabasesDTO `json:"databases"`
}

// DatabasesDTO holds the connection status of both stores, one of
// connected, disconnected or not_initialized.
type DatabasesDTO struct {
	MongoDB  string `json:"mongodb"`
	Postgres string `json:"postgres"`
}

// TokenDTO is a struct that represents a token response
// Token is the JWT used for auth
type TokenDTO struct {
	Token string `json:"token"`
}

// ProfileDTO is the public part of a user.
type ProfileDTO struct {
	DisplayName    string  `json:"displayName"`
	Bio            *string `json:"bio"`
	AgeRange       *string `json:"ageRange"`
	ProfilePicture *string `json:"profilePicture"`
}

// UserDTO is a struct that represents a user response
type UserDTO struct {
	UserId            string     `json:"userId"`
	Email             string     `json:"email"`
	Role              string     `json:"role"`
	IsEmailVerified   bool       `json:"isEmailVerified"`
	IsBusinessAccount bool       `json:"isBusinessAccount"`
	Profile           ProfileDTO `json:"profile"`
	FollowerCount     int        `json:"followerCount"`
	FollowingCount    int        `json:"followingCount"`
	CreatedAt         string     `json:"createdAt"`
}

// RelationshipDTO is one entry of a follower or following list.
type RelationshipDTO struct {
	UserId         string  `json:"userId"`
	DisplayName    string  `json:"displayName"`
	ProfilePicture *string `json:"profilePicture"`
	Since          string  `json:"since"`
}

// SavedActivityDTO is an activity bookmarked by a user.
type SavedActivityDTO struct {
	ActivityId string `json:"activityId"`
	SavedAt    string `json:"savedAt"`
}

// PreferenceDTO is the weight a user gives to a category.
type PreferenceDTO struct {
	CategoryId string  `json:"categoryId"`
	Weight     float64 `json:"weight"`
	UpdatedAt  string  `json:"updatedAt"`
}

// ReviewStatsDTO counts the thumbs of an activity.
type ReviewStatsDTO struct {
	ThumbsUp   int `json:"thumbsUp"`
	ThumbsDown int `json:"thumbsDown"`
}

// RecordsDTO wraps an unpaginated list.
type RecordsDTO struct {
	Records interface{} `json:"records"`
}

// PaginatedResponse is a struct that represents a paginated response
// Records is the list of records
// Pagination is the pagination information, see Pagination
type PaginatedResponse struct {
	Records    interface{} `json:"records"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination is a struct that represents pagination information
// Offset is the offset of the current page
// Limit is the limit of records per page
// Records is the total number of records
type Pagination struct {
	Offset  int `json:"offset"`
	Limit   int `json:"limit"`
	Records int `json:"records"`
}

// FollowDTO is returned when a follow was created.
type FollowDTO struct {
	FollowId   string `json:"followId"`
	FollowerId string `json:"followerId"`
	FollowedId string `json:"followedId"`
	CreatedAt  string `json:"createdAt"`
}
