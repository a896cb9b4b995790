package schemas

// CustomError is the error body returned to clients.
// Code is a stable identifier, Message is meant for humans.
type CustomError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

var (
	BadRequest = &CustomError{
		Message: "The request body is invalid. Please check the request body and try again.",
		Code:    "ERR-001",
	}
	EmailTaken = &CustomError{
		Message: "The email is already registered. Please log in or use another email.",
		Code:    "ERR-002",
	}
	InvalidCredentials = &CustomError{
		Message: "The credentials are invalid. Please check the credentials and try again.",
		Code:    "ERR-003",
	}
	UserNotFound = &CustomError{
		Message: "The user was not found. Please check the user id and try again.",
		Code:    "ERR-004",
	}
	AccountLocked = &CustomError{
		Message: "The account is temporarily locked after too many failed logins. Please try again later.",
		Code:    "ERR-005",
	}
	CategoryNotFound = &CustomError{
		Message: "The category was not found. Please check the name and try again.",
		Code:    "ERR-006",
	}
	ActivityNotFound = &CustomError{
		Message: "The activity was not found. Please check the activity id and try again.",
		Code:    "ERR-007",
	}
	AlreadyFollowing = &CustomError{
		Message: "You are already following this user.",
		Code:    "ERR-008",
	}
	NotFollowing = &CustomError{
		Message: "You are not following this user.",
		Code:    "ERR-009",
	}
	SelfFollow = &CustomError{
		Message: "You cannot follow yourself.",
		Code:    "ERR-010",
	}
	AlreadySaved = &CustomError{
		Message: "The activity is already saved.",
		Code:    "ERR-011",
	}
	SavedActivityNotFound = &CustomError{
		Message: "The activity is not in your saved activities.",
		Code:    "ERR-012",
	}
	TooManyRequests = &CustomError{
		Message: "Too many requests. Please slow down and try again later.",
		Code:    "ERR-013",
	}
	Unauthorized = &CustomError{
		Message: "The request is unauthorized. Please login to your account.",
		Code:    "ERR-014",
	}
	EmailUnreachable = &CustomError{
		Message: "The email is unreachable. Please check the email and try again.",
		Code:    "ERR-015",
	}
	DatabaseError = &CustomError{
		Message: "A database error occurred. Please try again later.",
		Code:    "ERR-016",
	}
	InternalServerError = &CustomError{
		Message: "An internal server error occurred. Please try again later.",
		Code:    "ERR-017",
	}
)
