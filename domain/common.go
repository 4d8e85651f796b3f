package domain

import (
	"errors"
	"time"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 50
)

var (
	MessageSuccess              = "success"
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageValidationFailed     = "validation failed"
	MessageUnauthenticated      = "Unauthenticated"
	MessageForbidden            = "you are not allowed to perform this action"
	MessageEndpointNotFound     = "endpoint not found"
	MessageMethodNotAllowed     = "method not allowed"
	MessageTooManyRequests      = "too many requests"
	MessageInternalServerError  = "internal server error"

	ErrParseUUID       = errors.New("failed to parse UUID")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrTokenInvalid    = errors.New("token invalid")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenNotFound   = errors.New("token not found")
)

// SoftError is an expected business-rule outcome, such as liking a recipe
// twice. Handlers answer it with 400 and the message, never with a 500.
type SoftError struct {
	Message string
}

func NewSoftError(message string) *SoftError {
	return &SoftError{Message: message}
}

func (e *SoftError) Error() string {
	return e.Message
}

type (
	UserSummary struct {
		ID        string  `json:"id"`
		Name      string  `json:"name"`
		Username  string  `json:"username"`
		AvatarURL *string `json:"avatar_url"`
	}

	Pagination struct {
		CurrentPage  int   `json:"current_page"`
		LastPage     int   `json:"last_page"`
		PerPage      int   `json:"per_page"`
		Total        int64 `json:"total"`
		From         *int  `json:"from"`
		To           *int  `json:"to"`
		HasMorePages bool  `json:"has_more_pages"`
	}

	PaginationLinks struct {
		First string  `json:"first"`
		Last  string  `json:"last"`
		Prev  *string `json:"prev"`
		Next  *string `json:"next"`
	}

	Meta struct {
		Timestamp time.Time `json:"timestamp"`
		RequestID string    `json:"request_id"`
	}

	HealthResponse struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
		App       string    `json:"app"`
		Version   string    `json:"version"`
	}
)
