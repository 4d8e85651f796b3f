package presenters

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"recipe-share-api/domain"
	"recipe-share-api/internal/logging"
	"recipe-share-api/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// RequestIDKey is where the request id middleware stores the id.
const RequestIDKey = "requestid"

type Response struct {
	Success    bool                    `json:"success"`
	Message    string                  `json:"message"`
	Data       any                     `json:"data"`
	Errors     any                     `json:"errors"`
	Pagination *domain.Pagination      `json:"pagination,omitempty"`
	Links      *domain.PaginationLinks `json:"links,omitempty"`
	Meta       domain.Meta             `json:"meta"`
}

func meta(c *fiber.Ctx) domain.Meta {
	id, _ := c.Locals(RequestIDKey).(string)
	if id == "" {
		id = string(c.Response().Header.Peek(fiber.HeaderXRequestID))
	}
	return domain.Meta{Timestamp: time.Now().UTC(), RequestID: id}
}

func SuccessResponse(c *fiber.Ctx, data any, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta(c),
	})
}

// ErrorResponse renders a failure. Server errors are logged in full and the
// client only sees the generic message; soft errors carry their text under
// errors.error.
func ErrorResponse(c *fiber.Ctx, statusCode int, message string, err error) error {
	res := Response{
		Success: false,
		Message: message,
		Meta:    meta(c),
	}

	if statusCode >= fiber.StatusInternalServerError {
		logging.Error().
			Err(err).
			Str("request_id", res.Meta.RequestID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg(message)
		res.Message = domain.MessageInternalServerError
	} else if err != nil {
		var soft *domain.SoftError
		if errors.As(err, &soft) {
			res.Message = soft.Message
		}
		res.Errors = fiber.Map{"error": err.Error()}
	}

	return c.Status(statusCode).JSON(res)
}

// ValidationErrorResponse answers 422 with a field to messages map.
func ValidationErrorResponse(c *fiber.Ctx, fields map[string][]string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(Response{
		Success: false,
		Message: domain.MessageValidationFailed,
		Errors:  fields,
		Meta:    meta(c),
	})
}

func FieldErrorResponse(c *fiber.Ctx, field string, err error) error {
	return ValidationErrorResponse(c, map[string][]string{field: {err.Error()}})
}

// PaginatedResponse adds pagination and absolute page links built from
// APP_URL and the request path. Other query parameters are carried over.
func PaginatedResponse(c *fiber.Ctx, data any, total int64, page utils.PageQuery, message string) error {
	lastPage := utils.LastPage(total, page.PerPage)
	pagination := &domain.Pagination{
		CurrentPage:  page.Page,
		LastPage:     lastPage,
		PerPage:      page.PerPage,
		Total:        total,
		HasMorePages: page.Page < lastPage,
	}
	if offset := int64(page.Offset()); offset < total {
		from := int(offset) + 1
		to := int(min(offset+int64(page.PerPage), total))
		pagination.From = &from
		pagination.To = &to
	}

	return c.Status(fiber.StatusOK).JSON(Response{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: pagination,
		Links:      buildLinks(c, page, lastPage),
		Meta:       meta(c),
	})
}

func buildLinks(c *fiber.Ctx, page utils.PageQuery, lastPage int) *domain.PaginationLinks {
	base := strings.TrimRight(utils.GetConfig("APP_URL"), "/")
	if base == "" {
		base = c.BaseURL()
	}
	base += c.Path()

	query := url.Values{}
	c.Request().URI().QueryArgs().VisitAll(func(key, value []byte) {
		query.Add(string(key), string(value))
	})

	pageURL := func(n int) string {
		query.Set("page", strconv.Itoa(n))
		query.Set("per_page", strconv.Itoa(page.PerPage))
		return base + "?" + query.Encode()
	}

	links := &domain.PaginationLinks{
		First: pageURL(1),
		Last:  pageURL(lastPage),
	}
	if page.Page > 1 {
		prev := pageURL(min(page.Page-1, lastPage))
		links.Prev = &prev
	}
	if page.Page < lastPage {
		next := pageURL(page.Page + 1)
		links.Next = &next
	}
	return links
}
