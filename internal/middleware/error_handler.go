package middleware

import (
	"errors"

	"recipe-share-api/domain"
	"recipe-share-api/internal/api/presenters"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders errors that escape the handlers, including unknown
// routes and recovered panics, in the standard envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if !errors.As(err, &fe) {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageInternalServerError, err)
	}

	switch fe.Code {
	case fiber.StatusNotFound:
		return presenters.ErrorResponse(c, fe.Code, domain.MessageEndpointNotFound, nil)
	case fiber.StatusMethodNotAllowed:
		return presenters.ErrorResponse(c, fe.Code, domain.MessageMethodNotAllowed, nil)
	case fiber.StatusTooManyRequests:
		return presenters.ErrorResponse(c, fe.Code, domain.MessageTooManyRequests, nil)
	}
	if fe.Code >= fiber.StatusInternalServerError {
		return presenters.ErrorResponse(c, fe.Code, domain.MessageInternalServerError, err)
	}
	return presenters.ErrorResponse(c, fe.Code, fe.Message, nil)
}
