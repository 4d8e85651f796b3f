package handlers

import (
	"errors"
	"strings"

	"recipe-share-api/domain"
	"recipe-share-api/internal/api/presenters"
	"recipe-share-api/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// fieldErrors are service errors that belong to a single request field.
var fieldErrors = map[error]string{
	domain.ErrUsernameTaken:            "username",
	domain.ErrEmailTaken:               "email",
	domain.ErrMasterIngredientNotFound: "ingredients",
	domain.ErrInvalidImageFormat:       "image",
	domain.ErrImageTooLarge:            "image",
}

// serviceError maps a service error onto the HTTP error taxonomy. failed is
// the message used when nothing more specific applies.
func serviceError(c *fiber.Ctx, failed string, err error) error {
	var soft *domain.SoftError
	switch {
	case errors.As(err, &soft):
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, soft.Message, soft)
	case errors.Is(err, domain.ErrUnauthenticated):
		return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageUnauthenticated, nil)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedLogin, err)
	case errors.Is(err, domain.ErrGoogleAuthFailed):
		return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedGoogleLogin, err)
	case errors.Is(err, domain.ErrForbidden):
		return presenters.ErrorResponse(c, fiber.StatusForbidden, domain.MessageForbidden, err)
	case errors.Is(err, domain.ErrRecipeNotFound):
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageRecipeNotFound, err)
	case errors.Is(err, domain.ErrUserNotFound):
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageUserNotFound, err)
	}
	for sentinel, field := range fieldErrors {
		if errors.Is(err, sentinel) {
			return presenters.FieldErrorResponse(c, field, sentinel)
		}
	}
	return presenters.ErrorResponse(c, fiber.StatusInternalServerError, failed, err)
}

// validate runs struct validation and writes the 422 response itself. The
// returned bool is false when the handler must stop.
func validate(c *fiber.Ctx, v *validator.Validate, req any) (bool, error) {
	if err := v.Struct(req); err != nil {
		if fields := utils.ValidationErrors(err); fields != nil {
			return false, presenters.ValidationErrorResponse(c, fields)
		}
		return false, presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	return true, nil
}

// bind parses the body (JSON, urlencoded or multipart) into req and
// validates it.
func bind(c *fiber.Ctx, v *validator.Validate, req any) (bool, error) {
	if len(c.Body()) > 0 || isMultipart(c) {
		if err := c.BodyParser(req); err != nil {
			return false, presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
		}
	}
	return validate(c, v, req)
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}
