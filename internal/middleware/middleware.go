package middleware

import (
	"errors"
	"strings"
	"time"

	"recipe-share-api/domain"
	"recipe-share-api/entities"
	"recipe-share-api/internal/api/presenters"
	"recipe-share-api/internal/metrics"
	"recipe-share-api/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

const (
	LocalUserID = "user_id"
	LocalUser   = "user"
	LocalToken  = "token"
)

type (
	Middleware interface {
		AuthMiddleware(authService auth.AuthService) fiber.Handler
		OptionalAuth(authService auth.AuthService) fiber.Handler
		CORSMiddleware() fiber.Handler
		RequestID() fiber.Handler
		Metrics() fiber.Handler
	}

	middleware struct{}
)

func NewMiddleware() Middleware {
	return &middleware{}
}

func bearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func setIdentity(c *fiber.Ctx, u *entities.User, token *entities.AccessToken) {
	c.Locals(LocalUserID, u.ID.String())
	c.Locals(LocalUser, u)
	c.Locals(LocalToken, token)
}

// AuthMiddleware rejects the request with 401 unless a live bearer token is
// presented.
func (m *middleware) AuthMiddleware(authService auth.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, token, err := authService.Authenticate(c.UserContext(), bearerToken(c))
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageUnauthenticated, nil)
			}
			return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedProcessRequest, err)
		}
		setIdentity(c, u, token)
		return c.Next()
	}
}

// OptionalAuth attaches the caller when a valid token is present and lets
// anonymous requests through otherwise.
func (m *middleware) OptionalAuth(authService auth.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if bearer := bearerToken(c); bearer != "" {
			if u, token, err := authService.Authenticate(c.UserContext(), bearer); err == nil {
				setIdentity(c, u, token)
			}
		}
		return c.Next()
	}
}

func (m *middleware) CORSMiddleware() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		ExposeHeaders: "X-Request-ID",
	})
}

func (m *middleware) RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: presenters.RequestIDKey,
	})
}

// Metrics records count and latency per matched route, so path parameters
// do not explode label cardinality.
func (m *middleware) Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "/" {
			route = r.Path
		}
		metrics.RecordHTTPRequest(c.Method(), route, status, time.Since(start))
		return err
	}
}

// CurrentUser returns the authenticated user or nil.
func CurrentUser(c *fiber.Ctx) *entities.User {
	u, _ := c.Locals(LocalUser).(*entities.User)
	return u
}

func CurrentToken(c *fiber.Ctx) *entities.AccessToken {
	t, _ := c.Locals(LocalToken).(*entities.AccessToken)
	return t
}

// ViewerID is nil for anonymous requests.
func ViewerID(c *fiber.Ctx) *uuid.UUID {
	if u := CurrentUser(c); u != nil {
		id := u.ID
		return &id
	}
	return nil
}
