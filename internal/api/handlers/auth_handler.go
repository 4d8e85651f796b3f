package handlers

import (
	"recipe-share-api/domain"
	"recipe-share-api/internal/api/presenters"
	"recipe-share-api/internal/middleware"
	"recipe-share-api/pkg/auth"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	AuthHandler interface {
		Register(c *fiber.Ctx) error
		Login(c *fiber.Ctx) error
		GoogleLogin(c *fiber.Ctx) error
		Logout(c *fiber.Ctx) error
		LogoutAll(c *fiber.Ctx) error
		Refresh(c *fiber.Ctx) error
		Check(c *fiber.Ctx) error
		Me(c *fiber.Ctx) error
	}

	authHandler struct {
		authService auth.AuthService
		validator   *validator.Validate
	}
)

func NewAuthHandler(authService auth.AuthService, validator *validator.Validate) AuthHandler {
	return &authHandler{
		authService: authService,
		validator:   validator,
	}
}

func (h *authHandler) Register(c *fiber.Ctx) error {
	req := new(domain.RegisterRequest)
	if ok, err := bind(c, h.validator, req); !ok {
		return err
	}

	res, err := h.authService.Register(c.UserContext(), *req)
	if err != nil {
		return serviceError(c, domain.MessageFailedRegister, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessRegister)
}

func (h *authHandler) Login(c *fiber.Ctx) error {
	req := new(domain.LoginRequest)
	if ok, err := bind(c, h.validator, req); !ok {
		return err
	}

	res, err := h.authService.Login(c.UserContext(), *req)
	if err != nil {
		return serviceError(c, domain.MessageFailedLogin, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessLogin)
}

func (h *authHandler) GoogleLogin(c *fiber.Ctx) error {
	req := new(domain.GoogleLoginRequest)
	if ok, err := bind(c, h.validator, req); !ok {
		return err
	}

	res, err := h.authService.LoginWithGoogle(c.UserContext(), *req)
	if err != nil {
		return serviceError(c, domain.MessageFailedGoogleLogin, err)
	}
	message := domain.MessageSuccessGoogleLogin
	if res.IsNewUser {
		message = domain.MessageSuccessGoogleRegister
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, message)
}

func (h *authHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), middleware.CurrentToken(c)); err != nil {
		return serviceError(c, domain.MessageFailedLogout, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessLogout)
}

func (h *authHandler) LogoutAll(c *fiber.Ctx) error {
	userID := c.Locals(middleware.LocalUserID).(string)
	if err := h.authService.LogoutAll(c.UserContext(), userID); err != nil {
		return serviceError(c, domain.MessageFailedLogout, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessLogoutAll)
}

func (h *authHandler) Refresh(c *fiber.Ctx) error {
	res, err := h.authService.Refresh(c.UserContext(), middleware.CurrentToken(c))
	if err != nil {
		return serviceError(c, domain.MessageFailedRefresh, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessRefreshToken)
}

func (h *authHandler) Check(c *fiber.Ctx) error {
	res := h.authService.Check(middleware.CurrentUser(c), middleware.CurrentToken(c))
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessCheckToken)
}

func (h *authHandler) Me(c *fiber.Ctx) error {
	res, err := h.authService.Me(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return serviceError(c, domain.MessageFailedProcessRequest, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetMe)
}
