package handlers

import (
	"recipe-share-api/domain"
	"recipe-share-api/internal/api/presenters"
	"recipe-share-api/internal/middleware"
	"recipe-share-api/internal/utils"
	"recipe-share-api/internal/utils/storage"
	"recipe-share-api/pkg/user"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	UserHandler interface {
		GetProfile(c *fiber.Ctx) error
		UpdateProfile(c *fiber.Ctx) error
		UpdateLanguage(c *fiber.Ctx) error
		ChangeEmail(c *fiber.Ctx) error
		DeleteAccount(c *fiber.Ctx) error
		GetUser(c *fiber.Ctx) error
		GetUserRecipes(c *fiber.Ctx) error
		Follow(c *fiber.Ctx) error
		Unfollow(c *fiber.Ctx) error
	}

	userHandler struct {
		userService user.UserService
		validator   *validator.Validate
	}
)

func NewUserHandler(userService user.UserService, validator *validator.Validate) UserHandler {
	return &userHandler{
		userService: userService,
		validator:   validator,
	}
}

func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(middleware.LocalUserID).(string)
	return id
}

func (h *userHandler) GetProfile(c *fiber.Ctx) error {
	res, err := h.userService.GetProfile(c.UserContext(), currentUserID(c))
	if err != nil {
		return serviceError(c, domain.MessageFailedProcessRequest, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetProfile)
}

func (h *userHandler) UpdateProfile(c *fiber.Ctx) error {
	req := new(domain.UpdateProfileRequest)
	if ok, err := bind(c, h.validator, req); !ok {
		return err
	}
	if isMultipart(c) {
		if avatar, err := c.FormFile("avatar"); err == nil {
			if err := storage.ValidateImage(avatar); err != nil {
				return presenters.FieldErrorResponse(c, "avatar", err)
			}
			req.Avatar = avatar
		}
	}

	res, err := h.userService.UpdateProfile(c.UserContext(), currentUserID(c), *req)
	if err != nil {
		return serviceError(c, domain.MessageFailedUpdateProfile, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateProfile)
}

func (h *userHandler) UpdateLanguage(c *fiber.Ctx) error {
	req := new(domain.UpdateLanguageRequest)
	if ok, err := bind(c, h.validator, req); !ok {
		return err
	}

	res, err := h.userService.UpdateLanguage(c.UserContext(), currentUserID(c), *req)
	if err != nil {
		return serviceError(c, domain.MessageFailedUpdateProfile, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateLanguage)
}

func (h *userHandler) ChangeEmail(c *fiber.Ctx) error {
	req := new(domain.ChangeEmailRequest)
	if ok, err := bind(c, h.validator, req); !ok {
		return err
	}

	res, err := h.userService.ChangeEmail(c.UserContext(), currentUserID(c), *req)
	if err != nil {
		return serviceError(c, domain.MessageFailedUpdateProfile, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessChangeEmail)
}

func (h *userHandler) DeleteAccount(c *fiber.Ctx) error {
	req := new(domain.DeleteAccountRequest)
	if ok, err := bind(c, h.validator, req); !ok {
		return err
	}

	if err := h.userService.DeleteAccount(c.UserContext(), currentUserID(c), *req); err != nil {
		return serviceError(c, domain.MessageFailedDeleteAccount, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteAccount)
}

func (h *userHandler) GetUser(c *fiber.Ctx) error {
	res, err := h.userService.GetByUsername(c.UserContext(), c.Params("username"), currentUserID(c))
	if err != nil {
		return serviceError(c, domain.MessageFailedProcessRequest, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetUser)
}

func (h *userHandler) GetUserRecipes(c *fiber.Ctx) error {
	page := utils.ParsePageQuery(c, domain.DefaultPerPage, domain.MaxPerPage)

	items, total, err := h.userService.ListRecipes(c.UserContext(), c.Params("username"), page)
	if err != nil {
		return serviceError(c, domain.MessageFailedGetRecipes, err)
	}
	return presenters.PaginatedResponse(c, items, total, page, domain.MessageSuccessGetUserRecipes)
}

func (h *userHandler) Follow(c *fiber.Ctx) error {
	res, err := h.userService.Follow(c.UserContext(), currentUserID(c), c.Params("username"))
	if err != nil {
		return serviceError(c, domain.MessageFailedProcessRequest, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessFollow)
}

func (h *userHandler) Unfollow(c *fiber.Ctx) error {
	res, err := h.userService.Unfollow(c.UserContext(), currentUserID(c), c.Params("username"))
	if err != nil {
		return serviceError(c, domain.MessageFailedProcessRequest, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUnfollow)
}
