package handlers

import (
	"mime/multipart"
	"strings"

	"recipe-share-api/domain"
	"recipe-share-api/internal/api/presenters"
	"recipe-share-api/internal/middleware"
	"recipe-share-api/internal/utils"
	"recipe-share-api/internal/utils/storage"
	"recipe-share-api/pkg/recipe"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	RecipeHandler interface {
		GetTimeline(c *fiber.Ctx) error
		GetRecommendations(c *fiber.Ctx) error
		GetRecipeDetail(c *fiber.Ctx) error
		CreateRecipe(c *fiber.Ctx) error
		UpdateRecipe(c *fiber.Ctx) error
		DeleteRecipe(c *fiber.Ctx) error
		LikeRecipe(c *fiber.Ctx) error
		UnlikeRecipe(c *fiber.Ctx) error
	}

	recipeHandler struct {
		recipeService recipe.RecipeService
		validator     *validator.Validate
	}
)

func NewRecipeHandler(recipeService recipe.RecipeService, validator *validator.Validate) RecipeHandler {
	return &recipeHandler{
		recipeService: recipeService,
		validator:     validator,
	}
}

func (h *recipeHandler) GetTimeline(c *fiber.Ctx) error {
	page := utils.ParsePageQuery(c, domain.DefaultPerPage, domain.MaxPerPage)

	items, total, err := h.recipeService.GetTimeline(c.UserContext(), middleware.ViewerID(c), page)
	if err != nil {
		return serviceError(c, domain.MessageFailedGetRecipes, err)
	}
	return presenters.PaginatedResponse(c, items, total, page, domain.MessageSuccessGetTimeline)
}

func (h *recipeHandler) GetRecommendations(c *fiber.Ctx) error {
	limit := utils.ClampInt(c.Query("limit"), domain.DefaultRecommendationLimit, 1, domain.MaxRecommendationLimit)

	res, err := h.recipeService.GetRecommendations(c.UserContext(), middleware.ViewerID(c), limit)
	if err != nil {
		return serviceError(c, domain.MessageFailedGetRecipes, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRecommendations)
}

func (h *recipeHandler) GetRecipeDetail(c *fiber.Ctx) error {
	res, err := h.recipeService.GetRecipeDetail(c.UserContext(), c.Params("id"), middleware.ViewerID(c))
	if err != nil {
		return serviceError(c, domain.MessageFailedGetRecipes, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRecipeDetail)
}

func (h *recipeHandler) CreateRecipe(c *fiber.Ctx) error {
	userID := middleware.ViewerID(c)

	var req domain.CreateRecipeRequest
	if isMultipart(c) {
		form, err := parseRecipeForm(c)
		if err != nil {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
		}
		if req, err = form.createRequest(); err != nil {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
		}
	} else if err := c.BodyParser(&req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	req.Title = strings.TrimSpace(req.Title)

	if ok, err := h.checkRequest(c, &req, req.Image); !ok {
		return err
	}

	res, err := h.recipeService.CreateRecipe(c.UserContext(), req, *userID)
	if err != nil {
		return serviceError(c, domain.MessageFailedCreateRecipe, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateRecipe)
}

func (h *recipeHandler) UpdateRecipe(c *fiber.Ctx) error {
	userID := middleware.ViewerID(c)

	var req domain.UpdateRecipeRequest
	if isMultipart(c) {
		form, err := parseRecipeForm(c)
		if err != nil {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
		}
		if req, err = form.updateRequest(); err != nil {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
		}
	} else if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
		}
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		req.Title = &title
	}
	// an empty list would wipe the recipe; treat it as absent
	if len(req.Ingredients) == 0 {
		req.Ingredients = nil
	}
	if len(req.CookingSteps) == 0 {
		req.CookingSteps = nil
	}

	if ok, err := h.checkRequest(c, &req, req.Image); !ok {
		return err
	}

	res, err := h.recipeService.UpdateRecipe(c.UserContext(), c.Params("id"), req, *userID)
	if err != nil {
		return serviceError(c, domain.MessageFailedUpdateRecipe, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateRecipe)
}

// checkRequest validates the struct and the optional image together so the
// client gets every field error in one response.
func (h *recipeHandler) checkRequest(c *fiber.Ctx, req any, image *multipart.FileHeader) (bool, error) {
	fields := map[string][]string{}
	if err := h.validator.Struct(req); err != nil {
		verrs := utils.ValidationErrors(err)
		if verrs == nil {
			return false, presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
		}
		fields = verrs
	}
	if image != nil {
		if err := storage.ValidateImage(image); err != nil {
			fields["image"] = append(fields["image"], err.Error())
		}
	}
	if len(fields) > 0 {
		return false, presenters.ValidationErrorResponse(c, fields)
	}
	return true, nil
}

func (h *recipeHandler) DeleteRecipe(c *fiber.Ctx) error {
	userID := middleware.ViewerID(c)
	if err := h.recipeService.DeleteRecipe(c.UserContext(), c.Params("id"), *userID); err != nil {
		return serviceError(c, domain.MessageFailedDeleteRecipe, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteRecipe)
}

func (h *recipeHandler) LikeRecipe(c *fiber.Ctx) error {
	return h.like(c, true)
}

func (h *recipeHandler) UnlikeRecipe(c *fiber.Ctx) error {
	return h.like(c, false)
}

func (h *recipeHandler) like(c *fiber.Ctx, like bool) error {
	userID := middleware.ViewerID(c)

	var (
		res domain.LikeResponse
		err error
	)
	message := domain.MessageSuccessLikeRecipe
	if like {
		res, err = h.recipeService.LikeRecipe(c.UserContext(), c.Params("id"), *userID)
	} else {
		message = domain.MessageSuccessUnlikeRecipe
		res, err = h.recipeService.UnlikeRecipe(c.UserContext(), c.Params("id"), *userID)
	}
	if err != nil {
		return serviceError(c, domain.MessageFailedProcessRequest, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, message)
}
