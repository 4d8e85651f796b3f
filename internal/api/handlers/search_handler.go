package handlers

import (
	"net/url"

	"recipe-share-api/domain"
	"recipe-share-api/internal/api/presenters"
	"recipe-share-api/internal/middleware"
	"recipe-share-api/internal/utils"
	"recipe-share-api/pkg/search"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	SearchHandler interface {
		SearchRecipes(c *fiber.Ctx) error
		SearchByIngredients(c *fiber.Ctx) error
		GetSuggestions(c *fiber.Ctx) error
		GetHistory(c *fiber.Ctx) error
		ClearHistory(c *fiber.Ctx) error
		DeleteHistoryKeyword(c *fiber.Ctx) error
	}

	searchHandler struct {
		searchService search.SearchService
		validator     *validator.Validate
	}
)

func NewSearchHandler(searchService search.SearchService, validator *validator.Validate) SearchHandler {
	return &searchHandler{
		searchService: searchService,
		validator:     validator,
	}
}

func (h *searchHandler) SearchRecipes(c *fiber.Ctx) error {
	req := new(domain.SearchRecipeRequest)
	if err := c.QueryParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if ok, err := validate(c, h.validator, req); !ok {
		return err
	}

	page := utils.ParsePageQuery(c, domain.DefaultPerPage, domain.MaxPerPage)
	items, total, err := h.searchService.SearchRecipes(c.UserContext(), *req, middleware.ViewerID(c), page)
	if err != nil {
		return serviceError(c, domain.MessageFailedSearch, err)
	}
	return presenters.PaginatedResponse(c, items, total, page, domain.MessageSuccessSearchRecipes)
}

// SearchByIngredients reads page and per_page from the body first, then
// from the query string.
func (h *searchHandler) SearchByIngredients(c *fiber.Ctx) error {
	req := new(domain.SearchByIngredientsRequest)
	if ok, err := bind(c, h.validator, req); !ok {
		return err
	}

	page := utils.ParsePageQuery(c, domain.DefaultPerPage, domain.MaxPerPage)
	if req.Page > 0 {
		page.Page = min(req.Page, utils.MaxPage)
	}
	if req.PerPage > 0 {
		page.PerPage = min(req.PerPage, domain.MaxPerPage)
	}

	items, total, err := h.searchService.SearchByIngredients(c.UserContext(), req.Ingredients, middleware.ViewerID(c), page)
	if err != nil {
		return serviceError(c, domain.MessageFailedSearch, err)
	}
	return presenters.PaginatedResponse(c, items, total, page, domain.MessageSuccessSearchIngredients)
}

func (h *searchHandler) GetSuggestions(c *fiber.Ctx) error {
	limit := utils.ClampInt(c.Query("limit"), domain.DefaultSuggestionLimit, 1, domain.MaxSuggestionLimit)

	res, err := h.searchService.GetSuggestions(c.UserContext(), c.Query("q"), limit)
	if err != nil {
		return serviceError(c, domain.MessageFailedSearch, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetSuggestions)
}

func (h *searchHandler) GetHistory(c *fiber.Ctx) error {
	userID := middleware.ViewerID(c)
	limit := utils.ClampInt(c.Query("limit"), domain.DefaultHistoryLimit, 1, domain.MaxHistoryLimit)

	res, err := h.searchService.GetHistory(c.UserContext(), *userID, limit)
	if err != nil {
		return serviceError(c, domain.MessageFailedProcessRequest, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetHistory)
}

func (h *searchHandler) ClearHistory(c *fiber.Ctx) error {
	userID := middleware.ViewerID(c)
	if err := h.searchService.ClearHistory(c.UserContext(), *userID); err != nil {
		return serviceError(c, domain.MessageFailedProcessRequest, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessClearHistory)
}

func (h *searchHandler) DeleteHistoryKeyword(c *fiber.Ctx) error {
	userID := middleware.ViewerID(c)
	keyword, err := url.PathUnescape(c.Params("keyword"))
	if err != nil {
		keyword = c.Params("keyword")
	}
	if err := h.searchService.DeleteHistoryKeyword(c.UserContext(), *userID, keyword); err != nil {
		return serviceError(c, domain.MessageFailedProcessRequest, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessClearHistory)
}
