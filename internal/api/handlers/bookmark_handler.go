package handlers

import (
	"recipe-share-api/domain"
	"recipe-share-api/internal/api/presenters"
	"recipe-share-api/internal/middleware"
	"recipe-share-api/internal/utils"
	"recipe-share-api/pkg/bookmark"

	"github.com/gofiber/fiber/v2"
)

type (
	BookmarkHandler interface {
		GetBookmarks(c *fiber.Ctx) error
		AddBookmark(c *fiber.Ctx) error
		RemoveBookmark(c *fiber.Ctx) error
		CheckBookmark(c *fiber.Ctx) error
	}

	bookmarkHandler struct {
		bookmarkService bookmark.BookmarkService
	}
)

func NewBookmarkHandler(bookmarkService bookmark.BookmarkService) BookmarkHandler {
	return &bookmarkHandler{
		bookmarkService: bookmarkService,
	}
}

func (h *bookmarkHandler) GetBookmarks(c *fiber.Ctx) error {
	userID := middleware.ViewerID(c)
	page := utils.ParsePageQuery(c, domain.DefaultPerPage, domain.MaxPerPage)

	items, total, err := h.bookmarkService.GetBookmarks(c.UserContext(), *userID, page)
	if err != nil {
		return serviceError(c, domain.MessageFailedGetBookmarks, err)
	}
	return presenters.PaginatedResponse(c, items, total, page, domain.MessageSuccessGetBookmarks)
}

func (h *bookmarkHandler) AddBookmark(c *fiber.Ctx) error {
	userID := middleware.ViewerID(c)

	res, err := h.bookmarkService.AddBookmark(c.UserContext(), c.Params("id"), *userID)
	if err != nil {
		return serviceError(c, domain.MessageFailedProcessRequest, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddBookmark)
}

func (h *bookmarkHandler) RemoveBookmark(c *fiber.Ctx) error {
	userID := middleware.ViewerID(c)

	res, err := h.bookmarkService.RemoveBookmark(c.UserContext(), c.Params("id"), *userID)
	if err != nil {
		return serviceError(c, domain.MessageFailedProcessRequest, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessRemoveBookmark)
}

func (h *bookmarkHandler) CheckBookmark(c *fiber.Ctx) error {
	userID := middleware.ViewerID(c)

	ok, err := h.bookmarkService.IsBookmarked(c.UserContext(), c.Params("id"), *userID)
	if err != nil {
		return serviceError(c, domain.MessageFailedProcessRequest, err)
	}
	return presenters.SuccessResponse(c, domain.BookmarkCheckResponse{IsBookmarked: ok}, fiber.StatusOK, domain.MessageSuccessCheckBookmark)
}
