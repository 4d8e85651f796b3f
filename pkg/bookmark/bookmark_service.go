package bookmark

import (
	"context"

	"recipe-share-api/domain"
	"recipe-share-api/entities"
	"recipe-share-api/internal/utils"
	"recipe-share-api/internal/utils/storage"
	"recipe-share-api/pkg/recipe"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type (
	BookmarkService interface {
		GetBookmarks(ctx context.Context, userID uuid.UUID, page utils.PageQuery) ([]domain.BookmarkListItem, int64, error)
		AddBookmark(ctx context.Context, recipeID string, userID uuid.UUID) (domain.BookmarkResponse, error)
		RemoveBookmark(ctx context.Context, recipeID string, userID uuid.UUID) (domain.BookmarkResponse, error)
		IsBookmarked(ctx context.Context, recipeID string, userID uuid.UUID) (bool, error)
	}

	bookmarkService struct {
		bookmarkRepository BookmarkRepository
		recipeRepository   recipe.RecipeRepository
		storage            storage.Storage
	}
)

func NewBookmarkService(bookmarkRepository BookmarkRepository, recipeRepository recipe.RecipeRepository, st storage.Storage) BookmarkService {
	return &bookmarkService{
		bookmarkRepository: bookmarkRepository,
		recipeRepository:   recipeRepository,
		storage:            st,
	}
}

func (s *bookmarkService) GetBookmarks(ctx context.Context, userID uuid.UUID, page utils.PageQuery) ([]domain.BookmarkListItem, int64, error) {
	bookmarks, total, err := s.bookmarkRepository.GetBookmarks(ctx, userID, page.Offset(), page.PerPage)
	if err != nil {
		return nil, 0, err
	}

	recipes := make([]*entities.Recipe, 0, len(bookmarks))
	for _, b := range bookmarks {
		if b.Recipe != nil {
			recipes = append(recipes, b.Recipe)
		}
	}
	flags, err := recipe.LoadViewerFlags(ctx, s.recipeRepository, &userID, recipes)
	if err != nil {
		return nil, 0, err
	}

	items := make([]domain.BookmarkListItem, 0, len(bookmarks))
	for _, b := range bookmarks {
		if b.Recipe == nil {
			continue
		}
		item := recipe.ToListItem(b.Recipe, flags, s.storage, 0)
		item.IsBookmarked = true
		items = append(items, domain.BookmarkListItem{RecipeListItem: item, BookmarkedAt: b.CreatedAt})
	}
	return items, total, nil
}

func (s *bookmarkService) AddBookmark(ctx context.Context, recipeID string, userID uuid.UUID) (domain.BookmarkResponse, error) {
	return s.toggle(ctx, recipeID, userID, true)
}

func (s *bookmarkService) RemoveBookmark(ctx context.Context, recipeID string, userID uuid.UUID) (domain.BookmarkResponse, error) {
	return s.toggle(ctx, recipeID, userID, false)
}

func (s *bookmarkService) toggle(ctx context.Context, recipeID string, userID uuid.UUID, add bool) (domain.BookmarkResponse, error) {
	id, err := recipe.ParseRecipeID(recipeID)
	if err != nil {
		return domain.BookmarkResponse{}, err
	}

	var res domain.BookmarkResponse
	err = s.bookmarkRepository.Transaction(ctx, func(tx BookmarkRepository) error {
		if _, err := tx.GetRecipe(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrRecipeNotFound
			}
			return err
		}
		exists, err := tx.IsBookmarked(ctx, userID, id)
		if err != nil {
			return err
		}

		if add {
			if exists {
				return domain.ErrAlreadyBookmarked
			}
			if err := tx.CreateBookmark(ctx, &entities.Bookmark{UserID: userID, RecipeID: id}); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return domain.ErrAlreadyBookmarked
				}
				return errors.Wrap(err, "create bookmark")
			}
			if err := tx.AdjustBookmarksCount(ctx, id, 1); err != nil {
				return err
			}
		} else {
			if !exists {
				return domain.ErrNotBookmarked
			}
			n, err := tx.DeleteBookmark(ctx, userID, id)
			if err != nil {
				return err
			}
			if n == 0 {
				return domain.ErrNotBookmarked
			}
			if err := tx.AdjustBookmarksCount(ctx, id, -1); err != nil {
				return err
			}
		}

		fresh, err := tx.GetRecipe(ctx, id)
		if err != nil {
			return err
		}
		res = domain.BookmarkResponse{IsBookmarked: add, BookmarksCount: fresh.BookmarksCount}
		return nil
	})
	return res, err
}

// IsBookmarked answers false for malformed or unknown recipe ids.
func (s *bookmarkService) IsBookmarked(ctx context.Context, recipeID string, userID uuid.UUID) (bool, error) {
	id, err := recipe.ParseRecipeID(recipeID)
	if err != nil {
		return false, nil
	}
	return s.bookmarkRepository.IsBookmarked(ctx, userID, id)
}
