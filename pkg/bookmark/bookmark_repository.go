package bookmark

import (
	"context"

	"recipe-share-api/entities"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type (
	BookmarkRepository interface {
		Transaction(ctx context.Context, fn func(repo BookmarkRepository) error) error
		GetBookmarks(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*entities.Bookmark, int64, error)
		IsBookmarked(ctx context.Context, userID, recipeID uuid.UUID) (bool, error)
		CreateBookmark(ctx context.Context, bookmark *entities.Bookmark) error
		DeleteBookmark(ctx context.Context, userID, recipeID uuid.UUID) (int64, error)
		GetRecipe(ctx context.Context, recipeID uuid.UUID) (*entities.Recipe, error)
		AdjustBookmarksCount(ctx context.Context, recipeID uuid.UUID, delta int) error
	}

	bookmarkRepository struct {
		db *gorm.DB
	}
)

func NewBookmarkRepository(db *gorm.DB) BookmarkRepository {
	return &bookmarkRepository{db: db}
}

func (r *bookmarkRepository) Transaction(ctx context.Context, fn func(repo BookmarkRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&bookmarkRepository{db: tx})
	})
}

// GetBookmarks returns the newest bookmarks first with recipe and owner.
func (r *bookmarkRepository) GetBookmarks(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*entities.Bookmark, int64, error) {
	var (
		bookmarks []*entities.Bookmark
		count     int64
	)
	db := r.db.WithContext(ctx)
	if err := db.Model(&entities.Bookmark{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count bookmarks")
	}
	if err := db.Preload("Recipe.User").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&bookmarks).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list bookmarks")
	}
	return bookmarks, count, nil
}

func (r *bookmarkRepository) IsBookmarked(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Bookmark{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, errors.Wrap(err, "check bookmark")
}

func (r *bookmarkRepository) CreateBookmark(ctx context.Context, bookmark *entities.Bookmark) error {
	return r.db.WithContext(ctx).Omit("User", "Recipe").Create(bookmark).Error
}

func (r *bookmarkRepository) DeleteBookmark(ctx context.Context, userID, recipeID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.Bookmark{})
	return res.RowsAffected, errors.Wrap(res.Error, "delete bookmark")
}

func (r *bookmarkRepository) GetRecipe(ctx context.Context, recipeID uuid.UUID) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).Where("id = ?", recipeID).First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *bookmarkRepository) AdjustBookmarksCount(ctx context.Context, recipeID uuid.UUID, delta int) error {
	q := r.db.WithContext(ctx).Model(&entities.Recipe{}).Where("id = ?", recipeID)
	if delta < 0 {
		q = q.Where("bookmarks_count >= ?", -delta)
	}
	err := q.UpdateColumn("bookmarks_count", gorm.Expr("bookmarks_count + ?", delta)).Error
	return errors.Wrap(err, "adjust bookmarks_count")
}
