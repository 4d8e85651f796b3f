package recipe

import (
	"context"

	"recipe-share-api/entities"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type (
	RecipeRepository interface {
		Transaction(ctx context.Context, fn func(repo RecipeRepository) error) error

		CreateRecipe(ctx context.Context, recipe *entities.Recipe) error
		UpdateRecipeFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
		GetRecipeByID(ctx context.Context, id uuid.UUID) (*entities.Recipe, error)
		GetRecipeDetail(ctx context.Context, id uuid.UUID) (*entities.Recipe, error)
		DeleteRecipeCascade(ctx context.Context, id uuid.UUID) error

		ReplaceIngredients(ctx context.Context, recipeID uuid.UUID, ingredients []*entities.Ingredient) error
		ReplaceSteps(ctx context.Context, recipeID uuid.UUID, steps []*entities.CookingStep) error
		GetMasterIngredients(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.MasterIngredient, error)

		GetTimeline(ctx context.Context, offset, limit int) ([]*entities.Recipe, int64, error)
		GetTopLiked(ctx context.Context, limit int) ([]*entities.Recipe, error)

		LikedRecipeIDs(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error)
		BookmarkedRecipeIDs(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error)
		IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)

		IsLiked(ctx context.Context, userID, recipeID uuid.UUID) (bool, error)
		CreateLike(ctx context.Context, like *entities.Like) error
		DeleteLike(ctx context.Context, userID, recipeID uuid.UUID) (int64, error)
		AdjustCounter(ctx context.Context, recipeID uuid.UUID, column string, delta int) error
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) Transaction(ctx context.Context, fn func(repo RecipeRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&recipeRepository{db: tx})
	})
}

func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe) error {
	return errors.Wrap(r.db.WithContext(ctx).Omit("User", "Ingredients", "Steps").Create(recipe).Error, "create recipe")
}

func (r *recipeRepository) UpdateRecipeFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&entities.Recipe{}).Where("id = ?", id).Updates(fields).Error
	return errors.Wrap(err, "update recipe")
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id uuid.UUID) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// GetRecipeDetail loads the owner, ingredients in insertion order and steps
// by step number.
func (r *recipeRepository) GetRecipeDetail(ctx context.Context, id uuid.UUID) (*entities.Recipe, error) {
	var recipe entities.Recipe
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order asc").Order("created_at asc")
		}).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_number asc").Order("created_at asc")
		}).
		Where("id = ?", id).
		First(&recipe).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) DeleteRecipeCascade(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	for _, model := range []any{
		&entities.Ingredient{},
		&entities.CookingStep{},
		&entities.Like{},
		&entities.Bookmark{},
		&entities.RecipeIngredientTag{},
	} {
		if err := db.Where("recipe_id = ?", id).Delete(model).Error; err != nil {
			return errors.Wrapf(err, "delete %T", model)
		}
	}
	if err := db.Model(&entities.SearchHistory{}).Where("recipe_id = ?", id).UpdateColumn("recipe_id", nil).Error; err != nil {
		return errors.Wrap(err, "detach search history")
	}
	return errors.Wrap(db.Where("id = ?", id).Delete(&entities.Recipe{}).Error, "delete recipe")
}

// ReplaceIngredients drops the current ingredient and tag rows and inserts
// the given set. A tag row is written for every ingredient linked to the
// catalog.
func (r *recipeRepository) ReplaceIngredients(ctx context.Context, recipeID uuid.UUID, ingredients []*entities.Ingredient) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("recipe_id = ?", recipeID).Delete(&entities.Ingredient{}).Error; err != nil {
		return errors.Wrap(err, "delete ingredients")
	}
	if err := db.Where("recipe_id = ?", recipeID).Delete(&entities.RecipeIngredientTag{}).Error; err != nil {
		return errors.Wrap(err, "delete ingredient tags")
	}
	if len(ingredients) == 0 {
		return nil
	}

	var tags []*entities.RecipeIngredientTag
	for i, ing := range ingredients {
		ing.RecipeID = recipeID
		ing.SortOrder = i
		if ing.MasterIngredientID != nil {
			tags = append(tags, &entities.RecipeIngredientTag{RecipeID: recipeID, MasterIngredientID: *ing.MasterIngredientID})
		}
	}
	if err := db.Omit("MasterIngredient").Create(&ingredients).Error; err != nil {
		return errors.Wrap(err, "insert ingredients")
	}
	if len(tags) > 0 {
		if err := db.Create(&tags).Error; err != nil {
			return errors.Wrap(err, "insert ingredient tags")
		}
	}
	return nil
}

func (r *recipeRepository) ReplaceSteps(ctx context.Context, recipeID uuid.UUID, steps []*entities.CookingStep) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("recipe_id = ?", recipeID).Delete(&entities.CookingStep{}).Error; err != nil {
		return errors.Wrap(err, "delete steps")
	}
	if len(steps) == 0 {
		return nil
	}
	for _, s := range steps {
		s.RecipeID = recipeID
	}
	return errors.Wrap(db.Create(&steps).Error, "insert steps")
}

func (r *recipeRepository) GetMasterIngredients(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.MasterIngredient, error) {
	out := make(map[uuid.UUID]*entities.MasterIngredient, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []*entities.MasterIngredient
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load master ingredients")
	}
	for _, m := range rows {
		out[m.ID] = m
	}
	return out, nil
}

func (r *recipeRepository) GetTimeline(ctx context.Context, offset, limit int) ([]*entities.Recipe, int64, error) {
	var (
		recipes []*entities.Recipe
		count   int64
	)
	db := r.db.WithContext(ctx)
	if err := db.Model(&entities.Recipe{}).Count(&count).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count recipes")
	}
	if err := db.Preload("User").
		Order("created_at desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&recipes).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list timeline")
	}
	return recipes, count, nil
}

func (r *recipeRepository) GetTopLiked(ctx context.Context, limit int) ([]*entities.Recipe, error) {
	var recipes []*entities.Recipe
	err := r.db.WithContext(ctx).
		Order("likes_count desc").
		Order("created_at desc").
		Limit(limit).
		Find(&recipes).Error
	return recipes, errors.Wrap(err, "list recommendations")
}

func (r *recipeRepository) relationIDs(ctx context.Context, model any, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return out, nil
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(model).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *recipeRepository) LikedRecipeIDs(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	ids, err := r.relationIDs(ctx, &entities.Like{}, userID, recipeIDs)
	return ids, errors.Wrap(err, "load liked ids")
}

func (r *recipeRepository) BookmarkedRecipeIDs(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	ids, err := r.relationIDs(ctx, &entities.Bookmark{}, userID, recipeIDs)
	return ids, errors.Wrap(err, "load bookmarked ids")
}

func (r *recipeRepository) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, errors.Wrap(err, "check follow")
}

func (r *recipeRepository) IsLiked(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Like{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, errors.Wrap(err, "check like")
}

func (r *recipeRepository) CreateLike(ctx context.Context, like *entities.Like) error {
	return r.db.WithContext(ctx).Omit("User", "Recipe").Create(like).Error
}

func (r *recipeRepository) DeleteLike(ctx context.Context, userID, recipeID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.Like{})
	return res.RowsAffected, errors.Wrap(res.Error, "delete like")
}

// AdjustCounter moves likes_count or bookmarks_count by delta without going
// below zero.
func (r *recipeRepository) AdjustCounter(ctx context.Context, recipeID uuid.UUID, column string, delta int) error {
	if column != "likes_count" && column != "bookmarks_count" {
		return errors.Errorf("unknown counter %q", column)
	}
	q := r.db.WithContext(ctx).Model(&entities.Recipe{}).Where("id = ?", recipeID)
	if delta < 0 {
		q = q.Where(column+" >= ?", -delta)
	}
	return errors.Wrapf(q.UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error, "adjust %s", column)
}
