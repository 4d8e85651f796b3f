package recipe

import (
	"context"
	"strings"
	"time"

	"recipe-share-api/domain"
	"recipe-share-api/entities"
	"recipe-share-api/internal/logging"
	"recipe-share-api/internal/utils"
	"recipe-share-api/internal/utils/storage"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type (
	RecipeService interface {
		GetTimeline(ctx context.Context, viewer *uuid.UUID, page utils.PageQuery) ([]domain.RecipeListItem, int64, error)
		GetRecommendations(ctx context.Context, viewer *uuid.UUID, limit int) ([]domain.RecipeRecommendation, error)
		GetRecipeDetail(ctx context.Context, recipeID string, viewer *uuid.UUID) (domain.RecipeDetail, error)
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, ownerID uuid.UUID) (domain.RecipeDetail, error)
		UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, actorID uuid.UUID) (domain.RecipeDetail, error)
		DeleteRecipe(ctx context.Context, recipeID string, actorID uuid.UUID) error
		LikeRecipe(ctx context.Context, recipeID string, userID uuid.UUID) (domain.LikeResponse, error)
		UnlikeRecipe(ctx context.Context, recipeID string, userID uuid.UUID) (domain.LikeResponse, error)
	}

	recipeService struct {
		recipeRepository RecipeRepository
		storage          storage.Storage
	}
)

func NewRecipeService(recipeRepository RecipeRepository, st storage.Storage) RecipeService {
	return &recipeService{
		recipeRepository: recipeRepository,
		storage:          st,
	}
}

// ParseRecipeID maps malformed ids to ErrRecipeNotFound.
func ParseRecipeID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, domain.ErrRecipeNotFound
	}
	return parsed, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrRecipeNotFound
	}
	return err
}

func (s *recipeService) GetTimeline(ctx context.Context, viewer *uuid.UUID, page utils.PageQuery) ([]domain.RecipeListItem, int64, error) {
	recipes, total, err := s.recipeRepository.GetTimeline(ctx, page.Offset(), page.PerPage)
	if err != nil {
		return nil, 0, err
	}
	items, err := BuildListItems(ctx, s.recipeRepository, s.storage, viewer, recipes, domain.TimelineDescriptionLength)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetRecommendations ranks by likes only; the viewer does not personalize it.
func (s *recipeService) GetRecommendations(ctx context.Context, _ *uuid.UUID, limit int) ([]domain.RecipeRecommendation, error) {
	recipes, err := s.recipeRepository.GetTopLiked(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RecipeRecommendation, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, toRecommendation(r, s.storage))
	}
	return out, nil
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, recipeID string, viewer *uuid.UUID) (domain.RecipeDetail, error) {
	id, err := ParseRecipeID(recipeID)
	if err != nil {
		return domain.RecipeDetail{}, err
	}
	return s.detail(ctx, s.recipeRepository, id, viewer)
}

func (s *recipeService) detail(ctx context.Context, repo RecipeRepository, id uuid.UUID, viewer *uuid.UUID) (domain.RecipeDetail, error) {
	recipe, err := repo.GetRecipeDetail(ctx, id)
	if err != nil {
		return domain.RecipeDetail{}, notFound(err)
	}

	var isLiked, isBookmarked, isFollowed bool
	if viewer != nil {
		flags, err := LoadViewerFlags(ctx, repo, viewer, []*entities.Recipe{recipe})
		if err != nil {
			return domain.RecipeDetail{}, err
		}
		isLiked = flags.Liked[recipe.ID]
		isBookmarked = flags.Bookmarked[recipe.ID]

		if *viewer != recipe.UserID {
			if isFollowed, err = repo.IsFollowing(ctx, *viewer, recipe.UserID); err != nil {
				return domain.RecipeDetail{}, err
			}
		}
	}
	return toDetail(recipe, isLiked, isBookmarked, isFollowed, s.storage), nil
}

// buildIngredients resolves catalog names for items that only carry a
// master ingredient id.
func (s *recipeService) buildIngredients(ctx context.Context, inputs []domain.IngredientInput) ([]*entities.Ingredient, error) {
	var masterIDs []uuid.UUID
	for _, in := range inputs {
		if in.MasterIngredientID == "" {
			continue
		}
		id, err := uuid.Parse(in.MasterIngredientID)
		if err != nil {
			return nil, domain.ErrMasterIngredientNotFound
		}
		masterIDs = append(masterIDs, id)
	}
	masters, err := s.recipeRepository.GetMasterIngredients(ctx, masterIDs)
	if err != nil {
		return nil, err
	}

	out := make([]*entities.Ingredient, 0, len(inputs))
	for _, in := range inputs {
		ing := &entities.Ingredient{
			Name:     strings.TrimSpace(in.Name),
			Quantity: strings.TrimSpace(in.Quantity),
			Unit:     in.Unit,
		}
		if in.MasterIngredientID != "" {
			id := uuid.MustParse(in.MasterIngredientID)
			master, ok := masters[id]
			if !ok {
				return nil, domain.ErrMasterIngredientNotFound
			}
			ing.MasterIngredientID = &id
			if ing.Name == "" {
				ing.Name = master.Name
			}
		}
		out = append(out, ing)
	}
	return out, nil
}

func buildSteps(inputs []domain.CookingStepInput) []*entities.CookingStep {
	out := make([]*entities.CookingStep, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, &entities.CookingStep{
			StepNumber:  in.StepNumber,
			Description: strings.TrimSpace(in.Description),
			Image:       in.Image,
		})
	}
	return out
}

func (s *recipeService) discardUpload(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.DeleteRecipeImage(ctx, key); err != nil {
		logging.Warn().Err(err).Str("image", key).Msg("failed to remove orphaned recipe image")
	}
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, ownerID uuid.UUID) (domain.RecipeDetail, error) {
	ingredients, err := s.buildIngredients(ctx, req.Ingredients)
	if err != nil {
		return domain.RecipeDetail{}, err
	}
	steps := buildSteps(req.CookingSteps)

	recipe := &entities.Recipe{
		UserID:      ownerID,
		Title:       strings.TrimSpace(req.Title),
		Image:       "",
		Description: req.Description,
		CookingTime: req.CookingTime,
		Servings:    req.Servings,
	}

	var uploaded string
	err = s.recipeRepository.Transaction(ctx, func(tx RecipeRepository) error {
		if err := tx.CreateRecipe(ctx, recipe); err != nil {
			return err
		}
		if req.Image != nil {
			key, err := s.storage.UploadRecipeImage(ctx, recipe.ID.String(), req.Image)
			if err != nil {
				return errors.Wrap(err, "upload recipe image")
			}
			uploaded = key
			if err := tx.UpdateRecipeFields(ctx, recipe.ID, map[string]any{"image": key}); err != nil {
				return err
			}
		}
		if err := tx.ReplaceIngredients(ctx, recipe.ID, ingredients); err != nil {
			return err
		}
		return tx.ReplaceSteps(ctx, recipe.ID, steps)
	})
	if err != nil {
		s.discardUpload(ctx, uploaded)
		return domain.RecipeDetail{}, err
	}

	logging.Info().Str("recipe_id", recipe.ID.String()).Str("user_id", ownerID.String()).Msg("recipe created")
	return s.detail(ctx, s.recipeRepository, recipe.ID, &ownerID)
}

func (s *recipeService) loadOwned(ctx context.Context, recipeID string, actorID uuid.UUID) (*entities.Recipe, error) {
	id, err := ParseRecipeID(recipeID)
	if err != nil {
		return nil, err
	}
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if recipe.UserID != actorID {
		return nil, domain.ErrForbidden
	}
	return recipe, nil
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, actorID uuid.UUID) (domain.RecipeDetail, error) {
	recipe, err := s.loadOwned(ctx, recipeID, actorID)
	if err != nil {
		return domain.RecipeDetail{}, err
	}

	var ingredients []*entities.Ingredient
	if req.Ingredients != nil {
		if ingredients, err = s.buildIngredients(ctx, req.Ingredients); err != nil {
			return domain.RecipeDetail{}, err
		}
	}

	fields := map[string]any{"updated_at": time.Now()}
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.CookingTime != nil {
		fields["cooking_time"] = *req.CookingTime
	}
	if req.Servings != nil {
		fields["servings"] = *req.Servings
	}

	var uploaded string
	err = s.recipeRepository.Transaction(ctx, func(tx RecipeRepository) error {
		if req.Image != nil {
			key, err := s.storage.UploadRecipeImage(ctx, recipe.ID.String(), req.Image)
			if err != nil {
				return errors.Wrap(err, "upload recipe image")
			}
			uploaded = key
			fields["image"] = key
		}
		if err := tx.UpdateRecipeFields(ctx, recipe.ID, fields); err != nil {
			return err
		}
		if req.Ingredients != nil {
			if err := tx.ReplaceIngredients(ctx, recipe.ID, ingredients); err != nil {
				return err
			}
		}
		if req.CookingSteps != nil {
			if err := tx.ReplaceSteps(ctx, recipe.ID, buildSteps(req.CookingSteps)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.discardUpload(ctx, uploaded)
		return domain.RecipeDetail{}, err
	}

	// the old image goes only once the new one is committed
	if uploaded != "" && recipe.Image != "" {
		s.discardUpload(ctx, recipe.Image)
	}

	return s.detail(ctx, s.recipeRepository, recipe.ID, &actorID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID string, actorID uuid.UUID) error {
	recipe, err := s.loadOwned(ctx, recipeID, actorID)
	if err != nil {
		return err
	}

	err = s.recipeRepository.Transaction(ctx, func(tx RecipeRepository) error {
		return tx.DeleteRecipeCascade(ctx, recipe.ID)
	})
	if err != nil {
		return err
	}

	s.discardUpload(ctx, recipe.Image)
	logging.Info().Str("recipe_id", recipe.ID.String()).Str("user_id", actorID.String()).Msg("recipe deleted")
	return nil
}

func (s *recipeService) LikeRecipe(ctx context.Context, recipeID string, userID uuid.UUID) (domain.LikeResponse, error) {
	return s.toggleLike(ctx, recipeID, userID, true)
}

func (s *recipeService) UnlikeRecipe(ctx context.Context, recipeID string, userID uuid.UUID) (domain.LikeResponse, error) {
	return s.toggleLike(ctx, recipeID, userID, false)
}

// toggleLike reports a soft error when the relation is already in the
// requested state. Only the effectful path touches likes_count.
func (s *recipeService) toggleLike(ctx context.Context, recipeID string, userID uuid.UUID, like bool) (domain.LikeResponse, error) {
	id, err := ParseRecipeID(recipeID)
	if err != nil {
		return domain.LikeResponse{}, err
	}

	var res domain.LikeResponse
	err = s.recipeRepository.Transaction(ctx, func(tx RecipeRepository) error {
		if _, err := tx.GetRecipeByID(ctx, id); err != nil {
			return notFound(err)
		}
		liked, err := tx.IsLiked(ctx, userID, id)
		if err != nil {
			return err
		}

		if like {
			if liked {
				return domain.ErrAlreadyLiked
			}
			if err := tx.CreateLike(ctx, &entities.Like{UserID: userID, RecipeID: id}); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return domain.ErrAlreadyLiked
				}
				return errors.Wrap(err, "create like")
			}
			if err := tx.AdjustCounter(ctx, id, "likes_count", 1); err != nil {
				return err
			}
		} else {
			if !liked {
				return domain.ErrNotLiked
			}
			n, err := tx.DeleteLike(ctx, userID, id)
			if err != nil {
				return err
			}
			if n == 0 {
				return domain.ErrNotLiked
			}
			if err := tx.AdjustCounter(ctx, id, "likes_count", -1); err != nil {
				return err
			}
		}

		fresh, err := tx.GetRecipeByID(ctx, id)
		if err != nil {
			return err
		}
		res = domain.LikeResponse{IsLiked: like, LikesCount: fresh.LikesCount}
		return nil
	})
	return res, err
}
