package recipe

import (
	"context"

	"recipe-share-api/domain"
	"recipe-share-api/entities"
	"recipe-share-api/internal/utils/storage"
	"recipe-share-api/pkg/user"

	"github.com/google/uuid"
)

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// ViewerFlags annotates recipes with like and bookmark state for viewer.
// A nil viewer gets all-false flags without touching storage.
type ViewerFlags struct {
	Liked      map[uuid.UUID]bool
	Bookmarked map[uuid.UUID]bool
}

func LoadViewerFlags(ctx context.Context, repo RecipeRepository, viewer *uuid.UUID, recipes []*entities.Recipe) (ViewerFlags, error) {
	flags := ViewerFlags{Liked: map[uuid.UUID]bool{}, Bookmarked: map[uuid.UUID]bool{}}
	if viewer == nil || len(recipes) == 0 {
		return flags, nil
	}
	ids := make([]uuid.UUID, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
	}

	var err error
	if flags.Liked, err = repo.LikedRecipeIDs(ctx, *viewer, ids); err != nil {
		return flags, err
	}
	if flags.Bookmarked, err = repo.BookmarkedRecipeIDs(ctx, *viewer, ids); err != nil {
		return flags, err
	}
	return flags, nil
}

func ToListItem(r *entities.Recipe, flags ViewerFlags, st storage.Storage, descriptionLimit int) domain.RecipeListItem {
	description := r.Description
	if descriptionLimit > 0 {
		description = Truncate(description, descriptionLimit)
	}
	return domain.RecipeListItem{
		ID:             r.ID.String(),
		Title:          r.Title,
		ImageURL:       st.RecipeImageURL(r.Image),
		Description:    description,
		CookingTime:    r.CookingTime,
		Servings:       r.Servings,
		LikesCount:     r.LikesCount,
		BookmarksCount: r.BookmarksCount,
		IsLiked:        flags.Liked[r.ID],
		IsBookmarked:   flags.Bookmarked[r.ID],
		User:           user.ToSummary(r.User, st),
		CreatedAt:      r.CreatedAt,
	}
}

// BuildListItems maps a page of recipes (with User preloaded) for viewer.
func BuildListItems(ctx context.Context, repo RecipeRepository, st storage.Storage, viewer *uuid.UUID, recipes []*entities.Recipe, descriptionLimit int) ([]domain.RecipeListItem, error) {
	flags, err := LoadViewerFlags(ctx, repo, viewer, recipes)
	if err != nil {
		return nil, err
	}
	items := make([]domain.RecipeListItem, 0, len(recipes))
	for _, r := range recipes {
		items = append(items, ToListItem(r, flags, st, descriptionLimit))
	}
	return items, nil
}

func toRecommendation(r *entities.Recipe, st storage.Storage) domain.RecipeRecommendation {
	return domain.RecipeRecommendation{
		ID:          r.ID.String(),
		Title:       r.Title,
		ImageURL:    st.RecipeImageURL(r.Image),
		CookingTime: r.CookingTime,
		LikesCount:  r.LikesCount,
	}
}

func toDetail(r *entities.Recipe, isLiked, isBookmarked, isFollowed bool, st storage.Storage) domain.RecipeDetail {
	detail := domain.RecipeDetail{
		ID:             r.ID.String(),
		Title:          r.Title,
		ImageURL:       st.RecipeImageURL(r.Image),
		Description:    r.Description,
		CookingTime:    r.CookingTime,
		Servings:       r.Servings,
		LikesCount:     r.LikesCount,
		BookmarksCount: r.BookmarksCount,
		IsLiked:        isLiked,
		IsBookmarked:   isBookmarked,
		Ingredients:    make([]domain.IngredientResponse, 0, len(r.Ingredients)),
		Steps:          make([]domain.CookingStepResponse, 0, len(r.Steps)),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.User != nil {
		detail.User = domain.RecipeOwner{
			UserSummary:    user.ToSummary(r.User, st),
			FollowersCount: r.User.FollowersCount,
			IsFollowed:     isFollowed,
		}
	}
	for _, ing := range r.Ingredients {
		item := domain.IngredientResponse{
			ID:       ing.ID.String(),
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
		}
		if ing.MasterIngredientID != nil {
			id := ing.MasterIngredientID.String()
			item.MasterIngredientID = &id
		}
		detail.Ingredients = append(detail.Ingredients, item)
	}
	for _, step := range r.Steps {
		var image *string
		if step.Image != nil {
			image = st.RecipeImageURL(*step.Image)
		}
		detail.Steps = append(detail.Steps, domain.CookingStepResponse{
			ID:          step.ID.String(),
			StepNumber:  step.StepNumber,
			Description: step.Description,
			ImageURL:    image,
		})
	}
	return detail
}
