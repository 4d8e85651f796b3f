package domain

import (
	"errors"
	"mime/multipart"
	"time"
)

const (
	DefaultRecommendationLimit = 5
	MaxRecommendationLimit     = 10
	TimelineDescriptionLength  = 120
)

var (
	MessageSuccessGetTimeline        = "timeline retrieved"
	MessageSuccessGetRecommendations = "recommendations retrieved"
	MessageSuccessGetRecipeDetail    = "recipe detail retrieved"
	MessageSuccessCreateRecipe       = "recipe shared successfully"
	MessageSuccessUpdateRecipe       = "recipe updated successfully"
	MessageSuccessDeleteRecipe       = "recipe deleted successfully"
	MessageSuccessLikeRecipe         = "recipe liked"
	MessageSuccessUnlikeRecipe       = "recipe unliked"

	MessageFailedGetRecipes    = "failed to get recipes"
	MessageFailedCreateRecipe  = "failed to create recipe"
	MessageFailedUpdateRecipe  = "failed to update recipe"
	MessageFailedDeleteRecipe  = "failed to delete recipe"
	MessageRecipeNotFound      = "recipe not found"
	MessageFailedUploadImage   = "failed to upload image"
	MessageInvalidImagePayload = "invalid image"

	ErrRecipeNotFound           = errors.New("recipe not found")
	ErrUnauthorizedRecipeAccess = errors.New("unauthorized access to recipe")
	ErrMasterIngredientNotFound = errors.New("master ingredient not found")
	ErrInvalidImageFormat       = errors.New("image must be jpeg, jpg, png or webp")
	ErrImageTooLarge            = errors.New("image must not exceed 2MB")

	ErrAlreadyLiked = NewSoftError("you already like this recipe")
	ErrNotLiked     = NewSoftError("you have not liked this recipe")
)

type (
	IngredientInput struct {
		Name               string  `json:"name" form:"name" validate:"required_without=MasterIngredientID,max=255"`
		MasterIngredientID string  `json:"master_ingredient_id" form:"master_ingredient_id" validate:"omitempty,uuid"`
		Quantity           string  `json:"quantity" form:"quantity" validate:"required,max=50"`
		Unit               *string `json:"unit" form:"unit" validate:"omitempty,max=50"`
	}

	CookingStepInput struct {
		StepNumber  int     `json:"step_number" form:"step_number" validate:"required,min=1"`
		Description string  `json:"description" form:"description" validate:"required"`
		Image       *string `json:"image" form:"image" validate:"omitempty,max=255"`
	}

	CreateRecipeRequest struct {
		Title        string                `json:"title" form:"title" validate:"required,max=255"`
		Description  string                `json:"description" form:"description" validate:"required"`
		CookingTime  int                   `json:"cooking_time" form:"cooking_time" validate:"required,min=1"`
		Servings     int                   `json:"servings" form:"servings" validate:"required,min=1"`
		Ingredients  []IngredientInput     `json:"ingredients" form:"ingredients" validate:"required,min=1,dive"`
		CookingSteps []CookingStepInput    `json:"cooking_steps" form:"cooking_steps" validate:"required,min=1,dive"`
		Image        *multipart.FileHeader `json:"-" form:"-"`
	}

	// UpdateRecipeRequest is a partial update. Nil fields are left alone; a
	// non-nil ingredient or step list replaces the whole set.
	UpdateRecipeRequest struct {
		Title        *string               `json:"title" form:"title" validate:"omitempty,min=1,max=255"`
		Description  *string               `json:"description" form:"description" validate:"omitempty,min=1"`
		CookingTime  *int                  `json:"cooking_time" form:"cooking_time" validate:"omitempty,min=1"`
		Servings     *int                  `json:"servings" form:"servings" validate:"omitempty,min=1"`
		Ingredients  []IngredientInput     `json:"ingredients" form:"ingredients" validate:"omitempty,min=1,dive"`
		CookingSteps []CookingStepInput    `json:"cooking_steps" form:"cooking_steps" validate:"omitempty,min=1,dive"`
		Image        *multipart.FileHeader `json:"-" form:"-"`
	}

	RecipeListItem struct {
		ID             string      `json:"id"`
		Title          string      `json:"title"`
		ImageURL       *string     `json:"image_url"`
		Description    string      `json:"description"`
		CookingTime    int         `json:"cooking_time"`
		Servings       int         `json:"servings"`
		LikesCount     int         `json:"likes_count"`
		BookmarksCount int         `json:"bookmarks_count"`
		IsLiked        bool        `json:"is_liked"`
		IsBookmarked   bool        `json:"is_bookmarked"`
		User           UserSummary `json:"user"`
		CreatedAt      time.Time   `json:"created_at"`
	}

	RecipeOwner struct {
		UserSummary
		FollowersCount int  `json:"followers_count"`
		IsFollowed     bool `json:"is_followed"`
	}

	IngredientResponse struct {
		ID                 string  `json:"id"`
		Name               string  `json:"name"`
		Quantity           string  `json:"quantity"`
		Unit               *string `json:"unit"`
		MasterIngredientID *string `json:"master_ingredient_id,omitempty"`
	}

	CookingStepResponse struct {
		ID          string  `json:"id"`
		StepNumber  int     `json:"step_number"`
		Description string  `json:"description"`
		ImageURL    *string `json:"image_url"`
	}

	RecipeDetail struct {
		ID             string                `json:"id"`
		Title          string                `json:"title"`
		ImageURL       *string               `json:"image_url"`
		Description    string                `json:"description"`
		CookingTime    int                   `json:"cooking_time"`
		Servings       int                   `json:"servings"`
		LikesCount     int                   `json:"likes_count"`
		BookmarksCount int                   `json:"bookmarks_count"`
		IsLiked        bool                  `json:"is_liked"`
		IsBookmarked   bool                  `json:"is_bookmarked"`
		User           RecipeOwner           `json:"user"`
		Ingredients    []IngredientResponse  `json:"ingredients"`
		Steps          []CookingStepResponse `json:"steps"`
		CreatedAt      time.Time             `json:"created_at"`
		UpdatedAt      time.Time             `json:"updated_at"`
	}

	RecipeRecommendation struct {
		ID          string  `json:"id"`
		Title       string  `json:"title"`
		ImageURL    *string `json:"image_url"`
		CookingTime int     `json:"cooking_time"`
		LikesCount  int     `json:"likes_count"`
	}

	LikeResponse struct {
		IsLiked    bool `json:"is_liked"`
		LikesCount int  `json:"likes_count"`
	}
)
