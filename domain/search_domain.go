package domain

import "time"

const (
	SortRelevance   = "relevance"
	SortNewest      = "newest"
	SortPopular     = "popular"
	SortCookingTime = "cooking_time"

	DefaultSuggestionLimit = 10
	MaxSuggestionLimit     = 20
	DefaultHistoryLimit    = 10
	MaxHistoryLimit        = 20
)

var (
	MessageSuccessSearchRecipes     = "search results retrieved"
	MessageSuccessSearchIngredients = "ingredient search results retrieved"
	MessageSuccessGetSuggestions    = "suggestions retrieved"
	MessageSuccessGetHistory        = "search history retrieved"
	MessageSuccessClearHistory      = "search history cleared"

	MessageFailedSearch = "failed to search recipes"
)

type (
	SearchRecipeRequest struct {
		Q              string `query:"q" validate:"required,min=1,max=255"`
		SortBy         string `query:"sort_by" validate:"omitempty,oneof=relevance newest popular cooking_time"`
		CookingTimeMax int    `query:"cooking_time_max" validate:"omitempty,min=1"`
	}

	SearchByIngredientsRequest struct {
		Ingredients []string `json:"ingredients" validate:"required,min=1,max=10,dive,required,max=100"`
		Page        int      `json:"page" validate:"omitempty,min=1"`
		PerPage     int      `json:"per_page" validate:"omitempty,min=1"`
	}

	IngredientSearchItem struct {
		RecipeListItem
		MatchedIngredients int `json:"matched_ingredients"`
	}

	Suggestions struct {
		Recipes     []string `json:"recipes"`
		Ingredients []string `json:"ingredients"`
	}

	SearchHistoryItem struct {
		Keyword    string    `json:"keyword"`
		SearchedAt time.Time `json:"searched_at"`
	}
)
