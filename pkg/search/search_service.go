package search

import (
	"context"
	"strings"

	"recipe-share-api/domain"
	"recipe-share-api/entities"
	"recipe-share-api/internal/logging"
	"recipe-share-api/internal/utils"
	"recipe-share-api/internal/utils/storage"
	"recipe-share-api/pkg/recipe"

	"github.com/google/uuid"
)

type (
	SearchService interface {
		SearchRecipes(ctx context.Context, req domain.SearchRecipeRequest, viewer *uuid.UUID, page utils.PageQuery) ([]domain.RecipeListItem, int64, error)
		SearchByIngredients(ctx context.Context, names []string, viewer *uuid.UUID, page utils.PageQuery) ([]domain.IngredientSearchItem, int64, error)
		GetSuggestions(ctx context.Context, query string, limit int) (domain.Suggestions, error)
		GetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]domain.SearchHistoryItem, error)
		ClearHistory(ctx context.Context, userID uuid.UUID) error
		DeleteHistoryKeyword(ctx context.Context, userID uuid.UUID, keyword string) error
	}

	searchService struct {
		searchRepository SearchRepository
		recipeRepository recipe.RecipeRepository
		storage          storage.Storage
	}
)

func NewSearchService(searchRepository SearchRepository, recipeRepository recipe.RecipeRepository, st storage.Storage) SearchService {
	return &searchService{
		searchRepository: searchRepository,
		recipeRepository: recipeRepository,
		storage:          st,
	}
}

// SearchRecipes logs the raw keyword for authenticated viewers.
func (s *searchService) SearchRecipes(ctx context.Context, req domain.SearchRecipeRequest, viewer *uuid.UUID, page utils.PageQuery) ([]domain.RecipeListItem, int64, error) {
	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = domain.SortRelevance
	}
	filter := RecipeFilter{Query: req.Q, SortBy: sortBy, CookingTimeMax: req.CookingTimeMax}

	recipes, total, err := s.searchRepository.SearchRecipes(ctx, filter, page.Offset(), page.PerPage)
	if err != nil {
		return nil, 0, err
	}

	if viewer != nil {
		if err := s.searchRepository.CreateHistory(ctx, &entities.SearchHistory{UserID: *viewer, Keyword: req.Q}); err != nil {
			logging.Warn().Err(err).Str("user_id", viewer.String()).Msg("failed to save search history")
		}
	}

	items, err := recipe.BuildListItems(ctx, s.recipeRepository, s.storage, viewer, recipes, 0)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *searchService) SearchByIngredients(ctx context.Context, names []string, viewer *uuid.UUID, page utils.PageQuery) ([]domain.IngredientSearchItem, int64, error) {
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			cleaned = append(cleaned, n)
		}
	}
	if len(cleaned) == 0 {
		return []domain.IngredientSearchItem{}, 0, nil
	}

	hits, total, err := s.searchRepository.SearchByIngredients(ctx, cleaned, page.Offset(), page.PerPage)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.RecipeID)
	}
	recipes, err := s.searchRepository.GetRecipesWithOwner(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[uuid.UUID]*entities.Recipe, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
	}

	flags, err := recipe.LoadViewerFlags(ctx, s.recipeRepository, viewer, recipes)
	if err != nil {
		return nil, 0, err
	}

	items := make([]domain.IngredientSearchItem, 0, len(hits))
	for _, h := range hits {
		r, ok := byID[h.RecipeID]
		if !ok {
			continue
		}
		items = append(items, domain.IngredientSearchItem{
			RecipeListItem:     recipe.ToListItem(r, flags, s.storage, 0),
			MatchedIngredients: h.MatchedIngredients,
		})
	}
	return items, total, nil
}

// GetSuggestions skips storage entirely for a blank query.
func (s *searchService) GetSuggestions(ctx context.Context, query string, limit int) (domain.Suggestions, error) {
	out := domain.Suggestions{Recipes: []string{}, Ingredients: []string{}}
	query = strings.TrimSpace(query)
	if query == "" {
		return out, nil
	}

	titles, err := s.searchRepository.SuggestRecipeTitles(ctx, query, limit)
	if err != nil {
		return out, err
	}
	names, err := s.searchRepository.SuggestIngredientNames(ctx, query, limit)
	if err != nil {
		return out, err
	}
	if titles != nil {
		out.Recipes = titles
	}
	if names != nil {
		out.Ingredients = names
	}
	return out, nil
}

func (s *searchService) GetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]domain.SearchHistoryItem, error) {
	rows, err := s.searchRepository.GetHistory(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SearchHistoryItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.SearchHistoryItem{Keyword: row.Keyword, SearchedAt: row.SearchedAt})
	}
	return out, nil
}

func (s *searchService) ClearHistory(ctx context.Context, userID uuid.UUID) error {
	_, err := s.searchRepository.ClearHistory(ctx, userID)
	return err
}

func (s *searchService) DeleteHistoryKeyword(ctx context.Context, userID uuid.UUID, keyword string) error {
	_, err := s.searchRepository.DeleteHistoryKeyword(ctx, userID, keyword)
	return err
}
