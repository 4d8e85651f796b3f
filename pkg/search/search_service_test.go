package search_test

import (
	"context"
	"testing"

	"recipe-share-api/domain"
	"recipe-share-api/entities"
	"recipe-share-api/internal/testutils"
	"recipe-share-api/internal/utils"
	"recipe-share-api/pkg/recipe"
	"recipe-share-api/pkg/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var firstPage = utils.PageQuery{Page: 1, PerPage: 10}

func newService(db *gorm.DB) search.SearchService {
	return search.NewSearchService(search.NewSearchRepository(db), recipe.NewRecipeRepository(db), testutils.NewStorage())
}

func titles(items []domain.RecipeListItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Title)
	}
	return out
}

func TestSearchRecipes(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	svc := newService(db)
	ctx := context.Background()
	alice := testutils.SetupUser(t, db, "alice", "alice@x.com", "secret123")

	nasi := testutils.SetupRecipe(t, db, alice, "Nasi Kuning", nil, 0)
	require.NoError(t, db.Model(nasi).Update("description", "served with AYAM goreng").Error)
	sate := testutils.SetupRecipe(t, db, alice, "Sate Ayam", nil, 0)
	testutils.SetupRecipe(t, db, alice, "Ayam Bakar", nil, 0)
	testutils.SetupRecipe(t, db, alice, "Es Teler", nil, 0)
	require.NoError(t, db.Model(sate).Updates(map[string]any{"cooking_time": 10, "likes_count": 5}).Error)

	t.Run("relevance ranks prefix then title then description", func(t *testing.T) {
		items, total, err := svc.SearchRecipes(ctx, domain.SearchRecipeRequest{Q: "ayam"}, nil, firstPage)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Equal(t, []string{"Ayam Bakar", "Sate Ayam", "Nasi Kuning"}, titles(items))
		assert.Equal(t, "served with AYAM goreng", items[2].Description)
	})

	t.Run("popular", func(t *testing.T) {
		items, _, err := svc.SearchRecipes(ctx, domain.SearchRecipeRequest{Q: "ayam", SortBy: domain.SortPopular}, nil, firstPage)
		require.NoError(t, err)
		require.NotEmpty(t, items)
		assert.Equal(t, "Sate Ayam", items[0].Title)
	})

	t.Run("cooking time filter", func(t *testing.T) {
		items, total, err := svc.SearchRecipes(ctx, domain.SearchRecipeRequest{Q: "ayam", CookingTimeMax: 15}, nil, firstPage)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, []string{"Sate Ayam"}, titles(items))
	})

	t.Run("wildcards match literally", func(t *testing.T) {
		_, total, err := svc.SearchRecipes(ctx, domain.SearchRecipeRequest{Q: "%"}, nil, firstPage)
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("authenticated search is recorded", func(t *testing.T) {
		_, _, err := svc.SearchRecipes(ctx, domain.SearchRecipeRequest{Q: "ayam"}, &alice.ID, firstPage)
		require.NoError(t, err)
		assert.Equal(t, int64(1), testutils.Count(t, db, &entities.SearchHistory{}, "user_id = ? AND keyword = ?", alice.ID, "ayam"))
	})
}

func TestSearchByIngredients(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	svc := newService(db)
	ctx := context.Background()
	alice := testutils.SetupUser(t, db, "alice", "alice@x.com", "secret123")

	testutils.SetupRecipe(t, db, alice, "Telur Dadar", []string{"Telur", "Garam"}, 1)
	omelette := testutils.SetupRecipe(t, db, alice, "Telur Balado", []string{"Telur", "Cabai Merah", "Bawang"}, 1)
	testutils.SetupRecipe(t, db, alice, "Es Buah", []string{"Melon"}, 1)

	items, total, err := svc.SearchByIngredients(ctx, []string{" telur ", "cabai", ""}, nil, firstPage)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, omelette.ID.String(), items[0].ID)
	assert.Equal(t, 2, items[0].MatchedIngredients)
	assert.Equal(t, 1, items[1].MatchedIngredients)
	assert.Equal(t, "alice", items[0].User.Username)

	items, total, err = svc.SearchByIngredients(ctx, []string{"  "}, nil, firstPage)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestGetSuggestions(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	svc := newService(db)
	ctx := context.Background()
	alice := testutils.SetupUser(t, db, "alice", "alice@x.com", "secret123")
	testutils.SetupRecipe(t, db, alice, "Soto Ayam", nil, 0)
	testutils.SetupRecipe(t, db, alice, "Soto Ayam", nil, 0)

	cat := &entities.IngredientCategory{Name: "Daging", Slug: "daging"}
	require.NoError(t, db.Create(cat).Error)
	require.NoError(t, db.Create(&entities.MasterIngredient{CategoryID: cat.ID, Name: "Ayam", Slug: "ayam"}).Error)

	res, err := svc.GetSuggestions(ctx, "AYA", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Soto Ayam"}, res.Recipes)
	assert.Equal(t, []string{"Ayam"}, res.Ingredients)

	res, err = svc.GetSuggestions(ctx, "   ", 10)
	require.NoError(t, err)
	assert.Equal(t, domain.Suggestions{Recipes: []string{}, Ingredients: []string{}}, res)
}

func TestSearchHistory(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	svc := newService(db)
	ctx := context.Background()
	alice := testutils.SetupUser(t, db, "alice", "alice@x.com", "secret123")
	bob := testutils.SetupUser(t, db, "bob", "bob@x.com", "secret123")

	for _, q := range []string{"soto", "rendang", "soto"} {
		_, _, err := svc.SearchRecipes(ctx, domain.SearchRecipeRequest{Q: q}, &alice.ID, firstPage)
		require.NoError(t, err)
	}
	_, _, err := svc.SearchRecipes(ctx, domain.SearchRecipeRequest{Q: "bakso"}, &bob.ID, firstPage)
	require.NoError(t, err)

	history, err := svc.GetHistory(ctx, alice.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "rendang", history[0].Keyword)
	assert.Equal(t, "soto", history[1].Keyword)
	assert.False(t, history[0].SearchedAt.IsZero())

	require.NoError(t, svc.DeleteHistoryKeyword(ctx, alice.ID, "soto"))
	history, err = svc.GetHistory(ctx, alice.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "rendang", history[0].Keyword)

	require.NoError(t, svc.ClearHistory(ctx, alice.ID))
	history, err = svc.GetHistory(ctx, alice.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, history)

	assert.Equal(t, int64(1), testutils.Count(t, db, &entities.SearchHistory{}, "user_id = ?", bob.ID))
}
