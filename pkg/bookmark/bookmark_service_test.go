package bookmark_test

import (
	"context"
	"testing"

	"recipe-share-api/domain"
	"recipe-share-api/entities"
	"recipe-share-api/internal/testutils"
	"recipe-share-api/internal/utils"
	"recipe-share-api/pkg/bookmark"
	"recipe-share-api/pkg/recipe"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookmarkLifecycle(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	st := testutils.NewStorage()
	svc := bookmark.NewBookmarkService(bookmark.NewBookmarkRepository(db), recipe.NewRecipeRepository(db), st)
	ctx := context.Background()

	alice := testutils.SetupUser(t, db, "alice", "alice@x.com", "secret123")
	bob := testutils.SetupUser(t, db, "bob", "bob@x.com", "secret123")
	r := testutils.SetupRecipe(t, db, alice, "Gado-gado", []string{"Tahu"}, 2)
	id := r.ID.String()

	res, err := svc.AddBookmark(ctx, id, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookmarkResponse{IsBookmarked: true, BookmarksCount: 1}, res)

	_, err = svc.AddBookmark(ctx, id, bob.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyBookmarked)
	assert.Equal(t, int64(1), testutils.Count(t, db, &entities.Bookmark{}, "recipe_id = ?", r.ID))

	ok, err := svc.IsBookmarked(ctx, id, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	items, total, err := svc.GetBookmarks(ctx, bob.ID, utils.PageQuery{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].ID)
	assert.True(t, items[0].IsBookmarked)
	assert.False(t, items[0].IsLiked)
	assert.Equal(t, "alice", items[0].User.Username)

	res, err = svc.RemoveBookmark(ctx, id, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookmarkResponse{IsBookmarked: false, BookmarksCount: 0}, res)

	_, err = svc.RemoveBookmark(ctx, id, bob.ID)
	assert.ErrorIs(t, err, domain.ErrNotBookmarked)

	var stored entities.Recipe
	testutils.Reload(t, db, &stored, r.ID)
	assert.Equal(t, 0, stored.BookmarksCount)

	items, total, err = svc.GetBookmarks(ctx, bob.ID, utils.PageQuery{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestBookmarkUnknownRecipe(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	svc := bookmark.NewBookmarkService(bookmark.NewBookmarkRepository(db), recipe.NewRecipeRepository(db), testutils.NewStorage())
	ctx := context.Background()
	bob := testutils.SetupUser(t, db, "bob", "bob@x.com", "secret123")

	_, err := svc.AddBookmark(ctx, uuid.NewString(), bob.ID)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)

	_, err = svc.AddBookmark(ctx, "nope", bob.ID)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)

	ok, err := svc.IsBookmarked(ctx, "nope", bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
