package user_test

import (
	"context"
	"testing"

	"recipe-share-api/domain"
	"recipe-share-api/entities"
	"recipe-share-api/internal/testutils"
	"recipe-share-api/internal/utils"
	"recipe-share-api/internal/utils/storage"
	"recipe-share-api/pkg/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, *storage.Memory, user.UserService) {
	db := testutils.InitMemoryDB(t)
	st := testutils.NewStorage()
	return db, st, user.NewUserService(user.NewUserRepository(db), st)
}

func ptr[T any](v T) *T { return &v }

func TestFollowUnfollow(t *testing.T) {
	db, _, svc := setup(t)
	ctx := context.Background()
	alice := testutils.SetupUser(t, db, "alice", "alice@x.com", "secret123")
	bob := testutils.SetupUser(t, db, "bob", "bob@x.com", "secret123")

	res, err := svc.Follow(ctx, alice.ID.String(), "bob")
	require.NoError(t, err)
	assert.True(t, res.IsFollowed)
	assert.Equal(t, 1, res.FollowersCount)

	_, err = svc.Follow(ctx, alice.ID.String(), "bob")
	assert.ErrorIs(t, err, domain.ErrAlreadyFollowing)

	var a, b entities.User
	testutils.Reload(t, db, &a, alice.ID)
	testutils.Reload(t, db, &b, bob.ID)
	assert.Equal(t, 1, a.FollowingCount)
	assert.Equal(t, 1, b.FollowersCount)

	profile, err := svc.GetByUsername(ctx, "bob", alice.ID.String())
	require.NoError(t, err)
	assert.True(t, profile.IsFollowed)

	profile, err = svc.GetByUsername(ctx, "bob", "")
	require.NoError(t, err)
	assert.False(t, profile.IsFollowed)

	res, err = svc.Unfollow(ctx, alice.ID.String(), "bob")
	require.NoError(t, err)
	assert.False(t, res.IsFollowed)
	assert.Equal(t, 0, res.FollowersCount)

	_, err = svc.Unfollow(ctx, alice.ID.String(), "bob")
	assert.ErrorIs(t, err, domain.ErrNotFollowing)

	testutils.Reload(t, db, &a, alice.ID)
	assert.Equal(t, 0, a.FollowingCount)
	assert.Zero(t, testutils.Count(t, db, &entities.Follow{}, "1 = 1"))
}

func TestFollowRules(t *testing.T) {
	db, _, svc := setup(t)
	ctx := context.Background()
	alice := testutils.SetupUser(t, db, "alice", "alice@x.com", "secret123")

	_, err := svc.Follow(ctx, alice.ID.String(), "alice")
	assert.ErrorIs(t, err, domain.ErrCannotFollowSelf)

	_, err = svc.Follow(ctx, alice.ID.String(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	db, st, svc := setup(t)
	ctx := context.Background()
	alice := testutils.SetupUser(t, db, "alice", "alice@x.com", "secret123")
	testutils.SetupUser(t, db, "bob", "bob@x.com", "secret123")
	id := alice.ID.String()

	_, err := svc.UpdateProfile(ctx, id, domain.UpdateProfileRequest{Username: ptr("bob")})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	profile, err := svc.UpdateProfile(ctx, id, domain.UpdateProfileRequest{
		Name:   ptr("Alice Doe"),
		Avatar: testutils.FileHeader(t, "me.png", 100),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Doe", profile.Name)
	assert.Equal(t, "alice", profile.Username)
	require.NotNil(t, profile.AvatarURL)

	var stored entities.User
	testutils.Reload(t, db, &stored, alice.ID)
	require.NotNil(t, stored.Avatar)
	first := *stored.Avatar
	assert.True(t, st.Has("avatars", first))

	t.Run("replacing the avatar removes the old one", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, id, domain.UpdateProfileRequest{Avatar: testutils.FileHeader(t, "me2.jpg", 100)})
		require.NoError(t, err)

		testutils.Reload(t, db, &stored, alice.ID)
		assert.NotEqual(t, first, *stored.Avatar)
		assert.True(t, st.Has("avatars", *stored.Avatar))
		assert.False(t, st.Has("avatars", first))
	})

	t.Run("back to back uploads keep the current avatar", func(t *testing.T) {
		for _, name := range []string{"a.jpg", "b.jpg"} {
			_, err := svc.UpdateProfile(ctx, id, domain.UpdateProfileRequest{Avatar: testutils.FileHeader(t, name, 100)})
			require.NoError(t, err)
		}

		testutils.Reload(t, db, &stored, alice.ID)
		require.NotNil(t, stored.Avatar)
		assert.True(t, st.Has("avatars", *stored.Avatar))
		assert.Equal(t, 1, st.Len())
	})

	t.Run("provider avatars are left alone", func(t *testing.T) {
		require.NoError(t, db.Model(&entities.User{}).Where("id = ?", alice.ID).Update("avatar", "https://lh3.googleusercontent.com/a/photo").Error)
		before := st.Len()

		_, err := svc.UpdateProfile(ctx, id, domain.UpdateProfileRequest{Avatar: testutils.FileHeader(t, "me3.webp", 100)})
		require.NoError(t, err)
		assert.Equal(t, before+1, st.Len())
	})
}

func TestUpdateLanguage(t *testing.T) {
	db, _, svc := setup(t)
	alice := testutils.SetupUser(t, db, "alice", "alice@x.com", "secret123")

	res, err := svc.UpdateLanguage(context.Background(), alice.ID.String(), domain.UpdateLanguageRequest{Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, "en", res.Language)

	var stored entities.User
	testutils.Reload(t, db, &stored, alice.ID)
	assert.Equal(t, entities.LanguageEN, stored.Language)
}

func TestChangeEmail(t *testing.T) {
	db, _, svc := setup(t)
	ctx := context.Background()
	alice := testutils.SetupUser(t, db, "alice", "alice@x.com", "secret123")
	testutils.SetupUser(t, db, "bob", "bob@x.com", "secret123")
	id := alice.ID.String()

	_, err := svc.ChangeEmail(ctx, id, domain.ChangeEmailRequest{Email: "new@x.com", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrWrongPassword)

	_, err = svc.ChangeEmail(ctx, id, domain.ChangeEmailRequest{Email: "bob@x.com", Password: "secret123"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	profile, err := svc.ChangeEmail(ctx, id, domain.ChangeEmailRequest{Email: "new@x.com", Password: "secret123"})
	require.NoError(t, err)
	require.NotNil(t, profile.Email)
	assert.Equal(t, "new@x.com", *profile.Email)
	assert.Nil(t, profile.EmailVerifiedAt)
}

func TestDeleteAccount(t *testing.T) {
	db, st, svc := setup(t)
	ctx := context.Background()
	alice := testutils.SetupUser(t, db, "alice", "alice@x.com", "secret123")
	bob := testutils.SetupUser(t, db, "bob", "bob@x.com", "secret123")

	own := testutils.SetupRecipe(t, db, alice, "Sayur Asem", []string{"Asam"}, 2)
	key, err := st.UploadRecipeImage(ctx, own.ID.String(), testutils.FileHeader(t, "x.jpg", 10))
	require.NoError(t, err)
	require.NoError(t, db.Model(own).Update("image", key).Error)

	bobs := testutils.SetupRecipe(t, db, bob, "Pecel", nil, 1)
	_, err = svc.Follow(ctx, alice.ID.String(), "bob")
	require.NoError(t, err)
	require.NoError(t, db.Create(&entities.Like{UserID: alice.ID, RecipeID: bobs.ID}).Error)
	require.NoError(t, db.Model(bobs).UpdateColumn("likes_count", 1).Error)

	t.Run("password rules", func(t *testing.T) {
		err := svc.DeleteAccount(ctx, alice.ID.String(), domain.DeleteAccountRequest{})
		assert.ErrorIs(t, err, domain.ErrPasswordRequired)
		err = svc.DeleteAccount(ctx, alice.ID.String(), domain.DeleteAccountRequest{Password: "nope"})
		assert.ErrorIs(t, err, domain.ErrWrongPassword)
	})

	require.NoError(t, svc.DeleteAccount(ctx, alice.ID.String(), domain.DeleteAccountRequest{Password: "secret123"}))

	assert.Zero(t, testutils.Count(t, db, &entities.User{}, "id = ?", alice.ID))
	assert.Zero(t, testutils.Count(t, db, &entities.Recipe{}, "user_id = ?", alice.ID))
	assert.Zero(t, testutils.Count(t, db, &entities.Ingredient{}, "recipe_id = ?", own.ID))
	assert.Zero(t, testutils.Count(t, db, &entities.Follow{}, "1 = 1"))
	assert.Zero(t, testutils.Count(t, db, &entities.Like{}, "1 = 1"))
	assert.False(t, st.Has("recipes", key))

	var b entities.User
	testutils.Reload(t, db, &b, bob.ID)
	assert.Equal(t, 0, b.FollowersCount)
	var r entities.Recipe
	testutils.Reload(t, db, &r, bobs.ID)
	assert.Equal(t, 0, r.LikesCount)
}

func TestDeleteAccountWithoutPassword(t *testing.T) {
	db, _, svc := setup(t)
	google := testutils.SetupUser(t, db, "gina", "gina@x.com", "")

	require.NoError(t, svc.DeleteAccount(context.Background(), google.ID.String(), domain.DeleteAccountRequest{}))
	assert.Zero(t, testutils.Count(t, db, &entities.User{}, "id = ?", google.ID))
}

func TestListRecipes(t *testing.T) {
	db, _, svc := setup(t)
	ctx := context.Background()
	alice := testutils.SetupUser(t, db, "alice", "alice@x.com", "secret123")
	testutils.SetupRecipe(t, db, alice, "One", nil, 0)
	testutils.SetupRecipe(t, db, alice, "Two", nil, 0)

	items, total, err := svc.ListRecipes(ctx, "alice", utils.PageQuery{Page: 1, PerPage: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 1)

	_, _, err = svc.ListRecipes(ctx, "ghost", utils.PageQuery{Page: 1, PerPage: 10})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	profile, err := svc.GetProfile(ctx, alice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(2), profile.RecipesCount)
}
