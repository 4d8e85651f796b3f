package storage

import (
	"context"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"recipe-share-api/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{
	URL:          "https://store.example.com/",
	RecipeBucket: "recipes",
	AvatarBucket: "avatars",
}

func TestPublicURL(t *testing.T) {
	got := testConfig.PublicURL("recipes", "r1/image_1_abcdef.png")
	require.NotNil(t, got)
	assert.Equal(t, "https://store.example.com/storage/v1/object/public/recipes/r1/image_1_abcdef.png", *got)

	assert.Nil(t, testConfig.PublicURL("recipes", ""))

	abs := "https://cdn.example.com/pic.png"
	assert.Equal(t, abs, *testConfig.PublicURL("recipes", abs))
}

func TestObjectPath(t *testing.T) {
	cases := map[string]string{
		"https://store.example.com/storage/v1/object/public/recipes/r1/a.png": "r1/a.png",
		"https://store.example.com/storage/v1/object/recipes/r1/a.png":        "r1/a.png",
		"https://other.host/storage/v1/object/public/recipes/r1/a.png":        "r1/a.png",
		"recipes/r1/a.png":                      "r1/a.png",
		"r1/a.png":                              "r1/a.png",
		"  ":                                    "",
		"https://cdn.example.com/elsewhere.png": "",
	}
	for in, want := range cases {
		assert.Equal(t, want, testConfig.ObjectPath("recipes", in), in)
	}
}

func TestKeys(t *testing.T) {
	now := time.Unix(1700000000, 0)

	key := RecipeImageKey("r1", "Photo.PNG", now)
	assert.True(t, strings.HasPrefix(key, "r1/image_1700000000_"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)
	assert.Len(t, strings.TrimSuffix(strings.TrimPrefix(key, "r1/image_1700000000_"), ".png"), 6)

	avatar := AvatarKey("u1", "me.webp", now)
	assert.True(t, strings.HasPrefix(avatar, "u1/avatar_1700000000_"), avatar)
	assert.True(t, strings.HasSuffix(avatar, ".webp"), avatar)
	assert.True(t, strings.HasSuffix(AvatarKey("u1", "noext", now), ".jpg"))
	assert.NotEqual(t, avatar, AvatarKey("u1", "me.webp", now), "same second must not reuse a key")
}

func TestValidateImage(t *testing.T) {
	assert.NoError(t, ValidateImage(&multipart.FileHeader{Filename: "a.jpeg", Size: 10}))
	assert.ErrorIs(t, ValidateImage(&multipart.FileHeader{Filename: "a.gif", Size: 10}), domain.ErrInvalidImageFormat)
	assert.ErrorIs(t, ValidateImage(&multipart.FileHeader{Filename: "a.png", Size: MaxImageSize + 1}), domain.ErrImageTooLarge)
	assert.ErrorIs(t, ValidateImage(nil), domain.ErrInvalidImageFormat)
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(testConfig)

	key, err := m.UploadRecipeImage(ctx, "r1", &multipart.FileHeader{Filename: "a.png", Size: 1})
	require.NoError(t, err)
	assert.True(t, m.Has("recipes", key))

	url := m.RecipeImageURL(key)
	require.NotNil(t, url)
	require.NoError(t, m.DeleteRecipeImage(ctx, *url))
	assert.False(t, m.Has("recipes", key))

	m.FailPut = true
	_, err = m.UploadAvatar(ctx, "u1", &multipart.FileHeader{Filename: "a.png", Size: 1})
	assert.Error(t, err)
}
