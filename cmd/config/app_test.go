package config_test

import (
	"bytes"
	"context"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recipe-share-api/cmd/config"
	"recipe-share-api/domain"
	"recipe-share-api/internal/metrics"
	"recipe-share-api/internal/testutils"
	"recipe-share-api/internal/utils"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noGoogle struct{}

func (noGoogle) Verify(context.Context, string) (*domain.GoogleProfile, error) {
	return nil, domain.ErrGoogleTokenRejected
}

type envelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Data       json.RawMessage    `json:"data"`
	Errors     map[string]any     `json:"errors"`
	Pagination *domain.Pagination `json:"pagination"`
	Meta       domain.Meta        `json:"meta"`
}

func newApp(t *testing.T) *fiber.App {
	return buildApp(t, nil)
}

func buildApp(t *testing.T, tweak func(*config.Dependencies)) *fiber.App {
	deps := config.Dependencies{
		DB:        testutils.InitMemoryDB(t),
		Storage:   testutils.NewStorage(),
		Google:    noGoogle{},
		JWTSecret: "test-secret",
		AppName:   "Recipe Share API",
		TokenTTL:  time.Hour,
	}
	if tweak != nil {
		tweak(&deps)
	}
	return config.Build(deps)
}

func do(t *testing.T, app *fiber.App, req *http.Request, token string) (int, envelope) {
	t.Helper()

	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out envelope
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return resp.StatusCode, out
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func register(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	status, res := do(t, app, jsonRequest(t, fiber.MethodPost, "/api/v1/auth/register", fiber.Map{
		"name":                  "Alice",
		"username":              username,
		"email":                 username + "@x.com",
		"password":              "secret123",
		"password_confirmation": "secret123",
	}), "")
	require.Equal(t, fiber.StatusCreated, status, res.Message)

	var data domain.AuthResponse
	require.NoError(t, json.Unmarshal(res.Data, &data))
	return data.Token.AccessToken
}

func createRecipe(t *testing.T, app *fiber.App, token string) domain.RecipeDetail {
	t.Helper()

	status, res := do(t, app, jsonRequest(t, fiber.MethodPost, "/api/v1/recipes", fiber.Map{
		"title":        "Nasi Goreng",
		"description":  "Fried rice",
		"cooking_time": 20,
		"servings":     2,
		"ingredients":  []fiber.Map{{"name": "Nasi", "quantity": "2 piring"}, {"name": "Telur", "quantity": "1"}},
		"cooking_steps": []fiber.Map{
			{"step_number": 2, "description": "Add rice"},
			{"step_number": 1, "description": "Heat oil"},
		},
	}), token)
	require.Equal(t, fiber.StatusCreated, status, res.Message)

	var detail domain.RecipeDetail
	require.NoError(t, json.Unmarshal(res.Data, &detail))
	return detail
}

func TestRegisterThenMe(t *testing.T) {
	app := newApp(t)
	token := register(t, app, "alice")

	status, res := do(t, app, httptest.NewRequest(fiber.MethodGet, "/api/v1/auth/me", nil), token)
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.Meta.RequestID)

	var me domain.UserProfile
	require.NoError(t, json.Unmarshal(res.Data, &me))
	assert.Equal(t, "alice", me.Username)
	assert.Zero(t, me.RecipesCount)
}

func TestRegisterValidation(t *testing.T) {
	app := newApp(t)

	status, res := do(t, app, jsonRequest(t, fiber.MethodPost, "/api/v1/auth/register", fiber.Map{
		"name":                  "A",
		"username":              "9lives",
		"email":                 "nope",
		"password":              "secret123",
		"password_confirmation": "other",
	}), "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, domain.MessageValidationFailed, res.Message)
	for _, field := range []string{"name", "username", "email", "password_confirmation"} {
		assert.Contains(t, res.Errors, field)
	}

	register(t, app, "alice")
	status, res = do(t, app, jsonRequest(t, fiber.MethodPost, "/api/v1/auth/register", fiber.Map{
		"name":                  "Alice",
		"username":              "alice",
		"email":                 "other@x.com",
		"password":              "secret123",
		"password_confirmation": "secret123",
	}), "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, res.Errors, "username")
}

func TestTokensDoNotDependOnAppName(t *testing.T) {
	app := buildApp(t, func(d *config.Dependencies) { d.AppName = "" })
	token := register(t, app, "alice")

	status, _ := do(t, app, httptest.NewRequest(fiber.MethodGet, "/api/v1/auth/me", nil), token)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestRateLimitedResponse(t *testing.T) {
	app := buildApp(t, func(d *config.Dependencies) { d.RateLimit = 1 })
	limited := metrics.HTTPRequestsTotal.WithLabelValues(fiber.MethodGet, "unmatched", "429")
	before := testutil.ToFloat64(limited)

	status, _ := do(t, app, httptest.NewRequest(fiber.MethodGet, "/api/v1/recipes/timeline", nil), "")
	require.Equal(t, fiber.StatusOK, status)

	status, res := do(t, app, httptest.NewRequest(fiber.MethodGet, "/api/v1/recipes/timeline", nil), "")
	require.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, domain.MessageTooManyRequests, res.Message)
	assert.NotEmpty(t, res.Meta.RequestID)
	assert.Equal(t, before+1, testutil.ToFloat64(limited))
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	app := newApp(t)

	for _, token := range []string{"", "garbage"} {
		status, res := do(t, app, httptest.NewRequest(fiber.MethodGet, "/api/v1/auth/me", nil), token)
		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.False(t, res.Success)
		assert.Equal(t, domain.MessageUnauthenticated, res.Message)
	}
}

func TestLogoutRevokes(t *testing.T) {
	app := newApp(t)
	token := register(t, app, "alice")

	status, _ := do(t, app, httptest.NewRequest(fiber.MethodPost, "/api/v1/auth/logout", nil), token)
	require.Equal(t, fiber.StatusOK, status)

	status, _ = do(t, app, httptest.NewRequest(fiber.MethodGet, "/api/v1/auth/me", nil), token)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestRecipeFlow(t *testing.T) {
	app := newApp(t)
	alice := register(t, app, "alice")
	bob := register(t, app, "bob")
	created := createRecipe(t, app, alice)

	require.Len(t, created.Steps, 2)
	assert.Equal(t, "Heat oil", created.Steps[0].Description)

	t.Run("anonymous detail", func(t *testing.T) {
		status, res := do(t, app, httptest.NewRequest(fiber.MethodGet, "/api/v1/recipes/"+created.ID, nil), "")
		require.Equal(t, fiber.StatusOK, status)
		var detail domain.RecipeDetail
		require.NoError(t, json.Unmarshal(res.Data, &detail))
		assert.False(t, detail.IsLiked)
		assert.False(t, detail.IsBookmarked)
		assert.False(t, detail.User.IsFollowed)
	})

	t.Run("like twice is a soft error", func(t *testing.T) {
		target := "/api/v1/recipes/" + created.ID + "/like"
		status, _ := do(t, app, httptest.NewRequest(fiber.MethodPost, target, nil), bob)
		require.Equal(t, fiber.StatusOK, status)

		status, res := do(t, app, httptest.NewRequest(fiber.MethodPost, target, nil), bob)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, domain.ErrAlreadyLiked.Message, res.Message)
		assert.Equal(t, domain.ErrAlreadyLiked.Message, res.Errors["error"])
	})

	t.Run("update rejects a blank title", func(t *testing.T) {
		for _, title := range []string{"", "   "} {
			status, res := do(t, app, jsonRequest(t, fiber.MethodPut, "/api/v1/recipes/"+created.ID, fiber.Map{"title": title}), alice)
			assert.Equal(t, fiber.StatusUnprocessableEntity, status)
			assert.Contains(t, res.Errors, "title")
		}

		status, res := do(t, app, httptest.NewRequest(fiber.MethodGet, "/api/v1/recipes/"+created.ID, nil), "")
		require.Equal(t, fiber.StatusOK, status)
		var detail domain.RecipeDetail
		require.NoError(t, json.Unmarshal(res.Data, &detail))
		assert.Equal(t, created.Title, detail.Title)
	})

	t.Run("only the owner deletes", func(t *testing.T) {
		status, _ := do(t, app, httptest.NewRequest(fiber.MethodDelete, "/api/v1/recipes/"+created.ID, nil), bob)
		assert.Equal(t, fiber.StatusForbidden, status)
	})

	t.Run("timeline clamps per_page", func(t *testing.T) {
		status, res := do(t, app, httptest.NewRequest(fiber.MethodGet, "/api/v1/recipes/timeline?per_page=1000", nil), "")
		require.Equal(t, fiber.StatusOK, status)
		require.NotNil(t, res.Pagination)
		assert.Equal(t, domain.MaxPerPage, res.Pagination.PerPage)
		assert.Equal(t, int64(1), res.Pagination.Total)
	})

	t.Run("unknown recipe", func(t *testing.T) {
		status, res := do(t, app, httptest.NewRequest(fiber.MethodGet, "/api/v1/recipes/not-a-uuid", nil), "")
		assert.Equal(t, fiber.StatusNotFound, status)
		assert.Equal(t, domain.MessageRecipeNotFound, res.Message)
	})

	t.Run("ingredient search caps the body page", func(t *testing.T) {
		status, res := do(t, app, jsonRequest(t, fiber.MethodPost, "/api/v1/search/ingredients", fiber.Map{
			"ingredients": []string{"garlic"},
			"page":        math.MaxInt,
		}), "")
		require.Equal(t, fiber.StatusOK, status)
		require.NotNil(t, res.Pagination)
		assert.Equal(t, utils.MaxPage, res.Pagination.CurrentPage)
		assert.Nil(t, res.Pagination.From)
	})

	t.Run("search records history", func(t *testing.T) {
		status, res := do(t, app, httptest.NewRequest(fiber.MethodGet, "/api/v1/search/recipes?q=goreng", nil), bob)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, int64(1), res.Pagination.Total)

		status, res = do(t, app, httptest.NewRequest(fiber.MethodGet, "/api/v1/search/history", nil), bob)
		require.Equal(t, fiber.StatusOK, status)
		var history []domain.SearchHistoryItem
		require.NoError(t, json.Unmarshal(res.Data, &history))
		require.Len(t, history, 1)
		assert.Equal(t, "goreng", history[0].Keyword)
	})
}

func TestCreateRecipeMultipart(t *testing.T) {
	app := newApp(t)
	token := register(t, app, "alice")

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fields := map[string]string{
		"title":                         "Soto Ayam",
		"description":                   "Chicken soup",
		"cooking_time":                  "45",
		"servings":                      "4",
		"ingredients[0][name]":          "Ayam",
		"ingredients[0][quantity]":      "500",
		"ingredients[0][unit]":          "gram",
		"cooking_steps[0][step_number]": "1",
		"cooking_steps[0][description]": "Boil",
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("image", "soto.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("not really a png"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/recipes", body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	status, res := do(t, app, req, token)
	require.Equal(t, fiber.StatusCreated, status, res.Message)

	var detail domain.RecipeDetail
	require.NoError(t, json.Unmarshal(res.Data, &detail))
	require.Len(t, detail.Ingredients, 1)
	require.NotNil(t, detail.Ingredients[0].Unit)
	assert.Equal(t, "gram", *detail.Ingredients[0].Unit)
	require.NotNil(t, detail.ImageURL)
}

func TestUnknownEndpoint(t *testing.T) {
	app := newApp(t)

	status, res := do(t, app, httptest.NewRequest(fiber.MethodGet, "/api/v1/nope", nil), "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, domain.MessageEndpointNotFound, res.Message)
	assert.False(t, res.Success)
}

func TestHealth(t *testing.T) {
	app := newApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var health domain.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "Recipe Share API", health.App)
}
