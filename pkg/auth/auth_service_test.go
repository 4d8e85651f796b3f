package auth_test

import (
	"context"
	"testing"
	"time"

	"recipe-share-api/domain"
	"recipe-share-api/entities"
	"recipe-share-api/internal/testutils"
	"recipe-share-api/pkg/auth"
	"recipe-share-api/pkg/jwt"
	"recipe-share-api/pkg/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGoogle struct {
	profile *domain.GoogleProfile
	err     error
}

func (f *fakeGoogle) Verify(context.Context, string) (*domain.GoogleProfile, error) {
	return f.profile, f.err
}

func newAuth(t *testing.T, google auth.GoogleVerifier) (*gorm.DB, auth.AuthService) {
	db := testutils.InitMemoryDB(t)
	svc := auth.NewAuthService(
		user.NewUserRepository(db),
		auth.NewTokenRepository(db),
		jwt.NewJWTService("test-secret"),
		google,
		testutils.NewStorage(),
		nil,
		time.Hour,
	)
	return db, svc
}

// failingTokens refuses to store tokens, including inside transactions.
type failingTokens struct {
	auth.TokenRepository
}

func (failingTokens) CreateToken(context.Context, *entities.AccessToken) error {
	return assert.AnError
}

func (f failingTokens) TransactionWithUsers(ctx context.Context, fn func(auth.TokenRepository, user.UserRepository) error) error {
	return f.TokenRepository.TransactionWithUsers(ctx, func(tokens auth.TokenRepository, users user.UserRepository) error {
		return fn(failingTokens{tokens}, users)
	})
}

func TestTokenFailureRollsBackNewUser(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	google := &fakeGoogle{profile: &domain.GoogleProfile{Subject: "g-1", Email: "gina@x.com", Name: "Gina"}}
	svc := auth.NewAuthService(
		user.NewUserRepository(db),
		failingTokens{auth.NewTokenRepository(db)},
		jwt.NewJWTService("test-secret"),
		google,
		testutils.NewStorage(),
		nil,
		time.Hour,
	)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerAlice())
	require.ErrorIs(t, err, assert.AnError)

	_, err = svc.LoginWithGoogle(ctx, domain.GoogleLoginRequest{IDToken: "id-token"})
	require.ErrorIs(t, err, assert.AnError)

	var users int64
	require.NoError(t, db.Model(&entities.User{}).Count(&users).Error)
	assert.Zero(t, users)
}

func registerAlice() domain.RegisterRequest {
	return domain.RegisterRequest{
		Name:                 "Alice",
		Username:             "alice",
		Email:                "alice@x.com",
		Password:             "secret123",
		PasswordConfirmation: "secret123",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db, svc := newAuth(t, &fakeGoogle{})
	ctx := context.Background()

	res, err := svc.Register(ctx, registerAlice())
	require.NoError(t, err)
	assert.Equal(t, "alice", res.User.Username)
	assert.Equal(t, auth.TokenType, res.Token.TokenType)
	assert.NotEmpty(t, res.Token.AccessToken)
	assert.Zero(t, res.User.RecipesCount)

	u, token, err := svc.Authenticate(ctx, res.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, auth.DefaultDeviceName, token.Name)

	t.Run("duplicates", func(t *testing.T) {
		_, err := svc.Register(ctx, registerAlice())
		assert.ErrorIs(t, err, domain.ErrUsernameTaken)

		req := registerAlice()
		req.Username = "alice2"
		_, err = svc.Register(ctx, req)
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
		assert.Equal(t, int64(1), testutils.Count(t, db, &entities.User{}, "1 = 1"))
	})

	t.Run("wrong password issues nothing", func(t *testing.T) {
		before := testutils.Count(t, db, &entities.AccessToken{}, "1 = 1")
		_, err := svc.Login(ctx, domain.LoginRequest{Email: "alice@x.com", Password: "wrong-one"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		_, err = svc.Login(ctx, domain.LoginRequest{Email: "nobody@x.com", Password: "secret123"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		assert.Equal(t, before, testutils.Count(t, db, &entities.AccessToken{}, "1 = 1"))
	})

	t.Run("login", func(t *testing.T) {
		res, err := svc.Login(ctx, domain.LoginRequest{Email: "alice@x.com", Password: "secret123", DeviceName: "phone"})
		require.NoError(t, err)
		_, token, err := svc.Authenticate(ctx, res.Token.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "phone", token.Name)
		assert.NotNil(t, token.LastUsedAt)
	})
}

func TestLogoutRevokesToken(t *testing.T) {
	_, svc := newAuth(t, &fakeGoogle{})
	ctx := context.Background()

	res, err := svc.Register(ctx, registerAlice())
	require.NoError(t, err)
	_, token, err := svc.Authenticate(ctx, res.Token.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))
	_, _, err = svc.Authenticate(ctx, res.Token.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestLogoutAll(t *testing.T) {
	db, svc := newAuth(t, &fakeGoogle{})
	ctx := context.Background()

	res, err := svc.Register(ctx, registerAlice())
	require.NoError(t, err)
	_, err = svc.Login(ctx, domain.LoginRequest{Email: "alice@x.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), testutils.Count(t, db, &entities.AccessToken{}, "1 = 1"))

	require.NoError(t, svc.LogoutAll(ctx, res.User.ID))
	assert.Zero(t, testutils.Count(t, db, &entities.AccessToken{}, "1 = 1"))
}

func TestRefresh(t *testing.T) {
	_, svc := newAuth(t, &fakeGoogle{})
	ctx := context.Background()

	res, err := svc.Register(ctx, registerAlice())
	require.NoError(t, err)
	_, token, err := svc.Authenticate(ctx, res.Token.AccessToken)
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, token)
	require.NoError(t, err)
	assert.NotEqual(t, res.Token.AccessToken, refreshed.Token.AccessToken)

	_, _, err = svc.Authenticate(ctx, res.Token.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	u, newToken, err := svc.Authenticate(ctx, refreshed.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, token.Name, newToken.Name)

	check := svc.Check(u, newToken)
	assert.True(t, check.Authenticated)
	assert.Equal(t, "alice", check.Username)
	require.NotNil(t, check.TokenExpiresAt)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	_, svc := newAuth(t, &fakeGoogle{})
	ctx := context.Background()

	for _, bearer := range []string{"", "not-a-jwt"} {
		_, _, err := svc.Authenticate(ctx, bearer)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	}

	other := jwt.NewJWTService("other-secret")
	forged, err := other.GenerateToken("x", "y", time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, _, err = svc.Authenticate(ctx, forged)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestLoginWithGoogle(t *testing.T) {
	google := &fakeGoogle{profile: &domain.GoogleProfile{
		Subject: "sub-1",
		Email:   "John.Doe@gmail.com",
		Name:    "John Doe",
		Picture: "https://lh3.googleusercontent.com/a/john",
	}}
	db, svc := newAuth(t, google)
	ctx := context.Background()
	testutils.SetupUser(t, db, "johndoe", "someone@x.com", "secret123")

	res, err := svc.LoginWithGoogle(ctx, domain.GoogleLoginRequest{IDToken: "token"})
	require.NoError(t, err)
	assert.True(t, res.IsNewUser)
	assert.Equal(t, "johndoe1", res.User.Username)
	require.NotNil(t, res.User.AvatarURL)
	assert.Equal(t, google.profile.Picture, *res.User.AvatarURL)

	_, token, err := svc.Authenticate(ctx, res.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, auth.GoogleDeviceName, token.Name)

	res, err = svc.LoginWithGoogle(ctx, domain.GoogleLoginRequest{IDToken: "token"})
	require.NoError(t, err)
	assert.False(t, res.IsNewUser)
	assert.Equal(t, int64(2), testutils.Count(t, db, &entities.User{}, "1 = 1"))
}

func TestLoginWithGoogleLinksExistingEmail(t *testing.T) {
	google := &fakeGoogle{profile: &domain.GoogleProfile{Subject: "sub-2", Email: "alice@x.com", Name: "Alice"}}
	db, svc := newAuth(t, google)
	alice := testutils.SetupUser(t, db, "alice", "alice@x.com", "secret123")

	res, err := svc.LoginWithGoogle(context.Background(), domain.GoogleLoginRequest{IDToken: "token"})
	require.NoError(t, err)
	assert.False(t, res.IsNewUser)
	assert.Equal(t, alice.ID.String(), res.User.ID)

	var stored entities.User
	testutils.Reload(t, db, &stored, alice.ID)
	require.NotNil(t, stored.GoogleID)
	assert.Equal(t, "sub-2", *stored.GoogleID)
	assert.NotNil(t, stored.EmailVerifiedAt)
}

func TestLoginWithGoogleFailureCreatesNothing(t *testing.T) {
	db, svc := newAuth(t, &fakeGoogle{err: domain.ErrGoogleAudience})

	_, err := svc.LoginWithGoogle(context.Background(), domain.GoogleLoginRequest{IDToken: "token"})
	assert.ErrorIs(t, err, domain.ErrGoogleAuthFailed)
	assert.Zero(t, testutils.Count(t, db, &entities.User{}, "1 = 1"))
	assert.Zero(t, testutils.Count(t, db, &entities.AccessToken{}, "1 = 1"))
}

func TestGenerateUniqueUsername(t *testing.T) {
	taken := map[string]bool{"johndoe": true, "johndoe1": true}
	exists := func(_ context.Context, candidate string) (bool, error) {
		return taken[candidate], nil
	}
	ctx := context.Background()

	cases := map[string]string{
		"John.Doe@gmail.com": "johndoe2",
		"a.b@x.com":          "ab1",
		"123@x.com":          "user123",
		"__@x.com":           "user",
	}
	for email, want := range cases {
		got, err := auth.GenerateUniqueUsername(ctx, email, exists)
		require.NoError(t, err)
		assert.Equal(t, want, got, email)
	}

	long, err := auth.GenerateUniqueUsername(ctx, "abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyz@x.com", exists)
	require.NoError(t, err)
	assert.Len(t, long, 40)
}
