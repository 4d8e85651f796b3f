package auth

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"recipe-share-api/domain"
	"recipe-share-api/entities"
	"recipe-share-api/internal/logging"
	"recipe-share-api/internal/utils"
	"recipe-share-api/internal/utils/mailing"
	"recipe-share-api/internal/utils/storage"
	"recipe-share-api/pkg/jwt"
	"recipe-share-api/pkg/user"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	TokenType          = "Bearer"
	DefaultDeviceName  = "default"
	GoogleDeviceName   = "google"
	maxUsernameBaseLen = 40
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

type (
	AuthService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error)
		LoginWithGoogle(ctx context.Context, req domain.GoogleLoginRequest) (domain.AuthResponse, error)
		Authenticate(ctx context.Context, bearer string) (*entities.User, *entities.AccessToken, error)
		Logout(ctx context.Context, token *entities.AccessToken) error
		LogoutAll(ctx context.Context, userID string) error
		Refresh(ctx context.Context, token *entities.AccessToken) (domain.RefreshResponse, error)
		Check(u *entities.User, token *entities.AccessToken) domain.AuthCheckResponse
		Me(ctx context.Context, u *entities.User) (domain.UserProfile, error)
	}

	authService struct {
		userRepository  user.UserRepository
		tokenRepository TokenRepository
		jwtService      jwt.JWTService
		google          GoogleVerifier
		storage         storage.Storage
		mailer          mailing.Mailer
		tokenTTL        time.Duration
		now             func() time.Time
	}
)

func NewAuthService(
	userRepository user.UserRepository,
	tokenRepository TokenRepository,
	jwtService jwt.JWTService,
	google GoogleVerifier,
	st storage.Storage,
	mailer mailing.Mailer,
	tokenTTL time.Duration,
) AuthService {
	return &authService{
		userRepository:  userRepository,
		tokenRepository: tokenRepository,
		jwtService:      jwtService,
		google:          google,
		storage:         st,
		mailer:          mailer,
		tokenTTL:        tokenTTL,
		now:             time.Now,
	}
}

func deviceName(name, def string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return def
}

func (s *authService) Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return domain.AuthResponse{}, errors.Wrap(err, "hash password")
	}

	email := strings.TrimSpace(req.Email)
	u := &entities.User{
		Name:     strings.TrimSpace(req.Name),
		Username: req.Username,
		Email:    &email,
		Password: &hash,
		Language: entities.LanguageID,
	}

	var token string
	var expiresAt time.Time
	err = s.tokenRepository.TransactionWithUsers(ctx, func(tokens TokenRepository, users user.UserRepository) error {
		if taken, err := users.UsernameExists(ctx, u.Username, ""); err != nil {
			return err
		} else if taken {
			return domain.ErrUsernameTaken
		}
		if taken, err := users.EmailExists(ctx, email, ""); err != nil {
			return err
		} else if taken {
			return domain.ErrEmailTaken
		}
		if err := users.CreateUser(ctx, u); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrUsernameTaken
			}
			return err
		}
		var err error
		token, expiresAt, err = s.issueToken(ctx, tokens, u, deviceName(req.DeviceName, DefaultDeviceName))
		return err
	})
	if err != nil {
		return domain.AuthResponse{}, err
	}

	if s.mailer != nil && s.mailer.Enabled() {
		if err := s.mailer.SendWelcome(email, u.Name, u.Username); err != nil {
			logging.Warn().Err(err).Str("user_id", u.ID.String()).Msg("failed to send welcome mail")
		}
	}

	return s.authResponse(u, 0, token, expiresAt, false), nil
}

func (s *authService) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	u, err := s.userRepository.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AuthResponse{}, domain.ErrInvalidCredentials
		}
		return domain.AuthResponse{}, err
	}
	if !u.HasPassword() || !utils.CheckPassword(*u.Password, req.Password) {
		return domain.AuthResponse{}, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.issueToken(ctx, s.tokenRepository, u, deviceName(req.DeviceName, DefaultDeviceName))
	if err != nil {
		return domain.AuthResponse{}, err
	}

	count, err := s.userRepository.CountRecipes(ctx, u.ID.String())
	if err != nil {
		return domain.AuthResponse{}, err
	}
	return s.authResponse(u, count, token, expiresAt, false), nil
}

// LoginWithGoogle fails closed: any verification problem yields
// ErrGoogleAuthFailed before the database is touched.
func (s *authService) LoginWithGoogle(ctx context.Context, req domain.GoogleLoginRequest) (domain.AuthResponse, error) {
	profile, err := s.google.Verify(ctx, req.IDToken)
	if err != nil {
		logging.Warn().Err(err).Msg("google token verification failed")
		return domain.AuthResponse{}, domain.ErrGoogleAuthFailed
	}

	var (
		u         *entities.User
		isNewUser bool
		token     string
		expiresAt time.Time
	)
	err = s.tokenRepository.TransactionWithUsers(ctx, func(tokens TokenRepository, users user.UserRepository) error {
		existing, err := users.GetUserByGoogleIDOrEmail(ctx, profile.Subject, profile.Email)
		switch {
		case err == nil:
			u = existing
			err = s.backfillGoogle(ctx, users, u, profile)
		case errors.Is(err, gorm.ErrRecordNotFound):
			isNewUser = true
			u, err = s.createGoogleUser(ctx, users, profile)
		}
		if err != nil {
			return err
		}
		token, expiresAt, err = s.issueToken(ctx, tokens, u, deviceName(req.DeviceName, GoogleDeviceName))
		return err
	})
	if err != nil {
		return domain.AuthResponse{}, err
	}

	count, err := s.userRepository.CountRecipes(ctx, u.ID.String())
	if err != nil {
		return domain.AuthResponse{}, err
	}
	return s.authResponse(u, count, token, expiresAt, isNewUser), nil
}

func (s *authService) backfillGoogle(ctx context.Context, users user.UserRepository, u *entities.User, profile *domain.GoogleProfile) error {
	changed := false
	if u.GoogleID == nil || *u.GoogleID == "" {
		sub := profile.Subject
		u.GoogleID = &sub
		if u.EmailVerifiedAt == nil {
			now := s.now()
			u.EmailVerifiedAt = &now
		}
		changed = true
	}
	if (u.Avatar == nil || *u.Avatar == "") && profile.Picture != "" {
		picture := profile.Picture
		u.Avatar = &picture
		changed = true
	}
	if !changed {
		return nil
	}
	return users.UpdateUser(ctx, u)
}

func (s *authService) createGoogleUser(ctx context.Context, users user.UserRepository, profile *domain.GoogleProfile) (*entities.User, error) {
	username, err := GenerateUniqueUsername(ctx, profile.Email, func(ctx context.Context, candidate string) (bool, error) {
		return users.UsernameExists(ctx, candidate, "")
	})
	if err != nil {
		return nil, err
	}

	email := profile.Email
	sub := profile.Subject
	now := s.now()
	u := &entities.User{
		Name:            profile.Name,
		Username:        username,
		Email:           &email,
		GoogleID:        &sub,
		EmailVerifiedAt: &now,
		Language:        entities.LanguageID,
	}
	if profile.Picture != "" {
		picture := profile.Picture
		u.Avatar = &picture
	}
	if err := users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GenerateUniqueUsername derives a username from the email local part:
// lower-cased, stripped to [a-z0-9], at most 40 chars, with 1, 2, ...
// appended until exists reports it free.
func GenerateUniqueUsername(ctx context.Context, email string, exists func(context.Context, string) (bool, error)) (string, error) {
	local, _, _ := strings.Cut(email, "@")
	base := nonAlphanumeric.ReplaceAllString(strings.ToLower(local), "")
	if base == "" || base[0] < 'a' || base[0] > 'z' {
		base = "user" + base
	}
	if len(base) > maxUsernameBaseLen {
		base = base[:maxUsernameBaseLen]
	}

	candidate := base
	for counter := 1; ; counter++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken && len(candidate) >= 3 {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(counter)
	}
}

func (s *authService) issueToken(ctx context.Context, tokens TokenRepository, u *entities.User, name string) (string, time.Time, error) {
	expiresAt := s.now().Add(s.tokenTTL)
	row := &entities.AccessToken{
		UserID:    u.ID,
		Name:      name,
		ExpiresAt: expiresAt,
	}
	if err := tokens.CreateToken(ctx, row); err != nil {
		return "", time.Time{}, err
	}
	signed, err := s.jwtService.GenerateToken(u.ID.String(), row.ID.String(), expiresAt)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign token")
	}
	return signed, expiresAt, nil
}

func (s *authService) authResponse(u *entities.User, recipesCount int64, token string, expiresAt time.Time, isNewUser bool) domain.AuthResponse {
	return domain.AuthResponse{
		User: user.ToAuthUser(u, recipesCount, s.storage),
		Token: domain.TokenResponse{
			AccessToken: token,
			TokenType:   TokenType,
			ExpiresAt:   expiresAt,
		},
		IsNewUser: isNewUser,
	}
}

// Authenticate resolves a bearer token to its user and token row. Every
// failure is reported as ErrUnauthenticated.
func (s *authService) Authenticate(ctx context.Context, bearer string) (*entities.User, *entities.AccessToken, error) {
	if bearer == "" {
		return nil, nil, domain.ErrUnauthenticated
	}
	claims, err := s.jwtService.ParseToken(bearer)
	if err != nil {
		return nil, nil, domain.ErrUnauthenticated
	}

	token, err := s.tokenRepository.GetTokenByID(ctx, claims.TokenID())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.ErrUnauthenticated
		}
		return nil, nil, err
	}
	if token.User == nil || token.UserID.String() != claims.UserID {
		return nil, nil, domain.ErrUnauthenticated
	}
	now := s.now()
	if !token.ExpiresAt.After(now) {
		return nil, nil, domain.ErrUnauthenticated
	}

	if err := s.tokenRepository.TouchToken(ctx, token.ID.String(), now); err != nil {
		logging.Warn().Err(err).Str("token_id", token.ID.String()).Msg("failed to touch access token")
	}
	token.LastUsedAt = &now
	return token.User, token, nil
}

func (s *authService) Logout(ctx context.Context, token *entities.AccessToken) error {
	return s.tokenRepository.DeleteToken(ctx, token.ID.String())
}

func (s *authService) LogoutAll(ctx context.Context, userID string) error {
	_, err := s.tokenRepository.DeleteUserTokens(ctx, userID)
	return err
}

// Refresh revokes the presented token and issues a new one under the same
// device name.
func (s *authService) Refresh(ctx context.Context, token *entities.AccessToken) (domain.RefreshResponse, error) {
	var (
		signed    string
		expiresAt time.Time
	)
	err := s.tokenRepository.Transaction(ctx, func(tokens TokenRepository) error {
		if err := tokens.DeleteToken(ctx, token.ID.String()); err != nil {
			return err
		}
		u := token.User
		if u == nil {
			u = &entities.User{ID: token.UserID}
		}
		var err error
		signed, expiresAt, err = s.issueToken(ctx, tokens, u, deviceName(token.Name, DefaultDeviceName))
		return err
	})
	if err != nil {
		return domain.RefreshResponse{}, err
	}
	return domain.RefreshResponse{Token: domain.TokenResponse{
		AccessToken: signed,
		TokenType:   TokenType,
		ExpiresAt:   expiresAt,
	}}, nil
}

func (s *authService) Check(u *entities.User, token *entities.AccessToken) domain.AuthCheckResponse {
	res := domain.AuthCheckResponse{
		Authenticated: true,
		UserID:        u.ID.String(),
		Username:      u.Username,
	}
	if token != nil {
		res.TokenName = token.Name
		expiresAt := token.ExpiresAt
		res.TokenExpiresAt = &expiresAt
	}
	return res
}

func (s *authService) Me(ctx context.Context, u *entities.User) (domain.UserProfile, error) {
	count, err := s.userRepository.CountRecipes(ctx, u.ID.String())
	if err != nil {
		return domain.UserProfile{}, err
	}
	return user.ToProfile(u, count, s.storage), nil
}
