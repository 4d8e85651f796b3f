package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessRegister       = "registration successful"
	MessageSuccessLogin          = "login successful"
	MessageSuccessGoogleLogin    = "google login successful"
	MessageSuccessGoogleRegister = "google registration successful"
	MessageSuccessLogout         = "logout successful"
	MessageSuccessLogoutAll      = "logged out from all devices"
	MessageSuccessRefreshToken   = "token refreshed"
	MessageSuccessCheckToken     = "token valid"
	MessageSuccessGetMe          = "user retrieved"

	MessageFailedRegister    = "failed to register"
	MessageFailedLogin       = "invalid email or password"
	MessageFailedGoogleLogin = "google authentication failed"
	MessageFailedLogout      = "failed to logout"
	MessageFailedRefresh     = "failed to refresh token"

	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrGoogleAuthFailed    = errors.New("google authentication failed")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrEmailTaken          = errors.New("email already registered")
	ErrPasswordMismatch    = errors.New("password confirmation does not match")
	ErrGoogleAudience      = errors.New("google token audience not allowed")
	ErrGoogleTokenRejected = errors.New("google token rejected")
)

type (
	RegisterRequest struct {
		Name                 string `json:"name" form:"name" validate:"required,min=2,max=100"`
		Username             string `json:"username" form:"username" validate:"required,min=3,max=50,username"`
		Email                string `json:"email" form:"email" validate:"required,email,max=255"`
		Password             string `json:"password" form:"password" validate:"required,min=8"`
		PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation" validate:"required,eqfield=Password"`
		DeviceName           string `json:"device_name" form:"device_name" validate:"omitempty,max=255"`
	}

	LoginRequest struct {
		Email      string `json:"email" form:"email" validate:"required,email"`
		Password   string `json:"password" form:"password" validate:"required"`
		DeviceName string `json:"device_name" form:"device_name" validate:"omitempty,max=255"`
	}

	GoogleLoginRequest struct {
		IDToken    string `json:"id_token" form:"id_token" validate:"required"`
		DeviceName string `json:"device_name" form:"device_name" validate:"omitempty,max=255"`
	}

	// GoogleProfile is the verified subset of a Google ID token.
	GoogleProfile struct {
		Subject string
		Email   string
		Name    string
		Picture string
	}

	TokenResponse struct {
		AccessToken string    `json:"access_token"`
		TokenType   string    `json:"token_type"`
		ExpiresAt   time.Time `json:"expires_at"`
	}

	AuthUser struct {
		ID             string    `json:"id"`
		Name           string    `json:"name"`
		Username       string    `json:"username"`
		Email          *string   `json:"email"`
		AvatarURL      *string   `json:"avatar_url"`
		FollowersCount int       `json:"followers_count"`
		FollowingCount int       `json:"following_count"`
		RecipesCount   int64     `json:"recipes_count"`
		Language       string    `json:"language"`
		CreatedAt      time.Time `json:"created_at"`
	}

	AuthResponse struct {
		User      AuthUser      `json:"user"`
		Token     TokenResponse `json:"token"`
		IsNewUser bool          `json:"is_new_user,omitempty"`
	}

	RefreshResponse struct {
		Token TokenResponse `json:"token"`
	}

	AuthCheckResponse struct {
		Authenticated  bool       `json:"authenticated"`
		UserID         string     `json:"user_id"`
		Username       string     `json:"username"`
		TokenName      string     `json:"token_name"`
		TokenExpiresAt *time.Time `json:"token_expires_at"`
	}
)
