package domain

import (
	"errors"
	"mime/multipart"
	"time"
)

var (
	MessageSuccessGetProfile     = "profile retrieved"
	MessageSuccessUpdateProfile  = "profile updated"
	MessageSuccessUpdateLanguage = "language updated"
	MessageSuccessChangeEmail    = "email updated"
	MessageSuccessDeleteAccount  = "account deleted"
	MessageSuccessGetUser        = "user retrieved"
	MessageSuccessFollow         = "user followed"
	MessageSuccessUnfollow       = "user unfollowed"
	MessageSuccessGetUserRecipes = "user recipes retrieved"

	MessageFailedUpdateProfile = "failed to update profile"
	MessageFailedDeleteAccount = "failed to delete account"
	MessageUserNotFound        = "user not found"

	ErrUserNotFound = errors.New("user not found")

	ErrCannotFollowSelf = NewSoftError("you cannot follow yourself")
	ErrAlreadyFollowing = NewSoftError("you already follow this user")
	ErrNotFollowing     = NewSoftError("you do not follow this user")
	ErrWrongPassword    = NewSoftError("password is incorrect")
	ErrPasswordRequired = NewSoftError("password is required")
)

type (
	UpdateProfileRequest struct {
		Name     *string               `json:"name" form:"name" validate:"omitempty,min=2,max=100"`
		Username *string               `json:"username" form:"username" validate:"omitempty,min=3,max=50,username"`
		Avatar   *multipart.FileHeader `json:"-" form:"-"`
	}

	UpdateLanguageRequest struct {
		Language string `json:"language" form:"language" validate:"required,oneof=id en"`
	}

	ChangeEmailRequest struct {
		Email    string `json:"email" form:"email" validate:"required,email,max=255"`
		Password string `json:"password" form:"password" validate:"required"`
	}

	DeleteAccountRequest struct {
		Password string `json:"password" form:"password"`
	}

	UserProfile struct {
		ID              string     `json:"id"`
		Name            string     `json:"name"`
		Username        string     `json:"username"`
		Email           *string    `json:"email"`
		AvatarURL       *string    `json:"avatar_url"`
		FollowersCount  int        `json:"followers_count"`
		FollowingCount  int        `json:"following_count"`
		RecipesCount    int64      `json:"recipes_count"`
		Language        string     `json:"language"`
		EmailVerifiedAt *time.Time `json:"email_verified_at"`
		CreatedAt       time.Time  `json:"created_at"`
		UpdatedAt       time.Time  `json:"updated_at"`
	}

	PublicProfile struct {
		ID             string    `json:"id"`
		Name           string    `json:"name"`
		Username       string    `json:"username"`
		AvatarURL      *string   `json:"avatar_url"`
		FollowersCount int       `json:"followers_count"`
		FollowingCount int       `json:"following_count"`
		RecipesCount   int64     `json:"recipes_count"`
		IsFollowed     bool      `json:"is_followed"`
		CreatedAt      time.Time `json:"created_at"`
	}

	LanguageResponse struct {
		Language string `json:"language"`
	}

	FollowResponse struct {
		IsFollowed     bool `json:"is_followed"`
		FollowersCount int  `json:"followers_count"`
		FollowingCount int  `json:"following_count"`
	}

	UserRecipeItem struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		ImageURL    *string   `json:"image_url"`
		CookingTime int       `json:"cooking_time"`
		Servings    int       `json:"servings"`
		LikesCount  int       `json:"likes_count"`
		CreatedAt   time.Time `json:"created_at"`
	}
)
