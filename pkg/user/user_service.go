package user

import (
	"context"
	"strings"

	"recipe-share-api/domain"
	"recipe-share-api/entities"
	"recipe-share-api/internal/logging"
	"recipe-share-api/internal/utils"
	"recipe-share-api/internal/utils/storage"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type (
	UserService interface {
		GetProfile(ctx context.Context, userID string) (domain.UserProfile, error)
		UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (domain.UserProfile, error)
		UpdateLanguage(ctx context.Context, userID string, req domain.UpdateLanguageRequest) (domain.LanguageResponse, error)
		ChangeEmail(ctx context.Context, userID string, req domain.ChangeEmailRequest) (domain.UserProfile, error)
		DeleteAccount(ctx context.Context, userID string, req domain.DeleteAccountRequest) error

		GetByUsername(ctx context.Context, username string, viewerID string) (domain.PublicProfile, error)
		Follow(ctx context.Context, followerID, username string) (domain.FollowResponse, error)
		Unfollow(ctx context.Context, followerID, username string) (domain.FollowResponse, error)
		ListRecipes(ctx context.Context, username string, page utils.PageQuery) ([]domain.UserRecipeItem, int64, error)
	}

	userService struct {
		userRepository UserRepository
		storage        storage.Storage
	}
)

func NewUserService(userRepository UserRepository, st storage.Storage) UserService {
	return &userService{
		userRepository: userRepository,
		storage:        st,
	}
}

func userNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrUserNotFound
	}
	return err
}

func (s *userService) profile(ctx context.Context, u *entities.User) (domain.UserProfile, error) {
	count, err := s.userRepository.CountRecipes(ctx, u.ID.String())
	if err != nil {
		return domain.UserProfile{}, err
	}
	return ToProfile(u, count, s.storage), nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (domain.UserProfile, error) {
	u, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return domain.UserProfile{}, userNotFound(err)
	}
	return s.profile(ctx, u)
}

// UpdateProfile uploads a new avatar before committing and removes the
// previous one only after the commit. Avatars that are absolute URLs came
// from the identity provider and are never deleted from storage.
func (s *userService) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (domain.UserProfile, error) {
	var (
		u         *entities.User
		uploaded  string
		oldAvatar string
	)
	err := s.userRepository.Transaction(ctx, func(users UserRepository) error {
		var err error
		if u, err = users.GetUserByID(ctx, userID); err != nil {
			return userNotFound(err)
		}

		if req.Name != nil {
			u.Name = strings.TrimSpace(*req.Name)
		}
		if req.Username != nil && *req.Username != u.Username {
			taken, err := users.UsernameExists(ctx, *req.Username, userID)
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrUsernameTaken
			}
			u.Username = *req.Username
		}
		if req.Avatar != nil {
			key, err := s.storage.UploadAvatar(ctx, userID, req.Avatar)
			if err != nil {
				return errors.Wrap(err, "upload avatar")
			}
			uploaded = key
			if u.Avatar != nil {
				oldAvatar = *u.Avatar
			}
			u.Avatar = &key
		}

		if err := users.UpdateUser(ctx, u); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrUsernameTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		s.discardAvatar(ctx, uploaded)
		return domain.UserProfile{}, err
	}

	if uploaded != "" && oldAvatar != uploaded && !isProviderAvatar(oldAvatar) {
		s.discardAvatar(ctx, oldAvatar)
	}
	return s.profile(ctx, u)
}

func isProviderAvatar(avatar string) bool {
	return strings.HasPrefix(avatar, "http://") || strings.HasPrefix(avatar, "https://")
}

func (s *userService) discardAvatar(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.storage.DeleteAvatar(ctx, path); err != nil {
		logging.Warn().Err(err).Str("avatar", path).Msg("failed to delete avatar")
	}
}

func (s *userService) UpdateLanguage(ctx context.Context, userID string, req domain.UpdateLanguageRequest) (domain.LanguageResponse, error) {
	u, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return domain.LanguageResponse{}, userNotFound(err)
	}
	u.Language = entities.Language(req.Language)
	if err := s.userRepository.UpdateUser(ctx, u); err != nil {
		return domain.LanguageResponse{}, err
	}
	return domain.LanguageResponse{Language: string(u.Language)}, nil
}

// ChangeEmail re-verifies the password and clears the verification stamp.
func (s *userService) ChangeEmail(ctx context.Context, userID string, req domain.ChangeEmailRequest) (domain.UserProfile, error) {
	var u *entities.User
	err := s.userRepository.Transaction(ctx, func(users UserRepository) error {
		var err error
		if u, err = users.GetUserByID(ctx, userID); err != nil {
			return userNotFound(err)
		}
		if !u.HasPassword() || !utils.CheckPassword(*u.Password, req.Password) {
			return domain.ErrWrongPassword
		}

		email := strings.TrimSpace(req.Email)
		if u.Email != nil && strings.EqualFold(*u.Email, email) {
			return nil
		}
		taken, err := users.EmailExists(ctx, email, userID)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrEmailTaken
		}
		u.Email = &email
		u.EmailVerifiedAt = nil
		if err := users.UpdateUser(ctx, u); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrEmailTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.UserProfile{}, err
	}
	return s.profile(ctx, u)
}

// DeleteAccount requires the current password for accounts that have one.
// Stored images are removed after the transaction commits.
func (s *userService) DeleteAccount(ctx context.Context, userID string, req domain.DeleteAccountRequest) error {
	var (
		u      *entities.User
		images []string
	)
	err := s.userRepository.Transaction(ctx, func(users UserRepository) error {
		var err error
		if u, err = users.GetUserByID(ctx, userID); err != nil {
			return userNotFound(err)
		}
		if u.HasPassword() {
			if req.Password == "" {
				return domain.ErrPasswordRequired
			}
			if !utils.CheckPassword(*u.Password, req.Password) {
				return domain.ErrWrongPassword
			}
		}
		if images, err = users.GetRecipeImages(ctx, userID); err != nil {
			return err
		}
		return users.DeleteUserCascade(ctx, userID)
	})
	if err != nil {
		return err
	}

	for _, image := range images {
		if err := s.storage.DeleteRecipeImage(ctx, image); err != nil {
			logging.Warn().Err(err).Str("image", image).Msg("failed to delete recipe image")
		}
	}
	if u.Avatar != nil && !isProviderAvatar(*u.Avatar) {
		s.discardAvatar(ctx, *u.Avatar)
	}
	logging.Info().Str("user_id", userID).Msg("account deleted")
	return nil
}

func (s *userService) GetByUsername(ctx context.Context, username string, viewerID string) (domain.PublicProfile, error) {
	u, err := s.userRepository.GetUserByUsername(ctx, username)
	if err != nil {
		return domain.PublicProfile{}, userNotFound(err)
	}
	count, err := s.userRepository.CountRecipes(ctx, u.ID.String())
	if err != nil {
		return domain.PublicProfile{}, err
	}

	isFollowed := false
	if viewerID != "" && viewerID != u.ID.String() {
		if isFollowed, err = s.userRepository.IsFollowing(ctx, viewerID, u.ID.String()); err != nil {
			return domain.PublicProfile{}, err
		}
	}

	return domain.PublicProfile{
		ID:             u.ID.String(),
		Name:           u.Name,
		Username:       u.Username,
		AvatarURL:      s.storage.AvatarURL(u.Avatar),
		FollowersCount: u.FollowersCount,
		FollowingCount: u.FollowingCount,
		RecipesCount:   count,
		IsFollowed:     isFollowed,
		CreatedAt:      u.CreatedAt,
	}, nil
}

func (s *userService) Follow(ctx context.Context, followerID, username string) (domain.FollowResponse, error) {
	return s.toggleFollow(ctx, followerID, username, true)
}

func (s *userService) Unfollow(ctx context.Context, followerID, username string) (domain.FollowResponse, error) {
	return s.toggleFollow(ctx, followerID, username, false)
}

// toggleFollow mirrors the like toggle: a soft error when the edge is
// already in the requested state, otherwise the edge and both counters move
// together. The returned counts belong to the followed user.
func (s *userService) toggleFollow(ctx context.Context, followerID, username string, follow bool) (domain.FollowResponse, error) {
	var res domain.FollowResponse
	err := s.userRepository.Transaction(ctx, func(users UserRepository) error {
		target, err := users.GetUserByUsername(ctx, username)
		if err != nil {
			return userNotFound(err)
		}
		targetID := target.ID.String()
		if targetID == followerID {
			return domain.ErrCannotFollowSelf
		}

		following, err := users.IsFollowing(ctx, followerID, targetID)
		if err != nil {
			return err
		}

		if follow {
			if following {
				return domain.ErrAlreadyFollowing
			}
			follower, err := uuid.Parse(followerID)
			if err != nil {
				return domain.ErrUserNotFound
			}
			edge := &entities.Follow{FollowerID: follower, FollowingID: target.ID}
			if err := users.CreateFollow(ctx, edge); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return domain.ErrAlreadyFollowing
				}
				return errors.Wrap(err, "create follow")
			}
			if err := users.AdjustFollowCounts(ctx, followerID, targetID, 1); err != nil {
				return err
			}
		} else {
			if !following {
				return domain.ErrNotFollowing
			}
			n, err := users.DeleteFollow(ctx, followerID, targetID)
			if err != nil {
				return err
			}
			if n == 0 {
				return domain.ErrNotFollowing
			}
			if err := users.AdjustFollowCounts(ctx, followerID, targetID, -1); err != nil {
				return err
			}
		}

		fresh, err := users.GetUserByID(ctx, targetID)
		if err != nil {
			return err
		}
		res = domain.FollowResponse{
			IsFollowed:     follow,
			FollowersCount: fresh.FollowersCount,
			FollowingCount: fresh.FollowingCount,
		}
		return nil
	})
	return res, err
}

func (s *userService) ListRecipes(ctx context.Context, username string, page utils.PageQuery) ([]domain.UserRecipeItem, int64, error) {
	u, err := s.userRepository.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, 0, userNotFound(err)
	}
	recipes, total, err := s.userRepository.GetUserRecipes(ctx, u.ID.String(), page.Offset(), page.PerPage)
	if err != nil {
		return nil, 0, err
	}

	items := make([]domain.UserRecipeItem, 0, len(recipes))
	for _, r := range recipes {
		items = append(items, domain.UserRecipeItem{
			ID:          r.ID.String(),
			Title:       r.Title,
			ImageURL:    s.storage.RecipeImageURL(r.Image),
			CookingTime: r.CookingTime,
			Servings:    r.Servings,
			LikesCount:  r.LikesCount,
			CreatedAt:   r.CreatedAt,
		})
	}
	return items, total, nil
}
