package user

import (
	"recipe-share-api/domain"
	"recipe-share-api/entities"
	"recipe-share-api/internal/utils/storage"
)

func languageOf(u *entities.User) string {
	if u.Language.Valid() {
		return string(u.Language)
	}
	return string(entities.LanguageID)
}

func ToProfile(u *entities.User, recipesCount int64, st storage.Storage) domain.UserProfile {
	return domain.UserProfile{
		ID:              u.ID.String(),
		Name:            u.Name,
		Username:        u.Username,
		Email:           u.Email,
		AvatarURL:       st.AvatarURL(u.Avatar),
		FollowersCount:  u.FollowersCount,
		FollowingCount:  u.FollowingCount,
		RecipesCount:    recipesCount,
		Language:        languageOf(u),
		EmailVerifiedAt: u.EmailVerifiedAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func ToAuthUser(u *entities.User, recipesCount int64, st storage.Storage) domain.AuthUser {
	return domain.AuthUser{
		ID:             u.ID.String(),
		Name:           u.Name,
		Username:       u.Username,
		Email:          u.Email,
		AvatarURL:      st.AvatarURL(u.Avatar),
		FollowersCount: u.FollowersCount,
		FollowingCount: u.FollowingCount,
		RecipesCount:   recipesCount,
		Language:       languageOf(u),
		CreatedAt:      u.CreatedAt,
	}
}

func ToSummary(u *entities.User, st storage.Storage) domain.UserSummary {
	if u == nil {
		return domain.UserSummary{}
	}
	return domain.UserSummary{
		ID:        u.ID.String(),
		Name:      u.Name,
		Username:  u.Username,
		AvatarURL: st.AvatarURL(u.Avatar),
	}
}
