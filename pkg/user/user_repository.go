package user

import (
	"context"
	"strings"

	"recipe-share-api/entities"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type (
	UserRepository interface {
		Transaction(ctx context.Context, fn func(repo UserRepository) error) error

		CreateUser(ctx context.Context, user *entities.User) error
		UpdateUser(ctx context.Context, user *entities.User) error
		GetUserByID(ctx context.Context, id string) (*entities.User, error)
		GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
		GetUserByUsername(ctx context.Context, username string) (*entities.User, error)
		GetUserByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*entities.User, error)
		UsernameExists(ctx context.Context, username, exceptID string) (bool, error)
		EmailExists(ctx context.Context, email, exceptID string) (bool, error)
		CountRecipes(ctx context.Context, userID string) (int64, error)

		IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
		CreateFollow(ctx context.Context, follow *entities.Follow) error
		DeleteFollow(ctx context.Context, followerID, followingID string) (int64, error)
		AdjustFollowCounts(ctx context.Context, followerID, followingID string, delta int) error

		GetUserRecipes(ctx context.Context, userID string, offset, limit int) ([]*entities.Recipe, int64, error)
		GetRecipeImages(ctx context.Context, userID string) ([]string, error)
		DeleteUserCascade(ctx context.Context, userID string) error
	}

	userRepository struct {
		db *gorm.DB
	}
)

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Transaction(ctx context.Context, fn func(repo UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&userRepository{db: tx})
	})
}

func (r *userRepository) CreateUser(ctx context.Context, user *entities.User) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(user).Error, "create user")
}

func (r *userRepository) UpdateUser(ctx context.Context, user *entities.User) error {
	return errors.Wrap(r.db.WithContext(ctx).Save(user).Error, "update user")
}

func (r *userRepository) first(ctx context.Context, query string, args ...any) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.first(ctx, "LOWER(email) = ?", strings.ToLower(email))
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *userRepository) GetUserByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*entities.User, error) {
	return r.first(ctx, "google_id = ? OR LOWER(email) = ?", googleID, strings.ToLower(email))
}

func (r *userRepository) exists(ctx context.Context, column, value, exceptID string) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&entities.User{}).Where(column+" = ?", value)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, errors.Wrapf(err, "check %s", column)
	}
	return count > 0, nil
}

func (r *userRepository) UsernameExists(ctx context.Context, username, exceptID string) (bool, error) {
	return r.exists(ctx, "username", username, exceptID)
}

func (r *userRepository) EmailExists(ctx context.Context, email, exceptID string) (bool, error) {
	return r.exists(ctx, "LOWER(email)", strings.ToLower(email), exceptID)
}

func (r *userRepository) CountRecipes(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Recipe{}).Where("user_id = ?", userID).Count(&count).Error
	return count, errors.Wrap(err, "count recipes")
}

func (r *userRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, errors.Wrap(err, "check follow")
}

func (r *userRepository) CreateFollow(ctx context.Context, follow *entities.Follow) error {
	return r.db.WithContext(ctx).Create(follow).Error
}

func (r *userRepository) DeleteFollow(ctx context.Context, followerID, followingID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&entities.Follow{})
	return res.RowsAffected, errors.Wrap(res.Error, "delete follow")
}

// AdjustFollowCounts moves following_count of the follower and
// followers_count of the followed user by delta, never below zero.
func (r *userRepository) AdjustFollowCounts(ctx context.Context, followerID, followingID string, delta int) error {
	db := r.db.WithContext(ctx)
	if err := adjustCounter(db.Model(&entities.User{}).Where("id = ?", followerID), "following_count", delta); err != nil {
		return errors.Wrap(err, "adjust following_count")
	}
	if err := adjustCounter(db.Model(&entities.User{}).Where("id = ?", followingID), "followers_count", delta); err != nil {
		return errors.Wrap(err, "adjust followers_count")
	}
	return nil
}

func adjustCounter(q *gorm.DB, column string, delta int) error {
	if delta < 0 {
		q = q.Where(column+" >= ?", -delta)
	}
	return q.UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}

func (r *userRepository) GetUserRecipes(ctx context.Context, userID string, offset, limit int) ([]*entities.Recipe, int64, error) {
	var (
		recipes []*entities.Recipe
		count   int64
	)
	db := r.db.WithContext(ctx)
	if err := db.Model(&entities.Recipe{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count user recipes")
	}
	if err := db.Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&recipes).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list user recipes")
	}
	return recipes, count, nil
}

func (r *userRepository) GetRecipeImages(ctx context.Context, userID string) ([]string, error) {
	var images []string
	err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Where("user_id = ? AND image <> ''", userID).
		Pluck("image", &images).Error
	return images, errors.Wrap(err, "list recipe images")
}

// DeleteUserCascade removes the user and everything hanging off it. Counters
// on rows that survive (other users' recipes and follow counts) are
// decremented first. Call it inside Transaction.
func (r *userRepository) DeleteUserCascade(ctx context.Context, userID string) error {
	db := r.db.WithContext(ctx)

	ownRecipes := db.Model(&entities.Recipe{}).Select("id").Where("user_id = ?", userID)

	steps := []struct {
		name string
		run  func() error
	}{
		{"decrement likes_count", func() error {
			return db.Model(&entities.Recipe{}).
				Where("id IN (?)", db.Model(&entities.Like{}).Select("recipe_id").Where("user_id = ?", userID)).
				Where("likes_count > 0").
				UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error
		}},
		{"decrement bookmarks_count", func() error {
			return db.Model(&entities.Recipe{}).
				Where("id IN (?)", db.Model(&entities.Bookmark{}).Select("recipe_id").Where("user_id = ?", userID)).
				Where("bookmarks_count > 0").
				UpdateColumn("bookmarks_count", gorm.Expr("bookmarks_count - 1")).Error
		}},
		{"decrement followers_count", func() error {
			return db.Model(&entities.User{}).
				Where("id IN (?)", db.Model(&entities.Follow{}).Select("following_id").Where("follower_id = ?", userID)).
				Where("followers_count > 0").
				UpdateColumn("followers_count", gorm.Expr("followers_count - 1")).Error
		}},
		{"decrement following_count", func() error {
			return db.Model(&entities.User{}).
				Where("id IN (?)", db.Model(&entities.Follow{}).Select("follower_id").Where("following_id = ?", userID)).
				Where("following_count > 0").
				UpdateColumn("following_count", gorm.Expr("following_count - 1")).Error
		}},
		{"delete ingredients", func() error {
			return db.Where("recipe_id IN (?)", ownRecipes).Delete(&entities.Ingredient{}).Error
		}},
		{"delete steps", func() error {
			return db.Where("recipe_id IN (?)", ownRecipes).Delete(&entities.CookingStep{}).Error
		}},
		{"delete tags", func() error {
			return db.Where("recipe_id IN (?)", ownRecipes).Delete(&entities.RecipeIngredientTag{}).Error
		}},
		{"delete likes", func() error {
			return db.Where("user_id = ? OR recipe_id IN (?)", userID, ownRecipes).Delete(&entities.Like{}).Error
		}},
		{"delete bookmarks", func() error {
			return db.Where("user_id = ? OR recipe_id IN (?)", userID, ownRecipes).Delete(&entities.Bookmark{}).Error
		}},
		{"delete follows", func() error {
			return db.Where("follower_id = ? OR following_id = ?", userID, userID).Delete(&entities.Follow{}).Error
		}},
		{"delete search history", func() error {
			return db.Where("user_id = ?", userID).Delete(&entities.SearchHistory{}).Error
		}},
		{"delete tokens", func() error {
			return db.Where("user_id = ?", userID).Delete(&entities.AccessToken{}).Error
		}},
		{"delete recipes", func() error {
			return db.Where("user_id = ?", userID).Delete(&entities.Recipe{}).Error
		}},
		{"delete user", func() error {
			return db.Where("id = ?", userID).Delete(&entities.User{}).Error
		}},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			return errors.Wrap(err, step.name)
		}
	}
	return nil
}
