package auth

import (
	"context"
	"time"

	"recipe-share-api/entities"
	"recipe-share-api/pkg/user"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type (
	TokenRepository interface {
		Transaction(ctx context.Context, fn func(repo TokenRepository) error) error
		TransactionWithUsers(ctx context.Context, fn func(tokens TokenRepository, users user.UserRepository) error) error
		CreateToken(ctx context.Context, token *entities.AccessToken) error
		GetTokenByID(ctx context.Context, id string) (*entities.AccessToken, error)
		TouchToken(ctx context.Context, id string, at time.Time) error
		DeleteToken(ctx context.Context, id string) error
		DeleteUserTokens(ctx context.Context, userID string) (int64, error)
		DeleteExpiredTokens(ctx context.Context, before time.Time) (int64, error)
	}

	tokenRepository struct {
		db *gorm.DB
	}
)

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Transaction(ctx context.Context, fn func(repo TokenRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&tokenRepository{db: tx})
	})
}

// TransactionWithUsers runs fn with token and user repositories bound to
// the same transaction.
func (r *tokenRepository) TransactionWithUsers(ctx context.Context, fn func(tokens TokenRepository, users user.UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&tokenRepository{db: tx}, user.NewUserRepository(tx))
	})
}

func (r *tokenRepository) CreateToken(ctx context.Context, token *entities.AccessToken) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(token).Error, "create access token")
}

// GetTokenByID loads the token with its user.
func (r *tokenRepository) GetTokenByID(ctx context.Context, id string) (*entities.AccessToken, error) {
	var token entities.AccessToken
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) TouchToken(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entities.AccessToken{}).
		Where("id = ?", id).
		UpdateColumn("last_used_at", at).Error
}

func (r *tokenRepository) DeleteToken(ctx context.Context, id string) error {
	return errors.Wrap(r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.AccessToken{}).Error, "delete access token")
}

func (r *tokenRepository) DeleteUserTokens(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entities.AccessToken{})
	return res.RowsAffected, errors.Wrap(res.Error, "delete user tokens")
}

func (r *tokenRepository) DeleteExpiredTokens(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", before).Delete(&entities.AccessToken{})
	return res.RowsAffected, errors.Wrap(res.Error, "delete expired tokens")
}
