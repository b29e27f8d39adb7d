package repository

import (
	"context"
	"time"

	"warehouse/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenRepository persists refresh tokens and password-reset tokens
type TokenRepository interface {
	CreateRefreshToken(ctx context.Context, token *model.RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteRefreshTokensForUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpiredRefreshTokens(ctx context.Context) error

	CreateResetToken(ctx context.Context, token *model.PasswordResetToken) error
	FindResetToken(ctx context.Context, key string) (*model.PasswordResetToken, error)
	DeactivateResetTokens(ctx context.Context, userID uuid.UUID) error
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) CreateRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	return GetDB(ctx, r.db).Create(token).Error
}

func (r *tokenRepository) FindRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	var rt model.RefreshToken
	if err := GetDB(ctx, r.db).Where("token = ?", token).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *tokenRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	return GetDB(ctx, r.db).Where("token = ?", token).Delete(&model.RefreshToken{}).Error
}

func (r *tokenRepository) DeleteRefreshTokensForUser(ctx context.Context, userID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("user_id = ?", userID).Delete(&model.RefreshToken{}).Error
}

func (r *tokenRepository) DeleteExpiredRefreshTokens(ctx context.Context) error {
	return GetDB(ctx, r.db).Where("expires_at < ?", time.Now()).Delete(&model.RefreshToken{}).Error
}

func (r *tokenRepository) CreateResetToken(ctx context.Context, token *model.PasswordResetToken) error {
	return GetDB(ctx, r.db).Create(token).Error
}

func (r *tokenRepository) FindResetToken(ctx context.Context, key string) (*model.PasswordResetToken, error) {
	var rt model.PasswordResetToken
	if err := GetDB(ctx, r.db).Where("key = ?", key).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// DeactivateResetTokens marks every outstanding reset key for the user as
// used, so a completed reset leaves no replayable key behind
func (r *tokenRepository) DeactivateResetTokens(ctx context.Context, userID uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.PasswordResetToken{}).
		Where("user_id = ? AND status = ?", userID, model.StatusActive).
		Update("status", model.StatusInactive).Error
}
