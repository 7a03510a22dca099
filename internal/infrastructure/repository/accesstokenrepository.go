package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/forgegate-inc/forgegate/internal/domain/token"
	"github.com/forgegate-inc/forgegate/internal/infrastructure/persistence/models"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

// AccessTokenRepositoryImpl implements the token.Repository interface
type AccessTokenRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewAccessTokenRepository creates a new access token repository instance
func NewAccessTokenRepository(db *gorm.DB, logger logger.Interface) token.Repository {
	return &AccessTokenRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// Create persists a new personal access token record
func (r *AccessTokenRepositoryImpl) Create(ctx context.Context, t *token.PersonalAccessToken) error {
	model := &models.AccessTokenModel{
		UserID:    t.UserID(),
		Name:      t.Name(),
		TokenHash: t.Hash(),
		ExpiresAt: t.ExpiresAt(),
		RevokedAt: t.RevokedAt(),
		CreatedAt: t.CreatedAt(),
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("access token already exists")
		}
		r.logger.Errorw("failed to create access token", "user_id", t.UserID(), "name", t.Name(), "error", err)
		return fmt.Errorf("failed to create access token: %w", err)
	}

	if err := t.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set access token ID", "error", err)
		return fmt.Errorf("failed to set access token ID: %w", err)
	}

	r.logger.Infow("access token created", "id", model.ID, "user_id", model.UserID, "name", model.Name)
	return nil
}

// Update persists token revocation and expiry changes
func (r *AccessTokenRepositoryImpl) Update(ctx context.Context, t *token.PersonalAccessToken) error {
	result := r.db.WithContext(ctx).
		Model(&models.AccessTokenModel{}).
		Where("id = ?", t.ID()).
		Updates(map[string]interface{}{
			"name":       t.Name(),
			"token_hash": t.Hash(),
			"expires_at": t.ExpiresAt(),
			"revoked_at": t.RevokedAt(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update access token", "id", t.ID(), "error", result.Error)
		return fmt.Errorf("failed to update access token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return token.ErrTokenNotFound
	}
	return nil
}

// GetByID retrieves a token by ID regardless of owner
func (r *AccessTokenRepositoryImpl) GetByID(ctx context.Context, id uint) (*token.PersonalAccessToken, error) {
	var model models.AccessTokenModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, token.ErrTokenNotFound
		}
		r.logger.Errorw("failed to get access token", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	return r.toAggregate(&model)
}

// GetByUserAndID scopes the lookup to one owner; another user's token id
// resolves to not found, never to the token
func (r *AccessTokenRepositoryImpl) GetByUserAndID(ctx context.Context, userID, id uint) (*token.PersonalAccessToken, error) {
	var model models.AccessTokenModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, token.ErrTokenNotFound
		}
		r.logger.Errorw("failed to get access token", "id", id, "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	return r.toAggregate(&model)
}

func (r *AccessTokenRepositoryImpl) toAggregate(model *models.AccessTokenModel) (*token.PersonalAccessToken, error) {
	t, err := token.ReconstructPersonalAccessToken(
		model.ID,
		model.UserID,
		model.Name,
		model.TokenHash,
		model.ExpiresAt,
		model.RevokedAt,
		model.CreatedAt,
	)
	if err != nil {
		r.logger.Errorw("failed to reconstruct access token", "id", model.ID, "error", err)
		return nil, fmt.Errorf("failed to reconstruct access token: %w", err)
	}
	return t, nil
}
