package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/token"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
)

func liveToken(id, userID uint) *token.PersonalAccessToken {
	t, _ := token.ReconstructPersonalAccessToken(id, userID, "ci", "hashed", time.Now().Add(24*time.Hour), nil, time.Now())
	return t
}

func revokedToken(id, userID uint) *token.PersonalAccessToken {
	revoked := time.Now().Add(-time.Hour)
	t, _ := token.ReconstructPersonalAccessToken(id, userID, "ci", "hashed", time.Now().Add(24*time.Hour), &revoked, time.Now())
	return t
}

func TestRotateTokenUseCase_Execute_Success(t *testing.T) {
	tokenRepo := new(mockTokenRepository)
	hasher := new(mockHasher)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	actor, _ := membership.NewActor(10, "dev", false)
	current := liveToken(3, 10)

	tokenRepo.On("GetByUserAndID", mock.Anything, uint(10), uint(3)).Return(current, nil)
	hasher.On("Hash", "glpat-fresh").Return("hashed-fresh", nil)
	tokenRepo.On("Update", mock.Anything, current).Return(nil)
	tokenRepo.On("Create", mock.Anything, mock.AnythingOfType("*token.PersonalAccessToken")).Return(nil)
	recorder.On("Record", mock.Anything, mock.AnythingOfType("audit.Event")).Return(nil)
	logger.On("Infow", "executing rotate token use case", mock.Anything).Return()
	logger.On("Infow", "token rotated", mock.Anything).Return()

	uc := NewRotateTokenUseCase(tokenRepo, hasher, staticSecretSource("glpat-fresh"), recorder, logger)

	result, err := uc.Execute(context.Background(), RotateTokenCommand{
		Actor:   actor,
		UserID:  10,
		TokenID: 3,
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	// The plaintext appears exactly once, in this response.
	assert.Equal(t, "glpat-fresh", result.Token)
	assert.Equal(t, "ci", result.Name)
	// The old credential is dead before the replacement exists.
	assert.False(t, current.Active())
	tokenRepo.AssertExpectations(t)
	logger.AssertExpectations(t)
}

func TestRotateTokenUseCase_Execute_NotOwner(t *testing.T) {
	tokenRepo := new(mockTokenRepository)
	hasher := new(mockHasher)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	actor, _ := membership.NewActor(10, "dev", false)
	logger.On("Infow", "executing rotate token use case", mock.Anything).Return()

	uc := NewRotateTokenUseCase(tokenRepo, hasher, staticSecretSource("glpat-fresh"), recorder, logger)

	result, err := uc.Execute(context.Background(), RotateTokenCommand{
		Actor:   actor,
		UserID:  99,
		TokenID: 3,
	})

	// Rotating someone else's token is a malformed request, not a
	// permission question.
	assert.Error(t, err)
	assert.Nil(t, result)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrorTypeBadRequest, appErr.Type)
	tokenRepo.AssertNotCalled(t, "GetByUserAndID")
}

func TestRotateTokenUseCase_Execute_RevokedToken(t *testing.T) {
	tokenRepo := new(mockTokenRepository)
	hasher := new(mockHasher)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	actor, _ := membership.NewActor(10, "dev", false)

	tokenRepo.On("GetByUserAndID", mock.Anything, uint(10), uint(3)).Return(revokedToken(3, 10), nil)
	logger.On("Infow", "executing rotate token use case", mock.Anything).Return()

	uc := NewRotateTokenUseCase(tokenRepo, hasher, staticSecretSource("glpat-fresh"), recorder, logger)

	result, err := uc.Execute(context.Background(), RotateTokenCommand{
		Actor:   actor,
		UserID:  10,
		TokenID: 3,
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrorTypeUnprocessable, appErr.Type)
	tokenRepo.AssertNotCalled(t, "Create")
}

func TestRotateTokenUseCase_Execute_UnknownToken(t *testing.T) {
	tokenRepo := new(mockTokenRepository)
	hasher := new(mockHasher)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	actor, _ := membership.NewActor(10, "dev", false)

	tokenRepo.On("GetByUserAndID", mock.Anything, uint(10), uint(3)).Return(nil, token.ErrTokenNotFound)
	logger.On("Infow", "executing rotate token use case", mock.Anything).Return()

	uc := NewRotateTokenUseCase(tokenRepo, hasher, staticSecretSource("glpat-fresh"), recorder, logger)

	result, err := uc.Execute(context.Background(), RotateTokenCommand{
		Actor:   actor,
		UserID:  10,
		TokenID: 3,
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestRotateTokenUseCase_Execute_PastExpiry(t *testing.T) {
	tokenRepo := new(mockTokenRepository)
	hasher := new(mockHasher)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	actor, _ := membership.NewActor(10, "dev", false)
	past := time.Now().Add(-time.Hour)

	tokenRepo.On("GetByUserAndID", mock.Anything, uint(10), uint(3)).Return(liveToken(3, 10), nil)
	hasher.On("Hash", "glpat-fresh").Return("hashed-fresh", nil)
	logger.On("Infow", "executing rotate token use case", mock.Anything).Return()

	uc := NewRotateTokenUseCase(tokenRepo, hasher, staticSecretSource("glpat-fresh"), recorder, logger)

	result, err := uc.Execute(context.Background(), RotateTokenCommand{
		Actor:     actor,
		UserID:    10,
		TokenID:   3,
		ExpiresAt: &past,
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsValidationError(err))
	tokenRepo.AssertNotCalled(t, "Update")
}
