package usecases

import (
	"context"
	goerrors "errors"
	"time"

	"github.com/forgegate-inc/forgegate/internal/application/token/dto"
	"github.com/forgegate-inc/forgegate/internal/domain/audit"
	"github.com/forgegate-inc/forgegate/internal/domain/authz"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/token"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

// rotatedTokenLifetime is how long a rotated token lives when the request
// does not name an expiry.
const rotatedTokenLifetime = 7 * 24 * time.Hour

// RotateTokenCommand revokes the addressed token and issues a replacement.
// Only the owner may rotate; the plaintext of the replacement exists once, in
// this response.
type RotateTokenCommand struct {
	Actor     *membership.Actor
	UserID    uint
	TokenID   uint
	ExpiresAt *time.Time
}

type RotateTokenExecutor interface {
	Execute(ctx context.Context, cmd RotateTokenCommand) (*dto.TokenDTO, error)
}

type RotateTokenUseCase struct {
	tokenRepo token.Repository
	hasher    token.Hasher
	secrets   token.SecretSource
	recorder  audit.Recorder
	logger    logger.Interface
}

func NewRotateTokenUseCase(
	tokenRepo token.Repository,
	hasher token.Hasher,
	secrets token.SecretSource,
	recorder audit.Recorder,
	logger logger.Interface,
) *RotateTokenUseCase {
	return &RotateTokenUseCase{
		tokenRepo: tokenRepo,
		hasher:    hasher,
		secrets:   secrets,
		recorder:  recorder,
		logger:    logger,
	}
}

func (uc *RotateTokenUseCase) Execute(ctx context.Context, cmd RotateTokenCommand) (*dto.TokenDTO, error) {
	uc.logger.Infow("executing rotate token use case",
		"user_id", cmd.UserID, "token_id", cmd.TokenID)

	if cmd.Actor == nil {
		return nil, errors.NewUnauthorizedError("401 Unauthorized")
	}
	// Rotating someone else's token is a malformed request, not a permission
	// question.
	if cmd.Actor.ID() != cmd.UserID {
		return nil, errors.NewBadRequestError("token can only be rotated by its owner")
	}

	// The owner-scoped lookup means token ids of other users are
	// indistinguishable from ids that never existed.
	current, err := uc.tokenRepo.GetByUserAndID(ctx, cmd.UserID, cmd.TokenID)
	if err != nil {
		if goerrors.Is(err, token.ErrTokenNotFound) {
			return nil, errors.NewNotFoundError(err.Error())
		}
		return nil, err
	}
	if !current.Active() {
		return nil, errors.NewUnprocessableError("token is revoked or expired")
	}

	secret, err := uc.secrets()
	if err != nil {
		uc.logger.Errorw("failed to generate token secret", "error", err)
		return nil, errors.NewInternalError("failed to generate token secret")
	}
	hash, err := uc.hasher.Hash(secret)
	if err != nil {
		uc.logger.Errorw("failed to hash token secret", "error", err)
		return nil, errors.NewInternalError("failed to hash token secret")
	}

	expiresAt := time.Now().Add(rotatedTokenLifetime)
	if cmd.ExpiresAt != nil {
		if cmd.ExpiresAt.Before(time.Now()) {
			return nil, errors.NewValidationError("expiry must be in the future").
				WithField("expires_at", "must be a future date")
		}
		expiresAt = *cmd.ExpiresAt
	}

	replacement, err := token.NewPersonalAccessToken(cmd.UserID, current.Name(), hash, expiresAt)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	// Revoke first: if the insert fails the old credential is already dead,
	// never the other way around.
	current.Revoke()
	if err := uc.tokenRepo.Update(ctx, current); err != nil {
		uc.logger.Errorw("failed to revoke token", "id", current.ID(), "error", err)
		return nil, err
	}

	if err := uc.tokenRepo.Create(ctx, replacement); err != nil {
		uc.logger.Errorw("failed to create replacement token", "user_id", cmd.UserID, "error", err)
		return nil, err
	}

	if err := uc.recorder.Record(ctx, audit.Event{
		ActorID:      cmd.Actor.ID(),
		Action:       "rotate_access_token",
		ResourceKind: "user",
		ResourceID:   cmd.UserID,
		Reason:       string(authz.ReasonOK),
		Details:      map[string]any{"revoked_token_id": current.ID(), "token_name": current.Name()},
		CreatedAt:    time.Now(),
	}); err != nil {
		uc.logger.Warnw("failed to record audit event", "error", err)
	}

	uc.logger.Infow("token rotated",
		"user_id", cmd.UserID, "revoked_id", current.ID(), "new_id", replacement.ID())
	return dto.ToTokenDTO(replacement, secret), nil
}
