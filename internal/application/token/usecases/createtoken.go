package usecases

import (
	"context"
	"time"

	"github.com/forgegate-inc/forgegate/internal/application/token/dto"
	"github.com/forgegate-inc/forgegate/internal/domain/audit"
	"github.com/forgegate-inc/forgegate/internal/domain/authz"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/token"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

type CreateTokenCommand struct {
	Actor     *membership.Actor
	Name      string
	ExpiresAt time.Time
}

type CreateTokenExecutor interface {
	Execute(ctx context.Context, cmd CreateTokenCommand) (*dto.TokenDTO, error)
}

type CreateTokenUseCase struct {
	tokenRepo token.Repository
	hasher    token.Hasher
	secrets   token.SecretSource
	recorder  audit.Recorder
	logger    logger.Interface
}

func NewCreateTokenUseCase(
	tokenRepo token.Repository,
	hasher token.Hasher,
	secrets token.SecretSource,
	recorder audit.Recorder,
	logger logger.Interface,
) *CreateTokenUseCase {
	return &CreateTokenUseCase{
		tokenRepo: tokenRepo,
		hasher:    hasher,
		secrets:   secrets,
		recorder:  recorder,
		logger:    logger,
	}
}

func (uc *CreateTokenUseCase) Execute(ctx context.Context, cmd CreateTokenCommand) (*dto.TokenDTO, error) {
	uc.logger.Infow("executing create token use case", "name", cmd.Name)

	if cmd.Actor == nil {
		return nil, errors.NewUnauthorizedError("401 Unauthorized")
	}
	if cmd.Name == "" {
		return nil, errors.NewValidationError("token name is required").
			WithField("name", "can't be blank")
	}
	if !cmd.ExpiresAt.After(time.Now()) {
		return nil, errors.NewValidationError("expiry must be in the future").
			WithField("expires_at", "must be a future date")
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

	t, err := token.NewPersonalAccessToken(cmd.Actor.ID(), cmd.Name, hash, cmd.ExpiresAt)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.tokenRepo.Create(ctx, t); err != nil {
		uc.logger.Errorw("failed to create token", "name", cmd.Name, "error", err)
		return nil, err
	}

	if err := uc.recorder.Record(ctx, audit.Event{
		ActorID:      cmd.Actor.ID(),
		Action:       "create_access_token",
		ResourceKind: "user",
		ResourceID:   cmd.Actor.ID(),
		Reason:       string(authz.ReasonOK),
		Details:      map[string]any{"token_id": t.ID(), "token_name": t.Name()},
		CreatedAt:    time.Now(),
	}); err != nil {
		uc.logger.Warnw("failed to record audit event", "error", err)
	}

	uc.logger.Infow("token created", "id", t.ID(), "name", t.Name())
	return dto.ToTokenDTO(t, secret), nil
}
