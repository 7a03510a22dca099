package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	tokusecases "github.com/forgegate-inc/forgegate/internal/application/token/usecases"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/utils"
)

// TokenHandler serves personal access token issuance and rotation.
type TokenHandler struct {
	createUC tokusecases.CreateTokenExecutor
	rotateUC tokusecases.RotateTokenExecutor
}

func NewTokenHandler(
	createUC tokusecases.CreateTokenExecutor,
	rotateUC tokusecases.RotateTokenExecutor,
) *TokenHandler {
	return &TokenHandler{
		createUC: createUC,
		rotateUC: rotateUC,
	}
}

type createTokenRequest struct {
	Name      string    `json:"name" binding:"required"`
	ExpiresAt time.Time `json:"expires_at" binding:"required,future"`
}

// Create issues a token for the caller. The response is the only place the
// plaintext ever appears.
func (h *TokenHandler) Create(c *gin.Context) {
	var req createTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.createUC.Execute(c.Request.Context(), tokusecases.CreateTokenCommand{
		Actor:     currentActor(c),
		Name:      req.Name,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "token created")
}

// Rotate revokes the addressed token and returns its replacement.
func (h *TokenHandler) Rotate(c *gin.Context) {
	userID, err := utils.ParseUintParam(c, "user_id", "user")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	tokenID, err := utils.ParseUintParam(c, "token_id", "token")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req struct {
		ExpiresAt *time.Time `json:"expires_at"`
	}
	// Body is optional; rotation falls back to the default lifetime.
	_ = c.ShouldBindJSON(&req)

	result, err := h.rotateUC.Execute(c.Request.Context(), tokusecases.RotateTokenCommand{
		Actor:     currentActor(c),
		UserID:    userID,
		TokenID:   tokenID,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "token rotated")
}
