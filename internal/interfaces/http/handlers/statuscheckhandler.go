package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	protusecases "github.com/forgegate-inc/forgegate/internal/application/protection/usecases"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/utils"
)

// StatusCheckHandler serves external status check configuration and retries.
type StatusCheckHandler struct {
	createUC protusecases.CreateStatusCheckExecutor
	listUC   protusecases.ListStatusChecksExecutor
	retryUC  protusecases.RetryStatusCheckExecutor
}

func NewStatusCheckHandler(
	createUC protusecases.CreateStatusCheckExecutor,
	listUC protusecases.ListStatusChecksExecutor,
	retryUC protusecases.RetryStatusCheckExecutor,
) *StatusCheckHandler {
	return &StatusCheckHandler{
		createUC: createUC,
		listUC:   listUC,
		retryUC:  retryUC,
	}
}

type createStatusCheckRequest struct {
	Name        string `json:"name" binding:"required"`
	ExternalURL string `json:"external_url" binding:"required"`
}

// Create registers an external status check on the project.
func (h *StatusCheckHandler) Create(c *gin.Context) {
	projectID, err := utils.ParseUintParam(c, "id", "project")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req createStatusCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.createUC.Execute(c.Request.Context(), protusecases.CreateStatusCheckCommand{
		Actor:     currentActor(c),
		ProjectID: projectID,
		Name:      req.Name,
		URL:       req.ExternalURL,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "status check created")
}

// List returns the project's status checks.
func (h *StatusCheckHandler) List(c *gin.Context) {
	projectID, err := utils.ParseUintParam(c, "id", "project")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.listUC.Execute(c.Request.Context(), protusecases.ListStatusChecksQuery{
		Actor:     currentActor(c),
		ProjectID: projectID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Retry re-runs a failed status check.
func (h *StatusCheckHandler) Retry(c *gin.Context) {
	projectID, err := utils.ParseUintParam(c, "id", "project")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	checkID, err := utils.ParseUintParam(c, "check_id", "status check")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.retryUC.Execute(c.Request.Context(), protusecases.RetryStatusCheckCommand{
		Actor:     currentActor(c),
		ProjectID: projectID,
		CheckID:   checkID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "status check retried", result)
}
