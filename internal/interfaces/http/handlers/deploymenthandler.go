package handlers

import (
	"github.com/gin-gonic/gin"

	protusecases "github.com/forgegate-inc/forgegate/internal/application/protection/usecases"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/utils"
)

// DeploymentApprovalHandler serves deployment approval grants.
type DeploymentApprovalHandler struct {
	approveUC protusecases.ApproveDeploymentExecutor
}

func NewDeploymentApprovalHandler(approveUC protusecases.ApproveDeploymentExecutor) *DeploymentApprovalHandler {
	return &DeploymentApprovalHandler{approveUC: approveUC}
}

type approveDeploymentRequest struct {
	Status               string `json:"status" binding:"required"`
	SHA                  string `json:"sha"`
	Comment              string `json:"comment"`
	RepresentedAsGroupID uint   `json:"represented_as"`
}

// Approve records the caller's approval or rejection of a blocked deployment.
func (h *DeploymentApprovalHandler) Approve(c *gin.Context) {
	deploymentID, err := utils.ParseUintParam(c, "deployment_id", "deployment")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req approveDeploymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.approveUC.Execute(c.Request.Context(), protusecases.ApproveDeploymentCommand{
		Actor:                currentActor(c),
		DeploymentID:         deploymentID,
		Status:               req.Status,
		SHA:                  req.SHA,
		Comment:              req.Comment,
		RepresentedAsGroupID: req.RepresentedAsGroupID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "deployment approval recorded")
}
