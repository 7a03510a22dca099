package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apprusecases "github.com/forgegate-inc/forgegate/internal/application/approval/usecases"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/utils"
)

// ApprovalHandler serves merge request approvals and approval rules.
type ApprovalHandler struct {
	approveUC    apprusecases.ApproveMergeRequestExecutor
	unapproveUC  apprusecases.UnapproveMergeRequestExecutor
	getStateUC   apprusecases.GetApprovalStateExecutor
	finalizeUC   apprusecases.FinalizeMergeRequestRulesExecutor
	createRuleUC apprusecases.CreateProjectRuleExecutor
	mergeUC      apprusecases.MergeMergeRequestExecutor
}

func NewApprovalHandler(
	approveUC apprusecases.ApproveMergeRequestExecutor,
	unapproveUC apprusecases.UnapproveMergeRequestExecutor,
	getStateUC apprusecases.GetApprovalStateExecutor,
	finalizeUC apprusecases.FinalizeMergeRequestRulesExecutor,
	createRuleUC apprusecases.CreateProjectRuleExecutor,
	mergeUC apprusecases.MergeMergeRequestExecutor,
) *ApprovalHandler {
	return &ApprovalHandler{
		approveUC:    approveUC,
		unapproveUC:  unapproveUC,
		getStateUC:   getStateUC,
		finalizeUC:   finalizeUC,
		createRuleUC: createRuleUC,
		mergeUC:      mergeUC,
	}
}

// Approve grants the caller's approval on the merge request.
func (h *ApprovalHandler) Approve(c *gin.Context) {
	mrID, err := utils.ParseUintParam(c, "mr_id", "merge request")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req struct {
		SHA string `json:"sha"`
	}
	// Body is optional; an absent sha means "approve whatever is current".
	_ = c.ShouldBindJSON(&req)

	result, err := h.approveUC.Execute(c.Request.Context(), apprusecases.ApproveMergeRequestCommand{
		Actor:          currentActor(c),
		MergeRequestID: mrID,
		SHA:            req.SHA,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "merge request approved")
}

// Unapprove withdraws the caller's approval.
func (h *ApprovalHandler) Unapprove(c *gin.Context) {
	mrID, err := utils.ParseUintParam(c, "mr_id", "merge request")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.unapproveUC.Execute(c.Request.Context(), apprusecases.UnapproveMergeRequestCommand{
		Actor:          currentActor(c),
		MergeRequestID: mrID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "approval withdrawn", result)
}

// GetState returns the merge request's approval state.
func (h *ApprovalHandler) GetState(c *gin.Context) {
	mrID, err := utils.ParseUintParam(c, "mr_id", "merge request")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getStateUC.Execute(c.Request.Context(), apprusecases.GetApprovalStateQuery{
		Actor:          currentActor(c),
		MergeRequestID: mrID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Merge merges the merge request once its approvals are satisfied.
func (h *ApprovalHandler) Merge(c *gin.Context) {
	mrID, err := utils.ParseUintParam(c, "mr_id", "merge request")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req struct {
		SHA string `json:"sha"`
	}
	// Body is optional; an absent sha means "merge whatever is current".
	_ = c.ShouldBindJSON(&req)

	result, err := h.mergeUC.Execute(c.Request.Context(), apprusecases.MergeMergeRequestCommand{
		Actor:          currentActor(c),
		MergeRequestID: mrID,
		SHA:            req.SHA,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "merge request merged", result)
}

// Finalize snapshots the project's rules onto the merge request.
func (h *ApprovalHandler) Finalize(c *gin.Context) {
	mrID, err := utils.ParseUintParam(c, "mr_id", "merge request")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.finalizeUC.Execute(c.Request.Context(), apprusecases.FinalizeMergeRequestRulesCommand{
		Actor:          currentActor(c),
		MergeRequestID: mrID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "approval rules finalized", result)
}

type createApprovalRuleRequest struct {
	Name              string `json:"name" binding:"required"`
	Kind              string `json:"rule_type"`
	Section           string `json:"section"`
	ApprovalsRequired int    `json:"approvals_required"`
	ApproverIDs       []uint `json:"user_ids"`
	GroupIDs          []uint `json:"group_ids"`
}

// CreateRule adds an approval rule to the project.
func (h *ApprovalHandler) CreateRule(c *gin.Context) {
	projectID, err := utils.ParseUintParam(c, "id", "project")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req createApprovalRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.createRuleUC.Execute(c.Request.Context(), apprusecases.CreateProjectRuleCommand{
		Actor:             currentActor(c),
		ProjectID:         projectID,
		Name:              req.Name,
		Kind:              req.Kind,
		Section:           req.Section,
		ApprovalsRequired: req.ApprovalsRequired,
		ApproverIDs:       req.ApproverIDs,
		GroupIDs:          req.GroupIDs,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "approval rule created")
}
