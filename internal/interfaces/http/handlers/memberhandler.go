package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	memusecases "github.com/forgegate-inc/forgegate/internal/application/membership/usecases"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/utils"
)

// MemberHandler serves membership management on a resource.
type MemberHandler struct {
	addUC         memusecases.AddMemberExecutor
	updateUC      memusecases.UpdateMemberLevelExecutor
	approveUC     memusecases.ApproveMemberExecutor
	approveAllUC  memusecases.ApproveAllPendingExecutor
	listPendingUC memusecases.ListPendingMembersExecutor
}

func NewMemberHandler(
	addUC memusecases.AddMemberExecutor,
	updateUC memusecases.UpdateMemberLevelExecutor,
	approveUC memusecases.ApproveMemberExecutor,
	approveAllUC memusecases.ApproveAllPendingExecutor,
	listPendingUC memusecases.ListPendingMembersExecutor,
) *MemberHandler {
	return &MemberHandler{
		addUC:         addUC,
		updateUC:      updateUC,
		approveUC:     approveUC,
		approveAllUC:  approveAllUC,
		listPendingUC: listPendingUC,
	}
}

type addMemberRequest struct {
	UserID       uint   `json:"user_id" binding:"required"`
	AccessLevel  int    `json:"access_level" binding:"required"`
	MemberRoleID uint   `json:"member_role_id"`
	Source       string `json:"source"`
}

// Add grants a user membership on the resource.
func (h *MemberHandler) Add(c *gin.Context) {
	resourceID, err := utils.ParseUintParam(c, "id", "resource")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.addUC.Execute(c.Request.Context(), memusecases.AddMemberCommand{
		Actor:        currentActor(c),
		ResourceID:   resourceID,
		UserID:       req.UserID,
		AccessLevel:  req.AccessLevel,
		MemberRoleID: req.MemberRoleID,
		Source:       req.Source,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "member added")
}

// UpdateLevel changes a member's access level.
func (h *MemberHandler) UpdateLevel(c *gin.Context) {
	resourceID, err := utils.ParseUintParam(c, "id", "resource")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	memberID, err := utils.ParseUintParam(c, "member_id", "member")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req struct {
		AccessLevel int `json:"access_level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.updateUC.Execute(c.Request.Context(), memusecases.UpdateMemberLevelCommand{
		Actor:       currentActor(c),
		ResourceID:  resourceID,
		MemberID:    memberID,
		AccessLevel: req.AccessLevel,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "member updated", result)
}

// Approve admits one awaiting member.
func (h *MemberHandler) Approve(c *gin.Context) {
	resourceID, err := utils.ParseUintParam(c, "id", "resource")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	memberID, err := utils.ParseUintParam(c, "member_id", "member")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.approveUC.Execute(c.Request.Context(), memusecases.ApproveMemberCommand{
		Actor:      currentActor(c),
		ResourceID: resourceID,
		MemberID:   memberID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "member approved", result)
}

// ApproveAll admits every awaiting member on the resource.
func (h *MemberHandler) ApproveAll(c *gin.Context) {
	resourceID, err := utils.ParseUintParam(c, "id", "resource")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	approved, err := h.approveAllUC.Execute(c.Request.Context(), memusecases.ApproveAllPendingCommand{
		Actor:      currentActor(c),
		ResourceID: resourceID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "pending members approved", gin.H{"approved": approved})
}

// ListPending returns members awaiting admission.
func (h *MemberHandler) ListPending(c *gin.Context) {
	resourceID, err := utils.ParseUintParam(c, "id", "resource")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	pagination := utils.ParsePagination(c)
	result, err := h.listPendingUC.Execute(c.Request.Context(), memusecases.ListPendingMembersQuery{
		Actor:      currentActor(c),
		ResourceID: resourceID,
		Pagination: pagination,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SetPaginationHeaders(c, pagination, result.Total)
	utils.SuccessResponse(c, http.StatusOK, "", utils.ListResponse{
		Items:      result.Members,
		Total:      result.Total,
		Page:       pagination.Page,
		PageSize:   pagination.PageSize,
		TotalPages: utils.TotalPages(result.Total, pagination.PageSize),
	})
}
