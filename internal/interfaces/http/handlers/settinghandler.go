package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	setusecases "github.com/forgegate-inc/forgegate/internal/application/settings/usecases"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/utils"
)

// GroupSettingHandler serves group-level settings.
type GroupSettingHandler struct {
	getUC    setusecases.GetGroupSettingsExecutor
	updateUC setusecases.UpdateGroupSettingsExecutor
}

func NewGroupSettingHandler(
	getUC setusecases.GetGroupSettingsExecutor,
	updateUC setusecases.UpdateGroupSettingsExecutor,
) *GroupSettingHandler {
	return &GroupSettingHandler{
		getUC:    getUC,
		updateUC: updateUC,
	}
}

// Get returns the group's settings, defaults included.
func (h *GroupSettingHandler) Get(c *gin.Context) {
	groupID, err := utils.ParseUintParam(c, "id", "group")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getUC.Execute(c.Request.Context(), setusecases.GetGroupSettingsQuery{
		Actor:   currentActor(c),
		GroupID: groupID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Update writes the group's default branch protection level.
func (h *GroupSettingHandler) Update(c *gin.Context) {
	groupID, err := utils.ParseUintParam(c, "id", "group")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req struct {
		DefaultBranchProtection *int `json:"default_branch_protection" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.updateUC.Execute(c.Request.Context(), setusecases.UpdateGroupSettingsCommand{
		Actor:                   currentActor(c),
		GroupID:                 groupID,
		DefaultBranchProtection: *req.DefaultBranchProtection,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "group settings updated", result)
}
