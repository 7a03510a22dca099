package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	memusecases "github.com/forgegate-inc/forgegate/internal/application/membership/usecases"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/utils"
)

// MemberRoleHandler serves custom member roles on top-level groups.
type MemberRoleHandler struct {
	createUC memusecases.CreateMemberRoleExecutor
	deleteUC memusecases.DeleteMemberRoleExecutor
	listUC   memusecases.ListMemberRolesExecutor
}

func NewMemberRoleHandler(
	createUC memusecases.CreateMemberRoleExecutor,
	deleteUC memusecases.DeleteMemberRoleExecutor,
	listUC memusecases.ListMemberRolesExecutor,
) *MemberRoleHandler {
	return &MemberRoleHandler{
		createUC: createUC,
		deleteUC: deleteUC,
		listUC:   listUC,
	}
}

type createMemberRoleRequest struct {
	Name      string      `json:"name" binding:"required"`
	BaseLevel int         `json:"base_access_level" binding:"required"`
	Abilities [][2]string `json:"abilities"`
}

// Create defines a custom role on the namespace.
func (h *MemberRoleHandler) Create(c *gin.Context) {
	namespaceID, err := utils.ParseUintParam(c, "id", "group")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req createMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.createUC.Execute(c.Request.Context(), memusecases.CreateMemberRoleCommand{
		Actor:       currentActor(c),
		NamespaceID: namespaceID,
		Name:        req.Name,
		BaseLevel:   req.BaseLevel,
		Abilities:   req.Abilities,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "member role created")
}

// Delete removes a custom role and clears its ability grants.
func (h *MemberRoleHandler) Delete(c *gin.Context) {
	namespaceID, err := utils.ParseUintParam(c, "id", "group")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	roleID, err := utils.ParseUintParam(c, "role_id", "member role")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	err = h.deleteUC.Execute(c.Request.Context(), memusecases.DeleteMemberRoleCommand{
		Actor:       currentActor(c),
		NamespaceID: namespaceID,
		RoleID:      roleID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

// List returns the namespace's custom roles.
func (h *MemberRoleHandler) List(c *gin.Context) {
	namespaceID, err := utils.ParseUintParam(c, "id", "group")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.listUC.Execute(c.Request.Context(), memusecases.ListMemberRolesQuery{
		Actor:       currentActor(c),
		NamespaceID: namespaceID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}
