package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	protusecases "github.com/forgegate-inc/forgegate/internal/application/protection/usecases"
	"github.com/forgegate-inc/forgegate/internal/domain/protection"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/utils"
)

// ProtectedBranchHandler serves the protected branch endpoints for both
// project and group scopes. The scope is fixed at route registration.
type ProtectedBranchHandler struct {
	protectUC   protusecases.ProtectBranchExecutor
	updateUC    protusecases.UpdateProtectedBranchExecutor
	unprotectUC protusecases.UnprotectBranchExecutor
	listUC      protusecases.ListProtectedBranchesExecutor
}

func NewProtectedBranchHandler(
	protectUC protusecases.ProtectBranchExecutor,
	updateUC protusecases.UpdateProtectedBranchExecutor,
	unprotectUC protusecases.UnprotectBranchExecutor,
	listUC protusecases.ListProtectedBranchesExecutor,
) *ProtectedBranchHandler {
	return &ProtectedBranchHandler{
		protectUC:   protectUC,
		updateUC:    updateUC,
		unprotectUC: unprotectUC,
		listUC:      listUC,
	}
}

type protectBranchRequest struct {
	Name         string               `json:"name" binding:"required"`
	PushEntries  []accessEntryRequest `json:"allowed_to_push"`
	MergeEntries []accessEntryRequest `json:"allowed_to_merge"`
}

// Protect creates a protection rule on the scope.
func (h *ProtectedBranchHandler) Protect(scope protection.ScopeKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		scopeID, err := utils.ParseUintParam(c, "id", string(scope))
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		var req protectBranchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid request body"))
			return
		}

		result, err := h.protectUC.Execute(c.Request.Context(), protusecases.ProtectBranchCommand{
			Actor:        currentActor(c),
			Scope:        scope,
			ScopeID:      scopeID,
			Name:         req.Name,
			PushEntries:  toEntryInputs(req.PushEntries),
			MergeEntries: toEntryInputs(req.MergeEntries),
		})
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		utils.CreatedResponse(c, result, "branch protected")
	}
}

// Update edits an existing rule's access entries in place.
func (h *ProtectedBranchHandler) Update(scope protection.ScopeKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		scopeID, err := utils.ParseUintParam(c, "id", string(scope))
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		var req struct {
			PushEntries  []accessEntryRequest `json:"allowed_to_push"`
			MergeEntries []accessEntryRequest `json:"allowed_to_merge"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid request body"))
			return
		}

		result, err := h.updateUC.Execute(c.Request.Context(), protusecases.UpdateProtectedBranchCommand{
			Actor:        currentActor(c),
			Scope:        scope,
			ScopeID:      scopeID,
			Name:         c.Param("name"),
			PushEntries:  toEntryInputs(req.PushEntries),
			MergeEntries: toEntryInputs(req.MergeEntries),
		})
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		utils.SuccessResponse(c, http.StatusOK, "protected branch updated", result)
	}
}

// Unprotect removes the rule.
func (h *ProtectedBranchHandler) Unprotect(scope protection.ScopeKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		scopeID, err := utils.ParseUintParam(c, "id", string(scope))
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		err = h.unprotectUC.Execute(c.Request.Context(), protusecases.UnprotectBranchCommand{
			Actor:   currentActor(c),
			Scope:   scope,
			ScopeID: scopeID,
			Name:    c.Param("name"),
		})
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		utils.NoContentResponse(c)
	}
}

// List returns the scope's protection rules. Project listings include rules
// inherited from ancestor groups.
func (h *ProtectedBranchHandler) List(scope protection.ScopeKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		scopeID, err := utils.ParseUintParam(c, "id", string(scope))
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		pagination := utils.ParsePagination(c)
		result, err := h.listUC.Execute(c.Request.Context(), protusecases.ListProtectedBranchesQuery{
			Actor:      currentActor(c),
			Scope:      scope,
			ScopeID:    scopeID,
			Pagination: pagination,
		})
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		utils.SetPaginationHeaders(c, pagination, result.Total)
		utils.SuccessResponse(c, http.StatusOK, "", utils.ListResponse{
			Items:      result.Branches,
			Total:      result.Total,
			Page:       pagination.Page,
			PageSize:   pagination.PageSize,
			TotalPages: utils.TotalPages(result.Total, pagination.PageSize),
		})
	}
}
