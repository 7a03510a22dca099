package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	protusecases "github.com/forgegate-inc/forgegate/internal/application/protection/usecases"
	"github.com/forgegate-inc/forgegate/internal/domain/protection"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/utils"
)

// ProtectedEnvironmentHandler serves the protected environment endpoints for
// project and group scopes.
type ProtectedEnvironmentHandler struct {
	protectUC   protusecases.ProtectEnvironmentExecutor
	updateUC    protusecases.UpdateProtectedEnvironmentExecutor
	unprotectUC protusecases.UnprotectEnvironmentExecutor
	listUC      protusecases.ListProtectedEnvironmentsExecutor
}

func NewProtectedEnvironmentHandler(
	protectUC protusecases.ProtectEnvironmentExecutor,
	updateUC protusecases.UpdateProtectedEnvironmentExecutor,
	unprotectUC protusecases.UnprotectEnvironmentExecutor,
	listUC protusecases.ListProtectedEnvironmentsExecutor,
) *ProtectedEnvironmentHandler {
	return &ProtectedEnvironmentHandler{
		protectUC:   protectUC,
		updateUC:    updateUC,
		unprotectUC: unprotectUC,
		listUC:      listUC,
	}
}

type protectEnvironmentRequest struct {
	Name                  string               `json:"name" binding:"required"`
	DeployEntries         []accessEntryRequest `json:"deploy_access_levels"`
	ApprovalRules         []accessEntryRequest `json:"approval_rules"`
	RequiredApprovalCount int                  `json:"required_approval_count"`
}

// Protect creates a protected environment on the scope.
func (h *ProtectedEnvironmentHandler) Protect(scope protection.ScopeKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		scopeID, err := utils.ParseUintParam(c, "id", string(scope))
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		var req protectEnvironmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid request body"))
			return
		}

		result, err := h.protectUC.Execute(c.Request.Context(), protusecases.ProtectEnvironmentCommand{
			Actor:                 currentActor(c),
			Scope:                 scope,
			ScopeID:               scopeID,
			Name:                  req.Name,
			DeployEntries:         toEntryInputs(req.DeployEntries),
			ApprovalRules:         toEntryInputs(req.ApprovalRules),
			RequiredApprovalCount: req.RequiredApprovalCount,
		})
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		utils.CreatedResponse(c, result, "environment protected")
	}
}

// Update edits deploy entries, approval rules, or the required approval count.
func (h *ProtectedEnvironmentHandler) Update(scope protection.ScopeKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		scopeID, err := utils.ParseUintParam(c, "id", string(scope))
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		var req struct {
			DeployEntries         []accessEntryRequest `json:"deploy_access_levels"`
			ApprovalRules         []accessEntryRequest `json:"approval_rules"`
			RequiredApprovalCount *int                 `json:"required_approval_count"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid request body"))
			return
		}

		result, err := h.updateUC.Execute(c.Request.Context(), protusecases.UpdateProtectedEnvironmentCommand{
			Actor:                 currentActor(c),
			Scope:                 scope,
			ScopeID:               scopeID,
			Name:                  c.Param("name"),
			DeployEntries:         toEntryInputs(req.DeployEntries),
			ApprovalRules:         toEntryInputs(req.ApprovalRules),
			RequiredApprovalCount: req.RequiredApprovalCount,
		})
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		utils.SuccessResponse(c, http.StatusOK, "protected environment updated", result)
	}
}

// Unprotect removes the protected environment.
func (h *ProtectedEnvironmentHandler) Unprotect(scope protection.ScopeKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		scopeID, err := utils.ParseUintParam(c, "id", string(scope))
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		err = h.unprotectUC.Execute(c.Request.Context(), protusecases.UnprotectEnvironmentCommand{
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

// List returns the scope's protected environments.
func (h *ProtectedEnvironmentHandler) List(scope protection.ScopeKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		scopeID, err := utils.ParseUintParam(c, "id", string(scope))
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		pagination := utils.ParsePagination(c)
		result, err := h.listUC.Execute(c.Request.Context(), protusecases.ListProtectedEnvironmentsQuery{
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
			Items:      result.Environments,
			Total:      result.Total,
			Page:       pagination.Page,
			PageSize:   pagination.PageSize,
			TotalPages: utils.TotalPages(result.Total, pagination.PageSize),
		})
	}
}
