package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	auditusecases "github.com/forgegate-inc/forgegate/internal/application/audit/usecases"
	"github.com/forgegate-inc/forgegate/internal/shared/utils"
)

// AuditEventHandler serves the audit trail of a resource.
type AuditEventHandler struct {
	listUC auditusecases.ListAuditEventsExecutor
}

func NewAuditEventHandler(listUC auditusecases.ListAuditEventsExecutor) *AuditEventHandler {
	return &AuditEventHandler{listUC: listUC}
}

// List returns the resource's audit events, newest first by default.
func (h *AuditEventHandler) List(c *gin.Context) {
	resourceID, err := utils.ParseUintParam(c, "id", "resource")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	author, err := utils.ParseIDFilter(c, "author_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	pagination := utils.ParsePagination(c)
	result, err := h.listUC.Execute(c.Request.Context(), auditusecases.ListAuditEventsQuery{
		Actor:      currentActor(c),
		ResourceID: resourceID,
		Author:     author,
		Pagination: pagination,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SetPaginationHeaders(c, pagination, result.Total)
	utils.SuccessResponse(c, http.StatusOK, "", utils.ListResponse{
		Items:      result.Events,
		Total:      result.Total,
		Page:       pagination.Page,
		PageSize:   pagination.PageSize,
		TotalPages: utils.TotalPages(result.Total, pagination.PageSize),
	})
}
