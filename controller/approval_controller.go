// api/controller/approval_controller.go
package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	echo_errors "github.com/dev-mohitbeniwal/agentguard/errors"
	"github.com/dev-mohitbeniwal/agentguard/middleware"
	"github.com/dev-mohitbeniwal/agentguard/model"
	"github.com/dev-mohitbeniwal/agentguard/service"
	"github.com/dev-mohitbeniwal/agentguard/util"
)

// ApprovalController exposes the Approval Queue's listing, polling, and
// decision endpoints, per spec.md §4.H/§6.
type ApprovalController struct {
	approvalService service.ApprovalService
}

func NewApprovalController(approvalService service.ApprovalService) *ApprovalController {
	return &ApprovalController{approvalService: approvalService}
}

// RegisterRoutes mounts the approval endpoints on r. approverGate is applied
// only to the decide routes, since listing and polling allow a broader
// caller set than deciding does (spec.md §6).
func (ac *ApprovalController) RegisterRoutes(r *gin.RouterGroup, approverGate gin.HandlerFunc) {
	approvals := r.Group("/approvals")
	{
		approvals.GET("", ac.List)
		approvals.GET("/:id", ac.Get)
		approvals.POST("/:id/approve", approverGate, ac.decide(model.ApprovalApproved))
		approvals.POST("/:id/deny", approverGate, ac.decide(model.ApprovalDenied))
	}
}

// List requires an admin caller even though the group it mounts under also
// admits agents for Get, since listing exposes every agent's approvals.
func (ac *ApprovalController) List(c *gin.Context) {
	if middleware.GetIdentity(c).Kind != middleware.KindAdmin {
		util.RespondWithError(c, http.StatusForbidden, "admin token required", nil)
		return
	}
	criteria := model.ApprovalSearchCriteria{
		Status:  model.ApprovalStatus(c.Query("status")),
		AgentID: c.Query("agent_id"),
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			util.RespondWithError(c, http.StatusUnprocessableEntity, "invalid limit", err)
			return
		}
		criteria.Limit = limit
	}

	result, err := ac.approvalService.List(c.Request.Context(), criteria)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "failed to list approvals", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (ac *ApprovalController) Get(c *gin.Context) {
	req, err := ac.approvalService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, echo_errors.ErrApprovalNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "not found", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "failed to retrieve approval", err)
		return
	}
	c.JSON(http.StatusOK, req)
}

type decideApprovalRequest struct {
	Reason string `json:"reason"`
}

// decide builds the POST /approvals/{id}/{approve|deny} handler, per
// spec.md §8's "status transitions at most once" invariant.
func (ac *ApprovalController) decide(status model.ApprovalStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body decideApprovalRequest
		_ = c.ShouldBindJSON(&body)

		identity := middleware.GetIdentity(c)
		updated, err := ac.approvalService.Decide(c.Request.Context(), c.Param("id"), status, identity.SubjectID, body.Reason)
		if err != nil {
			switch {
			case errors.Is(err, echo_errors.ErrApprovalNotFound):
				util.RespondWithError(c, http.StatusNotFound, "not found", err)
			case errors.Is(err, echo_errors.ErrApprovalNotPending):
				util.RespondWithError(c, http.StatusConflict, "approval already decided", err)
			case errors.Is(err, echo_errors.ErrInvalidApprovalData):
				util.RespondWithError(c, http.StatusUnprocessableEntity, "decision_reason is required when denying", err)
			default:
				util.RespondWithError(c, http.StatusInternalServerError, "failed to decide approval", err)
			}
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}
