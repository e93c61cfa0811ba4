// api/controller/team_policy_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	echo_errors "github.com/dev-mohitbeniwal/agentguard/errors"
	"github.com/dev-mohitbeniwal/agentguard/model"
	"github.com/dev-mohitbeniwal/agentguard/service"
	"github.com/dev-mohitbeniwal/agentguard/util"
)

// TeamPolicyController exposes admin-only read/write of a team's base
// policy (spec.md §6).
type TeamPolicyController struct {
	policyService *service.PolicyAdminService
}

func NewTeamPolicyController(policyService *service.PolicyAdminService) *TeamPolicyController {
	return &TeamPolicyController{policyService: policyService}
}

func (tc *TeamPolicyController) RegisterRoutes(r *gin.RouterGroup) {
	teams := r.Group("/teams")
	{
		teams.PUT("/:team/policy", tc.SetTeamPolicy)
		teams.GET("/:team/policy", tc.GetTeamPolicy)
		teams.DELETE("/:team/policy", tc.DeleteTeamPolicy)
	}
}

func (tc *TeamPolicyController) SetTeamPolicy(c *gin.Context) {
	var policy model.TeamPolicy
	if err := c.ShouldBindJSON(&policy); err != nil {
		util.RespondWithError(c, http.StatusUnprocessableEntity, "invalid policy data", err)
		return
	}
	policy.Team = c.Param("team")

	saved, err := tc.policyService.SetTeamPolicy(c.Request.Context(), policy)
	if err != nil {
		util.RespondWithError(c, http.StatusUnprocessableEntity, "invalid policy data", err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (tc *TeamPolicyController) GetTeamPolicy(c *gin.Context) {
	policy, err := tc.policyService.GetTeamPolicy(c.Request.Context(), c.Param("team"))
	if err != nil {
		if errors.Is(err, echo_errors.ErrTeamPolicyNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "not found", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "failed to retrieve policy", err)
		return
	}
	c.JSON(http.StatusOK, policy)
}

func (tc *TeamPolicyController) DeleteTeamPolicy(c *gin.Context) {
	if err := tc.policyService.DeleteTeamPolicy(c.Request.Context(), c.Param("team")); err != nil {
		if errors.Is(err, echo_errors.ErrTeamPolicyNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "not found", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "failed to delete policy", err)
		return
	}
	c.Status(http.StatusNoContent)
}
