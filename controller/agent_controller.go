// api/controller/agent_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	echo_errors "github.com/dev-mohitbeniwal/agentguard/errors"
	"github.com/dev-mohitbeniwal/agentguard/model"
	"github.com/dev-mohitbeniwal/agentguard/service"
	"github.com/dev-mohitbeniwal/agentguard/util"
	helper_util "github.com/dev-mohitbeniwal/agentguard/util/helper"
)

// AgentController exposes agent lifecycle and per-agent policy management,
// all admin-only per spec.md §6.
type AgentController struct {
	agentService  *service.AgentService
	policyService *service.PolicyAdminService
}

func NewAgentController(agentService *service.AgentService, policyService *service.PolicyAdminService) *AgentController {
	return &AgentController{agentService: agentService, policyService: policyService}
}

func (ac *AgentController) RegisterRoutes(r *gin.RouterGroup) {
	agents := r.Group("/agents")
	{
		agents.POST("", ac.CreateAgent)
		agents.GET("", ac.ListAgents)
		agents.GET("/:id", ac.GetAgent)
		agents.DELETE("/:id", ac.DeactivateAgent)
		agents.PUT("/:id/policy", ac.SetAgentPolicy)
		agents.GET("/:id/policy", ac.GetAgentPolicy)
	}
}

func (ac *AgentController) CreateAgent(c *gin.Context) {
	var agent model.Agent
	if err := c.ShouldBindJSON(&agent); err != nil {
		util.RespondWithError(c, http.StatusUnprocessableEntity, "invalid agent data", err)
		return
	}

	created, rawSecret, err := ac.agentService.CreateAgent(c.Request.Context(), agent)
	if err != nil {
		util.RespondWithError(c, http.StatusUnprocessableEntity, "invalid agent data", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"agent":   created,
		"api_key": rawSecret,
	})
}

func (ac *AgentController) GetAgent(c *gin.Context) {
	agent, err := ac.agentService.GetAgent(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, echo_errors.ErrAgentNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "not found", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "failed to retrieve agent", err)
		return
	}
	c.JSON(http.StatusOK, agent)
}

func (ac *AgentController) ListAgents(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnprocessableEntity, "invalid pagination parameters", err)
		return
	}

	criteria := model.AgentSearchCriteria{
		OwnerTeam:   c.Query("owner_team"),
		Environment: c.Query("environment"),
		Limit:       limit,
		Offset:      offset,
	}
	agents, err := ac.agentService.SearchAgents(c.Request.Context(), criteria)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "failed to list agents", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": agents})
}

func (ac *AgentController) DeactivateAgent(c *gin.Context) {
	if err := ac.agentService.DeactivateAgent(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, echo_errors.ErrAgentNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "not found", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "failed to deactivate agent", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (ac *AgentController) SetAgentPolicy(c *gin.Context) {
	var policy model.AgentPolicy
	if err := c.ShouldBindJSON(&policy); err != nil {
		util.RespondWithError(c, http.StatusUnprocessableEntity, "invalid policy data", err)
		return
	}
	policy.AgentID = c.Param("id")

	saved, err := ac.policyService.SetAgentPolicy(c.Request.Context(), policy)
	if err != nil {
		util.RespondWithError(c, http.StatusUnprocessableEntity, "invalid policy data", err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (ac *AgentController) GetAgentPolicy(c *gin.Context) {
	policy, err := ac.policyService.GetAgentPolicy(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, echo_errors.ErrAgentPolicyNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "not found", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "failed to retrieve policy", err)
		return
	}
	c.JSON(http.StatusOK, policy)
}
