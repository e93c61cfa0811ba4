// api/controller/enforce_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dev-mohitbeniwal/agentguard/middleware"
	"github.com/dev-mohitbeniwal/agentguard/service"
	"github.com/dev-mohitbeniwal/agentguard/util"
)

// EnforceController exposes the Decision Engine's live decision endpoint
// and the supplemented dry-run playground, per spec.md §4.J and §6.
type EnforceController struct {
	decisionService service.DecisionService
}

func NewEnforceController(decisionService service.DecisionService) *EnforceController {
	return &EnforceController{decisionService: decisionService}
}

func (ec *EnforceController) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/enforce", ec.Enforce)
	r.POST("/playground/enforce", ec.Playground)
}

type enforceRequest struct {
	Action   string                 `json:"action"`
	Resource string                 `json:"resource"`
	Context  map[string]interface{} `json:"context"`
}

type playgroundRequest struct {
	AgentID  string                 `json:"agent_id"`
	Action   string                 `json:"action"`
	Resource string                 `json:"resource"`
	Context  map[string]interface{} `json:"context"`
}

// Enforce implements POST /enforce: the caller is always the agent whose
// identity the Auth Gate resolved from its bearer token or x-agent-key.
func (ec *EnforceController) Enforce(c *gin.Context) {
	var req enforceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusUnprocessableEntity, "invalid enforce request", err)
		return
	}

	identity := middleware.GetIdentity(c)
	requestID := c.GetHeader("x-request-id")
	if requestID == "" {
		requestID = uuid.NewString()
	}

	verdict, err := ec.decisionService.Enforce(c.Request.Context(), identity.SubjectID, req.Action, req.Resource, req.Context, requestID)
	if err != nil {
		util.RespondWithError(c, http.StatusServiceUnavailable, "audit store unavailable", err)
		return
	}

	switch verdict.Status {
	case service.VerdictPending:
		c.JSON(http.StatusOK, gin.H{"allowed": false, "status": "pending", "approval_id": verdict.ApprovalID})
	case service.VerdictAllow:
		c.JSON(http.StatusOK, gin.H{"allowed": true, "reason": verdict.Reason})
	default:
		c.JSON(http.StatusOK, gin.H{"allowed": false, "reason": verdict.Reason})
	}
}

// Playground implements the supplemented dry-run endpoint: an admin names
// the agent whose effective policy to test, and gets back which rule would
// match without opening an approval or writing audit history.
func (ec *EnforceController) Playground(c *gin.Context) {
	var req playgroundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusUnprocessableEntity, "invalid enforce request", err)
		return
	}

	explanation, err := ec.decisionService.Playground(c.Request.Context(), req.AgentID, req.Action, req.Resource, req.Context)
	if err != nil {
		util.RespondWithError(c, http.StatusServiceUnavailable, "policy unavailable", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        explanation.Status,
		"reason":        explanation.Reason,
		"matched_list":  explanation.MatchedList,
		"matched_index": explanation.MatchedIndex,
	})
}
