// api/controller/logs_controller.go
package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/agentguard/audit"
	echo_errors "github.com/dev-mohitbeniwal/agentguard/errors"
	"github.com/dev-mohitbeniwal/agentguard/middleware"
	"github.com/dev-mohitbeniwal/agentguard/util"
	helper_util "github.com/dev-mohitbeniwal/agentguard/util/helper"
)

// LogsController exposes audit submission, filtered query, and hash-chain
// verification, per spec.md §4.I/§4.C.
type LogsController struct {
	auditService audit.Service
}

func NewLogsController(auditService audit.Service) *LogsController {
	return &LogsController{auditService: auditService}
}

func (lc *LogsController) RegisterRoutes(r *gin.RouterGroup) {
	logs := r.Group("/logs")
	{
		logs.POST("", lc.Submit)
		logs.GET("", lc.Query)
		logs.GET("/verify", lc.VerifyChain)
	}
}

type submitLogRequest struct {
	Action   string                 `json:"action"`
	Resource string                 `json:"resource"`
	Context  map[string]interface{} `json:"context"`
	Allowed  bool                   `json:"allowed"`
	Result   audit.Result           `json:"result"`
	Metadata map[string]interface{} `json:"metadata"`
	RequestID string                `json:"request_id"`
}

// Submit implements POST /logs: a standalone audit submission outside the
// enforce path, for agents recording actions they decided locally.
func (lc *LogsController) Submit(c *gin.Context) {
	var req submitLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusUnprocessableEntity, "invalid audit entry", err)
		return
	}

	identity := middleware.GetIdentity(c)
	entry, err := lc.auditService.Submit(c.Request.Context(), audit.Entry{
		AgentID:   identity.SubjectID,
		Action:    req.Action,
		Resource:  req.Resource,
		Context:   req.Context,
		Allowed:   req.Allowed,
		Result:    req.Result,
		Metadata:  req.Metadata,
		RequestID: req.RequestID,
	})
	if err != nil {
		util.RespondWithError(c, http.StatusServiceUnavailable, "audit store unavailable", err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// Query implements GET /logs: an agent sees only its own history; an admin
// may filter by agent_id.
func (lc *LogsController) Query(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	criteria := audit.QueryCriteria{
		AgentID: c.Query("agent_id"),
		Action:  c.Query("action"),
	}
	if identity.Kind == middleware.KindAgent {
		criteria.AgentID = identity.SubjectID
	}
	if v := c.Query("allowed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			util.RespondWithError(c, http.StatusUnprocessableEntity, "invalid allowed filter", err)
			return
		}
		criteria.Allowed = &b
	}
	if v := c.Query("from"); v != "" {
		t, err := helper_util.ParseTime(v)
		if err != nil {
			util.RespondWithError(c, http.StatusUnprocessableEntity, "invalid from filter", err)
			return
		}
		criteria.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := helper_util.ParseTime(v)
		if err != nil {
			util.RespondWithError(c, http.StatusUnprocessableEntity, "invalid to filter", err)
			return
		}
		criteria.To = &t
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			util.RespondWithError(c, http.StatusUnprocessableEntity, "invalid limit", err)
			return
		}
		criteria.Limit = limit
	}

	entries, err := lc.auditService.Query(c.Request.Context(), criteria)
	if err != nil {
		util.RespondWithError(c, http.StatusServiceUnavailable, "audit store unavailable", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

// VerifyChain implements GET /logs/verify?agent_id=...: admin-only, per
// spec.md §6.
func (lc *LogsController) VerifyChain(c *gin.Context) {
	agentID := c.Query("agent_id")
	if agentID == "" {
		util.RespondWithError(c, http.StatusUnprocessableEntity, "agent_id is required", echo_errors.ErrInvalidSearchCriteria)
		return
	}

	result, err := lc.auditService.VerifyChain(c.Request.Context(), agentID)
	if err != nil {
		util.RespondWithError(c, http.StatusServiceUnavailable, "audit store unavailable", err)
		return
	}
	c.JSON(http.StatusOK, result)
}
