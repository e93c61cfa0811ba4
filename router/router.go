// api/router/router.go

package router

import (
	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/agentguard/controller"
	"github.com/dev-mohitbeniwal/agentguard/middleware"
	"github.com/dev-mohitbeniwal/agentguard/model"
)

// SetupRouter wires the explicit HTTP surface of spec.md §6: every route
// gets an auth-class middleware (none, a bearer/key gate, a kind
// requirement, or a role floor) and a rate-limit bucket from §4.F. Routes
// that mix auth classes within one resource (e.g. GET /agents vs POST
// /agents) are split into separate groups rather than widened to their
// least-restrictive member.
func SetupRouter(
	authGate gin.HandlerFunc,
	corsOrigins []string,
	tokenCtrl *controller.TokenController,
	agentCtrl *controller.AgentController,
	teamPolicyCtrl *controller.TeamPolicyController,
	enforceCtrl *controller.EnforceController,
	logsCtrl *controller.LogsController,
	approvalCtrl *controller.ApprovalController,
	adminUserCtrl *controller.AdminUserController,
	healthCtrl *controller.HealthController,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(corsOrigins))

	// Unauthenticated: token issuance, JWKS, health/liveness.
	public := router.Group("")
	public.Use(middleware.RateLimit(middleware.BucketPublic))
	tokenCtrl.RegisterRoutes(public, authGate)
	healthCtrl.RegisterRoutes(public)

	// Decision Engine: agents call /enforce with their own bearer token or
	// x-agent-key; admins dry-run /playground/enforce against any agent.
	enforce := router.Group("")
	enforce.Use(authGate, middleware.RequireKind(middleware.KindAgent), middleware.RateLimit(middleware.BucketEnforce))
	enforce.POST("/enforce", enforceCtrl.Enforce)

	playground := router.Group("")
	playground.Use(authGate, middleware.RequireKind(middleware.KindAdmin), middleware.RateLimit(middleware.BucketAdminRead))
	playground.POST("/playground/enforce", enforceCtrl.Playground)

	// Audit log: agents submit and query their own history; only admins
	// verify a chain.
	logsWrite := router.Group("/logs")
	logsWrite.Use(authGate, middleware.RequireKind(middleware.KindAgent), middleware.RateLimit(middleware.BucketLogs))
	logsWrite.POST("", logsCtrl.Submit)

	logsRead := router.Group("/logs")
	logsRead.Use(authGate, middleware.RequireAnyKind(middleware.KindAgent, middleware.KindAdmin), middleware.RateLimit(middleware.BucketLogs))
	logsRead.GET("", logsCtrl.Query)

	logsVerify := router.Group("/logs")
	logsVerify.Use(authGate, middleware.RequireKind(middleware.KindAdmin), middleware.RateLimit(middleware.BucketAdminRead))
	logsVerify.GET("/verify", logsCtrl.VerifyChain)

	// Agent lifecycle and per-agent policy: admin-only, split by bucket.
	agentsWrite := router.Group("/agents")
	agentsWrite.Use(authGate, middleware.RequireKind(middleware.KindAdmin), middleware.RateLimit(middleware.BucketAdminWrite))
	agentsWrite.POST("", agentCtrl.CreateAgent)
	agentsWrite.DELETE("/:id", agentCtrl.DeactivateAgent)
	agentsWrite.PUT("/:id/policy", agentCtrl.SetAgentPolicy)

	agentsRead := router.Group("/agents")
	agentsRead.Use(authGate, middleware.RequireKind(middleware.KindAdmin), middleware.RateLimit(middleware.BucketAdminRead))
	agentsRead.GET("", agentCtrl.ListAgents)
	agentsRead.GET("/:id", agentCtrl.GetAgent)
	agentsRead.GET("/:id/policy", agentCtrl.GetAgentPolicy)

	// Team base policy: admin-only, split by bucket.
	teamsWrite := router.Group("/teams")
	teamsWrite.Use(authGate, middleware.RequireKind(middleware.KindAdmin), middleware.RateLimit(middleware.BucketAdminWrite))
	teamsWrite.PUT("/:team/policy", teamPolicyCtrl.SetTeamPolicy)
	teamsWrite.DELETE("/:team/policy", teamPolicyCtrl.DeleteTeamPolicy)

	teamsRead := router.Group("/teams")
	teamsRead.Use(authGate, middleware.RequireKind(middleware.KindAdmin), middleware.RateLimit(middleware.BucketAdminRead))
	teamsRead.GET("/:team/policy", teamPolicyCtrl.GetTeamPolicy)

	// Approval Queue: List enforces admin itself (it sits behind a group
	// also open to agents for Get); deciding additionally needs role ≥
	// approver.
	approvals := router.Group("")
	approvals.Use(authGate, middleware.RequireAnyKind(middleware.KindAgent, middleware.KindAdmin), middleware.RateLimit(middleware.BucketAdminRead))
	approverGate := middleware.RequireRole(model.RoleApprover)
	approvalCtrl.RegisterRoutes(approvals, approverGate)

	// Named human operators: supplemented admin surface, super-admin only.
	adminUsers := router.Group("")
	adminUsers.Use(authGate, middleware.RequireRole(model.RoleSuperAdmin), middleware.RateLimit(middleware.BucketAdminWrite))
	adminUserCtrl.RegisterRoutes(adminUsers)

	return router
}
