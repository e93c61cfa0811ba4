// api/model/neo4j/nodes.go
package echo_neo4j

// Node Labels
const (
	// LabelAgent represents an autonomous agent identity
	LabelAgent = "Agent"

	// LabelAgentCredential represents a hashed static secret for an agent
	LabelAgentCredential = "AgentCredential"

	// LabelAdminUser represents a named human operator
	LabelAdminUser = "AdminUser"

	// LabelAgentPolicy represents the single policy record governing an agent
	LabelAgentPolicy = "AgentPolicy"

	// LabelTeamPolicy represents the base policy shared by a team
	LabelTeamPolicy = "TeamPolicy"

	// LabelApprovalRequest represents a suspended verdict awaiting a human decision
	LabelApprovalRequest = "ApprovalRequest"

	// LabelRevokedToken represents a blocklisted token identifier
	LabelRevokedToken = "RevokedToken"
)
