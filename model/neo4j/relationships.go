// api/model/neo4j/relationships.go
package echo_neo4j

// Relationship Types
const (
	// RelHasCredential represents the relationship between an agent and its credentials
	RelHasCredential = "HAS_CREDENTIAL"

	// RelGovernedBy represents the relationship between an agent and its AgentPolicy
	RelGovernedBy = "GOVERNED_BY"

	// RelMemberOfTeam represents the relationship between an agent and its owning team's TeamPolicy
	RelMemberOfTeam = "MEMBER_OF_TEAM"

	// RelRequestedBy represents the relationship between an ApprovalRequest and the agent that triggered it
	RelRequestedBy = "REQUESTED_BY"

	// RelDecidedBy represents the relationship between a decided ApprovalRequest and the AdminUser who decided it
	RelDecidedBy = "DECIDED_BY"
)
