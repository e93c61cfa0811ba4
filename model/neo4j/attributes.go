// api/model/neo4j/attributes.go
package echo_neo4j

// Attribute Keys
const (
	// AttrAgentID represents the agent_id attribute of a node
	AttrAgentID = "agentID"

	// AttrDisplayName represents the display_name attribute of a node
	AttrDisplayName = "displayName"

	// AttrOwnerTeam represents the owner_team attribute of an Agent node
	AttrOwnerTeam = "ownerTeam"

	// AttrEnvironment represents the deployment environment of an Agent node
	AttrEnvironment = "environment"

	// AttrCreatedAt represents the creation timestamp of a node
	AttrCreatedAt = "createdAt"

	// AttrUpdatedAt represents the last update timestamp of a node
	AttrUpdatedAt = "updatedAt"

	// AttrActive represents whether a node is active
	AttrActive = "active"

	// AttrExpiresAt represents the natural-expiry timestamp of a node
	AttrExpiresAt = "expiresAt"

	// AttrAllowRules represents the JSON-serialized allow rule list of a policy node
	AttrAllowRules = "allowRules"

	// AttrDenyRules represents the JSON-serialized deny rule list of a policy node
	AttrDenyRules = "denyRules"

	// AttrRequireApprovalRules represents the JSON-serialized require_approval rule list of a policy node
	AttrRequireApprovalRules = "requireApprovalRules"
)
