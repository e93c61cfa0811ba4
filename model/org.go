// api/model/org.go
package model

import "time"

// Agent represents an autonomous software agent identity known to AgentGuard.
type Agent struct {
	AgentID     string    `json:"agent_id"`
	DisplayName string    `json:"display_name"`
	OwnerTeam   string    `json:"owner_team"`
	Environment string    `json:"environment"` // "dev", "staging", "prod"
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AgentCredential is a hashed static secret an agent presents for the legacy
// x-agent-key auth path and for the /token exchange. The raw secret is
// returned to the caller exactly once, at creation time.
type AgentCredential struct {
	AgentID      string    `json:"agent_id"`
	SecretHash   string    `json:"-"`
	SecretPrefix string    `json:"secret_prefix"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type AgentSearchCriteria struct {
	OwnerTeam   string `json:"owner_team,omitempty"`
	Environment string `json:"environment,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Offset      int    `json:"offset,omitempty"`
}
