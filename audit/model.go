// api/audit/model.go
package audit

import (
	"time"
)

// Result is the closed set of outcomes an AuditEntry records, per spec.md §3.
type Result string

const (
	ResultSuccess Result = "success"
	ResultDenied  Result = "denied"
	ResultError   Result = "error"
	ResultPending Result = "pending"
)

// Entry is the append-only, hash-chained record of a single enforcement
// decision for one agent. PrevLogID and ChainHash are set by
// Service.Submit (ChainHash via ComputeChainHash in chain.go) and never
// supplied by the caller.
type Entry struct {
	LogID      string                 `json:"log_id"`
	AgentID    string                 `json:"agent_id"`
	Timestamp  time.Time              `json:"timestamp"`
	Action     string                 `json:"action"`
	Resource   string                 `json:"resource,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Allowed    bool                   `json:"allowed"`
	Result     Result                 `json:"result"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	RequestID  string                 `json:"request_id,omitempty"`
	PrevLogID  *string                `json:"prev_log_id"`
	ChainHash  string                 `json:"chain_hash"`
}

// QueryCriteria filters GET /logs.
type QueryCriteria struct {
	AgentID  string
	Action   string
	Allowed  *bool
	From     *time.Time
	To       *time.Time
	Limit    int
}

// VerifyResult is the response shape of GET /logs/verify.
type VerifyResult struct {
	Valid        bool    `json:"valid"`
	TotalEntries int     `json:"total_entries"`
	BrokenAt     *string `json:"broken_at"`
}
