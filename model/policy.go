// api/model/policy.go
package model

import (
	"time"
)

// TimeRange is a UTC-only time-of-day guard. When End is earlier than Start
// the window is interpreted as wrapping past midnight.
type TimeRange struct {
	Start string `json:"start"` // "HH:MM"
	End   string `json:"end"`   // "HH:MM"
	TZ    string `json:"tz,omitempty"`
}

// RuleConditions are the AND-ed guard predicates attached to a PolicyRule.
// A nil/zero-value field is treated as always-passing.
type RuleConditions struct {
	Env        []string   `json:"env,omitempty"`
	TimeRange  *TimeRange `json:"time_range,omitempty"`
	DayOfWeek  []string   `json:"day_of_week,omitempty"`
}

// PolicyRule is one entry of an allow/deny/require_approval list. Action is
// stored in the author's own form; normalization happens at match time.
type PolicyRule struct {
	Action     string          `json:"action"`
	Resource   string          `json:"resource,omitempty"` // nullable = "*"
	Conditions *RuleConditions `json:"conditions,omitempty"`
}

// AgentPolicy is the single policy record governing one agent. Absence of a
// row for an agent_id is equivalent to "deny everything."
type AgentPolicy struct {
	AgentID         string       `json:"agent_id"`
	Allow           []PolicyRule `json:"allow"`
	Deny            []PolicyRule `json:"deny"`
	RequireApproval []PolicyRule `json:"require_approval"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// TeamPolicy is the base-level policy merged into every agent of that team
// at enforcement time. Absence of a row for a team is equivalent to
// "contributes nothing."
type TeamPolicy struct {
	Team            string       `json:"team"`
	Allow           []PolicyRule `json:"allow"`
	Deny            []PolicyRule `json:"deny"`
	RequireApproval []PolicyRule `json:"require_approval"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// EffectiveRuleSet is the team+agent concatenation the decision engine
// matches against, in the precedence order spec.md §4.J fixes.
type EffectiveRuleSet struct {
	Deny            []PolicyRule
	RequireApproval []PolicyRule
	Allow           []PolicyRule
}

// Merge concatenates a team policy and an agent policy per §4.J step 2:
// team rules precede agent rules in every list, so team denies fire first
// by position and beat agent allows.
func Merge(team *TeamPolicy, agent *AgentPolicy) EffectiveRuleSet {
	var out EffectiveRuleSet
	if team != nil {
		out.Deny = append(out.Deny, team.Deny...)
		out.RequireApproval = append(out.RequireApproval, team.RequireApproval...)
		out.Allow = append(out.Allow, team.Allow...)
	}
	if agent != nil {
		out.Deny = append(out.Deny, agent.Deny...)
		out.RequireApproval = append(out.RequireApproval, agent.RequireApproval...)
		out.Allow = append(out.Allow, agent.Allow...)
	}
	return out
}
