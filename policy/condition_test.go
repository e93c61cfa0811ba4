// api/policy/condition_test.go
package policy_test

import (
	"testing"
	"time"

	"github.com/dev-mohitbeniwal/agentguard/model"
	"github.com/dev-mohitbeniwal/agentguard/policy"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateConditions_NilPasses(t *testing.T) {
	rc := policy.RuntimeContext{Env: "prod", Now: time.Now().UTC()}
	assert.True(t, policy.EvaluateConditions(nil, rc))
}

func TestEvaluateConditions_EnvMembership(t *testing.T) {
	cond := &model.RuleConditions{Env: []string{"prod", "staging"}}
	assert.True(t, policy.EvaluateConditions(cond, policy.RuntimeContext{Env: "prod", Now: time.Now().UTC()}))
	assert.False(t, policy.EvaluateConditions(cond, policy.RuntimeContext{Env: "dev", Now: time.Now().UTC()}))
}

func TestEvaluateConditions_TimeRange(t *testing.T) {
	cond := &model.RuleConditions{TimeRange: &model.TimeRange{Start: "09:00", End: "18:00"}}
	inWindow := time.Date(2026, 1, 6, 14, 0, 0, 0, time.UTC) // Tuesday
	outOfWindow := time.Date(2026, 1, 6, 20, 0, 0, 0, time.UTC)
	assert.True(t, policy.EvaluateConditions(cond, policy.RuntimeContext{Now: inWindow}))
	assert.False(t, policy.EvaluateConditions(cond, policy.RuntimeContext{Now: outOfWindow}))
}

func TestEvaluateConditions_TimeRangeWrapsMidnight(t *testing.T) {
	cond := &model.RuleConditions{TimeRange: &model.TimeRange{Start: "22:00", End: "02:00"}}
	lateNight := time.Date(2026, 1, 6, 23, 30, 0, 0, time.UTC)
	earlyMorning := time.Date(2026, 1, 6, 1, 0, 0, 0, time.UTC)
	midday := time.Date(2026, 1, 6, 12, 0, 0, 0, time.UTC)
	assert.True(t, policy.EvaluateConditions(cond, policy.RuntimeContext{Now: lateNight}))
	assert.True(t, policy.EvaluateConditions(cond, policy.RuntimeContext{Now: earlyMorning}))
	assert.False(t, policy.EvaluateConditions(cond, policy.RuntimeContext{Now: midday}))
}

func TestEvaluateConditions_DayOfWeek(t *testing.T) {
	cond := &model.RuleConditions{DayOfWeek: []string{"Mon", "Tue", "Wed", "Thu", "Fri"}}
	tuesday := time.Date(2026, 1, 6, 14, 0, 0, 0, time.UTC)
	saturday := time.Date(2026, 1, 10, 14, 0, 0, 0, time.UTC)
	assert.True(t, policy.EvaluateConditions(cond, policy.RuntimeContext{Now: tuesday}))
	assert.False(t, policy.EvaluateConditions(cond, policy.RuntimeContext{Now: saturday}))
}

func TestEvaluateConditions_AllPredicatesAndTogether(t *testing.T) {
	cond := &model.RuleConditions{
		Env:       []string{"prod"},
		TimeRange: &model.TimeRange{Start: "09:00", End: "18:00"},
		DayOfWeek: []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
	}
	tuesdayAfternoon := time.Date(2026, 1, 6, 14, 0, 0, 0, time.UTC)
	saturdayAfternoon := time.Date(2026, 1, 10, 14, 0, 0, 0, time.UTC)
	assert.True(t, policy.EvaluateConditions(cond, policy.RuntimeContext{Env: "prod", Now: tuesdayAfternoon}))
	assert.False(t, policy.EvaluateConditions(cond, policy.RuntimeContext{Env: "prod", Now: saturdayAfternoon}))
	assert.False(t, policy.EvaluateConditions(cond, policy.RuntimeContext{Env: "dev", Now: tuesdayAfternoon}))
}
