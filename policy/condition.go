// api/policy/condition.go
package policy

import (
	"strconv"
	"strings"
	"time"

	"github.com/dev-mohitbeniwal/agentguard/model"
)

// RuntimeContext is the subset of request + agent state the condition
// evaluator consults, per spec.md §4.B.
type RuntimeContext struct {
	Env     string
	Now     time.Time // must be UTC
	Context map[string]interface{}
}

var weekdayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// EvaluateConditions returns true if every present predicate in cond holds
// against rc. A nil cond is always-passing. All three predicates are
// deterministic and side-effect-free other than the single wall-clock read
// already captured in rc.Now.
func EvaluateConditions(cond *model.RuleConditions, rc RuntimeContext) bool {
	if cond == nil {
		return true
	}

	if len(cond.Env) > 0 && !contains(cond.Env, rc.Env) {
		return false
	}

	if cond.TimeRange != nil && !inTimeRange(*cond.TimeRange, rc.Now) {
		return false
	}

	if len(cond.DayOfWeek) > 0 {
		today := weekdayNames[rc.Now.Weekday()]
		if !contains(cond.DayOfWeek, today) {
			return false
		}
	}

	return true
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

// inTimeRange reports whether now's UTC wall-clock time-of-day falls within
// [start, end]. When end < start the window wraps past midnight.
func inTimeRange(tr model.TimeRange, now time.Time) bool {
	startMin, ok1 := parseHHMM(tr.Start)
	endMin, ok2 := parseHHMM(tr.End)
	if !ok1 {
		startMin = 0
	}
	if !ok2 {
		endMin = 23*60 + 59
	}

	nowMin := now.UTC().Hour()*60 + now.UTC().Minute()

	if endMin < startMin {
		return nowMin >= startMin || nowMin <= endMin
	}
	return nowMin >= startMin && nowMin <= endMin
}

func parseHHMM(v string) (int, bool) {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, false
	}
	return h*60 + m, true
}
