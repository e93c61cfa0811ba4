// api/util/validation_util_test.go
package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dev-mohitbeniwal/agentguard/model"
	"github.com/dev-mohitbeniwal/agentguard/util"
)

func TestValidateApprovalDecision(t *testing.T) {
	v := util.NewValidationUtil()

	cases := []struct {
		name    string
		status  model.ApprovalStatus
		reason  string
		wantErr bool
	}{
		{"approved without reason is fine", model.ApprovalApproved, "", false},
		{"denied without reason is rejected", model.ApprovalDenied, "", true},
		{"denied with reason is fine", model.ApprovalDenied, "risk too high", false},
		{"pending is not a valid decision", model.ApprovalPending, "x", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateApprovalDecision(tc.status, tc.reason)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
