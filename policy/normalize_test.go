// api/policy/normalize_test.go
package policy_test

import (
	"testing"

	"github.com/dev-mohitbeniwal/agentguard/policy"
	"github.com/stretchr/testify/assert"
)

func TestNormalize_AcceptedForms(t *testing.T) {
	cases := map[string]string{
		"read:file":   "read:file",
		"read file":   "read:file",
		"Read File":   "read:file",
		"readFile":    "read:file",
		"read-file":   "read:file",
		"read_file":   "read:file",
		"read":        "read:*",
		"delete database": "delete:database",
	}
	for in, want := range cases {
		assert.Equal(t, want, policy.Normalize(in), "input %q", in)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"read file", "Read File", "deploy", "write:database"}
	for _, in := range inputs {
		once := policy.Normalize(in)
		twice := policy.Normalize(once)
		assert.Equal(t, once, twice, "normalize must be idempotent for %q", in)
	}
}

func TestMatchAction(t *testing.T) {
	assert.True(t, policy.MatchAction("read:*", "read:file"))
	assert.True(t, policy.MatchAction("*:file", "read:file"))
	assert.True(t, policy.MatchAction("*", "read:file"))
	assert.False(t, policy.MatchAction("write:*", "read:file"))
}

func TestMatchGlob_ResourceSlashIsLiteral(t *testing.T) {
	assert.True(t, policy.MatchGlob("secret/*", "secret/keys"))
	assert.True(t, policy.MatchGlob("*", "a.txt"))
	assert.True(t, policy.MatchGlob("*", "nested/path/a.txt"))
	assert.False(t, policy.MatchGlob("secret/*", "public/keys"))
}
