// api/audit/chain_test.go
package audit_test

import (
	"testing"
	"time"

	"github.com/dev-mohitbeniwal/agentguard/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryAt(t time.Time, logID string, prev *string) audit.Entry {
	return audit.Entry{
		LogID:     logID,
		AgentID:   "agt_1",
		Timestamp: t,
		Action:    "read:file",
		Resource:  "a.txt",
		Allowed:   true,
		Result:    audit.ResultSuccess,
		PrevLogID: prev,
	}
}

func TestComputeChainHash_GenesisHasNoPrev(t *testing.T) {
	e := entryAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "log_1", nil)
	h1, err := audit.ComputeChainHash("", e)
	require.NoError(t, err)
	h2, err := audit.ComputeChainHash("", e)
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "hashing is deterministic for identical input")
	assert.Len(t, h1, 64)
}

func TestComputeChainHash_LinksToPrevious(t *testing.T) {
	first := entryAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "log_1", nil)
	h1, err := audit.ComputeChainHash("", first)
	require.NoError(t, err)

	prevID := "log_1"
	second := entryAt(time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC), "log_2", &prevID)
	h2a, err := audit.ComputeChainHash(h1, second)
	require.NoError(t, err)

	h2b, err := audit.ComputeChainHash("different-prev-hash", second)
	require.NoError(t, err)
	assert.NotEqual(t, h2a, h2b, "chain hash must depend on the previous hash")
}

func TestComputeChainHash_TamperDetectable(t *testing.T) {
	e := entryAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "log_1", nil)
	original, err := audit.ComputeChainHash("", e)
	require.NoError(t, err)

	tampered := e
	tampered.Action = "delete:database"
	mutated, err := audit.ComputeChainHash("", tampered)
	require.NoError(t, err)

	assert.NotEqual(t, original, mutated)
}
