// api/token/token_test.go
package token_test

import (
	"testing"
	"time"

	errs "github.com/dev-mohitbeniwal/agentguard/errors"
	"github.com/dev-mohitbeniwal/agentguard/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify_RoundTrip(t *testing.T) {
	ks, err := token.NewKeyStore("")
	require.NoError(t, err)

	signed, jti, err := ks.Sign("agt_1", token.TypeAgent, "prod", "payments", "", time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, jti)

	claims, err := ks.Verify(signed, nil)
	require.NoError(t, err)
	assert.Equal(t, "agt_1", claims.Subject)
	assert.Equal(t, jti, claims.JTI)
	assert.Equal(t, token.TypeAgent, claims.Type)
	assert.Equal(t, "prod", claims.Env)
}

func TestVerify_RejectsExpired(t *testing.T) {
	ks, err := token.NewKeyStore("")
	require.NoError(t, err)

	signed, _, err := ks.Sign("agt_1", token.TypeAgent, "prod", "payments", "", -time.Minute)
	require.NoError(t, err)

	_, err = ks.Verify(signed, nil)
	assert.Error(t, err)
}

func TestVerify_RejectsRevoked(t *testing.T) {
	ks, err := token.NewKeyStore("")
	require.NoError(t, err)

	signed, jti, err := ks.Sign("agt_1", token.TypeAgent, "prod", "payments", "", time.Minute)
	require.NoError(t, err)

	_, err = ks.Verify(signed, func(candidate string) bool { return candidate == jti })
	assert.ErrorIs(t, err, errs.ErrTokenRevoked)
}

func TestJWKS_PublishesSigningKey(t *testing.T) {
	ks, err := token.NewKeyStore("")
	require.NoError(t, err)

	jwks := ks.JWKS()
	require.Len(t, jwks.Keys, 1)
	assert.Equal(t, "RS256", jwks.Keys[0].Alg)
	assert.NotEmpty(t, jwks.Keys[0].N)
}
