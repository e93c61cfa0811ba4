// api/token/token.go
package token

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
	"time"

	errs "github.com/dev-mohitbeniwal/agentguard/errors"
	logger "github.com/dev-mohitbeniwal/agentguard/logging"
	"github.com/dev-mohitbeniwal/agentguard/model"
	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TypeAgent and TypeAdmin are the two token audiences this service issues,
// per spec.md §4.D — an agent bearer token and an admin bearer token carry
// different claim sets but are signed and verified the same way.
const (
	TypeAgent = "agent"
	TypeAdmin = "admin"
)

// Claims is the JWT payload shape for both agent and admin tokens.
type Claims struct {
	jwt.StandardClaims
	JTI  string `json:"jti"`
	Type string `json:"type"`
	Env  string `json:"env,omitempty"`
	Team string `json:"team,omitempty"`
	Role string `json:"role,omitempty"`
}

// JSONWebKey mirrors the shape the teacher's middleware consumed from
// Cognito's JWKS; here it's what this service publishes instead.
type JSONWebKey struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type JWKS struct {
	Keys []JSONWebKey `json:"keys"`
}

// KeyStore holds the service's own RS256 signing keypair, generated once at
// startup or loaded from config, and signs/verifies every bearer token it
// issues. There is no external issuer to fetch keys from.
type KeyStore struct {
	private *rsa.PrivateKey
	kid     string
}

// NewKeyStore loads an RSA private key from PEM if pemKey is non-empty;
// otherwise it generates an ephemeral 2048-bit keypair, which is only
// appropriate for a single-process deployment since tokens signed with it
// won't verify after a restart.
func NewKeyStore(pemKey string) (*KeyStore, error) {
	var priv *rsa.PrivateKey
	var err error

	if pemKey != "" {
		priv, err = jwt.ParseRSAPrivateKeyFromPEM([]byte(pemKey))
		if err != nil {
			return nil, fmt.Errorf("parse jwt_private_key: %w", err)
		}
	} else {
		logger.Warn("no jwt_private_key configured, generating an ephemeral RSA keypair")
		priv, err = rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
	}

	kid := fingerprint(&priv.PublicKey)
	logger.Info("token signing key ready", zap.String("kid", kid))
	return &KeyStore{private: priv, kid: kid}, nil
}

func fingerprint(pub *rsa.PublicKey) string {
	sum := sha256.Sum256(pub.N.Bytes())
	return base64.RawURLEncoding.EncodeToString(sum[:8])
}

// Sign issues a bearer token for subject (an agent_id or admin_id) with the
// given type and claims, expiring ttl from now. It returns the encoded
// token and the jti assigned; the jti is also carried in the token's claims,
// where revocation reads it.
func (k *KeyStore) Sign(subject, tokenType, env, team, role string, ttl time.Duration) (string, string, error) {
	now := time.Now().UTC()
	jti := uuid.NewString()

	claims := Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
			Issuer:    "agentguard",
		},
		JTI:  jti,
		Type: tokenType,
		Env:  env,
		Team: team,
		Role: role,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	t.Header["kid"] = k.kid

	signed, err := t.SignedString(k.private)
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}
	return signed, jti, nil
}

// IsRevokedFunc reports whether a jti has been revoked. Callers wire this to
// the revocation set (component E) rather than token.Verify reaching into a
// store directly.
type IsRevokedFunc func(jti string) bool

// Verify parses and validates tokenString, checking signature, expiry, and
// revocation, and returns the decoded claims on success.
func (k *KeyStore) Verify(tokenString string, isRevoked IsRevokedFunc) (*model.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return &k.private.PublicKey, nil
	})
	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, errs.ErrTokenExpired
		}
		return nil, errs.ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errs.ErrTokenInvalid
	}

	if isRevoked != nil && isRevoked(claims.JTI) {
		return nil, errs.ErrTokenRevoked
	}

	return &model.TokenClaims{
		Subject:   claims.Subject,
		JTI:       claims.JTI,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
		Type:      claims.Type,
		Env:       claims.Env,
		Team:      claims.Team,
		Role:      claims.Role,
	}, nil
}

// JWKS publishes the verification half of the keypair at
// /.well-known/jwks.json, per spec.md §4.D step "publish JWKS".
func (k *KeyStore) JWKS() JWKS {
	pub := k.private.PublicKey
	return JWKS{Keys: []JSONWebKey{{
		Kty: "RSA",
		Use: "sig",
		Kid: k.kid,
		Alg: "RS256",
		N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}}}
}
