// Package attestation stands in for remote attestation, which spec.md
// places out of the core scope: instead of a hardware-rooted attestation
// report, it issues a locally-signed JWT asserting the policy digest this
// instance is running. A real deployment would replace Minter with a
// client of the platform's actual attestation service; the interface
// shape is grounded in the teacher's JWTService so that swap is a
// drop-in.
package attestation

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSecretLength mirrors the teacher's JWT service: a short HMAC
// secret is rejected at construction rather than producing a weak token.
var ErrInvalidSecretLength = errors.New("attestation signing secret must be at least 32 characters")

// ErrInvalidAttestation is returned by Verify for a token that fails
// signature, expiry, or issuer checks.
var ErrInvalidAttestation = errors.New("invalid attestation")

// Config configures the Minter.
type Config struct {
	// Secret is the HMAC signing key. Must be at least 32 characters.
	Secret string
	// Issuer is the token issuer claim. Default: "oakd-local-attestation".
	Issuer string
	// TokenDuration is how long an issued assertion remains valid.
	// Default: 1 hour.
	TokenDuration time.Duration
}

// Claims is the assertion body: the SHA-256 digest of the policy this
// instance enforces, plus standard registered claims.
type Claims struct {
	jwt.RegisteredClaims
	PolicyDigest string `json:"policy_digest"`
}

// Minter issues and verifies local attestation tokens.
type Minter struct {
	cfg Config
}

// NewMinter constructs a Minter. Secret must be at least 32 characters.
func NewMinter(cfg Config) (*Minter, error) {
	if len(cfg.Secret) < 32 {
		return nil, ErrInvalidSecretLength
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "oakd-local-attestation"
	}
	if cfg.TokenDuration == 0 {
		cfg.TokenDuration = time.Hour
	}
	return &Minter{cfg: cfg}, nil
}

// Mint issues a signed assertion that this instance is enforcing the
// policy identified by policyDigest (typically a hex SHA-256 of the
// marshalled policy.Policy).
func (m *Minter) Mint(policyDigest string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TokenDuration)),
		},
		PolicyDigest: policyDigest,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign attestation: %w", err)
	}
	return signed, nil
}

// Verify validates tokenString and returns its claims.
func (m *Minter) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.cfg.Secret), nil
	})
	if err != nil {
		return nil, ErrInvalidAttestation
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidAttestation
	}
	return claims, nil
}
