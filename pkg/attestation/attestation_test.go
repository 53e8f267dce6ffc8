package attestation

import (
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewMinterRejectsShortSecret(t *testing.T) {
	if _, err := NewMinter(Config{Secret: "too-short"}); err != ErrInvalidSecretLength {
		t.Fatalf("got %v, want ErrInvalidSecretLength", err)
	}
}

func TestMintAndVerifyRoundTrip(t *testing.T) {
	minter, err := NewMinter(Config{Secret: testSecret})
	if err != nil {
		t.Fatalf("NewMinter: %v", err)
	}

	token, err := minter.Mint("deadbeef")
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	claims, err := minter.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.PolicyDigest != "deadbeef" {
		t.Fatalf("got policy digest %q, want deadbeef", claims.PolicyDigest)
	}
	if claims.Issuer != "oakd-local-attestation" {
		t.Fatalf("got issuer %q, want default", claims.Issuer)
	}
}

func TestVerifyRejectsTokenFromDifferentSecret(t *testing.T) {
	minterA, _ := NewMinter(Config{Secret: testSecret})
	minterB, _ := NewMinter(Config{Secret: "ffffffffffffffffffffffffffffffff"})

	token, _ := minterA.Mint("digest")
	if _, err := minterB.Verify(token); err != ErrInvalidAttestation {
		t.Fatalf("got %v, want ErrInvalidAttestation", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	minter, _ := NewMinter(Config{Secret: testSecret, TokenDuration: time.Millisecond})
	token, _ := minter.Mint("digest")

	time.Sleep(5 * time.Millisecond)
	if _, err := minter.Verify(token); err != ErrInvalidAttestation {
		t.Fatalf("got %v, want ErrInvalidAttestation for expired token", err)
	}
}
