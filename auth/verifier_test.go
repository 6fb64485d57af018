package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	testSecret = "test-secret-key-for-jwt-signing"
	testIssuer = "test-issuer"
)

func testSpec() TokenSpec {
	return TokenSpec{
		UserID:           "user-123",
		Email:            "john.doe@example.com",
		Username:         "john.doe",
		SubscriptionTier: TierFree,
		EmailVerified:    true,
	}
}

func mustVerifier(t *testing.T) *TokenVerifier {
	t.Helper()
	verifier, err := NewTokenVerifier(testSecret, testIssuer)
	if err != nil {
		t.Fatalf("NewTokenVerifier failed: %v", err)
	}
	return verifier
}

func TestNewTokenVerifierRequiresSecret(t *testing.T) {
	if _, err := NewTokenVerifier("", testIssuer); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestVerifyValidToken(t *testing.T) {
	token, err := CreateAccessToken(testSecret, testIssuer, testSpec(), time.Hour)
	if err != nil {
		t.Fatalf("CreateAccessToken failed: %v", err)
	}

	user, err := mustVerifier(t).Verify("Bearer " + token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if user.UserID() != "user-123" {
		t.Errorf("expected user-123, got %s", user.UserID())
	}
	if user.Tier() != TierFree {
		t.Errorf("expected free tier, got %s", user.Tier())
	}
}

func TestVerifyBearerPrefixCaseInsensitive(t *testing.T) {
	token, _ := CreateAccessToken(testSecret, testIssuer, testSpec(), time.Hour)

	for _, prefix := range []string{"Bearer ", "bearer ", "BEARER ", ""} {
		if _, err := mustVerifier(t).Verify(prefix + token); err != nil {
			t.Errorf("prefix %q: Verify failed: %v", prefix, err)
		}
	}
}

func TestVerifyMissingToken(t *testing.T) {
	for _, header := range []string{"", "Bearer", "bearer", "Bearer   ", "  "} {
		if _, err := mustVerifier(t).Verify(header); err != ErrTokenMissing {
			t.Errorf("header %q: expected ErrTokenMissing, got %v", header, err)
		}
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, _ := CreateAccessToken("some-other-secret", testIssuer, testSpec(), time.Hour)

	if _, err := mustVerifier(t).Verify("Bearer " + token); err != ErrTokenInvalid {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyWrongIssuer(t *testing.T) {
	token, _ := CreateAccessToken(testSecret, "another-issuer", testSpec(), time.Hour)

	if _, err := mustVerifier(t).Verify("Bearer " + token); err != ErrTokenInvalid {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyGarbageToken(t *testing.T) {
	if _, err := mustVerifier(t).Verify("Bearer not.a.jwt"); err != ErrTokenInvalid {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	token, err := CreateAccessToken(testSecret, testIssuer, testSpec(), -time.Hour)
	if err != nil {
		t.Fatalf("CreateAccessToken failed: %v", err)
	}

	if _, err := mustVerifier(t).Verify("Bearer " + token); err != ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

// A token expired just inside the parser's skew leeway must still be
// rejected: service policy on expiry is exact, enforced by the wall-clock
// re-check.
func TestVerifyExpiryPolicyIsExact(t *testing.T) {
	token, err := CreateAccessToken(testSecret, testIssuer, testSpec(), -5*time.Second)
	if err != nil {
		t.Fatalf("CreateAccessToken failed: %v", err)
	}

	if _, err := mustVerifier(t).Verify("Bearer " + token); err != ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired from the wall-clock check, got %v", err)
	}
}

// Cryptographically valid tokens whose payload is not a usable identity are
// reported as malformed, not invalid.
func TestVerifyMalformedClaims(t *testing.T) {
	claims := jwt.MapClaims{
		"iss":   testIssuer,
		"email": "john.doe@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}

	if _, err := mustVerifier(t).Verify("Bearer " + token); err != ErrTokenMalformed {
		t.Errorf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestVerifyRejectsNonHMAC(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"iss":     testIssuer,
		"user_id": "user-123",
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}

	if _, err := mustVerifier(t).Verify("Bearer " + signed); err != ErrTokenInvalid {
		t.Errorf("expected ErrTokenInvalid for alg=none, got %v", err)
	}
}

func TestVerifyErrorsAreClassified(t *testing.T) {
	_, err := mustVerifier(t).Verify("Bearer garbage")

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %T", err)
	}
	if authErr.Status != 401 {
		t.Errorf("expected status 401, got %d", authErr.Status)
	}
}
