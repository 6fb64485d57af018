package auth

import (
	"os"
	"testing"
	"time"

	"findler.com/gateway/config"
)

func TestNewTokenVerifierFromConfig(t *testing.T) {
	os.Setenv("JWT_SECRET_KEY", testSecret)
	os.Setenv("JWT_ISSUER", testIssuer)
	defer os.Unsetenv("JWT_SECRET_KEY")
	defer os.Unsetenv("JWT_ISSUER")

	if err := config.InitGlobalConfig(); err != nil {
		t.Fatalf("InitGlobalConfig failed: %v", err)
	}

	verifier, err := NewTokenVerifierFromConfig()
	if err != nil {
		t.Fatalf("NewTokenVerifierFromConfig failed: %v", err)
	}

	token, err := CreateAccessToken(testSecret, testIssuer, testSpec(), time.Hour)
	if err != nil {
		t.Fatalf("CreateAccessToken failed: %v", err)
	}
	if _, err := verifier.Verify("Bearer " + token); err != nil {
		t.Errorf("configured verifier rejected a valid token: %v", err)
	}
}

func TestNewTokenVerifierFromConfigRequiresSecret(t *testing.T) {
	os.Unsetenv("JWT_SECRET_KEY")

	if err := config.InitGlobalConfig(); err != nil {
		t.Fatalf("InitGlobalConfig failed: %v", err)
	}

	if _, err := NewTokenVerifierFromConfig(); err == nil {
		t.Error("expected error without JWT_SECRET_KEY")
	}
}
