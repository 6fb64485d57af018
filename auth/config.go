package auth

import (
	"fmt"

	"findler.com/gateway/config"
)

// NewTokenVerifierFromConfig builds the verifier from the config system.
// JWT_SECRET_KEY is required; JWT_ISSUER defaults to the gateway's issuer
// name so tokens minted by the identity service validate out of the box.
func NewTokenVerifierFromConfig() (*TokenVerifier, error) {
	secretKey := config.GetConfig("JWT_SECRET_KEY")
	if secretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY configuration is required")
	}

	issuer := config.GetConfigWithDefault("JWT_ISSUER", "findler-identity-service")
	return NewTokenVerifier(secretKey, issuer)
}
