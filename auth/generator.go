package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenSpec describes the identity to embed in a minted access token.
type TokenSpec struct {
	UserID           string
	Email            string
	Username         string
	SubscriptionTier SubscriptionTier
	EmailVerified    bool
	OrganizationID   *string
	Permissions      []string
}

// CreateAccessToken mints a signed HS256 access token. Production token
// issuance belongs to the identity service; this helper exists for tests and
// local environment seeding.
func CreateAccessToken(secretKey, issuer string, spec TokenSpec, ttl time.Duration) (string, error) {
	if secretKey == "" {
		return "", fmt.Errorf("JWT secret key cannot be empty")
	}

	now := time.Now()
	claims := UserClaims{
		UserID:           spec.UserID,
		Email:            spec.Email,
		Username:         spec.Username,
		SubscriptionTier: string(spec.SubscriptionTier),
		EmailVerified:    spec.EmailVerified,
		OrganizationID:   spec.OrganizationID,
		Permissions:      spec.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   spec.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
