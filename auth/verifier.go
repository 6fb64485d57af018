package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserClaims is the claim set carried by platform access tokens.
type UserClaims struct {
	UserID           string   `json:"user_id"`
	Email            string   `json:"email"`
	Username         string   `json:"username"`
	SubscriptionTier string   `json:"subscription_tier"`
	EmailVerified    bool     `json:"email_verified"`
	OrganizationID   *string  `json:"organization_id,omitempty"`
	Permissions      []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier validates bearer tokens and produces AuthUsers. Verification
// is a pure function of the token and the current time: no caching, no
// retries, no I/O.
type TokenVerifier struct {
	secretKey []byte
	issuer    string
	now       func() time.Time
}

// NewTokenVerifier creates a verifier for HS256 tokens from the given issuer.
func NewTokenVerifier(secretKey, issuer string) (*TokenVerifier, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("JWT secret key cannot be empty")
	}
	return &TokenVerifier{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		now:       time.Now,
	}, nil
}

const bearerPrefix = "bearer "

// parseLeeway absorbs clock skew between the issuing service and the
// gateway during signature validation. Service policy on expiry is exact and
// enforced by the second wall-clock check in Verify.
const parseLeeway = 30 * time.Second

// ExtractTokenFromHeader strips a case-insensitive "Bearer " prefix from an
// Authorization header value. An empty result is ErrTokenMissing.
func ExtractTokenFromHeader(authorization string) (string, error) {
	token := strings.TrimSpace(authorization)
	if strings.EqualFold(token, "bearer") {
		// A bare scheme with no credentials is an absent token.
		token = ""
	} else if len(token) >= len(bearerPrefix) && strings.EqualFold(token[:len(bearerPrefix)], bearerPrefix) {
		token = strings.TrimSpace(token[len(bearerPrefix):])
	}
	if token == "" {
		return "", ErrTokenMissing
	}
	return token, nil
}

// Verify validates the Authorization header value and returns the caller's
// identity. Failures are classified into TOKEN_MISSING, TOKEN_INVALID,
// TOKEN_EXPIRED or TOKEN_MALFORMED.
func (v *TokenVerifier) Verify(authorization string) (*AuthUser, error) {
	tokenString, err := ExtractTokenFromHeader(authorization)
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, v.keyFunc,
		jwt.WithIssuer(v.issuer),
		jwt.WithTimeFunc(v.now),
		jwt.WithLeeway(parseLeeway),
	)
	if err != nil {
		// Expired is split from generic invalid because the user-facing
		// remedy differs: re-login vs reject.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	user, err := UserFromClaims(claims)
	if err != nil {
		return nil, ErrTokenMalformed
	}

	// Second, independent expiry check against wall-clock time. The signing
	// library applies its own tolerance window; service policy is exact.
	if user.ExpiresAt() > 0 && !v.now().Before(time.Unix(user.ExpiresAt(), 0)) {
		return nil, ErrTokenExpired
	}

	return user, nil
}

// keyFunc provides the key for token validation and rejects non-HMAC
// signing methods.
func (v *TokenVerifier) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return v.secretKey, nil
}
