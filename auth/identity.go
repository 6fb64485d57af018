package auth

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SubscriptionTier is an ordinal plan level gating feature access.
type SubscriptionTier string

const (
	TierFree       SubscriptionTier = "free"
	TierPro        SubscriptionTier = "pro"
	TierBusiness   SubscriptionTier = "business"
	TierEnterprise SubscriptionTier = "enterprise"
)

var tierRanks = map[SubscriptionTier]int{
	TierFree:       0,
	TierPro:        1,
	TierBusiness:   2,
	TierEnterprise: 3,
}

// ParseTier converts a tier string into a SubscriptionTier.
func ParseTier(s string) (SubscriptionTier, error) {
	tier := SubscriptionTier(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := tierRanks[tier]; !ok {
		return "", fmt.Errorf("unknown subscription tier: %q", s)
	}
	return tier, nil
}

// Rank returns the tier's position in the free < pro < business < enterprise
// ordering. Unknown tiers rank below free.
func (t SubscriptionTier) Rank() int {
	rank, ok := tierRanks[t]
	if !ok {
		return -1
	}
	return rank
}

// Meets reports whether the tier satisfies the given minimum.
func (t SubscriptionTier) Meets(minimum SubscriptionTier) bool {
	return t.Rank() >= minimum.Rank()
}

func (t SubscriptionTier) String() string {
	return string(t)
}

// AuthUser is the immutable identity of a verified caller. It is created per
// request from a verified token or from the trusted propagation headers,
// never persisted, and discarded when the request ends.
//
// Fields are unexported so the only way to obtain an AuthUser is through
// UserFromClaims or UserFromHeaders; both fail closed on missing or
// malformed identity fields.
type AuthUser struct {
	userID         string
	email          string
	username       string
	tier           SubscriptionTier
	emailVerified  bool
	issuedAt       int64
	expiresAt      int64
	organizationID *string
	permissions    []string
}

func (u *AuthUser) UserID() string         { return u.userID }
func (u *AuthUser) Email() string          { return u.email }
func (u *AuthUser) Username() string       { return u.username }
func (u *AuthUser) Tier() SubscriptionTier { return u.tier }
func (u *AuthUser) EmailVerified() bool    { return u.emailVerified }
func (u *AuthUser) IssuedAt() int64        { return u.issuedAt }
func (u *AuthUser) ExpiresAt() int64       { return u.expiresAt }

// OrganizationID returns the user's organization id, or nil for users not
// bound to an organization.
func (u *AuthUser) OrganizationID() *string {
	if u.organizationID == nil {
		return nil
	}
	id := *u.organizationID
	return &id
}

// Permissions returns a copy of the permission set.
func (u *AuthUser) Permissions() []string {
	if len(u.permissions) == 0 {
		return nil
	}
	out := make([]string, len(u.permissions))
	copy(out, u.permissions)
	return out
}

// HasAnyPermission reports whether the user holds at least one of the given
// permissions. An empty required set is trivially satisfied.
func (u *AuthUser) HasAnyPermission(required []string) bool {
	if len(required) == 0 {
		return true
	}
	held := make(map[string]struct{}, len(u.permissions))
	for _, p := range u.permissions {
		held[p] = struct{}{}
	}
	for _, p := range required {
		if _, ok := held[p]; ok {
			return true
		}
	}
	return false
}

var validate = validator.New()

// identityFields carries the required identity fields through validation.
type identityFields struct {
	UserID   string `validate:"required"`
	Email    string `validate:"required,email"`
	Username string `validate:"required"`
	Tier     string `validate:"required"`
}

// newAuthUser is the single internal constructor backing both factories.
func newAuthUser(fields identityFields, emailVerified bool, issuedAt, expiresAt int64, organizationID *string, permissions []string) (*AuthUser, error) {
	// A missing username is derived from the email local part rather than
	// rejected; everything else fails closed.
	if fields.Username == "" {
		fields.Username = strings.SplitN(fields.Email, "@", 2)[0]
	}

	if err := validate.Struct(fields); err != nil {
		return nil, fmt.Errorf("invalid identity fields: %w", err)
	}

	tier, err := ParseTier(fields.Tier)
	if err != nil {
		return nil, err
	}

	var orgID *string
	if organizationID != nil && *organizationID != "" {
		id := *organizationID
		orgID = &id
	}

	var perms []string
	if len(permissions) > 0 {
		perms = make([]string, len(permissions))
		copy(perms, permissions)
	}

	return &AuthUser{
		userID:         fields.UserID,
		email:          fields.Email,
		username:       fields.Username,
		tier:           tier,
		emailVerified:  emailVerified,
		issuedAt:       issuedAt,
		expiresAt:      expiresAt,
		organizationID: orgID,
		permissions:    perms,
	}, nil
}

// UserFromClaims builds an AuthUser from a cryptographically verified claim
// set. A rejection here means the token was valid but does not carry a
// usable identity, which the verifier reports as TOKEN_MALFORMED.
func UserFromClaims(claims *UserClaims) (*AuthUser, error) {
	if claims == nil {
		return nil, ErrTokenMalformed
	}

	var issuedAt, expiresAt int64
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Unix()
	}

	user, err := newAuthUser(identityFields{
		UserID:   claims.UserID,
		Email:    claims.Email,
		Username: claims.Username,
		Tier:     claims.SubscriptionTier,
	}, claims.EmailVerified, issuedAt, expiresAt, claims.OrganizationID, claims.Permissions)
	if err != nil {
		return nil, ErrTokenMalformed
	}
	return user, nil
}
