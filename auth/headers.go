package auth

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Propagation headers carry the verified identity from the gateway to
// internal services. They are trusted only because they originate inside the
// process boundary: the gateway strips and overwrites any inbound x-auth-*
// header before verification, and they must never be accepted verbatim from
// the public internet.
const (
	HeaderUserID      = "x-auth-user-id"
	HeaderEmail       = "x-auth-email"
	HeaderUsername    = "x-auth-username"
	HeaderTier        = "x-auth-tier"
	HeaderVerified    = "x-auth-verified"
	HeaderIssuedAt    = "x-auth-iat"
	HeaderExpiresAt   = "x-auth-exp"
	HeaderOrgID       = "x-auth-org-id"
	HeaderPermissions = "x-auth-permissions"
	HeaderRequestID   = "x-request-id"
)

// PropagationHeaders lists every identity header the gateway owns, in the
// order they are written. Used by the edge to strip inbound values.
func PropagationHeaders() []string {
	return []string{
		HeaderUserID,
		HeaderEmail,
		HeaderUsername,
		HeaderTier,
		HeaderVerified,
		HeaderIssuedAt,
		HeaderExpiresAt,
		HeaderOrgID,
		HeaderPermissions,
	}
}

// ServiceHeaders serializes the user into the propagation header set.
// Optional fields (organization id, permissions) are omitted when empty
// rather than sent as empty strings.
func ServiceHeaders(u *AuthUser) map[string]string {
	headers := map[string]string{
		HeaderUserID:    u.UserID(),
		HeaderEmail:     u.Email(),
		HeaderUsername:  u.Username(),
		HeaderTier:      u.Tier().String(),
		HeaderVerified:  strconv.FormatBool(u.EmailVerified()),
		HeaderIssuedAt:  strconv.FormatInt(u.IssuedAt(), 10),
		HeaderExpiresAt: strconv.FormatInt(u.ExpiresAt(), 10),
	}

	if orgID := u.OrganizationID(); orgID != nil {
		headers[HeaderOrgID] = *orgID
	}

	if perms := u.Permissions(); len(perms) > 0 {
		// Marshal of a string slice cannot fail.
		encoded, _ := json.Marshal(perms)
		headers[HeaderPermissions] = string(encoded)
	}

	return headers
}

// HeaderGetter reads a single header value; absent headers return "".
// Both fiber contexts and http.Header adapt to it trivially.
type HeaderGetter func(key string) string

// UserFromHeaders is the mirror factory: it reconstructs an AuthUser from
// the propagation header set without re-verifying any signature. Absence of
// the user id or email header fails reconstruction; a broken trusted header
// set is an internal contract violation and maps to the generic 500.
func UserFromHeaders(get HeaderGetter) (*AuthUser, error) {
	fields := identityFields{
		UserID:   get(HeaderUserID),
		Email:    get(HeaderEmail),
		Username: get(HeaderUsername),
		Tier:     get(HeaderTier),
	}

	verified, _ := strconv.ParseBool(get(HeaderVerified))

	var issuedAt, expiresAt int64
	if raw := get(HeaderIssuedAt); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, headerError(HeaderIssuedAt, err)
		}
		issuedAt = v
	}
	if raw := get(HeaderExpiresAt); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, headerError(HeaderExpiresAt, err)
		}
		expiresAt = v
	}

	var orgID *string
	if raw := get(HeaderOrgID); raw != "" {
		orgID = &raw
	}

	var permissions []string
	if raw := get(HeaderPermissions); raw != "" {
		if err := json.Unmarshal([]byte(raw), &permissions); err != nil {
			return nil, headerError(HeaderPermissions, err)
		}
	}

	user, err := newAuthUser(fields, verified, issuedAt, expiresAt, orgID, permissions)
	if err != nil {
		return nil, NewAuthError(ErrServiceError.Code, fmt.Sprintf("invalid propagated identity: %v", err), ErrServiceError.Status)
	}
	return user, nil
}

func headerError(header string, err error) *AuthError {
	return NewAuthError(ErrServiceError.Code, fmt.Sprintf("invalid %s header: %v", header, err), ErrServiceError.Status)
}
