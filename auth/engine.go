package auth

// Policy is the constraint set a route classification imposes on an
// authenticated caller. The zero value imposes nothing beyond a valid
// identity.
type Policy struct {
	Permissions          []string
	MinTier              SubscriptionTier
	RequireVerifiedEmail bool
	OrganizationScoped   bool
}

// Authorize evaluates the policy against a verified user. The four checks
// run in a fixed order (email verification, permissions, tier,
// organization scope) and the first failure is returned; simultaneous
// violations are not aggregated.
//
// requestOrgID is the organization id read from the request's path
// parameters or body; empty means the request names no organization and
// scoping is left to the downstream handler.
func Authorize(u *AuthUser, p Policy, requestOrgID string) error {
	if u == nil {
		return ErrTokenMissing
	}

	if p.RequireVerifiedEmail && !u.EmailVerified() {
		return ErrEmailVerificationRequired
	}

	// Any one of the listed permissions grants access; the route policy
	// lists alternatives, not a conjunction.
	if len(p.Permissions) > 0 && !u.HasAnyPermission(p.Permissions) {
		return NewInsufficientPermissionsError(p.Permissions)
	}

	if p.MinTier != "" && !u.Tier().Meets(p.MinTier) {
		return NewUpgradeRequiredError(p.MinTier)
	}

	if p.OrganizationScoped && requestOrgID != "" {
		orgID := u.OrganizationID()
		if orgID == nil || *orgID != requestOrgID {
			return ErrOrganizationAccessDenied
		}
	}

	return nil
}
