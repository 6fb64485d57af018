package auth

import (
	"testing"
)

func headerGetter(headers map[string]string) HeaderGetter {
	return func(key string) string { return headers[key] }
}

func TestServiceHeadersRoundTrip(t *testing.T) {
	orgID := "org-42"
	original := testUser(t, func(c *UserClaims) {
		c.OrganizationID = &orgID
		c.Permissions = []string{"qr:write", "teams:manage"}
	})

	headers := ServiceHeaders(original)
	restored, err := UserFromHeaders(headerGetter(headers))
	if err != nil {
		t.Fatalf("UserFromHeaders failed: %v", err)
	}

	if restored.UserID() != original.UserID() {
		t.Errorf("user id: got %s, want %s", restored.UserID(), original.UserID())
	}
	if restored.Email() != original.Email() {
		t.Errorf("email: got %s, want %s", restored.Email(), original.Email())
	}
	if restored.Username() != original.Username() {
		t.Errorf("username: got %s, want %s", restored.Username(), original.Username())
	}
	if restored.Tier() != original.Tier() {
		t.Errorf("tier: got %s, want %s", restored.Tier(), original.Tier())
	}
	if restored.EmailVerified() != original.EmailVerified() {
		t.Errorf("verified: got %v, want %v", restored.EmailVerified(), original.EmailVerified())
	}
	if restored.IssuedAt() != original.IssuedAt() || restored.ExpiresAt() != original.ExpiresAt() {
		t.Error("issued/expiry timestamps did not round-trip")
	}
	if restored.OrganizationID() == nil || *restored.OrganizationID() != orgID {
		t.Errorf("organization id did not round-trip: %v", restored.OrganizationID())
	}

	perms := restored.Permissions()
	if len(perms) != 2 || perms[0] != "qr:write" || perms[1] != "teams:manage" {
		t.Errorf("permissions did not round-trip: %v", perms)
	}
}

// Optional fields are omitted from the header set when empty and round-trip
// to their defaults.
func TestServiceHeadersOmitEmptyOptionals(t *testing.T) {
	original := testUser(t, func(c *UserClaims) {
		c.OrganizationID = nil
		c.Permissions = nil
	})

	headers := ServiceHeaders(original)
	if _, ok := headers[HeaderOrgID]; ok {
		t.Error("empty organization id should be omitted")
	}
	if _, ok := headers[HeaderPermissions]; ok {
		t.Error("empty permissions should be omitted")
	}

	restored, err := UserFromHeaders(headerGetter(headers))
	if err != nil {
		t.Fatalf("UserFromHeaders failed: %v", err)
	}
	if restored.OrganizationID() != nil {
		t.Error("omitted organization id should restore to nil")
	}
	if len(restored.Permissions()) != 0 {
		t.Error("omitted permissions should restore to empty")
	}
}

func TestUserFromHeadersFailsClosed(t *testing.T) {
	base := ServiceHeaders(testUser(t, nil))

	for _, missing := range []string{HeaderUserID, HeaderEmail, HeaderTier} {
		headers := make(map[string]string, len(base))
		for k, v := range base {
			headers[k] = v
		}
		delete(headers, missing)

		if _, err := UserFromHeaders(headerGetter(headers)); err == nil {
			t.Errorf("expected reconstruction failure without %s", missing)
		}
	}
}

func TestUserFromHeadersRejectsBadEncodings(t *testing.T) {
	headers := ServiceHeaders(testUser(t, nil))

	headers[HeaderExpiresAt] = "not-a-number"
	if _, err := UserFromHeaders(headerGetter(headers)); err == nil {
		t.Error("expected error for non-numeric expiry header")
	}

	headers = ServiceHeaders(testUser(t, nil))
	headers[HeaderPermissions] = "{not json"
	if _, err := UserFromHeaders(headerGetter(headers)); err == nil {
		t.Error("expected error for invalid permissions JSON")
	}
}
