package routes

import "findler.com/gateway/auth"

// DefaultTables is the platform's route policy. Ordering inside each table
// matters: first match wins, so exact entries precede wildcard fallbacks.
func DefaultTables() Tables {
	return Tables{
		Public: []Rule{
			{Method: "GET", Pattern: "/health"},
			{Method: "GET", Pattern: "/ready"},
			{Method: "POST", Pattern: "/auth/login"},
			{Method: "POST", Pattern: "/auth/refresh"},
			{Method: "POST", Pattern: "/auth/logout"},
			{Method: "GET", Pattern: "/api/landing/:slug"},
			{Method: "*", Pattern: "/public/*"},
		},
		Optional: []Rule{
			{Method: "GET", Pattern: "/api/templates"},
			{Method: "GET", Pattern: "/api/templates/:id"},
			{Method: "GET", Pattern: "/api/posts"},
			{Method: "GET", Pattern: "/api/posts/:id"},
		},
		Protected: []Rule{
			// QR codes: any authenticated user.
			{Method: "*", Pattern: "/api/qr"},
			{Method: "*", Pattern: "/api/qr/:id"},

			// Landing page management (the public view route stays public).
			{Method: "*", Pattern: "/api/landing"},
			{Method: "PUT", Pattern: "/api/landing/:slug"},
			{Method: "DELETE", Pattern: "/api/landing/:slug"},

			// Team management is a paid feature.
			{Method: "*", Pattern: "/api/teams", MinTier: auth.TierPro},
			{Method: "*", Pattern: "/api/teams/*", MinTier: auth.TierPro},

			// File storage needs a business plan and a verified email.
			{Method: "*", Pattern: "/api/files/*", MinTier: auth.TierBusiness, RequireVerifiedEmail: true},

			// Content publishing requires a verified email.
			{Method: "POST", Pattern: "/api/posts", RequireVerifiedEmail: true},
			{Method: "*", Pattern: "/api/posts/:id", RequireVerifiedEmail: true},

			// Organization resources are scoped to the caller's organization.
			{Method: "*", Pattern: "/organizations/:id", OrganizationScoped: true},
			{Method: "*", Pattern: "/organizations/:id/*", OrganizationScoped: true},

			// Admin dashboard.
			{Method: "*", Pattern: "/api/admin/*",
				Permissions:          []string{"admin:read", "admin:write"},
				RequireVerifiedEmail: true},
		},
	}
}
