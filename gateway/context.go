package gateway

import (
	"github.com/gofiber/fiber/v2"

	"findler.com/gateway/auth"
)

// ContextKey is a custom type for locals keys to avoid collisions.
type ContextKey string

const (
	// AuthUserKey holds the verified *auth.AuthUser for same-process handlers.
	AuthUserKey ContextKey = "authUser"
	// RequestIDKey holds the correlation id for the request.
	RequestIDKey ContextKey = "requestID"
)

// UserFromContext extracts the verified user attached by the middleware.
// Public and anonymous optional-auth requests carry no user.
func UserFromContext(c *fiber.Ctx) (*auth.AuthUser, bool) {
	user, ok := c.Locals(string(AuthUserKey)).(*auth.AuthUser)
	return user, ok
}

// RequestID returns the request's correlation id.
func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(string(RequestIDKey)).(string)
	return id
}

// UserFromRequestHeaders reconstructs the identity a downstream service
// receives through the propagation headers. It never re-verifies a
// signature; the headers are trusted inside the private network boundary.
func UserFromRequestHeaders(c *fiber.Ctx) (*auth.AuthUser, error) {
	return auth.UserFromHeaders(func(key string) string {
		return c.Get(key)
	})
}
