package auth

import (
	"errors"
	"fmt"
	"time"
)

// AuthError represents authentication/authorization errors. The set of codes
// is closed: every failure in the pipeline is classified into exactly one of
// the predefined errors below before a response is produced.
type AuthError struct {
	Code            string `json:"code"`
	Message         string `json:"message"`
	Status          int    `json:"-"`
	UpgradeRequired string `json:"upgradeRequired,omitempty"`
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Common auth errors
var (
	ErrTokenMissing   = &AuthError{Code: "TOKEN_MISSING", Message: "Authorization header required", Status: 401}
	ErrTokenInvalid   = &AuthError{Code: "TOKEN_INVALID", Message: "Invalid token", Status: 401}
	ErrTokenExpired   = &AuthError{Code: "TOKEN_EXPIRED", Message: "Token has expired", Status: 401}
	ErrTokenMalformed = &AuthError{Code: "TOKEN_MALFORMED", Message: "Token payload is not a usable identity", Status: 400}

	ErrEmailVerificationRequired = &AuthError{Code: "EMAIL_VERIFICATION_REQUIRED", Message: "Email verification required", Status: 403}
	ErrOrganizationAccessDenied  = &AuthError{Code: "ORGANIZATION_ACCESS_DENIED", Message: "Access to this organization is denied", Status: 403}

	ErrServiceError = &AuthError{Code: "AUTHENTICATION_SERVICE_ERROR", Message: "Authentication service error", Status: 500}
)

// NewAuthError creates an auth error with a custom message.
func NewAuthError(code, message string, status int) *AuthError {
	return &AuthError{Code: code, Message: message, Status: status}
}

// NewInsufficientPermissionsError reports the permission set the route
// requires so callers can see what was missing.
func NewInsufficientPermissionsError(required []string) *AuthError {
	return &AuthError{
		Code:    "INSUFFICIENT_PERMISSIONS",
		Message: fmt.Sprintf("Missing required permission (any of): %v", required),
		Status:  403,
	}
}

// NewUpgradeRequiredError reports a subscription tier floor the caller does
// not meet. This is a distinct 402 category, not a plain 403, because the
// remedy is a plan upgrade rather than an access grant.
func NewUpgradeRequiredError(minimum SubscriptionTier) *AuthError {
	return &AuthError{
		Code:            "SUBSCRIPTION_UPGRADE_REQUIRED",
		Message:         fmt.Sprintf("Subscription tier %q or higher required", minimum),
		Status:          402,
		UpgradeRequired: string(minimum),
	}
}

// AsAuthError classifies any error into the closed taxonomy. Errors that are
// not already an *AuthError are internal failures and map to the generic 500
// without leaking details.
func AsAuthError(err error) *AuthError {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	return ErrServiceError
}

// ErrorDetail is the error object inside the uniform response envelope.
type ErrorDetail struct {
	Code            string `json:"code"`
	Message         string `json:"message"`
	Timestamp       string `json:"timestamp"`
	UpgradeRequired string `json:"upgradeRequired,omitempty"`
}

// ErrorEnvelope is the uniform JSON shape for every auth failure:
// {"success":false,"error":{"code","message","timestamp","upgradeRequired"?}}
type ErrorEnvelope struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorResponse maps an error to its HTTP status and response envelope.
func ErrorResponse(err error) (int, ErrorEnvelope) {
	authErr := AsAuthError(err)
	return authErr.Status, ErrorEnvelope{
		Success: false,
		Error: ErrorDetail{
			Code:            authErr.Code,
			Message:         authErr.Message,
			Timestamp:       time.Now().UTC().Format(time.RFC3339),
			UpgradeRequired: authErr.UpgradeRequired,
		},
	}
}
