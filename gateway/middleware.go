package gateway

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"findler.com/gateway/audit"
	"findler.com/gateway/auth"
	"findler.com/gateway/routes"
)

// Auditor receives one event per terminal pipeline state. Publish must never
// block; *audit.Dispatcher satisfies this.
type Auditor interface {
	Publish(event audit.Event)
}

// Config wires the middleware's collaborators.
type Config struct {
	Verifier   *auth.TokenVerifier
	Classifier *routes.Classifier
	Auditor    Auditor
	Logger     *slog.Logger
}

// Gateway is the per-request authentication orchestrator. It classifies the
// request, verifies the caller's token, enforces route policy, and rewrites
// the verified identity into the propagation headers for downstream
// services.
type Gateway struct {
	verifier   *auth.TokenVerifier
	classifier *routes.Classifier
	auditor    Auditor
	logger     *slog.Logger
}

// New creates the orchestrator. Verifier and classifier are mandatory; a nil
// auditor disables audit records and a nil logger falls back to the default.
func New(cfg Config) (*Gateway, error) {
	if cfg.Verifier == nil {
		return nil, fmt.Errorf("gateway requires a token verifier")
	}
	if cfg.Classifier == nil {
		return nil, fmt.Errorf("gateway requires a route classifier")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		verifier:   cfg.Verifier,
		classifier: cfg.Classifier,
		auditor:    cfg.Auditor,
		logger:     logger,
	}, nil
}

// Handler returns the Fiber middleware implementing the pipeline:
// classify, authenticate, authorize, propagate. Exactly one audit event is
// published per request, whatever the outcome.
func (g *Gateway) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := g.process(c); err != nil {
			return respondError(c, err)
		}
		return c.Next()
	}
}

// process runs the authentication pipeline up to (not including) the
// downstream handler. A nil return means the request continues; an error is
// terminal and has already been audited. The recover covers only the
// pipeline itself, so downstream panics stay with the app's own recovery and
// every request produces exactly one audit event.
func (g *Gateway) process(c *fiber.Ctx) (err error) {
	requestID := g.ensureRequestID(c)

	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("authentication middleware panic",
				"panic", r,
				"method", c.Method(),
				"path", c.Path(),
				"request_id", requestID,
			)
			g.publish(c, requestID, audit.OutcomeMiddlewareError, "", auth.ErrServiceError)
			err = auth.ErrServiceError
		}
	}()

	// Inbound identity headers are never trusted from outside the process
	// boundary.
	stripInboundIdentity(c)

	result := g.classifier.Classify(c.Method(), c.Path())

	if result.Access == routes.AccessPublic {
		g.publish(c, requestID, audit.OutcomePublicPass, "", nil)
		return nil
	}

	user, verifyErr := g.verifier.Verify(c.Get(fiber.HeaderAuthorization))

	if result.Access == routes.AccessOptional {
		// Optional-auth routes work for anonymous callers: a failed
		// verification is recovered into "no identity", not surfaced.
		if verifyErr != nil {
			g.publish(c, requestID, audit.OutcomeOptionalAnonymous, "", nil)
			return nil
		}
		g.attachUser(c, user)
		g.publish(c, requestID, audit.OutcomeAllowed, user.UserID(), nil)
		return nil
	}

	if verifyErr != nil {
		g.publish(c, requestID, audit.OutcomeAuthFailed, "", verifyErr)
		return verifyErr
	}

	orgID := requestOrganizationID(c, result)
	if authzErr := auth.Authorize(user, result.Policy, orgID); authzErr != nil {
		g.publish(c, requestID, audit.OutcomeDenied, user.UserID(), authzErr)
		return authzErr
	}

	g.attachUser(c, user)
	g.publish(c, requestID, audit.OutcomeAllowed, user.UserID(), nil)
	return nil
}

// ensureRequestID reads or generates the correlation id and echoes it on
// both the forwarded request and the response.
func (g *Gateway) ensureRequestID(c *fiber.Ctx) string {
	requestID := c.Get(auth.HeaderRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Request().Header.Set(auth.HeaderRequestID, requestID)
	c.Set(auth.HeaderRequestID, requestID)
	c.Locals(string(RequestIDKey), requestID)
	return requestID
}

// attachUser rewrites the verified identity into the propagation headers and
// exposes it to same-process handlers via locals.
func (g *Gateway) attachUser(c *fiber.Ctx, user *auth.AuthUser) {
	c.Locals(string(AuthUserKey), user)
	for key, value := range auth.ServiceHeaders(user) {
		c.Request().Header.Set(key, value)
	}
}

func (g *Gateway) publish(c *fiber.Ctx, requestID string, outcome audit.Outcome, userID string, cause error) {
	if g.auditor == nil {
		return
	}
	event := audit.Event{
		Outcome:   outcome,
		RequestID: requestID,
		Method:    c.Method(),
		Path:      c.Path(),
		UserID:    userID,
	}
	if cause != nil {
		authErr := auth.AsAuthError(cause)
		event.Code = authErr.Code
		event.Status = authErr.Status
	}
	g.auditor.Publish(event)
}

func stripInboundIdentity(c *fiber.Ctx) {
	for _, header := range auth.PropagationHeaders() {
		c.Request().Header.Del(header)
	}
}

// requestOrganizationID extracts the organization id an org-scoped request
// names: the path parameter captured by classification, else a top-level
// organizationId field in a JSON body. Empty means scoping is left to the
// downstream handler.
func requestOrganizationID(c *fiber.Ctx, result routes.Result) string {
	if !result.Policy.OrganizationScoped {
		return ""
	}
	if id := result.Params["organizationId"]; id != "" {
		return id
	}
	if id := result.Params["id"]; id != "" {
		return id
	}

	if strings.Contains(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		var body struct {
			OrganizationID string `json:"organizationId"`
		}
		if err := json.Unmarshal(c.Body(), &body); err == nil {
			return body.OrganizationID
		}
	}
	return ""
}

// respondError writes the uniform error envelope with the mapped status.
func respondError(c *fiber.Ctx, err error) error {
	status, envelope := auth.ErrorResponse(err)
	return c.Status(status).JSON(envelope)
}
