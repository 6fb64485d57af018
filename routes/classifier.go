package routes

import (
	"fmt"
	"log/slog"
	"strings"

	"findler.com/gateway/auth"
)

// Access is the classification outcome for a route.
type Access string

const (
	AccessPublic    Access = "public"
	AccessOptional  Access = "optional"
	AccessProtected Access = "protected"
)

// Rule declares the policy for one route pattern. Method "*" matches any
// verb; otherwise matching is case-insensitive exact.
type Rule struct {
	Method               string
	Pattern              string
	Permissions          []string
	MinTier              auth.SubscriptionTier
	RequireVerifiedEmail bool
	OrganizationScoped   bool
}

// Tables holds the three disjoint route tables. Within a table, first match
// wins in declaration order: specific literal paths must be listed before
// broader wildcard fallbacks. No specificity scoring is performed.
type Tables struct {
	Public    []Rule
	Optional  []Rule
	Protected []Rule
}

// Result is the per-request classification answer.
type Result struct {
	Access Access
	Policy auth.Policy
	Params map[string]string
}

type compiledRule struct {
	method  string
	pattern *Pattern
	rule    Rule
}

// Classifier maps (method, path) pairs to route policy. Tables are compiled
// once at construction and immutable thereafter, so classification needs no
// locks and is safe for concurrent use.
type Classifier struct {
	public    []compiledRule
	optional  []compiledRule
	protected []compiledRule
}

// NewClassifier compiles the route tables. It also warns (startup-time only)
// about literal entries shadowed by an earlier broader entry in the same
// table, since a misordered table silently mis-classifies requests; matching
// behavior itself stays pure first-match-wins.
func NewClassifier(tables Tables, logger *slog.Logger) (*Classifier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Classifier{}
	var err error
	if c.public, err = compileTable("public", tables.Public, logger); err != nil {
		return nil, err
	}
	if c.optional, err = compileTable("optional", tables.Optional, logger); err != nil {
		return nil, err
	}
	if c.protected, err = compileTable("protected", tables.Protected, logger); err != nil {
		return nil, err
	}
	return c, nil
}

func compileTable(name string, rules []Rule, logger *slog.Logger) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		pattern, err := CompilePattern(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%s table: %w", name, err)
		}

		method := strings.ToUpper(strings.TrimSpace(rule.Method))
		if method == "" {
			method = "*"
		}

		entry := compiledRule{method: method, pattern: pattern, rule: rule}
		for _, earlier := range compiled {
			if entry.pattern.literal && methodsOverlap(earlier.method, entry.method) {
				if _, ok := earlier.pattern.Match(entry.pattern.raw); ok {
					logger.Warn("route table entry shadowed by earlier entry",
						"table", name,
						"entry", entry.pattern.raw,
						"shadowed_by", earlier.pattern.String(),
					)
				}
			}
		}
		compiled = append(compiled, entry)
	}
	return compiled, nil
}

func methodsOverlap(a, b string) bool {
	return a == "*" || b == "*" || a == b
}

// Classify returns the policy for a request. It never fails: a path found in
// no table is treated as protected with no extra constraints, so unknown
// routes still require identity.
//
// Public is checked first and short-circuits everything else, then
// optional-auth, then protected.
func (c *Classifier) Classify(method, path string) Result {
	method = strings.ToUpper(strings.TrimSpace(method))
	path = NormalizePath(path)

	if params, ok := matchTable(c.public, method, path); ok {
		return Result{Access: AccessPublic, Params: params}
	}

	if rule, params, ok := matchTableRule(c.optional, method, path); ok {
		return Result{Access: AccessOptional, Policy: policyFor(rule), Params: params}
	}

	if rule, params, ok := matchTableRule(c.protected, method, path); ok {
		return Result{Access: AccessProtected, Policy: policyFor(rule), Params: params}
	}

	return Result{Access: AccessProtected}
}

func matchTable(table []compiledRule, method, path string) (map[string]string, bool) {
	_, params, ok := matchTableRule(table, method, path)
	return params, ok
}

func matchTableRule(table []compiledRule, method, path string) (Rule, map[string]string, bool) {
	for _, entry := range table {
		if entry.method != "*" && entry.method != method {
			continue
		}
		if params, ok := entry.pattern.Match(path); ok {
			return entry.rule, params, true
		}
	}
	return Rule{}, nil, false
}

func policyFor(rule Rule) auth.Policy {
	return auth.Policy{
		Permissions:          rule.Permissions,
		MinTier:              rule.MinTier,
		RequireVerifiedEmail: rule.RequireVerifiedEmail,
		OrganizationScoped:   rule.OrganizationScoped,
	}
}
