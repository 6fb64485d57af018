package routes

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/health", "/health"},
		{"/health/", "/health"},
		{"health", "/health"},
		{"/api/qr/", "/api/qr"},
	}

	for _, tt := range tests {
		if got := NormalizePath(tt.in); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLiteralPattern(t *testing.T) {
	pattern, err := CompilePattern("/health")
	if err != nil {
		t.Fatalf("CompilePattern failed: %v", err)
	}

	if _, ok := pattern.Match("/health"); !ok {
		t.Error("exact path should match")
	}
	if _, ok := pattern.Match("/healthz"); ok {
		t.Error("different path should not match")
	}
	if _, ok := pattern.Match("/health/live"); ok {
		t.Error("longer path should not match a literal")
	}
}

func TestTemplatePatternParams(t *testing.T) {
	pattern, err := CompilePattern("/organizations/:id/members/:memberId")
	if err != nil {
		t.Fatalf("CompilePattern failed: %v", err)
	}

	params, ok := pattern.Match("/organizations/org-1/members/u-2")
	if !ok {
		t.Fatal("expected match")
	}
	if params["id"] != "org-1" || params["memberId"] != "u-2" {
		t.Errorf("unexpected params: %v", params)
	}

	// A :segment matches exactly one path segment.
	if _, ok := pattern.Match("/organizations/org-1/members"); ok {
		t.Error("missing segment should not match")
	}
	if _, ok := pattern.Match("/organizations/org-1/extra/members/u-2"); ok {
		t.Error("extra segment should not match")
	}
}

func TestWildcardPattern(t *testing.T) {
	pattern, err := CompilePattern("/api/teams/*")
	if err != nil {
		t.Fatalf("CompilePattern failed: %v", err)
	}

	for _, path := range []string{"/api/teams/t-1", "/api/teams/t-1/members/u-2"} {
		if _, ok := pattern.Match(path); !ok {
			t.Errorf("wildcard should match %s across segment boundaries", path)
		}
	}
	if _, ok := pattern.Match("/api/qr/t-1"); ok {
		t.Error("non-matching prefix should not match")
	}
}

// A mid-pattern wildcard still honors the literal tail.
func TestWildcardWithTail(t *testing.T) {
	pattern, err := CompilePattern("/api/*/health")
	if err != nil {
		t.Fatalf("CompilePattern failed: %v", err)
	}

	for _, path := range []string{"/api/qr/health", "/api/qr/v2/health"} {
		if _, ok := pattern.Match(path); !ok {
			t.Errorf("expected match for %s", path)
		}
	}
	if _, ok := pattern.Match("/api/qr/status"); ok {
		t.Error("tail mismatch should not match")
	}
}

func TestCompilePatternErrors(t *testing.T) {
	for _, raw := range []string{"/api/:", "/api/qr*", "/api/x:y"} {
		if _, err := CompilePattern(raw); err == nil {
			t.Errorf("expected compile error for %q", raw)
		}
	}
}
