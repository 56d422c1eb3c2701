package goAuthClient

import (
	"slices"
	"testing"
	"time"
)

func TestLintDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	codes := cfg.Lint().Codes()

	// localhost over http is fine for development
	if slices.Contains(codes, "plaintext_base_url") {
		t.Error("loopback base url must not warn")
	}
	if slices.Contains(codes, "refresh_token_readable") {
		t.Error("cookie mode must not warn about readable refresh tokens")
	}
	if len(codes) != 0 {
		t.Errorf("expected no warnings for defaults, got %v", codes)
	}
}

func TestLintFlagsRiskySettings(t *testing.T) {
	cfg := defaultConfig()
	cfg.BaseURL = "http://api.example.com"
	cfg.Refresh.Mode = RefreshModeBody
	cfg.Timeout = 5 * time.Second
	cfg.Refresh.Timeout = 10 * time.Second

	codes := cfg.Lint().Codes()
	for _, want := range []string{
		"plaintext_base_url",
		"refresh_token_readable",
		"body_mode_uncoalesced",
		"refresh_timeout_exceeds_request",
	} {
		if !slices.Contains(codes, want) {
			t.Errorf("expected warning %q, got %v", want, codes)
		}
	}
}

func TestLintNoTimeout(t *testing.T) {
	cfg := defaultConfig()
	cfg.Timeout = 0
	if !slices.Contains(cfg.Lint().Codes(), "no_request_timeout") {
		t.Fatal("expected no_request_timeout")
	}
}
