package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/authtest"
)

func newBackend(t *testing.T) *authtest.Server {
	t.Helper()
	srv := authtest.New(authtest.Options{RotateRefresh: true})
	t.Cleanup(srv.Close)
	if _, err := srv.AddUser("An Nguyen", "an@example.com", "secret1", "passenger"); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BUSCTL_BASE_URL", srv.URL())
	t.Setenv("BUSCTL_LOG_LEVEL", "error")
	return srv
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	t.Setenv("BUSCTL_REFRESH_MODE", "cookie")
	t.Setenv("BUSCTL_TIMEOUT", "5s")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BaseURL != "http://localhost:8080/api/v1" || cfg.Profile != "default" || cfg.Redis.Prefix != "busctl" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	clientCfg, err := cfg.ClientConfig()
	if err != nil {
		t.Fatal(err)
	}
	if clientCfg.Refresh.Mode != goAuthClient.RefreshModeCookie || clientCfg.Timeout != 5*time.Second {
		t.Fatalf("client config = %+v", clientCfg)
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "busctl.yaml")
	yaml := "base_url: https://api.example.com/api/v1\nprofile: ops\nredis:\n  addr: 127.0.0.1:6379\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BaseURL != "https://api.example.com/api/v1" || cfg.Profile != "ops" || cfg.Redis.Addr != "127.0.0.1:6379" {
		t.Fatalf("yaml not applied: %+v", cfg)
	}
	if cfg.Redis.TTL != 168*time.Hour {
		t.Fatalf("ttl default = %s", cfg.Redis.TTL)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing config file should fail")
	}
}

func TestBadRefreshModeRejected(t *testing.T) {
	cfg := &Config{BaseURL: "http://localhost", RefreshMode: "header", Timeout: time.Second}
	if _, err := cfg.ClientConfig(); err == nil {
		t.Fatal("unknown refresh mode accepted")
	}
}

func TestWhoamiLogsInFromEnvironment(t *testing.T) {
	newBackend(t)
	t.Setenv("BUSCTL_EMAIL", "an@example.com")
	t.Setenv("BUSCTL_PASSWORD", "secret1")

	code, out, errOut := runCLI(t, "whoami")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "<an@example.com>") || !strings.Contains(out, "role=passenger") {
		t.Fatalf("output = %q", out)
	}
}

func TestSessionPersistsInRedisAcrossRuns(t *testing.T) {
	srv := newBackend(t)
	mr := miniredis.RunT(t)
	t.Setenv("BUSCTL_REDIS_ADDR", mr.Addr())

	if code, _, errOut := runCLI(t, "login", "-email", "an@example.com", "-password", "secret1"); code != 0 {
		t.Fatalf("login exit %d: %s", code, errOut)
	}
	if !mr.Exists("busctl:default:refresh") {
		t.Fatal("refresh token not persisted")
	}

	code, out, errOut := runCLI(t, "whoami")
	if code != 0 {
		t.Fatalf("whoami exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "an@example.com") {
		t.Fatalf("whoami output = %q", out)
	}
	if srv.RefreshCalls() != 1 {
		t.Fatalf("refresh calls = %d, want 1", srv.RefreshCalls())
	}

	if code, out, _ := runCLI(t, "logout"); code != 0 || !strings.Contains(out, "logged out") {
		t.Fatalf("logout exit %d: %q", code, out)
	}
	if mr.Exists("busctl:default:refresh") {
		t.Fatal("logout left the refresh token behind")
	}
	if code, _, errOut := runCLI(t, "whoami"); code != 1 || !strings.Contains(errOut, "not logged in") {
		t.Fatalf("whoami after logout exit %d: %s", code, errOut)
	}
}

func TestTripsAndBookings(t *testing.T) {
	srv := newBackend(t)
	t.Setenv("BUSCTL_EMAIL", "an@example.com")
	t.Setenv("BUSCTL_PASSWORD", "secret1")

	code, out, errOut := runCLI(t, "trips", "-from", "Hanoi", "-sort", "price", "-desc")
	if code != 0 {
		t.Fatalf("trips exit %d: %s", code, errOut)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("trips output:\n%s", out)
	}
	if !strings.Contains(lines[1], "Ho Chi Minh") {
		t.Fatalf("most expensive trip should come first:\n%s", out)
	}

	code, out, errOut = runCLI(t, "-metrics", "bookings")
	if code != 0 {
		t.Fatalf("bookings exit %d: %s", code, errOut)
	}
	if strings.TrimSpace(out) != "CODE  TRIP  SEATS  TOTAL  STATUS" {
		t.Fatalf("bookings output = %q", out)
	}
	if !strings.Contains(errOut, "goauthclient_login_success_total 1") {
		t.Fatalf("metrics not printed:\n%s", errOut)
	}
	if len(srv.RequestsTo("/bookings")) != 1 {
		t.Fatal("bookings endpoint not called")
	}
}

func TestUsageErrors(t *testing.T) {
	newBackend(t)
	if code, _, _ := runCLI(t); code != 2 {
		t.Fatalf("no command exit = %d", code)
	}
	if code, _, errOut := runCLI(t, "fly"); code != 2 || !strings.Contains(errOut, "unknown command") {
		t.Fatalf("unknown command exit = %d: %s", code, errOut)
	}
	if code, _, _ := runCLI(t, "trips", "-date", "tomorrow"); code != 2 {
		t.Fatalf("bad date exit = %d", code)
	}
}
