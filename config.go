package goAuthClient

import (
	"net/url"
	"strings"
	"time"
)

// Config defines the client configuration.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	LoginPath string
	Paths     PathsConfig
	Refresh   RefreshConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
PATHS CONFIG
====================================
*/

// PathsConfig names the backend auth endpoints, relative to BaseURL.
type PathsConfig struct {
	Login    string
	Register string
	Refresh  string
	Logout   string // empty disables the server-side logout call
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshMode selects where the refresh token lives.
type RefreshMode int

const (
	// RefreshModeCookie keeps the refresh token in an HttpOnly cookie managed by the
	// cookie jar. Client code never sees it.
	RefreshModeCookie RefreshMode = iota
	// RefreshModeBody stores the refresh token in the TokenStore and sends it in the
	// refresh request body. Anything that can read the store can steal the token.
	RefreshModeBody
)

func (m RefreshMode) String() string {
	switch m {
	case RefreshModeCookie:
		return "cookie"
	case RefreshModeBody:
		return "body"
	default:
		return "unknown"
	}
}

// ParseRefreshMode maps "cookie" or "body" to a RefreshMode.
func ParseRefreshMode(s string) (RefreshMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cookie":
		return RefreshModeCookie, true
	case "body":
		return RefreshModeBody, true
	default:
		return RefreshModeCookie, false
	}
}

// RefreshConfig controls the refresh call used for 401 recovery.
type RefreshConfig struct {
	Mode       RefreshMode
	CookieName string
	Timeout    time.Duration
	// Coalesce collapses concurrent refresh calls into one. Off by default: every
	// failed request refreshes on its own.
	Coalesce bool
}

// AuditConfig controls audit dispatch buffering.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles in-process metrics.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration used by New.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		BaseURL:   "http://localhost:8080/api/v1",
		Timeout:   30 * time.Second,
		UserAgent: "goAuthClient/1",
		LoginPath: "/login",
		Paths: PathsConfig{
			Login:    "/auth/login",
			Register: "/auth/register",
			Refresh:  "/auth/refresh",
			Logout:   "",
		},
		Refresh: RefreshConfig{
			Mode:       RefreshModeCookie,
			CookieName: "refresh_token",
			Timeout:    10 * time.Second,
			Coalesce:   false,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the configuration and returns an error wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return configError("BaseURL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return configError("BaseURL is not a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return configError("BaseURL scheme must be http or https")
	}
	if u.Host == "" {
		return configError("BaseURL host is required")
	}
	if c.Timeout < 0 {
		return configError("Timeout must be >= 0")
	}
	if !strings.HasPrefix(c.LoginPath, "/") {
		return configError("LoginPath must start with /")
	}

	for name, p := range map[string]string{
		"Paths.Login":    c.Paths.Login,
		"Paths.Register": c.Paths.Register,
		"Paths.Refresh":  c.Paths.Refresh,
	} {
		if !strings.HasPrefix(p, "/") {
			return configError(name + " must start with /")
		}
	}
	if c.Paths.Logout != "" && !strings.HasPrefix(c.Paths.Logout, "/") {
		return configError("Paths.Logout must start with / when set")
	}

	switch c.Refresh.Mode {
	case RefreshModeCookie:
		if strings.TrimSpace(c.Refresh.CookieName) == "" {
			return configError("Refresh.CookieName is required in cookie mode")
		}
	case RefreshModeBody:
	default:
		return configError("Refresh.Mode is invalid")
	}
	if c.Refresh.Timeout <= 0 {
		return configError("Refresh.Timeout must be > 0")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return configError("Audit.BufferSize must be > 0 when audit is enabled")
	}

	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return out
}
