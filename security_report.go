package goAuthClient

import (
	"fmt"
	"strings"
	"time"
)

// SecurityReport summarizes the security-relevant settings of a built Client.
type SecurityReport struct {
	RefreshMode      string
	RefreshCookie    string
	RefreshCoalesced bool
	RefreshTimeout   time.Duration
	TLS              bool
	TokenStore       string
	// RefreshTokenReadable is true when the refresh token is visible to anything
	// that can read the TokenStore (body mode).
	RefreshTokenReadable bool
	AuditEnabled         bool
	MetricsEnabled       bool
}

func (c *Client) SecurityReport() SecurityReport {
	if c == nil {
		return SecurityReport{}
	}

	report := SecurityReport{
		RefreshMode:          c.config.Refresh.Mode.String(),
		RefreshCoalesced:     c.config.Refresh.Coalesce,
		RefreshTimeout:       c.config.Refresh.Timeout,
		TLS:                  strings.HasPrefix(c.config.BaseURL, "https://"),
		TokenStore:           fmt.Sprintf("%T", c.session.store),
		RefreshTokenReadable: c.config.Refresh.Mode == RefreshModeBody,
		AuditEnabled:         c.config.Audit.Enabled,
		MetricsEnabled:       c.config.Metrics.Enabled,
	}
	if c.config.Refresh.Mode == RefreshModeCookie {
		report.RefreshCookie = c.config.Refresh.CookieName
	}
	return report
}
