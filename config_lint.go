package goAuthClient

import (
	"net"
	"net/url"
)

// LintWarning is a configuration that validates but is probably not what a
// production deployment wants.
type LintWarning struct {
	Code    string
	Message string
}

// LintResult is the list of warnings returned by Config.Lint.
type LintResult []LintWarning

// Codes returns the warning codes in order.
func (ws LintResult) Codes() []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

// Lint reports risky but valid settings. It never fails; call Validate for that.
func (c *Config) Lint() LintResult {
	var ws LintResult
	add := func(code, msg string) {
		ws = append(ws, LintWarning{Code: code, Message: msg})
	}

	if u, err := url.Parse(c.BaseURL); err == nil && u.Scheme == "http" && !isLoopback(u.Hostname()) {
		add("plaintext_base_url", "bearer and refresh tokens are sent over plain HTTP")
	}
	if c.Refresh.Mode == RefreshModeBody {
		add("refresh_token_readable", "body mode keeps the refresh token where the TokenStore's readers can see it")
		if !c.Refresh.Coalesce {
			add("body_mode_uncoalesced", "concurrent 401s each send the same refresh token; rotating backends will see reuse")
		}
	}
	if c.Timeout == 0 {
		add("no_request_timeout", "requests can hang forever")
	} else if c.Refresh.Timeout >= c.Timeout {
		add("refresh_timeout_exceeds_request", "the request timeout expires before a slow refresh can finish")
	}
	return ws
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
