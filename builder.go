package goAuthClient

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/MrEthical07/goAuthClient/store"
)

// Builder assembles a Client. A Builder is single use.
type Builder struct {
	config Config

	base      http.RoundTripper
	jar       http.CookieJar
	store     store.TokenStore
	navigator Navigator
	auditSink AuditSink
	logger    *slog.Logger

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseTransport sets the transport that actually sends requests. Defaults to
// http.DefaultTransport.
func (b *Builder) WithBaseTransport(rt http.RoundTripper) *Builder {
	b.base = rt
	return b
}

// WithCookieJar sets the jar holding the refresh cookie. In cookie mode a fresh
// in-memory jar is created when none is given.
func (b *Builder) WithCookieJar(jar http.CookieJar) *Builder {
	b.jar = jar
	return b
}

// WithTokenStore sets where the refresh token (body mode) and user profile are
// persisted. Defaults to store.NewMemoryStore().
func (b *Builder) WithTokenStore(s store.TokenStore) *Builder {
	b.store = s
	return b
}

func (b *Builder) WithNavigator(n Navigator) *Builder {
	b.navigator = n
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Client.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := b.base
	if base == nil {
		base = http.DefaultTransport
	}
	tokens := b.store
	if tokens == nil {
		tokens = store.NewMemoryStore()
	}
	navigator := b.navigator
	if navigator == nil {
		navigator = NoOpNavigator{}
	}
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "goauthclient"))

	jar := b.jar
	if jar == nil && cfg.Refresh.Mode == RefreshModeCookie {
		var err error
		jar, err = cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
	}

	refreshURL := cfg.BaseURL + cfg.Paths.Refresh
	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, configError("BaseURL is not a valid URL")
	}
	// every auth endpoint may have set the refresh cookie
	cookieURLs := []*url.URL{baseURL}
	for _, p := range []string{cfg.Paths.Refresh, cfg.Paths.Login, cfg.Paths.Register, cfg.Paths.Logout} {
		if p == "" {
			continue
		}
		u, err := url.Parse(cfg.BaseURL + p)
		if err != nil {
			return nil, configError("auth path " + p + " is not valid")
		}
		cookieURLs = append(cookieURLs, u)
	}

	metrics := NewMetrics(cfg.Metrics)
	audit := newAuditDispatcher(cfg.Audit, b.auditSink, logger)

	session := &Session{
		mode:       cfg.Refresh.Mode,
		store:      tokens,
		jar:        jar,
		cookieName: cfg.Refresh.CookieName,
		cookieURLs: cookieURLs,
		loginPath:  cfg.LoginPath,
		navigator:  navigator,
		metrics:    metrics,
		audit:      audit,
		logger:     logger,
	}
	if cfg.Refresh.Mode != RefreshModeCookie {
		session.cookieName = ""
	}

	ref := &refresher{
		url:     refreshURL,
		mode:    cfg.Refresh.Mode,
		timeout: cfg.Refresh.Timeout,
		client: &http.Client{
			Transport: base,
			Jar:       jar,
			Timeout:   cfg.Refresh.Timeout,
		},
		session:  session,
		metrics:  metrics,
		logger:   logger,
		coalesce: cfg.Refresh.Coalesce,
	}

	client := &Client{
		config: cfg,
		http: &http.Client{
			Transport: &authTransport{
				base:      base,
				session:   session,
				refresher: ref,
				metrics:   metrics,
				logger:    logger,
				userAgent: cfg.UserAgent,
			},
			Jar:     jar,
			Timeout: requestTimeout(cfg),
		},
		session:   session,
		refresher: ref,
		metrics:   metrics,
		audit:     audit,
		logger:    logger,
	}

	b.built = true
	return client, nil
}
