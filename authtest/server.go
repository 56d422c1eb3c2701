package authtest

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrEthical07/goAuthClient/internal"
	"github.com/MrEthical07/goAuthClient/jwt"
)

// Options configures a Server. The zero value is a body-mode backend whose
// refresh tokens stay valid until logout.
type Options struct {
	// BasePath prefixes every route. Defaults to "/api/v1".
	BasePath string
	// CookieMode delivers refresh tokens as an HttpOnly cookie instead of in the body.
	CookieMode bool
	// CookieName defaults to "refresh_token".
	CookieName string
	// AccessTTL defaults to 15 minutes.
	AccessTTL time.Duration
	// RotateRefresh invalidates a refresh token once it has been used.
	RotateRefresh bool
	// ReuseDetection revokes the whole token family when a rotated-out token is
	// presented again. Only meaningful with RotateRefresh.
	ReuseDetection bool
	// RefreshLimit caps refresh calls per minute across all clients; 0 disables.
	RefreshLimit int
	// RefreshDelay is added before each refresh is answered.
	RefreshDelay time.Duration
}

// RecordedRequest is one request as seen by the server.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

type account struct {
	User
	passwordHash []byte
}

type family struct {
	userID  string
	hash    [32]byte
	revoked bool
}

// Server is a fake booking backend.
type Server struct {
	opts Options
	srv  *httptest.Server
	jwt  *jwt.Manager

	mu          sync.Mutex
	accounts    map[string]*account // by email
	families    map[internal.FamilyID]*family
	live        map[string]string // access token -> user ID
	buses       map[string]*Bus
	routes      map[string]*Route
	trips       map[string]*Trip
	seats       map[string]map[string]*Seat // trip ID -> seat number
	bookings    map[string]*Booking
	payments    map[string]*Payment
	paymentKeys map[string]string // idempotency key -> payment ID
	tickets     map[string]*Ticket // by code
	chats       map[string][]chatMessage
	requests    []RecordedRequest

	failRefresh   atomic.Bool
	refreshCalls  atomic.Int64
	reuseDetected atomic.Int64
}

type ctxKey struct{}

// New starts a Server. Call Close when done.
func New(opts Options) *Server {
	if opts.BasePath == "" {
		opts.BasePath = "/api/v1"
	}
	opts.BasePath = "/" + strings.Trim(opts.BasePath, "/")
	if opts.CookieName == "" {
		opts.CookieName = "refresh_token"
	}
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 15 * time.Minute
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("authtest: " + err.Error())
	}
	manager, err := jwt.NewManager(jwt.Config{
		AccessTTL:     opts.AccessTTL,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    secret,
		Issuer:        "authtest",
	})
	if err != nil {
		panic("authtest: " + err.Error())
	}

	s := &Server{
		opts:        opts,
		jwt:         manager,
		accounts:    map[string]*account{},
		families:    map[internal.FamilyID]*family{},
		live:        map[string]string{},
		buses:       map[string]*Bus{},
		routes:      map[string]*Route{},
		trips:       map[string]*Trip{},
		seats:       map[string]map[string]*Seat{},
		bookings:    map[string]*Booking{},
		payments:    map[string]*Payment{},
		paymentKeys: map[string]string{},
		tickets:     map[string]*Ticket{},
		chats:       map[string][]chatMessage{},
	}
	s.seedCatalog()
	s.srv = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.record)

	r.Route(s.opts.BasePath, func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.With(s.refreshLimiter()).Post("/refresh", s.handleRefresh)
			r.Post("/logout", s.handleLogout)
		})

		r.Get("/trips", s.handleSearchTrips)
		r.Get("/trips/{id}", s.handleGetTrip)
		r.Get("/trips/{id}/seats", s.handleTripSeats)

		r.Group(func(pr chi.Router) {
			pr.Use(s.requireBearer)
			pr.Get("/users/me", s.handleMe)

			pr.Get("/bookings", s.handleMyBookings)
			pr.Post("/bookings", s.handleInitiateBooking)
			pr.Get("/bookings/{id}", s.handleGetBooking)
			pr.Post("/bookings/{id}/cancel", s.handleCancelBooking)

			pr.Post("/payments", s.handleCreatePayment)
			pr.Get("/payments/{id}", s.handleGetPayment)

			pr.Get("/tickets/{code}", s.handleGetTicket)
			pr.Post("/tickets/{code}/checkin", s.handleCheckIn)

			pr.Post("/chatbot/message", s.handleChatbot)
			pr.Get("/chatbot/history", s.handleChatHistory)

			pr.Route("/admin", func(ar chi.Router) {
				ar.Use(s.requireAdmin)
				ar.Post("/buses", s.handleCreateBus)
				ar.Get("/buses", s.handleListBuses)
				ar.Get("/buses/{id}", s.handleGetBus)
				ar.Put("/buses/{id}", s.handleUpdateBus)
				ar.Delete("/buses/{id}", s.handleDeleteBus)

				ar.Post("/routes", s.handleCreateRoute)
				ar.Get("/routes", s.handleListRoutes)
				ar.Get("/routes/{id}", s.handleGetRoute)
				ar.Put("/routes/{id}", s.handleUpdateRoute)
				ar.Delete("/routes/{id}", s.handleDeleteRoute)

				ar.Post("/trips", s.handleCreateTrip)
				ar.Put("/trips/{id}", s.handleUpdateTrip)
				ar.Delete("/trips/{id}", s.handleDeleteTrip)
			})
		})
	})
	return r
}

func (s *Server) refreshLimiter() func(http.Handler) http.Handler {
	if s.opts.RefreshLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitAll(s.opts.RefreshLimit, time.Minute)
}

/*
====================================
KNOBS
====================================
*/

// URL returns the API base URL, including BasePath.
func (s *Server) URL() string {
	return s.srv.URL + s.opts.BasePath
}

// Client returns an *http.Client for the underlying test server.
func (s *Server) Client() *http.Client {
	return s.srv.Client()
}

func (s *Server) Close() {
	s.srv.Close()
}

// AddUser registers an account directly, bypassing the register endpoint.
func (s *Server) AddUser(name, email, password, role string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return User{}, err
	}
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[email]; ok {
		return User{}, errors.New("email already registered")
	}
	now := time.Now().UTC()
	acc := &account{
		User: User{
			ID:        uuid.NewString(),
			Email:     email,
			Name:      name,
			Role:      role,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		passwordHash: hash,
	}
	s.accounts[email] = acc
	return acc.User, nil
}

// ExpireAccess invalidates every access token issued so far.
func (s *Server) ExpireAccess() {
	s.mu.Lock()
	s.live = map[string]string{}
	s.mu.Unlock()
}

// FailRefresh makes the refresh endpoint answer 401 while fail is true.
func (s *Server) FailRefresh(fail bool) {
	s.failRefresh.Store(fail)
}

// RefreshCalls returns how many refresh requests reached the handler.
func (s *Server) RefreshCalls() int {
	return int(s.refreshCalls.Load())
}

// ReuseDetections returns how many token families were revoked for reuse.
func (s *Server) ReuseDetections() int {
	return int(s.reuseDetected.Load())
}

// Requests returns a copy of every request received, in arrival order.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsTo returns the recorded requests whose path ends with suffix.
func (s *Server) RequestsTo(suffix string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range s.Requests() {
		if strings.HasSuffix(r.Path, suffix) {
			out = append(out, r)
		}
	}
	return out
}

/*
====================================
MIDDLEWARE
====================================
*/

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearer(r.Header.Get("Authorization"))
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := s.jwt.ParseAccess(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		s.mu.Lock()
		userID, live := s.live[token]
		acc := s.accountByID(claims.UserID)
		s.mu.Unlock()
		if !live || userID != claims.UserID || acc == nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, acc.User)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r).Role != "admin" {
			writeError(w, http.StatusForbidden, "admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUser(r *http.Request) User {
	u, _ := r.Context().Value(ctxKey{}).(User)
	return u
}

func bearer(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

// accountByID requires s.mu.
func (s *Server) accountByID(id string) *account {
	for _, acc := range s.accounts {
		if acc.ID == id {
			return acc
		}
	}
	return nil
}

/*
====================================
TOKENS
====================================
*/

// issue mints an access token and a fresh refresh token family for acc.
func (s *Server) issue(acc *account) (string, internal.RefreshToken, error) {
	access, err := s.jwt.CreateAccess(acc.ID, acc.Email, acc.Role)
	if err != nil {
		return "", internal.RefreshToken{}, err
	}
	refresh, err := internal.NewRefreshToken()
	if err != nil {
		return "", internal.RefreshToken{}, err
	}

	s.mu.Lock()
	s.live[access] = acc.ID
	s.families[refresh.Family] = &family{userID: acc.ID, hash: refresh.Hash()}
	s.mu.Unlock()
	return access, refresh, nil
}

func (s *Server) writeAuth(w http.ResponseWriter, status int, access string, refresh internal.RefreshToken, user *User) {
	resp := AuthResponse{AccessToken: access, User: user}
	if s.opts.CookieMode {
		s.setRefreshCookie(w, refresh.String(), int((7 * 24 * time.Hour).Seconds()))
	} else {
		resp.RefreshToken = refresh.String()
	}
	writeJSON(w, status, resp)
}

func (s *Server) setRefreshCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) presentedRefreshToken(r *http.Request) string {
	if c, err := r.Cookie(s.opts.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = decodeJSON(r, &body)
	return body.RefreshToken
}
