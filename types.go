package goAuthClient

import "time"

// Roles assigned by the booking backend.
const (
	RoleGuest     = "guest"
	RolePassenger = "passenger"
	RoleAdmin     = "admin"
)

// User is the profile returned alongside tokens by login and register.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Avatar    string    `json:"avatar,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthResponse is the body of a successful login, register or refresh call.
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// LoginInput is the login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput is the registration request body.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// LogoutReason records why a session was torn down.
type LogoutReason uint8

const (
	// LogoutReasonUser is an explicit Logout call.
	LogoutReasonUser LogoutReason = iota
	// LogoutReasonSessionExpired is a failed refresh during 401 recovery.
	LogoutReasonSessionExpired
)

func (r LogoutReason) String() string {
	switch r {
	case LogoutReasonUser:
		return "user"
	case LogoutReasonSessionExpired:
		return "session_expired"
	default:
		return "unknown"
	}
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	out := *u
	return &out
}
