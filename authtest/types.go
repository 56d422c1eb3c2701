package authtest

import (
	"encoding/json"
	"net/http"
	"time"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         *User  `json:"user,omitempty"`
}

type SeatLayout struct {
	Rows       int        `json:"rows"`
	Columns    int        `json:"columns"`
	TotalSeats int        `json:"total_seats"`
	Floors     int        `json:"floors"`
	Layout     [][]string `json:"layout"`
}

type Bus struct {
	ID           string     `json:"id"`
	LicensePlate string     `json:"license_plate"`
	BusType      string     `json:"bus_type"`
	OperatorName string     `json:"operator_name,omitempty"`
	SeatLayout   SeatLayout `json:"seat_layout"`
	Amenities    []string   `json:"amenities,omitempty"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type Route struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	FromCity    string    `json:"from_city"`
	ToCity      string    `json:"to_city"`
	Distance    float64   `json:"distance"`
	BasePrice   float64   `json:"base_price"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Trip struct {
	ID            string    `json:"id"`
	BusID         string    `json:"bus_id"`
	RouteID       string    `json:"route_id"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	Duration      int       `json:"duration"`
	Price         float64   `json:"price"`
	Status        string    `json:"status"`
	DriverName    string    `json:"driver_name,omitempty"`
	DriverPhone   string    `json:"driver_phone,omitempty"`
	Bus           *Bus      `json:"bus,omitempty"`
	Route         *Route    `json:"route,omitempty"`
}

type Seat struct {
	ID         string `json:"id"`
	TripID     string `json:"trip_id"`
	SeatNumber string `json:"seat_number"`
	Status     string `json:"status"`
	BookingID  string `json:"booking_id,omitempty"`
}

type Booking struct {
	ID           string     `json:"id"`
	TripID       string     `json:"trip_id"`
	UserID       string     `json:"user_id,omitempty"`
	ContactName  string     `json:"contact_name"`
	ContactEmail string     `json:"contact_email"`
	ContactPhone string     `json:"contact_phone"`
	Seats        []string   `json:"seats"`
	TotalPrice   float64    `json:"total_price"`
	Status       string     `json:"status"`
	BookingCode  string     `json:"booking_code"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	Tickets      []Ticket   `json:"tickets,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type Payment struct {
	ID             string     `json:"id"`
	BookingID      string     `json:"booking_id"`
	Gateway        string     `json:"gateway"`
	Amount         float64    `json:"amount"`
	Currency       string     `json:"currency"`
	Status         string     `json:"status"`
	IdempotencyKey string     `json:"idempotency_key"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type Ticket struct {
	ID            string     `json:"id"`
	BookingID     string     `json:"booking_id"`
	PassengerName string     `json:"passenger_name"`
	SeatNumber    string     `json:"seat_number"`
	TicketCode    string     `json:"ticket_code"`
	IsCheckedIn   bool       `json:"is_checked_in"`
	CheckedInAt   *time.Time `json:"checked_in_at,omitempty"`
}

type chatMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(v)
}
