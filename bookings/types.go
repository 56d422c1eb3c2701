package bookings

import "time"

type BusStatus string

const (
	BusStatusActive      BusStatus = "active"
	BusStatusMaintenance BusStatus = "maintenance"
	BusStatusInactive    BusStatus = "inactive"
)

type TripStatus string

const (
	TripStatusScheduled TripStatus = "scheduled"
	TripStatusBoarding  TripStatus = "boarding"
	TripStatusInTransit TripStatus = "in_transit"
	TripStatusCompleted TripStatus = "completed"
	TripStatusCancelled TripStatus = "cancelled"
	TripStatusDelayed   TripStatus = "delayed"
)

type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "available"
	SeatStatusLocked    SeatStatus = "locked"
	SeatStatusBooked    SeatStatus = "booked"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusPaid      BookingStatus = "paid"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusExpired   BookingStatus = "expired"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusRefunded  BookingStatus = "refunded"
)

type PaymentGateway string

const (
	GatewayPayOS   PaymentGateway = "payos"
	GatewayMoMo    PaymentGateway = "momo"
	GatewayZaloPay PaymentGateway = "zalopay"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Layout cell markers that are not seat numbers.
const (
	LayoutAisle = "aisle"
	LayoutEmpty = "empty"
)

// SeatLayout is the physical seat grid of a bus. Layout rows hold seat numbers
// ("A1") or LayoutAisle / LayoutEmpty.
type SeatLayout struct {
	Rows       int        `json:"rows"`
	Columns    int        `json:"columns"`
	TotalSeats int        `json:"total_seats"`
	Floors     int        `json:"floors"`
	Layout     [][]string `json:"layout"`
}

type Bus struct {
	ID              string     `json:"id,omitempty"`
	LicensePlate    string     `json:"license_plate"`
	BusType         string     `json:"bus_type"`
	Manufacturer    string     `json:"manufacturer,omitempty"`
	Model           string     `json:"model,omitempty"`
	Year            int        `json:"year,omitempty"`
	OperatorName    string     `json:"operator_name,omitempty"`
	SeatLayout      SeatLayout `json:"seat_layout"`
	Amenities       []string   `json:"amenities,omitempty"`
	Status          BusStatus  `json:"status,omitempty"`
	LastMaintenance *time.Time `json:"last_maintenance,omitempty"`
	CreatedAt       time.Time  `json:"created_at,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at,omitempty"`
}

type Route struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	FromCity    string    `json:"from_city"`
	ToCity      string    `json:"to_city"`
	Distance    float64   `json:"distance"`
	BasePrice   float64   `json:"base_price"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

type Trip struct {
	ID            string     `json:"id"`
	BusID         string     `json:"bus_id"`
	RouteID       string     `json:"route_id"`
	DepartureTime time.Time  `json:"departure_time"`
	ArrivalTime   time.Time  `json:"arrival_time"`
	Duration      int        `json:"duration"` // minutes
	Price         float64    `json:"price"`
	Status        TripStatus `json:"status"`
	DriverName    string     `json:"driver_name,omitempty"`
	DriverPhone   string     `json:"driver_phone,omitempty"`
	Bus           *Bus       `json:"bus,omitempty"`
	Route         *Route     `json:"route,omitempty"`
	CreatedAt     time.Time  `json:"created_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at,omitempty"`
}

// Seat is the availability of one seat on one trip.
type Seat struct {
	ID          string     `json:"id"`
	TripID      string     `json:"trip_id"`
	SeatNumber  string     `json:"seat_number"`
	Status      SeatStatus `json:"status"`
	LockedUntil *time.Time `json:"locked_until,omitempty"`
	LockedBy    string     `json:"locked_by,omitempty"`
	BookingID   string     `json:"booking_id,omitempty"`
}

type Booking struct {
	ID           string        `json:"id"`
	TripID       string        `json:"trip_id"`
	UserID       string        `json:"user_id,omitempty"`
	ContactName  string        `json:"contact_name"`
	ContactEmail string        `json:"contact_email"`
	ContactPhone string        `json:"contact_phone"`
	Seats        []string      `json:"seats"`
	TotalPrice   float64       `json:"total_price"`
	Status       BookingStatus `json:"status"`
	BookingCode  string        `json:"booking_code"`
	ExpiresAt    *time.Time    `json:"expires_at,omitempty"`
	CancelledAt  *time.Time    `json:"cancelled_at,omitempty"`
	Trip         *Trip         `json:"trip,omitempty"`
	Payment      *Payment      `json:"payment,omitempty"`
	Tickets      []Ticket      `json:"tickets,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at,omitempty"`
}

// Expired reports whether a pending booking's hold has lapsed at now.
func (b *Booking) Expired(now time.Time) bool {
	if b == nil || b.Status != BookingStatusPending || b.ExpiresAt == nil {
		return false
	}
	return now.After(*b.ExpiresAt)
}

type Payment struct {
	ID               string         `json:"id"`
	BookingID        string         `json:"booking_id"`
	Gateway          PaymentGateway `json:"gateway"`
	GatewayPaymentID string         `json:"gateway_payment_id,omitempty"`
	Amount           float64        `json:"amount"`
	Currency         string         `json:"currency"`
	Status           PaymentStatus  `json:"status"`
	PaymentMethod    string         `json:"payment_method,omitempty"`
	TransactionID    string         `json:"transaction_id,omitempty"`
	FailureReason    *string        `json:"failure_reason,omitempty"`
	IdempotencyKey   string         `json:"idempotency_key"`
	PaidAt           *time.Time     `json:"paid_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// PaymentIntent is the gateway redirect returned when a payment is created.
type PaymentIntent struct {
	PaymentID  string `json:"payment_id"`
	PaymentURL string `json:"payment_url"`
	ExpiresIn  int    `json:"expires_in"` // seconds

	// IdempotencyKey is the key the create call was sent with.
	IdempotencyKey string `json:"-"`
}

type Ticket struct {
	ID             string     `json:"id"`
	BookingID      string     `json:"booking_id"`
	PassengerName  string     `json:"passenger_name"`
	PassengerPhone string     `json:"passenger_phone,omitempty"`
	PassengerEmail string     `json:"passenger_email,omitempty"`
	SeatNumber     string     `json:"seat_number"`
	TicketCode     string     `json:"ticket_code"`
	IsCheckedIn    bool       `json:"is_checked_in"`
	CheckedInAt    *time.Time `json:"checked_in_at,omitempty"`
}

type QuickAction struct {
	Label  string `json:"label"`
	Action string `json:"action"`
	Data   string `json:"data,omitempty"`
}

type ChatReply struct {
	Message        string            `json:"message"`
	Suggestions    []string          `json:"suggestions,omitempty"`
	QuickActions   []QuickAction     `json:"quick_actions,omitempty"`
	ConversationID string            `json:"conversation_id"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

type ChatMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Page selects a page of a list endpoint. Zero values let the backend choose.
type Page struct {
	Page  int
	Limit int
}
