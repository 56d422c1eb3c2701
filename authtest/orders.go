package authtest

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// BookingHold is how long a pending booking keeps its seats locked.
const BookingHold = 15 * time.Minute

/*
====================================
BOOKINGS
====================================
*/

func (s *Server) handleInitiateBooking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TripID       string   `json:"trip_id"`
		SeatNumbers  []string `json:"seat_numbers"`
		ContactName  string   `json:"contact_name"`
		ContactEmail string   `json:"contact_email"`
		ContactPhone string   `json:"contact_phone"`
	}
	if err := decodeJSON(r, &req); err != nil || req.TripID == "" || len(req.SeatNumbers) == 0 {
		writeError(w, http.StatusBadRequest, "trip_id and seat_numbers are required")
		return
	}
	if len(req.SeatNumbers) > 6 {
		writeError(w, http.StatusBadRequest, "at most 6 seats per booking")
		return
	}
	user := currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	trip, ok := s.trips[req.TripID]
	if !ok {
		writeError(w, http.StatusNotFound, "Trip not found")
		return
	}
	seats := s.seats[req.TripID]
	numbers := make([]string, 0, len(req.SeatNumbers))
	for _, n := range req.SeatNumbers {
		n = strings.ToUpper(strings.TrimSpace(n))
		seat, ok := seats[n]
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown seat %s", n))
			return
		}
		if seat.Status != "available" || slices.Contains(numbers, n) {
			writeError(w, http.StatusConflict, fmt.Sprintf("seat %s is not available", n))
			return
		}
		numbers = append(numbers, n)
	}

	now := time.Now().UTC()
	expires := now.Add(BookingHold)
	b := &Booking{
		ID:           uuid.NewString(),
		TripID:       trip.ID,
		UserID:       user.ID,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Seats:        numbers,
		TotalPrice:   trip.Price * float64(len(numbers)),
		Status:       "pending",
		BookingCode:  "BK" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8]),
		ExpiresAt:    &expires,
		CreatedAt:    now,
	}
	for _, n := range numbers {
		seats[n].Status = "locked"
		seats[n].BookingID = b.ID
	}
	s.bookings[b.ID] = b
	writeJSON(w, http.StatusCreated, *b)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	b, ok := s.ownedBooking(r, chi.URLParam(r, "id"))
	var out Booking
	if ok {
		out = *b
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Booking not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleMyBookings answers with a bare array, newest first.
func (s *Server) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r).ID
	s.mu.Lock()
	out := []Booking{}
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	s.mu.Unlock()
	slices.SortFunc(out, func(a, b Booking) int { return b.CreatedAt.Compare(a.CreatedAt) })
	writeJSON(w, http.StatusOK, paginate(r, out))
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.ownedBooking(r, chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Booking not found")
		return
	}
	if b.Status != "pending" && b.Status != "confirmed" {
		writeError(w, http.StatusConflict, "booking cannot be cancelled")
		return
	}
	now := time.Now().UTC()
	b.Status = "cancelled"
	b.CancelledAt = &now
	for _, n := range b.Seats {
		if seat, ok := s.seats[b.TripID][n]; ok && seat.BookingID == b.ID {
			seat.Status = "available"
			seat.BookingID = ""
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking cancelled"})
}

// ownedBooking requires s.mu. Admins see every booking; other users only their own.
func (s *Server) ownedBooking(r *http.Request, id string) (*Booking, bool) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, false
	}
	user := currentUser(r)
	if b.UserID != user.ID && user.Role != "admin" {
		return nil, false
	}
	return b, true
}

/*
====================================
PAYMENTS
====================================
*/

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookingID      string `json:"booking_id"`
		Gateway        string `json:"gateway"`
		IdempotencyKey string `json:"idempotency_key"`
	}
	if err := decodeJSON(r, &req); err != nil || req.BookingID == "" {
		writeError(w, http.StatusBadRequest, "booking_id is required")
		return
	}
	switch req.Gateway {
	case "":
		req.Gateway = "payos"
	case "payos", "momo", "zalopay":
	default:
		writeError(w, http.StatusBadRequest, "unsupported gateway")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.paymentKeys[req.IdempotencyKey]; ok && req.IdempotencyKey != "" {
		s.writeIntent(w, http.StatusOK, s.payments[id])
		return
	}
	b, ok := s.ownedBooking(r, req.BookingID)
	if !ok {
		writeError(w, http.StatusNotFound, "Booking not found")
		return
	}
	if b.Status != "pending" {
		writeError(w, http.StatusConflict, "booking is not awaiting payment")
		return
	}
	p := &Payment{
		ID:             uuid.NewString(),
		BookingID:      b.ID,
		Gateway:        req.Gateway,
		Amount:         b.TotalPrice,
		Currency:       "VND",
		Status:         "pending",
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      time.Now().UTC(),
	}
	s.payments[p.ID] = p
	if req.IdempotencyKey != "" {
		s.paymentKeys[req.IdempotencyKey] = p.ID
	}
	s.writeIntent(w, http.StatusCreated, p)
}

func (s *Server) writeIntent(w http.ResponseWriter, status int, p *Payment) {
	writeJSON(w, status, map[string]any{
		"payment_id":  p.ID,
		"payment_url": s.srv.URL + "/pay/" + p.Gateway + "/" + p.ID,
		"expires_in":  int(BookingHold.Seconds()),
	})
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p, ok := s.payments[chi.URLParam(r, "id")]
	if ok {
		_, ok = s.ownedBooking(r, p.BookingID)
	}
	var out Payment
	if ok {
		out = *p
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Payment not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

/*
====================================
TICKETS
====================================
*/

func (s *Server) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	t, ok := s.ownedTicket(r, chi.URLParam(r, "code"))
	var out Ticket
	if ok {
		out = *t
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Ticket not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.ownedTicket(r, chi.URLParam(r, "code"))
	if !ok {
		writeError(w, http.StatusNotFound, "Ticket not found")
		return
	}
	if t.IsCheckedIn {
		writeError(w, http.StatusConflict, "ticket already checked in")
		return
	}
	now := time.Now().UTC()
	t.IsCheckedIn = true
	t.CheckedInAt = &now
	s.syncTicket(t)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Checked in"})
}

// ownedTicket requires s.mu.
func (s *Server) ownedTicket(r *http.Request, code string) (*Ticket, bool) {
	t, ok := s.tickets[code]
	if !ok {
		return nil, false
	}
	if _, ok := s.ownedBooking(r, t.BookingID); !ok {
		return nil, false
	}
	return t, true
}

// syncTicket copies t into its booking's ticket list. Requires s.mu.
func (s *Server) syncTicket(t *Ticket) {
	b, ok := s.bookings[t.BookingID]
	if !ok {
		return
	}
	for i := range b.Tickets {
		if b.Tickets[i].TicketCode == t.TicketCode {
			b.Tickets[i] = *t
		}
	}
}

/*
====================================
KNOBS
====================================
*/

var (
	ErrUnknownPayment = errors.New("authtest: unknown payment")
	ErrPaymentSettled = errors.New("authtest: payment already settled")
)

// ConfirmPayment plays the gateway callback for paymentID: the payment
// completes, its booking is confirmed, the seats become booked and one ticket
// per seat is issued.
func (s *Server) ConfirmPayment(paymentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[paymentID]
	if !ok {
		return ErrUnknownPayment
	}
	if p.Status != "pending" {
		return ErrPaymentSettled
	}
	b := s.bookings[p.BookingID]
	if b == nil || b.Status != "pending" {
		return ErrPaymentSettled
	}

	now := time.Now().UTC()
	p.Status = "completed"
	p.PaidAt = &now
	b.Status = "confirmed"
	b.ExpiresAt = nil
	for _, n := range b.Seats {
		if seat, ok := s.seats[b.TripID][n]; ok {
			seat.Status = "booked"
		}
		t := &Ticket{
			ID:            uuid.NewString(),
			BookingID:     b.ID,
			PassengerName: b.ContactName,
			SeatNumber:    n,
			TicketCode:    b.BookingCode + "-" + n,
		}
		s.tickets[t.TicketCode] = t
		b.Tickets = append(b.Tickets, *t)
	}
	return nil
}

// Trips returns the current trip catalogue ordered by departure.
func (s *Server) Trips() []Trip {
	s.mu.Lock()
	out := make([]Trip, 0, len(s.trips))
	for _, t := range s.trips {
		out = append(out, s.tripView(t))
	}
	s.mu.Unlock()
	slices.SortFunc(out, func(a, b Trip) int { return a.DepartureTime.Compare(b.DepartureTime) })
	return out
}
