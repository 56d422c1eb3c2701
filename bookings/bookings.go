package bookings

import (
	"context"
	"errors"

	goAuthClient "github.com/MrEthical07/goAuthClient"
)

// MaxSeatsPerBooking caps how many seats one booking may hold.
const MaxSeatsPerBooking = 6

var (
	ErrNoSeats        = errors.New("bookings: at least one seat is required")
	ErrTooManySeats   = errors.New("bookings: too many seats")
	ErrMissingContact = errors.New("bookings: contact name, email and phone are required")
)

type InitiateBookingInput struct {
	TripID       string   `json:"trip_id"`
	SeatNumbers  []string `json:"seat_numbers"`
	ContactName  string   `json:"contact_name"`
	ContactEmail string   `json:"contact_email"`
	ContactPhone string   `json:"contact_phone"`
}

func (in InitiateBookingInput) validate() error {
	if in.TripID == "" {
		return ErrMissingID
	}
	switch n := len(in.SeatNumbers); {
	case n == 0:
		return ErrNoSeats
	case n > MaxSeatsPerBooking:
		return ErrTooManySeats
	}
	if in.ContactName == "" || in.ContactEmail == "" || in.ContactPhone == "" {
		return ErrMissingContact
	}
	return nil
}

// InitiateBooking holds seats on a trip. The booking starts pending until paid.
func (c *Client) InitiateBooking(ctx context.Context, in InitiateBookingInput) (*Booking, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var out Booking
	if err := c.post(ctx, "/bookings", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Booking(ctx context.Context, id string) (*Booking, error) {
	path, err := resource("/bookings", id)
	if err != nil {
		return nil, err
	}
	var out Booking
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyBookings lists the current user's bookings.
func (c *Client) MyBookings(ctx context.Context, p Page) ([]Booking, error) {
	var out []Booking
	if err := c.get(ctx, goAuthClient.WithQuery("/bookings", p.values()), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CancelBooking(ctx context.Context, id string) error {
	path, err := resource("/bookings", id, "cancel")
	if err != nil {
		return err
	}
	return c.post(ctx, path, nil, nil)
}
