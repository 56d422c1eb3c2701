package bookings

import (
	"context"
	"time"

	goAuthClient "github.com/MrEthical07/goAuthClient"
)

// TripQuery is the public trip search. Date, when set, is sent as YYYY-MM-DD.
type TripQuery struct {
	FromCity string
	ToCity   string
	Date     time.Time
	Page
}

// SearchTrips calls GET /trips.
func (c *Client) SearchTrips(ctx context.Context, q TripQuery) ([]Trip, error) {
	params := q.Page.values()
	params.Set("from_city", q.FromCity)
	params.Set("to_city", q.ToCity)
	if !q.Date.IsZero() {
		params.Set("date", q.Date.Format(time.DateOnly))
	}

	var out struct {
		Trips []Trip `json:"trips"`
	}
	if err := c.get(ctx, goAuthClient.WithQuery("/trips", params), &out); err != nil {
		return nil, err
	}
	return out.Trips, nil
}

func (c *Client) Trip(ctx context.Context, id string) (*Trip, error) {
	path, err := resource("/trips", id)
	if err != nil {
		return nil, err
	}
	var out Trip
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TripSeats returns seat availability for a trip.
func (c *Client) TripSeats(ctx context.Context, id string) ([]Seat, error) {
	path, err := resource("/trips", id, "seats")
	if err != nil {
		return nil, err
	}
	var out struct {
		Seats []Seat `json:"seats"`
	}
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Seats, nil
}
