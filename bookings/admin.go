package bookings

import (
	"context"
	"time"

	goAuthClient "github.com/MrEthical07/goAuthClient"
)

/*
====================================
BUSES
====================================
*/

func (c *Client) CreateBus(ctx context.Context, bus Bus) (*Bus, error) {
	var out Bus
	if err := c.post(ctx, "/admin/buses", bus, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListBuses lists the fleet. An empty status lists every bus.
func (c *Client) ListBuses(ctx context.Context, p Page, status BusStatus) ([]Bus, error) {
	q := p.values()
	q.Set("status", string(status))
	var out struct {
		Buses []Bus `json:"buses"`
	}
	if err := c.get(ctx, goAuthClient.WithQuery("/admin/buses", q), &out); err != nil {
		return nil, err
	}
	return out.Buses, nil
}

func (c *Client) Bus(ctx context.Context, id string) (*Bus, error) {
	path, err := resource("/admin/buses", id)
	if err != nil {
		return nil, err
	}
	var out Bus
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateBus(ctx context.Context, id string, bus Bus) (*Bus, error) {
	path, err := resource("/admin/buses", id)
	if err != nil {
		return nil, err
	}
	var out Bus
	if err := c.put(ctx, path, bus, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteBus(ctx context.Context, id string) error {
	path, err := resource("/admin/buses", id)
	if err != nil {
		return err
	}
	return c.delete(ctx, path)
}

/*
====================================
ROUTES
====================================
*/

func (c *Client) CreateRoute(ctx context.Context, r Route) (*Route, error) {
	var out Route
	if err := c.post(ctx, "/admin/routes", r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListRoutes(ctx context.Context, p Page) ([]Route, error) {
	var out struct {
		Routes []Route `json:"routes"`
	}
	if err := c.get(ctx, goAuthClient.WithQuery("/admin/routes", p.values()), &out); err != nil {
		return nil, err
	}
	return out.Routes, nil
}

func (c *Client) Route(ctx context.Context, id string) (*Route, error) {
	path, err := resource("/admin/routes", id)
	if err != nil {
		return nil, err
	}
	var out Route
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRoute(ctx context.Context, id string, r Route) (*Route, error) {
	path, err := resource("/admin/routes", id)
	if err != nil {
		return nil, err
	}
	var out Route
	if err := c.put(ctx, path, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRoute(ctx context.Context, id string) error {
	path, err := resource("/admin/routes", id)
	if err != nil {
		return err
	}
	return c.delete(ctx, path)
}

/*
====================================
TRIPS
====================================
*/

// TripInput schedules or edits a trip. Zero fields are omitted on update.
type TripInput struct {
	BusID         string     `json:"bus_id,omitempty"`
	RouteID       string     `json:"route_id,omitempty"`
	DepartureTime time.Time  `json:"departure_time,omitzero"`
	ArrivalTime   time.Time  `json:"arrival_time,omitzero"`
	Price         float64    `json:"price,omitempty"`
	Status        TripStatus `json:"status,omitempty"`
	DriverName    string     `json:"driver_name,omitempty"`
	DriverPhone   string     `json:"driver_phone,omitempty"`
}

func (c *Client) CreateTrip(ctx context.Context, in TripInput) (*Trip, error) {
	if in.BusID == "" || in.RouteID == "" {
		return nil, ErrMissingID
	}
	var out Trip
	if err := c.post(ctx, "/admin/trips", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTrip(ctx context.Context, id string, in TripInput) (*Trip, error) {
	path, err := resource("/admin/trips", id)
	if err != nil {
		return nil, err
	}
	var out Trip
	if err := c.put(ctx, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTrip(ctx context.Context, id string) error {
	path, err := resource("/admin/trips", id)
	if err != nil {
		return err
	}
	return c.delete(ctx, path)
}
