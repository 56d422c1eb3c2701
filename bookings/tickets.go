package bookings

import "context"

func (c *Client) Ticket(ctx context.Context, code string) (*Ticket, error) {
	path, err := resource("/tickets", code)
	if err != nil {
		return nil, err
	}
	var out Ticket
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckIn marks a ticket as boarded.
func (c *Client) CheckIn(ctx context.Context, code string) error {
	path, err := resource("/tickets", code, "checkin")
	if err != nil {
		return err
	}
	return c.post(ctx, path, nil, nil)
}
