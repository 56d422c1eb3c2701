package bookings

import (
	"context"

	"github.com/google/uuid"
)

type CreatePaymentInput struct {
	BookingID string         `json:"booking_id"`
	Gateway   PaymentGateway `json:"gateway"`
	// IdempotencyKey defaults to a random UUID. Reuse the same key when retrying
	// a create that may have reached the backend.
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// CreatePayment starts a gateway payment for a pending booking. Gateway
// defaults to payos.
func (c *Client) CreatePayment(ctx context.Context, in CreatePaymentInput) (*PaymentIntent, error) {
	if in.BookingID == "" {
		return nil, ErrMissingID
	}
	if in.Gateway == "" {
		in.Gateway = GatewayPayOS
	}
	if in.IdempotencyKey == "" {
		in.IdempotencyKey = uuid.NewString()
	}

	var out PaymentIntent
	if err := c.post(ctx, "/payments", in, &out); err != nil {
		return nil, err
	}
	out.IdempotencyKey = in.IdempotencyKey
	return &out, nil
}

func (c *Client) Payment(ctx context.Context, id string) (*Payment, error) {
	path, err := resource("/payments", id)
	if err != nil {
		return nil, err
	}
	var out Payment
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
