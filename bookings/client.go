package bookings

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	goAuthClient "github.com/MrEthical07/goAuthClient"
)

// Doer sends one JSON request and decodes the 2xx response into out.
// *goAuthClient.Client implements it.
type Doer interface {
	DoJSON(ctx context.Context, method, path string, in, out any) error
}

var _ Doer = (*goAuthClient.Client)(nil)

// ErrMissingID is returned when a call needs a resource ID or code and got "".
var ErrMissingID = errors.New("bookings: missing id")

// Client wraps a Doer with the booking API's endpoints.
type Client struct {
	doer Doer
}

func New(d Doer) *Client {
	return &Client{doer: d}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doer.DoJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.doer.DoJSON(ctx, http.MethodPost, path, in, out)
}

func (c *Client) put(ctx context.Context, path string, in, out any) error {
	return c.doer.DoJSON(ctx, http.MethodPut, path, in, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.doer.DoJSON(ctx, http.MethodDelete, path, nil, nil)
}

// resource joins escaped path segments under base.
func resource(base string, segments ...string) (string, error) {
	var b strings.Builder
	b.WriteString(base)
	for _, s := range segments {
		if strings.TrimSpace(s) == "" {
			return "", ErrMissingID
		}
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String(), nil
}

func (p Page) values() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}
