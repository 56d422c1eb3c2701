package bookings

import (
	"context"
	"errors"
	"net/url"

	goAuthClient "github.com/MrEthical07/goAuthClient"
)

var ErrEmptyMessage = errors.New("bookings: empty chat message")

type ChatInput struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	Language       string `json:"language,omitempty"` // "vi" or "en"
}

// SendMessage posts to the support chatbot. Leave ConversationID empty to start
// a new conversation; the reply carries the ID to continue it.
func (c *Client) SendMessage(ctx context.Context, in ChatInput) (*ChatReply, error) {
	if in.Message == "" {
		return nil, ErrEmptyMessage
	}
	var out ChatReply
	if err := c.post(ctx, "/chatbot/message", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChatHistory(ctx context.Context, conversationID string) ([]ChatMessage, error) {
	if conversationID == "" {
		return nil, ErrMissingID
	}
	var out struct {
		Messages []ChatMessage `json:"messages"`
	}
	path := goAuthClient.WithQuery("/chatbot/history", url.Values{"conversation_id": {conversationID}})
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}
