package authtest

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

func (s *Server) handleChatbot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message        string `json:"message"`
		ConversationID string `json:"conversation_id"`
		Language       string `json:"language"`
	}
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.ConversationID == "" {
		req.ConversationID = uuid.NewString()
	}

	reply := "You said: " + req.Message
	if req.Language == "vi" {
		reply = "Bạn đã nói: " + req.Message
	}
	now := time.Now().UTC().Format(time.RFC3339)
	key := currentUser(r).ID + "/" + req.ConversationID

	s.mu.Lock()
	s.chats[key] = append(s.chats[key],
		chatMessage{Role: "user", Content: req.Message, Timestamp: now},
		chatMessage{Role: "assistant", Content: reply, Timestamp: now},
	)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"message":         reply,
		"conversation_id": req.ConversationID,
		"suggestions":     []string{"Search trips", "My bookings"},
		"quick_actions": []map[string]string{
			{"label": "Search trips", "action": "search_trips"},
		},
	})
}

// handleChatHistory only returns conversations owned by the caller.
func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("conversation_id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "conversation_id is required")
		return
	}
	s.mu.Lock()
	msgs := append([]chatMessage{}, s.chats[currentUser(r).ID+"/"+id]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}
