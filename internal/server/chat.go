package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 10 * time.Second,
	CheckOrigin:      func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	ConversationID string `json:"conversation_id"` // empty starts a conversation
	Content        string `json:"content"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type           string `json:"type"` // "response" or "error"
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
	Route          string `json:"route,omitempty"`
	Outcome        string `json:"outcome,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.send(conn, wsResponse{Type: "error", Content: "invalid message format"})
			continue
		}

		reply, _, err := s.chat(r, req.ConversationID, req.Content)
		if err != nil {
			s.send(conn, wsResponse{Type: "error", ConversationID: req.ConversationID, Content: err.Error()})
			continue
		}
		s.send(conn, wsResponse{
			Type:           "response",
			ConversationID: reply.ConversationID,
			Content:        reply.Text,
			Route:          string(reply.Route),
			Outcome:        string(reply.Outcome),
		})
	}
}

func (s *Server) send(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		s.logger.Warn("websocket write failed", "error", err)
	}
}
