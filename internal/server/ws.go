package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/raphaelgruber/recall-go/internal/chatbot"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local deployments sit behind the UI's reverse proxy
	},
}

// chatMessage is one inbound websocket frame.
type chatMessage struct {
	Input string `json:"input"`
}

// handleChat runs an interactive session over a websocket. The user
// identity binds at connect time; every subsequent frame is one query
// against that user's pipeline.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))

	pipeline, err := s.manager.GetOrCreate(userID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.logger.Info("chat session opened", "user_id", userID)

	for {
		var msg chatMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("chat session read failed", "user_id", userID, "error", err)
			}
			return
		}

		result, err := pipeline.Query(r.Context(), msg.Input)
		if err != nil {
			reply := ErrorResponse{Error: genericFailure}
			if errors.Is(err, chatbot.ErrEmptyInput) {
				reply.Error = err.Error()
			} else {
				s.logger.Error("query failed", "user_id", userID, "error", err)
			}
			if err := conn.WriteJSON(reply); err != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(QueryResponse{
			NaturalResponse: result.NaturalResponse,
			Results:         result.References,
		}); err != nil {
			return
		}
	}
}
