package server

import (
	"context"

	"github.com/mrJackie7/coderdev-hub/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler returns a websocket handler that registers connections with the Hub.
// Authentication is handled by route middleware and userID is read from connection locals.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		middleware.ActiveWebSockets.Inc()
		defer middleware.ActiveWebSockets.Dec()

		userID, _ := conn.Locals(middleware.LocalUserID).(string)
		if userID == "" {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		// Register connection with scaling guardrails
		client, err := s.hub.Register(userID, conn)
		if err != nil {
			s.hub.Log().LogRefused(context.Background(), userID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		s.hub.Log().LogConnect(context.Background(), userID, s.hub.ConnectionCount())
		defer s.hub.Log().LogDisconnect(context.Background(), userID, "closed")

		// Start pumps; ReadPump returns when the client disconnects
		go client.WritePump()
		client.ReadPump()
	})
}
