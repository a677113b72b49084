package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"campus-chat/internal/chat"
	"campus-chat/internal/hub"
	"campus-chat/internal/presence"
	"campus-chat/internal/services"
	"campus-chat/models"
)

// WS bundles everything the websocket route needs.
type WS struct {
	Hub        *hub.Hub
	Ingest     *chat.Ingest
	Dispatcher *chat.Dispatcher
	Groups     *services.GroupService
	Presence   presence.Tracker
	Validate   *validator.Validate
	Log        zerolog.Logger
}

// Handler runs one connection: register with the hub, start the write pump,
// then loop reading client events until the socket closes. Disconnect
// removes the connection from every joined room exactly once via
// Hub.Unregister; an in-flight send the connection already issued still
// completes on this goroutine before the loop exits.
func (h *WS) Handler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		userID := c.Locals("user_id").(string)

		conn := h.Hub.Register(userID)
		if err := h.Presence.Connected(context.Background(), userID); err != nil {
			h.Log.Warn().Err(err).Str("user", userID).Msg("presence connect failed")
		}

		defer func() {
			h.Hub.Unregister(conn.ID)
			if err := h.Presence.Disconnected(context.Background(), userID); err != nil {
				h.Log.Warn().Err(err).Str("user", userID).Msg("presence disconnect failed")
			}
			c.Close()
		}()

		// Write pump: the only goroutine writing to this socket. Fan-out
		// enqueues into the conn's buffer and never touches the socket.
		go func() {
			for {
				select {
				case ev := <-conn.Events():
					if err := c.WriteJSON(ev); err != nil {
						return
					}
				case <-conn.Done():
					return
				}
			}
		}()

		conn.Deliver(models.ServerEvent{Event: models.EventConnected})

		for {
			msgType, raw, err := c.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.Log.Debug().Err(err).Str("conn", conn.ID).Msg("websocket closed")
				}
				return
			}
			if msgType != websocket.TextMessage {
				continue
			}
			h.handleEvent(conn, raw)
		}
	})
}
