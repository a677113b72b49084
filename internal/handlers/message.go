package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"campus-chat/internal/chat"
	"campus-chat/internal/hub"
	"campus-chat/models"
)

// handleEvent parses and routes one inbound client event. Invalid shapes
// are rejected here at the boundary; dispatch logic below only ever sees a
// well-formed envelope.
func (h *WS) handleEvent(conn *hub.Conn, raw []byte) {
	var ev models.ClientEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		conn.Deliver(errorEvent("invalid_payload", "malformed JSON"))
		return
	}
	if err := h.Validate.Struct(ev); err != nil {
		conn.Deliver(errorEvent("invalid_payload", "unknown or incomplete event"))
		return
	}

	switch ev.Event {
	case models.EventJoinUser:
		h.handleJoinUser(conn, ev, true)
	case models.EventLeaveUser:
		h.handleJoinUser(conn, ev, false)
	case models.EventJoinGroup:
		h.handleJoinGroup(conn, ev, true)
	case models.EventLeaveGroup:
		h.handleJoinGroup(conn, ev, false)
	case models.EventSend:
		h.handleSend(conn, ev)
	case models.EventSendDirect:
		h.handleSendDirect(conn, ev)
	}
}

// handleJoinUser joins or leaves the caller's personal room. The claimed
// user ID must match the authenticated session; only the owning user may
// subscribe to a personal room.
func (h *WS) handleJoinUser(conn *hub.Conn, ev models.ClientEvent, join bool) {
	if ev.UserID == "" || ev.UserID != conn.UserID {
		conn.Deliver(errorEvent("forbidden", "userId does not match authenticated user"))
		return
	}

	roomKey := models.PersonalRoom(ev.UserID)
	if join {
		h.Hub.Join(conn.ID, roomKey)
		conn.Deliver(models.ServerEvent{Event: models.EventJoined, Room: roomKey})
	} else {
		h.Hub.Leave(conn.ID, roomKey)
		conn.Deliver(models.ServerEvent{Event: models.EventLeft, Room: roomKey})
	}
}

func (h *WS) handleJoinGroup(conn *hub.Conn, ev models.ClientEvent, join bool) {
	if ev.GroupID == "" {
		conn.Deliver(errorEvent("invalid_payload", "groupId required"))
		return
	}

	roomKey := models.GroupRoom(ev.GroupID)
	if !join {
		h.Hub.Leave(conn.ID, roomKey)
		conn.Deliver(models.ServerEvent{Event: models.EventLeft, Room: roomKey})
		return
	}

	ok, err := h.Groups.CanJoin(context.Background(), ev.GroupID, conn.UserID)
	if err != nil {
		h.Log.Error().Err(err).Str("group", ev.GroupID).Msg("membership lookup failed")
		conn.Deliver(errorEvent("internal", "membership lookup failed"))
		return
	}
	if !ok {
		conn.Deliver(errorEvent("forbidden", "not a member of this group"))
		return
	}

	h.Hub.Join(conn.ID, roomKey)
	conn.Deliver(models.ServerEvent{Event: models.EventJoined, Room: roomKey})
}

// handleSend runs the full distribution path for a group message: validate,
// durable write, then fan-out. Nothing is dispatched unless the write
// succeeded, and failures go back to the originating connection only.
func (h *WS) handleSend(conn *hub.Conn, ev models.ClientEvent) {
	msg, err := h.Ingest.Send(context.Background(), conn.UserID, ev.GroupID, ev.Text)
	if err != nil {
		conn.Deliver(ingestError(err))
		return
	}
	h.Dispatcher.Dispatch(msg)
}

func (h *WS) handleSendDirect(conn *hub.Conn, ev models.ClientEvent) {
	msg, err := h.Ingest.SendDirect(context.Background(), conn.UserID, ev.ReceiverID, ev.Text)
	if err != nil {
		conn.Deliver(ingestError(err))
		return
	}
	h.Dispatcher.Dispatch(msg)
}

func errorEvent(code, details string) models.ServerEvent {
	return models.ServerEvent{Event: models.EventError, Error: code, Details: details}
}

func ingestError(err error) models.ServerEvent {
	switch {
	case errors.Is(err, chat.ErrValidation):
		return errorEvent("validation", err.Error())
	case errors.Is(err, chat.ErrNotFound):
		return errorEvent("not_found", err.Error())
	default:
		return errorEvent("persistence", "message could not be stored")
	}
}
