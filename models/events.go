package models

// Client to server events carried over the websocket.
const (
	EventJoinUser    = "joinUser"
	EventLeaveUser   = "leaveUser"
	EventJoinGroup   = "joinGroup"
	EventLeaveGroup  = "leaveGroup"
	EventSend        = "sendMessage"
	EventSendDirect  = "sendDirectMessage"
	EventConnected   = "connected"
	EventJoined      = "joined"
	EventLeft        = "left"
	EventMessage     = "message"
	EventDirect      = "directMessage"
	EventError       = "messageError"
)

// ClientEvent is the envelope for everything a client sends. The event tag
// selects which fields are meaningful; invalid shapes are rejected at the
// boundary instead of surfacing as nil dereferences inside dispatch.
type ClientEvent struct {
	Event      string `json:"event" validate:"required,oneof=joinUser leaveUser joinGroup leaveGroup sendMessage sendDirectMessage"`
	UserID     string `json:"userId,omitempty"`
	GroupID    string `json:"groupId,omitempty"`
	SenderID   string `json:"senderId,omitempty"`
	ReceiverID string `json:"receiverId,omitempty"`
	Text       string `json:"text,omitempty"`
}

// ServerEvent is the envelope for everything the server pushes.
type ServerEvent struct {
	Event   string   `json:"event"`
	Room    string   `json:"room,omitempty"`
	Message *Message `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
	Details string   `json:"details,omitempty"`
}

// Pagination describes where a history page sits in the full history.
// Page 1 is the newest pageSize messages; HasMore reports whether an older
// page exists past the current one.
type Pagination struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalMessages int64 `json:"totalMessages"`
	HasMore       bool  `json:"hasMore"`
}

// HistoryPage is one slice of a room's history, messages in ascending
// creation order.
type HistoryPage struct {
	Messages   []Message  `json:"messages"`
	Pagination Pagination `json:"pagination"`
}
