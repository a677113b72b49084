package models

import "time"

// MessageKind discriminates group messages from direct (1:1) messages.
type MessageKind string

const (
	KindGroup  MessageKind = "group"
	KindDirect MessageKind = "direct"
)

// Message is the canonical persisted chat message. The ID is assigned by the
// store at insert time and doubles as the total order of a room's history.
// Exactly one of GroupID / ReceiverID is set, determined by Kind.
type Message struct {
	ID         int64       `json:"id"`
	Kind       MessageKind `json:"kind"`
	GroupID    string      `json:"group_id,omitempty"`
	SenderID   string      `json:"sender_id"`
	ReceiverID string      `json:"receiver_id,omitempty"`
	Body       string      `json:"body"`
	CreatedAt  time.Time   `json:"created_at"`
}
