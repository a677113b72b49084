package hub

import (
	"sync"

	"campus-chat/models"
)

// Conn is one live client connection. Outbound events go through a buffered
// channel drained by the transport's write pump, so a slow or dead reader
// never blocks fan-out to anyone else.
type Conn struct {
	ID     string
	UserID string

	send chan models.ServerEvent

	closeOnce sync.Once
	done      chan struct{}
}

func newConn(id, userID string, buffer int) *Conn {
	return &Conn{
		ID:     id,
		UserID: userID,
		send:   make(chan models.ServerEvent, buffer),
		done:   make(chan struct{}),
	}
}

// Deliver enqueues an event for the connection without blocking. It reports
// false when the connection is closed or its buffer is full; the caller
// treats that as a silent per-connection drop.
func (c *Conn) Deliver(ev models.ServerEvent) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- ev:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// Events is the stream the transport's write pump drains.
func (c *Conn) Events() <-chan models.ServerEvent {
	return c.send
}

// Done is closed when the connection is unregistered.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

func (c *Conn) close() {
	c.closeOnce.Do(func() { close(c.done) })
}
