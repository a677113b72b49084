package chat

import (
	"campus-chat/internal/hub"
	"campus-chat/internal/metrics"
	"campus-chat/models"
)

// SubscriberSource resolves a room key to the connections subscribed at the
// moment of the call. Satisfied by *hub.Hub.
type SubscriberSource interface {
	Subscribers(roomKey string) []*hub.Conn
}

// Dispatcher fans a persisted message out to every subscribed connection.
// Delivery per connection is best-effort; a failed delivery is dropped
// silently and the message stays retrievable through history.
type Dispatcher struct {
	subs SubscriberSource
}

func NewDispatcher(subs SubscriberSource) *Dispatcher {
	return &Dispatcher{subs: subs}
}

// Dispatch delivers msg to its target room(s). Group messages go to the
// group room's subscribers. Direct messages go to the subscribers of both
// the sender's and the receiver's personal rooms, so the sender's other
// devices see the outgoing message without a separate echo path. Each
// connection receives the message at most once.
func (d *Dispatcher) Dispatch(msg *models.Message) {
	if msg.Kind == models.KindGroup {
		ev := models.ServerEvent{
			Event:   models.EventMessage,
			Room:    models.GroupRoom(msg.GroupID),
			Message: msg,
		}
		d.deliverAll(d.subs.Subscribers(models.GroupRoom(msg.GroupID)), ev)
		return
	}

	ev := models.ServerEvent{Event: models.EventDirect, Message: msg}

	seen := make(map[string]struct{})
	var targets []*hub.Conn
	for _, roomKey := range []string{
		models.PersonalRoom(msg.SenderID),
		models.PersonalRoom(msg.ReceiverID),
	} {
		for _, c := range d.subs.Subscribers(roomKey) {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			targets = append(targets, c)
		}
	}
	d.deliverAll(targets, ev)
}

func (d *Dispatcher) deliverAll(conns []*hub.Conn, ev models.ServerEvent) {
	for _, c := range conns {
		if c.Deliver(ev) {
			metrics.PushesDelivered.Inc()
		} else {
			metrics.PushesDropped.Inc()
		}
	}
}
