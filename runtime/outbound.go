package runtime

import (
	"chat-relay/domain"

	"github.com/eapache/queue"
)

// envelope is one pending delivery. A routed message names its destination and is
// resolved through the registry at drain time; a reply targets the requesting session
// directly.
type envelope struct {
	to         string
	session    *Session
	frame      domain.Frame
	closeAfter bool
}

func (e envelope) routed() bool {
	return e.session == nil
}

// OutboundQueue keeps pending deliveries in arrival order. Only the reactor goroutine
// uses it.
type OutboundQueue struct {
	q *queue.Queue
}

func NewOutboundQueue() *OutboundQueue {
	return &OutboundQueue{q: queue.New()}
}

// Route queues frame for the session registered under name.
func (o *OutboundQueue) Route(name string, frame domain.Frame) {
	o.q.Add(envelope{to: name, frame: frame})
}

// Reply queues frame for session.
func (o *OutboundQueue) Reply(session *Session, frame domain.Frame) {
	o.q.Add(envelope{session: session, frame: frame})
}

// ReplyAndClose queues frame for session; the session is released once the frame is
// handed to its writer.
func (o *OutboundQueue) ReplyAndClose(session *Session, frame domain.Frame) {
	o.q.Add(envelope{session: session, frame: frame, closeAfter: true})
}

func (o *OutboundQueue) Len() int {
	return o.q.Length()
}

type outcome int

const (
	delivered outcome = iota
	dropped
	retry
)

// DrainStats counts what one Drain call did with each envelope.
type DrainStats struct {
	Delivered int
	Dropped   int
	Requeued  int
}

// Drain pops every envelope present when it is called and passes it to deliver.
// Envelopes deliver answers retry for are queued again, in their original order, and
// are not revisited before the next call.
func (o *OutboundQueue) Drain(deliver func(envelope) outcome) DrainStats {
	var stats DrainStats
	n := o.q.Length()
	var again []envelope
	for i := 0; i < n; i++ {
		env := o.q.Remove().(envelope)
		switch deliver(env) {
		case delivered:
			stats.Delivered++
		case dropped:
			stats.Dropped++
		case retry:
			again = append(again, env)
		}
	}
	for _, env := range again {
		o.q.Add(env)
	}
	stats.Requeued = len(again)
	return stats
}
