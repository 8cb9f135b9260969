package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"log/slog"
	"time"

	"github.com/samber/lo"
)

// Protocol interprets request frames for one server. It runs on the reactor
// goroutine: replies and routed messages go to the outbound queue, never straight to
// a socket.
type Protocol struct {
	log      *slog.Logger
	registry *Registry
	queue    *OutboundQueue
	storage  contract.IServerStorage
	metrics  *Metrics
}

func NewProtocol(
	log *slog.Logger,
	registry *Registry,
	queue *OutboundQueue,
	storage contract.IServerStorage,
	metrics *Metrics,
) *Protocol {
	return &Protocol{log: log, registry: registry, queue: queue, storage: storage, metrics: metrics}
}

// Handle applies one request frame to session.
// It returns false when the session has to be released immediately.
func (p *Protocol) Handle(s *Session, frame domain.Frame) bool {
	s.lastActivity = time.Now()
	p.metrics.frame(frame.Action)

	if s.state == Closed {
		return true
	}
	if err := frame.Validate(); err != nil {
		p.badRequest(s, domain.ReasonBadRequest, "Invalid request", "action", frame.Action, "error", err)
		return true
	}

	if s.state == Unauthenticated {
		if frame.Action != domain.ActionPresence {
			p.badRequest(s, domain.ReasonBadRequest, "Request before presence", "action", frame.Action)
			return true
		}
		p.presence(s, frame)
		return true
	}

	if frame.Action == domain.ActionPresence {
		p.badRequest(s, domain.ReasonBadRequest, "Presence on an authenticated connection")
		return true
	}
	if identity(frame) != s.name {
		p.badRequest(s, domain.ReasonBadRequest, "Request on behalf of another user",
			"action", frame.Action, "claimed", identity(frame))
		return true
	}

	switch frame.Action {
	case domain.ActionMessage:
		p.queue.Route(frame.To, frame)
		s.log.Debug("Message queued", "from", frame.From, "to", frame.To)
	case domain.ActionExit:
		s.log.Info("User leaves")
		p.Disconnect(s)
		return false
	case domain.ActionGetContacts:
		contacts, err := p.storage.GetContacts(s.name)
		if err != nil {
			p.storageUnavailable(s, "get_contacts", err)
			return true
		}
		p.queue.Reply(s, domain.ListResponse(contacts))
	case domain.ActionUsersRequest:
		users, err := p.storage.UsersList()
		if err != nil {
			p.storageUnavailable(s, "users_list", err)
			return true
		}
		p.queue.Reply(s, domain.ListResponse(lo.Map(users, func(u domain.KnownUser, _ int) string {
			return u.Name
		})))
	case domain.ActionAddContact:
		if err := p.storage.AddContact(s.name, frame.AccountName); err != nil {
			p.storageFailed("add_contact", err, "user", s.name, "contact", frame.AccountName)
		}
		p.queue.Reply(s, domain.OK())
	case domain.ActionRemoveContact:
		if err := p.storage.RemoveContact(s.name, frame.AccountName); err != nil {
			p.storageFailed("remove_contact", err, "user", s.name, "contact", frame.AccountName)
		}
		p.queue.Reply(s, domain.OK())
	}
	return true
}

// presence binds the session to the claimed name. A taken name is answered with 400
// and the session is released once that reply has been handed to its writer.
func (p *Protocol) presence(s *Session, frame domain.Frame) {
	name := frame.User.AccountName
	if err := p.registry.Register(name, s); err != nil {
		if errors.Is(err, errors.ErrDuplicateName) {
			s.log.Info("Presence rejected, name taken", "name", name)
			s.state = Closed
			p.metrics.badRequests.Inc()
			p.queue.ReplyAndClose(s, domain.BadRequest(domain.ReasonNameTaken))
			return
		}
		p.badRequest(s, domain.ReasonBadRequest, "Presence failed", "name", name, "error", err)
		return
	}

	s.name = name
	s.state = Authenticated
	s.log = s.log.With("user", name)
	p.metrics.online.Set(float64(p.registry.Len()))
	p.queue.Reply(s, domain.OK())
	s.log.Info("User online")

	if err := p.storage.UserLogin(name, s.IP, s.Port); err != nil {
		p.storageFailed("user_login", err, "user", name)
	}
}

// Disconnect unbinds an authenticated session and records the logout. The session
// is Closed afterwards, whatever its previous state.
func (p *Protocol) Disconnect(s *Session) {
	if s.state == Authenticated {
		p.registry.Unregister(s.name)
		p.metrics.online.Set(float64(p.registry.Len()))
		if err := p.storage.UserLogout(s.name); err != nil {
			p.storageFailed("user_logout", err, "user", s.name)
		}
	}
	s.state = Closed
}

// Delivered records a message handed to its destination.
func (p *Protocol) Delivered(frame domain.Frame) {
	p.metrics.routed.Inc()
	if err := p.storage.ProcessMessage(frame.From, frame.To); err != nil {
		p.storageFailed("process_message", err, "from", frame.From, "to", frame.To)
	}
}

// Invalid answers a frame whose fields could not be read. The connection stays open.
func (p *Protocol) Invalid(s *Session, err error) {
	p.badRequest(s, domain.ReasonBadRequest, "Invalid request", "error", err)
}

func (p *Protocol) badRequest(s *Session, reason, msg string, args ...any) {
	p.metrics.badRequests.Inc()
	s.log.Debug(msg, args...)
	p.queue.Reply(s, domain.BadRequest(reason))
}

func (p *Protocol) storageUnavailable(s *Session, operation string, err error) {
	p.storageFailed(operation, err, "user", s.name)
	p.metrics.badRequests.Inc()
	p.queue.Reply(s, domain.BadRequest(domain.ReasonStorageUnavailable))
}

func (p *Protocol) storageFailed(operation string, err error, args ...any) {
	p.metrics.storageFailure(operation)
	p.log.Error("Storage call failed", append([]any{"operation", operation, "error", err}, args...)...)
}

// identity returns the user a request claims to come from.
func identity(frame domain.Frame) string {
	switch frame.Action {
	case domain.ActionMessage:
		return frame.From
	case domain.ActionGetContacts, domain.ActionAddContact, domain.ActionRemoveContact:
		return frame.UserName()
	default:
		return frame.AccountName
	}
}
