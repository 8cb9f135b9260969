package runtime

import (
	"chat-relay/errors"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Registry maps an authenticated user name to its live session.
// Writes only come from the reactor goroutine, reads may come from the admin
// console and the metrics endpoint.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session // map user name -> session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register binds name to session. The check and the insert happen under the same
// lock: a name already taken is rejected and the existing binding is left untouched.
func (r *Registry) Register(name string, session *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.sessions[name]; taken {
		return fmt.Errorf("%w: %s", errors.ErrDuplicateName, name)
	}
	r.sessions[name] = session
	return nil
}

// Unregister removes name if present.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, name)
}

func (r *Registry) Lookup(name string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[name]
	return session, ok
}

// Names returns the online user names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := lo.Keys(r.sessions)
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
