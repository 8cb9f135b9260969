package runtime

import (
	"chat-relay/errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register_And_Lookup(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	session := &Session{ID: uuid.New()}

	// Given nobody is online
	req.Zero(registry.Len())

	// When alice registers
	req.NoError(registry.Register("alice", session))

	// Then she can be found
	found, ok := registry.Lookup("alice")
	req.True(ok)
	req.Same(session, found)
	req.Equal([]string{"alice"}, registry.Names())
}

func TestRegistry_Register_Duplicate_Keeps_First(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	first := &Session{ID: uuid.New()}
	second := &Session{ID: uuid.New()}

	req.NoError(registry.Register("alice", first))

	// When another session claims the same name
	err := registry.Register("alice", second)

	// Then it is rejected and the first binding survives
	req.ErrorIs(err, errors.ErrDuplicateName)
	found, ok := registry.Lookup("alice")
	req.True(ok)
	req.Same(first, found)
	req.Equal(1, registry.Len())
}

func TestRegistry_Unregister_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	req.NoError(registry.Register("alice", &Session{ID: uuid.New()}))

	registry.Unregister("alice")
	registry.Unregister("alice")
	registry.Unregister("nobody")

	_, ok := registry.Lookup("alice")
	req.False(ok)
	req.Zero(registry.Len())

	// The name is free again
	req.NoError(registry.Register("alice", &Session{ID: uuid.New()}))
}

func TestRegistry_Names_Sorted(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	for _, name := range []string{"clara", "alice", "bob"} {
		req.NoError(registry.Register(name, &Session{ID: uuid.New()}))
	}
	req.Equal([]string{"alice", "bob", "clara"}, registry.Names())
}

func TestRegistry_Concurrent_Register_One_Winner(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := registry.Register("alice", &Session{ID: uuid.New()}); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	req.Equal(1, winners)
	req.Equal(1, registry.Len())
}

func TestRegistry_Many_Names(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	for i := 0; i < 100; i++ {
		req.NoError(registry.Register(fmt.Sprintf("user-%03d", i), &Session{ID: uuid.New()}))
	}
	req.Equal(100, registry.Len())
	req.Equal("user-000", registry.Names()[0])
}
