package internal

import (
	"chat-relay/errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadServerConfig_Defaults(t *testing.T) {
	req := require.New(t)
	t.Chdir(t.TempDir())

	config, err := LoadServerConfig()

	req.NoError(err)
	req.Equal("127.0.0.1:7777", config.ListenAddress())
	req.Equal(500*time.Millisecond, config.AcceptTimeout)
	req.Equal(50*time.Millisecond, config.RequeueInterval)
	req.Equal(16, config.OutboxSize)
	req.Equal(2*time.Second, config.FlushTimeout)
	req.Equal(5, config.MaxRestarts)
	req.Empty(config.WebSocketAddress)
	req.NoError(config.Validate())
}

func TestLoadServerConfig_From_Environment(t *testing.T) {
	req := require.New(t)
	t.Chdir(t.TempDir())
	t.Setenv("CHAT_PORT", "9000")
	t.Setenv("CHAT_WS_ADDRESS", "127.0.0.1:9001")
	t.Setenv("REQUEUE_INTERVAL", "10ms")

	config, err := LoadServerConfig()

	req.NoError(err)
	req.Equal(9000, config.Port)
	req.Equal("127.0.0.1:9001", config.WebSocketAddress)
	req.Equal(10*time.Millisecond, config.RequeueInterval)
	req.NoError(config.Validate())
}

func TestServerConfig_Validate(t *testing.T) {
	t.Chdir(t.TempDir())
	config, err := LoadServerConfig()
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(c *ServerConfig)
		target error
	}{
		{name: "privileged port", mutate: func(c *ServerConfig) { c.Port = 80 }, target: errors.ErrInvalidPort},
		{name: "port too high", mutate: func(c *ServerConfig) { c.Port = 70000 }, target: errors.ErrInvalidPort},
		{name: "empty outbox", mutate: func(c *ServerConfig) { c.OutboxSize = 0 }},
		{name: "bad websocket address", mutate: func(c *ServerConfig) { c.WebSocketAddress = "nowhere" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broken := config
			tt.mutate(&broken)
			err := broken.Validate()
			require.Error(t, err)
			if tt.target != nil {
				require.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestClientConfig(t *testing.T) {
	req := require.New(t)
	t.Chdir(t.TempDir())
	t.Setenv("CHAT_NAME", "alice")
	t.Setenv("CHAT_CLIENT_DATA", "/var/chat")

	config, err := LoadClientConfig()

	req.NoError(err)
	req.NoError(config.Validate())
	req.Equal("127.0.0.1:7777", config.ServerAddress())
	req.Equal(filepath.Join("/var/chat", "alice", "badger"), config.BadgerFilepath())
	req.Equal(filepath.Join("/var/chat", "alice", "bluge"), config.BlugeFilepath())
	req.Equal(5, config.ConnectAttempts)

	// Names are storage key segments
	config.Name = "ali:ce"
	req.Error(config.Validate())
	config.Name = ""
	req.Error(config.Validate())
}
