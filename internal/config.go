// Package internal holds the environment configuration of both binaries. Values are
// read from the environment, optionally from a .env file, and overridden by flags.
package internal

import (
	"chat-relay/domain"
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

type ServerConfig struct {
	Address          string        `env:"CHAT_ADDRESS,default=127.0.0.1" validate:"required"`
	Port             int           `env:"CHAT_PORT,default=7777" validate:"min=1024,max=65535"`
	WebSocketAddress string        `env:"CHAT_WS_ADDRESS" validate:"omitempty,hostname_port"`
	MetricsAddress   string        `env:"CHAT_METRICS_ADDRESS" validate:"omitempty,hostname_port"`
	BadgerFilepath   string        `env:"CHAT_SERVER_DB,default=./data/server" validate:"required"`
	LogLevel         string        `env:"LOG_LEVEL,default=INFO" validate:"required"`
	AcceptTimeout    time.Duration `env:"ACCEPT_TIMEOUT,default=500ms" validate:"gt=0"`
	RequeueInterval  time.Duration `env:"REQUEUE_INTERVAL,default=50ms" validate:"gt=0"`
	OutboxSize       int           `env:"OUTBOX_SIZE,default=16" validate:"min=1"`
	FlushTimeout     time.Duration `env:"FLUSH_TIMEOUT,default=2s" validate:"gt=0"`
	MaxRestarts      int           `env:"MAX_RESTARTS,default=5" validate:"gte=0"`
	ReportInterval   time.Duration `env:"REPORT_INTERVAL,default=1m" validate:"gte=0"`
}

type ClientConfig struct {
	Address         string        `env:"CHAT_ADDRESS,default=127.0.0.1" validate:"required"`
	Port            int           `env:"CHAT_PORT,default=7777" validate:"min=1024,max=65535"`
	Name            string        `env:"CHAT_NAME" validate:"required,max=64,excludesall=:"`
	DataDir         string        `env:"CHAT_CLIENT_DATA,default=./data" validate:"required"`
	LogLevel        string        `env:"LOG_LEVEL,default=WARN" validate:"required"`
	ConnectAttempts int           `env:"CONNECT_ATTEMPTS,default=5" validate:"min=1"`
	ConnectBackoff  time.Duration `env:"CONNECT_BACKOFF,default=1s" validate:"gte=0"`
	PollTimeout     time.Duration `env:"POLL_TIMEOUT,default=1s" validate:"gt=0"`
	ShutdownGrace   time.Duration `env:"SHUTDOWN_GRACE,default=500ms" validate:"gte=0"`
}

// LoadServerConfig reads the server configuration. A missing .env file is not an error.
func LoadServerConfig() (ServerConfig, error) {
	var config ServerConfig
	_ = godotenv.Load()
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return ServerConfig{}, fmt.Errorf("config error: %w", err)
	}
	return config, nil
}

func LoadClientConfig() (ClientConfig, error) {
	var config ClientConfig
	_ = godotenv.Load()
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return ClientConfig{}, fmt.Errorf("config error: %w", err)
	}
	return config, nil
}

// Validate is called once flags have been applied.
func (c ServerConfig) Validate() error {
	if _, err := domain.NewPort(c.Port); err != nil {
		return err
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

func (c ServerConfig) ListenAddress() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

func (c ClientConfig) Validate() error {
	if _, err := domain.NewPort(c.Port); err != nil {
		return err
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

func (c ClientConfig) ServerAddress() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

// BadgerFilepath and BlugeFilepath are per user, so several clients can share a
// data directory.
func (c ClientConfig) BadgerFilepath() string {
	return filepath.Join(c.DataDir, c.Name, "badger")
}

func (c ClientConfig) BlugeFilepath() string {
	return filepath.Join(c.DataDir, c.Name, "bluge")
}
