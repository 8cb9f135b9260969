package main

import (
	"chat-relay/infrastructure/tcp"
	"chat-relay/internal"
	"chat-relay/repositories"
	"chat-relay/transport"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/cobra"
)

const (
	exitOK    = 0
	exitFatal = 1
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "chat terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	config, err := internal.LoadClientConfig()
	if err != nil {
		return exitFatal, err
	}
	if err := rootCmd(&config).Execute(); err != nil {
		return exitFatal, err
	}
	return exitOK, nil
}

func rootCmd(config *internal.ClientConfig) *cobra.Command {
	var (
		address  string
		port     int
		name     string
		dataDir  string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Terminal client of the chat relay",
		Long: `Terminal client of the chat relay.

Connects under --name, refreshes the known users and contacts, then
reads commands from standard input. Type help once connected.

Examples:
  chat --name=alice
  chat --addr=10.0.0.5 --port=7777 --name=bob`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if address != "" {
				config.Address = address
			}
			if port > 0 {
				config.Port = port
			}
			if name != "" {
				config.Name = name
			}
			if dataDir != "" {
				config.DataDir = dataDir
			}
			if logLevel != "" {
				config.LogLevel = logLevel
			}
			if err := config.Validate(); err != nil {
				return err
			}
			return chat(*config)
		},
	}

	cmd.Flags().StringVarP(&address, "addr", "a", "", "Server address (default from CHAT_ADDRESS)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Server port (default from CHAT_PORT)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Account name (default from CHAT_NAME)")
	cmd.Flags().StringVar(&dataDir, "db", "", "Directory of the local history (default from CHAT_CLIENT_DATA)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR")

	return cmd
}

func chat(config internal.ClientConfig) error {
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath()).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() { _ = db.Close() }()

	index, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath()))
	if err != nil {
		return fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() { _ = index.Close() }()

	repository, err := repositories.NewClientRepository(db, index, log)
	if err != nil {
		return err
	}

	cfg := transport.DefaultConfig(config.ServerAddress(), config.Name)
	cfg.ConnectAttempts = config.ConnectAttempts
	cfg.ConnectBackoff = config.ConnectBackoff
	cfg.PollTimeout = config.PollTimeout
	cfg.ShutdownGrace = config.ShutdownGrace

	t, err := transport.New(ctx, log, tcp.NewDialer(), repository, cfg)
	if err != nil {
		return err
	}
	defer t.Shutdown()

	newConsole(os.Stdout, t, repository).Run(ctx, os.Stdin)
	return nil
}
