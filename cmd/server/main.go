package main

import (
	"chat-relay/infrastructure/monitoring"
	"chat-relay/infrastructure/tcp"
	"chat-relay/infrastructure/websocket"
	"chat-relay/internal"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const (
	exitOK    = 0
	exitFatal = 1
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "chatd terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	config, err := internal.LoadServerConfig()
	if err != nil {
		return exitFatal, err
	}

	rootCmd := &cobra.Command{
		Use:           "chatd",
		Short:         "Relay server for point-to-point chat",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(serveCmd(&config))

	if err := rootCmd.Execute(); err != nil {
		return exitFatal, err
	}
	return exitOK, nil
}

func serveCmd(config *internal.ServerConfig) *cobra.Command {
	var (
		address        string
		port           int
		wsAddress      string
		metricsAddress string
		dbPath         string
		logLevel       string
		noConsole      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept clients and relay their messages",
		Long: `Accept clients and relay their messages.

Clients connect over TCP with newline delimited JSON frames, or over
WebSocket when --ws-addr is set. The admin console reads commands from
standard input unless --no-console is given.

Examples:
  chatd serve
  chatd serve --port=7777 --ws-addr=127.0.0.1:7778
  chatd serve --metrics-addr=127.0.0.1:9090 --log-level=DEBUG`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if address != "" {
				config.Address = address
			}
			if port > 0 {
				config.Port = port
			}
			if wsAddress != "" {
				config.WebSocketAddress = wsAddress
			}
			if metricsAddress != "" {
				config.MetricsAddress = metricsAddress
			}
			if dbPath != "" {
				config.BadgerFilepath = dbPath
			}
			if logLevel != "" {
				config.LogLevel = logLevel
			}
			if err := config.Validate(); err != nil {
				return err
			}
			return serve(*config, !noConsole)
		},
	}

	cmd.Flags().StringVarP(&address, "addr", "a", "", "Address to listen on (default from CHAT_ADDRESS)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "TCP port (default from CHAT_PORT)")
	cmd.Flags().StringVar(&wsAddress, "ws-addr", "", "WebSocket listen address, host:port")
	cmd.Flags().StringVar(&metricsAddress, "metrics-addr", "", "Metrics and health listen address, host:port")
	cmd.Flags().StringVar(&dbPath, "db", "", "Badger directory (default from CHAT_SERVER_DB)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR")
	cmd.Flags().BoolVar(&noConsole, "no-console", false, "Do not read admin commands from stdin")

	return cmd
}

func serve(config internal.ServerConfig, withConsole bool) error {
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	// Runs after the supervisor has stopped, so the reactor logs everyone out first.
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	repository, err := repositories.NewServerRepository(db, log)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := runtime.NewMetrics(reg)

	reactor := runtime.NewReactor(log, runtime.Config{
		AcceptTimeout:   config.AcceptTimeout,
		RequeueInterval: config.RequeueInterval,
		OutboxSize:      config.OutboxSize,
		FlushTimeout:    config.FlushTimeout,
	}, repository, metrics)

	listener, err := tcp.Listen(config.ListenAddress())
	if err != nil {
		return err
	}
	log.Info("Listening", "address", listener.Addr().String())

	sup := workers.NewSupervisor(log).WithMaxRestarts(config.MaxRestarts)
	sup.Add(reactor, workers.NewAcceptor(log, listener, reactor))

	if config.WebSocketAddress != "" {
		wsListener, err := websocket.Listen(log, config.WebSocketAddress)
		if err != nil {
			_ = listener.Close()
			return err
		}
		log.Info("Listening for WebSocket clients", "address", wsListener.Addr().String(), "path", websocket.Path)
		sup.Add(workers.NewAcceptor(log, wsListener, reactor))
	}

	if config.MetricsAddress != "" {
		var inspector *monitoring.Inspector
		if log.Enabled(ctx, slog.LevelDebug) {
			inspector = monitoring.NewInspector(db)
			log.Info("Debug Badger inspector available", "url", fmt.Sprintf("http://%s/debug/inspect", config.MetricsAddress))
		}
		router := monitoring.NewRouter(reg, reactor.Registry().Names, inspector)
		sup.Add(monitoring.NewServer(log, config.MetricsAddress, router))
	}

	if config.ReportInterval > 0 {
		sup.Add(workers.NewReporterWorker(log, reg, config.ReportInterval))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if withConsole {
		go func() {
			if newConsole(os.Stdout, repository, reactor.Registry().Names).Run(ctx, os.Stdin) {
				cancel()
			}
		}()
	}

	if err := sup.Run(ctx); err != nil {
		return err
	}
	log.Info("Server stopped cleanly")
	return nil
}
