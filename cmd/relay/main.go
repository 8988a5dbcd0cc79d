package main

import (
	"chat-relay/api"
	"chat-relay/domain"
	"chat-relay/internal"
	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/ws"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
	exitStartup = 3
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and owns their lifecycle, so deferred cleanup
// always runs before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig(".env")
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Message store
	repository, err := repositories.Open(ctx, config.StoreOptions(), log)
	if err != nil {
		return exitStartup, fmt.Errorf("message store: %w", err)
	}
	defer func() {
		log.Info("Closing message store")
		if err := repository.Close(); err != nil {
			log.Warn("Message store close failed", "error", err)
		}
	}()

	// 3. Listener, bound before anything is served
	listener, err := net.Listen("tcp", config.Address())
	if err != nil {
		return exitStartup, fmt.Errorf("failed to listen on %s: %w", config.Address(), err)
	}

	// 4. Relay core
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(promRegistry)

	registry := runtime.NewRegistry()
	broadcaster := runtime.NewBroadcaster(log, registry, repository, domain.NewClock(), metrics, config.SendTimeout)
	wsOptions := config.WebsocketOptions()
	realtime := ws.NewHandler(log, registry, repository, broadcaster, metrics, wsOptions)

	gin.SetMode(gin.ReleaseMode)
	server := api.NewServer(log, repository, registry, ws.NewOriginPolicy(wsOptions.AllowedOrigins, log))
	httpServer := &http.Server{Handler: server.Router(realtime, promRegistry)}

	// 5. Background workers
	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	supervisor.Add(workers.NewStatusReporter(log, registry, metrics, config.StatusInterval))
	supervisorDone := make(chan struct{})
	go func() {
		defer close(supervisorDone)
		supervisor.Run(ctx)
	}()

	errChan := make(chan error, 1)
	go func() {
		log.Info("Relay listening", "address", listener.Addr().String(), "store", config.StoreBackend)
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	code := exitOK
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 7. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	if err := realtime.Shutdown(shutdownCtx); err != nil {
		log.Warn("Some connections did not close in time", "error", err)
	}
	supervisor.Stop()
	<-supervisorDone
	log.Info("Relay stopped cleanly")
	return code, runErr
}
