package server

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"TVRelay/internal/usecase"
	"TVRelay/pkg/cache"
	"TVRelay/pkg/config"
	xhttp "TVRelay/pkg/http"
	pkgkafka "TVRelay/pkg/kafka"
	applogger "TVRelay/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	relay      *usecase.Relay
	producer   *pkgkafka.Producer
	counter    cache.Counter
}

// New creates a new App instance with all dependencies. producer and
// counter may be nil.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	relay *usecase.Relay,
	producer *pkgkafka.Producer,
	counter cache.Counter,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		cfg:        cfg,
		l:          l,
		httpServer: httpServer,
		relay:      relay,
		producer:   producer,
		counter:    counter,
	}
}

// Run starts the application and blocks until SIGINT/SIGTERM or a fatal
// server error.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.run(ctx)
}

func (a *App) run(ctx context.Context) error {
	a.logSinks()

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.l.Info("shutdown signal received")
	case runErr = <-a.httpServer.Errors():
		a.l.Error("http server failed", applogger.Error(runErr))
	}

	a.shutdown()
	return runErr
}

func (a *App) logSinks() {
	status := a.relay.SinkStatus()
	names := make([]string, 0, len(status))
	for name := range status {
		names = append(names, name)
	}
	sort.Strings(names)

	enabled := make([]string, 0, len(names))
	for _, name := range names {
		if status[name] {
			enabled = append(enabled, name)
		}
	}
	a.l.Info("relay starting",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Strings("sinks_enabled", enabled),
		applogger.Bool("rate_limit", a.counter != nil),
	)
}

// shutdown gracefully stops the server, then closes infrastructure clients.
func (a *App) shutdown() {
	a.l.Info("shutting down...")

	timeout := a.httpServer.ShutdownTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.l.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	if a.counter != nil {
		if err := a.counter.Close(); err != nil {
			a.l.Warn("rate limit store close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
}
