// Package api exposes the exchange lifecycle as a JSON HTTP API.
package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/swapmeet/internal/notify"
	"gorm.io/gorm"
)

// StartOpts holds configuration for the API server.
type StartOpts struct {
	DB       *gorm.DB
	Port     int
	Out      io.Writer
	Notifier notify.Notifier
	Logger   *slog.Logger
}

// Start launches the API server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.DB == nil {
		return fmt.Errorf("api: db is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router := NewRouter(opts.DB, opts.Notifier, opts.Logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "API listening on http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

// server carries the dependencies shared by every handler.
type server struct {
	db       *gorm.DB
	notifier notify.Notifier
	logger   *slog.Logger
	outbox   chan notify.Event
}

// outboxSize bounds the events waiting for delivery. Events beyond it are
// dropped with a warning.
const outboxSize = 256

// deliverTimeout bounds one event's delivery across all channels.
const deliverTimeout = 30 * time.Second

// NewRouter builds the gin engine with every route registered.
// A nil notifier disables notifications; a nil logger uses slog.Default.
func NewRouter(db *gorm.DB, notifier notify.Notifier, logger *slog.Logger) *gin.Engine {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &server{db: db, notifier: notifier, logger: logger, outbox: make(chan notify.Event, outboxSize)}
	go s.deliver()

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), s.identify())
	s.registerRoutes(router)
	return router
}

// publish queues an event after a successful commit. It never blocks the
// handler: events for a full outbox are dropped.
func (s *server) publish(evt notify.Event) {
	select {
	case s.outbox <- evt:
	default:
		s.logger.Warn("notify: outbox full, dropping event",
			"kind", evt.Kind, "request", evt.RequestID)
	}
}

// deliver sends queued events one at a time, in publish order, for the
// lifetime of the router.
func (s *server) deliver() {
	for evt := range s.outbox {
		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		notify.Publish(ctx, s.notifier, s.logger, evt)
		cancel()
	}
}
