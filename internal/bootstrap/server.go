package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/ticketmail/api"
	"github.com/Domenick1991/ticketmail/config"
	"github.com/Domenick1991/ticketmail/internal/service/ticketmail"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 5 * time.Second

// Run starts the HTTP server and blocks until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, svc ticketmail.TicketMailUseCase, logger *logrus.Logger) error {
	srv := newServer(cfg, svc, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("address", cfg.HTTP.Address).Info("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewRouter wires the handlers onto a gin engine.
func NewRouter(cfg *config.Config, svc ticketmail.TicketMailUseCase, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(logger))

	api.RegisterHealth(router)

	var limiter *rate.Limiter
	if rl := cfg.HTTP.RateLimit; rl.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(rl.RequestsPerSecond), rl.Burst)
	}

	gate := api.NewOriginGate(cfg.CORS.AllowedOrigins, logger)
	tickets := router.Group("/api/tickets", api.RateLimit(limiter))
	api.NewTicketEmailHandler(svc, gate, logger).Register(tickets)
	return router
}

func newServer(cfg *config.Config, svc ticketmail.TicketMailUseCase, logger *logrus.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           NewRouter(cfg, svc, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
