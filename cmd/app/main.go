package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/Domenick1991/ticketmail/config"
	"github.com/Domenick1991/ticketmail/internal/bootstrap"
	"github.com/Domenick1991/ticketmail/internal/content"
	"github.com/Domenick1991/ticketmail/internal/email"
	"github.com/Domenick1991/ticketmail/internal/logging"
	"github.com/Domenick1991/ticketmail/internal/render"
	"github.com/Domenick1991/ticketmail/internal/repository"
	"github.com/Domenick1991/ticketmail/internal/service/ticketmail"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log, os.Stdout)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hc := &http.Client{}
	configSource := content.NewConfigClient(cfg.Content.ConfigURL, hc, logger)

	var bookings content.BookingSource
	switch cfg.Content.Backend {
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.Content.Database.DSN())
		if err != nil {
			logger.WithError(err).Fatal("connect postgres")
		}
		defer pool.Close()
		bookings = repository.NewBookingDetailsRepository(pool)
	default:
		bookings = content.NewSanityClient(content.SanityOptions{
			ProjectID:  cfg.Content.Sanity.ProjectID,
			Dataset:    cfg.Content.Sanity.Dataset,
			APIVersion: cfg.Content.Sanity.APIVersion,
			Token:      cfg.Content.Sanity.Token,
			UseCDN:     cfg.Content.Sanity.UseCDN,
		}, hc, logger)
	}

	var location *time.Location
	if cfg.Render.TimeZone != "" {
		location, err = time.LoadLocation(cfg.Render.TimeZone)
		if err != nil {
			logger.WithError(err).Fatal("load time zone")
		}
	}
	renderer, err := render.NewRenderer(location, cfg.Render.Currency)
	if err != nil {
		logger.WithError(err).Fatal("init renderer")
	}

	service := ticketmail.NewTicketMailService(ticketmail.TicketMailServiceProperty{
		Fetcher:  content.NewFetcher(configSource, bookings, logger),
		Renderer: renderer,
		Transports: email.NewSMTPTransportFactory(email.SMTPConfig{
			Host:           cfg.Email.Host,
			Port:           cfg.Email.Port,
			SSL:            cfg.Email.UseSSL(),
			LocalName:      cfg.Email.FromAddress,
			MaxConnections: cfg.Email.MaxConnections,
		}, logger),
		Credentials: email.NewEnvCredentials(),
		Sender: email.Sender{
			Name:    cfg.Email.FromName,
			Address: cfg.Email.FromAddress,
			ReplyTo: cfg.Email.ReplyTo,
		},
		Logger: logger,
	})

	if err := bootstrap.Run(ctx, cfg, service, logger); err != nil {
		logger.WithError(err).Fatal("server error")
	}
}
