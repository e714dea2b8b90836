package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/healthcrm/inbox-server-go/internal/config"
	"github.com/healthcrm/inbox-server-go/internal/database"
	"github.com/healthcrm/inbox-server-go/internal/engine"
	"github.com/healthcrm/inbox-server-go/internal/handler"
	"github.com/healthcrm/inbox-server-go/internal/middleware"
	redisclient "github.com/healthcrm/inbox-server-go/internal/redis"
	"github.com/healthcrm/inbox-server-go/internal/sse"
	"github.com/healthcrm/inbox-server-go/internal/store"
	"github.com/healthcrm/inbox-server-go/internal/widget"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	setLogLevel(cfg.LogLevel)

	chatStore, cleanup, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open conversation store")
	}
	defer cleanup()
	defer chatStore.Close()

	eng, err := engine.New(context.Background(), chatStore, cfg.AgentName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start conversation engine")
	}
	defer eng.Close()
	log.Info().Str("storage", cfg.Storage).Msg("conversation engine started")

	broker := sse.NewBroker(eng)
	defer broker.Close()

	widgetClient := widget.NewClient(chatStore)

	conversationsHandler := handler.NewConversationsHandler(eng)
	eventsHandler := handler.NewEventsHandler(broker)
	widgetHandler := handler.NewWidgetHandler(widgetClient)

	bodyLimit := middleware.NewBodyLimitMiddleware(0)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(bodyLimit.Handler)

	r.Get("/health", handler.Health)

	r.Route("/conversations", func(r chi.Router) {
		r.Get("/", conversationsHandler.List)
		r.Post("/read", conversationsHandler.MarkAllRead)
		r.Get("/{id}/messages", conversationsHandler.Messages)
		r.Post("/{id}/messages", conversationsHandler.Send)
		r.Get("/{id}/transcript.csv", conversationsHandler.Transcript)
	})

	r.Get("/events", eventsHandler.ServeHTTP)

	r.Get("/widget/snippet", widgetHandler.Snippet)
	r.Post("/widget/messages", widgetHandler.Message)

	srv := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     r,
		ReadTimeout: config.ServerReadTimeout,
		IdleTimeout: config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openStore builds the configured store backend. The returned cleanup closes
// the backend's connection resources.
func openStore(cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Storage {
	case config.StorageMemory:
		bus := store.NewMemoryBus()
		return bus.Context(), func() {}, nil

	case config.StorageRedis:
		client, err := redisclient.NewClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("redis connected")
		return store.NewRedis(client, cfg.StorageKey), func() { client.Close() }, nil

	case config.StoragePostgres:
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Info().Msg("database connected")

		pg, err := store.NewPostgres(db, cfg.DatabaseURL, cfg.StorageKey)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return pg, func() { db.Close() }, nil
	}

	// Unreachable: Validate rejects unknown backends.
	return nil, nil, nil
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
