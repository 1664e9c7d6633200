package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/RSO-bookstore/bookstore-cart/internal/cartview"
	"github.com/RSO-bookstore/bookstore-cart/internal/catalog"
	"github.com/RSO-bookstore/bookstore-cart/internal/config"
	"github.com/RSO-bookstore/bookstore-cart/internal/events"
	"github.com/RSO-bookstore/bookstore-cart/internal/health"
	"github.com/RSO-bookstore/bookstore-cart/internal/httpapi"
	"github.com/RSO-bookstore/bookstore-cart/internal/store"
)

const envFile = ".env"

func main() {
	// Logger
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	// First config load must succeed or the process does not start.
	cfg, err := config.Load(envFile)
	must(err)
	provider := config.NewProvider(cfg)

	reloader := config.NewReloader(provider, envFile, config.DefaultReloadInterval, func(err error) {
		log.Fatal().Err(err).Msg("config reload failed")
	})
	reloader.Start()
	defer reloader.Stop()

	// Store
	db, err := store.Open(cfg.DBURL)
	must(err)
	defer db.Close()
	must(store.Migrate(context.Background(), db))

	carts := store.NewCartRepository(db)
	orders := store.NewOrderRepository(db)
	books := catalog.NewClient(provider)
	views := cartview.NewBuilder(carts, books)
	reporter := health.NewReporter(db)

	// Rabbit, only when a broker is configured
	var publisher httpapi.EventPublisher
	if url := os.Getenv("RABBIT_URL"); url != "" {
		pub, err := events.NewPublisher(url, getEnv("RABBIT_EXCHANGE", "domain_events"))
		must(err)
		defer pub.Close()
		publisher = pub
		log.Info().Msg("rabbit publisher connected")
	}

	app := httpapi.NewApp(provider, carts, orders, views, reporter, publisher)
	srv := &http.Server{
		Addr:    getEnv("HTTP_ADDR", ":8080"),
		Handler: httpapi.NewRouter(app),
	}

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		log.Warn().Msg("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	log.Info().
		Str("addr", srv.Addr).
		Str("app", cfg.AppName).
		Str("catalog", cfg.CatalogURL()).
		Msg("bookstore-cart listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("serve")
	}
}

func must(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
