package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	signalctx "os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/adapters/authn"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/adapters/httpapi"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/adapters/signal"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/adapters/store"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/app"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/config"
)

func main() {
	ctx, cancel := signalctx.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	db, err := store.Open(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer db.Close()

	reg := app.NewRegistry()
	rooms := app.NewRoomManager(db)
	groups := app.NewGroupManager()
	links := app.NewLinkManager(cfg.LinkTTL, cfg.LinkSweep)
	presence := app.NewPresence(reg, db, cfg.PageSize)
	router := app.NewRouter(reg, rooms, groups, db)
	tracker := app.NewTracker(reg, rooms, groups, db, router)
	calls := app.NewCallRelay(reg)
	hub := app.NewHub(reg, rooms, groups, links, presence, router, tracker, calls, db)

	go links.Run(ctx)

	ctl := signal.NewController(hub, authn.NewVerifier(cfg.Secret), cfg.EventsPerSec, cfg.EventInterval, cfg.ReadLimit, cfg.PingPeriod)
	r := httpapi.SetupRouter(ctx, cfg, hub, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Chat server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
