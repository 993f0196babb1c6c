package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/config"
	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/gateway"
	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/httpapi"
	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/hub"
	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/identity"
	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/store"
)

func main() {
	setupLogger()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	st, err := store.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		slog.Error("database error", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	err = st.EnsureSchema(ctx)
	cancel()
	if err != nil {
		slog.Error("schema error", "error", err)
		os.Exit(1)
	}

	resolver := identity.NewResolver(cfg.AuthCookieName, []byte(cfg.JWTSecret))
	registry := hub.New()
	gw := gateway.New(registry, resolver)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// The gateway binds exactly once, before any producer needs the
	// dispatcher. A failure here is a startup-ordering bug.
	dispatcher, err := gw.Initialize(r)
	if err != nil {
		slog.Error("gateway init error", "error", err)
		os.Exit(1)
	}

	httpapi.Register(r, httpapi.Deps{
		Messages:      st.Messages(),
		Notifications: st.Notifications(),
		Dispatcher:    dispatcher,
		Resolver:      resolver,
		Registry:      registry,
	})

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("server shutting down")
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func setupLogger() {
	level := slog.LevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}
