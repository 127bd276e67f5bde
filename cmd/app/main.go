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

	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/app"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/infra"
)

func main() {
	// 1. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	infra.PrintBanner(bootstrap.Config)

	// 2. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Restore any previous session before the UI starts calling in
	bootstrap.RestoreSession(ctx)

	// 4. UI event boundary
	go func() {
		if err := bootstrap.Server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("❌ Server failed", slog.Any("error", err))
			stop()
		}
	}()

	slog.InfoContext(ctx, "✨ PropChain client fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.Info("👋 Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	bootstrap.Shutdown(shutdownCtx)
}
