package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/backend"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/gateway"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/httpserver"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/infra"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/session"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/storage"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/trading"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/wallet"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config       *infra.Config
	Store        *storage.SessionStore
	Sessions     *session.Manager
	Machine      *gateway.Machine
	Orchestrator *trading.Orchestrator
	Server       *httpserver.Server

	unlock func()
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, DB, wiring).
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping PropChain client...")

	// 1. Load Config
	cfg, err := infra.LoadConfig(infra.ResolveConfigPath())
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	slog.SetDefault(infra.NewLogger(cfg))

	// 3. Workspace + Instance Lock
	workDir := infra.GetWorkspaceDir()
	dataDir := filepath.Join(workDir, "data")
	if err := infra.EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	unlock, err := infra.CreateLockFile(workDir)
	if err != nil {
		return err
	}
	b.unlock = unlock

	// 4. Session Store (single-writer WAL DB)
	dbPath := filepath.Join(dataDir, "session.db")
	store, err := storage.NewSessionStore(dbPath)
	if err != nil {
		return err
	}
	b.Store = store
	slog.Info("✅ Session store initialized (WAL-mode)", slog.String("path", dbPath))

	// 5. Wallet provider: real bridge only when configured
	var provider wallet.Provider
	if cfg.Wallet.BridgeURL != "" {
		provider = wallet.NewBridge(cfg.Wallet.BridgeURL)
		slog.Info("✅ Wallet bridge configured", slog.String("url", cfg.Wallet.BridgeURL))
	} else {
		slog.Info("ℹ️  No wallet bridge configured; demo identities only")
	}

	// 6. Core wiring
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.BackendTimeout())
	b.Sessions = session.NewManager(store, client, provider)
	b.Machine = gateway.NewMachine(cfg.ProcessingDelay())
	b.Orchestrator = trading.NewOrchestrator(b.Sessions, client, b.Machine)
	b.Server = httpserver.NewServer(cfg.Server.Addr, b.Sessions, b.Orchestrator, b.Machine)

	return nil
}

// RestoreSession repopulates the session state after a restart.
func (b *Bootstrap) RestoreSession(ctx context.Context) {
	sess, ok, err := b.Sessions.RestoreOnStartup(ctx)
	switch {
	case err != nil:
		slog.Warn("Session restore failed", slog.Any("error", err))
	case ok:
		slog.Info("🔄 Session restored", slog.String("wallet_id", sess.WalletID), slog.Bool("demo", sess.IsDemo))
	default:
		slog.Info("No previous session to restore")
	}
}

// Shutdown releases all resources.
func (b *Bootstrap) Shutdown(ctx context.Context) {
	if b.Server != nil {
		if err := b.Server.Stop(ctx); err != nil {
			slog.Warn("Server shutdown failed", slog.Any("error", err))
		}
	}
	if b.Store != nil {
		if err := b.Store.Close(); err != nil {
			slog.Warn("Store close failed", slog.Any("error", err))
		}
	}
	if b.unlock != nil {
		b.unlock()
	}
}
