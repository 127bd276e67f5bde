// Package session establishes and restores the wallet-backed identity
// session: real provider when one is configured, demo fallback otherwise.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/backend"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/domain"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/infra"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/storage"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/wallet"
)

// Manager owns the in-memory Session and its persisted copy. provider is
// nil when no real wallet provider is available.
type Manager struct {
	store    *storage.SessionStore
	backend  *backend.Client
	provider wallet.Provider

	mu      sync.Mutex
	current domain.Session
}

// NewManager creates a session manager. provider may be nil.
func NewManager(store *storage.SessionStore, client *backend.Client, provider wallet.Provider) *Manager {
	return &Manager{
		store:    store,
		backend:  client,
		provider: provider,
	}
}

// Connect establishes a session. With a provider attached it asks the
// provider for an identity; an explicit rejection surfaces as
// domain.ErrProviderRejected so the caller can offer the demo fallback
// instead of terminating. Without a provider a demo identity is
// synthesized directly.
func (m *Manager) Connect(ctx context.Context, profile domain.UserProfile) (domain.Session, error) {
	if m.provider == nil {
		id := wallet.DemoIdentity("")
		return m.EstablishIdentity(ctx, id.WalletID, id.Source, profile)
	}

	walletID, err := m.provider.Connect(ctx)
	if err != nil {
		if errors.Is(err, wallet.ErrRejected) {
			return domain.Session{}, fmt.Errorf("%w: demo mode remains available", domain.ErrProviderRejected)
		}
		return domain.Session{}, fmt.Errorf("wallet provider connect failed: %w", err)
	}

	return m.EstablishIdentity(ctx, walletID, domain.SourceProvider, profile)
}

// ConnectDemo establishes a session from a demo identity: the supplied
// identifier when non-empty, a synthesized one otherwise.
func (m *Manager) ConnectDemo(ctx context.Context, manualID string, profile domain.UserProfile) (domain.Session, error) {
	id := wallet.DemoIdentity(manualID)
	return m.EstablishIdentity(ctx, id.WalletID, id.Source, profile)
}

// EstablishIdentity exchanges a wallet id for a backend identity token via
// register-or-login. The duplicate-registration signal always falls back
// to login; a registration response without a token does too, since
// registration is never assumed to carry a usable one.
func (m *Manager) EstablishIdentity(ctx context.Context, walletID string, source domain.IdentitySource, profile domain.UserProfile) (domain.Session, error) {
	auth, err := m.backend.Register(ctx, walletID, profile.Name, profile.Email)
	switch {
	case backend.IsAlreadyExists(err):
		auth, err = m.backend.Login(ctx, walletID)
		if err != nil {
			return domain.Session{}, fmt.Errorf("login fallback failed: %w", err)
		}
		profile = auth.User
	case err != nil:
		return domain.Session{}, fmt.Errorf("registration failed: %w", err)
	case auth.Token == "":
		auth, err = m.backend.Login(ctx, walletID)
		if err != nil {
			return domain.Session{}, fmt.Errorf("login after tokenless registration failed: %w", err)
		}
		profile = auth.User
	}

	sess := domain.Session{
		Token:    auth.Token,
		WalletID: walletID,
		IsDemo:   source.IsDemo(),
		Source:   source,
		User:     profile,
	}

	err = m.store.Save(ctx, storage.SessionRecord{
		Token:    sess.Token,
		WalletID: sess.WalletID,
		IsDemo:   sess.IsDemo,
	}, time.Now().UnixMicro())
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to persist session: %w", err)
	}

	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()

	infra.CountSessionConnect(string(source))
	slog.Info("✅ Session established",
		slog.String("wallet_id", sess.WalletID),
		slog.String("source", string(source)))

	return sess, nil
}

// Disconnect releases the provider connection (best effort — a provider
// failure is logged and suppressed), then unconditionally clears the
// in-memory session and the persisted triple.
func (m *Manager) Disconnect(ctx context.Context) error {
	if m.provider != nil {
		if err := m.provider.Disconnect(ctx); err != nil {
			slog.Warn("Wallet provider disconnect failed; clearing local session anyway",
				slog.Any("error", err))
		}
	}

	m.mu.Lock()
	m.current = domain.Session{}
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}

	slog.Info("👋 Session disconnected")
	return nil
}

// RestoreOnStartup repopulates the session after a process restart. A
// provider-side session takes precedence and runs the establish-identity
// flow; otherwise the persisted triple rehydrates the session without
// contacting the backend. The boolean reports whether a session was
// restored.
func (m *Manager) RestoreOnStartup(ctx context.Context) (domain.Session, bool, error) {
	if m.provider != nil {
		walletID, ok, err := m.provider.Resume(ctx)
		if err != nil {
			// Startup is not blocked by a dead bridge; the persisted
			// session is still worth trying.
			slog.Warn("Provider resume failed", slog.Any("error", err))
		} else if ok {
			sess, err := m.EstablishIdentity(ctx, walletID, domain.SourceProvider, domain.UserProfile{})
			if err != nil {
				return domain.Session{}, false, err
			}
			slog.Info("Session restored from provider", slog.String("wallet_id", walletID))
			return sess, true, nil
		}
	}

	rec, ok, err := m.store.Load(ctx)
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("failed to load persisted session: %w", err)
	}
	if !ok {
		return domain.Session{}, false, nil
	}

	if tokenExpired(rec.Token) {
		slog.Info("Persisted token expired; clearing session", slog.String("wallet_id", rec.WalletID))
		if err := m.store.Clear(ctx); err != nil {
			return domain.Session{}, false, fmt.Errorf("failed to clear expired session: %w", err)
		}
		return domain.Session{}, false, nil
	}

	sess := domain.Session{
		Token:    rec.Token,
		WalletID: rec.WalletID,
		IsDemo:   rec.IsDemo,
		Source:   restoredSource(rec),
	}

	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()

	slog.Info("Session restored from store", slog.String("wallet_id", sess.WalletID), slog.Bool("demo", sess.IsDemo))
	return sess, true, nil
}

// Current returns a copy of the in-memory session.
func (m *Manager) Current() domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Token returns the identity token, empty when disconnected.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Token
}

// tokenExpired peeks at the token without verifying it. The token is
// treated as opaque: only a parseable JWT with an elapsed exp claim counts
// as expired.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

func restoredSource(rec storage.SessionRecord) domain.IdentitySource {
	if !rec.IsDemo {
		return domain.SourceProvider
	}
	if strings.HasPrefix(rec.WalletID, wallet.DemoPrefix) {
		return domain.SourceDemoGenerated
	}
	return domain.SourceDemoManual
}
