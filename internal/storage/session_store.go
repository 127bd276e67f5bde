package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/glebarez/go-sqlite"
)

// Fixed keys for the persisted session triple. Absence of any one of them
// is treated as "no session".
const (
	keyToken    = "identity_token"
	keyWalletID = "wallet_id"
	keyDemoMode = "demo_mode"
)

// SessionRecord is the persisted shape of a session.
type SessionRecord struct {
	Token    string
	WalletID string
	IsDemo   bool
}

// SessionStore handles durable storage of the identity session in SQLite.
// It is a process-wide singleton; the token/wallet/demo triple is always
// written and cleared in a single transaction so a crash between writes can
// never leave a torn half-authenticated state readable.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore creates a new SQLite session store with WAL mode enabled.
func NewSessionStore(dbPath string) (*SessionStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS session (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create session table: %w", err)
	}

	return &SessionStore{db: db}, nil
}

// Save writes the full session triple atomically, replacing any previous
// session.
func (s *SessionStore) Save(ctx context.Context, rec SessionRecord, ts int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	demo := "false"
	if rec.IsDemo {
		demo = "true"
	}

	for key, value := range map[string]string{
		keyToken:    rec.Token,
		keyWalletID: rec.WalletID,
		keyDemoMode: demo,
	} {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO session (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at",
			key, value, ts,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// Load reads the persisted session. The second return value is false when
// any of the three keys is missing or the token/wallet id is empty.
func (s *SessionStore) Load(ctx context.Context) (SessionRecord, bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM session")
	if err != nil {
		return SessionRecord{}, false, fmt.Errorf("failed to query session: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string, 3)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return SessionRecord{}, false, fmt.Errorf("failed to scan session row: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return SessionRecord{}, false, fmt.Errorf("rows iteration error: %w", err)
	}

	token, hasToken := values[keyToken]
	walletID, hasWallet := values[keyWalletID]
	demo, hasDemo := values[keyDemoMode]
	if !hasToken || !hasWallet || !hasDemo || token == "" || walletID == "" {
		return SessionRecord{}, false, nil
	}

	return SessionRecord{
		Token:    token,
		WalletID: walletID,
		IsDemo:   demo == "true",
	}, true, nil
}

// Clear removes all session keys in a single transaction.
func (s *SessionStore) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM session WHERE key IN (?, ?, ?)",
		keyToken, keyWalletID, keyDemoMode); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clear: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SessionStore) Close() error {
	return s.db.Close()
}
