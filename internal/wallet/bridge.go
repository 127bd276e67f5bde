package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// Bridge talks to a wallet provider over a websocket bridge with one-shot
// JSON request/response frames. Each call dials fresh; connection failures
// surface once, with no reconnect loop, because every retry in this core is
// a fresh user-initiated attempt.
type Bridge struct {
	url    string
	dialer *websocket.Dialer
}

// NewBridge creates a provider bridge for the given ws:// or wss:// URL.
func NewBridge(url string) *Bridge {
	return &Bridge{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

type bridgeRequest struct {
	Action string `json:"action"`
}

type bridgeResponse struct {
	OK       bool   `json:"ok"`
	WalletID string `json:"wallet_id,omitempty"`
	Rejected bool   `json:"rejected,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Connect asks the provider for a wallet identity. A user rejection at the
// provider maps to ErrRejected so the caller can offer the demo fallback.
func (b *Bridge) Connect(ctx context.Context) (string, error) {
	resp, err := b.roundTrip(ctx, "connect")
	if err != nil {
		return "", err
	}

	if resp.Rejected {
		return "", ErrRejected
	}
	if !resp.OK || resp.WalletID == "" {
		return "", fmt.Errorf("bridge connect failed: %s", resp.Error)
	}

	return resp.WalletID, nil
}

// Resume reports an existing provider-side session. A negative response is
// not an error, just the absence of a session.
func (b *Bridge) Resume(ctx context.Context) (string, bool, error) {
	resp, err := b.roundTrip(ctx, "resume")
	if err != nil {
		return "", false, err
	}

	if !resp.OK || resp.WalletID == "" {
		return "", false, nil
	}
	return resp.WalletID, true, nil
}

// Disconnect notifies the provider to release its session.
func (b *Bridge) Disconnect(ctx context.Context) error {
	_, err := b.roundTrip(ctx, "disconnect")
	return err
}

func (b *Bridge) roundTrip(ctx context.Context, action string) (*bridgeResponse, error) {
	conn, _, err := b.dialer.DialContext(ctx, b.url, nil)
	if err != nil {
		return nil, fmt.Errorf("bridge dial failed: %w", err)
	}
	defer conn.Close()

	payload, err := json.Marshal(bridgeRequest{Action: action})
	if err != nil {
		return nil, err
	}

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetWriteDeadline(deadline)
		conn.SetReadDeadline(deadline)
	} else {
		conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	}

	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return nil, fmt.Errorf("bridge write failed: %w", err)
	}

	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("bridge read failed: %w", err)
	}

	var resp bridgeResponse
	if err := json.Unmarshal(msg, &resp); err != nil {
		return nil, fmt.Errorf("bridge response malformed: %w", err)
	}

	slog.Debug("Bridge round trip", slog.String("action", action), slog.Bool("ok", resp.OK))
	return &resp, nil
}
