package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/backend"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/domain"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/gateway"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/session"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/storage"
	"github.com/Indraanil/Innovation-in-Realstate-7-12-on-blockchain/internal/trading"
)

// newUIServer builds the full stack behind an httptest UI server plus the
// fake ledger backend it talks to.
func newUIServer(t *testing.T) *httptest.Server {
	t.Helper()

	ledger := http.NewServeMux()
	ledger.HandleFunc("/api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"success": true, "access_token": "ui-token"})
	})
	ledger.HandleFunc("/api/properties/PROP-1001", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"property_id": "PROP-1001", "total_value": 50000000, "total_tokens": 1000,
		})
	})
	settle := func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success":     true,
			"transaction": map[string]any{"txn_id": "TXN-9"},
		})
	}
	ledger.HandleFunc("/api/trade/buy", settle)
	ledger.HandleFunc("/api/trade/sell", settle)

	ledgerSrv := httptest.NewServer(ledger)
	t.Cleanup(ledgerSrv.Close)

	store, err := storage.NewSessionStore(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	client := backend.NewClient(ledgerSrv.URL, 0)
	sessions := session.NewManager(store, client, nil)
	machine := gateway.NewMachine(5 * time.Millisecond)
	orchestrator := trading.NewOrchestrator(sessions, client, machine)

	s := NewServer("localhost:0", sessions, orchestrator, machine)
	ui := httptest.NewServer(s.Handler())
	t.Cleanup(ui.Close)
	return ui
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func TestServer_Health(t *testing.T) {
	ui := newUIServer(t)

	resp, err := http.Get(ui.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestServer_TradeRequiresSession(t *testing.T) {
	ui := newUIServer(t)

	resp := postJSON(t, ui.URL+"/api/trade/buy", map[string]any{"property_id": "PROP-1001", "token_amount": 10})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a session, got %d", resp.StatusCode)
	}
}

func TestServer_ConnectDemoAndSession(t *testing.T) {
	ui := newUIServer(t)

	resp := postJSON(t, ui.URL+"/api/session/connect", map[string]string{"mode": "demo", "name": "Asha"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Connect failed with status %d", resp.StatusCode)
	}
	var sess domain.Session
	decode(t, resp, &sess)
	if sess.WalletID == "" {
		t.Errorf("Expected a wallet id in the connect response")
	}

	var status struct {
		Connected bool `json:"connected"`
	}
	getResp, err := http.Get(ui.URL + "/api/session")
	if err != nil {
		t.Fatalf("GET /api/session failed: %v", err)
	}
	decode(t, getResp, &status)
	if !status.Connected {
		t.Errorf("Session endpoint must report connected")
	}
}

func TestServer_FullBuyFlowOverHTTP(t *testing.T) {
	ui := newUIServer(t)

	resp := postJSON(t, ui.URL+"/api/session/connect", map[string]string{"mode": "demo"})
	resp.Body.Close()

	buyDone := make(chan *http.Response, 1)
	go func() {
		payload, _ := json.Marshal(map[string]any{"property_id": "PROP-1001", "token_amount": 10})
		r, err := http.Post(ui.URL+"/api/trade/buy", "application/json", bytes.NewReader(payload))
		if err != nil {
			t.Errorf("Buy request failed: %v", err)
			close(buyDone)
			return
		}
		buyDone <- r
	}()

	// Drive the checkout the way the UI would.
	waitForState := func(want string) {
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			r, err := http.Get(ui.URL + "/api/checkout")
			if err != nil {
				t.Fatalf("GET /api/checkout failed: %v", err)
			}
			var body struct {
				State   string   `json:"state"`
				Methods []string `json:"methods"`
			}
			decode(t, r, &body)
			if body.State == want {
				return
			}
			time.Sleep(2 * time.Millisecond)
		}
		t.Fatalf("Checkout never reached state %s", want)
	}

	waitForState("method_selection")
	resp = postJSON(t, ui.URL+"/api/checkout/method", map[string]string{"method": "upi"})
	resp.Body.Close()

	waitForState("approved")
	resp = postJSON(t, ui.URL+"/api/checkout/confirm", nil)
	resp.Body.Close()

	ctx, cancelWait := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelWait()
	select {
	case r, ok := <-buyDone:
		if !ok {
			t.Fatal("Buy request errored")
		}
		if r.StatusCode != http.StatusOK {
			t.Fatalf("Buy returned status %d", r.StatusCode)
		}
		var receipt domain.TradeReceipt
		decode(t, r, &receipt)
		if receipt.SettlementTxnID != "TXN-9" {
			t.Errorf("Receipt txn mismatch: %q", receipt.SettlementTxnID)
		}
	case <-ctx.Done():
		t.Fatal("Buy request never completed")
	}
}

func TestServer_CancelledCheckoutMapsToPaymentRequired(t *testing.T) {
	ui := newUIServer(t)

	resp := postJSON(t, ui.URL+"/api/session/connect", map[string]string{"mode": "demo"})
	resp.Body.Close()

	buyDone := make(chan int, 1)
	go func() {
		payload, _ := json.Marshal(map[string]any{"property_id": "PROP-1001", "token_amount": 2})
		r, err := http.Post(ui.URL+"/api/trade/buy", "application/json", bytes.NewReader(payload))
		if err != nil {
			buyDone <- 0
			return
		}
		defer r.Body.Close()
		buyDone <- r.StatusCode
	}()

	// Cancel only once the checkout is actually open; cancelling in Idle
	// is a no-op and would leave the buy request hanging.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r, err := http.Get(ui.URL + "/api/checkout")
		if err != nil {
			t.Fatalf("GET /api/checkout failed: %v", err)
		}
		var body struct {
			State string `json:"state"`
		}
		decode(t, r, &body)
		if body.State == "method_selection" {
			cr := postJSON(t, ui.URL+"/api/checkout/cancel", nil)
			cr.Body.Close()
			if st := <-buyDone; st != http.StatusPaymentRequired {
				t.Fatalf("Expected 402 for cancelled payment, got %d", st)
			}
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("Checkout never opened")
}
