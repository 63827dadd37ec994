package aggregator

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"passterm/solWallet/internal/wallet"
)

var (
	solMint  = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	usdcMint = solana.MustPublicKeyFromBase58("4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU")
	account  = solana.MustPublicKeyFromBase58("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM")
)

func newTestAggregator(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 5*time.Second, zap.NewNop())
}

func TestQuote(t *testing.T) {
	client := newTestAggregator(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quote" {
			t.Errorf("Expected path /quote, got %s", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("inputMint") != solMint.String() {
			t.Errorf("Expected inputMint %s, got %s", solMint, query.Get("inputMint"))
		}
		if query.Get("amount") != "1000000000" {
			t.Errorf("Expected amount 1000000000, got %s", query.Get("amount"))
		}
		if query.Get("slippageBps") != "50" {
			t.Errorf("Expected slippageBps 50, got %s", query.Get("slippageBps"))
		}
		if query.Get("onlyDirectRoutes") != "true" {
			t.Errorf("Expected onlyDirectRoutes true, got %s", query.Get("onlyDirectRoutes"))
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"routes": []map[string]interface{}{
				{"inAmount": "1000000000", "outAmount": "152340000", "marketInfos": []string{"orca"}},
			},
		})
	})

	route, err := client.Quote(context.Background(), solMint, usdcMint, 1_000_000_000)
	if err != nil {
		t.Fatalf("Expected route, got error: %v", err)
	}
	if route.OutAmount != "152340000" {
		t.Errorf("Expected outAmount 152340000, got %s", route.OutAmount)
	}
	if len(route.Raw) == 0 {
		t.Error("Expected raw route JSON to be preserved for the swap build")
	}
}

func TestQuoteNoRoute(t *testing.T) {
	client := newTestAggregator(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"routes": []interface{}{}})
	})

	_, err := client.Quote(context.Background(), solMint, usdcMint, 1_000_000_000)
	if err == nil {
		t.Fatal("Expected no-route error")
	}

	var walletErr *wallet.WalletError
	if !errors.As(err, &walletErr) || walletErr.Kind != wallet.ErrNoRouteAvailable {
		t.Errorf("Expected kind %s, got %v", wallet.ErrNoRouteAvailable, err)
	}
}

func TestBuildSwap(t *testing.T) {
	payload := []byte("opaque-serialized-transaction")

	client := newTestAggregator(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/swap" {
			t.Errorf("Expected path /swap, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}

		var req SwapRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode swap request: %v", err)
		}
		if req.UserPublicKey != account.String() {
			t.Errorf("Expected userPublicKey %s, got %s", account, req.UserPublicKey)
		}
		if req.Route == nil || req.Route.OutAmount != "152340000" {
			t.Errorf("Expected route to round-trip, got %+v", req.Route)
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"swapTransaction": base64.StdEncoding.EncodeToString(payload),
		})
	})

	route := &Route{InAmount: "1000000000", OutAmount: "152340000"}
	got, err := client.BuildSwap(context.Background(), route, account)
	if err != nil {
		t.Fatalf("Expected payload, got error: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("Expected payload %q, got %q", payload, got)
	}
}

func TestBuildSwapMissingPayload(t *testing.T) {
	client := newTestAggregator(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{})
	})

	_, err := client.BuildSwap(context.Background(), &Route{}, account)
	if err == nil {
		t.Fatal("Expected swap build error")
	}

	var walletErr *wallet.WalletError
	if !errors.As(err, &walletErr) || walletErr.Kind != wallet.ErrSwapBuildFailed {
		t.Errorf("Expected kind %s, got %v", wallet.ErrSwapBuildFailed, err)
	}
}

func TestBuildSwapServerError(t *testing.T) {
	client := newTestAggregator(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	_, err := client.BuildSwap(context.Background(), &Route{}, account)
	if err == nil {
		t.Fatal("Expected error for server failure")
	}

	var walletErr *wallet.WalletError
	if !errors.As(err, &walletErr) || walletErr.Kind != wallet.ErrSwapBuildFailed {
		t.Errorf("Expected kind %s, got %v", wallet.ErrSwapBuildFailed, err)
	}
}
