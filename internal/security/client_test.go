package security

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"tokenscout/internal/domain"
)

func serve(t *testing.T, calls *atomic.Int32, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
}

func TestCheckSecurity_Honeypot(t *testing.T) {
	server := serve(t, nil, `{"result": {"0xbad": {"is_honeypot": "1"}}}`)
	defer server.Close()

	client := NewClient(server.URL)
	r, err := client.CheckSecurity(context.Background(), domain.NetworkEth, "0xBAD")
	if err != nil {
		t.Fatalf("CheckSecurity failed: %v", err)
	}
	if !r.IsHoneypot {
		t.Error("expected honeypot flag")
	}
	if r.Score != 0 || r.RiskLevel != RiskCritical {
		t.Errorf("score=%v risk=%s, want 0/CRITICAL", r.Score, r.RiskLevel)
	}

	veto, reason := Veto(r, 60)
	if !veto || reason != "honeypot" {
		t.Errorf("Veto: got (%v, %q)", veto, reason)
	}
}

func TestCheckSecurity_CleanToken(t *testing.T) {
	body := `{"result": {"0xgood": {
		"is_honeypot": "0",
		"buy_tax": "0.02",
		"sell_tax": "0.03",
		"is_open_source": "1",
		"owner_address": "0x0000000000000000000000000000000000000000",
		"lp_holders": [{"address": "0xlocker", "percent": "0.80", "is_locked": 1}]
	}}}`
	server := serve(t, nil, body)
	defer server.Close()

	client := NewClient(server.URL)
	r, err := client.CheckSecurity(context.Background(), domain.NetworkEth, "0xGOOD")
	if err != nil {
		t.Fatalf("CheckSecurity failed: %v", err)
	}
	if r.Score != 100 || r.RiskLevel != RiskLow {
		t.Errorf("score=%v risk=%s, want 100/LOW", r.Score, r.RiskLevel)
	}
	if !r.IsLpLocked {
		t.Error("expected LP locked")
	}
	if veto, _ := Veto(r, 60); veto {
		t.Error("clean token must not be vetoed")
	}
}

func TestCheckSecurity_UnlockedLPAndTaxes(t *testing.T) {
	body := `{"result": {"0xrisky": {
		"is_honeypot": "0",
		"buy_tax": "0.15",
		"sell_tax": "0.02",
		"is_open_source": "1",
		"lp_holders": [{"address": "0xwhale", "percent": "0.90", "is_locked": 0}]
	}}}`
	server := serve(t, nil, body)
	defer server.Close()

	client := NewClient(server.URL)
	r, err := client.CheckSecurity(context.Background(), domain.NetworkEth, "0xRISKY")
	if err != nil {
		t.Fatalf("CheckSecurity failed: %v", err)
	}
	if r.IsLpLocked {
		t.Error("expected LP unlocked")
	}
	// 100 - 40 (unlocked LP) - 15 (high tax) = 45
	if r.Score != 45 {
		t.Errorf("score: got %v, want 45", r.Score)
	}
	if r.RiskLevel != RiskCritical {
		t.Errorf("risk: got %s, want CRITICAL", r.RiskLevel)
	}
	if veto, _ := Veto(r, 60); !veto {
		t.Error("expected veto below score floor")
	}
}

func TestCheckSecurity_UncoveredNetworkPasses(t *testing.T) {
	// No server: solana has no oracle coverage, no HTTP call is made.
	client := NewClient("http://127.0.0.1:0")
	r, err := client.CheckSecurity(context.Background(), domain.NetworkSolana, "So11111111111111111111111111111111111111112")
	if err != nil {
		t.Fatalf("CheckSecurity failed: %v", err)
	}
	if r.Checked {
		t.Error("uncovered network must report Checked=false")
	}
	if veto, _ := Veto(r, 60); veto {
		t.Error("uncovered network must not be vetoed on score")
	}
}

func TestCheckSecurity_CachesForAnHour(t *testing.T) {
	var calls atomic.Int32
	server := serve(t, &calls, `{"result": {"0xabc": {"is_honeypot": "0", "is_open_source": "1", "lp_holders": [{"address": "0xl", "percent": "0.9", "is_locked": 1}]}}}`)
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := client.CheckSecurity(ctx, domain.NetworkEth, "0xABC"); err != nil {
			t.Fatalf("CheckSecurity failed: %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls.Load())
	}
}
