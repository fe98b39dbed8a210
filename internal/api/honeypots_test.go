package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/honeywatch/console/internal/model"
)

// request is what a fake backend saw.
type request struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// newBackend serves response with status for every request and records what
// it received.
func newBackend(t *testing.T, status int, response string) (*Client, func() []request) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []request
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, request{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Query:  r.URL.RawQuery,
			Body:   string(body),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)

	snapshot := func() []request {
		mu.Lock()
		defer mu.Unlock()
		return append([]request(nil), seen...)
	}
	return NewClient(server.URL+"/api/v1", "", WithRetries(0, 0)), snapshot
}

func TestListHoneypots(t *testing.T) {
	c, seen := newBackend(t, http.StatusOK, `[
		{"id":"honeypot_0","name":"Quantum Honeypot 1","status":"active","last_interaction":null,"interaction_count":0,"threat_indicators":[]},
		{"id":"honeypot_2","name":"Quantum Honeypot 3","status":"triggered","last_interaction":"2024-01-15T12:00:00","interaction_count":10,"threat_indicators":["unusual_pattern"]}
	]`)

	hps, err := c.ListHoneypots(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(hps) != 2 {
		t.Fatalf("len = %d, want 2", len(hps))
	}
	if hps[0].ID != "honeypot_0" || hps[1].ID != "honeypot_2" {
		t.Errorf("order = [%s %s], want backend order", hps[0].ID, hps[1].ID)
	}
	if !hps[0].LastInteraction.IsZero() {
		t.Errorf("null last_interaction decoded as %v", hps[0].LastInteraction)
	}
	if hps[1].LastInteraction.Hour() != 12 || hps[1].InteractionCount != 10 {
		t.Errorf("honeypot_2 = %+v", hps[1])
	}

	got := seen()[0]
	if got.Method != http.MethodGet || got.Path != "/api/v1/honeypots" {
		t.Errorf("request = %s %s", got.Method, got.Path)
	}
}

func TestGetHoneypotConfig(t *testing.T) {
	c, seen := newBackend(t, http.StatusOK, `{"id":"hp 1","monitoring_sensitivity":"medium","protection_type":"ecdsa","auto_response":true,"routing_method":"classical"}`)

	cfg, err := c.GetHoneypotConfig(context.Background(), "hp 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MonitoringSensitivity != model.ThreatMedium || !cfg.AutoResponse || cfg.RoutingMethod != model.CryptoClassical {
		t.Errorf("config = %+v", cfg)
	}
	if seen()[0].Path != "/api/v1/honeypots/hp%201/config" {
		t.Errorf("path = %q, want escaped id", seen()[0].Path)
	}
}

func TestUpdateHoneypotConfig(t *testing.T) {
	t.Run("sends config", func(t *testing.T) {
		c, seen := newBackend(t, http.StatusOK, `{"message":"ok"}`)

		err := c.UpdateHoneypotConfig(context.Background(), "hp-1", model.HoneypotConfig{
			MonitoringSensitivity: model.ThreatHigh,
			ProtectionType:        model.ProtectionRSA,
			AutoResponse:          true,
			RoutingMethod:         model.CryptoPostQuantum,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got := seen()[0]
		if got.Method != http.MethodPut || got.Path != "/api/v1/honeypots/hp-1/config" {
			t.Errorf("request = %s %s", got.Method, got.Path)
		}
		var body model.HoneypotConfig
		if err := json.Unmarshal([]byte(got.Body), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.ID != "hp-1" || body.RoutingMethod != model.CryptoPostQuantum {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("invalid config not sent", func(t *testing.T) {
		c, seen := newBackend(t, http.StatusOK, `{}`)

		err := c.UpdateHoneypotConfig(context.Background(), "hp-1", model.HoneypotConfig{
			MonitoringSensitivity: model.ThreatCritical,
			ProtectionType:        model.ProtectionRSA,
			RoutingMethod:         model.CryptoClassical,
		})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if lenseen() != 0 {
			t.Errorf("sent %d requests, want 0", lenseen())
		}
	})
}

func TestHoneypotActions(t *testing.T) {
	tests := []struct {
		name       string
		call       func(*Client) error
		wantMethod string
		wantPath   string
	}{
		{
			name:       "enable",
			call:       func(c *Client) error { return c.EnableHoneypot(context.Background(), "hp-1") },
			wantMethod: http.MethodPost,
			wantPath:   "/api/v1/honeypots/hp-1/enable",
		},
		{
			name:       "disable",
			call:       func(c *Client) error { return c.DisableHoneypot(context.Background(), "hp-1") },
			wantMethod: http.MethodPost,
			wantPath:   "/api/v1/honeypots/hp-1/disable",
		},
		{
			name:       "delete",
			call:       func(c *Client) error { return c.DeleteHoneypot(context.Background(), "hp-1") },
			wantMethod: http.MethodDelete,
			wantPath:   "/api/v1/honeypots/hp-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, seen := newBackend(t, http.StatusOK, `{"message":"done"}`)
			if err := tt.call(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := seen()[0]
			if got.Method != tt.wantMethod || got.Path != tt.wantPath {
				t.Errorf("request = %s %s, want %s %s", got.Method, got.Path, tt.wantMethod, tt.wantPath)
			}
		})
	}
}

func TestHoneypotActions_EmptyID(t *testing.T) {
	c, seen := newBackend(t, http.StatusOK, `{}`)

	if err := c.DisableHoneypot(context.Background(), ""); !errors.Is(err, ErrEmptyID) {
		t.Errorf("DisableHoneypot(\"\") = %v, want ErrEmptyID", err)
	}
	if _, err := c.ToggleStar(context.Background(), ""); !errors.Is(err, ErrEmptyID) {
		t.Errorf("ToggleStar(\"\") = %v, want ErrEmptyID", err)
	}
	if lenseen() != 0 {
		t.Errorf("sent %d requests, want 0", lenseen())
	}
}

func TestHoneypotActions_ErrorStatusText(t *testing.T) {
	c, _ := newBackend(t, http.StatusNotFound, `{"detail":"Honeypot not found"}`)

	err := c.DeleteHoneypot(context.Background(), "ghost")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false", err)
	}
	if !strings.Contains(err.Error(), "Not Found") {
		t.Errorf("error %q should carry status text", err)
	}
}

func TestDeployHoneypot(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		c, seen := newBackend(t, http.StatusOK, `{"id":"hp-9","name":"BTC Decoy","status":"active","blockchain":"bitcoin","interaction_count":0,"threat_indicators":[]}`)

		hp, err := c.DeployHoneypot(context.Background(), model.DeployRequest{
			Name:                  "BTC Decoy",
			Blockchain:            model.ChainBitcoin,
			ProtectionType:        model.ProtectionECDSA,
			MonitoringSensitivity: model.ThreatMedium,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hp.ID != "hp-9" || hp.Blockchain != model.ChainBitcoin {
			t.Errorf("honeypot = %+v", hp)
		}
		got := seen()[0]
		if got.Method != http.MethodPost || got.Path != "/api/v1/honeypots/deploy" {
			t.Errorf("request = %s %s", got.Method, got.Path)
		}
		if !strings.Contains(got.Body, `"name":"BTC Decoy"`) {
			t.Errorf("body = %s", got.Body)
		}
	})

	t.Run("name too long", func(t *testing.T) {
		c, seen := newBackend(t, http.StatusOK, `{}`)

		_, err := c.DeployHoneypot(context.Background(), model.DeployRequest{
			Name:                  strings.Repeat("x", 101),
			Blockchain:            model.ChainBitcoin,
			ProtectionType:        model.ProtectionECDSA,
			MonitoringSensitivity: model.ThreatMedium,
		})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if lenseen() != 0 {
			t.Errorf("sent %d requests, want 0", lenseen())
		}
	})
}

func TestToggleStar(t *testing.T) {
	c, seen := newBackend(t, http.StatusOK, `{"starred":true}`)

	starred, err := c.ToggleStar(context.Background(), "hp-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !starred {
		t.Error("starred = false, want true")
	}
	if seen()[0].Path != "/api/v1/honeypots/hp-1/star" {
		t.Errorf("path = %q", seen()[0].Path)
	}
}

func TestResetHoneypots(t *testing.T) {
	c, _ := newBackend(t, http.StatusOK, `{"message":"reset","reset_count":4}`)

	n, err := c.ResetHoneypots(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("reset count = %d, want 4", n)
	}
}
