package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/honeywatch/console/internal/model"
)

const statusJSON = `{"threat_level":72.5,"status":"high","active_crypto":"post_quantum","threshold":70,"timestamp":"2024-01-15T12:00:00.123456","message":"System operating with post_quantum cryptography"}`

func TestGetStatus(t *testing.T) {
	c, seen := newBackend(t, http.StatusOK, statusJSON)

	st, err := c.GetStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.ThreatLevel != 72.5 || st.Status != model.ThreatHigh || st.ActiveCrypto != model.CryptoPostQuantum {
		t.Errorf("status = %+v", st)
	}
	if st.Timestamp.IsZero() {
		t.Error("timestamp not decoded")
	}
	if seen()[0].Path != "/api/v1/status" {
		t.Errorf("path = %q", seen()[0].Path)
	}
}

func TestSettings(t *testing.T) {
	t.Run("get", func(t *testing.T) {
		c, _ := newBackend(t, http.StatusOK, `{"email_alerts":true,"push_notifications":false,"threat_threshold":"medium","auto_response":true,"monitoring_interval":5,"retention_period":30}`)

		s, err := c.GetSettings(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !s.EmailAlerts || s.ThreatThreshold != model.ThreatMedium || s.RetentionPeriod != 30 {
			t.Errorf("settings = %+v", s)
		}
	})

	t.Run("update", func(t *testing.T) {
		c, seen := newBackend(t, http.StatusOK, `{"message":"updated"}`)

		err := c.UpdateSettings(context.Background(), model.SystemSettings{
			ThreatThreshold:    model.ThreatLow,
			MonitoringInterval: 60,
			RetentionPeriod:    7,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := seen()[0]
		if got.Method != http.MethodPut || got.Path != "/api/v1/settings" {
			t.Errorf("request = %s %s", got.Method, got.Path)
		}
	})

	t.Run("update out of range", func(t *testing.T) {
		c, seen := newBackend(t, http.StatusOK, `{}`)

		err := c.UpdateSettings(context.Background(), model.SystemSettings{
			ThreatThreshold:    model.ThreatLow,
			MonitoringInterval: 0,
			RetentionPeriod:    7,
		})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if lenseen() != 0 {
			t.Errorf("sent %d requests, want 0", lenseen())
		}
	})
}

func TestSimulateAttack(t *testing.T) {
	t.Run("duration omitted when zero", func(t *testing.T) {
		c, seen := newBackend(t, http.StatusOK, statusJSON)

		st, err := c.SimulateAttack(context.Background(), SimulateAttackRequest{Intensity: 50})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if st.ThreatLevel != 72.5 {
			t.Errorf("threat level = %v", st.ThreatLevel)
		}
		if got := seen()[0].Body; got != `{"intensity":50}` {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("with duration", func(t *testing.T) {
		c, seen := newBackend(t, http.StatusOK, statusJSON)

		if _, err := c.SimulateAttack(context.Background(), SimulateAttackRequest{Intensity: 80, Duration: 30}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var body SimulateAttackRequest
		json.Unmarshal([]byte(seen()[0].Body), &body)
		if body.Duration != 30 || body.Intensity != 80 {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("intensity out of range", func(t *testing.T) {
		c, seen := newBackend(t, http.StatusOK, statusJSON)

		if _, err := c.SimulateAttack(context.Background(), SimulateAttackRequest{Intensity: 150}); err == nil {
			t.Fatal("expected error, got nil")
		}
		if lenseen() != 0 {
			t.Errorf("sent %d requests, want 0", lenseen())
		}
	})
}

func TestReduceThreat(t *testing.T) {
	c, seen := newBackend(t, http.StatusOK, statusJSON)

	if _, err := c.ReduceThreat(context.Background(), 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := seen()[0]
	if got.Path != "/api/v1/simulate/reduce-threat" || got.Body != `{"amount":10}` {
		t.Errorf("request = %s %s", got.Path, got.Body)
	}
}

func TestSwitchCryptoMethod(t *testing.T) {
	c, seen := newBackend(t, http.StatusOK, `{"message":"Switched to post_quantum cryptography"}`)

	if err := c.SwitchCryptoMethod(context.Background(), model.CryptoPostQuantum); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen()[0].Path != "/api/v1/crypto/switch/post_quantum" {
		t.Errorf("path = %q", seen()[0].Path)
	}

	if err := c.SwitchCryptoMethod(context.Background(), "quantum_magic"); err == nil {
		t.Error("expected error for unknown method")
	}
	if lenseen() != 1 {
		t.Errorf("sent %d requests, want 1", lenseen())
	}
}

func TestGetMetrics(t *testing.T) {
	c, _ := newBackend(t, http.StatusOK, `{"cpu_usage":12.5,"memory_usage":40.1,"active_connections":3,"processed_transactions":1234,"threats_detected":42,"uptime_seconds":3600}`)

	m, err := c.GetMetrics(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ProcessedTransactions != 1234 || m.ThreatsDetected != 42 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestGetTransactions(t *testing.T) {
	c, seen := newBackend(t, http.StatusOK, `[{"id":"tx_0","amount":1000,"from_address":"0xaaa","to_address":"0xbbb","timestamp":"2024-01-15T12:00:00","crypto_method":"classical","threat_level_at_time":12}]`)

	txs, err := c.GetTransactions(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 1 || txs[0].ID != "tx_0" || txs[0].CryptoMethod != model.CryptoClassical {
		t.Errorf("transactions = %+v", txs)
	}
	if seen()[0].Query != "limit=5" {
		t.Errorf("query = %q, want limit=5", seen()[0].Query)
	}
}

func TestGetThreatHistory(t *testing.T) {
	c, seen := newBackend(t, http.StatusOK, `{"history":[{"timestamp":"2024-01-15T12:00:00","threat_level":20,"hour":0},{"timestamp":"2024-01-15T12:00:00","threat_level":35,"hour":1}]}`)

	hist, err := c.GetThreatHistory(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hist) != 2 || hist[1].Hour != 1 || hist[1].ThreatLevel != 35 {
		t.Errorf("history = %+v", hist)
	}
	if seen()[0].Query != "hours=2" {
		t.Errorf("query = %q, want hours=2", seen()[0].Query)
	}
}
